// handlers_env.go - Environment dataset handlers
package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/kominz1028-maker/polar-plant-dashboard/internal/analytics"
	"github.com/kominz1028-maker/polar-plant-dashboard/internal/models"
)

// utf8BOM is prepended to CSV downloads so Korean Excel opens them as
// UTF-8 instead of CP949.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// limitParam parses the optional ?limit row cap. Zero or absent means all
// rows.
func limitParam(c echo.Context) int {
	n, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || n <= 0 {
		return -1
	}
	return n
}

// HandleEnvTable returns one school's environment table as JSON.
// Supports ?limit for raw-data previews.
func (h *Handler) HandleEnvTable(c echo.Context) error {
	school := c.Param("school")
	res := h.catalog.EnvData(school)
	if res.Err != nil {
		return datasetError(school, res.Err)
	}

	table := res.Table
	if n := limitParam(c); n > 0 {
		table = table.Head(n)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"table":    table,
		"total":    res.Table.Len(),
		"warnings": res.Warnings,
	})
}

// HandleEnvReadingsMsgpack returns one school's typed readings encoded as
// MessagePack, which is considerably smaller than JSON for sensor data.
func (h *Handler) HandleEnvReadingsMsgpack(c echo.Context) error {
	school := c.Param("school")
	res := h.catalog.EnvData(school)
	if res.Err != nil {
		return datasetError(school, res.Err)
	}

	readings := analytics.EnvReadingsFromTable(school, res.Table)
	data, err := msgpack.Marshal(readings)
	if err != nil {
		return NewInternalError("failed to encode readings", err)
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleEnvSeries returns one school's time series for one sensor.
func (h *Handler) HandleEnvSeries(c echo.Context) error {
	school := c.Param("school")
	metric := c.QueryParam("metric")
	if metric == "" {
		metric = models.EnvColTemperature
	}

	// Surface a missing file as 404 before touching the store.
	if res := h.catalog.EnvData(school); res.Err != nil {
		return datasetError(school, res.Err)
	}

	store, err := h.ensureStore()
	if err != nil {
		return NewInternalError("failed to build statistics", err)
	}
	series, err := store.EnvSeries(school, metric)
	if err != nil {
		if isUnknownMetric(err) {
			return NewValidationError("metric")
		}
		return NewInternalError("failed to compute series", err)
	}
	if series == nil {
		series = []models.SeriesPoint{}
	}
	return c.JSON(http.StatusOK, series)
}

// HandleEnvDownload re-exports one school's environment data as a UTF-8
// CSV, regardless of the source file's encoding.
func (h *Handler) HandleEnvDownload(c echo.Context) error {
	school := c.Param("school")
	res := h.catalog.EnvData(school)
	if res.Err != nil {
		return datasetError(school, res.Err)
	}

	var buf bytes.Buffer
	buf.Write(utf8BOM)
	w := csv.NewWriter(&buf)
	if err := w.Write(res.Table.Columns); err != nil {
		return NewInternalError("failed to encode csv", err)
	}
	for _, row := range res.Table.Rows {
		if err := w.Write(row); err != nil {
			return NewInternalError("failed to encode csv", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return NewInternalError("failed to encode csv", err)
	}

	filename := fmt.Sprintf("%s_%s.csv", school, h.catalog.Experiment().EnvFileMarker)
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(filename)))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
