// handlers_growth.go - Growth dataset and statistics handlers
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kominz1028-maker/polar-plant-dashboard/internal/analytics"
	"github.com/kominz1028-maker/polar-plant-dashboard/internal/catalog"
	"github.com/kominz1028-maker/polar-plant-dashboard/internal/config"
	"github.com/kominz1028-maker/polar-plant-dashboard/internal/models"
)

// growthMetricAliases maps URL-friendly metric names to the dataset's
// Korean column headers. The raw header is accepted too.
var growthMetricAliases = map[string]string{
	"leaf_count":   models.GrowthColLeafCount,
	"shoot_length": models.GrowthColShootLength,
	"root_length":  models.GrowthColRootLength,
	"fresh_weight": models.GrowthColFreshWeight,
}

func growthMetric(param string) string {
	if col, ok := growthMetricAliases[param]; ok {
		return col
	}
	return param
}

func isUnknownMetric(err error) bool {
	return errors.Is(err, analytics.ErrUnknownMetric)
}

// HandleGrowthTable returns the growth dataset as JSON. ?school selects
// one school's sheet, which requires a per-school workbook; combined
// workbooks carry no school information, so the request conflicts with
// the configured layout.
func (h *Handler) HandleGrowthTable(c echo.Context) error {
	exp := h.catalog.Experiment()

	var res *catalog.Result
	if school := c.QueryParam("school"); school != "" {
		if exp.GrowthSheetMode != config.SheetModePerSchool {
			return NewConflictError("growth workbook is combined; per-school data is not available")
		}
		res = h.catalog.GrowthBySchool(school)
		if res.Err != nil {
			return datasetError(school, res.Err)
		}
	} else {
		res = h.catalog.Growth()
		if res.Err != nil {
			return datasetError(exp.GrowthFileKey, res.Err)
		}
	}

	table := res.Table
	if n := limitParam(c); n > 0 {
		table = table.Head(n)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"table": table,
		"total": res.Table.Len(),
		"mode":  exp.GrowthSheetMode,
	})
}

// HandleGrowthSummary returns count/mean/min/max for every growth metric.
func (h *Handler) HandleGrowthSummary(c echo.Context) error {
	store, err := h.ensureStore()
	if err != nil {
		return NewInternalError("failed to build statistics", err)
	}
	blocks, err := store.GrowthSummary()
	if err != nil {
		return NewInternalError("failed to compute summary", err)
	}
	return c.JSON(http.StatusOK, blocks)
}

// HandleGrowthHistogram returns the distribution of one growth metric.
// ?metric selects the column; ?bins overrides the default bucket count.
func (h *Handler) HandleGrowthHistogram(c echo.Context) error {
	metric := c.QueryParam("metric")
	if metric == "" {
		return NewValidationError("metric")
	}
	bins, _ := strconv.Atoi(c.QueryParam("bins"))

	store, err := h.ensureStore()
	if err != nil {
		return NewInternalError("failed to build statistics", err)
	}
	buckets, err := store.Histogram(growthMetric(metric), bins)
	if err != nil {
		if isUnknownMetric(err) {
			return NewValidationError("metric")
		}
		return NewInternalError("failed to compute histogram", err)
	}
	if buckets == nil {
		buckets = []models.HistogramBucket{}
	}
	return c.JSON(http.StatusOK, buckets)
}

// HandleGrowthScatter pairs two growth metrics per individual and reports
// their correlation. ?x and ?y select the columns.
func (h *Handler) HandleGrowthScatter(c echo.Context) error {
	x, y := c.QueryParam("x"), c.QueryParam("y")
	if x == "" {
		return NewValidationError("x")
	}
	if y == "" {
		return NewValidationError("y")
	}

	store, err := h.ensureStore()
	if err != nil {
		return NewInternalError("failed to build statistics", err)
	}
	points, corr, err := store.Scatter(growthMetric(x), growthMetric(y))
	if err != nil {
		if isUnknownMetric(err) {
			return NewValidationError("metric")
		}
		return NewInternalError("failed to compute scatter", err)
	}
	if points == nil {
		points = []models.ScatterPoint{}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"points":      points,
		"correlation": corr,
	})
}

// HandleWeightByEC returns mean fresh weight per EC condition, the
// study's central comparison.
func (h *Handler) HandleWeightByEC(c echo.Context) error {
	store, err := h.ensureStore()
	if err != nil {
		return NewInternalError("failed to build statistics", err)
	}
	groups, err := store.WeightByEC()
	if err != nil {
		return NewInternalError("failed to compute EC comparison", err)
	}
	if groups == nil {
		groups = []models.ECGroupMean{}
	}
	return c.JSON(http.StatusOK, groups)
}

// HandleOptimalEC returns the EC condition with the best mean fresh
// weight, or 404 when no group has data yet.
func (h *Handler) HandleOptimalEC(c echo.Context) error {
	store, err := h.ensureStore()
	if err != nil {
		return NewInternalError("failed to build statistics", err)
	}
	best, err := store.OptimalEC()
	if err != nil {
		return NewInternalError("failed to compute optimal EC", err)
	}
	if best == nil {
		return NewNotFoundError("statistic", "optimal EC (no growth data loaded)")
	}
	return c.JSON(http.StatusOK, best)
}
