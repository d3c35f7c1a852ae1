// handlers_health.go - Health, refresh, and load-warning handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kominz1028-maker/polar-plant-dashboard/internal/models"
)

// HandleHealth returns server health status
func (h *Handler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":   "ok",
		"version":  h.version,
		"snapshot": h.catalog.Snapshot(),
	})
}

// HandleRefresh drops every cached dataset and statistic, returning the
// new snapshot ID. Called after files in the data directory change.
func (h *Handler) HandleRefresh(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"snapshot": h.refresh(),
	})
}

// HandleWarnings lists the non-fatal problems found while loading the
// data directory.
func (h *Handler) HandleWarnings(c echo.Context) error {
	warns, err := h.warnings()
	if err != nil {
		return NewInternalError("failed to load datasets", err)
	}
	if warns == nil {
		warns = []models.Warning{}
	}
	return c.JSON(http.StatusOK, warns)
}
