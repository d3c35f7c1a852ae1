// handlers_overview.go - Experiment description and headline statistics
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HandleExperiment returns the experiment description: schools, EC
// targets, colors, and file naming.
func (h *Handler) HandleExperiment(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalog.Experiment())
}

// HandleOverview returns the metric cards for the landing tab.
func (h *Handler) HandleOverview(c echo.Context) error {
	store, err := h.ensureStore()
	if err != nil {
		return NewInternalError("failed to build statistics", err)
	}
	stats, err := store.Overview()
	if err != nil {
		return NewInternalError("failed to compute overview", err)
	}
	return c.JSON(http.StatusOK, stats)
}

// HandleSchoolMeans returns per-school sensor averages for the
// environment comparison chart.
func (h *Handler) HandleSchoolMeans(c echo.Context) error {
	store, err := h.ensureStore()
	if err != nil {
		return NewInternalError("failed to build statistics", err)
	}
	means, err := store.SchoolMeans(h.catalog.Experiment().Schools)
	if err != nil {
		return NewInternalError("failed to compute school means", err)
	}
	return c.JSON(http.StatusOK, means)
}
