// routes.go - Route registration helpers
package api

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, h *Handler) {
	api := e.Group("/api")

	api.GET("/health", h.HandleHealth)
	api.POST("/refresh", h.HandleRefresh)
	api.GET("/warnings", h.HandleWarnings)

	api.GET("/experiment", h.HandleExperiment)
	api.GET("/overview", h.HandleOverview)
	api.GET("/overview/school-means", h.HandleSchoolMeans)

	env := api.Group("/env")
	env.GET("/:school", h.HandleEnvTable)
	env.GET("/:school/readings.msgpack", h.HandleEnvReadingsMsgpack)
	env.GET("/:school/series", h.HandleEnvSeries)
	env.GET("/:school/download", h.HandleEnvDownload)

	growth := api.Group("/growth")
	growth.GET("", h.HandleGrowthTable)
	growth.GET("/summary", h.HandleGrowthSummary)
	growth.GET("/histogram", h.HandleGrowthHistogram)
	growth.GET("/scatter", h.HandleGrowthScatter)
	growth.GET("/weight-by-ec", h.HandleWeightByEC)
	growth.GET("/optimal-ec", h.HandleOptimalEC)
}
