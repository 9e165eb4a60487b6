package routers

import (
	"limslite-service/internal/app/services/core/dashboard"

	"github.com/go-chi/chi/v5"
)

func attachRunRoutes(router chi.Router, dashboardController *dashboard.DashboardController) {
	router.Get("/", dashboardController.ListRuns)
	router.Get("/{runID}/results", dashboardController.ListRunResults)
	router.Get("/{runID}/results.csv", dashboardController.ExportRunResults)
}
