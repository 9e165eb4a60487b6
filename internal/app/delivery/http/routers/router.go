package routers

import (
	"fmt"
	"net/http"

	"limslite-service/internal/app/config"
	"limslite-service/internal/app/delivery/http/middlewares"
	"limslite-service/internal/app/services/core/dashboard"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	internalConfig *config.InternalConfig,
	middlewares *middlewares.Middlewares,
	dashboardController *dashboard.DashboardController,
	metricsHandler http.Handler,
) {

	corsOptions := cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}
	router.Use(cors.Handler(corsOptions))
	router.Use(middlewares.RequestIDMiddleware)
	router.Use(middlewares.Logging)
	router.Use(middlewares.ErrorHandler)

	router.Get("/healthz", dashboardController.Healthz)
	router.Handle("/metrics", metricsHandler)

	endpointPrefix := fmt.Sprintf("/%s", internalConfig.Dashboard.EndpointPrefix)
	router.Route(endpointPrefix, func(r chi.Router) {
		r.Use(middlewares.RateLimit())
		r.Route("/v1", func(r chi.Router) {
			r.Route("/runs", func(r chi.Router) {
				attachRunRoutes(r, dashboardController)
			})
		})
	})
}
