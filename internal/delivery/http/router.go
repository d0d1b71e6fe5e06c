package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/smartcity/dashboard/internal/service"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(
	app *fiber.App,
	dashboardSvc *service.DashboardService,
	ingestSvc *service.IngestService,
	repo service.DataRepository,
	logger *zap.Logger,
) {
	handler := NewHandler(dashboardSvc, ingestSvc, repo, logger)

	// Health check
	app.Get("/health", handler.HealthCheck)

	// Prometheus exposition
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API v1 routes
	api := app.Group("/api/v1")
	{
		// Dashboard endpoints
		api.Get("/dashboard", handler.GetDashboard)
		api.Get("/kpis", handler.GetKPIs)
		api.Get("/weather", handler.GetWeather)
		api.Get("/series/:id", handler.GetSeries)
		api.Get("/metrics/congestion", handler.GetCongestion)

		// Uploads
		api.Post("/upload", handler.Upload)
		api.Get("/uploads", handler.GetUploads)
	}
}
