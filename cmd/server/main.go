package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/smartcity/dashboard/internal/config"
	"github.com/smartcity/dashboard/internal/delivery/http"
	"github.com/smartcity/dashboard/internal/domain"
	"github.com/smartcity/dashboard/internal/ingest"
	"github.com/smartcity/dashboard/internal/logging"
	"github.com/smartcity/dashboard/internal/metrics"
	"github.com/smartcity/dashboard/internal/observability"
	"github.com/smartcity/dashboard/internal/repository/postgres"
	"github.com/smartcity/dashboard/internal/service"
	"github.com/smartcity/dashboard/internal/store"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.IsDevelopment(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("Logger setup failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Dependency Injection: Repositories
	dataRepo, closeRepo := openRepository(cfg, logger)
	defer closeRepo()

	// Static snapshots, built once
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	weatherSvc := service.NewWeatherService(cfg.OpenWeatherAPIKey, cfg.CityLat, cfg.CityLon, logger)
	weather := weatherSvc.Snapshot(ctx)
	cancel()

	clock := clockwork.NewRealClock()
	promMetrics := observability.NewMetrics()
	dataStore := store.New(domain.SampleKPIs(), weather, clock)
	derived := metrics.NewDerived(dataStore, promMetrics, logger)
	defer derived.Close()

	// Dependency Injection: Services
	keyCheck := ingest.KeyCheckTruthy
	if cfg.StrictKeyCheck {
		keyCheck = ingest.KeyCheckPresence
	}
	ingestSvc := service.NewIngestService(dataStore, dataRepo, promMetrics, logger,
		service.WithClock(clock),
		service.WithKeyCheck(keyCheck),
	)
	dashboardSvc := service.NewDashboardService(dataStore, derived, clock)

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "SmartCity Dashboard v1.0",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Second,
		BodyLimit:    cfg.BodyLimitBytes(),
		ErrorHandler: http.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	if cfg.IsDevelopment() {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Routes
	http.SetupRoutes(app, dashboardSvc, ingestSvc, dataRepo, logger)

	// Graceful shutdown
	go func() {
		logger.Info("server starting",
			zap.String("port", cfg.Port),
			zap.String("city", cfg.CityName),
			zap.Bool("mock_weather", weather.IsMock),
		)
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
	}
	ingestSvc.WaitBackground()
	logger.Info("server exited gracefully")
}

// openRepository connects to PostgreSQL when DATABASE_URL is set and falls
// back to the in-memory audit log otherwise.
func openRepository(cfg *config.Config, logger *zap.Logger) (service.DataRepository, func()) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		logger.Info("DATABASE_URL not set, keeping upload log in memory")
		return postgres.NewMockRepository(), func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err == nil {
		err = pool.Ping(ctx)
		if err != nil {
			pool.Close()
		}
	}
	if err != nil {
		logger.Warn("could not connect to database, keeping upload log in memory", zap.Error(err))
		return postgres.NewMockRepository(), func() {}
	}

	repo := postgres.NewPostgresRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Warn("could not create upload_logs table, keeping upload log in memory", zap.Error(err))
		pool.Close()
		return postgres.NewMockRepository(), func() {}
	}

	logger.Info("connected to PostgreSQL")
	return repo, pool.Close
}
