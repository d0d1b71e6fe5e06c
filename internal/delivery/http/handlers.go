package http

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/smartcity/dashboard/internal/domain"
	"github.com/smartcity/dashboard/internal/ingest"
	"github.com/smartcity/dashboard/internal/service"
	"github.com/smartcity/dashboard/internal/store"
	"github.com/smartcity/dashboard/pkg/utils"
)

const (
	defaultUploadsLimit = 20
	maxUploadsLimit     = 100
)

// Handler contains all HTTP handlers
type Handler struct {
	dashboardSvc *service.DashboardService
	ingestSvc    *service.IngestService
	repo         service.DataRepository
	logger       *zap.Logger
}

// NewHandler creates a new handler
func NewHandler(
	dashboardSvc *service.DashboardService,
	ingestSvc *service.IngestService,
	repo service.DataRepository,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		dashboardSvc: dashboardSvc,
		ingestSvc:    ingestSvc,
		repo:         repo,
		logger:       logger,
	}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	status, database := "ok", "ok"
	code := fiber.StatusOK
	if err := h.repo.Health(ctx); err != nil {
		h.logger.Warn("health check: database unavailable", zap.Error(err))
		status, database = "degraded", "unavailable"
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status":   status,
		"database": database,
		"service":  "smartcity-dashboard",
		"version":  "1.0.0",
	})
}

// GetDashboard returns everything the dashboard renders
func (h *Handler) GetDashboard(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.dashboardSvc.GetDashboardData(),
	})
}

// GetKPIs returns the headline city figures
func (h *Handler) GetKPIs(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.dashboardSvc.GetKPIs(),
	})
}

// GetWeather returns the startup weather snapshot
func (h *Handler) GetWeather(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.dashboardSvc.GetWeather(),
	})
}

// GetSeries returns one series as JSON, or as CSV with ?format=csv
func (h *Handler) GetSeries(c *fiber.Ctx) error {
	series, err := h.dashboardSvc.GetSeries(c.Params("id"))
	if err != nil {
		return err
	}

	switch c.Query("format", "json") {
	case "json":
		return c.JSON(fiber.Map{
			"success": true,
			"series":  series.ID,
			"data":    series.Records(),
			"count":   series.Len(),
		})
	case "csv":
		var buf bytes.Buffer
		if err := ingest.WriteCSV(&buf, series); err != nil {
			h.logger.Error("csv export failed", zap.String("series", string(series.ID)), zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to export series")
		}
		c.Attachment(string(series.ID) + ".csv")
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		return c.Send(buf.Bytes())
	default:
		return fiber.NewError(fiber.StatusBadRequest, "format must be json or csv")
	}
}

// GetCongestion returns the average congestion derived from the traffic series
func (h *Handler) GetCongestion(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.dashboardSvc.AverageCongestion(),
	})
}

// Upload ingests the multipart "file" field. Any readable upload answers 200;
// the outcome tells whether a series was replaced.
func (h *Handler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return domain.ErrNoFile
	}

	f, err := fh.Open()
	if err != nil {
		h.logger.Error("failed to open uploaded file", zap.String("file", fh.Filename), zap.Error(err))
		return fiber.NewError(fiber.StatusBadRequest, "Failed to read uploaded file")
	}
	defer f.Close()

	result, err := h.ingestSvc.Upload(c.Context(), fh.Filename, f)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

// GetUploads returns the newest upload audit entries
func (h *Handler) GetUploads(c *fiber.Ctx) error {
	limit := utils.ClampInt(c.QueryInt("limit", defaultUploadsLimit), 1, maxUploadsLimit)

	logs, err := h.ingestSvc.RecentUploads(c.Context(), limit)
	if err != nil {
		h.logger.Error("failed to fetch upload history", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch upload history")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    logs,
		"count":   len(logs),
	})
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
		message = fe.Message
	case errors.Is(err, domain.ErrNoFile):
		code = fiber.StatusBadRequest
		message = "No file selected"
	case errors.Is(err, store.ErrUnknownSeries):
		code = fiber.StatusNotFound
		message = "Unknown series"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
