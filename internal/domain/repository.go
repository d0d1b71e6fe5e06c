package domain

import (
	"context"
	"time"
)

// CongestionSummary is the derived average congestion index.
type CongestionSummary struct {
	Value   float64 `json:"value"`
	Display string  `json:"display"`
	Records int     `json:"records"`
}

// DashboardData aggregates everything the render layer needs in one response
type DashboardData struct {
	KPIs              map[string]any    `json:"kpis"`
	Weather           map[string]any    `json:"weather"`
	Traffic           []TrafficRecord   `json:"traffic"`
	Power             []PowerRecord     `json:"power"`
	Modal             []ModalRecord     `json:"modal"`
	AverageCongestion CongestionSummary `json:"average_congestion"`
	Upload            UploadStatus      `json:"upload"`
	UploadLabel       string            `json:"upload_label"`
	LastReplaced      SeriesID          `json:"last_replaced"`
	Version           uint64            `json:"version"`
	Timestamp         time.Time         `json:"timestamp"`
}

// UploadLogRepository defines the interface for upload audit persistence
// This follows the Dependency Inversion Principle - domain defines the interface
type UploadLogRepository interface {
	// SaveUploadLog persists one upload attempt
	SaveUploadLog(ctx context.Context, entry UploadLog) error

	// RecentUploads returns the newest entries first
	RecentUploads(ctx context.Context, limit int) ([]UploadLog, error)

	// Health checks database connectivity
	Health(ctx context.Context) error
}
