package postgres

import (
	"context"
	"sort"
	"sync"

	"github.com/smartcity/dashboard/internal/domain"
)

// MockRepository implements domain.UploadLogRepository in memory for testing/demo mode
type MockRepository struct {
	mu      sync.Mutex
	entries []domain.UploadLog
}

// NewMockRepository creates a new mock repository
func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

// SaveUploadLog keeps the entry in memory
func (r *MockRepository) SaveUploadLog(ctx context.Context, entry domain.UploadLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

// RecentUploads returns up to limit entries, newest first
func (r *MockRepository) RecentUploads(ctx context.Context, limit int) ([]domain.UploadLog, error) {
	r.mu.Lock()
	out := make([]domain.UploadLog, len(r.entries))
	copy(out, r.entries)
	r.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Health always returns nil in mock mode
func (r *MockRepository) Health(ctx context.Context) error {
	return nil
}
