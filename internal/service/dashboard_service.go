package service

import (
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/smartcity/dashboard/internal/domain"
	"github.com/smartcity/dashboard/internal/metrics"
	"github.com/smartcity/dashboard/internal/store"
)

// DashboardService serves the read side: static snapshots, the three series
// and the derived average.
type DashboardService struct {
	store   *store.Store
	derived *metrics.Derived
	clock   clockwork.Clock
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(st *store.Store, derived *metrics.Derived, clock clockwork.Clock) *DashboardService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &DashboardService{
		store:   st,
		derived: derived,
		clock:   clock,
	}
}

// GetDashboardData returns everything the dashboard renders. All series come
// from one consistent store snapshot.
func (s *DashboardService) GetDashboardData() domain.DashboardData {
	snap := s.store.Snapshot()
	return domain.DashboardData{
		KPIs:              s.store.KPIs().Map(),
		Weather:           s.store.Weather().Map(),
		Traffic:           snap.Traffic,
		Power:             snap.Power,
		Modal:             snap.Modal,
		AverageCongestion: s.derived.AverageCongestion(),
		Upload:            snap.Status,
		UploadLabel:       snap.Status.Display(),
		LastReplaced:      snap.LastReplaced,
		Version:           snap.Version,
		Timestamp:         s.clock.Now(),
	}
}

// GetSeries returns one series by its public name.
func (s *DashboardService) GetSeries(name string) (domain.Series, error) {
	id, ok := domain.ParseSeriesID(name)
	if !ok {
		return domain.Series{}, fmt.Errorf("dashboard: series %q: %w", name, store.ErrUnknownSeries)
	}
	return s.store.Get(id), nil
}

// GetKPIs returns the flat KPI map.
func (s *DashboardService) GetKPIs() map[string]any {
	return s.store.KPIs().Map()
}

// GetWeather returns the flat weather map.
func (s *DashboardService) GetWeather() map[string]any {
	return s.store.Weather().Map()
}

// AverageCongestion returns the derived average congestion index.
func (s *DashboardService) AverageCongestion() domain.CongestionSummary {
	return s.derived.AverageCongestion()
}

// UploadStatus returns the displayed upload label state.
func (s *DashboardService) UploadStatus() domain.UploadStatus {
	return s.store.Status()
}
