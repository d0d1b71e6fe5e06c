// Package store holds the dashboard's three series and static snapshots for
// the lifetime of the process.
//
// Each series is replaced as a whole. Readers never observe a mix of old and
// new records because the swap happens under a write lock. Nothing guards
// against overlapping uploads: whichever replacement commits last wins.
package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/smartcity/dashboard/internal/domain"
)

// ErrUnknownSeries is returned by Replace for domain.SeriesNone or an unknown id.
var ErrUnknownSeries = errors.New("unknown series")

// Snapshot is a consistent view of all mutable state.
type Snapshot struct {
	Traffic      []domain.TrafficRecord
	Power        []domain.PowerRecord
	Modal        []domain.ModalRecord
	Version      uint64
	LastReplaced domain.SeriesID
	Status       domain.UploadStatus
}

// Store is the DatasetStore.
type Store struct {
	mu      sync.RWMutex
	traffic []domain.TrafficRecord
	power   []domain.PowerRecord
	modal   []domain.ModalRecord
	version uint64
	last    domain.SeriesID
	status  domain.UploadStatus

	kpis    domain.KpiSnapshot
	weather domain.WeatherSnapshot
	clock   clockwork.Clock

	subMu   sync.Mutex
	subs    map[int]func(domain.SeriesChange)
	nextSub int
}

// New creates a store seeded with the built-in sample series.
func New(kpis domain.KpiSnapshot, weather domain.WeatherSnapshot, clock clockwork.Clock) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{
		traffic: domain.SampleTraffic(),
		power:   domain.SamplePower(),
		modal:   domain.SampleModal(),
		last:    domain.SeriesNone,
		kpis:    kpis,
		weather: weather,
		clock:   clock,
		subs:    make(map[int]func(domain.SeriesChange)),
	}
}

// Replace discards the current records of series.ID and installs series in
// one step, then notifies subscribers. The store takes ownership of the
// slice. Callers only replace with a non-empty series: classification has
// already seen a first row, so this is not re-checked here.
func (s *Store) Replace(series domain.Series) (domain.SeriesChange, error) {
	s.mu.Lock()
	switch series.ID {
	case domain.SeriesTraffic:
		s.traffic = series.Traffic
	case domain.SeriesPower:
		s.power = series.Power
	case domain.SeriesModal:
		s.modal = series.Modal
	default:
		s.mu.Unlock()
		return domain.SeriesChange{}, fmt.Errorf("store: replace %q: %w", series.ID, ErrUnknownSeries)
	}
	s.version++
	s.last = series.ID
	change := domain.SeriesChange{Series: series, Version: s.version}
	s.mu.Unlock()

	s.notify(change)
	return change, nil
}

// Get returns the current records of id. The slices are shared with the
// store and must not be modified.
func (s *Store) Get(id domain.SeriesID) domain.Series {
	return s.Current(id).Series
}

// Current returns the records of id together with the store version they belong to.
func (s *Store) Current(id domain.SeriesID) domain.SeriesChange {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := domain.Series{ID: id}
	switch id {
	case domain.SeriesTraffic:
		out.Traffic = s.traffic
	case domain.SeriesPower:
		out.Power = s.power
	case domain.SeriesModal:
		out.Modal = s.modal
	default:
		out.ID = domain.SeriesNone
	}
	return domain.SeriesChange{Series: out, Version: s.version}
}

func (s *Store) Traffic() []domain.TrafficRecord { return s.Get(domain.SeriesTraffic).Traffic }
func (s *Store) Power() []domain.PowerRecord     { return s.Get(domain.SeriesPower).Power }
func (s *Store) Modal() []domain.ModalRecord     { return s.Get(domain.SeriesModal).Modal }

// Snapshot returns all series and the upload status under a single read lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Traffic:      s.traffic,
		Power:        s.power,
		Modal:        s.modal,
		Version:      s.version,
		LastReplaced: s.last,
		Status:       s.status,
	}
}

// LastReplaced reports the most recently replaced series, or SeriesNone
// before the first replacement.
func (s *Store) LastReplaced() domain.SeriesID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// RecordUpload sets the displayed file name. It is called for every upload
// attempt, whether or not a series ends up replaced.
func (s *Store) RecordUpload(fileName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = domain.UploadStatus{
		FileName:   fileName,
		Uploaded:   true,
		UploadedAt: s.clock.Now(),
	}
}

// Status returns the displayed upload status.
func (s *Store) Status() domain.UploadStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Store) KPIs() domain.KpiSnapshot         { return s.kpis }
func (s *Store) Weather() domain.WeatherSnapshot { return s.weather }

// Subscribe registers fn to run after every replacement. Callbacks run on the
// replacing goroutine, outside the store lock, and may read the store.
func (s *Store) Subscribe(fn func(domain.SeriesChange)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(change domain.SeriesChange) {
	s.subMu.Lock()
	fns := make([]func(domain.SeriesChange), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}
