package store_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/dashboard/internal/domain"
	"github.com/smartcity/dashboard/internal/store"
)

func newTestStore(t *testing.T) (*store.Store, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC))
	return store.New(domain.SampleKPIs(), domain.SampleWeather(), clock), clock
}

func TestNew_SeedsSampleSeries(t *testing.T) {
	s, _ := newTestStore(t)

	assert.Equal(t, domain.SampleTraffic(), s.Traffic())
	assert.Equal(t, domain.SamplePower(), s.Power())
	assert.Equal(t, domain.SampleModal(), s.Modal())
	assert.Equal(t, domain.SeriesNone, s.LastReplaced())
	assert.False(t, s.Status().Uploaded)
	assert.Equal(t, "No CSV uploaded", s.Status().Display())
}

func TestReplace_PowerLeavesOtherSeriesAlone(t *testing.T) {
	s, _ := newTestStore(t)
	traffic, modal := s.Traffic(), s.Modal()

	newPower := []domain.PowerRecord{{Hour: "01", Usage: 90}}
	change, err := s.Replace(domain.Series{ID: domain.SeriesPower, Power: newPower})
	require.NoError(t, err)

	assert.Equal(t, uint64(1), change.Version)
	assert.Equal(t, newPower, s.Power())
	assert.Equal(t, traffic, s.Traffic())
	assert.Equal(t, modal, s.Modal())
	assert.Equal(t, domain.SeriesPower, s.LastReplaced())
}

func TestReplace_WholeSeriesIsDiscarded(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Replace(domain.Series{ID: domain.SeriesTraffic, Traffic: []domain.TrafficRecord{{Day: "Mon", CongestIndex: 1}}})
	require.NoError(t, err)

	assert.Equal(t, []domain.TrafficRecord{{Day: "Mon", CongestIndex: 1}}, s.Traffic())
}

func TestReplace_UnknownSeries(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Replace(domain.Series{ID: domain.SeriesNone})
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrUnknownSeries))
	assert.Equal(t, domain.SeriesNone, s.LastReplaced())
	assert.Equal(t, uint64(0), s.Snapshot().Version)
}

func TestGet_UnknownSeriesIsEmpty(t *testing.T) {
	s, _ := newTestStore(t)
	got := s.Get(domain.SeriesID("weather"))
	assert.Equal(t, domain.SeriesNone, got.ID)
	assert.Equal(t, 0, got.Len())
}

func TestSubscribe_NotifiedAfterReplace(t *testing.T) {
	s, _ := newTestStore(t)

	var got []domain.SeriesChange
	unsubscribe := s.Subscribe(func(c domain.SeriesChange) {
		// The new data is already visible when subscribers run.
		assert.Equal(t, c.Series.Modal, s.Modal())
		got = append(got, c)
	})

	modal := []domain.ModalRecord{{Mode: "Metro", Share: 40}}
	_, err := s.Replace(domain.Series{ID: domain.SeriesModal, Modal: modal})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, domain.SeriesModal, got[0].Series.ID)
	assert.Equal(t, uint64(1), got[0].Version)

	unsubscribe()
	_, err = s.Replace(domain.Series{ID: domain.SeriesModal, Modal: modal})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRecordUpload(t *testing.T) {
	s, clock := newTestStore(t)

	s.RecordUpload("week.csv")

	status := s.Status()
	assert.True(t, status.Uploaded)
	assert.Equal(t, "week.csv", status.FileName)
	assert.Equal(t, clock.Now(), status.UploadedAt)
	assert.Equal(t, "Loaded: week.csv", status.Display())
}

func TestSnapshots_AreStatic(t *testing.T) {
	s, _ := newTestStore(t)

	kpis := s.KPIs()
	kpis.Population = "changed"
	assert.Equal(t, "12.3M", s.KPIs().Population)
	assert.Equal(t, 6.8, s.KPIs().Map()["trafficIndex"])
	assert.Equal(t, "Sunny", s.Weather().Tomorrow.Condition)
}

func TestReplace_ConcurrentLastWriteWins(t *testing.T) {
	s, _ := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = s.Replace(domain.Series{ID: domain.SeriesPower, Power: []domain.PowerRecord{{Hour: "00", Usage: float64(i)}}})
		}(i)
	}
	wg.Wait()

	snap := s.Snapshot()
	assert.Equal(t, uint64(50), snap.Version)
	require.Len(t, snap.Power, 1)
	assert.Equal(t, domain.SampleTraffic(), snap.Traffic)
}
