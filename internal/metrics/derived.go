// Package metrics computes values derived from the current series, such as
// the average congestion index shown in the Traffic Index card.
package metrics

import (
	"math"
	"math/big"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/smartcity/dashboard/internal/domain"
	"github.com/smartcity/dashboard/internal/observability"
	"github.com/smartcity/dashboard/pkg/utils"
)

// AverageCongestion is the arithmetic mean of CongestIndex. A NaN value adds
// 0 to the sum but still counts in the divisor, so unparseable rows pull the
// mean down. An empty series averages to 0.
func AverageCongestion(records []domain.TrafficRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	values := make([]float64, len(records))
	for i, r := range records {
		if !math.IsNaN(r.CongestIndex) {
			values[i] = r.CongestIndex
		}
	}
	return stat.Mean(values, nil)
}

// FormatTwoDecimals renders v with two decimals the way the dashboard
// displays it, including "NaN" and "Infinity".
func FormatTwoDecimals(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0.00"
	}
	if s, ok := formatTie(v); ok {
		return s
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// formatTie handles values lying exactly halfway between two candidates.
// The dashboard picks the one further from zero; strconv rounds to even.
func formatTie(v float64) (string, bool) {
	x := new(big.Float).SetPrec(256).SetFloat64(math.Abs(v))
	x.Mul(x, big.NewFloat(100))
	n, _ := x.Int(nil)
	frac := new(big.Float).SetPrec(256).Sub(x, new(big.Float).SetInt(n))
	if frac.Cmp(big.NewFloat(0.5)) != 0 {
		return "", false
	}

	digits := n.Add(n, big.NewInt(1)).String()
	for len(digits) < 3 {
		digits = "0" + digits
	}
	out := digits[:len(digits)-2] + "." + digits[len(digits)-2:]
	if v < 0 {
		out = "-" + out
	}
	return out, true
}

// Source is the part of the store Derived needs.
type Source interface {
	Current(id domain.SeriesID) domain.SeriesChange
	Subscribe(fn func(domain.SeriesChange)) (unsubscribe func())
}

// Derived keeps the average congestion in step with the traffic series.
type Derived struct {
	mu      sync.RWMutex
	summary domain.CongestionSummary
	version uint64
	seeded  bool

	metrics     *observability.Metrics
	logger      *zap.Logger
	unsubscribe func()
}

// NewDerived subscribes to src and computes the initial value.
func NewDerived(src Source, m *observability.Metrics, logger *zap.Logger) *Derived {
	d := &Derived{metrics: m, logger: logger}
	d.unsubscribe = src.Subscribe(func(c domain.SeriesChange) {
		if c.Series.ID == domain.SeriesTraffic {
			d.apply(c)
		}
	})
	d.apply(src.Current(domain.SeriesTraffic))
	return d
}

// AverageCongestion returns the current derived summary.
func (d *Derived) AverageCongestion() domain.CongestionSummary {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.summary
}

// Close stops following the store.
func (d *Derived) Close() {
	d.unsubscribe()
}

// apply recomputes from c unless a newer traffic version was already applied.
// Notifications from concurrent replacements may arrive out of order.
func (d *Derived) apply(c domain.SeriesChange) {
	avg := AverageCongestion(c.Series.Traffic)

	d.mu.Lock()
	if d.seeded && c.Version < d.version {
		d.mu.Unlock()
		return
	}
	d.seeded = true
	d.version = c.Version
	value := 0.0
	if !math.IsNaN(avg) && !math.IsInf(avg, 0) {
		value = utils.RoundTo(avg, 2)
	}
	d.summary = domain.CongestionSummary{
		Value:   value,
		Display: FormatTwoDecimals(avg),
		Records: len(c.Series.Traffic),
	}
	// Set under the lock so the gauge cannot fall behind summary.
	if d.metrics != nil {
		d.metrics.AverageCongestion.Set(avg)
	}
	d.mu.Unlock()

	d.logger.Debug("average congestion recomputed",
		zap.Uint64("version", c.Version),
		zap.String("average", FormatTwoDecimals(avg)),
		zap.Int("records", len(c.Series.Traffic)),
	)
}
