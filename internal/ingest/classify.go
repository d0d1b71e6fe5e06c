package ingest

import "github.com/smartcity/dashboard/internal/domain"

// KeyCheck selects how Classify decides that a recognized column is present.
type KeyCheck int

const (
	// KeyCheckTruthy requires the first row's value to be non-empty and not
	// a falsy literal. This reproduces the dashboard's original behavior.
	KeyCheckTruthy KeyCheck = iota
	// KeyCheckPresence only requires the column to exist in the first row.
	KeyCheckPresence
)

var falsyCells = map[string]bool{
	"":      true,
	"0":     true,
	"false": true,
}

// Classify decides which series a file represents from its first data row.
// A nil row means the file had no data rows. Checks run in the order of
// domain.AllSeries and the first match wins.
func Classify(first domain.RawRow, mode KeyCheck) domain.SeriesID {
	if first == nil {
		return domain.SeriesNone
	}
	for _, id := range domain.AllSeries {
		label, value := id.Columns()
		if hasKey(first, label, mode) && hasKey(first, value, mode) {
			return id
		}
	}
	return domain.SeriesNone
}

func hasKey(row domain.RawRow, key string, mode KeyCheck) bool {
	v, ok := row[key]
	if !ok {
		return false
	}
	if mode == KeyCheckPresence {
		return true
	}
	return !falsyCells[v]
}
