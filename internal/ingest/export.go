package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/smartcity/dashboard/internal/domain"
)

// WriteCSV writes s as a comma-separated file with the header Classify
// recognizes, so the output can be uploaded again.
func WriteCSV(w io.Writer, s domain.Series) error {
	label, value := s.ID.Columns()
	if label == "" {
		return fmt.Errorf("ingest: cannot export series %q", s.ID)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{label, value}); err != nil {
		return fmt.Errorf("ingest: failed to write header: %w", err)
	}

	write := func(l string, v float64) error {
		return cw.Write([]string{l, formatCell(v)})
	}
	var err error
	switch s.ID {
	case domain.SeriesTraffic:
		for _, r := range s.Traffic {
			if err = write(r.Day, r.CongestIndex); err != nil {
				break
			}
		}
	case domain.SeriesPower:
		for _, r := range s.Power {
			if err = write(r.Hour, r.Usage); err != nil {
				break
			}
		}
	case domain.SeriesModal:
		for _, r := range s.Modal {
			if err = write(r.Mode, r.Share); err != nil {
				break
			}
		}
	}
	if err != nil {
		return fmt.Errorf("ingest: failed to write row: %w", err)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("ingest: failed to flush csv: %w", err)
	}
	return nil
}

func formatCell(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}
