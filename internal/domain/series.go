package domain

import (
	"encoding/json"
	"math"
)

// SeriesID identifies one of the independently replaceable dashboard series.
type SeriesID string

const (
	SeriesNone    SeriesID = "none"
	SeriesTraffic SeriesID = "traffic"
	SeriesPower   SeriesID = "power"
	SeriesModal   SeriesID = "modal"
)

// AllSeries lists the replaceable series in classification priority order.
var AllSeries = []SeriesID{SeriesTraffic, SeriesPower, SeriesModal}

// ParseSeriesID maps a path segment such as "power" to its SeriesID.
func ParseSeriesID(s string) (SeriesID, bool) {
	for _, id := range AllSeries {
		if string(id) == s {
			return id, true
		}
	}
	return SeriesNone, false
}

// Columns returns the label column and the numeric column a file must carry
// to be recognized as this series.
func (id SeriesID) Columns() (label, value string) {
	switch id {
	case SeriesTraffic:
		return "day", "congestIndex"
	case SeriesPower:
		return "hour", "usage"
	case SeriesModal:
		return "mode", "share"
	default:
		return "", ""
	}
}

// RawRow maps a column name to its raw cell text for one line of an uploaded file.
// A column missing from a short line is absent from the map.
type RawRow map[string]string

// TrafficRecord is one day of the weekly congestion series.
type TrafficRecord struct {
	Day          string
	CongestIndex float64
}

// PowerRecord is one sample of the power usage series. Hour is a two-digit label.
type PowerRecord struct {
	Hour  string
	Usage float64
}

// ModalRecord is one transport mode's share of trips.
type ModalRecord struct {
	Mode  string
	Share float64
}

// Numeric fields serialize NaN and infinities as null, the same way a
// browser's JSON.stringify does, so charts can render them as gaps.
func jsonNumber(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func (r TrafficRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Day          string   `json:"day"`
		CongestIndex *float64 `json:"congestIndex"`
	}{r.Day, jsonNumber(r.CongestIndex)})
}

func (r PowerRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Hour  string   `json:"hour"`
		Usage *float64 `json:"usage"`
	}{r.Hour, jsonNumber(r.Usage)})
}

func (r ModalRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Mode  string   `json:"mode"`
		Share *float64 `json:"share"`
	}{r.Mode, jsonNumber(r.Share)})
}

// Series is a closed variant over the three record sequences. Only the slice
// matching ID is populated.
type Series struct {
	ID      SeriesID
	Traffic []TrafficRecord
	Power   []PowerRecord
	Modal   []ModalRecord
}

// Len returns the number of records in the populated slice.
func (s Series) Len() int {
	switch s.ID {
	case SeriesTraffic:
		return len(s.Traffic)
	case SeriesPower:
		return len(s.Power)
	case SeriesModal:
		return len(s.Modal)
	default:
		return 0
	}
}

// Records returns the populated slice for rendering, or nil for SeriesNone.
func (s Series) Records() any {
	switch s.ID {
	case SeriesTraffic:
		return s.Traffic
	case SeriesPower:
		return s.Power
	case SeriesModal:
		return s.Modal
	default:
		return nil
	}
}

// SeriesChange is delivered to store subscribers after a replacement.
// Version increases by one on every replacement of any series.
type SeriesChange struct {
	Series  Series
	Version uint64
}
