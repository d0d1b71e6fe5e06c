package ingest

import (
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/smartcity/dashboard/internal/domain"
)

var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// CoerceStats summarizes a coercion pass.
type CoerceStats struct {
	Rows       int
	NonNumeric int
}

// Coerce maps every row to the record type of id. Rows are never dropped:
// the returned series has exactly len(rows) records. Coercing for
// domain.SeriesNone returns an empty series.
func Coerce(id domain.SeriesID, rows []domain.RawRow) (domain.Series, CoerceStats) {
	label, value := id.Columns()
	out := domain.Series{ID: id}
	stats := CoerceStats{}

	number := func(row domain.RawRow) float64 {
		raw, ok := row[value]
		n := ToNumber(raw, ok)
		if math.IsNaN(n) {
			stats.NonNumeric++
		}
		return n
	}

	switch id {
	case domain.SeriesTraffic:
		out.Traffic = make([]domain.TrafficRecord, len(rows))
		for i, row := range rows {
			out.Traffic[i] = domain.TrafficRecord{Day: row[label], CongestIndex: number(row)}
		}
	case domain.SeriesPower:
		out.Power = make([]domain.PowerRecord, len(rows))
		for i, row := range rows {
			out.Power[i] = domain.PowerRecord{Hour: row[label], Usage: number(row)}
		}
	case domain.SeriesModal:
		out.Modal = make([]domain.ModalRecord, len(rows))
		for i, row := range rows {
			out.Modal[i] = domain.ModalRecord{Mode: row[label], Share: number(row)}
		}
	default:
		return out, stats
	}

	stats.Rows = len(rows)
	return out, stats
}

// ToNumber converts a cell the way a browser's Number() converts a string.
// Surrounding whitespace is ignored, a blank cell is 0, decimal and exponent
// forms, Infinity, and 0x/0o/0b integer literals are accepted, and anything
// else is NaN. A missing cell (present == false) is NaN.
func ToNumber(raw string, present bool) float64 {
	if !present {
		return math.NaN()
	}

	s := strings.TrimFunc(raw, isNumberSpace)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	if len(s) > 2 && s[0] == '0' {
		if base := radix(s[1]); base != 0 {
			if s[2] == '+' || s[2] == '-' {
				return math.NaN()
			}
			n, ok := new(big.Int).SetString(s[2:], base)
			if !ok {
				return math.NaN()
			}
			f, _ := new(big.Float).SetInt(n).Float64()
			return f
		}
	}

	if !decimalLiteral.MatchString(s) {
		return math.NaN()
	}
	// Out-of-range literals come back as ±Inf with ErrRange, which is what we want.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !isRangeErr(err) {
		return math.NaN()
	}
	return f
}

// isNumberSpace reports the characters Number() strips around a numeric
// string: line terminators, the BOM, and every space separator. U+0085 is
// not among them.
func isNumberSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', '\u2028', '\u2029', '\ufeff':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

func radix(c byte) int {
	switch c {
	case 'x', 'X':
		return 16
	case 'o', 'O':
		return 8
	case 'b', 'B':
		return 2
	default:
		return 0
	}
}

func isRangeErr(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}
