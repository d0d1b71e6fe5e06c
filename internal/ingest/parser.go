package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/smartcity/dashboard/internal/domain"
)

// candidateDelimiters are tried in order; earlier entries win ties.
var candidateDelimiters = []rune{',', ';', '\t', '|'}

// ParseOptions configures a RowReader.
type ParseOptions struct {
	// Delimiter overrides sniffing when non-zero.
	Delimiter rune
}

// RowReader yields one RawRow per data line of a delimited file whose first
// non-blank line is the header. It cannot be rewound.
type RowReader struct {
	csv     *csv.Reader
	header  []string
	skipped int
	err     error
	done    bool
}

// NewRowReader reads the header line and prepares the row sequence.
// An input without any header line produces a reader with no rows.
func NewRowReader(r io.Reader, opts ParseOptions) (*RowReader, error) {
	br := bufio.NewReader(r)

	first, err := firstLine(br)
	if err != nil {
		return nil, fmt.Errorf("ingest: failed to read header: %w", err)
	}
	if first == "" {
		return &RowReader{done: true}, nil
	}
	first = strings.TrimPrefix(first, "\ufeff")

	delim := opts.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(first)
	}
	if !validDelimiter(delim) {
		return nil, fmt.Errorf("ingest: invalid delimiter %q", delim)
	}

	cr := csv.NewReader(io.MultiReader(strings.NewReader(first), br))
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rr := &RowReader{csv: cr}
	header, err := cr.Read()
	switch {
	case errors.Is(err, io.EOF):
		rr.done = true
	case err != nil:
		var pe *csv.ParseError
		if !errors.As(err, &pe) {
			return nil, fmt.Errorf("ingest: failed to read header: %w", err)
		}
		rr.done = true
	default:
		rr.header = header
	}
	return rr, nil
}

// Header returns the column names in file order.
func (r *RowReader) Header() []string {
	return r.header
}

// Next returns the next data row. The second result is false once the input
// is exhausted or an I/O error occurred; check Err afterwards.
func (r *RowReader) Next() (domain.RawRow, bool) {
	for !r.done {
		record, err := r.csv.Read()
		if errors.Is(err, io.EOF) {
			r.done = true
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				r.skipped++
				continue
			}
			r.err = fmt.Errorf("ingest: failed to read row: %w", err)
			r.done = true
			break
		}
		return r.rowFrom(record), true
	}
	return nil, false
}

// Skipped reports how many lines the CSV reader rejected.
func (r *RowReader) Skipped() int {
	return r.skipped
}

// Err reports an I/O failure of the underlying reader, if any.
func (r *RowReader) Err() error {
	return r.err
}

func (r *RowReader) rowFrom(record []string) domain.RawRow {
	row := make(domain.RawRow, len(r.header))
	for i, name := range r.header {
		if i >= len(record) {
			break
		}
		row[name] = record[i]
	}
	return row
}

// ParseResult is the completion value of a parse.
type ParseResult struct {
	Rows    []domain.RawRow
	Header  []string
	Skipped int
	Err     error
}

// ParseAll drains a RowReader over r.
func ParseAll(r io.Reader, opts ParseOptions) ParseResult {
	rr, err := NewRowReader(r, opts)
	if err != nil {
		return ParseResult{Err: err}
	}

	var rows []domain.RawRow
	for {
		row, ok := rr.Next()
		if !ok {
			break
		}
		rows = append(rows, row)
	}
	return ParseResult{
		Rows:    rows,
		Header:  rr.Header(),
		Skipped: rr.Skipped(),
		Err:     rr.Err(),
	}
}

// ParseAsync parses r on its own goroutine and delivers exactly one result.
// There is no cancellation: once started the parse runs to completion, so r
// must stay readable until the result arrives.
func ParseAsync(r io.Reader, opts ParseOptions) <-chan ParseResult {
	done := make(chan ParseResult, 1)
	go func() {
		done <- ParseAll(r, opts)
	}()
	return done
}

// firstLine returns the first non-blank line including its terminator,
// or "" at end of input.
func firstLine(br *bufio.Reader) (string, error) {
	for {
		line, err := br.ReadString('\n')
		if strings.TrimRight(line, "\r\n") != "" {
			return line, nil
		}
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		if err != nil {
			return "", err
		}
	}
}

func sniffDelimiter(line string) rune {
	best, bestCount := ',', 0
	for _, d := range candidateDelimiters {
		if n := strings.Count(line, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func validDelimiter(r rune) bool {
	return r != 0 && r != '"' && r != '\r' && r != '\n' && r != utf8.RuneError
}
