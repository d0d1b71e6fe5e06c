// Command csv2json runs an uploaded-style CSV file through the dashboard's
// ingest pipeline and prints the series it would replace.
//
//	csv2json [-strict] [-delimiter ,] FILE
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/smartcity/dashboard/internal/domain"
	"github.com/smartcity/dashboard/internal/ingest"
)

type output struct {
	Series     domain.SeriesID `json:"series"`
	Records    any             `json:"records"`
	Rows       int             `json:"rows"`
	NonNumeric int             `json:"non_numeric"`
	Skipped    int             `json:"skipped_rows"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "csv2json:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("csv2json", flag.ContinueOnError)
	strict := fs.Bool("strict", false, "classify by column presence instead of a truthy first value")
	delimiter := fs.String("delimiter", "", "field delimiter (sniffed from the header when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: csv2json [-strict] [-delimiter ,] FILE")
	}

	var opts ingest.ParseOptions
	switch *delimiter {
	case "":
	case `\t`, "tab":
		opts.Delimiter = '\t'
	default:
		d, size := utf8.DecodeRuneInString(*delimiter)
		if size != len(*delimiter) {
			return fmt.Errorf("delimiter must be a single character, got %q", *delimiter)
		}
		opts.Delimiter = d
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	parsed := ingest.ParseAll(f, opts)
	if parsed.Err != nil {
		return fmt.Errorf("read %s: %w", fs.Arg(0), parsed.Err)
	}

	mode := ingest.KeyCheckTruthy
	if *strict {
		mode = ingest.KeyCheckPresence
	}
	var first domain.RawRow
	if len(parsed.Rows) > 0 {
		first = parsed.Rows[0]
	}
	id := ingest.Classify(first, mode)
	series, stats := ingest.Coerce(id, parsed.Rows)

	out := output{
		Series:     id,
		Records:    series.Records(),
		Rows:       stats.Rows,
		NonNumeric: stats.NonNumeric,
		Skipped:    parsed.Skipped,
	}
	if out.Records == nil {
		out.Records = []any{}
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
