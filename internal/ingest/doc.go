// Package ingest turns an uploaded delimited text file into one typed
// dashboard series.
//
// The pipeline has three stages:
//
//	RowReader   bytes -> header-keyed RawRows (lazy, blank lines skipped)
//	Classify    first RawRow -> traffic | power | modal | none
//	Coerce      RawRows -> typed records, numeric cells converted per field
//
// Nothing in this package fails on malformed content. Rows the CSV reader
// rejects are skipped and counted; unparseable numeric cells become NaN.
// Only I/O errors from the underlying reader are reported.
//
// Classification looks at the first data row only. In the default
// KeyCheckTruthy mode a recognized column whose first value is empty, "0" or
// "false" does not count, so a file whose very first reading is zero is not
// recognized even when every later row is well formed. KeyCheckPresence
// checks column existence instead.
package ingest
