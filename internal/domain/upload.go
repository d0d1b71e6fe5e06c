package domain

import (
	"errors"
	"time"
)

// ErrNoFile is returned when an upload carries no file. Nothing is changed.
var ErrNoFile = errors.New("no file selected")

// UploadOutcome describes what an upload attempt did to the dashboard.
type UploadOutcome string

const (
	// OutcomeReplaced means one series was replaced with the file's rows.
	OutcomeReplaced UploadOutcome = "replaced"
	// OutcomeIgnored means the file matched no series or had no data rows.
	OutcomeIgnored UploadOutcome = "ignored"
	// OutcomeParseFailed means the file could not be read at all.
	OutcomeParseFailed UploadOutcome = "parse_failed"
)

// UploadLog is the audit entry recorded for every upload attempt.
// It never contains the uploaded rows themselves.
type UploadLog struct {
	ID          string        `json:"id"`
	FileName    string        `json:"file_name"`
	Series      SeriesID      `json:"series"`
	Outcome     UploadOutcome `json:"outcome"`
	Rows        int           `json:"rows"`
	NonNumeric  int           `json:"non_numeric"`
	SkippedRows int           `json:"skipped_rows"`
	UploadedAt  time.Time     `json:"uploaded_at"`
}

// UploadResult is returned to the uploader.
type UploadResult struct {
	UploadLog
	Warning string `json:"warning,omitempty"`
}

// UploadStatus is the displayed "last uploaded file" label.
type UploadStatus struct {
	FileName   string    `json:"file_name,omitempty"`
	Uploaded   bool      `json:"uploaded"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Display renders the status line shown under the upload button.
func (s UploadStatus) Display() string {
	if !s.Uploaded {
		return "No CSV uploaded"
	}
	return "Loaded: " + s.FileName
}
