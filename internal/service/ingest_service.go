package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/smartcity/dashboard/internal/domain"
	"github.com/smartcity/dashboard/internal/ingest"
	"github.com/smartcity/dashboard/internal/observability"
)

const (
	warnNoRows       = "file has no data rows; nothing was replaced"
	warnUnrecognized = "columns match no known series (day/congestIndex, hour/usage, mode/share); nothing was replaced"
	warnParseFailed  = "file could not be read; nothing was replaced"
)

// IngestService runs the upload pipeline: parse, classify, coerce, replace.
type IngestService struct {
	store    DatasetStore
	repo     DataRepository
	metrics  *observability.Metrics
	logger   *zap.Logger
	clock    clockwork.Clock
	keyCheck ingest.KeyCheck
	parse    ingest.ParseOptions

	wgBg sync.WaitGroup // tracks background goroutines for graceful shutdown
}

// IngestOption customizes an IngestService.
type IngestOption func(*IngestService)

// WithKeyCheck selects how column presence is judged during classification.
func WithKeyCheck(k ingest.KeyCheck) IngestOption {
	return func(s *IngestService) { s.keyCheck = k }
}

// WithClock replaces the real clock, for tests.
func WithClock(c clockwork.Clock) IngestOption {
	return func(s *IngestService) { s.clock = c }
}

// WithParseOptions fixes the delimiter instead of sniffing it.
func WithParseOptions(o ingest.ParseOptions) IngestOption {
	return func(s *IngestService) { s.parse = o }
}

// NewIngestService creates a new ingest service
func NewIngestService(
	store DatasetStore,
	repo DataRepository,
	metrics *observability.Metrics,
	logger *zap.Logger,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		store:    store,
		repo:     repo,
		metrics:  metrics,
		logger:   logger,
		clock:    clockwork.NewRealClock(),
		keyCheck: ingest.KeyCheckTruthy,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload ingests one file. The displayed file name is recorded before
// anything else, so it changes even when the file is ignored. Malformed
// content never produces an error; the only error is domain.ErrNoFile for a
// missing file name, in which case nothing changes.
//
// Overlapping uploads are not coordinated. Each replaces its series when its
// parse finishes, so the last to finish wins, and the file name label may
// belong to a different upload than the data shown.
func (s *IngestService) Upload(ctx context.Context, fileName string, r io.Reader) (domain.UploadResult, error) {
	if fileName == "" || r == nil {
		return domain.UploadResult{}, domain.ErrNoFile
	}

	start := s.clock.Now()
	s.store.RecordUpload(fileName)

	result := domain.UploadResult{UploadLog: domain.UploadLog{
		ID:         uuid.NewString(),
		FileName:   fileName,
		Series:     domain.SeriesNone,
		UploadedAt: start,
	}}

	parsed := <-ingest.ParseAsync(r, s.parse)
	result.SkippedRows = parsed.Skipped
	result.Rows = len(parsed.Rows)

	switch {
	case parsed.Err != nil:
		result.Outcome = domain.OutcomeParseFailed
		result.Warning = warnParseFailed
		s.logger.Warn("upload could not be parsed",
			zap.String("file", fileName),
			zap.Error(parsed.Err),
		)
	default:
		s.apply(&result, parsed.Rows)
	}

	s.finish(result, s.clock.Since(start))
	return result, nil
}

// apply classifies and, when recognized, replaces the matching series.
// Nothing here blocks, so the replacement follows parsing without any other
// suspension point.
func (s *IngestService) apply(result *domain.UploadResult, rows []domain.RawRow) {
	var first domain.RawRow
	if len(rows) > 0 {
		first = rows[0]
	}

	id := ingest.Classify(first, s.keyCheck)
	if id == domain.SeriesNone {
		result.Outcome = domain.OutcomeIgnored
		result.Warning = warnUnrecognized
		if len(rows) == 0 {
			result.Warning = warnNoRows
		}
		return
	}

	series, stats := ingest.Coerce(id, rows)
	if _, err := s.store.Replace(series); err != nil {
		// Classify only returns ids the store accepts.
		s.logger.Error("series replacement rejected", zap.String("series", string(id)), zap.Error(err))
		result.Outcome = domain.OutcomeIgnored
		return
	}

	result.Series = id
	result.Outcome = domain.OutcomeReplaced
	result.Rows = stats.Rows
	result.NonNumeric = stats.NonNumeric
}

func (s *IngestService) finish(result domain.UploadResult, elapsed time.Duration) {
	s.logger.Info("upload processed",
		zap.String("id", result.ID),
		zap.String("file", result.FileName),
		zap.String("series", string(result.Series)),
		zap.String("outcome", string(result.Outcome)),
		zap.Int("rows", result.Rows),
		zap.Int("non_numeric", result.NonNumeric),
		zap.Int("skipped_rows", result.SkippedRows),
	)

	if s.metrics != nil {
		s.metrics.Uploads.WithLabelValues(string(result.Outcome), string(result.Series)).Inc()
		s.metrics.SkippedRows.Add(float64(result.SkippedRows))
		if result.Outcome == domain.OutcomeReplaced {
			s.metrics.RowsIngested.WithLabelValues(string(result.Series)).Add(float64(result.Rows))
			s.metrics.NonNumericCells.WithLabelValues(string(result.Series)).Add(float64(result.NonNumeric))
			s.metrics.IngestDuration.Observe(elapsed.Seconds())
		}
	}

	// Persist the audit entry asynchronously (tracked for graceful shutdown)
	s.wgBg.Add(1)
	go func() {
		defer s.wgBg.Done()
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.repo.SaveUploadLog(bgCtx, result.UploadLog); err != nil {
			s.logger.Warn("failed to save upload log", zap.String("id", result.ID), zap.Error(err))
		}
	}()
}

// WaitBackground blocks until all background save goroutines complete.
// Call during graceful shutdown to avoid dropped writes.
func (s *IngestService) WaitBackground() {
	s.wgBg.Wait()
}

// RecentUploads returns the newest audit entries.
func (s *IngestService) RecentUploads(ctx context.Context, limit int) ([]domain.UploadLog, error) {
	return s.repo.RecentUploads(ctx, limit)
}
