package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smartcity/dashboard/internal/domain"
)

const createUploadLogs = `
	CREATE TABLE IF NOT EXISTS upload_logs (
		id           TEXT PRIMARY KEY,
		file_name    TEXT NOT NULL,
		series       TEXT NOT NULL,
		outcome      TEXT NOT NULL,
		row_count    INTEGER NOT NULL,
		non_numeric  INTEGER NOT NULL,
		skipped_rows INTEGER NOT NULL,
		uploaded_at  TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS upload_logs_uploaded_at_idx ON upload_logs (uploaded_at DESC);
`

// PostgresRepository implements domain.UploadLogRepository
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the upload_logs table if it does not exist
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createUploadLogs); err != nil {
		return fmt.Errorf("postgres: failed to create upload_logs: %w", err)
	}
	return nil
}

// SaveUploadLog persists one upload attempt to PostgreSQL
func (r *PostgresRepository) SaveUploadLog(ctx context.Context, entry domain.UploadLog) error {
	query := `
		INSERT INTO upload_logs (
			id, file_name, series, outcome, row_count, non_numeric, skipped_rows, uploaded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		entry.ID, entry.FileName, string(entry.Series), string(entry.Outcome),
		entry.Rows, entry.NonNumeric, entry.SkippedRows, entry.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save upload log: %w", err)
	}

	return nil
}

// RecentUploads retrieves the newest upload log entries from PostgreSQL
func (r *PostgresRepository) RecentUploads(ctx context.Context, limit int) ([]domain.UploadLog, error) {
	query := `
		SELECT id, file_name, series, outcome, row_count, non_numeric, skipped_rows, uploaded_at
		FROM upload_logs
		ORDER BY uploaded_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query upload logs: %w", err)
	}
	defer rows.Close()

	results := make([]domain.UploadLog, 0, limit)
	for rows.Next() {
		var (
			u               domain.UploadLog
			series, outcome string
		)
		err := rows.Scan(
			&u.ID, &u.FileName, &series, &outcome,
			&u.Rows, &u.NonNumeric, &u.SkippedRows, &u.UploadedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan upload log row: %w", err)
		}
		u.Series = domain.SeriesID(series)
		u.Outcome = domain.UploadOutcome(outcome)
		results = append(results, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to read upload logs: %w", err)
	}

	return results, nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}
