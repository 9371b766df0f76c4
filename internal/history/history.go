// File: internal/history/history.go
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/nullpath9/droidforge/internal/diagnosis"
)

// DBPool abstracts the pgxpool.Pool so tests can substitute a mock.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Run is one recorded diagnosis, as read back from the database.
type Run struct {
	ID            string
	LogPath       string
	IncidentCount int
	CreatedAt     time.Time
}

// CategoryCount is a running total for one failure category.
type CategoryCount struct {
	Category string
	Total    int64
	LastSeen time.Time
}

// Store persists diagnosis runs to PostgreSQL.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

// Connect opens a connection pool for the given database URL.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	return pool, nil
}

// New creates a store and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{
		pool: pool,
		log:  logger.Named("history"),
	}, nil
}

// EnsureSchema creates the history tables when they do not exist yet. CI
// runners often start against a scratch database.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
            id TEXT PRIMARY KEY,
            log_path TEXT NOT NULL,
            incident_count INTEGER NOT NULL,
            created_at TIMESTAMPTZ NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS run_incidents (
            run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
            ordinal INTEGER NOT NULL,
            first_line INTEGER NOT NULL,
            category TEXT NOT NULL,
            advice TEXT NOT NULL,
            lines JSONB NOT NULL,
            PRIMARY KEY (run_id, ordinal)
        );`,
		`CREATE TABLE IF NOT EXISTS category_totals (
            category TEXT PRIMARY KEY,
            total BIGINT NOT NULL,
            last_seen TIMESTAMPTZ NOT NULL
        );`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure history schema: %w", err)
		}
	}
	return nil
}

// RecordRun stores a finished diagnosis inside a single transaction: the
// run row, its incidents via COPY, and the per-category running totals.
func (s *Store) RecordRun(ctx context.Context, report *diagnosis.Report) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// Rollback after a successful commit reports ErrTxClosed.
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			s.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	now := time.Now().UTC()

	_, err = tx.Exec(ctx,
		`INSERT INTO runs (id, log_path, incident_count, created_at) VALUES ($1, $2, $3, $4);`,
		report.RunID, report.LogPath, len(report.Incidents), now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if len(report.Incidents) > 0 {
		if err := s.copyIncidents(ctx, tx, report); err != nil {
			return err
		}
		if err := s.bumpCategoryTotals(ctx, tx, report.Incidents, now); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) copyIncidents(ctx context.Context, tx pgx.Tx, report *diagnosis.Report) error {
	rows := make([][]interface{}, len(report.Incidents))
	for i, incident := range report.Incidents {
		lines, err := json.Marshal(incident.Lines)
		if err != nil {
			return fmt.Errorf("failed to encode incident lines: %w", err)
		}
		rows[i] = []interface{}{
			report.RunID, incident.Ordinal, incident.Line,
			incident.Category, incident.Advice, lines,
		}
	}

	copyCount, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"run_incidents"},
		[]string{"run_id", "ordinal", "first_line", "category", "advice", "lines"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy incidents: %w", err)
	}
	if int(copyCount) != len(report.Incidents) {
		return fmt.Errorf("mismatch in copied incident count: expected %d, got %d", len(report.Incidents), copyCount)
	}
	return nil
}

func (s *Store) bumpCategoryTotals(ctx context.Context, tx pgx.Tx, incidents []diagnosis.ClassifiedIncident, now time.Time) error {
	const sqlBump = `
        INSERT INTO category_totals (category, total, last_seen)
        VALUES ($1, 1, $2)
        ON CONFLICT (category) DO UPDATE SET
            total = category_totals.total + 1,
            last_seen = EXCLUDED.last_seen;
    `

	batch := &pgx.Batch{}
	for _, incident := range incidents {
		batch.Queue(sqlBump, incident.Category, now)
	}

	br := tx.SendBatch(ctx, batch)
	if br == nil {
		return fmt.Errorf("failed to send batch: batch results is nil")
	}
	defer func() {
		_ = br.Close()
	}()

	for i := range incidents {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to bump total for category %q: %w", incidents[i].Category, err)
		}
	}
	return nil
}

// RecentRuns returns the newest runs first, at most limit of them.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
        SELECT id, log_path, incident_count, created_at
        FROM runs
        ORDER BY created_at DESC
        LIMIT $1;
    `
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.LogPath, &r.IncidentCount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return runs, nil
}

// TopCategories returns the most frequent failure categories across all
// recorded runs.
func (s *Store) TopCategories(ctx context.Context, limit int) ([]CategoryCount, error) {
	query := `
        SELECT category, total, last_seen
        FROM category_totals
        ORDER BY total DESC, category ASC
        LIMIT $1;
    `
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query category totals: %w", err)
	}
	defer rows.Close()

	var counts []CategoryCount
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Total, &c.LastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return counts, nil
}
