package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
)

// PostgresStore implements Store using PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store and applies migrations
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sweeps (
			id SERIAL PRIMARY KEY,
			started_at TIMESTAMP NOT NULL,
			host TEXT NOT NULL,
			procs INTEGER NOT NULL,
			data_file TEXT NOT NULL,
			chart_file TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sweep_runs (
			sweep_id INTEGER NOT NULL REFERENCES sweeps(id),
			variant INTEGER NOT NULL,
			threads INTEGER NOT NULL,
			reference DOUBLE PRECISION NOT NULL,
			measured DOUBLE PRECISION NOT NULL,
			speedup DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (sweep_id, variant, threads)
		);`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			slog.Debug("migration step failed", "error", err)
			return err
		}
	}
	return nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// SaveSweep inserts the sweep and its runs in one transaction.
func (s *PostgresStore) SaveSweep(ctx context.Context, rec SweepRecord) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO sweeps (started_at, host, procs, data_file, chart_file) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		rec.StartedAt, rec.Host, rec.Procs, rec.DataFile, rec.ChartFile).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert sweep: %w", err)
	}

	for _, r := range rec.Runs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO sweep_runs (sweep_id, variant, threads, reference, measured, speedup) VALUES ($1, $2, $3, $4, $5, $6)`,
			id, r.Variant, r.Threads, r.Reference, r.Measured, r.Speedup)
		if err != nil {
			return 0, fmt.Errorf("failed to insert run v%d/t%d: %w", r.Variant, r.Threads, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListSweeps retrieves the most recent sweeps
func (s *PostgresStore) ListSweeps(ctx context.Context, limit int) ([]SweepRecord, error) {
	query := `SELECT s.id, s.started_at, s.host, s.procs, s.data_file, s.chart_file, COUNT(r.sweep_id)
		FROM sweeps s LEFT JOIN sweep_runs r ON r.sweep_id = s.id
		GROUP BY s.id ORDER BY s.id DESC LIMIT $1`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSweeps(rows)
}
