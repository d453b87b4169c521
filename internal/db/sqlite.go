package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at path and applies migrations
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sweeps (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at DATETIME NOT NULL,
			host TEXT NOT NULL,
			procs INTEGER NOT NULL,
			data_file TEXT NOT NULL,
			chart_file TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sweep_runs (
			sweep_id INTEGER NOT NULL REFERENCES sweeps(id),
			variant INTEGER NOT NULL,
			threads INTEGER NOT NULL,
			reference REAL NOT NULL,
			measured REAL NOT NULL,
			speedup REAL NOT NULL,
			PRIMARY KEY (sweep_id, variant, threads)
		);`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveSweep inserts the sweep and its runs in one transaction.
func (s *SQLiteStore) SaveSweep(ctx context.Context, rec SweepRecord) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO sweeps (started_at, host, procs, data_file, chart_file) VALUES (?, ?, ?, ?, ?)`,
		rec.StartedAt, rec.Host, rec.Procs, rec.DataFile, rec.ChartFile)
	if err != nil {
		return 0, fmt.Errorf("failed to insert sweep: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, r := range rec.Runs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO sweep_runs (sweep_id, variant, threads, reference, measured, speedup) VALUES (?, ?, ?, ?, ?, ?)`,
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
func (s *SQLiteStore) ListSweeps(ctx context.Context, limit int) ([]SweepRecord, error) {
	query := `SELECT s.id, s.started_at, s.host, s.procs, s.data_file, s.chart_file, COUNT(r.sweep_id)
		FROM sweeps s LEFT JOIN sweep_runs r ON r.sweep_id = s.id
		GROUP BY s.id ORDER BY s.id DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSweeps(rows)
}

func scanSweeps(rows *sql.Rows) ([]SweepRecord, error) {
	var results []SweepRecord
	for rows.Next() {
		var rec SweepRecord
		if err := rows.Scan(&rec.ID, &rec.StartedAt, &rec.Host, &rec.Procs, &rec.DataFile, &rec.ChartFile, &rec.RunCount); err != nil {
			return nil, err
		}
		results = append(results, rec)
	}
	return results, rows.Err()
}
