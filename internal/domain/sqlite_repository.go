package domain

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"listing-qa/models"
)

var sqliteDialect = dialect{
	name:        "sqlite",
	placeholder: questionPlaceholder,
	schema: []string{
		`PRAGMA foreign_keys = ON`,
		`CREATE TABLE IF NOT EXISTS qa_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			url TEXT NOT NULL,
			started_at DATETIME NOT NULL,
			finished_at DATETIME NOT NULL,
			script_data TEXT,
			error TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS qa_audits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES qa_runs(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			status TEXT NOT NULL,
			comment TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS qa_currency_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES qa_runs(id) ON DELETE CASCADE,
			currency TEXT NOT NULL,
			currency_code TEXT NOT NULL,
			element TEXT NOT NULL,
			initial_value TEXT NOT NULL,
			updated_value TEXT NOT NULL,
			verdict TEXT NOT NULL,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_qa_currency_results_run ON qa_currency_results(run_id)`,
	},
}

// SQLiteRepository keeps run history in a local database file.
type SQLiteRepository struct {
	db *sql.DB
	w  *sqlRunWriter
}

func NewSQLiteRepository(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// a single connection keeps the PRAGMA in effect for every statement
	db.SetMaxOpenConns(1)

	w := &sqlRunWriter{db: db, d: sqliteDialect}
	if err := w.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteRepository{db: db, w: w}, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, run *models.Run) error {
	return r.w.saveRun(ctx, run)
}

// RunCount returns the number of stored runs.
func (r *SQLiteRepository) RunCount(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM qa_runs`).Scan(&n)
	return n, err
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
