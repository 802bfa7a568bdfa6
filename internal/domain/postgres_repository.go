package domain

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"listing-qa/models"
)

var postgresDialect = dialect{
	name:        "postgres",
	placeholder: dollarPlaceholder,
	schema: []string{
		`CREATE TABLE IF NOT EXISTS qa_runs (
			id BIGSERIAL PRIMARY KEY,
			url TEXT NOT NULL,
			started_at TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ NOT NULL,
			script_data JSONB,
			error TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS qa_audits (
			id BIGSERIAL PRIMARY KEY,
			run_id BIGINT NOT NULL REFERENCES qa_runs(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			status TEXT NOT NULL,
			comment TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS qa_currency_results (
			id BIGSERIAL PRIMARY KEY,
			run_id BIGINT NOT NULL REFERENCES qa_runs(id) ON DELETE CASCADE,
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

type PostgresRepository struct {
	w *sqlRunWriter
}

// NewPostgresRepository wraps an open lib/pq connection and creates the
// tables it writes to.
func NewPostgresRepository(ctx context.Context, db *sql.DB) (*PostgresRepository, error) {
	w := &sqlRunWriter{db: db, d: postgresDialect}
	if err := w.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return &PostgresRepository{w: w}, nil
}

func (r *PostgresRepository) Save(ctx context.Context, run *models.Run) error {
	return r.w.saveRun(ctx, run)
}
