package domain

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"listing-qa/models"
)

// dialect captures the differences between the SQL sinks.
type dialect struct {
	name   string
	schema []string
	// placeholder returns the n-th (1-based) bind parameter.
	placeholder func(n int) string
}

func dollarPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

func questionPlaceholder(int) string { return "?" }

// sqlRunWriter stores runs into the qa_runs, qa_audits and
// qa_currency_results tables inside a single transaction.
type sqlRunWriter struct {
	db *sql.DB
	d  dialect
}

func (w *sqlRunWriter) ensureSchema(ctx context.Context) error {
	for _, stmt := range w.d.schema {
		if _, err := w.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure %s schema: %w", w.d.name, err)
		}
	}
	return nil
}

func (w *sqlRunWriter) insert(table string, cols ...string) string {
	marks := make([]string, len(cols))
	for i := range cols {
		marks[i] = w.d.placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(marks, ", "))
}

func (w *sqlRunWriter) saveRun(ctx context.Context, run *models.Run) (err error) {
	var scriptData []byte
	if run.ScriptData != nil {
		if scriptData, err = json.Marshal(run.ScriptData); err != nil {
			return fmt.Errorf("encode script data: %w", err)
		}
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var runID int64
	err = tx.QueryRowContext(ctx,
		w.insert("qa_runs", "url", "started_at", "finished_at", "script_data", "error")+" RETURNING id",
		run.URL, run.StartedAt.UTC(), run.FinishedAt.UTC(), nullString(string(scriptData)), nullString(run.Err),
	).Scan(&runID)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	auditStmt, err := tx.PrepareContext(ctx, w.insert("qa_audits", "run_id", "name", "status", "comment"))
	if err != nil {
		return fmt.Errorf("prepare audit insert: %w", err)
	}
	defer auditStmt.Close()

	for _, a := range run.Audits {
		if _, err = auditStmt.ExecContext(ctx, runID, a.Name, string(a.Status), a.Comment); err != nil {
			return fmt.Errorf("insert audit %q: %w", a.Name, err)
		}
	}

	resultStmt, err := tx.PrepareContext(ctx, w.insert("qa_currency_results",
		"run_id", "currency", "currency_code", "element", "initial_value", "updated_value", "verdict", "error"))
	if err != nil {
		return fmt.Errorf("prepare result insert: %w", err)
	}
	defer resultStmt.Close()

	if run.Results != nil {
		for _, g := range run.Results.Groups() {
			elems := make([]models.ElementResult, 0, len(g.Elements)+1)
			elems = append(elems, g.Elements...)
			for _, e := range append(elems, g.Availability) {
				if _, err = resultStmt.ExecContext(ctx, runID,
					g.Currency.Label, g.Currency.Code, e.Label, e.Initial, e.Updated,
					string(e.Verdict), nullString(g.Err),
				); err != nil {
					return fmt.Errorf("insert result %q/%q: %w", g.Currency.Label, e.Label, err)
				}
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	run.ID = runID
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
