package domain

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"listing-qa/models"
)

func sampleRun(t *testing.T) *models.Run {
	t.Helper()
	results := models.NewResultsLog(2)
	require.NoError(t, results.Append(models.ComparisonResult{
		Currency: models.NewCurrencyOption("$ (USD)", 1),
		Elements: []models.ElementResult{
			{Label: "Card 1", Initial: "€120", Updated: "$130", Verdict: models.Changed},
			{Label: "Card 2", Initial: "€95", Updated: "$103", Verdict: models.Changed},
		},
		Availability: models.ElementResult{Label: models.AvailabilityLabel, Initial: "€120", Updated: "$130", Verdict: models.Changed},
	}))
	before := models.NewSnapshot([]models.PriceEntry{{Label: "Card 1", Text: "$130"}, {Label: "Card 2", Text: "$103"}}, "$130")
	require.NoError(t, results.Append(models.FailedResult(before, models.NewCurrencyOption("£ (GBP)", 2), errors.New("price update timed out"))))

	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &models.Run{
		URL:        "https://example.com/listing/1",
		StartedAt:  start,
		FinishedAt: start.Add(90 * time.Second),
		Audits: []models.AuditResult{
			{Name: "H1 Tag Existence", Status: models.Pass, Comment: "Found 1 H1 tag(s)"},
			{Name: "Image Alt Attribute", Status: models.Fail, Comment: "Missing alt attribute for 2 images"},
		},
		ScriptData: &models.ScriptData{SiteURL: "example.com", CampaignID: "42", CountryCode: "BD"},
		Results:    results,
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVRepositorySave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "currency_report.csv")
	repo := NewCSVRepository(path)

	require.NoError(t, repo.Save(context.Background(), sampleRun(t)))

	rows := readCSV(t, path)
	require.Len(t, rows, 7)
	assert.Equal(t, models.ReportHeader, rows[0])
	assert.Equal(t, []string{"$ (USD)", "Card 1", "€120", "$130", "PASS (Currency changed successfully)", ""}, rows[1])
	assert.Equal(t, models.AvailabilityLabel, rows[3][1])
	assert.Equal(t, "price update timed out", rows[6][5])

	assert.Equal(t, filepath.Join(filepath.Dir(path), "currency_report_audits.csv"), repo.AuditsPath())
	audits := readCSV(t, repo.AuditsPath())
	require.Len(t, audits, 3)
	assert.Equal(t, []string{"Page URL", "Test Name", "Status", "Comments"}, audits[0])
	assert.Equal(t, "Fail", audits[2][2])
}

func TestCSVRepositoryEmptyResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	run := &models.Run{URL: "https://example.com"}

	require.NoError(t, NewCSVRepository(path).Save(context.Background(), run))
	assert.Len(t, readCSV(t, path), 1)
}

func TestXLSXRepositorySave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test_report.xlsx")
	require.NoError(t, NewXLSXRepository(path).Save(context.Background(), sampleRun(t)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{summarySheet, currencySheet, scriptDataSheet}, f.GetSheetList())

	summary, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, "H1 Tag Existence", summary[1][1])

	currency, err := f.GetRows(currencySheet)
	require.NoError(t, err)
	require.Len(t, currency, 7)
	assert.Equal(t, "Updated Value", currency[0][3])

	data, err := f.GetRows(scriptDataSheet)
	require.NoError(t, err)
	require.Len(t, data, 2)
	assert.Equal(t, "42", data[1][1])

	style, err := f.GetCellStyle(currencySheet, "A1")
	require.NoError(t, err)
	assert.NotZero(t, style)
}

func TestSQLiteRepositorySave(t *testing.T) {
	ctx := context.Background()
	repo, err := NewSQLiteRepository(ctx, filepath.Join(t.TempDir(), "qa.db"))
	require.NoError(t, err)
	defer repo.Close()

	run := sampleRun(t)
	require.NoError(t, repo.Save(ctx, run))
	assert.NotZero(t, run.ID)

	second := sampleRun(t)
	second.Err = "reopen currency control: currency control not found"
	require.NoError(t, repo.Save(ctx, second))
	assert.Greater(t, second.ID, run.ID)

	n, err := repo.RunCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var results, audits int
	require.NoError(t, repo.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM qa_currency_results WHERE run_id = ?`, run.ID).Scan(&results))
	require.NoError(t, repo.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM qa_audits WHERE run_id = ?`, run.ID).Scan(&audits))
	assert.Equal(t, 6, results)
	assert.Equal(t, 2, audits)

	var verdict, code string
	require.NoError(t, repo.db.QueryRowContext(ctx,
		`SELECT verdict, currency_code FROM qa_currency_results WHERE run_id = ? AND element = ? AND currency = ?`,
		run.ID, models.AvailabilityLabel, "£ (GBP)").Scan(&verdict, &code))
	assert.Equal(t, "Failed", verdict)
	assert.Equal(t, "£", code)
}

func TestSQLiteRepositoryReopenKeepsSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "qa.db")

	repo, err := NewSQLiteRepository(ctx, path)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, sampleRun(t)))
	require.NoError(t, repo.Close())

	repo, err = NewSQLiteRepository(ctx, path)
	require.NoError(t, err)
	defer repo.Close()
	n, err := repo.RunCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestInsertPlaceholders(t *testing.T) {
	pg := &sqlRunWriter{d: postgresDialect}
	assert.Equal(t, "INSERT INTO qa_audits (run_id, name) VALUES ($1, $2)", pg.insert("qa_audits", "run_id", "name"))

	lite := &sqlRunWriter{d: sqliteDialect}
	assert.Equal(t, "INSERT INTO qa_audits (run_id, name) VALUES (?, ?)", lite.insert("qa_audits", "run_id", "name"))
}

type stubRepo struct {
	saved int
	err   error
}

func (s *stubRepo) Save(ctx context.Context, run *models.Run) error {
	s.saved++
	return s.err
}

func TestMultiRepositorySavesEverywhere(t *testing.T) {
	boom := errors.New("disk full")
	a, b, c := &stubRepo{}, &stubRepo{err: boom}, &stubRepo{}

	err := MultiRepository{a, b, c}.Save(context.Background(), sampleRun(t))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, a.saved)
	assert.Equal(t, 1, b.saved)
	assert.Equal(t, 1, c.saved)

	assert.NoError(t, MultiRepository{a, c}.Save(context.Background(), sampleRun(t)))
}

func TestLocatorString(t *testing.T) {
	assert.Equal(t, "id=js-default-price", ID("js-default-price").String())
	assert.Equal(t, "css=.js-price-value", Query(".js-price-value").String())
	assert.Equal(t, "xpath=//li", XPath("//li").String())
}
