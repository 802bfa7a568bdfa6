package domain

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"listing-qa/models"
)

// CSVRepository writes the currency rows to filePath and the audit summary
// next to it as <name>_audits.csv. Each Save overwrites both files.
type CSVRepository struct {
	filePath string
}

func NewCSVRepository(filePath string) *CSVRepository {
	return &CSVRepository{
		filePath: filePath,
	}
}

func (r *CSVRepository) AuditsPath() string {
	ext := filepath.Ext(r.filePath)
	return strings.TrimSuffix(r.filePath, ext) + "_audits" + ext
}

func (r *CSVRepository) Save(ctx context.Context, run *models.Run) error {
	rows := make([][]string, 0)
	for _, row := range run.Results.Rows() {
		rows = append(rows, row.Values())
	}
	if err := writeCSV(r.filePath, models.ReportHeader, rows); err != nil {
		return err
	}

	audits := make([][]string, 0, len(run.Audits))
	for _, a := range run.Audits {
		audits = append(audits, []string{run.URL, a.Name, string(a.Status), a.Comment})
	}
	return writeCSV(r.AuditsPath(), summaryHeader, audits)
}

var summaryHeader = []string{"Page URL", "Test Name", "Status", "Comments"}

func writeCSV(path string, header []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header %s: %w", path, err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows %s: %w", path, err)
	}
	return file.Close()
}
