package domain

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"listing-qa/models"
)

const (
	summarySheet    = "Test Report"
	currencySheet   = "Currency Change Results"
	scriptDataSheet = "Scraped Data"
)

// XLSXRepository writes one workbook per run with a summary sheet, the
// currency results and, when collected, the page's script data.
type XLSXRepository struct {
	filePath string
}

func NewXLSXRepository(filePath string) *XLSXRepository {
	return &XLSXRepository{filePath: filePath}
}

func (r *XLSXRepository) Save(ctx context.Context, run *models.Run) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("xlsx rename sheet: %w", err)
	}
	summary := make([][]string, 0, len(run.Audits))
	for _, a := range run.Audits {
		summary = append(summary, []string{run.URL, a.Name, string(a.Status), a.Comment})
	}
	if err := writeSheet(f, summarySheet, bold, summaryHeader, summary); err != nil {
		return err
	}

	currency := make([][]string, 0)
	for _, row := range run.Results.Rows() {
		currency = append(currency, row.Values())
	}
	if err := writeSheet(f, currencySheet, bold, models.ReportHeader, currency); err != nil {
		return err
	}

	if sd := run.ScriptData; sd != nil {
		header := []string{"Site URL", "Campaign ID", "Site Name", "Browser", "Country Code", "IP"}
		row := []string{sd.SiteURL, sd.CampaignID, sd.SiteName, sd.Browser, sd.CountryCode, sd.IP}
		if err := writeSheet(f, scriptDataSheet, bold, header, [][]string{row}); err != nil {
			return err
		}
	}

	if err := f.SaveAs(r.filePath); err != nil {
		return fmt.Errorf("xlsx save %s: %w", r.filePath, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headerStyle int, header []string, rows [][]string) error {
	if idx, _ := f.GetSheetIndex(sheet); idx == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("xlsx new sheet %q: %w", sheet, err)
		}
	}

	if err := f.SetSheetRow(sheet, "A1", toCells(header)); err != nil {
		return fmt.Errorf("xlsx header %q: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("xlsx header style %q: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, toCells(row)); err != nil {
			return fmt.Errorf("xlsx row %d %q: %w", i+2, sheet, err)
		}
	}
	return nil
}

func toCells(values []string) *[]any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return &cells
}
