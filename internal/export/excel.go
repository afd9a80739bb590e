package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fmuoria/resume-shortlister/internal/ingestion"
	"github.com/fmuoria/resume-shortlister/internal/models"
	"github.com/xuri/excelize/v2"
)

// Sheet names of an exported report. Uploading the workbook again reads both
// result sheets back as parsed data.
const (
	ShortlistedSheet = ingestion.ShortlistedSheet
	RejectedSheet    = ingestion.RejectedSheet
	SummarySheet     = "Summary"
)

// WriteExcel writes the report as a workbook with the shortlist, the rejected
// candidates and a run summary.
func WriteExcel(w io.Writer, report models.Report) error {
	f, err := buildWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// ExportToExcel saves the report workbook to outputPath, adding the .xlsx
// extension when it is missing.
func ExportToExcel(report models.Report, outputPath string) error {
	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath = outputPath + ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	var buf bytes.Buffer
	if err := WriteExcel(&buf, report); err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}

func buildWorkbook(report models.Report) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", ShortlistedSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{RejectedSheet, SummarySheet} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeResultsSheet(f, ShortlistedSheet, report.Shortlisted, report.Criteria, headerStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create shortlisted sheet: %w", err)
	}
	if err := writeResultsSheet(f, RejectedSheet, report.Rejected, report.Criteria, headerStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create rejected sheet: %w", err)
	}
	if err := writeSummarySheet(f, SummarySheet, report, headerStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeResultsSheet(f *excelize.File, sheetName string, results []models.RankedResult, criteria models.JobCriteria, headerStyle int) error {
	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}

	lastCol, err := excelize.ColumnNumberToName(len(Columns))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "B", lastCol, 18); err != nil {
		return err
	}

	for i, res := range results {
		row := cells(res, criteria)
		if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}

	if len(results) > 0 {
		ref := fmt.Sprintf("A1:%s%d", lastCol, len(results)+1)
		if err := f.AutoFilter(sheetName, ref, []excelize.AutoFilterOptions{}); err != nil {
			return err
		}
	}

	// Freeze top row
	return f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeSummarySheet(f *excelize.File, sheetName string, report models.Report, headerStyle int) error {
	if err := f.SetColWidth(sheetName, "A", "A", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "B", "B", 50); err != nil {
		return err
	}

	criteria := report.Criteria
	remote := yesNo(criteria.RemoteAllowed)

	rows := [][]interface{}{
		{"Shortlist Report", ""},
		{"Run ID:", report.RunID},
		{"Generated:", report.CreatedAt.Format("2006-01-02 15:04:05")},
		{"Role:", criteria.Role},
		{"Required Skills:", criteria.RequiredSkills.String()},
		{"Minimum Experience (years):", criteria.MinimumExperienceYears},
		{"Allowed Locations:", criteria.AllowedLocations.String()},
		{"Remote Allowed:", remote},
		{"", ""},
		{"Total Records:", report.TotalRecords},
		{"Unique Records:", report.UniqueRecords},
		{"Duplicates Dropped:", report.Duplicates},
		{"Skipped Records:", len(report.Skipped)},
		{"Missing ATS Score:", report.MissingATS},
		{"Shortlisted:", len(report.Shortlisted)},
		{"Rejected:", len(report.Rejected)},
		{"Average Experience (years):", report.Insights.AverageExperience},
	}

	for i, row := range rows {
		if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return err
		}
	}
	return f.SetCellStyle(sheetName, "A1", "B1", headerStyle)
}
