package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/fmuoria/resume-shortlister/internal/ingestion"
	"github.com/fmuoria/resume-shortlister/internal/models"
)

func testReport(t *testing.T) models.Report {
	t.Helper()

	criteria, err := models.NewJobCriteria(models.CriteriaInput{
		Role:                   "Data Analyst",
		RequiredSkills:         []string{"python", "sql", "tableau"},
		MinimumExperienceYears: 2,
		AllowedLocations:       []string{"Pune"},
	})
	if err != nil {
		t.Fatalf("NewJobCriteria() failed: %v", err)
	}

	ats := 88.5
	return models.Report{
		RunID:     "run-1",
		CreatedAt: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
		Criteria:  criteria,
		Shortlisted: []models.RankedResult{
			{
				Rank: 1,
				Record: models.CandidateRecord{
					SourceID:             "asha.pdf",
					FullName:             "Asha Rao",
					Gender:               "Female",
					Location:             "Pune",
					TotalExperienceYears: 4,
					KeySkills:            models.ParseTokenSet("python, sql, tableau"),
					ATSScore:             &ats,
				},
				SkillMatchPct: 100,
				LocationMatch: true,
				Passed:        true,
			},
		},
		Rejected: []models.RankedResult{
			{
				Rank: 1,
				Record: models.CandidateRecord{
					SourceID:             "ben.pdf",
					FullName:             "Ben Okoth",
					Location:             "Delhi",
					TotalExperienceYears: 1,
					KeySkills:            models.ParseTokenSet("python"),
				},
				SkillMatchPct: 33.33,
			},
		},
		TotalRecords:  2,
		UniqueRecords: 2,
		MissingATS:    1,
		Skipped:       []models.SkippedRecord{},
	}
}

// TestRow tests the mapping from a ranked result to an export row
func TestRow(t *testing.T) {
	report := testReport(t)

	tests := []struct {
		name   string
		result models.RankedResult
		want   map[string]string
	}{
		{
			name:   "Shortlisted candidate",
			result: report.Shortlisted[0],
			want: map[string]string{
				"Rank":                        "1",
				"Full Name":                   "Asha Rao",
				"Total Experience (in years)": "4",
				"Key Skills":                  "python, sql, tableau",
				"ATS Score":                   "88.5",
				"Skill Match %":               "100",
				"Location Match":              "Yes",
				"Missing Skills":              "",
				"Shortlisted":                 "Yes",
				"Resume File":                 "asha.pdf",
			},
		},
		{
			name:   "Rejected candidate without ATS score",
			result: report.Rejected[0],
			want: map[string]string{
				"ATS Score":      "N/A",
				"Skill Match %":  "33.33",
				"Location Match": "No",
				"Missing Skills": "sql, tableau",
				"Shortlisted":    "No",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := Row(tt.result, report.Criteria)
			if len(row) != len(Columns) {
				t.Fatalf("Expected %d cells, got %d", len(Columns), len(row))
			}
			for i, col := range Columns {
				want, ok := tt.want[col]
				if !ok {
					continue
				}
				if row[i] != want {
					t.Errorf("Column %q: expected %q, got %q", col, want, row[i])
				}
			}
		})
	}
}

func TestWriteCSV(t *testing.T) {
	report := testReport(t)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, report.Shortlisted, report.Criteria); err != nil {
		t.Fatalf("WriteCSV() failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read csv back: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected header and 1 row, got %d rows", len(records))
	}
	if strings.Join(records[0], "|") != strings.Join(Columns, "|") {
		t.Errorf("Unexpected header: %v", records[0])
	}
	if records[1][1] != "Asha Rao" {
		t.Errorf("Expected name in second column, got %q", records[1][1])
	}
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil, models.JobCriteria{}); err != nil {
		t.Fatalf("WriteCSV() failed: %v", err)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 1 {
		t.Errorf("Expected only the header line, got %d lines", lines)
	}
}

func TestWriteExcel(t *testing.T) {
	report := testReport(t)

	var buf bytes.Buffer
	if err := WriteExcel(&buf, report); err != nil {
		t.Fatalf("WriteExcel() failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Failed to open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := []string{ShortlistedSheet, RejectedSheet, SummarySheet}
	if strings.Join(sheets, ",") != strings.Join(want, ",") {
		t.Errorf("Expected sheets %v, got %v", want, sheets)
	}

	name, err := f.GetCellValue(ShortlistedSheet, "B2")
	if err != nil {
		t.Fatalf("Failed to read cell: %v", err)
	}
	if name != "Asha Rao" {
		t.Errorf("Expected Asha Rao in B2, got %q", name)
	}

	runID, _ := f.GetCellValue(SummarySheet, "B2")
	if runID != "run-1" {
		t.Errorf("Expected run ID in summary, got %q", runID)
	}
}

// TestWriteExcel_ReadsBackAsParsedData tests that an exported report can be
// uploaded again with both result sheets
func TestWriteExcel_ReadsBackAsParsedData(t *testing.T) {
	report := testReport(t)

	var buf bytes.Buffer
	if err := WriteExcel(&buf, report); err != nil {
		t.Fatalf("WriteExcel() failed: %v", err)
	}

	raws, err := ingestion.ReadWorkbook(&buf)
	if err != nil {
		t.Fatalf("ReadWorkbook() failed: %v", err)
	}
	records, skipped := ingestion.NormalizeBatch(raws)
	if len(skipped) != 0 || len(records) != 2 {
		t.Fatalf("Expected 2 records back, got %d (skipped %d)", len(records), len(skipped))
	}

	rec := records[0]
	if rec.SourceID != "asha.pdf" || rec.FullName != "Asha Rao" {
		t.Errorf("Unexpected identity: %q %q", rec.SourceID, rec.FullName)
	}
	if !rec.HasATSScore() || *rec.ATSScore != 88.5 {
		t.Errorf("Expected ATS 88.5, got %v", rec.ATSScore)
	}
	if rec.KeySkills.String() != "python, sql, tableau" {
		t.Errorf("Unexpected skills: %q", rec.KeySkills.String())
	}
	if rec.Location != "Pune" {
		t.Errorf("Expected location Pune, got %q", rec.Location)
	}

	rejected := records[1]
	if rejected.SourceID != "ben.pdf" || rejected.HasATSScore() {
		t.Errorf("Expected rejected Ben without ATS score, got %+v", rejected)
	}
	if rejected.TotalExperienceYears != 1 {
		t.Errorf("Expected experience 1, got %v", rejected.TotalExperienceYears)
	}
}

// TestExportToExcel_EnsuresXlsxExtension tests that .xlsx extension is added if missing
func TestExportToExcel_EnsuresXlsxExtension(t *testing.T) {
	tmpDir := t.TempDir()

	outputPath := filepath.Join(tmpDir, "test_report")
	if err := ExportToExcel(testReport(t), outputPath); err != nil {
		t.Fatalf("ExportToExcel() failed: %v", err)
	}

	if _, err := os.Stat(outputPath + ".xlsx"); os.IsNotExist(err) {
		t.Errorf("Expected file at %s.xlsx but it doesn't exist", outputPath)
	}
}

// TestExportToExcel_EmptyResults tests export with empty results
func TestExportToExcel_EmptyResults(t *testing.T) {
	tmpDir := t.TempDir()

	outputPath := filepath.Join(tmpDir, "empty_report.xlsx")
	if err := ExportToExcel(models.Report{}, outputPath); err != nil {
		t.Fatalf("ExportToExcel() should handle empty results: %v", err)
	}

	if _, err := os.Stat(outputPath); os.IsNotExist(err) {
		t.Errorf("Expected file at %s but it doesn't exist", outputPath)
	}
}
