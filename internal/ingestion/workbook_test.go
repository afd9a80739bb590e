package ingestion

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestReadWorkbook(t *testing.T) {
	content := buildWorkbook(t, "", [][]interface{}{
		{"Full Name", "Location", "Total Experience (in years)", "Key Skills", "ATS Score", "Resume File"},
		{"Asha Rao", "Bangalore", 5, "python, sql", 91, "asha.pdf"},
		{"Ben Okoth", "Pune", "N/A", "java", "N/A", ""},
	})

	raws, err := ReadWorkbook(bytes.NewReader(content))
	if err != nil {
		t.Fatalf("ReadWorkbook() failed: %v", err)
	}
	if len(raws) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(raws))
	}

	if raws[0].SourceID != "asha.pdf" {
		t.Errorf("Expected source from Resume File column, got %q", raws[0].SourceID)
	}
	if raws[1].SourceID != "row-3" {
		t.Errorf("Expected row fallback source, got %q", raws[1].SourceID)
	}

	records, skipped := NormalizeBatch(raws)
	if len(skipped) != 0 {
		t.Fatalf("Expected no skipped rows, got %+v", skipped)
	}
	if records[0].TotalExperienceYears != 5 || !records[0].HasATSScore() || *records[0].ATSScore != 91 {
		t.Errorf("Unexpected first record: %+v", records[0])
	}
	if records[1].HasATSScore() {
		t.Error("Expected N/A ATS score to be missing")
	}
}

func TestReadWorkbook_PrefersApplicantsSheet(t *testing.T) {
	content := buildWorkbook(t, ApplicantsSheet, [][]interface{}{
		{"Full Name", "Resume File"},
		{"Carla Diaz", "carla.pdf"},
	})

	raws, err := ReadWorkbook(bytes.NewReader(content))
	if err != nil {
		t.Fatalf("ReadWorkbook() failed: %v", err)
	}
	if len(raws) != 1 || raws[0].SourceID != "carla.pdf" {
		t.Errorf("Unexpected rows: %+v", raws)
	}
}

func TestReadWorkbook_Errors(t *testing.T) {
	t.Run("Not a workbook", func(t *testing.T) {
		if _, err := ReadWorkbook(bytes.NewReader([]byte("plain text"))); err == nil {
			t.Error("Expected error for non-xlsx input")
		}
	})

	t.Run("No recognised columns", func(t *testing.T) {
		content := buildWorkbook(t, "", [][]interface{}{
			{"Colour", "Animal"},
			{"blue", "cat"},
		})
		if _, err := ReadWorkbook(bytes.NewReader(content)); err == nil {
			t.Error("Expected error for sheet without resume columns")
		}
	})
}

func TestReadWorkbookFile_RowSourceIncludesFileName(t *testing.T) {
	content := buildWorkbook(t, "", [][]interface{}{
		{"Full Name"},
		{"Dan"},
	})
	path := filepath.Join(t.TempDir(), "batch.xlsx")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to write workbook: %v", err)
	}

	raws, err := ReadWorkbookFile(path)
	if err != nil {
		t.Fatalf("ReadWorkbookFile() failed: %v", err)
	}
	if len(raws) != 1 || raws[0].SourceID != "batch.xlsx#row-2" {
		t.Errorf("Unexpected rows: %+v", raws)
	}
}

func TestReadWorkbook_ReadsBothResultSheets(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ShortlistedSheet); err != nil {
		t.Fatalf("Failed to rename sheet: %v", err)
	}
	if _, err := f.NewSheet(RejectedSheet); err != nil {
		t.Fatalf("Failed to add sheet: %v", err)
	}
	sheets := map[string][][]interface{}{
		ShortlistedSheet: {{"Rank", "Full Name", "Shortlisted"}, {1, "Asha Rao", "Yes"}},
		RejectedSheet:    {{"Rank", "Full Name", "Shortlisted"}, {1, "Ben Okoth", "No"}},
	}
	for sheet, rows := range sheets {
		for i, row := range rows {
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				t.Fatalf("Failed to write row: %v", err)
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("Failed to write workbook: %v", err)
	}

	raws, err := ReadWorkbook(buf)
	if err != nil {
		t.Fatalf("ReadWorkbook() failed: %v", err)
	}

	want := []string{"Shortlisted!row-2", "Rejected!row-2"}
	if len(raws) != len(want) {
		t.Fatalf("Expected %d rows, got %+v", len(want), raws)
	}
	for i, id := range want {
		if raws[i].SourceID != id {
			t.Errorf("Row %d: expected source %q, got %q", i, id, raws[i].SourceID)
		}
	}
	if _, ok := raws[1].Fields["Shortlisted"]; !ok {
		t.Error("Expected raw fields keyed by header")
	}
}
