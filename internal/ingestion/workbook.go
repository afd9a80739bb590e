package ingestion

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fmuoria/resume-shortlister/internal/models"
	"github.com/xuri/excelize/v2"
)

// ApplicantsSheet is the sheet name the parser page writes parsed resumes to.
// When present it is read in preference to the first sheet.
const ApplicantsSheet = "Applicants"

// Result sheets of an exported report. A workbook holding both is read as one
// batch: shortlisted rows first, then rejected ones.
const (
	ShortlistedSheet = "Shortlisted"
	RejectedSheet    = "Rejected"
)

func hasSheet(f *excelize.File, name string) bool {
	idx, err := f.GetSheetIndex(name)
	return err == nil && idx >= 0
}

// sheetsToRead picks the sheets holding resume rows
func sheetsToRead(f *excelize.File) []string {
	switch {
	case hasSheet(f, ApplicantsSheet):
		return []string{ApplicantsSheet}
	case hasSheet(f, ShortlistedSheet) && hasSheet(f, RejectedSheet):
		return []string{ShortlistedSheet, RejectedSheet}
	}
	if first := f.GetSheetName(0); first != "" {
		return []string{first}
	}
	return nil
}

// ReadWorkbook reads already-parsed resume rows from an .xlsx stream. The first
// row is the header; each following row becomes one RawRecord keyed by header.
func ReadWorkbook(r io.Reader) ([]models.RawRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return readWorkbook(f, "")
}

// ReadWorkbookFile is ReadWorkbook for a file on disk. Rows without a source
// column are identified by file name and row number.
func ReadWorkbookFile(path string) ([]models.RawRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	return readWorkbook(f, filepath.Base(path))
}

func readWorkbook(f *excelize.File, name string) ([]models.RawRecord, error) {
	sheets := sheetsToRead(f)
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	records := []models.RawRecord{}
	for _, sheet := range sheets {
		prefix := ""
		if name != "" {
			prefix = name + "#"
		}
		if len(sheets) > 1 {
			prefix += sheet + "!"
		}

		batch, err := readSheet(f, sheet, prefix)
		if err != nil {
			return nil, err
		}
		records = append(records, batch...)
	}
	return records, nil
}

// readSheet reads one sheet. Rows without a source are identified by prefix
// and row number.
func readSheet(f *excelize.File, sheet, prefix string) ([]models.RawRecord, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return []models.RawRecord{}, nil
	}

	header := make([]string, len(rows[0]))
	recognised := 0
	sourceCol := -1
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
		field, ok := ResolveField(header[i])
		if !ok {
			continue
		}
		recognised++
		if field == FieldSourceID && sourceCol < 0 {
			sourceCol = i
		}
	}
	if recognised == 0 {
		return nil, fmt.Errorf("sheet %s has no recognised resume columns", sheet)
	}

	records := make([]models.RawRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		fields := make(map[string]string, len(header))
		for col, name := range header {
			if name == "" || col >= len(row) {
				continue
			}
			fields[name] = row[col]
		}

		sourceID := ""
		if sourceCol >= 0 && sourceCol < len(row) {
			sourceID = strings.TrimSpace(row[sourceCol])
		}
		if sourceID == "" {
			// Spreadsheet rows are 1-based and the header takes row 1
			sourceID = fmt.Sprintf("%srow-%d", prefix, i+2)
		}

		records = append(records, models.RawRecord{SourceID: sourceID, Fields: fields})
	}

	return records, nil
}
