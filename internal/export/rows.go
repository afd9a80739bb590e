package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fmuoria/resume-shortlister/internal/models"
	"github.com/fmuoria/resume-shortlister/internal/scoring"
)

// Columns is the header row of an exported result table. Record columns use
// the same titles the extraction service writes, so an export can be uploaded
// again as parsed data.
var Columns = []string{
	"Rank",
	"Full Name",
	"Gender",
	"Phone Number",
	"Email Address",
	"Location",
	"Total Experience (in years)",
	"Most Recent Job Title",
	"Highest Qualification",
	"Key Skills",
	"ATS Score",
	"Skill Match %",
	"Location Match",
	"Missing Skills",
	"Shortlisted",
	"Remark",
	"Resume File",
}

// missingValue is written where a record has no ATS score
const missingValue = "N/A"

// cells returns the typed values of one result row, in Columns order
func cells(res models.RankedResult, criteria models.JobCriteria) []interface{} {
	rec := res.Record
	_, missing := scoring.SkillGap(criteria.RequiredSkills, rec.KeySkills)

	var ats interface{} = missingValue
	if rec.HasATSScore() {
		ats = *rec.ATSScore
	}

	return []interface{}{
		res.Rank,
		rec.FullName,
		rec.Gender,
		rec.Phone,
		rec.Email,
		rec.Location,
		rec.TotalExperienceYears,
		rec.RecentJobTitle,
		rec.HighestQualification,
		rec.KeySkills.String(),
		ats,
		res.SkillMatchPct,
		yesNo(res.LocationMatch),
		strings.Join(missing, ", "),
		yesNo(res.Passed),
		rec.Remark,
		rec.SourceID,
	}
}

// Row maps one ranked result to its export row, in Columns order
func Row(res models.RankedResult, criteria models.JobCriteria) []string {
	values := cells(res, criteria)
	row := make([]string, len(values))
	for i, v := range values {
		switch v := v.(type) {
		case string:
			row[i] = v
		case float64:
			row[i] = strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			row[i] = strconv.Itoa(v)
		default:
			row[i] = fmt.Sprint(v)
		}
	}
	return row
}

// WriteCSV writes the header and one row per result
func WriteCSV(w io.Writer, results []models.RankedResult, criteria models.JobCriteria) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, res := range results {
		if err := cw.Write(Row(res, criteria)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", res.Rank, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
