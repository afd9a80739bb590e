package ingestion

import (
	"math"
	"strconv"
	"strings"

	"github.com/fmuoria/resume-shortlister/internal/models"
)

// ATS scores outside this range are treated as missing
const (
	MinATSScore = 0.0
	MaxATSScore = 100.0
)

// NormalizeRecord converts a raw field mapping into a CandidateRecord.
//
// Partial data is accepted: missing text fields stay empty, an unparsable
// experience value becomes 0 with ExperienceUnparsed set, and an unparsable or
// out-of-range ATS score becomes missing. Only a record in which every known
// field is blank is rejected, with a *models.ValidationError.
func NormalizeRecord(fields map[string]string, sourceID string) (models.CandidateRecord, error) {
	values := resolveFields(fields)

	sourceID = strings.TrimSpace(sourceID)
	if sourceID == "" {
		sourceID = values[FieldSourceID]
	}

	if allBlank(values) {
		return models.CandidateRecord{}, &models.ValidationError{
			SourceID: sourceID,
			Reason:   "every field is empty",
		}
	}

	experience, unparsed := parseExperience(values[FieldExperience])

	return models.CandidateRecord{
		SourceID:             sourceID,
		FullName:             text(values[FieldFullName]),
		Gender:               text(values[FieldGender]),
		Phone:                text(values[FieldPhone]),
		Email:                text(values[FieldEmail]),
		Location:             text(values[FieldLocation]),
		TotalExperienceYears: experience,
		ExperienceUnparsed:   unparsed,
		RecentJobTitle:       text(values[FieldJobTitle]),
		HighestQualification: text(values[FieldQualification]),
		KeySkills:            models.ParseTokenSet(values[FieldSkills]),
		ATSScore:             parseATSScore(values[FieldATSScore]),
		Remark:               text(values[FieldRemark]),
	}, nil
}

// NormalizeBatch normalizes raw records in input order. Records that fail
// validation are reported in skipped rather than dropped silently.
func NormalizeBatch(raws []models.RawRecord) (records []models.CandidateRecord, skipped []models.SkippedRecord) {
	records = make([]models.CandidateRecord, 0, len(raws))
	skipped = []models.SkippedRecord{}

	for _, raw := range raws {
		rec, err := NormalizeRecord(raw.Fields, raw.SourceID)
		if err != nil {
			skipped = append(skipped, models.SkippedRecord{
				SourceID: raw.SourceID,
				Error:    err.Error(),
			})
			continue
		}
		records = append(records, rec)
	}

	return records, skipped
}

func allBlank(values map[string]string) bool {
	for _, field := range recordFields {
		if !models.IsBlank(values[field]) {
			return false
		}
	}
	return true
}

func text(v string) string {
	if models.IsBlank(v) {
		return ""
	}
	return strings.TrimSpace(v)
}

// parseExperience returns the experience in years and whether a non-empty
// value had to be replaced by 0.
func parseExperience(v string) (float64, bool) {
	if models.IsBlank(v) {
		return 0, false
	}
	years, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(years) || math.IsInf(years, 0) || years < 0 {
		return 0, true
	}
	return years, false
}

func parseATSScore(v string) *float64 {
	if models.IsBlank(v) {
		return nil
	}
	score, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(score) || score < MinATSScore || score > MaxATSScore {
		return nil
	}
	return &score
}
