package shortlist

import "github.com/fmuoria/resume-shortlister/internal/models"

// Dedupe keeps the first record for each source ID, in input order, and
// reports how many later records were dropped. Records without a source ID
// cannot be told apart and are always kept.
func Dedupe(records []models.CandidateRecord) ([]models.CandidateRecord, int) {
	seen := make(map[string]struct{}, len(records))
	unique := make([]models.CandidateRecord, 0, len(records))
	duplicates := 0

	for _, rec := range records {
		if rec.SourceID != "" {
			if _, ok := seen[rec.SourceID]; ok {
				duplicates++
				continue
			}
			seen[rec.SourceID] = struct{}{}
		}
		unique = append(unique, rec)
	}

	return unique, duplicates
}

// Filter returns the unique records that meet the criteria, in input order.
// Records without an ATS score are kept; the score is not a filter criterion.
func (e *Engine) Filter(records []models.CandidateRecord, criteria models.JobCriteria) []models.CandidateRecord {
	unique, _ := Dedupe(records)

	kept := make([]models.CandidateRecord, 0, len(unique))
	for _, rec := range unique {
		if e.Evaluate(rec, criteria).Passed {
			kept = append(kept, rec)
		}
	}
	return kept
}
