package shortlist

import "github.com/fmuoria/resume-shortlister/internal/models"

// Facets narrows a ranked table to chosen values. An empty set places no
// constraint on its field; a non-empty one excludes records whose value is
// blank.
type Facets struct {
	Genders        models.TokenSet `json:"genders,omitempty"`
	Locations      models.TokenSet `json:"locations,omitempty"`
	Qualifications models.TokenSet `json:"qualifications,omitempty"`
	JobTitles      models.TokenSet `json:"job_titles,omitempty"`
	MinExperience  float64         `json:"min_experience,omitempty"`
}

// IsZero reports whether the facets constrain nothing
func (f Facets) IsZero() bool {
	return f.Genders.Len() == 0 &&
		f.Locations.Len() == 0 &&
		f.Qualifications.Len() == 0 &&
		f.JobTitles.Len() == 0 &&
		f.MinExperience <= 0
}

// Match reports whether rec satisfies every facet
func (f Facets) Match(rec models.CandidateRecord) bool {
	return inFacet(f.Genders, rec.Gender) &&
		inFacet(f.Locations, rec.Location) &&
		inFacet(f.Qualifications, rec.HighestQualification) &&
		inFacet(f.JobTitles, rec.RecentJobTitle) &&
		rec.TotalExperienceYears >= f.MinExperience
}

func inFacet(set models.TokenSet, value string) bool {
	if set.Len() == 0 {
		return true
	}
	return set.Contains(value)
}

// Apply returns the results that match, in their original order and with
// their original ranks.
func (f Facets) Apply(results []models.RankedResult) []models.RankedResult {
	if f.IsZero() {
		return results
	}
	kept := make([]models.RankedResult, 0, len(results))
	for _, res := range results {
		if f.Match(res.Record) {
			kept = append(kept, res)
		}
	}
	return kept
}

// ApplyReport narrows both result groups of a report. Counts and insights
// still describe the whole run.
func (f Facets) ApplyReport(report models.Report) models.Report {
	report.Shortlisted = f.Apply(report.Shortlisted)
	report.Rejected = f.Apply(report.Rejected)
	return report
}
