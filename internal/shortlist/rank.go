package shortlist

import (
	"sort"

	"github.com/fmuoria/resume-shortlister/internal/models"
)

// Order sorts results in place, best first, and sets Rank from 1.
//
// Keys, each descending: ATS score (missing after every present score),
// experience, skill match, location match. Ties keep their input order.
func Order(results []models.RankedResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return ahead(results[i], results[j])
	})
	for i := range results {
		results[i].Rank = i + 1
	}
}

// ahead reports whether a sorts strictly before b
func ahead(a, b models.RankedResult) bool {
	aScore, bScore := a.Record.ATSScore, b.Record.ATSScore
	switch {
	case aScore != nil && bScore == nil:
		return true
	case aScore == nil && bScore != nil:
		return false
	case aScore != nil && *aScore != *bScore:
		return *aScore > *bScore
	}

	if a.Record.TotalExperienceYears != b.Record.TotalExperienceYears {
		return a.Record.TotalExperienceYears > b.Record.TotalExperienceYears
	}
	if a.SkillMatchPct != b.SkillMatchPct {
		return a.SkillMatchPct > b.SkillMatchPct
	}
	return a.LocationMatch && !b.LocationMatch
}
