package scoring

import (
	"math"

	"github.com/fmuoria/resume-shortlister/internal/models"
)

// EmptyRequirementMatchPct is the skill match reported when the criteria list no
// required skills. A job that requires nothing is satisfied by every candidate.
const EmptyRequirementMatchPct = 100.0

// SkillMatchPct returns the share of required skills present in have, as a
// percentage rounded to two decimal places.
func SkillMatchPct(required, have models.TokenSet) float64 {
	if required.Len() == 0 {
		return EmptyRequirementMatchPct
	}

	matched := 0
	for _, skill := range required {
		if have.Contains(skill) {
			matched++
		}
	}

	return roundPct(float64(matched) / float64(required.Len()) * 100)
}

// SkillGap splits the required skills into those the candidate lists and those
// they do not. Both slices keep the order of required.
func SkillGap(required, have models.TokenSet) (matched, missing []string) {
	matched = []string{}
	missing = []string{}
	for _, skill := range required {
		if have.Contains(skill) {
			matched = append(matched, skill)
		} else {
			missing = append(missing, skill)
		}
	}
	return matched, missing
}

// LocationMatch reports whether a candidate location satisfies the criteria.
// Remote-friendly criteria accept every location; otherwise the normalized
// location must equal one of the allowed entries exactly.
func LocationMatch(location string, criteria models.JobCriteria) bool {
	if criteria.RemoteAllowed {
		return true
	}
	loc := models.NormalizeToken(location)
	if loc == "" {
		return false
	}
	return criteria.AllowedLocations.Contains(loc)
}

func roundPct(v float64) float64 {
	return math.Round(v*100) / 100
}
