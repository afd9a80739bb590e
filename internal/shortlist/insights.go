package shortlist

import (
	"math"
	"sort"

	"github.com/fmuoria/resume-shortlister/internal/models"
)

const (
	topShare           = 0.05
	maxUnmatchedSkills = 10
)

// BuildInsights computes the dashboard figures for one run. records are the
// unique records of the run and shortlisted is already ordered.
func BuildInsights(records []models.CandidateRecord, shortlisted []models.RankedResult, criteria models.JobCriteria) models.Insights {
	return models.Insights{
		AverageExperience: averageExperience(records),
		GenderCounts:      genderCounts(shortlisted),
		TopCandidates:     topCandidates(shortlisted),
		UnmatchedSkills:   unmatchedSkills(records, criteria),
	}
}

func averageExperience(records []models.CandidateRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	total := 0.0
	for _, rec := range records {
		total += rec.TotalExperienceYears
	}
	return math.Round(total/float64(len(records))*100) / 100
}

// genderCounts counts shortlisted candidates by normalized gender; blank values are not counted
func genderCounts(shortlisted []models.RankedResult) map[string]int {
	counts := make(map[string]int)
	for _, res := range shortlisted {
		g := models.NormalizeToken(res.Record.Gender)
		if g == "" {
			continue
		}
		counts[g]++
	}
	return counts
}

// topCandidates names the best 5% of the shortlist, at least one when the
// shortlist is not empty. Candidates without a name are listed by source ID.
func topCandidates(shortlisted []models.RankedResult) []string {
	n := int(float64(len(shortlisted)) * topShare)
	if n == 0 && len(shortlisted) > 0 {
		n = 1
	}

	top := make([]string, 0, n)
	for _, res := range shortlisted[:n] {
		name := res.Record.FullName
		if name == "" {
			name = res.Record.SourceID
		}
		top = append(top, name)
	}
	return top
}

// unmatchedSkills returns the skills candidates list that the criteria do not
// ask for, most common first and alphabetical within a count.
func unmatchedSkills(records []models.CandidateRecord, criteria models.JobCriteria) []models.SkillCount {
	counts := make(map[string]int)
	for _, rec := range records {
		for _, skill := range rec.KeySkills {
			if !criteria.RequiredSkills.Contains(skill) {
				counts[skill]++
			}
		}
	}

	out := make([]models.SkillCount, 0, len(counts))
	for skill, count := range counts {
		out = append(out, models.SkillCount{Skill: skill, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Skill < out[j].Skill
	})

	if len(out) > maxUnmatchedSkills {
		out = out[:maxUnmatchedSkills]
	}
	return out
}
