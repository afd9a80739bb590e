package shortlist

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmuoria/resume-shortlister/internal/ingestion"
	"github.com/fmuoria/resume-shortlister/internal/models"
)

func score(v float64) *float64 {
	return &v
}

func candidate(id string, ats *float64, years float64, skills, location string) models.CandidateRecord {
	return models.CandidateRecord{
		SourceID:             id,
		FullName:             "Candidate " + id,
		Location:             location,
		TotalExperienceYears: years,
		KeySkills:            models.ParseTokenSet(skills),
		ATSScore:             ats,
	}
}

func criteria(t *testing.T, in models.CriteriaInput) models.JobCriteria {
	t.Helper()
	c, err := models.NewJobCriteria(in)
	require.NoError(t, err)
	return c
}

func sourceIDs(results []models.RankedResult) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.Record.SourceID
	}
	return ids
}

// TestRank_SkillThreshold covers a higher ATS score failing on skill match
func TestRank_SkillThreshold(t *testing.T) {
	c := criteria(t, models.CriteriaInput{
		RequiredSkills:         []string{"python", "sql"},
		MinimumExperienceYears: 2,
		RemoteAllowed:          true,
	})
	a := candidate("a.pdf", score(80), 3, "python, sql, aws", "")
	b := candidate("b.pdf", score(90), 5, "python", "")

	engine := NewEngine(DefaultPolicy())
	assert.Equal(t, 100.0, engine.Evaluate(a, c).SkillMatchPct)
	assert.Equal(t, 50.0, engine.Evaluate(b, c).SkillMatchPct)

	results := Rank([]models.CandidateRecord{a, b}, c)
	require.Len(t, results, 1)
	assert.Equal(t, "a.pdf", results[0].Record.SourceID)
	assert.Equal(t, 1, results[0].Rank)
	assert.True(t, results[0].Passed)
}

// TestRank_ExperienceBreaksATSTie covers equal ATS scores ordered by experience
func TestRank_ExperienceBreaksATSTie(t *testing.T) {
	c := criteria(t, models.CriteriaInput{RequiredSkills: []string{"go"}, RemoteAllowed: true})
	a := candidate("a.pdf", score(85), 3, "go", "")
	b := candidate("b.pdf", score(85), 4, "go", "")

	results := Rank([]models.CandidateRecord{a, b}, c)
	assert.Equal(t, []string{"b.pdf", "a.pdf"}, sourceIDs(results))
	assert.Equal(t, 1, results[0].Rank)
	assert.Equal(t, 2, results[1].Rank)
}

// TestRank_MissingATSRanksLast covers an unparsable ATS score losing to any real score
func TestRank_MissingATSRanksLast(t *testing.T) {
	skills := make([]string, 10)
	for i := range skills {
		skills[i] = fmt.Sprintf("skill%d", i)
	}
	c := criteria(t, models.CriteriaInput{RequiredSkills: skills, RemoteAllowed: true})

	missing, err := ingestion.NormalizeRecord(map[string]string{
		"Full Name":                   "No Score",
		"ATS Score":                   "N/A",
		"Total Experience (in years)": "10",
		"Key Skills":                  "skill0, skill1, skill2, skill3, skill4, skill5, skill6, skill7, skill8, skill9",
	}, "missing.pdf")
	require.NoError(t, err)
	require.False(t, missing.HasATSScore())

	low := candidate("low.pdf", score(1), 0, "skill0, skill1, skill2, skill3, skill4, skill5, skill6", "")

	results := Rank([]models.CandidateRecord{missing, low}, c)
	require.Len(t, results, 2)
	assert.Equal(t, []string{"low.pdf", "missing.pdf"}, sourceIDs(results))
	assert.Equal(t, 70.0, results[0].SkillMatchPct)
	assert.Equal(t, 100.0, results[1].SkillMatchPct)
}

// TestRank_LocationNormalization covers a padded, mixed-case location matching
func TestRank_LocationNormalization(t *testing.T) {
	c := criteria(t, models.CriteriaInput{AllowedLocations: []string{"bangalore"}})
	rec := candidate("a.pdf", score(60), 1, "", "Bangalore ")

	res := NewEngine(DefaultPolicy()).Evaluate(rec, c)
	assert.True(t, res.LocationMatch)
	assert.True(t, res.Passed)
}

// TestRank_DuplicateSourceKeepsFirst covers two raw records sharing resume1.pdf
func TestRank_DuplicateSourceKeepsFirst(t *testing.T) {
	raws := []models.RawRecord{
		{SourceID: "resume1.pdf", Fields: map[string]string{"Full Name": "First", "ATS Score": "50"}},
		{SourceID: "resume2.pdf", Fields: map[string]string{"Full Name": "Other", "ATS Score": "60"}},
		{SourceID: "resume1.pdf", Fields: map[string]string{"Full Name": "Second", "ATS Score": "99"}},
	}
	records, skipped := ingestion.NormalizeBatch(raws)
	require.Empty(t, skipped)

	results := Rank(records, criteria(t, models.CriteriaInput{RemoteAllowed: true}))
	require.Len(t, results, 2)

	count := 0
	for _, r := range results {
		if r.Record.SourceID == "resume1.pdf" {
			count++
			assert.Equal(t, "First", r.Record.FullName)
		}
	}
	assert.Equal(t, 1, count)
}

func TestRank_Empty(t *testing.T) {
	c := criteria(t, models.CriteriaInput{RemoteAllowed: true})

	results := Rank(nil, c)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestRank_MissingATSAlwaysAfterPresent(t *testing.T) {
	c := criteria(t, models.CriteriaInput{RemoteAllowed: true})
	records := []models.CandidateRecord{
		candidate("m1.pdf", nil, 30, "", ""),
		candidate("p1.pdf", score(0), 0, "", ""),
		candidate("m2.pdf", nil, 0, "", ""),
		candidate("p2.pdf", score(55), 2, "", ""),
	}

	results := Rank(records, c)
	assert.Equal(t, []string{"p2.pdf", "p1.pdf", "m1.pdf", "m2.pdf"}, sourceIDs(results))
}

func TestRank_Stable(t *testing.T) {
	c := criteria(t, models.CriteriaInput{RemoteAllowed: true})
	records := []models.CandidateRecord{
		candidate("c.pdf", score(70), 2, "", ""),
		candidate("a.pdf", score(70), 2, "", ""),
		candidate("b.pdf", score(70), 2, "", ""),
		candidate("x.pdf", nil, 2, "", ""),
		candidate("w.pdf", nil, 2, "", ""),
	}

	results := Rank(records, c)
	assert.Equal(t, []string{"c.pdf", "a.pdf", "b.pdf", "x.pdf", "w.pdf"}, sourceIDs(results))
}

func TestRankAll(t *testing.T) {
	c := criteria(t, models.CriteriaInput{
		RequiredSkills:   []string{"go"},
		AllowedLocations: []string{"pune"},
	})
	records := []models.CandidateRecord{
		candidate("fail-loc.pdf", score(95), 5, "go", "Delhi"),
		candidate("pass.pdf", score(60), 1, "go", "Pune"),
		candidate("fail-skill.pdf", score(95), 5, "java", "Pune"),
	}

	results := NewEngine(DefaultPolicy()).RankAll(records, c)
	require.Len(t, results, 3)

	// Same ordering keys regardless of outcome: ATS, then experience, skills, location
	assert.Equal(t, []string{"fail-loc.pdf", "fail-skill.pdf", "pass.pdf"}, sourceIDs(results))
	assert.False(t, results[0].Passed)
	assert.False(t, results[1].Passed)
	assert.True(t, results[2].Passed)
	assert.Equal(t, 3, results[2].Rank)
}

func TestRankAll_LocationBreaksFinalTie(t *testing.T) {
	c := criteria(t, models.CriteriaInput{AllowedLocations: []string{"pune"}})
	records := []models.CandidateRecord{
		candidate("away.pdf", score(80), 2, "", "Delhi"),
		candidate("local.pdf", score(80), 2, "", "pune"),
	}

	results := NewEngine(DefaultPolicy()).RankAll(records, c)
	assert.Equal(t, []string{"local.pdf", "away.pdf"}, sourceIDs(results))
}

func TestFilter_Idempotent(t *testing.T) {
	c := criteria(t, models.CriteriaInput{
		RequiredSkills:         []string{"python", "sql", "docker"},
		MinimumExperienceYears: 2,
		AllowedLocations:       []string{"pune", "bangalore"},
	})
	records := []models.CandidateRecord{
		candidate("1.pdf", score(80), 3, "python, sql", "Pune"),
		candidate("2.pdf", score(90), 1, "python, sql, docker", "Pune"),
		candidate("3.pdf", nil, 4, "python, sql, docker", "bangalore"),
		candidate("1.pdf", score(10), 9, "python, sql, docker", "Pune"),
		candidate("4.pdf", score(70), 6, "python, sql, docker", "Chennai"),
		candidate("5.pdf", score(65), 2, "docker, python, sql", "BANGALORE"),
	}

	engine := NewEngine(DefaultPolicy())
	once := engine.Filter(records, c)
	twice := engine.Filter(once, c)

	assert.Equal(t, once, twice)
	assert.Equal(t, []string{"3.pdf", "5.pdf"}, func() []string {
		ids := make([]string, len(once))
		for i, r := range once {
			ids[i] = r.SourceID
		}
		return ids
	}())
}

func TestFilter_ExperienceBoundaryInclusive(t *testing.T) {
	c := criteria(t, models.CriteriaInput{MinimumExperienceYears: 2, RemoteAllowed: true})
	engine := NewEngine(DefaultPolicy())

	assert.True(t, engine.Evaluate(candidate("a", nil, 2, "", ""), c).Passed)
	assert.False(t, engine.Evaluate(candidate("b", nil, 1.99, "", ""), c).Passed)
}

func TestEngine_CustomThreshold(t *testing.T) {
	c := criteria(t, models.CriteriaInput{RequiredSkills: []string{"a", "b"}, RemoteAllowed: true})
	rec := candidate("x.pdf", score(50), 1, "a", "")

	assert.False(t, NewEngine(DefaultPolicy()).Evaluate(rec, c).Passed)
	assert.True(t, NewEngine(Policy{SkillMatchThreshold: 50}).Evaluate(rec, c).Passed)
}

func TestEngine_EmptyRequiredSkills(t *testing.T) {
	c := criteria(t, models.CriteriaInput{RemoteAllowed: true})
	engine := NewEngine(DefaultPolicy())

	for _, skills := range []string{"", "java", "go, rust"} {
		res := engine.Evaluate(candidate("x.pdf", nil, 0, skills, ""), c)
		assert.Equal(t, 100.0, res.SkillMatchPct, "skills %q", skills)
	}
}

func TestDedupe(t *testing.T) {
	records := []models.CandidateRecord{
		candidate("a.pdf", score(1), 1, "", ""),
		candidate("", score(2), 2, "", ""),
		candidate("a.pdf", score(3), 3, "", ""),
		candidate("", score(4), 4, "", ""),
		candidate("b.pdf", score(5), 5, "", ""),
	}

	unique, duplicates := Dedupe(records)
	assert.Equal(t, 1, duplicates)
	require.Len(t, unique, 4)
	assert.Equal(t, 1.0, *unique[0].ATSScore)
	assert.Equal(t, []string{"a.pdf", "", "", "b.pdf"}, []string{
		unique[0].SourceID, unique[1].SourceID, unique[2].SourceID, unique[3].SourceID,
	})
}

func TestShortlist(t *testing.T) {
	c := criteria(t, models.CriteriaInput{
		RequiredSkills:         []string{"python", "sql"},
		MinimumExperienceYears: 2,
		AllowedLocations:       []string{"pune"},
	})
	records := []models.CandidateRecord{
		candidate("a.pdf", score(80), 3, "python, sql, aws", "Pune"),
		candidate("b.pdf", score(90), 5, "python, kafka", "Pune"),
		candidate("c.pdf", nil, 4, "python, sql", "pune"),
		candidate("a.pdf", score(99), 9, "python, sql", "Pune"),
		candidate("d.pdf", score(75), 1, "python, sql, aws", "Delhi"),
	}
	records[0].Gender = "Female"
	records[2].Gender = "male"

	report := NewEngine(DefaultPolicy()).Shortlist(records, c)

	assert.Equal(t, 5, report.TotalRecords)
	assert.Equal(t, 4, report.UniqueRecords)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, 1, report.MissingATS)
	assert.Equal(t, c, report.Criteria)
	assert.NotNil(t, report.Skipped)

	assert.Equal(t, []string{"a.pdf", "c.pdf"}, sourceIDs(report.Shortlisted))
	assert.Equal(t, []string{"b.pdf", "d.pdf"}, sourceIDs(report.Rejected))
	assert.Equal(t, 1, report.Rejected[0].Rank)
	assert.Equal(t, 2, report.Shortlisted[1].Rank)

	insights := report.Insights
	assert.Equal(t, 3.25, insights.AverageExperience)
	assert.Equal(t, map[string]int{"female": 1, "male": 1}, insights.GenderCounts)
	assert.Equal(t, []string{"Candidate a.pdf"}, insights.TopCandidates)
	assert.Equal(t, []models.SkillCount{{Skill: "aws", Count: 2}, {Skill: "kafka", Count: 1}}, insights.UnmatchedSkills)
}
