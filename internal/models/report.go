package models

import "time"

// SkillCount is a skill and how many records list it
type SkillCount struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

// Insights holds the summary figures shown above the ranked table
type Insights struct {
	AverageExperience float64        `json:"average_experience"`
	GenderCounts      map[string]int `json:"gender_counts"`
	TopCandidates     []string       `json:"top_candidates"`
	UnmatchedSkills   []SkillCount   `json:"unmatched_skills"`
}

// Report is the outcome of one shortlisting run
type Report struct {
	RunID         string          `json:"run_id"`
	CreatedAt     time.Time       `json:"created_at"`
	Criteria      JobCriteria     `json:"criteria"`
	Shortlisted   []RankedResult  `json:"shortlisted"`
	Rejected      []RankedResult  `json:"rejected"`
	TotalRecords  int             `json:"total_records"`
	UniqueRecords int             `json:"unique_records"`
	Duplicates    int             `json:"duplicates"`
	MissingATS    int             `json:"missing_ats"`
	Skipped       []SkippedRecord `json:"skipped"`
	Insights      Insights        `json:"insights"`
}
