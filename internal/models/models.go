package models

import (
	"math"
	"strings"
)

// CandidateRecord is one normalized resume, as produced by the record normalizer
type CandidateRecord struct {
	SourceID             string   `json:"source_id"`
	FullName             string   `json:"full_name"`
	Gender               string   `json:"gender"`
	Phone                string   `json:"phone"`
	Email                string   `json:"email"`
	Location             string   `json:"location"`
	TotalExperienceYears float64  `json:"total_experience_years"`
	ExperienceUnparsed   bool     `json:"experience_unparsed,omitempty"`
	RecentJobTitle       string   `json:"recent_job_title"`
	HighestQualification string   `json:"highest_qualification"`
	KeySkills            TokenSet `json:"key_skills"`
	ATSScore             *float64 `json:"ats_score"` // nil when missing
	Remark               string   `json:"remark,omitempty"`
}

// HasATSScore reports whether the record carries a usable ATS score
func (r CandidateRecord) HasATSScore() bool {
	return r.ATSScore != nil
}

// NormalizedLocation returns the location in the form used for matching
func (r CandidateRecord) NormalizedLocation() string {
	return NormalizeToken(r.Location)
}

// RawRecord is the field-name to value mapping handed over by the extraction service
type RawRecord struct {
	SourceID string            `json:"source_id"`
	Fields   map[string]string `json:"fields"`
}

// SkippedRecord describes a raw record that normalization rejected
type SkippedRecord struct {
	SourceID string `json:"source_id"`
	Error    string `json:"error"`
}

// JobCriteria holds one shortlisting request. Build it with NewJobCriteria.
type JobCriteria struct {
	Role                   string   `json:"role,omitempty"`
	Description            string   `json:"description,omitempty"`
	RequiredSkills         TokenSet `json:"required_skills"`
	MinimumExperienceYears float64  `json:"minimum_experience_years"`
	AllowedLocations       TokenSet `json:"allowed_locations"`
	RemoteAllowed          bool     `json:"remote_allowed"`
}

// CriteriaInput carries the unvalidated values of a criteria form.
// List entries may themselves be comma-separated.
type CriteriaInput struct {
	Role                   string   `json:"role"`
	Description            string   `json:"description"`
	RequiredSkills         []string `json:"required_skills"`
	MinimumExperienceYears float64  `json:"minimum_experience_years"`
	AllowedLocations       []string `json:"allowed_locations"`
	RemoteAllowed          bool     `json:"remote_allowed"`
}

// NewJobCriteria validates in and returns normalized criteria
func NewJobCriteria(in CriteriaInput) (JobCriteria, error) {
	if math.IsNaN(in.MinimumExperienceYears) || math.IsInf(in.MinimumExperienceYears, 0) {
		return JobCriteria{}, &CriteriaError{Field: "minimum_experience_years", Reason: "must be a finite number"}
	}
	if in.MinimumExperienceYears < 0 {
		return JobCriteria{}, &CriteriaError{Field: "minimum_experience_years", Reason: "must not be negative"}
	}

	return JobCriteria{
		Role:                   strings.TrimSpace(in.Role),
		Description:            strings.TrimSpace(in.Description),
		RequiredSkills:         ParseTokenSet(strings.Join(in.RequiredSkills, ",")),
		MinimumExperienceYears: in.MinimumExperienceYears,
		AllowedLocations:       ParseTokenSet(strings.Join(in.AllowedLocations, ",")),
		RemoteAllowed:          in.RemoteAllowed,
	}, nil
}

// RankedResult is one evaluated record inside an ordered result set
type RankedResult struct {
	Rank          int             `json:"rank"`
	Record        CandidateRecord `json:"record"`
	SkillMatchPct float64         `json:"skill_match_pct"`
	LocationMatch bool            `json:"location_match"`
	Passed        bool            `json:"passed"`
}
