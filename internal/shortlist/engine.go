// Package shortlist filters and ranks normalized candidate records against a
// job's criteria. Every operation is a pure function of its arguments; an
// Engine holds only its immutable policy and is safe for concurrent use.
package shortlist

import (
	"github.com/fmuoria/resume-shortlister/internal/models"
	"github.com/fmuoria/resume-shortlister/internal/scoring"
)

// DefaultSkillMatchThreshold is the minimum skill match, in percent, a
// candidate needs to pass the filter.
const DefaultSkillMatchThreshold = 70.0

// Policy holds the tunable rules of the filter stage
type Policy struct {
	SkillMatchThreshold float64 `json:"skill_match_threshold" yaml:"skill_match_threshold"`
}

// DefaultPolicy returns the policy used when nothing is configured
func DefaultPolicy() Policy {
	return Policy{SkillMatchThreshold: DefaultSkillMatchThreshold}
}

// Engine evaluates, filters and ranks candidate records
type Engine struct {
	policy Policy
}

// NewEngine creates an engine with the given policy
func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy}
}

// Policy returns the engine's policy
func (e *Engine) Policy() Policy {
	return e.policy
}

// Evaluate scores one record against the criteria. The returned result has no
// rank; ranks are assigned by ordering a collection.
func (e *Engine) Evaluate(rec models.CandidateRecord, criteria models.JobCriteria) models.RankedResult {
	pct := scoring.SkillMatchPct(criteria.RequiredSkills, rec.KeySkills)
	loc := scoring.LocationMatch(rec.Location, criteria)

	return models.RankedResult{
		Record:        rec,
		SkillMatchPct: pct,
		LocationMatch: loc,
		Passed: rec.TotalExperienceYears >= criteria.MinimumExperienceYears &&
			pct >= e.policy.SkillMatchThreshold &&
			loc,
	}
}

// Rank filters records and orders the survivors, assigning ranks from 1
func (e *Engine) Rank(records []models.CandidateRecord, criteria models.JobCriteria) []models.RankedResult {
	unique, _ := Dedupe(records)

	results := make([]models.RankedResult, 0, len(unique))
	for _, rec := range unique {
		if res := e.Evaluate(rec, criteria); res.Passed {
			results = append(results, res)
		}
	}

	Order(results)
	return results
}

// RankAll evaluates every unique record, passing or not, and orders them with
// the same keys as Rank. Passed tells the two groups apart.
func (e *Engine) RankAll(records []models.CandidateRecord, criteria models.JobCriteria) []models.RankedResult {
	unique, _ := Dedupe(records)

	results := make([]models.RankedResult, len(unique))
	for i, rec := range unique {
		results[i] = e.Evaluate(rec, criteria)
	}

	Order(results)
	return results
}

// Shortlist runs a full pass over records and builds a report. Shortlisted and
// Rejected are each ranked from 1. RunID, CreatedAt and Skipped are left for
// the caller.
func (e *Engine) Shortlist(records []models.CandidateRecord, criteria models.JobCriteria) models.Report {
	unique, duplicates := Dedupe(records)

	shortlisted := []models.RankedResult{}
	rejected := []models.RankedResult{}
	missingATS := 0
	for _, rec := range unique {
		if !rec.HasATSScore() {
			missingATS++
		}
		res := e.Evaluate(rec, criteria)
		if res.Passed {
			shortlisted = append(shortlisted, res)
		} else {
			rejected = append(rejected, res)
		}
	}

	Order(shortlisted)
	Order(rejected)

	return models.Report{
		Criteria:      criteria,
		Shortlisted:   shortlisted,
		Rejected:      rejected,
		TotalRecords:  len(records),
		UniqueRecords: len(unique),
		Duplicates:    duplicates,
		MissingATS:    missingATS,
		Skipped:       []models.SkippedRecord{},
		Insights:      BuildInsights(unique, shortlisted, criteria),
	}
}

var defaultEngine = NewEngine(DefaultPolicy())

// Rank filters and orders records using the default policy
func Rank(records []models.CandidateRecord, criteria models.JobCriteria) []models.RankedResult {
	return defaultEngine.Rank(records, criteria)
}
