package models

import "fmt"

// ValidationError is returned when a raw record cannot become a CandidateRecord.
type ValidationError struct {
	SourceID string
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.SourceID == "" {
		return fmt.Sprintf("invalid record: %s", e.Reason)
	}
	return fmt.Sprintf("invalid record %q: %s", e.SourceID, e.Reason)
}

// CriteriaError is returned when JobCriteria construction receives an invalid value.
type CriteriaError struct {
	Field  string
	Reason string
}

func (e *CriteriaError) Error() string {
	return fmt.Sprintf("invalid criteria %s: %s", e.Field, e.Reason)
}
