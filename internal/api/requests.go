package api

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/fmuoria/resume-shortlister/internal/ingestion"
	"github.com/fmuoria/resume-shortlister/internal/models"
	"github.com/fmuoria/resume-shortlister/internal/shortlist"
)

// stringList accepts either a JSON list of strings or one comma-separated
// string, the way the criteria form submits it.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("expected a string or a list of strings")
	}
	*l = stringList{s}
	return nil
}

// criteriaRequest is the body of POST /criteria and the inline criteria of a
// shortlist request. RemoteAllowed defaults to true when omitted.
type criteriaRequest struct {
	Role                   string     `json:"role"`
	Description            string     `json:"description"`
	RequiredSkills         stringList `json:"required_skills"`
	MinimumExperienceYears float64    `json:"minimum_experience_years"`
	AllowedLocations       stringList `json:"allowed_locations"`
	RemoteAllowed          *bool      `json:"remote_allowed"`
}

func (c criteriaRequest) input() models.CriteriaInput {
	remote := true
	if c.RemoteAllowed != nil {
		remote = *c.RemoteAllowed
	}
	return models.CriteriaInput{
		Role:                   c.Role,
		Description:            c.Description,
		RequiredSkills:         c.RequiredSkills,
		MinimumExperienceYears: c.MinimumExperienceYears,
		AllowedLocations:       c.AllowedLocations,
		RemoteAllowed:          remote,
	}
}

// replyRecord is one "Field: Value" reply from the extraction service
type replyRecord struct {
	SourceID string `json:"source_id"`
	Text     string `json:"text"`
}

// shortlistRequest is the body of POST /shortlist. Criteria are taken from
// Criteria, then CriteriaID, then the session's current criteria.
type shortlistRequest struct {
	Criteria   *criteriaRequest   `json:"criteria,omitempty"`
	CriteriaID string             `json:"criteria_id,omitempty"`
	Records    []models.RawRecord `json:"records"`
	Replies    []replyRecord      `json:"replies"`
}

// rawRecords returns field-map records followed by parsed replies
func (r shortlistRequest) rawRecords() []models.RawRecord {
	raws := make([]models.RawRecord, 0, len(r.Records)+len(r.Replies))
	raws = append(raws, r.Records...)
	for _, reply := range r.Replies {
		raws = append(raws, models.RawRecord{
			SourceID: reply.SourceID,
			Fields:   ingestion.ParseFieldReply(reply.Text),
		})
	}
	return raws
}

// facetsFromQuery reads report filters. Each facet may be repeated or
// comma-separated: ?gender=female&location=pune,delhi&min_experience=2
func facetsFromQuery(q url.Values) (shortlist.Facets, error) {
	facets := shortlist.Facets{
		Genders:        models.ParseTokenSet(strings.Join(q["gender"], ",")),
		Locations:      models.ParseTokenSet(strings.Join(q["location"], ",")),
		Qualifications: models.ParseTokenSet(strings.Join(q["qualification"], ",")),
		JobTitles:      models.ParseTokenSet(strings.Join(q["job_title"], ",")),
	}

	if v := q.Get("min_experience"); v != "" {
		years, err := strconv.ParseFloat(v, 64)
		if err != nil || years < 0 || math.IsNaN(years) || math.IsInf(years, 0) {
			return shortlist.Facets{}, errBadRequest("min_experience must be a non-negative number")
		}
		facets.MinExperience = years
	}
	return facets, nil
}
