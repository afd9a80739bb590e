package ingestion

import (
	"sort"
	"strings"
	"unicode"

	"github.com/fmuoria/resume-shortlister/internal/models"
)

// Canonical field names of a raw record
const (
	FieldFullName      = "full_name"
	FieldGender        = "gender"
	FieldPhone         = "phone"
	FieldEmail         = "email"
	FieldLocation      = "location"
	FieldExperience    = "total_experience_years"
	FieldJobTitle      = "recent_job_title"
	FieldQualification = "highest_qualification"
	FieldSkills        = "key_skills"
	FieldATSScore      = "ats_score"
	FieldRemark        = "remark"
	FieldSourceID      = "source_id"
)

// recordFields lists the fields that count towards a record being non-empty.
var recordFields = []string{
	FieldFullName, FieldGender, FieldPhone, FieldEmail, FieldLocation, FieldExperience,
	FieldJobTitle, FieldQualification, FieldSkills, FieldATSScore, FieldRemark,
}

// aliases maps squashed header spellings to canonical field names. Squashing
// lower-cases and drops everything that is not a letter or digit, so
// "Total Experience (in years)" and "total_experience_years" both resolve.
var aliases = map[string]string{
	"fullname":                FieldFullName,
	"name":                    FieldFullName,
	"candidatename":           FieldFullName,
	"gender":                  FieldGender,
	"sex":                     FieldGender,
	"phone":                   FieldPhone,
	"phonenumber":             FieldPhone,
	"mobile":                  FieldPhone,
	"contactnumber":           FieldPhone,
	"email":                   FieldEmail,
	"emailaddress":            FieldEmail,
	"location":                FieldLocation,
	"city":                    FieldLocation,
	"totalexperience":         FieldExperience,
	"totalexperienceinyears":  FieldExperience,
	"totalexperienceyears":    FieldExperience,
	"experience":              FieldExperience,
	"yearsofexperience":       FieldExperience,
	"mostrecentjobtitle":      FieldJobTitle,
	"recentjobtitle":          FieldJobTitle,
	"jobtitle":                FieldJobTitle,
	"highestqualification":    FieldQualification,
	"qualification":           FieldQualification,
	"education":               FieldQualification,
	"keyskills":               FieldSkills,
	"keyskillscommaseparated": FieldSkills,
	"skills":                  FieldSkills,
	"atsscore":                FieldATSScore,
	"ats":                     FieldATSScore,
	"remark":                  FieldRemark,
	"remarks":                 FieldRemark,
	"resumefile":              FieldSourceID,
	"sourceid":                FieldSourceID,
	"filename":                FieldSourceID,
}

// derivedColumns are computed columns of an exported shortlist. They are not
// record fields, even though some of them mention one.
var derivedColumns = map[string]struct{}{
	"rank":          {},
	"skillmatch":    {},
	"skillmatchpct": {},
	"missingskills": {},
	"locationmatch": {},
	"shortlisted":   {},
}

// ResolveField maps a header or reply key to its canonical field name.
// It returns false for keys that name no known field.
func ResolveField(key string) (string, bool) {
	squashed := squash(key)
	if squashed == "" {
		return "", false
	}
	if field, ok := aliases[squashed]; ok {
		return field, true
	}
	if _, ok := derivedColumns[squashed]; ok {
		return "", false
	}

	// Loose spellings such as "Experience (yrs)" or "ATS Score /100"
	switch {
	case strings.HasPrefix(squashed, "ats"):
		return FieldATSScore, true
	case strings.Contains(squashed, "experience"):
		return FieldExperience, true
	case strings.Contains(squashed, "skill"):
		return FieldSkills, true
	case strings.Contains(squashed, "location"):
		return FieldLocation, true
	}
	return "", false
}

// resolveFields re-keys a raw mapping by canonical field name. Keys are visited
// in sorted order and the first non-blank value wins, so the result does not
// depend on map iteration order.
func resolveFields(fields map[string]string) map[string]string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]string, len(recordFields)+1)
	for _, k := range keys {
		field, ok := ResolveField(k)
		if !ok {
			continue
		}
		v := strings.TrimSpace(fields[k])
		if existing, seen := out[field]; seen && !models.IsBlank(existing) {
			continue
		}
		out[field] = v
	}
	return out
}

func squash(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseFieldReply turns a "Field: Value" text reply from the extraction
// service into a raw field mapping. Lines without a colon and keys naming no
// known field are ignored; a later line for the same field replaces an earlier one.
func ParseFieldReply(reply string) map[string]string {
	fields := make(map[string]string)
	for _, line := range strings.Split(reply, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.Trim(strings.TrimSpace(key), "*-#` ")
		field, known := ResolveField(key)
		if !known {
			continue
		}
		fields[field] = strings.TrimSpace(value)
	}
	return fields
}
