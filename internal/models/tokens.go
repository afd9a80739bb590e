package models

import (
	"encoding/json"
	"sort"
	"strings"
)

// placeholders are values the extraction service emits when it has nothing to say.
var placeholders = map[string]struct{}{
	"n/a":  {},
	"na":   {},
	"none": {},
	"null": {},
	"nil":  {},
	"-":    {},
}

// NormalizeToken lower-cases s, trims it and collapses inner whitespace.
func NormalizeToken(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// IsBlank reports whether s carries no information once normalized.
func IsBlank(s string) bool {
	n := NormalizeToken(s)
	if n == "" {
		return true
	}
	_, ok := placeholders[n]
	return ok
}

// TokenSet is a sorted set of normalized, non-empty tokens.
type TokenSet []string

// NewTokenSet normalizes tokens, drops blanks and duplicates, and sorts the result.
func NewTokenSet(tokens ...string) TokenSet {
	seen := make(map[string]struct{}, len(tokens))
	set := make(TokenSet, 0, len(tokens))
	for _, t := range tokens {
		if IsBlank(t) {
			continue
		}
		n := NormalizeToken(t)
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		set = append(set, n)
	}
	sort.Strings(set)
	return set
}

// ParseTokenSet splits a comma-separated string into a TokenSet.
func ParseTokenSet(csv string) TokenSet {
	return NewTokenSet(strings.Split(csv, ",")...)
}

// Contains reports whether the normalized form of token is in the set.
func (s TokenSet) Contains(token string) bool {
	n := NormalizeToken(token)
	i := sort.SearchStrings(s, n)
	return i < len(s) && s[i] == n
}

// Len returns the number of tokens.
func (s TokenSet) Len() int {
	return len(s)
}

// String joins the tokens the way they arrived from the form: comma-separated.
func (s TokenSet) String() string {
	return strings.Join(s, ", ")
}

// UnmarshalJSON re-normalizes decoded tokens so stored sets keep their invariant.
func (s *TokenSet) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = NewTokenSet(raw...)
	return nil
}
