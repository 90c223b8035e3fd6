// Package query matches library entries against regular expressions.
package query

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/matsen/shelf/internal/reference"
)

// Params holds optional patterns. An empty pattern imposes no constraint.
type Params struct {
	Author  string `json:"author,omitempty"`
	Year    string `json:"year,omitempty"`
	Title   string `json:"title,omitempty"`
	Type    string `json:"type,omitempty"`
	General string `json:"general,omitempty"` // Matches any author, the title, year or type
}

// IsEmpty reports whether no pattern is set.
func (p Params) IsEmpty() bool {
	return p == Params{}
}

// PatternError is returned when a pattern does not compile.
type PatternError struct {
	Field   string
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid %s pattern %q: %v", e.Field, e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// Matcher is a compiled set of patterns.
type Matcher struct {
	author, year, title, typ, general *regexp.Regexp
}

// Compile compiles every supplied pattern. Any invalid pattern fails the
// whole query.
func Compile(p Params) (*Matcher, error) {
	var m Matcher
	fields := []struct {
		name    string
		pattern string
		dst     **regexp.Regexp
	}{
		{"author", p.Author, &m.author},
		{"year", p.Year, &m.year},
		{"title", p.Title, &m.title},
		{"type", p.Type, &m.typ},
		{"general", p.General, &m.general},
	}

	for _, f := range fields {
		if f.pattern == "" {
			continue
		}
		re, err := regexp.Compile(f.pattern)
		if err != nil {
			return nil, &PatternError{Field: f.name, Pattern: f.pattern, Err: err}
		}
		*f.dst = re
	}

	return &m, nil
}

// Match reports whether a record satisfies every compiled pattern.
func (m *Matcher) Match(rec reference.Record) bool {
	year := strconv.FormatUint(uint64(rec.Year), 10)
	typ := rec.Type.String()

	if m.author != nil && !anyMatch(m.author, rec.Authors) {
		return false
	}
	if m.year != nil && !m.year.MatchString(year) {
		return false
	}
	if m.title != nil && !m.title.MatchString(rec.Title) {
		return false
	}
	if m.typ != nil && !m.typ.MatchString(typ) {
		return false
	}
	if m.general != nil {
		return anyMatch(m.general, rec.Authors) ||
			m.general.MatchString(rec.Title) ||
			m.general.MatchString(year) ||
			m.general.MatchString(typ)
	}
	return true
}

func anyMatch(re *regexp.Regexp, values []string) bool {
	for _, v := range values {
		if re.MatchString(v) {
			return true
		}
	}
	return false
}

// Run returns the indices of matching entries in library order. An empty
// result is not an error.
func Run(entries []reference.Entry, p Params) ([]int, error) {
	m, err := Compile(p)
	if err != nil {
		return nil, err
	}

	matches := []int{}
	for i, e := range entries {
		if m.Match(e.Record) {
			matches = append(matches, i)
		}
	}
	return matches, nil
}

// Select returns copies of the entries at the given indices.
func Select(entries []reference.Entry, indices []int) []reference.Entry {
	out := make([]reference.Entry, len(indices))
	for i, idx := range indices {
		out[i] = entries[idx].Clone()
	}
	return out
}
