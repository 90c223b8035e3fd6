package main

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/matsen/shelf/internal/crossref"
	"github.com/matsen/shelf/internal/importer"
	"github.com/matsen/shelf/internal/query"
	"github.com/matsen/shelf/internal/reference"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"Übersetzung über alles", 8, "Übers..."},
		{"abc", 2, "ab"},
	}

	for _, tt := range tests {
		if got := truncateString(tt.input, tt.maxLen); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}

func TestPluralize(t *testing.T) {
	if got := pluralize(1, "entry", "entries"); got != "1 entry" {
		t.Errorf("pluralize(1) = %q", got)
	}
	if got := pluralize(3, "entry", "entries"); got != "3 entries" {
		t.Errorf("pluralize(3) = %q", got)
	}
}

func TestPromptYes(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  yes  \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"y", true},
	}

	for _, tt := range tests {
		var out strings.Builder
		if got := promptYes(strings.NewReader(tt.input), &out, "Remove?"); got != tt.want {
			t.Errorf("promptYes(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "Remove? [y/N]") {
			t.Errorf("prompt = %q", out.String())
		}
	}
}

func TestQueryFlagsParams(t *testing.T) {
	f := queryFlags{author: "Smith", typ: "Article"}
	got := f.params([]string{"cats"})
	want := query.Params{Author: "Smith", Type: "Article", General: "cats"}
	if got != want {
		t.Errorf("params() = %+v, want %+v", got, want)
	}
	if !(&queryFlags{}).params(nil).IsEmpty() {
		t.Error("params() without flags should be empty")
	}
}

func TestEntryTable(t *testing.T) {
	entries := []reference.Entry{{
		Record: reference.Record{Key: "smith2020", Type: reference.Article, Title: "On Cats", Authors: []string{"Alice Smith"}, Year: 2020},
		Tags:   []string{"pets"},
	}}
	out := entryTable(entries)
	for _, want := range []string{"Key", "smith2020", "Article", "2020", "Alice Smith", "On Cats", "pets"} {
		if !strings.Contains(out, want) {
			t.Errorf("entryTable() missing %q:\n%s", want, out)
		}
	}
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrapped: %w", importer.ErrNoRecord), ExitDataError},
		{importer.ErrUnknownFileType, ExitDataError},
		{fmt.Errorf("%w: refused", crossref.ErrNetwork), ExitNetworkError},
		{&crossref.APIError{StatusCode: 404, DOI: "10.1234/x"}, ExitNetworkError},
		{errors.New("disk full"), ExitError},
	}
	for _, tt := range tests {
		if got := importExitCode(tt.err); got != tt.want {
			t.Errorf("importExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}

	if got := queryExitCode(&query.PatternError{Field: "title", Pattern: "(", Err: errors.New("bad")}); got != ExitDataError {
		t.Errorf("queryExitCode(PatternError) = %d, want %d", got, ExitDataError)
	}
}
