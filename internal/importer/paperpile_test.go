package importer

import (
	"encoding/json"
	"testing"

	"github.com/matsen/shelf/internal/reference"
)

func TestFlexibleString_String(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"string year", `"2026"`, "2026"},
		{"number year", `2026`, "2026"},
		{"null value", `null`, ""},
		{"float number", `2026.0`, "2026.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexibleString
			if err := json.Unmarshal([]byte(tt.input), &f); err != nil {
				t.Fatalf("UnmarshalJSON() error = %v", err)
			}
			if got := f.String(); got != tt.want {
				t.Errorf("String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFlexibleString_InvalidInput(t *testing.T) {
	for _, input := range []string{`[1,2,3]`, `{"key": "value"}`} {
		var f FlexibleString
		if err := json.Unmarshal([]byte(input), &f); err == nil {
			t.Errorf("UnmarshalJSON() expected error for input %s", input)
		}
	}
}

func TestParsePaperpile_ValidEntry(t *testing.T) {
	data := []byte(`[{
		"_id": "abc123",
		"citekey": "Smith2026-ab",
		"doi": "10.1234/test",
		"title": "Test Paper",
		"journal": "Test Journal",
		"published": {"year": "2026", "month": "3"},
		"author": [
			{"first": "John", "last": "Smith"},
			{"first": "Jane", "last": "Doe"}
		]
	}]`)

	records, errs := ParsePaperpile(data)
	if len(errs) > 0 {
		t.Fatalf("ParsePaperpile() returned errors: %v", errs)
	}
	if len(records) != 1 {
		t.Fatalf("ParsePaperpile() returned %d records, want 1", len(records))
	}

	rec := records[0]
	if rec.Key != "Smith2026-ab" {
		t.Errorf("Key = %v, want Smith2026-ab", rec.Key)
	}
	if rec.Type != reference.Article {
		t.Errorf("Type = %v, want Article", rec.Type)
	}
	if rec.Title != "Test Paper" {
		t.Errorf("Title = %v, want Test Paper", rec.Title)
	}
	if len(rec.Authors) != 2 || rec.Authors[0] != "John Smith" || rec.Authors[1] != "Jane Doe" {
		t.Errorf("Authors = %v, want [John Smith Jane Doe]", rec.Authors)
	}
	if rec.Year != 2026 {
		t.Errorf("Year = %d, want 2026", rec.Year)
	}
	if rec.Month == nil || *rec.Month != reference.Mar {
		t.Errorf("Month = %v, want Mar", rec.Month)
	}
	if rec.Fields["doi"] != "10.1234/test" || rec.Fields["journal"] != "Test Journal" {
		t.Errorf("Fields = %v, want doi and journal", rec.Fields)
	}
	if rec.Fields["author"] != "John Smith and Jane Doe" {
		t.Errorf("Fields[author] = %q", rec.Fields["author"])
	}
}

func TestParsePaperpile_NoCitekey(t *testing.T) {
	data := []byte(`[{
		"_id": "abc123",
		"title": "Test Paper",
		"published": {"year": "2026"},
		"author": [{"first": "John", "last": "Smith"}]
	}]`)

	records, errs := ParsePaperpile(data)
	if len(errs) > 0 {
		t.Fatalf("ParsePaperpile() returned errors: %v", errs)
	}
	if records[0].Key != "abc123" {
		t.Errorf("Key = %v, want abc123 (Paperpile ID)", records[0].Key)
	}
	if records[0].Month != nil {
		t.Errorf("Month = %v, want nil", records[0].Month)
	}
}

func TestParsePaperpile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing title", `[{"_id": "abc", "published": {"year": "2026"}, "author": [{"last": "Smith"}]}]`},
		{"missing author", `[{"_id": "abc", "title": "Test", "published": {"year": "2026"}, "author": []}]`},
		{"missing year", `[{"_id": "abc", "title": "Test", "author": [{"last": "Smith"}]}]`},
		{"invalid year", `[{"_id": "abc", "title": "Test", "published": {"year": "soon"}, "author": [{"last": "Smith"}]}]`},
		{"month out of range", `[{"_id": "abc", "title": "Test", "published": {"year": 2026, "month": 13}, "author": [{"last": "Smith"}]}]`},
		{"not json", `not valid json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, errs := ParsePaperpile([]byte(tt.data))
			if len(errs) == 0 {
				t.Errorf("ParsePaperpile() expected error, got records: %+v", records)
			}
		})
	}
}

func TestParsePaperpile_PartialErrors(t *testing.T) {
	data := []byte(`[
		{"_id": "1", "citekey": "Valid2026", "title": "Valid", "published": {"year": "2026"}, "author": [{"last": "Valid"}]},
		{"_id": "2", "citekey": "Invalid", "title": "", "published": {"year": "2026"}, "author": [{"last": "Invalid"}]},
		{"_id": "3", "citekey": "AlsoValid2025", "title": "Also Valid", "published": {"year": 2025, "month": 6}, "author": [{"last": "Corporation"}]}
	]`)

	records, errs := ParsePaperpile(data)
	if len(records) != 2 {
		t.Fatalf("ParsePaperpile() returned %d records, want 2", len(records))
	}
	if len(errs) != 1 {
		t.Errorf("ParsePaperpile() returned %d errors, want 1", len(errs))
	}
	if records[0].Key != "Valid2026" || records[1].Key != "AlsoValid2025" {
		t.Errorf("Keys = [%s, %s], want [Valid2026, AlsoValid2025]", records[0].Key, records[1].Key)
	}
	if records[1].Authors[0] != "Corporation" {
		t.Errorf("Authors[0] = %q, want Corporation", records[1].Authors[0])
	}
}
