package naming

import (
	"testing"

	"github.com/matsen/shelf/internal/config"
	"github.com/matsen/shelf/internal/reference"
)

func testConfig(pattern string) *config.Config {
	return &config.Config{
		NamePattern:     pattern,
		MaxAuthorNames:  2,
		AuthorSeparator: "_",
	}
}

func testRecord() reference.Record {
	month := reference.Mar
	return reference.Record{
		Key:     "Smith2020",
		Type:    reference.Article,
		Title:   "On Cats",
		Authors: []string{"Alice Smith", "Jones, Bob", "Carol White"},
		Year:    2020,
		Month:   &month,
	}
}

func TestAssemble_DefaultPattern(t *testing.T) {
	rec := reference.Record{
		Key:     "smith2020",
		Title:   "On Cats",
		Authors: []string{"Alice Smith"},
		Year:    2020,
	}
	got := Assemble("original", rec, testConfig("%A-%y-%T"))
	if got != "Alice Smith-20-On Cats" {
		t.Errorf("Assemble() = %q, want %q", got, "Alice Smith-20-On Cats")
	}
}

func TestAssemble_Placeholders(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"%F", "My Paper"},
		{"%f", "my paper"},
		{"%K", "Smith2020"},
		{"%k", "smith2020"},
		{"%A", "Alice Smith_Jones, Bob"},
		{"%a", "alice smith_jones, bob"},
		{"%L", "Smith_Jones"},
		{"%l", "smith_jones"},
		{"%T", "On Cats"},
		{"%t", "on cats"},
		{"%Y", "2020"},
		{"%y", "20"},
		{"%M", "March"},
		{"%m", "march"},
		{"%L (%Y) %T", "Smith_Jones (2020) On Cats"},
		{"100%", "100%"},
		{"%Q-%K", "%Q-Smith2020"},
		{"no placeholders", "no placeholders"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got := Assemble("My Paper", testRecord(), testConfig(tt.pattern))
			if got != tt.want {
				t.Errorf("Assemble(%q) = %q, want %q", tt.pattern, got, tt.want)
			}
		})
	}
}

func TestAssemble_NoMonth(t *testing.T) {
	rec := testRecord()
	rec.Month = nil
	if got := Assemble("x", rec, testConfig("a%Mb%mc")); got != "abc" {
		t.Errorf("Assemble() = %q, want abc", got)
	}
}

func TestAssemble_AuthorLimits(t *testing.T) {
	tests := []struct {
		name    string
		max     uint32
		authors []string
		want    string
	}{
		{"zero limit", 0, []string{"Alice Smith"}, ""},
		{"no authors", 2, nil, ""},
		{"one of three", 1, []string{"A X", "B Y", "C Z"}, "A X"},
		{"limit above count", 10, []string{"A X", "B Y"}, "A X_B Y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig("%A")
			cfg.MaxAuthorNames = tt.max
			rec := testRecord()
			rec.Authors = tt.authors
			if got := Assemble("x", rec, cfg); got != tt.want {
				t.Errorf("Assemble() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAssemble_ValuesNotReexpanded(t *testing.T) {
	rec := testRecord()
	rec.Title = "100%K"
	if got := Assemble("x", rec, testConfig("%T")); got != "100%K" {
		t.Errorf("Assemble() = %q, want 100%%K", got)
	}
}

func TestAssemble_Pure(t *testing.T) {
	cfg := testConfig("%K-%A-%T-%Y")
	rec := testRecord()
	first := Assemble("stem", rec, cfg)
	for i := 0; i < 5; i++ {
		if got := Assemble("stem", rec, cfg); got != first {
			t.Fatalf("Assemble() = %q on call %d, want %q", got, i, first)
		}
	}

	// Changing the title changes only the title token
	changed := rec
	changed.Title = "On Dogs"
	if got := Assemble("stem", changed, cfg); got != "Smith2020-Alice Smith_Jones, Bob-On Dogs-2020" {
		t.Errorf("Assemble() = %q after title change", got)
	}
}

func TestAssemble_TwoDigitYear(t *testing.T) {
	rec := testRecord()
	rec.Year = 2005
	if got := Assemble("x", rec, testConfig("%y")); got != "5" {
		t.Errorf("Assemble(%%y) = %q, want 5", got)
	}
}

func TestFileName(t *testing.T) {
	got := FileName("orig", "pdf", testRecord(), testConfig("%k"))
	if got != "smith2020.pdf" {
		t.Errorf("FileName() = %q, want smith2020.pdf", got)
	}
}

func TestLastName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Alice Smith", "Smith"},
		{"Smith, Alice", "Smith"},
		{"Ludwig van Beethoven", "Beethoven"},
		{"Plato", "Plato"},
	}
	for _, tt := range tests {
		if got := LastName(tt.input); got != tt.want {
			t.Errorf("LastName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
