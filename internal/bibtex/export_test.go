package bibtex

import (
	"strings"
	"testing"

	"github.com/matsen/shelf/internal/reference"
)

func TestToBibTeX_FromParsedRecord(t *testing.T) {
	text := `@inproceedings{smith2020,
  author = {Smith, Alice and Jones, Bob},
  title = {On {C}ats \& Dogs},
  booktitle = {CatConf},
  year = 2020,
  month = 3
}`
	recs, errs := Parse(text)
	if len(errs) > 0 || len(recs) != 1 {
		t.Fatalf("Parse() = (%v, %v)", recs, errs)
	}

	got := ToBibTeX(recs[0])

	if !strings.HasPrefix(got, "@inproceedings{smith2020,") {
		t.Errorf("ToBibTeX() should start with @inproceedings{smith2020, got:\n%s", got)
	}
	if !strings.Contains(got, `author = {Smith, Alice and Jones, Bob}`) {
		t.Errorf("ToBibTeX() should contain source author field, got:\n%s", got)
	}
	if !strings.Contains(got, `title = {On {C}ats \& Dogs}`) {
		t.Errorf("ToBibTeX() should keep the source title verbatim, got:\n%s", got)
	}
	if !strings.Contains(got, `booktitle = {CatConf}`) {
		t.Errorf("ToBibTeX() should contain booktitle, got:\n%s", got)
	}
	if !strings.Contains(got, `month = {mar}`) {
		t.Errorf("ToBibTeX() should contain month, got:\n%s", got)
	}
	if !strings.HasSuffix(strings.TrimSpace(got), "}") {
		t.Errorf("ToBibTeX() should end with }, got:\n%s", got)
	}

	// Output parses back to the same record
	back, errs := Parse(got)
	if len(errs) > 0 || len(back) != 1 {
		t.Fatalf("Parse(ToBibTeX()) = (%v, %v)", back, errs)
	}
	if back[0].Title != recs[0].Title || back[0].Year != recs[0].Year || *back[0].Month != *recs[0].Month {
		t.Errorf("Parse(ToBibTeX()) = %+v, want %+v", back[0], recs[0])
	}
}

func TestToBibTeX_EscapesRecordOnlyValues(t *testing.T) {
	rec := reference.Record{
		Key:     "Doe2021",
		Type:    reference.Article,
		Title:   "Profit & Loss at 100%",
		Authors: []string{"Jane Doe"},
		Year:    2021,
	}

	got := ToBibTeX(rec)
	if !strings.Contains(got, `title = {Profit \& Loss at 100\%}`) {
		t.Errorf("ToBibTeX() should escape title, got:\n%s", got)
	}
	if !strings.Contains(got, `author = {Jane Doe}`) {
		t.Errorf("ToBibTeX() should contain author, got:\n%s", got)
	}
	if strings.Contains(got, "month") {
		t.Errorf("ToBibTeX() should omit month, got:\n%s", got)
	}
}

func TestToBibTeXList(t *testing.T) {
	recs := []reference.Record{
		{Key: "a", Type: reference.Misc, Title: "A", Authors: []string{"X"}, Year: 2000},
		{Key: "b", Type: reference.Book, Title: "B", Authors: []string{"Y"}, Year: 2001},
	}
	got := ToBibTeXList(recs)
	if strings.Count(got, "@") != 2 {
		t.Errorf("ToBibTeXList() should contain 2 entries, got:\n%s", got)
	}
	if !strings.Contains(got, "@misc{a,") || !strings.Contains(got, "@book{b,") {
		t.Errorf("ToBibTeXList() missing entries, got:\n%s", got)
	}
}
