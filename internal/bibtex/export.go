package bibtex

import (
	"fmt"
	"sort"
	"strings"

	"github.com/matsen/shelf/internal/reference"
)

// coreFields are written from the record itself rather than from Fields.
var coreFields = map[string]bool{
	"author": true,
	"title":  true,
	"year":   true,
	"month":  true,
}

// ToBibTeX converts a record to BibTeX format. Fields kept from the source
// entry are written back verbatim; values that only exist on the record
// (from a remote lookup, for instance) are escaped.
func ToBibTeX(rec reference.Record) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@%s{%s,\n", rec.Type.BibTeX(), rec.Key))

	if len(rec.Authors) > 0 {
		author, ok := sourceField(rec, "author")
		if !ok {
			author = escapeLatex(strings.Join(rec.Authors, AuthorSeparator))
		}
		b.WriteString(fmt.Sprintf("  author = {%s},\n", author))
	}

	title, ok := sourceField(rec, "title")
	if !ok {
		title = escapeLatex(rec.Title)
	}
	b.WriteString(fmt.Sprintf("  title = {%s},\n", title))

	b.WriteString(fmt.Sprintf("  year = {%d},\n", rec.Year))

	if rec.Month != nil {
		b.WriteString(fmt.Sprintf("  month = {%s},\n", strings.ToLower(rec.Month.Short())))
	}

	// Remaining source fields in a stable order
	var names []string
	for name := range rec.Fields {
		if !coreFields[strings.ToLower(name)] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		b.WriteString(fmt.Sprintf("  %s = {%s},\n", name, rec.Fields[name]))
	}

	b.WriteString("}\n")

	return b.String()
}

// ToBibTeXList converts multiple records to BibTeX format.
func ToBibTeXList(recs []reference.Record) string {
	var entries []string
	for _, rec := range recs {
		entries = append(entries, ToBibTeX(rec))
	}
	return strings.Join(entries, "\n")
}

// sourceField looks up a source field by name, ignoring case.
func sourceField(rec reference.Record, name string) (string, bool) {
	for k, v := range rec.Fields {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
