// Package naming renders file names for imported papers from a placeholder
// pattern.
package naming

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/matsen/shelf/internal/config"
	"github.com/matsen/shelf/internal/reference"
)

// Assemble expands cfg.NamePattern for a record. stem is the original file
// name without extension. The pattern is scanned once from left to right, so
// placeholder-like text inside an expanded value is never expanded again.
// Unknown placeholders are kept literally.
func Assemble(stem string, rec reference.Record, cfg *config.Config) string {
	values := placeholders(stem, rec, cfg)

	pattern := cfg.NamePattern
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c != '%' || i+1 >= len(pattern) {
			b.WriteByte(c)
			continue
		}
		if v, ok := values[pattern[i+1]]; ok {
			b.WriteString(v)
			i++
			continue
		}
		b.WriteByte(c)
	}

	return norm.NFC.String(b.String())
}

// FileName returns the assembled name with the original extension appended.
func FileName(stem, ext string, rec reference.Record, cfg *config.Config) string {
	return Assemble(stem, rec, cfg) + "." + ext
}

func placeholders(stem string, rec reference.Record, cfg *config.Config) map[byte]string {
	lower := cases.Lower(language.Und) // A Caser is stateful; don't share it
	authors, lastNames := joinAuthors(rec.Authors, cfg.MaxAuthorNames, cfg.AuthorSeparator)

	month := ""
	if rec.Month != nil {
		month = rec.Month.String()
	}

	return map[byte]string{
		'F': stem,
		'f': lower.String(stem),
		'K': rec.Key,
		'k': lower.String(rec.Key),
		'A': authors,
		'a': lower.String(authors),
		'L': lastNames,
		'l': lower.String(lastNames),
		'T': rec.Title,
		't': lower.String(rec.Title),
		'Y': strconv.FormatUint(uint64(rec.Year), 10),
		'y': strconv.FormatUint(uint64(rec.Year%100), 10),
		'M': month,
		'm': lower.String(month),
	}
}

// joinAuthors joins the first max authors, and their last names, with sep.
func joinAuthors(authors []string, max uint32, sep string) (string, string) {
	if len(authors) == 0 || max == 0 {
		return "", ""
	}

	n := len(authors)
	if uint64(max) < uint64(n) {
		n = int(max)
	}

	full := make([]string, n)
	last := make([]string, n)
	for i := 0; i < n; i++ {
		full[i] = authors[i]
		last[i] = LastName(authors[i])
	}
	return strings.Join(full, sep), strings.Join(last, sep)
}

// LastName returns the family name of an author: the text before the first
// comma ("Smith, Alice"), else the last whitespace-separated word ("Alice Smith").
func LastName(author string) string {
	if i := strings.IndexByte(author, ','); i >= 0 {
		return author[:i]
	}
	words := strings.Fields(author)
	if len(words) == 0 {
		return author
	}
	return words[len(words)-1]
}
