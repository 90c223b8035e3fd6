package crossref

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/matsen/shelf/internal/bibtex"
	"github.com/matsen/shelf/internal/reference"
)

type worksResponse struct {
	Status  string `json:"status"`
	Message *work  `json:"message"`
}

type work struct {
	DOI            string   `json:"DOI"`
	Title          []string `json:"title"`
	Type           string   `json:"type"`
	Author         []author `json:"author"`
	ContainerTitle []string `json:"container-title"`
	Publisher      string   `json:"publisher"`
	Volume         string   `json:"volume"`
	Issue          string   `json:"issue"`
	Page           string   `json:"page"`
	PublishedPrint *date    `json:"published-print"`
	Issued         *date    `json:"issued"`
}

type author struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	Name   string `json:"name"` // Organizations
}

type date struct {
	DateParts [][]*int `json:"date-parts"`
}

// yearMonth returns the first date part. Crossref sends [[null]] for
// unknown dates.
func (d *date) yearMonth() (year, month int, ok bool) {
	if d == nil || len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 || d.DateParts[0][0] == nil {
		return 0, 0, false
	}
	parts := d.DateParts[0]
	year = *parts[0]
	if len(parts) > 1 && parts[1] != nil {
		month = *parts[1]
	}
	return year, month, true
}

// typeMap maps Crossref work types to entry types. Anything else is Misc.
var typeMap = map[string]reference.EntryType{
	"journal-article":     reference.Article,
	"book":                reference.Book,
	"monograph":           reference.Book,
	"edited-book":         reference.Book,
	"reference-book":      reference.Book,
	"book-chapter":        reference.InBook,
	"book-section":        reference.InCollection,
	"book-part":           reference.InCollection,
	"proceedings-article": reference.InProceedings,
	"proceedings":         reference.Proceedings,
	"dissertation":        reference.PhDThesis,
	"report":              reference.TechReport,
	"standard":            reference.Manual,
	"posted-content":      reference.Unpublished,
}

// EntryTypeFor maps a Crossref work type.
func EntryTypeFor(crossrefType string) reference.EntryType {
	if t, ok := typeMap[crossrefType]; ok {
		return t
	}
	return reference.Misc
}

func (w *work) toRecord(doi string) (reference.Record, error) {
	if len(w.Title) == 0 || strings.TrimSpace(w.Title[0]) == "" {
		return reference.Record{}, fmt.Errorf("%w: %s has no title", ErrNoMatch, doi)
	}

	year, month, ok := w.PublishedPrint.yearMonth()
	if !ok {
		year, month, ok = w.Issued.yearMonth()
	}
	if !ok || year < 0 {
		return reference.Record{}, fmt.Errorf("%w: %s has no publication date", ErrNoMatch, doi)
	}

	var authors []string
	for _, a := range w.Author {
		if name := a.displayName(); name != "" {
			authors = append(authors, name)
		}
	}

	title := strings.Join(strings.Fields(w.Title[0]), " ")
	fields := map[string]string{
		"title": title,
		"year":  strconv.Itoa(year),
		"doi":   w.DOI,
	}
	if fields["doi"] == "" {
		fields["doi"] = doi
	}
	if len(authors) > 0 {
		fields["author"] = strings.Join(authors, bibtex.AuthorSeparator)
	}
	optional := map[string]string{
		"publisher": w.Publisher,
		"volume":    w.Volume,
		"number":    w.Issue,
		"pages":     w.Page,
	}
	if len(w.ContainerTitle) > 0 {
		optional["journal"] = w.ContainerTitle[0]
	}
	for k, v := range optional {
		if v != "" {
			fields[k] = v
		}
	}

	rec := reference.Record{
		Key:     citationKey(w.Author, year),
		Type:    EntryTypeFor(w.Type),
		Title:   title,
		Authors: authors,
		Year:    uint32(year),
		Fields:  fields,
	}
	if month != 0 {
		m, err := reference.MonthFromNumber(uint64(month))
		if err != nil {
			return reference.Record{}, fmt.Errorf("%w: %s: %v", ErrNoMatch, doi, err)
		}
		rec.Month = &m
		fields["month"] = strconv.Itoa(month)
	}

	return rec, nil
}

func (a author) displayName() string {
	if a.Family == "" {
		return strings.TrimSpace(a.Name)
	}
	return strings.TrimSpace(a.Given + " " + a.Family)
}

// citationKey builds <Family><Year> from the first author, keeping only
// letters and digits.
func citationKey(authors []author, year int) string {
	base := "Anonymous"
	if len(authors) > 0 {
		name := authors[0].Family
		if name == "" {
			name = authors[0].Name
		}
		if cleaned := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return r
			}
			return -1
		}, name); cleaned != "" {
			base = cleaned
		}
	}
	return base + strconv.Itoa(year)
}
