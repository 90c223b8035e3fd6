package importer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/matsen/shelf/internal/bibtex"
	"github.com/matsen/shelf/internal/reference"
)

// FlexibleString can unmarshal from either string or number JSON values.
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	// Handle null
	if string(data) == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexibleString(n.String())
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into FlexibleString", string(data))
}

func (f FlexibleString) String() string {
	return string(f)
}

// PaperpileEntry is a single entry from a Paperpile JSON export.
type PaperpileEntry struct {
	ID        string `json:"_id"`
	Citekey   string `json:"citekey"`
	DOI       string `json:"doi"`
	Title     string `json:"title"`
	Abstract  string `json:"abstract"`
	Journal   string `json:"journal"`
	Published struct {
		Year  FlexibleString `json:"year"`
		Month FlexibleString `json:"month"`
	} `json:"published"`
	Author []struct {
		First string `json:"first"`
		Last  string `json:"last"`
	} `json:"author"`
}

// ParsePaperpile parses a Paperpile JSON export. Entries that cannot be
// converted are skipped and reported; the rest keep their export order.
func ParsePaperpile(data []byte) ([]reference.Record, []error) {
	var entries []PaperpileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, []error{fmt.Errorf("parsing Paperpile JSON: %w", err)}
	}

	var records []reference.Record
	var errs []error
	for i, entry := range entries {
		rec, err := paperpileEntryToRecord(entry)
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %d (%s): %w", i+1, entry.Citekey, err))
			continue
		}
		records = append(records, rec)
	}

	return records, errs
}

// paperpileEntryToRecord converts a Paperpile entry. Paperpile does not
// export a BibTeX type, so every entry becomes an article.
func paperpileEntryToRecord(entry PaperpileEntry) (reference.Record, error) {
	if entry.Title == "" {
		return reference.Record{}, fmt.Errorf("missing required field 'title'")
	}
	if len(entry.Author) == 0 {
		return reference.Record{}, fmt.Errorf("missing required field 'author'")
	}
	if entry.Published.Year.String() == "" {
		return reference.Record{}, fmt.Errorf("missing required field 'published.year'")
	}

	year, err := strconv.ParseUint(entry.Published.Year.String(), 10, 32)
	if err != nil {
		return reference.Record{}, fmt.Errorf("invalid year: %s", entry.Published.Year.String())
	}

	var month *reference.Month
	if s := entry.Published.Month.String(); s != "" {
		n, err := strconv.ParseUint(s, 10, 8)
		if err != nil {
			return reference.Record{}, fmt.Errorf("invalid month: %s", s)
		}
		m, err := reference.MonthFromNumber(n)
		if err != nil {
			return reference.Record{}, err
		}
		month = &m
	}

	authors := make([]string, len(entry.Author))
	for i, a := range entry.Author {
		authors[i] = strings.TrimSpace(a.First + " " + a.Last)
	}

	// Use citekey as key, falling back to the Paperpile ID
	key := entry.Citekey
	if key == "" {
		key = entry.ID
	}

	fields := map[string]string{
		"title":  entry.Title,
		"author": strings.Join(authors, bibtex.AuthorSeparator),
		"year":   entry.Published.Year.String(),
	}
	if month != nil {
		fields["month"] = entry.Published.Month.String()
	}
	for name, value := range map[string]string{"doi": entry.DOI, "journal": entry.Journal, "abstract": entry.Abstract} {
		if value != "" {
			fields[name] = value
		}
	}

	return reference.Record{
		Key:     key,
		Type:    reference.Article,
		Title:   entry.Title,
		Authors: authors,
		Year:    uint32(year),
		Month:   month,
		Fields:  fields,
	}, nil
}
