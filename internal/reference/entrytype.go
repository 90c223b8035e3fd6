package reference

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownEntryType is returned when an entry type name is not recognized.
var ErrUnknownEntryType = errors.New("unknown entry type")

// EntryType is the publication category of a record.
type EntryType int

// The zero value is deliberately invalid so that an unset type is caught.
const (
	Article EntryType = iota + 1
	Book
	Booklet
	Conference
	InBook
	InCollection
	InProceedings
	Manual
	MasterThesis
	Thesis
	Misc
	PhDThesis
	Proceedings
	TechReport
	Unpublished
)

type entryTypeName struct {
	display string // Name used in output, queries and the library file
	bibtex  string // Lowercase BibTeX name
}

var entryTypeNames = map[EntryType]entryTypeName{
	Article:       {"Article", "article"},
	Book:          {"Book", "book"},
	Booklet:       {"Booklet", "booklet"},
	Conference:    {"Conference", "conference"},
	InBook:        {"InBook", "inbook"},
	InCollection:  {"InCollection", "incollection"},
	InProceedings: {"InProceedings", "inproceedings"},
	Manual:        {"Manual", "manual"},
	MasterThesis:  {"MasterThesis", "masterthesis"},
	Thesis:        {"Thesis", "thesis"},
	Misc:          {"Misc", "misc"},
	PhDThesis:     {"PhDThesis", "phdthesis"},
	Proceedings:   {"Proceedings", "proceedings"},
	TechReport:    {"TechReport", "techreport"},
	Unpublished:   {"Unpublished", "unpublished"},
}

// bibtexAliases maps alternative spellings seen in the wild.
var bibtexAliases = map[string]EntryType{
	"mastersthesis": MasterThesis,
}

// EntryTypes returns all entry types in declaration order.
func EntryTypes() []EntryType {
	types := make([]EntryType, 0, len(entryTypeNames))
	for t := Article; t <= Unpublished; t++ {
		types = append(types, t)
	}
	return types
}

// ParseEntryType looks up a BibTeX entry type name, ignoring case.
func ParseEntryType(name string) (EntryType, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for t, n := range entryTypeNames {
		if n.bibtex == lower {
			return t, nil
		}
	}
	if t, ok := bibtexAliases[lower]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownEntryType, name)
}

// String returns the display name of the entry type.
func (t EntryType) String() string {
	if n, ok := entryTypeNames[t]; ok {
		return n.display
	}
	return fmt.Sprintf("EntryType(%d)", int(t))
}

// BibTeX returns the lowercase BibTeX name of the entry type.
func (t EntryType) BibTeX() string {
	if n, ok := entryTypeNames[t]; ok {
		return n.bibtex
	}
	return "misc"
}

// Valid reports whether t is one of the known entry types.
func (t EntryType) Valid() bool {
	_, ok := entryTypeNames[t]
	return ok
}

func (t EntryType) MarshalText() ([]byte, error) {
	n, ok := entryTypeNames[t]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownEntryType, int(t))
	}
	return []byte(n.display), nil
}

func (t *EntryType) UnmarshalText(data []byte) error {
	s := string(data)
	for et, n := range entryTypeNames {
		if n.display == s {
			*t = et
			return nil
		}
	}
	// Accept BibTeX names too so hand-edited libraries still load.
	et, err := ParseEntryType(s)
	if err != nil {
		return err
	}
	*t = et
	return nil
}
