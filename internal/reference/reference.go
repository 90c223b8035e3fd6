// Package reference defines the core domain types for imported papers.
package reference

// Record is the bibliographic metadata of a single paper, as parsed from a
// bibliography or fetched from a remote registry. Records are not modified
// after parsing.
type Record struct {
	Key     string    `json:"key"`
	Type    EntryType `json:"entry_type"`
	Title   string    `json:"title"`
	Authors []string  `json:"authors"`
	Year    uint32    `json:"year"`
	Month   *Month    `json:"month,omitempty"`

	// Fields holds every field of the source entry verbatim, keyed by the
	// field name as written in the source.
	Fields map[string]string `json:"original_fields,omitempty"`
}

// Entry is a paper that has been imported into the library.
type Entry struct {
	Record Record   `json:"meta"`
	Tags   []string `json:"tags"`
	Paths  []string `json:"file_paths"` // First path holds the content; the rest are hard links
	Digest Digest   `json:"digest"`
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	c := r
	if r.Authors != nil {
		c.Authors = append([]string(nil), r.Authors...)
	}
	if r.Month != nil {
		m := *r.Month
		c.Month = &m
	}
	if r.Fields != nil {
		c.Fields = make(map[string]string, len(r.Fields))
		for k, v := range r.Fields {
			c.Fields[k] = v
		}
	}
	return c
}

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	c := e
	c.Record = e.Record.Clone()
	if e.Tags != nil {
		c.Tags = append([]string(nil), e.Tags...)
	}
	if e.Paths != nil {
		c.Paths = append([]string(nil), e.Paths...)
	}
	return c
}

// PrimaryPath returns the path holding the file content.
func (e Entry) PrimaryPath() string {
	if len(e.Paths) == 0 {
		return ""
	}
	return e.Paths[0]
}
