// Package bibtex reads and writes BibTeX bibliographies.
package bibtex

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/matsen/shelf/internal/reference"
)

var (
	// ErrSyntax indicates a malformed entry block.
	ErrSyntax = errors.New("syntax error")

	// ErrMissingField indicates a required field is absent.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidYear indicates the year is not an unsigned integer.
	ErrInvalidYear = errors.New("invalid year")
)

// AuthorSeparator separates names in an author field.
const AuthorSeparator = " and "

// RecordError describes an entry that was skipped during parsing.
type RecordError struct {
	Key  string // Citation key, if it could be read
	Line int    // Line of the entry's @
	Err  error
}

func (e *RecordError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("entry at line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("entry %s (line %d): %v", e.Key, e.Line, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// rawEntry is an entry block before interpretation.
type rawEntry struct {
	typ    string
	key    string
	line   int
	fields []field
}

type field struct {
	name  string
	value string
}

// Parse reads every entry in a BibTeX document. Entries that cannot be
// interpreted are skipped and reported as *RecordError values; the rest of
// the document is still parsed. Records are returned in source order.
func Parse(text string) ([]reference.Record, []error) {
	p := &parser{src: text, macros: make(map[string]string)}

	var records []reference.Record
	var errs []error

	for p.seekEntry() {
		start := p.pos
		raw, err := p.entry()
		if err != nil {
			errs = append(errs, &RecordError{Key: raw.key, Line: p.lineAt(start), Err: err})
			p.recover(start + 1)
			continue
		}
		if raw == nil {
			continue // @comment, @preamble, @string
		}

		rec, err := toRecord(raw)
		if err != nil {
			errs = append(errs, &RecordError{Key: raw.key, Line: raw.line, Err: err})
			continue
		}
		records = append(records, rec)
	}

	return records, errs
}

// toRecord interprets a raw entry's fields.
func toRecord(raw *rawEntry) (reference.Record, error) {
	entryType, err := reference.ParseEntryType(raw.typ)
	if err != nil {
		return reference.Record{}, err
	}

	fields := make(map[string]string, len(raw.fields))
	byName := make(map[string]string, len(raw.fields))
	for _, f := range raw.fields {
		if _, seen := fields[f.name]; !seen {
			fields[f.name] = f.value
		}
		lower := strings.ToLower(f.name)
		if _, seen := byName[lower]; !seen {
			byName[lower] = f.value
		}
	}

	required := func(name string) (string, error) {
		v, ok := byName[name]
		if !ok {
			return "", fmt.Errorf("%w %q", ErrMissingField, name)
		}
		return v, nil
	}

	title, err := required("title")
	if err != nil {
		return reference.Record{}, err
	}
	author, err := required("author")
	if err != nil {
		return reference.Record{}, err
	}
	yearText, err := required("year")
	if err != nil {
		return reference.Record{}, err
	}
	year, err := strconv.ParseUint(strings.TrimSpace(yearText), 10, 32)
	if err != nil {
		return reference.Record{}, fmt.Errorf("%w: %q", ErrInvalidYear, yearText)
	}

	var month *reference.Month
	if m, ok := byName["month"]; ok {
		parsed, err := reference.ParseMonth(m)
		if err != nil {
			return reference.Record{}, err
		}
		month = &parsed
	}

	return reference.Record{
		Key:     raw.key,
		Type:    entryType,
		Title:   cleanText(title),
		Authors: SplitAuthors(author),
		Year:    uint32(year),
		Month:   month,
		Fields:  fields,
	}, nil
}

// SplitAuthors splits an author field on the literal " and " separator.
func SplitAuthors(field string) []string {
	cleaned := cleanText(field)
	parts := strings.Split(cleaned, AuthorSeparator)
	authors := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			authors = append(authors, p)
		}
	}
	return authors
}

// cleanText drops protective braces and collapses runs of whitespace.
func cleanText(s string) string {
	s = strings.NewReplacer("{", "", "}", "").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// parser is a cursor over a BibTeX document.
type parser struct {
	src    string
	pos    int
	macros map[string]string // @string definitions, keyed by lowercase name
}

func (p *parser) lineAt(pos int) int {
	if pos > len(p.src) {
		pos = len(p.src)
	}
	return strings.Count(p.src[:pos], "\n") + 1
}

// seekEntry advances to the next '@'. Text outside entries is a comment.
func (p *parser) seekEntry() bool {
	i := strings.IndexByte(p.src[p.pos:], '@')
	if i < 0 {
		p.pos = len(p.src)
		return false
	}
	p.pos += i
	return true
}

// recover skips to the next '@' that starts a line, so an '@' inside a
// broken entry (an e-mail address, say) is not taken for a new entry.
func (p *parser) recover(from int) {
	for i := from; i < len(p.src); i++ {
		if p.src[i] != '@' {
			continue
		}
		j := i - 1
		for j >= 0 && (p.src[j] == ' ' || p.src[j] == '\t') {
			j--
		}
		if j < 0 || p.src[j] == '\n' || p.src[j] == '\r' {
			p.pos = i
			return
		}
	}
	p.pos = len(p.src)
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for !p.eof() && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func isIdentByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c >= 0x80:
		return true
	}
	return strings.IndexByte("_-:./+'!?*&;<>[]", c) >= 0
}

func (p *parser) ident() string {
	start := p.pos
	for !p.eof() && isIdentByte(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) expect(c byte) error {
	p.skipSpace()
	if p.peek() != c {
		if p.eof() {
			return fmt.Errorf("%w: expected %q, got end of input", ErrSyntax, c)
		}
		return fmt.Errorf("%w: expected %q at line %d, got %q", ErrSyntax, c, p.lineAt(p.pos), p.peek())
	}
	p.pos++
	return nil
}

// entry parses one block starting at '@'. It returns a nil entry for blocks
// that carry no record. On error the returned entry holds whatever key was read.
func (p *parser) entry() (*rawEntry, error) {
	line := p.lineAt(p.pos)
	p.pos++ // '@'
	p.skipSpace()
	typ := p.ident()
	if typ == "" {
		return &rawEntry{}, fmt.Errorf("%w: missing entry type", ErrSyntax)
	}

	p.skipSpace()
	var closer byte
	switch p.peek() {
	case '{':
		closer = '}'
	case '(':
		closer = ')'
	default:
		return &rawEntry{typ: typ}, fmt.Errorf("%w: expected '{' after @%s", ErrSyntax, typ)
	}

	switch strings.ToLower(typ) {
	case "comment", "preamble":
		if _, err := p.balanced(p.peek(), closer); err != nil {
			return &rawEntry{typ: typ}, err
		}
		return nil, nil
	case "string":
		p.pos++
		if err := p.stringDefs(closer); err != nil {
			return &rawEntry{typ: typ}, err
		}
		return nil, nil
	}
	p.pos++

	raw := &rawEntry{typ: typ, line: line}
	p.skipSpace()
	start := p.pos
	for !p.eof() && p.src[p.pos] != ',' && p.src[p.pos] != closer && p.src[p.pos] != '\n' {
		p.pos++
	}
	raw.key = strings.TrimSpace(p.src[start:p.pos])
	if raw.key == "" {
		return raw, fmt.Errorf("%w: missing citation key", ErrSyntax)
	}

	for {
		p.skipSpace()
		switch p.peek() {
		case closer:
			p.pos++
			return raw, nil
		case ',':
			p.pos++
			continue
		}
		if p.eof() {
			return raw, fmt.Errorf("%w: unterminated entry", ErrSyntax)
		}

		name, value, err := p.assignment()
		if err != nil {
			return raw, err
		}
		raw.fields = append(raw.fields, field{name: name, value: value})

		p.skipSpace()
		if c := p.peek(); c != ',' && c != closer {
			return raw, fmt.Errorf("%w: expected ',' after field %q at line %d", ErrSyntax, name, p.lineAt(p.pos))
		}
	}
}

// stringDefs parses the body of an @string block.
func (p *parser) stringDefs(closer byte) error {
	for {
		p.skipSpace()
		switch p.peek() {
		case closer:
			p.pos++
			return nil
		case ',':
			p.pos++
			continue
		}
		if p.eof() {
			return fmt.Errorf("%w: unterminated @string", ErrSyntax)
		}
		name, value, err := p.assignment()
		if err != nil {
			return err
		}
		p.macros[strings.ToLower(name)] = value
	}
}

// assignment parses `name = value`.
func (p *parser) assignment() (string, string, error) {
	name := p.ident()
	if name == "" {
		return "", "", fmt.Errorf("%w: expected field name at line %d", ErrSyntax, p.lineAt(p.pos))
	}
	if err := p.expect('='); err != nil {
		return name, "", err
	}
	value, err := p.value()
	if err != nil {
		return name, "", err
	}
	return name, value, nil
}

// value parses one or more '#'-joined pieces.
func (p *parser) value() (string, error) {
	var b strings.Builder
	for {
		p.skipSpace()
		piece, err := p.piece()
		if err != nil {
			return "", err
		}
		b.WriteString(piece)

		p.skipSpace()
		if p.peek() != '#' {
			return b.String(), nil
		}
		p.pos++
	}
}

func (p *parser) piece() (string, error) {
	switch c := p.peek(); {
	case c == '{':
		return p.balanced('{', '}')
	case c == '"':
		return p.quoted()
	case isIdentByte(c):
		word := p.ident()
		if v, ok := p.macros[strings.ToLower(word)]; ok {
			return v, nil
		}
		return word, nil // Numbers and undefined macros are taken literally
	case p.eof():
		return "", fmt.Errorf("%w: expected value, got end of input", ErrSyntax)
	default:
		return "", fmt.Errorf("%w: unexpected %q at line %d", ErrSyntax, c, p.lineAt(p.pos))
	}
}

// balanced reads a delimited group, honoring nested braces, and returns the
// text between the outer delimiters.
func (p *parser) balanced(open, close byte) (string, error) {
	start := p.pos
	p.pos++ // open
	depth := 0
	for ; !p.eof(); p.pos++ {
		c := p.src[p.pos]
		switch {
		case c == '{':
			depth++
			continue
		case c == '}' && depth > 0:
			depth--
			continue
		case c == '}' && close != '}':
			return "", fmt.Errorf("%w: unbalanced '}' at line %d", ErrSyntax, p.lineAt(p.pos))
		}
		if c == close && depth == 0 {
			p.pos++
			return p.src[start+1 : p.pos-1], nil
		}
	}
	return "", fmt.Errorf("%w: unbalanced %q starting at line %d", ErrSyntax, open, p.lineAt(start))
}

// quoted reads a "..." value. Quotes inside braces do not terminate it.
func (p *parser) quoted() (string, error) {
	start := p.pos
	p.pos++
	depth := 0
	for !p.eof() {
		switch p.src[p.pos] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case '"':
			if depth == 0 && p.src[p.pos-1] != '\\' {
				p.pos++
				return p.src[start+1 : p.pos-1], nil
			}
		}
		p.pos++
	}
	return "", fmt.Errorf("%w: unterminated string starting at line %d", ErrSyntax, p.lineAt(start))
}
