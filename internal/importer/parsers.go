// Package importer brings a document and its bibliographic record into the
// library directory tree.
package importer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/matsen/shelf/internal/bibtex"
	"github.com/matsen/shelf/internal/reference"
)

// ParseFunc turns bibliography bytes into records. Records that cannot be
// interpreted are reported individually and do not stop the parse.
type ParseFunc func(data []byte) ([]reference.Record, []error)

// Parsers maps a lowercase file extension, including the dot, to its parser.
var Parsers = map[string]ParseFunc{
	".bib":  parseBibTeX,
	".json": ParsePaperpile,
}

func parseBibTeX(data []byte) ([]reference.Record, []error) {
	return bibtex.Parse(string(data))
}

// ParserFor returns the parser registered for path's extension.
func ParserFor(path string) (ParseFunc, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return nil, fmt.Errorf("%w: %s has no extension", ErrUnknownFileType, path)
	}
	parse, ok := Parsers[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownFileType, ext, strings.Join(supportedExtensions(), ", "))
	}
	return parse, nil
}

func supportedExtensions() []string {
	exts := make([]string, 0, len(Parsers))
	for ext := range Parsers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ReadBibliography reads and parses a bibliography file. Records the parser
// drops are logged as warnings; only a failure to read, decode, or dispatch
// the file is returned.
func ReadBibliography(path string) ([]reference.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bibliography: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s", ErrEncoding, path)
	}

	parse, err := ParserFor(path)
	if err != nil {
		return nil, err
	}

	records, errs := parse(data)
	for _, err := range errs {
		slog.Warn("skipping bibliography entry", "file", path, "error", err)
	}
	return records, nil
}
