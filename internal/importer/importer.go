package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/matsen/shelf/internal/config"
	"github.com/matsen/shelf/internal/digest"
	"github.com/matsen/shelf/internal/naming"
	"github.com/matsen/shelf/internal/reference"
)

var (
	// ErrEncoding indicates the bibliography is not valid UTF-8.
	ErrEncoding = errors.New("bibliography is not valid UTF-8")

	// ErrUnknownFileType indicates no parser is registered for the bibliography.
	ErrUnknownFileType = errors.New("unknown bibliography file type")

	// ErrNoRecord indicates no single record could be selected.
	ErrNoRecord = errors.New("no matching record")

	// ErrCorruptPath indicates the document path has no usable name or extension.
	ErrCorruptPath = errors.New("corrupt document path")

	// ErrDestinationExists indicates a different file already occupies a
	// destination path.
	ErrDestinationExists = errors.New("destination already exists")

	// ErrConflictingFlags indicates both move and copy were forced.
	ErrConflictingFlags = errors.New("cannot force both move and copy")
)

// Request describes a single import.
type Request struct {
	File         string   // Document to import
	Bibliography string   // File holding the record; unused by ImportRecord
	Key          string   // Citation key to select; empty means the only record
	ForceMove    bool     // Move even if the configuration says copy
	ForceCopy    bool     // Copy even if the configuration says move
	Tags         []string // One destination per tag
}

// Move reports whether the document should be moved rather than copied.
func (r Request) Move(cfg *config.Config) bool {
	return r.ForceMove || (!r.ForceCopy && cfg.MoveFiles)
}

// Import reads the request's bibliography, selects a record and places the
// document. Nothing is written to the library; the caller adds the returned
// entry.
func Import(ctx context.Context, req Request, cfg *config.Config) (reference.Entry, error) {
	if req.ForceMove && req.ForceCopy {
		return reference.Entry{}, ErrConflictingFlags
	}

	records, err := ReadBibliography(req.Bibliography)
	if err != nil {
		return reference.Entry{}, err
	}

	rec, err := SelectRecord(records, req.Key)
	if err != nil {
		return reference.Entry{}, err
	}

	return ImportRecord(ctx, rec, req, cfg)
}

// ImportRecord places the request's document using a record obtained
// elsewhere, such as a remote lookup.
func ImportRecord(ctx context.Context, rec reference.Record, req Request, cfg *config.Config) (reference.Entry, error) {
	if req.ForceMove && req.ForceCopy {
		return reference.Entry{}, ErrConflictingFlags
	}

	stem, ext, err := SplitName(req.File)
	if err != nil {
		return reference.Entry{}, err
	}

	sum, err := digest.File(req.File)
	if err != nil {
		return reference.Entry{}, err
	}

	name := safeName(naming.FileName(stem, ext, rec, cfg))
	paths := Destinations(cfg.DocumentLocation, name, req.Tags)

	if err := ctx.Err(); err != nil {
		return reference.Entry{}, err
	}
	if err := Place(req.File, paths, req.Move(cfg)); err != nil {
		return reference.Entry{}, err
	}

	tags := append([]string{}, req.Tags...)
	return reference.Entry{
		Record: rec,
		Tags:   tags,
		Paths:  paths,
		Digest: sum,
	}, nil
}

// SelectRecord picks the record to import. With a key, the first record
// carrying that key wins. Without one, the bibliography must hold exactly
// one record. Errors list the keys that are available.
func SelectRecord(records []reference.Record, key string) (reference.Record, error) {
	if key != "" {
		for _, rec := range records {
			if rec.Key == key {
				return rec, nil
			}
		}
		return reference.Record{}, fmt.Errorf("%w: key %q not found (available: %s)", ErrNoRecord, key, keyList(records))
	}

	switch len(records) {
	case 1:
		return records[0], nil
	case 0:
		return reference.Record{}, fmt.Errorf("%w: bibliography has no records", ErrNoRecord)
	default:
		return reference.Record{}, fmt.Errorf("%w: %d records, select one of: %s", ErrNoRecord, len(records), keyList(records))
	}
}

func keyList(records []reference.Record) string {
	if len(records) == 0 {
		return "none"
	}
	keys := make([]string, len(records))
	for i, rec := range records {
		keys[i] = rec.Key
	}
	return strings.Join(keys, ", ")
}

// SplitName returns the file name of path without its extension, and the
// extension without its dot.
func SplitName(path string) (stem, ext string, err error) {
	base := filepath.Base(path)
	if !utf8.ValidString(base) {
		return "", "", fmt.Errorf("%w: %q is not valid UTF-8", ErrCorruptPath, path)
	}

	dot := filepath.Ext(base)
	stem = strings.TrimSuffix(base, dot)
	ext = strings.TrimPrefix(dot, ".")
	if stem == "" || ext == "" || base == "." || base == string(filepath.Separator) {
		return "", "", fmt.Errorf("%w: %q needs a name and an extension", ErrCorruptPath, path)
	}
	return stem, ext, nil
}

// safeName keeps an assembled name inside its destination directory.
func safeName(name string) string {
	return strings.ReplaceAll(name, string(filepath.Separator), "-")
}

// Destinations lists where a document named name is placed. Without tags it
// goes directly under root; otherwise once per tag, in tag order, under
// root/tag.
func Destinations(root, name string, tags []string) []string {
	if len(tags) == 0 {
		return []string{filepath.Join(root, name)}
	}
	paths := make([]string, len(tags))
	for i, tag := range tags {
		paths[i] = filepath.Join(root, tag, name)
	}
	return paths
}

// Place puts src at every path. The first path receives the content, by
// rename when move is set or by copy otherwise; every later path is a hard
// link to the first. A path that already holds the same file is left alone,
// and any other existing file fails with ErrDestinationExists. A failure part
// way leaves earlier placements in place.
func Place(src string, paths []string, move bool) error {
	if len(paths) == 0 {
		return nil
	}

	first := paths[0]
	inPlace, err := checkDestination(src, first)
	if err != nil {
		return err
	}
	if !inPlace {
		if err := os.MkdirAll(filepath.Dir(first), 0755); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}
		if move {
			if err := os.Rename(src, first); err != nil {
				return fmt.Errorf("moving %s: %w", src, err)
			}
		} else if err := copyFile(src, first); err != nil {
			return fmt.Errorf("copying %s: %w", src, err)
		}
	}

	for _, p := range paths[1:] {
		inPlace, err := checkDestination(first, p)
		if err != nil {
			return err
		}
		if inPlace {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}
		if err := os.Link(first, p); err != nil {
			return fmt.Errorf("linking %s: %w", p, err)
		}
	}
	return nil
}

// checkDestination reports whether dst is already the same file as src. It
// fails when dst holds some other file.
func checkDestination(src, dst string) (bool, error) {
	dstInfo, err := os.Stat(dst)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", dst, err)
	}
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", src, err)
	}
	if os.SameFile(srcInfo, dstInfo) {
		return true, nil
	}
	return false, fmt.Errorf("%w: %s", ErrDestinationExists, dst)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
