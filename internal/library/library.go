// Package library persists the collection of imported papers.
//
// The library is a single JSON document that is read completely on open and
// rewritten completely on save. There is no locking: if two processes write
// the same library, the last save wins.
package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/matsen/shelf/internal/query"
	"github.com/matsen/shelf/internal/reference"
)

// ErrNoPaths is returned when adding an entry without file paths.
var ErrNoPaths = errors.New("entry has no file paths")

// File is the persisted form of the library.
type File struct {
	CreationVersion Version           `json:"creation_version"`
	Entries         []reference.Entry `json:"entries"`
}

// Library is an open library file. Entries keep insertion order; indices
// into that order are the only handle used for removal.
type Library struct {
	file  File
	path  string
	dirty bool
}

// ConfirmFunc receives the entries about to be removed and reports whether
// the removal should go ahead.
type ConfirmFunc func(entries []reference.Entry) bool

// New returns an empty library backed by path. It starts out dirty so that
// it is written even if nothing is added.
func New(path string) *Library {
	return &Library{
		file:  File{CreationVersion: CreatorVersion, Entries: []reference.Entry{}},
		path:  path,
		dirty: true,
	}
}

// Load reads the library at path.
func Load(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading library: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing library %s: %w", path, err)
	}
	if f.Entries == nil {
		f.Entries = []reference.Entry{}
	}
	for i, e := range f.Entries {
		if len(e.Paths) == 0 {
			return nil, fmt.Errorf("parsing library %s: entry %d (%s): %w", path, i, e.Record.Key, ErrNoPaths)
		}
	}

	return &Library{file: f, path: path}, nil
}

// Open loads the library at path, or returns a new empty library if the
// file does not exist.
func Open(path string) (*Library, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return New(path), nil
		}
		return nil, fmt.Errorf("checking library: %w", err)
	}
	return Load(path)
}

// WithLibrary opens the library at path, runs fn, and saves the library if
// it changed, however fn returns. A failed save is logged rather than
// returned so that fn's own error is not masked.
func WithLibrary(path string, fn func(*Library) error) error {
	lib, err := Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := lib.Close(); err != nil {
			slog.Error("failed to save library", "path", path, "error", err)
		}
	}()

	return fn(lib)
}

// Path returns the backing file path.
func (l *Library) Path() string {
	return l.path
}

// Dirty reports whether the library has unsaved changes.
func (l *Library) Dirty() bool {
	return l.dirty
}

// CreationVersion returns the version that created the library file.
func (l *Library) CreationVersion() Version {
	return l.file.CreationVersion
}

// Len returns the number of entries.
func (l *Library) Len() int {
	return len(l.file.Entries)
}

// Entries returns copies of all entries in insertion order.
func (l *Library) Entries() []reference.Entry {
	out := make([]reference.Entry, len(l.file.Entries))
	for i, e := range l.file.Entries {
		out[i] = e.Clone()
	}
	return out
}

// Add appends an entry.
func (l *Library) Add(entry reference.Entry) error {
	if len(entry.Paths) == 0 {
		return fmt.Errorf("adding %s: %w", entry.Record.Key, ErrNoPaths)
	}
	l.file.Entries = append(l.file.Entries, entry.Clone())
	l.dirty = true
	return nil
}

// Query returns copies of the entries matching params.
func (l *Library) Query(params query.Params) ([]reference.Entry, error) {
	indices, err := query.Run(l.file.Entries, params)
	if err != nil {
		return nil, err
	}
	return query.Select(l.file.Entries, indices), nil
}

// Remove deletes the entries matching params. confirm sees the matched
// entries first and may veto the whole removal, in which case the library
// is left untouched. With removeFiles, every file path of a removed entry
// is deleted as well; paths that no longer exist are ignored. Returns the
// number of entries removed.
func (l *Library) Remove(params query.Params, removeFiles bool, confirm ConfirmFunc) (int, error) {
	indices, err := query.Run(l.file.Entries, params)
	if err != nil {
		return 0, err
	}
	if len(indices) == 0 {
		return 0, nil
	}

	matched := query.Select(l.file.Entries, indices)
	if confirm != nil && !confirm(matched) {
		return 0, nil
	}

	// Highest index first so earlier removals don't shift later ones
	sort.Sort(sort.Reverse(sort.IntSlice(indices)))
	var removed []reference.Entry
	for _, i := range indices {
		removed = append(removed, l.file.Entries[i])
		l.file.Entries = append(l.file.Entries[:i], l.file.Entries[i+1:]...)
	}
	l.dirty = true

	if !removeFiles {
		return len(removed), nil
	}

	var errs []error
	for _, e := range removed {
		for _, p := range e.Paths {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				errs = append(errs, fmt.Errorf("removing %s: %w", p, err))
			}
		}
	}
	return len(removed), errors.Join(errs...)
}

// Save writes the whole library to its path, replacing the previous file.
func (l *Library) Save() error {
	data, err := json.MarshalIndent(l.file, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding library: %w", err)
	}

	if dir := filepath.Dir(l.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating library directory: %w", err)
		}
	}
	if err := os.WriteFile(l.path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing library: %w", err)
	}

	l.dirty = false
	return nil
}

// Close saves the library if it has unsaved changes.
func (l *Library) Close() error {
	if !l.dirty {
		return nil
	}
	return l.Save()
}
