// Package storage maintains a disposable SQLite index over the library.
//
// The library file stays the source of truth; the index is rebuilt from it
// whenever a command needs cross-entry lookups such as duplicate detection
// or full-text search.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matsen/shelf/internal/reference"
	_ "modernc.org/sqlite"
)

// CacheFile is the index file name, kept next to the library file.
const CacheFile = ".shelf-cache.db"

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// CachePath returns the index location for a library file.
func CachePath(libraryPath string) string {
	return filepath.Join(filepath.Dir(libraryPath), CacheFile)
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		-- One row per library entry; idx is the position in the library
		CREATE TABLE IF NOT EXISTS entries (
			idx INTEGER PRIMARY KEY,
			key TEXT NOT NULL,
			entry_type TEXT NOT NULL,
			title TEXT NOT NULL,
			year INTEGER NOT NULL,
			digest TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_entries_digest ON entries(digest);

		CREATE TABLE IF NOT EXISTS entry_paths (
			idx INTEGER NOT NULL,
			position INTEGER NOT NULL,
			path TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS entry_tags (
			idx INTEGER NOT NULL,
			tag TEXT NOT NULL
		);

		CREATE VIRTUAL TABLE IF NOT EXISTS entries_fts USING fts5(
			idx UNINDEXED,
			key,
			title,
			authors_text
		);
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildFromEntries clears the index and fills it from entries.
func (d *DB) RebuildFromEntries(entries []reference.Entry) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"entries", "entry_paths", "entry_tags", "entries_fts"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return 0, fmt.Errorf("clearing %s table: %w", table, err)
		}
	}

	entryStmt, err := tx.Prepare(`INSERT INTO entries (idx, key, entry_type, title, year, digest) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing entry insert: %w", err)
	}
	defer entryStmt.Close()

	pathStmt, err := tx.Prepare(`INSERT INTO entry_paths (idx, position, path) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing path insert: %w", err)
	}
	defer pathStmt.Close()

	tagStmt, err := tx.Prepare(`INSERT INTO entry_tags (idx, tag) VALUES (?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing tag insert: %w", err)
	}
	defer tagStmt.Close()

	ftsStmt, err := tx.Prepare(`INSERT INTO entries_fts (idx, key, title, authors_text) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for i, e := range entries {
		rec := e.Record
		if _, err := entryStmt.Exec(i, rec.Key, rec.Type.String(), rec.Title, rec.Year, e.Digest.String()); err != nil {
			return 0, fmt.Errorf("inserting entry %s: %w", rec.Key, err)
		}
		for pos, p := range e.Paths {
			if _, err := pathStmt.Exec(i, pos, p); err != nil {
				return 0, fmt.Errorf("inserting path for %s: %w", rec.Key, err)
			}
		}
		for _, tag := range e.Tags {
			if _, err := tagStmt.Exec(i, tag); err != nil {
				return 0, fmt.Errorf("inserting tag for %s: %w", rec.Key, err)
			}
		}
		if _, err := ftsStmt.Exec(i, rec.Key, rec.Title, strings.Join(rec.Authors, ", ")); err != nil {
			return 0, fmt.Errorf("inserting fts for %s: %w", rec.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing index: %w", err)
	}
	return len(entries), nil
}

// Count returns the number of indexed entries.
func (d *DB) Count() (int, error) {
	var count int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return count, nil
}

// FindByDigest returns the keys of entries whose content has digest d.
func (d *DB) FindByDigest(digest reference.Digest) ([]string, error) {
	rows, err := d.db.Query(`SELECT key FROM entries WHERE digest = ? ORDER BY idx`, digest.String())
	if err != nil {
		return nil, fmt.Errorf("finding digest: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// DuplicateGroup is a set of entries sharing the same content.
type DuplicateGroup struct {
	Digest string   `json:"digest"`
	Keys   []string `json:"keys"`
}

// Duplicates returns every digest held by more than one entry.
func (d *DB) Duplicates() ([]DuplicateGroup, error) {
	rows, err := d.db.Query(`
		SELECT digest, key FROM entries
		WHERE digest IN (SELECT digest FROM entries GROUP BY digest HAVING COUNT(*) > 1)
		ORDER BY digest, idx`)
	if err != nil {
		return nil, fmt.Errorf("finding duplicates: %w", err)
	}
	defer rows.Close()

	var groups []DuplicateGroup
	for rows.Next() {
		var digest, key string
		if err := rows.Scan(&digest, &key); err != nil {
			return nil, err
		}
		if n := len(groups); n > 0 && groups[n-1].Digest == digest {
			groups[n-1].Keys = append(groups[n-1].Keys, key)
			continue
		}
		groups = append(groups, DuplicateGroup{Digest: digest, Keys: []string{key}})
	}
	return groups, rows.Err()
}

// TagCount is the number of entries carrying a tag.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// TagCounts returns tag usage, most used first.
func (d *DB) TagCounts() ([]TagCount, error) {
	rows, err := d.db.Query(`SELECT tag, COUNT(DISTINCT idx) AS n FROM entry_tags GROUP BY tag ORDER BY n DESC, tag`)
	if err != nil {
		return nil, fmt.Errorf("counting tags: %w", err)
	}
	defer rows.Close()

	var counts []TagCount
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, tc)
	}
	return counts, rows.Err()
}

// MissingFile is an indexed path that no longer exists on disk.
type MissingFile struct {
	Key  string `json:"key"`
	Path string `json:"path"`
}

// MissingFiles stats every indexed path and reports those that are gone.
func (d *DB) MissingFiles() ([]MissingFile, error) {
	rows, err := d.db.Query(`
		SELECT e.key, p.path FROM entry_paths p JOIN entries e ON e.idx = p.idx
		ORDER BY p.idx, p.position`)
	if err != nil {
		return nil, fmt.Errorf("listing paths: %w", err)
	}
	defer rows.Close()

	var missing []MissingFile
	for rows.Next() {
		var m MissingFile
		if err := rows.Scan(&m.Key, &m.Path); err != nil {
			return nil, err
		}
		if _, err := os.Stat(m.Path); os.IsNotExist(err) {
			missing = append(missing, m)
		}
	}
	return missing, rows.Err()
}

// Search runs a full-text query over keys, titles and authors and returns
// the library indices of matching entries, best match first.
func (d *DB) Search(query string, limit int) ([]int, error) {
	ftsQuery := prepareFTSQuery(query)
	if ftsQuery == "" {
		return []int{}, nil
	}

	rows, err := d.db.Query(`
		SELECT idx FROM entries_fts WHERE entries_fts MATCH ?
		ORDER BY rank
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	indices := []int{}
	for rows.Next() {
		var idx int
		if err := rows.Scan(&idx); err != nil {
			return nil, err
		}
		indices = append(indices, idx)
	}
	return indices, rows.Err()
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// FTS5 uses double quotes for phrase matching
	if strings.ContainsAny(query, "\"*+-:(){}[]^~") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}

// Rebuild opens the index for a library, refills it from entries and
// returns it open.
func Rebuild(libraryPath string, entries []reference.Entry) (*DB, error) {
	path := CachePath(libraryPath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	if _, err := db.RebuildFromEntries(entries); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
