package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matsen/shelf/internal/digest"
	"github.com/matsen/shelf/internal/reference"
)

// setupTestDB creates an index over three entries, two of which share content.
func setupTestDB(t *testing.T) (*DB, string) {
	t.Helper()

	tmpDir := t.TempDir()
	present := filepath.Join(tmpDir, "smith.pdf")
	if err := os.WriteFile(present, []byte("pdf"), 0644); err != nil {
		t.Fatal(err)
	}

	shared := digest.Bytes([]byte("same"))
	entries := []reference.Entry{
		{
			Record: reference.Record{Key: "Smith2026", Type: reference.Article, Title: "Machine Learning in Biology", Authors: []string{"John Smith", "Jane Doe"}, Year: 2026},
			Tags:   []string{"ml", "bio"},
			Paths:  []string{present},
			Digest: shared,
		},
		{
			Record: reference.Record{Key: "Jones2025", Type: reference.Book, Title: "Deep Learning for Protein Structure", Authors: []string{"Alice Jones"}, Year: 2025},
			Tags:   []string{"ml"},
			Paths:  []string{filepath.Join(tmpDir, "gone.pdf")},
			Digest: digest.Bytes([]byte("other")),
		},
		{
			Record: reference.Record{Key: "Brown2024", Type: reference.Article, Title: "Statistical Methods in Genomics", Authors: []string{"Bob Brown"}, Year: 2024},
			Paths:  []string{present},
			Digest: shared,
		},
	}

	db, err := OpenDB(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	n, err := db.RebuildFromEntries(entries)
	if err != nil {
		t.Fatalf("RebuildFromEntries() error = %v", err)
	}
	if n != 3 {
		t.Fatalf("RebuildFromEntries() = %d, want 3", n)
	}
	return db, tmpDir
}

func TestOpenDB_CreatesSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("OpenDB() did not create database file")
	}
	count, err := db.Count()
	if err != nil || count != 0 {
		t.Errorf("Count() = %d, %v; want 0, nil", count, err)
	}
}

func TestDB_RebuildReplacesContent(t *testing.T) {
	db, _ := setupTestDB(t)

	entry := reference.Entry{
		Record: reference.Record{Key: "Only2020", Type: reference.Misc, Title: "Only", Authors: []string{"O"}, Year: 2020},
		Paths:  []string{"/x.pdf"},
	}
	if _, err := db.RebuildFromEntries([]reference.Entry{entry}); err != nil {
		t.Fatal(err)
	}
	count, err := db.Count()
	if err != nil || count != 1 {
		t.Errorf("Count() = %d, %v; want 1, nil", count, err)
	}
	tags, err := db.TagCounts()
	if err != nil || len(tags) != 0 {
		t.Errorf("TagCounts() = %v, %v; want empty", tags, err)
	}
}

func TestDB_FindByDigest(t *testing.T) {
	db, _ := setupTestDB(t)

	keys, err := db.FindByDigest(digest.Bytes([]byte("same")))
	if err != nil {
		t.Fatalf("FindByDigest() error = %v", err)
	}
	if len(keys) != 2 || keys[0] != "Smith2026" || keys[1] != "Brown2024" {
		t.Errorf("FindByDigest() = %v, want [Smith2026 Brown2024]", keys)
	}

	keys, err = db.FindByDigest(digest.Bytes([]byte("unknown")))
	if err != nil || len(keys) != 0 {
		t.Errorf("FindByDigest(unknown) = %v, %v; want empty", keys, err)
	}
}

func TestDB_Duplicates(t *testing.T) {
	db, _ := setupTestDB(t)

	groups, err := db.Duplicates()
	if err != nil {
		t.Fatalf("Duplicates() error = %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("Duplicates() = %v, want one group", groups)
	}
	if groups[0].Digest != digest.Bytes([]byte("same")).String() {
		t.Errorf("Digest = %s", groups[0].Digest)
	}
	if len(groups[0].Keys) != 2 {
		t.Errorf("Keys = %v, want 2 keys", groups[0].Keys)
	}
}

func TestDB_TagCounts(t *testing.T) {
	db, _ := setupTestDB(t)

	counts, err := db.TagCounts()
	if err != nil {
		t.Fatalf("TagCounts() error = %v", err)
	}
	want := []TagCount{{"ml", 2}, {"bio", 1}}
	if len(counts) != len(want) {
		t.Fatalf("TagCounts() = %v, want %v", counts, want)
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Errorf("TagCounts()[%d] = %v, want %v", i, counts[i], want[i])
		}
	}
}

func TestDB_MissingFiles(t *testing.T) {
	db, dir := setupTestDB(t)

	missing, err := db.MissingFiles()
	if err != nil {
		t.Fatalf("MissingFiles() error = %v", err)
	}
	if len(missing) != 1 || missing[0].Key != "Jones2025" || missing[0].Path != filepath.Join(dir, "gone.pdf") {
		t.Errorf("MissingFiles() = %v, want Jones2025 gone.pdf", missing)
	}
}

func TestDB_Search(t *testing.T) {
	db, _ := setupTestDB(t)

	tests := []struct {
		query string
		want  []int
	}{
		{"learning", []int{0, 1}},
		{"genomics", []int{2}},
		{"Jones", []int{1}},
		{"Smith2026", []int{0}},
		{"nothing", []int{}},
		{"", []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := db.Search(tt.query, 10)
			if err != nil {
				t.Fatalf("Search(%q) error = %v", tt.query, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Search(%q) = %v, want %v", tt.query, got, tt.want)
			}
			seen := map[int]bool{}
			for _, idx := range got {
				seen[idx] = true
			}
			for _, idx := range tt.want {
				if !seen[idx] {
					t.Errorf("Search(%q) = %v, missing %d", tt.query, got, idx)
				}
			}
		})
	}
}

func TestPrepareFTSQuery(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"cats", "cats"},
		{"  cats  ", "cats"},
		{"IQ-TREE", `"IQ-TREE"`},
		{`say "hi"`, `"say ""hi"""`},
		{"", ""},
	}
	for _, tt := range tests {
		if got := prepareFTSQuery(tt.input); got != tt.want {
			t.Errorf("prepareFTSQuery(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestRebuild(t *testing.T) {
	libPath := filepath.Join(t.TempDir(), "library.json")
	db, err := Rebuild(libPath, nil)
	if err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(CachePath(libPath)); err != nil {
		t.Errorf("index not created at %s: %v", CachePath(libPath), err)
	}
}

func TestRebuild_MissingLibraryDirectory(t *testing.T) {
	libPath := filepath.Join(t.TempDir(), "not", "yet", "library.json")
	db, err := Rebuild(libPath, nil)
	if err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	defer db.Close()

	n, err := db.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Count() = %d, want 0", n)
	}
}
