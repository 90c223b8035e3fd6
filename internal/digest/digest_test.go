package digest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// SHA-256 of "hello world"
const helloWorldHex = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"

func TestBytes(t *testing.T) {
	if got := Bytes([]byte("hello world")).String(); got != helloWorldHex {
		t.Errorf("Bytes() = %s, want %s", got, helloWorldHex)
	}
}

func TestReader(t *testing.T) {
	d, err := Reader(strings.NewReader("hello world"))
	if err != nil {
		t.Fatalf("Reader() error = %v", err)
	}
	if d.String() != helloWorldHex {
		t.Errorf("Reader() = %s, want %s", d, helloWorldHex)
	}
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paper.pdf")
	if err := os.WriteFile(path, []byte("hello world"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	d, err := File(path)
	if err != nil {
		t.Fatalf("File() error = %v", err)
	}
	if d.String() != helloWorldHex {
		t.Errorf("File() = %s, want %s", d, helloWorldHex)
	}
}

func TestFile_Missing(t *testing.T) {
	if _, err := File(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Error("File() expected error for missing file")
	}
}
