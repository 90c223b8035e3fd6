// Package digest computes content fingerprints of imported files.
package digest

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"github.com/matsen/shelf/internal/reference"
)

// File returns the SHA-256 digest of the file at path.
func File(path string) (reference.Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return reference.Digest{}, fmt.Errorf("opening file for digest: %w", err)
	}
	defer f.Close()

	return Reader(f)
}

// Reader returns the SHA-256 digest of everything read from r.
func Reader(r io.Reader) (reference.Digest, error) {
	var d reference.Digest
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return d, fmt.Errorf("hashing content: %w", err)
	}
	copy(d[:], h.Sum(nil))
	return d, nil
}

// Bytes returns the SHA-256 digest of data.
func Bytes(data []byte) reference.Digest {
	return reference.Digest(sha256.Sum256(data))
}
