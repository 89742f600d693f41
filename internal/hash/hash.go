// Package hash provides content hashing for change detection.
//
// The root composer.json is only rewritten when the SHA-256 of the merged
// output differs from the file on disk, so repeated merges leave the file
// (and its modification time) alone.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/aplify/composer/internal/fsops"
)

// Hasher provides an abstraction for content hashing operations.
type Hasher interface {
	// HashBytes computes the hash of data.
	HashBytes(data []byte) string

	// HashFile computes the hash of the file at the given path.
	HashFile(path string) (string, error)
}

// SHA256Hasher implements Hasher using SHA-256.
type SHA256Hasher struct {
	fs fsops.FS
}

// NewSHA256Hasher creates a new SHA256Hasher reading files through fs.
func NewSHA256Hasher(fs fsops.FS) *SHA256Hasher {
	return &SHA256Hasher{fs: fs}
}

// HashBytes computes the SHA-256 hash of data.
func (h *SHA256Hasher) HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashFile computes the SHA-256 hash of the file at the given path.
func (h *SHA256Hasher) HashFile(path string) (string, error) {
	data, err := h.fs.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return h.HashBytes(data), nil
}

// Changed reports whether writing data to path would change its content.
// A missing file counts as changed.
func Changed(h Hasher, path string, data []byte) (bool, error) {
	current, err := h.HashFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return true, nil
		}
		return false, err
	}
	return current != h.HashBytes(data), nil
}
