package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aplify/composer/internal/fsops"
)

// FileName is the package manifest file name.
const FileName = "composer.json"

// ErrRootNotFound indicates the project has no root composer.json.
var ErrRootNotFound = errors.New("root manifest not found")

// Store loads and saves root documents through an fsops.FS.
type Store struct {
	fs fsops.FS
}

// NewStore creates a new Store.
func NewStore(fs fsops.FS) *Store {
	return &Store{fs: fs}
}

// RootPath returns the root manifest path for a project directory.
func RootPath(projectDir string) string {
	return filepath.Join(projectDir, FileName)
}

// Load reads and parses the document at path.
// Returns ErrRootNotFound if the file doesn't exist.
func (s *Store) Load(path string) (*Document, error) {
	data, err := s.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRootNotFound, path)
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	doc, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// Save writes the document back to its Path atomically.
func (s *Store) Save(doc *Document) error {
	if doc.Path == "" {
		return fmt.Errorf("failed to save manifest: document has no path")
	}
	return s.SaveAs(doc, doc.Path)
}

// SaveAs writes the document to path atomically.
func (s *Store) SaveAs(doc *Document, path string) error {
	data, err := doc.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := s.fs.AtomicWrite(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
