// Package discovery finds library descriptor files (apply.json by default)
// under a library root and turns each into a merge Candidate.
package discovery

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/aplify/composer/internal/fsops"
	"github.com/aplify/composer/internal/manifest"
)

// Candidate is a discovered descriptor file and its activation flags.
type Candidate struct {
	// DescriptorPath is the matched descriptor file.
	DescriptorPath string `json:"descriptorPath" yaml:"descriptorPath"`

	// ManifestPath is the sibling composer.json that gets merged.
	ManifestPath string `json:"manifestPath" yaml:"manifestPath"`

	// Active marks the library as selected for merging.
	Active bool `json:"active" yaml:"active"`

	// Core marks the library as always merged when its manifest exists.
	Core bool `json:"core" yaml:"core"`

	// Err is set when the descriptor file could not be parsed.
	Err error `json:"-" yaml:"-"`
}

// flags is the subset of a descriptor file the scanner reads.
// Non-boolean values are treated as absent.
type flags struct {
	Active interface{} `json:"active"`
	Core   interface{} `json:"core"`
}

// Scanner walks a library directory for descriptor files.
type Scanner struct {
	fs fsops.FS
}

// NewScanner creates a new Scanner.
func NewScanner(fs fsops.FS) *Scanner {
	return &Scanner{fs: fs}
}

// Scan walks root recursively and returns a Candidate for every file whose
// base name equals filename, in lexical walk order. Every call re-walks the
// tree.
func (s *Scanner) Scan(root, filename string) ([]Candidate, error) {
	var candidates []Candidate
	err := s.fs.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != filename {
			return nil
		}
		candidates = append(candidates, s.candidate(path))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	return candidates, nil
}

func (s *Scanner) candidate(path string) Candidate {
	c := Candidate{
		DescriptorPath: path,
		ManifestPath:   filepath.Join(filepath.Dir(path), manifest.FileName),
	}

	data, err := s.fs.ReadFile(path)
	if err != nil {
		c.Err = fmt.Errorf("failed to read descriptor: %w", err)
		return c
	}

	var f flags
	if err := json.Unmarshal(data, &f); err != nil {
		c.Err = fmt.Errorf("failed to parse descriptor: %w", err)
		return c
	}
	c.Active, _ = f.Active.(bool)
	c.Core, _ = f.Core.(bool)
	return c
}
