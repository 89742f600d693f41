// Package descriptor loads library package manifests into normalized
// descriptors ready to be merged into the root manifest.
package descriptor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/aplify/composer/internal/fsops"
	"github.com/aplify/composer/internal/manifest"
)

// ErrMalformedDescriptor indicates a manifest could not be parsed or
// converted into a Descriptor.
var ErrMalformedDescriptor = errors.New("malformed descriptor")

const (
	// NamePrefix prefixes names synthesized for manifests without a name.
	NamePrefix = "merge-plugin/"

	// DefaultVersion is assigned to manifests without a version.
	DefaultVersion = "1.0.0"
)

// Descriptor is the normalized form of one package manifest.
type Descriptor struct {
	Name       string
	Version    string
	Path       string
	Require    manifest.LinkSet
	RequireDev manifest.LinkSet
}

// Loader reads descriptors through an fsops.FS.
type Loader struct {
	fs fsops.FS
}

// NewLoader creates a new Loader.
func NewLoader(fs fsops.FS) *Loader {
	return &Loader{fs: fs}
}

// Load reads the manifest at path and converts it to a Descriptor.
func (l *Loader) Load(path string) (*Descriptor, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedDescriptor, path, err)
	}
	return Parse(path, data)
}

// SyntheticName returns the name assigned to a manifest at path that does
// not declare one.
func SyntheticName(path string) string {
	return NamePrefix + strings.ReplaceAll(path, string(filepath.Separator), "-")
}

// Parse converts raw manifest bytes read from path into a Descriptor.
func Parse(path string, data []byte) (*Descriptor, error) {
	var fields map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return nil, malformed(path, "not a JSON object")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, malformed(path, "trailing data after JSON object")
	}

	d := &Descriptor{
		Name:    SyntheticName(path),
		Version: DefaultVersion,
		Path:    path,
	}

	if raw, ok := fields["name"]; ok {
		if err := json.Unmarshal(raw, &d.Name); err != nil {
			return nil, malformed(path, "name must be a string")
		}
	}
	if raw, ok := fields["version"]; ok {
		if err := json.Unmarshal(raw, &d.Version); err != nil {
			return nil, malformed(path, "version must be a string")
		}
	}
	if err := checkVersion(d.Version); err != nil {
		return nil, malformed(path, err.Error())
	}

	var err error
	if d.Require, err = manifest.ParseLinks(fields[manifest.SectionRequire], d.Name); err != nil {
		return nil, malformed(path, fmt.Sprintf("%s: %v", manifest.SectionRequire, err))
	}
	if d.RequireDev, err = manifest.ParseLinks(fields[manifest.SectionRequireDev], d.Name); err != nil {
		return nil, malformed(path, fmt.Sprintf("%s: %v", manifest.SectionRequireDev, err))
	}

	return d, nil
}

var (
	// 1.0.0.0, 1.2-beta2, 2024.01.15-RC1, 1.0.0-dev
	classicalVersion = regexp.MustCompile(`(?i)^v?\d+(\.\d+){0,3}(-?(stable|beta|b|rc|alpha|a|patch|pl|p)([.-]?\d+)?)?([.-]?dev)?$`)

	// 1.0.x-dev, 2.x-dev, 1.*-dev
	branchAlias = regexp.MustCompile(`(?i)^v?\d+(\.(\d+|x|\*)){0,3}[.-]dev$`)
)

// checkVersion accepts Composer version spellings: numeric versions of up to
// four parts with an optional stability suffix, branch aliases such as
// 1.0.x-dev, dev- branches, and anything semver parses.
func checkVersion(v string) error {
	if strings.HasPrefix(v, "dev-") && len(v) > len("dev-") {
		return nil
	}
	if classicalVersion.MatchString(v) || branchAlias.MatchString(v) {
		return nil
	}
	if _, err := semver.NewVersion(v); err != nil {
		return fmt.Errorf("invalid version %q", v)
	}
	return nil
}

func malformed(path, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrMalformedDescriptor, path, reason)
}
