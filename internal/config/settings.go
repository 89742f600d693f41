// Package config resolves aplify settings.
//
// Settings live in the root composer.json under "extra.aplify" (the same
// place the package manager keeps plugin configuration) and can be
// overridden with APLIFY_* environment variables or CLI flags. Settings are
// read once at startup.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/aplify/composer/internal/fsops"
	"github.com/aplify/composer/internal/manifest"
)

// ErrInvalidConfiguration indicates a configured option has an unusable value.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Defaults
const (
	DefaultLibraryPath = "common"
	DefaultFilename    = "apply.json"
	DefaultVendorDir   = "vendor"
)

// Configuration keys inside composer.json.
const (
	KeyLibraryPath     = "extra.aplify.library.path"
	KeyLibraryFilename = "extra.aplify.library.filename"
	KeyInstallPath     = "extra.aplify-library-path"
	KeyVendorDir       = "config.vendor-dir"
)

// Settings holds the resolved configuration for one run.
type Settings struct {
	// ProjectDir is the directory holding the root composer.json
	ProjectDir string `json:"projectDir" yaml:"projectDir"`

	// LibraryPath is the library directory, relative to ProjectDir unless absolute
	LibraryPath string `json:"libraryPath" yaml:"libraryPath"`

	// Filename is the descriptor file name searched for under LibraryPath
	Filename string `json:"filename" yaml:"filename"`

	// VendorDir is the package manager's reserved install directory
	VendorDir string `json:"vendorDir" yaml:"vendorDir"`

	// InstallPath is the raw configured install path for library packages;
	// it may be any JSON value and is type checked by the installer
	InstallPath interface{} `json:"installPath" yaml:"installPath"`
}

// Overrides are explicit values (usually CLI flags) that win over the file
// and the environment. Empty fields are ignored.
type Overrides struct {
	LibraryPath string
	Filename    string
}

// Load reads settings for projectDir. A missing composer.json yields the
// defaults.
func Load(fs fsops.FS, projectDir string, overrides Overrides) (*Settings, error) {
	v := viper.New()
	v.SetConfigType("json")
	v.SetDefault(KeyLibraryPath, DefaultLibraryPath)
	v.SetDefault(KeyLibraryFilename, DefaultFilename)
	v.SetDefault(KeyVendorDir, DefaultVendorDir)

	_ = v.BindEnv(KeyLibraryPath, "APLIFY_LIBRARY_PATH")
	_ = v.BindEnv(KeyLibraryFilename, "APLIFY_LIBRARY_FILENAME")
	_ = v.BindEnv(KeyVendorDir, "APLIFY_VENDOR_DIR")

	data, err := fs.ReadFile(manifest.RootPath(projectDir))
	switch {
	case err == nil:
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to read settings from %s: %w", manifest.RootPath(projectDir), err)
		}
	case errors.Is(err, os.ErrNotExist):
		// It's fine if there is no composer.json yet; we use defaults.
	default:
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	if overrides.LibraryPath != "" {
		v.Set(KeyLibraryPath, overrides.LibraryPath)
	}
	if overrides.Filename != "" {
		v.Set(KeyLibraryFilename, overrides.Filename)
	}

	s := &Settings{ProjectDir: projectDir}
	if s.LibraryPath, err = stringOption(v, KeyLibraryPath); err != nil {
		return nil, err
	}
	if s.Filename, err = stringOption(v, KeyLibraryFilename); err != nil {
		return nil, err
	}
	if s.VendorDir, err = stringOption(v, KeyVendorDir); err != nil {
		return nil, err
	}
	if s.Filename == "" {
		return nil, fmt.Errorf("%w: %s must not be empty", ErrInvalidConfiguration, KeyLibraryFilename)
	}

	s.InstallPath = DefaultLibraryPath
	if raw := v.Get(KeyInstallPath); raw != nil {
		s.InstallPath = raw
	} else if raw := v.Get(KeyLibraryPath); raw != nil {
		s.InstallPath = raw
	}

	return s, nil
}

func stringOption(v *viper.Viper, key string) (string, error) {
	raw := v.Get(key)
	str, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidConfiguration, key, raw)
	}
	return str, nil
}

// LibraryDir returns the absolute-or-project-relative library directory.
func (s *Settings) LibraryDir() string {
	if filepath.IsAbs(s.LibraryPath) {
		return s.LibraryPath
	}
	return filepath.Join(s.ProjectDir, s.LibraryPath)
}

// RootManifestPath returns the root composer.json path.
func (s *Settings) RootManifestPath() string {
	return manifest.RootPath(s.ProjectDir)
}

// EnsureLibraryDir creates the library directory if it doesn't exist.
func (s *Settings) EnsureLibraryDir(fs fsops.FS) error {
	dir := s.LibraryDir()
	isDir, err := fs.IsDir(dir)
	if err != nil {
		return fmt.Errorf("failed to check library directory: %w", err)
	}
	if isDir {
		return nil
	}
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create library directory %s: %w", dir, err)
	}
	return nil
}
