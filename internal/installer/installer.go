// Package installer decides where a package is placed on disk.
//
// Placement is chosen by an ordered list of variants. The first variant whose
// Supports predicate accepts the package type wins; the vendor variant is the
// fallback for everything else.
package installer

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/aplify/composer/internal/config"
)

// ErrUnsafeInstallationTarget indicates a target path that would place files
// in the vendor directory or at the project root.
var ErrUnsafeInstallationTarget = errors.New("unsafe installation target")

// LibraryType is the package type installed into the library directory.
const LibraryType = "aplify"

// Package is the part of a package the installer needs.
type Package struct {
	// Name is the pretty package name, e.g. "acme/logging"
	Name string `json:"name" yaml:"name"`

	// Type is the declared package type
	Type string `json:"type" yaml:"type"`

	// VendorAlias replaces Name as the directory name when set
	// (extra.aplify.vendor in the package manifest)
	VendorAlias string `json:"vendorAlias,omitempty" yaml:"vendorAlias,omitempty"`
}

// Variant is one way of installing packages.
type Variant struct {
	Name        string
	Supports    func(packageType string) bool
	InstallPath func(pkg Package) (string, error)
}

// Registry selects a Variant for a package.
type Registry struct {
	variants []Variant
	fallback Variant
}

// NewRegistry creates a registry that falls back to fallback when no
// registered variant supports a package.
func NewRegistry(fallback Variant, variants ...Variant) *Registry {
	return &Registry{
		variants: variants,
		fallback: fallback,
	}
}

// Register appends a variant. Earlier variants take precedence.
func (r *Registry) Register(v Variant) {
	r.variants = append(r.variants, v)
}

// Select returns the first variant supporting packageType, or the fallback.
func (r *Registry) Select(packageType string) Variant {
	for _, v := range r.variants {
		if v.Supports != nil && v.Supports(packageType) {
			return v
		}
	}
	return r.fallback
}

// InstallPath resolves the install path of pkg and the name of the variant
// that produced it.
func (r *Registry) InstallPath(pkg Package) (string, string, error) {
	v := r.Select(pkg.Type)
	path, err := v.InstallPath(pkg)
	if err != nil {
		return "", v.Name, err
	}
	return path, v.Name, nil
}

// VendorVariant installs packages under vendorDir/<name>.
func VendorVariant(vendorDir string) Variant {
	return Variant{
		Name:     "vendor",
		Supports: func(string) bool { return true },
		InstallPath: func(pkg Package) (string, error) {
			return filepath.Join(vendorDir, pkg.Name), nil
		},
	}
}

// LibraryVariant installs "aplify" packages under the configured library
// install path. A non-string install path falls back to the vendor variant.
func LibraryVariant(s *config.Settings, logger *log.Logger) Variant {
	vendor := VendorVariant(s.VendorDir)
	return Variant{
		Name:     "library",
		Supports: func(packageType string) bool { return packageType == LibraryType },
		InstallPath: func(pkg Package) (string, error) {
			base, err := libraryInstallPath(s.InstallPath)
			if errors.Is(err, config.ErrInvalidConfiguration) {
				logger.Warn("Falling back to vendor install path", "package", pkg.Name, "error", err)
				return vendor.InstallPath(pkg)
			}
			if err := CheckTarget(s.ProjectDir, base, s.VendorDir); err != nil {
				return "", err
			}

			dir := pkg.VendorAlias
			if dir == "" {
				dir = pkg.Name
			}
			return filepath.Join(base, dir), nil
		},
	}
}

// NewDefaultRegistry returns the library variant backed by the vendor fallback.
func NewDefaultRegistry(s *config.Settings, logger *log.Logger) *Registry {
	return NewRegistry(VendorVariant(s.VendorDir), LibraryVariant(s, logger))
}

func libraryInstallPath(raw interface{}) (string, error) {
	if raw == nil {
		return config.DefaultLibraryPath, nil
	}
	path, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", config.ErrInvalidConfiguration, config.KeyInstallPath, raw)
	}
	return path, nil
}

// CheckTarget rejects target paths that resolve to the project root or the
// vendor directory. Relative paths are resolved against projectDir.
func CheckTarget(projectDir, target, vendorDir string) error {
	if target == "" {
		return fmt.Errorf("%w: empty path", ErrUnsafeInstallationTarget)
	}

	resolved := resolve(projectDir, target)
	switch resolved {
	case filepath.Clean(projectDir):
		return fmt.Errorf("%w: %q is the project root", ErrUnsafeInstallationTarget, target)
	case resolve(projectDir, vendorDir):
		return fmt.Errorf("%w: %q is the vendor directory", ErrUnsafeInstallationTarget, target)
	}
	return nil
}

// ValidateLibraryPath checks the library directory before it is created or
// scanned.
func ValidateLibraryPath(s *config.Settings) error {
	return CheckTarget(s.ProjectDir, s.LibraryPath, s.VendorDir)
}

func resolve(projectDir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(projectDir, path)
}
