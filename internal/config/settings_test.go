package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/aplify/composer/internal/fsops"
)

func TestLoad_Defaults(t *testing.T) {
	mem := fsops.NewMemFS()
	mem.AddFile("/project/composer.json", `{"name": "acme/app"}`)

	s, err := Load(mem, "/project", Overrides{})
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"LibraryPath", s.LibraryPath, "common"},
		{"Filename", s.Filename, "apply.json"},
		{"VendorDir", s.VendorDir, "vendor"},
		{"InstallPath", s.InstallPath, "common"},
		{"LibraryDir", s.LibraryDir(), "/project/common"},
		{"RootManifestPath", s.RootManifestPath(), "/project/composer.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoad_MissingRootUsesDefaults(t *testing.T) {
	s, err := Load(fsops.NewMemFS(), "/empty", Overrides{})
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if s.LibraryPath != DefaultLibraryPath || s.Filename != DefaultFilename {
		t.Errorf("settings = %+v, want defaults", s)
	}
}

func TestLoad_FromExtra(t *testing.T) {
	mem := fsops.NewMemFS()
	mem.AddFile("/project/composer.json", `{
		"config": {"vendor-dir": "deps"},
		"extra": {
			"aplify": {"library": {"path": "libs", "filename": "lib.json"}},
			"aplify-library-path": "modules"
		}
	}`)

	s, err := Load(mem, "/project", Overrides{})
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if s.LibraryPath != "libs" {
		t.Errorf("LibraryPath = %q, want libs", s.LibraryPath)
	}
	if s.Filename != "lib.json" {
		t.Errorf("Filename = %q, want lib.json", s.Filename)
	}
	if s.VendorDir != "deps" {
		t.Errorf("VendorDir = %q, want deps", s.VendorDir)
	}
	if s.InstallPath != "modules" {
		t.Errorf("InstallPath = %v, want modules", s.InstallPath)
	}
}

func TestLoad_InstallPathFallsBackToLibraryPath(t *testing.T) {
	mem := fsops.NewMemFS()
	mem.AddFile("/project/composer.json", `{"extra": {"aplify": {"library": {"path": "libs"}}}}`)

	s, err := Load(mem, "/project", Overrides{})
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if s.InstallPath != "libs" {
		t.Errorf("InstallPath = %v, want libs", s.InstallPath)
	}
}

func TestLoad_InstallPathKeepsRawValue(t *testing.T) {
	mem := fsops.NewMemFS()
	mem.AddFile("/project/composer.json", `{"extra": {"aplify-library-path": false}}`)

	s, err := Load(mem, "/project", Overrides{})
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if s.InstallPath != false {
		t.Errorf("InstallPath = %#v, want false", s.InstallPath)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	mem := fsops.NewMemFS()
	mem.AddFile("/project/composer.json", `{"extra": {"aplify": {"library": {"path": "libs"}}}}`)

	t.Setenv("APLIFY_LIBRARY_PATH", "from-env")
	t.Setenv("APLIFY_LIBRARY_FILENAME", "env.json")
	t.Setenv("APLIFY_VENDOR_DIR", "env-vendor")

	s, err := Load(mem, "/project", Overrides{})
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if s.LibraryPath != "from-env" || s.Filename != "env.json" || s.VendorDir != "env-vendor" {
		t.Errorf("settings = %+v, want env values", s)
	}
}

func TestLoad_FlagOverridesWin(t *testing.T) {
	mem := fsops.NewMemFS()
	mem.AddFile("/project/composer.json", `{"extra": {"aplify": {"library": {"path": "libs"}}}}`)
	t.Setenv("APLIFY_LIBRARY_PATH", "from-env")

	s, err := Load(mem, "/project", Overrides{LibraryPath: "flag-libs", Filename: "flag.json"})
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if s.LibraryPath != "flag-libs" || s.Filename != "flag.json" {
		t.Errorf("settings = %+v, want flag values", s)
	}
}

func TestLoad_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"non-string library path", `{"extra": {"aplify": {"library": {"path": false}}}}`},
		{"numeric filename", `{"extra": {"aplify": {"library": {"filename": 3}}}}`},
		{"empty filename", `{"extra": {"aplify": {"library": {"filename": ""}}}}`},
		{"non-string vendor dir", `{"config": {"vendor-dir": ["a"]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := fsops.NewMemFS()
			mem.AddFile("/project/composer.json", tt.content)

			_, err := Load(mem, "/project", Overrides{})
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}
}

func TestLoad_MalformedRoot(t *testing.T) {
	mem := fsops.NewMemFS()
	mem.AddFile("/project/composer.json", `{"extra": `)

	if _, err := Load(mem, "/project", Overrides{}); err == nil {
		t.Error("expected error for malformed composer.json")
	}
}

func TestSettings_LibraryDirAbsolute(t *testing.T) {
	abs := filepath.Join(string(filepath.Separator), "shared", "libs")
	s := &Settings{ProjectDir: "/project", LibraryPath: abs}
	if s.LibraryDir() != abs {
		t.Errorf("LibraryDir = %q, want %q", s.LibraryDir(), abs)
	}
}

func TestSettings_EnsureLibraryDir(t *testing.T) {
	mem := fsops.NewMemFS()
	s := &Settings{ProjectDir: "/project", LibraryPath: "common"}

	if err := s.EnsureLibraryDir(mem); err != nil {
		t.Fatalf("EnsureLibraryDir failed: %v", err)
	}
	if ok, _ := mem.IsDir("/project/common"); !ok {
		t.Error("library directory was not created")
	}

	// Second call is a no-op
	if err := s.EnsureLibraryDir(mem); err != nil {
		t.Fatalf("EnsureLibraryDir failed: %v", err)
	}
}
