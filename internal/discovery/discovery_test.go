package discovery

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/aplify/composer/internal/fsops"
)

func TestScan_FindsExactNameRecursively(t *testing.T) {
	mem := fsops.NewMemFS()
	mem.AddFile("/project/common/pkg1/apply.json", `{"active": true}`)
	mem.AddFile("/project/common/group/pkg2/apply.json", `{"core": true}`)
	mem.AddFile("/project/common/pkg3/apply.json.bak", `{"active": true}`)
	mem.AddFile("/project/common/pkg3/my-apply.json", `{"active": true}`)
	mem.AddFile("/project/common/pkg4/apply.json", `{}`)

	candidates, err := NewScanner(mem).Scan("/project/common", "apply.json")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	want := []Candidate{
		{
			DescriptorPath: "/project/common/group/pkg2/apply.json",
			ManifestPath:   "/project/common/group/pkg2/composer.json",
			Core:           true,
		},
		{
			DescriptorPath: "/project/common/pkg1/apply.json",
			ManifestPath:   "/project/common/pkg1/composer.json",
			Active:         true,
		},
		{
			DescriptorPath: "/project/common/pkg4/apply.json",
			ManifestPath:   "/project/common/pkg4/composer.json",
		},
	}
	if len(candidates) != len(want) {
		t.Fatalf("got %d candidates, want %d: %+v", len(candidates), len(want), candidates)
	}
	for i := range want {
		if candidates[i] != want[i] {
			t.Errorf("candidate[%d] = %+v, want %+v", i, candidates[i], want[i])
		}
	}
}

func TestScan_FlagDefaults(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantActive bool
		wantCore   bool
	}{
		{"both absent", `{}`, false, false},
		{"explicit false", `{"active": false, "core": false}`, false, false},
		{"both true", `{"active": true, "core": true}`, true, true},
		{"string is not a boolean", `{"active": "true", "core": 1}`, false, false},
		{"null document", `null`, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := fsops.NewMemFS()
			mem.AddFile("/lib/p/apply.json", tt.content)

			candidates, err := NewScanner(mem).Scan("/lib", "apply.json")
			if err != nil {
				t.Fatalf("Scan failed: %v", err)
			}
			if len(candidates) != 1 {
				t.Fatalf("got %d candidates, want 1", len(candidates))
			}
			c := candidates[0]
			if c.Err != nil {
				t.Fatalf("unexpected candidate error: %v", c.Err)
			}
			if c.Active != tt.wantActive || c.Core != tt.wantCore {
				t.Errorf("active/core = %v/%v, want %v/%v", c.Active, c.Core, tt.wantActive, tt.wantCore)
			}
		})
	}
}

func TestScan_UnparseableDescriptorKeepsScanning(t *testing.T) {
	mem := fsops.NewMemFS()
	mem.AddFile("/lib/a/apply.json", `{"active": tru`)
	mem.AddFile("/lib/b/apply.json", `{"active": true}`)

	candidates, err := NewScanner(mem).Scan("/lib", "apply.json")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2", len(candidates))
	}
	if candidates[0].Err == nil {
		t.Error("expected parse error on first candidate")
	}
	if candidates[0].Active {
		t.Error("unparseable candidate must not be active")
	}
	if candidates[1].Err != nil || !candidates[1].Active {
		t.Errorf("second candidate = %+v", candidates[1])
	}
}

func TestScan_RescanSeesNewFiles(t *testing.T) {
	mem := fsops.NewMemFS()
	mem.AddFile("/lib/a/apply.json", `{"active": true}`)
	scanner := NewScanner(mem)

	first, err := scanner.Scan("/lib", "apply.json")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	mem.AddFile("/lib/b/apply.json", `{"active": true}`)
	second, err := scanner.Scan("/lib", "apply.json")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(first) != 1 || len(second) != 2 {
		t.Errorf("scan sizes = %d, %d; want 1, 2", len(first), len(second))
	}
}

func TestScan_MissingRoot(t *testing.T) {
	_, err := NewScanner(fsops.NewMemFS()).Scan("/missing", "apply.json")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestScan_RealFS(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "pkg")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "apply.json"), []byte(`{"active": true}`), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	candidates, err := NewScanner(fsops.NewRealFS()).Scan(root, "apply.json")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(candidates))
	}
	if candidates[0].ManifestPath != filepath.Join(dir, "composer.json") {
		t.Errorf("ManifestPath = %q", candidates[0].ManifestPath)
	}
}
