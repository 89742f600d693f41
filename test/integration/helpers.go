package integration

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/aplify/composer/internal/config"
	"github.com/aplify/composer/internal/descriptor"
	"github.com/aplify/composer/internal/discovery"
	"github.com/aplify/composer/internal/engine"
	"github.com/aplify/composer/internal/fsops"
	"github.com/aplify/composer/internal/installer"
	"github.com/aplify/composer/internal/manifest"
	"github.com/aplify/composer/internal/state"
)

const projectDir = "/repo"

// testProject wires an engine to an in-memory project.
type testProject struct {
	fs       *fsops.MemFS
	store    *manifest.Store
	settings *config.Settings
	root     *manifest.Document
	engine   *engine.Engine
	logs     *bytes.Buffer
}

// setupTestEngine loads settings and the root manifest from files, prepares
// the library directory, and builds an engine the way the CLI does.
func setupTestEngine(t *testing.T, files map[string]string) *testProject {
	t.Helper()

	mem := fsops.NewMemFS()
	for path, content := range files {
		mem.AddFile(projectDir+"/"+path, content)
	}

	settings, err := config.Load(mem, projectDir, config.Overrides{})
	if err != nil {
		t.Fatalf("failed to load settings: %v", err)
	}
	if err := installer.ValidateLibraryPath(settings); err != nil {
		t.Fatalf("unsafe library path: %v", err)
	}
	if err := settings.EnsureLibraryDir(mem); err != nil {
		t.Fatalf("failed to create library dir: %v", err)
	}

	store := manifest.NewStore(mem)
	root, err := store.Load(settings.RootManifestPath())
	if err != nil {
		t.Fatalf("failed to load root manifest: %v", err)
	}

	logs := &bytes.Buffer{}
	logger := log.NewWithOptions(logs, log.Options{Prefix: "library", Level: log.DebugLevel})

	eng := engine.New(
		mem,
		discovery.NewScanner(mem),
		descriptor.NewLoader(mem),
		state.NewLedger(),
		root,
		settings,
		logger,
	)

	return &testProject{
		fs:       mem,
		store:    store,
		settings: settings,
		root:     root,
		engine:   eng,
		logs:     logs,
	}
}

// dispatch sends events in order, failing the test on error.
func (p *testProject) dispatch(t *testing.T, events ...engine.Event) []*engine.ProcessResult {
	t.Helper()
	var results []*engine.ProcessResult
	for _, ev := range events {
		result, err := p.engine.HandleEvent(context.Background(), ev)
		if err != nil {
			t.Fatalf("HandleEvent(%s) error = %v", ev.Name, err)
		}
		results = append(results, result)
	}
	return results
}

// reload saves the root and parses it back from the filesystem.
func (p *testProject) reload(t *testing.T) *manifest.Document {
	t.Helper()
	if err := p.store.Save(p.root); err != nil {
		t.Fatalf("failed to save root: %v", err)
	}
	doc, err := p.store.Load(p.settings.RootManifestPath())
	if err != nil {
		t.Fatalf("failed to reload root: %v", err)
	}
	return doc
}
