// Package engine provides the merge coordinator.
//
// The engine sits between the CLI and the lower-level packages. For each
// lifecycle event it rescans the library directory, plans every candidate
// against the ledger, loads the accepted descriptors and folds their links
// into the root manifest.
//
// Key components:
//   - Engine: orchestrator owning the ledger and the current dev mode
//   - Process: executes one merge pass over a list of candidates
//   - HandleEvent: maps lifecycle events to merge passes
package engine

import (
	"github.com/charmbracelet/log"

	"github.com/aplify/composer/internal/config"
	"github.com/aplify/composer/internal/descriptor"
	"github.com/aplify/composer/internal/discovery"
	"github.com/aplify/composer/internal/fsops"
	"github.com/aplify/composer/internal/merge"
	"github.com/aplify/composer/internal/state"
)

// Scanner produces merge candidates from a library directory.
type Scanner interface {
	Scan(root, filename string) ([]discovery.Candidate, error)
}

// DescriptorLoader materializes the manifest of an accepted candidate.
type DescriptorLoader interface {
	Load(path string) (*descriptor.Descriptor, error)
}

// Engine orchestrates merge passes.
// It is the main API surface called by the CLI.
type Engine struct {
	fs       fsops.FS
	scanner  Scanner
	loader   DescriptorLoader
	ledger   *state.Ledger
	root     merge.Root
	settings *config.Settings
	logger   *log.Logger

	// devMode is the mode of the last install, update or dump event
	devMode bool
}

// New creates a new Engine with the given dependencies.
func New(
	fs fsops.FS,
	scanner Scanner,
	loader DescriptorLoader,
	ledger *state.Ledger,
	root merge.Root,
	settings *config.Settings,
	logger *log.Logger,
) *Engine {
	return &Engine{
		fs:       fs,
		scanner:  scanner,
		loader:   loader,
		ledger:   ledger,
		root:     root,
		settings: settings,
		logger:   logger,
	}
}

// Ledger returns the ledger owned by the engine.
func (e *Engine) Ledger() *state.Ledger {
	return e.ledger
}

// DevMode returns the dev mode used by the next init event.
func (e *Engine) DevMode() bool {
	return e.devMode
}
