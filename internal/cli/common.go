package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/aplify/composer/internal/config"
	"github.com/aplify/composer/internal/descriptor"
	"github.com/aplify/composer/internal/discovery"
	"github.com/aplify/composer/internal/engine"
	"github.com/aplify/composer/internal/fsops"
	"github.com/aplify/composer/internal/merge"
	"github.com/aplify/composer/internal/state"
)

// logPrefix tags every log line written by aplify.
const logPrefix = "library"

// newLogger creates the stderr logger for the current verbosity flags.
// Warnings are always shown; -v adds info and -vv adds debug.
func newLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix: logPrefix,
		Level:  logLevel(verbosity, quiet),
	})
}

func logLevel(verbosity int, quiet bool) log.Level {
	switch {
	case quiet:
		return log.ErrorLevel
	case verbosity >= 2:
		return log.DebugLevel
	case verbosity == 1:
		return log.InfoLevel
	default:
		return log.WarnLevel
	}
}

// loadSettings resolves settings for the --project-dir flag.
func loadSettings(fs fsops.FS) (*config.Settings, error) {
	dir, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project directory: %w", err)
	}

	return config.Load(fs, dir, config.Overrides{
		LibraryPath: libraryPath,
		Filename:    filename,
	})
}

// newEngine creates a new engine with real implementations of all dependencies.
func newEngine(fs fsops.FS, settings *config.Settings, root merge.Root, logger *log.Logger) *engine.Engine {
	return engine.New(
		fs,
		discovery.NewScanner(fs),
		descriptor.NewLoader(fs),
		state.NewLedger(),
		root,
		settings,
		logger,
	)
}

// formatJSON formats a value as JSON.
func formatJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// formatError formats an error for display.
func formatError(err error) string {
	return errorColor.Sprintf("Error: %v", err)
}

// outputJSON writes a value as JSON.
func outputJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputYAML writes a value as YAML.
func outputYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// structuredOutput writes v in the format selected by --json or --yaml and
// reports whether a structured format was selected.
func structuredOutput(w io.Writer, v interface{}) (bool, error) {
	switch {
	case jsonOutput:
		return true, outputJSON(w, v)
	case yamlOutput:
		return true, outputYAML(w, v)
	default:
		return false, nil
	}
}

// relPath returns path relative to the project directory when possible.
func relPath(settings *config.Settings, path string) string {
	rel, err := filepath.Rel(settings.ProjectDir, path)
	if err != nil {
		return path
	}
	return rel
}
