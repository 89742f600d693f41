package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aplify/composer/internal/config"
	"github.com/aplify/composer/internal/engine"
	"github.com/aplify/composer/internal/fsops"
	"github.com/aplify/composer/internal/hash"
	"github.com/aplify/composer/internal/installer"
	"github.com/aplify/composer/internal/manifest"
	"github.com/aplify/composer/internal/state"
)

var (
	mergeNoDev  bool
	mergeEvent  string
	mergeDryRun bool
	mergeWrite  bool
	mergeOutput string
)

// mergeReport is the structured output of the merge command.
type mergeReport struct {
	Event   string                       `json:"event" yaml:"event"`
	DevMode bool                         `json:"devMode" yaml:"devMode"`
	DryRun  bool                         `json:"dryRun" yaml:"dryRun"`
	Passes  []*engine.ProcessResult      `json:"passes" yaml:"passes"`
	Ledger  map[string]state.MergeStatus `json:"ledger" yaml:"ledger"`
	Written string                       `json:"written,omitempty" yaml:"written,omitempty"`
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge library requirements into composer.json",
	Long: `Merge the require and require-dev sections of eligible libraries into the
root composer.json.

The init event runs first, followed by the selected install, update or dump
event. Without --write or --output the merged manifest is printed to stdout.
With --write, composer.json is only rewritten when its content changed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fs := fsops.NewRealFS()
		logger := newLogger(cmd.ErrOrStderr())

		settings, err := loadSettings(fs)
		if err != nil {
			return err
		}
		if err := installer.ValidateLibraryPath(settings); err != nil {
			return err
		}

		store := manifest.NewStore(fs)
		root, err := store.Load(settings.RootManifestPath())
		if err != nil {
			return err
		}

		ctx := context.Background()
		eng := newEngine(fs, settings, root, logger)
		ev := engine.Event{Name: mergeEvent, DevMode: !mergeNoDev}
		report := &mergeReport{Event: mergeEvent, DryRun: mergeDryRun}

		if mergeDryRun {
			result, err := eng.PreviewEvent(ctx, ev)
			if err != nil {
				return err
			}
			report.Passes = append(report.Passes, result)
			report.DevMode = result.Plan.DevMode
			report.Ledger = eng.Ledger().Snapshot()
			if ok, err := structuredOutput(cmd.OutOrStdout(), report); ok {
				return err
			}
			printPlan(settings, result)
			return nil
		}

		if err := settings.EnsureLibraryDir(fs); err != nil {
			return err
		}

		for _, e := range []engine.Event{{Name: engine.EventInit}, ev} {
			result, err := eng.HandleEvent(ctx, e)
			if err != nil {
				return err
			}
			report.Passes = append(report.Passes, result)
		}
		// init keeps the engine's mode, so the last pass reports the real one
		report.DevMode = report.Passes[len(report.Passes)-1].Plan.DevMode
		report.Ledger = eng.Ledger().Snapshot()

		data, err := root.Marshal()
		if err != nil {
			return err
		}

		switch {
		case mergeWrite:
			changed, err := hash.Changed(hash.NewSHA256Hasher(fs), root.Path, data)
			if err != nil {
				return fmt.Errorf("failed to compare composer.json: %w", err)
			}
			if changed {
				if err := store.Save(root); err != nil {
					return err
				}
				report.Written = root.Path
			}
		case mergeOutput != "":
			path, err := filepath.Abs(mergeOutput)
			if err != nil {
				return fmt.Errorf("failed to resolve output path: %w", err)
			}
			if err := store.SaveAs(root, path); err != nil {
				return err
			}
			report.Written = path
		}

		if ok, err := structuredOutput(cmd.OutOrStdout(), report); ok {
			return err
		}
		if !mergeWrite && mergeOutput == "" {
			_, err := cmd.OutOrStdout().Write(data)
			return err
		}
		printMergeSummary(report)
		return nil
	},
}

func printPlan(settings *config.Settings, result *engine.ProcessResult) {
	PrintSection(fmt.Sprintf("Merge plan (%s)", modeName(result.Plan.DevMode)))
	if len(result.Plan.Actions) == 0 {
		PrintEmptyState("No libraries found")
		return
	}

	rows := make([][]string, 0, len(result.Plan.Actions))
	for _, a := range result.Plan.Actions {
		rows = append(rows, []string{relPath(settings, a.ManifestPath), a.Type, a.From.String(), a.To.String(), a.Reason})
	}
	PrintTable([]string{"MANIFEST", "ACTION", "FROM", "TO", "REASON"}, rows)
}

func printMergeSummary(report *mergeReport) {
	merged, skipped := 0, 0
	var overrides []string
	for _, pass := range report.Passes {
		merged += len(pass.Merged)
		skipped += len(pass.Skipped)
		for _, o := range pass.Overrides {
			overrides = append(overrides, fmt.Sprintf("%s %s: %s -> %s (%s)",
				o.Section, o.Incoming.Target, o.Previous.Constraint, o.Incoming.Constraint, o.Incoming.Source))
		}
	}

	PrintSuccess(fmt.Sprintf("Merged %s (%s), skipped %s",
		PrintCount(merged, "manifest", "manifests"), modeName(report.DevMode), PrintCount(skipped, "entry", "entries")))
	if len(overrides) > 0 {
		PrintWarning(PrintCount(len(overrides), "constraint overridden", "constraints overridden"))
		PrintList(overrides, 1)
	}
	if report.Written != "" {
		PrintSuccess("Wrote " + report.Written)
	} else {
		PrintSuccess("composer.json is up to date")
	}
}

func modeName(devMode bool) string {
	if devMode {
		return "dev"
	}
	return "no-dev"
}

func init() {
	mergeCmd.Flags().BoolVar(&mergeNoDev, "no-dev", false, "Skip require-dev sections")
	mergeCmd.Flags().StringVar(&mergeEvent, "event", engine.EventPreInstallCmd, "Lifecycle event to run after init")
	mergeCmd.Flags().BoolVar(&mergeDryRun, "dry-run", false, "Show the merge plan without merging")
	mergeCmd.Flags().BoolVar(&mergeWrite, "write", false, "Rewrite composer.json in place")
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "", "Write the merged manifest to a file")
}
