package cli

import (
	"errors"
	"io/fs"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aplify/composer/internal/discovery"
	"github.com/aplify/composer/internal/fsops"
	"github.com/aplify/composer/internal/installer"
	"github.com/aplify/composer/internal/planner"
)

// scanEntry is a candidate with its eligibility.
type scanEntry struct {
	discovery.Candidate `yaml:",inline"`

	Eligible bool   `json:"eligible" yaml:"eligible"`
	Reason   string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List library descriptors and their eligibility",
	Long: `Walk the library directory for descriptor files and show which libraries
would be merged. Nothing is loaded or written.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fsys := fsops.NewRealFS()

		settings, err := loadSettings(fsys)
		if err != nil {
			return err
		}
		if err := installer.ValidateLibraryPath(settings); err != nil {
			return err
		}

		candidates, err := discovery.NewScanner(fsys).Scan(settings.LibraryDir(), settings.Filename)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}

		checker := planner.NewEligibilityChecker(fsys)
		entries := make([]scanEntry, 0, len(candidates))
		for _, c := range candidates {
			eligible, reason, err := checker.Check(c)
			if err != nil {
				return err
			}
			entries = append(entries, scanEntry{Candidate: c, Eligible: eligible, Reason: reason})
		}

		if ok, err := structuredOutput(cmd.OutOrStdout(), entries); ok {
			return err
		}

		PrintSection("Libraries in " + relPath(settings, settings.LibraryDir()))
		if len(entries) == 0 {
			PrintEmptyState("No " + settings.Filename + " files found")
			return nil
		}

		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []string{
				relPath(settings, e.DescriptorPath),
				strconv.FormatBool(e.Active),
				strconv.FormatBool(e.Core),
				strconv.FormatBool(e.Eligible),
				e.Reason,
			})
		}
		PrintTable([]string{"DESCRIPTOR", "ACTIVE", "CORE", "ELIGIBLE", "REASON"}, rows)
		return nil
	},
}
