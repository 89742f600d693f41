package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aplify/composer/internal/fsops"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective settings",
	Long: `Show the settings resolved from composer.json, APLIFY_* environment
variables and flags.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(fsops.NewRealFS())
		if err != nil {
			return err
		}

		if ok, err := structuredOutput(cmd.OutOrStdout(), settings); ok {
			return err
		}

		PrintSection("Settings")
		PrintLabelValue("Project", settings.ProjectDir)
		PrintLabelValue("Library path", settings.LibraryPath)
		PrintLabelValue("Descriptor file", settings.Filename)
		PrintLabelValue("Vendor dir", settings.VendorDir)
		PrintLabelValue("Install path", fmt.Sprintf("%v", settings.InstallPath))
		return nil
	},
}
