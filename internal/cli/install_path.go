package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aplify/composer/internal/fsops"
	"github.com/aplify/composer/internal/installer"
)

var (
	installPathType   string
	installPathVendor string
)

// installPathResult is the structured output of the install-path command.
type installPathResult struct {
	Package installer.Package `json:"package" yaml:"package"`
	Variant string            `json:"variant" yaml:"variant"`
	Path    string            `json:"path" yaml:"path"`
}

var installPathCmd = &cobra.Command{
	Use:   "install-path <package>",
	Short: "Show where a package would be installed",
	Long: `Resolve the install path of a package.

Packages of type "aplify" are placed in the library install path
(extra.aplify-library-path, then extra.aplify.library.path, then "common").
Every other type goes to the vendor directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs := fsops.NewRealFS()
		logger := newLogger(cmd.ErrOrStderr())

		settings, err := loadSettings(fs)
		if err != nil {
			return err
		}

		pkg := installer.Package{
			Name:        args[0],
			Type:        installPathType,
			VendorAlias: installPathVendor,
		}
		path, variant, err := installer.NewDefaultRegistry(settings, logger).InstallPath(pkg)
		if err != nil {
			return fmt.Errorf("failed to resolve install path for %s: %w", pkg.Name, err)
		}

		result := installPathResult{Package: pkg, Variant: variant, Path: path}
		if ok, err := structuredOutput(cmd.OutOrStdout(), result); ok {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
		return err
	},
}

func init() {
	installPathCmd.Flags().StringVar(&installPathType, "type", installer.LibraryType, "Package type")
	installPathCmd.Flags().StringVar(&installPathVendor, "vendor", "", "Directory name to use instead of the package name")
}
