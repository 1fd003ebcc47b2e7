package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lode-build/lode/internal/version"
)

var (
	addLocalVersion string
	addLocalSystem  bool
	removeLocalSys  bool
)

var addLocalCmd = &cobra.Command{
	Use:   "add-local <path>",
	Short: "Register a local directory as a package",
	Long: `Register a directory as an explicit local package, pinning an exact
checkout for the resolver without installing anything. Registering the same
path again succeeds only at the same version.`,
	Args: cobra.ExactArgs(1),
	RunE: runAddLocal,
}

var removeLocalCmd = &cobra.Command{
	Use:   "remove-local <path>",
	Short: "Remove a local package registration",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemoveLocal,
}

func init() {
	addLocalCmd.Flags().StringVar(&addLocalVersion, "version", "", "Version to register (required)")
	addLocalCmd.Flags().BoolVar(&addLocalSystem, "system", false, "Register in the system repository")
	addLocalCmd.MarkFlagRequired("version")
	removeLocalCmd.Flags().BoolVar(&removeLocalSys, "system", false, "Remove from the system repository")
	rootCmd.AddCommand(addLocalCmd)
	rootCmd.AddCommand(removeLocalCmd)
}

func runAddLocal(cmd *cobra.Command, args []string) error {
	m, _, err := newManager()
	if err != nil {
		return err
	}

	ver, err := version.Parse(addLocalVersion)
	if err != nil {
		return err
	}
	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	pkg, err := m.AddLocal(path, ver, repositoryLocation(addLocalSystem))
	if err != nil {
		return err
	}
	fmt.Printf("Registered %s at %s\n", pkg, pkg.Path())
	return nil
}

func runRemoveLocal(cmd *cobra.Command, args []string) error {
	m, _, err := newManager()
	if err != nil {
		return err
	}

	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	if err := m.RemoveLocal(path, repositoryLocation(removeLocalSys)); err != nil {
		return err
	}
	fmt.Printf("Removed local package registration %s\n", path)
	return nil
}
