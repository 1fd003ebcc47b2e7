package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	addPathSystem    bool
	removePathSystem bool
)

var addPathCmd = &cobra.Command{
	Use:   "add-path <directory>",
	Short: "Add a package scan directory",
	Long: `Add a directory to the repository's scan roots. Every subdirectory of
a scan root that directly contains a package descriptor is discovered as a
package on the next refresh.`,
	Args: cobra.ExactArgs(1),
	RunE: runAddPath,
}

var removePathCmd = &cobra.Command{
	Use:   "remove-path <directory>",
	Short: "Remove a package scan directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemovePath,
}

func init() {
	addPathCmd.Flags().BoolVar(&addPathSystem, "system", false, "Add to the system repository")
	removePathCmd.Flags().BoolVar(&removePathSystem, "system", false, "Remove from the system repository")
	rootCmd.AddCommand(addPathCmd)
	rootCmd.AddCommand(removePathCmd)
}

func runAddPath(cmd *cobra.Command, args []string) error {
	m, _, err := newManager()
	if err != nil {
		return err
	}

	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	if err := m.AddSearchPath(path, repositoryLocation(addPathSystem)); err != nil {
		return err
	}
	fmt.Printf("Added search path %s\n", path)
	return nil
}

func runRemovePath(cmd *cobra.Command, args []string) error {
	m, _, err := newManager()
	if err != nil {
		return err
	}

	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	if err := m.RemoveSearchPath(path, repositoryLocation(removePathSystem)); err != nil {
		return err
	}
	fmt.Printf("Removed search path %s\n", path)
	return nil
}
