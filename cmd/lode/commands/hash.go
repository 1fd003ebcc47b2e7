package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var hashCmd = &cobra.Command{
	Use:   "hash <name>[@<version>]",
	Short: "Print a package's content fingerprint",
	Long: `Compute the deterministic content fingerprint of a package tree, as
used for build-cache change detection. Version control and tool metadata
directories are excluded.`,
	Args: cobra.ExactArgs(1),
	RunE: runHash,
}

func init() {
	rootCmd.AddCommand(hashCmd)
}

func runHash(cmd *cobra.Command, args []string) error {
	m, _, err := newManager()
	if err != nil {
		return err
	}

	pkg, err := resolveSpec(m, args[0])
	if err != nil {
		return err
	}
	digest, err := m.Hash(pkg)
	if err != nil {
		return err
	}
	fmt.Printf("%s  %s\n", digest, pkg)
	return nil
}
