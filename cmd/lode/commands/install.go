package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lode-build/lode/internal/version"
)

var (
	installName    string
	installVersion string
	installSystem  bool
)

var installCmd = &cobra.Command{
	Use:   "install <archive>",
	Short: "Install a package from a downloaded archive",
	Long: `Install a package version from a local archive (zip, tar, tar.gz or
tar.zst) into the user repository, or the system repository with --system.

The supplied --name and --version are authoritative; the descriptor inside
the archive is rewritten with them after extraction.`,
	Args: cobra.ExactArgs(1),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().StringVar(&installName, "name", "", "Package name (required)")
	installCmd.Flags().StringVar(&installVersion, "version", "", "Package version (required)")
	installCmd.Flags().BoolVar(&installSystem, "system", false, "Install into the system repository")
	installCmd.MarkFlagRequired("name")
	installCmd.MarkFlagRequired("version")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	m, _, err := newManager()
	if err != nil {
		return err
	}

	ver, err := version.Parse(installVersion)
	if err != nil {
		return err
	}
	name := strings.ToLower(installName)

	repo := m.Repository(repositoryLocation(installSystem))
	destination := filepath.Join(repo.PackagePath(), installDirName(name, ver))

	pkg, err := m.Install(args[0], name, ver, destination)
	if err != nil {
		return err
	}
	fmt.Printf("Installed %s to %s\n", pkg, pkg.Path())
	return nil
}

// installDirName is the directory convention for installed package
// versions: <name>-<version>, with the branch marker dropped.
func installDirName(name string, ver version.Version) string {
	return name + "-" + ver.Display()
}
