package commands

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/lode-build/lode/internal/registry"
	"github.com/lode-build/lode/internal/version"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <name>[@<version>]",
	Short: "Remove an installed package",
	Long: `Remove an installed package, driven by its install journal. Without a
version, the highest installed version is removed. Files lode did not
install are never deleted; their presence aborts the removal.`,
	Args: cobra.ExactArgs(1),
	RunE: runUninstall,
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, args []string) error {
	m, _, err := newManager()
	if err != nil {
		return err
	}

	pkg, err := resolveSpec(m, args[0])
	if err != nil {
		return err
	}
	if err := m.Uninstall(pkg); err != nil {
		return err
	}
	fmt.Printf("Uninstalled %s\n", pkg)
	return nil
}

// resolveSpec resolves "name" or "name@version" to a single known package,
// suggesting close names when nothing matches.
func resolveSpec(m *registry.Manager, spec string) (*registry.Package, error) {
	name, verString, hasVersion := strings.Cut(spec, "@")
	name = strings.ToLower(name)

	var pkg *registry.Package
	if hasVersion {
		ver, err := version.Parse(verString)
		if err != nil {
			return nil, err
		}
		pkg = m.Get(name, ver)
	} else {
		pkg = m.GetBest(name, version.Any())
	}
	if pkg != nil {
		return pkg, nil
	}

	msg := fmt.Sprintf("package %s is not installed", spec)
	if suggestions := fuzzy.Find(name, m.Names()); len(suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", suggestions[0].Str)
	}
	return nil, fmt.Errorf("%s", msg)
}
