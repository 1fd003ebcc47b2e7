package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lode-build/lode/internal/registry"
)

var listStats bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all known packages",
	Long: `List every package lode knows about: temporary packages, explicit
local registrations and packages discovered on the complete search path.
Sub-packages are shown indented under their parent.

Use --stats to include per-package file counts and sizes.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listStats, "stats", false, "Show file count and total size per package")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	m, _, err := newManager()
	if err != nil {
		return err
	}

	// The traversal already yields each package followed by its
	// sub-packages, which is exactly the display grouping.
	var pkgs []*registry.Package
	for p := range m.All() {
		pkgs = append(pkgs, p)
	}

	nameColor := color.New(color.Bold)
	versionColor := color.New(color.FgGreen)
	pathColor := color.New(color.Faint)

	for _, p := range pkgs {
		indent := ""
		if p.IsSubPackage() {
			indent = "  "
		}
		line := fmt.Sprintf("%s%s %s  %s",
			indent,
			nameColor.Sprint(p.Name()),
			versionColor.Sprint(p.Version().Display()),
			pathColor.Sprint(p.Path()))
		if listStats && !p.IsSubPackage() {
			stats, err := m.Stats(p)
			if err == nil {
				line += fmt.Sprintf("  (%d files, %d bytes)", stats.Files, stats.Bytes)
			}
		}
		fmt.Println(line)
	}
	return nil
}
