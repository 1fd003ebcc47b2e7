package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <pattern>",
	Short: "Search packages by name pattern",
	Long: `Search known packages by glob pattern, e.g. "vec*" or "*-utils".
When the pattern matches nothing, close name matches are suggested.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	m, _, err := newManager()
	if err != nil {
		return err
	}

	matches, err := m.Search(args[0])
	if err != nil {
		return err
	}

	if len(matches) == 0 {
		fmt.Printf("No packages match %q.\n", args[0])
		if suggestions := fuzzy.Find(args[0], m.Names()); len(suggestions) > 0 {
			fmt.Println("Did you mean:")
			for i, s := range suggestions {
				if i == 3 {
					break
				}
				fmt.Printf("  %s\n", s.Str)
			}
		}
		return nil
	}

	nameColor := color.New(color.Bold)
	versionColor := color.New(color.FgGreen)
	for _, p := range matches {
		fmt.Printf("%s %s  %s\n",
			nameColor.Sprint(p.Name()),
			versionColor.Sprint(p.Version().Display()),
			p.Path())
	}
	return nil
}
