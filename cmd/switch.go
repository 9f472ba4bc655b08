package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/chukul/profilectl/internal/profile"
	"github.com/chukul/profilectl/internal/ui"
)

var switchCmd = &cobra.Command{
	Use:     "switch",
	Short:   "Interactively pick a profile and export its credentials",
	Long:    `Pick a profile from the shared config and export its resolved credentials. Use with eval to set environment variables.`,
	Example: `  eval $(profilectl switch)`,
	Run: func(cmd *cobra.Command, args []string) {
		registry, res, err := loadRegistry()
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			os.Exit(1)
		}

		g := registry.Graph()
		names := make([]string, 0, len(g.Profiles))
		for name := range g.Profiles {
			names = append(names, name)
		}
		sort.Strings(names)

		items := make([]ui.PickItem, 0, len(names))
		for _, name := range names {
			if valErr, bad := res.InvalidProfiles[name]; bad {
				items = append(items, ui.PickItem{Name: name, Detail: valErr.Error(), Disabled: true})
				continue
			}
			detail := ""
			if id, classErr := profile.Classify(g, g.Profiles[name]); classErr == nil {
				detail = id.Kind()
			}
			items = append(items, ui.PickItem{Name: name, Detail: detail})
		}

		chosen, err := ui.Pick("Switch to profile", items)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			os.Exit(1)
		}

		if err := exportProfile(chosen); err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(switchCmd)
}
