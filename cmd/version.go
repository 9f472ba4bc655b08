package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chukul/profilectl/internal/update"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("profilectl version %s\n", update.CurrentVersion)

		// Force check for updates
		latest, url, err := update.FetchLatestVersion()
		if err != nil {
			fmt.Printf("Unable to check for updates: %v\n", err)
			return
		}

		if update.IsNewer(latest, update.CurrentVersion) {
			fmt.Printf("\n💡 Update available: %s → %s\n", update.CurrentVersion, latest)
			fmt.Printf("   Download: %s\n", url)
		} else {
			fmt.Println("✅ You're running the latest version")
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
