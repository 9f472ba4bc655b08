package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/chukul/profilectl/internal/profile"
)

var validateJSON bool

type validateEntry struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"` // "profile" or "sso-session"
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate every profile and sso-session in the shared config",
	Long: `Validate parses the shared config files and reports each profile and
sso-session as valid or invalid. One broken profile never hides the rest;
profiles depending on a broken one inherit its error. Exits non-zero when
anything is invalid.`,
	Run: func(cmd *cobra.Command, args []string) {
		_, res, err := loadRegistry()
		if err != nil {
			fmt.Printf("❌ %v\n", err)
			os.Exit(1)
		}

		if validateJSON {
			printValidateJSON(res)
		} else {
			printValidateText(res)
		}

		if res.Invalid() {
			os.Exit(1)
		}
	},
}

func printValidateText(res profile.ValidationResult) {
	names := make([]string, 0, len(res.ValidProfiles)+len(res.InvalidProfiles))
	for name := range res.ValidProfiles {
		names = append(names, name)
	}
	for name := range res.InvalidProfiles {
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) == 0 {
		fmt.Println("No profiles found.")
	}
	for _, name := range names {
		if err, bad := res.InvalidProfiles[name]; bad {
			fmt.Printf("❌ %s: %v\n", name, err)
		} else {
			fmt.Printf("✅ %s\n", name)
		}
	}

	sessions := make([]string, 0, len(res.ValidSsoSessions)+len(res.InvalidSsoSessions))
	for name := range res.ValidSsoSessions {
		sessions = append(sessions, name)
	}
	for name := range res.InvalidSsoSessions {
		sessions = append(sessions, name)
	}
	sort.Strings(sessions)

	for _, name := range sessions {
		if err, bad := res.InvalidSsoSessions[name]; bad {
			fmt.Printf("❌ sso-session %s: %v\n", name, err)
		} else {
			fmt.Printf("✅ sso-session %s\n", name)
		}
	}
}

func printValidateJSON(res profile.ValidationResult) {
	var entries []validateEntry
	for name := range res.ValidProfiles {
		entries = append(entries, validateEntry{Name: name, Kind: "profile", Valid: true})
	}
	for name, err := range res.InvalidProfiles {
		entries = append(entries, validateEntry{Name: name, Kind: "profile", Error: err.Error()})
	}
	for name := range res.ValidSsoSessions {
		entries = append(entries, validateEntry{Name: name, Kind: "sso-session", Valid: true})
	}
	for name, err := range res.InvalidSsoSessions {
		entries = append(entries, validateEntry{Name: name, Kind: "sso-session", Error: err.Error()})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Kind != entries[j].Kind {
			return entries[i].Kind < entries[j].Kind
		}
		return entries[i].Name < entries[j].Name
	})

	out, _ := json.MarshalIndent(entries, "", "  ")
	fmt.Println(string(out))
}

func init() {
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Output results in JSON format for automation")
	rootCmd.AddCommand(validateCmd)
}
