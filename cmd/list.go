package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/chukul/profilectl/internal/profile"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	validStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	invalidStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles with their credential type and status",
	Run: func(cmd *cobra.Command, args []string) {
		registry, res, err := loadRegistry()
		if err != nil {
			fmt.Printf("❌ %v\n", err)
			os.Exit(1)
		}

		g := registry.Graph()
		names := g.ProfileNames()
		if len(names) == 0 {
			fmt.Println("No profiles found.")
			return
		}

		styled := stdoutIsTerminal()
		render := func(s lipgloss.Style, text string) string {
			if styled {
				return s.Render(text)
			}
			return text
		}

		fmt.Printf("%-24s %-18s %-16s %s\n",
			render(headerStyle, "PROFILE"), render(headerStyle, "TYPE"),
			render(headerStyle, "REGION"), render(headerStyle, "STATUS"))

		for _, name := range names {
			p := g.Profiles[name]

			kind := "-"
			status := render(validStyle, "valid")
			if valErr, bad := res.InvalidProfiles[name]; bad {
				status = render(invalidStyle, valErr.Error())
			} else if id, classErr := profile.Classify(g, p); classErr == nil {
				kind = id.Kind()
			} else {
				kind = "unsupported"
			}

			region := p.Region()
			if region == "" {
				region = "-"
			}

			fmt.Printf("%-24s %-18s %-16s %s\n", name, kind, region, status)
		}

		sessions := g.SsoSessionNames()
		if len(sessions) > 0 {
			fmt.Println()
			fmt.Printf("%-24s %-18s %-16s %s\n",
				render(headerStyle, "SSO-SESSION"), render(headerStyle, "START URL"),
				render(headerStyle, "REGION"), render(headerStyle, "STATUS"))
			for _, name := range sessions {
				s := g.SsoSessions[name]
				status := render(validStyle, "valid")
				if valErr, bad := res.InvalidSsoSessions[name]; bad {
					status = render(invalidStyle, valErr.Error())
				}
				startURL := s.StartURL
				if startURL == "" {
					startURL = "-"
				}
				region := s.Region
				if region == "" {
					region = "-"
				}
				fmt.Printf("%-24s %-18s %-16s %s\n", name, truncate(startURL, 16), region, status)
			}
		}
	},
}

func truncate(text string, max int) string {
	if len(text) > max {
		return text[:max-3] + "..."
	}
	return text
}

func init() {
	rootCmd.AddCommand(listCmd)
}
