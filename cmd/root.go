package cmd

import (
	"fmt"
	"os"

	"github.com/aws/smithy-go/logging"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/chukul/profilectl/internal/awsconf"
	"github.com/chukul/profilectl/internal/profile"
	"github.com/chukul/profilectl/internal/update"
)

var (
	flagConfigPath      string
	flagCredentialsPath string
	flagVerbose         bool
)

var rootCmd = &cobra.Command{
	Use:   "profilectl",
	Short: "profilectl validates and resolves AWS named credential profiles",
	Long: `ProfileCtl parses your AWS shared config, validates the reference graph
between profiles and sso-sessions (assume-role chains, SSO links, cycles,
dangling references), and resolves any valid profile into usable credentials.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Check for updates on every command (non-blocking)
		update.CheckInBackground()
	},
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Path to the AWS config file (default ~/.aws/config)")
	rootCmd.PersistentFlags().StringVar(&flagCredentialsPath, "credentials", "", "Path to the AWS credentials file (default ~/.aws/credentials)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Log engine internals to stderr")
}

func sharedFiles() awsconf.Files {
	files := awsconf.DefaultFiles()
	if flagConfigPath != "" {
		files.ConfigPath = flagConfigPath
	}
	if flagCredentialsPath != "" {
		files.CredentialsPath = flagCredentialsPath
	}
	return files
}

func engineLogger() logging.Logger {
	if flagVerbose {
		return logging.NewStandardLogger(os.Stderr)
	}
	return logging.Nop{}
}

// loadRegistry parses the shared config files and runs one load through a
// fresh registry.
func loadRegistry() (*profile.Registry, profile.ValidationResult, error) {
	profiles, sessions, err := awsconf.Load(sharedFiles())
	if err != nil {
		return nil, profile.ValidationResult{}, err
	}

	registry := profile.NewRegistry(profile.WithLogger(engineLogger()))
	res := registry.Load(profiles, sessions)
	return registry, res, nil
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
