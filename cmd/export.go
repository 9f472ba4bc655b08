package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/spf13/cobra"

	"github.com/chukul/profilectl/internal/profile"
	"github.com/chukul/profilectl/internal/resolver"
	"github.com/chukul/profilectl/internal/ui"
)

var exportRegion string

var exportCmd = &cobra.Command{
	Use:   "export <profile>",
	Short: "Resolve a profile and print its credentials as environment variables",
	Args:  cobra.ExactArgs(1),
	Example: `  # Export credentials into the current shell
  eval $(profilectl export prod-admin)`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := exportProfile(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			os.Exit(1)
		}
	},
}

func exportProfile(name string) error {
	registry, res, err := loadRegistry()
	if err != nil {
		return err
	}

	// MFA-gated chains need a token code mid-retrieve; prompt up front so
	// the code is ready when STS asks for it.
	var mfaCode string
	g := registry.Graph()
	if p, ok := res.ValidProfiles[name]; ok {
		if id, err := profile.Classify(g, p); err == nil {
			if role, ok := id.(profile.AssumeRoleCredentials); ok && role.RequiresMfa {
				mfaCode, err = ui.GetInput(fmt.Sprintf("MFA code for profile '%s'", name), "123456")
				if err != nil {
					return err
				}
			}
		}
	}

	r := resolver.New(registry, func(o *resolver.Options) {
		o.DefaultRegion = exportRegion
		o.Logger = engineLogger()
		if mfaCode != "" {
			o.MfaTokenProvider = func(string) (string, error) { return mfaCode, nil }
		}
	})

	provider, err := r.Resolve(context.Background(), name)
	if err != nil {
		return err
	}

	result, err := ui.Spin(fmt.Sprintf("Fetching credentials for '%s'...", name), func() (any, error) {
		return provider.Retrieve(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to retrieve credentials for '%s': %w", name, err)
	}
	creds := result.(aws.Credentials)

	// Output shell-compatible export commands
	fmt.Printf("export AWS_ACCESS_KEY_ID=%s\n", creds.AccessKeyID)
	fmt.Printf("export AWS_SECRET_ACCESS_KEY=%s\n", creds.SecretAccessKey)
	if creds.SessionToken != "" {
		fmt.Printf("export AWS_SESSION_TOKEN=%s\n", creds.SessionToken)
	}
	if creds.CanExpire {
		fmt.Fprintf(os.Stderr, "💡 Credentials expire at %s\n", creds.Expires.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}

func init() {
	exportCmd.Flags().StringVar(&exportRegion, "region", os.Getenv("AWS_REGION"), "Fallback region for profiles that declare none")
	rootCmd.AddCommand(exportCmd)
}
