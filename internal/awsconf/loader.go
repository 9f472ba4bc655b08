// Package awsconf parses the AWS shared config and credentials files into
// the raw record maps the profile engine consumes. It is a thin adapter for
// the CLI; the engine itself never touches the filesystem.
package awsconf

import (
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"

	"github.com/chukul/profilectl/internal/profile"
)

const (
	profileSectionPrefix = "profile "
	ssoSectionPrefix     = "sso-session "
)

// Files names the two shared config sources.
type Files struct {
	ConfigPath      string
	CredentialsPath string
}

// DefaultFiles returns the SDK's standard locations
// (~/.aws/config and ~/.aws/credentials).
func DefaultFiles() Files {
	var f Files
	f.ConfigPath = config.DefaultSharedConfigFilename()
	f.CredentialsPath = config.DefaultSharedCredentialsFilename()
	return f
}

// Load reads both files and merges them into profile and sso-session
// records. Credentials-file properties win over config-file properties for
// the same profile, matching AWS precedence. A missing file is not an
// error; a missing pair of files just yields empty records.
func Load(files Files) (profiles, sessions profile.Records, err error) {
	profiles = make(profile.Records)
	sessions = make(profile.Records)

	if files.ConfigPath != "" {
		if err := parseFile(files.ConfigPath, true, profiles, sessions); err != nil {
			return nil, nil, err
		}
	}
	if files.CredentialsPath != "" {
		if err := parseFile(files.CredentialsPath, false, profiles, sessions); err != nil {
			return nil, nil, err
		}
	}
	return profiles, sessions, nil
}

// parseFile scans one INI-style file. In the config file profiles are
// declared as [profile NAME] (with [default] as the lone exception) and
// sso-sessions as [sso-session NAME]; the credentials file uses bare
// [NAME] sections and knows nothing about sso-sessions.
func parseFile(path string, isConfig bool, profiles, sessions profile.Records) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var current map[string]string
	for i, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, ";") || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			header := strings.TrimSpace(strings.Trim(trimmed, "[]"))
			current = sectionFor(header, isConfig, profiles, sessions)
			continue
		}

		key, value, ok := strings.Cut(trimmed, "=")
		if !ok {
			return fmt.Errorf("%s:%d: expected 'key = value', got %q", path, i+1, trimmed)
		}
		if current == nil {
			return fmt.Errorf("%s:%d: property outside of any section", path, i+1)
		}
		current[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return nil
}

func sectionFor(header string, isConfig bool, profiles, sessions profile.Records) map[string]string {
	name := header
	if isConfig {
		switch {
		case strings.HasPrefix(header, ssoSectionPrefix):
			name = strings.TrimSpace(strings.TrimPrefix(header, ssoSectionPrefix))
			if sessions[name] == nil {
				sessions[name] = make(map[string]string)
			}
			return sessions[name]
		case strings.HasPrefix(header, profileSectionPrefix):
			name = strings.TrimSpace(strings.TrimPrefix(header, profileSectionPrefix))
		case header == "default":
			name = "default"
		}
	}
	if profiles[name] == nil {
		profiles[name] = make(map[string]string)
	}
	return profiles[name]
}
