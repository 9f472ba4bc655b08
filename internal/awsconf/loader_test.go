package awsconf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFiles(t *testing.T, configData, credentialsData string) Files {
	t.Helper()
	dir := t.TempDir()
	files := Files{
		ConfigPath:      filepath.Join(dir, "config"),
		CredentialsPath: filepath.Join(dir, "credentials"),
	}
	if configData != "" {
		if err := os.WriteFile(files.ConfigPath, []byte(configData), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
	}
	if credentialsData != "" {
		if err := os.WriteFile(files.CredentialsPath, []byte(credentialsData), 0600); err != nil {
			t.Fatalf("failed to write credentials: %v", err)
		}
	}
	return files
}

func TestLoadConfigSections(t *testing.T) {
	files := writeFiles(t, `
[default]
region = us-east-1

; managed by the platform team
[profile admin]
role_arn = arn:aws:iam::123:role/admin
source_profile = default

[sso-session corp]
sso_start_url = https://corp.awsapps.com/start
sso_region = us-east-1
`, "")

	profiles, sessions, err := Load(files)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	wantProfiles := map[string]map[string]string{
		"default": {"region": "us-east-1"},
		"admin": {
			"role_arn":       "arn:aws:iam::123:role/admin",
			"source_profile": "default",
		},
	}
	if diff := cmp.Diff(wantProfiles, profiles); diff != "" {
		t.Errorf("profiles mismatch (-want +got):\n%s", diff)
	}

	wantSessions := map[string]map[string]string{
		"corp": {
			"sso_start_url": "https://corp.awsapps.com/start",
			"sso_region":    "us-east-1",
		},
	}
	if diff := cmp.Diff(wantSessions, sessions); diff != "" {
		t.Errorf("sessions mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadCredentialsOverrideConfig(t *testing.T) {
	files := writeFiles(t, `
[profile dev]
region = us-east-1
aws_access_key_id = FROM_CONFIG
`, `
[dev]
aws_access_key_id = FROM_CREDENTIALS
aws_secret_access_key = secret
`)

	profiles, _, err := Load(files)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	dev := profiles["dev"]
	if dev == nil {
		t.Fatal("expected profile 'dev'")
	}
	// Credentials file wins for the overlapping key, config-only keys survive
	if dev["aws_access_key_id"] != "FROM_CREDENTIALS" {
		t.Errorf("expected credentials-file value, got %q", dev["aws_access_key_id"])
	}
	if dev["region"] != "us-east-1" {
		t.Errorf("expected region from config file, got %q", dev["region"])
	}
}

func TestLoadMissingFilesIsEmpty(t *testing.T) {
	dir := t.TempDir()
	profiles, sessions, err := Load(Files{
		ConfigPath:      filepath.Join(dir, "nope"),
		CredentialsPath: filepath.Join(dir, "also-nope"),
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(profiles) != 0 || len(sessions) != 0 {
		t.Errorf("expected empty records, got %d profiles, %d sessions", len(profiles), len(sessions))
	}
}

func TestLoadMalformedLine(t *testing.T) {
	files := writeFiles(t, `
[profile dev]
this is not a property
`, "")

	if _, _, err := Load(files); err == nil {
		t.Error("expected an error for a malformed property line")
	}
}

func TestLoadPropertyOutsideSection(t *testing.T) {
	files := writeFiles(t, "region = us-east-1\n", "")

	if _, _, err := Load(files); err == nil {
		t.Error("expected an error for a property outside any section")
	}
}
