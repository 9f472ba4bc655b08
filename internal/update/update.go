// Package update checks GitHub for newer releases, mirroring how the rest
// of our tooling surfaces upgrades: non-blocking, best-effort, rate-limited
// through a small cache file.
package update

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	CurrentVersion = "v0.3.0" // Overwritten by ldflags during build
	GitHubAPI      = "https://api.github.com/repos/chukul/profilectl/releases/latest"
	CheckInterval  = 24 * time.Hour
)

type gitHubRelease struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

type versionCheck struct {
	LastChecked   time.Time `json:"last_checked"`
	LatestVersion string    `json:"latest_version"`
}

// CheckInBackground checks for a newer release without blocking the caller
// and prints a hint on stderr when one exists. Failures stay silent.
func CheckInBackground() {
	if !shouldCheck() {
		return
	}

	go func() {
		latest, url, err := FetchLatestVersion()
		if err != nil {
			return
		}

		if IsNewer(latest, CurrentVersion) {
			fmt.Fprintf(os.Stderr, "\n💡 Update available: %s → %s\n", CurrentVersion, latest)
			fmt.Fprintf(os.Stderr, "   Download: %s\n\n", url)
		}

		saveLastCheck(latest)
	}()
}

func cachePath() string {
	return filepath.Join(os.Getenv("HOME"), ".profilectl", "version_check.json")
}

func shouldCheck() bool {
	data, err := os.ReadFile(cachePath())
	if err != nil {
		return true
	}

	var check versionCheck
	if err := json.Unmarshal(data, &check); err != nil {
		return true
	}

	return time.Since(check.LastChecked) > CheckInterval
}

func FetchLatestVersion() (string, string, error) {
	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get(GitHubAPI)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return "", "", fmt.Errorf("status %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var release gitHubRelease
	if err := json.Unmarshal(body, &release); err != nil {
		return "", "", err
	}

	return release.TagName, release.HTMLURL, nil
}

// IsNewer does a simple comparison assuming semantic version tags.
func IsNewer(latest, current string) bool {
	latest = strings.TrimPrefix(latest, "v")
	current = strings.TrimPrefix(current, "v")
	return latest > current
}

func saveLastCheck(version string) {
	path := cachePath()
	os.MkdirAll(filepath.Dir(path), 0700)
	check := versionCheck{
		LastChecked:   time.Now(),
		LatestVersion: version,
	}
	data, _ := json.Marshal(check)
	os.WriteFile(path, data, 0600)
}
