// SPDX-License-Identifier: MPL-2.0

// Package update checks the GitHub Releases API for a newer devkit version.
// Results are cached in .dev/update-check.json for a day so the check adds
// no network round-trip to everyday runs.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"devkit-cli/internal/config"
)

const (
	// CacheName is the check-result cache file inside the .dev directory.
	CacheName = "update-check.json"
	// cacheTTL is how long a check result stays fresh.
	cacheTTL = 24 * time.Hour
	// maxResponseBytes bounds the release API response size.
	maxResponseBytes = 1 << 20

	defaultRepo    = "devkit-cli/devkit"
	defaultBaseURL = "https://api.github.com"
)

type (
	// Check is the outcome of one update check.
	Check struct {
		// CurrentVersion is the running version.
		CurrentVersion string `json:"currentVersion"`
		// LatestVersion is the newest release tag, e.g. "v1.4.0".
		LatestVersion string `json:"latestVersion"`
		// URL is the release page.
		URL string `json:"url"`
		// CheckedAt is when the API was last queried.
		CheckedAt time.Time `json:"checkedAt"`
	}

	// Checker queries GitHub for the latest release, through a cache it
	// owns exclusively. The zero value is not usable; call NewChecker.
	Checker struct {
		httpClient *http.Client
		repo       string
		baseURL    string
		cachePath  string
		now        func() time.Time
	}

	// CheckerOption configures a Checker during construction.
	CheckerOption func(*Checker)

	// githubRelease is the wire format subset the checker reads.
	githubRelease struct {
		TagName string `json:"tag_name"`
		HTMLURL string `json:"html_url"`
	}
)

// Outdated reports whether the latest release is newer than the running
// version. Development builds (non-semver versions) never count as
// outdated.
func (c Check) Outdated() bool {
	current := normalize(c.CurrentVersion)
	latest := normalize(c.LatestVersion)
	if !semver.IsValid(current) || !semver.IsValid(latest) {
		return false
	}
	return semver.Compare(latest, current) > 0
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) CheckerOption {
	return func(c *Checker) { c.httpClient = client }
}

// WithBaseURL overrides the GitHub API base URL, primarily for tests.
func WithBaseURL(base string) CheckerOption {
	return func(c *Checker) { c.baseURL = strings.TrimRight(base, "/") }
}

// WithRepo overrides the "owner/name" repository checked for releases.
func WithRepo(repo string) CheckerOption {
	return func(c *Checker) { c.repo = repo }
}

// withNow overrides the clock; used by tests to expire the cache.
func withNow(now func() time.Time) CheckerOption {
	return func(c *Checker) { c.now = now }
}

// NewChecker builds a checker whose cache lives under root's .dev
// directory.
func NewChecker(root string, opts ...CheckerOption) *Checker {
	c := &Checker{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		repo:       defaultRepo,
		baseURL:    defaultBaseURL,
		cachePath:  filepath.Join(root, config.ConfigDirName, CacheName),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check returns the update status for currentVersion, hitting the network
// only when the cached result is missing or older than a day.
func (c *Checker) Check(ctx context.Context, currentVersion string) (Check, error) {
	if cached, ok := c.readCache(); ok {
		cached.CurrentVersion = currentVersion
		return cached, nil
	}

	latest, err := c.fetchLatest(ctx)
	if err != nil {
		return Check{}, err
	}

	result := Check{
		CurrentVersion: currentVersion,
		LatestVersion:  latest.TagName,
		URL:            latest.HTMLURL,
		CheckedAt:      c.now(),
	}
	c.writeCache(result)
	return result, nil
}

// Refresh drops the cache so the next Check queries the API.
func (c *Checker) Refresh() error {
	err := os.Remove(c.cachePath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (c *Checker) fetchLatest(ctx context.Context) (githubRelease, error) {
	url := fmt.Sprintf("%s/repos/%s/releases/latest", c.baseURL, c.repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return githubRelease{}, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", config.AppName)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return githubRelease{}, fmt.Errorf("check for updates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return githubRelease{}, fmt.Errorf("check for updates: GitHub returned %s", resp.Status)
	}

	var release githubRelease
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&release); err != nil {
		return githubRelease{}, fmt.Errorf("decode release response: %w", err)
	}
	if release.TagName == "" {
		return githubRelease{}, fmt.Errorf("release response has no tag")
	}
	return release, nil
}

// readCache returns the cached check when it is fresh. Any read or decode
// problem just means a live check.
func (c *Checker) readCache() (Check, bool) {
	data, err := os.ReadFile(c.cachePath)
	if err != nil {
		return Check{}, false
	}
	var cached Check
	if err := json.Unmarshal(data, &cached); err != nil {
		return Check{}, false
	}
	if c.now().Sub(cached.CheckedAt) > cacheTTL {
		return Check{}, false
	}
	return cached, true
}

// writeCache persists the result. Failure is not an error: the cache is an
// optimization, and the check already succeeded.
func (c *Checker) writeCache(result Check) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(c.cachePath), 0o755); err != nil {
		return
	}
	_ = os.WriteFile(c.cachePath, data, 0o644)
}

func normalize(version string) string {
	if version == "" {
		return version
	}
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	return version
}
