// SPDX-License-Identifier: MPL-2.0

package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func releaseServer(t *testing.T, tag string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/repos/acme/devkit/releases/latest" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"tag_name": "` + tag + `", "html_url": "https://example.com/rel"}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCheckerFetchesAndCaches(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := releaseServer(t, "v1.4.0", &hits)
	checker := NewChecker(t.TempDir(), WithBaseURL(server.URL), WithRepo("acme/devkit"))

	result, err := checker.Check(context.Background(), "1.2.0")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if result.LatestVersion != "v1.4.0" || !result.Outdated() {
		t.Errorf("result = %+v", result)
	}

	// Second check inside the TTL must come from the cache.
	again, err := checker.Check(context.Background(), "1.2.0")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("API hit %d times, want 1", hits.Load())
	}
	if again.LatestVersion != "v1.4.0" {
		t.Errorf("cached result = %+v", again)
	}
}

func TestCheckerExpiredCacheRefetches(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := releaseServer(t, "v2.0.0", &hits)

	now := time.Now()
	clock := func() time.Time { return now }
	checker := NewChecker(t.TempDir(),
		WithBaseURL(server.URL), WithRepo("acme/devkit"), withNow(clock))

	if _, err := checker.Check(context.Background(), "2.0.0"); err != nil {
		t.Fatalf("Check: %v", err)
	}

	now = now.Add(25 * time.Hour)
	if _, err := checker.Check(context.Background(), "2.0.0"); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("API hit %d times, want 2", hits.Load())
	}
}

func TestCheckerRefreshDropsCache(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := releaseServer(t, "v1.0.0", &hits)
	checker := NewChecker(t.TempDir(), WithBaseURL(server.URL), WithRepo("acme/devkit"))

	ctx := context.Background()
	if _, err := checker.Check(ctx, "1.0.0"); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if err := checker.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if _, err := checker.Check(ctx, "1.0.0"); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("API hit %d times, want 2", hits.Load())
	}
}

func TestCheckerSurfacesAPIErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	t.Cleanup(server.Close)

	checker := NewChecker(t.TempDir(), WithBaseURL(server.URL), WithRepo("acme/devkit"))
	if _, err := checker.Check(context.Background(), "1.0.0"); err == nil {
		t.Error("expected an error from a non-200 response")
	}
}

func TestOutdated(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		current string
		latest  string
		want    bool
	}{
		{name: "newer release", current: "1.2.0", latest: "v1.3.0", want: true},
		{name: "same version", current: "v1.3.0", latest: "v1.3.0", want: false},
		{name: "running ahead of releases", current: "v2.0.0", latest: "v1.3.0", want: false},
		{name: "dev build", current: "dev", latest: "v9.9.9", want: false},
		{name: "empty current", current: "", latest: "v1.0.0", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			check := Check{CurrentVersion: tt.current, LatestVersion: tt.latest}
			if got := check.Outdated(); got != tt.want {
				t.Errorf("Outdated() = %v, want %v", got, tt.want)
			}
		})
	}
}
