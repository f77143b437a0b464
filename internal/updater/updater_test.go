package updater

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func withReleaseServer(t *testing.T, tag string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"tag_name": %q, "html_url": "https://example.com/release", "assets": []}`, tag)
	}))
	orig := releaseEndpoint
	releaseEndpoint = srv.URL
	t.Cleanup(func() {
		releaseEndpoint = orig
		srv.Close()
	})
}

func TestCheck_UpdateAvailable(t *testing.T) {
	withReleaseServer(t, "v1.2.0")

	result := Check("1.1.3")
	if !result.UpdateAvailable {
		t.Error("1.2.0 should be newer than 1.1.3")
	}
	if result.LatestVersion != "1.2.0" {
		t.Errorf("LatestVersion = %q, want 1.2.0", result.LatestVersion)
	}
	if result.ReleaseURL != "https://example.com/release" {
		t.Errorf("ReleaseURL = %q", result.ReleaseURL)
	}
}

func TestCheck_AlreadyCurrent(t *testing.T) {
	withReleaseServer(t, "v1.2.0")

	if Check("1.2.0").UpdateAvailable {
		t.Error("equal versions should not offer an update")
	}
}

func TestCheck_DevNeverUpdates(t *testing.T) {
	withReleaseServer(t, "v9.9.9")

	if Check("dev").UpdateAvailable {
		t.Error("dev builds should never update")
	}
}

func TestCheck_NetworkFailureIsSilent(t *testing.T) {
	orig := releaseEndpoint
	releaseEndpoint = "http://127.0.0.1:1/nope"
	defer func() { releaseEndpoint = orig }()

	result := Check("1.0.0")
	if result.UpdateAvailable {
		t.Error("unreachable endpoint should not report an update")
	}
	if result.CurrentVersion != "1.0.0" {
		t.Errorf("CurrentVersion = %q", result.CurrentVersion)
	}
}

func TestIsNewer(t *testing.T) {
	tests := []struct {
		current, latest string
		want            bool
	}{
		{"1.0.0", "1.0.1", true},
		{"1.0.0", "1.1.0", true},
		{"1.0.0", "2.0.0", true},
		{"1.2.3", "1.2.3", false},
		{"2.0.0", "1.9.9", false},
		{"1.0", "1.0.1", true},
		{"dev", "9.9.9", false},
		{"", "1.0.0", false},
		{"1.0.0", "", false},
		{"1.0.0", "1.0.1-rc2", true},
	}

	for _, tt := range tests {
		if got := isNewer(tt.current, tt.latest); got != tt.want {
			t.Errorf("isNewer(%q, %q) = %v, want %v", tt.current, tt.latest, got, tt.want)
		}
	}
}

func TestAssetFor(t *testing.T) {
	name := assetFor("1.2.0")
	if name == "" {
		t.Fatal("asset name should not be empty")
	}
	if got, want := name[:len("scopegen_1.2.0_")], "scopegen_1.2.0_"; got != want {
		t.Errorf("asset name prefix = %q, want %q", got, want)
	}
}
