// Package updater checks GitHub for newer scopegen releases and can
// replace the running binary in place. The check is best-effort and the
// replace is atomic: download to a temp file, then rename over the
// current executable.
package updater

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
)

const (
	githubRepo   = "scopegen/scopegen"
	checkTimeout = 10 * time.Second
)

// For testing: the release endpoint and HTTP client can be overridden.
var (
	releaseEndpoint = "https://api.github.com/repos/" + githubRepo + "/releases/latest"
	httpClient      = &http.Client{Timeout: checkTimeout}
)

type release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
	Assets  []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// CheckResult communicates the outcome of a version check.
type CheckResult struct {
	CurrentVersion  string
	LatestVersion   string
	UpdateAvailable bool
	ReleaseURL      string
}

// Check queries GitHub for the latest release and compares it against
// the running version. It never fails: network problems leave
// UpdateAvailable false.
func Check(currentVersion string) CheckResult {
	result := CheckResult{CurrentVersion: trimV(currentVersion)}

	rel, err := latestRelease(currentVersion)
	if err != nil {
		return result
	}

	result.LatestVersion = trimV(rel.TagName)
	result.ReleaseURL = rel.HTMLURL
	result.UpdateAvailable = isNewer(result.CurrentVersion, result.LatestVersion)
	return result
}

// SelfUpdate downloads the release binary for the current OS and
// architecture and replaces the running executable.
func SelfUpdate(currentVersion string) error {
	rel, err := latestRelease(currentVersion)
	if err != nil {
		return err
	}

	latest := trimV(rel.TagName)
	if !isNewer(trimV(currentVersion), latest) {
		return fmt.Errorf("already at latest version (%s)", currentVersion)
	}

	assetName := assetFor(latest)
	var downloadURL string
	for _, asset := range rel.Assets {
		if asset.Name == assetName {
			downloadURL = asset.BrowserDownloadURL
			break
		}
	}
	if downloadURL == "" {
		return fmt.Errorf("no release asset for %s/%s (expected %s)", runtime.GOOS, runtime.GOARCH, assetName)
	}

	resp, err := httpClient.Get(downloadURL)
	if err != nil {
		return fmt.Errorf("downloading release: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download returned %d", resp.StatusCode)
	}

	binary, err := extractBinary(resp.Body, assetName)
	if err != nil {
		return fmt.Errorf("extracting binary: %w", err)
	}

	return replaceExecutable(binary)
}

func latestRelease(currentVersion string) (*release, error) {
	req, err := http.NewRequest(http.MethodGet, releaseEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "scopegen/"+currentVersion)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checking latest release: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned %d", resp.StatusCode)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("parsing release info: %w", err)
	}
	return &rel, nil
}

// replaceExecutable writes the new binary next to the current one and
// renames it into place. Windows cannot replace a running binary
// directly, so the current one is moved aside first.
func replaceExecutable(binary []byte) error {
	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("finding current executable: %w", err)
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return fmt.Errorf("resolving symlinks: %w", err)
	}

	tmpPath := execPath + ".new"
	if err := os.WriteFile(tmpPath, binary, 0o755); err != nil {
		return fmt.Errorf("writing new binary: %w", err)
	}

	if runtime.GOOS == "windows" {
		oldPath := execPath + ".old"
		_ = os.Remove(oldPath)
		if err := os.Rename(execPath, oldPath); err != nil {
			_ = os.Remove(tmpPath)
			return fmt.Errorf("backing up current binary: %w", err)
		}
	}

	if err := os.Rename(tmpPath, execPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing binary: %w", err)
	}
	return nil
}

func extractBinary(reader io.Reader, assetName string) ([]byte, error) {
	if strings.HasSuffix(assetName, ".zip") {
		// zip needs random access; the binary download is skipped on
		// Windows rather than buffered.
		return nil, fmt.Errorf("automatic zip extraction is not supported, download manually from GitHub releases")
	}

	gz, err := gzip.NewReader(reader)
	if err != nil {
		return nil, fmt.Errorf("opening gzip: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar: %w", err)
		}
		if name := filepath.Base(header.Name); name == "scopegen" || name == "scopegen.exe" {
			return io.ReadAll(tr)
		}
	}
	return nil, fmt.Errorf("scopegen binary not found in archive")
}

// assetFor builds the archive filename GoReleaser produces for the
// current OS and architecture.
func assetFor(version string) string {
	ext := "tar.gz"
	if runtime.GOOS == "windows" {
		ext = "zip"
	}
	return fmt.Sprintf("scopegen_%s_%s_%s.%s", version, runtime.GOOS, runtime.GOARCH, ext)
}

func trimV(v string) string {
	return strings.TrimPrefix(v, "v")
}

// isNewer compares dotted numeric versions. "dev" builds never update.
func isNewer(current, latest string) bool {
	if current == "" || latest == "" || current == "dev" {
		return false
	}

	cur := strings.Split(current, ".")
	lat := strings.Split(latest, ".")
	for len(cur) < 3 {
		cur = append(cur, "0")
	}
	for len(lat) < 3 {
		lat = append(lat, "0")
	}

	for i := 0; i < 3; i++ {
		c := numericPrefix(cur[i])
		l := numericPrefix(lat[i])
		if l != c {
			return l > c
		}
	}
	return false
}

// numericPrefix parses the leading digits of a version part, so
// "1-rc2" compares as 1.
func numericPrefix(s string) int {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	n, _ := strconv.Atoi(s[:i])
	return n
}
