package updater

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/maxvaer/extfuzz/internal/output"
	"github.com/maxvaer/extfuzz/pkg/version"
)

const (
	repoOwner = "maxvaer"
	repoName  = "extfuzz"
	apiURL    = "https://api.github.com/repos/" + repoOwner + "/" + repoName + "/releases/latest"
)

type githubRelease struct {
	TagName string        `json:"tag_name"`
	Assets  []githubAsset `json:"assets"`
}

type githubAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Updater replaces the running binary with the latest GitHub release.
type Updater struct {
	APIURL  string
	Current string
	GOOS    string
	GOARCH  string
	// Executable returns the path of the binary to replace.
	Executable func() (string, error)

	client *http.Client
}

// New returns an Updater for this build.
func New() *Updater {
	return &Updater{
		APIURL:     apiURL,
		Current:    version.Version,
		GOOS:       runtime.GOOS,
		GOARCH:     runtime.GOARCH,
		Executable: os.Executable,
		client:     &http.Client{Timeout: 120 * time.Second},
	}
}

// Update checks for a newer release and installs it in place.
func (u *Updater) Update(ctx context.Context) error {
	output.Info("Current version: %s", u.Current)
	output.Info("Checking for updates...")

	release, err := u.fetchLatestRelease(ctx)
	if err != nil {
		return fmt.Errorf("checking for updates: %w", err)
	}

	latestVersion := strings.TrimPrefix(release.TagName, "v")
	currentVersion := strings.TrimPrefix(u.Current, "v")
	if currentVersion != "dev" && latestVersion == currentVersion {
		output.Success("Already up to date (%s)", u.Current)
		return nil
	}

	output.Info("New version available: %s -> %s", u.Current, release.TagName)

	asset, err := findAsset(release.Assets, u.GOOS, u.GOARCH)
	if err != nil {
		return err
	}

	output.Info("Downloading %s...", asset.Name)
	bin, err := u.downloadAndExtract(ctx, asset)
	if err != nil {
		return fmt.Errorf("downloading update: %w", err)
	}

	execPath, err := u.Executable()
	if err != nil {
		return fmt.Errorf("locating current binary: %w", err)
	}
	if err := replaceBinary(execPath, bin); err != nil {
		return fmt.Errorf("replacing binary: %w", err)
	}

	output.Success("Updated to %s", release.TagName)
	return nil
}

func (u *Updater) fetchLatestRelease(ctx context.Context) (*githubRelease, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.APIURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("no releases found at %s/%s", repoOwner, repoName)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned %d", resp.StatusCode)
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	return &release, nil
}

// findAsset picks the archive for goos/goarch, matching both
// extfuzz_linux_amd64.tar.gz and extfuzz-linux-amd64.zip naming.
func findAsset(assets []githubAsset, goos, goarch string) (*githubAsset, error) {
	patterns := []string{
		fmt.Sprintf("%s_%s_%s", repoName, goos, goarch),
		fmt.Sprintf("%s-%s-%s", repoName, goos, goarch),
	}

	for i := range assets {
		name := strings.ToLower(assets[i].Name)
		for _, pattern := range patterns {
			if strings.Contains(name, pattern) {
				return &assets[i], nil
			}
		}
	}

	names := make([]string, len(assets))
	for i, a := range assets {
		names[i] = a.Name
	}
	return nil, fmt.Errorf("no release asset found for %s/%s, available assets: %s",
		goos, goarch, strings.Join(names, ", "))
}

func (u *Updater) downloadAndExtract(ctx context.Context, asset *githubAsset) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.BrowserDownloadURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := u.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	binaryName := repoName
	if u.GOOS == "windows" {
		binaryName += ".exe"
	}

	name := strings.ToLower(asset.Name)
	switch {
	case strings.HasSuffix(name, ".zip"):
		return extractZip(data, binaryName)
	case strings.HasSuffix(name, ".tar.gz") || strings.HasSuffix(name, ".tgz"):
		return extractTarGz(data, binaryName)
	default:
		// Raw binary.
		return data, nil
	}
}

func extractZip(data []byte, binaryName string) ([]byte, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	for _, f := range r.File {
		if !strings.EqualFold(filepath.Base(f.Name), binaryName) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("binary %q not found in zip archive", binaryName)
}

func extractTarGz(data []byte, binaryName string) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if filepath.Base(hdr.Name) == binaryName && hdr.Typeflag == tar.TypeReg {
			return io.ReadAll(tr)
		}
	}
	return nil, fmt.Errorf("binary %q not found in tar.gz archive", binaryName)
}

func replaceBinary(execPath string, newBin []byte) error {
	execPath, err := filepath.EvalSymlinks(execPath)
	if err != nil {
		return err
	}

	oldPath := execPath + ".old"
	_ = os.Remove(oldPath)

	if err := os.Rename(execPath, oldPath); err != nil {
		return fmt.Errorf("renaming current binary: %w", err)
	}

	if err := os.WriteFile(execPath, newBin, 0o755); err != nil {
		_ = os.Rename(oldPath, execPath)
		return fmt.Errorf("writing new binary: %w", err)
	}

	// Fails on Windows while the old binary is still running; harmless.
	_ = os.Remove(oldPath)
	return nil
}
