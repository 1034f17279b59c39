package installer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"zsh-setup/internal/logger"
)

// GitHubRelease represents the structure of a GitHub release JSON response.
type GitHubRelease struct {
	TagName string `json:"tag_name"` // The release tag (e.g., v3.2.1)
	Assets  []struct {
		Name               string `json:"name"`                 // Asset filename
		BrowserDownloadURL string `json:"browser_download_url"` // Direct download URL for the asset
	} `json:"assets"`
}

// GitHubClient resolves release assets through the GitHub REST API.
type GitHubClient struct {
	BaseURL string
	HTTP    *http.Client
}

// NewGitHubClient returns a client for api.github.com.
func NewGitHubClient() *GitHubClient {
	return &GitHubClient{BaseURL: "https://api.github.com", HTTP: http.DefaultClient}
}

// Release fetches the release metadata of repo at tag.
func (c *GitHubClient) Release(ctx context.Context, repo, tag string) (*GitHubRelease, error) {
	url := fmt.Sprintf("%s/repos/%s/releases/tags/%s", strings.TrimRight(c.BaseURL, "/"), repo, tag)
	logger.Debug("[DEBUG] Fetching GitHub release from URL: %s\n", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET error fetching release %s@%s: %w", repo, tag, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("[WARN] Failed to close HTTP response body: %v\n", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub release fetch failed for %s@%s: HTTP status %d", repo, tag, resp.StatusCode)
	}

	var release GitHubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("failed to decode GitHub release JSON for %s@%s: %w", repo, tag, err)
	}
	logger.Debug("[DEBUG] Release tag: %s with %d assets\n", release.TagName, len(release.Assets))
	return &release, nil
}

// ReleaseAsset returns the download URL of the asset named asset
// (case-insensitive) in repo's release tag.
func (c *GitHubClient) ReleaseAsset(ctx context.Context, repo, tag, asset string) (string, error) {
	release, err := c.Release(ctx, repo, tag)
	if err != nil {
		return "", err
	}
	for _, a := range release.Assets {
		if strings.EqualFold(a.Name, asset) {
			logger.Debug("[DEBUG] Found matching asset: %s\n", a.Name)
			return a.BrowserDownloadURL, nil
		}
	}
	return "", fmt.Errorf("no asset named %s in release %s of %s", asset, release.TagName, repo)
}
