package tagger

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// hubClient downloads model artifacts from a HuggingFace-style repository.
type hubClient struct {
	baseURL  string
	cacheDir string
	http     *http.Client
}

func newHubClient(baseURL, cacheDir string) *hubClient {
	if baseURL == "" {
		baseURL = "https://huggingface.co"
	}
	return &hubClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		cacheDir: cacheDir,
		// No client-level timeout: model files are large. Callers bound the
		// download through ctx.
		http: &http.Client{},
	}
}

// fetch downloads repo/resolve/main/name into the cache, skipping the
// download when a cached copy exists. Returns the local path.
func (c *hubClient) fetch(ctx context.Context, repo, name string) (string, error) {
	localDir := filepath.Join(c.cacheDir, filepath.FromSlash(repo))
	localPath := filepath.Join(localDir, name)
	if _, err := os.Stat(localPath); err == nil {
		return localPath, nil
	}
	if err := os.MkdirAll(localDir, 0o755); err != nil {
		return "", fmt.Errorf("create model cache dir: %w", err)
	}

	url := fmt.Sprintf("%s/%s/resolve/main/%s", c.baseURL, repo, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("download %s failed (%d): %s", name, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	// Write to a temp file first so an interrupted download never leaves a
	// half-written artifact that a later run would trust.
	tmp, err := os.CreateTemp(localDir, name+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), localPath); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("finalize %s: %w", name, err)
	}
	return localPath, nil
}
