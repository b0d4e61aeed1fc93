package binary

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ZebulonRouseFrantzich/sfdxinstall/internal/config"
)

// DefaultUserAgent is the User-Agent header sent with requests
const DefaultUserAgent = "sfdxinstall/1.0"

// Fetcher downloads release artifacts. *Downloader is the production
// implementation.
type Fetcher interface {
	// FetchArchive downloads the archive described by spec and returns its
	// local path.
	FetchArchive(ctx context.Context, spec *DownloadSpec) (string, error)
	// FetchSignature downloads the detached signature published next to
	// the archive.
	FetchSignature(ctx context.Context, spec *DownloadSpec) (string, error)
	// Evict removes a cached download.
	Evict(path string) error
}

// Downloader handles HTTP downloads with retry logic
type Downloader struct {
	client    *http.Client
	cacheDir  string
	userAgent string
	retries   int
	backoff   time.Duration
}

// NewDownloader creates a new downloader caching into cacheDir.
func NewDownloader(cacheDir string, timeout time.Duration, retries int) *Downloader {
	if timeout <= 0 {
		timeout = config.DefaultDownloadTimeout
	}
	if retries < 0 {
		retries = config.DefaultRetries
	}
	return &Downloader{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Allow up to 10 redirects
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		cacheDir:  cacheDir,
		userAgent: DefaultUserAgent,
		retries:   retries,
		backoff:   time.Second,
	}
}

// DownloadToFile downloads a URL to a specific file path
func (d *Downloader) DownloadToFile(ctx context.Context, url, destPath string) error {
	var lastErr error

	for attempt := 0; attempt <= d.retries; attempt++ {
		// Check context before each attempt
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := d.backoff * time.Duration(1<<uint(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := d.downloadOnce(ctx, url, destPath)
		if err == nil {
			return nil
		}

		lastErr = err

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	return fmt.Errorf("download failed after %d retries: %w", d.retries, lastErr)
}

// downloadOnce performs a single download attempt
func (d *Downloader) downloadOnce(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	destDir := filepath.Dir(destPath)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	// Unique temp name so a stale partial download never gets renamed in
	tmpPath := filepath.Join(destDir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(destPath), uuid.NewString()))
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	cleanupNeeded := true
	defer func() {
		tmpFile.Close()
		if cleanupNeeded {
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		return fmt.Errorf("copy response body: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	cleanupNeeded = false
	return nil
}

// FetchArchive downloads a release archive to the cache directory. A cached
// copy is reused; the caller verifies it either way.
func (d *Downloader) FetchArchive(ctx context.Context, spec *DownloadSpec) (string, error) {
	if spec == nil {
		return "", fmt.Errorf("download spec is nil")
	}

	cachePath, err := d.cachePath(spec.URL)
	if err != nil {
		return "", err
	}

	if fileExists(cachePath) {
		return cachePath, nil
	}

	if err := d.DownloadToFile(ctx, spec.URL, cachePath); err != nil {
		return "", fmt.Errorf("download archive: %w", err)
	}

	return cachePath, nil
}

// FetchSignature downloads "<archive-url>.asc".
func (d *Downloader) FetchSignature(ctx context.Context, spec *DownloadSpec) (string, error) {
	if spec == nil {
		return "", fmt.Errorf("download spec is nil")
	}

	sigURL := spec.URL + ".asc"
	cachePath, err := d.cachePath(sigURL)
	if err != nil {
		return "", err
	}

	if err := d.DownloadToFile(ctx, sigURL, cachePath); err != nil {
		return "", fmt.Errorf("download signature: %w", err)
	}

	return cachePath, nil
}

// Evict removes a cached file. Missing files are not an error.
func (d *Downloader) Evict(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("evict %s: %w", path, err)
	}
	return nil
}

// cachePath maps a URL to cache/<file name>.
func (d *Downloader) cachePath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("url has no file name: %s", rawURL)
	}
	return filepath.Join(d.cacheDir, name), nil
}

// fileExists checks if a file exists and is not empty
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}
