package pkg

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// Downloader fetches a URL into a file
type Downloader interface {
	Download(ctx context.Context, url, destPath string) (int64, error)
}

// HTTPDownloader downloads over HTTP into an afero filesystem
type HTTPDownloader struct {
	logger *slog.Logger
	client *http.Client
	fs     afero.Fs
	dryRun bool
}

// NewHTTPDownloader creates a downloader writing to fs
func NewHTTPDownloader(logger *slog.Logger, fs afero.Fs, dryRun bool) *HTTPDownloader {
	return &HTTPDownloader{
		logger: logger,
		client: &http.Client{Timeout: 10 * time.Minute},
		fs:     fs,
		dryRun: dryRun,
	}
}

// Download writes the body of url to destPath. A partial file is removed on
// failure.
func (d *HTTPDownloader) Download(ctx context.Context, url, destPath string) (int64, error) {
	if d.dryRun {
		d.logger.Info("DRY RUN: Would download", "url", url, "dest", destPath)
		return 0, nil
	}

	d.logger.Debug("Downloading", "url", url, "dest", destPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("download of %s failed: %s", url, resp.Status)
	}

	if err := d.fs.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return 0, fmt.Errorf("creating directory: %w", err)
	}

	f, err := d.fs.Create(destPath)
	if err != nil {
		return 0, fmt.Errorf("creating file: %w", err)
	}

	written, err := io.Copy(f, resp.Body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = d.fs.Remove(destPath)
		return 0, fmt.Errorf("writing %s: %w", destPath, err)
	}

	d.logger.Debug("Downloaded", "bytes", written, "dest", destPath)
	return written, nil
}
