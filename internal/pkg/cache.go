package pkg

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// CacheManager keeps downloaded archives under ~/.cache/debdesk so re-runs
// and retries after a failed step do not fetch them again
type CacheManager struct {
	logger   *slog.Logger
	fs       afero.Fs
	cacheDir string
}

// CacheStats represents cache usage statistics
type CacheStats struct {
	CacheDir     string    `json:"cache_dir"`
	TotalFiles   int       `json:"total_files"`
	TotalSize    int64     `json:"total_size"`
	LastModified time.Time `json:"last_modified"`
}

// DefaultCacheDir returns $XDG_CACHE_HOME/debdesk, falling back to ~/.cache
func DefaultCacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "debdesk")
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.TempDir()
	}
	return filepath.Join(homeDir, ".cache", "debdesk")
}

// NewCacheManager creates a cache manager in the default cache directory
func NewCacheManager(logger *slog.Logger, fs afero.Fs) *CacheManager {
	return NewCacheManagerWithPath(logger, fs, DefaultCacheDir())
}

// NewCacheManagerWithPath creates a cache manager with custom cache directory
func NewCacheManagerWithPath(logger *slog.Logger, fs afero.Fs, cacheDir string) *CacheManager {
	return &CacheManager{
		logger:   logger,
		fs:       fs,
		cacheDir: cacheDir,
	}
}

// Dir returns the cache directory
func (cm *CacheManager) Dir() string {
	return cm.cacheDir
}

// Path returns where the download of url is cached. The key keeps the URL's
// base name readable and prefixes a hash so equal names from different
// releases do not collide.
func (cm *CacheManager) Path(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(cm.cacheDir, "downloads", hex.EncodeToString(sum[:])[:16]+"-"+path.Base(url))
}

// Lookup reports whether url is cached with a non-empty file
func (cm *CacheManager) Lookup(url string) (string, bool) {
	cached := cm.Path(url)
	info, err := cm.fs.Stat(cached)
	if err != nil || info.IsDir() || info.Size() == 0 {
		return cached, false
	}
	return cached, true
}

// ClearCache removes all cached data
func (cm *CacheManager) ClearCache() error {
	cm.logger.Info("Clearing all cache data", "cache_dir", cm.cacheDir)

	if err := cm.fs.RemoveAll(cm.cacheDir); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// GetCacheStats returns information about cache usage
func (cm *CacheManager) GetCacheStats() (*CacheStats, error) {
	stats := &CacheStats{
		CacheDir: cm.cacheDir,
	}

	if exists, _ := afero.DirExists(cm.fs, cm.cacheDir); !exists {
		return stats, nil
	}

	err := afero.Walk(cm.fs, cm.cacheDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			stats.TotalFiles++
			stats.TotalSize += info.Size()

			if info.ModTime().After(stats.LastModified) {
				stats.LastModified = info.ModTime()
			}
		}
		return nil
	})

	return stats, err
}

// CachingDownloader serves downloads from a CacheManager and fills it from
// the wrapped Downloader on a miss
type CachingDownloader struct {
	cache *CacheManager
	next  Downloader
}

// NewCachingDownloader wraps next with cache
func NewCachingDownloader(cache *CacheManager, next Downloader) *CachingDownloader {
	return &CachingDownloader{cache: cache, next: next}
}

// Download copies the cached file for url to destPath, fetching it first
// when it is not cached
func (d *CachingDownloader) Download(ctx context.Context, url, destPath string) (int64, error) {
	cached, hit := d.cache.Lookup(url)
	if hit {
		d.cache.logger.Debug("Using cached download", "url", url, "path", cached)
	} else {
		if err := d.cache.fs.MkdirAll(filepath.Dir(cached), 0755); err != nil {
			return 0, fmt.Errorf("failed to create cache directory: %w", err)
		}
		if _, err := d.next.Download(ctx, url, cached); err != nil {
			return 0, err
		}
	}

	n, err := d.copy(cached, destPath)
	if err != nil {
		return 0, fmt.Errorf("failed to copy cached %s: %w", path.Base(url), err)
	}
	return n, nil
}

func (d *CachingDownloader) copy(src, dest string) (int64, error) {
	fs := d.cache.fs
	in, err := fs.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	if err := fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return 0, err
	}
	out, err := fs.Create(dest)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	return n, err
}
