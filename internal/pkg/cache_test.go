package pkg

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
)

// countingDownloader writes body and counts calls
type countingDownloader struct {
	fs    afero.Fs
	body  string
	err   error
	calls int
}

func (d *countingDownloader) Download(ctx context.Context, url, destPath string) (int64, error) {
	d.calls++
	if d.err != nil {
		return 0, d.err
	}
	return int64(len(d.body)), afero.WriteFile(d.fs, destPath, []byte(d.body), 0644)
}

func TestCacheManager_Path(t *testing.T) {
	cm := NewCacheManagerWithPath(testLogger(), afero.NewMemMapFs(), "/cache")

	a := cm.Path("https://example.com/v3.2.1/Hack.tar.xz")
	b := cm.Path("https://example.com/v3.3.0/Hack.tar.xz")

	if a == b {
		t.Errorf("different URLs share a cache path: %s", a)
	}
	if got := a[len(a)-len("-Hack.tar.xz"):]; got != "-Hack.tar.xz" {
		t.Errorf("cache path should end with the base name, got %s", a)
	}
}

func TestCachingDownloader(t *testing.T) {
	fs := afero.NewMemMapFs()
	cm := NewCacheManagerWithPath(testLogger(), fs, "/cache")
	next := &countingDownloader{fs: fs, body: "archive"}
	d := NewCachingDownloader(cm, next)
	url := "https://example.com/Hack.tar.xz"

	for i, dest := range []string{"/tmp/a/Hack.tar.xz", "/tmp/b/Hack.tar.xz"} {
		n, err := d.Download(context.Background(), url, dest)
		if err != nil {
			t.Fatalf("download %d failed: %v", i, err)
		}
		if n != int64(len("archive")) {
			t.Errorf("download %d: expected %d bytes, got %d", i, len("archive"), n)
		}
		data, _ := afero.ReadFile(fs, dest)
		if string(data) != "archive" {
			t.Errorf("download %d: unexpected content %q", i, data)
		}
	}

	if next.calls != 1 {
		t.Errorf("expected one network download, got %d", next.calls)
	}
}

func TestCachingDownloader_FailureNotCached(t *testing.T) {
	fs := afero.NewMemMapFs()
	cm := NewCacheManagerWithPath(testLogger(), fs, "/cache")
	next := &countingDownloader{fs: fs, err: errors.New("404 Not Found")}
	d := NewCachingDownloader(cm, next)
	url := "https://example.com/Hack.tar.xz"

	if _, err := d.Download(context.Background(), url, "/tmp/Hack.tar.xz"); err == nil {
		t.Fatal("expected error")
	}
	if _, hit := cm.Lookup(url); hit {
		t.Error("failed download must not be cached")
	}
}

func TestCacheManager_StatsAndClear(t *testing.T) {
	fs := afero.NewMemMapFs()
	cm := NewCacheManagerWithPath(testLogger(), fs, "/cache")

	stats, err := cm.GetCacheStats()
	if err != nil {
		t.Fatalf("GetCacheStats() on missing dir failed: %v", err)
	}
	if stats.TotalFiles != 0 {
		t.Errorf("expected empty stats, got %d files", stats.TotalFiles)
	}

	afero.WriteFile(fs, cm.Path("https://example.com/a.deb"), []byte("12345"), 0644)
	afero.WriteFile(fs, cm.Path("https://example.com/b.tar.xz"), []byte("123"), 0644)

	stats, err = cm.GetCacheStats()
	if err != nil {
		t.Fatalf("GetCacheStats() failed: %v", err)
	}
	if stats.TotalFiles != 2 || stats.TotalSize != 8 {
		t.Errorf("expected 2 files / 8 bytes, got %d / %d", stats.TotalFiles, stats.TotalSize)
	}
	if stats.LastModified.IsZero() {
		t.Error("LastModified should be set")
	}

	if err := cm.ClearCache(); err != nil {
		t.Fatalf("ClearCache() failed: %v", err)
	}
	if exists, _ := afero.DirExists(fs, "/cache"); exists {
		t.Error("cache directory should be removed")
	}
}
