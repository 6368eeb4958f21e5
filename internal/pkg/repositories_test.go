package pkg

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type recordingDownloader struct {
	urls  []string
	dests []string
	err   error
}

func (d *recordingDownloader) Download(ctx context.Context, url, destPath string) (int64, error) {
	d.urls = append(d.urls, url)
	d.dests = append(d.dests, destPath)
	return 0, d.err
}

func TestCUDARepoPath(t *testing.T) {
	tests := []struct {
		name        string
		info        OSInfo
		expected    string
		expectError bool
	}{
		{name: "ubuntu noble", info: OSInfo{ID: "ubuntu", VersionID: "24.04", Machine: "x86_64"}, expected: "ubuntu2404/x86_64"},
		{name: "ubuntu arm", info: OSInfo{ID: "ubuntu", VersionID: "22.04", Machine: "aarch64"}, expected: "ubuntu2204/sbsa"},
		{name: "debian bookworm", info: OSInfo{ID: "debian", VersionID: "12", Machine: "x86_64"}, expected: "debian12/x86_64"},
		{name: "mint via codename", info: OSInfo{ID: "linuxmint", IDLike: []string{"ubuntu"}, VersionID: "22", Codename: "noble", Machine: "x86_64"}, expected: "ubuntu2404/x86_64"},
		{name: "unknown derivative", info: OSInfo{ID: "pop", Codename: "mystery", Machine: "x86_64"}, expectError: true},
		{name: "missing version", info: OSInfo{ID: "ubuntu", Machine: "x86_64"}, expectError: true},
		{name: "unsupported arch", info: OSInfo{ID: "ubuntu", VersionID: "24.04", Machine: "riscv64"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CUDARepoPath(tt.info)
			if tt.expectError {
				if err == nil {
					t.Errorf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("CUDARepoPath() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestRepositoryManager_AddCUDARepository(t *testing.T) {
	runner := newFakeRunner()
	apt := NewAptManager(testLogger(), runner, nil, nil)
	apt.output = &strings.Builder{}
	dl := &recordingDownloader{}
	rm := NewRepositoryManager(testLogger(), dl, apt)

	info := OSInfo{ID: "ubuntu", VersionID: "24.04", Machine: "x86_64"}
	if err := rm.AddCUDARepository(context.Background(), info, "/tmp/debdesk-1"); err != nil {
		t.Fatalf("AddCUDARepository failed: %v", err)
	}

	expectedURL := "https://developer.download.nvidia.com/compute/cuda/repos/ubuntu2404/x86_64/cuda-keyring_1.1-1_all.deb"
	if len(dl.urls) != 1 || dl.urls[0] != expectedURL {
		t.Errorf("downloaded %v, expected %s", dl.urls, expectedURL)
	}
	if dl.dests[0] != "/tmp/debdesk-1/cuda-keyring_1.1-1_all.deb" {
		t.Errorf("unexpected download path %s", dl.dests[0])
	}
	if !runner.ranCommand("DEBIAN_FRONTEND=noninteractive dpkg -i /tmp/debdesk-1/cuda-keyring_1.1-1_all.deb") {
		t.Errorf("dpkg -i was not run: %v", runner.runs)
	}
	if !runner.ranCommand("DEBIAN_FRONTEND=noninteractive apt-get update") {
		t.Errorf("apt-get update was not run: %v", runner.runs)
	}
}

func TestRepositoryManager_DownloadFailureStops(t *testing.T) {
	runner := newFakeRunner()
	apt := NewAptManager(testLogger(), runner, nil, nil)
	dl := &recordingDownloader{err: errors.New("connection refused")}
	rm := NewRepositoryManager(testLogger(), dl, apt)

	err := rm.AddCUDARepository(context.Background(), OSInfo{ID: "debian", VersionID: "12", Machine: "x86_64"}, "/tmp/x")
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected download error, got %v", err)
	}
	if len(runner.runs) != 0 {
		t.Errorf("no commands should run after a failed download, got %v", runner.runs)
	}
}
