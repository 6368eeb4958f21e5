package pkg

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

const (
	cudaRepoBase    = "https://developer.download.nvidia.com/compute/cuda/repos"
	cudaKeyringFile = "cuda-keyring_1.1-1_all.deb"
)

// Codenames of releases NVIDIA publishes CUDA repositories for. Used when a
// derivative reports its own VERSION_ID.
var cudaReleaseByCodename = map[string]string{
	"focal":    "ubuntu2004",
	"jammy":    "ubuntu2204",
	"noble":    "ubuntu2404",
	"bullseye": "debian11",
	"bookworm": "debian12",
}

// DebInstaller installs local .deb files and refreshes the index
type DebInstaller interface {
	InstallDeb(ctx context.Context, path string) error
	Update(ctx context.Context) error
}

// RepositoryManager sets up third-party APT repositories
type RepositoryManager struct {
	logger     *slog.Logger
	downloader Downloader
	apt        DebInstaller
	baseURL    string
}

// NewRepositoryManager creates a new repository manager
func NewRepositoryManager(logger *slog.Logger, downloader Downloader, apt DebInstaller) *RepositoryManager {
	return &RepositoryManager{
		logger:     logger,
		downloader: downloader,
		apt:        apt,
		baseURL:    cudaRepoBase,
	}
}

// CUDARepoPath returns the <distro><version>/<arch> path NVIDIA uses for
// this system, e.g. ubuntu2404/x86_64.
func CUDARepoPath(info OSInfo) (string, error) {
	var release string
	switch info.ID {
	case "ubuntu":
		release = "ubuntu" + strings.ReplaceAll(info.VersionID, ".", "")
	case "debian":
		major, _, _ := strings.Cut(info.VersionID, ".")
		release = "debian" + major
	default:
		release = cudaReleaseByCodename[info.Codename]
	}
	if release == "" || release == "ubuntu" || release == "debian" {
		return "", fmt.Errorf("no CUDA repository for %s %s", info.ID, info.VersionID)
	}

	var arch string
	switch info.Machine {
	case "x86_64", "amd64":
		arch = "x86_64"
	case "aarch64", "arm64":
		arch = "sbsa"
	default:
		return "", fmt.Errorf("no CUDA repository for architecture %q", info.Machine)
	}

	return release + "/" + arch, nil
}

// CUDAKeyringURL returns the cuda-keyring package URL for info
func (rm *RepositoryManager) CUDAKeyringURL(info OSInfo) (string, error) {
	path, err := CUDARepoPath(info)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s", rm.baseURL, path, cudaKeyringFile), nil
}

// AddCUDARepository downloads the cuda-keyring package into workDir,
// installs it and refreshes the package index.
func (rm *RepositoryManager) AddCUDARepository(ctx context.Context, info OSInfo, workDir string) error {
	url, err := rm.CUDAKeyringURL(info)
	if err != nil {
		return err
	}

	rm.logger.Info("Adding CUDA repository", "url", url)

	debPath := filepath.Join(workDir, cudaKeyringFile)
	if _, err := rm.downloader.Download(ctx, url, debPath); err != nil {
		return fmt.Errorf("failed to download CUDA keyring: %w", err)
	}
	if err := rm.apt.InstallDeb(ctx, debPath); err != nil {
		return fmt.Errorf("failed to install CUDA keyring: %w", err)
	}
	if err := rm.apt.Update(ctx); err != nil {
		return fmt.Errorf("failed to refresh package index: %w", err)
	}

	rm.logger.Info("✓ CUDA repository added")
	return nil
}
