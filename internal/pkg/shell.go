package pkg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/spf13/afero"
)

const ohMyZshURL = "https://github.com/ohmyzsh/ohmyzsh.git"

// Plugins that live outside the oh-my-zsh tree and must be cloned into
// custom/plugins.
var externalPlugins = map[string]string{
	"zsh-autosuggestions":     "https://github.com/zsh-users/zsh-autosuggestions.git",
	"zsh-syntax-highlighting": "https://github.com/zsh-users/zsh-syntax-highlighting.git",
}

// Cloner fetches a git repository into dest
type Cloner interface {
	Clone(ctx context.Context, url, dest string) error
}

// GitCloner makes shallow single-branch clones with go-git
type GitCloner struct {
	progress io.Writer
}

// NewGitCloner creates a cloner; progress may be nil
func NewGitCloner(progress io.Writer) *GitCloner {
	return &GitCloner{progress: progress}
}

func (c *GitCloner) Clone(ctx context.Context, url, dest string) error {
	_, err := git.PlainCloneContext(ctx, dest, false, &git.CloneOptions{
		URL:          url,
		SingleBranch: true,
		Depth:        1,
		Progress:     c.progress,
	})
	if err != nil {
		return fmt.Errorf("git clone %s failed: %w", url, err)
	}
	return nil
}

// ShellManager installs oh-my-zsh and makes zsh the login shell
type ShellManager struct {
	logger *slog.Logger
	fs     afero.Fs
	cloner Cloner
	runner Runner
	ux     *UXManager
	dryRun bool
}

// NewShellManager creates a shell manager. ux shows a spinner during clones
// and may be nil.
func NewShellManager(logger *slog.Logger, fs afero.Fs, cloner Cloner, runner Runner, ux *UXManager, dryRun bool) *ShellManager {
	return &ShellManager{
		logger: logger,
		fs:     fs,
		cloner: cloner,
		runner: runner,
		ux:     ux,
		dryRun: dryRun,
	}
}

// FrameworkDir is where oh-my-zsh lives for home
func FrameworkDir(home string) string {
	return filepath.Join(home, ".oh-my-zsh")
}

// InstallFramework clones oh-my-zsh unless it is already present
func (sm *ShellManager) InstallFramework(ctx context.Context, home string) error {
	return sm.cloneOnce(ctx, "oh-my-zsh", ohMyZshURL, FrameworkDir(home))
}

// InstallPlugins clones the external plugins named in plugins. Built-in
// oh-my-zsh plugins are skipped. All plugins are attempted; the errors are
// joined.
func (sm *ShellManager) InstallPlugins(ctx context.Context, home string, plugins []string) error {
	var errs []error
	for _, name := range plugins {
		url, ok := externalPlugins[name]
		if !ok {
			continue
		}
		dest := filepath.Join(FrameworkDir(home), "custom", "plugins", name)
		if err := sm.cloneOnce(ctx, name, url, dest); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (sm *ShellManager) cloneOnce(ctx context.Context, name, url, dest string) error {
	if exists, _ := afero.DirExists(sm.fs, dest); exists {
		sm.logger.Info("✓ Already installed", "name", name, "path", dest)
		return nil
	}

	if sm.dryRun {
		sm.logger.Info("DRY RUN: Would clone", "name", name, "url", url, "dest", dest)
		return nil
	}

	sm.logger.Debug("Cloning", "name", name, "url", url, "dest", dest)
	err := spin(sm.ux, "Cloning "+name, func() error {
		return sm.cloner.Clone(ctx, url, dest)
	})
	if err != nil {
		_ = sm.fs.RemoveAll(dest)
		return fmt.Errorf("failed to install %s: %w", name, err)
	}
	sm.logger.Info("✓ Installed", "name", name, "path", dest)
	return nil
}

// SetLoginShell switches username's login shell to zsh. currentShell is the
// user's present shell, usually $SHELL.
func (sm *ShellManager) SetLoginShell(ctx context.Context, username, currentShell string) error {
	zsh, err := sm.runner.LookPath("zsh")
	if err != nil {
		return fmt.Errorf("zsh not found: %w", err)
	}
	if filepath.Base(currentShell) == "zsh" {
		sm.logger.Debug("Login shell is already zsh", "user", username)
		return nil
	}

	cmd := Command{Name: "chsh", Args: []string{"-s", zsh, username}, Sudo: true}
	if err := sm.runner.Run(ctx, cmd, io.Discard); err != nil {
		return fmt.Errorf("chsh failed: %w", err)
	}
	sm.logger.Info("✓ Login shell changed", "user", username, "shell", zsh)
	return nil
}
