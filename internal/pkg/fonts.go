package pkg

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/ulikunitz/xz"
)

const nerdFontsRelease = "https://github.com/ryanoasis/nerd-fonts/releases/download"

// FontManager installs Nerd Fonts into the user's font directory
type FontManager struct {
	logger     *slog.Logger
	fs         afero.Fs
	downloader Downloader
	runner     Runner
	ux         *UXManager
	dryRun     bool
	baseURL    string
}

// NewFontManager creates a font manager. ux may be nil.
func NewFontManager(logger *slog.Logger, fs afero.Fs, downloader Downloader, runner Runner, ux *UXManager, dryRun bool) *FontManager {
	return &FontManager{
		logger:     logger,
		fs:         fs,
		downloader: downloader,
		runner:     runner,
		ux:         ux,
		dryRun:     dryRun,
		baseURL:    nerdFontsRelease,
	}
}

// FontDir returns ~/.local/share/fonts/<name>
func FontDir(home, name string) string {
	return filepath.Join(home, ".local", "share", "fonts", name)
}

func isFontFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".ttf", ".otf":
		return true
	}
	return false
}

// Installed reports whether dir already holds font files
func (fm *FontManager) Installed(dir string) bool {
	entries, err := afero.ReadDir(fm.fs, dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() && isFontFile(e.Name()) {
			return true
		}
	}
	return false
}

// InstallNerdFont downloads <name>.tar.xz for version into workDir, unpacks
// its font files and refreshes the font cache
func (fm *FontManager) InstallNerdFont(ctx context.Context, name, version, home, workDir string) error {
	dest := FontDir(home, name)
	if fm.Installed(dest) {
		fm.logger.Info("✓ Font already installed", "font", name, "path", dest)
		return nil
	}

	url := fmt.Sprintf("%s/%s/%s.tar.xz", fm.baseURL, version, name)
	archive := filepath.Join(workDir, name+".tar.xz")

	if fm.dryRun {
		fm.logger.Info("DRY RUN: Would install font", "font", name, "url", url, "dest", dest)
		return nil
	}

	fm.logger.Info("Installing font", "font", name, "version", version)
	err := spin(fm.ux, fmt.Sprintf("Downloading %s %s", name, version), func() error {
		_, err := fm.downloader.Download(ctx, url, archive)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", name, err)
	}

	count, err := fm.unpack(archive, dest)
	if err != nil {
		return fmt.Errorf("failed to unpack %s: %w", name, err)
	}
	fm.logger.Debug("Unpacked fonts", "count", count, "dest", dest)

	if _, err := fm.runner.LookPath("fc-cache"); err != nil {
		fm.logger.Warn("⚠ fc-cache not found, font cache not refreshed")
	} else if err := fm.runner.Run(ctx, Command{Name: "fc-cache", Args: []string{"-f"}}, io.Discard); err != nil {
		return fmt.Errorf("fc-cache failed: %w", err)
	}

	fm.logger.Info("✓ Font installed", "font", name, "files", count)
	return nil
}

// unpack extracts archive into a staging directory next to dest and renames
// it into place only once every font is written, so a failed run leaves
// nothing that Installed would accept
func (fm *FontManager) unpack(archive, dest string) (int, error) {
	staging := filepath.Join(filepath.Dir(dest), "."+filepath.Base(dest)+".partial")
	if err := fm.fs.RemoveAll(staging); err != nil {
		return 0, fmt.Errorf("removing stale staging directory: %w", err)
	}

	count, err := fm.extractFonts(archive, staging)
	if err == nil && count == 0 {
		err = fmt.Errorf("archive %s contains no font files", filepath.Base(archive))
	}
	if err != nil {
		_ = fm.fs.RemoveAll(staging)
		return 0, err
	}

	// dest may exist without fonts in it
	if err := fm.fs.RemoveAll(dest); err != nil {
		_ = fm.fs.RemoveAll(staging)
		return 0, err
	}
	if err := fm.fs.Rename(staging, dest); err != nil {
		_ = fm.fs.RemoveAll(staging)
		return 0, fmt.Errorf("moving fonts into place: %w", err)
	}
	return count, nil
}

// extractFonts writes the .ttf and .otf entries of an xz tarball flat into
// dest and returns how many it wrote
func (fm *FontManager) extractFonts(archive, dest string) (int, error) {
	f, err := fm.fs.Open(archive)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	xzReader, err := xz.NewReader(f)
	if err != nil {
		return 0, fmt.Errorf("creating xz reader: %w", err)
	}
	tarReader := tar.NewReader(xzReader)

	if err := fm.fs.MkdirAll(dest, 0755); err != nil {
		return 0, fmt.Errorf("creating font directory: %w", err)
	}

	count := 0
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("reading tar entry: %w", err)
		}
		if header.Typeflag != tar.TypeReg || !isFontFile(header.Name) {
			continue
		}

		// Only the base name is kept, so entries cannot escape dest.
		target := filepath.Join(dest, path.Base(header.Name))
		out, err := fm.fs.Create(target)
		if err != nil {
			return count, fmt.Errorf("creating %s: %w", target, err)
		}
		_, err = io.Copy(out, tarReader)
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return count, fmt.Errorf("writing %s: %w", target, err)
		}
		count++
	}
	return count, nil
}
