package pkg

import (
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// BackupTimeFormat is the suffix layout of backup copies
const BackupTimeFormat = "2006-01-02_15-04-05"

// FileManager writes configuration into the user's home directory
type FileManager struct {
	logger *slog.Logger
	fs     afero.Fs
	dryRun bool
	backup bool
	now    func() time.Time
}

// NewFileManager creates a new FileManager. When backup is false existing
// files are overwritten in place.
func NewFileManager(logger *slog.Logger, fs afero.Fs, dryRun, backup bool) *FileManager {
	return &FileManager{
		logger: logger,
		fs:     fs,
		dryRun: dryRun,
		backup: backup,
		now:    time.Now,
	}
}

// BackupPath returns the backup location for path at time t
func BackupPath(path string, t time.Time) string {
	return fmt.Sprintf("%s.backup.%s", path, t.Format(BackupTimeFormat))
}

// MaterializeTree copies every top-level directory of src into destRoot.
// A target that already holds the bundled files unchanged is left alone;
// any other pre-existing target is moved aside first when backups are on.
func (fm *FileManager) MaterializeTree(src fs.FS, destRoot string) ([]ManagedFile, error) {
	entries, err := fs.ReadDir(src, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read bundled configuration: %w", err)
	}

	stamp := fm.now()
	var managed []ManagedFile
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		dest := filepath.Join(destRoot, name)

		if fm.treeMatches(src, name, dest) {
			fm.logger.Debug("Configuration already up to date", "name", name, "destination", dest)
			managed = append(managed, ManagedFile{Name: name, Destination: dest})
			continue
		}

		backupPath, err := fm.moveAside(dest, stamp)
		if err != nil {
			return managed, fmt.Errorf("failed to back up %s: %w", dest, err)
		}

		if err := fm.copyDir(src, name, dest); err != nil {
			return managed, fmt.Errorf("failed to install %s: %w", name, err)
		}

		fm.logger.Info("✓ Configuration installed", "name", name, "destination", dest)
		managed = append(managed, ManagedFile{Name: name, Destination: dest, BackupPath: backupPath})
	}
	return managed, nil
}

// WriteFile writes a generated file. Identical content is left alone;
// different content is backed up first when backups are on.
func (fm *FileManager) WriteFile(name, dest string, data []byte, perm os.FileMode) (ManagedFile, error) {
	managed := ManagedFile{Name: name, Destination: dest}

	existing, err := afero.ReadFile(fm.fs, dest)
	if err == nil && bytes.Equal(existing, data) {
		fm.logger.Debug("File already up to date", "path", dest)
		return managed, nil
	}

	if err == nil {
		backupPath, err := fm.moveAside(dest, fm.now())
		if err != nil {
			return managed, fmt.Errorf("failed to back up %s: %w", dest, err)
		}
		managed.BackupPath = backupPath
	}

	if fm.dryRun {
		fm.logger.Info("DRY RUN: Would write file", "path", dest, "bytes", len(data))
		return managed, nil
	}

	if err := fm.fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return managed, fmt.Errorf("failed to create directory for %s: %w", dest, err)
	}
	if err := afero.WriteFile(fm.fs, dest, data, perm); err != nil {
		return managed, fmt.Errorf("failed to write %s: %w", dest, err)
	}

	fm.logger.Info("✓ File written", "name", name, "path", dest)
	return managed, nil
}

// moveAside renames an existing path to its backup location. It returns the
// backup path, or "" when nothing was moved.
func (fm *FileManager) moveAside(dest string, stamp time.Time) (string, error) {
	if _, err := fm.fs.Stat(dest); os.IsNotExist(err) {
		return "", nil
	} else if err != nil {
		return "", err
	}

	if !fm.backup {
		fm.logger.Debug("Overwriting existing path without backup", "path", dest)
		return "", nil
	}

	backupPath := BackupPath(dest, stamp)
	if fm.dryRun {
		fm.logger.Info("DRY RUN: Would back up", "from", dest, "to", backupPath)
		return backupPath, nil
	}

	fm.logger.Info("⚠ Backing up existing path", "from", dest, "to", backupPath)
	if err := fm.fs.Rename(dest, backupPath); err != nil {
		return "", err
	}
	return backupPath, nil
}

// treeMatches reports whether every file under root in src exists at dest
// with the same content. Extra files at dest are ignored.
func (fm *FileManager) treeMatches(src fs.FS, root, dest string) bool {
	err := fs.WalkDir(src, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, _ := filepath.Rel(root, filepath.FromSlash(p))
		want, err := fs.ReadFile(src, p)
		if err != nil {
			return err
		}
		got, err := afero.ReadFile(fm.fs, filepath.Join(dest, rel))
		if err != nil {
			return err
		}
		if !bytes.Equal(got, want) {
			return fs.ErrExist
		}
		return nil
	})
	return err == nil
}

// copyDir copies root from src to dest, creating directories as needed
func (fm *FileManager) copyDir(src fs.FS, root, dest string) error {
	return fs.WalkDir(src, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, _ := filepath.Rel(root, filepath.FromSlash(p))
		target := filepath.Join(dest, rel)

		if fm.dryRun {
			if !d.IsDir() {
				fm.logger.Debug("DRY RUN: Would copy file", "from", p, "to", target)
			}
			return nil
		}

		if d.IsDir() {
			return fm.fs.MkdirAll(target, 0755)
		}

		data, err := fs.ReadFile(src, p)
		if err != nil {
			return err
		}
		perm := os.FileMode(0644)
		if path.Ext(p) == ".sh" {
			perm = 0755
		}
		fm.logger.Debug("Copying file", "from", p, "to", target)
		return afero.WriteFile(fm.fs, target, data, perm)
	})
}
