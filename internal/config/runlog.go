package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"
)

// RunLogOptions configures the per-run logger
type RunLogOptions struct {
	// Path of the installation log. Empty uses DefaultLogPath.
	Path string
	// Journal also sends records to the systemd journal.
	Journal bool
}

// RunLog is the logger handed to every step of a run. Records go to the
// terminal through Logger and, at debug level, to the installation log.
type RunLog struct {
	ID     string
	Path   string
	Logger *slog.Logger

	file *os.File
}

// DefaultLogPath returns $XDG_STATE_HOME/debdesk/install.log, falling back to
// ~/.local/state
func DefaultLogPath() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = os.TempDir()
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "debdesk", "install.log")
}

// NewRunLog opens the installation log in append mode and builds the fanout
// logger for a new run id
func NewRunLog(opts RunLogOptions) (*RunLog, error) {
	path := opts.Path
	if path == "" {
		path = DefaultLogPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open install log %s: %w", path, err)
	}

	id := uuid.NewString()
	runAttr := []slog.Attr{slog.String("run", id)}

	fileHandler := slog.NewTextHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug}).WithAttrs(runAttr)
	handlers := []slog.Handler{Logger, fileHandler}

	if opts.Journal {
		journalHandler, err := slogjournal.NewHandler(&slogjournal.Options{
			ReplaceGroup: func(key string) string {
				return toJournalKey(key)
			},
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				a.Key = toJournalKey(a.Key)
				return a
			},
		})
		if err != nil {
			record := slog.NewRecord(time.Now(), slog.LevelWarn, "systemd journal unavailable", 0)
			record.Add("error", err)
			_ = fileHandler.Handle(context.Background(), record)
			Warning("systemd journal unavailable, logging to file only", "error", err)
		} else {
			handlers = append(handlers, journalHandler.WithAttrs(runAttr))
		}
	}

	return &RunLog{
		ID:     id,
		Path:   path,
		Logger: slog.New(slogmulti.Fanout(handlers...)),
		file:   file,
	}, nil
}

// Transcript returns the writer raw command output is copied to. Lines land
// between the structured records of the same run.
func (r *RunLog) Transcript() io.Writer {
	if r == nil || r.file == nil {
		return io.Discard
	}
	return r.file
}

// Close flushes and closes the installation log
func (r *RunLog) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	if err := r.file.Sync(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}

// toJournalKey maps a slog key onto the journal's [A-Z0-9_] field alphabet
func toJournalKey(str string) string {
	str = strings.ToUpper(str)
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' ||
			r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, str)
}
