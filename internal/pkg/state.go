package pkg

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bashfulrobot/debdesk/internal/config"
	"github.com/spf13/afero"
)

const stateVersion = "1.0"

// StateManager tracks what debdesk has applied to this machine
type StateManager struct {
	logger    *slog.Logger
	fs        afero.Fs
	statePath string
	now       func() time.Time
}

// RunState is the content of state.json
type RunState struct {
	Version     string                `json:"version"`
	LastRunID   string                `json:"last_run_id,omitempty"`
	LastRun     time.Time             `json:"last_run"`
	LastOutcome string                `json:"last_outcome,omitempty"`
	Preferences config.Preferences    `json:"preferences"`
	Groups      map[string]GroupState `json:"groups"`
	Files       []ManagedFile         `json:"files"`
}

// GroupState is the last recorded outcome of one package group
type GroupState struct {
	Label            string    `json:"label"`
	Policy           string    `json:"policy"`
	Total            int       `json:"total"`
	AlreadyInstalled int       `json:"already_installed"`
	Installed        int       `json:"installed"`
	Error            string    `json:"error,omitempty"`
	LastApplied      time.Time `json:"last_applied,omitempty"`
	LastAttempt      time.Time `json:"last_attempt"`
}

// ManagedFile is a file or directory debdesk wrote
type ManagedFile struct {
	Name        string `json:"name"`
	Destination string `json:"destination"`
	BackupPath  string `json:"backup_path,omitempty"`
}

// DefaultStatePath returns ~/.config/debdesk/state.json
func DefaultStatePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.TempDir()
	}
	return filepath.Join(homeDir, ".config", "debdesk", "state.json")
}

// NewStateManager creates a state manager using the default state path
func NewStateManager(logger *slog.Logger, fs afero.Fs) *StateManager {
	return NewStateManagerWithPath(logger, fs, DefaultStatePath())
}

// NewStateManagerWithPath creates a state manager with a custom state file path
func NewStateManagerWithPath(logger *slog.Logger, fs afero.Fs, statePath string) *StateManager {
	return &StateManager{
		logger:    logger,
		fs:        fs,
		statePath: statePath,
		now:       time.Now,
	}
}

// Path returns the state file location
func (sm *StateManager) Path() string {
	return sm.statePath
}

// LoadState loads the state from disk. A missing file yields an empty state.
func (sm *StateManager) LoadState() (*RunState, error) {
	sm.logger.Debug("Loading state", "path", sm.statePath)

	data, err := afero.ReadFile(sm.fs, sm.statePath)
	if os.IsNotExist(err) {
		sm.logger.Debug("State file does not exist, returning empty state")
		return &RunState{Version: stateVersion, Groups: map[string]GroupState{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var state RunState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	if state.Groups == nil {
		state.Groups = map[string]GroupState{}
	}

	sm.logger.Debug("Loaded state", "groups", len(state.Groups), "files", len(state.Files))
	return &state, nil
}

// SaveState writes state to disk
func (sm *StateManager) SaveState(state *RunState) error {
	sm.logger.Debug("Saving state", "path", sm.statePath)

	if err := sm.fs.MkdirAll(filepath.Dir(sm.statePath), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := afero.WriteFile(sm.fs, sm.statePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

// RecordRun merges a finished run into the stored state. Groups that did not
// run keep their previous entry.
func (sm *StateManager) RecordRun(report *RunReport, prefs config.Preferences, files []ManagedFile) error {
	state, err := sm.LoadState()
	if err != nil {
		return fmt.Errorf("failed to load current state: %w", err)
	}

	now := sm.now()
	state.Version = stateVersion
	state.LastRunID = report.RunID
	state.LastRun = now
	state.LastOutcome = report.Outcome()
	state.Preferences = prefs
	if len(files) > 0 {
		state.Files = files
	}

	for _, label := range report.GroupLabels() {
		outcome := report.Groups[label]
		gs := GroupState{
			Label:            label,
			Policy:           outcome.Policy.String(),
			Total:            outcome.Total,
			AlreadyInstalled: len(outcome.AlreadyInstalled),
			Installed:        outcome.InstalledAfter,
			LastApplied:      state.Groups[label].LastApplied,
			LastAttempt:      now,
		}
		if outcome.Succeeded() {
			gs.LastApplied = now
		} else {
			gs.Error = outcome.Err.Error()
		}
		state.Groups[label] = gs
	}

	return sm.SaveState(state)
}

// GroupsNoLongerSelected returns recorded groups that are not in groups,
// sorted by label. debdesk never removes packages, so these are only
// reported.
func (sm *StateManager) GroupsNoLongerSelected(groups []config.PackageGroup) ([]GroupState, error) {
	state, err := sm.LoadState()
	if err != nil {
		return nil, fmt.Errorf("failed to load current state: %w", err)
	}

	current := make(map[string]bool, len(groups))
	for _, g := range groups {
		current[g.Label] = true
	}

	var stale []GroupState
	for label, gs := range state.Groups {
		if !current[label] {
			stale = append(stale, gs)
		}
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i].Label < stale[j].Label })

	sm.logger.Debug("Determined groups no longer selected", "count", len(stale))
	return stale, nil
}
