package pkg

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bashfulrobot/debdesk/internal/config"
)

// PackageBackend is the package database the group installer drives.
// AptManager is the production implementation.
type PackageBackend interface {
	IsInstalled(ctx context.Context, pkg string) (bool, error)
	Install(ctx context.Context, label string, packages []string) error
}

// GroupOutcome is the bookkeeping for one package group
type GroupOutcome struct {
	Label            string
	Policy           config.FailurePolicy
	Total            int
	AlreadyInstalled []string
	Attempted        []string
	// InstalledAfter counts attempted packages dpkg reports as installed
	// once the install call returned.
	InstalledAfter int
	// Invoked is true when the package manager was actually called.
	Invoked bool
	Err     error
}

// Succeeded reports the group's success signal
func (o GroupOutcome) Succeeded() bool {
	return o.Err == nil
}

// Summary is the one-line count report for the group
func (o GroupOutcome) Summary() string {
	if o.Total == 0 {
		return "empty group"
	}
	return fmt.Sprintf("%d/%d already installed, %d/%d installed", len(o.AlreadyInstalled), o.Total, o.InstalledAfter, len(o.Attempted))
}

// Result converts the outcome into a step result using the group's policy
func (o GroupOutcome) Result() StepResult {
	name := "packages: " + o.Label
	if o.Succeeded() {
		return Ok(name, o.Summary())
	}
	result := Failed(name, o.Policy, o.Err)
	result.Detail = o.Summary()
	return result
}

// Partition splits packages into those already installed and those that
// need installing, querying the backend once per package. Both slices keep
// the input order.
func Partition(ctx context.Context, backend PackageBackend, packages []string) (installed, missing []string, err error) {
	installed = []string{}
	missing = []string{}
	for _, p := range packages {
		ok, err := backend.IsInstalled(ctx, p)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to query %s: %w", p, err)
		}
		if ok {
			installed = append(installed, p)
		} else {
			missing = append(missing, p)
		}
	}
	return installed, missing, nil
}

// GroupInstaller installs package groups
type GroupInstaller struct {
	logger      *slog.Logger
	backend     PackageBackend
	emptyPolicy config.EmptyGroupPolicy
	dryRun      bool
}

// NewGroupInstaller creates a group installer
func NewGroupInstaller(logger *slog.Logger, backend PackageBackend, emptyPolicy config.EmptyGroupPolicy, dryRun bool) *GroupInstaller {
	return &GroupInstaller{
		logger:      logger,
		backend:     backend,
		emptyPolicy: emptyPolicy.OrDefault(),
		dryRun:      dryRun,
	}
}

// Install makes sure every package of group is installed. It never panics or
// aborts the run itself; the caller decides what a failure means through
// GroupOutcome.Result.
func (gi *GroupInstaller) Install(ctx context.Context, group config.PackageGroup) GroupOutcome {
	outcome := GroupOutcome{
		Label:  group.Label,
		Policy: group.Policy,
		Total:  len(group.Packages),
	}

	if len(group.Packages) == 0 {
		if gi.emptyPolicy == config.EmptyGroupSucceed {
			gi.logger.Debug("Empty package group, nothing to do", "group", group.Label)
			return outcome
		}
		gi.logger.Warn("⚠ Empty package group", "group", group.Label)
		outcome.Err = &GroupError{Label: group.Label, Err: ErrEmptyGroup}
		return outcome
	}

	installed, missing, err := Partition(ctx, gi.backend, group.Packages)
	if err != nil {
		outcome.Err = &GroupError{Label: group.Label, Err: err}
		return outcome
	}
	outcome.AlreadyInstalled = installed
	outcome.Attempted = missing

	for _, p := range installed {
		gi.logger.Debug("Package already installed", "group", group.Label, "package", p)
	}

	if len(missing) == 0 {
		gi.logger.Info("✓ All packages already installed", "group", group.Label, "total", outcome.Total)
		return outcome
	}

	gi.logger.Info("Installing packages", "group", group.Label, "missing", len(missing), "total", outcome.Total)
	outcome.Invoked = true
	installErr := gi.backend.Install(ctx, group.Label, missing)

	if gi.dryRun {
		outcome.InstalledAfter = len(missing)
		return outcome
	}

	var stillMissing []string
	for _, p := range missing {
		ok, err := gi.backend.IsInstalled(ctx, p)
		if err != nil {
			gi.logger.Debug("Could not verify package", "package", p, "error", err)
		}
		if ok {
			outcome.InstalledAfter++
		} else {
			stillMissing = append(stillMissing, p)
		}
	}

	if installErr != nil {
		outcome.Err = &GroupError{Label: group.Label, Failed: stillMissing, Err: installErr}
		gi.logger.Error("✗ Package group failed", "group", group.Label, "installed", outcome.InstalledAfter, "attempted", len(missing), "error", installErr)
		return outcome
	}

	if len(stillMissing) > 0 {
		gi.logger.Warn("⚠ apt-get succeeded but packages are not reported installed", "group", group.Label, "packages", stillMissing)
	}
	gi.logger.Info("✓ Package group installed",
		"group", group.Label,
		"already", len(installed),
		"installed", outcome.InstalledAfter,
		"total", outcome.Total)
	return outcome
}
