package pkg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bashfulrobot/debdesk/internal/config"
)

var (
	// ErrEmptyGroup is reported for a group with no packages under the
	// "fail" empty group policy.
	ErrEmptyGroup = errors.New("nothing to do: package group is empty")
	// ErrAptUnavailable means apt-get or dpkg is missing from PATH.
	ErrAptUnavailable = errors.New("apt-get not found - is this a Debian/Ubuntu system?")
	// ErrNotDebian means /etc/os-release names an unsupported family.
	ErrNotDebian = errors.New("unsupported distribution: debdesk needs a Debian or Ubuntu based system")
	// ErrAborted is returned when a fatal step stops the run.
	ErrAborted = errors.New("provisioning aborted")
)

// Severity classifies how a step ended
type Severity int

const (
	SeveritySuccess Severity = iota
	// SeverityPartial is a best-effort failure that was logged and skipped.
	SeverityPartial
	// SeverityFatal stops the run.
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityPartial:
		return "partial"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// StepResult is what every provisioning step hands back
type StepResult struct {
	Name     string
	Severity Severity
	Err      error
	// Detail is a short human summary, e.g. "3/5 installed".
	Detail string
}

// Ok builds a successful result
func Ok(name, detail string) StepResult {
	return StepResult{Name: name, Severity: SeveritySuccess, Detail: detail}
}

// Failed builds a result for err according to policy
func Failed(name string, policy config.FailurePolicy, err error) StepResult {
	severity := SeverityFatal
	if policy == config.BestEffort {
		severity = SeverityPartial
	}
	return StepResult{Name: name, Severity: severity, Err: err}
}

// Fatal reports whether the run must stop
func (r StepResult) Fatal() bool {
	return r.Severity == SeverityFatal
}

// StepError wraps the error of a failed step
type StepError struct {
	Step     string
	Severity Severity
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Step, e.Severity, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// AsError converts a failed result into a *StepError, nil on success
func (r StepResult) AsError() error {
	if r.Severity == SeveritySuccess {
		return nil
	}
	return &StepError{Step: r.Name, Severity: r.Severity, Err: r.Err}
}

// GroupError describes a package group whose install call failed
type GroupError struct {
	Label  string
	Failed []string
	Err    error
}

func (e *GroupError) Error() string {
	if len(e.Failed) == 0 {
		return fmt.Sprintf("package group %s: %v", e.Label, e.Err)
	}
	return fmt.Sprintf("package group %s: %v (missing: %s)", e.Label, e.Err, strings.Join(e.Failed, ", "))
}

func (e *GroupError) Unwrap() error {
	return e.Err
}

// RunReport collects the results of a provisioning run in order
type RunReport struct {
	RunID  string
	Steps  []StepResult
	Groups map[string]GroupOutcome

	groupOrder []string
}

// AddGroup records a group outcome and its step result
func (r *RunReport) AddGroup(outcome GroupOutcome) StepResult {
	if r.Groups == nil {
		r.Groups = map[string]GroupOutcome{}
	}
	if _, seen := r.Groups[outcome.Label]; !seen {
		r.groupOrder = append(r.groupOrder, outcome.Label)
	}
	r.Groups[outcome.Label] = outcome
	result := outcome.Result()
	r.Add(result)
	return result
}

// GroupLabels returns the recorded group labels in run order
func (r *RunReport) GroupLabels() []string {
	return append([]string(nil), r.groupOrder...)
}

// Outcome summarizes the run as success, partial or fatal
func (r *RunReport) Outcome() string {
	if _, fatal := r.Fatal(); fatal {
		return SeverityFatal.String()
	}
	if len(r.Partials()) > 0 {
		return SeverityPartial.String()
	}
	return SeveritySuccess.String()
}

// Add appends a step result
func (r *RunReport) Add(result StepResult) {
	r.Steps = append(r.Steps, result)
}

// Partials returns the best-effort failures
func (r *RunReport) Partials() []StepResult {
	var partial []StepResult
	for _, s := range r.Steps {
		if s.Severity == SeverityPartial {
			partial = append(partial, s)
		}
	}
	return partial
}

// Fatal returns the step that stopped the run, if any
func (r *RunReport) Fatal() (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Fatal() {
			return s, true
		}
	}
	return StepResult{}, false
}
