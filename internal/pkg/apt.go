package pkg

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bashfulrobot/debdesk/internal/config"
)

var aptEnv = []string{"DEBIAN_FRONTEND=noninteractive"}

// AptManager handles apt-get and dpkg operations
type AptManager struct {
	logger     *slog.Logger
	runner     Runner
	ux         *UXManager
	flags      []string
	output     io.Writer
	transcript io.Writer
}

// NewAptManager creates a new APT package manager. flags are the install
// flags placed before the package names; nil uses the defaults.
func NewAptManager(logger *slog.Logger, runner Runner, ux *UXManager, flags []string) *AptManager {
	if flags == nil {
		flags = config.GetAptFlags(nil)
	}
	return &AptManager{
		logger: logger,
		runner: runner,
		ux:     ux,
		flags:  flags,
		output: os.Stdout,
	}
}

// SetTranscript sets where raw apt output is copied, normally the install log
func (am *AptManager) SetTranscript(w io.Writer) {
	am.transcript = w
}

// CheckAvailable verifies that apt-get and dpkg are on PATH
func (am *AptManager) CheckAvailable() error {
	for _, tool := range []string{"apt-get", "dpkg"} {
		if _, err := am.runner.LookPath(tool); err != nil {
			return fmt.Errorf("%w: %s missing", ErrAptUnavailable, tool)
		}
	}
	return nil
}

// IsInstalled asks dpkg whether pkg is fully installed. dpkg exits non-zero
// for unknown packages, which counts as not installed.
func (am *AptManager) IsInstalled(ctx context.Context, pkg string) (bool, error) {
	out, err := am.runner.Output(ctx, Command{Name: "dpkg", Args: []string{"-s", pkg}})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}
	if err != nil && len(out) == 0 {
		am.logger.Debug("Package not installed", "package", pkg)
		return false, nil
	}
	return ParseStatus(out, pkg).Installed(), nil
}

// Update refreshes the package index
func (am *AptManager) Update(ctx context.Context) error {
	cmd := Command{Name: "apt-get", Args: []string{"update", "-q"}, Env: aptEnv, Sudo: true}
	title := "Refreshing package index"
	return am.run(ctx, title, cmd)
}

// Install runs one batched apt-get install for packages
func (am *AptManager) Install(ctx context.Context, label string, packages []string) error {
	if len(packages) == 0 {
		return nil
	}

	args := []string{"install"}
	args = append(args, am.flags...)
	if am.ux != nil && am.ux.ProgressAvailable() {
		args = append(args, "-o", "APT::Status-Fd=1", "-o", "Dpkg::Use-Pty=0")
	}
	args = append(args, packages...)

	cmd := Command{Name: "apt-get", Args: args, Env: aptEnv, Sudo: true}
	title := fmt.Sprintf("Installing %s (%d packages)", label, len(packages))
	return am.run(ctx, title, cmd)
}

// InstallDeb installs a local .deb file with dpkg -i
func (am *AptManager) InstallDeb(ctx context.Context, path string) error {
	cmd := Command{Name: "dpkg", Args: []string{"-i", path}, Env: aptEnv, Sudo: true}
	return am.run(ctx, "Installing "+path, cmd)
}

func (am *AptManager) run(ctx context.Context, title string, cmd Command) error {
	if am.ux == nil {
		am.logger.Info(title)
		return am.runner.Run(ctx, cmd, am.output)
	}
	return am.ux.RunWithProgress(title, am.output, am.transcript, func(w io.Writer) error {
		return am.runner.Run(ctx, cmd, w)
	})
}
