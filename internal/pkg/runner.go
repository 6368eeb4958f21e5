package pkg

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Command is a single subprocess invocation
type Command struct {
	Name string
	Args []string
	// Env entries are added to the inherited environment.
	Env []string
	// Sudo elevates the command when not already running as root.
	Sudo bool
}

func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+len(c.Env)+2)
	if c.Sudo {
		parts = append(parts, "sudo")
	}
	parts = append(parts, c.Env...)
	parts = append(parts, c.Name)
	parts = append(parts, c.Args...)
	return strings.Join(parts, " ")
}

// Runner executes commands. Output is for read-only queries and always runs;
// Run is for commands that change the system and honours dry run.
type Runner interface {
	Output(ctx context.Context, cmd Command) ([]byte, error)
	Run(ctx context.Context, cmd Command, out io.Writer) error
	LookPath(name string) (string, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct {
	logger *slog.Logger
	dryRun bool
	asRoot bool
}

// NewExecRunner creates a runner for the current user
func NewExecRunner(logger *slog.Logger, dryRun bool) *ExecRunner {
	return &ExecRunner{
		logger: logger,
		dryRun: dryRun,
		asRoot: os.Geteuid() == 0,
	}
}

func (r *ExecRunner) command(ctx context.Context, c Command) *exec.Cmd {
	name, args := c.Name, c.Args
	if c.Sudo && !r.asRoot {
		prefix := []string{}
		if len(c.Env) > 0 {
			prefix = append(append(prefix, "env"), c.Env...)
		}
		args = append(append(prefix, name), args...)
		name = "sudo"
	}

	cmd := exec.CommandContext(ctx, name, args...)
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	return cmd
}

// Output runs a query and returns its stdout. The output is returned even
// when the command exits non-zero so callers can inspect it.
func (r *ExecRunner) Output(ctx context.Context, c Command) ([]byte, error) {
	r.logger.Debug("Running query", "command", c.String())
	out, err := r.command(ctx, c).Output()
	if err != nil {
		return out, fmt.Errorf("%s: %w", c.Name, err)
	}
	return out, nil
}

// Run executes a system-changing command, streaming stdout and stderr to out
func (r *ExecRunner) Run(ctx context.Context, c Command, out io.Writer) error {
	if r.dryRun {
		r.logger.Info("DRY RUN: Would run", "command", c.String())
		return nil
	}

	r.logger.Debug("Running command", "command", c.String())
	cmd := r.command(ctx, c)
	if out == nil {
		out = io.Discard
	}
	cmd.Stdout = out
	cmd.Stderr = out
	if c.Sudo && !r.asRoot {
		// sudo may need to ask for a password
		cmd.Stdin = os.Stdin
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w", c.Name, err)
	}
	return nil
}

// LookPath reports where name is installed
func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
