package pkg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

func testLogger() *slog.Logger {
	return slog.New(log.New(os.Stderr))
}

// fakeRunner simulates dpkg and apt-get against an in-memory package set
type fakeRunner struct {
	mu sync.Mutex

	installed map[string]bool
	// failInstall makes apt-get install exit non-zero. Packages in
	// brokenPackages are never marked installed.
	failInstall    bool
	brokenPackages map[string]bool
	// failOn makes apt-get install exit non-zero when the batch contains
	// one of these packages.
	failOn map[string]bool
	// missingTools are reported absent by LookPath.
	missingTools map[string]bool
	// outputs maps Command.String() of a query to its stdout.
	outputs map[string]string
	// runErrs maps a command name to the error Run returns.
	runErrs map[string]error
	// runOutput is written to the writer passed to Run.
	runOutput string

	queries []Command
	runs    []Command
}

func newFakeRunner(installed ...string) *fakeRunner {
	f := &fakeRunner{
		installed:      map[string]bool{},
		brokenPackages: map[string]bool{},
		failOn:         map[string]bool{},
		missingTools:   map[string]bool{},
		outputs:        map[string]string{},
		runErrs:        map[string]error{},
	}
	for _, p := range installed {
		f.installed[p] = true
	}
	return f
}

func (f *fakeRunner) Output(ctx context.Context, cmd Command) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, cmd)

	if out, ok := f.outputs[cmd.String()]; ok {
		return []byte(out), nil
	}

	if cmd.Name == "dpkg" && len(cmd.Args) == 2 && cmd.Args[0] == "-s" {
		p := cmd.Args[1]
		if !f.installed[p] {
			return nil, fmt.Errorf("dpkg: exit status 1")
		}
		return []byte(fmt.Sprintf("Package: %s\nStatus: install ok installed\nPriority: optional\nVersion: 1.0\n", p)), nil
	}

	return nil, fmt.Errorf("%s: executable file not found", cmd.Name)
}

func (f *fakeRunner) Run(ctx context.Context, cmd Command, out io.Writer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, cmd)

	if out != nil && f.runOutput != "" {
		io.WriteString(out, f.runOutput)
	}
	if err, ok := f.runErrs[cmd.Name]; ok {
		return err
	}

	if cmd.Name == "apt-get" && len(cmd.Args) > 0 && cmd.Args[0] == "install" {
		failed := f.failInstall
		for _, p := range aptTargets(cmd.Args[1:]) {
			if f.failOn[p] {
				failed = true
				continue
			}
			if !f.brokenPackages[p] {
				f.installed[p] = true
			}
		}
		if failed {
			return errors.New("apt-get failed: exit status 100")
		}
	}
	return nil
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if f.missingTools[name] {
		return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
	}
	return "/usr/bin/" + name, nil
}

// installCalls returns the apt-get install invocations
func (f *fakeRunner) installCalls() []Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	var calls []Command
	for _, c := range f.runs {
		if c.Name == "apt-get" && len(c.Args) > 0 && c.Args[0] == "install" {
			calls = append(calls, c)
		}
	}
	return calls
}

func (f *fakeRunner) ranCommand(prefix string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.ContainsFunc(f.runs, func(c Command) bool {
		return strings.HasPrefix(strings.TrimPrefix(c.String(), "sudo "), prefix)
	})
}

// aptTargets strips flags and their values from apt-get install arguments
func aptTargets(args []string) []string {
	var targets []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "-o" {
			i++
			continue
		}
		if strings.HasPrefix(a, "-") {
			continue
		}
		targets = append(targets, a)
	}
	return targets
}
