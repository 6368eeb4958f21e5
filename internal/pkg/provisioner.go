package pkg

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"

	"github.com/bashfulrobot/debdesk/internal/assets"
	"github.com/bashfulrobot/debdesk/internal/config"
	"github.com/spf13/afero"
)

// Environment describes the user being provisioned
type Environment struct {
	Home string
	// ConfigHome is $XDG_CONFIG_HOME, normally ~/.config.
	ConfigHome string
	Username   string
	// Shell is the current login shell, normally $SHELL.
	Shell string
}

// Plan is the input of one provisioning run. It is fully resolved before Run
// is called.
type Plan struct {
	RunID       string
	OS          OSInfo
	Preferences config.Preferences
	Env         Environment
	// Transcript receives raw package manager output, normally the install
	// log file.
	Transcript io.Writer
}

// ProvisionerOptions wires a Provisioner to its collaborators
type ProvisionerOptions struct {
	Logger     *slog.Logger
	Config     *config.Config
	Mode       config.Mode
	Fs         afero.Fs
	Runner     Runner
	Downloader Downloader
	Cloner     Cloner
	State      *StateManager
	// UX renders apt progress and spinners; nil streams output to Output.
	UX     *UXManager
	Output io.Writer
}

// Provisioner runs the provisioning steps in order
type Provisioner struct {
	logger *slog.Logger
	cfg    *config.Config
	mode   config.Mode
	fs     afero.Fs

	apt    *AptManager
	groups *GroupInstaller
	repos  *RepositoryManager
	files  *FileManager
	shell  *ShellManager
	fonts  *FontManager
	dconf  *DConfManager
	state  *StateManager
}

// NewProvisioner builds the managers for one run
func NewProvisioner(opts ProvisionerOptions) *Provisioner {
	cfg := opts.Config
	if cfg == nil {
		cfg = &config.Config{}
		cfg.ApplyDefaults()
	}
	dryRun := opts.Mode.DryRun

	apt := NewAptManager(opts.Logger, opts.Runner, opts.UX, config.GetAptFlags(cfg.Packages.AptFlags))
	if opts.Output != nil {
		apt.output = opts.Output
	}

	return &Provisioner{
		logger: opts.Logger,
		cfg:    cfg,
		mode:   opts.Mode,
		fs:     opts.Fs,
		apt:    apt,
		groups: NewGroupInstaller(opts.Logger, apt, cfg.EmptyGroupPolicy, dryRun),
		repos:  NewRepositoryManager(opts.Logger, opts.Downloader, apt),
		files:  NewFileManager(opts.Logger, opts.Fs, dryRun, cfg.BackupEnabled()),
		shell:  NewShellManager(opts.Logger, opts.Fs, opts.Cloner, opts.Runner, opts.UX, dryRun),
		fonts:  NewFontManager(opts.Logger, opts.Fs, opts.Downloader, opts.Runner, opts.UX, dryRun),
		dconf:  NewDConfManager(opts.Logger, opts.Runner),
		state:  opts.State,
	}
}

// Run executes plan. The report is always returned; the error wraps
// ErrAborted when a strict step failed or the context was cancelled.
func (p *Provisioner) Run(ctx context.Context, plan Plan) (*RunReport, error) {
	report := &RunReport{RunID: plan.RunID}

	workDir, err := afero.TempDir(p.fs, "", "debdesk-")
	if err != nil {
		return report, fmt.Errorf("failed to create working directory: %w", err)
	}
	defer func() {
		if err := p.fs.RemoveAll(workDir); err != nil {
			p.logger.Warn("Failed to remove working directory", "path", workDir, "error", err)
		}
	}()
	p.logger.Debug("Working directory", "path", workDir)

	p.apt.SetTranscript(plan.Transcript)
	groups := config.ResolveGroups(plan.Preferences, p.cfg)

	var managed []ManagedFile
	aborted := func() (*RunReport, error) {
		fatal, _ := report.Fatal()
		p.recordState(report, plan, managed)
		return report, fmt.Errorf("%w: %w", ErrAborted, fatal.AsError())
	}

	if !p.mode.ConfigOnly {
		if p.step(ctx, report, "package manager", config.Strict, func() error { return p.apt.CheckAvailable() }).Fatal() {
			return aborted()
		}
		if p.step(ctx, report, "package index", config.Strict, func() error { return p.apt.Update(ctx) }).Fatal() {
			return aborted()
		}
		if !p.installGroups(ctx, report, plan, groups, workDir) {
			return aborted()
		}
	}

	if plan.Preferences.InstallWM {
		result := p.step(ctx, report, "desktop configuration", config.Strict, func() error {
			written, err := p.files.MaterializeTree(assets.ConfigTree(), plan.Env.ConfigHome)
			managed = append(managed, written...)
			if err != nil {
				return err
			}
			status, err := RenderI3Status(ProbeStatusHardware(p.fs))
			if err != nil {
				return err
			}
			file, err := p.files.WriteFile("i3status", filepath.Join(plan.Env.ConfigHome, "i3status", "config"), status, 0644)
			managed = append(managed, file)
			return err
		})
		if result.Fatal() {
			return aborted()
		}

		if !p.mode.ConfigOnly && p.step(ctx, report, "desktop theme", config.BestEffort, func() error {
			return p.dconf.ApplySettings(ctx, DesktopSettings(p.cfg.Desktop, p.cfg.Terminal))
		}).Fatal() {
			return aborted()
		}
	}

	result := p.step(ctx, report, "terminal configuration", config.Strict, func() error {
		data, err := RenderAlacritty(NewAlacrittyConfig(p.cfg.Terminal))
		if err != nil {
			return err
		}
		file, err := p.files.WriteFile("alacritty", filepath.Join(plan.Env.ConfigHome, "alacritty", "alacritty.toml"), data, 0644)
		managed = append(managed, file)
		return err
	})
	if result.Fatal() {
		return aborted()
	}

	if plan.Preferences.InstallShell && !p.bootstrapShell(ctx, report, plan, groups, &managed) {
		return aborted()
	}

	if !p.mode.ConfigOnly {
		if p.step(ctx, report, "nerd font", config.BestEffort, func() error {
			return p.fonts.InstallNerdFont(ctx, p.cfg.Fonts.Name, p.cfg.Fonts.Version, plan.Env.Home, workDir)
		}).Fatal() {
			return aborted()
		}
	}

	p.recordState(report, plan, managed)
	return report, nil
}

func (p *Provisioner) installGroups(ctx context.Context, report *RunReport, plan Plan, groups []config.PackageGroup, workDir string) bool {
	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			report.Add(Failed("packages: "+group.Label, config.Strict, err))
			return false
		}

		if group.Label == config.GroupCUDA {
			repo := p.step(ctx, report, "cuda repository", config.BestEffort, func() error {
				return p.repos.AddCUDARepository(ctx, plan.OS, workDir)
			})
			if repo.Fatal() {
				return false
			}
			if repo.Severity != SeveritySuccess {
				p.logger.Warn("⚠ Skipping CUDA toolkit, repository setup failed")
				continue
			}
		}

		if report.AddGroup(p.groups.Install(ctx, group)).Fatal() {
			return false
		}
	}
	return true
}

func (p *Provisioner) bootstrapShell(ctx context.Context, report *RunReport, plan Plan, groups []config.PackageGroup, managed *[]ManagedFile) bool {
	plugins := p.cfg.Shell.Plugins
	if len(plugins) == 0 {
		plugins = config.DefaultShellPlugins
	}

	if !p.mode.ConfigOnly {
		if p.step(ctx, report, "oh-my-zsh", config.Strict, func() error {
			return p.shell.InstallFramework(ctx, plan.Env.Home)
		}).Fatal() {
			return false
		}
		if p.step(ctx, report, "zsh plugins", config.BestEffort, func() error {
			return p.shell.InstallPlugins(ctx, plan.Env.Home, plugins)
		}).Fatal() {
			return false
		}
	}

	if p.step(ctx, report, "zshrc", config.Strict, func() error {
		data, err := RenderZshrc(NewZshrcData(p.cfg.Shell, plan.Preferences, groups))
		if err != nil {
			return err
		}
		file, err := p.files.WriteFile("zshrc", filepath.Join(plan.Env.Home, ".zshrc"), data, 0644)
		*managed = append(*managed, file)
		return err
	}).Fatal() {
		return false
	}

	if !p.mode.ConfigOnly {
		return !p.step(ctx, report, "login shell", config.BestEffort, func() error {
			return p.shell.SetLoginShell(ctx, plan.Env.Username, plan.Env.Shell)
		}).Fatal()
	}
	return true
}

// step runs fn and records its result
func (p *Provisioner) step(ctx context.Context, report *RunReport, name string, policy config.FailurePolicy, fn func() error) StepResult {
	err := fn()
	// An interrupt stops the run whatever the step's policy.
	if ctxErr := ctx.Err(); ctxErr != nil {
		policy = config.Strict
		if err == nil {
			err = ctxErr
		}
	}
	if err == nil {
		result := Ok(name, "")
		report.Add(result)
		return result
	}

	result := Failed(name, policy, err)
	report.Add(result)
	if result.Fatal() {
		p.logger.Error("✗ Step failed", "step", name, "error", err)
	} else {
		p.logger.Warn("⚠ Step failed, continuing", "step", name, "error", err)
	}
	return result
}

func (p *Provisioner) recordState(report *RunReport, plan Plan, managed []ManagedFile) {
	if p.state == nil || p.mode.DryRun {
		return
	}
	if err := p.state.RecordRun(report, plan.Preferences, managed); err != nil {
		p.logger.Warn("Failed to save state", "path", p.state.Path(), "error", err)
	}
}

// DefaultEnvironment reads the environment of the invoking user
func DefaultEnvironment() (Environment, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Environment{}, fmt.Errorf("failed to determine home directory: %w", err)
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}
	username := filepath.Base(home)
	if u, err := user.Current(); err == nil {
		username = u.Username
	}
	return Environment{
		Home:       home,
		ConfigHome: configHome,
		Username:   username,
		Shell:      os.Getenv("SHELL"),
	}, nil
}
