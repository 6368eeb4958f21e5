package debdesk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/bashfulrobot/debdesk/internal/config"
	"github.com/bashfulrobot/debdesk/internal/pkg"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func runInstall(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	mode := modeFromFlags()

	cfg, err := loadValidConfig()
	if err != nil {
		return err
	}

	logPath := viper.GetString("log-file")
	if logPath == "" {
		logPath = cfg.Log.File
	}
	runLog, err := config.NewRunLog(config.RunLogOptions{Path: logPath, Journal: cfg.Log.Journal})
	if err != nil {
		return err
	}
	defer runLog.Close()
	logger := runLog.Logger

	if mode.DryRun {
		logger.Info("Running in dry-run mode - no changes will be made")
	}

	fs := afero.NewOsFs()
	runner := pkg.NewExecRunner(logger, mode.DryRun)

	osInfo, err := pkg.DetectOS(ctx, fs, runner)
	if err != nil {
		// Exporting a package list is harmless anywhere
		if !mode.ExportPackages || !errors.Is(err, pkg.ErrNotDebian) {
			return err
		}
		logger.Warn("⚠ Not a Debian system, exporting the default package list", "os", osInfo.PrettyName)
	} else {
		logger.Info("Detected system", "os", osInfo.PrettyName, "arch", osInfo.Machine)
	}

	ux := pkg.NewUXManager(logger, mode.NoProgress)

	var hw config.Hardware
	_ = ux.WithSpinner("Detecting graphics hardware", func() error {
		hw = pkg.NewGPUDetector(runner).Detect(ctx, osInfo)
		return nil
	})
	if hw.HasNvidia {
		logger.Info("NVIDIA GPU detected", "driver", hw.NvidiaDriver)
	}

	var prompter config.Prompter = config.DefaultsPrompter{}
	if mode.Prompts() {
		prompter = pkg.NewInteractiveManager(logger)
	}
	prefs, err := config.ResolvePreferences(mode, hw, prompter)
	if err != nil {
		return err
	}
	logger.Debug("Resolved preferences",
		"wm", prefs.InstallWM,
		"nvidia", prefs.InstallNvidia,
		"cuda", prefs.InstallCUDA,
		"optional", prefs.InstallOptional,
		"shell", prefs.InstallShell)

	if mode.ExportPackages {
		return exportPackages(logger, fs, mode.ExportPath, config.ResolveGroups(prefs, cfg))
	}

	env, err := pkg.DefaultEnvironment()
	if err != nil {
		return err
	}

	var downloader pkg.Downloader = pkg.NewHTTPDownloader(logger, fs, mode.DryRun)
	if !mode.DryRun {
		downloader = pkg.NewCachingDownloader(pkg.NewCacheManager(logger, fs), downloader)
	}

	provisioner := pkg.NewProvisioner(pkg.ProvisionerOptions{
		Logger:     logger,
		Config:     cfg,
		Mode:       mode,
		Fs:         fs,
		Runner:     runner,
		Downloader: downloader,
		Cloner:     pkg.NewGitCloner(runLog.Transcript()),
		State:      pkg.NewStateManager(logger, fs),
		UX:         ux,
		Output:     os.Stdout,
	})

	report, runErr := provisioner.Run(ctx, pkg.Plan{
		RunID:       runLog.ID,
		OS:          osInfo,
		Preferences: prefs,
		Env:         env,
		Transcript:  runLog.Transcript(),
	})

	fmt.Fprint(os.Stdout, "\n"+ux.RenderSummary(report))
	logger.Info("Installation log", "path", runLog.Path)

	if errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("interrupted: %w", runErr)
	}
	if runErr == nil && prefs.InstallShell && !mode.DryRun {
		config.Info("Log out and back in to start using zsh")
	}
	return runErr
}

// loadValidConfig reads the optional config file and rejects it when
// validation finds errors
func loadValidConfig() (*config.Config, error) {
	cfg, path, err := config.Load()
	if err != nil {
		return nil, err
	}
	if path == "" {
		config.Debug("No config file found, using defaults")
		return cfg, nil
	}

	config.Debug("Using config file", "path", path)
	result := config.Validate(cfg, path)
	if result.HasErrors() {
		return nil, &config.ValidationFailedError{Result: result}
	}
	if len(result.Warnings) > 0 {
		fmt.Fprint(os.Stderr, config.FormatValidationResultSimple(result))
	}
	return cfg, nil
}

func exportPackages(logger *slog.Logger, fs afero.Fs, path string, groups []config.PackageGroup) error {
	if err := pkg.ExportPackageList(fs, path, groups); err != nil {
		return err
	}
	total := 0
	for _, g := range groups {
		total += len(g.Packages)
	}
	logger.Info("✓ Package list exported", "path", path, "groups", len(groups), "packages", total)
	return nil
}
