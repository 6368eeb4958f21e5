package config

import "fmt"

// Mode holds the run-mode flags taken from the command line
type Mode struct {
	ConfigOnly     bool
	ExportPackages bool
	ExportPath     string
	NonInteractive bool
	DryRun         bool
	NoProgress     bool
}

// Prompts reports whether preferences should be asked for. Export runs never
// prompt so they can be scripted.
func (m Mode) Prompts() bool {
	return !m.NonInteractive && !m.ExportPackages
}

// Hardware is the detection input that may change preference defaults
type Hardware struct {
	HasNvidia    bool
	NvidiaDriver string
}

// Preferences is resolved once before any step runs and is only ever passed
// by value afterwards
type Preferences struct {
	InstallWM       bool
	InstallNvidia   bool
	InstallCUDA     bool
	InstallOptional bool
	InstallShell    bool
	NvidiaDriver    string
}

// Prompter asks a yes/no question and returns the answer
type Prompter interface {
	Confirm(question string, defaultYes bool) (bool, error)
}

// DefaultsPrompter answers every question with its default
type DefaultsPrompter struct{}

func (DefaultsPrompter) Confirm(_ string, defaultYes bool) (bool, error) {
	return defaultYes, nil
}

// DefaultPreferences returns the answers a non-interactive run uses
func DefaultPreferences(hw Hardware) Preferences {
	driver := hw.NvidiaDriver
	if driver == "" {
		driver = DefaultNvidiaDriver
	}
	return Preferences{
		InstallWM:       true,
		InstallNvidia:   hw.HasNvidia,
		InstallCUDA:     false,
		InstallOptional: false,
		InstallShell:    true,
		NvidiaDriver:    driver,
	}
}

// ResolvePreferences builds the run's Preferences. When the mode does not
// prompt, the defaults are returned unchanged.
func ResolvePreferences(mode Mode, hw Hardware, prompter Prompter) (Preferences, error) {
	prefs := DefaultPreferences(hw)
	if !mode.Prompts() {
		return prefs, nil
	}
	if prompter == nil {
		prompter = DefaultsPrompter{}
	}

	var err error
	ask := func(dst *bool, question string) {
		if err != nil {
			return
		}
		var answer bool
		answer, err = prompter.Confirm(question, *dst)
		if err == nil {
			*dst = answer
		}
	}

	ask(&prefs.InstallWM, "Install the i3 window manager?")
	ask(&prefs.InstallShell, "Install zsh with oh-my-zsh?")
	if !mode.ConfigOnly {
		if hw.HasNvidia {
			ask(&prefs.InstallNvidia, fmt.Sprintf("NVIDIA GPU detected. Install %s?", prefs.NvidiaDriver))
		}
		if prefs.InstallNvidia {
			ask(&prefs.InstallCUDA, "Install the CUDA toolkit?")
		}
		ask(&prefs.InstallOptional, "Install optional tools?")
	}
	if err != nil {
		return Preferences{}, fmt.Errorf("failed to read preferences: %w", err)
	}

	// CUDA without the driver is never useful
	if !prefs.InstallNvidia {
		prefs.InstallCUDA = false
	}
	return prefs, nil
}
