package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// ValidationError represents a single validation error or warning
type ValidationError struct {
	Type    string // "error", "warning"
	Title   string // Short error title
	File    string // File path where error occurred
	Line    int    // Line number (if available)
	Column  int    // Column number (if available)
	Field   string // YAML field path (e.g., "terminal.font_size")
	Value   string // The problematic value
	Message string // Main error message
	Help    string // How to fix it
}

// ValidationResult contains all validation errors and warnings
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
	Valid    bool
}

// ValidationFailedError is returned when configuration validation fails
type ValidationFailedError struct {
	Result *ValidationResult
}

func (e *ValidationFailedError) Error() string {
	return FormatValidationResultSimple(e.Result) + FormatQuickFixSimple(e.Result)
}

// Add adds a validation error to the result
func (vr *ValidationResult) Add(err ValidationError) {
	if err.Type == "warning" {
		vr.Warnings = append(vr.Warnings, err)
	} else {
		vr.Errors = append(vr.Errors, err)
		vr.Valid = false
	}
}

// HasErrors returns true if there are validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// Debian policy: lowercase alphanumerics plus + - . and at least two chars
var packageNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9+.-]+$`)

// ValidPackageName reports whether name is a valid Debian package name
func ValidPackageName(name string) bool {
	return packageNamePattern.MatchString(name)
}

type validator struct {
	result *ValidationResult
	pos    *PositionedConfig
	file   string
}

func (v *validator) add(kind, field, value, title, help string) {
	line, col := v.pos.Position(field)
	v.result.Add(ValidationError{
		Type:   kind,
		Title:  title,
		File:   v.file,
		Line:   line,
		Column: col,
		Field:  field,
		Value:  value,
		Help:   help,
	})
}

// Validate checks cfg for problems. configPath is optional; when set it is
// re-parsed to attach line numbers to each finding.
func Validate(cfg *Config, configPath string) *ValidationResult {
	v := &validator{result: &ValidationResult{Valid: true}, file: configPath}
	if configPath != "" {
		if pos, err := ParseWithPosition(configPath); err == nil {
			v.pos = pos
		}
	}
	if cfg == nil {
		return v.result
	}

	validateVersion(cfg, v)
	validatePackages(cfg, v)
	validatePolicy(cfg, v)
	validateTerminal(cfg, v)
	validateFonts(cfg, v)

	return v.result
}

func validateVersion(cfg *Config, v *validator) {
	if cfg.Version != "" && cfg.Version != "1.0" {
		v.add("warning", "version", cfg.Version, "unsupported version",
			`only version "1.0" is understood; newer keys may be ignored`)
	}
}

func validatePackages(cfg *Config, v *validator) {
	for label, packages := range cfg.Packages.Extra {
		field := "packages.extra." + label
		if strings.TrimSpace(label) == "" {
			v.add("error", "packages.extra", label, "empty group label", "give every extra group a name")
			continue
		}
		if len(packages) == 0 {
			help := "add packages or remove the group"
			if cfg.EmptyGroupPolicy.OrDefault() == EmptyGroupFail {
				help = "an empty group fails the run unless empty_group_policy is \"succeed\""
			}
			v.add("warning", field, label, "empty package group", help)
		}
		for i, name := range packages {
			itemField := fmt.Sprintf("%s.%d", field, i)
			if name == "" {
				v.add("error", itemField, name, "empty package name", "remove empty package entries from your lists")
				continue
			}
			if !ValidPackageName(name) {
				v.add("error", itemField, name, "invalid package name",
					"package names use lowercase letters, digits, '+', '-' and '.'")
			}
		}
	}

	known := KnownGroupLabels()
	for i, label := range cfg.Packages.Skip {
		field := fmt.Sprintf("packages.skip.%d", i)
		if label == GroupCore {
			v.add("warning", field, label, "skipping core group", "later groups assume curl, git and gnupg are present")
			continue
		}
		if _, custom := cfg.Packages.Extra[label]; !custom && !slices.Contains(known, label) {
			v.add("warning", field, label, "unknown group label",
				"known groups: "+strings.Join(known, ", "))
		}
	}

	for i, flag := range cfg.Packages.AptFlags {
		if !strings.HasPrefix(flag, "-") {
			v.add("error", fmt.Sprintf("packages.apt_flags.%d", i), flag, "invalid apt flag", "apt flags must start with '-'")
		}
	}
}

func validatePolicy(cfg *Config, v *validator) {
	if !cfg.EmptyGroupPolicy.Valid() {
		v.add("error", "empty_group_policy", string(cfg.EmptyGroupPolicy), "invalid empty group policy",
			`use "fail" or "succeed"`)
	}
}

func validateTerminal(cfg *Config, v *validator) {
	if size := cfg.Terminal.FontSize; size < 4 || size > 72 {
		v.add("error", "terminal.font_size", fmt.Sprintf("%g", size), "font size out of range", "use a size between 4 and 72")
	}
	if op := cfg.Terminal.Opacity; op <= 0 || op > 1 {
		v.add("error", "terminal.opacity", fmt.Sprintf("%g", op), "opacity out of range", "use a value in (0, 1]")
	}
}

func validateFonts(cfg *Config, v *validator) {
	if cfg.Fonts.Version != "" && !strings.HasPrefix(cfg.Fonts.Version, "v") {
		v.add("warning", "fonts.version", cfg.Fonts.Version, "unexpected font release tag",
			`nerd-fonts release tags look like "v3.2.1"`)
	}
}
