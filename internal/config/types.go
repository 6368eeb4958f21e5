package config

// Config represents the optional debdesk.yaml file. Every field has a usable
// zero value so a missing file behaves like an empty one.
type Config struct {
	Version          string           `yaml:"version" mapstructure:"version"`
	Packages         PackageOverrides `yaml:"packages" mapstructure:"packages"`
	EmptyGroupPolicy EmptyGroupPolicy `yaml:"empty_group_policy,omitempty" mapstructure:"empty_group_policy"`
	Backup           *bool            `yaml:"backup,omitempty" mapstructure:"backup"`
	Terminal         TerminalConfig   `yaml:"terminal" mapstructure:"terminal"`
	Shell            ShellConfig      `yaml:"shell" mapstructure:"shell"`
	Fonts            FontConfig       `yaml:"fonts" mapstructure:"fonts"`
	Desktop          DesktopConfig    `yaml:"desktop" mapstructure:"desktop"`
	Log              LogConfig        `yaml:"log" mapstructure:"log"`
}

// PackageOverrides adjusts the built-in package groups
type PackageOverrides struct {
	// Extra appends packages to a group, keyed by group label. Unknown labels
	// create a new best-effort group that runs after the built-in ones.
	Extra map[string][]string `yaml:"extra,omitempty" mapstructure:"extra"`
	// Skip removes whole groups by label.
	Skip []string `yaml:"skip,omitempty" mapstructure:"skip"`
	// AptFlags replaces the default apt-get install flags.
	AptFlags []string `yaml:"apt_flags,omitempty" mapstructure:"apt_flags"`
}

// TerminalConfig feeds the generated alacritty.toml
type TerminalConfig struct {
	FontFamily string  `yaml:"font_family,omitempty" mapstructure:"font_family"`
	FontSize   float64 `yaml:"font_size,omitempty" mapstructure:"font_size"`
	Opacity    float64 `yaml:"opacity,omitempty" mapstructure:"opacity"`
}

// ShellConfig feeds the generated .zshrc
type ShellConfig struct {
	Theme   string   `yaml:"theme,omitempty" mapstructure:"theme"`
	Plugins []string `yaml:"plugins,omitempty" mapstructure:"plugins"`
}

// FontConfig selects the Nerd Font release to install
type FontConfig struct {
	Name    string `yaml:"name,omitempty" mapstructure:"name"`
	Version string `yaml:"version,omitempty" mapstructure:"version"`
}

// DesktopConfig names the GTK and icon themes written to dconf
type DesktopConfig struct {
	GTKTheme  string `yaml:"gtk_theme,omitempty" mapstructure:"gtk_theme"`
	IconTheme string `yaml:"icon_theme,omitempty" mapstructure:"icon_theme"`
}

// LogConfig controls the installation log
type LogConfig struct {
	File    string `yaml:"file,omitempty" mapstructure:"file"`
	Journal bool   `yaml:"journal,omitempty" mapstructure:"journal"`
}

// BackupEnabled reports whether pre-existing config directories are moved
// aside before the bundled tree is copied in. Defaults to true.
func (c *Config) BackupEnabled() bool {
	if c == nil || c.Backup == nil {
		return true
	}
	return *c.Backup
}

// FailurePolicy decides what a failed package group means for the run
type FailurePolicy int

const (
	// Strict groups abort the run when their install call fails.
	Strict FailurePolicy = iota
	// BestEffort groups log the failure and let the run continue.
	BestEffort
)

func (p FailurePolicy) String() string {
	switch p {
	case Strict:
		return "strict"
	case BestEffort:
		return "best-effort"
	default:
		return "unknown"
	}
}

// EmptyGroupPolicy decides how a group with no packages is reported
type EmptyGroupPolicy string

const (
	// EmptyGroupFail reports an empty group as a failed "nothing to do".
	EmptyGroupFail EmptyGroupPolicy = "fail"
	// EmptyGroupSucceed reports an empty group as success.
	EmptyGroupSucceed EmptyGroupPolicy = "succeed"
)

// Valid reports whether p is a known policy. The empty string is valid and
// resolves to the default.
func (p EmptyGroupPolicy) Valid() bool {
	switch p {
	case "", EmptyGroupFail, EmptyGroupSucceed:
		return true
	}
	return false
}

// OrDefault resolves the empty value to EmptyGroupFail
func (p EmptyGroupPolicy) OrDefault() EmptyGroupPolicy {
	if p == "" {
		return DefaultEmptyGroupPolicy
	}
	return p
}

// PackageGroup is a named, ordered set of apt packages installed together
type PackageGroup struct {
	Label    string
	Packages []string
	Policy   FailurePolicy
}
