package config

// DefaultAptFlags are passed to every apt-get install call unless the config
// file overrides them with packages.apt_flags
var DefaultAptFlags = []string{"-y", "-q", "--no-install-recommends"}

// DefaultEmptyGroupPolicy keeps the historical behaviour of treating an empty
// group as a failure
const DefaultEmptyGroupPolicy = EmptyGroupFail

const (
	DefaultFontFamily   = "JetBrainsMono Nerd Font"
	DefaultFontSize     = 11.0
	DefaultOpacity      = 0.95
	DefaultShellTheme   = "robbyrussell"
	DefaultNerdFont     = "JetBrainsMono"
	DefaultNerdFontVers = "v3.2.1"
	DefaultExportPath   = "debdesk-packages.txt"
	DefaultGTKTheme     = "Arc-Dark"
	DefaultIconTheme    = "Papirus-Dark"
)

// DefaultShellPlugins are enabled in the generated .zshrc
var DefaultShellPlugins = []string{"git", "zsh-autosuggestions", "zsh-syntax-highlighting"}

// Group labels. They double as the keys accepted by packages.extra and
// packages.skip.
const (
	GroupCore          = "core"
	GroupWindowManager = "window-manager"
	GroupUI            = "user-interface"
	GroupFileManager   = "file-manager"
	GroupAudio         = "audio"
	GroupUtilities     = "utilities"
	GroupTerminalTools = "terminal-tools"
	GroupFonts         = "fonts"
	GroupBuildTools    = "build-tools"
	GroupTheme         = "theme"
	GroupShell         = "shell"
	GroupNvidia        = "nvidia-driver"
	GroupCUDA          = "cuda"
	GroupOptional      = "optional-tools"
)

var (
	corePackages = []string{
		"curl", "wget", "git", "unzip", "ca-certificates", "gnupg",
		"lsb-release", "software-properties-common", "xdg-user-dirs",
	}
	windowManagerPackages = []string{
		"i3-wm", "i3status", "i3lock", "xss-lock", "dex", "rofi", "picom", "feh", "dunst",
	}
	uiPackages = []string{
		"xorg", "xinit", "lightdm", "lxappearance", "libnotify-bin", "arandr",
	}
	fileManagerPackages = []string{
		"thunar", "thunar-archive-plugin", "gvfs-backends", "file-roller",
	}
	audioPackages = []string{
		"pipewire", "pipewire-pulse", "wireplumber", "pavucontrol", "pulsemixer",
	}
	utilityPackages = []string{
		"brightnessctl", "network-manager-gnome", "blueman", "flameshot", "xclip", "playerctl",
	}
	terminalToolPackages = []string{
		"alacritty", "tmux", "fzf", "ripgrep", "bat", "htop", "neovim", "jq",
	}
	fontPackages = []string{
		"fonts-font-awesome", "fonts-noto-color-emoji", "fonts-jetbrains-mono", "fontconfig",
	}
	buildToolPackages = []string{
		"build-essential", "cmake", "pkg-config", "python3-pip",
	}
	themePackages = []string{
		"arc-theme", "papirus-icon-theme", "adwaita-icon-theme", "dconf-cli",
	}
	shellPackages = []string{
		"zsh",
	}
	cudaPackages = []string{
		"cuda-toolkit",
	}
	optionalPackages = []string{
		"btop", "ncdu", "tldr", "vlc", "gimp",
	}
)

// DefaultNvidiaDriver is installed when driver enumeration is unavailable
const DefaultNvidiaDriver = "nvidia-driver"

// copyPackages returns a copy so callers can append without touching the
// package-level lists
func copyPackages(packages []string) []string {
	result := make([]string, len(packages))
	copy(result, packages)
	return result
}

// GetAptFlags returns the install flags to use, preferring the override
func GetAptFlags(override []string) []string {
	if len(override) > 0 {
		return copyPackages(override)
	}
	return copyPackages(DefaultAptFlags)
}
