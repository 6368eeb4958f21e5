package pkg

import (
	"bytes"
	"fmt"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/BurntSushi/toml"
	"github.com/bashfulrobot/debdesk/internal/assets"
	"github.com/bashfulrobot/debdesk/internal/config"
	"github.com/spf13/afero"
)

// I3StatusData selects the optional blocks of the status bar
type I3StatusData struct {
	// Batteries are the N of /sys/class/power_supply/BATN.
	Batteries []int
	// Wireless are interface names with a wireless directory.
	Wireless []string
}

// ProbeStatusHardware looks for batteries and wireless interfaces under sysfs
func ProbeStatusHardware(fs afero.Fs) I3StatusData {
	var data I3StatusData

	batteries, _ := afero.Glob(fs, "/sys/class/power_supply/BAT*")
	for _, b := range batteries {
		if n, err := strconv.Atoi(strings.TrimPrefix(filepath.Base(b), "BAT")); err == nil {
			data.Batteries = append(data.Batteries, n)
		}
	}
	sort.Ints(data.Batteries)

	wireless, _ := afero.Glob(fs, "/sys/class/net/*/wireless")
	for _, w := range wireless {
		data.Wireless = append(data.Wireless, filepath.Base(filepath.Dir(w)))
	}
	sort.Strings(data.Wireless)

	return data
}

// RenderI3Status renders the i3status configuration
func RenderI3Status(data I3StatusData) ([]byte, error) {
	return renderTemplate("i3status.tmpl", data)
}

// ZshrcData feeds the .zshrc template
type ZshrcData struct {
	Theme   string
	Plugins []string
	// CUDA adds the toolkit to PATH.
	CUDA bool
	// Batcat aliases cat to Debian's bat binary.
	Batcat bool
}

// NewZshrcData builds the template input from config, preferences and the
// groups selected for this run
func NewZshrcData(cfg config.ShellConfig, prefs config.Preferences, groups []config.PackageGroup) ZshrcData {
	data := ZshrcData{
		Theme:   cfg.Theme,
		Plugins: cfg.Plugins,
		CUDA:    prefs.InstallCUDA,
		Batcat:  slices.ContainsFunc(groups, func(g config.PackageGroup) bool { return slices.Contains(g.Packages, "bat") }),
	}
	if data.Theme == "" {
		data.Theme = config.DefaultShellTheme
	}
	if len(data.Plugins) == 0 {
		data.Plugins = config.DefaultShellPlugins
	}
	return data
}

// RenderZshrc renders ~/.zshrc
func RenderZshrc(data ZshrcData) ([]byte, error) {
	return renderTemplate("zshrc.tmpl", data)
}

func renderTemplate(name string, data any) ([]byte, error) {
	src, err := assets.Template(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load template %s: %w", name, err)
	}

	tmpl, err := template.New(name).Funcs(template.FuncMap{"join": strings.Join}).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// AlacrittyConfig is the subset of alacritty.toml debdesk manages
type AlacrittyConfig struct {
	General AlacrittyGeneral `toml:"general"`
	Window  AlacrittyWindow  `toml:"window"`
	Font    AlacrittyFont    `toml:"font"`
	Colors  AlacrittyColors  `toml:"colors"`
}

type AlacrittyGeneral struct {
	LiveConfigReload bool `toml:"live_config_reload"`
}

type AlacrittyWindow struct {
	Opacity      float64          `toml:"opacity"`
	DynamicTitle bool             `toml:"dynamic_title"`
	Padding      AlacrittyPadding `toml:"padding"`
}

type AlacrittyPadding struct {
	X int `toml:"x"`
	Y int `toml:"y"`
}

type AlacrittyFont struct {
	Size   float64       `toml:"size"`
	Normal AlacrittyFace `toml:"normal"`
	Bold   AlacrittyFace `toml:"bold"`
}

type AlacrittyFace struct {
	Family string `toml:"family"`
	Style  string `toml:"style"`
}

type AlacrittyColors struct {
	Primary AlacrittyPrimary `toml:"primary"`
}

type AlacrittyPrimary struct {
	Background string `toml:"background"`
	Foreground string `toml:"foreground"`
}

// NewAlacrittyConfig builds the terminal configuration from the config file
// section, falling back to defaults for unset values
func NewAlacrittyConfig(cfg config.TerminalConfig) AlacrittyConfig {
	family := cfg.FontFamily
	if family == "" {
		family = config.DefaultFontFamily
	}
	size := cfg.FontSize
	if size == 0 {
		size = config.DefaultFontSize
	}
	opacity := cfg.Opacity
	if opacity == 0 {
		opacity = config.DefaultOpacity
	}

	return AlacrittyConfig{
		General: AlacrittyGeneral{LiveConfigReload: true},
		Window: AlacrittyWindow{
			Opacity:      opacity,
			DynamicTitle: true,
			Padding:      AlacrittyPadding{X: 8, Y: 6},
		},
		Font: AlacrittyFont{
			Size:   size,
			Normal: AlacrittyFace{Family: family, Style: "Regular"},
			Bold:   AlacrittyFace{Family: family, Style: "Bold"},
		},
		Colors: AlacrittyColors{
			Primary: AlacrittyPrimary{Background: "#1e1e2e", Foreground: "#cdd6f4"},
		},
	}
}

// RenderAlacritty encodes cfg as alacritty.toml
func RenderAlacritty(cfg AlacrittyConfig) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# alacritty.toml generated by debdesk")
	fmt.Fprintln(&buf)

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode alacritty config: %w", err)
	}
	return buf.Bytes(), nil
}
