package pkg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/bashfulrobot/debdesk/internal/config"
)

// DConfSetting is one key written with dconf write. Value is a GVariant
// literal, so strings carry their own quotes.
type DConfSetting struct {
	Path  string
	Value string
}

// DConfManager applies GTK desktop settings. GTK applications started under
// i3 read them through the dconf GSettings backend.
type DConfManager struct {
	logger *slog.Logger
	runner Runner
}

// NewDConfManager creates a new dconf manager
func NewDConfManager(logger *slog.Logger, runner Runner) *DConfManager {
	return &DConfManager{
		logger: logger,
		runner: runner,
	}
}

// QuoteString renders s as a GVariant string literal
func QuoteString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

// DesktopSettings returns the interface keys for the configured themes and
// the terminal font
func DesktopSettings(desktop config.DesktopConfig, terminal config.TerminalConfig) []DConfSetting {
	const iface = "/org/gnome/desktop/interface/"
	settings := []DConfSetting{
		{Path: iface + "gtk-theme", Value: QuoteString(desktop.GTKTheme)},
		{Path: iface + "icon-theme", Value: QuoteString(desktop.IconTheme)},
		{Path: iface + "monospace-font-name", Value: QuoteString(fmt.Sprintf("%s %g", terminal.FontFamily, terminal.FontSize))},
	}
	if strings.HasSuffix(strings.ToLower(desktop.GTKTheme), "-dark") {
		settings = append(settings, DConfSetting{Path: iface + "color-scheme", Value: QuoteString("prefer-dark")})
	}
	return settings
}

// ValidateSetting checks the key path format
func ValidateSetting(s DConfSetting) error {
	switch {
	case !strings.HasPrefix(s.Path, "/"):
		return fmt.Errorf("dconf path '%s' must start with '/'", s.Path)
	case strings.HasSuffix(s.Path, "/"):
		return fmt.Errorf("dconf path '%s' names a directory, not a key", s.Path)
	case strings.Contains(s.Path, "//"):
		return fmt.Errorf("dconf path '%s' contains double slashes", s.Path)
	case s.Value == "":
		return fmt.Errorf("dconf path '%s' has an empty value", s.Path)
	}
	return nil
}

// ApplySettings writes every setting whose current value differs. A failed
// key does not stop the others.
func (dm *DConfManager) ApplySettings(ctx context.Context, settings []DConfSetting) error {
	if len(settings) == 0 {
		dm.logger.Debug("No dconf settings to apply")
		return nil
	}
	if _, err := dm.runner.LookPath("dconf"); err != nil {
		return fmt.Errorf("dconf command not found - install the dconf-cli package")
	}

	var errs []error
	changed := 0
	for _, s := range settings {
		if err := ValidateSetting(s); err != nil {
			errs = append(errs, err)
			continue
		}
		current, err := dm.GetSetting(ctx, s.Path)
		if err == nil && current == s.Value {
			dm.logger.Debug("DConf value already set", "path", s.Path, "value", s.Value)
			continue
		}
		if err := dm.setSetting(ctx, s); err != nil {
			errs = append(errs, err)
			continue
		}
		changed++
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	dm.logger.Info("✓ Desktop settings applied", "changed", changed, "total", len(settings))
	return nil
}

// GetSetting reads the current value of path. An unset key reads as "".
func (dm *DConfManager) GetSetting(ctx context.Context, path string) (string, error) {
	output, err := dm.runner.Output(ctx, Command{Name: "dconf", Args: []string{"read", path}})
	if err != nil {
		return "", fmt.Errorf("dconf read failed: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

func (dm *DConfManager) setSetting(ctx context.Context, s DConfSetting) error {
	dm.logger.Debug("Setting dconf value", "path", s.Path, "value", s.Value)
	if err := dm.runner.Run(ctx, Command{Name: "dconf", Args: []string{"write", s.Path, s.Value}}, io.Discard); err != nil {
		return fmt.Errorf("failed to set dconf setting '%s': %w", s.Path, err)
	}
	return nil
}
