package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

func TestParse_FullConfig(t *testing.T) {
	data := []byte(`version: "1.0"
packages:
  extra:
    terminal-tools:
      - zoxide
  skip:
    - theme
  apt_flags: ["-y"]
empty_group_policy: succeed
backup: false
terminal:
  font_family: "Hack Nerd Font"
  font_size: 13
shell:
  theme: agnoster
  plugins: [git]
fonts:
  name: Hack
log:
  journal: true
`)

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if got := cfg.Packages.Extra["terminal-tools"]; !reflect.DeepEqual(got, []string{"zoxide"}) {
		t.Errorf("expected extra terminal-tools [zoxide], got %v", got)
	}
	if cfg.EmptyGroupPolicy != EmptyGroupSucceed {
		t.Errorf("expected policy succeed, got %q", cfg.EmptyGroupPolicy)
	}
	if cfg.BackupEnabled() {
		t.Error("expected backup to be disabled")
	}
	if cfg.Terminal.FontSize != 13 {
		t.Errorf("expected font size 13, got %g", cfg.Terminal.FontSize)
	}
	// Unset fields fall back to defaults
	if cfg.Terminal.Opacity != DefaultOpacity {
		t.Errorf("expected default opacity, got %g", cfg.Terminal.Opacity)
	}
	if cfg.Fonts.Version != DefaultNerdFontVers {
		t.Errorf("expected default font version, got %s", cfg.Fonts.Version)
	}
	if !cfg.Log.Journal {
		t.Error("expected journal logging to be enabled")
	}
}

func TestParse_EmptyDocument(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse of empty data failed: %v", err)
	}
	if cfg.EmptyGroupPolicy != EmptyGroupFail {
		t.Errorf("expected default policy fail, got %q", cfg.EmptyGroupPolicy)
	}
	if !cfg.BackupEnabled() {
		t.Error("backups should default to enabled")
	}
	if !reflect.DeepEqual(cfg.Shell.Plugins, DefaultShellPlugins) {
		t.Errorf("expected default plugins, got %v", cfg.Shell.Plugins)
	}
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("packges:\n  skip: [theme]\n"))
	if err == nil {
		t.Fatal("expected an error for an unknown key")
	}
	if !strings.Contains(err.Error(), "packges") {
		t.Errorf("error should name the unknown key, got %v", err)
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	path := filepath.Join(t.TempDir(), "debdesk.yaml")
	if err := os.WriteFile(path, []byte("packages:\n  skip: [theme]\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	viper.SetConfigFile(path)

	cfg, used, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if used != path {
		t.Errorf("expected config path %s, got %s", path, used)
	}
	if !reflect.DeepEqual(cfg.Packages.Skip, []string{"theme"}) {
		t.Errorf("expected skip [theme], got %v", cfg.Packages.Skip)
	}
}

func TestLoad_MissingSearchPathIsNotAnError(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	if path := FindConfigFile(afero.NewOsFs(), []string{t.TempDir()}); path != "" {
		viper.SetConfigFile(path)
	}

	cfg, used, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if used != "" {
		t.Errorf("expected no config file, got %s", used)
	}
	if cfg.Terminal.FontFamily != DefaultFontFamily {
		t.Errorf("expected defaults to be applied, got %q", cfg.Terminal.FontFamily)
	}
}

func TestFindConfigFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	// an ELF binary named like the config
	if err := afero.WriteFile(fs, "/home/user/debdesk", []byte("\x7fELF\x02\x01\x01\x00"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := fs.MkdirAll("/work/debdesk.yaml", 0755); err != nil {
		t.Fatal(err)
	}
	dirs := []string{"/work", "/home/user/.config/debdesk", "/home/user", "/etc/debdesk"}

	if path := FindConfigFile(fs, dirs); path != "" {
		t.Fatalf("expected no config file, got %s", path)
	}

	if err := afero.WriteFile(fs, "/home/user/debdesk.yml", []byte("backup: false\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if path := FindConfigFile(fs, dirs); path != "/home/user/debdesk.yml" {
		t.Errorf("expected /home/user/debdesk.yml, got %q", path)
	}

	if err := afero.WriteFile(fs, "/home/user/.config/debdesk/debdesk.yaml", []byte("backup: true\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if path := FindConfigFile(fs, dirs); path != "/home/user/.config/debdesk/debdesk.yaml" {
		t.Errorf("earlier search directory should win, got %q", path)
	}
}

func TestSearchPaths(t *testing.T) {
	got := SearchPaths("/home/user")
	want := []string{".", "/home/user/.config/debdesk", "/home/user", "/etc/debdesk"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SearchPaths = %v, want %v", got, want)
	}
	if got := SearchPaths(""); !reflect.DeepEqual(got, []string{".", "/etc/debdesk"}) {
		t.Errorf("SearchPaths without home = %v", got)
	}
}

func TestLoad_MissingExplicitFileIsAnError(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.SetConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))

	if _, _, err := Load(); err == nil {
		t.Fatal("expected an error for a missing explicit config file")
	}
}

func TestParse_DesktopThemes(t *testing.T) {
	cfg, err := Parse([]byte("desktop:\n  gtk_theme: Arc\n"))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if cfg.Desktop.GTKTheme != "Arc" {
		t.Errorf("expected gtk theme Arc, got %q", cfg.Desktop.GTKTheme)
	}
	if cfg.Desktop.IconTheme != DefaultIconTheme {
		t.Errorf("expected default icon theme, got %q", cfg.Desktop.IconTheme)
	}
}
