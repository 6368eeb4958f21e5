package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ConfigFileNames are the file names looked for in each search directory
var ConfigFileNames = []string{"debdesk.yaml", "debdesk.yml"}

// SearchPaths lists the directories searched for a config file, in order
func SearchPaths(home string) []string {
	dirs := []string{"."}
	if home != "" {
		dirs = append(dirs, filepath.Join(home, ".config", "debdesk"), home)
	}
	return append(dirs, "/etc/debdesk")
}

// FindConfigFile returns the first regular file in dirs named after
// ConfigFileNames, or "" when there is none. A bare "debdesk", which is
// usually the executable, never matches.
func FindConfigFile(fs afero.Fs, dirs []string) string {
	for _, dir := range dirs {
		for _, name := range ConfigFileNames {
			path := filepath.Join(dir, name)
			if info, err := fs.Stat(path); err == nil && info.Mode().IsRegular() {
				return path
			}
		}
	}
	return ""
}

// Load reads the config file located by viper. A missing file in the search
// path is not an error and yields an empty Config; an explicitly named file
// that cannot be read is.
func Load() (*Config, string, error) {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			cfg := &Config{}
			cfg.ApplyDefaults()
			return cfg, "", nil
		}
		return nil, "", fmt.Errorf("failed to read config file: %w", err)
	}

	path := viper.ConfigFileUsed()
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// LoadFile parses a single config file. Unknown keys are rejected so typos
// surface instead of being silently ignored.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML config data and fills in defaults
func Parse(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills every unset field with its built-in default
func (c *Config) ApplyDefaults() {
	if c.Version == "" {
		c.Version = "1.0"
	}
	c.EmptyGroupPolicy = c.EmptyGroupPolicy.OrDefault()
	if c.Terminal.FontFamily == "" {
		c.Terminal.FontFamily = DefaultFontFamily
	}
	if c.Terminal.FontSize == 0 {
		c.Terminal.FontSize = DefaultFontSize
	}
	if c.Terminal.Opacity == 0 {
		c.Terminal.Opacity = DefaultOpacity
	}
	if c.Shell.Theme == "" {
		c.Shell.Theme = DefaultShellTheme
	}
	if len(c.Shell.Plugins) == 0 {
		c.Shell.Plugins = copyPackages(DefaultShellPlugins)
	}
	if c.Fonts.Name == "" {
		c.Fonts.Name = DefaultNerdFont
	}
	if c.Fonts.Version == "" {
		c.Fonts.Version = DefaultNerdFontVers
	}
	if c.Desktop.GTKTheme == "" {
		c.Desktop.GTKTheme = DefaultGTKTheme
	}
	if c.Desktop.IconTheme == "" {
		c.Desktop.IconTheme = DefaultIconTheme
	}
}
