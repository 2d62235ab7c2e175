// Package config handles loading and saving pensum configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/pensum/config.yaml
//   - State:   ~/.local/state/pensum/ (last hovered subject)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/pensum/pkg/layout"
	"github.com/vanderheijden86/pensum/pkg/view"
)

const appName = "pensum"

// CurriculumConfig says where the curriculum comes from and how strictly it
// is validated.
type CurriculumConfig struct {
	File    string `yaml:"file,omitempty"`    // Explicit curriculum path
	Lenient bool   `yaml:"lenient,omitempty"` // Report validation errors as warnings
}

// ServerConfig controls `pensum serve`.
type ServerConfig struct {
	Addr        string `yaml:"addr,omitempty"`         // Listen address (default 127.0.0.1:0)
	OpenBrowser bool   `yaml:"open_browser,omitempty"` // Launch a browser once listening
}

// UIConfig holds terminal view preferences.
type UIConfig struct {
	ColumnWidth int  `yaml:"column_width,omitempty"` // Width of one semester column
	Watch       bool `yaml:"watch,omitempty"`        // Reload on file changes
}

// Config is the top-level configuration for pensum.
type Config struct {
	Curriculum CurriculumConfig  `yaml:"curriculum,omitempty"`
	Layout     layout.Dimensions `yaml:"layout,omitempty"`
	Theme      view.Palette      `yaml:"theme,omitempty"`
	Server     ServerConfig      `yaml:"server,omitempty"`
	UI         UIConfig          `yaml:"ui,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Layout: layout.DefaultDimensions(),
		Theme:  view.DefaultPalette(),
		Server: ServerConfig{
			Addr:        "127.0.0.1:0",
			OpenBrowser: true,
		},
		UI: UIConfig{
			ColumnWidth: 28,
			Watch:       true,
		},
	}
}

// ViewConfig returns the layout and palette settings for a GraphView.
// Zero values fall back to the defaults.
func (c Config) ViewConfig() view.Config {
	return view.Config{
		Dimensions: c.Layout.WithDefaults(),
		Palette:    view.DefaultPalette().Merge(c.Theme),
	}
}

// ConfigDir returns the XDG config directory for pensum.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// StateDir returns the XDG state directory for pensum.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", appName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Curriculum.File = expandHome(cfg.Curriculum.File)
	cfg.Layout = cfg.Layout.WithDefaults()
	cfg.Theme = view.DefaultPalette().Merge(cfg.Theme)
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// LastHoveredPath is the state file remembering the TUI cursor.
func LastHoveredPath() string {
	dir := StateDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "last_subject")
}

// LoadLastHovered returns the remembered subject id, or "".
func LoadLastHovered() string {
	path := LastHoveredPath()
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// SaveLastHovered remembers id for the next TUI session.
func SaveLastHovered(id string) error {
	path := LastHoveredPath()
	if path == "" {
		return fmt.Errorf("cannot determine state directory")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	return os.WriteFile(path, []byte(id+"\n"), 0o644)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
