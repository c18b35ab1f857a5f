// Package config handles loading and saving plotmap configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/plotmap/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const appName = "plotmap"

// RenderConfig holds heatmap drawing preferences.
type RenderConfig struct {
	Colormap string `yaml:"colormap,omitempty"`  // palette name or #rrggbb
	Format   string `yaml:"format,omitempty"`    // png, svg or html
	CellSize int    `yaml:"cell_size,omitempty"` // pixels per plot
	NAColor  string `yaml:"na_color,omitempty"`  // fill for not-applicable plots
}

// Config is the top-level configuration for plotmap.
type Config struct {
	Render    RenderConfig `yaml:"render,omitempty"`
	OutputDir string       `yaml:"output_dir,omitempty"`
	Workers   int          `yaml:"workers,omitempty"` // concurrent renders for -all
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Render: RenderConfig{
			Colormap: "Greens",
			Format:   "png",
			CellSize: 36,
			NAColor:  "#3b3153",
		},
		OutputDir: ".",
		Workers:   4,
	}
}

// ConfigDir returns the XDG config directory for plotmap.
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

// LoadFrom reads config from a specific path. Missing keys keep their
// defaults; a missing file yields DefaultConfig.
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
	cfg.OutputDir = expandHome(cfg.OutputDir)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
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

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Validate reports the first out-of-range setting.
func (c Config) Validate() error {
	switch strings.ToLower(c.Render.Format) {
	case "png", "svg", "html":
	default:
		return fmt.Errorf("render.format %q: want png, svg or html", c.Render.Format)
	}
	if c.Render.CellSize < 4 || c.Render.CellSize > 512 {
		return fmt.Errorf("render.cell_size %d: want 4..512", c.Render.CellSize)
	}
	if !hexColor.MatchString(c.Render.NAColor) {
		return fmt.Errorf("render.na_color %q: want #rrggbb", c.Render.NAColor)
	}
	if strings.TrimSpace(c.Render.Colormap) == "" {
		return fmt.Errorf("render.colormap is empty")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers %d: want at least 1", c.Workers)
	}
	return nil
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
