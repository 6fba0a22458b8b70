// Package config holds the simulator settings stored in config.json.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/term"
)

// EnvPath overrides the config file location.
const EnvPath = "ARDUSIM_CONFIG"

// Backend names.
const (
	BackendAuto     = "auto"
	BackendSDL2     = "sdl2"
	BackendTerminal = "terminal"
	BackendHeadless = "headless"
)

// Config represents the application configuration stored in config.json
type Config struct {
	Version   int            `json:"version"`
	Backend   string         `json:"backend"` // "auto", "sdl2", "terminal" or "headless"
	Core      string         `json:"core"`
	Frequency uint64         `json:"frequency"`
	Scale     int            `json:"scale"`
	VSync     bool           `json:"vsync"`
	LogLevel  string         `json:"log_level"`
	Audio     AudioConfig    `json:"audio"`
	Headless  HeadlessConfig `json:"headless"`
	StatsView string         `json:"stats_view,omitempty"` // listen address, empty disables
}

type AudioConfig struct {
	Enabled   bool  `json:"enabled"`
	Amplitude int16 `json:"amplitude"` // 0 means full scale
}

// HeadlessConfig configures unattended runs.
type HeadlessConfig struct {
	Frames           int    `json:"frames"`
	SnapshotInterval int    `json:"snapshot_interval"`
	SnapshotDir      string `json:"snapshot_dir,omitempty"`
	WAVPath          string `json:"wav_path,omitempty"`
	Script           string `json:"script,omitempty"`
}

// DefaultConfig returns the settings used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Version:   1,
		Backend:   BackendAuto,
		Core:      "pattern",
		Frequency: 16_000_000,
		Scale:     2,
		VSync:     true,
		LogLevel:  "info",
		Audio: AudioConfig{
			Enabled: true,
		},
		Headless: HeadlessConfig{
			Frames: 600,
		},
	}
}

// Path returns $ARDUSIM_CONFIG, or config.json under the user config dir.
func Path() (string, error) {
	if p := os.Getenv(EnvPath); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "ardusim", "config.json"), nil
}

// Load loads the configuration from path.
// If the file doesn't exist, it returns default configuration.
// If the file is corrupted or invalid, it returns an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// fields absent from the file keep their defaults
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path atomically, creating the directory if needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendAuto, BackendSDL2, BackendTerminal, BackendHeadless:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Core == "" {
		return errors.New("core must be set")
	}
	if c.Frequency == 0 {
		return errors.New("frequency must be positive")
	}
	if c.Scale < 1 {
		return fmt.Errorf("scale must be at least 1, got %d", c.Scale)
	}
	if c.Headless.Frames < 0 || c.Headless.SnapshotInterval < 0 {
		return errors.New("headless frame counts must not be negative")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// ResolveBackend turns "auto" into a concrete backend: headless when
// stdout is not a terminal, SDL2 when it was compiled in, otherwise the
// terminal backend.
func (c *Config) ResolveBackend(sdlAvailable bool) string {
	return c.resolveBackend(sdlAvailable, func() bool {
		return term.IsTerminal(int(os.Stdout.Fd()))
	})
}

func (c *Config) resolveBackend(sdlAvailable bool, isTerminal func() bool) string {
	if c.Backend != BackendAuto {
		return c.Backend
	}
	switch {
	case !isTerminal():
		return BackendHeadless
	case sdlAvailable:
		return BackendSDL2
	default:
		return BackendTerminal
	}
}
