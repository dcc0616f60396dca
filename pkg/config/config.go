// Package config handles loading and saving jg configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/jamgantt/config.yaml
//   - State:   ~/.local/state/jamgantt/ (jg.log)
//   - Data:    ~/.local/share/jamgantt/ (default snapshot directory)
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/jamgantt/pkg/ingest"
	"github.com/vanderheijden86/jamgantt/pkg/logging"
)

const appName = "jamgantt"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// UIConfig holds display settings.
type UIConfig struct {
	FPS      int  `yaml:"fps,omitempty"`       // Frame ticks per second (1-120)
	LogScale bool `yaml:"log_scale,omitempty"` // Start in log10 frequency scale
	MiniPlot bool `yaml:"mini_plot"`           // Show the per-task strip below the plot
}

// DemoConfig controls the built-in demo producer.
type DemoConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval,omitempty"`
	Recipe   string        `yaml:"recipe,omitempty"` // YAML recipe file; empty means the built-in demo
}

// FeedConfig selects external line feeds.
type FeedConfig struct {
	Stdin bool   `yaml:"stdin"`          // Read stdin when it is not a terminal
	File  string `yaml:"file,omitempty"` // File to follow for appended lines
	Mode  string `yaml:"mode,omitempty"` // step or structured
}

// LogConfig controls the structured log file.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
	Dir   string `yaml:"dir,omitempty"` // Defaults to StateDir()
}

// SnapshotConfig controls image export.
type SnapshotConfig struct {
	Dir    string `yaml:"dir,omitempty"`
	Format string `yaml:"format,omitempty"` // png, svg or md, used by the s key
}

// Config is the top-level configuration for jg.
type Config struct {
	UI       UIConfig       `yaml:"ui"`
	Demo     DemoConfig     `yaml:"demo"`
	Feed     FeedConfig     `yaml:"feed"`
	Log      LogConfig      `yaml:"log"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		UI: UIConfig{
			FPS:      30,
			MiniPlot: true,
		},
		Demo: DemoConfig{
			Enabled:  true,
			Interval: ingest.DefaultDemoInterval,
		},
		Feed: FeedConfig{
			Stdin: true,
			Mode:  ingest.FeedStep.String(),
		},
		Log: LogConfig{
			Level: logging.LevelInfo,
		},
		Snapshot: SnapshotConfig{
			Format: "png",
		},
	}
}

// ConfigDir returns the XDG config directory for jg.
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

// DataDir returns the XDG data directory for jg.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", appName)
}

// StateDir returns the XDG state directory for jg.
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

// LoadFrom reads config from a specific path, then applies environment
// overrides (JG_LOG_LEVEL). Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	if level := os.Getenv("JG_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	cfg.Demo.Recipe = expandHome(cfg.Demo.Recipe)
	cfg.Feed.File = expandHome(cfg.Feed.File)
	cfg.Log.Dir = expandHome(cfg.Log.Dir)
	cfg.Snapshot.Dir = expandHome(cfg.Snapshot.Dir)

	if err := cfg.Validate(); err != nil {
		return cfg, err
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

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.UI.FPS < 1 || c.UI.FPS > 120 {
		return fmt.Errorf("%w: ui.fps %d outside 1-120", ErrInvalid, c.UI.FPS)
	}
	if c.Demo.Interval < 0 {
		return fmt.Errorf("%w: demo.interval %s is negative", ErrInvalid, c.Demo.Interval)
	}
	if _, err := ingest.ParseFeedMode(c.Feed.Mode); err != nil {
		return fmt.Errorf("%w: feed.mode: %v", ErrInvalid, err)
	}
	switch strings.ToLower(c.Snapshot.Format) {
	case "", "png", "svg", "md":
	default:
		return fmt.Errorf("%w: snapshot.format %q (want png, svg or md)", ErrInvalid, c.Snapshot.Format)
	}
	return nil
}

// FeedMode returns the parsed feed mode.
func (c Config) FeedMode() ingest.FeedMode {
	m, _ := ingest.ParseFeedMode(c.Feed.Mode)
	return m
}

// FrameInterval is the tick period derived from ui.fps.
func (c Config) FrameInterval() time.Duration {
	fps := c.UI.FPS
	if fps <= 0 {
		fps = DefaultConfig().UI.FPS
	}
	return time.Second / time.Duration(fps)
}

// Recipe loads the configured recipe file, or returns the demo recipe.
func (c Config) Recipe() (ingest.Recipe, error) {
	if c.Demo.Recipe == "" {
		return ingest.DemoRecipe(), nil
	}
	return ingest.LoadRecipe(c.Demo.Recipe)
}

// LogDir returns the configured log directory, or StateDir.
func (c Config) LogDir() string {
	if c.Log.Dir != "" {
		return c.Log.Dir
	}
	return StateDir()
}

// SnapshotDir returns the configured snapshot directory, or DataDir.
func (c Config) SnapshotDir() string {
	if c.Snapshot.Dir != "" {
		return c.Snapshot.Dir
	}
	return DataDir()
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
