package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vanderheijden86/jamgantt/pkg/ingest"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.UI.FPS != 30 {
		t.Errorf("expected fps 30, got %d", cfg.UI.FPS)
	}
	if cfg.UI.LogScale {
		t.Error("expected linear scale by default")
	}
	if !cfg.Demo.Enabled || cfg.Demo.Interval != 2*time.Second {
		t.Errorf("expected demo enabled every 2s, got %+v", cfg.Demo)
	}
	if !cfg.Feed.Stdin || cfg.Feed.Mode != "step" {
		t.Errorf("unexpected feed defaults %+v", cfg.Feed)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.UI.FPS != 30 {
		t.Errorf("expected default config, got fps %d", cfg.UI.FPS)
	}
}

func TestLoadFrom_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
ui:
  fps: 20
  log_scale: true
  mini_plot: false

demo:
  enabled: false
  interval: 500ms

feed:
  stdin: false
  file: ~/plans/feed.log
  mode: structured

log:
  level: debug

snapshot:
  dir: /tmp/snaps
  format: svg
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.UI.FPS != 20 || !cfg.UI.LogScale || cfg.UI.MiniPlot {
		t.Errorf("ui = %+v", cfg.UI)
	}
	if cfg.Demo.Enabled || cfg.Demo.Interval != 500*time.Millisecond {
		t.Errorf("demo = %+v", cfg.Demo)
	}
	home, _ := os.UserHomeDir()
	if cfg.Feed.File != filepath.Join(home, "plans/feed.log") {
		t.Errorf("expected expanded feed file, got %q", cfg.Feed.File)
	}
	if cfg.FeedMode() != ingest.FeedStructured {
		t.Errorf("FeedMode = %v", cfg.FeedMode())
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if cfg.SnapshotDir() != "/tmp/snaps" || cfg.Snapshot.Format != "svg" {
		t.Errorf("snapshot = %+v", cfg.Snapshot)
	}
	if cfg.FrameInterval() != 50*time.Millisecond {
		t.Errorf("FrameInterval = %v", cfg.FrameInterval())
	}
}

func TestLoadFrom_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("ui:\n  log_scale: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.UI.LogScale || cfg.UI.FPS != 30 || !cfg.Demo.Enabled {
		t.Errorf("partial config lost defaults: %+v", cfg)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{{invalid yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadFrom_InvalidValues(t *testing.T) {
	tests := map[string]string{
		"fps":    "ui:\n  fps: 500\n",
		"mode":   "feed:\n  mode: xml\n",
		"format": "snapshot:\n  format: gif\n",
		"delay":  "demo:\n  interval: -1s\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFrom(path); !errors.Is(err, ErrInvalid) {
				t.Errorf("LoadFrom = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestLoadFrom_EnvLogLevel(t *testing.T) {
	t.Setenv("JG_LOG_LEVEL", "warn")
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected env override, got %q", cfg.Log.Level)
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.UI.FPS = 15
	cfg.UI.LogScale = true
	cfg.Demo.Interval = 750 * time.Millisecond
	cfg.Feed.File = "/var/run/plan.log"

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load after save failed: %v", err)
	}
	if loaded != cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home dir")
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"~/foo", filepath.Join(home, "foo")},
		{"/absolute", "/absolute"},
		{"relative", "relative"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := expandHome(tt.input); got != tt.expected {
			t.Errorf("expandHome(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestXDGOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv("XDG_STATE_HOME", dir)

	want := filepath.Join(dir, "jamgantt")
	if got := ConfigDir(); got != want {
		t.Errorf("ConfigDir = %q, want %q", got, want)
	}
	if got := DataDir(); got != want {
		t.Errorf("DataDir = %q, want %q", got, want)
	}
	if got := StateDir(); got != want {
		t.Errorf("StateDir = %q, want %q", got, want)
	}
	if got := ConfigPath(); got != filepath.Join(want, "config.yaml") {
		t.Errorf("ConfigPath = %q", got)
	}
	if got := DefaultConfig().LogDir(); got != want {
		t.Errorf("LogDir = %q", got)
	}
}

func TestConfigRecipe(t *testing.T) {
	cfg := DefaultConfig()
	r, err := cfg.Recipe()
	if err != nil || r.Len() != ingest.DemoRecipe().Len() {
		t.Fatalf("default recipe = %d steps, %v", r.Len(), err)
	}

	path := filepath.Join(t.TempDir(), "recipe.yaml")
	if err := os.WriteFile(path, []byte("steps:\n  - op: clear\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.Demo.Recipe = path
	r, err = cfg.Recipe()
	if err != nil || r.Len() != 1 {
		t.Fatalf("file recipe = %d steps, %v", r.Len(), err)
	}

	cfg.Demo.Recipe = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := cfg.Recipe(); err == nil {
		t.Error("missing recipe file should fail")
	}
}
