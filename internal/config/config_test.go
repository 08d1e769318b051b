package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if len(cfg.VerticalLines.Slots) != SlotCount {
		t.Fatalf("expected %d vertical slots, got %d", SlotCount, len(cfg.VerticalLines.Slots))
	}
	if got := cfg.VerticalLines.Slots[1].ShowHotkey; got != "Control-Mod1-2" {
		t.Fatalf("expected Control-Mod1-2, got %q", got)
	}
	if !cfg.VerticalLines.Slots[0].Enabled || cfg.VerticalLines.Slots[2].Enabled {
		t.Fatalf("expected vertical slots 1-2 enabled and 3-4 disabled")
	}
	if cfg.Guides[1].Dash != "dot" {
		t.Fatalf("expected second guide set dotted, got %q", cfg.Guides[1].Dash)
	}
}

func TestLoadFromPath_MissingFileIsFirstRun(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !res.FirstRun {
		t.Fatalf("expected FirstRun")
	}
	if res.Config.TemporaryLine.Hotkey != "F5" {
		t.Fatalf("expected default hotkey F5, got %q", res.Config.TemporaryLine.Hotkey)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "# empty\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.FirstRun {
		t.Fatalf("expected existing file not to be a first run")
	}
	if res.Config.Topmost.IntervalMS != DefaultIntervalMS {
		t.Fatalf("expected interval %d, got %d", DefaultIntervalMS, res.Config.Topmost.IntervalMS)
	}
}

func TestLoadFromPath_PartialSectionKeepsDefaults(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "temporary_line:\n  duration: 1.5\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	tl := res.Config.TemporaryLine
	if tl.Duration != 1.5 {
		t.Fatalf("expected duration 1.5, got %v", tl.Duration)
	}
	if tl.Hotkey != "F5" || tl.Color != "#FF0000" || !tl.ClickThrough {
		t.Fatalf("expected other temporary_line fields to keep defaults, got %+v", tl)
	}
}

func TestLoadFromPath_ShortListsArePadded(t *testing.T) {
	data := strings.Join([]string{
		"vertical_lines:",
		"  slots:",
		"    - {enabled: true, show_hotkey: F9, hide_hotkey: F10}",
		"guides:",
		"  - {color: Red}",
		"topmost:",
		"  rivals:",
		"    - Flameshot",
		"    - {title: Shutter, enabled: false}",
		"",
	}, "\n")
	res, err := LoadFromPath(writeConfig(t, data))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if len(cfg.VerticalLines.Slots) != SlotCount || cfg.VerticalLines.Slots[0].ShowHotkey != "F9" {
		t.Fatalf("expected padded slots starting with F9, got %+v", cfg.VerticalLines.Slots)
	}
	if len(cfg.Guides) != GuideSetCount {
		t.Fatalf("expected %d guide sets, got %d", GuideSetCount, len(cfg.Guides))
	}
	if cfg.Guides[0].Color != "Red" || cfg.Guides[0].Thickness != 1 || cfg.Guides[0].OpacityScale != 0.7 {
		t.Fatalf("expected guide entry to be filled from defaults, got %+v", cfg.Guides[0])
	}
	if cfg.Guides[1].Color != "#32CD32" {
		t.Fatalf("expected second guide set from defaults, got %+v", cfg.Guides[1])
	}
	want := []Rival{{Title: "Flameshot", Enabled: true}, {Title: "Shutter", Enabled: false}}
	if len(cfg.Topmost.Rivals) != len(want) || cfg.Topmost.Rivals[0] != want[0] || cfg.Topmost.Rivals[1] != want[1] {
		t.Fatalf("expected rivals %+v, got %+v", want, cfg.Topmost.Rivals)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := writeConfig(t, "unknown_key: 1\n")
	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown_key") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasPosition(t *testing.T) {
	path := writeConfig(t, "topmost:\n  strategy: hook\n")
	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "topmost.strategy" {
		t.Fatalf("expected path topmost.strategy, got %q", verr.Path)
	}
	if !strings.Contains(err.Error(), path+":2:13: topmost.strategy") {
		t.Fatalf("expected file position in error, got %v", err)
	}
}

func TestLoadFromPath_SanitizesRanges(t *testing.T) {
	data := strings.Join([]string{
		"temporary_line: {duration: -2, opacity: 140, thickness: 0}",
		"topmost: {interval_ms: 0}",
		"bounding_box: {thickness: 99}",
		"",
	}, "\n")
	res, err := LoadFromPath(writeConfig(t, data))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Topmost.IntervalMS != 100 {
		t.Fatalf("expected interval 100, got %d", cfg.Topmost.IntervalMS)
	}
	if cfg.TemporaryLine.Duration != DefaultDuration || cfg.TemporaryLine.Opacity != 100 || cfg.TemporaryLine.Thickness != 1 {
		t.Fatalf("expected temporary line clamped, got %+v", cfg.TemporaryLine)
	}
	if cfg.BoundingBox.Thickness != MaxThickness {
		t.Fatalf("expected thickness %d, got %d", MaxThickness, cfg.BoundingBox.Thickness)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"bad color", func(c *Config) { c.BoundingBox.Color = "#12" }, "bounding_box.color"},
		{"bad dash", func(c *Config) { c.VerticalLines.Dash = "wavy" }, "vertical_lines.dash"},
		{"bad mode", func(c *Config) { c.TemporaryLine.DisplayMode = "both" }, "temporary_line.display_mode"},
		{"enabled slot without chord", func(c *Config) { c.HorizontalLines.Slots[2] = LineSlot{Enabled: true} }, "horizontal_lines.slots.2"},
		{"one guide set", func(c *Config) { c.Guides = c.Guides[:1] }, "guides"},
		{"floor out of range", func(c *Config) { c.Guides[1].OpacityFloor = 2 }, "guides.1.opacity_floor"},
		{"empty rival", func(c *Config) { c.Topmost.Rivals = append(c.Topmost.Rivals, Rival{Title: " "}) }, "topmost.rivals.2.title"},
		{"log level", func(c *Config) { c.LogLevel = "trace" }, "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			var verr *ValidationError
			if err := cfg.Validate(); !errors.As(err, &verr) || verr.Path != tt.path {
				t.Fatalf("expected validation error at %q, got %v", tt.path, err)
			}
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.BoundingBox.Rect = Rect{X: 100, Y: 100, Width: 450, Height: 350}
	cfg.Topmost.Enabled = true
	cfg.Topmost.Strategy = StrategyEvent
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.BoundingBox.Rect != cfg.BoundingBox.Rect {
		t.Fatalf("expected rect %+v, got %+v", cfg.BoundingBox.Rect, res.Config.BoundingBox.Rect)
	}
	if !res.Config.Topmost.Enabled || res.Config.Topmost.Strategy != StrategyEvent {
		t.Fatalf("expected topmost settings to persist, got %+v", res.Config.Topmost)
	}
}

func TestSaveRejectsInvalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Topmost.Strategy = "sometimes"
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.SaveTo(path); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected nothing written, got %v", err)
	}
}

func TestLoadOrDefault(t *testing.T) {
	res, notice := LoadOrDefault(writeConfig(t, "topmost: [\n"))
	if notice == "" {
		t.Fatalf("expected a notice for a broken file")
	}
	if res.Config.Topmost.IntervalMS != DefaultIntervalMS {
		t.Fatalf("expected defaults, got %+v", res.Config.Topmost)
	}

	_, notice = LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if notice != "" {
		t.Fatalf("expected no notice on first run, got %q", notice)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvTopmostInterval, "250")

	res, err := LoadFromPath(writeConfig(t, "log_level: error\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.LogLevel != "debug" {
		t.Fatalf("expected env log level to win, got %q", res.Config.LogLevel)
	}
	val, src, err := Explain(res, "topmost.interval_ms")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != 250 || src.Kind != SourceEnv || src.Name != EnvTopmostInterval {
		t.Fatalf("expected 250 from env, got %#v from %#v", val, src)
	}

	t.Setenv(EnvTopmostInterval, "soon")
	if _, err := LoadFromPath(writeConfig(t, "")); err == nil {
		t.Fatalf("expected error for non-integer interval")
	}
}

func TestConfigPathEnv(t *testing.T) {
	t.Setenv(configPathEnv, "/tmp/screenline-test.yaml")
	path, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if path != "/tmp/screenline-test.yaml" {
		t.Fatalf("expected override path, got %q", path)
	}
}

func TestLoadEnvFile(t *testing.T) {
	const key = "SCREENLINE_ENVFILE_TEST"
	t.Setenv(EnvLogLevel, "warning")
	t.Cleanup(func() { os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), ".env")
	data := EnvLogLevel + "=debug\n" + key + "=loaded\n"
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := loadEnvFile(path); err != nil {
		t.Fatalf("load env: %v", err)
	}
	if got := os.Getenv(key); got != "loaded" {
		t.Fatalf("expected %s=loaded, got %q", key, got)
	}
	if got := os.Getenv(EnvLogLevel); got != "warning" {
		t.Fatalf("expected existing variable to win, got %q", got)
	}
	if err := loadEnvFile(filepath.Join(t.TempDir(), "missing")); err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
}

func TestExplain(t *testing.T) {
	path := writeConfig(t, "guides:\n  - {color: Red}\n")
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	val, src, err := Explain(res, "guides.0.color")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != "Red" || src.Kind != SourceFile || src.Line != 2 {
		t.Fatalf("expected Red from line 2, got %#v from %#v", val, src)
	}

	val, src, err = Explain(res, "guides.1.dash")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != "dot" || src.Kind != SourceDefault {
		t.Fatalf("expected default dot, got %#v from %#v", val, src)
	}

	if _, _, err := Explain(res, "guides.7.dash"); err == nil {
		t.Fatalf("expected error for unknown path")
	}
}

func TestWatcherIgnoresOwnWrite(t *testing.T) {
	path := writeConfig(t, "log_level: info\n")
	w := NewWatcher(path, nil, nil)
	if w.selfWrite() {
		t.Fatalf("expected no self write before MarkSaved")
	}
	w.MarkSaved([]byte("log_level: info\n"))
	if !w.selfWrite() {
		t.Fatalf("expected matching content to count as a self write")
	}
	if err := os.WriteFile(path, []byte("log_level: debug\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if w.selfWrite() {
		t.Fatalf("expected external edit not to count as a self write")
	}
}

func TestWatcherReportsExternalEdit(t *testing.T) {
	path := writeConfig(t, "log_level: info\n")
	changed := make(chan struct{}, 1)
	w := NewWatcher(path, nil, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-changed:
			return
		case <-tick.C:
			// Rewrite until the watcher is registered and notices.
			if err := os.WriteFile(path, []byte("log_level: debug\n"), 0644); err != nil {
				t.Fatalf("write: %v", err)
			}
		case <-deadline:
			t.Fatalf("expected a change notification")
		}
	}
}
