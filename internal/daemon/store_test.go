package daemon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/1broseidon/screenline/internal/config"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	store := NewFileStore(path, config.NewWatcher(path, nil, nil))

	cfg := config.DefaultConfig()
	cfg.TemporaryLine.Hotkey = "F8"
	cfg.BoundingBox.Rect = config.Rect{X: 10, Y: 20, Width: 300, Height: 200}
	if err := store.Save(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to exist: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.TemporaryLine.Hotkey != "F8" {
		t.Fatalf("expected F8, got %q", got.TemporaryLine.Hotkey)
	}
	if got.BoundingBox.Rect != cfg.BoundingBox.Rect {
		t.Fatalf("expected rect %+v, got %+v", cfg.BoundingBox.Rect, got.BoundingBox.Rect)
	}
}

func TestFileStoreRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	store := NewFileStore(path, nil)

	cfg := config.DefaultConfig()
	cfg.Guides = cfg.Guides[:1]
	if err := store.Save(cfg); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no file to be written")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "DEBUG",
		"info":    "INFO",
		"warning": "WARN",
		"ERROR":   "ERROR",
		"":        "INFO",
	}
	for in, want := range tests {
		if got := parseLevel(in).String(); got != want {
			t.Fatalf("parseLevel(%q): expected %s, got %s", in, want, got)
		}
	}
}
