package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvLogLevel        = "SCREENLINE_LOG_LEVEL"
	EnvTopmostInterval = "SCREENLINE_TOPMOST_INTERVAL_MS"
)

// LoadEnvFile loads ~/.config/screenline/.env into the process environment.
// Variables that are already set win. A missing file is not an error.
func LoadEnvFile() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return loadEnvFile(filepath.Join(dir, ".env"))
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// applyEnv overlays SCREENLINE_* variables onto cfg and records them as the
// source of the paths they set.
func applyEnv(cfg *Config, sources map[string]Source) error {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = strings.ToLower(v)
		sources["log_level"] = Source{Kind: SourceEnv, Name: EnvLogLevel}
	}
	if v := strings.TrimSpace(os.Getenv(EnvTopmostInterval)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &ValidationError{Path: "topmost.interval_ms", Source: Source{Kind: SourceEnv, Name: EnvTopmostInterval}, Err: fmt.Errorf("%s=%q is not an integer", EnvTopmostInterval, v)}
		}
		cfg.Topmost.IntervalMS = n
		sources["topmost.interval_ms"] = Source{Kind: SourceEnv, Name: EnvTopmostInterval}
	}
	return nil
}
