package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceFile    SourceKind = "file"
	SourceEnv     SourceKind = "env"
)

type Source struct {
	Kind   SourceKind
	Name   string // env var name for SourceEnv
	File   string
	Line   int
	Column int
}

type LoadResult struct {
	Config  *Config
	Sources map[string]Source // YAML-path -> source of the value
	Path    string
	// FirstRun is set when the file did not exist and defaults were used.
	FirstRun bool
}

const configPathEnv = "SCREENLINE_CONFIG"

// ConfigDir returns ~/.config/screenline.
func ConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "screenline"), nil
}

// DefaultConfigPath returns the config file path, honoring SCREENLINE_CONFIG.
func DefaultConfigPath() (string, error) {
	if p := os.Getenv(configPathEnv); p != "" {
		return p, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the configuration from the standard location.
func Load() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads path. A missing file yields the defaults with FirstRun
// set. Parse and validation failures are returned as errors.
func LoadFromPath(path string) (*LoadResult, error) {
	res := &LoadResult{Path: path, Sources: map[string]Source{}}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		res.Config = DefaultConfig()
		res.FirstRun = true
	case err != nil:
		return nil, fmt.Errorf("%s: failed to read: %w", path, err)
	default:
		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%s: failed to parse yaml: %w", path, err)
		}
		cfg, err := BuildEffectiveConfig(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		res.Config = cfg
		res.Sources = collectSources(&doc, path)
	}

	if err := applyEnv(res.Config, res.Sources); err != nil {
		return nil, err
	}
	res.Config.Sanitize()
	if err := res.Config.Validate(); err != nil {
		return nil, attachSourceContext(err, res.Sources)
	}
	return res, nil
}

// LoadOrDefault never fails: on any error it returns the defaults and a
// notice describing what went wrong. A missing file is not an error and
// produces no notice.
func LoadOrDefault(path string) (*LoadResult, string) {
	res, err := LoadFromPath(path)
	if err == nil {
		return res, ""
	}
	cfg := DefaultConfig()
	sources := map[string]Source{}
	// Environment overrides still apply on top of the fallback.
	envErr := applyEnv(cfg, sources)
	cfg.Sanitize()
	if envErr != nil || cfg.Validate() != nil {
		cfg = DefaultConfig()
		sources = map[string]Source{}
	}
	return &LoadResult{Config: cfg, Sources: sources, Path: path}, fmt.Sprintf("config not loaded, using defaults: %v", err)
}

func decodeStrictYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	return nil
}

func collectSources(doc *yaml.Node, file string) map[string]Source {
	out := make(map[string]Source)
	if doc == nil {
		return out
	}
	node := doc
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	collectSourcesRec(node, file, "", out)
	return out
}

func collectSourcesRec(node *yaml.Node, file string, prefix string, out map[string]Source) {
	if node == nil {
		return
	}
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode := node.Content[i]
			valNode := node.Content[i+1]
			path := keyNode.Value
			if prefix != "" {
				path = prefix + "." + keyNode.Value
			}
			out[path] = Source{
				Kind:   SourceFile,
				File:   file,
				Line:   valNode.Line,
				Column: valNode.Column,
			}
			collectSourcesRec(valNode, file, path, out)
		}
	case yaml.SequenceNode:
		// Index entries so that guides.1.color resolves to its line.
		for i, item := range node.Content {
			path := fmt.Sprintf("%s.%d", prefix, i)
			out[path] = Source{
				Kind:   SourceFile,
				File:   file,
				Line:   item.Line,
				Column: item.Column,
			}
			collectSourcesRec(item, file, path, out)
		}
	}
}

func attachSourceContext(err error, sources map[string]Source) error {
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path == "" {
		return err
	}
	if src, ok := sources[verr.Path]; ok {
		verr.Source = src
	}
	return verr
}
