package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Explain returns the effective value at a dotted YAML path and where it came
// from. List entries are addressed by index:
//
//	log_level
//	temporary_line.duration
//	vertical_lines.slots.0.show_hotkey
//	bounding_box.rect.width
//	guides.1.color
//	topmost.rivals.0.title
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	var doc yaml.Node
	if err := doc.Encode(cfg); err != nil {
		return nil, err
	}
	node := &doc
	for _, part := range strings.Split(path, ".") {
		next, err := child(node, part)
		if err != nil {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		node = next
	}
	var out any
	if err := node.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func child(node *yaml.Node, key string) (*yaml.Node, error) {
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == key {
				return node.Content[i+1], nil
			}
		}
	case yaml.SequenceNode:
		idx, err := strconv.Atoi(key)
		if err == nil && idx >= 0 && idx < len(node.Content) {
			return node.Content[idx], nil
		}
	}
	return nil, fmt.Errorf("no %q", key)
}

// Describe renders a source for display.
func (s Source) Describe() string {
	switch s.Kind {
	case SourceFile:
		return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
	case SourceEnv:
		return "env " + s.Name
	default:
		return "default"
	}
}
