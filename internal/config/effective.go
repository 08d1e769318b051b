package config

import (
	"fmt"
)

// ValidationError points at the config path that failed, and at the file
// position that set it when known.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig decodes data over the defaults. Keys absent from the
// document keep their default values; lists given in the document replace the
// default list and are then padded back to their fixed length.
func BuildEffectiveConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	guides := cfg.Guides
	if err := decodeStrictYAML(data, cfg); err != nil {
		return nil, err
	}

	cfg.VerticalLines.Slots = padSlots(cfg.VerticalLines.Slots)
	cfg.HorizontalLines.Slots = padSlots(cfg.HorizontalLines.Slots)
	if len(cfg.Guides) < GuideSetCount {
		cfg.Guides = append(cfg.Guides, guides[len(cfg.Guides):]...)
	}
	return cfg, nil
}
