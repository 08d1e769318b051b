package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/1broseidon/screenline/internal/geometry"
	"github.com/1broseidon/screenline/internal/overlay"
	"gopkg.in/yaml.v3"
)

// DisplayMode selects where a line is placed.
type DisplayMode string

const (
	DisplayAllMonitors    DisplayMode = "all_monitors"
	DisplayCurrentMonitor DisplayMode = "current_monitor"
)

// Strategy selects how topmost ordering is re-asserted.
type Strategy string

const (
	StrategyPolling Strategy = "polling"
	StrategyEvent   Strategy = "event"
)

const (
	// DefaultIntervalMS is the topmost polling period.
	DefaultIntervalMS = 100
	// DefaultDuration is the temporary line display time in seconds.
	DefaultDuration = 1.0
	MinThickness    = 1
	MaxThickness    = 20
	// SlotCount is the number of hotkey slots per persistent line kind.
	SlotCount = 4
	// GuideSetCount is the number of guide sets.
	GuideSetCount = 2
)

// TemporaryLine configures the flash-and-fade line.
type TemporaryLine struct {
	Hotkey       string      `yaml:"hotkey"`
	DisplayMode  DisplayMode `yaml:"display_mode"`
	Thickness    int         `yaml:"thickness"`
	Color        string      `yaml:"color"`
	Opacity      int         `yaml:"opacity"` // percent
	Duration     float64     `yaml:"duration"` // seconds
	Dash         string      `yaml:"dash"`
	ClickThrough bool        `yaml:"click_through"`
}

// LineSlot binds a show/hide chord pair to one persistent line.
type LineSlot struct {
	Enabled    bool   `yaml:"enabled"`
	ShowHotkey string `yaml:"show_hotkey"`
	HideHotkey string `yaml:"hide_hotkey"`
}

// LineKind configures every persistent line of one orientation.
type LineKind struct {
	Thickness    int         `yaml:"thickness"`
	Color        string      `yaml:"color"`
	Opacity      int         `yaml:"opacity"`
	Dash         string      `yaml:"dash"`
	ClickThrough bool        `yaml:"click_through"`
	DisplayMode  DisplayMode `yaml:"display_mode"`
	Slots        []LineSlot  `yaml:"slots"`
}

// Rect is a screen rectangle in pixels.
type Rect struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// BoundingBox configures the draggable box.
type BoundingBox struct {
	Color        string `yaml:"color"`
	Thickness    int    `yaml:"thickness"`
	Opacity      int    `yaml:"opacity"`
	Dash         string `yaml:"dash"`
	ClickThrough bool   `yaml:"click_through"`
	ToggleHotkey string `yaml:"toggle_hotkey"`
	// Rect is the remembered position. A zero rect means the centered half of
	// the monitor under the cursor.
	Rect Rect `yaml:"rect"`
}

// GuideSet configures one set of four screen-spanning rails.
type GuideSet struct {
	Enabled      bool    `yaml:"enabled"`
	Color        string  `yaml:"color"`
	Thickness    int     `yaml:"thickness"`
	Dash         string  `yaml:"dash"`
	Opacity      int     `yaml:"opacity"`
	OpacityFloor float64 `yaml:"opacity_floor"`
	OpacityScale float64 `yaml:"opacity_scale"`
	Draggable    bool    `yaml:"draggable"`
}

// UnmarshalYAML fills keys missing from a guide entry with the defaults.
func (g *GuideSet) UnmarshalYAML(value *yaml.Node) error {
	type plain GuideSet
	out := plain(defaultGuideSet("#0000FF", "solid"))
	if err := value.Decode(&out); err != nil {
		return err
	}
	*g = GuideSet(out)
	return nil
}

// Rival is a window title fragment that triggers a topmost reassert.
type Rival struct {
	Title   string `yaml:"title"`
	Enabled bool   `yaml:"enabled"`
}

// UnmarshalYAML accepts a bare string for an enabled rival.
func (r *Rival) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*r = Rival{Title: value.Value, Enabled: true}
		return nil
	}
	type plain Rival
	out := plain{Enabled: true}
	if err := value.Decode(&out); err != nil {
		return err
	}
	*r = Rival(out)
	return nil
}

// Topmost configures stacking-order enforcement.
type Topmost struct {
	Enabled    bool     `yaml:"enabled"`
	Strategy   Strategy `yaml:"strategy"`
	IntervalMS int      `yaml:"interval_ms"`
	Rivals     []Rival  `yaml:"rivals"`
}

// Config is the effective configuration.
type Config struct {
	LogLevel        string        `yaml:"log_level"`
	HotkeysEnabled  bool          `yaml:"hotkeys_enabled"`
	TemporaryLine   TemporaryLine `yaml:"temporary_line"`
	VerticalLines   LineKind      `yaml:"vertical_lines"`
	HorizontalLines LineKind      `yaml:"horizontal_lines"`
	BoundingBox     BoundingBox   `yaml:"bounding_box"`
	Guides          []GuideSet    `yaml:"guides"`
	Topmost         Topmost       `yaml:"topmost"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:       "info",
		HotkeysEnabled: true,
		TemporaryLine: TemporaryLine{
			Hotkey:       "F5",
			DisplayMode:  DisplayAllMonitors,
			Thickness:    1,
			Color:        "#FF0000",
			Opacity:      100,
			Duration:     DefaultDuration,
			Dash:         "solid",
			ClickThrough: true,
		},
		VerticalLines: LineKind{
			Thickness:   1,
			Color:       "#0000FF",
			Opacity:     100,
			Dash:        "solid",
			DisplayMode: DisplayCurrentMonitor,
			Slots:       defaultSlots("Control-Mod1-%d", "Control-Shift-Mod1-%d", true, true, false, false),
		},
		HorizontalLines: LineKind{
			Thickness:   1,
			Color:       "#00FF00",
			Opacity:     100,
			Dash:        "solid",
			DisplayMode: DisplayCurrentMonitor,
			Slots:       defaultSlots("Control-Mod4-%d", "Control-Shift-Mod4-%d", false, false, false, false),
		},
		BoundingBox: BoundingBox{
			Color:     "#FF0000",
			Thickness: 2,
			Opacity:   100,
			Dash:      "solid",
		},
		Guides: []GuideSet{
			defaultGuideSet("#0000FF", "dash"),
			defaultGuideSet("#32CD32", "dot"),
		},
		Topmost: Topmost{
			Strategy:   StrategyPolling,
			IntervalMS: DefaultIntervalMS,
			Rivals: []Rival{
				{Title: "Paster - Snipaste", Enabled: true},
				{Title: "PixPin", Enabled: true},
			},
		},
	}
}

func defaultSlots(show, hide string, enabled ...bool) []LineSlot {
	slots := make([]LineSlot, SlotCount)
	for i := range slots {
		slots[i] = LineSlot{
			Enabled:    i < len(enabled) && enabled[i],
			ShowHotkey: fmt.Sprintf(show, i+1),
			HideHotkey: fmt.Sprintf(hide, i+1),
		}
	}
	return slots
}

func defaultGuideSet(color, dash string) GuideSet {
	return GuideSet{
		Color:        color,
		Thickness:    1,
		Dash:         dash,
		Opacity:      100,
		OpacityFloor: 0.3,
		OpacityScale: 0.7,
		Draggable:    true,
	}
}

// Save writes the configuration to the standard location.
//
// Note: this marshals the effective config and does not preserve comments
// from the original YAML.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Marshal validates and renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.VerticalLines.Slots = append([]LineSlot(nil), c.VerticalLines.Slots...)
	out.HorizontalLines.Slots = append([]LineSlot(nil), c.HorizontalLines.Slots...)
	out.Guides = append([]GuideSet(nil), c.Guides...)
	out.Topmost.Rivals = append([]Rival(nil), c.Topmost.Rivals...)
	return &out
}

// Sanitize clamps out-of-range values to something usable. Unlike Validate
// it never fails. Loading applies it before validation.
func (c *Config) Sanitize() {
	if c.Topmost.IntervalMS <= 0 {
		c.Topmost.IntervalMS = DefaultIntervalMS
	}
	if c.TemporaryLine.Duration <= 0 {
		c.TemporaryLine.Duration = DefaultDuration
	}
	c.TemporaryLine.Opacity = clampInt(c.TemporaryLine.Opacity, 0, 100)
	c.TemporaryLine.Thickness = clampInt(c.TemporaryLine.Thickness, MinThickness, MaxThickness)
	for _, k := range []*LineKind{&c.VerticalLines, &c.HorizontalLines} {
		k.Opacity = clampInt(k.Opacity, 0, 100)
		k.Thickness = clampInt(k.Thickness, MinThickness, MaxThickness)
		k.Slots = padSlots(k.Slots)
	}
	c.BoundingBox.Opacity = clampInt(c.BoundingBox.Opacity, 0, 100)
	c.BoundingBox.Thickness = clampInt(c.BoundingBox.Thickness, MinThickness, MaxThickness)
	for i := range c.Guides {
		c.Guides[i].Opacity = clampInt(c.Guides[i].Opacity, 0, 100)
		c.Guides[i].Thickness = clampInt(c.Guides[i].Thickness, MinThickness, MaxThickness)
	}
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}

	t := c.TemporaryLine
	if strings.TrimSpace(t.Hotkey) == "" {
		return &ValidationError{Path: "temporary_line.hotkey", Err: fmt.Errorf("hotkey is required")}
	}
	if err := validateDisplayMode(t.DisplayMode); err != nil {
		return &ValidationError{Path: "temporary_line.display_mode", Err: err}
	}
	if err := validateStroke("temporary_line", t.Thickness, t.Color, t.Opacity, t.Dash); err != nil {
		return err
	}
	if t.Duration <= 0 {
		return &ValidationError{Path: "temporary_line.duration", Err: fmt.Errorf("duration must be > 0")}
	}

	for _, k := range []struct {
		path string
		kind LineKind
	}{
		{"vertical_lines", c.VerticalLines},
		{"horizontal_lines", c.HorizontalLines},
	} {
		if err := validateStroke(k.path, k.kind.Thickness, k.kind.Color, k.kind.Opacity, k.kind.Dash); err != nil {
			return err
		}
		if err := validateDisplayMode(k.kind.DisplayMode); err != nil {
			return &ValidationError{Path: k.path + ".display_mode", Err: err}
		}
		if len(k.kind.Slots) > SlotCount {
			return &ValidationError{Path: k.path + ".slots", Err: fmt.Errorf("at most %d slots are supported", SlotCount)}
		}
		for i, s := range k.kind.Slots {
			if s.Enabled && (strings.TrimSpace(s.ShowHotkey) == "" || strings.TrimSpace(s.HideHotkey) == "") {
				return &ValidationError{Path: fmt.Sprintf("%s.slots.%d", k.path, i), Err: fmt.Errorf("enabled slot needs show_hotkey and hide_hotkey")}
			}
		}
	}

	b := c.BoundingBox
	if err := validateStroke("bounding_box", b.Thickness, b.Color, b.Opacity, b.Dash); err != nil {
		return err
	}
	if b.Rect.Width < 0 || b.Rect.Height < 0 {
		return &ValidationError{Path: "bounding_box.rect", Err: fmt.Errorf("width and height must be >= 0")}
	}

	if len(c.Guides) != GuideSetCount {
		return &ValidationError{Path: "guides", Err: fmt.Errorf("exactly %d guide sets are required", GuideSetCount)}
	}
	for i, g := range c.Guides {
		path := fmt.Sprintf("guides.%d", i)
		if err := validateStroke(path, g.Thickness, g.Color, g.Opacity, g.Dash); err != nil {
			return err
		}
		if g.OpacityFloor < 0 || g.OpacityFloor > 1 {
			return &ValidationError{Path: path + ".opacity_floor", Err: fmt.Errorf("opacity_floor must be within [0, 1]")}
		}
		if g.OpacityScale < 0 || g.OpacityScale > 1 {
			return &ValidationError{Path: path + ".opacity_scale", Err: fmt.Errorf("opacity_scale must be within [0, 1]")}
		}
	}

	switch c.Topmost.Strategy {
	case StrategyPolling, StrategyEvent:
	default:
		return &ValidationError{Path: "topmost.strategy", Err: fmt.Errorf("strategy must be one of: polling, event")}
	}
	if c.Topmost.IntervalMS <= 0 {
		return &ValidationError{Path: "topmost.interval_ms", Err: fmt.Errorf("interval_ms must be > 0")}
	}
	for i, r := range c.Topmost.Rivals {
		if strings.TrimSpace(r.Title) == "" {
			return &ValidationError{Path: fmt.Sprintf("topmost.rivals.%d.title", i), Err: fmt.Errorf("title must not be empty")}
		}
	}
	return nil
}

func validateDisplayMode(m DisplayMode) error {
	switch m {
	case DisplayAllMonitors, DisplayCurrentMonitor:
		return nil
	}
	return fmt.Errorf("display_mode must be one of: all_monitors, current_monitor")
}

func validateStroke(path string, thickness int, color string, opacity int, dash string) error {
	if thickness < MinThickness || thickness > MaxThickness {
		return &ValidationError{Path: path + ".thickness", Err: fmt.Errorf("thickness must be within [%d, %d]", MinThickness, MaxThickness)}
	}
	if _, err := overlay.ParseColor(color); err != nil {
		return &ValidationError{Path: path + ".color", Err: err}
	}
	if opacity < 0 || opacity > 100 {
		return &ValidationError{Path: path + ".opacity", Err: fmt.Errorf("opacity must be within [0, 100]")}
	}
	if _, err := geometry.ParseDashStyle(dash); err != nil {
		return &ValidationError{Path: path + ".dash", Err: err}
	}
	return nil
}

func padSlots(slots []LineSlot) []LineSlot {
	if len(slots) > SlotCount {
		return slots[:SlotCount]
	}
	for len(slots) < SlotCount {
		slots = append(slots, LineSlot{})
	}
	return slots
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
