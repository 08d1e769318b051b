// Package menu projects the settings object into a tree of menu items with
// stable IDs. The tray and the TUI render the same projection,
// and Apply maps a selected ID back onto the engine.
package menu

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/1broseidon/screenline/internal/config"
	"github.com/1broseidon/screenline/internal/geometry"
	"github.com/1broseidon/screenline/internal/overlay"
)

// ErrUnknownItem is returned by Apply for IDs the projection does not contain.
var ErrUnknownItem = errors.New("unknown menu item")

// Kind is the presentation of an item.
type Kind int

const (
	KindAction Kind = iota
	KindCheck
	KindRadio
	KindSubmenu
	KindSeparator
)

func (k Kind) String() string {
	switch k {
	case KindAction:
		return "action"
	case KindCheck:
		return "check"
	case KindRadio:
		return "radio"
	case KindSubmenu:
		return "submenu"
	case KindSeparator:
		return "separator"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	for c := KindAction; c <= KindSeparator; c++ {
		if c.String() == string(b) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown menu item kind %q", b)
}

// Item is one node of the menu tree.
type Item struct {
	ID       string `json:"id,omitempty"`
	Label    string `json:"label"`
	Kind     Kind   `json:"kind"`
	Checked  bool   `json:"checked,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
	Items    []Item `json:"items,omitempty"`

	run func(Controller) error
}

// State is everything the menu reflects: the settings object plus the
// runtime visibility flags that are not persisted.
type State struct {
	Settings    config.Config
	BoxShown    bool
	GuidesShown [config.GuideSetCount]bool
	AllHidden   bool
	Notice      string
}

// Controller is the engine surface the menu drives.
type Controller interface {
	MenuState() State
	// UpdateSettings mutates a copy of the settings, applies and persists it.
	// On failure the previous settings stay in effect.
	UpdateSettings(fn func(*config.Config)) error
	ToggleBox() error
	ResetBox() error
	CopyBox() error
	ToggleGuides(set int) error
	ShowGuidesOnly(set int) error
	ResetGuides(set int) error
	SetAllHidden(hidden bool)
	CloseAllLines()
	Reload() error
	Quit()
}

var (
	thicknessChoices = []int{1, 2, 3, 4, 5}
	opacityChoices   = []int{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	durationChoices  = []float64{0.1, 0.2, 0.3, 0.5, 1.0, 1.5, 2.0, 3.0, 5.0}
	intervalChoices  = []int{50, 100, 200, 500, 1000, 2000, 3000}
	hotkeyChoices    = []string{"F3", "F4", "F5", "F6", "F7", "F8", "F9", "F10", "F11", "F12"}
)

// Apply runs the item with the given ID against the current state.
func Apply(ctrl Controller, id string) error {
	item, ok := Find(Build(ctrl.MenuState()), id)
	if !ok || item.run == nil {
		return fmt.Errorf("%q: %w", id, ErrUnknownItem)
	}
	if item.Disabled {
		return fmt.Errorf("%q is disabled", id)
	}
	return item.run(ctrl)
}

// Find looks up an item by ID anywhere in the tree.
func Find(items []Item, id string) (Item, bool) {
	for _, it := range items {
		if it.ID == id && it.Kind != KindSubmenu {
			return it, true
		}
		if found, ok := Find(it.Items, id); ok {
			return found, true
		}
	}
	return Item{}, false
}

// Walk calls fn for every item, depth first, with its nesting depth.
func Walk(items []Item, fn func(it Item, depth int)) {
	var rec func([]Item, int)
	rec = func(items []Item, depth int) {
		for _, it := range items {
			fn(it, depth)
			rec(it.Items, depth+1)
		}
	}
	rec(items, 0)
}

// Build projects st into the menu tree.
func Build(st State) []Item {
	s := st.Settings
	items := []Item{
		temporaryMenu(s.TemporaryLine),
		lineKindMenu("vertical", "Vertical lines", s.VerticalLines, func(c *config.Config) *config.LineKind { return &c.VerticalLines }),
		lineKindMenu("horizontal", "Horizontal lines", s.HorizontalLines, func(c *config.Config) *config.LineKind { return &c.HorizontalLines }),
		boxMenu(s.BoundingBox, st.BoxShown),
	}
	for i := 0; i < len(s.Guides) && i < config.GuideSetCount; i++ {
		items = append(items, guideMenu(i, s.Guides[i], st.GuidesShown[i]))
	}
	items = append(items,
		topmostMenu(s.Topmost),
		separator(),
		check("lines.hide_all", "Hide all lines", st.AllHidden, func(c Controller) error {
			c.SetAllHidden(!st.AllHidden)
			return nil
		}),
		action("lines.close_all", "Close all lines", func(c Controller) error {
			c.CloseAllLines()
			return nil
		}),
		check("hotkeys.enabled", "Hotkeys enabled", s.HotkeysEnabled, update(func(c *config.Config) {
			c.HotkeysEnabled = !s.HotkeysEnabled
		})),
		action("config.reload", "Reload config", func(c Controller) error { return c.Reload() }),
		separator(),
		action("quit", "Quit", func(c Controller) error {
			c.Quit()
			return nil
		}),
	)
	return items
}

func temporaryMenu(t config.TemporaryLine) Item {
	const p = "temporary"
	set := func(fn func(*config.TemporaryLine)) func(Controller) error {
		return update(func(c *config.Config) { fn(&c.TemporaryLine) })
	}
	var hotkeys []Item
	for _, key := range hotkeyChoices {
		hotkeys = append(hotkeys, radio(p+".hotkey."+key, key, strings.EqualFold(t.Hotkey, key), set(func(l *config.TemporaryLine) { l.Hotkey = key })))
	}
	var durations []Item
	for _, d := range durationChoices {
		label := strconv.FormatFloat(d, 'f', -1, 64)
		durations = append(durations, radio(p+".duration."+label, label+" s", t.Duration == d, set(func(l *config.TemporaryLine) { l.Duration = d })))
	}
	return submenu(p, "Temporary line",
		displayModeMenu(p, t.DisplayMode, func(m config.DisplayMode) func(Controller) error {
			return set(func(l *config.TemporaryLine) { l.DisplayMode = m })
		}),
		thicknessMenu(p, t.Thickness, func(v int) func(Controller) error {
			return set(func(l *config.TemporaryLine) { l.Thickness = v })
		}),
		colorMenu(p, t.Color, func(v string) func(Controller) error {
			return set(func(l *config.TemporaryLine) { l.Color = v })
		}),
		opacityMenu(p, t.Opacity, func(v int) func(Controller) error {
			return set(func(l *config.TemporaryLine) { l.Opacity = v })
		}),
		submenu(p+".duration", "Duration", durations...),
		submenu(p+".hotkey", "Hotkey", hotkeys...),
		check(p+".click_through", "Click-through", t.ClickThrough, set(func(l *config.TemporaryLine) { l.ClickThrough = !t.ClickThrough })),
	)
}

func lineKindMenu(p, label string, k config.LineKind, field func(*config.Config) *config.LineKind) Item {
	set := func(fn func(*config.LineKind)) func(Controller) error {
		return update(func(c *config.Config) { fn(field(c)) })
	}
	var slots []Item
	for i, slot := range k.Slots {
		n := strconv.Itoa(i + 1)
		slots = append(slots, check(p+".slot."+n+".enabled", fmt.Sprintf("Line %s (%s)", n, slot.ShowHotkey), slot.Enabled,
			set(func(l *config.LineKind) { l.Slots[i].Enabled = !slot.Enabled })))
	}
	return submenu(p, label,
		submenu(p+".slots", "Hotkey slots", slots...),
		thicknessMenu(p, k.Thickness, func(v int) func(Controller) error {
			return set(func(l *config.LineKind) { l.Thickness = v })
		}),
		colorMenu(p, k.Color, func(v string) func(Controller) error {
			return set(func(l *config.LineKind) { l.Color = v })
		}),
		opacityMenu(p, k.Opacity, func(v int) func(Controller) error {
			return set(func(l *config.LineKind) { l.Opacity = v })
		}),
		dashMenu(p, k.Dash, func(v string) func(Controller) error {
			return set(func(l *config.LineKind) { l.Dash = v })
		}),
		check(p+".click_through", "Click-through", k.ClickThrough, set(func(l *config.LineKind) { l.ClickThrough = !k.ClickThrough })),
		displayModeMenu(p, k.DisplayMode, func(m config.DisplayMode) func(Controller) error {
			return set(func(l *config.LineKind) { l.DisplayMode = m })
		}),
	)
}

func boxMenu(b config.BoundingBox, shown bool) Item {
	const p = "box"
	set := func(fn func(*config.BoundingBox)) func(Controller) error {
		return update(func(c *config.Config) { fn(&c.BoundingBox) })
	}
	return submenu(p, "Bounding box",
		check(p+".visible", "Show bounding box", shown, func(c Controller) error { return c.ToggleBox() }),
		action(p+".reset", "Reset position", func(c Controller) error { return c.ResetBox() }),
		action(p+".copy", "Copy geometry", func(c Controller) error { return c.CopyBox() }),
		thicknessMenu(p, b.Thickness, func(v int) func(Controller) error {
			return set(func(x *config.BoundingBox) { x.Thickness = v })
		}),
		colorMenu(p, b.Color, func(v string) func(Controller) error {
			return set(func(x *config.BoundingBox) { x.Color = v })
		}),
		dashMenu(p, b.Dash, func(v string) func(Controller) error {
			return set(func(x *config.BoundingBox) { x.Dash = v })
		}),
		check(p+".click_through", "Click-through", b.ClickThrough, set(func(x *config.BoundingBox) { x.ClickThrough = !b.ClickThrough })),
	)
}

func guideMenu(i int, g config.GuideSet, shown bool) Item {
	p := "guides." + strconv.Itoa(i+1)
	set := func(fn func(*config.GuideSet)) func(Controller) error {
		return update(func(c *config.Config) { fn(&c.Guides[i]) })
	}
	return submenu(p, fmt.Sprintf("Guide set %d", i+1),
		check(p+".visible", "Show guides", shown, func(c Controller) error { return c.ToggleGuides(i) }),
		action(p+".only", "Guides only (hide box)", func(c Controller) error { return c.ShowGuidesOnly(i) }),
		action(p+".reset", "Reset from box", func(c Controller) error { return c.ResetGuides(i) }),
		check(p+".draggable", "Draggable", g.Draggable, set(func(x *config.GuideSet) { x.Draggable = !g.Draggable })),
		colorMenu(p, g.Color, func(v string) func(Controller) error {
			return set(func(x *config.GuideSet) { x.Color = v })
		}),
		dashMenu(p, g.Dash, func(v string) func(Controller) error {
			return set(func(x *config.GuideSet) { x.Dash = v })
		}),
		opacityMenu(p, g.Opacity, func(v int) func(Controller) error {
			return set(func(x *config.GuideSet) { x.Opacity = v })
		}),
	)
}

func topmostMenu(t config.Topmost) Item {
	const p = "topmost"
	set := func(fn func(*config.Topmost)) func(Controller) error {
		return update(func(c *config.Config) { fn(&c.Topmost) })
	}
	var intervals []Item
	for _, ms := range intervalChoices {
		intervals = append(intervals, radio(fmt.Sprintf("%s.interval.%d", p, ms), fmt.Sprintf("%d ms", ms), t.IntervalMS == ms,
			set(func(x *config.Topmost) { x.IntervalMS = ms })))
	}
	var rivals []Item
	for i, r := range t.Rivals {
		n := strconv.Itoa(i + 1)
		rivals = append(rivals,
			check(p+".rival."+n+".enabled", r.Title, r.Enabled, set(func(x *config.Topmost) { x.Rivals[i].Enabled = !r.Enabled })),
			action(p+".rival."+n+".remove", "Remove "+r.Title, set(func(x *config.Topmost) {
				x.Rivals = append(x.Rivals[:i:i], x.Rivals[i+1:]...)
			})),
		)
	}
	if len(rivals) == 0 {
		rivals = append(rivals, Item{Label: "No rival windows", Kind: KindAction, Disabled: true})
	}
	return submenu(p, "Keep on top",
		check(p+".enabled", "Enabled", t.Enabled, set(func(x *config.Topmost) { x.Enabled = !t.Enabled })),
		submenu(p+".strategy", "Strategy",
			radio(p+".strategy.polling", "Polling", t.Strategy == config.StrategyPolling, set(func(x *config.Topmost) { x.Strategy = config.StrategyPolling })),
			radio(p+".strategy.event", "Foreground events", t.Strategy == config.StrategyEvent, set(func(x *config.Topmost) { x.Strategy = config.StrategyEvent })),
		),
		submenu(p+".interval", "Polling interval", intervals...),
		submenu(p+".rivals", "Rival windows", rivals...),
	)
}

func displayModeMenu(p string, cur config.DisplayMode, apply func(config.DisplayMode) func(Controller) error) Item {
	return submenu(p+".display_mode", "Display mode",
		radio(p+".display_mode.all_monitors", "All monitors", cur == config.DisplayAllMonitors, apply(config.DisplayAllMonitors)),
		radio(p+".display_mode.current_monitor", "Current monitor", cur == config.DisplayCurrentMonitor, apply(config.DisplayCurrentMonitor)),
	)
}

func thicknessMenu(p string, cur int, apply func(int) func(Controller) error) Item {
	var items []Item
	for _, v := range thicknessChoices {
		items = append(items, radio(fmt.Sprintf("%s.thickness.%d", p, v), fmt.Sprintf("%d px", v), cur == v, apply(v)))
	}
	return submenu(p+".thickness", "Thickness", items...)
}

func opacityMenu(p string, cur int, apply func(int) func(Controller) error) Item {
	var items []Item
	for _, v := range opacityChoices {
		items = append(items, radio(fmt.Sprintf("%s.opacity.%d", p, v), fmt.Sprintf("%d%%", v), cur == v, apply(v)))
	}
	return submenu(p+".opacity", "Opacity", items...)
}

func colorMenu(p, cur string, apply func(string) func(Controller) error) Item {
	curColor, curErr := overlay.ParseColor(cur)
	var items []Item
	for _, name := range overlay.NamedColors() {
		c := overlay.MustColor(name)
		items = append(items, radio(p+".color."+strings.ToLower(name), name, curErr == nil && c == curColor, apply(name)))
	}
	return submenu(p+".color", "Color", items...)
}

func dashMenu(p, cur string, apply func(string) func(Controller) error) Item {
	curDash, curErr := geometry.ParseDashStyle(cur)
	var items []Item
	for _, d := range geometry.DashStyles() {
		name := d.String()
		items = append(items, radio(p+".dash."+name, dashLabel(d), curErr == nil && d == curDash, apply(name)))
	}
	return submenu(p+".dash", "Line style", items...)
}

func dashLabel(d geometry.DashStyle) string {
	switch d {
	case geometry.DashDash:
		return "Dash"
	case geometry.DashDot:
		return "Dot"
	case geometry.DashDashDot:
		return "Dash dot"
	case geometry.DashDashDotDot:
		return "Dash dot dot"
	default:
		return "Solid"
	}
}

func update(fn func(*config.Config)) func(Controller) error {
	return func(c Controller) error { return c.UpdateSettings(fn) }
}

func submenu(id, label string, items ...Item) Item {
	return Item{ID: id, Label: label, Kind: KindSubmenu, Items: items}
}

func action(id, label string, run func(Controller) error) Item {
	return Item{ID: id, Label: label, Kind: KindAction, run: run}
}

func check(id, label string, checked bool, run func(Controller) error) Item {
	return Item{ID: id, Label: label, Kind: KindCheck, Checked: checked, run: run}
}

func radio(id, label string, checked bool, run func(Controller) error) Item {
	return Item{ID: id, Label: label, Kind: KindRadio, Checked: checked, run: run}
}

func separator() Item {
	return Item{Kind: KindSeparator}
}
