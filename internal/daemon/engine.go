// Package daemon wires the overlay pool, hotkeys, the topmost arbiter and the
// menu projection into one engine, and runs it against the X server.
//
// An Engine is owned by the UI loop. Every exported method must be called on
// the loop; the IPC server and the tray reach it through uiloop.Loop.Call.
package daemon

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/1broseidon/screenline/internal/config"
	"github.com/1broseidon/screenline/internal/geometry"
	"github.com/1broseidon/screenline/internal/hotkeys"
	"github.com/1broseidon/screenline/internal/ipc"
	"github.com/1broseidon/screenline/internal/menu"
	"github.com/1broseidon/screenline/internal/overlay"
	"github.com/1broseidon/screenline/internal/platform"
	"github.com/1broseidon/screenline/internal/pool"
	"github.com/1broseidon/screenline/internal/topmost"
	"github.com/1broseidon/screenline/internal/uiloop"
)

// ErrNoClipboard is returned by CopyBox when no clipboard is available.
var ErrNoClipboard = errors.New("clipboard unavailable")

// Store loads and persists the settings object.
type Store interface {
	Path() string
	Load() (*config.Config, error)
	Save(cfg *config.Config) error
}

// Clipboard receives copied box geometry.
type Clipboard interface {
	WriteText(text string) error
}

// EngineConfig wires an engine to its collaborators.
type EngineConfig struct {
	Presenter  overlay.Presenter
	Screen     pool.Screen
	Backend    platform.Backend
	Scheduler  uiloop.Scheduler
	Registrar  hotkeys.Registrar
	Foreground topmost.ForegroundSource
	Clipboard  Clipboard
	Store      Store
	Logger     *slog.Logger
	// Level, if set, follows the log_level setting.
	Level *slog.LevelVar

	// Quit is called by the Quit menu item.
	Quit func()
	// OnChange fires after anything the menu reflects has changed.
	OnChange func()
}

// Engine is the runtime behind hotkeys, the menu and the IPC handler.
type Engine struct {
	backend   platform.Backend
	clipboard Clipboard
	store     Store
	logger    *slog.Logger
	level     *slog.LevelVar
	quit      func()
	onChange  func()

	settings *config.Config
	notice   string
	// unbound holds single-chord bindings that could not be registered.
	// They stay out of the chord plan until their chord changes.
	unbound map[hotkeys.Slot]string

	pool    *pool.Pool
	router  *hotkeys.Router
	arbiter *topmost.Arbiter
}

var (
	_ hotkeys.Target  = (*Engine)(nil)
	_ menu.Controller = (*Engine)(nil)
	_ ipc.Handler     = (*Engine)(nil)
)

// NewEngine builds an engine for settings. notice is shown in the menu until
// the next successful reload, typically a load error that forced defaults.
func NewEngine(cfg EngineConfig, settings *config.Config, notice string) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		backend:   cfg.Backend,
		clipboard: cfg.Clipboard,
		store:     cfg.Store,
		logger:    logger,
		level:     cfg.Level,
		quit:      cfg.Quit,
		onChange:  cfg.OnChange,
		settings:  settings.Clone(),
		notice:    notice,
		unbound:   map[hotkeys.Slot]string{},
	}

	pc := poolConfig(e.settings)
	pc.Presenter = cfg.Presenter
	pc.Screen = cfg.Screen
	pc.Scheduler = cfg.Scheduler
	pc.Logger = logger
	pc.OnBoxChanged = e.rememberBox
	pc.OnBoxMoved = func(geometry.Rect) { e.changed() }
	e.pool = pool.New(pc)

	e.router = hotkeys.NewRouter(cfg.Registrar, e, logger)
	e.arbiter = topmost.New(topmost.Config{
		Surfaces:  e.pool,
		Scheduler: cfg.Scheduler,
		Source:    cfg.Foreground,
		Logger:    logger,
		Strategy:  strategy(e.settings.Topmost.Strategy),
		Interval:  interval(e.settings.Topmost.IntervalMS),
		Rivals:    rivals(e.settings.Topmost.Rivals),
	})
	return e
}

// Start registers hotkeys, arms the arbiter and restores remembered guide
// sets. A chord that cannot be registered disables just its binding: line
// slots are switched off and saved, other chords are left unbound.
func (e *Engine) Start() {
	e.setLevel(e.settings.LogLevel)
	if failed, _ := e.registerHotkeys(planWithout(e.settings, e.unbound), false); len(failed) > 0 {
		next := e.settings.Clone()
		notice, dirty := e.unbind(next, failed)
		e.addNotice(notice)
		if dirty {
			e.commit(next)
		}
	}
	e.arbiter.SetEnabled(e.settings.Topmost.Enabled)
	for i, g := range e.settings.Guides {
		if g.Enabled && i < pool.GuideSets {
			if err := e.pool.ShowGuides(i); err != nil {
				e.logger.Warn("daemon: restore guides failed", "set", i, "error", err)
			}
		}
	}
	e.changed()
}

// Close releases every chord and surface.
func (e *Engine) Close() {
	e.arbiter.Disarm()
	e.router.UnregisterAll()
	e.pool.Close()
}

// Settings returns a copy of the settings in effect.
func (e *Engine) Settings() *config.Config { return e.settings.Clone() }

// Pool exposes the overlay pool.
func (e *Engine) Pool() *pool.Pool { return e.pool }

// Arbiter exposes the topmost arbiter.
func (e *Engine) Arbiter() *topmost.Arbiter { return e.arbiter }

// HandlePointer routes a pointer event from the presenter to the pool.
func (e *Engine) HandlePointer(id overlay.ID, ev overlay.PointerEvent) {
	if err := e.pool.HandlePointer(id, ev); err != nil {
		e.logger.Debug("daemon: pointer event dropped", "id", id, "error", err)
	}
}

// Relayout re-fits every surface to the current monitor layout.
func (e *Engine) Relayout() {
	e.pool.Relayout()
	e.changed()
}

func (e *Engine) changed() {
	if e.onChange != nil {
		e.onChange()
	}
}

func (e *Engine) setLevel(name string) {
	if e.level == nil {
		return
	}
	e.level.Set(parseLevel(name))
}

// hotkey registration

type slotChords struct {
	slot   hotkeys.Slot
	action hotkeys.Action
	chords []string
}

func chordPlan(cfg *config.Config) []slotChords {
	if !cfg.HotkeysEnabled {
		return nil
	}
	var plan []slotChords
	if c := strings.TrimSpace(cfg.TemporaryLine.Hotkey); c != "" {
		plan = append(plan, slotChords{
			slot:   hotkeys.Slot{Kind: overlay.KindTemporaryLine},
			action: hotkeys.ActionShow,
			chords: []string{c},
		})
	}
	for _, k := range []struct {
		kind overlay.Kind
		line config.LineKind
	}{
		{overlay.KindVerticalLine, cfg.VerticalLines},
		{overlay.KindHorizontalLine, cfg.HorizontalLines},
	} {
		for i, s := range k.line.Slots {
			if !s.Enabled {
				continue
			}
			plan = append(plan, slotChords{
				slot:   hotkeys.Slot{Kind: k.kind, Index: i},
				chords: []string{s.ShowHotkey, s.HideHotkey},
			})
		}
	}
	if c := strings.TrimSpace(cfg.BoundingBox.ToggleHotkey); c != "" {
		plan = append(plan, slotChords{
			slot:   hotkeys.Slot{Kind: overlay.KindBoxEdge},
			action: hotkeys.ActionToggle,
			chords: []string{c},
		})
	}
	return plan
}

// planKey identifies a chord plan so unchanged plans are not re-registered.
func planKey(plan []slotChords) string {
	var b strings.Builder
	for _, p := range plan {
		fmt.Fprintf(&b, "%s:%d:%s;", p.slot, p.action, strings.Join(p.chords, ","))
	}
	return b.String()
}

// planWithout is cfg's chord plan minus the unbound single chords.
func planWithout(cfg *config.Config, unbound map[hotkeys.Slot]string) []slotChords {
	var plan []slotChords
	for _, p := range chordPlan(cfg) {
		if c, ok := unbound[p.slot]; ok && len(p.chords) == 1 && c == p.chords[0] {
			continue
		}
		plan = append(plan, p)
	}
	return plan
}

// singleChord returns the chord cfg assigns to a single-chord slot.
func singleChord(cfg *config.Config, slot hotkeys.Slot) string {
	switch slot.Kind {
	case overlay.KindTemporaryLine:
		return strings.TrimSpace(cfg.TemporaryLine.Hotkey)
	case overlay.KindBoxEdge:
		return strings.TrimSpace(cfg.BoundingBox.ToggleHotkey)
	}
	return ""
}

// keepUnbound returns the unbound entries whose chord next still assigns.
func (e *Engine) keepUnbound(next *config.Config) map[hotkeys.Slot]string {
	kept := make(map[hotkeys.Slot]string, len(e.unbound))
	for slot, c := range e.unbound {
		if singleChord(next, slot) == c {
			kept[slot] = c
		}
	}
	return kept
}

// registerHotkeys registers plan. When strict, the first failure is
// returned; otherwise it is logged, the remaining slots still register and
// the failed entries are returned.
func (e *Engine) registerHotkeys(plan []slotChords, strict bool) ([]slotChords, error) {
	var failed []slotChords
	for _, p := range plan {
		var err error
		if len(p.chords) == 2 {
			err = e.router.RegisterPair(p.slot, p.chords[0], p.chords[1])
		} else {
			err = e.router.Register(p.chords[0], p.slot, p.action)
		}
		if err == nil {
			continue
		}
		if strict {
			return nil, err
		}
		e.logger.Warn("daemon: failed to register hotkey", "slot", p.slot, "chords", p.chords, "error", err)
		failed = append(failed, p)
	}
	return failed, nil
}

// unbind rolls failed bindings back in cfg. Line slots are disabled, which
// reports dirty; single chords are recorded as unbound. The returned notice
// names every chord that was dropped.
func (e *Engine) unbind(cfg *config.Config, failed []slotChords) (notice string, dirty bool) {
	names := make([]string, 0, len(failed))
	for _, p := range failed {
		var slots []config.LineSlot
		switch p.slot.Kind {
		case overlay.KindVerticalLine:
			slots = cfg.VerticalLines.Slots
		case overlay.KindHorizontalLine:
			slots = cfg.HorizontalLines.Slots
		default:
			e.unbound[p.slot] = p.chords[0]
		}
		if p.slot.Index < len(slots) {
			slots[p.slot.Index].Enabled = false
			dirty = true
		}
		names = append(names, strings.Join(p.chords, "/"))
	}
	return "Hotkeys in use elsewhere, disabled: " + strings.Join(names, ", "), dirty
}

func (e *Engine) addNotice(notice string) {
	if e.notice == "" {
		e.notice = notice
		return
	}
	e.notice += "; " + notice
}

// hotkeys.Target

// Show implements hotkeys.Target.
func (e *Engine) Show(slot hotkeys.Slot) error {
	defer e.changed()
	switch slot.Kind {
	case overlay.KindTemporaryLine:
		return e.pool.FlashTemporary()
	case overlay.KindBoxEdge:
		return e.pool.ShowBox()
	case overlay.KindGuideLine:
		return e.pool.ShowGuides(slot.Index)
	default:
		return e.pool.ShowLine(slot.Kind, slot.Index)
	}
}

// Hide implements hotkeys.Target.
func (e *Engine) Hide(slot hotkeys.Slot) error {
	defer e.changed()
	switch slot.Kind {
	case overlay.KindTemporaryLine:
		return e.pool.CloseSlot(slot.Kind, 0)
	case overlay.KindBoxEdge:
		e.pool.HideBox()
		return nil
	case overlay.KindGuideLine:
		return e.pool.HideGuides(slot.Index)
	default:
		return e.pool.HideLine(slot.Kind, slot.Index)
	}
}

// Toggle implements hotkeys.Target.
func (e *Engine) Toggle(slot hotkeys.Slot) error {
	defer e.changed()
	switch slot.Kind {
	case overlay.KindTemporaryLine:
		return e.pool.FlashTemporary()
	case overlay.KindBoxEdge:
		return e.pool.ToggleBox()
	case overlay.KindGuideLine:
		return e.pool.ToggleGuides(slot.Index)
	default:
		return e.pool.ToggleLine(slot.Kind, slot.Index)
	}
}

// settings

// MenuState implements menu.Controller.
func (e *Engine) MenuState() menu.State {
	st := menu.State{
		Settings:  *e.settings.Clone(),
		BoxShown:  e.pool.BoxShown(),
		AllHidden: e.pool.AllHidden(),
		Notice:    e.notice,
	}
	for i := range st.GuidesShown {
		st.GuidesShown[i] = e.pool.GuidesShown(i)
	}
	return st
}

// UpdateSettings applies fn to a copy of the settings. The copy is
// sanitized, validated and applied; only then does it replace the current
// settings and get saved. A failure at any step leaves everything as it was.
func (e *Engine) UpdateSettings(fn func(*config.Config)) error {
	next := e.settings.Clone()
	fn(next)
	next.Sanitize()
	if err := next.Validate(); err != nil {
		return err
	}
	if _, err := e.apply(e.settings, next, true); err != nil {
		return err
	}
	e.commit(next)
	return nil
}

// apply brings the runtime in line with next. Only the hotkey step can fail,
// and it runs first so a conflict leaves the previous settings intact. When
// not strict, conflicting bindings are rolled back in next instead and the
// returned notice names them.
func (e *Engine) apply(prev, next *config.Config, strict bool) (string, error) {
	var notice string
	kept := e.keepUnbound(next)
	if plan := planWithout(next, kept); planKey(planWithout(prev, e.unbound)) != planKey(plan) {
		e.router.UnregisterAll()
		failed, err := e.registerHotkeys(plan, strict)
		if err != nil {
			e.router.UnregisterAll()
			e.registerHotkeys(planWithout(prev, e.unbound), false)
			return "", fmt.Errorf("hotkeys: %w", err)
		}
		e.unbound = kept
		if len(failed) > 0 {
			notice, _ = e.unbind(next, failed)
		}
	} else {
		e.unbound = kept
	}

	e.setLevel(next.LogLevel)

	e.pool.SetLineSettings(overlay.KindTemporaryLine, temporarySettings(next.TemporaryLine))
	e.pool.SetLineSettings(overlay.KindVerticalLine, lineSettings(next.VerticalLines, "#0000FF"))
	e.pool.SetLineSettings(overlay.KindHorizontalLine, lineSettings(next.HorizontalLines, "#00FF00"))
	for _, k := range []struct {
		kind  overlay.Kind
		slots []config.LineSlot
	}{
		{overlay.KindVerticalLine, next.VerticalLines.Slots},
		{overlay.KindHorizontalLine, next.HorizontalLines.Slots},
	} {
		for i, s := range k.slots {
			if !s.Enabled && i < pool.MaxSlots {
				e.logErr("daemon: close disabled slot failed", e.pool.CloseSlot(k.kind, i), "kind", k.kind, "slot", i)
			}
		}
	}
	e.pool.SetBoxSettings(boxSettings(next.BoundingBox))
	for i := 0; i < len(next.Guides) && i < pool.GuideSets; i++ {
		e.logErr("daemon: guide settings failed", e.pool.SetGuideSettings(i, guideSettings(next.Guides[i])), "set", i)
		if i < len(prev.Guides) && prev.Guides[i].Enabled != next.Guides[i].Enabled {
			if next.Guides[i].Enabled {
				e.logErr("daemon: show guides failed", e.pool.ShowGuides(i), "set", i)
			} else {
				e.logErr("daemon: hide guides failed", e.pool.HideGuides(i), "set", i)
			}
		}
	}

	pt, nt := prev.Topmost, next.Topmost
	e.arbiter.SetRivals(rivals(nt.Rivals))
	if pt.Strategy != nt.Strategy {
		e.arbiter.SetStrategy(strategy(nt.Strategy))
	}
	if pt.IntervalMS != nt.IntervalMS {
		e.arbiter.SetInterval(interval(nt.IntervalMS))
	}
	if pt.Enabled != nt.Enabled {
		e.arbiter.SetEnabled(nt.Enabled)
	}
	return notice, nil
}

// commit makes next current and saves it. A failed save is logged; the
// runtime already reflects next.
func (e *Engine) commit(next *config.Config) {
	e.settings = next
	if e.store != nil {
		if err := e.store.Save(next); err != nil {
			e.logger.Warn("daemon: failed to save settings", "error", err)
		}
	}
	e.changed()
}

func (e *Engine) rememberBox(r geometry.Rect) {
	if configRect(r) == e.settings.BoundingBox.Rect {
		return
	}
	next := e.settings.Clone()
	next.BoundingBox.Rect = configRect(r)
	e.commit(next)
}

// rememberGuides records which guide sets are visible so they come back
// after a restart.
func (e *Engine) rememberGuides() {
	next := e.settings.Clone()
	dirty := false
	for i := 0; i < len(next.Guides) && i < pool.GuideSets; i++ {
		if shown := e.pool.GuidesShown(i); next.Guides[i].Enabled != shown {
			next.Guides[i].Enabled = shown
			dirty = true
		}
	}
	if dirty {
		e.commit(next)
		return
	}
	e.changed()
}

// Reload re-reads the settings file. On failure the current settings stay
// in effect and the error becomes the menu notice.
func (e *Engine) Reload() error {
	if e.store == nil {
		return errors.New("no settings store")
	}
	next, err := e.store.Load()
	var notice string
	if err == nil {
		notice, err = e.apply(e.settings, next, false)
	}
	if err != nil {
		e.notice = fmt.Sprintf("Reload failed: %v", err)
		e.logger.Warn("daemon: reload failed, keeping current settings", "error", err)
		e.changed()
		return err
	}
	e.settings = next
	e.notice = notice
	e.logger.Info("daemon: settings reloaded", "path", e.store.Path())
	e.changed()
	return nil
}

// Quit implements menu.Controller.
func (e *Engine) Quit() {
	if e.quit != nil {
		e.quit()
	}
}

// box

// ToggleBox implements menu.Controller.
func (e *Engine) ToggleBox() error {
	defer e.changed()
	return e.pool.ToggleBox()
}

// ShowBox shows the bounding box.
func (e *Engine) ShowBox() error {
	defer e.changed()
	return e.pool.ShowBox()
}

// HideBox hides the bounding box.
func (e *Engine) HideBox() error {
	e.pool.HideBox()
	e.changed()
	return nil
}

// ResetBox centers the box on the cursor's monitor.
func (e *Engine) ResetBox() error {
	defer e.changed()
	return e.pool.ResetBox()
}

// Box reports the box geometry.
func (e *Engine) Box() ipc.BoxData {
	r := e.pool.BoxRect()
	return ipc.BoxData{Visible: e.pool.BoxShown(), X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

// CopyBox implements menu.Controller.
func (e *Engine) CopyBox() error {
	_, err := e.CopyBoxToClipboard()
	return err
}

// CopyBoxToClipboard writes "x,y,w,h" to the clipboard and returns the box.
func (e *Engine) CopyBoxToClipboard() (ipc.BoxData, error) {
	b := e.Box()
	if e.clipboard == nil {
		return b, ErrNoClipboard
	}
	if err := e.clipboard.WriteText(b.ClipboardText()); err != nil {
		return b, fmt.Errorf("copy box: %w", err)
	}
	return b, nil
}

// guides

// ShowGuides shows guide set (zero-based).
func (e *Engine) ShowGuides(set int) error {
	defer e.rememberGuides()
	return e.pool.ShowGuides(set)
}

// HideGuides hides guide set (zero-based).
func (e *Engine) HideGuides(set int) error {
	defer e.rememberGuides()
	return e.pool.HideGuides(set)
}

// ToggleGuides implements menu.Controller.
func (e *Engine) ToggleGuides(set int) error {
	defer e.rememberGuides()
	return e.pool.ToggleGuides(set)
}

// ShowGuidesOnly hides the box and every other guide set, then shows set.
func (e *Engine) ShowGuidesOnly(set int) error {
	defer e.rememberGuides()
	if set < 0 || set >= pool.GuideSets {
		return fmt.Errorf("guide set %d: %w", set, pool.ErrInvalidSlot)
	}
	e.pool.HideBox()
	for i := 0; i < pool.GuideSets; i++ {
		if i != set {
			e.logErr("daemon: hide guides failed", e.pool.HideGuides(i), "set", i)
		}
	}
	return e.pool.ShowGuides(set)
}

// ResetGuides re-derives guide set from the box.
func (e *Engine) ResetGuides(set int) error {
	return e.pool.ResetGuides(set)
}

// lines

// SetAllHidden implements menu.Controller.
func (e *Engine) SetAllHidden(hidden bool) {
	e.pool.SetAllHidden(hidden)
	e.changed()
}

// CloseAllLines implements menu.Controller.
func (e *Engine) CloseAllLines() {
	e.pool.CloseAllLines()
	e.changed()
}

func lineKind(kind string) (overlay.Kind, error) {
	k, err := overlay.ParseLineKind(kind)
	if err != nil {
		return 0, err
	}
	if k != overlay.KindVerticalLine && k != overlay.KindHorizontalLine {
		return 0, fmt.Errorf("%s is not a persistent line kind", k)
	}
	return k, nil
}

// ShowLine shows a persistent line slot (zero-based) at the cursor.
func (e *Engine) ShowLine(kind string, slot int) error {
	k, err := lineKind(kind)
	if err != nil {
		return err
	}
	return e.Show(hotkeys.Slot{Kind: k, Index: slot})
}

// HideLine hides a persistent line slot.
func (e *Engine) HideLine(kind string, slot int) error {
	k, err := lineKind(kind)
	if err != nil {
		return err
	}
	return e.Hide(hotkeys.Slot{Kind: k, Index: slot})
}

// ToggleLine flips a persistent line slot.
func (e *Engine) ToggleLine(kind string, slot int) error {
	k, err := lineKind(kind)
	if err != nil {
		return err
	}
	return e.Toggle(hotkeys.Slot{Kind: k, Index: slot})
}

// FlashLine shows the temporary line at the cursor.
func (e *Engine) FlashLine() error {
	return e.pool.FlashTemporary()
}

// topmost

// SetTopmost changes the arbiter settings and saves them.
func (e *Engine) SetTopmost(p ipc.SetTopmostPayload) error {
	var strat config.Strategy
	if p.Strategy != "" {
		s, err := topmost.ParseStrategy(p.Strategy)
		if err != nil {
			return err
		}
		strat = config.Strategy(s.String())
	}
	return e.UpdateSettings(func(c *config.Config) {
		if p.Enabled != nil {
			c.Topmost.Enabled = *p.Enabled
		}
		if strat != "" {
			c.Topmost.Strategy = strat
		}
		if p.IntervalMS > 0 {
			c.Topmost.IntervalMS = p.IntervalMS
		}
	})
}

// AddRival enables title as a rival, adding it if it is new.
func (e *Engine) AddRival(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return errors.New("rival title must not be empty")
	}
	return e.UpdateSettings(func(c *config.Config) {
		for i, r := range c.Topmost.Rivals {
			if strings.EqualFold(r.Title, title) {
				c.Topmost.Rivals[i].Enabled = true
				return
			}
		}
		c.Topmost.Rivals = append(c.Topmost.Rivals, config.Rival{Title: title, Enabled: true})
	})
}

// RemoveRival deletes title from the rival list.
func (e *Engine) RemoveRival(title string) error {
	title = strings.TrimSpace(title)
	idx := -1
	for i, r := range e.settings.Topmost.Rivals {
		if strings.EqualFold(r.Title, title) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("no rival %q", title)
	}
	return e.UpdateSettings(func(c *config.Config) {
		c.Topmost.Rivals = append(c.Topmost.Rivals[:idx:idx], c.Topmost.Rivals[idx+1:]...)
	})
}

// SetMenuOpen pauses reassert passes while a menu is open.
func (e *Engine) SetMenuOpen(open bool) {
	e.arbiter.SetMenuOpen(open)
}

// queries

// Status reports the engine state. The IPC server fills in uptime.
func (e *Engine) Status() (ipc.StatusData, error) {
	bindings := ipc.BindingsInfo(e.router.Bindings())
	sort.Slice(bindings, func(i, j int) bool { return bindings[i].Chord < bindings[j].Chord })
	st := ipc.StatusData{
		Notice:         e.notice,
		HotkeysEnabled: e.settings.HotkeysEnabled,
		Bindings:       bindings,
		Overlays:       e.pool.Status(),
		Topmost: ipc.TopmostStatus{
			Enabled:    e.settings.Topmost.Enabled,
			State:      e.arbiter.State().String(),
			Strategy:   e.arbiter.Strategy().String(),
			IntervalMS: int(e.arbiter.Interval() / time.Millisecond),
			Passes:     e.arbiter.Passes(),
			MenuOpen:   e.arbiter.MenuOpen(),
			Rivals:     e.arbiter.Rivals(),
		},
	}
	if e.store != nil {
		st.ConfigPath = e.store.Path()
	}
	return st, nil
}

// Monitors lists the displays.
func (e *Engine) Monitors() ([]ipc.MonitorInfo, error) {
	displays, err := e.backend.Displays()
	if err != nil {
		return nil, err
	}
	out := make([]ipc.MonitorInfo, 0, len(displays))
	for _, d := range displays {
		out = append(out, ipc.MonitorInfo{
			ID:     d.ID,
			Name:   d.Name,
			X:      d.Bounds.X,
			Y:      d.Bounds.Y,
			Width:  d.Bounds.Width,
			Height: d.Bounds.Height,
		})
	}
	return out, nil
}

// Windows lists titled top-level windows as rival candidates.
func (e *Engine) Windows() ([]ipc.WindowInfo, error) {
	wins, err := e.backend.ListWindows()
	if err != nil {
		return nil, err
	}
	out := make([]ipc.WindowInfo, 0, len(wins))
	for _, w := range wins {
		out = append(out, ipc.WindowInfo{ID: uint32(w.ID), Title: w.Title, Class: w.AppID})
	}
	return out, nil
}

// Menu returns the menu projection.
func (e *Engine) Menu() []menu.Item {
	return menu.Build(e.MenuState())
}

// InvokeMenu runs the menu item id.
func (e *Engine) InvokeMenu(id string) error {
	return menu.Apply(e, id)
}

func (e *Engine) logErr(msg string, err error, args ...any) {
	if err != nil {
		e.logger.Warn(msg, append(args, "error", err)...)
	}
}
