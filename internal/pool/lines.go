package pool

import (
	"fmt"

	"github.com/1broseidon/screenline/internal/drag"
	"github.com/1broseidon/screenline/internal/fade"
	"github.com/1broseidon/screenline/internal/geometry"
	"github.com/1broseidon/screenline/internal/overlay"
)

// Placement is one line's rectangle on one monitor.
type Placement struct {
	Monitor int
	Rect    geometry.Rect
}

// FanOut resolves a "show at the cursor" request into per-monitor line
// rectangles. In AllMonitors mode every monitor gets a line at the cursor's
// offset from its own monitor's origin, clamped so the line stays on screen.
// In CurrentMonitor mode only the cursor's monitor gets one.
func FanOut(axis geometry.Axis, mode DisplayMode, monitors []geometry.Rect, cursor geometry.Point, thickness int) []Placement {
	cur := geometry.MonitorAt(monitors, cursor)
	if cur < 0 {
		return nil
	}
	if thickness < 1 {
		thickness = 1
	}
	if mode == CurrentMonitor {
		m := monitors[cur]
		return []Placement{{Monitor: cur, Rect: lineRect(axis, m, along(axis, cursor), thickness)}}
	}

	rel := along(axis, cursor) - origin(axis, monitors[cur])
	out := make([]Placement, 0, len(monitors))
	for i, m := range monitors {
		out = append(out, Placement{Monitor: i, Rect: lineRect(axis, m, origin(axis, m)+rel, thickness)})
	}
	return out
}

// along returns the coordinate a line of this axis is positioned by.
func along(axis geometry.Axis, p geometry.Point) int {
	if axis == geometry.Vertical {
		return p.X
	}
	return p.Y
}

func origin(axis geometry.Axis, m geometry.Rect) int {
	return along(axis, geometry.Point{X: m.X, Y: m.Y})
}

// lineRect spans monitor m at pos, clamped to keep the full thickness inside.
func lineRect(axis geometry.Axis, m geometry.Rect, pos, thickness int) geometry.Rect {
	if axis == geometry.Vertical {
		x := geometry.ClampInt(pos, m.X, m.Right()-thickness)
		return geometry.Rect{X: x, Y: m.Y, Width: thickness, Height: m.Height}
	}
	y := geometry.ClampInt(pos, m.Y, m.Bottom()-thickness)
	return geometry.Rect{X: m.X, Y: y, Width: m.Width, Height: thickness}
}

func axisOf(kind overlay.Kind) geometry.Axis {
	if kind == overlay.KindVerticalLine {
		return geometry.Vertical
	}
	return geometry.Horizontal
}

type lineSlot struct {
	kind     overlay.Kind
	mode     DisplayMode
	surfaces []*overlay.Surface
	shown    bool
	// rel is the line's offset from its monitor's origin along its axis.
	rel int
}

// remember records the offset of pos from monitor mon.
func (ls *lineSlot) remember(mons []geometry.Rect, mon, pos int) {
	if mon >= 0 && mon < len(mons) {
		ls.rel = pos - origin(axisOf(ls.kind), mons[mon])
	}
}

func (p *Pool) settingsFor(kind overlay.Kind) *LineSettings {
	switch kind {
	case overlay.KindVerticalLine:
		return &p.vertical
	case overlay.KindHorizontalLine:
		return &p.horizontal
	default:
		return &p.temp
	}
}

func checkSlot(kind overlay.Kind, slot int) error {
	if kind != overlay.KindVerticalLine && kind != overlay.KindHorizontalLine {
		return fmt.Errorf("%s is not a persistent line kind: %w", kind, ErrInvalidSlot)
	}
	if slot < 0 || slot >= MaxSlots {
		return fmt.Errorf("%s slot %d: %w", kind, slot, ErrInvalidSlot)
	}
	return nil
}

// place makes the slot's surfaces match placements, reusing surfaces bound to
// the same monitor and releasing the rest.
func (p *Pool) place(k key, placements []Placement, draggable bool) (*lineSlot, error) {
	st := p.settingsFor(k.kind)
	ls, ok := p.lines[k]
	if !ok {
		ls = &lineSlot{kind: k.kind}
		p.lines[k] = ls
	}
	ls.mode = st.Mode

	byMonitor := make(map[int]*overlay.Surface, len(ls.surfaces))
	for _, s := range ls.surfaces {
		byMonitor[s.Monitor()] = s
	}

	next := make([]*overlay.Surface, 0, len(placements))
	var firstErr error
	for _, pl := range placements {
		if s, ok := byMonitor[pl.Monitor]; ok && s.Valid() {
			delete(byMonitor, pl.Monitor)
			if err := s.SetGeometry(pl.Rect); err != nil && firstErr == nil {
				firstErr = err
			}
			next = append(next, s)
			continue
		}
		s, err := p.create(pl.Monitor, overlay.Spec{
			Kind:         k.kind,
			Rect:         pl.Rect,
			Style:        st.Style,
			ClickThrough: st.ClickThrough,
		})
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if draggable {
			p.attachLineDrag(k, s)
		}
		next = append(next, s)
	}
	for _, s := range byMonitor {
		p.release(s)
	}
	ls.surfaces = next
	return ls, firstErr
}

func (p *Pool) attachLineDrag(k key, s *overlay.Surface) {
	ctrl := drag.NewAxis(axisOf(k.kind), drag.Config{
		Bounds: s.Rect,
		Apply:  func(r geometry.Rect) error { return p.moveLine(k, s, r) },
	})
	p.attach(s, ctrl)
}

// moveLine applies a dragged line position. Lines fanned out to all monitors
// follow in lock-step at the same offset from their own monitor's origin.
func (p *Pool) moveLine(k key, dragged *overlay.Surface, r geometry.Rect) error {
	if err := dragged.SetGeometry(r); err != nil {
		return err
	}
	ls, ok := p.lines[k]
	if !ok {
		return nil
	}
	mons := p.screen.Monitors()
	if dragged.Monitor() < 0 || dragged.Monitor() >= len(mons) {
		return nil
	}
	axis := axisOf(k.kind)
	ls.remember(mons, dragged.Monitor(), along(axis, geometry.Point{X: r.X, Y: r.Y}))
	if ls.mode != AllMonitors || len(ls.surfaces) < 2 {
		return nil
	}
	rel := ls.rel
	for _, s := range ls.surfaces {
		if s == dragged || s.Monitor() < 0 || s.Monitor() >= len(mons) {
			continue
		}
		m := mons[s.Monitor()]
		logErr(p.logger, "pool: lock-step move failed", s.SetGeometry(lineRect(axis, m, origin(axis, m)+rel, thicknessOf(s.Style()))), "id", s.ID())
	}
	return nil
}

// FlashTemporary shows the temporary line at the cursor and starts its fade.
// A running fade is cancelled first.
func (p *Pool) FlashTemporary() error {
	p.fader.Stop()
	cursor, cur, mons, err := p.cursorMonitor()
	if err != nil {
		return err
	}
	k := key{kind: overlay.KindTemporaryLine}
	placements := FanOut(geometry.Horizontal, p.temp.Mode, mons, cursor, thicknessOf(p.temp.Style))
	ls, err := p.place(k, placements, false)
	if err != nil {
		p.logger.Warn("pool: temporary line placement incomplete", "error", err)
	}
	ls.remember(mons, cur, cursor.Y)
	targets := make([]fade.Target, 0, len(ls.surfaces))
	for _, s := range ls.surfaces {
		logErr(p.logger, "pool: raise failed", s.Raise(), "id", s.ID())
		targets = append(targets, s)
	}
	p.fader.Start(targets, p.temp.Opacity, p.temp.Duration)
	return nil
}

// ShowLine shows a persistent line slot at the cursor. Showing an already
// visible slot moves it to the cursor.
func (p *Pool) ShowLine(kind overlay.Kind, slot int) error {
	if err := checkSlot(kind, slot); err != nil {
		return err
	}
	cursor, cur, mons, err := p.cursorMonitor()
	if err != nil {
		return err
	}
	st := p.settingsFor(kind)
	k := key{kind: kind, slot: slot}
	ls, placeErr := p.place(k, FanOut(axisOf(kind), st.Mode, mons, cursor, thicknessOf(st.Style)), true)
	ls.shown = true
	ls.remember(mons, cur, along(axisOf(kind), cursor))
	p.showSurfaces(ls)
	return placeErr
}

// showSurfaces brings a shown slot's surfaces to its kind's opacity, or keeps
// them at zero while everything is hidden.
func (p *Pool) showSurfaces(ls *lineSlot) {
	opacity := p.settingsFor(ls.kind).Opacity
	if p.allHidden || !ls.shown {
		opacity = 0
	}
	for _, s := range ls.surfaces {
		if s.Opacity() != opacity {
			logErr(p.logger, "pool: show line failed", s.SetOpacity(opacity), "kind", ls.kind, "id", s.ID())
		}
		if opacity > 0 {
			logErr(p.logger, "pool: raise failed", s.Raise(), "id", s.ID())
		}
	}
}

// HideLine hides a slot's surfaces but keeps them alive for a fast re-show.
func (p *Pool) HideLine(kind overlay.Kind, slot int) error {
	if err := checkSlot(kind, slot); err != nil {
		return err
	}
	ls, ok := p.lines[key{kind: kind, slot: slot}]
	if !ok {
		return nil
	}
	ls.shown = false
	for _, s := range ls.surfaces {
		logErr(p.logger, "pool: hide line failed", s.Hide(), "kind", kind, "slot", slot)
	}
	return nil
}

// ToggleLine flips a slot between shown and hidden.
func (p *Pool) ToggleLine(kind overlay.Kind, slot int) error {
	if p.LineShown(kind, slot) {
		return p.HideLine(kind, slot)
	}
	return p.ShowLine(kind, slot)
}

// LineShown reports the logical visibility of a slot.
func (p *Pool) LineShown(kind overlay.Kind, slot int) bool {
	ls, ok := p.lines[key{kind: kind, slot: slot}]
	return ok && ls.shown
}

// CloseSlot destroys a slot's surfaces. Safe to call from inside a drag or
// fade callback.
func (p *Pool) CloseSlot(kind overlay.Kind, slot int) error {
	if kind == overlay.KindTemporaryLine {
		p.fader.Stop()
	} else if err := checkSlot(kind, slot); err != nil {
		return err
	}
	p.closeLine(key{kind: kind, slot: slot})
	return nil
}

func (p *Pool) closeLine(k key) {
	ls, ok := p.lines[k]
	if !ok {
		return
	}
	for _, s := range ls.surfaces {
		p.release(s)
	}
	delete(p.lines, k)
}

// CloseAllLines destroys every persistent line slot.
func (p *Pool) CloseAllLines() {
	for k := range p.lines {
		if k.kind != overlay.KindTemporaryLine {
			p.closeLine(k)
		}
	}
}

// SetAllHidden hides every persistent line without changing which slots are
// logically shown; clearing it brings the shown slots back.
func (p *Pool) SetAllHidden(hidden bool) {
	p.allHidden = hidden
	for k, ls := range p.lines {
		if k.kind == overlay.KindTemporaryLine || !ls.shown {
			continue
		}
		opacity := p.settingsFor(k.kind).Opacity
		if hidden {
			opacity = 0
		}
		for _, s := range ls.surfaces {
			logErr(p.logger, "pool: show/hide all failed", s.SetOpacity(opacity), "kind", k.kind, "slot", k.slot)
		}
	}
}

// AllHidden reports the show/hide-all state.
func (p *Pool) AllHidden() bool { return p.allHidden }

// LineSettings returns the current settings for a line kind.
func (p *Pool) LineSettings(kind overlay.Kind) LineSettings { return *p.settingsFor(kind) }

// SetLineSettings restyles live surfaces of kind. A display mode change
// applies from the next show.
func (p *Pool) SetLineSettings(kind overlay.Kind, st LineSettings) {
	*p.settingsFor(kind) = st
	t := thicknessOf(st.Style)
	axis := axisOf(kind)
	for k, ls := range p.lines {
		if k.kind != kind {
			continue
		}
		for _, s := range ls.surfaces {
			r := s.Rect()
			if axis == geometry.Vertical {
				r.Width = t
			} else {
				r.Height = t
			}
			logErr(p.logger, "pool: resize line failed", s.SetGeometry(r), "id", s.ID())
			logErr(p.logger, "pool: restyle line failed", s.SetStyle(st.Style), "id", s.ID())
			logErr(p.logger, "pool: click-through failed", s.SetClickThrough(st.ClickThrough), "id", s.ID())
			if kind != overlay.KindTemporaryLine && ls.shown && !p.allHidden {
				logErr(p.logger, "pool: opacity failed", s.SetOpacity(st.Opacity), "id", s.ID())
			}
		}
	}
}

// relayoutLine refits a slot to a new monitor layout, keeping its offset
// from each monitor's origin. Persistent all-monitor slots fan out again, so
// an added monitor gets its own line.
func (p *Pool) relayoutLine(k key, ls *lineSlot, mons []geometry.Rect) {
	axis := axisOf(k.kind)
	if k.kind != overlay.KindTemporaryLine && ls.mode == AllMonitors {
		t := thicknessOf(p.settingsFor(k.kind).Style)
		placements := make([]Placement, 0, len(mons))
		for i, m := range mons {
			placements = append(placements, Placement{Monitor: i, Rect: lineRect(axis, m, origin(axis, m)+ls.rel, t)})
		}
		mode := ls.mode
		if _, err := p.place(k, placements, true); err != nil {
			p.logger.Warn("pool: relayout fan-out incomplete", "kind", k.kind, "slot", k.slot, "error", err)
		}
		ls.mode = mode
		p.showSurfaces(ls)
		return
	}
	kept := ls.surfaces[:0]
	for _, s := range ls.surfaces {
		if s.Monitor() < 0 || s.Monitor() >= len(mons) {
			p.release(s)
			continue
		}
		m := mons[s.Monitor()]
		logErr(p.logger, "pool: relayout line failed", s.SetGeometry(lineRect(axis, m, origin(axis, m)+ls.rel, thicknessOf(s.Style()))), "id", s.ID())
		kept = append(kept, s)
	}
	ls.surfaces = kept
}
