package pool

import (
	"fmt"

	"github.com/1broseidon/screenline/internal/drag"
	"github.com/1broseidon/screenline/internal/geometry"
	"github.com/1broseidon/screenline/internal/overlay"
)

// Rails derives a guide set from a rectangle: the top and bottom rails span
// the screen's width at r's top and bottom, the left and right rails span its
// height at r's left and right.
func Rails(r, screen geometry.Rect, thickness int) [4]geometry.Rect {
	return [4]geometry.Rect{
		EdgeTop:    {X: screen.X, Y: r.Y, Width: screen.Width, Height: thickness},
		EdgeBottom: {X: screen.X, Y: r.Bottom() - thickness, Width: screen.Width, Height: thickness},
		EdgeLeft:   {X: r.X, Y: screen.Y, Width: thickness, Height: screen.Height},
		EdgeRight:  {X: r.Right() - thickness, Y: screen.Y, Width: thickness, Height: screen.Height},
	}
}

// respan keeps a rail's perpendicular position and stretches it across screen.
func respan(e Edge, rail, screen geometry.Rect, thickness int) geometry.Rect {
	if e.axis() == geometry.Vertical {
		return geometry.Rect{X: rail.X, Y: screen.Y, Width: thickness, Height: screen.Height}
	}
	return geometry.Rect{X: screen.X, Y: rail.Y, Width: screen.Width, Height: thickness}
}

type guideSet struct {
	index    int
	settings GuideSettings
	rails    [4]*overlay.Surface
	shown    bool
}

func (g *guideSet) live() bool { return g.rails[0].Valid() }

func (p *Pool) guideSet(i int) (*guideSet, error) {
	if i < 0 || i >= GuideSets {
		return nil, fmt.Errorf("guide set %d: %w", i, ErrInvalidSlot)
	}
	return p.guides[i], nil
}

// seedRect is the rectangle a guide set is derived from: the box if it is
// visible, otherwise where the box would be placed.
func (p *Pool) seedRect(mons []geometry.Rect, cur int) geometry.Rect {
	if p.box.shown {
		return p.box.rect
	}
	return InitialBoxRect(p.box.rect, mons[cur])
}

// ShowGuides shows guide set i. A set that was never shown, or was closed,
// is seeded once from the box; afterwards its rails keep their own positions.
func (p *Pool) ShowGuides(i int) error {
	g, err := p.guideSet(i)
	if err != nil {
		return err
	}
	if !g.live() {
		_, cur, mons, err := p.cursorMonitor()
		if err != nil {
			return err
		}
		if err := p.seedGuides(g, p.seedRect(mons, cur), mons); err != nil {
			return err
		}
	}
	g.shown = true
	opacity := g.settings.RailOpacity()
	for _, s := range g.rails {
		logErr(p.logger, "pool: show guides failed", s.SetOpacity(opacity), "set", i)
		logErr(p.logger, "pool: raise failed", s.Raise(), "id", s.ID())
	}
	return nil
}

// HideGuides hides guide set i, keeping rail positions for the next show.
func (p *Pool) HideGuides(i int) error {
	g, err := p.guideSet(i)
	if err != nil {
		return err
	}
	g.shown = false
	for _, s := range g.rails {
		if s != nil {
			logErr(p.logger, "pool: hide guides failed", s.Hide(), "set", i)
		}
	}
	return nil
}

// ToggleGuides flips guide set i.
func (p *Pool) ToggleGuides(i int) error {
	g, err := p.guideSet(i)
	if err != nil {
		return err
	}
	if g.shown {
		return p.HideGuides(i)
	}
	return p.ShowGuides(i)
}

// GuidesShown reports whether guide set i is visible.
func (p *Pool) GuidesShown(i int) bool {
	g, err := p.guideSet(i)
	return err == nil && g.shown
}

// ResetGuides re-derives guide set i from the box.
func (p *Pool) ResetGuides(i int) error {
	g, err := p.guideSet(i)
	if err != nil {
		return err
	}
	_, cur, mons, err := p.cursorMonitor()
	if err != nil {
		return err
	}
	if !g.live() {
		return nil
	}
	return p.seedGuides(g, p.seedRect(mons, cur), mons)
}

// GuideRails returns the rail rectangles of set i in top, bottom, left,
// right order, or nil if the set has no surfaces.
func (p *Pool) GuideRails(i int) []geometry.Rect {
	g, err := p.guideSet(i)
	if err != nil || !g.live() {
		return nil
	}
	out := make([]geometry.Rect, 0, len(g.rails))
	for _, s := range g.rails {
		out = append(out, s.Rect())
	}
	return out
}

func (p *Pool) seedGuides(g *guideSet, r geometry.Rect, mons []geometry.Rect) error {
	screen := mons[geometry.MonitorAt(mons, r.Center())]
	rails := Rails(r, screen, thicknessOf(g.settings.Style))
	if g.live() {
		for i, s := range g.rails {
			logErr(p.logger, "pool: reseed rail failed", s.SetGeometry(rails[i]), "set", g.index, "edge", Edge(i))
		}
		return nil
	}
	mon := geometry.MonitorAt(mons, r.Center())
	for i := range g.rails {
		e := Edge(i)
		s, err := p.create(mon, overlay.Spec{
			Kind:         overlay.KindGuideLine,
			Rect:         rails[i],
			Style:        g.settings.Style,
			ClickThrough: !g.settings.Draggable,
		})
		if err != nil {
			p.closeGuides(g)
			return err
		}
		p.attach(s, drag.NewAxis(e.axis(), drag.Config{
			Bounds:          s.Rect,
			Apply:           s.SetGeometry,
			OnBoundsChanged: func(geometry.Rect) { p.respanOthers(g, e) },
		}))
		g.rails[i] = s
	}
	return nil
}

// respanOthers runs after rail `dragged` moved. The other rails keep their
// own positions; only their screen-spanning extent follows the monitor under
// the pointer.
func (p *Pool) respanOthers(g *guideSet, dragged Edge) {
	mons := p.screen.Monitors()
	if len(mons) == 0 {
		return
	}
	screen := mons[geometry.MonitorAt(mons, p.screen.Pointer())]
	t := thicknessOf(g.settings.Style)
	for i, s := range g.rails {
		if Edge(i) == dragged || !s.Valid() {
			continue
		}
		logErr(p.logger, "pool: respan rail failed", s.SetGeometry(respan(Edge(i), s.Rect(), screen, t)), "set", g.index, "edge", Edge(i))
	}
}

// GuideSettings returns the appearance of guide set i.
func (p *Pool) GuideSettings(i int) GuideSettings {
	g, err := p.guideSet(i)
	if err != nil {
		return GuideSettings{}
	}
	return g.settings
}

// SetGuideSettings restyles guide set i. Turning Draggable off makes its
// rails click-through.
func (p *Pool) SetGuideSettings(i int, st GuideSettings) error {
	g, err := p.guideSet(i)
	if err != nil {
		return err
	}
	g.settings = st
	if !g.live() {
		return nil
	}
	t := thicknessOf(st.Style)
	for j, s := range g.rails {
		r := s.Rect()
		if Edge(j).axis() == geometry.Vertical {
			r.Width = t
		} else {
			r.Height = t
		}
		logErr(p.logger, "pool: resize rail failed", s.SetGeometry(r), "id", s.ID())
		logErr(p.logger, "pool: restyle rail failed", s.SetStyle(st.Style), "id", s.ID())
		logErr(p.logger, "pool: click-through failed", s.SetClickThrough(!st.Draggable), "id", s.ID())
		if g.shown {
			logErr(p.logger, "pool: opacity failed", s.SetOpacity(st.RailOpacity()), "id", s.ID())
		}
	}
	return nil
}

func (p *Pool) closeGuides(g *guideSet) {
	for i, s := range g.rails {
		p.release(s)
		g.rails[i] = nil
	}
	g.shown = false
}

func (p *Pool) relayoutGuides(g *guideSet, mons []geometry.Rect) {
	if !g.live() {
		return
	}
	corner := geometry.Point{X: g.rails[EdgeLeft].Rect().X, Y: g.rails[EdgeTop].Rect().Y}
	screen := mons[geometry.MonitorAt(mons, corner)]
	t := thicknessOf(g.settings.Style)
	for i, s := range g.rails {
		logErr(p.logger, "pool: relayout rail failed", s.SetGeometry(respan(Edge(i), s.Rect(), screen, t)), "id", s.ID())
	}
}
