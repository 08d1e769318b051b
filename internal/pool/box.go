package pool

import (
	"github.com/1broseidon/screenline/internal/drag"
	"github.com/1broseidon/screenline/internal/geometry"
	"github.com/1broseidon/screenline/internal/overlay"
)

// Edge indexes the four sides of a box or guide set.
type Edge int

const (
	EdgeTop Edge = iota
	EdgeBottom
	EdgeLeft
	EdgeRight
)

func (e Edge) String() string {
	return [...]string{"top", "bottom", "left", "right"}[e]
}

func (e Edge) axis() geometry.Axis {
	if e == EdgeLeft || e == EdgeRight {
		return geometry.Vertical
	}
	return geometry.Horizontal
}

// BoxEdges returns the four edge rectangles of r, each thickness wide and
// lying inside r.
func BoxEdges(r geometry.Rect, thickness int) [4]geometry.Rect {
	return [4]geometry.Rect{
		EdgeTop:    {X: r.X, Y: r.Y, Width: r.Width, Height: thickness},
		EdgeBottom: {X: r.X, Y: r.Bottom() - thickness, Width: r.Width, Height: thickness},
		EdgeLeft:   {X: r.X, Y: r.Y, Width: thickness, Height: r.Height},
		EdgeRight:  {X: r.Right() - thickness, Y: r.Y, Width: thickness, Height: r.Height},
	}
}

// InitialBoxRect places a remembered rectangle for a first show: an empty
// rectangle becomes the centered half of the monitor, anything smaller than
// the placement minimum grows, and the result is shifted into the monitor.
func InitialBoxRect(remembered, monitor geometry.Rect) geometry.Rect {
	r := remembered
	if r.Empty() {
		r = geometry.CenteredHalf(monitor)
	}
	r = r.EnsureMinSize(geometry.MinPlacementSize, geometry.MinPlacementSize)
	return r.ClampInto(monitor)
}

type boxState struct {
	settings BoxSettings
	rect     geometry.Rect
	placed   bool
	shown    bool
	edges    [4]*overlay.Surface
	ctrl     *drag.Controller
}

// ShowBox shows the bounding box. The first show places the remembered
// rectangle on the cursor's monitor; later shows reuse the last position.
func (p *Pool) ShowBox() error {
	b := p.box
	if !b.placed {
		_, cur, mons, err := p.cursorMonitor()
		if err != nil {
			return err
		}
		b.rect = InitialBoxRect(b.rect, mons[cur])
		b.placed = true
	}
	if err := p.ensureBoxSurfaces(); err != nil {
		return err
	}
	b.shown = true
	for _, s := range b.edges {
		logErr(p.logger, "pool: show box failed", s.SetOpacity(b.settings.Opacity), "id", s.ID())
		logErr(p.logger, "pool: raise failed", s.Raise(), "id", s.ID())
	}
	return nil
}

func (p *Pool) ensureBoxSurfaces() error {
	b := p.box
	if b.edges[0].Valid() {
		return nil
	}
	if b.ctrl == nil {
		b.ctrl = drag.NewFree(drag.Config{
			Bounds:  func() geometry.Rect { return b.rect },
			Apply:   p.setBoxRect,
			MinSize: geometry.MinResizeSize,
			OnBoundsChanged: func(r geometry.Rect) {
				if p.onBoxMoved != nil {
					p.onBoxMoved(r)
				}
			},
			OnDragEnd: func(r geometry.Rect) {
				if p.onBoxChanged != nil {
					p.onBoxChanged(r)
				}
			},
		})
	}
	mons := p.screen.Monitors()
	mon := geometry.MonitorAt(mons, b.rect.Center())
	edges := BoxEdges(b.rect, thicknessOf(b.settings.Style))
	for i := range b.edges {
		s, err := p.create(mon, overlay.Spec{
			Kind:         overlay.KindBoxEdge,
			Rect:         edges[i],
			Style:        b.settings.Style,
			ClickThrough: b.settings.ClickThrough,
		})
		if err != nil {
			p.closeBox()
			return err
		}
		p.attach(s, b.ctrl)
		b.edges[i] = s
	}
	return nil
}

func (p *Pool) setBoxRect(r geometry.Rect) error {
	b := p.box
	edges := BoxEdges(r, thicknessOf(b.settings.Style))
	for i, s := range b.edges {
		if err := s.SetGeometry(edges[i]); err != nil {
			return err
		}
	}
	b.rect = r
	return nil
}

// HideBox hides the box edges, keeping them alive.
func (p *Pool) HideBox() {
	b := p.box
	b.shown = false
	for _, s := range b.edges {
		if s != nil {
			logErr(p.logger, "pool: hide box failed", s.Hide(), "id", s.ID())
		}
	}
}

// ToggleBox flips box visibility.
func (p *Pool) ToggleBox() error {
	if p.box.shown {
		p.HideBox()
		return nil
	}
	return p.ShowBox()
}

// BoxShown reports whether the box is visible.
func (p *Pool) BoxShown() bool { return p.box.shown }

// BoxRect returns the current (or remembered) box rectangle.
func (p *Pool) BoxRect() geometry.Rect { return p.box.rect }

// ResetBox moves the box to the centered half of the cursor's monitor and
// re-seeds any visible guide set from it.
func (p *Pool) ResetBox() error {
	_, cur, mons, err := p.cursorMonitor()
	if err != nil {
		return err
	}
	r := geometry.CenteredHalf(mons[cur])
	b := p.box
	b.placed = true
	if b.edges[0].Valid() {
		if err := p.setBoxRect(r); err != nil {
			return err
		}
	} else {
		b.rect = r
	}
	for _, g := range p.guides {
		if g.shown {
			p.seedGuides(g, r, mons)
		}
	}
	if p.onBoxChanged != nil {
		p.onBoxChanged(r)
	}
	return nil
}

// BoxSettings returns the box appearance.
func (p *Pool) BoxSettings() BoxSettings { return p.box.settings }

// SetBoxSettings restyles the box edges.
func (p *Pool) SetBoxSettings(st BoxSettings) {
	b := p.box
	b.settings = st
	if !b.edges[0].Valid() {
		return
	}
	logErr(p.logger, "pool: resize box failed", p.setBoxRect(b.rect))
	for _, s := range b.edges {
		logErr(p.logger, "pool: restyle box failed", s.SetStyle(st.Style), "id", s.ID())
		logErr(p.logger, "pool: click-through failed", s.SetClickThrough(st.ClickThrough), "id", s.ID())
		if b.shown {
			logErr(p.logger, "pool: opacity failed", s.SetOpacity(st.Opacity), "id", s.ID())
		}
	}
}

func (p *Pool) closeBox() {
	b := p.box
	for i, s := range b.edges {
		p.release(s)
		b.edges[i] = nil
	}
	b.shown = false
}

func (p *Pool) relayoutBox(mons []geometry.Rect) {
	b := p.box
	if !b.placed {
		return
	}
	mon := geometry.MonitorAt(mons, b.rect.Center())
	r := b.rect.ClampInto(mons[mon])
	if r == b.rect {
		return
	}
	if b.edges[0].Valid() {
		logErr(p.logger, "pool: relayout box failed", p.setBoxRect(r))
		return
	}
	b.rect = r
}
