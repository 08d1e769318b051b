package pool

import (
	"sort"

	"github.com/1broseidon/screenline/internal/geometry"
	"github.com/1broseidon/screenline/internal/overlay"
)

// LineStatus describes one line slot.
type LineStatus struct {
	Kind    string          `json:"kind"`
	Slot    int             `json:"slot"`
	Visible bool            `json:"visible"`
	Rects   []geometry.Rect `json:"rects"`
}

// GuideStatus describes one guide set.
type GuideStatus struct {
	Set     int             `json:"set"`
	Visible bool            `json:"visible"`
	Rails   []geometry.Rect `json:"rails,omitempty"`
}

// Status is a point-in-time view of the pool.
type Status struct {
	Lines      []LineStatus  `json:"lines"`
	Box        geometry.Rect `json:"box"`
	BoxVisible bool          `json:"box_visible"`
	Guides     []GuideStatus `json:"guides"`
	AllHidden  bool          `json:"all_hidden"`
	Surfaces   int           `json:"surfaces"`
	Visible    int           `json:"visible_surfaces"`
	Dragging   bool          `json:"dragging"`
}

// Status snapshots the pool for display.
func (p *Pool) Status() Status {
	st := Status{
		Box:        p.box.rect,
		BoxVisible: p.box.shown,
		AllHidden:  p.allHidden,
		Surfaces:   len(p.routes),
		Visible:    len(p.VisibleSurfaces()),
		Dragging:   p.Dragging(),
	}
	for k, ls := range p.lines {
		visible := ls.shown && !p.allHidden
		if k.kind == overlay.KindTemporaryLine {
			visible = p.fader.Running()
		}
		rects := make([]geometry.Rect, 0, len(ls.surfaces))
		for _, s := range ls.surfaces {
			rects = append(rects, s.Rect())
		}
		st.Lines = append(st.Lines, LineStatus{Kind: k.kind.String(), Slot: k.slot, Visible: visible, Rects: rects})
	}
	sort.Slice(st.Lines, func(i, j int) bool {
		if st.Lines[i].Kind != st.Lines[j].Kind {
			return st.Lines[i].Kind < st.Lines[j].Kind
		}
		return st.Lines[i].Slot < st.Lines[j].Slot
	})
	for i, g := range p.guides {
		st.Guides = append(st.Guides, GuideStatus{Set: i, Visible: g.shown, Rails: p.GuideRails(i)})
	}
	return st
}
