// Package overlaytest provides an in-memory overlay.Presenter for tests.
package overlaytest

import (
	"fmt"
	"sort"

	"github.com/1broseidon/screenline/internal/geometry"
	"github.com/1broseidon/screenline/internal/overlay"
)

// Window is the recorded state of one presented surface.
type Window struct {
	Kind         overlay.Kind
	Rect         geometry.Rect
	Style        overlay.Style
	Opacity      float64
	ClickThrough bool
	Topmost      bool
	Cursor       geometry.DragMode
	Raises       int
	Destroyed    bool
}

// Recorder implements overlay.Presenter and remembers every call.
type Recorder struct {
	Windows map[overlay.ID]*Window
	Calls   []string

	// Fail, when set, is consulted before every call; a non-nil error is
	// returned instead of applying the call.
	Fail func(op string, id overlay.ID) error
}

var _ overlay.Presenter = (*Recorder)(nil)

// New returns an empty recorder.
func New() *Recorder {
	return &Recorder{Windows: make(map[overlay.ID]*Window)}
}

func (r *Recorder) call(op string, id overlay.ID) (*Window, error) {
	r.Calls = append(r.Calls, fmt.Sprintf("%s %d", op, id))
	if r.Fail != nil {
		if err := r.Fail(op, id); err != nil {
			return nil, err
		}
	}
	if op == "create" {
		return nil, nil
	}
	w, ok := r.Windows[id]
	if !ok || w.Destroyed {
		return nil, fmt.Errorf("%s: unknown surface %d", op, id)
	}
	return w, nil
}

func (r *Recorder) Create(id overlay.ID, spec overlay.Spec) error {
	if _, err := r.call("create", id); err != nil {
		return err
	}
	if w, ok := r.Windows[id]; ok && !w.Destroyed {
		return fmt.Errorf("create: surface %d already exists", id)
	}
	r.Windows[id] = &Window{
		Kind:         spec.Kind,
		Rect:         spec.Rect,
		Style:        spec.Style,
		Opacity:      spec.Opacity,
		ClickThrough: spec.ClickThrough,
		Topmost:      spec.Topmost,
	}
	return nil
}

func (r *Recorder) SetGeometry(id overlay.ID, rect geometry.Rect) error {
	w, err := r.call("geometry", id)
	if err != nil {
		return err
	}
	w.Rect = rect
	return nil
}

func (r *Recorder) SetStyle(id overlay.ID, s overlay.Style) error {
	w, err := r.call("style", id)
	if err != nil {
		return err
	}
	w.Style = s
	return nil
}

func (r *Recorder) SetOpacity(id overlay.ID, v float64) error {
	w, err := r.call("opacity", id)
	if err != nil {
		return err
	}
	w.Opacity = v
	return nil
}

func (r *Recorder) SetClickThrough(id overlay.ID, on bool) error {
	w, err := r.call("clickthrough", id)
	if err != nil {
		return err
	}
	w.ClickThrough = on
	return nil
}

func (r *Recorder) SetTopmost(id overlay.ID, on bool) error {
	w, err := r.call("topmost", id)
	if err != nil {
		return err
	}
	w.Topmost = on
	return nil
}

func (r *Recorder) Raise(id overlay.ID) error {
	w, err := r.call("raise", id)
	if err != nil {
		return err
	}
	w.Raises++
	return nil
}

func (r *Recorder) SetCursor(id overlay.ID, mode geometry.DragMode) error {
	w, err := r.call("cursor", id)
	if err != nil {
		return err
	}
	w.Cursor = mode
	return nil
}

func (r *Recorder) Destroy(id overlay.ID) error {
	w, err := r.call("destroy", id)
	if err != nil {
		return err
	}
	w.Destroyed = true
	return nil
}

// Live returns the IDs of surfaces that have not been destroyed, sorted.
func (r *Recorder) Live() []overlay.ID {
	var ids []overlay.ID
	for id, w := range r.Windows {
		if !w.Destroyed {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Count returns how many recorded calls had the given op.
func (r *Recorder) Count(op string) int {
	n := 0
	for _, c := range r.Calls {
		var got string
		var id overlay.ID
		if _, err := fmt.Sscanf(c, "%s %d", &got, &id); err == nil && got == op {
			n++
		}
	}
	return n
}

// Reset forgets recorded calls but keeps window state.
func (r *Recorder) Reset() {
	r.Calls = nil
}
