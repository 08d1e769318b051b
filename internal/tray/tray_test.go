package tray

import (
	"bytes"
	"context"
	"image/png"
	"testing"
	"time"

	"github.com/1broseidon/screenline/internal/menu"
)

func TestIconIsPNG(t *testing.T) {
	data := Icon()
	if len(data) == 0 {
		t.Fatalf("expected icon data")
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode icon: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 32 {
		t.Fatalf("expected 32x32 icon, got %dx%d", b.Dx(), b.Dy())
	}
	if !bytes.Equal(Icon(), data) {
		t.Fatalf("expected icon to be cached")
	}
}

type fakeItem struct {
	title   string
	parent  *fakeItem
	visible bool
	checked bool
	enabled bool
	clicked chan struct{}
}

func (f *fakeItem) SetTitle(title string) { f.title = title }
func (f *fakeItem) Show()                 { f.visible = true }
func (f *fakeItem) Hide()                 { f.visible = false }
func (f *fakeItem) Check()                { f.checked = true }
func (f *fakeItem) Uncheck()              { f.checked = false }
func (f *fakeItem) Enable()               { f.enabled = true }
func (f *fakeItem) Disable()              { f.enabled = false }

type fakeBuilder struct {
	added      []*fakeItem
	separators int
}

func (b *fakeBuilder) Add(parent item, it menu.Item) (item, <-chan struct{}) {
	f := &fakeItem{title: it.Label, clicked: make(chan struct{}, 1)}
	if p, ok := parent.(*fakeItem); ok {
		f.parent = p
	}
	b.added = append(b.added, f)
	return f, f.clicked
}

func (b *fakeBuilder) AddSeparator() { b.separators++ }

func (b *fakeBuilder) find(t *testing.T, title string) *fakeItem {
	t.Helper()
	for _, f := range b.added {
		if f.title == title {
			return f
		}
	}
	t.Fatalf("no item titled %q", title)
	return nil
}

type fakeSource struct {
	invoked chan string
}

func (s *fakeSource) Items(context.Context) ([]menu.Item, string, error) { return nil, "", nil }
func (s *fakeSource) Invoke(_ context.Context, id string) error {
	s.invoked <- id
	return nil
}

func newTestTray() (*Tray, *fakeBuilder, *fakeSource) {
	src := &fakeSource{invoked: make(chan string, 4)}
	b := &fakeBuilder{}
	tr := New(src, nil)
	tr.b = b
	return tr, b, src
}

func TestApplyReusesNodesAndHidesVanished(t *testing.T) {
	tr, b, _ := newTestTray()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tr.apply(ctx, []menu.Item{
		{ID: "hotkeys.enabled", Label: "Hotkeys enabled", Kind: menu.KindCheck, Checked: true},
		{Kind: menu.KindSeparator},
		{ID: "box", Label: "Bounding box", Kind: menu.KindSubmenu, Items: []menu.Item{
			{ID: "box.reset", Label: "Reset", Kind: menu.KindAction},
		}},
		{ID: "quit", Label: "Quit", Kind: menu.KindAction, Disabled: true},
	})
	if len(b.added) != 4 || b.separators != 1 {
		t.Fatalf("expected 4 items and 1 separator, got %d and %d", len(b.added), b.separators)
	}
	hotkeys := b.find(t, "Hotkeys enabled")
	if !hotkeys.checked || !hotkeys.visible || !hotkeys.enabled {
		t.Fatalf("expected a visible checked item, got %+v", hotkeys)
	}
	if reset := b.find(t, "Reset"); reset.parent != b.find(t, "Bounding box") {
		t.Fatalf("expected Reset to be nested under the box submenu")
	}
	if b.find(t, "Quit").enabled {
		t.Fatalf("expected Quit to be disabled")
	}

	tr.apply(ctx, []menu.Item{
		{ID: "hotkeys.enabled", Label: "Hotkeys on", Kind: menu.KindCheck},
		{Kind: menu.KindSeparator},
		{ID: "quit", Label: "Quit", Kind: menu.KindAction},
	})
	if len(b.added) != 4 {
		t.Fatalf("expected nodes to be reused, got %d created", len(b.added))
	}
	if b.separators != 1 {
		t.Fatalf("expected separators only on the first pass, got %d", b.separators)
	}
	if hotkeys.title != "Hotkeys on" || hotkeys.checked {
		t.Fatalf("expected the reused item to be retitled and unchecked, got %+v", hotkeys)
	}
	if b.find(t, "Bounding box").visible || b.find(t, "Reset").visible {
		t.Fatalf("expected vanished items to be hidden")
	}
	if !b.find(t, "Quit").enabled {
		t.Fatalf("expected Quit to be enabled again")
	}
}

func TestClickInvokesItem(t *testing.T) {
	tr, b, src := newTestTray()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tr.apply(ctx, []menu.Item{
		{ID: "box", Label: "Bounding box", Kind: menu.KindSubmenu, Items: []menu.Item{
			{ID: "box.reset", Label: "Reset", Kind: menu.KindAction},
		}},
	})
	b.find(t, "Reset").clicked <- struct{}{}

	select {
	case id := <-src.invoked:
		if id != "box.reset" {
			t.Fatalf("expected box.reset, got %q", id)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected the click to invoke the item")
	}
}
