// Package tray renders the menu projection as a system tray icon.
package tray

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/getlantern/systray"

	"github.com/1broseidon/screenline/internal/menu"
)

// Source reads the projection and runs selected items. Both are called from
// tray goroutines.
type Source interface {
	Items(ctx context.Context) (items []menu.Item, notice string, err error)
	Invoke(ctx context.Context, id string) error
}

// item is the part of a native menu entry the tray drives.
type item interface {
	SetTitle(title string)
	Show()
	Hide()
	Check()
	Uncheck()
	Enable()
	Disable()
}

// builder creates native menu entries. Add returns the entry and its click
// channel; parent is nil for top-level entries.
type builder interface {
	Add(parent item, it menu.Item) (item, <-chan struct{})
	AddSeparator()
}

type systrayBuilder struct{}

func (systrayBuilder) Add(parent item, it menu.Item) (item, <-chan struct{}) {
	checkable := it.Kind == menu.KindCheck || it.Kind == menu.KindRadio
	p, _ := parent.(*systray.MenuItem)
	var mi *systray.MenuItem
	switch {
	case p == nil && checkable:
		mi = systray.AddMenuItemCheckbox(it.Label, it.Label, it.Checked)
	case p == nil:
		mi = systray.AddMenuItem(it.Label, it.Label)
	case checkable:
		mi = p.AddSubMenuItemCheckbox(it.Label, it.Label, it.Checked)
	default:
		mi = p.AddSubMenuItem(it.Label, it.Label)
	}
	return mi, mi.ClickedCh
}

func (systrayBuilder) AddSeparator() { systray.AddSeparator() }

// Tray mirrors a menu projection into systray items. Items are created the
// first time their ID appears and hidden when it disappears, since systray
// items cannot be removed.
type Tray struct {
	src    Source
	logger *slog.Logger
	b      builder

	refresh chan struct{}

	mu    sync.Mutex
	nodes map[string]*node
	built bool
}

type node struct {
	item item
}

// New creates a tray over src.
func New(src Source, logger *slog.Logger) *Tray {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tray{
		src:     src,
		logger:  logger,
		b:       systrayBuilder{},
		refresh: make(chan struct{}, 1),
		nodes:   make(map[string]*node),
	}
}

// Refresh asks the tray to re-read the projection. It never blocks.
func (t *Tray) Refresh() {
	select {
	case t.refresh <- struct{}{}:
	default:
	}
}

// Run shows the icon and blocks until ctx is done. It must be called from
// the main goroutine.
func (t *Tray) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		systray.Quit()
	}()
	systray.Run(func() { t.onReady(ctx) }, func() { t.logger.Debug("tray: exited") })
}

func (t *Tray) onReady(ctx context.Context) {
	systray.SetIcon(Icon())
	systray.SetTitle("screenline")
	systray.SetTooltip("screenline")
	t.sync(ctx)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.refresh:
				t.sync(ctx)
			}
		}
	}()
}

func (t *Tray) sync(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	items, notice, err := t.src.Items(cctx)
	if err != nil {
		t.logger.Warn("tray: menu refresh failed", "error", err)
		return
	}
	tooltip := "screenline"
	if notice != "" {
		tooltip += "\n" + notice
	}
	systray.SetTooltip(tooltip)
	t.apply(ctx, items)
}

// apply mirrors items into the native menu.
func (t *Tray) apply(ctx context.Context, items []menu.Item) {
	t.mu.Lock()
	defer t.mu.Unlock()
	seen := make(map[string]bool)
	t.render(ctx, nil, items, seen)
	t.built = true
	for id, n := range t.nodes {
		if !seen[id] {
			n.item.Hide()
		}
	}
}

func (t *Tray) render(ctx context.Context, parent item, items []menu.Item, seen map[string]bool) {
	for _, it := range items {
		if it.Kind == menu.KindSeparator {
			// Separators exist only at the top level and only on the
			// first pass, since they cannot be moved later.
			if parent == nil && !t.built {
				t.b.AddSeparator()
			}
			continue
		}
		id := it.ID
		if id == "" {
			id = "label:" + it.Label
		}
		seen[id] = true
		n, ok := t.nodes[id]
		if !ok {
			n = t.create(ctx, parent, id, it)
			t.nodes[id] = n
		}
		n.item.SetTitle(it.Label)
		n.item.Show()
		if it.Kind == menu.KindCheck || it.Kind == menu.KindRadio {
			if it.Checked {
				n.item.Check()
			} else {
				n.item.Uncheck()
			}
		}
		if it.Disabled {
			n.item.Disable()
		} else {
			n.item.Enable()
		}
		if it.Kind == menu.KindSubmenu {
			t.render(ctx, n.item, it.Items, seen)
		}
	}
}

func (t *Tray) create(ctx context.Context, parent item, id string, it menu.Item) *node {
	mi, clicked := t.b.Add(parent, it)
	if it.Kind != menu.KindSubmenu && it.ID != "" {
		go t.clicks(ctx, clicked, it.ID)
	}
	return &node{item: mi}
}

func (t *Tray) clicks(ctx context.Context, clicked <-chan struct{}, id string) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-clicked:
			cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
			if err := t.src.Invoke(cctx, id); err != nil {
				t.logger.Warn("tray: menu action failed", "id", id, "error", err)
			}
			cancel()
			t.Refresh()
		}
	}
}
