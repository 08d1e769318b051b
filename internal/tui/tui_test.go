package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/screenline/internal/ipc"
	"github.com/1broseidon/screenline/internal/menu"
	"github.com/1broseidon/screenline/internal/pool"
	"github.com/1broseidon/screenline/internal/topmost"
)

type fakeClient struct {
	boxShown   bool
	menuCalls  int
	invoked    []string
	invokeErr  error
	added      []string
	removed    []string
	topmost    []ipc.SetTopmostPayload
	menuOpen   []bool
	statusErr  error
	windowList []ipc.WindowInfo
}

func (f *fakeClient) GetStatus() (*ipc.StatusData, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return &ipc.StatusData{
		DaemonRunning: true,
		Overlays: pool.Status{
			Lines:      []pool.LineStatus{{Kind: "vertical", Slot: 0, Visible: true}, {Kind: "vertical", Slot: 1}},
			BoxVisible: f.boxShown,
		},
		Topmost: ipc.TopmostStatus{
			State:      "disarmed",
			Strategy:   "polling",
			IntervalMS: 1000,
			Rivals:     []topmost.Rival{{Title: "PixPin", Enabled: true}},
		},
	}, nil
}

func (f *fakeClient) GetMenu() ([]menu.Item, error) {
	f.menuCalls++
	return []menu.Item{
		{ID: "box", Label: "Bounding box", Kind: menu.KindSubmenu, Items: []menu.Item{
			{ID: "box.visible", Label: "Show box", Kind: menu.KindCheck, Checked: f.boxShown},
		}},
		{Kind: menu.KindSeparator},
		{ID: "lines.close_all", Label: "Close all lines", Kind: menu.KindAction},
		{ID: "quit", Label: "Quit", Kind: menu.KindAction},
	}, nil
}

func (f *fakeClient) InvokeMenu(id string) error {
	if f.invokeErr != nil {
		return f.invokeErr
	}
	f.invoked = append(f.invoked, id)
	if id == "box.visible" {
		f.boxShown = !f.boxShown
	}
	return nil
}

func (f *fakeClient) GetWindows() (*ipc.WindowsData, error) {
	return &ipc.WindowsData{Windows: f.windowList}, nil
}

func (f *fakeClient) SetTopmost(p ipc.SetTopmostPayload) error {
	f.topmost = append(f.topmost, p)
	return nil
}

func (f *fakeClient) AddRival(title string) error {
	f.added = append(f.added, title)
	return nil
}

func (f *fakeClient) RemoveRival(title string) error {
	f.removed = append(f.removed, title)
	return nil
}

func (f *fakeClient) SetMenuOpen(open bool) error {
	f.menuOpen = append(f.menuOpen, open)
	return nil
}

var size = tea.WindowSizeMsg{Width: 100, Height: 30}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestLevelAtFollowsPath(t *testing.T) {
	items, _ := (&fakeClient{}).GetMenu()

	tests := []struct {
		name     string
		path     []string
		wantLen  int
		wantPath []string
	}{
		{"root", nil, 4, nil},
		{"submenu", []string{"box"}, 1, []string{"box"}},
		{"vanished child", []string{"box", "gone"}, 1, []string{"box"}},
		{"vanished root", []string{"gone"}, 4, []string{}},
		{"action is not a submenu", []string{"quit"}, 4, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, path := levelAt(items, tt.path)
			if len(level) != tt.wantLen {
				t.Fatalf("expected %d items, got %d", tt.wantLen, len(level))
			}
			if strings.Join(path, "/") != strings.Join(tt.wantPath, "/") {
				t.Fatalf("expected path %v, got %v", tt.wantPath, path)
			}
		})
	}
}

func TestBreadcrumb(t *testing.T) {
	items, _ := (&fakeClient{}).GetMenu()
	if got := breadcrumb(items, nil); got != "Menu" {
		t.Fatalf("expected Menu, got %q", got)
	}
	if got := breadcrumb(items, []string{"box"}); got != "Menu › Bounding box" {
		t.Fatalf("expected submenu breadcrumb, got %q", got)
	}
}

func TestBuildMenuEntriesSkipsSeparators(t *testing.T) {
	items, _ := (&fakeClient{}).GetMenu()
	entries := buildMenuEntries(items)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.(menuEntry).item.Kind == menu.KindSeparator {
			t.Fatalf("separator was not dropped")
		}
	}
}

func TestMenuMark(t *testing.T) {
	tests := []struct {
		item menu.Item
		want string
	}{
		{menu.Item{Kind: menu.KindCheck, Checked: true}, "[x]"},
		{menu.Item{Kind: menu.KindCheck}, "[ ]"},
		{menu.Item{Kind: menu.KindRadio, Checked: true}, "(•)"},
		{menu.Item{Kind: menu.KindRadio}, "( )"},
		{menu.Item{Kind: menu.KindSubmenu}, " ▸ "},
		{menu.Item{Kind: menu.KindAction}, "   "},
	}
	for _, tt := range tests {
		if got := menuMark(tt.item); got != tt.want {
			t.Fatalf("%s checked=%v: expected %q, got %q", tt.item.Kind, tt.item.Checked, tt.want, got)
		}
	}
}

func newMenuTab(t *testing.T, c *fakeClient) MenuTab {
	t.Helper()
	tab := NewMenuTab(c)
	tab, _ = tab.Update(size)
	return tab
}

func TestMenuTabInvokeReloads(t *testing.T) {
	c := &fakeClient{}
	tab := newMenuTab(t, c)
	tab.list.Select(1)

	tab, _ = tab.Update(key("enter"))
	if len(c.invoked) != 1 || c.invoked[0] != "lines.close_all" {
		t.Fatalf("expected lines.close_all invoked, got %v", c.invoked)
	}
	if c.menuCalls != 2 {
		t.Fatalf("expected the menu to be reloaded, got %d fetches", c.menuCalls)
	}
	if tab.statusText != "done: Close all lines" || tab.failed {
		t.Fatalf("unexpected status %q failed=%v", tab.statusText, tab.failed)
	}
}

func TestMenuTabSubmenuNavigation(t *testing.T) {
	c := &fakeClient{}
	tab := newMenuTab(t, c)

	tab, _ = tab.Update(key("enter"))
	if len(tab.path) != 1 || tab.path[0] != "box" {
		t.Fatalf("expected to be in the box submenu, got %v", tab.path)
	}
	if tab.list.Title != "Menu › Bounding box" {
		t.Fatalf("unexpected title %q", tab.list.Title)
	}

	tab, _ = tab.Update(key("enter"))
	if len(c.invoked) != 1 || c.invoked[0] != "box.visible" {
		t.Fatalf("expected box.visible invoked, got %v", c.invoked)
	}
	entry := tab.list.SelectedItem().(menuEntry)
	if !entry.item.Checked {
		t.Fatalf("expected reloaded check item to be checked")
	}
	if len(tab.path) != 1 {
		t.Fatalf("expected to stay in the submenu after invoking, got %v", tab.path)
	}

	tab, _ = tab.Update(key("backspace"))
	if len(tab.path) != 0 {
		t.Fatalf("expected to be back at the root, got %v", tab.path)
	}
	if got := len(tab.list.Items()); got != 3 {
		t.Fatalf("expected 3 root entries, got %d", got)
	}
}

func TestMenuTabQuitNeedsConfirmation(t *testing.T) {
	c := &fakeClient{}
	tab := newMenuTab(t, c)
	tab.list.Select(2)

	tab, _ = tab.Update(key("enter"))
	if !tab.confirming {
		t.Fatalf("expected quit to ask for confirmation")
	}
	if len(c.invoked) != 0 {
		t.Fatalf("expected no invocation before confirming, got %v", c.invoked)
	}

	tab, _ = tab.Update(key("esc"))
	if tab.confirming {
		t.Fatalf("expected esc to cancel the confirmation")
	}
	if len(c.invoked) != 0 {
		t.Fatalf("expected cancel not to invoke, got %v", c.invoked)
	}
}

func TestMenuTabInvokeError(t *testing.T) {
	c := &fakeClient{invokeErr: errors.New("boom")}
	tab := newMenuTab(t, c)
	tab.list.Select(1)

	tab, _ = tab.Update(key("enter"))
	if !tab.failed || !strings.Contains(tab.statusText, "boom") {
		t.Fatalf("expected error status, got %q failed=%v", tab.statusText, tab.failed)
	}
}

func TestBuildRivalItems(t *testing.T) {
	rivals := []topmost.Rival{
		{Title: "PixPin", Enabled: true},
		{Title: "Paster - Snipaste"},
	}
	windows := []ipc.WindowInfo{
		{ID: 1, Title: "pixpin"},
		{ID: 2, Title: "Zed", Class: "dev.zed.Zed"},
		{ID: 3, Title: "alacritty"},
		{ID: 4, Title: "  "},
		{ID: 5, Title: "Zed"},
	}

	items := buildRivalItems(rivals, windows)
	var got []string
	for _, it := range items {
		ri := it.(rivalItem)
		got = append(got, ri.title)
	}
	want := "PixPin|Paster - Snipaste|alacritty|Zed"
	if strings.Join(got, "|") != want {
		t.Fatalf("expected %s, got %s", want, strings.Join(got, "|"))
	}
	if ri := items[1].(rivalItem); !ri.configured || ri.enabled {
		t.Fatalf("expected disabled configured rival, got %+v", ri)
	}
	if d := items[3].(rivalItem).Description(); d != "open window | dev.zed.Zed" {
		t.Fatalf("unexpected description %q", d)
	}
}

func TestRivalsTabAddWindowAndRemove(t *testing.T) {
	c := &fakeClient{windowList: []ipc.WindowInfo{{ID: 7, Title: "Flameshot"}}}
	tab := NewRivalsTab(c, []topmost.Rival{{Title: "PixPin", Enabled: true}})
	tab, _ = tab.Update(size)

	tab.list.Select(1)
	tab, _ = tab.Update(key("enter"))
	if len(c.added) != 1 || c.added[0] != "Flameshot" {
		t.Fatalf("expected Flameshot added, got %v", c.added)
	}
	if len(tab.rivals) != 2 {
		t.Fatalf("expected 2 rivals, got %d", len(tab.rivals))
	}

	tab.list.Select(0)
	tab, _ = tab.Update(key("x"))
	if len(c.removed) != 1 || c.removed[0] != "PixPin" {
		t.Fatalf("expected PixPin removed, got %v", c.removed)
	}
	if len(tab.rivals) != 1 || tab.rivals[0].Title != "Flameshot" {
		t.Fatalf("unexpected rivals %+v", tab.rivals)
	}
}

func TestRivalsTabRemoveIgnoresOpenWindows(t *testing.T) {
	c := &fakeClient{windowList: []ipc.WindowInfo{{ID: 7, Title: "Flameshot"}}}
	tab := NewRivalsTab(c, nil)
	tab, _ = tab.Update(size)

	tab, _ = tab.Update(key("x"))
	if len(c.removed) != 0 {
		t.Fatalf("expected no removal for an open window, got %v", c.removed)
	}
}

func TestRivalsTabAddTypedTitle(t *testing.T) {
	c := &fakeClient{}
	tab := NewRivalsTab(c, nil)
	tab, _ = tab.Update(size)

	tab, _ = tab.Update(key("a"))
	if !tab.adding {
		t.Fatalf("expected add mode")
	}
	tab, _ = tab.Update(key("Snipaste"))
	tab, _ = tab.Update(key("enter"))
	if tab.adding {
		t.Fatalf("expected add mode to end")
	}
	if len(c.added) != 1 || c.added[0] != "Snipaste" {
		t.Fatalf("expected Snipaste added, got %v", c.added)
	}
}

func TestTopmostDraftPayload(t *testing.T) {
	tests := []struct {
		interval string
		wantErr  bool
		wantMS   int
	}{
		{"500", false, 500},
		{" 250 ", false, 250},
		{"0", true, 0},
		{"-5", true, 0},
		{"fast", true, 0},
	}
	for _, tt := range tests {
		d := &topmostDraft{enabled: true, strategy: "event", interval: tt.interval}
		p, err := d.payload()
		if tt.wantErr {
			if err == nil {
				t.Fatalf("interval %q: expected error", tt.interval)
			}
			continue
		}
		if err != nil {
			t.Fatalf("interval %q: unexpected error: %v", tt.interval, err)
		}
		if p.Enabled == nil || !*p.Enabled || p.Strategy != "event" || p.IntervalMS != tt.wantMS {
			t.Fatalf("interval %q: unexpected payload %+v", tt.interval, p)
		}
	}
}

func TestDraftFromDefaultsStrategy(t *testing.T) {
	d := draftFrom(ipc.TopmostStatus{IntervalMS: 200})
	if d.strategy != "polling" || d.interval != "200" {
		t.Fatalf("unexpected draft %+v", d)
	}
}

func TestStatusSummary(t *testing.T) {
	if got := statusSummary(nil); len(got) != 1 || got[0] != "daemon not running" {
		t.Fatalf("unexpected disconnected summary %v", got)
	}

	c := &fakeClient{boxShown: true}
	st, _ := c.GetStatus()
	got := strings.Join(statusSummary(st), " ")
	want := "daemon connected lines:1 box topmost:disarmed"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRenderTabBarListsEveryTab(t *testing.T) {
	bar := renderTabBar(TabRivals, 120)
	for i := Tab(0); i < tabCount; i++ {
		if !strings.Contains(bar, i.String()) {
			t.Fatalf("expected tab bar to contain %q", i.String())
		}
	}
}

func TestModelTabSwitching(t *testing.T) {
	var m tea.Model = newModel(&fakeClient{})
	m, _ = m.Update(size)

	m, _ = m.Update(key("tab"))
	if got := m.(model).activeTab; got != TabTopmost {
		t.Fatalf("expected %s, got %s", TabTopmost, got)
	}
	m, _ = m.Update(key("3"))
	if got := m.(model).activeTab; got != TabRivals {
		t.Fatalf("expected %s, got %s", TabRivals, got)
	}
	m, _ = m.Update(key("tab"))
	if got := m.(model).activeTab; got != TabMenu {
		t.Fatalf("expected wrap to %s, got %s", TabMenu, got)
	}

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestModelCapturingSwallowsShortcuts(t *testing.T) {
	c := &fakeClient{}
	var m tea.Model = newModel(c)
	m, _ = m.Update(size)
	m, _ = m.Update(key("3"))
	m, _ = m.Update(key("a"))

	m, _ = m.Update(key("1"))
	if got := m.(model).activeTab; got != TabRivals {
		t.Fatalf("expected typing to stay on %s, got %s", TabRivals, got)
	}
	m, _ = m.Update(key("q"))
	m, _ = m.Update(key("enter"))
	if len(c.added) != 1 || c.added[0] != "1q" {
		t.Fatalf("expected typed title 1q, got %v", c.added)
	}
}

func TestModelDisconnected(t *testing.T) {
	c := &fakeClient{statusErr: errors.New("no daemon")}
	m := newModel(c)
	if m.status != nil {
		t.Fatalf("expected no status when the daemon is unreachable")
	}
	m.refresh()
	if m.status != nil {
		t.Fatalf("expected refresh to keep the disconnected state")
	}
}
