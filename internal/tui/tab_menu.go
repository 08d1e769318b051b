package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/screenline/internal/menu"
)

// quitItemID is the menu item that stops the daemon.
const quitItemID = "quit"

// clearStatusMsg clears the status message after a delay.
type clearStatusMsg struct{}

func clearStatusAfter() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

// menuEntry is a list item wrapping one menu node.
type menuEntry struct {
	item menu.Item
}

func (e menuEntry) Title() string {
	return menuMark(e.item) + " " + e.item.Label
}

func (e menuEntry) Description() string {
	switch {
	case e.item.Kind == menu.KindSubmenu:
		return fmt.Sprintf("%d items", countEntries(e.item.Items))
	case e.item.Disabled:
		return "unavailable"
	default:
		return e.item.ID
	}
}

func (e menuEntry) FilterValue() string { return e.item.Label }

// menuMark is the glyph drawn before an item's label.
func menuMark(it menu.Item) string {
	switch it.Kind {
	case menu.KindCheck:
		if it.Checked {
			return "[x]"
		}
		return "[ ]"
	case menu.KindRadio:
		if it.Checked {
			return "(•)"
		}
		return "( )"
	case menu.KindSubmenu:
		return " ▸ "
	default:
		return "   "
	}
}

func countEntries(items []menu.Item) int {
	n := 0
	for _, it := range items {
		if it.Kind != menu.KindSeparator {
			n++
		}
	}
	return n
}

// levelAt follows path, a list of submenu IDs, from the root. It returns the
// children of the deepest submenu reached and the part of path that still
// exists, so a submenu that disappeared after a refresh pops the view up.
func levelAt(items []menu.Item, path []string) ([]menu.Item, []string) {
	cur := items
	for i, id := range path {
		found := false
		for _, it := range cur {
			if it.Kind == menu.KindSubmenu && it.ID == id {
				cur = it.Items
				found = true
				break
			}
		}
		if !found {
			return cur, path[:i]
		}
	}
	return cur, path
}

// breadcrumb names the submenus along path.
func breadcrumb(items []menu.Item, path []string) string {
	labels := []string{"Menu"}
	cur := items
	for _, id := range path {
		for _, it := range cur {
			if it.Kind == menu.KindSubmenu && it.ID == id {
				labels = append(labels, it.Label)
				cur = it.Items
				break
			}
		}
	}
	return strings.Join(labels, " › ")
}

// buildMenuEntries creates list items for one menu level. Separators are
// dropped.
func buildMenuEntries(items []menu.Item) []list.Item {
	out := make([]list.Item, 0, len(items))
	for _, it := range items {
		if it.Kind == menu.KindSeparator {
			continue
		}
		out = append(out, menuEntry{item: it})
	}
	return out
}

// MenuTab browses and invokes the daemon's menu tree.
type MenuTab struct {
	list   list.Model
	client Client

	items []menu.Item
	path  []string

	statusText string
	failed     bool

	// Quit confirmation
	confirming bool
	form       *huh.Form

	width  int
	height int
}

// NewMenuTab creates the menu tab and loads the menu from the daemon.
func NewMenuTab(client Client) MenuTab {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("15")).
		BorderForeground(lipgloss.Color("62"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("250")).
		BorderForeground(lipgloss.Color("62"))

	l := list.New(nil, delegate, 0, 0)
	l.Styles.Title = listTitleStyle
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)

	t := MenuTab{list: l, client: client}
	t.reload()
	return t
}

// reload fetches the menu and rebuilds the current level, keeping the cursor.
func (t *MenuTab) reload() {
	items, err := t.client.GetMenu()
	if err != nil {
		t.items = nil
		t.statusText = err.Error()
		t.failed = true
	} else {
		t.items = items
	}
	t.rebuild()
}

func (t *MenuTab) rebuild() {
	var level []menu.Item
	level, t.path = levelAt(t.items, t.path)
	idx := t.list.Index()
	entries := buildMenuEntries(level)
	t.list.SetItems(entries)
	if idx >= len(entries) {
		idx = len(entries) - 1
	}
	if idx >= 0 {
		t.list.Select(idx)
	}
	t.list.Title = breadcrumb(t.items, t.path)
}

// Init implements tea.Model.
func (t MenuTab) Init() tea.Cmd { return nil }

// Update handles messages for the menu tab.
func (t MenuTab) Update(msg tea.Msg) (MenuTab, tea.Cmd) {
	if t.confirming {
		return t.updateConfirming(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
		t.list.SetSize(t.width, t.listHeight())
		return t, nil

	case clearStatusMsg:
		t.statusText = ""
		t.failed = false
		return t, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "right", "l", " ":
			return t.activate()
		case "backspace", "left", "h", "esc":
			if len(t.path) > 0 {
				t.path = t.path[:len(t.path)-1]
				t.list.Select(0)
				t.rebuild()
			}
			return t, nil
		}
	}

	var cmd tea.Cmd
	t.list, cmd = t.list.Update(msg)
	return t, cmd
}

func (t MenuTab) activate() (MenuTab, tea.Cmd) {
	entry, ok := t.list.SelectedItem().(menuEntry)
	if !ok {
		return t, nil
	}
	it := entry.item
	switch {
	case it.Kind == menu.KindSubmenu:
		t.path = append(append([]string(nil), t.path...), it.ID)
		t.list.Select(0)
		t.rebuild()
		return t, nil
	case it.Disabled || it.ID == "":
		return t, nil
	case it.ID == quitItemID:
		t.startConfirming()
		return t, t.form.Init()
	}
	return t.invoke(it)
}

func (t MenuTab) invoke(it menu.Item) (MenuTab, tea.Cmd) {
	if err := t.client.InvokeMenu(it.ID); err != nil {
		t.statusText = fmt.Sprintf("error: %v", err)
		t.failed = true
		return t, clearStatusAfter()
	}
	if it.ID == quitItemID {
		return t, tea.Quit
	}
	t.statusText = "done: " + it.Label
	t.failed = false
	t.reload()
	return t, clearStatusAfter()
}

func (t *MenuTab) startConfirming() {
	t.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title("Quit the screenline daemon?").
				Description("All lines, the box and guides are closed.").
				Affirmative("Quit").
				Negative("Cancel"),
		),
	).WithWidth(t.width).WithShowHelp(true)
	t.confirming = true
}

func (t MenuTab) updateConfirming(msg tea.Msg) (MenuTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			t.confirming = false
			t.form = nil
			return t, nil
		}
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
		t.list.SetSize(t.width, t.listHeight())
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}

	switch t.form.State {
	case huh.StateCompleted:
		confirmed := t.form.GetBool("confirm")
		t.confirming = false
		t.form = nil
		if confirmed {
			return t.invoke(menu.Item{ID: quitItemID, Label: "Quit"})
		}
		return t, nil
	case huh.StateAborted:
		t.confirming = false
		t.form = nil
		return t, nil
	}
	return t, cmd
}

func (t MenuTab) listHeight() int {
	h := t.height - 1
	if h < 1 {
		h = 1
	}
	return h
}

// View implements tea.Model.
func (t MenuTab) View() string {
	if t.width == 0 || t.height == 0 {
		return ""
	}

	var body string
	switch {
	case t.confirming && t.form != nil:
		body = lipgloss.NewStyle().
			Width(t.width).
			Height(t.listHeight()).
			Padding(1, 2).
			Render(t.form.View())
	case len(t.items) == 0:
		body = lipgloss.NewStyle().
			Width(t.width).
			Height(t.listHeight()).
			Foreground(lipgloss.Color("241")).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No menu: is the daemon running?")
	default:
		body = t.list.View()
	}

	keys := "enter: select  backspace: back"
	return lipgloss.JoinVertical(lipgloss.Left, body, renderTabStatus(t.statusText, t.failed, keys, t.width))
}
