package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/screenline/internal/ipc"
	"github.com/1broseidon/screenline/internal/topmost"
)

// rivalItem is either a configured rival title or an open window that could
// become one.
type rivalItem struct {
	title      string
	class      string
	configured bool
	enabled    bool
}

func (i rivalItem) Title() string {
	switch {
	case i.configured && i.enabled:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("✓") + " " + i.title
	case i.configured:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("✗") + " " + i.title
	default:
		return "  " + i.title
	}
}

func (i rivalItem) Description() string {
	switch {
	case i.configured && i.enabled:
		return "rival"
	case i.configured:
		return "rival (disabled)"
	case i.class != "":
		return "open window | " + i.class
	default:
		return "open window"
	}
}

func (i rivalItem) FilterValue() string { return i.title }

// buildRivalItems lists the configured rivals first, then every open window
// whose title is not already a rival. Titles compare case-insensitively.
func buildRivalItems(rivals []topmost.Rival, windows []ipc.WindowInfo) []list.Item {
	seen := make(map[string]bool)
	items := make([]list.Item, 0, len(rivals)+len(windows))
	for _, r := range rivals {
		seen[strings.ToLower(r.Title)] = true
		items = append(items, rivalItem{title: r.Title, configured: true, enabled: r.Enabled})
	}

	open := make([]rivalItem, 0, len(windows))
	for _, w := range windows {
		title := strings.TrimSpace(w.Title)
		key := strings.ToLower(title)
		if title == "" || seen[key] {
			continue
		}
		seen[key] = true
		open = append(open, rivalItem{title: title, class: w.Class})
	}
	sort.Slice(open, func(a, b int) bool {
		return strings.ToLower(open[a].title) < strings.ToLower(open[b].title)
	})
	for _, it := range open {
		items = append(items, it)
	}
	return items
}

// RivalsTab manages the rival window titles.
type RivalsTab struct {
	list   list.Model
	client Client

	rivals  []topmost.Rival
	windows []ipc.WindowInfo

	statusText string
	failed     bool

	// Add mode
	adding    bool
	textInput textinput.Model

	width  int
	height int
}

// NewRivalsTab creates the tab for the given rivals and lists open windows.
func NewRivalsTab(client Client, rivals []topmost.Rival) RivalsTab {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("15")).
		BorderForeground(lipgloss.Color("62"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("250")).
		BorderForeground(lipgloss.Color("62"))

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Rival windows"
	l.Styles.Title = listTitleStyle
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)

	ti := textinput.New()
	ti.Placeholder = "window title, e.g. Paster - Snipaste"
	ti.CharLimit = 128

	t := RivalsTab{list: l, client: client, rivals: rivals, textInput: ti}
	t.refreshWindows()
	return t
}

// SetRivals replaces the configured rivals and rebuilds the list.
func (t *RivalsTab) SetRivals(rivals []topmost.Rival) {
	t.rivals = rivals
	t.rebuild()
}

func (t *RivalsTab) refreshWindows() {
	data, err := t.client.GetWindows()
	if err != nil {
		t.windows = nil
	} else {
		t.windows = data.Windows
	}
	t.rebuild()
}

func (t *RivalsTab) rebuild() {
	idx := t.list.Index()
	items := buildRivalItems(t.rivals, t.windows)
	t.list.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		t.list.Select(idx)
	}
}

// Init implements tea.Model.
func (t RivalsTab) Init() tea.Cmd { return nil }

// Update handles messages for the rivals tab.
func (t RivalsTab) Update(msg tea.Msg) (RivalsTab, tea.Cmd) {
	if t.adding {
		return t.updateAdding(msg)
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
		case "a":
			t.adding = true
			t.textInput.Reset()
			t.textInput.Focus()
			return t, textinput.Blink
		case "enter":
			if item, ok := t.list.SelectedItem().(rivalItem); ok && !item.configured {
				t.add(item.title)
				return t, clearStatusAfter()
			}
			return t, nil
		case "x", "delete":
			if item, ok := t.list.SelectedItem().(rivalItem); ok && item.configured {
				t.remove(item.title)
				return t, clearStatusAfter()
			}
			return t, nil
		case "w":
			t.refreshWindows()
			return t, nil
		}
	}

	var cmd tea.Cmd
	t.list, cmd = t.list.Update(msg)
	return t, cmd
}

func (t RivalsTab) updateAdding(msg tea.Msg) (RivalsTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			value := strings.TrimSpace(t.textInput.Value())
			t.adding = false
			t.textInput.Blur()
			if value != "" {
				t.add(value)
				return t, clearStatusAfter()
			}
			return t, nil
		case "esc":
			t.adding = false
			t.textInput.Blur()
			return t, nil
		}
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
		return t, nil
	}

	var cmd tea.Cmd
	t.textInput, cmd = t.textInput.Update(msg)
	return t, cmd
}

func (t *RivalsTab) add(title string) {
	if err := t.client.AddRival(title); err != nil {
		t.statusText = fmt.Sprintf("error: %v", err)
		t.failed = true
		return
	}
	found := false
	for i, r := range t.rivals {
		if strings.EqualFold(r.Title, title) {
			t.rivals[i].Enabled = true
			found = true
		}
	}
	if !found {
		t.rivals = append(t.rivals, topmost.Rival{Title: title, Enabled: true})
	}
	t.statusText = "added: " + title
	t.failed = false
	t.rebuild()
}

func (t *RivalsTab) remove(title string) {
	if err := t.client.RemoveRival(title); err != nil {
		t.statusText = fmt.Sprintf("error: %v", err)
		t.failed = true
		return
	}
	kept := t.rivals[:0:0]
	for _, r := range t.rivals {
		if !strings.EqualFold(r.Title, title) {
			kept = append(kept, r)
		}
	}
	t.rivals = kept
	t.statusText = "removed: " + title
	t.failed = false
	t.rebuild()
}

func (t RivalsTab) listHeight() int {
	h := t.height - 1
	if h < 1 {
		h = 1
	}
	return h
}

// View implements tea.Model.
func (t RivalsTab) View() string {
	if t.width == 0 || t.height == 0 {
		return ""
	}

	var content string
	if t.adding {
		inputStyle := lipgloss.NewStyle().Padding(0, 1).Width(t.width)
		prompt := lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Render("Add rival window title:") + "\n" +
			t.textInput.View() + "\n" +
			hintStyle.Render("enter: confirm  esc: cancel")
		inputBlock := inputStyle.Render(prompt)
		listHeight := t.listHeight() - lipgloss.Height(inputBlock)
		if listHeight < 1 {
			listHeight = 1
		}
		t.list.SetSize(t.width, listHeight)
		content = inputBlock + "\n" + t.list.View()
	} else {
		content = t.list.View()
	}
	content = lipgloss.NewStyle().Width(t.width).Height(t.listHeight()).Render(content)

	keys := "enter: add window  a: add title  x: remove  w: rescan"
	return lipgloss.JoinVertical(lipgloss.Left, content, renderTabStatus(t.statusText, t.failed, keys, t.width))
}
