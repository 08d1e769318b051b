package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/screenline/internal/ipc"
	"github.com/1broseidon/screenline/internal/topmost"
)

// refreshInterval is how often the daemon status is polled. Hotkeys and the
// tray change state behind the TUI's back.
const refreshInterval = 2 * time.Second

// tickMsg triggers a periodic refresh.
type tickMsg struct{}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

// model is the root bubbletea model for the TUI.
type model struct {
	client Client

	// Tab navigation
	activeTab Tab

	// Sub-models
	menuTab    MenuTab
	topmostTab TopmostTab
	rivalsTab  RivalsTab

	// Daemon state, nil when not connected
	status *ipc.StatusData

	// Terminal dimensions
	width  int
	height int
}

func newModel(client Client) model {
	m := model{
		client:    client,
		activeTab: TabMenu,
	}
	m.refreshDaemonStatus()

	var (
		ts     ipc.TopmostStatus
		rivals []topmost.Rival
	)
	if m.status != nil {
		ts = m.status.Topmost
		rivals = ts.Rivals
	}
	m.menuTab = NewMenuTab(client)
	m.topmostTab = NewTopmostTab(client, ts)
	m.rivalsTab = NewRivalsTab(client, rivals)
	return m
}

func (m *model) refreshDaemonStatus() {
	status, err := m.client.GetStatus()
	if err != nil {
		m.status = nil
		return
	}
	m.status = status
}

// refresh reloads everything the tabs show. Tabs that are capturing input
// keep their state.
func (m *model) refresh() {
	m.refreshDaemonStatus()
	if !m.menuTab.confirming {
		m.menuTab.reload()
	}
	if m.status == nil {
		return
	}
	if !m.topmostTab.editing {
		m.topmostTab.SetStatus(m.status.Topmost)
	}
	if !m.rivalsTab.adding {
		m.rivalsTab.SetRivals(m.status.Topmost.Rivals)
	}
}

func (m model) capturing() bool {
	return (m.activeTab == TabMenu && m.menuTab.confirming) ||
		(m.activeTab == TabTopmost && m.topmostTab.editing) ||
		(m.activeTab == TabRivals && m.rivalsTab.adding)
}

// contentHeight returns the height available for tab content.
func (m model) contentHeight() int {
	// status bar (1) + tab bar (2 with margin) + help bar (1)
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

func (m *model) resize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	subMsg := tea.WindowSizeMsg{Width: m.width, Height: m.contentHeight()}
	m.menuTab, _ = m.menuTab.Update(subMsg)
	m.topmostTab, _ = m.topmostTab.Update(subMsg)
	m.rivalsTab, _ = m.rivalsTab.Update(subMsg)
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tick()
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.refresh()
		return m, tick()
	case tea.WindowSizeMsg:
		m.resize(msg)
		return m, nil
	case clearStatusMsg:
		m.menuTab, _ = m.menuTab.Update(msg)
		m.topmostTab, _ = m.topmostTab.Update(msg)
		m.rivalsTab, _ = m.rivalsTab.Update(msg)
		return m, nil
	}

	// When a sub-model captures input, delegate all messages to it
	// (the form/input consumes keys; only ctrl+c escapes to quit)
	if m.capturing() {
		if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.delegate(msg)
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1":
			m.activeTab = TabMenu
			return m, nil
		case "2":
			m.activeTab = TabTopmost
			return m, nil
		case "3":
			m.activeTab = TabRivals
			return m, nil
		case "r":
			m.refresh()
			return m, nil
		}
	}

	return m.delegate(msg)
}

// delegate passes msg to the active tab's sub-model.
func (m model) delegate(msg tea.Msg) (model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.activeTab {
	case TabMenu:
		m.menuTab, cmd = m.menuTab.Update(msg)
	case TabTopmost:
		m.topmostTab, cmd = m.topmostTab.Update(msg)
	case TabRivals:
		m.rivalsTab, cmd = m.rivalsTab.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.status, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.width)

	var content string
	switch m.activeTab {
	case TabMenu:
		content = m.menuTab.View()
	case TabTopmost:
		content = m.topmostTab.View()
	case TabRivals:
		content = m.rivalsTab.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		helpBar,
	)
}
