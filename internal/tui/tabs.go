package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/screenline/internal/ipc"
)

// Tab identifies a TUI tab.
type Tab int

const (
	TabMenu Tab = iota
	TabTopmost
	TabRivals
	tabCount // sentinel for iteration
)

func (t Tab) String() string {
	switch t {
	case TabMenu:
		return "Menu"
	case TabTopmost:
		return "Keep on top"
	case TabRivals:
		return "Rival windows"
	default:
		return "?"
	}
}

var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("250")).
				Background(lipgloss.Color("236")).
				Padding(0, 2)

	tabBarStyle = lipgloss.NewStyle().
			MarginBottom(1)

	tabGap = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		SetString(" ")

	listTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// renderTabBar renders the tab bar with the given active tab and width.
func renderTabBar(active Tab, width int) string {
	var tabs []string
	for i := Tab(0); i < tabCount; i++ {
		label := strconv.Itoa(int(i)+1) + ":" + i.String()
		if i == active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, intersperse(tabs, tabGap.Render())...)
	return tabBarStyle.Width(width).Render(row)
}

// intersperse inserts sep between each element of items.
func intersperse(items []string, sep string) []string {
	if len(items) <= 1 {
		return items
	}
	result := make([]string, 0, len(items)*2-1)
	for i, item := range items {
		if i > 0 {
			result = append(result, sep)
		}
		result = append(result, item)
	}
	return result
}

// statusSummary is the text of the status bar, without styling.
func statusSummary(status *ipc.StatusData) []string {
	if status == nil {
		return []string{"daemon not running"}
	}
	parts := []string{"daemon connected"}
	visible := 0
	for _, l := range status.Overlays.Lines {
		if l.Visible {
			visible++
		}
	}
	parts = append(parts, "lines:"+strconv.Itoa(visible))
	if status.Overlays.BoxVisible {
		parts = append(parts, "box")
	}
	if status.Overlays.AllHidden {
		parts = append(parts, "hidden")
	}
	parts = append(parts, "topmost:"+status.Topmost.State)
	return parts
}

// renderStatusBar renders the daemon connection status bar.
func renderStatusBar(status *ipc.StatusData, width int) string {
	parts := statusSummary(status)
	color := lipgloss.Color("241")
	if status != nil {
		color = lipgloss.Color("42")
	}
	dot := lipgloss.NewStyle().Foreground(color).Render("●")
	text := dot + " " + strings.Join(parts, "  ")
	if status != nil && status.Notice != "" {
		text += "  " + errorStyle.Render(status.Notice)
	}

	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(text)
}

// renderHelpBar renders the bottom help/keybinding bar.
func renderHelpBar(width int) string {
	help := "tab/shift-tab: switch tabs  1-3: jump to tab  r: refresh  q/ctrl-c: quit"
	style := lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	return style.Render(help)
}

// renderTabStatus renders a tab's one-line footer: the last action result on
// the left and the tab's keys on the right.
func renderTabStatus(statusText string, failed bool, keys string, width int) string {
	left := ""
	if statusText != "" {
		if failed {
			left = errorStyle.Render(statusText)
		} else {
			left = okStyle.Render(statusText)
		}
	}
	right := hintStyle.Render(keys)

	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		Render(left + strings.Repeat(" ", gap) + right)
}
