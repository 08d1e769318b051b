package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/1broseidon/screenline/internal/ipc"
)

// styler colors status output when stdout is a terminal.
type styler struct {
	enabled bool
	key     lipgloss.Style
	on      lipgloss.Style
	off     lipgloss.Style
	warn    lipgloss.Style
}

func newStyler(f *os.File) styler {
	return styler{
		enabled: term.IsTerminal(int(f.Fd())),
		key:     lipgloss.NewStyle().Foreground(lipgloss.Color("248")),
		on:      lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		off:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	}
}

func (s styler) render(st lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return st.Render(text)
}

func (s styler) flag(v bool) string {
	if v {
		return s.render(s.on, "true")
	}
	return s.render(s.off, "false")
}

// formatStatus renders GET_STATUS as aligned "key: value" lines.
func formatStatus(status *ipc.StatusData, s styler) string {
	var b strings.Builder
	field := func(key, value string) {
		fmt.Fprintf(&b, "%s %s\n", s.render(s.key, fmt.Sprintf("%-16s", key+":")), value)
	}

	field("daemon_running", s.flag(status.DaemonRunning))
	field("uptime_seconds", fmt.Sprint(status.UptimeSeconds))
	field("config_path", status.ConfigPath)
	if status.Notice != "" {
		field("notice", s.render(s.warn, status.Notice))
	}
	field("hotkeys_enabled", s.flag(status.HotkeysEnabled))

	bindings := append([]ipc.BindingInfo(nil), status.Bindings...)
	sort.Slice(bindings, func(i, j int) bool { return bindings[i].Target < bindings[j].Target })
	if len(bindings) == 0 {
		field("bindings", "(none)")
	} else {
		field("bindings", "")
		for _, bi := range bindings {
			fmt.Fprintf(&b, "  %-26s %-14s %s\n", bi.Chord, bi.Target, bi.Action)
		}
	}

	ov := status.Overlays
	var shown []string
	for _, l := range ov.Lines {
		if l.Visible {
			if l.Kind == "temporary" {
				shown = append(shown, l.Kind)
			} else {
				shown = append(shown, fmt.Sprintf("%s/%d", l.Kind, l.Slot+1))
			}
		}
	}
	if len(shown) == 0 {
		field("lines", "(none)")
	} else {
		field("lines", strings.Join(shown, " "))
	}
	field("all_hidden", s.flag(ov.AllHidden))

	box := fmt.Sprintf("%d,%d,%d,%d", ov.Box.X, ov.Box.Y, ov.Box.Width, ov.Box.Height)
	if ov.BoxVisible {
		field("box", box+" "+s.render(s.on, "visible"))
	} else {
		field("box", box+" "+s.render(s.off, "hidden"))
	}
	for _, g := range ov.Guides {
		state := s.render(s.off, "hidden")
		if g.Visible {
			state = s.render(s.on, "visible")
		}
		field(fmt.Sprintf("guides_%d", g.Set+1), state)
	}
	field("surfaces", fmt.Sprintf("%d (%d visible)", ov.Surfaces, ov.Visible))

	tm := status.Topmost
	field("topmost", fmt.Sprintf("%s (%s, %d ms, %d passes)", tm.State, tm.Strategy, tm.IntervalMS, tm.Passes))
	var rivals []string
	for _, r := range tm.Rivals {
		if r.Enabled {
			rivals = append(rivals, r.Title)
		}
	}
	if len(rivals) > 0 {
		field("rivals", strings.Join(rivals, ", "))
	}
	return b.String()
}
