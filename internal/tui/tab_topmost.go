package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/screenline/internal/ipc"
)

// topmostDraft holds the form-bound values. It lives behind a pointer so the
// form keeps writing to it when the tab is copied by value.
type topmostDraft struct {
	enabled  bool
	strategy string
	interval string
}

func draftFrom(st ipc.TopmostStatus) *topmostDraft {
	strategy := st.Strategy
	if strategy == "" {
		strategy = "polling"
	}
	return &topmostDraft{
		enabled:  st.Enabled,
		strategy: strategy,
		interval: strconv.Itoa(st.IntervalMS),
	}
}

func validateInterval(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("interval must be a whole number of milliseconds")
	}
	if n <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	return nil
}

// payload converts the draft into a SET_TOPMOST request.
func (d *topmostDraft) payload() (ipc.SetTopmostPayload, error) {
	if err := validateInterval(d.interval); err != nil {
		return ipc.SetTopmostPayload{}, err
	}
	ms, _ := strconv.Atoi(strings.TrimSpace(d.interval))
	enabled := d.enabled
	return ipc.SetTopmostPayload{
		Enabled:    &enabled,
		Strategy:   d.strategy,
		IntervalMS: ms,
	}, nil
}

// TopmostTab shows the keep-on-top arbiter and edits its settings.
type TopmostTab struct {
	client Client
	status ipc.TopmostStatus

	statusText string
	failed     bool

	editing bool
	form    *huh.Form
	draft   *topmostDraft

	width  int
	height int
}

// NewTopmostTab creates the tab for the given arbiter status.
func NewTopmostTab(client Client, status ipc.TopmostStatus) TopmostTab {
	return TopmostTab{client: client, status: status}
}

// SetStatus replaces the displayed arbiter status.
func (t *TopmostTab) SetStatus(status ipc.TopmostStatus) {
	t.status = status
}

// Init implements tea.Model.
func (t TopmostTab) Init() tea.Cmd { return nil }

// Update handles messages for the topmost tab.
func (t TopmostTab) Update(msg tea.Msg) (TopmostTab, tea.Cmd) {
	if t.editing {
		return t.updateEditing(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
	case clearStatusMsg:
		t.statusText = ""
		t.failed = false
	case tea.KeyMsg:
		if msg.String() == "e" || msg.String() == "enter" {
			t.startEditing()
			return t, t.form.Init()
		}
	}
	return t, nil
}

func (t *TopmostTab) startEditing() {
	t.draft = draftFrom(t.status)

	w := t.width - 4
	if w < 40 {
		w = 40
	}

	t.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("enabled").
				Title("Keep overlays on top").
				Description("Raise overlays above rival windows").
				Value(&t.draft.enabled),

			huh.NewSelect[string]().
				Key("strategy").
				Title("Strategy").
				Description("How covering is noticed").
				Options(
					huh.NewOption("Polling", "polling"),
					huh.NewOption("Foreground events", "event"),
				).
				Value(&t.draft.strategy),

			huh.NewInput().
				Key("interval").
				Title("Polling interval (ms)").
				Validate(validateInterval).
				Value(&t.draft.interval),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)

	t.editing = true
}

func (t TopmostTab) updateEditing(msg tea.Msg) (TopmostTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			t.editing = false
			t.form = nil
			return t, nil
		}
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}

	if t.form.State == huh.StateCompleted {
		t.editing = false
		t.form = nil
		t.apply()
		return t, clearStatusAfter()
	}
	return t, cmd
}

func (t *TopmostTab) apply() {
	p, err := t.draft.payload()
	if err == nil {
		err = t.client.SetTopmost(p)
	}
	if err != nil {
		t.statusText = fmt.Sprintf("error: %v", err)
		t.failed = true
		return
	}
	t.status.Enabled = *p.Enabled
	t.status.Strategy = p.Strategy
	t.status.IntervalMS = p.IntervalMS
	t.statusText = "keep-on-top settings saved"
	t.failed = false
}

// View implements tea.Model.
func (t TopmostTab) View() string {
	if t.width == 0 || t.height == 0 {
		return ""
	}

	bodyHeight := t.height - 1
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	var body string
	if t.editing && t.form != nil {
		body = lipgloss.NewStyle().Padding(1, 2).Render(t.form.View())
	} else {
		body = renderTopmostDetail(t.status)
	}
	body = lipgloss.NewStyle().Width(t.width).Height(bodyHeight).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, body,
		renderTabStatus(t.statusText, t.failed, "e: edit  esc: cancel", t.width))
}

// renderTopmostDetail renders the arbiter status as a label/value block.
func renderTopmostDetail(st ipc.TopmostStatus) string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	b.WriteString(titleStyle.Render("Keep on top"))
	b.WriteString("\n\n")

	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("248")).Width(18)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	field := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}

	field("enabled:", strconv.FormatBool(st.Enabled))
	field("state:", st.State)
	field("strategy:", st.Strategy)
	field("interval:", fmt.Sprintf("%d ms", st.IntervalMS))
	field("passes:", strconv.Itoa(st.Passes))
	if st.MenuOpen {
		field("menu open:", "paused")
	}

	var rivals []string
	for _, r := range st.Rivals {
		if r.Enabled {
			rivals = append(rivals, r.Title)
		}
	}
	if len(rivals) == 0 {
		field("rivals:", "(none)")
	} else {
		field("rivals:", strings.Join(rivals, ", "))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
