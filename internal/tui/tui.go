// Package tui is a terminal rendition of the daemon's context menu. It drives
// the same menu projection the tray shows, over IPC.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/screenline/internal/ipc"
	"github.com/1broseidon/screenline/internal/menu"
)

// Client is the daemon surface the TUI uses. *ipc.Client implements it.
type Client interface {
	GetStatus() (*ipc.StatusData, error)
	GetMenu() ([]menu.Item, error)
	InvokeMenu(id string) error
	GetWindows() (*ipc.WindowsData, error)
	SetTopmost(p ipc.SetTopmostPayload) error
	AddRival(title string) error
	RemoveRival(title string) error
	SetMenuOpen(open bool) error
}

var _ Client = (*ipc.Client)(nil)

// Run shows the TUI until the user quits. While it runs the daemon is told a
// menu is open so that the keep-on-top arbiter stands down.
func Run(client Client) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("menu requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	if err := client.SetMenuOpen(true); err == nil {
		defer client.SetMenuOpen(false)
	}

	p := tea.NewProgram(newModel(client), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
