// Package mcp exposes the overlay daemon as Model Context Protocol tools on
// stdio. Every tool forwards to the running daemon over IPC.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/screenline/internal/ipc"
)

const (
	ServerName    = "screenline"
	ServerVersion = "0.1.0"
)

// Daemon is the subset of the IPC client the tools use.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	FlashLine() error
	ShowLine(kind string, slot int) error
	HideLine(kind string, slot int) error
	ShowBox() error
	HideBox() error
	GetBox() (*ipc.BoxData, error)
	ShowGuides(set int) error
	HideGuides(set int) error
	SetTopmost(p ipc.SetTopmostPayload) error
}

var _ Daemon = (*ipc.Client)(nil)

// Server is the MCP server for screenline.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
}

// NewServer creates a server that forwards to daemon.
func NewServer(daemon Daemon) *Server {
	s := &Server{daemon: daemon}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report which screen overlays are visible, the bounding box geometry and the stacking enforcement state.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "flash_line",
		Description: "Flash the temporary horizontal line at the mouse cursor. It fades out on its own.",
	}, s.handleFlashLine)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "show_line",
		Description: "Show a persistent ruler line at the mouse cursor. Showing a visible line moves it to the cursor.",
	}, s.handleShowLine)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "hide_line",
		Description: "Hide a persistent ruler line. Its position is kept for the next show.",
	}, s.handleHideLine)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "show_box",
		Description: "Show the draggable bounding box.",
	}, s.handleShowBox)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "hide_box",
		Description: "Hide the bounding box.",
	}, s.handleHideBox)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_box",
		Description: "Return the bounding box geometry in screen pixels.",
	}, s.handleGetBox)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "show_guides",
		Description: "Show a set of four screen-spanning guide rails derived from the bounding box.",
	}, s.handleShowGuides)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "hide_guides",
		Description: "Hide a guide set.",
	}, s.handleHideGuides)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_topmost",
		Description: "Configure how overlays are kept above other always-on-top windows. Omitted fields are left unchanged.",
	}, s.handleSetTopmost)
}
