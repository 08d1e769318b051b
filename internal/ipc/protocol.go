package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/screenline/internal/geometry"
	"github.com/1broseidon/screenline/internal/hotkeys"
	"github.com/1broseidon/screenline/internal/pool"
	"github.com/1broseidon/screenline/internal/topmost"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload      CommandType = "RELOAD"
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandGetMonitors CommandType = "GET_MONITORS"
	CommandGetWindows  CommandType = "GET_WINDOWS"
	CommandGetMenu     CommandType = "GET_MENU"
	CommandInvokeMenu  CommandType = "INVOKE_MENU"
	CommandShowLine    CommandType = "SHOW_LINE"
	CommandHideLine    CommandType = "HIDE_LINE"
	CommandToggleLine  CommandType = "TOGGLE_LINE"
	CommandFlashLine   CommandType = "FLASH_LINE"
	CommandShowBox     CommandType = "SHOW_BOX"
	CommandHideBox     CommandType = "HIDE_BOX"
	CommandResetBox    CommandType = "RESET_BOX"
	CommandCopyBox     CommandType = "COPY_BOX"
	CommandGetBox      CommandType = "GET_BOX"
	CommandShowGuides  CommandType = "SHOW_GUIDES"
	CommandHideGuides  CommandType = "HIDE_GUIDES"
	CommandSetTopmost  CommandType = "SET_TOPMOST"
	CommandAddRival    CommandType = "ADD_RIVAL"
	CommandRemoveRival CommandType = "REMOVE_RIVAL"
	CommandSetMenuOpen CommandType = "SET_MENU_OPEN"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// BindingInfo is one registered chord.
type BindingInfo struct {
	Chord  string `json:"chord"`
	Target string `json:"target"`
	Action string `json:"action"`
}

// TopmostStatus reports the arbiter.
type TopmostStatus struct {
	Enabled    bool            `json:"enabled"`
	State      string          `json:"state"`
	Strategy   string          `json:"strategy"`
	IntervalMS int             `json:"interval_ms"`
	Passes     int             `json:"passes"`
	MenuOpen   bool            `json:"menu_open"`
	Rivals     []topmost.Rival `json:"rivals"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	DaemonRunning  bool          `json:"daemon_running"`
	UptimeSeconds  int64         `json:"uptime_seconds"`
	ConfigPath     string        `json:"config_path"`
	Notice         string        `json:"notice,omitempty"`
	HotkeysEnabled bool          `json:"hotkeys_enabled"`
	Bindings       []BindingInfo `json:"bindings"`
	Overlays       pool.Status   `json:"overlays"`
	Topmost        TopmostStatus `json:"topmost"`
}

// MonitorInfo represents information about a single monitor
type MonitorInfo struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// MonitorsData represents the data returned by GET_MONITORS
type MonitorsData struct {
	Monitors []MonitorInfo `json:"monitors"`
}

// WindowInfo is a top-level window offered as a rival candidate.
type WindowInfo struct {
	ID    uint32 `json:"id"`
	Title string `json:"title"`
	Class string `json:"class,omitempty"`
}

// WindowsData represents the data returned by GET_WINDOWS
type WindowsData struct {
	Windows []WindowInfo `json:"windows"`
}

// BoxData is the bounding box geometry.
type BoxData struct {
	Visible bool `json:"visible"`
	X       int  `json:"x"`
	Y       int  `json:"y"`
	Width   int  `json:"width"`
	Height  int  `json:"height"`
}

// Rect returns the box as a rectangle.
func (b BoxData) Rect() geometry.Rect {
	return geometry.Rect{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height}
}

// ClipboardText is the text COPY_BOX places on the clipboard.
func (b BoxData) ClipboardText() string {
	return fmt.Sprintf("%d,%d,%d,%d", b.X, b.Y, b.Width, b.Height)
}

// LinePayload addresses a persistent line. Slot is 1-based, matching the
// digit of the default chords.
type LinePayload struct {
	Kind string `json:"kind"`
	Slot int    `json:"slot"`
}

// GuidesPayload addresses a guide set, 1-based.
type GuidesPayload struct {
	Set int `json:"set"`
}

// MenuPayload invokes a menu item by ID.
type MenuPayload struct {
	ID string `json:"id"`
}

// SetTopmostPayload changes the arbiter. Nil fields are left unchanged.
type SetTopmostPayload struct {
	Enabled    *bool  `json:"enabled,omitempty"`
	Strategy   string `json:"strategy,omitempty"`
	IntervalMS int    `json:"interval_ms,omitempty"`
}

// RivalPayload names a rival window title.
type RivalPayload struct {
	Title string `json:"title"`
}

// MenuOpenPayload reports whether a context menu is open.
type MenuOpenPayload struct {
	Open bool `json:"open"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// BindingsInfo converts router bindings for status output.
func BindingsInfo(bindings []hotkeys.Binding) []BindingInfo {
	out := make([]BindingInfo, 0, len(bindings))
	for _, b := range bindings {
		out = append(out, BindingInfo{Chord: b.Chord, Target: b.Slot.String(), Action: b.Action.String()})
	}
	return out
}
