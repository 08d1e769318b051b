// Package platform abstracts the window-system queries screenline needs
// outside of drawing: monitor layout, pointer position and the list of
// top-level windows offered when picking rival titles.
package platform

import "github.com/1broseidon/screenline/internal/geometry"

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Display describes a physical display.
type Display struct {
	ID     int           `json:"id"`
	Name   string        `json:"name"`
	Bounds geometry.Rect `json:"bounds"`
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	ID     WindowID      `json:"id"`
	PID    int           `json:"pid,omitempty"`
	AppID  string        `json:"app_id,omitempty"`
	Title  string        `json:"title"`
	Bounds geometry.Rect `json:"bounds"`
}

// Backend abstracts window-system queries across platforms.
type Backend interface {
	Displays() ([]Display, error)
	PointerPosition() (geometry.Point, error)
	ScreenBounds() (geometry.Rect, error)
	ActiveWindow() (WindowID, error)
	ListWindows() ([]Window, error)
}
