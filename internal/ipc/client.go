package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/screenline/internal/menu"
	"github.com/1broseidon/screenline/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for the socket at socketPath.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// call sends command with an optional payload and decodes the reply data
// into out when out is non-nil.
func (c *Client) call(command CommandType, payload any, out any) error {
	req := &Request{Command: command}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", command, err)
		}
		req.Payload = raw
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", command, err)
	}
	return nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetMonitors retrieves monitor information
func (c *Client) GetMonitors() (*MonitorsData, error) {
	var monitors MonitorsData
	if err := c.call(CommandGetMonitors, nil, &monitors); err != nil {
		return nil, err
	}
	return &monitors, nil
}

// GetWindows lists top-level windows that can be added as rivals.
func (c *Client) GetWindows() (*WindowsData, error) {
	var windows WindowsData
	if err := c.call(CommandGetWindows, nil, &windows); err != nil {
		return nil, err
	}
	return &windows, nil
}

// GetMenu retrieves the menu projection of the current settings.
func (c *Client) GetMenu() ([]menu.Item, error) {
	var items []menu.Item
	if err := c.call(CommandGetMenu, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// InvokeMenu applies the menu item with the given ID.
func (c *Client) InvokeMenu(id string) error {
	return c.call(CommandInvokeMenu, MenuPayload{ID: id}, nil)
}

// ShowLine shows persistent line slot (1-based) of kind.
func (c *Client) ShowLine(kind string, slot int) error {
	return c.call(CommandShowLine, LinePayload{Kind: kind, Slot: slot}, nil)
}

// HideLine hides persistent line slot (1-based) of kind.
func (c *Client) HideLine(kind string, slot int) error {
	return c.call(CommandHideLine, LinePayload{Kind: kind, Slot: slot}, nil)
}

// ToggleLine flips persistent line slot (1-based) of kind.
func (c *Client) ToggleLine(kind string, slot int) error {
	return c.call(CommandToggleLine, LinePayload{Kind: kind, Slot: slot}, nil)
}

// FlashLine shows the temporary line at the pointer.
func (c *Client) FlashLine() error {
	return c.call(CommandFlashLine, nil, nil)
}

// ShowBox shows the bounding box.
func (c *Client) ShowBox() error {
	return c.call(CommandShowBox, nil, nil)
}

// HideBox hides the bounding box.
func (c *Client) HideBox() error {
	return c.call(CommandHideBox, nil, nil)
}

// ResetBox recenters the bounding box on the pointer's monitor.
func (c *Client) ResetBox() error {
	return c.call(CommandResetBox, nil, nil)
}

// CopyBox copies the box geometry to the clipboard and returns it.
func (c *Client) CopyBox() (*BoxData, error) {
	var box BoxData
	if err := c.call(CommandCopyBox, nil, &box); err != nil {
		return nil, err
	}
	return &box, nil
}

// GetBox returns the box geometry.
func (c *Client) GetBox() (*BoxData, error) {
	var box BoxData
	if err := c.call(CommandGetBox, nil, &box); err != nil {
		return nil, err
	}
	return &box, nil
}

// ShowGuides shows guide set (1-based).
func (c *Client) ShowGuides(set int) error {
	return c.call(CommandShowGuides, GuidesPayload{Set: set}, nil)
}

// HideGuides hides guide set (1-based).
func (c *Client) HideGuides(set int) error {
	return c.call(CommandHideGuides, GuidesPayload{Set: set}, nil)
}

// SetTopmost changes the topmost arbiter.
func (c *Client) SetTopmost(p SetTopmostPayload) error {
	return c.call(CommandSetTopmost, p, nil)
}

// AddRival adds (or re-enables) a rival window title.
func (c *Client) AddRival(title string) error {
	return c.call(CommandAddRival, RivalPayload{Title: title}, nil)
}

// RemoveRival removes a rival window title.
func (c *Client) RemoveRival(title string) error {
	return c.call(CommandRemoveRival, RivalPayload{Title: title}, nil)
}

// SetMenuOpen suspends reassert passes while an interactive menu is open.
func (c *Client) SetMenuOpen(open bool) error {
	return c.call(CommandSetMenuOpen, MenuOpenPayload{Open: open}, nil)
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
