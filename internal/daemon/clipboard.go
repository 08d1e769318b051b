package daemon

import (
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

// SystemClipboard writes to the desktop clipboard. The first write
// initializes the clipboard package; if that fails every write fails.
type SystemClipboard struct {
	once    sync.Once
	initErr error
	mu      sync.Mutex
}

// NewSystemClipboard returns an uninitialized clipboard.
func NewSystemClipboard() *SystemClipboard {
	return &SystemClipboard{}
}

// WriteText places text on the clipboard.
func (c *SystemClipboard) WriteText(text string) error {
	c.once.Do(func() {
		if err := clipboard.Init(); err != nil {
			c.initErr = fmt.Errorf("clipboard init: %w", err)
		}
	})
	if c.initErr != nil {
		return c.initErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}
