package mcp

// LineInput addresses a persistent line.
type LineInput struct {
	Kind string `json:"kind" jsonschema:"required,Line orientation: vertical or horizontal"`
	Slot int    `json:"slot" jsonschema:"required,Hotkey slot, 1 to 4"`
}

// GuidesInput addresses a guide set.
type GuidesInput struct {
	Set int `json:"set" jsonschema:"required,Guide set, 1 or 2"`
}

// SetTopmostInput changes how overlays are kept above other windows.
type SetTopmostInput struct {
	Enabled    *bool  `json:"enabled,omitempty" jsonschema:"Turn stacking enforcement on or off"`
	Strategy   string `json:"strategy,omitempty" jsonschema:"polling or event"`
	IntervalMS int    `json:"interval_ms,omitempty" jsonschema:"Polling period in milliseconds"`
}

// EmptyInput is the input of tools that take no arguments.
type EmptyInput struct{}

// OKOutput acknowledges a command.
type OKOutput struct {
	OK bool `json:"ok"`
}

// BoxOutput is the bounding box geometry.
type BoxOutput struct {
	Visible bool   `json:"visible"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Text    string `json:"text" jsonschema:"The geometry as x,y,w,h"`
}

// LineState is one line slot in StatusOutput.
type LineState struct {
	Kind    string `json:"kind"`
	Slot    int    `json:"slot"`
	Visible bool   `json:"visible"`
}

// StatusOutput summarizes the daemon.
type StatusOutput struct {
	UptimeSeconds int64       `json:"uptime_seconds"`
	ConfigPath    string      `json:"config_path"`
	Notice        string      `json:"notice,omitempty"`
	Lines         []LineState `json:"lines"`
	Box           BoxOutput   `json:"box"`
	GuidesVisible []bool      `json:"guides_visible"`
	AllHidden     bool        `json:"all_hidden"`
	TopmostState  string      `json:"topmost_state"`
	Rivals        []string    `json:"rivals"`
}
