package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/screenline/internal/ipc"
)

func ok(err error) (*mcpsdk.CallToolResult, OKOutput, error) {
	if err != nil {
		return nil, OKOutput{}, err
	}
	return nil, OKOutput{OK: true}, nil
}

func validateLine(args LineInput) error {
	switch strings.ToLower(strings.TrimSpace(args.Kind)) {
	case "vertical", "horizontal":
	default:
		return fmt.Errorf("kind must be vertical or horizontal, got %q", args.Kind)
	}
	if args.Slot < 1 || args.Slot > 4 {
		return fmt.Errorf("slot must be between 1 and 4, got %d", args.Slot)
	}
	return nil
}

func validateSet(set int) error {
	if set < 1 || set > 2 {
		return fmt.Errorf("set must be 1 or 2, got %d", set)
	}
	return nil
}

func boxOutput(b ipc.BoxData) BoxOutput {
	return BoxOutput{
		Visible: b.Visible,
		X:       b.X,
		Y:       b.Y,
		Width:   b.Width,
		Height:  b.Height,
		Text:    b.ClipboardText(),
	}
}

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	st, err := s.daemon.GetStatus()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	ov := st.Overlays
	out := StatusOutput{
		UptimeSeconds: st.UptimeSeconds,
		ConfigPath:    st.ConfigPath,
		Notice:        st.Notice,
		Box: boxOutput(ipc.BoxData{
			Visible: ov.BoxVisible,
			X:       ov.Box.X,
			Y:       ov.Box.Y,
			Width:   ov.Box.Width,
			Height:  ov.Box.Height,
		}),
		AllHidden:    ov.AllHidden,
		TopmostState: st.Topmost.State,
		Lines:        make([]LineState, 0, len(ov.Lines)),
	}
	for _, l := range ov.Lines {
		slot := l.Slot + 1
		if l.Kind == "temporary" {
			slot = 0
		}
		out.Lines = append(out.Lines, LineState{Kind: l.Kind, Slot: slot, Visible: l.Visible})
	}
	for _, g := range ov.Guides {
		out.GuidesVisible = append(out.GuidesVisible, g.Visible)
	}
	for _, r := range st.Topmost.Rivals {
		if r.Enabled {
			out.Rivals = append(out.Rivals, r.Title)
		}
	}
	return nil, out, nil
}

func (s *Server) handleFlashLine(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	return ok(s.daemon.FlashLine())
}

func (s *Server) handleShowLine(_ context.Context, _ *mcpsdk.CallToolRequest, args LineInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	if err := validateLine(args); err != nil {
		return nil, OKOutput{}, err
	}
	return ok(s.daemon.ShowLine(args.Kind, args.Slot))
}

func (s *Server) handleHideLine(_ context.Context, _ *mcpsdk.CallToolRequest, args LineInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	if err := validateLine(args); err != nil {
		return nil, OKOutput{}, err
	}
	return ok(s.daemon.HideLine(args.Kind, args.Slot))
}

func (s *Server) handleShowBox(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	return ok(s.daemon.ShowBox())
}

func (s *Server) handleHideBox(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	return ok(s.daemon.HideBox())
}

func (s *Server) handleGetBox(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, BoxOutput, error) {
	b, err := s.daemon.GetBox()
	if err != nil {
		return nil, BoxOutput{}, err
	}
	return nil, boxOutput(*b), nil
}

func (s *Server) handleShowGuides(_ context.Context, _ *mcpsdk.CallToolRequest, args GuidesInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	if err := validateSet(args.Set); err != nil {
		return nil, OKOutput{}, err
	}
	return ok(s.daemon.ShowGuides(args.Set))
}

func (s *Server) handleHideGuides(_ context.Context, _ *mcpsdk.CallToolRequest, args GuidesInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	if err := validateSet(args.Set); err != nil {
		return nil, OKOutput{}, err
	}
	return ok(s.daemon.HideGuides(args.Set))
}

func (s *Server) handleSetTopmost(_ context.Context, _ *mcpsdk.CallToolRequest, args SetTopmostInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	if args.Enabled == nil && args.Strategy == "" && args.IntervalMS == 0 {
		return nil, OKOutput{}, fmt.Errorf("set at least one of enabled, strategy or interval_ms")
	}
	if args.IntervalMS < 0 {
		return nil, OKOutput{}, fmt.Errorf("interval_ms must be positive, got %d", args.IntervalMS)
	}
	return ok(s.daemon.SetTopmost(ipc.SetTopmostPayload{
		Enabled:    args.Enabled,
		Strategy:   args.Strategy,
		IntervalMS: args.IntervalMS,
	}))
}
