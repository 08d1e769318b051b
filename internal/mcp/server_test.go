package mcp

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/1broseidon/screenline/internal/geometry"
	"github.com/1broseidon/screenline/internal/ipc"
	"github.com/1broseidon/screenline/internal/pool"
	"github.com/1broseidon/screenline/internal/topmost"
)

type fakeDaemon struct {
	calls   []string
	topmost ipc.SetTopmostPayload
	err     error
}

func (f *fakeDaemon) record(call string) error {
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeDaemon) GetStatus() (*ipc.StatusData, error) {
	return &ipc.StatusData{
		UptimeSeconds: 42,
		ConfigPath:    "/home/u/.config/screenline/config.yaml",
		Overlays: pool.Status{
			Lines: []pool.LineStatus{
				{Kind: "temporary", Visible: false},
				{Kind: "vertical", Slot: 0, Visible: true},
			},
			Box:        geometry.Rect{X: 10, Y: 20, Width: 300, Height: 200},
			BoxVisible: true,
			Guides:     []pool.GuideStatus{{Set: 0, Visible: true}, {Set: 1}},
		},
		Topmost: ipc.TopmostStatus{
			State:  "armed-polling",
			Rivals: []topmost.Rival{{Title: "PixPin", Enabled: true}, {Title: "Snipaste"}},
		},
	}, f.err
}
func (f *fakeDaemon) FlashLine() error { return f.record("flash") }
func (f *fakeDaemon) ShowLine(kind string, slot int) error {
	return f.record("show " + kind + " " + strconv.Itoa(slot))
}
func (f *fakeDaemon) HideLine(kind string, slot int) error {
	return f.record("hide " + kind + " " + strconv.Itoa(slot))
}
func (f *fakeDaemon) ShowBox() error { return f.record("show box") }
func (f *fakeDaemon) HideBox() error { return f.record("hide box") }
func (f *fakeDaemon) GetBox() (*ipc.BoxData, error) {
	return &ipc.BoxData{Visible: true, X: 1, Y: 2, Width: 3, Height: 4}, f.record("get box")
}
func (f *fakeDaemon) ShowGuides(set int) error {
	return f.record("show guides " + strconv.Itoa(set))
}
func (f *fakeDaemon) HideGuides(set int) error {
	return f.record("hide guides " + strconv.Itoa(set))
}
func (f *fakeDaemon) SetTopmost(p ipc.SetTopmostPayload) error {
	f.topmost = p
	return f.record("topmost")
}

func TestGetStatusSummarizes(t *testing.T) {
	s := NewServer(&fakeDaemon{})
	_, out, err := s.handleGetStatus(context.Background(), nil, EmptyInput{})
	if err != nil {
		t.Fatalf("get_status: %v", err)
	}
	if out.UptimeSeconds != 42 || out.TopmostState != "armed-polling" {
		t.Fatalf("unexpected status %+v", out)
	}
	if len(out.Lines) != 2 || out.Lines[0].Slot != 0 || out.Lines[1].Slot != 1 {
		t.Fatalf("expected temporary slot 0 and vertical slot 1, got %+v", out.Lines)
	}
	if out.Box.Text != "10,20,300,200" || !out.Box.Visible {
		t.Fatalf("unexpected box %+v", out.Box)
	}
	if len(out.GuidesVisible) != 2 || !out.GuidesVisible[0] || out.GuidesVisible[1] {
		t.Fatalf("unexpected guides %+v", out.GuidesVisible)
	}
	if len(out.Rivals) != 1 || out.Rivals[0] != "PixPin" {
		t.Fatalf("expected only enabled rivals, got %+v", out.Rivals)
	}
}

func TestToolsForward(t *testing.T) {
	d := &fakeDaemon{}
	s := NewServer(d)
	ctx := context.Background()

	steps := []func() error{
		func() error { _, _, err := s.handleFlashLine(ctx, nil, EmptyInput{}); return err },
		func() error { _, _, err := s.handleShowLine(ctx, nil, LineInput{Kind: "vertical", Slot: 2}); return err },
		func() error { _, _, err := s.handleHideLine(ctx, nil, LineInput{Kind: "horizontal", Slot: 4}); return err },
		func() error { _, _, err := s.handleShowBox(ctx, nil, EmptyInput{}); return err },
		func() error { _, _, err := s.handleHideBox(ctx, nil, EmptyInput{}); return err },
		func() error { _, _, err := s.handleShowGuides(ctx, nil, GuidesInput{Set: 1}); return err },
		func() error { _, _, err := s.handleHideGuides(ctx, nil, GuidesInput{Set: 2}); return err },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	want := "flash|show vertical 2|hide horizontal 4|show box|hide box|show guides 1|hide guides 2"
	if got := strings.Join(d.calls, "|"); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}

	_, box, err := s.handleGetBox(ctx, nil, EmptyInput{})
	if err != nil || box.Text != "1,2,3,4" {
		t.Fatalf("unexpected box %+v (err %v)", box, err)
	}
}

func TestToolsValidateArguments(t *testing.T) {
	d := &fakeDaemon{}
	s := NewServer(d)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"bad kind", func() error { _, _, err := s.handleShowLine(ctx, nil, LineInput{Kind: "diagonal", Slot: 1}); return err }},
		{"slot zero", func() error { _, _, err := s.handleShowLine(ctx, nil, LineInput{Kind: "vertical", Slot: 0}); return err }},
		{"slot five", func() error { _, _, err := s.handleHideLine(ctx, nil, LineInput{Kind: "vertical", Slot: 5}); return err }},
		{"set three", func() error { _, _, err := s.handleShowGuides(ctx, nil, GuidesInput{Set: 3}); return err }},
		{"empty topmost", func() error { _, _, err := s.handleSetTopmost(ctx, nil, SetTopmostInput{}); return err }},
		{"negative interval", func() error {
			_, _, err := s.handleSetTopmost(ctx, nil, SetTopmostInput{IntervalMS: -5})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
	if len(d.calls) != 0 {
		t.Fatalf("expected no daemon calls, got %v", d.calls)
	}
}

func TestSetTopmostForwardsPayload(t *testing.T) {
	d := &fakeDaemon{}
	s := NewServer(d)
	on := false
	_, out, err := s.handleSetTopmost(context.Background(), nil, SetTopmostInput{Enabled: &on, Strategy: "event"})
	if err != nil || !out.OK {
		t.Fatalf("set_topmost: %+v (err %v)", out, err)
	}
	if d.topmost.Enabled == nil || *d.topmost.Enabled || d.topmost.Strategy != "event" {
		t.Fatalf("unexpected payload %+v", d.topmost)
	}
}

func TestDaemonErrorsPropagate(t *testing.T) {
	d := &fakeDaemon{err: errors.New("daemon is not running")}
	s := NewServer(d)
	if _, _, err := s.handleFlashLine(context.Background(), nil, EmptyInput{}); err == nil {
		t.Fatalf("expected error")
	}
	if _, _, err := s.handleGetStatus(context.Background(), nil, EmptyInput{}); err == nil {
		t.Fatalf("expected error")
	}
}
