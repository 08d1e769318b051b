package topmost

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/screenline/internal/geometry"
	"github.com/1broseidon/screenline/internal/overlay"
	"github.com/1broseidon/screenline/internal/overlay/overlaytest"
	"github.com/1broseidon/screenline/internal/uiloop/looptest"
)

type surfaceList []*overlay.Surface

func (l surfaceList) VisibleSurfaces() []*overlay.Surface {
	var out []*overlay.Surface
	for _, s := range l {
		if s.Visible() {
			out = append(out, s)
		}
	}
	return out
}

type fakeSource struct {
	mu      sync.Mutex
	fn      func(string)
	err     error
	subs    int
	cancels int
}

func (f *fakeSource) Subscribe(fn func(string)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.subs++
	f.fn = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.cancels++
		f.fn = nil
	}, nil
}

func (f *fakeSource) emit(title string) {
	f.mu.Lock()
	fn := f.fn
	f.mu.Unlock()
	if fn != nil {
		fn(title)
	}
}

func newHarness(t *testing.T, visible int) (*overlaytest.Recorder, *looptest.Clock, surfaceList) {
	t.Helper()
	rec := overlaytest.New()
	var list surfaceList
	for i := 0; i < visible+1; i++ {
		opacity := 1.0
		if i == visible {
			opacity = 0
		}
		s, err := overlay.New(rec, overlay.ID(i+1), 0, overlay.Spec{
			Kind:    overlay.KindVerticalLine,
			Rect:    geometry.Rect{X: i * 10, Y: 0, Width: 1, Height: 100},
			Opacity: opacity,
			Topmost: true,
		})
		if err != nil {
			t.Fatalf("create surface: %v", err)
		}
		list = append(list, s)
	}
	rec.Reset()
	return rec, looptest.New(), list
}

func TestPollingReassertsVisibleSurfaces(t *testing.T) {
	rec, clock, list := newHarness(t, 2)
	a := New(Config{Surfaces: list, Scheduler: clock, Interval: 100 * time.Millisecond})
	a.Arm()
	if a.State() != ArmedPolling {
		t.Fatalf("expected %v, got %v", ArmedPolling, a.State())
	}

	clock.Advance(350 * time.Millisecond)
	if a.Passes() != 3 {
		t.Fatalf("expected 3 passes, got %d", a.Passes())
	}
	// Two visible surfaces, three passes, two topmost calls each.
	if got := rec.Count("topmost"); got != 12 {
		t.Fatalf("expected 12 topmost calls, got %d", got)
	}
	if got := rec.Count("raise"); got != 6 {
		t.Fatalf("expected 6 raises, got %d", got)
	}
	if !rec.Windows[1].Topmost {
		t.Fatalf("expected surface to end topmost")
	}
	if rec.Windows[3].Raises != 0 {
		t.Fatalf("expected hidden surface to be skipped")
	}
}

func TestPollingIntervalSanitized(t *testing.T) {
	for _, d := range []time.Duration{0, -5 * time.Millisecond} {
		_, clock, list := newHarness(t, 1)
		a := New(Config{Surfaces: list, Scheduler: clock, Interval: d})
		if a.Interval() != DefaultInterval {
			t.Fatalf("expected %v, got %v", DefaultInterval, a.Interval())
		}
		a.Arm()
		clock.Advance(99 * time.Millisecond)
		if a.Passes() != 0 {
			t.Fatalf("expected no pass before 100ms, got %d", a.Passes())
		}
		clock.Advance(time.Millisecond)
		if a.Passes() != 1 {
			t.Fatalf("expected one pass at 100ms, got %d", a.Passes())
		}
	}
}

func TestMenuOpenSkipsPass(t *testing.T) {
	rec, clock, list := newHarness(t, 1)
	a := New(Config{Surfaces: list, Scheduler: clock})
	a.Arm()
	a.SetMenuOpen(true)
	clock.Advance(time.Second)
	if a.Passes() != 0 || rec.Count("raise") != 0 {
		t.Fatalf("expected no passes while the menu is open")
	}
	a.SetMenuOpen(false)
	clock.Advance(100 * time.Millisecond)
	if a.Passes() != 1 {
		t.Fatalf("expected one pass after the menu closed, got %d", a.Passes())
	}
}

func TestRestartLeavesOneTimer(t *testing.T) {
	_, clock, list := newHarness(t, 1)
	a := New(Config{Surfaces: list, Scheduler: clock})
	a.Arm()
	a.SetInterval(200 * time.Millisecond)
	a.SetInterval(200 * time.Millisecond)
	a.Arm()
	if clock.Pending() != 1 {
		t.Fatalf("expected 1 armed timer, got %d", clock.Pending())
	}
	clock.Advance(time.Second)
	if a.Passes() != 5 {
		t.Fatalf("expected 5 passes, got %d", a.Passes())
	}

	a.Disarm()
	if clock.Pending() != 0 {
		t.Fatalf("expected no timers after disarm, got %d", clock.Pending())
	}
	clock.Advance(time.Second)
	if a.Passes() != 5 {
		t.Fatalf("expected no passes after disarm, got %d", a.Passes())
	}
}

func TestEventStrategyReassertsAfterRival(t *testing.T) {
	rec, clock, list := newHarness(t, 1)
	src := &fakeSource{}
	a := New(Config{
		Surfaces:  list,
		Scheduler: clock,
		Source:    src,
		Strategy:  StrategyEvent,
		Rivals:    []Rival{{Title: "Snipaste", Enabled: true}, {Title: "PixPin", Enabled: false}},
	})
	a.Arm()
	if a.State() != ArmedEvent {
		t.Fatalf("expected %v, got %v", ArmedEvent, a.State())
	}

	src.emit("Editor")
	src.emit("pixpin capture")
	clock.Advance(time.Second)
	if a.Passes() != 0 {
		t.Fatalf("expected no pass for non-rivals, got %d", a.Passes())
	}

	src.emit("Paster - SNIPASTE")
	clock.Advance(49 * time.Millisecond)
	if a.Passes() != 0 {
		t.Fatalf("expected pass to wait for the settle delay")
	}
	clock.Advance(time.Millisecond)
	if a.Passes() != 1 {
		t.Fatalf("expected 1 pass, got %d", a.Passes())
	}
	if rec.Count("raise") != 1 {
		t.Fatalf("expected 1 raise, got %d", rec.Count("raise"))
	}
}

func TestEventStrategyCoalescesBursts(t *testing.T) {
	_, clock, list := newHarness(t, 1)
	src := &fakeSource{}
	a := New(Config{Surfaces: list, Scheduler: clock, Source: src, Strategy: StrategyEvent,
		Rivals: []Rival{{Title: "snipaste", Enabled: true}}})
	a.Arm()

	src.emit("Snipaste")
	clock.Advance(30 * time.Millisecond)
	src.emit("Snipaste")
	clock.Advance(time.Second)
	if a.Passes() != 1 {
		t.Fatalf("expected 1 pass, got %d", a.Passes())
	}
}

func TestEventStrategyFallsBackToPolling(t *testing.T) {
	_, clock, list := newHarness(t, 1)
	src := &fakeSource{err: fmt.Errorf("no _NET_ACTIVE_WINDOW: %w", ErrSubscribe)}
	a := New(Config{Surfaces: list, Scheduler: clock, Source: src, Strategy: StrategyEvent})
	a.Arm()
	if a.State() != ArmedPolling {
		t.Fatalf("expected fallback to %v, got %v", ArmedPolling, a.State())
	}
	if a.Strategy() != StrategyEvent {
		t.Fatalf("expected configured strategy to stay event")
	}
	clock.Advance(100 * time.Millisecond)
	if a.Passes() != 1 {
		t.Fatalf("expected polling pass, got %d", a.Passes())
	}

	noSource := New(Config{Surfaces: list, Scheduler: clock, Strategy: StrategyEvent})
	noSource.Arm()
	if noSource.State() != ArmedPolling {
		t.Fatalf("expected nil source to fall back, got %v", noSource.State())
	}
}

func TestSwitchStrategyCancelsSubscription(t *testing.T) {
	_, clock, list := newHarness(t, 1)
	src := &fakeSource{}
	a := New(Config{Surfaces: list, Scheduler: clock, Source: src, Strategy: StrategyEvent,
		Rivals: []Rival{{Title: "snipaste", Enabled: true}}})
	a.Arm()
	src.emit("Snipaste")

	a.SetStrategy(StrategyPolling)
	if src.cancels != 1 {
		t.Fatalf("expected subscription cancelled, got %d cancels", src.cancels)
	}
	if clock.Pending() != 1 {
		t.Fatalf("expected only the polling timer, got %d", clock.Pending())
	}

	a.SetStrategy(StrategyEvent)
	if src.subs != 2 || clock.Pending() != 0 {
		t.Fatalf("expected resubscribe and no timers, got subs=%d pending=%d", src.subs, clock.Pending())
	}
	// The title posted before the switch belongs to the old subscription.
	clock.Advance(time.Second)
	if a.Passes() != 0 {
		t.Fatalf("expected stale event to be dropped, got %d passes", a.Passes())
	}
}

func TestSetRivals(t *testing.T) {
	a := New(Config{Rivals: []Rival{{Title: " PixPin ", Enabled: false}, {Title: ""}}})
	if len(a.Rivals()) != 1 || a.Rivals()[0].Title != "PixPin" {
		t.Fatalf("expected trimmed single rival, got %v", a.Rivals())
	}
	if a.Matches("PixPin") {
		t.Fatalf("expected disabled rival not to match")
	}
	a.SetRivals([]Rival{{Title: "pixpin", Enabled: true}})
	if len(a.Rivals()) != 1 || !a.Matches("PixPin window") {
		t.Fatalf("expected replaced rival to match, got %v", a.Rivals())
	}
	a.SetRivals(nil)
	if len(a.Rivals()) != 0 || a.Matches("PixPin window") {
		t.Fatalf("expected rival list cleared, got %v", a.Rivals())
	}
	if a.Matches("") {
		t.Fatalf("empty title never matches")
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"polling", StrategyPolling, false},
		{"", StrategyPolling, false},
		{"Event", StrategyEvent, false},
		{"hook", StrategyPolling, true},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("%q: expected error=%v, got %v", tt.in, tt.wantErr, err)
		}
		if got != tt.want {
			t.Fatalf("%q: expected %v, got %v", tt.in, tt.want, got)
		}
	}
	var s Strategy
	if err := s.UnmarshalText([]byte("bogus")); err == nil {
		t.Fatalf("expected unmarshal error")
	}
}
