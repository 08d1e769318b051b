package hotkeys

import (
	"errors"
	"testing"

	"github.com/1broseidon/screenline/internal/overlay"
)

type fakeRegistrar struct {
	held        map[string]func()
	fail        map[string]error
	registers   []string
	unregisters []string
}

func newFakeRegistrar() *fakeRegistrar {
	return &fakeRegistrar{held: make(map[string]func()), fail: make(map[string]error)}
}

func (f *fakeRegistrar) Register(chord string, fire func()) error {
	f.registers = append(f.registers, chord)
	if err := f.fail[chord]; err != nil {
		return err
	}
	f.held[chord] = fire
	return nil
}

func (f *fakeRegistrar) Unregister(chord string) error {
	f.unregisters = append(f.unregisters, chord)
	delete(f.held, chord)
	return nil
}

func (f *fakeRegistrar) press(chord string) {
	if fire, ok := f.held[chord]; ok {
		fire()
	}
}

type fakeTarget struct {
	calls []string
	err   error
}

func (t *fakeTarget) Show(s Slot) error   { t.calls = append(t.calls, "show "+s.String()); return t.err }
func (t *fakeTarget) Hide(s Slot) error   { t.calls = append(t.calls, "hide "+s.String()); return t.err }
func (t *fakeTarget) Toggle(s Slot) error { t.calls = append(t.calls, "toggle "+s.String()); return t.err }

var vertical1 = Slot{Kind: overlay.KindVerticalLine, Index: 1}

func TestNormalizeChord(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ctrl-alt-1", "Control-Mod1-1"},
		{" Control-Mod1-1 ", "Control-Mod1-1"},
		{"super-shift-a", "Mod4-Shift-a"},
		{"win-F5", "Mod4-F5"},
		{"F5", "F5"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeChord(tt.in); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRegisterPairAndDispatch(t *testing.T) {
	reg := newFakeRegistrar()
	target := &fakeTarget{}
	r := NewRouter(reg, target, nil)

	if err := r.RegisterPair(vertical1, "ctrl-alt-1", "ctrl-shift-alt-1"); err != nil {
		t.Fatalf("register pair: %v", err)
	}
	if !r.Registered(vertical1) {
		t.Fatalf("expected slot to be registered")
	}

	reg.press("Control-Mod1-1")
	reg.press("Control-Shift-Mod1-1")
	want := []string{"show vertical/1", "hide vertical/1"}
	if len(target.calls) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, target.calls)
	}
	for i := range want {
		if target.calls[i] != want[i] {
			t.Fatalf("expected calls %v, got %v", want, target.calls)
		}
	}
}

func TestRegisterPairRollsBackOnConflict(t *testing.T) {
	reg := newFakeRegistrar()
	reg.fail["Control-Shift-Mod1-1"] = ErrChordInUse
	r := NewRouter(reg, &fakeTarget{}, nil)

	err := r.RegisterPair(vertical1, "Control-Mod1-1", "Control-Shift-Mod1-1")
	if !errors.Is(err, ErrChordInUse) {
		t.Fatalf("expected ErrChordInUse, got %v", err)
	}
	if r.Registered(vertical1) {
		t.Fatalf("expected slot to stay unregistered")
	}
	if len(reg.unregisters) != len(reg.registers) {
		t.Fatalf("expected %d unregisters, got %d", len(reg.registers), len(reg.unregisters))
	}
	if len(reg.held) != 0 {
		t.Fatalf("expected no chords held, got %v", reg.held)
	}
}

func TestRegisterPairFirstHalfFails(t *testing.T) {
	reg := newFakeRegistrar()
	reg.fail["Control-Mod1-1"] = ErrChordInUse
	r := NewRouter(reg, &fakeTarget{}, nil)

	if err := r.RegisterPair(vertical1, "Control-Mod1-1", "Control-Shift-Mod1-1"); err == nil {
		t.Fatalf("expected error")
	}
	if len(reg.registers) != 1 {
		t.Fatalf("expected the second chord not to be attempted, got %v", reg.registers)
	}
	if len(reg.unregisters) != 1 {
		t.Fatalf("expected 1 unregister, got %d", len(reg.unregisters))
	}
}

func TestRegisterConflictWithinProcess(t *testing.T) {
	reg := newFakeRegistrar()
	r := NewRouter(reg, &fakeTarget{}, nil)

	if err := r.Register("F5", Slot{Kind: overlay.KindTemporaryLine}, ActionShow); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := r.RegisterPair(vertical1, "F5", "F6")
	if !errors.Is(err, ErrChordInUse) {
		t.Fatalf("expected ErrChordInUse, got %v", err)
	}
	if len(reg.registers) != 1 {
		t.Fatalf("expected conflict to be caught before the registrar, got %v", reg.registers)
	}

	err = r.RegisterPair(vertical1, "F7", "f7")
	if err != nil {
		t.Fatalf("case differs so chords are distinct, got %v", err)
	}
	err = r.RegisterPair(Slot{Kind: overlay.KindVerticalLine, Index: 2}, "F8", "F8")
	if !errors.Is(err, ErrChordInUse) {
		t.Fatalf("expected duplicate chord in one pair to conflict, got %v", err)
	}
}

func TestRegisterInvalidChord(t *testing.T) {
	r := NewRouter(newFakeRegistrar(), &fakeTarget{}, nil)
	if err := r.Register("  ", vertical1, ActionShow); !errors.Is(err, ErrInvalidChord) {
		t.Fatalf("expected ErrInvalidChord, got %v", err)
	}
}

func TestUnregister(t *testing.T) {
	reg := newFakeRegistrar()
	r := NewRouter(reg, &fakeTarget{}, nil)
	if err := r.RegisterPair(vertical1, "Control-Mod1-1", "Control-Shift-Mod1-1"); err != nil {
		t.Fatalf("register pair: %v", err)
	}

	if err := r.Unregister(vertical1); err != nil {
		t.Fatalf("unregister: %v", err)
	}
	if len(reg.held) != 0 {
		t.Fatalf("expected both chords released, got %v", reg.held)
	}
	if err := r.Unregister(vertical1); !errors.Is(err, ErrUnknownSlot) {
		t.Fatalf("expected ErrUnknownSlot, got %v", err)
	}

	// The chords are free again.
	if err := r.RegisterPair(vertical1, "Control-Mod1-1", "Control-Shift-Mod1-1"); err != nil {
		t.Fatalf("re-register: %v", err)
	}
}

func TestDispatchUnknownChordIgnored(t *testing.T) {
	target := &fakeTarget{}
	r := NewRouter(newFakeRegistrar(), target, nil)
	r.Dispatch("Control-Mod1-9")
	if len(target.calls) != 0 {
		t.Fatalf("expected no calls, got %v", target.calls)
	}
}

func TestDispatchActionErrorIsNotFatal(t *testing.T) {
	reg := newFakeRegistrar()
	target := &fakeTarget{err: errors.New("boom")}
	r := NewRouter(reg, target, nil)
	if err := r.Register("F9", vertical1, ActionToggle); err != nil {
		t.Fatalf("register: %v", err)
	}
	reg.press("F9")
	if len(target.calls) != 1 || target.calls[0] != "toggle vertical/1" {
		t.Fatalf("expected one toggle, got %v", target.calls)
	}
}

func TestUnregisterAll(t *testing.T) {
	reg := newFakeRegistrar()
	r := NewRouter(reg, &fakeTarget{}, nil)
	_ = r.RegisterPair(vertical1, "Control-Mod1-1", "Control-Shift-Mod1-1")
	_ = r.Register("F5", Slot{Kind: overlay.KindTemporaryLine}, ActionShow)

	r.UnregisterAll()
	if len(r.Bindings()) != 0 {
		t.Fatalf("expected no bindings, got %v", r.Bindings())
	}
	if len(reg.held) != 0 {
		t.Fatalf("expected no chords held, got %v", reg.held)
	}
}
