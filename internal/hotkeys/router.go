// Package hotkeys maps global key chords to overlay show/hide actions.
package hotkeys

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/1broseidon/screenline/internal/overlay"
)

var (
	// ErrChordInUse means the chord is already claimed, either by another
	// client of the display or by another binding in this process.
	ErrChordInUse = errors.New("chord already in use")
	// ErrInvalidChord means the chord string could not be parsed.
	ErrInvalidChord = errors.New("invalid chord")
	// ErrUnknownSlot is returned when unregistering a slot with no bindings.
	ErrUnknownSlot = errors.New("unknown slot")
)

// Action is what a chord does to its slot.
type Action int

const (
	ActionShow Action = iota
	ActionHide
	ActionToggle
)

func (a Action) String() string {
	switch a {
	case ActionShow:
		return "show"
	case ActionHide:
		return "hide"
	case ActionToggle:
		return "toggle"
	default:
		return "unknown"
	}
}

// Slot names the overlay a binding drives. Index is the hotkey slot for
// persistent lines and zero otherwise.
type Slot struct {
	Kind  overlay.Kind
	Index int
}

func (s Slot) String() string {
	return fmt.Sprintf("%s/%d", s.Kind, s.Index)
}

// Binding is one registered chord.
type Binding struct {
	Chord  string
	Slot   Slot
	Action Action
}

// Registrar is the window-system side of global chord registration.
type Registrar interface {
	// Register claims chord and arranges for fire to run when it is pressed.
	Register(chord string, fire func()) error
	// Unregister releases chord. Releasing a chord that is not held is a
	// no-op.
	Unregister(chord string) error
}

// Target receives dispatched actions.
type Target interface {
	Show(slot Slot) error
	Hide(slot Slot) error
	Toggle(slot Slot) error
}

// Router owns the chord namespace of this process.
type Router struct {
	reg    Registrar
	target Target
	logger *slog.Logger

	bindings map[string]Binding
	bySlot   map[Slot][]string
}

// NewRouter creates a router with no bindings.
func NewRouter(reg Registrar, target Target, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		reg:      reg,
		target:   target,
		logger:   logger,
		bindings: make(map[string]Binding),
		bySlot:   make(map[Slot][]string),
	}
}

// NormalizeChord trims whitespace and canonicalizes modifier names so that
// "ctrl-alt-1" and "Control-Mod1-1" compare equal. The key itself keeps its
// case since X keysym names are case sensitive.
func NormalizeChord(chord string) string {
	parts := strings.Split(strings.TrimSpace(chord), "-")
	for i, p := range parts[:len(parts)-1] {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "control", "ctrl":
			parts[i] = "Control"
		case "shift":
			parts[i] = "Shift"
		case "mod1", "alt":
			parts[i] = "Mod1"
		case "mod4", "super", "win":
			parts[i] = "Mod4"
		default:
			parts[i] = strings.TrimSpace(p)
		}
	}
	parts[len(parts)-1] = strings.TrimSpace(parts[len(parts)-1])
	return strings.Join(parts, "-")
}

// Register binds a single chord to (slot, action).
func (r *Router) Register(chord string, slot Slot, action Action) error {
	return r.RegisterAll(slot, Binding{Chord: chord, Slot: slot, Action: action})
}

// RegisterPair binds a slot's show and hide chords. Either both succeed or
// neither stays registered.
func (r *Router) RegisterPair(slot Slot, showChord, hideChord string) error {
	return r.RegisterAll(slot,
		Binding{Chord: showChord, Slot: slot, Action: ActionShow},
		Binding{Chord: hideChord, Slot: slot, Action: ActionHide},
	)
}

// RegisterAll registers every binding for slot atomically. On failure each
// chord that was attempted is released again and the slot ends up with no
// bindings from this call.
func (r *Router) RegisterAll(slot Slot, bindings ...Binding) error {
	seen := make(map[string]bool, len(bindings))
	for i := range bindings {
		c := NormalizeChord(bindings[i].Chord)
		if c == "" {
			return fmt.Errorf("%s: empty chord: %w", slot, ErrInvalidChord)
		}
		if _, taken := r.bindings[c]; taken || seen[c] {
			return fmt.Errorf("%s: %q: %w", slot, c, ErrChordInUse)
		}
		seen[c] = true
		bindings[i].Chord = c
		bindings[i].Slot = slot
	}

	var attempted []string
	for _, b := range bindings {
		attempted = append(attempted, b.Chord)
		chord := b.Chord
		if err := r.reg.Register(chord, func() { r.Dispatch(chord) }); err != nil {
			for _, c := range attempted {
				if uerr := r.reg.Unregister(c); uerr != nil {
					r.logger.Debug("hotkeys: rollback unregister failed", "chord", c, "error", uerr)
				}
			}
			return fmt.Errorf("%s: register %q: %w", slot, chord, err)
		}
	}

	for _, b := range bindings {
		r.bindings[b.Chord] = b
		r.bySlot[slot] = append(r.bySlot[slot], b.Chord)
	}
	return nil
}

// Unregister removes every chord bound to slot.
func (r *Router) Unregister(slot Slot) error {
	chords, ok := r.bySlot[slot]
	if !ok {
		return fmt.Errorf("%s: %w", slot, ErrUnknownSlot)
	}
	var firstErr error
	for _, c := range chords {
		if err := r.reg.Unregister(c); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(r.bindings, c)
	}
	delete(r.bySlot, slot)
	return firstErr
}

// UnregisterAll removes every binding.
func (r *Router) UnregisterAll() {
	for slot := range r.bySlot {
		if err := r.Unregister(slot); err != nil {
			r.logger.Debug("hotkeys: unregister failed", "slot", slot, "error", err)
		}
	}
}

// Registered reports whether slot has any bindings.
func (r *Router) Registered(slot Slot) bool {
	_, ok := r.bySlot[slot]
	return ok
}

// Bindings returns every binding, for status output.
func (r *Router) Bindings() []Binding {
	out := make([]Binding, 0, len(r.bindings))
	for _, b := range r.bindings {
		out = append(out, b)
	}
	return out
}

// Dispatch runs the action bound to chord. Unknown chords are ignored.
func (r *Router) Dispatch(chord string) {
	b, ok := r.bindings[NormalizeChord(chord)]
	if !ok {
		return
	}
	var err error
	switch b.Action {
	case ActionShow:
		err = r.target.Show(b.Slot)
	case ActionHide:
		err = r.target.Hide(b.Slot)
	case ActionToggle:
		err = r.target.Toggle(b.Slot)
	}
	if err != nil {
		r.logger.Warn("hotkeys: action failed", "chord", b.Chord, "slot", b.Slot, "action", b.Action, "error", err)
	}
}
