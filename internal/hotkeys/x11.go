package hotkeys

import (
	"errors"
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// x11Accessor is implemented by backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// keyEntry is one chord known to the X side. xgbutil has no way to detach a
// single key callback, so the callback stays connected and is gated by
// active instead.
type keyEntry struct {
	mods     uint16
	keycodes []xproto.Keycode
	active   bool
	fire     func()
}

// KeybindRegistrar registers global chords as passive key grabs on the root
// window.
type KeybindRegistrar struct {
	xu      *xgbutil.XUtil
	root    xproto.Window
	entries map[string]*keyEntry
}

var _ Registrar = (*KeybindRegistrar)(nil)

var ignoreModsOnce sync.Once

// NewKeybindRegistrar creates a registrar on the backend's X connection.
func NewKeybindRegistrar(backend any) (*KeybindRegistrar, error) {
	accessor, ok := backend.(x11Accessor)
	if !ok || accessor.XUtil() == nil {
		return nil, fmt.Errorf("global hotkeys need an X11 backend")
	}
	xu := accessor.XUtil()

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &KeybindRegistrar{
		xu:      xu,
		root:    accessor.RootWindow(),
		entries: make(map[string]*keyEntry),
	}, nil
}

// Register grabs chord on the root window. A grab refused by the server
// (another client owns it) is reported as ErrChordInUse.
func (k *KeybindRegistrar) Register(chord string, fire func()) error {
	e, ok := k.entries[chord]
	if !ok {
		mods, keycodes, err := keybind.ParseString(k.xu, chord)
		if err != nil {
			return fmt.Errorf("%q: %v: %w", chord, err, ErrInvalidChord)
		}
		if len(keycodes) == 0 {
			return fmt.Errorf("%q: no keycode on this keyboard: %w", chord, ErrInvalidChord)
		}
		e = &keyEntry{mods: mods, keycodes: keycodes}
		entry := e
		if err := keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
			if entry.active && entry.fire != nil {
				entry.fire()
			}
		}).Connect(k.xu, k.root, chord, false); err != nil {
			return fmt.Errorf("%q: %v: %w", chord, err, ErrInvalidChord)
		}
		k.entries[chord] = e
	}
	if e.active {
		return fmt.Errorf("%q: %w", chord, ErrChordInUse)
	}

	for _, code := range e.keycodes {
		if err := keybind.GrabChecked(k.xu, k.root, e.mods, code); err != nil {
			k.ungrab(e)
			var access xproto.AccessError
			if errors.As(err, &access) {
				return fmt.Errorf("%q: %w", chord, ErrChordInUse)
			}
			return fmt.Errorf("%q: grab failed: %w", chord, err)
		}
	}
	e.fire = fire
	e.active = true
	return nil
}

// Unregister releases chord. Unknown chords are ignored.
func (k *KeybindRegistrar) Unregister(chord string) error {
	e, ok := k.entries[chord]
	if !ok {
		return nil
	}
	if e.active {
		k.ungrab(e)
	}
	e.active = false
	e.fire = nil
	return nil
}

func (k *KeybindRegistrar) ungrab(e *keyEntry) {
	for _, code := range e.keycodes {
		keybind.Ungrab(k.xu, k.root, e.mods, code)
	}
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
