package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// waker unblocks an xevent loop parked in Read. xgbutil aborts the process
// if the connection is closed under a blocked Read, so loops are stopped by
// Quit followed by a self-inflicted PropertyNotify, and closed afterwards.
type waker struct {
	xu  *xgbutil.XUtil
	win *xwindow.Window
}

func newWaker(xu *xgbutil.XUtil) (*waker, error) {
	win, err := xwindow.Generate(xu)
	if err != nil {
		return nil, fmt.Errorf("generate wake window: %w", err)
	}
	err = win.CreateChecked(xu.RootWin(), -1, -1, 1, 1,
		xproto.CwOverrideRedirect|xproto.CwEventMask,
		1, xproto.EventMaskPropertyChange)
	if err != nil {
		return nil, fmt.Errorf("create wake window: %w", err)
	}
	return &waker{xu: xu, win: win}, nil
}

func (w *waker) wake() {
	if w == nil {
		return
	}
	_ = xprop.ChangeProp32(w.xu, w.win.Id, "_SCREENLINE_WAKE", "CARDINAL", 1)
}
