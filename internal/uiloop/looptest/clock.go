// Package looptest provides a manually advanced uiloop.Scheduler.
package looptest

import (
	"sort"
	"time"

	"github.com/1broseidon/screenline/internal/uiloop"
)

// Clock is a deterministic scheduler. Nothing runs until Advance or Flush is
// called, and everything runs on the caller's goroutine.
type Clock struct {
	now    time.Duration
	seq    int
	posted []func()
	timers []*timer
}

var _ uiloop.Scheduler = (*Clock)(nil)

// New returns a clock at time zero.
func New() *Clock {
	return &Clock{}
}

type timer struct {
	c       *Clock
	due     time.Duration
	period  time.Duration
	seq     int
	fn      func()
	stopped bool
}

func (t *timer) Stop() {
	t.stopped = true
}

// Now returns the elapsed virtual time.
func (c *Clock) Now() time.Duration { return c.now }

func (c *Clock) Post(fn func()) {
	if fn != nil {
		c.posted = append(c.posted, fn)
	}
}

func (c *Clock) After(d time.Duration, fn func()) uiloop.Timer {
	return c.schedule(d, 0, fn)
}

func (c *Clock) Every(d time.Duration, fn func()) uiloop.Timer {
	if d <= 0 {
		d = time.Millisecond
	}
	return c.schedule(d, d, fn)
}

func (c *Clock) schedule(d, period time.Duration, fn func()) *timer {
	c.seq++
	t := &timer{c: c, due: c.now + d, period: period, seq: c.seq, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// Pending reports how many timers are still armed.
func (c *Clock) Pending() int {
	n := 0
	for _, t := range c.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Flush runs posted work until the queue is empty.
func (c *Clock) Flush() {
	for len(c.posted) > 0 {
		fn := c.posted[0]
		c.posted = c.posted[1:]
		fn()
	}
}

// Advance moves virtual time forward by d, firing every timer that comes due
// in order. Posted work is flushed before and after each timer.
func (c *Clock) Advance(d time.Duration) {
	target := c.now + d
	for {
		c.Flush()
		t := c.next(target)
		if t == nil {
			break
		}
		c.now = t.due
		if t.period > 0 {
			c.seq++
			t.due += t.period
			t.seq = c.seq
		} else {
			t.stopped = true
		}
		t.fn()
	}
	c.now = target
	c.Flush()
}

func (c *Clock) next(limit time.Duration) *timer {
	live := c.timers[:0]
	for _, t := range c.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	c.timers = live
	sort.SliceStable(c.timers, func(i, j int) bool {
		if c.timers[i].due != c.timers[j].due {
			return c.timers[i].due < c.timers[j].due
		}
		return c.timers[i].seq < c.timers[j].seq
	})
	if len(c.timers) == 0 || c.timers[0].due > limit {
		return nil
	}
	return c.timers[0]
}
