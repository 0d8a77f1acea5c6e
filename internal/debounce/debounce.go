// Package debounce coalesces bursts of triggers into a single delayed call.
package debounce

import (
	"sync"
	"time"
)

// Timer is the handle returned by Scheduler.AfterFunc.
type Timer interface {
	Stop() bool
}

// Scheduler runs delayed callbacks. The zero Coalescer uses the time package.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
	Now() time.Time
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
func (realScheduler) Now() time.Time                            { return time.Now() }

// Coalescer holds at most one pending unit of work. Each Trigger replaces
// the pending work and restarts the delay; when the delay expires the slot
// is drained and the callback runs once.
//
// If MaxWait is positive, a pending slot older than MaxWait fires on the
// next expiry even if triggers keep arriving.
type Coalescer struct {
	fn      func()
	delay   time.Duration
	maxWait time.Duration
	sched   Scheduler

	mu      sync.Mutex
	timer   Timer
	pending bool
	since   time.Time // when the current slot was filled
	seq     uint64    // identifies the live timer, stale fires are ignored
	stopped bool
}

// New returns a Coalescer calling fn delay after the last Trigger.
// A nil sched uses real time.
func New(delay, maxWait time.Duration, sched Scheduler, fn func()) *Coalescer {
	if sched == nil {
		sched = realScheduler{}
	}
	return &Coalescer{
		fn:      fn,
		delay:   delay,
		maxWait: maxWait,
		sched:   sched,
	}
}

// Trigger fills the slot and (re)starts the timer.
func (c *Coalescer) Trigger() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	now := c.sched.Now()
	if !c.pending {
		c.pending = true
		c.since = now
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	d := c.delay
	if c.maxWait > 0 {
		if left := c.maxWait - now.Sub(c.since); left < d {
			d = max(left, 0)
		}
	}
	c.seq++
	seq := c.seq
	c.timer = c.sched.AfterFunc(d, func() { c.fire(seq) })
}

func (c *Coalescer) fire(seq uint64) {
	c.mu.Lock()
	if seq != c.seq || !c.pending || c.stopped {
		c.mu.Unlock()
		return
	}
	c.pending = false
	c.timer = nil
	c.mu.Unlock()

	c.fn()
}

// Pending reports whether work is waiting for the timer.
func (c *Coalescer) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Cancel empties the slot without running the callback. Callers use it
// after doing the work synchronously.
func (c *Coalescer) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
}

// Stop cancels pending work and ignores every later Trigger.
func (c *Coalescer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
	c.stopped = true
}

func (c *Coalescer) cancelLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.pending = false
	c.seq++
}
