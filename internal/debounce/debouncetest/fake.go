// Package debouncetest provides a manually advanced scheduler for tests.
package debouncetest

import (
	"sort"
	"sync"
	"time"

	"InkBoard/internal/debounce"
)

// Scheduler is a debounce.Scheduler whose clock only moves on Advance.
// Callbacks run synchronously inside Advance, on the caller's goroutine.
type Scheduler struct {
	mu     sync.Mutex
	now    time.Time
	timers []*timer
}

var _ debounce.Scheduler = (*Scheduler)(nil)

type timer struct {
	s       *Scheduler
	at      time.Time
	f       func()
	stopped bool
}

func (t *timer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

func New() *Scheduler {
	return &Scheduler{now: time.Unix(0, 0)}
}

func (s *Scheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *Scheduler) AfterFunc(d time.Duration, f func()) debounce.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &timer{s: s, at: s.now.Add(d), f: f}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock forward and runs every timer that became due, in
// deadline order.
func (s *Scheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now = s.now.Add(d)
	var due, rest []*timer
	for _, t := range s.timers {
		switch {
		case t.stopped:
		case !t.at.After(s.now):
			due = append(due, t)
		default:
			rest = append(rest, t)
		}
	}
	s.timers = rest
	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	s.mu.Unlock()

	for _, t := range due {
		s.mu.Lock()
		stopped := t.stopped
		t.stopped = true
		s.mu.Unlock()
		if !stopped {
			t.f()
		}
	}
}

// Active returns the number of timers neither fired nor stopped.
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}
