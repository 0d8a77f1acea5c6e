package state

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Clock stamps local ops with a lamport timestamp and the site they come
// from.
type Clock struct {
	site    string
	lamport atomic.Uint64
}

func NewClock() *Clock {
	return &Clock{site: uuid.NewString()}
}

func (c *Clock) Site() string { return c.site }

// Stamp fills in the lamport time and site of a local op.
func (c *Clock) Stamp(op Op) Op {
	op.Lamport = c.lamport.Add(1)
	op.Site = c.site
	return op
}

// Observe moves the clock past a timestamp seen on a remote op.
func (c *Clock) Observe(lamport uint64) {
	for {
		cur := c.lamport.Load()
		if lamport <= cur || c.lamport.CompareAndSwap(cur, lamport) {
			return
		}
	}
}

func (c *Clock) Now() uint64 { return c.lamport.Load() }
