package state

import (
	"sync"
)

type opKey struct {
	site    string
	lamport uint64
}

// Ledger remembers which remote ops have been applied so that an op relayed
// twice, or echoed back to its sender, is applied once.
type Ledger struct {
	clock *Clock
	seen  map[opKey]struct{}
	mu    sync.Mutex
}

func NewLedger(clock *Clock) *Ledger {
	return &Ledger{
		clock: clock,
		seen:  make(map[opKey]struct{}),
	}
}

// Admit reports whether op is new and should be applied. Ops from our own
// site are never admitted.
func (l *Ledger) Admit(op Op) bool {
	if op.Site == l.clock.Site() {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	k := opKey{op.Site, op.Lamport}
	if _, ok := l.seen[k]; ok {
		logger().Debug("[CRDT] duplicate op ignored", "site", op.Site, "lamport", op.Lamport)
		return false
	}
	l.seen[k] = struct{}{}
	l.clock.Observe(op.Lamport)
	return true
}

// Len returns the number of remote ops admitted so far.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.seen)
}
