package engine

import (
	"github.com/google/uuid"

	"InkBoard/internal/state"
)

// ApplyRemote applies an op received from a peer. Ops from this engine's own
// site, and ops already applied, are ignored. It reports whether the op
// changed anything.
func (e *Engine) ApplyRemote(op state.Op) bool {
	if !e.ledger.Admit(op) {
		return false
	}
	applied := false
	e.do(func(fx *effects) {
		switch op.Type {
		case state.OpInsertStroke:
			applied = e.insertRemoteLocked(fx, op)
		case state.OpUpdateStroke:
			applied = e.updateRemoteLocked(fx, op)
		case state.OpDeleteStroke:
			applied = e.deleteRemoteLocked(fx, op)
		default:
			logger().Warn("[ENGINE] unknown remote op", "type", op.Type, "site", op.Site)
		}
	})
	return applied
}

// SyncOps returns one freshly stamped insert op per committed stroke, in
// z-order, to bring a peer that joins late up to date.
func (e *Engine) SyncOps() []state.Op {
	e.mu.Lock()
	defer e.mu.Unlock()
	strokes := e.strokes.Strokes()
	ops := make([]state.Op, 0, len(strokes))
	for _, s := range strokes {
		ops = append(ops, e.clock.Stamp(state.Op{Type: state.OpInsertStroke, Stroke: ptr(s.Record())}))
	}
	return ops
}

func (e *Engine) insertRemoteLocked(fx *effects, op state.Op) bool {
	if op.Stroke == nil {
		return false
	}
	s, err := state.FromRecord(*op.Stroke)
	if err != nil {
		logger().Warn("[ENGINE] bad remote stroke", "err", err, "site", op.Site)
		return false
	}
	if e.strokes.Contains(s.ID) {
		return false
	}
	e.strokes.Add(s)
	e.invalidate(fx)
	return true
}

func (e *Engine) updateRemoteLocked(fx *effects, op state.Op) bool {
	if op.Stroke == nil {
		return false
	}
	s, err := state.FromRecord(*op.Stroke)
	if err != nil {
		logger().Warn("[ENGINE] bad remote stroke", "err", err, "site", op.Site)
		return false
	}
	if !e.strokes.Replace(s) {
		return false
	}
	if e.selection.Has(s.ID) {
		e.selection.Recompute(e.strokes.Strokes(), e.opts.SelectionMargin)
	}
	e.invalidate(fx)
	return true
}

func (e *Engine) deleteRemoteLocked(fx *effects, op state.Op) bool {
	ids := make(map[uuid.UUID]struct{}, len(op.Targets))
	for _, t := range op.Targets {
		id, err := uuid.Parse(t)
		if err != nil {
			continue
		}
		ids[id] = struct{}{}
	}
	removed := e.strokes.Remove(ids)
	if len(removed) == 0 {
		return false
	}
	if e.selection.Drop(ids) {
		e.selection.Recompute(e.strokes.Strokes(), e.opts.SelectionMargin)
	}
	e.invalidate(fx)
	return true
}
