package engine

import (
	"github.com/google/uuid"

	"InkBoard/internal/geom"
	"InkBoard/internal/state"
)

// EraseQueue accumulates eraser samples between processing passes. It is
// owned by the Engine and guarded by its lock.
type EraseQueue struct {
	samples []geom.Point
}

func (q *EraseQueue) Push(p geom.Point) { q.samples = append(q.samples, p) }

func (q *EraseQueue) Len() int { return len(q.samples) }

// Drain empties the queue and returns what it held.
func (q *EraseQueue) Drain() []geom.Point {
	s := q.samples
	q.samples = nil
	return s
}

// eraseDebounced runs when the debounce timer fires.
func (e *Engine) eraseDebounced() {
	e.do(func(fx *effects) {
		e.processEraseLocked(fx)
	})
}

// eraseNowLocked runs a pass immediately and drops the pending timer.
func (e *Engine) eraseNowLocked(fx *effects) {
	e.debouncer.Cancel()
	e.processEraseLocked(fx)
}

// processEraseLocked drains the queue and removes every stroke the eraser
// touched. An empty queue changes nothing.
func (e *Engine) processEraseLocked(fx *effects) {
	samples := e.erase.Drain()
	if len(samples) == 0 {
		return
	}
	hits := HitStrokes(e.strokes.Strokes(), samples, e.opts.EraserRadius)
	if len(hits) == 0 {
		return
	}
	n := e.removeLocked(fx, hits)
	logger().Debug("[ENGINE] erased strokes", "count", n, "samples", len(samples))
}

// HitStrokes returns the IDs of the strokes that an eraser disc of the given
// radius touches at any of the samples.
func HitStrokes(strokes []*state.Stroke, samples []geom.Point, radius float64) map[uuid.UUID]struct{} {
	var hits map[uuid.UUID]struct{}
	for _, s := range strokes {
		if StrokeHit(s, samples, radius) {
			if hits == nil {
				hits = make(map[uuid.UUID]struct{})
			}
			hits[s.ID] = struct{}{}
		}
	}
	return hits
}

// StrokeHit reports whether any sample lies within radius of the stroke,
// using translated coordinates. It stops at the first hit.
func StrokeHit(s *state.Stroke, samples []geom.Point, radius float64) bool {
	reach := s.Bounds().Inflate(radius, radius)
	pts := s.Points()
	t := s.Translation()
	for _, c := range samples {
		if !reach.Contains(c) {
			continue
		}
		if len(pts) == 1 {
			if c.Distance(pts[0].Pos().Translate(t)) <= radius {
				return true
			}
			continue
		}
		prev := pts[0].Pos().Translate(t)
		for _, p := range pts[1:] {
			cur := p.Pos().Translate(t)
			if geom.DistancePointToSegment(c, prev, cur) <= radius {
				return true
			}
			prev = cur
		}
	}
	return false
}

// Erase queues samples and processes them at once, as a pointer-down or
// pointer-up would. It reports how many strokes were removed.
func (e *Engine) Erase(samples ...geom.Point) int {
	var n int
	e.do(func(fx *effects) {
		before := e.strokes.Len()
		for _, s := range samples {
			e.erase.Push(s)
		}
		e.eraseNowLocked(fx)
		n = before - e.strokes.Len()
	})
	return n
}

// EraseQueued returns the number of samples waiting for a pass.
func (e *Engine) EraseQueued() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.erase.Len()
}

// FlushErase runs a pass over whatever is queued.
func (e *Engine) FlushErase() {
	e.do(e.eraseNowLocked)
}
