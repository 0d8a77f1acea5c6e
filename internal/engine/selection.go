package engine

import (
	"maps"

	"github.com/google/uuid"

	"InkBoard/internal/geom"
	"InkBoard/internal/state"
)

// Selection is the set of selected strokes and their aggregate bounds.
// It only ever names strokes present in the collection.
type Selection struct {
	ids    map[uuid.UUID]struct{}
	bounds geom.Rect
}

func (s *Selection) Empty() bool { return len(s.ids) == 0 }
func (s *Selection) Len() int    { return len(s.ids) }

func (s *Selection) Has(id uuid.UUID) bool {
	_, ok := s.ids[id]
	return ok
}

// Set returns a copy of the selected IDs.
func (s *Selection) Set() map[uuid.UUID]struct{} { return maps.Clone(s.ids) }

// Bounds returns the margin-expanded box around the selection, if any.
func (s *Selection) Bounds() (geom.Rect, bool) {
	if s.Empty() {
		return geom.Rect{}, false
	}
	return s.bounds, true
}

func (s *Selection) Clear() {
	s.ids = nil
	s.bounds = geom.Rect{}
}

// Select replaces the selection with every stroke touching r.
func (s *Selection) Select(strokes []*state.Stroke, r geom.Rect, margin float64) {
	s.Clear()
	for _, st := range strokes {
		if StrokeInRect(st, r) {
			if s.ids == nil {
				s.ids = make(map[uuid.UUID]struct{})
			}
			s.ids[st.ID] = struct{}{}
		}
	}
	s.Recompute(strokes, margin)
}

// Drop removes ids from the selection and reports whether any was selected.
func (s *Selection) Drop(ids map[uuid.UUID]struct{}) bool {
	dropped := false
	for id := range ids {
		if _, ok := s.ids[id]; ok {
			delete(s.ids, id)
			dropped = true
		}
	}
	return dropped
}

// Recompute rebuilds the bounds from the selected strokes, and forgets IDs
// no longer present in strokes.
func (s *Selection) Recompute(strokes []*state.Stroke, margin float64) {
	var (
		b     geom.Rect
		found = make(map[uuid.UUID]struct{}, len(s.ids))
	)
	for _, st := range strokes {
		if !s.Has(st.ID) {
			continue
		}
		if len(found) == 0 {
			b = st.Bounds()
		} else {
			b = b.Union(st.Bounds())
		}
		found[st.ID] = struct{}{}
	}
	if len(found) == 0 {
		s.Clear()
		return
	}
	s.ids = found
	s.bounds = b.Inflate(margin, margin)
}

func (s *Selection) translate(d geom.Vec2) {
	s.bounds = s.bounds.Translate(d)
}

// StrokeInRect reports whether a stroke touches r: one of its points lies
// inside r, or one of its segments crosses a border of r.
func StrokeInRect(s *state.Stroke, r geom.Rect) bool {
	if !s.Bounds().Intersects(r) {
		return false
	}
	var (
		prev  geom.Point
		first = true
	)
	for p := range s.Positions() {
		if r.Contains(p) {
			return true
		}
		if !first && r.SegmentCrosses(prev, p) {
			return true
		}
		prev, first = p, false
	}
	return false
}

// Selected returns the IDs of the selected strokes in z-order.
func (e *Engine) Selected() []uuid.UUID {
	e.mu.Lock()
	defer e.mu.Unlock()
	var ids []uuid.UUID
	for _, s := range e.strokes.Strokes() {
		if e.selection.Has(s.ID) {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// SelectionBounds returns the box drawn around the selection.
func (e *Engine) SelectionBounds() (geom.Rect, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selection.Bounds()
}

// SelectRect selects the strokes touching the rectangle spanned by two
// corners, as a finished marquee would.
func (e *Engine) SelectRect(a, b geom.Point) {
	e.do(func(fx *effects) {
		e.selection.Select(e.strokes.Strokes(), geom.NewRectFromPoints(a, b), e.opts.SelectionMargin)
		fx.changed = true
	})
}

// DragSelection moves the selected strokes by d.
func (e *Engine) DragSelection(d geom.Vec2) {
	e.do(func(fx *effects) {
		if d.IsZero() {
			return
		}
		e.dragSelectionLocked(fx, d)
		e.publishSelectionLocked(fx)
	})
}

// dragSelectionLocked adds d to the translation of every selected stroke and
// shifts the selection box with them.
func (e *Engine) dragSelectionLocked(fx *effects, d geom.Vec2) {
	if e.selection.Empty() {
		return
	}
	repl := make(map[uuid.UUID]*state.Stroke, e.selection.Len())
	for _, s := range e.strokes.Strokes() {
		if e.selection.Has(s.ID) {
			repl[s.ID] = s.Translated(d)
		}
	}
	if e.strokes.ReplaceAll(repl) == 0 {
		return
	}
	e.selection.translate(d)
	e.invalidate(fx)
}

// publishSelectionLocked emits the final state of the selected strokes.
func (e *Engine) publishSelectionLocked(fx *effects) {
	for _, s := range e.strokes.Strokes() {
		if e.selection.Has(s.ID) {
			e.emit(fx, state.Op{Type: state.OpUpdateStroke, Stroke: ptr(s.Record())})
		}
	}
}
