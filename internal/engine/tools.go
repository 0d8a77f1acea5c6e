package engine

import (
	"slices"

	"InkBoard/internal/geom"
	"InkBoard/internal/state"
)

// toolState is the per-tool gesture state machine. Each variant carries only
// the state its tool needs. Methods run with the engine lock held.
type toolState interface {
	kind() Tool
	down(e *Engine, fx *effects, p state.Point)
	move(e *Engine, fx *effects, p state.Point)
	up(e *Engine, fx *effects)
	// abort drops the gesture in progress without committing anything.
	abort(e *Engine, fx *effects)
	scene(e *Engine, sc *Scene)
}

func newToolState(t Tool) toolState {
	switch t {
	case ToolErase:
		return &eraseState{}
	case ToolSelect:
		return &selectState{}
	default:
		return &drawState{}
	}
}

// drawState: Idle -> Drawing -> Idle.
type drawState struct {
	stroke    *state.Stroke
	predicted *state.Point
}

func (d *drawState) kind() Tool { return ToolDraw }

func (d *drawState) down(e *Engine, fx *effects, p state.Point) {
	d.stroke = state.NewStroke(e.opts.StrokeColor, e.opts.ThicknessFactor, p)
	d.predicted = nil
	fx.changed = true
}

func (d *drawState) move(e *Engine, fx *effects, p state.Point) {
	if d.stroke == nil {
		return
	}
	d.stroke.Append(p)
	d.predicted = nil
	if pp, ok := Predict(d.stroke.Points(), e.opts.PredictAfterNPoints, e.opts.PredictionMultiplier); ok {
		d.predicted = &pp
	}
	fx.changed = true
}

func (d *drawState) up(e *Engine, fx *effects) {
	if d.stroke == nil {
		return
	}
	e.commitLocked(fx, d.stroke)
	d.stroke = nil
	d.predicted = nil
}

func (d *drawState) abort(e *Engine, fx *effects) {
	if d.stroke != nil {
		fx.changed = true
	}
	d.stroke = nil
	d.predicted = nil
}

func (d *drawState) scene(e *Engine, sc *Scene) {
	if d.stroke == nil {
		return
	}
	sc.Active = d.stroke.Snapshot()
	if d.predicted != nil {
		pp := *d.predicted
		sc.Predicted = &pp
		sc.PredictedColor = d.stroke.Color
		if c := e.opts.PredictedStrokeColor; c != nil {
			sc.PredictedColor = *c
		}
	}
}

// eraseState: Idle -> Erasing -> Idle.
type eraseState struct {
	active bool
	cursor geom.Point
	trail  []geom.Point
}

func (s *eraseState) kind() Tool { return ToolErase }

func (s *eraseState) down(e *Engine, fx *effects, p state.Point) {
	s.active = true
	s.cursor = p.Pos()
	s.trail = []geom.Point{s.cursor}
	e.erase.Push(s.cursor)
	e.eraseNowLocked(fx)
	fx.changed = true
}

func (s *eraseState) move(e *Engine, fx *effects, p state.Point) {
	if !s.active {
		return
	}
	s.cursor = p.Pos()
	s.trail = append(s.trail, s.cursor)
	e.erase.Push(s.cursor)
	e.debouncer.Trigger()
	fx.changed = true
}

func (s *eraseState) up(e *Engine, fx *effects) {
	if !s.active {
		return
	}
	e.eraseNowLocked(fx)
	s.active = false
	s.trail = nil
	fx.changed = true
}

func (s *eraseState) abort(e *Engine, fx *effects) {
	e.erase.Drain()
	e.debouncer.Cancel()
	if s.active {
		fx.changed = true
	}
	s.active = false
	s.trail = nil
}

func (s *eraseState) scene(e *Engine, sc *Scene) {
	if !s.active {
		return
	}
	sc.Eraser = &EraserOverlay{
		Trail:  slices.Clip(s.trail),
		Center: s.cursor,
		Radius: e.opts.EraserRadius,
	}
}

type selectMode int

const (
	selectIdle selectMode = iota
	selectMarquee
	selectDragging
)

// selectState: Idle -> (Selecting | Dragging) -> Idle.
type selectState struct {
	mode selectMode
	// marquee corners
	anchor, corner geom.Point
	// drag
	last  geom.Point
	moved geom.Vec2
}

func (s *selectState) kind() Tool { return ToolSelect }

func (s *selectState) down(e *Engine, fx *effects, p state.Point) {
	pos := p.Pos()
	if b, ok := e.selection.Bounds(); ok && b.Contains(pos) {
		s.mode = selectDragging
		s.last = pos
		s.moved = geom.Vec2{}
		return
	}
	e.selection.Clear()
	s.mode = selectMarquee
	s.anchor, s.corner = pos, pos
	fx.changed = true
}

func (s *selectState) move(e *Engine, fx *effects, p state.Point) {
	pos := p.Pos()
	switch s.mode {
	case selectMarquee:
		s.corner = pos
		fx.changed = true
	case selectDragging:
		d := pos.Sub(s.last)
		s.last = pos
		if d.IsZero() {
			return
		}
		s.moved = s.moved.Add(d)
		e.dragSelectionLocked(fx, d)
	}
}

func (s *selectState) up(e *Engine, fx *effects) {
	switch s.mode {
	case selectMarquee:
		r := geom.NewRectFromPoints(s.anchor, s.corner)
		e.selection.Select(e.strokes.Strokes(), r, e.opts.SelectionMargin)
		logger().Debug("[ENGINE] marquee finished", "rect", r, "selected", e.selection.Len())
		fx.changed = true
	case selectDragging:
		if !s.moved.IsZero() {
			e.publishSelectionLocked(fx)
		}
	}
	s.mode = selectIdle
}

func (s *selectState) abort(e *Engine, fx *effects) {
	switch s.mode {
	case selectMarquee:
		fx.changed = true
	case selectDragging:
		if !s.moved.IsZero() {
			e.dragSelectionLocked(fx, s.moved.Neg())
		}
	}
	s.mode = selectIdle
}

func (s *selectState) scene(e *Engine, sc *Scene) {
	if s.mode == selectMarquee {
		r := geom.NewRectFromPoints(s.anchor, s.corner)
		sc.Marquee = &r
	}
}
