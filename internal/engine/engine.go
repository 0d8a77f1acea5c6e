// Package engine turns pointer input into strokes. It owns the committed
// stroke collection, the in-progress stroke, the erase queue and the
// selection, and publishes immutable Scene snapshots for rendering.
package engine

import (
	"fmt"
	"image/color"
	"slices"
	"sync"

	"github.com/google/uuid"

	"InkBoard/internal/debounce"
	"InkBoard/internal/geom"
	"InkBoard/internal/state"
)

// Engine is safe for concurrent use. Pointer events are expected from one
// goroutine at a time; Snapshot may be called from any goroutine.
type Engine struct {
	mu sync.Mutex

	opts       Options
	strokes    state.Collection
	generation uint64

	tool      toolState
	selection Selection
	erase     EraseQueue
	debouncer *debounce.Coalescer

	lastPos geom.Point
	hasLast bool
	warned  bool

	clock  *state.Clock
	ledger *state.Ledger

	onChange  func()
	onLocalOp func(state.Op)
}

// An Option customizes New.
type Option func(*Engine)

// WithScheduler drives the erase debounce from sched instead of real time.
func WithScheduler(sched debounce.Scheduler) Option {
	return func(e *Engine) {
		e.debouncer = debounce.New(e.opts.EraseDelay, e.opts.EraseMaxWait, sched, e.eraseDebounced)
	}
}

// WithClock stamps local ops with clock, which allows a host to share its
// site identity with the network layer.
func WithClock(clock *state.Clock) Option {
	return func(e *Engine) {
		e.clock = clock
		e.ledger = state.NewLedger(clock)
	}
}

func New(opts Options, options ...Option) *Engine {
	e := &Engine{opts: opts.normalize()}
	e.tool = newToolState(e.opts.Tool)
	e.debouncer = debounce.New(e.opts.EraseDelay, e.opts.EraseMaxWait, nil, e.eraseDebounced)
	e.clock = state.NewClock()
	e.ledger = state.NewLedger(e.clock)
	for _, o := range options {
		o(e)
	}
	return e
}

// effects collects what a locked mutation wants done after unlocking.
type effects struct {
	changed bool
	ops     []state.Op
}

func (e *Engine) do(f func(fx *effects)) {
	e.mu.Lock()
	var fx effects
	f(&fx)
	onChange, onLocalOp := e.onChange, e.onLocalOp
	e.mu.Unlock()

	if onLocalOp != nil {
		for _, op := range fx.ops {
			onLocalOp(op)
		}
	}
	if fx.changed && onChange != nil {
		onChange()
	}
}

// invalidate marks the cached rasterization of committed strokes stale.
func (e *Engine) invalidate(fx *effects) {
	e.generation++
	fx.changed = true
}

func (e *Engine) emit(fx *effects, op state.Op) {
	fx.ops = append(fx.ops, e.clock.Stamp(op))
}

// OnChange registers f to be called after every change that needs a new
// frame. It runs on the goroutine that caused the change, without engine
// locks held.
func (e *Engine) OnChange(f func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onChange = f
}

// OnLocalOp registers f to receive every local change to the committed
// strokes, stamped for sharing with peers.
func (e *Engine) OnLocalOp(f func(state.Op)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onLocalOp = f
}

// Site returns the identity stamped on local ops.
func (e *Engine) Site() string { return e.clock.Site() }

// position resolves the coordinates of an event. Non-finite coordinates fall
// back to the last good position; without one the event is dropped.
func (e *Engine) position(x, y float64) (geom.Point, bool) {
	p := geom.Pt(x, y)
	if p.IsNaN() || p.IsInf() {
		return e.lastPos, e.hasLast
	}
	e.lastPos, e.hasLast = p, true
	return p, true
}

func (e *Engine) PointerDown(x, y, pressure float64) {
	e.do(func(fx *effects) {
		e.hasLast = false
		pos, ok := e.position(x, y)
		if !ok {
			return
		}
		e.tool.down(e, fx, state.NewPoint(pos.X, pos.Y, pressure))
	})
}

func (e *Engine) PointerMove(x, y, pressure float64) {
	e.do(func(fx *effects) {
		pos, ok := e.position(x, y)
		if !ok {
			return
		}
		e.tool.move(e, fx, state.NewPoint(pos.X, pos.Y, pressure))
	})
}

// PointerUp ends the gesture. The release position is not recorded: hosts
// deliver the final sample as a move first.
func (e *Engine) PointerUp(x, y, pressure float64) {
	e.do(func(fx *effects) {
		e.position(x, y)
		e.tool.up(e, fx)
		e.hasLast = false
	})
}

// PointerCancel ends the gesture the same way PointerUp does, without a
// final position.
func (e *Engine) PointerCancel() {
	e.do(func(fx *effects) {
		e.tool.up(e, fx)
		e.hasLast = false
	})
}

// Tool returns the current tool.
func (e *Engine) Tool() Tool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tool.kind()
}

// SetTool switches the input mode. A gesture in progress is abandoned
// without committing anything. Switching to erase deletes the selected
// strokes; leaving select clears the selection.
func (e *Engine) SetTool(t Tool) {
	e.do(func(fx *effects) {
		if t < ToolDraw || t > ToolSelect || t == e.tool.kind() {
			return
		}
		e.tool.abort(e, fx)
		if t == ToolErase && !e.selection.Empty() {
			e.removeLocked(fx, e.selection.Set())
		}
		if t != ToolSelect {
			e.selection.Clear()
		}
		e.opts.Tool = t
		e.tool = newToolState(t)
		fx.changed = true
		logger().Debug("[ENGINE] tool changed", "tool", t)
	})
}

// SetStrokeColor sets the color of new strokes. With the select tool and a
// non-empty selection the selected strokes are recolored too.
func (e *Engine) SetStrokeColor(c color.NRGBA) {
	e.do(func(fx *effects) {
		e.opts.StrokeColor = c
		e.restyleSelectionLocked(fx, func(s *state.Stroke) *state.Stroke {
			return s.Restyled(c, s.ThicknessFactor)
		})
	})
}

// SetThicknessFactor sets the thickness of new strokes. With the select tool
// and a non-empty selection the selected strokes get it too.
func (e *Engine) SetThicknessFactor(f float64) {
	e.do(func(fx *effects) {
		f = sanitizeThickness(f)
		e.opts.ThicknessFactor = f
		e.restyleSelectionLocked(fx, func(s *state.Stroke) *state.Stroke {
			return s.Restyled(s.Color, f)
		})
	})
}

// SetBackgroundColor replaces the board color and forces a full redraw.
func (e *Engine) SetBackgroundColor(c color.NRGBA) {
	e.do(func(fx *effects) {
		if e.opts.BackgroundColor == c {
			return
		}
		e.opts.BackgroundColor = c
		e.invalidate(fx)
	})
}

// SetPrediction configures stroke prediction. A multiplier of 0 disables it.
func (e *Engine) SetPrediction(multiplier float64, afterNPoints int) {
	e.do(func(fx *effects) {
		o := e.opts
		o.PredictionMultiplier = multiplier
		o.PredictAfterNPoints = afterNPoints
		o = o.normalize()
		e.opts.PredictionMultiplier = o.PredictionMultiplier
		e.opts.PredictAfterNPoints = o.PredictAfterNPoints
	})
}

// SetPredictedStrokeColor overrides the color of the predicted segment; nil
// draws it in the stroke's own color.
func (e *Engine) SetPredictedStrokeColor(c *color.NRGBA) {
	e.do(func(fx *effects) {
		if c != nil {
			cc := *c
			c = &cc
		}
		e.opts.PredictedStrokeColor = c
	})
}

// Options returns the current configuration.
func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()
	o := e.opts
	o.Tool = e.tool.kind()
	return o
}

// Strokes returns the committed strokes in z-order for external
// serialization.
func (e *Engine) Strokes() []state.Record {
	e.mu.Lock()
	strokes := e.strokes.Strokes()
	e.mu.Unlock()

	out := make([]state.Record, 0, len(strokes))
	for _, s := range strokes {
		out = append(out, s.Record())
	}
	return out
}

// Len returns the number of committed strokes.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.strokes.Len()
}

// Generation returns the current cache generation. It grows by one for every
// invalidation.
func (e *Engine) Generation() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation
}

// Load replaces the committed strokes with records, typically read back from
// storage. Nothing is changed if any record is invalid.
func (e *Engine) Load(records []state.Record) error {
	strokes := make([]*state.Stroke, 0, len(records))
	for i, r := range records {
		s, err := state.FromRecord(r)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		strokes = append(strokes, s)
	}
	e.do(func(fx *effects) {
		e.tool.abort(e, fx)
		e.tool = newToolState(e.tool.kind())
		e.selection.Clear()
		e.strokes.Reset(strokes)
		e.invalidate(fx)
	})
	return nil
}

// Clear removes every committed stroke.
func (e *Engine) Clear() {
	e.do(func(fx *effects) {
		ids := make(map[string]struct{}, e.strokes.Len())
		for _, s := range e.strokes.Strokes() {
			ids[s.ID.String()] = struct{}{}
		}
		e.selection.Clear()
		if e.strokes.Len() == 0 {
			return
		}
		e.strokes.Reset(nil)
		e.invalidate(fx)
		e.emit(fx, state.Op{Type: state.OpDeleteStroke, Targets: sortedKeys(ids)})
	})
}

// Snapshot returns the state needed to render one frame.
func (e *Engine) Snapshot() Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	sc := Scene{
		Generation: e.generation,
		Tool:       e.tool.kind(),
		Background: e.opts.BackgroundColor,
		Strokes:    e.strokes.Strokes(),
	}
	e.tool.scene(e, &sc)
	if b, ok := e.selection.Bounds(); ok {
		sc.SelectionBounds = &b
	}
	return sc
}

// Close stops the erase debounce. The engine stays readable.
func (e *Engine) Close() {
	e.debouncer.Stop()
}

func (e *Engine) commitLocked(fx *effects, s *state.Stroke) {
	e.strokes.Add(s)
	e.invalidate(fx)
	e.emit(fx, state.Op{Type: state.OpInsertStroke, Stroke: ptr(s.Record())})
	if n := e.strokes.Len(); n > e.opts.MaxStrokes && !e.warned {
		e.warned = true
		logger().Warn("[ENGINE] stroke count past soft cap, full redraws will slow down",
			"strokes", n, "cap", e.opts.MaxStrokes)
	}
	logger().Debug("[ENGINE] stroke committed", "id", s.ID, "points", s.Len())
}

// removeLocked deletes strokes from the collection and the selection in one
// step.
func (e *Engine) removeLocked(fx *effects, ids map[uuid.UUID]struct{}) int {
	removed := e.strokes.Remove(ids)
	if len(removed) == 0 {
		return 0
	}
	targets := make([]string, 0, len(removed))
	for _, s := range removed {
		targets = append(targets, s.ID.String())
	}
	if e.selection.Drop(ids) {
		e.selection.Recompute(e.strokes.Strokes(), e.opts.SelectionMargin)
	}
	e.invalidate(fx)
	e.emit(fx, state.Op{Type: state.OpDeleteStroke, Targets: targets})
	return len(removed)
}

func (e *Engine) restyleSelectionLocked(fx *effects, restyle func(*state.Stroke) *state.Stroke) {
	if e.tool.kind() != ToolSelect || e.selection.Empty() {
		return
	}
	repl := make(map[uuid.UUID]*state.Stroke, e.selection.Len())
	for _, s := range e.strokes.Strokes() {
		if e.selection.Has(s.ID) {
			repl[s.ID] = restyle(s)
		}
	}
	if e.strokes.ReplaceAll(repl) == 0 {
		return
	}
	e.invalidate(fx)
	for _, s := range e.strokes.Strokes() {
		if _, ok := repl[s.ID]; ok {
			e.emit(fx, state.Op{Type: state.OpUpdateStroke, Stroke: ptr(s.Record())})
		}
	}
}

func ptr[T any](v T) *T { return &v }

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
