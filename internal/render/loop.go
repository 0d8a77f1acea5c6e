package render

import (
	"errors"
	"sync"
	"sync/atomic"

	"InkBoard/internal/engine"
)

// Source provides the scene to draw. *engine.Engine is a Source.
type Source interface {
	Snapshot() engine.Scene
}

// Loop renders on its own goroutine. Requests made while a frame is in
// progress collapse into one follow-up frame.
type Loop struct {
	src      Source
	renderer *Renderer
	surface  Surface
	onFrame  func()

	requests chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	frames  atomic.Int64
	skipped atomic.Int64
}

// NewLoop starts the render goroutine. onFrame, if set, runs on that
// goroutine after every posted frame.
func NewLoop(src Source, r *Renderer, s Surface, onFrame func()) *Loop {
	l := &Loop{
		src:      src,
		renderer: r,
		surface:  s,
		onFrame:  onFrame,
		requests: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	l.wg.Add(1)
	go l.run()
	return l
}

// Request asks for a frame. It never blocks.
func (l *Loop) Request() {
	select {
	case l.requests <- struct{}{}:
	default:
	}
}

// Stop ends the render goroutine after the frame in progress, if any.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.done) })
	l.wg.Wait()
}

// Frames returns the number of frames posted.
func (l *Loop) Frames() int64 { return l.frames.Load() }

// Skipped returns the number of requests dropped because the surface was
// unavailable.
func (l *Loop) Skipped() int64 { return l.skipped.Load() }

func (l *Loop) run() {
	defer l.wg.Done()
	for {
		select {
		case <-l.done:
			return
		case <-l.requests:
		}
		// the snapshot is taken after the request is consumed, so a
		// mutation that requested a frame is always in the next one
		err := l.renderer.Render(l.src.Snapshot(), l.surface)
		switch {
		case errors.Is(err, ErrSurfaceUnavailable):
			l.skipped.Add(1)
			continue
		case err != nil:
			continue
		}
		l.frames.Add(1)
		if l.onFrame != nil {
			l.onFrame()
		}
	}
}
