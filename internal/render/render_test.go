package render

import (
	"fmt"
	"image"
	"image/color"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InkBoard/internal/engine"
	"InkBoard/internal/geom"
	"InkBoard/internal/state"
)

// recorder is a Canvas that logs every call.
type recorder struct {
	ops     []string
	panicOn string
}

func (r *recorder) log(op string, format string, args ...any) {
	if op == r.panicOn {
		panic("canvas broke in " + op)
	}
	r.ops = append(r.ops, op+" "+fmt.Sprintf(format, args...))
}

func (r *recorder) Bounds() image.Rectangle { return image.Rect(0, 0, 100, 100) }
func (r *recorder) Clear(c color.Color)     { r.log("Clear", "%v", c) }
func (r *recorder) DrawImage(image.Image)   { r.log("DrawImage", "") }
func (r *recorder) StrokeLine(a, b geom.Point, w float64, c color.Color) {
	r.log("StrokeLine", "%v %v %g %v", a, b, w, c)
}
func (r *recorder) StrokePolyline(pts []geom.Point, w float64, c color.Color) {
	r.log("StrokePolyline", "%v %g %v", pts, w, c)
}
func (r *recorder) FillCircle(p geom.Point, rad float64, c color.Color) {
	r.log("FillCircle", "%v %g %v", p, rad, c)
}
func (r *recorder) StrokeCircle(p geom.Point, rad, w float64, c color.Color) {
	r.log("StrokeCircle", "%v %g %g %v", p, rad, w, c)
}
func (r *recorder) StrokeRect(rect geom.Rect, w float64, c color.Color, dash []float64) {
	r.log("StrokeRect", "%v %g %v %v", rect, w, c, dash)
}

type fakeSurface struct {
	cv      Canvas
	err     error
	unlocks int
}

func (s *fakeSurface) Lock() (Canvas, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.cv, nil
}

func (s *fakeSurface) Unlock() { s.unlocks++ }

var black = color.NRGBA{A: 255}

func stroke(thickness float64, pts ...state.Point) *state.Stroke {
	s := state.NewStroke(black, thickness, pts[0])
	for _, p := range pts[1:] {
		s.Append(p)
	}
	return s
}

func TestDrawStroke(t *testing.T) {
	r := &recorder{}
	DrawStroke(r, stroke(2,
		state.NewPoint(0, 0, 0),
		state.NewPoint(10, 0, 1),
		state.NewPoint(10, 10, 1),
	).Translated(geom.Vec2{X: 5, Y: 5}))

	assert.Equal(t, []string{
		"StrokeLine (5, 5) (15, 5) 2 {0 0 0 255}",
		"StrokeLine (15, 5) (15, 15) 3 {0 0 0 255}",
	}, r.ops)

	r = &recorder{}
	DrawStroke(r, stroke(3, state.NewPoint(1, 2, 1)))
	assert.Equal(t, []string{"FillCircle (1, 2) 2 {0 0 0 255}"}, r.ops)
}

func TestDrawOverlays(t *testing.T) {
	active := stroke(1, state.NewPoint(0, 0, 1), state.NewPoint(1, 0, 1))
	marquee := geom.Rect{X0: 0, Y0: 0, X1: 50, Y1: 40}
	sel := geom.Rect{X0: 5, Y0: 5, X1: 20, Y1: 20}
	red := color.NRGBA{R: 255, A: 255}
	sc := engine.Scene{
		Active:         active,
		Predicted:      &state.Point{X: 3, Y: 0, Pressure: 1},
		PredictedColor: red,
		Eraser: &engine.EraserOverlay{
			Trail:  []geom.Point{{X: 1, Y: 1}, {X: 2, Y: 2}},
			Center: geom.Point{X: 2, Y: 2},
			Radius: 15,
		},
		Marquee:         &marquee,
		SelectionBounds: &sel,
	}

	r := &recorder{}
	DrawOverlays(r, sc)
	assert.Equal(t, []string{
		"StrokeLine (0, 0) (1, 0) 2 {0 0 0 255}",
		"StrokeLine (1, 0) (3, 0) 2 {255 0 0 255}",
		"StrokePolyline [(1, 1) (2, 2)] 30 {128 128 128 64}",
		"StrokeCircle (2, 2) 15 2 {255 0 0 255}",
		"StrokeRect [0, 0, 50, 40] 2 {0 0 255 255} [12 12]",
		"StrokeRect [5, 5, 20, 20] 2 {0 0 255 255} [8 8]",
	}, r.ops)

	r = &recorder{}
	DrawOverlays(r, engine.Scene{})
	assert.Empty(t, r.ops, "an idle scene has no overlays")
}

func TestCacheRedrawsOnlyWhenStale(t *testing.T) {
	var c Cache
	sc := engine.Scene{
		Generation: 1,
		Background: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		Strokes:    []*state.Stroke{stroke(1, state.NewPoint(1, 1, 1), state.NewPoint(9, 9, 1))},
	}

	_, ok := c.Update(sc)
	assert.False(t, ok, "nothing allocated yet")

	c.Allocate(64, 48)
	w, h := c.Size()
	assert.Equal(t, [2]int{64, 48}, [2]int{w, h})

	img, ok := c.Update(sc)
	require.True(t, ok)
	assert.Equal(t, image.Rect(0, 0, 64, 48), img.Bounds())
	c.Update(sc)
	c.Update(sc)
	assert.Equal(t, 1, c.Redraws())

	sc.Generation++
	c.Update(sc)
	assert.Equal(t, 2, c.Redraws())

	sc.Background = color.NRGBA{A: 255}
	c.Update(sc)
	assert.Equal(t, 3, c.Redraws())

	c.Allocate(64, 48)
	c.Update(sc)
	assert.Equal(t, 3, c.Redraws(), "same size keeps the bitmap")

	c.Allocate(32, 32)
	c.Update(sc)
	assert.Equal(t, 4, c.Redraws())

	c.Release()
	_, ok = c.Update(sc)
	assert.False(t, ok)
	c.Allocate(0, 10)
	_, ok = c.Update(sc)
	assert.False(t, ok)
}

func TestCacheRasterizesStrokes(t *testing.T) {
	var c Cache
	c.Allocate(100, 100)
	sc := engine.Scene{
		Generation: 1,
		Background: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		Strokes: []*state.Stroke{
			stroke(9, state.NewPoint(10, 50, 1), state.NewPoint(90, 50, 1)),
		},
	}
	img, ok := c.Update(sc)
	require.True(t, ok)

	on := img.RGBAAt(50, 50)
	assert.Less(t, on.R, uint8(64), "stroke center is dark: %v", on)
	off := img.RGBAAt(50, 20)
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, off)
}

func TestRenderSkipsUnavailableSurface(t *testing.T) {
	cache := &Cache{}
	cache.Allocate(10, 10)
	r := NewRenderer(cache)

	err := r.Render(engine.Scene{Generation: 1}, NewImageSurface(0, 0))
	assert.ErrorIs(t, err, ErrSurfaceUnavailable)
	assert.Zero(t, cache.Redraws())

	fs := &fakeSurface{err: ErrSurfaceUnavailable}
	assert.ErrorIs(t, r.Render(engine.Scene{}, fs), ErrSurfaceUnavailable)
	assert.Zero(t, fs.unlocks, "a failed lock is not unlocked")
}

func TestRenderRecoversAndUnlocks(t *testing.T) {
	r := NewRenderer(&Cache{})
	rec := &recorder{panicOn: "Clear"}
	fs := &fakeSurface{cv: rec}

	err := r.Render(engine.Scene{}, fs)
	assert.Error(t, err)
	assert.Equal(t, 1, fs.unlocks)

	rec.panicOn = ""
	require.NoError(t, r.Render(engine.Scene{}, fs))
	assert.Equal(t, 2, fs.unlocks)
}

func TestRenderWithoutCacheClears(t *testing.T) {
	r := NewRenderer(&Cache{})
	rec := &recorder{}
	bg := color.NRGBA{R: 1, G: 2, B: 3, A: 255}
	require.NoError(t, r.Render(engine.Scene{Background: bg}, &fakeSurface{cv: rec}))
	assert.Equal(t, []string{"Clear {1 2 3 255}"}, rec.ops)
}

func TestImageSurface(t *testing.T) {
	s := NewImageSurface(8, 4)
	assert.Nil(t, s.Front(nil))

	cache := &Cache{}
	cache.Allocate(8, 4)
	r := NewRenderer(cache)
	red := color.NRGBA{R: 255, A: 255}
	require.NoError(t, r.Render(engine.Scene{Background: red}, s))

	front := s.Front(nil)
	require.NotNil(t, front)
	assert.Equal(t, image.Rect(0, 0, 8, 4), front.Bounds())
	assert.Equal(t, color.RGBA{R: 255, A: 255}, front.RGBAAt(3, 2))
	assert.Equal(t, 1, s.Frames())

	// a second lock while drawing is refused
	_, err := s.Lock()
	require.NoError(t, err)
	_, err = s.Lock()
	assert.ErrorIs(t, err, ErrSurfaceUnavailable)
	s.Unlock()

	s.Resize(0, 4)
	_, err = s.Lock()
	assert.ErrorIs(t, err, ErrSurfaceUnavailable)
}

type gatedSource struct {
	gate  chan struct{}
	calls atomic.Int32
}

func (g *gatedSource) Snapshot() engine.Scene {
	g.calls.Add(1)
	<-g.gate
	return engine.Scene{}
}

func TestLoopCoalescesRequests(t *testing.T) {
	src := &gatedSource{gate: make(chan struct{})}
	cache := &Cache{}
	cache.Allocate(4, 4)
	var posted atomic.Int32
	l := NewLoop(src, NewRenderer(cache), NewImageSurface(4, 4), func() { posted.Add(1) })
	t.Cleanup(l.Stop)

	l.Request()
	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, time.Millisecond)

	// the worker is busy; these collapse into one more frame
	for range 10 {
		l.Request()
	}
	close(src.gate)

	require.Eventually(t, func() bool { return l.Frames() == 2 }, time.Second, time.Millisecond)
	assert.Never(t, func() bool { return l.Frames() > 2 }, 50*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, int32(2), posted.Load())
}

func TestLoopSkipsUnavailableSurface(t *testing.T) {
	l := NewLoop(engineSource{}, NewRenderer(&Cache{}), NewImageSurface(0, 0), nil)
	l.Request()
	require.Eventually(t, func() bool { return l.Skipped() == 1 }, time.Second, time.Millisecond)
	assert.Zero(t, l.Frames())

	l.Stop()
	l.Stop()
	l.Request()
}

type engineSource struct{}

func (engineSource) Snapshot() engine.Scene { return engine.Scene{} }
