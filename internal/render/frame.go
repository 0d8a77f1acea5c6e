package render

import (
	"fmt"
	"image/color"

	"InkBoard/internal/engine"
)

var (
	SelectionColor   = color.NRGBA{B: 255, A: 255}
	EraserColor      = color.NRGBA{R: 255, A: 255}
	EraserTrailColor = color.NRGBA{R: 128, G: 128, B: 128, A: 64}

	MarqueeDash   = []float64{12, 12}
	SelectionDash = []float64{8, 8}
)

const (
	OverlayWidth    = 2
	EraserRingWidth = 2
)

// Renderer draws scenes: the cached committed strokes, then the overlays.
type Renderer struct {
	cache *Cache
}

func NewRenderer(cache *Cache) *Renderer {
	return &Renderer{cache: cache}
}

func (r *Renderer) Cache() *Cache { return r.cache }

// Render draws one frame of sc onto s. It returns ErrSurfaceUnavailable
// without drawing when the surface cannot be locked. A panic while drawing
// is recovered and returned; the surface is unlocked on every path.
func (r *Renderer) Render(sc engine.Scene, s Surface) (err error) {
	cv, err := s.Lock()
	if err != nil {
		return err
	}
	defer s.Unlock()
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("render: frame %d: %v", sc.Generation, p)
			logger().Error("[RENDER] frame failed", "err", err)
		}
	}()

	if img, ok := r.cache.Update(sc); ok {
		cv.DrawImage(img)
	} else {
		cv.Clear(sc.Background)
	}
	DrawOverlays(cv, sc)
	return nil
}

// DrawOverlays draws everything in sc that changes while a gesture is in
// progress.
func DrawOverlays(cv Canvas, sc engine.Scene) {
	if sc.Active != nil {
		DrawStroke(cv, sc.Active)
		if sc.Predicted != nil {
			last := sc.Active.Last()
			w := (sc.Active.WidthAt(last) + sc.Active.WidthAt(*sc.Predicted)) / 2
			tr := sc.Active.Translation()
			cv.StrokeLine(last.Pos().Translate(tr), sc.Predicted.Pos().Translate(tr), w, sc.PredictedColor)
		}
	}
	if e := sc.Eraser; e != nil {
		cv.StrokePolyline(e.Trail, 2*e.Radius, EraserTrailColor)
		cv.StrokeCircle(e.Center, e.Radius, EraserRingWidth, EraserColor)
	}
	if m := sc.Marquee; m != nil {
		cv.StrokeRect(*m, OverlayWidth, SelectionColor, MarqueeDash)
	}
	if b := sc.SelectionBounds; b != nil {
		cv.StrokeRect(*b, OverlayWidth, SelectionColor, SelectionDash)
	}
}
