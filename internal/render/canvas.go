// Package render draws engine scenes. Committed strokes go through a cached
// bitmap that is only redrawn when the scene generation changes; everything
// that moves while the pointer is down is drawn on top of it every frame.
package render

import (
	"image"
	"image/color"

	"InkBoard/internal/geom"
	"InkBoard/internal/state"
)

// Canvas is the set of drawing operations the renderer needs from a
// surface. Widths are in pixels.
type Canvas interface {
	Bounds() image.Rectangle
	Clear(c color.Color)
	StrokeLine(a, b geom.Point, width float64, c color.Color)
	StrokePolyline(pts []geom.Point, width float64, c color.Color)
	FillCircle(center geom.Point, r float64, c color.Color)
	StrokeCircle(center geom.Point, r, width float64, c color.Color)
	// StrokeRect outlines r. A non-empty dash alternates drawn and skipped
	// lengths.
	StrokeRect(r geom.Rect, width float64, c color.Color, dash []float64)
	DrawImage(img image.Image)
}

// DrawStroke draws s with its translation applied. Each segment takes the
// average width of its two end points; a single point becomes a dot.
func DrawStroke(cv Canvas, s *state.Stroke) {
	pts := s.Points()
	if len(pts) == 0 {
		return
	}
	tr := s.Translation()
	if len(pts) == 1 {
		cv.FillCircle(pts[0].Pos().Translate(tr), s.WidthAt(pts[0])/2, s.Color)
		return
	}
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		w := (s.WidthAt(a) + s.WidthAt(b)) / 2
		cv.StrokeLine(a.Pos().Translate(tr), b.Pos().Translate(tr), w, s.Color)
	}
}
