package engine

import (
	"image/color"

	"InkBoard/internal/geom"
	"InkBoard/internal/state"
)

// Scene is an immutable view of the engine taken for one frame. Nothing in
// it is touched again by the engine, so the render task may read it without
// holding any lock.
type Scene struct {
	// Generation changes whenever the committed strokes or the background
	// change in a way that invalidates a cached rasterization.
	Generation uint64
	Tool       Tool
	Background color.NRGBA
	Strokes    []*state.Stroke

	// Active is the in-progress stroke, nil when not drawing.
	Active *state.Stroke
	// Predicted extends Active for display only.
	Predicted      *state.Point
	PredictedColor color.NRGBA

	Eraser *EraserOverlay

	Marquee         *geom.Rect
	SelectionBounds *geom.Rect
}

// EraserOverlay describes the eraser cursor of an ongoing erase gesture.
type EraserOverlay struct {
	Trail  []geom.Point
	Center geom.Point
	Radius float64
}
