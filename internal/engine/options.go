package engine

import (
	"fmt"
	"image/color"
	"math"
	"strings"
	"time"
)

// Tool is the global input mode.
type Tool int

const (
	ToolDraw Tool = iota
	ToolErase
	ToolSelect
)

func (t Tool) String() string {
	switch t {
	case ToolDraw:
		return "draw"
	case ToolErase:
		return "erase"
	case ToolSelect:
		return "select"
	default:
		return fmt.Sprintf("Tool(%d)", int(t))
	}
}

// ParseTool accepts the names printed by Tool.String.
func ParseTool(s string) (Tool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "draw", "pen", "pencil":
		return ToolDraw, nil
	case "erase", "eraser":
		return ToolErase, nil
	case "select":
		return ToolSelect, nil
	}
	return ToolDraw, fmt.Errorf("unknown tool %q", s)
}

// Options configures an Engine. The zero value of a field means its
// default, except for PredictionMultiplier where zero disables prediction.
type Options struct {
	Tool            Tool
	ThicknessFactor float64
	StrokeColor     color.NRGBA
	BackgroundColor color.NRGBA

	// PredictionMultiplier scales the last input step into a predicted
	// point drawn past the end of the stroke. 0 disables prediction.
	PredictionMultiplier float64
	// PredictedStrokeColor overrides the color of the predicted segment.
	PredictedStrokeColor *color.NRGBA
	// PredictAfterNPoints is the point count a gesture needs before
	// prediction starts.
	PredictAfterNPoints int

	EraserRadius    float64
	SelectionMargin float64
	// EraseDelay is the debounce applied to erase samples; EraseMaxWait
	// bounds how long a continuous drag may postpone an erase pass.
	EraseDelay   time.Duration
	EraseMaxWait time.Duration

	// MaxStrokes is a soft cap: past it the engine logs a warning once,
	// input is never rejected. 0 means DefaultMaxStrokes.
	MaxStrokes int
}

const (
	DefaultThicknessFactor     = 1
	DefaultPredictAfterNPoints = 30
	DefaultEraserRadius        = 15
	DefaultSelectionMargin     = 10
	DefaultEraseDelay          = 16 * time.Millisecond
	DefaultEraseMaxWait        = 4 * DefaultEraseDelay
	DefaultMaxStrokes          = 10000
)

var (
	Black = color.NRGBA{A: 255}
	White = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

func DefaultOptions() Options {
	return Options{
		Tool:                ToolDraw,
		ThicknessFactor:     DefaultThicknessFactor,
		StrokeColor:         Black,
		BackgroundColor:     White,
		PredictAfterNPoints: DefaultPredictAfterNPoints,
		EraserRadius:        DefaultEraserRadius,
		SelectionMargin:     DefaultSelectionMargin,
		EraseDelay:          DefaultEraseDelay,
		EraseMaxWait:        DefaultEraseMaxWait,
		MaxStrokes:          DefaultMaxStrokes,
	}
}

// normalize fills defaults and pulls out-of-range values back in range.
func (o Options) normalize() Options {
	if o.Tool < ToolDraw || o.Tool > ToolSelect {
		o.Tool = ToolDraw
	}
	o.ThicknessFactor = sanitizeThickness(o.ThicknessFactor)
	if o.StrokeColor == (color.NRGBA{}) {
		o.StrokeColor = Black
	}
	if o.BackgroundColor == (color.NRGBA{}) {
		o.BackgroundColor = White
	}
	if math.IsNaN(o.PredictionMultiplier) || o.PredictionMultiplier < 0 {
		o.PredictionMultiplier = 0
	}
	if o.PredictAfterNPoints <= 0 {
		o.PredictAfterNPoints = DefaultPredictAfterNPoints
	}
	if !(o.EraserRadius > 0) {
		o.EraserRadius = DefaultEraserRadius
	}
	if !(o.SelectionMargin >= 0) {
		o.SelectionMargin = DefaultSelectionMargin
	}
	if o.EraseDelay <= 0 {
		o.EraseDelay = DefaultEraseDelay
	}
	if o.EraseMaxWait < 0 {
		o.EraseMaxWait = 0
	}
	if o.MaxStrokes <= 0 {
		o.MaxStrokes = DefaultMaxStrokes
	}
	return o
}

func sanitizeThickness(f float64) float64 {
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		return DefaultThicknessFactor
	case f < 0:
		return 0
	}
	return f
}
