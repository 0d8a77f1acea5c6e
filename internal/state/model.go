package state

import (
	"math"

	"InkBoard/internal/geom"
)

// Point is one recorded input sample. Pressure is in [0, 1].
type Point struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Pressure float64 `json:"pressure"`
}

// DefaultPressure is used for samples that carry no usable pressure, such as
// mouse input or NaN readings.
const DefaultPressure = 1

// NewPoint returns a Point with its pressure clamped to [0, 1]. NaN pressure
// becomes DefaultPressure.
func NewPoint(x, y, pressure float64) Point {
	switch {
	case math.IsNaN(pressure):
		pressure = DefaultPressure
	case pressure < 0:
		pressure = 0
	case pressure > 1:
		pressure = 1
	}
	return Point{X: x, Y: y, Pressure: pressure}
}

func (p Point) Pos() geom.Point { return geom.Point{X: p.X, Y: p.Y} }

// Record is the external shape of a committed stroke, the unit handed to
// persistence and to peers.
type Record struct {
	ID              string    `json:"id"`
	Points          []Point   `json:"points"`
	Color           string    `json:"color"`
	ThicknessFactor float64   `json:"thicknessFactor"`
	Translation     geom.Vec2 `json:"translation"`
}

type OpType string

const (
	OpInsertStroke OpType = "insert_stroke"
	OpDeleteStroke OpType = "delete_stroke"
	OpUpdateStroke OpType = "update_stroke"
)

// Op is one change to the committed stroke collection, as exchanged between
// peers sharing a board.
type Op struct {
	Type    OpType   `json:"type"`
	Stroke  *Record  `json:"stroke,omitempty"`
	Targets []string `json:"targets,omitempty"` // IDs of strokes to delete
	Lamport uint64   `json:"lamport"`
	Site    string   `json:"site"`
}
