package engine

import "InkBoard/internal/state"

// Predict extrapolates one point past the end of a gesture:
//
//	predicted = last + (last - secondLast) * multiplier
//
// It reports false until the gesture has afterN points (and at least two),
// or when multiplier is zero. The result carries the last point's pressure
// and is for display only.
func Predict(points []state.Point, afterN int, multiplier float64) (state.Point, bool) {
	n := len(points)
	if multiplier == 0 || n < max(afterN, 2) {
		return state.Point{}, false
	}
	last, prev := points[n-1], points[n-2]
	d := last.Pos().Sub(prev.Pos()).Mul(multiplier)
	return state.Point{
		X:        last.X + d.X,
		Y:        last.Y + d.Y,
		Pressure: last.Pressure,
	}, true
}
