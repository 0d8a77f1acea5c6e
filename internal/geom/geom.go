// Package geom holds the small amount of 2D geometry the stroke engine needs
// for hit testing: distances to segments, segment crossings and axis-aligned
// bounding boxes. Every function is total: degenerate input yields a defined
// result instead of a panic.
package geom

import (
	"fmt"
	"iter"
	"math"
	"slices"
)

type Point struct {
	X, Y float64
}

func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (pt Point) String() string {
	return fmt.Sprintf("(%g, %g)", pt.X, pt.Y)
}

// Translate returns pt moved by v.
func (pt Point) Translate(v Vec2) Point {
	return Point{X: pt.X + v.X, Y: pt.Y + v.Y}
}

// Sub returns the vector from o to pt.
func (pt Point) Sub(o Point) Vec2 {
	return Vec2{X: pt.X - o.X, Y: pt.Y - o.Y}
}

func (pt Point) Distance(o Point) float64 {
	return math.Hypot(pt.X-o.X, pt.Y-o.Y)
}

func (pt Point) IsNaN() bool { return math.IsNaN(pt.X) || math.IsNaN(pt.Y) }
func (pt Point) IsInf() bool { return math.IsInf(pt.X, 0) || math.IsInf(pt.Y, 0) }

type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vec2) Mul(f float64) Vec2   { return Vec2{X: v.X * f, Y: v.Y * f} }
func (v Vec2) Neg() Vec2            { return Vec2{X: -v.X, Y: -v.Y} }
func (v Vec2) Dot(o Vec2) float64   { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Cross(o Vec2) float64 { return v.X*o.Y - v.Y*o.X }
func (v Vec2) IsZero() bool         { return v.X == 0 && v.Y == 0 }

// DistancePointToSegment returns the distance from p to the closest point of
// the segment ab. A zero-length segment is treated as the point a.
func DistancePointToSegment(p, a, b Point) float64 {
	d := b.Sub(a)
	if d.IsZero() {
		return p.Distance(a)
	}
	t := p.Sub(a).Dot(d) / d.Dot(d)
	switch {
	case t <= 0:
		return p.Distance(a)
	case t >= 1:
		return p.Distance(b)
	}
	return p.Distance(a.Translate(d.Mul(t)))
}

// SegmentsIntersect reports whether segment p1p2 crosses segment p3p4,
// endpoints included.
//
// Parallel segments never intersect, including collinear ones that overlap:
// the parametric form has a zero denominator for them and the test gives up.
func SegmentsIntersect(p1, p2, p3, p4 Point) bool {
	r := p2.Sub(p1)
	s := p4.Sub(p3)
	denom := r.Cross(s)
	if denom == 0 {
		return false
	}
	qp := p3.Sub(p1)
	t := qp.Cross(s) / denom
	u := qp.Cross(r) / denom
	return t >= 0 && t <= 1 && u >= 0 && u <= 1
}

// BoundingBox returns the smallest rectangle containing every point, grown by
// padding on all four sides. An empty sequence yields the zero Rect.
func BoundingBox(points iter.Seq[Point], padding float64) Rect {
	var (
		r     Rect
		first = true
	)
	for pt := range points {
		if first {
			r = Rect{X0: pt.X, Y0: pt.Y, X1: pt.X, Y1: pt.Y}
			first = false
			continue
		}
		r = r.UnionPoint(pt)
	}
	if first {
		return Rect{}
	}
	return r.Inflate(padding, padding)
}

// BoundingBoxOf is BoundingBox for a slice.
func BoundingBoxOf(points []Point, padding float64) Rect {
	return BoundingBox(slices.Values(points), padding)
}
