package geom

import "fmt"

// Rect is an axis-aligned rectangle. Methods expect X0 <= X1 and Y0 <= Y1,
// which NewRectFromPoints and Abs guarantee.
type Rect struct {
	X0, Y0 float64
	X1, Y1 float64
}

// NewRectFromPoints returns the rectangle spanned by two opposite corners,
// in either order.
func NewRectFromPoints(p0, p1 Point) Rect {
	return Rect{p0.X, p0.Y, p1.X, p1.Y}.Abs()
}

// Abs returns r with non-negative width and height.
func (r Rect) Abs() Rect {
	return Rect{
		X0: min(r.X0, r.X1),
		Y0: min(r.Y0, r.Y1),
		X1: max(r.X0, r.X1),
		Y1: max(r.Y0, r.Y1),
	}
}

func (r Rect) String() string {
	return fmt.Sprintf("[%g, %g, %g, %g]", r.X0, r.Y0, r.X1, r.Y1)
}

func (r Rect) Width() float64  { return r.X1 - r.X0 }
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }
func (r Rect) Min() Point      { return Point{X: r.X0, Y: r.Y0} }
func (r Rect) Max() Point      { return Point{X: r.X1, Y: r.Y1} }

// Contains reports whether pt lies inside r or on its border.
func (r Rect) Contains(pt Point) bool {
	return pt.X >= r.X0 && pt.X <= r.X1 && pt.Y >= r.Y0 && pt.Y <= r.Y1
}

// Intersects reports whether r and o share at least one point. Touching
// borders count.
func (r Rect) Intersects(o Rect) bool {
	return !(r.X1 < o.X0 || o.X1 < r.X0 || r.Y1 < o.Y0 || o.Y1 < r.Y0)
}

func (r Rect) Union(o Rect) Rect {
	return Rect{
		X0: min(r.X0, o.X0),
		Y0: min(r.Y0, o.Y0),
		X1: max(r.X1, o.X1),
		Y1: max(r.Y1, o.Y1),
	}
}

func (r Rect) UnionPoint(pt Point) Rect {
	return Rect{
		X0: min(r.X0, pt.X),
		Y0: min(r.Y0, pt.Y),
		X1: max(r.X1, pt.X),
		Y1: max(r.Y1, pt.Y),
	}
}

// Inflate grows r by width on the left and right and by height on the top
// and bottom. Negative values shrink it.
func (r Rect) Inflate(width, height float64) Rect {
	return Rect{
		X0: r.X0 - width,
		Y0: r.Y0 - height,
		X1: r.X1 + width,
		Y1: r.Y1 + height,
	}
}

func (r Rect) Translate(v Vec2) Rect {
	return Rect{
		X0: r.X0 + v.X,
		Y0: r.Y0 + v.Y,
		X1: r.X1 + v.X,
		Y1: r.Y1 + v.Y,
	}
}

// Edges returns the four borders of r as segments, clockwise from the top.
func (r Rect) Edges() [4][2]Point {
	tl := Point{r.X0, r.Y0}
	tr := Point{r.X1, r.Y0}
	br := Point{r.X1, r.Y1}
	bl := Point{r.X0, r.Y1}
	return [4][2]Point{
		{tl, tr},
		{tr, br},
		{br, bl},
		{bl, tl},
	}
}

// SegmentCrosses reports whether the segment ab crosses any border of r.
func (r Rect) SegmentCrosses(a, b Point) bool {
	for _, e := range r.Edges() {
		if SegmentsIntersect(a, b, e[0], e[1]) {
			return true
		}
	}
	return false
}
