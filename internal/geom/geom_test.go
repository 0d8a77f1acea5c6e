package geom

import (
	"math"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Error(d)
	}
}

func approxEqual(x, y float64) bool {
	return math.Abs(x-y) < 1e-9
}

func TestDistancePointToSegment(t *testing.T) {
	f := func(p, a, b Point, want float64) {
		t.Helper()
		if got := DistancePointToSegment(p, a, b); !approxEqual(got, want) {
			t.Errorf("DistancePointToSegment(%v, %v, %v) = %v, want %v", p, a, b, got, want)
		}
	}
	// projection inside the segment
	f(Pt(5, 3), Pt(0, 0), Pt(10, 0), 3)
	// clamped to either end
	f(Pt(-3, 4), Pt(0, 0), Pt(10, 0), 5)
	f(Pt(13, 4), Pt(0, 0), Pt(10, 0), 5)
	// degenerate segment
	f(Pt(3, 4), Pt(0, 0), Pt(0, 0), 5)
	// on the segment
	f(Pt(2, 2), Pt(0, 0), Pt(4, 4), 0)
}

func TestSegmentsIntersect(t *testing.T) {
	f := func(p1, p2, p3, p4 Point, want bool) {
		t.Helper()
		if got := SegmentsIntersect(p1, p2, p3, p4); got != want {
			t.Errorf("SegmentsIntersect(%v, %v, %v, %v) = %v, want %v", p1, p2, p3, p4, got, want)
		}
	}
	f(Pt(0, 0), Pt(10, 10), Pt(0, 10), Pt(10, 0), true)
	f(Pt(0, 0), Pt(4, 4), Pt(0, 10), Pt(10, 0), false)
	// touching endpoints count
	f(Pt(0, 0), Pt(5, 5), Pt(5, 5), Pt(10, 0), true)
	// parallel
	f(Pt(0, 0), Pt(10, 0), Pt(0, 1), Pt(10, 1), false)
	// collinear and overlapping is a documented miss
	f(Pt(0, 0), Pt(10, 0), Pt(5, 0), Pt(15, 0), false)
	// degenerate segment
	f(Pt(1, 1), Pt(1, 1), Pt(0, 0), Pt(2, 2), false)
}

func TestBoundingBox(t *testing.T) {
	pts := []Point{Pt(3, 4), Pt(-1, 8), Pt(5, 2)}
	diff(t, Rect{-1, 2, 5, 8}, BoundingBoxOf(pts, 0))
	diff(t, Rect{-3, 0, 7, 10}, BoundingBoxOf(pts, 2))
	diff(t, Rect{}, BoundingBoxOf(nil, 5))
	diff(t, Rect{0, 0, 2, 2}, BoundingBox(slices.Values([]Point{Pt(1, 1)}), 1))
}

func TestRect(t *testing.T) {
	r := NewRectFromPoints(Pt(50, 50), Pt(0, 0))
	diff(t, Rect{0, 0, 50, 50}, r)
	diff(t, r, NewRectFromPoints(Pt(0, 50), Pt(50, 0)))

	if !r.Contains(Pt(50, 0)) {
		t.Error("border point should be contained")
	}
	if r.Contains(Pt(50.1, 0)) {
		t.Error("outside point should not be contained")
	}
	if !r.Intersects(Rect{50, 50, 60, 60}) {
		t.Error("touching rectangles should intersect")
	}
	if r.Intersects(Rect{51, 0, 60, 10}) {
		t.Error("disjoint rectangles should not intersect")
	}
	diff(t, Rect{-10, 0, 50, 70}, r.Union(Rect{-10, 10, 0, 70}))
	diff(t, Rect{5, -5, 55, 45}, r.Translate(Vec2{5, -5}))
	diff(t, Rect{-10, -10, 60, 60}, r.Inflate(10, 10))
}

func TestRectSegmentCrosses(t *testing.T) {
	r := Rect{0, 0, 10, 10}
	if !r.SegmentCrosses(Pt(-5, 5), Pt(15, 5)) {
		t.Error("segment passing through should cross")
	}
	if r.SegmentCrosses(Pt(2, 2), Pt(8, 8)) {
		t.Error("segment fully inside crosses no border")
	}
	if r.SegmentCrosses(Pt(-5, -5), Pt(-5, 20)) {
		t.Error("segment fully outside should not cross")
	}
}
