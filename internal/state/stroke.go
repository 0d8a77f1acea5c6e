package state

import (
	"fmt"
	"image/color"
	"iter"
	"slices"

	"github.com/google/uuid"

	"InkBoard/internal/geom"
)

// WidthOffset keeps strokes visible at zero pressure.
const WidthOffset = 1

// Stroke is one pointer-down to pointer-up gesture.
//
// Points only ever grow while the stroke is in progress. Once committed a
// Stroke is never mutated again: Translated and Restyled return new records
// that share the point slice, so a snapshot taken by the renderer stays valid
// while the input side keeps working.
type Stroke struct {
	ID              uuid.UUID
	Color           color.NRGBA
	ThicknessFactor float64

	points      []Point
	translation geom.Vec2
	// bounds of the untranslated points, kept up to date on Append
	bounds geom.Rect
}

// NewStroke starts a stroke at first.
func NewStroke(c color.NRGBA, thicknessFactor float64, first Point) *Stroke {
	if thicknessFactor < 0 {
		thicknessFactor = 0
	}
	return &Stroke{
		ID:              uuid.New(),
		Color:           c,
		ThicknessFactor: thicknessFactor,
		points:          []Point{first},
		bounds:          geom.Rect{X0: first.X, Y0: first.Y, X1: first.X, Y1: first.Y},
	}
}

// Append records p at the end of the stroke. Earlier points are untouched.
func (s *Stroke) Append(p Point) {
	s.points = append(s.points, p)
	s.bounds = s.bounds.UnionPoint(p.Pos())
}

// Points returns the recorded points. The slice must not be modified.
func (s *Stroke) Points() []Point { return slices.Clip(s.points) }

func (s *Stroke) Len() int { return len(s.points) }

// Last returns the most recent point. A Stroke always has at least one.
func (s *Stroke) Last() Point { return s.points[len(s.points)-1] }

func (s *Stroke) Translation() geom.Vec2 { return s.translation }

// WidthAt returns the rendered width at p.
func (s *Stroke) WidthAt(p Point) float64 {
	return p.Pressure*s.ThicknessFactor + WidthOffset
}

// Positions yields every point with the stroke's translation applied, in
// recording order. This is the stroke's rendering path.
func (s *Stroke) Positions() iter.Seq[geom.Point] {
	return func(yield func(geom.Point) bool) {
		for _, p := range s.points {
			if !yield(p.Pos().Translate(s.translation)) {
				return
			}
		}
	}
}

// Bounds returns the bounding box of the translated points.
func (s *Stroke) Bounds() geom.Rect {
	return s.bounds.Translate(s.translation)
}

// Translated returns a copy of s moved by d on top of its current
// translation.
func (s *Stroke) Translated(d geom.Vec2) *Stroke {
	c := *s
	c.points = slices.Clip(s.points)
	c.translation = s.translation.Add(d)
	return &c
}

// Restyled returns a copy of s with a new color and thickness. The identity
// is kept.
func (s *Stroke) Restyled(col color.NRGBA, thicknessFactor float64) *Stroke {
	c := *s
	c.points = slices.Clip(s.points)
	c.Color = col
	c.ThicknessFactor = max(thicknessFactor, 0)
	return &c
}

// Snapshot returns a shallow copy whose point slice cannot see later
// appends.
func (s *Stroke) Snapshot() *Stroke {
	c := *s
	c.points = slices.Clip(s.points)
	return &c
}

func (s *Stroke) Record() Record {
	return Record{
		ID:              s.ID.String(),
		Points:          slices.Clone(s.points),
		Color:           FormatColor(s.Color),
		ThicknessFactor: s.ThicknessFactor,
		Translation:     s.translation,
	}
}

// FromRecord rebuilds a committed stroke. A record without points or with an
// unreadable ID or color is rejected.
func FromRecord(r Record) (*Stroke, error) {
	if len(r.Points) == 0 {
		return nil, fmt.Errorf("stroke %s has no points", r.ID)
	}
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("stroke id %q: %w", r.ID, err)
	}
	c, err := ParseColor(r.Color)
	if err != nil {
		return nil, fmt.Errorf("stroke %s: %w", r.ID, err)
	}
	s := &Stroke{
		ID:              id,
		Color:           c,
		ThicknessFactor: max(r.ThicknessFactor, 0),
		translation:     r.Translation,
	}
	s.points = make([]Point, 0, len(r.Points))
	for i, p := range r.Points {
		p = NewPoint(p.X, p.Y, p.Pressure)
		s.points = append(s.points, p)
		if i == 0 {
			s.bounds = geom.Rect{X0: p.X, Y0: p.Y, X1: p.X, Y1: p.Y}
		} else {
			s.bounds = s.bounds.UnionPoint(p.Pos())
		}
	}
	return s, nil
}
