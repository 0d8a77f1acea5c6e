package state

import (
	"image/color"
	"math"
	"slices"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InkBoard/internal/geom"
)

var black = color.NRGBA{A: 255}

func TestWidthAt(t *testing.T) {
	s := NewStroke(black, 2, NewPoint(0, 0, 0))
	assert.Equal(t, float64(WidthOffset), s.WidthAt(Point{Pressure: 0}))
	assert.Equal(t, 0.5*2+WidthOffset, s.WidthAt(Point{Pressure: 0.5}))

	prev := -1.0
	for p := 0.0; p <= 1; p += 0.1 {
		w := s.WidthAt(Point{Pressure: p})
		assert.GreaterOrEqual(t, w, prev)
		prev = w
	}
}

func TestNewPointClampsPressure(t *testing.T) {
	assert.Equal(t, 0.0, NewPoint(1, 1, -3).Pressure)
	assert.Equal(t, 1.0, NewPoint(1, 1, 7).Pressure)
	assert.Equal(t, float64(DefaultPressure), NewPoint(1, 1, math.NaN()).Pressure)
}

func TestAppendOnly(t *testing.T) {
	s := NewStroke(black, 1, NewPoint(10, 10, 0.5))
	before := slices.Clone(s.Points())
	for i := range 20 {
		s.Append(NewPoint(float64(i), float64(i*2), 0.3))
	}
	require.Equal(t, 21, s.Len())
	assert.Equal(t, before[0], s.Points()[0])

	// a snapshot does not see later points
	snap := s.Snapshot()
	s.Append(NewPoint(100, 100, 1))
	assert.Equal(t, 21, snap.Len())
	assert.Equal(t, 22, s.Len())
}

func TestBoundsFollowTranslation(t *testing.T) {
	s := NewStroke(black, 1, NewPoint(0, 0, 1))
	s.Append(NewPoint(10, 5, 1))
	s.Append(NewPoint(-2, 8, 1))
	assert.Equal(t, geom.Rect{X0: -2, Y0: 0, X1: 10, Y1: 8}, s.Bounds())
	assert.Equal(t, geom.BoundingBox(s.Positions(), 0), s.Bounds())

	moved := s.Translated(geom.Vec2{X: 3, Y: -1})
	assert.Equal(t, geom.Rect{X0: 1, Y0: -1, X1: 13, Y1: 7}, moved.Bounds())
	assert.Equal(t, geom.BoundingBox(moved.Positions(), 0), moved.Bounds())
	assert.Equal(t, s.ID, moved.ID)
	// the original record is untouched
	assert.Equal(t, geom.Vec2{}, s.Translation())

	back := moved.Translated(geom.Vec2{X: -3, Y: 1})
	assert.Equal(t, s.Bounds(), back.Bounds())
}

func TestRestyled(t *testing.T) {
	s := NewStroke(black, 1, NewPoint(0, 0, 1))
	red := color.NRGBA{R: 255, A: 255}
	r := s.Restyled(red, 4)
	assert.Equal(t, s.ID, r.ID)
	assert.Equal(t, red, r.Color)
	assert.Equal(t, 4.0, r.ThicknessFactor)
	assert.Equal(t, black, s.Color)
}

func TestRecordRoundTrip(t *testing.T) {
	s := NewStroke(color.NRGBA{R: 0x12, G: 0x34, B: 0x56, A: 0x80}, 2, NewPoint(1, 2, 0.5))
	s.Append(NewPoint(3, 4, 0.25))
	s = s.Translated(geom.Vec2{X: 7, Y: 7})

	back, err := FromRecord(s.Record())
	require.NoError(t, err)
	assert.Equal(t, s.ID, back.ID)
	assert.Equal(t, s.Color, back.Color)
	assert.Equal(t, s.Points(), back.Points())
	assert.Equal(t, s.Bounds(), back.Bounds())
}

func TestFromRecordRejects(t *testing.T) {
	_, err := FromRecord(Record{ID: uuid.NewString(), Color: "#000"})
	assert.Error(t, err)
	_, err = FromRecord(Record{ID: "nope", Color: "#000", Points: []Point{{}}})
	assert.Error(t, err)
	_, err = FromRecord(Record{ID: uuid.NewString(), Color: "mauve", Points: []Point{{}}})
	assert.ErrorIs(t, err, ErrBadColor)
}

func TestParseColor(t *testing.T) {
	for in, want := range map[string]color.NRGBA{
		"#000":      {A: 255},
		"#ff0000":   {R: 255, A: 255},
		"#80ff0000": {R: 255, A: 0x80},
		"White":     {R: 255, G: 255, B: 255, A: 255},
	} {
		got, err := ParseColor(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "#12", "#gggggg", "ff0000"} {
		_, err := ParseColor(in)
		assert.ErrorIs(t, err, ErrBadColor, in)
	}
	assert.Equal(t, "#ff0000", FormatColor(color.NRGBA{R: 255, A: 255}))
	assert.Equal(t, "#80ff0000", FormatColor(color.NRGBA{R: 255, A: 0x80}))
}
