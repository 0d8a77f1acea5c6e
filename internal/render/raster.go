package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"

	"InkBoard/internal/geom"
)

// RasterCanvas draws anti-aliased paths into an *image.RGBA.
type RasterCanvas struct {
	img     *image.RGBA
	filler  *rasterx.Filler
	stroker *rasterx.Stroker
	dasher  *rasterx.Dasher
}

var _ Canvas = (*RasterCanvas)(nil)

// NewRasterCanvas wraps img. The image origin must be (0,0).
func NewRasterCanvas(img *image.RGBA) *RasterCanvas {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	return &RasterCanvas{
		img:     img,
		filler:  rasterx.NewFiller(w, h, scanner),
		stroker: rasterx.NewStroker(w, h, scanner),
		dasher:  rasterx.NewDasher(w, h, scanner),
	}
}

func (c *RasterCanvas) Image() *image.RGBA      { return c.img }
func (c *RasterCanvas) Bounds() image.Rectangle { return c.img.Bounds() }

func (c *RasterCanvas) Clear(col color.Color) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

func (c *RasterCanvas) DrawImage(img image.Image) {
	draw.Draw(c.img, c.img.Bounds(), img, img.Bounds().Min, draw.Src)
}

func (c *RasterCanvas) StrokeLine(a, b geom.Point, width float64, col color.Color) {
	if a == b {
		c.FillCircle(a, width/2, col)
		return
	}
	c.StrokePolyline([]geom.Point{a, b}, width, col)
}

func (c *RasterCanvas) StrokePolyline(pts []geom.Point, width float64, col color.Color) {
	if len(pts) == 0 || width <= 0 {
		return
	}
	if len(pts) == 1 {
		c.FillCircle(pts[0], width/2, col)
		return
	}
	s := c.stroker
	s.Clear()
	s.SetStroke(toFixed(width), 0, rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.Round)
	s.Start(toFixedP(pts[0]))
	for _, p := range pts[1:] {
		s.Line(toFixedP(p))
	}
	s.Stop(false)
	s.SetColor(col)
	s.Draw()
}

func (c *RasterCanvas) FillCircle(center geom.Point, r float64, col color.Color) {
	if r <= 0 {
		return
	}
	f := c.filler
	f.Clear()
	rasterx.AddCircle(center.X, center.Y, r, f)
	f.SetColor(col)
	f.Draw()
}

func (c *RasterCanvas) StrokeCircle(center geom.Point, r, width float64, col color.Color) {
	if r <= 0 || width <= 0 {
		return
	}
	s := c.stroker
	s.Clear()
	s.SetStroke(toFixed(width), 0, rasterx.ButtCap, rasterx.ButtCap, rasterx.RoundGap, rasterx.Round)
	rasterx.AddCircle(center.X, center.Y, r, s)
	s.SetColor(col)
	s.Draw()
}

func (c *RasterCanvas) StrokeRect(r geom.Rect, width float64, col color.Color, dash []float64) {
	if width <= 0 {
		return
	}
	r = r.Abs()
	if len(dash) > 0 {
		d := c.dasher
		d.Clear()
		d.SetStroke(toFixed(width), 0, rasterx.ButtCap, rasterx.ButtCap, rasterx.FlatGap, rasterx.Miter, dash, 0)
		addRect(d, r)
		d.SetColor(col)
		d.Draw()
		return
	}
	s := c.stroker
	s.Clear()
	s.SetStroke(toFixed(width), toFixed(4), rasterx.ButtCap, rasterx.ButtCap, rasterx.FlatGap, rasterx.Miter)
	addRect(s, r)
	s.SetColor(col)
	s.Draw()
}

func addRect(p rasterx.Adder, r geom.Rect) {
	p.Start(rasterx.ToFixedP(r.X0, r.Y0))
	p.Line(rasterx.ToFixedP(r.X1, r.Y0))
	p.Line(rasterx.ToFixedP(r.X1, r.Y1))
	p.Line(rasterx.ToFixedP(r.X0, r.Y1))
	p.Stop(true)
}

func toFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(v * 64) }

func toFixedP(p geom.Point) fixed.Point26_6 { return rasterx.ToFixedP(p.X, p.Y) }
