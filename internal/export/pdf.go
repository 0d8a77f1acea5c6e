// Package export writes the committed stroke list to files.
package export

import (
	"fmt"
	"image/color"
	"io"
	"os"

	"github.com/jung-kurt/gofpdf"

	"InkBoard/internal/geom"
	"InkBoard/internal/state"
)

// PageMargin surrounds the drawing when the page is fitted to it.
const PageMargin = 20

// PDFOptions sets the page. Sizes are in PDF points, one per board pixel.
type PDFOptions struct {
	// Width and Height fix the page size; when either is zero the page is
	// fitted to the drawing.
	Width, Height float64
	// Background fills the page unless it is fully transparent.
	Background color.NRGBA
}

// WritePDF draws records in z-order on a single page.
func WritePDF(w io.Writer, records []state.Record, opts PDFOptions) error {
	strokes := make([]*state.Stroke, 0, len(records))
	for i, r := range records {
		s, err := state.FromRecord(r)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		strokes = append(strokes, s)
	}

	var (
		offset        geom.Vec2
		width, height = opts.Width, opts.Height
	)
	if width <= 0 || height <= 0 {
		b := fit(strokes)
		offset = geom.Vec2{X: -b.X0, Y: -b.Y0}
		width, height = b.Width(), b.Height()
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	if bg := opts.Background; bg.A > 0 {
		setAlpha(pdf, bg.A)
		pdf.SetFillColor(int(bg.R), int(bg.G), int(bg.B))
		pdf.Rect(0, 0, width, height, "F")
	}
	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")
	for _, s := range strokes {
		drawStroke(pdf, s, offset)
	}
	setAlpha(pdf, 255)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// WritePDFFile is WritePDF to a new file at path.
func WritePDFFile(path string, records []state.Record, opts PDFOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WritePDF(f, records, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func drawStroke(pdf *gofpdf.Fpdf, s *state.Stroke, offset geom.Vec2) {
	setAlpha(pdf, s.Color.A)
	pdf.SetDrawColor(int(s.Color.R), int(s.Color.G), int(s.Color.B))
	pdf.SetFillColor(int(s.Color.R), int(s.Color.G), int(s.Color.B))

	tr := s.Translation().Add(offset)
	pts := s.Points()
	if len(pts) == 1 {
		p := pts[0].Pos().Translate(tr)
		pdf.Circle(p.X, p.Y, s.WidthAt(pts[0])/2, "F")
		return
	}
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1].Pos().Translate(tr), pts[i].Pos().Translate(tr)
		pdf.SetLineWidth((s.WidthAt(pts[i-1]) + s.WidthAt(pts[i])) / 2)
		pdf.Line(a.X, a.Y, b.X, b.Y)
	}
}

func setAlpha(pdf *gofpdf.Fpdf, a uint8) {
	pdf.SetAlpha(float64(a)/255, "Normal")
}

// fit returns the page rectangle around every stroke, including the width
// of the ink and PageMargin. An empty drawing gets a small blank page.
func fit(strokes []*state.Stroke) geom.Rect {
	if len(strokes) == 0 {
		return geom.Rect{X1: 2 * PageMargin, Y1: 2 * PageMargin}
	}
	var b geom.Rect
	for i, s := range strokes {
		r := s.Bounds()
		var w float64
		for _, p := range s.Points() {
			w = max(w, s.WidthAt(p))
		}
		r = r.Inflate(w/2, w/2)
		if i == 0 {
			b = r
		} else {
			b = b.Union(r)
		}
	}
	return b.Inflate(PageMargin, PageMargin)
}
