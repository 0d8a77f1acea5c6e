package ui

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"InkBoard/internal/engine"
	"InkBoard/internal/export"
	"InkBoard/internal/render"
)

// BoardWidget shows an engine's frames and feeds it pointer input.
type BoardWidget struct {
	widget.BaseWidget

	engine  *engine.Engine
	cache   *render.Cache
	surface *render.ImageSurface
	loop    *render.Loop

	raster *canvas.Raster
	// frame is only touched by the raster generator on the paint goroutine
	frame *image.RGBA

	pressed   bool
	last      fyne.Position
	statusBar *widget.Label
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)

func NewBoardWidget(e *engine.Engine) *BoardWidget {
	b := &BoardWidget{
		engine:    e,
		cache:     &render.Cache{},
		surface:   render.NewImageSurface(0, 0),
		statusBar: widget.NewLabel("Ready"),
	}
	b.raster = canvas.NewRaster(b.generate)
	b.loop = render.NewLoop(e, render.NewRenderer(b.cache), b.surface, func() {
		fyne.Do(b.raster.Refresh)
	})
	e.OnChange(b.loop.Request)
	b.ExtendBaseWidget(b)
	return b
}

func (b *BoardWidget) Engine() *engine.Engine { return b.engine }

func (b *BoardWidget) StatusBar() *widget.Label { return b.statusBar }

func (b *BoardWidget) generate(w, h int) image.Image {
	if img := b.surface.Front(b.frame); img != nil {
		b.frame = img
		return img
	}
	// nothing rendered yet: a single background pixel stretched to fit
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, b.engine.Options().BackgroundColor)
	return img
}

// SetStatus may be called from any goroutine.
func (b *BoardWidget) SetStatus(text string) {
	fyne.Do(func() { b.statusBar.SetText(text) })
}

func (b *BoardWidget) resize(size fyne.Size) {
	w, h := int(size.Width), int(size.Height)
	b.surface.Resize(w, h)
	b.cache.Allocate(w, h)
	b.loop.Request()
}

// ClearPaths removes every stroke, for everyone sharing the board.
func (b *BoardWidget) ClearPaths() {
	b.engine.Clear()
	b.SetStatus("Board cleared")
}

func (b *BoardWidget) SaveToFile(writer fyne.URIWriteCloser) {
	defer func() {
		if err := writer.Close(); err != nil {
			slog.Error("[UI] closing file", "err", err)
		}
	}()
	strokes := b.engine.Strokes()
	if err := export.WriteJSON(writer, strokes); err != nil {
		slog.Error("[UI] save failed", "uri", writer.URI(), "err", err)
		b.SetStatus("Error saving file")
		return
	}
	slog.Info("[UI] saved", "uri", writer.URI(), "strokes", len(strokes))
	b.SetStatus(fmt.Sprintf("Saved %d strokes", len(strokes)))
}

// LoadFromFile replaces the board with a saved stroke list. Peers are not
// told; they keep their own boards.
func (b *BoardWidget) LoadFromFile(reader fyne.URIReadCloser) {
	defer func() {
		if err := reader.Close(); err != nil {
			slog.Error("[UI] closing file", "err", err)
		}
	}()
	records, err := export.ReadJSON(reader)
	if err == nil {
		err = b.engine.Load(records)
	}
	if err != nil {
		slog.Error("[UI] load failed", "uri", reader.URI(), "err", err)
		b.SetStatus("Error reading file - invalid format")
		return
	}
	slog.Info("[UI] loaded", "uri", reader.URI(), "strokes", len(records))
	b.SetStatus(fmt.Sprintf("Loaded %d strokes", len(records)))
}

func (b *BoardWidget) ExportPDF(writer fyne.URIWriteCloser) {
	defer func() {
		if err := writer.Close(); err != nil {
			slog.Error("[UI] closing file", "err", err)
		}
	}()
	err := export.WritePDF(writer, b.engine.Strokes(), export.PDFOptions{
		Background: b.engine.Options().BackgroundColor,
	})
	if err != nil {
		slog.Error("[UI] pdf export failed", "uri", writer.URI(), "err", err)
		b.SetStatus("Error exporting PDF")
		return
	}
	b.SetStatus("Exported " + writer.URI().Name())
}

func (b *BoardWidget) SetColor(c color.Color) {
	b.engine.SetStrokeColor(color.NRGBAModel.Convert(c).(color.NRGBA))
}

func (b *BoardWidget) SetThickness(f float64) { b.engine.SetThicknessFactor(f) }

func (b *BoardWidget) SetTool(t engine.Tool) { b.engine.SetTool(t) }

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.pressed = true
	b.last = e.Position
	b.engine.PointerDown(float64(e.Position.X), float64(e.Position.Y), 1)
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary || !b.pressed {
		return
	}
	b.pressed = false
	b.engine.PointerUp(float64(e.Position.X), float64(e.Position.Y), 1)
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	if !b.pressed {
		return
	}
	b.last = e.Position
	b.engine.PointerMove(float64(e.Position.X), float64(e.Position.Y), 1)
}

// DragEnd covers releases outside the widget, which never reach MouseUp.
// The gesture ends where the pointer was last seen inside.
func (b *BoardWidget) DragEnd() {
	if !b.pressed {
		return
	}
	b.pressed = false
	b.engine.PointerUp(float64(b.last.X), float64(b.last.Y), 1)
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	return &boardWidgetRenderer{board: b}
}

type boardWidgetRenderer struct {
	board *BoardWidget
}

func (r *boardWidgetRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.board.raster}
}

func (r *boardWidgetRenderer) Layout(size fyne.Size) {
	r.board.raster.Resize(size)
	r.board.resize(size)
}

func (r *boardWidgetRenderer) Refresh() {
	r.board.raster.Refresh()
}

func (r *boardWidgetRenderer) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}

func (r *boardWidgetRenderer) Destroy() {
	r.board.loop.Stop()
	r.board.cache.Release()
}
