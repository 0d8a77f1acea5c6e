package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"InkBoard/internal/engine"
)

// swatch is a tappable color chip. The chip of the current stroke color is
// outlined.
type swatch struct {
	widget.BaseWidget
	color    color.NRGBA
	selected bool
	onTap    func(*swatch)
}

func newSwatch(c color.NRGBA, onTap func(*swatch)) *swatch {
	s := &swatch{color: c, onTap: onTap}
	s.ExtendBaseWidget(s)
	return s
}

func (s *swatch) setSelected(v bool) {
	if s.selected != v {
		s.selected = v
		s.Refresh()
	}
}

func (s *swatch) CreateRenderer() fyne.WidgetRenderer {
	chip := canvas.NewCircle(s.color)
	ring := canvas.NewCircle(color.Transparent)
	r := &swatchRenderer{s: s, chip: chip, ring: ring}
	r.Refresh()
	return r
}

func (s *swatch) Tapped(*fyne.PointEvent) {
	if s.onTap != nil {
		s.onTap(s)
	}
}

type swatchRenderer struct {
	s          *swatch
	chip, ring *canvas.Circle
}

func (r *swatchRenderer) Layout(size fyne.Size) {
	r.ring.Resize(size)
	r.chip.Resize(size.Subtract(fyne.NewSize(8, 8)))
	r.chip.Move(fyne.NewPos(4, 4))
}

func (r *swatchRenderer) MinSize() fyne.Size { return fyne.NewSize(32, 32) }

func (r *swatchRenderer) Refresh() {
	r.ring.StrokeWidth = 1
	r.ring.StrokeColor = color.Gray{Y: 150}
	if r.s.selected {
		r.ring.StrokeWidth = 3
		r.ring.StrokeColor = theme.Color(theme.ColorNamePrimary)
	}
	r.ring.Refresh()
	r.chip.Refresh()
}

func (r *swatchRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.ring, r.chip}
}

func (r *swatchRenderer) Destroy() {}

var swatches = []color.NRGBA{
	{A: 255},
	color.NRGBA{R: 255, A: 255},
	color.NRGBA{G: 255, A: 255},
	color.NRGBA{B: 255, A: 255},
	color.NRGBA{R: 255, G: 255, A: 255},
}

// FileActions are the toolbar's document buttons. Nil entries are hidden.
type FileActions struct {
	Save, Open, ExportPDF func()
}

// NewToolbar builds the tool, color and thickness controls for board.
func NewToolbar(board *BoardWidget, files FileActions) fyne.CanvasObject {
	toolLabel := widget.NewLabel(board.Engine().Tool().String())
	setTool := func(t engine.Tool) {
		board.SetTool(t)
		toolLabel.SetText(t.String())
	}
	items := []widget.ToolbarItem{
		widget.NewToolbarAction(theme.DocumentCreateIcon(), func() { setTool(engine.ToolDraw) }),
		widget.NewToolbarAction(theme.DeleteIcon(), func() { setTool(engine.ToolErase) }),
		widget.NewToolbarAction(theme.ZoomFitIcon(), func() { setTool(engine.ToolSelect) }),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentClearIcon(), board.ClearPaths),
	}
	if files.Save != nil {
		items = append(items, widget.NewToolbarAction(theme.DocumentSaveIcon(), files.Save))
	}
	if files.Open != nil {
		items = append(items, widget.NewToolbarAction(theme.FolderOpenIcon(), files.Open))
	}
	if files.ExportPDF != nil {
		items = append(items, widget.NewToolbarAction(theme.DownloadIcon(), files.ExportPDF))
	}
	tb := widget.NewToolbar(items...)

	current := board.Engine().Options().StrokeColor
	colorBox := container.NewHBox()
	var chips []*swatch
	pick := func(picked *swatch) {
		for _, c := range chips {
			c.setSelected(c == picked)
		}
		board.SetColor(picked.color)
	}
	for _, c := range swatches {
		chip := newSwatch(c, pick)
		chip.selected = c == current
		chips = append(chips, chip)
		colorBox.Add(chip)
	}

	thickness := widget.NewSlider(0, 20)
	thickness.Step = 0.5
	thickness.SetValue(board.Engine().Options().ThicknessFactor)
	thickness.OnChanged = board.SetThickness
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), thickness)

	return container.NewHBox(
		widget.NewLabel("Tool:"),
		toolLabel,
		tb,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		colorBox,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sliderContainer,
		layout.NewSpacer(),
	)
}
