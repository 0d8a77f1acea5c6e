package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// RunApp shows the board window and blocks until it is closed. shareLink,
// when set, is shown so the host can hand it to peers.
func RunApp(title, shareLink string, board *BoardWidget, size fyne.Size) {
	myApp := app.New()
	myWindow := myApp.NewWindow(title)
	myWindow.Resize(size)

	files := FileActions{
		Save: func() {
			dialog.ShowFileSave(func(w fyne.URIWriteCloser, err error) {
				if err != nil || w == nil {
					return
				}
				board.SaveToFile(w)
			}, myWindow)
		},
		Open: func() {
			dialog.ShowFileOpen(func(r fyne.URIReadCloser, err error) {
				if err != nil || r == nil {
					return
				}
				board.LoadFromFile(r)
			}, myWindow)
		},
		ExportPDF: func() {
			dialog.ShowFileSave(func(w fyne.URIWriteCloser, err error) {
				if err != nil || w == nil {
					return
				}
				board.ExportPDF(w)
			}, myWindow)
		},
	}
	toolbar := NewToolbar(board, files)

	bottom := []fyne.CanvasObject{board.StatusBar()}
	if shareLink != "" {
		link := widget.NewEntry()
		link.SetText(shareLink)
		bottom = append(bottom, widget.NewLabel("Share:"), link)
	}

	content := container.NewBorder(toolbar, container.NewHBox(bottom...), nil, nil, board)
	myWindow.SetContent(content)
	myWindow.SetOnClosed(board.engine.Close)
	myWindow.ShowAndRun()
}
