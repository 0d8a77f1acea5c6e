package render

import (
	"errors"
	"image"
	"sync"
	"sync/atomic"
)

// ErrSurfaceUnavailable is returned by Surface.Lock while the surface cannot
// be drawn on, for example before the viewport has a size.
var ErrSurfaceUnavailable = errors.New("render: surface unavailable")

// Surface is where frames are drawn. Every successful Lock must be paired
// with an Unlock, which posts the frame.
type Surface interface {
	Lock() (Canvas, error)
	Unlock()
}

type buffer struct {
	img    *image.RGBA
	canvas *RasterCanvas
}

func newBuffer(w, h int) *buffer {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	return &buffer{img: img, canvas: NewRasterCanvas(img)}
}

func (b *buffer) sized(w, h int) bool {
	return b != nil && b.img.Bounds().Dx() == w && b.img.Bounds().Dy() == h
}

// ImageSurface is a double-buffered in-memory Surface. The render goroutine
// draws into the back buffer; Unlock swaps it to the front.
type ImageSurface struct {
	mu          sync.RWMutex
	w, h        int
	front, back *buffer
	frames      int

	drawing atomic.Bool
}

var _ Surface = (*ImageSurface)(nil)

func NewImageSurface(w, h int) *ImageSurface {
	s := &ImageSurface{}
	s.Resize(w, h)
	return s
}

// Resize takes effect at the next Lock.
func (s *ImageSurface) Resize(w, h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w, s.h = max(w, 0), max(h, 0)
}

func (s *ImageSurface) Lock() (Canvas, error) {
	if !s.drawing.CompareAndSwap(false, true) {
		return nil, ErrSurfaceUnavailable
	}
	s.mu.RLock()
	w, h := s.w, s.h
	s.mu.RUnlock()
	if w == 0 || h == 0 {
		s.drawing.Store(false)
		return nil, ErrSurfaceUnavailable
	}
	// the back buffer belongs to whoever holds the drawing flag
	if !s.back.sized(w, h) {
		s.back = newBuffer(w, h)
	}
	return s.back.canvas, nil
}

func (s *ImageSurface) Unlock() {
	if !s.drawing.Load() {
		return
	}
	s.mu.Lock()
	s.front, s.back = s.back, s.front
	s.frames++
	s.mu.Unlock()
	s.drawing.Store(false)
}

// Front copies the last posted frame into dst, reallocating it when the size
// differs, and returns it. It returns nil before the first frame.
func (s *ImageSurface) Front(dst *image.RGBA) *image.RGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.front == nil {
		return nil
	}
	b := s.front.img.Bounds()
	if dst == nil || dst.Bounds() != b {
		dst = image.NewRGBA(b)
	}
	copy(dst.Pix, s.front.img.Pix)
	return dst
}

// Frames returns the number of frames posted.
func (s *ImageSurface) Frames() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frames
}
