package render

import (
	"image"
	"image/color"
	"sync"

	"InkBoard/internal/engine"
)

// Cache holds the committed strokes rasterized at viewport size.
//
// A redraw replaces nothing in place that a previous caller may still be
// reading: Allocate installs a fresh image, and Update only writes the image
// it owns between allocations from the render goroutine.
type Cache struct {
	mu sync.Mutex

	img    *image.RGBA
	canvas *RasterCanvas

	valid      bool
	generation uint64
	background color.NRGBA

	redraws int
}

// Allocate sizes the cache to the viewport. Nothing is drawn until the next
// Update. A non-positive size releases the cache.
func (c *Cache) Allocate(w, h int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if w <= 0 || h <= 0 {
		c.releaseLocked()
		return
	}
	if c.img != nil && c.img.Bounds().Dx() == w && c.img.Bounds().Dy() == h {
		return
	}
	c.img = image.NewRGBA(image.Rect(0, 0, w, h))
	c.canvas = NewRasterCanvas(c.img)
	c.valid = false
	logger().Debug("[RENDER] cache allocated", "w", w, "h", h)
}

// Release drops the bitmap. Renders before the next Allocate skip tier 1.
func (c *Cache) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releaseLocked()
}

func (c *Cache) releaseLocked() {
	c.img = nil
	c.canvas = nil
	c.valid = false
}

// Size returns the allocated size, zero when released.
func (c *Cache) Size() (w, h int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.img == nil {
		return 0, 0
	}
	return c.img.Bounds().Dx(), c.img.Bounds().Dy()
}

// Update brings the bitmap in line with sc, redrawing every committed stroke
// if the generation, the background or the size changed since the last
// redraw. It reports false when no bitmap is allocated.
func (c *Cache) Update(sc engine.Scene) (*image.RGBA, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.img == nil {
		return nil, false
	}
	if c.valid && c.generation == sc.Generation && c.background == sc.Background {
		return c.img, true
	}
	c.canvas.Clear(sc.Background)
	for _, s := range sc.Strokes {
		DrawStroke(c.canvas, s)
	}
	c.valid = true
	c.generation = sc.Generation
	c.background = sc.Background
	c.redraws++
	logger().Debug("[RENDER] cache redrawn", "generation", sc.Generation, "strokes", len(sc.Strokes))
	return c.img, true
}

// Redraws returns how many full redraws have happened.
func (c *Cache) Redraws() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.redraws
}
