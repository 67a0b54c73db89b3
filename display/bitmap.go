// Package display implements the double-buffered bitmap the pipeline writes
// each frame's color image into and the presenter reads between updates.
package display

import (
	"image"
	"sync"

	"github.com/pkg/errors"

	"github.com/slazery/kinect2-HSV-thresholder/rimage"
)

// ErrWriteHeld is returned when exclusive write access is requested while a
// previous writer has not released. Under the pipeline's run-to-completion
// rule this should never happen; it is surfaced as an error rather than a
// deadlock so the offending traversal can be abandoned.
var ErrWriteHeld = errors.New("display bitmap write access already held")

// Bitmap is a double-buffered BGRA surface. Writers fill the back buffer
// under exclusive access scoped to one frame's color copy; releasing swaps
// the buffers, so readers only ever observe a fully written front buffer.
type Bitmap struct {
	mu      sync.Mutex
	front   *rimage.Image
	back    *rimage.Image
	writing bool
	dirty   image.Rectangle
}

// NewBitmap returns a zeroed bitmap of the given dimensions.
func NewBitmap(width, height int) *Bitmap {
	return &Bitmap{
		front: rimage.NewImage(width, height),
		back:  rimage.NewImage(width, height),
	}
}

// Width returns the horizontal dimension of the bitmap.
func (b *Bitmap) Width() int {
	return b.front.Width()
}

// Height returns the vertical dimension of the bitmap.
func (b *Bitmap) Height() int {
	return b.front.Height()
}

// Bounds returns the rectangle the bitmap covers.
func (b *Bitmap) Bounds() image.Rectangle {
	return b.front.Bounds()
}

// AcquireExclusiveWrite grants scoped write access to the back buffer. The
// returned Writer must be released on every exit path; Release is idempotent
// so guard-based cleanup and explicit release can coexist.
func (b *Bitmap) AcquireExclusiveWrite() (*Writer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.writing {
		return nil, ErrWriteHeld
	}
	b.writing = true
	b.back.CopyFrom(b.front)
	return &Writer{bitmap: b}, nil
}

// CopyTo copies the front buffer into dst, which must match the bitmap
// dimensions. The copy never observes a partially written frame.
func (b *Bitmap) CopyTo(dst *rimage.Image) {
	b.mu.Lock()
	defer b.mu.Unlock()
	dst.CopyFrom(b.front)
}

// TakeDirty returns the region updated since the last call and resets it.
func (b *Bitmap) TakeDirty() image.Rectangle {
	b.mu.Lock()
	defer b.mu.Unlock()
	d := b.dirty
	b.dirty = image.Rectangle{}
	return d
}

// Writer is one frame's exclusive write window on a Bitmap.
type Writer struct {
	bitmap   *Bitmap
	released bool
	dirty    image.Rectangle
}

// Write copies BGRA pixels into the given region of the back buffer. The
// pixel slice length must be exactly 4 bytes per region pixel and the region
// must lie within the bitmap.
func (w *Writer) Write(region image.Rectangle, pix []uint8) error {
	if w.released {
		return errors.New("write after release")
	}
	bounds := w.bitmap.Bounds()
	if !region.In(bounds) {
		return errors.Errorf("write region %v outside bitmap bounds %v", region, bounds)
	}
	want := region.Dx() * region.Dy() * 4
	if len(pix) != want {
		return errors.Errorf("write region %v needs %d bytes, got %d", region, want, len(pix))
	}
	back := w.bitmap.back.Pix()
	rowBytes := region.Dx() * 4
	for row := 0; row < region.Dy(); row++ {
		dstOff := (((region.Min.Y + row) * bounds.Dx()) + region.Min.X) * 4
		srcOff := row * rowBytes
		copy(back[dstOff:dstOff+rowBytes], pix[srcOff:srcOff+rowBytes])
	}
	return nil
}

// MarkDirty records a region as updated for presenters that track damage.
func (w *Writer) MarkDirty(region image.Rectangle) {
	w.dirty = w.dirty.Union(region)
}

// Release ends the write window, publishing the back buffer as the new front.
// Calling Release more than once is a no-op, so cleanup guards on abort paths
// never double-release.
func (w *Writer) Release() {
	if w.released {
		return
	}
	w.released = true
	b := w.bitmap
	b.mu.Lock()
	defer b.mu.Unlock()
	b.front, b.back = b.back, b.front
	b.dirty = b.dirty.Union(w.dirty)
	b.writing = false
}

// Abort ends the write window without publishing the back buffer. Used when a
// traversal is abandoned mid-copy; readers keep seeing the previous frame.
func (w *Writer) Abort() {
	if w.released {
		return
	}
	w.released = true
	b := w.bitmap
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writing = false
}
