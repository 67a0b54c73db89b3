// Package rimage defines the image buffers used by the thresholding pipeline:
// BGRA color images, 16-bit depth maps, HSV scratch buffers, and binary masks,
// along with the color space conversion and segmentation operations over them.
package rimage

import (
	"fmt"
	"image"
	"image/color"
)

// Image is a dense BGRA color image, stored row-major with 4 bytes per pixel
// in B, G, R, A order to match what the sensor delivers.
type Image struct {
	width, height int
	pix           []uint8
}

// NewImage returns a zeroed BGRA image of the given dimensions.
func NewImage(width, height int) *Image {
	return &Image{
		width:  width,
		height: height,
		pix:    make([]uint8, width*height*4),
	}
}

// Width returns the horizontal dimension of the image.
func (i *Image) Width() int {
	return i.width
}

// Height returns the vertical dimension of the image.
func (i *Image) Height() int {
	return i.height
}

// Bounds returns the rectangle the image covers.
func (i *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, i.width, i.height)
}

// ColorModel returns the model used by At.
func (i *Image) ColorModel() color.Model {
	return color.NRGBAModel
}

// In reports whether the point is inside the image.
func (i *Image) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < i.width && y < i.height
}

func (i *Image) kxy(x, y int) int {
	return ((y * i.width) + x) * 4
}

// At implements image.Image.
func (i *Image) At(x, y int) color.Color {
	k := i.kxy(x, y)
	return color.NRGBA{R: i.pix[k+2], G: i.pix[k+1], B: i.pix[k], A: i.pix[k+3]}
}

// BGRAAt returns the raw channel values at a pixel.
func (i *Image) BGRAAt(x, y int) (b, g, r, a uint8) {
	k := i.kxy(x, y)
	return i.pix[k], i.pix[k+1], i.pix[k+2], i.pix[k+3]
}

// SetBGRA writes the raw channel values at a pixel.
func (i *Image) SetBGRA(x, y int, b, g, r, a uint8) {
	k := i.kxy(x, y)
	i.pix[k] = b
	i.pix[k+1] = g
	i.pix[k+2] = r
	i.pix[k+3] = a
}

// Pix exposes the underlying BGRA buffer. The slice aliases the image; callers
// must not hold it across a concurrent write.
func (i *Image) Pix() []uint8 {
	return i.pix
}

// CopyPixFrom overwrites the image with the given BGRA buffer. A length
// mismatch is a programming error, not a runtime condition.
func (i *Image) CopyPixFrom(pix []uint8) {
	if len(pix) != len(i.pix) {
		panic(fmt.Sprintf("rimage.Image: pixel buffer length %d does not match %dx%d BGRA image",
			len(pix), i.width, i.height))
	}
	copy(i.pix, pix)
}

// CopyFrom overwrites the image with the contents of src, which must have the
// same dimensions.
func (i *Image) CopyFrom(src *Image) {
	if src.width != i.width || src.height != i.height {
		panic(fmt.Sprintf("rimage.Image: cannot copy %dx%d into %dx%d",
			src.width, src.height, i.width, i.height))
	}
	copy(i.pix, src.pix)
}
