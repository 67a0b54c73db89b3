package rimage

import (
	"fmt"
	"image"
	"image/color"

	"github.com/nfnt/resize"
)

// Foreground and background values of a binary mask.
const (
	MaskForeground uint8 = 255
	MaskBackground uint8 = 0
)

// Mask is a single-channel binary image marking pixels that fall inside the
// active threshold range.
type Mask struct {
	width, height int
	data          []uint8
}

// NewMask returns an all-background mask of the given dimensions.
func NewMask(width, height int) *Mask {
	return &Mask{
		width:  width,
		height: height,
		data:   make([]uint8, width*height),
	}
}

// Width returns the horizontal dimension of the mask.
func (m *Mask) Width() int {
	return m.width
}

// Height returns the vertical dimension of the mask.
func (m *Mask) Height() int {
	return m.height
}

func (m *Mask) kxy(x, y int) int {
	return (y * m.width) + x
}

// At returns the mask value at a pixel.
func (m *Mask) At(x, y int) uint8 {
	return m.data[m.kxy(x, y)]
}

// Set marks a pixel as foreground or background.
func (m *Mask) Set(x, y int, foreground bool) {
	if foreground {
		m.data[m.kxy(x, y)] = MaskForeground
	} else {
		m.data[m.kxy(x, y)] = MaskBackground
	}
}

// Foreground counts the set pixels.
func (m *Mask) Foreground() int {
	n := 0
	for _, v := range m.data {
		if v != MaskBackground {
			n++
		}
	}
	return n
}

// Ratio returns the fraction of pixels that are foreground, 0 for an empty mask.
func (m *Mask) Ratio() float64 {
	if len(m.data) == 0 {
		return 0
	}
	return float64(m.Foreground()) / float64(len(m.data))
}

// ToGray copies the mask into a standard library grayscale image.
func (m *Mask) ToGray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.width, m.height))
	copy(img.Pix, m.data)
	return img
}

// Downscale produces the half-resolution copy used for lightweight display.
// Nearest-neighbor interpolation keeps the result strictly binary. An empty
// mask downsamples to an empty mask.
func (m *Mask) Downscale() *Mask {
	halfW, halfH := m.width/2, m.height/2
	out := NewMask(halfW, halfH)
	if halfW == 0 || halfH == 0 {
		return out
	}
	small := resize.Resize(uint(halfW), uint(halfH), m.ToGray(), resize.NearestNeighbor)
	if gray, ok := small.(*image.Gray); ok {
		copy(out.data, gray.Pix)
		return out
	}
	for y := 0; y < halfH; y++ {
		for x := 0; x < halfW; x++ {
			g := color.GrayModel.Convert(small.At(x, y)).(color.Gray)
			out.Set(x, y, g.Y > 127)
		}
	}
	return out
}

func (m *Mask) String() string {
	return fmt.Sprintf("Mask(%dx%d, %d foreground)", m.width, m.height, m.Foreground())
}
