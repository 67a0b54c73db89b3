package rimage

import (
	"fmt"
	"image"
	"math"

	"github.com/slazery/kinect2-HSV-thresholder/utils"
)

// HSV is a dense 3-channel image in the 8-bit OpenCV convention:
// H in [0,179], S and V in [0,255]. It is scratch space in the frame path,
// overwritten on every conversion.
type HSV struct {
	width, height int
	pix           []uint8
}

// NewHSV returns a zeroed HSV buffer of the given dimensions.
func NewHSV(width, height int) *HSV {
	return &HSV{
		width:  width,
		height: height,
		pix:    make([]uint8, width*height*3),
	}
}

// Width returns the horizontal dimension of the buffer.
func (h *HSV) Width() int {
	return h.width
}

// Height returns the vertical dimension of the buffer.
func (h *HSV) Height() int {
	return h.height
}

func (h *HSV) kxy(x, y int) int {
	return ((y * h.width) + x) * 3
}

// HSVAt returns the channel values at a pixel.
func (h *HSV) HSVAt(x, y int) (hue, sat, val uint8) {
	k := h.kxy(x, y)
	return h.pix[k], h.pix[k+1], h.pix[k+2]
}

// SetHSV writes the channel values at a pixel.
func (h *HSV) SetHSV(x, y int, hue, sat, val uint8) {
	k := h.kxy(x, y)
	h.pix[k] = hue
	h.pix[k+1] = sat
	h.pix[k+2] = val
}

// BGRToHSV converts one pixel from 8-bit BGR to the 8-bit OpenCV HSV
// convention. Hue wraps at 180 to fit its half-degree storage; achromatic
// inputs map to hue 0.
func BGRToHSV(b, g, r uint8) (hue, sat, val uint8) {
	v := utils.MaxUint8(utils.MaxUint8(b, g), r)
	mn := utils.MinUint8(utils.MinUint8(b, g), r)
	delta := float64(v) - float64(mn)

	if v == 0 {
		return 0, 0, 0
	}
	sat = uint8(math.Round(255 * delta / float64(v)))
	if delta == 0 {
		return 0, sat, v
	}

	var hDeg float64
	switch v {
	case r:
		hDeg = 60 * (float64(g) - float64(b)) / delta
	case g:
		hDeg = 120 + 60*(float64(b)-float64(r))/delta
	default:
		hDeg = 240 + 60*(float64(r)-float64(g))/delta
	}
	if hDeg < 0 {
		hDeg += 360
	}
	hue = uint8(math.Round(hDeg / 2))
	if hue == 180 {
		hue = 0
	}
	return hue, sat, v
}

// ConvertToHSV converts a BGRA image into an HSV buffer. The conversion is a
// pure function of its input; dst is reused as scratch when it matches the
// source dimensions and reallocated when nil. A non-nil dst of the wrong size
// is a contract violation.
func ConvertToHSV(src *Image, dst *HSV) *HSV {
	if dst == nil {
		dst = NewHSV(src.Width(), src.Height())
	} else if dst.width != src.Width() || dst.height != src.Height() {
		panic(fmt.Sprintf("rimage.ConvertToHSV: scratch buffer is %dx%d, source is %dx%d",
			dst.width, dst.height, src.Width(), src.Height()))
	}
	utils.ParallelForEachPixel(image.Point{src.Width(), src.Height()}, func(x, y int) {
		b, g, r, _ := src.BGRAAt(x, y)
		hue, sat, val := BGRToHSV(b, g, r)
		dst.SetHSV(x, y, hue, sat, val)
	})
	return dst
}
