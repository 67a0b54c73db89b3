package rimage

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Color carries a color in both RGB and floating point HSV (H in degrees,
// S and V in [0,1]). It is a convenience for building test patterns and for
// describing threshold ranges in logs; per-pixel conversion in the frame path
// uses ConvertToHSV instead.
type Color struct {
	R, G, B uint8
	H, S, V float64
}

func (c Color) String() string {
	return fmt.Sprintf("%s (%3d,%4.2f,%4.2f)", c.Hex(), int(c.H), c.S, c.V)
}

// Hex returns the color as an HTML hex string.
func (c Color) Hex() string {
	return fmt.Sprintf("#%.2x%.2x%.2x", c.R, c.G, c.B)
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}.RGBA()
}

// NewColor creates a Color from 8-bit RGB values.
func NewColor(r, g, b uint8) Color {
	cc := colorful.Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}
	h, s, v := cc.Hsv()

	return Color{R: r, G: g, B: b, H: h, S: s, V: v}
}

// NewColorFromHSV creates a Color from hue in degrees [0,360) and saturation
// and value in [0,1].
func NewColorFromHSV(h, s, v float64) Color {
	cc := colorful.Hsv(h, s, v)
	r, g, b := cc.RGB255()
	return Color{R: r, G: g, B: b, H: h, S: s, V: v}
}
