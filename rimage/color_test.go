package rimage

import (
	"testing"

	"go.viam.com/test"
)

func TestNewColor(t *testing.T) {
	red := NewColor(255, 0, 0)
	test.That(t, red.H, test.ShouldAlmostEqual, 0)
	test.That(t, red.S, test.ShouldAlmostEqual, 1)
	test.That(t, red.V, test.ShouldAlmostEqual, 1)
	test.That(t, red.Hex(), test.ShouldEqual, "#ff0000")

	gray := NewColor(128, 128, 128)
	test.That(t, gray.S, test.ShouldAlmostEqual, 0)
}

func TestNewColorFromHSV(t *testing.T) {
	c := NewColorFromHSV(120, 1, 1)
	test.That(t, c.R, test.ShouldEqual, 0)
	test.That(t, c.G, test.ShouldEqual, 255)
	test.That(t, c.B, test.ShouldEqual, 0)
}

func TestImageCopyPixFrom(t *testing.T) {
	img := NewImage(2, 2)
	img.CopyPixFrom(make([]uint8, 2*2*4))
	test.That(t, func() { img.CopyPixFrom(make([]uint8, 3)) }, test.ShouldPanic)

	other := NewImage(3, 3)
	test.That(t, func() { img.CopyFrom(other) }, test.ShouldPanic)
}
