package camera

import (
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/slazery/kinect2-HSV-thresholder/rimage"
)

var testIntrinsics = &PinholeCameraIntrinsics{
	Width:  8,
	Height: 6,
	Fx:     100,
	Fy:     100,
	Ppx:    4,
	Ppy:    3,
}

func TestCheckValid(t *testing.T) {
	test.That(t, testIntrinsics.CheckValid(), test.ShouldBeNil)

	var nilParams *PinholeCameraIntrinsics
	err := nilParams.CheckValid()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrNoIntrinsics), test.ShouldBeTrue)

	bad := *testIntrinsics
	bad.Fx = 0
	test.That(t, bad.CheckValid(), test.ShouldNotBeNil)
}

func TestPixelToPoint(t *testing.T) {
	// the principal point projects straight down the optical axis
	x, y, z := testIntrinsics.PixelToPoint(4, 3, 1000)
	test.That(t, x, test.ShouldAlmostEqual, 0)
	test.That(t, y, test.ShouldAlmostEqual, 0)
	test.That(t, z, test.ShouldAlmostEqual, 1000)

	x, y, z = testIntrinsics.PixelToPoint(6, 3, 1000)
	test.That(t, x, test.ShouldAlmostEqual, 20)
	test.That(t, y, test.ShouldAlmostEqual, 0)
	test.That(t, z, test.ShouldAlmostEqual, 1000)
}

func TestMapColorToCameraSpace(t *testing.T) {
	dm := rimage.NewEmptyDepthMap(8, 6)
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			dm.Set(x, y, 1000)
		}
	}
	dm.Set(0, 0, 0) // no reading

	points, err := testIntrinsics.MapColorToCameraSpace(dm, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, points, test.ShouldHaveLength, 8*6)

	test.That(t, points[0], test.ShouldResemble, r3.Vector{})

	// pixel (6,3) is index 3*8+6
	pt := points[3*8+6]
	test.That(t, pt.X, test.ShouldAlmostEqual, 20)
	test.That(t, pt.Y, test.ShouldAlmostEqual, 0)
	test.That(t, pt.Z, test.ShouldAlmostEqual, 1000)

	// the buffer is reused when it has capacity
	again, err := testIntrinsics.MapColorToCameraSpace(dm, points)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, &again[0], test.ShouldEqual, &points[0])
}

func TestMapColorToCameraSpaceDimensionMismatch(t *testing.T) {
	dm := rimage.NewEmptyDepthMap(4, 4)
	_, err := testIntrinsics.MapColorToCameraSpace(dm, nil)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "don't match")
}
