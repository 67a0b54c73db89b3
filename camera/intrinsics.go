package camera

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/slazery/kinect2-HSV-thresholder/rimage"
)

// ErrNoIntrinsics is when a camera does not have intrinsics parameters or other parameters.
var ErrNoIntrinsics = errors.New("camera intrinsic parameters are not available")

// NewNoIntrinsicsError is used when the intrinsics are not defined.
func NewNoIntrinsicsError(msg string) error {
	return errors.Wrap(ErrNoIntrinsics, msg)
}

// PinholeCameraIntrinsics holds the parameters necessary to project a depth
// sample at a color pixel out to a 3D point in camera space.
type PinholeCameraIntrinsics struct {
	Width  int     `json:"width_px"`
	Height int     `json:"height_px"`
	Fx     float64 `json:"fx"`
	Fy     float64 `json:"fy"`
	Ppx    float64 `json:"ppx"`
	Ppy    float64 `json:"ppy"`
}

// CheckValid checks if the fields for PinholeCameraIntrinsics have valid inputs.
func (params *PinholeCameraIntrinsics) CheckValid() error {
	if params == nil {
		return NewNoIntrinsicsError("Intrinsics do not exist")
	}
	if params.Width == 0 || params.Height == 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid size (%#v, %#v)", params.Width, params.Height))
	}
	if params.Fx <= 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid focal length Fx = %#v", params.Fx))
	}
	if params.Fy <= 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid focal length Fy = %#v", params.Fy))
	}
	if params.Ppx < 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid principal X point Ppx = %#v", params.Ppx))
	}
	if params.Ppy < 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid principal Y point Ppy = %#v", params.Ppy))
	}
	return nil
}

// PixelToPoint transforms a pixel with depth to a 3D point in camera space.
// The intrinsics parameters should be the ones of the sensor used to obtain
// the image that contains the pixel.
func (params *PinholeCameraIntrinsics) PixelToPoint(x, y, z float64) (float64, float64, float64) {
	xOverZ := (x - params.Ppx) / params.Fx
	yOverZ := (y - params.Ppy) / params.Fy
	return xOverZ * z, yOverZ * z, z
}

// MapColorToCameraSpace computes, for every color pixel, the corresponding 3D
// point in camera space from the aligned depth map. The output length always
// equals the color pixel count of the intrinsics; pixels with no depth
// reading map to the zero vector. dst is reused when it has capacity,
// otherwise a new buffer is allocated. The depth map dimensions must match
// the intrinsics.
func (params *PinholeCameraIntrinsics) MapColorToCameraSpace(dm *rimage.DepthMap, dst []r3.Vector) ([]r3.Vector, error) {
	if err := params.CheckValid(); err != nil {
		return nil, err
	}
	if dm.Width() != params.Width || dm.Height() != params.Height {
		return nil, errors.Errorf("depth map dimension and intrinsics don't match DepthMap(%d,%d) != Intrinsics(%d,%d)",
			dm.Width(), dm.Height(), params.Width, params.Height)
	}

	n := params.Width * params.Height
	if cap(dst) < n {
		dst = make([]r3.Vector, n)
	}
	dst = dst[:n]

	i := 0
	for y := 0; y < params.Height; y++ {
		for x := 0; x < params.Width; x++ {
			z := dm.GetDepth(x, y)
			if z == 0 {
				dst[i] = r3.Vector{}
			} else {
				px, py, pz := params.PixelToPoint(float64(x), float64(y), float64(z))
				dst[i] = r3.Vector{X: px, Y: py, Z: pz}
			}
			i++
		}
	}
	return dst, nil
}
