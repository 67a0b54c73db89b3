// Package camera defines the contract between the thresholding pipeline and a
// streaming 3D sensor: frame events carrying paired color and depth
// sub-frames, the pinhole model used to align depth with color, and a
// synthetic source for development and tests.
package camera

import (
	"context"

	"github.com/pkg/errors"

	"github.com/slazery/kinect2-HSV-thresholder/rimage"
)

// ErrFrameUnavailable is returned when a sub-frame expired before it could be
// acquired, or was already acquired once. Frame loss is transient; callers
// abandon the current frame and wait for the next event.
var ErrFrameUnavailable = errors.New("sub-frame unavailable")

// A FrameEvent is delivered once per synchronized capture. Each sub-frame may
// be acquired at most once, and acquisition may report unavailable at any
// time. Acquired buffers are valid only until the returned release func runs,
// and the whole event only until the next frame event fires; consumers must
// copy out or finish processing before releasing.
type FrameEvent interface {
	// Color acquires the BGRA color sub-frame.
	Color() (*rimage.Image, func(), error)
	// Depth acquires the depth sub-frame.
	Depth() (*rimage.DepthMap, func(), error)
}

// A Source delivers frame events one at a time. Next blocks until the next
// capture or context cancellation. Sources do not queue: an event not
// consumed before the following capture is expired, never buffered.
type Source interface {
	Next(ctx context.Context) (FrameEvent, error)
	Close() error
}
