// Package pipeline runs the per-frame acquisition-to-mask traversal: acquire
// the color and depth sub-frames, map depth into camera space, copy color
// into the display bitmap, convert to HSV, and segment against the current
// threshold range.
package pipeline

import (
	"context"
	"sync"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/slazery/kinect2-HSV-thresholder/camera"
	"github.com/slazery/kinect2-HSV-thresholder/display"
	"github.com/slazery/kinect2-HSV-thresholder/rimage"
	"github.com/slazery/kinect2-HSV-thresholder/threshold"
	"github.com/slazery/kinect2-HSV-thresholder/utils"
)

// State is the position of the pipeline within one frame traversal. Every
// frame attempts a full Idle through Segmented walk; any acquisition failure
// jumps straight back to Idle with cleanup.
type State int

// The traversal states, in order.
const (
	Idle State = iota
	FrameAcquired
	DepthMapped
	ColorCopied
	Segmented
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case FrameAcquired:
		return "FrameAcquired"
	case DepthMapped:
		return "DepthMapped"
	case ColorCopied:
		return "ColorCopied"
	case Segmented:
		return "Segmented"
	default:
		return "Unknown"
	}
}

// A MaskSink accepts the half-resolution mask for presentation.
type MaskSink interface {
	Present(m *rimage.Mask)
}

// Pipeline owns the per-frame buffers: the camera-space point buffer, the HSV
// scratch buffer, and the full-resolution mask are all overwritten in place
// every frame. A mutex serializes traversals so a frame runs to completion
// before the next is considered; the only state shared with another
// goroutine is the threshold store, which is read without locking.
type Pipeline struct {
	intrinsics *camera.PinholeCameraIntrinsics
	store      *threshold.Store
	bitmap     *display.Bitmap
	sink       MaskSink
	logger     golog.Logger

	frameMu sync.Mutex
	state   State
	points  []r3.Vector
	scratch *rimage.Image
	hsv     *rimage.HSV
	mask    *rimage.Mask

	processed atomic.Int64
	abandoned atomic.Int64
}

// New returns a pipeline segmenting frames of the intrinsics' dimensions.
func New(
	intrinsics *camera.PinholeCameraIntrinsics,
	store *threshold.Store,
	bitmap *display.Bitmap,
	sink MaskSink,
	logger golog.Logger,
) (*Pipeline, error) {
	if err := intrinsics.CheckValid(); err != nil {
		return nil, err
	}
	if bitmap.Width() != intrinsics.Width || bitmap.Height() != intrinsics.Height {
		return nil, errors.Errorf("display bitmap is %dx%d, intrinsics expect %dx%d",
			bitmap.Width(), bitmap.Height(), intrinsics.Width, intrinsics.Height)
	}
	return &Pipeline{
		intrinsics: intrinsics,
		store:      store,
		bitmap:     bitmap,
		sink:       sink,
		logger:     logger,
		scratch:    rimage.NewImage(intrinsics.Width, intrinsics.Height),
	}, nil
}

// State returns the pipeline's current traversal state.
func (p *Pipeline) State() State {
	p.frameMu.Lock()
	defer p.frameMu.Unlock()
	return p.state
}

// Processed returns the number of completed traversals.
func (p *Pipeline) Processed() int64 {
	return p.processed.Load()
}

// Abandoned returns the number of traversals aborted on transient frame loss.
func (p *Pipeline) Abandoned() int64 {
	return p.abandoned.Load()
}

// CameraPoints returns the point buffer from the last completed traversal.
// The slice is overwritten on the next frame.
func (p *Pipeline) CameraPoints() []r3.Vector {
	p.frameMu.Lock()
	defer p.frameMu.Unlock()
	return p.points
}

// HandleFrame runs one full traversal for the event. Transient frame loss is
// absorbed: the traversal is abandoned, all acquired resources released, and
// nil returned. A non-nil error means the frame geometry violated the
// configured intrinsics, which no later frame will fix.
func (p *Pipeline) HandleFrame(ctx context.Context, evt camera.FrameEvent) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	p.frameMu.Lock()
	defer p.frameMu.Unlock()
	defer func() { p.state = Idle }()

	// Both sub-frames are acquired before any shared buffer is touched, so an
	// abandoned frame leaves the point buffer and bitmap exactly as they were.
	depth, releaseDepth, err := evt.Depth()
	if err != nil {
		p.abandon("depth", err)
		return nil
	}
	depthGuard := utils.NewGuard(releaseDepth)
	defer depthGuard.OnFail()

	color, releaseColor, err := evt.Color()
	if err != nil {
		p.abandon("color", err)
		return nil
	}
	colorGuard := utils.NewGuard(releaseColor)
	defer colorGuard.OnFail()
	p.state = FrameAcquired

	points, err := p.intrinsics.MapColorToCameraSpace(depth, p.points)
	if err != nil {
		return errors.Wrap(err, "mapping depth to camera space")
	}
	p.points = points
	// The depth buffer is never needed again this frame.
	releaseDepth()
	depthGuard.Success()
	p.state = DepthMapped

	writer, err := p.bitmap.AcquireExclusiveWrite()
	if err != nil {
		return errors.Wrap(err, "acquiring display write access")
	}
	writeGuard := utils.NewGuard(writer.Abort)
	defer writeGuard.OnFail()

	if err := writer.Write(color.Bounds(), color.Pix()); err != nil {
		return errors.Wrap(err, "copying color frame to display")
	}
	writer.MarkDirty(color.Bounds())
	writer.Release()
	writeGuard.Success()

	releaseColor()
	colorGuard.Success()
	p.state = ColorCopied

	p.bitmap.CopyTo(p.scratch)
	p.hsv = rimage.ConvertToHSV(p.scratch, p.hsv)

	rng := p.store.Snapshot()
	var foreground int
	p.mask, foreground = rimage.ApplyThreshold(p.hsv, rng, p.mask)
	p.state = Segmented

	small := p.mask.Downscale()
	if p.sink != nil {
		p.sink.Present(small)
	}

	n := p.processed.Inc()
	p.logger.Debugw("frame segmented",
		"frame", n,
		"range", rng.String(),
		"foreground", foreground,
	)
	return nil
}

func (p *Pipeline) abandon(subFrame string, err error) {
	p.abandoned.Inc()
	p.logger.Debugw("abandoning frame", "sub_frame", subFrame, "error", err)
}

// Loop consumes frame events until the context ends or the source fails.
// Events are handled strictly one at a time; the source's next event is not
// requested until the previous traversal finished.
func (p *Pipeline) Loop(ctx context.Context, src camera.Source) error {
	for {
		evt, err := src.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if err := p.HandleFrame(ctx, evt); err != nil {
			return err
		}
	}
}
