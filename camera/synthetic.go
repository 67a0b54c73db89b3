package camera

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	goutils "go.viam.com/utils"

	"github.com/slazery/kinect2-HSV-thresholder/rimage"
)

const defaultFrameRate = 30.0

// SyntheticConfig configures a synthetic frame source.
type SyntheticConfig struct {
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	FrameRate float64 `json:"frame_rate,omitempty"`
}

// Synthetic is a frame source that renders a deterministic test pattern: a
// hue sweep that drifts left to right over time in the color frame and a
// radial ramp in the depth frame. It can be told to withhold either
// sub-frame to exercise frame-loss handling.
type Synthetic struct {
	conf   SyntheticConfig
	logger golog.Logger
	ticker *clock.Ticker

	frameNum  atomic.Int64
	dropColor atomic.Bool
	dropDepth atomic.Bool

	mu     sync.Mutex
	active *syntheticEvent
	closed bool
}

// NewSynthetic returns a synthetic source paced by the given clock.
func NewSynthetic(conf SyntheticConfig, clk clock.Clock, logger golog.Logger) (*Synthetic, error) {
	if conf.Width <= 0 || conf.Height <= 0 {
		return nil, errors.Errorf("invalid synthetic camera size (%d, %d)", conf.Width, conf.Height)
	}
	if conf.FrameRate <= 0 {
		conf.FrameRate = defaultFrameRate
	}
	interval := time.Duration(float64(time.Second) / conf.FrameRate)
	return &Synthetic{
		conf:   conf,
		logger: logger,
		ticker: clk.Ticker(interval),
	}, nil
}

// DropColor makes subsequent color acquisitions report unavailable.
func (s *Synthetic) DropColor(drop bool) {
	s.dropColor.Store(drop)
}

// DropDepth makes subsequent depth acquisitions report unavailable.
func (s *Synthetic) DropDepth(drop bool) {
	s.dropDepth.Store(drop)
}

// Next blocks until the next tick and delivers a fresh frame event. The
// previous event, consumed or not, is expired first.
func (s *Synthetic) Next(ctx context.Context) (FrameEvent, error) {
	if !goutils.SelectContextOrWaitChan(ctx, s.ticker.C) {
		return nil, ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errors.New("synthetic source is closed")
	}
	if s.active != nil {
		s.active.expire()
	}

	n := s.frameNum.Inc()
	evt := &syntheticEvent{
		color:     s.renderColor(n),
		depth:     s.renderDepth(),
		dropColor: s.dropColor.Load(),
		dropDepth: s.dropDepth.Load(),
	}
	s.active = evt
	return evt, nil
}

// Close stops the tick loop. Outstanding events are expired.
func (s *Synthetic) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.ticker.Stop()
	if s.active != nil {
		s.active.expire()
		s.active = nil
	}
	return nil
}

func (s *Synthetic) renderColor(frameNum int64) *rimage.Image {
	w, h := s.conf.Width, s.conf.Height
	img := rimage.NewImage(w, h)
	shift := float64(frameNum * 3)
	for y := 0; y < h; y++ {
		sat := 0.25 + 0.75*float64(y)/float64(h)
		for x := 0; x < w; x++ {
			hue := math.Mod(float64(x)/float64(w)*360+shift, 360)
			c := rimage.NewColorFromHSV(hue, sat, 1.0)
			img.SetBGRA(x, y, c.B, c.G, c.R, 255)
		}
	}
	return img
}

func (s *Synthetic) renderDepth() *rimage.DepthMap {
	w, h := s.conf.Width, s.conf.Height
	dm := rimage.NewEmptyDepthMap(w, h)
	cx, cy := float64(w)/2, float64(h)/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := math.Hypot(float64(x)-cx, float64(y)-cy)
			dm.Set(x, y, rimage.Depth(500+d*4))
		}
	}
	return dm
}

// syntheticEvent enforces the at-most-once acquisition and expiry rules of
// the FrameEvent contract.
type syntheticEvent struct {
	mu        sync.Mutex
	color     *rimage.Image
	depth     *rimage.DepthMap
	dropColor bool
	dropDepth bool

	colorTaken bool
	depthTaken bool
	expired    bool
}

func (e *syntheticEvent) expire() {
	e.mu.Lock()
	e.expired = true
	e.mu.Unlock()
}

func (e *syntheticEvent) Color() (*rimage.Image, func(), error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.expired || e.colorTaken || e.dropColor {
		return nil, nil, errors.Wrap(ErrFrameUnavailable, "color")
	}
	e.colorTaken = true
	return e.color, func() {}, nil
}

func (e *syntheticEvent) Depth() (*rimage.DepthMap, func(), error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.expired || e.depthTaken || e.dropDepth {
		return nil, nil, errors.Wrap(ErrFrameUnavailable, "depth")
	}
	e.depthTaken = true
	return e.depth, func() {}, nil
}
