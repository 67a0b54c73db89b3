// Package threshold holds the process-wide HSV threshold bounds shared
// between the operator tuning surface and the frame pipeline. Each channel's
// bound pair is atomic; the tuning path writes and the segmentation path
// reads without either blocking the other.
package threshold

import (
	"fmt"

	"go.uber.org/atomic"
)

// Channel identifies one of the three HSV channels.
type Channel int

// The three channels of the HSV color space.
const (
	Hue Channel = iota
	Saturation
	Value
)

func (c Channel) String() string {
	switch c {
	case Hue:
		return "hue"
	case Saturation:
		return "saturation"
	case Value:
		return "value"
	default:
		return fmt.Sprintf("Channel(%d)", int(c))
	}
}

// Max returns the largest legal value for the channel. Hue is capped at 179
// per the 8-bit OpenCV convention; the original tool wired its hue slider to
// 255, which let the control run past the representable range, so the cap is
// enforced here instead.
func (c Channel) Max() int32 {
	if c == Hue {
		return 179
	}
	return 255
}

// Range is a snapshot of all six bounds. Segmentation takes a Range so every
// pixel of one frame is judged against the same values.
type Range struct {
	LoH, HiH uint8
	LoS, HiS uint8
	LoV, HiV uint8
}

// DefaultRange is wide open: every pixel is foreground until the operator
// narrows it.
func DefaultRange() Range {
	return Range{LoH: 0, HiH: 179, LoS: 0, HiS: 255, LoV: 0, HiV: 255}
}

// Contains reports whether an HSV triple falls inside the range, inclusive on
// both ends of every channel.
func (r Range) Contains(h, s, v uint8) bool {
	return h >= r.LoH && h <= r.HiH &&
		s >= r.LoS && s <= r.HiS &&
		v >= r.LoV && v <= r.HiV
}

func (r Range) String() string {
	return fmt.Sprintf("h[%d,%d] s[%d,%d] v[%d,%d]", r.LoH, r.HiH, r.LoS, r.HiS, r.LoV, r.HiV)
}

// Store is the shared mutable threshold state. Each channel's (lo, hi) pair
// lives in one atomic word, so a channel's two bounds are always mutually
// consistent and an update is validated against the exact pair it replaces.
// Channels are independent of each other; a frame may observe one channel
// updated and another stale, which is acceptable under the
// eventual-visibility contract of the tuning surface.
type Store struct {
	pairs [3]atomic.Uint64
}

func packPair(lo, hi int32) uint64 {
	return uint64(uint32(lo)) | uint64(uint32(hi))<<32
}

func unpackPair(p uint64) (lo, hi int32) {
	return int32(uint32(p)), int32(uint32(p >> 32))
}

// NewStore returns a store initialized to the given range.
func NewStore(r Range) *Store {
	s := &Store{}
	s.pairs[Hue].Store(packPair(int32(r.LoH), int32(r.HiH)))
	s.pairs[Saturation].Store(packPair(int32(r.LoS), int32(r.HiS)))
	s.pairs[Value].Store(packPair(int32(r.LoV), int32(r.HiV)))
	return s
}

// Lower returns the most recently accepted lower bound for the channel.
func (s *Store) Lower(ch Channel) int {
	lo, _ := unpackPair(s.pairs[ch].Load())
	return int(lo)
}

// Upper returns the most recently accepted upper bound for the channel.
func (s *Store) Upper(ch Channel) int {
	_, hi := unpackPair(s.pairs[ch].Load())
	return int(hi)
}

// SetLower updates the lower bound for the channel. The update is rejected,
// and the previous value retained, if it would leave the channel's range
// inverted or fall outside the channel domain. Returns whether the update was
// accepted. Validation and commit go through one CAS on the channel's pair,
// so concurrent writers to opposite bounds cannot both slip past each other's
// checks and publish an inverted range.
func (s *Store) SetLower(ch Channel, v int) bool {
	if v < 0 || int32(v) > ch.Max() {
		return false
	}
	for {
		p := s.pairs[ch].Load()
		_, hi := unpackPair(p)
		if int32(v) >= hi {
			return false
		}
		if s.pairs[ch].CompareAndSwap(p, packPair(int32(v), hi)) {
			return true
		}
	}
}

// SetUpper updates the upper bound for the channel, with the symmetric
// acceptance rule to SetLower.
func (s *Store) SetUpper(ch Channel, v int) bool {
	if v < 0 || int32(v) > ch.Max() {
		return false
	}
	for {
		p := s.pairs[ch].Load()
		lo, _ := unpackPair(p)
		if int32(v) <= lo {
			return false
		}
		if s.pairs[ch].CompareAndSwap(p, packPair(lo, int32(v))) {
			return true
		}
	}
}

// Snapshot reads all six bounds. Each channel's pair is read in one atomic
// load; the three channels are not collectively atomic, see the Store doc.
func (s *Store) Snapshot() Range {
	loH, hiH := unpackPair(s.pairs[Hue].Load())
	loS, hiS := unpackPair(s.pairs[Saturation].Load())
	loV, hiV := unpackPair(s.pairs[Value].Load())
	return Range{
		LoH: uint8(loH), HiH: uint8(hiH),
		LoS: uint8(loS), HiS: uint8(hiS),
		LoV: uint8(loV), HiV: uint8(hiV),
	}
}
