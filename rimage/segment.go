package rimage

import (
	"context"
	"fmt"

	"go.uber.org/atomic"

	"github.com/slazery/kinect2-HSV-thresholder/threshold"
	"github.com/slazery/kinect2-HSV-thresholder/utils"
)

// ApplyThreshold produces a binary mask from an HSV buffer: a pixel is
// foreground iff its hue, saturation, and value each fall within the
// inclusive bounds of rng. Every pixel of the frame is judged against the
// same snapshot. The work is per-pixel independent and parallelized over row
// groups; dst is reused as scratch when it matches the source dimensions and
// reallocated when nil. A non-nil dst of the wrong size is a contract
// violation. Returns the mask and the number of foreground pixels.
func ApplyThreshold(hsv *HSV, rng threshold.Range, dst *Mask) (*Mask, int) {
	if dst == nil {
		dst = NewMask(hsv.Width(), hsv.Height())
	} else if dst.width != hsv.Width() || dst.height != hsv.Height() {
		panic(fmt.Sprintf("rimage.ApplyThreshold: scratch mask is %dx%d, input is %dx%d",
			dst.width, dst.height, hsv.Width(), hsv.Height()))
	}
	if hsv.Width() == 0 || hsv.Height() == 0 {
		return dst, 0
	}

	var foreground atomic.Int64
	//nolint:errcheck // group work never returns an error here
	utils.GroupWorkParallel(
		context.Background(),
		hsv.Height(),
		func(numGroups int) {},
		func(groupNum, groupSize, from, to int) (utils.MemberWorkFunc, utils.GroupWorkDoneFunc) {
			groupCount := 0
			rowWork := func(memberNum, y int) {
				for x := 0; x < hsv.Width(); x++ {
					h, s, v := hsv.HSVAt(x, y)
					in := rng.Contains(h, s, v)
					dst.Set(x, y, in)
					if in {
						groupCount++
					}
				}
			}
			return rowWork, func() {
				foreground.Add(int64(groupCount))
			}
		},
	)
	return dst, int(foreground.Load())
}
