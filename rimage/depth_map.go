package rimage

// Depth is a single depth sample in millimeters. Zero means no reading.
type Depth uint16

// DepthMap is a dense map of depth samples with the same dimensions as the
// color frame it was captured with.
type DepthMap struct {
	width  int
	height int
	data   []Depth
}

// NewEmptyDepthMap returns a zeroed depth map of the given dimensions.
func NewEmptyDepthMap(width, height int) *DepthMap {
	return &DepthMap{
		width:  width,
		height: height,
		data:   make([]Depth, width*height),
	}
}

// HasData reports whether the map has been allocated with a real size.
func (dm *DepthMap) HasData() bool {
	return dm.width > 0 && dm.data != nil
}

// Width returns the horizontal dimension of the map.
func (dm *DepthMap) Width() int {
	return dm.width
}

// Height returns the vertical dimension of the map.
func (dm *DepthMap) Height() int {
	return dm.height
}

func (dm *DepthMap) kxy(x, y int) int {
	return (y * dm.width) + x
}

// GetDepth returns the depth at a pixel.
func (dm *DepthMap) GetDepth(x, y int) Depth {
	return dm.data[dm.kxy(x, y)]
}

// Set writes the depth at a pixel.
func (dm *DepthMap) Set(x, y int, val Depth) {
	dm.data[dm.kxy(x, y)] = val
}

// Data exposes the underlying sample buffer, row-major.
func (dm *DepthMap) Data() []Depth {
	return dm.data
}
