package utils

// MaxInt returns the larger of a or b.
func MaxInt(a, b int) int {
	if a < b {
		return b
	}
	return a
}

// MinInt returns the smaller of a or b.
func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// MaxUint8 returns the larger of a or b.
func MaxUint8(a, b uint8) uint8 {
	if a < b {
		return b
	}
	return a
}

// MinUint8 returns the smaller of a or b.
func MinUint8(a, b uint8) uint8 {
	if a < b {
		return a
	}
	return b
}

// AbsInt returns the absolute value of n.
func AbsInt(n int) int {
	if n < 0 {
		return -1 * n
	}
	return n
}
