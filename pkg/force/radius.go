package force

import "math"

// Count tiers at which the collision radius shrinks.
const (
	DenseCount  = 2000
	MediumCount = 1000
	SparseCount = 100
)

// PointRadius returns the drawn point radius for a viewport width.
func PointRadius(width float64) float64 {
	switch {
	case width < 500:
		return 1.5
	case width < 800:
		return 2
	default:
		return 3
	}
}

// StrokeWidth returns the point outline width for a viewport width.
func StrokeWidth(width float64) float64 {
	if width < 500 {
		return 2.0 / 3.0
	}
	return 1
}

// BaseRadius returns the unzoomed collision radius for n points of the
// given drawn radius. Denser maps allow more overlap.
func BaseRadius(pointRadius float64, n int) float64 {
	switch {
	case n >= DenseCount:
		return pointRadius / 3
	case n >= MediumCount:
		return pointRadius / 2
	case n >= SparseCount:
		return pointRadius * 2 / 3
	default:
		return pointRadius
	}
}

// EffectiveRadius adjusts a base radius for the zoom scale. Zooming in
// shrinks the radius with the square root of the scale, but never beyond
// the drawn radius divided by the scale. A non-positive or non-finite scale
// is treated as 1.
func EffectiveRadius(base, pointRadius, scale float64) float64 {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		scale = 1
	}
	return math.Min(base/math.Sqrt(scale), pointRadius/scale)
}

// CollisionRadius combines BaseRadius and EffectiveRadius.
func CollisionRadius(pointRadius float64, n int, scale float64) float64 {
	return EffectiveRadius(BaseRadius(pointRadius, n), pointRadius, scale)
}
