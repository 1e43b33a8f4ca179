package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// Bounds is an axis-aligned rectangle in screen space.
type Bounds struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether the rectangle has a finite, positive extent and a
// finite origin.
func (b Bounds) Valid() bool {
	return finite(b.X) && finite(b.Y) && finite(b.Width) && finite(b.Height) &&
		b.Width > 0 && b.Height > 0
}

// BoundsFromOrb converts an orb bound in projected coordinates.
func BoundsFromOrb(o orb.Bound) Bounds {
	return Bounds{
		X:      o.Min.X(),
		Y:      o.Min.Y(),
		Width:  o.Max.X() - o.Min.X(),
		Height: o.Max.Y() - o.Min.Y(),
	}
}

// BoundsProvider resolves a region identifier to its projected bounding box.
// The boolean is false for unknown regions.
type BoundsProvider interface {
	Bounds(region string) (Bounds, bool)
}

// BoundsFunc adapts a function to BoundsProvider.
type BoundsFunc func(region string) (Bounds, bool)

// Bounds implements BoundsProvider.
func (f BoundsFunc) Bounds(region string) (Bounds, bool) { return f(region) }

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
