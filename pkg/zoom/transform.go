package zoom

import (
	"fmt"
	"math"

	"github.com/devmap/devmap/pkg/errors"
	"github.com/devmap/devmap/pkg/geo"
)

const (
	// FullFill is the fill ratio for full-size regions.
	FullFill = 1.0

	// PartialFill is the fill ratio for every other region.
	PartialFill = 0.5
)

// Transform is a uniform scale followed by a translation, applied to
// projected coordinates: screen = projected*Scale + Translate.
type Transform struct {
	Scale      float64 `json:"scale"`
	TranslateX float64 `json:"translate_x"`
	TranslateY float64 `json:"translate_y"`
}

// Identity returns the unzoomed transform.
func Identity() Transform {
	return Transform{Scale: 1}
}

// IsIdentity reports whether t leaves coordinates unchanged.
func (t Transform) IsIdentity() bool {
	return t == Identity()
}

// Apply maps a projected point through the transform.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return x*t.Scale + t.TranslateX, y*t.Scale + t.TranslateY
}

// String renders the transform the way an SVG transform attribute expects.
func (t Transform) String() string {
	return fmt.Sprintf("translate(%g,%g)scale(%g)", t.TranslateX, t.TranslateY, t.Scale)
}

// Compute returns the transform that fits b into a viewport of the given
// size. fullSize selects the full fill ratio.
//
// When the viewport is relatively wider than the region, the height
// constrains the scale and the region is centred horizontally; otherwise
// the width constrains it and the region is centred vertically. Equal
// ratios take the width-constrained branch, where the centring term is zero.
func Compute(b geo.Bounds, viewportWidth, viewportHeight float64, fullSize bool) (Transform, error) {
	if !b.Valid() {
		return Transform{}, errors.New(errors.ErrCodeInvalidBounds,
			"region bounds must be finite with positive size, got %gx%g", b.Width, b.Height)
	}
	if err := errors.ValidateViewport(viewportWidth, viewportHeight); err != nil {
		return Transform{}, errors.Wrap(errors.ErrCodeInvalidBounds, err, "cannot fit region")
	}

	fill := PartialFill
	if fullSize {
		fill = FullFill
	}

	widthRatio := viewportWidth / b.Width
	heightRatio := viewportHeight / b.Height

	var t Transform
	if widthRatio > heightRatio {
		t.Scale = heightRatio * fill
		t.TranslateX = -(b.X-b.Width*(1-fill))*t.Scale + (widthRatio-heightRatio)*b.Width/2
		t.TranslateY = -(b.Y - b.Height*(1-fill)) * t.Scale
	} else {
		t.Scale = widthRatio * fill
		t.TranslateX = -(b.X - b.Width*(1-fill)) * t.Scale
		t.TranslateY = -(b.Y-b.Height*(1-fill))*t.Scale + (heightRatio-widthRatio)*b.Height/2
	}

	if !finite(t.Scale) || !finite(t.TranslateX) || !finite(t.TranslateY) || t.Scale <= 0 {
		return Transform{}, errors.New(errors.ErrCodeInvalidBounds, "region bounds produce a degenerate transform")
	}
	return t, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
