package geo

import (
	"math"
	"sync"

	"github.com/devmap/devmap/pkg/errors"
)

const (
	// PlotMargin is the space reserved around scatter plots for axes.
	PlotMargin = 60

	// MinPlotHeight is the smallest height a scatter plot is drawn at.
	MinPlotHeight = 400
)

// Viewport is a resizable drawing area.
type Viewport struct {
	mu        sync.RWMutex
	width     float64
	height    float64
	margin    float64
	aspect    func(width float64) float64
	listeners []func(width, height float64)
}

// NewViewport returns a viewport with a fixed size. Resize sets both
// dimensions explicitly.
func NewViewport(width, height, margin float64) (*Viewport, error) {
	if err := errors.ValidateViewport(width, height); err != nil {
		return nil, err
	}
	return &Viewport{width: width, height: height, margin: margin}, nil
}

// NewWorldViewport returns a viewport whose height follows its width at
// half the width.
func NewWorldViewport(width float64) (*Viewport, error) {
	return newDerived(width, 0, WorldHeight)
}

// NewPlotViewport returns a scatter-plot viewport: height is max(width/2,
// 400) and a margin is reserved for axes.
func NewPlotViewport(width float64) (*Viewport, error) {
	return newDerived(width, PlotMargin, PlotHeight)
}

// WorldHeight is the world map height for a given width.
func WorldHeight(width float64) float64 { return width * 0.5 }

// PlotHeight is the scatter plot height for a given width.
func PlotHeight(width float64) float64 { return math.Max(width/2, MinPlotHeight) }

func newDerived(width, margin float64, aspect func(float64) float64) (*Viewport, error) {
	height := aspect(width)
	if err := errors.ValidateViewport(width, height); err != nil {
		return nil, err
	}
	return &Viewport{width: width, height: height, margin: margin, aspect: aspect}, nil
}

// Size returns the current width and height.
func (v *Viewport) Size() (width, height float64) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.width, v.height
}

// Margin returns the reserved margin.
func (v *Viewport) Margin() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.margin
}

// Derived reports whether height is computed from width.
func (v *Viewport) Derived() bool { return v.aspect != nil }

// Resize changes the viewport size and notifies subscribers. For derived
// viewports the height argument is ignored and recomputed from width.
func (v *Viewport) Resize(width, height float64) error {
	if v.aspect != nil {
		height = v.aspect(width)
	}
	if err := errors.ValidateViewport(width, height); err != nil {
		return err
	}

	v.mu.Lock()
	v.width, v.height = width, height
	listeners := make([]func(float64, float64), len(v.listeners))
	copy(listeners, v.listeners)
	v.mu.Unlock()

	for _, fn := range listeners {
		fn(width, height)
	}
	return nil
}

// Subscribe registers fn to run after every successful resize.
func (v *Viewport) Subscribe(fn func(width, height float64)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.listeners = append(v.listeners, fn)
}
