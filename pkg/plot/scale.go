package plot

import (
	"github.com/aclements/go-moremath/scale"

	"github.com/devmap/devmap/pkg/errors"
	"github.com/devmap/devmap/pkg/geo"
)

// Default domains of the scatter plots.
var (
	PopulationDomain     = [2]float64{100000, 1400000000}
	GDPDomain            = [2]float64{1000000000, 20000000000000}
	AccountsDomain       = [2]float64{620000, 5}
	FollowersDomain      = [2]float64{1, 100000}
	FollowerCountsDomain = [2]float64{1, 500000}
)

// Scale maps a data domain onto a pixel range, linearly or logarithmically.
// A domain given high-to-low produces an inverted axis.
type Scale struct {
	q      scale.Quantitative
	log    bool
	lo, hi float64
}

// NewScale builds a scale over [d0, d1] mapped onto [r0, r1].
func NewScale(log bool, d0, d1, r0, r1 float64) (*Scale, error) {
	if d0 == d1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "scale domain is empty")
	}
	if d0 > d1 {
		d0, d1 = d1, d0
		r0, r1 = r1, r0
	}
	s := &Scale{log: log, lo: r0, hi: r1}
	if log {
		l, err := scale.NewLog(d0, d1, 10)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "log scale [%g, %g]", d0, d1)
		}
		s.q = &l
	} else {
		s.q = &scale.Linear{Min: d0, Max: d1}
	}
	return s, nil
}

// Log reports whether the scale is logarithmic.
func (s *Scale) Log() bool { return s.log }

// Range returns the pixel range for the low and high ends of the domain.
func (s *Scale) Range() (lo, hi float64) { return s.lo, s.hi }

// SetRange changes the pixel range, e.g. after a resize.
func (s *Scale) SetRange(lo, hi float64) {
	if s.inverted() {
		lo, hi = hi, lo
	}
	s.lo, s.hi = lo, hi
}

func (s *Scale) inverted() bool { return s.lo > s.hi }

// Map converts a data value to pixels. Values outside a log scale's
// positive domain map to NaN.
func (s *Scale) Map(v float64) float64 {
	return s.lo + s.q.Map(v)*(s.hi-s.lo)
}

// Unmap converts pixels back to a data value.
func (s *Scale) Unmap(px float64) float64 {
	return s.q.Unmap((px - s.lo) / (s.hi - s.lo))
}

// Ticks returns at most max "nice" tick values in increasing order.
func (s *Scale) Ticks(max int) []float64 {
	major, _ := s.q.Ticks(scale.TickOptions{Max: max})
	return major
}

// Axes pairs the x and y scales of a plot laid out in a viewport.
type Axes struct {
	X *Scale
	Y *Scale
}

// NewAxes fits scales to a plot viewport, reserving its margin on every side.
func NewAxes(v *geo.Viewport, logX, logY bool, xDomain, yDomain [2]float64) (*Axes, error) {
	w, h := v.Size()
	m := v.Margin()
	x, err := NewScale(logX, xDomain[0], xDomain[1], m, w-m)
	if err != nil {
		return nil, err
	}
	y, err := NewScale(logY, yDomain[0], yDomain[1], m, h-m)
	if err != nil {
		return nil, err
	}
	return &Axes{X: x, Y: y}, nil
}

// Resize refits both scales to a new viewport size.
func (a *Axes) Resize(width, height, margin float64) {
	a.X.SetRange(margin, width-margin)
	a.Y.SetRange(margin, height-margin)
}

// Map converts a data point to pixels.
func (a *Axes) Map(p Point) (x, y float64) {
	return a.X.Map(p.X), a.Y.Map(p.Y)
}
