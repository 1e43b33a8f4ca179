package plot

import (
	"math"
	"sort"

	"github.com/aclements/go-moremath/fit"
	"github.com/aclements/go-moremath/stats"
	"github.com/aclements/go-moremath/vec"

	"github.com/devmap/devmap/pkg/errors"
)

// Point is a labelled data point.
type Point struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label,omitempty"`
}

// Trend is a fitted straight line, in linear or log-log space.
type Trend struct {
	// Points are the fitted values at each input, in data space, sorted by Y.
	Points []Point `json:"points"`

	// Slope and Intercept describe the fit in the regression space: log-log
	// when LogLog is set, and with x and y exchanged when Swapped is set.
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`

	// R2 is the coefficient of determination in the regression space.
	R2 float64 `json:"r2"`

	LogLog  bool `json:"loglog"`
	Swapped bool `json:"swapped"`
}

// Trendline fits a least-squares line through points.
//
// With loglog the fit runs on ln(x), ln(y) and the fitted values are mapped
// back with exp, which is a power law in data space; points with a
// non-positive coordinate are ignored. With swap, x is regressed on y
// instead of y on x, which suits plots where the horizontal variable is the
// better-determined one.
func Trendline(points []Point, loglog, swap bool) (Trend, error) {
	xs := make([]float64, 0, len(points))
	ys := make([]float64, 0, len(points))
	for _, p := range points {
		if !finite(p.X) || !finite(p.Y) {
			continue
		}
		if loglog && (p.X <= 0 || p.Y <= 0) {
			continue
		}
		xs = append(xs, p.X)
		ys = append(ys, p.Y)
	}
	if len(xs) < 2 {
		return Trend{}, errors.New(errors.ErrCodeInvalidInput, "trend line needs at least two usable points, got %d", len(xs))
	}

	if loglog {
		xs = vec.Map(math.Log, xs)
		ys = vec.Map(math.Log, ys)
	}
	if swap {
		xs, ys = ys, xs
	}
	if stats.Variance(xs) == 0 {
		return Trend{}, errors.New(errors.ErrCodeInvalidInput, "trend line needs at least two distinct values")
	}

	r := fit.PolynomialRegression(xs, ys, nil, 1)
	t := Trend{
		Intercept: r.Coefficients[0],
		Slope:     r.Coefficients[1],
		LogLog:    loglog,
		Swapped:   swap,
		Points:    make([]Point, len(xs)),
	}

	fitted := vec.Map(r.F, xs)
	t.R2 = determination(ys, fitted)

	for i := range xs {
		x, y := xs[i], fitted[i]
		if swap {
			x, y = y, x
		}
		if loglog {
			x, y = math.Exp(x), math.Exp(y)
		}
		t.Points[i] = Point{X: x, Y: y}
	}
	sort.SliceStable(t.Points, func(i, j int) bool { return t.Points[i].Y < t.Points[j].Y })
	return t, nil
}

// At evaluates the trend at data-space x. For swapped fits this inverts the
// regression line; a zero slope yields NaN.
func (t Trend) At(x float64) float64 {
	if t.LogLog {
		if x <= 0 {
			return math.NaN()
		}
		x = math.Log(x)
	}
	var y float64
	if t.Swapped {
		if t.Slope == 0 {
			return math.NaN()
		}
		y = (x - t.Intercept) / t.Slope
	} else {
		y = t.Intercept + t.Slope*x
	}
	if t.LogLog {
		return math.Exp(y)
	}
	return y
}

// determination returns 1 - SSres/SStot.
func determination(ys, fitted []float64) float64 {
	mean := stats.Mean(ys)
	var ssRes, ssTot float64
	for i, y := range ys {
		ssRes += (y - fitted[i]) * (y - fitted[i])
		ssTot += (y - mean) * (y - mean)
	}
	if ssTot == 0 {
		return 1
	}
	return 1 - ssRes/ssTot
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
