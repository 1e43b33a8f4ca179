package geo

import "math"

// MaxLatitude is the latitude at which the Mercator square ends. Points
// further north or south are clamped to it, matching a clipped world map.
const MaxLatitude = 85.05112877980659

// Projection maps longitude/latitude in degrees to screen coordinates.
// Implementations return NaN coordinates when a point cannot be projected.
type Projection interface {
	Project(lng, lat float64) (x, y float64)
}

// Mercator is a spherical Mercator projection with a screen scale and
// translate. Y grows downward.
type Mercator struct {
	Scale      float64
	TranslateX float64
	TranslateY float64
}

// NewMercator fits the world map to a viewport: scale = width/6 and
// translate = (width*0.48, height/1.7).
func NewMercator(width, height float64) Mercator {
	return Mercator{
		Scale:      width / 6,
		TranslateX: width * 0.48,
		TranslateY: height / 1.7,
	}
}

// Project implements Projection.
func (m Mercator) Project(lng, lat float64) (x, y float64) {
	if !finite(lng) || !finite(lat) || math.Abs(lat) > 90 || !finite(m.Scale) || m.Scale <= 0 {
		return math.NaN(), math.NaN()
	}
	lat = math.Max(-MaxLatitude, math.Min(MaxLatitude, lat))
	lambda := lng * math.Pi / 180
	phi := lat * math.Pi / 180
	x = lambda*m.Scale + m.TranslateX
	y = m.TranslateY - math.Log(math.Tan(math.Pi/4+phi/2))*m.Scale
	return x, y
}

// ProjectFunc adapts a function to Projection.
type ProjectFunc func(lng, lat float64) (x, y float64)

// Project implements Projection.
func (f ProjectFunc) Project(lng, lat float64) (x, y float64) { return f(lng, lat) }

var _ Projection = Mercator{}
