package force

import "math"

// Parking position for points that cannot be projected.
const (
	SentinelX = -100
	SentinelY = -100
)

// Point is one simulated node. TargetX/TargetY are where the point wants to
// be; X/Y and VX/VY are owned by the simulation during a run.
type Point struct {
	ID       string  `json:"id"`
	TargetX  float64 `json:"target_x"`
	TargetY  float64 `json:"target_y"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	VX       float64 `json:"-"`
	VY       float64 `json:"-"`
	Sentinel bool    `json:"sentinel,omitempty"`
}

// NewPoint returns a point resting at its target. Non-finite targets yield
// a sentinel parked at (SentinelX, SentinelY).
func NewPoint(id string, x, y float64) Point {
	if !finite(x) || !finite(y) {
		return Point{
			ID: id, Sentinel: true,
			TargetX: SentinelX, TargetY: SentinelY,
			X: SentinelX, Y: SentinelY,
		}
	}
	return Point{ID: id, TargetX: x, TargetY: y, X: x, Y: y}
}

// Displacement is the distance between the point and its target.
func (p Point) Displacement() float64 {
	return math.Hypot(p.X-p.TargetX, p.Y-p.TargetY)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clonePoints(points []Point) []Point {
	out := make([]Point, len(points))
	copy(out, points)
	return out
}
