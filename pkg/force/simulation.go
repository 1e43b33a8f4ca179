package force

import (
	"math"
	"math/rand"

	"github.com/devmap/devmap/pkg/errors"
)

// Simulation defaults, matching d3-force.
const (
	DefaultAlphaMin        = 0.001
	DefaultVelocityDecay   = 0.4
	DefaultStrength        = 0.1
	DefaultCollideStrength = 1.0
	DefaultMaxTicks        = 1000
)

// DefaultAlphaDecay cools alpha from 1 to DefaultAlphaMin in 300 ticks.
var DefaultAlphaDecay = 1 - math.Pow(DefaultAlphaMin, 1.0/300)

// Config holds the simulation parameters. Zero values are replaced by
// defaults, except Radius and AlphaTarget where zero is meaningful.
type Config struct {
	// Radius is the collision radius. Zero disables collisions.
	Radius float64 `json:"radius"`

	Strength          float64 `json:"strength,omitempty"`
	CollideStrength   float64 `json:"collide_strength,omitempty"`
	CollideIterations int     `json:"collide_iterations,omitempty"`
	AlphaMin          float64 `json:"alpha_min,omitempty"`
	AlphaDecay        float64 `json:"alpha_decay,omitempty"`
	AlphaTarget       float64 `json:"alpha_target,omitempty"`
	VelocityDecay     float64 `json:"velocity_decay,omitempty"`

	// MaxTicks bounds a run that never cools, e.g. with AlphaTarget above
	// AlphaMin.
	MaxTicks int `json:"max_ticks,omitempty"`

	// Seed drives the jiggle applied to coincident points.
	Seed int64 `json:"seed,omitempty"`

	// Park is where sentinels rest. Nil parks them at
	// (SentinelX, SentinelY).
	Park *Position `json:"park,omitempty"`
}

// Position is a point in the simulation's coordinate space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (c Config) park() (x, y float64) {
	if c.Park == nil {
		return SentinelX, SentinelY
	}
	return c.Park.X, c.Park.Y
}

// DefaultConfig returns the d3-force defaults with the given collision radius.
func DefaultConfig(radius float64) Config {
	c := Config{Radius: radius}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	if c.Strength == 0 {
		c.Strength = DefaultStrength
	}
	if c.CollideStrength == 0 {
		c.CollideStrength = DefaultCollideStrength
	}
	if c.CollideIterations == 0 {
		c.CollideIterations = 1
	}
	if c.AlphaMin == 0 {
		c.AlphaMin = DefaultAlphaMin
	}
	if c.AlphaDecay == 0 {
		c.AlphaDecay = DefaultAlphaDecay
	}
	if c.VelocityDecay == 0 {
		c.VelocityDecay = DefaultVelocityDecay
	}
	if c.MaxTicks == 0 {
		c.MaxTicks = DefaultMaxTicks
	}
}

// Validate checks that every parameter is usable.
func (c Config) Validate() error {
	if !finite(c.Radius) || c.Radius < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "collision radius must be a non-negative number, got %g", c.Radius)
	}
	if c.AlphaDecay < 0 || c.AlphaDecay > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "alpha decay must be in [0, 1], got %g", c.AlphaDecay)
	}
	if c.VelocityDecay < 0 || c.VelocityDecay > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "velocity decay must be in [0, 1], got %g", c.VelocityDecay)
	}
	if c.CollideIterations < 0 || c.MaxTicks < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "iteration counts must not be negative")
	}
	if c.Park != nil && (!finite(c.Park.X) || !finite(c.Park.Y)) {
		return errors.New(errors.ErrCodeInvalidInput, "sentinel parking position must be finite")
	}
	return nil
}

// Simulation is a single-goroutine force simulation. It is not safe for
// concurrent use; Driver gives each run its own Simulation.
type Simulation struct {
	cfg    Config
	points []Point
	alpha  float64
	ticks  int
	rng    *rand.Rand
	grid   *grid
}

// NewSimulation copies points and prepares a simulation at alpha 1.
func NewSimulation(points []Point, cfg Config) (*Simulation, error) {
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Simulation{cfg: cfg, grid: newGrid()}
	s.Reset(points)
	return s, nil
}

// Reset restarts at alpha 1 with a fresh copy of points. Nothing from the
// previous run is kept.
func (s *Simulation) Reset(points []Point) {
	s.points = clonePoints(points)
	for i := range s.points {
		p := &s.points[i]
		if p.Sentinel || !finite(p.TargetX) || !finite(p.TargetY) {
			x, y := s.cfg.park()
			s.points[i] = Point{ID: p.ID, Sentinel: true, TargetX: x, TargetY: y, X: x, Y: y}
			continue
		}
		if !finite(p.X) || !finite(p.Y) {
			p.X, p.Y = p.TargetX, p.TargetY
		}
		p.VX, p.VY = 0, 0
	}
	s.alpha = 1
	s.ticks = 0
	s.rng = rand.New(rand.NewSource(s.cfg.Seed))
}

// SetRadius changes the collision radius for subsequent ticks.
func (s *Simulation) SetRadius(r float64) {
	if finite(r) && r >= 0 {
		s.cfg.Radius = r
	}
}

// Config returns the effective configuration.
func (s *Simulation) Config() Config { return s.cfg }

// Alpha returns the current temperature.
func (s *Simulation) Alpha() float64 { return s.alpha }

// Ticks returns the number of ticks since the last reset.
func (s *Simulation) Ticks() int { return s.ticks }

// Settled reports whether alpha has cooled below AlphaMin.
func (s *Simulation) Settled() bool { return s.alpha < s.cfg.AlphaMin }

// Exhausted reports whether the tick budget is spent.
func (s *Simulation) Exhausted() bool {
	return s.cfg.MaxTicks > 0 && s.ticks >= s.cfg.MaxTicks
}

// Points returns a copy of the current points.
func (s *Simulation) Points() []Point { return clonePoints(s.points) }

// Len returns the number of points.
func (s *Simulation) Len() int { return len(s.points) }

// Run ticks until the simulation settles or its tick budget is spent and
// returns the number of ticks taken.
func (s *Simulation) Run() int {
	start := s.ticks
	for !s.Settled() && !s.Exhausted() {
		s.Tick()
	}
	return s.ticks - start
}

// Tick advances the simulation by one step.
func (s *Simulation) Tick() {
	s.alpha += (s.cfg.AlphaTarget - s.alpha) * s.cfg.AlphaDecay

	k := s.cfg.Strength * s.alpha
	for i := range s.points {
		p := &s.points[i]
		if p.Sentinel {
			continue
		}
		p.VX += (p.TargetX - p.X) * k
		p.VY += (p.TargetY - p.Y) * k
	}

	for i := 0; i < s.cfg.CollideIterations; i++ {
		s.collide()
	}

	keep := 1 - s.cfg.VelocityDecay
	parkX, parkY := s.cfg.park()
	for i := range s.points {
		p := &s.points[i]
		if p.Sentinel {
			p.X, p.Y, p.VX, p.VY = parkX, parkY, 0, 0
			continue
		}
		p.VX *= keep
		p.VY *= keep
		p.X += p.VX
		p.Y += p.VY
	}
	s.ticks++
}

// collide separates every pair of points closer than twice the radius,
// looking ahead to their next positions. Both points move by half of the
// overlap scaled by the collide strength.
func (s *Simulation) collide() {
	r := s.cfg.Radius
	if r <= 0 {
		return
	}
	rr := r + r
	s.grid.reset(rr)
	for i := range s.points {
		p := &s.points[i]
		if !p.Sentinel {
			s.grid.insert(int32(i), p.X+p.VX, p.Y+p.VY)
		}
	}

	for i := range s.points {
		p := &s.points[i]
		if p.Sentinel {
			continue
		}
		xi, yi := p.X+p.VX, p.Y+p.VY
		s.grid.neighbours(xi, yi, func(j int32) {
			if int(j) <= i {
				return
			}
			q := &s.points[j]
			x := xi - q.X - q.VX
			y := yi - q.Y - q.VY
			l := x*x + y*y
			if l >= rr*rr {
				return
			}
			if x == 0 {
				x = s.jiggle()
				l += x * x
			}
			if y == 0 {
				y = s.jiggle()
				l += y * y
			}
			d := math.Sqrt(l)
			f := (rr - d) / d * s.cfg.CollideStrength * 0.5
			x *= f
			y *= f
			p.VX += x
			p.VY += y
			q.VX -= x
			q.VY -= y
		})
	}
}

func (s *Simulation) jiggle() float64 {
	return (s.rng.Float64() - 0.5) * 1e-6
}
