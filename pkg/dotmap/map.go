package dotmap

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/devmap/devmap/pkg/errors"
	"github.com/devmap/devmap/pkg/force"
	"github.com/devmap/devmap/pkg/geo"
	"github.com/devmap/devmap/pkg/location"
	"github.com/devmap/devmap/pkg/observability"
	"github.com/devmap/devmap/pkg/snapshot"
	"github.com/devmap/devmap/pkg/zoom"
)

// Slider limits for the number of developers shown.
const (
	MinCount     = 16
	MaxCount     = 4096
	DefaultCount = 1024
)

// DefaultWidth is the viewport width used when none is given.
const DefaultWidth = 960

// Options configures a Map.
type Options struct {
	Width    float64
	Count    int
	FullSize []string

	// Scheduler paces live layout runs. Nil runs ticks back to back.
	Scheduler force.Scheduler
	Logger    *log.Logger

	// Seed and MaxTicks are passed to every layout run. Zero MaxTicks
	// uses the simulation default.
	Seed     int64
	MaxTicks int
}

// Map is a dot map of the most-followed developers. It is safe for
// concurrent use.
type Map struct {
	viewport *geo.Viewport
	regions  *geo.RegionIndex
	zoom     *zoom.Controller
	driver   *force.Driver
	users    []location.User
	seed     int64
	maxTicks int
	logger   *log.Logger

	// restartMu orders restarts so the last change wins.
	restartMu sync.Mutex

	mu       sync.Mutex
	count    int
	watchCtx context.Context
	watcher  force.Observer
	handle   *force.Handle
	runs     []liveRun
}

// keptRuns is how many recent live runs Layout can convert frames for.
const keptRuns = 4

// liveRun is the view a live run started from.
type liveRun struct {
	id string
	in layoutInput
}

// ClickResult is what a click on a developer did: either opened a profile
// or changed the zoom.
type ClickResult struct {
	URL  string     `json:"url,omitempty"`
	Zoom zoom.State `json:"zoom"`
}

// New creates a map over users, ordered most-followed first. The region
// index is forked so several maps may share one parsed world map.
func New(regions *geo.RegionIndex, users []location.User, opts Options) (*Map, error) {
	if regions == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "region index is required")
	}
	if opts.Width == 0 {
		opts.Width = DefaultWidth
	}
	if opts.Count == 0 {
		opts.Count = DefaultCount
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	vp, err := geo.NewWorldViewport(opts.Width)
	if err != nil {
		return nil, err
	}
	w, h := vp.Size()

	m := &Map{
		viewport: vp,
		regions:  regions.Fork(),
		users:    users,
		seed:     opts.Seed,
		maxTicks: opts.MaxTicks,
		logger:   opts.Logger,
		count:    clampCount(opts.Count),
		driver: force.NewDriver(force.DriverOptions{
			Scheduler: opts.Scheduler,
			Logger:    opts.Logger,
		}),
	}
	m.regions.Reproject(geo.NewMercator(w, h))
	vp.Subscribe(func(w, h float64) {
		m.regions.Reproject(geo.NewMercator(w, h))
	})

	m.zoom, err = zoom.NewController(m.regions, w, h, zoom.Options{
		FullSize: opts.FullSize,
		OnOutcome: func(o zoom.Outcome) {
			observability.Zoom().OnZoom(context.Background(), string(o))
		},
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func clampCount(n int) int {
	return min(max(n, MinCount), MaxCount)
}

// Count returns the number of developers shown.
func (m *Map) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

// Size returns the viewport size.
func (m *Map) Size() (width, height float64) { return m.viewport.Size() }

// Zoom returns the committed zoom state.
func (m *Map) Zoom() zoom.State { return m.zoom.State() }

// Regions returns the map's region index.
func (m *Map) Regions() *geo.RegionIndex { return m.regions }

// SetCount changes the number of developers shown, clamped to
// [MinCount, MaxCount], and returns the value applied.
func (m *Map) SetCount(n int) int {
	n = clampCount(n)
	m.mu.Lock()
	m.count = n
	m.mu.Unlock()
	m.restart()
	return n
}

// ZoomTo zooms into region, or out if it is already shown. See
// zoom.Controller.ZoomTo for the error semantics.
func (m *Map) ZoomTo(region string) (zoom.State, error) {
	s, err := m.zoom.ZoomTo(region)
	m.restart()
	return s, err
}

// Clear resets the zoom.
func (m *Map) Clear() zoom.State {
	s := m.zoom.Clear()
	m.restart()
	return s
}

// Resize changes the viewport width. The height follows the width and the
// current region is re-fitted using bounds projected for the new size.
func (m *Map) Resize(width float64) (zoom.State, error) {
	if err := m.viewport.Resize(width, 0); err != nil {
		return m.zoom.State(), err
	}
	w, h := m.viewport.Size()
	s, err := m.zoom.Resize(w, h)
	m.restart()
	return s, err
}

// Click handles a click on the developer with the given login. A
// developer in the zoomed country opens their profile; any other zooms
// into their country.
func (m *Map) Click(login string) (ClickResult, error) {
	u, ok := m.displayed(login)
	if !ok {
		return ClickResult{Zoom: m.zoom.State()}, errors.New(errors.ErrCodeNotFound, "developer %q is not shown", login)
	}
	if s := m.zoom.State(); s.Zoomed() && s.Region == u.Country {
		return ClickResult{URL: u.ProfileURL(), Zoom: s}, nil
	}
	s, err := m.ZoomTo(u.Country)
	return ClickResult{Zoom: s}, err
}

func (m *Map) displayed(login string) (location.User, bool) {
	n := m.Count()
	for i := 0; i < n && i < len(m.users); i++ {
		if m.users[i].Login == login {
			return m.users[i], true
		}
	}
	return location.User{}, false
}

// layoutInput is everything a run needs, captured at one instant.
type layoutInput struct {
	width, height float64
	count         int
	pointRadius   float64
	users         []location.User
	points        []force.Point
	cfg           force.Config
	zoom          zoom.State
}

func (m *Map) prepare() layoutInput {
	w, h := m.viewport.Size()
	s := m.zoom.State()
	n := m.Count()

	in := layoutInput{
		width:       w,
		height:      h,
		count:       n,
		pointRadius: force.PointRadius(w),
		users:       location.TopUsers(m.users, n),
		zoom:        s,
	}
	proj := geo.NewMercator(w, h)
	in.points = make([]force.Point, len(in.users))
	for i, u := range in.users {
		x, y := proj.Project(u.Lng, u.Lat)
		in.points[i] = force.NewPoint(u.Login, x, y)
	}
	in.cfg = force.DefaultConfig(force.CollisionRadius(in.pointRadius, n, s.Scale))
	in.cfg.Seed = m.seed
	if m.maxTicks > 0 {
		in.cfg.MaxTicks = m.maxTicks
	}
	in.cfg.Park = parking(s)
	for i := range in.points {
		if p := &in.points[i]; p.Sentinel {
			p.X, p.Y = in.cfg.Park.X, in.cfg.Park.Y
			p.TargetX, p.TargetY = p.X, p.Y
		}
	}
	return in
}

// parking returns the projected position that s maps onto the screen
// point (SentinelX, SentinelY), so unresolved dots stay off-canvas at any
// zoom.
func parking(s zoom.State) *force.Position {
	scale := s.Scale
	if !(scale > 0) {
		scale = 1
	}
	return &force.Position{
		X: (force.SentinelX - s.TranslateX) / scale,
		Y: (force.SentinelY - s.TranslateY) / scale,
	}
}

// Points returns the layout's starting points: each developer at their
// projected location, unresolved ones parked off-canvas for the current
// zoom.
func (m *Map) Points() []force.Point {
	return m.prepare().points
}

// Settle runs the layout to completion and returns the positioned dots.
// obs, if not nil, sees every frame. A watcher attached with Watch is
// superseded.
func (m *Map) Settle(ctx context.Context, obs force.Observer) (*snapshot.Layout, error) {
	in := m.prepare()
	f, err := m.driver.Run(ctx, in.points, in.cfg, obs)
	if err != nil {
		return nil, err
	}
	m.logger.Debug("dot map settled", "points", len(f.Points), "ticks", f.Tick, "region", in.zoom.Region)
	return in.layout(f), nil
}

// Watch starts a live layout reporting to obs and restarts it after every
// change until ctx is done or Unwatch is called. Frames of recent runs may
// be converted with Layout.
func (m *Map) Watch(ctx context.Context, obs force.Observer) {
	m.mu.Lock()
	m.watchCtx, m.watcher = ctx, obs
	m.mu.Unlock()
	m.restart()
}

// Unwatch detaches the watcher and stops its run.
func (m *Map) Unwatch() {
	m.mu.Lock()
	m.watchCtx, m.watcher, m.handle, m.runs = nil, nil, nil, nil
	m.mu.Unlock()
	m.driver.Stop()
}

// Running reports whether a layout run is in flight.
func (m *Map) Running() bool { return m.driver.Running() }

// Wait blocks until the current live run stops and returns its last frame.
func (m *Map) Wait() (force.Frame, error) {
	m.mu.Lock()
	h := m.handle
	m.mu.Unlock()
	if h == nil {
		return force.Frame{}, errors.New(errors.ErrCodeNotFound, "no layout is running")
	}
	return h.Wait()
}

// Layout converts a frame of a live run to dots, using the view that run
// started from. Frames of runs superseded long ago are NOT_FOUND.
func (m *Map) Layout(f force.Frame) (*snapshot.Layout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.runs) - 1; i >= 0; i-- {
		if m.runs[i].id == f.RunID {
			return m.runs[i].in.layout(f), nil
		}
	}
	return nil, errors.New(errors.ErrCodeNotFound, "layout run %q is not known", f.RunID)
}

func (m *Map) restart() {
	m.restartMu.Lock()
	defer m.restartMu.Unlock()

	m.mu.Lock()
	ctx, obs := m.watchCtx, m.watcher
	m.mu.Unlock()
	if obs == nil {
		return
	}
	if ctx.Err() != nil {
		m.Unwatch()
		return
	}

	in := m.prepare()
	h, err := m.driver.Start(ctx, in.points, in.cfg, obs)
	if err != nil {
		m.logger.Error("restart layout", "err", err)
		return
	}
	m.mu.Lock()
	m.handle = h
	m.runs = append(m.runs, liveRun{id: h.ID(), in: in})
	if len(m.runs) > keptRuns {
		m.runs = m.runs[len(m.runs)-keptRuns:]
	}
	m.mu.Unlock()
}

func (in layoutInput) layout(f force.Frame) *snapshot.Layout {
	l := &snapshot.Layout{
		RunID:           f.RunID,
		Width:           in.width,
		Height:          in.height,
		Count:           in.count,
		PointRadius:     in.pointRadius,
		StrokeWidth:     force.StrokeWidth(in.width),
		CollisionRadius: in.cfg.Radius,
		Ticks:           f.Tick,
		Zoom:            in.zoom,
		Dots:            make([]snapshot.Dot, 0, len(f.Points)),
	}
	byLogin := make(map[string]location.User, len(in.users))
	for _, u := range in.users {
		byLogin[u.Login] = u
	}
	for _, p := range f.Points {
		u := byLogin[p.ID]
		l.Dots = append(l.Dots, snapshot.Dot{
			Login:     p.ID,
			Country:   u.Country,
			Followers: u.Followers,
			X:         p.X,
			Y:         p.Y,
			TargetX:   p.TargetX,
			TargetY:   p.TargetY,
			Hidden:    p.Sentinel,
		})
	}
	return l
}
