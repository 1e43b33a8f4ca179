package force

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/devmap/devmap/pkg/observability"
)

// ErrSuperseded is returned by Driver.Run when a newer run replaced it.
var ErrSuperseded = errors.New("layout run superseded")

// Frame is a copy of the simulation state handed to observers.
type Frame struct {
	RunID  string  `json:"run_id"`
	Tick   int     `json:"tick"`
	Alpha  float64 `json:"alpha"`
	Radius float64 `json:"radius"`
	Points []Point `json:"points"`
}

// Observer receives frames from a run. OnTick is called after every tick
// and OnSettled once when the run completes. Superseded or cancelled runs
// never call OnSettled.
type Observer interface {
	OnTick(Frame)
	OnSettled(Frame)
}

// ObserverFuncs adapts functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Tick    func(Frame)
	Settled func(Frame)
}

// OnTick implements Observer.
func (o ObserverFuncs) OnTick(f Frame) {
	if o.Tick != nil {
		o.Tick(f)
	}
}

// OnSettled implements Observer.
func (o ObserverFuncs) OnSettled(f Frame) {
	if o.Settled != nil {
		o.Settled(f)
	}
}

// DriverOptions configures a Driver.
type DriverOptions struct {
	// Scheduler paces ticks. Nil runs ticks back to back.
	Scheduler Scheduler

	// Logger receives run summaries at debug level. Nil discards.
	Logger *log.Logger
}

// Driver runs one simulation at a time. Starting a run supersedes the run
// in flight. A Driver is safe for concurrent use.
type Driver struct {
	sched  Scheduler
	logger *log.Logger

	mu      sync.Mutex
	current *run
}

type run struct {
	id     string
	cancel context.CancelCauseFunc
	done   chan struct{}
}

// NewDriver creates a driver.
func NewDriver(opts DriverOptions) *Driver {
	d := &Driver{sched: opts.Scheduler, logger: opts.Logger}
	if d.sched == nil {
		d.sched = ImmediateScheduler{}
	}
	if d.logger == nil {
		d.logger = log.New(io.Discard)
	}
	return d
}

// Handle tracks a run started with Start.
type Handle struct {
	id    string
	done  chan struct{}
	frame Frame
	err   error
}

// ID returns the run identifier.
func (h *Handle) ID() string { return h.id }

// Done is closed when the run has stopped.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the run stops and returns its last frame and error.
func (h *Handle) Wait() (Frame, error) {
	<-h.done
	return h.frame, h.err
}

// Run simulates points with cfg until they settle, the tick budget is
// spent, ctx is done, or another run supersedes this one. It blocks until
// then and returns the last frame. A superseded run returns ErrSuperseded;
// a cancelled run returns the context error.
func (d *Driver) Run(ctx context.Context, points []Point, cfg Config, obs Observer) (Frame, error) {
	h, err := d.Start(ctx, points, cfg, obs)
	if err != nil {
		return Frame{}, err
	}
	return h.Wait()
}

// Start supersedes the run in flight and begins a new one in the
// background. The previous run has fully stopped when Start returns, so
// runs started from one goroutine are ordered.
func (d *Driver) Start(ctx context.Context, points []Point, cfg Config, obs Observer) (*Handle, error) {
	sim, err := NewSimulation(points, cfg)
	if err != nil {
		return nil, err
	}
	if obs == nil {
		obs = ObserverFuncs{}
	}

	r, runCtx := d.begin(ctx)
	h := &Handle{id: r.id, done: r.done}
	go func() {
		defer d.end(r)
		h.frame, h.err = d.loop(ctx, runCtx, r, sim, obs)
	}()
	return h, nil
}

func (d *Driver) loop(ctx, runCtx context.Context, r *run, sim *Simulation, obs Observer) (Frame, error) {
	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, r.id, sim.Len())
	start := time.Now()

	for !sim.Settled() && !sim.Exhausted() {
		if err := d.sched.Wait(runCtx); err != nil {
			return d.stopped(ctx, runCtx, r, sim)
		}
		// The scheduler may deliver a tick concurrently with cancellation.
		if runCtx.Err() != nil {
			return d.stopped(ctx, runCtx, r, sim)
		}
		sim.Tick()
		hooks.OnLayoutTick(ctx, r.id, sim.Alpha())
		obs.OnTick(frameOf(r.id, sim))
	}

	f := frameOf(r.id, sim)
	obs.OnSettled(f)
	elapsed := time.Since(start)
	hooks.OnLayoutSettled(ctx, r.id, sim.Ticks(), elapsed)
	d.logger.Debug("layout settled", "run", r.id, "points", sim.Len(), "ticks", sim.Ticks(), "duration", elapsed)
	return f, nil
}

// Stop cancels the run in flight, if any, and waits for it to exit.
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.supersedeLocked()
}

// Running reports whether a run is in flight.
func (d *Driver) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current != nil
}

// begin supersedes any run in flight and registers a new one.
func (d *Driver) begin(ctx context.Context) (*run, context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.supersedeLocked()

	runCtx, cancel := context.WithCancelCause(ctx)
	r := &run{id: uuid.NewString(), cancel: cancel, done: make(chan struct{})}
	d.current = r
	return r, runCtx
}

// supersedeLocked cancels the current run and waits for it. The lock is
// released while waiting so the run can deregister itself.
func (d *Driver) supersedeLocked() {
	for d.current != nil {
		prev := d.current
		prev.cancel(ErrSuperseded)
		d.mu.Unlock()
		<-prev.done
		d.mu.Lock()
	}
}

func (d *Driver) end(r *run) {
	d.mu.Lock()
	if d.current == r {
		d.current = nil
	}
	d.mu.Unlock()
	r.cancel(nil)
	close(r.done)
}

func (d *Driver) stopped(ctx, runCtx context.Context, r *run, sim *Simulation) (Frame, error) {
	f := frameOf(r.id, sim)
	if errors.Is(context.Cause(runCtx), ErrSuperseded) {
		observability.Layout().OnLayoutSuperseded(ctx, r.id, sim.Ticks())
		d.logger.Debug("layout superseded", "run", r.id, "ticks", sim.Ticks())
		return f, ErrSuperseded
	}
	return f, runCtx.Err()
}

func frameOf(id string, sim *Simulation) Frame {
	return Frame{
		RunID:  id,
		Tick:   sim.Ticks(),
		Alpha:  sim.Alpha(),
		Radius: sim.Config().Radius,
		Points: sim.Points(),
	}
}
