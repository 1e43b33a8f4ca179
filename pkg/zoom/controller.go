package zoom

import (
	"sync"

	"github.com/devmap/devmap/pkg/errors"
	"github.com/devmap/devmap/pkg/geo"
)

// DefaultFullSize lists the regions that fill the whole viewport when zoomed.
var DefaultFullSize = []string{
	"Australia",
	"Canada",
	"China",
	"France",
	"India",
	"Russia",
	"United States",
}

// Outcome describes what a ZoomTo call did.
type Outcome string

const (
	OutcomeZoomed  Outcome = "zoomed"
	OutcomeToggled Outcome = "toggled"
	OutcomeUnknown Outcome = "unknown"
	OutcomeInvalid Outcome = "invalid"
	OutcomeCleared Outcome = "cleared"
	OutcomeResized Outcome = "resized"
)

// State is the committed zoom: the transform and the region it shows.
// An empty Region means unzoomed, in which case Transform is the identity.
type State struct {
	Transform
	Region string `json:"region,omitempty"`
}

// Zoomed reports whether a region is shown.
func (s State) Zoomed() bool { return s.Region != "" }

// Zoomable is implemented by views that can zoom into a region.
type Zoomable interface {
	ZoomTo(region string) (State, error)
	Clear() State
	Resize(width, height float64) (State, error)
}

// Options configures a Controller.
type Options struct {
	// FullSize lists regions drawn with the full fill ratio.
	// Nil uses DefaultFullSize.
	FullSize []string

	// OnOutcome, when set, is called with the outcome of every operation.
	OnOutcome func(Outcome)
}

// Controller owns a State and mutates it in response to zoom requests.
// It is safe for concurrent use; listeners run outside the lock in commit
// order per caller.
type Controller struct {
	mu        sync.Mutex
	bounds    geo.BoundsProvider
	width     float64
	height    float64
	fullSize  map[string]bool
	state     State
	listeners []func(State)
	onOutcome func(Outcome)
}

// NewController returns an unzoomed controller for a viewport of the given size.
func NewController(bounds geo.BoundsProvider, width, height float64, opts Options) (*Controller, error) {
	if bounds == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "bounds provider is required")
	}
	if err := errors.ValidateViewport(width, height); err != nil {
		return nil, err
	}
	names := opts.FullSize
	if names == nil {
		names = DefaultFullSize
	}
	full := make(map[string]bool, len(names))
	for _, n := range names {
		full[n] = true
	}
	return &Controller{
		bounds:    bounds,
		width:     width,
		height:    height,
		fullSize:  full,
		state:     State{Transform: Identity()},
		onOutcome: opts.OnOutcome,
	}, nil
}

// State returns the committed state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// FullSize reports whether region uses the full fill ratio.
func (c *Controller) FullSize(region string) bool {
	return c.fullSize[region]
}

// Subscribe registers fn to receive every committed state.
func (c *Controller) Subscribe(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// ZoomTo zooms into region. Requesting the region already shown clears the
// zoom. Unknown regions and regions with unusable bounds also clear it; the
// returned error then carries UNKNOWN_REGION or INVALID_BOUNDS for callers
// that want to report it, but the state is always consistent.
func (c *Controller) ZoomTo(region string) (State, error) {
	c.mu.Lock()
	if region != "" && region == c.state.Region {
		s := c.commit(State{Transform: Identity()})
		c.mu.Unlock()
		c.notify(s, OutcomeToggled)
		return s, nil
	}
	s, outcome, err := c.apply(region)
	c.mu.Unlock()
	c.notify(s, outcome)
	return s, err
}

// Clear resets to the unzoomed state.
func (c *Controller) Clear() State {
	c.mu.Lock()
	s := c.commit(State{Transform: Identity()})
	c.mu.Unlock()
	c.notify(s, OutcomeCleared)
	return s
}

// Resize records the new viewport and re-applies the current region using
// bounds fetched after the resize. The bounds provider is expected to have
// re-projected for the new size before Resize is called.
func (c *Controller) Resize(width, height float64) (State, error) {
	if err := errors.ValidateViewport(width, height); err != nil {
		return c.State(), err
	}
	c.mu.Lock()
	c.width, c.height = width, height
	region := c.state.Region
	if region == "" {
		s := c.commit(c.state)
		c.mu.Unlock()
		c.notify(s, OutcomeResized)
		return s, nil
	}
	s, outcome, err := c.apply(region)
	c.mu.Unlock()
	if outcome == OutcomeZoomed {
		outcome = OutcomeResized
	}
	c.notify(s, outcome)
	return s, err
}

// apply computes and commits the state for region. Callers hold c.mu.
func (c *Controller) apply(region string) (State, Outcome, error) {
	b, ok := c.bounds.Bounds(region)
	if region == "" || !ok {
		s := c.commit(State{Transform: Identity()})
		return s, OutcomeUnknown, errors.New(errors.ErrCodeUnknownRegion, "unknown region %q", region)
	}
	t, err := Compute(b, c.width, c.height, c.fullSize[region])
	if err != nil {
		s := c.commit(State{Transform: Identity()})
		return s, OutcomeInvalid, err
	}
	return c.commit(State{Transform: t, Region: region}), OutcomeZoomed, nil
}

func (c *Controller) commit(s State) State {
	c.state = s
	return s
}

func (c *Controller) notify(s State, outcome Outcome) {
	c.mu.Lock()
	listeners := make([]func(State), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(s)
	}
	if c.onOutcome != nil {
		c.onOutcome(outcome)
	}
}

var _ Zoomable = (*Controller)(nil)
