package zoom

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devmap/devmap/pkg/errors"
	"github.com/devmap/devmap/pkg/geo"
)

func TestComputeSquareCase(t *testing.T) {
	tr, err := Compute(geo.Bounds{X: 10, Y: 10, Width: 50, Height: 50}, 500, 500, false)
	require.NoError(t, err)
	assert.Equal(t, 5.0, tr.Scale)
	assert.InDelta(t, 75, tr.TranslateX, 1e-9)
	assert.InDelta(t, 75, tr.TranslateY, 1e-9)
}

func TestComputeBranches(t *testing.T) {
	tests := []struct {
		name     string
		b        geo.Bounds
		vw, vh   float64
		fullSize bool
		want     Transform
	}{
		{
			// widthRatio 10 > heightRatio 5: height constrains, centred on x.
			name: "tall region",
			b:    geo.Bounds{X: 0, Y: 0, Width: 50, Height: 100},
			vw:   500, vh: 500, fullSize: true,
			want: Transform{Scale: 5, TranslateX: 125, TranslateY: 0},
		},
		{
			// widthRatio 5 < heightRatio 10: width constrains, centred on y.
			name: "wide region",
			b:    geo.Bounds{X: 0, Y: 0, Width: 100, Height: 50},
			vw:   500, vh: 500, fullSize: true,
			want: Transform{Scale: 5, TranslateX: 0, TranslateY: 125},
		},
		{
			name: "partial fill offsets origin",
			b:    geo.Bounds{X: 100, Y: 40, Width: 100, Height: 50},
			vw:   500, vh: 500, fullSize: false,
			want: Transform{Scale: 2.5, TranslateX: -125, TranslateY: -37.5 + 125},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(tt.b, tt.vw, tt.vh, tt.fullSize)
			require.NoError(t, err)
			assert.InDelta(t, tt.want.Scale, got.Scale, 1e-9)
			assert.InDelta(t, tt.want.TranslateX, got.TranslateX, 1e-9)
			assert.InDelta(t, tt.want.TranslateY, got.TranslateY, 1e-9)
		})
	}
}

func TestComputeFillRatio(t *testing.T) {
	b := geo.Bounds{X: 20, Y: 30, Width: 40, Height: 80}
	full, err := Compute(b, 800, 400, true)
	require.NoError(t, err)
	half, err := Compute(b, 800, 400, false)
	require.NoError(t, err)
	assert.InDelta(t, full.Scale/2, half.Scale, 1e-9)
}

func TestComputeFitsConstrainingAxis(t *testing.T) {
	// A full-size region spans exactly the viewport height once transformed.
	b := geo.Bounds{X: 200, Y: 50, Width: 100, Height: 120}
	tr, err := Compute(b, 960, 480, true)
	require.NoError(t, err)
	_, top := tr.Apply(b.X, b.Y)
	_, bottom := tr.Apply(b.X, b.Y+b.Height)
	assert.InDelta(t, 0, top, 1e-9)
	assert.InDelta(t, 480, bottom, 1e-9)
}

func TestComputeInvalid(t *testing.T) {
	cases := []struct {
		name   string
		b      geo.Bounds
		vw, vh float64
	}{
		{"zero width", geo.Bounds{Width: 0, Height: 10}, 100, 100},
		{"negative height", geo.Bounds{Width: 10, Height: -1}, 100, 100},
		{"nan", geo.Bounds{X: math.NaN(), Width: 10, Height: 10}, 100, 100},
		{"inf", geo.Bounds{Width: math.Inf(1), Height: 10}, 100, 100},
		{"zero viewport", geo.Bounds{Width: 10, Height: 10}, 0, 100},
		{"nan viewport", geo.Bounds{Width: 10, Height: 10}, 100, math.NaN()},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Compute(c.b, c.vw, c.vh, false)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidBounds), "got %v", err)
		})
	}
}

func TestIdentity(t *testing.T) {
	id := Identity()
	assert.True(t, id.IsIdentity())
	x, y := id.Apply(3, 4)
	assert.Equal(t, 3.0, x)
	assert.Equal(t, 4.0, y)
	assert.Equal(t, "translate(0,0)scale(1)", id.String())
}

type staticBounds map[string]geo.Bounds

func (s staticBounds) Bounds(region string) (geo.Bounds, bool) {
	b, ok := s[region]
	return b, ok
}

func newController(t *testing.T, bounds geo.BoundsProvider) *Controller {
	t.Helper()
	c, err := NewController(bounds, 500, 500, Options{})
	require.NoError(t, err)
	return c
}

func TestControllerToggle(t *testing.T) {
	c := newController(t, staticBounds{"Peru": {X: 10, Y: 10, Width: 50, Height: 50}})

	s, err := c.ZoomTo("Peru")
	require.NoError(t, err)
	assert.Equal(t, "Peru", s.Region)
	assert.Equal(t, 5.0, s.Scale)

	s, err = c.ZoomTo("Peru")
	require.NoError(t, err)
	assert.False(t, s.Zoomed())
	assert.True(t, s.IsIdentity())
}

func TestControllerUnknownRegion(t *testing.T) {
	c := newController(t, staticBounds{"Peru": {X: 10, Y: 10, Width: 50, Height: 50}})
	_, err := c.ZoomTo("Peru")
	require.NoError(t, err)

	s, err := c.ZoomTo("Atlantis")
	assert.True(t, errors.Is(err, errors.ErrCodeUnknownRegion))
	assert.Equal(t, State{Transform: Identity()}, s)
	assert.Equal(t, s, c.State())
}

func TestControllerInvalidBoundsResets(t *testing.T) {
	c := newController(t, staticBounds{
		"Peru": {X: 10, Y: 10, Width: 50, Height: 50},
		"Dot":  {X: 10, Y: 10, Width: 0, Height: 0},
	})
	_, err := c.ZoomTo("Peru")
	require.NoError(t, err)

	s, err := c.ZoomTo("Dot")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidBounds))
	assert.False(t, s.Zoomed())
}

func TestControllerFullSize(t *testing.T) {
	b := geo.Bounds{X: 0, Y: 0, Width: 100, Height: 100}
	c := newController(t, staticBounds{"Canada": b, "Chile": b})

	canada, err := c.ZoomTo("Canada")
	require.NoError(t, err)
	chile, err := c.ZoomTo("Chile")
	require.NoError(t, err)
	assert.InDelta(t, canada.Scale/2, chile.Scale, 1e-9)

	custom, err := NewController(staticBounds{"Chile": b}, 500, 500, Options{FullSize: []string{"Chile"}})
	require.NoError(t, err)
	assert.True(t, custom.FullSize("Chile"))
	assert.False(t, custom.FullSize("Canada"))
}

// resizable re-derives bounds from the viewport width, like a projection
// refitted to the new size.
type resizable struct {
	mu    sync.Mutex
	width float64
}

func (r *resizable) Bounds(region string) (geo.Bounds, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if region != "Peru" {
		return geo.Bounds{}, false
	}
	k := r.width / 500
	return geo.Bounds{X: 10 * k, Y: 10 * k, Width: 50 * k, Height: 50 * k}, true
}

func TestControllerResizeUsesFreshBounds(t *testing.T) {
	p := &resizable{width: 500}
	c := newController(t, p)
	before, err := c.ZoomTo("Peru")
	require.NoError(t, err)

	p.mu.Lock()
	p.width = 1000
	p.mu.Unlock()
	after, err := c.Resize(1000, 1000)
	require.NoError(t, err)

	assert.Equal(t, "Peru", after.Region)
	assert.InDelta(t, before.Scale, after.Scale, 1e-9, "bounds and viewport scaled together")
	assert.InDelta(t, before.TranslateX*2, after.TranslateX, 1e-9)

	stale, err := Compute(geo.Bounds{X: 10, Y: 10, Width: 50, Height: 50}, 1000, 1000, false)
	require.NoError(t, err)
	assert.NotEqual(t, stale.Scale, after.Scale)
}

func TestControllerResizeUnzoomed(t *testing.T) {
	c := newController(t, staticBounds{})
	s, err := c.Resize(800, 400)
	require.NoError(t, err)
	assert.True(t, s.IsIdentity())

	_, err = c.Resize(-1, 400)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidViewport))
}

func TestControllerListeners(t *testing.T) {
	var outcomes []Outcome
	c, err := NewController(staticBounds{"Peru": {X: 10, Y: 10, Width: 50, Height: 50}}, 500, 500,
		Options{OnOutcome: func(o Outcome) { outcomes = append(outcomes, o) }})
	require.NoError(t, err)

	var states []State
	c.Subscribe(func(s State) { states = append(states, s) })

	_, _ = c.ZoomTo("Peru")
	_, _ = c.Resize(600, 600)
	_, _ = c.ZoomTo("Peru")
	_, _ = c.ZoomTo("Nowhere")
	c.Clear()

	require.Len(t, states, 5)
	assert.Equal(t, "Peru", states[0].Region)
	assert.Equal(t, "Peru", states[1].Region)
	assert.False(t, states[2].Zoomed())
	assert.Equal(t, []Outcome{OutcomeZoomed, OutcomeResized, OutcomeToggled, OutcomeUnknown, OutcomeCleared}, outcomes)
}

func TestNewControllerErrors(t *testing.T) {
	_, err := NewController(nil, 100, 100, Options{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
	_, err = NewController(staticBounds{}, 0, 100, Options{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidViewport))
}
