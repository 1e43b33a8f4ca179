package plot

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devmap/devmap/pkg/errors"
	"github.com/devmap/devmap/pkg/geo"
	"github.com/devmap/devmap/pkg/location"
)

func TestTrendlineRecoversLine(t *testing.T) {
	var pts []Point
	for x := 1.0; x <= 10; x++ {
		pts = append(pts, Point{X: x, Y: 3*x + 2})
	}
	tr, err := Trendline(pts, false, false)
	require.NoError(t, err)
	assert.InDelta(t, 3, tr.Slope, 1e-9)
	assert.InDelta(t, 2, tr.Intercept, 1e-9)
	assert.InDelta(t, 1, tr.R2, 1e-9)
	assert.InDelta(t, 32, tr.At(10), 1e-9)
	for i := 1; i < len(tr.Points); i++ {
		assert.LessOrEqual(t, tr.Points[i-1].Y, tr.Points[i].Y)
	}
}

func TestTrendlineLogLogPowerLaw(t *testing.T) {
	var pts []Point
	for _, x := range []float64{1, 10, 100, 1000, 10000} {
		pts = append(pts, Point{X: x, Y: 5 * math.Pow(x, 0.5)})
	}
	pts = append(pts, Point{X: 0, Y: 3}) // ignored in log space

	tr, err := Trendline(pts, true, false)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, tr.Slope, 1e-9)
	assert.InDelta(t, math.Log(5), tr.Intercept, 1e-9)
	assert.Len(t, tr.Points, 5)
	assert.InDelta(t, 500, tr.At(10000), 1e-6)
}

func TestTrendlineSwapped(t *testing.T) {
	pts := []Point{{X: 2, Y: 1}, {X: 4, Y: 2}, {X: 6, Y: 3}}
	tr, err := Trendline(pts, false, true)
	require.NoError(t, err)
	// x = 2y, so regressing x on y gives slope 2.
	assert.InDelta(t, 2, tr.Slope, 1e-9)
	assert.InDelta(t, 0, tr.Intercept, 1e-9)
	assert.InDelta(t, 1.5, tr.At(3), 1e-9)
	for i, p := range tr.Points {
		assert.InDelta(t, pts[i].X, p.X, 1e-9)
		assert.InDelta(t, pts[i].Y, p.Y, 1e-9)
	}
}

func TestTrendlineNoisyR2(t *testing.T) {
	pts := []Point{{X: 1, Y: 1}, {X: 2, Y: 3}, {X: 3, Y: 2}, {X: 4, Y: 5}}
	tr, err := Trendline(pts, false, false)
	require.NoError(t, err)
	assert.Greater(t, tr.R2, 0.0)
	assert.Less(t, tr.R2, 1.0)
}

func TestTrendlineErrors(t *testing.T) {
	_, err := Trendline([]Point{{X: 1, Y: 1}}, false, false)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	_, err = Trendline([]Point{{X: 1, Y: 1}, {X: 1, Y: 2}}, false, false)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "vertical data cannot be fitted")

	_, err = Trendline([]Point{{X: -1, Y: 1}, {X: 0, Y: 2}}, true, false)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestParetoFrontier(t *testing.T) {
	pts := []Point{
		{X: 1, Y: 5, Label: "a"},
		{X: 2, Y: 3, Label: "b"},
		{X: 3, Y: 8, Label: "c"},
		{X: 4, Y: 2, Label: "d"},
		{X: 5, Y: 9, Label: "e"},
		{X: 0, Y: 100, Label: "zero"},
	}
	upper, lower := ParetoFrontier(pts)
	assert.Equal(t, []string{"a", "c", "e"}, labels(upper))
	assert.Equal(t, []string{"e", "d"}, labels(lower))

	got := FrontierLabels(pts)
	assert.Equal(t, map[string]bool{"a": true, "c": true, "e": true, "d": true}, got)
}

func labels(pts []Point) []string {
	out := make([]string, len(pts))
	for i, p := range pts {
		out[i] = p.Label
	}
	return out
}

func TestCumulativeDistribution(t *testing.T) {
	buckets := []location.FollowerBucket{
		{Country: "India", Followers: 100, Count: 1},
		{Country: "China", Followers: 50, Count: 7},
		{Country: "India", Followers: 10, Count: 4},
		{Country: "India", Followers: 0, Count: 20},
	}
	got := CumulativeDistribution(buckets, "India")
	require.Len(t, got, 3)
	assert.Equal(t, []float64{1, 5, 25}, []float64{got[0].Y, got[1].Y, got[2].Y})
	assert.Equal(t, 10.0, got[1].X)
	assert.Equal(t, 4.0, buckets[2].Count, "input must not be modified")
	assert.Empty(t, CumulativeDistribution(buckets, "Peru"))
}

func TestScaleLinear(t *testing.T) {
	s, err := NewScale(false, 0, 100, 60, 540)
	require.NoError(t, err)
	assert.InDelta(t, 60, s.Map(0), 1e-9)
	assert.InDelta(t, 300, s.Map(50), 1e-9)
	assert.InDelta(t, 540, s.Map(100), 1e-9)
	assert.InDelta(t, 50, s.Unmap(300), 1e-9)
	assert.NotEmpty(t, s.Ticks(5))
}

func TestScaleLogInverted(t *testing.T) {
	s, err := NewScale(true, AccountsDomain[0], AccountsDomain[1], 60, 340)
	require.NoError(t, err)
	assert.True(t, s.Log())
	// The high end of the domain sits at the top of the plot.
	assert.InDelta(t, 60, s.Map(620000), 1e-9)
	assert.InDelta(t, 340, s.Map(5), 1e-9)
	assert.Less(t, s.Map(1000), s.Map(100))

	s.SetRange(60, 440)
	assert.InDelta(t, 440, s.Map(5), 1e-9)

	_, err = NewScale(true, 0, 10, 0, 1)
	assert.Error(t, err)
	_, err = NewScale(false, 3, 3, 0, 1)
	assert.Error(t, err)
}

func TestAxes(t *testing.T) {
	v, err := geo.NewPlotViewport(1000)
	require.NoError(t, err)
	a, err := NewAxes(v, true, true, PopulationDomain, AccountsDomain)
	require.NoError(t, err)

	x, y := a.Map(Point{X: PopulationDomain[0], Y: AccountsDomain[0]})
	assert.InDelta(t, 60, x, 1e-9)
	assert.InDelta(t, 60, y, 1e-9)

	a.Resize(2000, 1000, 60)
	x, _ = a.Map(Point{X: PopulationDomain[1], Y: 5})
	assert.InDelta(t, 1940, x, 1e-6)
}

func TestLocationPoints(t *testing.T) {
	locs := []*location.Location{{Country: "Peru", Population: 3e7, Count: 100}}
	pts := LocationPoints(locs, location.Population, location.Count)
	assert.Equal(t, []Point{{X: 3e7, Y: 100, Label: "Peru"}}, pts)
}
