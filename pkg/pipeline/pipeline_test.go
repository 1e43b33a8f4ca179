package pipeline

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/devmap/devmap/pkg/cache"
	"github.com/devmap/devmap/pkg/config"
	"github.com/devmap/devmap/pkg/errors"
	"github.com/devmap/devmap/pkg/location"
)

func testData() config.Data {
	d := config.Default().Data
	d.Dir = "testdata"
	return d
}

func newTestRunner(t *testing.T, c cache.Cache) *Runner {
	t.Helper()
	return NewRunner(c, nil, log.New(io.Discard))
}

func loadTestData(t *testing.T, r *Runner) *Dataset {
	t.Helper()
	ds, err := r.Load(context.Background(), testData())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return ds
}

func TestLoad(t *testing.T) {
	r := newTestRunner(t, nil)
	ds := loadTestData(t, r)

	if len(ds.Countries) != 7 || len(ds.Cities) != 4 || len(ds.Users) != 5 || len(ds.Followers) != 5 {
		t.Errorf("loaded %d countries, %d cities, %d users, %d buckets",
			len(ds.Countries), len(ds.Cities), len(ds.Users), len(ds.Followers))
	}
	if ds.Regions.Len() != 4 {
		t.Errorf("regions = %d, want 4", ds.Regions.Len())
	}
	if ds.Countries[0].Country != "United States" {
		t.Errorf("countries should be sorted by count, first = %s", ds.Countries[0].Country)
	}
	if rk, ok := ds.Countries[0].Rank(location.Count); !ok || rk != 1 {
		t.Errorf("United States count rank = %d, %v", rk, ok)
	}
	if len(ds.Hash) != 64 {
		t.Errorf("Hash = %q", ds.Hash)
	}

	again := loadTestData(t, r)
	if again.Hash != ds.Hash {
		t.Error("Hash should be deterministic")
	}
}

func TestLoadErrors(t *testing.T) {
	r := newTestRunner(t, nil)
	ctx := context.Background()

	if _, err := r.Load(ctx, config.Data{}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("no countries file: %v", err)
	}

	d := testData()
	d.Users = "missing.json"
	if _, err := r.Load(ctx, d); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing users file: %v", err)
	}
}

func TestPartialDataset(t *testing.T) {
	r := newTestRunner(t, nil)
	ds, err := r.Load(context.Background(), config.Data{Dir: "testdata", Countries: "top_countries.tsv"})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := r.Layout(context.Background(), ds, LayoutOptions{}); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Layout without users: %v", err)
	}
	if _, err := r.Zoom(context.Background(), ds, ZoomOptions{Region: "France"}); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Zoom without world map: %v", err)
	}
	if _, err := r.Distribution(ds, "France"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Distribution without followers: %v", err)
	}
}

func TestRanks(t *testing.T) {
	r := newTestRunner(t, nil)
	ds := loadTestData(t, r)
	ctx := context.Background()

	got, hit, err := r.Ranks(ctx, ds, RankOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("null cache should never hit")
	}
	if got.Dataset != location.KindCountries || got.Metric != location.Count {
		t.Errorf("defaults = %s/%s", got.Dataset, got.Metric)
	}
	// Atlantis has no population and is hidden from country tables.
	if len(got.Rows) != 6 {
		t.Fatalf("rows = %d, want 6", len(got.Rows))
	}
	if got.Rows[0].Name != "United States" || got.Rows[0].Ordinal != "1st" || got.Rows[0].Fraction != 1 {
		t.Errorf("first row = %+v", got.Rows[0])
	}

	cities, _, err := r.Ranks(ctx, ds, RankOptions{Dataset: "city", Country: "United States"})
	if err != nil {
		t.Fatal(err)
	}
	if len(cities.Rows) != 2 || cities.Rows[0].Name != "San Francisco" {
		t.Errorf("city rows = %+v", cities.Rows)
	}

	perCapita, _, err := r.Ranks(ctx, ds, RankOptions{Metric: location.AccountsPer1M, Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(perCapita.Rows) != 1 || perCapita.Rows[0].Name != "Iceland" {
		t.Errorf("per capita rows = %+v", perCapita.Rows)
	}
}

func TestRanksCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := newTestRunner(t, fc)
	ds := loadTestData(t, r)
	ctx := context.Background()

	first, hit, err := r.Ranks(ctx, ds, RankOptions{Metric: location.GDP})
	if err != nil || hit {
		t.Fatalf("first call: hit=%v err=%v", hit, err)
	}
	second, hit, err := r.Ranks(ctx, ds, RankOptions{Metric: location.GDP})
	if err != nil || !hit {
		t.Fatalf("second call: hit=%v err=%v", hit, err)
	}
	if len(second.Rows) != len(first.Rows) || second.Rows[0].Name != first.Rows[0].Name {
		t.Errorf("cached rows differ: %+v vs %+v", second.Rows, first.Rows)
	}
	if _, hit, _ := r.Ranks(ctx, ds, RankOptions{Metric: location.GDP, Refresh: true}); hit {
		t.Error("Refresh should bypass the cache")
	}
}

func TestZoom(t *testing.T) {
	r := newTestRunner(t, nil)
	ds := loadTestData(t, r)
	ctx := context.Background()

	z, err := r.Zoom(ctx, ds, ZoomOptions{Region: "France", Width: 800})
	if err != nil {
		t.Fatal(err)
	}
	if z.Region != "France" || z.Scale <= 1 || z.Width != 800 || z.Height != 400 {
		t.Errorf("zoom = %+v", z)
	}

	if _, err := r.Zoom(ctx, ds, ZoomOptions{Region: "Atlantis"}); !errors.Is(err, errors.ErrCodeUnknownRegion) {
		t.Errorf("unknown region: %v", err)
	}
	if _, err := r.Zoom(ctx, ds, ZoomOptions{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty region: %v", err)
	}
}

func TestClick(t *testing.T) {
	r := newTestRunner(t, nil)
	ds := loadTestData(t, r)
	ctx := context.Background()

	res, err := r.Click(ctx, ds, ClickOptions{Login: "sindresorhus"})
	if err != nil {
		t.Fatal(err)
	}
	if res.URL != "" || res.Zoom.Region != "Thailand" {
		t.Errorf("world click = %+v", res)
	}

	res, err = r.Click(ctx, ds, ClickOptions{Login: "sindresorhus", Region: "Thailand"})
	if err != nil {
		t.Fatal(err)
	}
	if res.URL != "https://github.com/sindresorhus" {
		t.Errorf("zoomed click = %+v", res)
	}

	if _, err := r.Click(ctx, ds, ClickOptions{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty login: %v", err)
	}
	if _, err := r.Click(ctx, ds, ClickOptions{Login: "nobody"}); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("unknown login: %v", err)
	}
}

func TestLayout(t *testing.T) {
	fc, _ := cache.NewFileCache(t.TempDir())
	r := newTestRunner(t, fc)
	ds := loadTestData(t, r)
	ctx := context.Background()

	l, hit, err := r.Layout(ctx, ds, LayoutOptions{Count: 1, Seed: 3})
	if err != nil || hit {
		t.Fatalf("Layout: hit=%v err=%v", hit, err)
	}
	if l.Count != 16 {
		t.Errorf("count should clamp to 16, got %d", l.Count)
	}
	if len(l.Dots) != 5 {
		t.Fatalf("dots = %d, want 5", len(l.Dots))
	}
	for _, d := range l.Dots {
		if (d.Login == "unknown") != d.Hidden {
			t.Errorf("dot %s hidden = %v", d.Login, d.Hidden)
		}
	}

	cached, hit, err := r.Layout(ctx, ds, LayoutOptions{Count: 16, Seed: 3})
	if err != nil || !hit {
		t.Fatalf("second Layout: hit=%v err=%v", hit, err)
	}
	if cached.RunID != l.RunID {
		t.Error("cached layout should be the stored run")
	}

	zoomed, _, err := r.Layout(ctx, ds, LayoutOptions{Region: "France"})
	if err != nil {
		t.Fatal(err)
	}
	if zoomed.Zoom.Region != "France" || zoomed.CollisionRadius >= l.CollisionRadius {
		t.Errorf("zoomed layout = region %q radius %v", zoomed.Zoom.Region, zoomed.CollisionRadius)
	}

	if _, _, err := r.Layout(ctx, ds, LayoutOptions{Region: "Atlantis"}); !errors.Is(err, errors.ErrCodeUnknownRegion) {
		t.Errorf("unknown region: %v", err)
	}
}

func TestTrend(t *testing.T) {
	r := newTestRunner(t, nil)
	ds := loadTestData(t, r)
	ctx := context.Background()

	tr, _, err := r.Trend(ctx, ds, TrendOptions{LogLog: true})
	if err != nil {
		t.Fatal(err)
	}
	if tr.X != location.Population || !tr.Line.Swapped || !tr.Line.LogLog {
		t.Errorf("trend = %+v", tr.Line)
	}
	if len(tr.Points) != 6 {
		t.Errorf("points = %d, want 6 (Atlantis has no population)", len(tr.Points))
	}
	want := map[string]bool{"United States": true, "Iceland": true, "China": true}
	found := 0
	for _, name := range tr.Frontier {
		if want[name] {
			found++
		}
	}
	if found != len(want) {
		t.Errorf("frontier = %v", tr.Frontier)
	}

	gdp, _, err := r.Trend(ctx, ds, TrendOptions{X: location.GDP})
	if err != nil {
		t.Fatal(err)
	}
	if gdp.Line.Swapped || gdp.Line.Slope <= 0 {
		t.Errorf("gdp trend = %+v", gdp.Line)
	}

	if _, _, err := r.Trend(ctx, ds, TrendOptions{X: location.Count}); !errors.Is(err, errors.ErrCodeInvalidMetric) {
		t.Errorf("count on x: %v", err)
	}
}

func TestDistribution(t *testing.T) {
	r := newTestRunner(t, nil)
	ds := loadTestData(t, r)

	pts, err := r.Distribution(ds, "France")
	if err != nil {
		t.Fatal(err)
	}
	wantY := []float64{2, 42, 942}
	if len(pts) != len(wantY) {
		t.Fatalf("points = %+v", pts)
	}
	for i, y := range wantY {
		if pts[i].Y != y {
			t.Errorf("point %d: Y = %v, want %v", i, pts[i].Y, y)
		}
	}
	if _, err := r.Distribution(ds, "Atlantis"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("unknown country: %v", err)
	}
}

func TestRankOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts RankOptions
		code errors.Code
	}{
		{"defaults", RankOptions{}, ""},
		{"cities", RankOptions{Dataset: "cities"}, ""},
		{"bad dataset", RankOptions{Dataset: "planets"}, errors.ErrCodeInvalidInput},
		{"bad metric", RankOptions{Metric: "stars"}, errors.ErrCodeInvalidMetric},
		{"negative limit", RankOptions{Limit: -1}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestLayoutOptionsValidate(t *testing.T) {
	o := LayoutOptions{Count: 99999}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if o.Width != 960 || o.Count != 4096 {
		t.Errorf("defaults = %+v", o)
	}

	bad := LayoutOptions{Width: -1}
	if err := bad.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidViewport) {
		t.Errorf("negative width: %v", err)
	}
}
