package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/devmap/devmap/pkg/cache"
	"github.com/devmap/devmap/pkg/dotmap"
	"github.com/devmap/devmap/pkg/errors"
	"github.com/devmap/devmap/pkg/location"
	"github.com/devmap/devmap/pkg/observability"
	"github.com/devmap/devmap/pkg/plot"
	"github.com/devmap/devmap/pkg/rank"
	"github.com/devmap/devmap/pkg/snapshot"
)

// Runner derives views from a Dataset with caching.
//
// The Runner is stateless except for the cache and logger: it doesn't
// store results. Multiple goroutines can safely use the same Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Ranks builds a ranking table.
func (r *Runner) Ranks(ctx context.Context, ds *Dataset, opts RankOptions) (*snapshot.Ranks, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, fmt.Errorf("invalid options: %w", err)
	}
	key := r.Keyer.RanksKey(ds.Hash, cache.RanksKeyOpts{
		Dataset: string(opts.Dataset),
		Metric:  string(opts.Metric),
		Country: opts.Country,
		Limit:   opts.Limit,
	})

	var out snapshot.Ranks
	if r.cached(ctx, key, &out, opts.Refresh) {
		return &out, true, nil
	}

	start := time.Now()
	t := rank.NewTable(opts.Dataset, ds.Locations(opts.Dataset))
	if err := t.ChangeMetric(opts.Metric, false); err != nil {
		return nil, false, err
	}
	t.FilterCountry(opts.Country)
	t.SetLimit(opts.Limit)
	ranks := snapshot.FromTable(t)
	observability.Pipeline().OnRankComplete(ctx, string(opts.Dataset), len(ranks.Rows), time.Since(start))

	r.store(ctx, key, ranks, cache.RanksTTL)
	return ranks, false, nil
}

// Zoom computes the transform that fits region in a world map of the
// given width.
func (r *Runner) Zoom(ctx context.Context, ds *Dataset, opts ZoomOptions) (*snapshot.Zoom, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if ds.Regions == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "no world map loaded")
	}
	m, err := dotmap.New(ds.Regions, nil, dotmap.Options{
		Width:    opts.Width,
		FullSize: opts.FullSize,
		Logger:   r.Logger,
	})
	if err != nil {
		return nil, err
	}
	s, err := m.ZoomTo(opts.Region)
	if err != nil {
		return nil, err
	}
	w, h := m.Size()
	r.Logger.Debug("computed zoom", "region", s.Region, "transform", s.Transform)
	return &snapshot.Zoom{Width: w, Height: h, State: s}, nil
}

// Layout settles the dot map for the given view.
func (r *Runner) Layout(ctx context.Context, ds *Dataset, opts LayoutOptions) (*snapshot.Layout, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, fmt.Errorf("invalid options: %w", err)
	}
	if ds.Regions == nil || ds.Users == nil {
		return nil, false, errors.New(errors.ErrCodeNotFound, "dot map needs the world map and users datasets")
	}
	key := r.Keyer.LayoutKey(ds.Hash, cache.LayoutKeyOpts{
		Width:  opts.Width,
		Count:  opts.Count,
		Region: opts.Region,
		Seed:   opts.Seed,
	})

	var out snapshot.Layout
	if r.cached(ctx, key, &out, opts.Refresh) {
		return &out, true, nil
	}

	m, err := dotmap.New(ds.Regions, ds.Users, dotmap.Options{
		Width:    opts.Width,
		Count:    opts.Count,
		FullSize: opts.FullSize,
		Logger:   r.Logger,
		Seed:     opts.Seed,
		MaxTicks: opts.MaxTicks,
	})
	if err != nil {
		return nil, false, err
	}
	if opts.Region != "" {
		if _, err := m.ZoomTo(opts.Region); err != nil {
			return nil, false, err
		}
	}

	start := time.Now()
	layout, err := m.Settle(ctx, opts.Observer)
	if err != nil {
		return nil, false, fmt.Errorf("layout: %w", err)
	}
	r.Logger.Info("computed layout",
		"points", len(layout.Dots),
		"ticks", layout.Ticks,
		"region", opts.Region,
		"duration", time.Since(start))

	r.store(ctx, key, layout, cache.LayoutTTL)
	return layout, false, nil
}

// Click resolves a click on a developer's dot: the profile URL when they
// are in the zoomed country, otherwise the zoom into their country.
func (r *Runner) Click(ctx context.Context, ds *Dataset, opts ClickOptions) (*dotmap.ClickResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if ds.Regions == nil || ds.Users == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "dot map needs the world map and users datasets")
	}
	m, err := dotmap.New(ds.Regions, ds.Users, dotmap.Options{
		Width:    opts.Width,
		Count:    opts.Count,
		FullSize: opts.FullSize,
		Logger:   r.Logger,
	})
	if err != nil {
		return nil, err
	}
	if opts.Region != "" {
		if _, err := m.ZoomTo(opts.Region); err != nil {
			return nil, err
		}
	}
	res, err := m.Click(opts.Login)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("resolved click", "login", opts.Login, "url", res.URL, "region", res.Zoom.Region)
	return &res, nil
}

// Trend fits account counts against population or GDP and labels the
// countries on the Pareto frontiers.
func (r *Runner) Trend(ctx context.Context, ds *Dataset, opts TrendOptions) (*snapshot.Trend, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, fmt.Errorf("invalid options: %w", err)
	}
	key := r.Keyer.TrendKey(ds.Hash, cache.TrendKeyOpts{
		X:      string(opts.X),
		Y:      string(location.Count),
		LogLog: opts.LogLog,
	})

	var out snapshot.Trend
	if r.cached(ctx, key, &out, opts.Refresh) {
		return &out, true, nil
	}

	var points []plot.Point
	for _, p := range plot.LocationPoints(ds.Countries, opts.X, location.Count) {
		if p.X > 0 && p.Y > 0 {
			points = append(points, p)
		}
	}
	line, err := plot.Trendline(points, opts.LogLog, opts.Swap())
	if err != nil {
		return nil, false, err
	}
	labels := plot.FrontierLabels(points)
	frontier := make([]string, 0, len(labels))
	for l := range labels {
		frontier = append(frontier, l)
	}
	sort.Strings(frontier)

	trend := &snapshot.Trend{
		X:        opts.X,
		Y:        location.Count,
		LogLog:   opts.LogLog,
		Line:     line,
		Points:   points,
		Frontier: frontier,
	}
	r.Logger.Debug("computed trend", "x", opts.X, "points", len(points), "r2", line.R2)

	r.store(ctx, key, trend, cache.TrendTTL)
	return trend, false, nil
}

// Distribution returns the cumulative follower distribution of a country.
func (r *Runner) Distribution(ds *Dataset, country string) ([]plot.Point, error) {
	if ds.Followers == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "no follower distribution loaded")
	}
	pts := plot.CumulativeDistribution(ds.Followers, country)
	if len(pts) == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "no follower distribution for %q", country)
	}
	return pts, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// cached decodes the entry for key into v. Cache failures are logged and
// treated as misses.
func (r *Runner) cached(ctx context.Context, key string, v any, refresh bool) bool {
	if refresh {
		return false
	}
	ok, err := cache.GetJSON(ctx, r.Cache, key, v)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
		return false
	}
	return ok
}

func (r *Runner) store(ctx context.Context, key string, v any, ttl time.Duration) {
	if err := cache.SetJSON(ctx, r.Cache, key, v, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
	}
}
