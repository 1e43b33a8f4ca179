// Package pipeline loads the devmap dataset and derives the published views
// from it: ranking tables, zoom transforms, settled dot maps and scatter
// plot trends.
//
// The CLI and the HTTP server both go through a Runner, so that caching,
// logging and observability behave the same for every entry point.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	ds, err := runner.Load(ctx, cfg.Data)
//	if err != nil {
//	    return err
//	}
//	ranks, _, err := runner.Ranks(ctx, ds, pipeline.RankOptions{
//	    Dataset: location.KindCountries,
//	    Metric:  location.AccountsPer1M,
//	})
//
// Every stage that can be cached returns whether the result came from the
// cache.
package pipeline

import (
	"github.com/devmap/devmap/pkg/dotmap"
	"github.com/devmap/devmap/pkg/errors"
	"github.com/devmap/devmap/pkg/force"
	"github.com/devmap/devmap/pkg/geo"
	"github.com/devmap/devmap/pkg/location"
	"github.com/devmap/devmap/pkg/rank"
)

// =============================================================================
// Options
// =============================================================================

// RankOptions selects a ranking table.
type RankOptions struct {
	Dataset location.Kind   `json:"dataset"`
	Metric  location.Metric `json:"metric"`
	Country string          `json:"country,omitempty"`
	Limit   int             `json:"limit,omitempty"`
	Refresh bool            `json:"-"`
}

// ValidateAndSetDefaults fills in the count metric, the countries dataset
// and the default row limit.
func (o *RankOptions) ValidateAndSetDefaults() error {
	kind, err := location.ParseKind(string(o.Dataset))
	if err != nil {
		return err
	}
	o.Dataset = kind
	if o.Metric == "" {
		o.Metric = location.Count
	}
	if !o.Metric.Valid() {
		return errors.New(errors.ErrCodeInvalidMetric, "unknown metric %q", o.Metric)
	}
	if o.Limit < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "limit must not be negative")
	}
	if o.Limit == 0 {
		o.Limit = rank.DefaultRows
	}
	return nil
}

// LayoutOptions selects a settled dot map.
type LayoutOptions struct {
	Width    float64  `json:"width,omitempty"`
	Count    int      `json:"count,omitempty"`
	Region   string   `json:"region,omitempty"`
	Seed     int64    `json:"seed,omitempty"`
	MaxTicks int      `json:"max_ticks,omitempty"`
	FullSize []string `json:"-"`
	Refresh  bool     `json:"-"`

	// Observer sees the frames of a computed layout. Cache hits skip it.
	Observer force.Observer `json:"-"`
}

// ValidateAndSetDefaults applies the dot map defaults. Count is clamped to
// the slider range rather than rejected.
func (o *LayoutOptions) ValidateAndSetDefaults() error {
	if o.Width == 0 {
		o.Width = dotmap.DefaultWidth
	}
	if err := errors.ValidateViewport(o.Width, geo.WorldHeight(o.Width)); err != nil {
		return err
	}
	if o.Count == 0 {
		o.Count = dotmap.DefaultCount
	}
	o.Count = min(max(o.Count, dotmap.MinCount), dotmap.MaxCount)
	if o.Region != "" {
		if err := errors.ValidateRegionName(o.Region); err != nil {
			return err
		}
	}
	if o.MaxTicks < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max_ticks must not be negative")
	}
	return nil
}

// ZoomOptions selects a zoom transform.
type ZoomOptions struct {
	Region   string   `json:"region"`
	Width    float64  `json:"width,omitempty"`
	FullSize []string `json:"-"`
}

// ValidateAndSetDefaults requires a region and applies the default width.
func (o *ZoomOptions) ValidateAndSetDefaults() error {
	if err := errors.ValidateRegionName(o.Region); err != nil {
		return err
	}
	if o.Width == 0 {
		o.Width = dotmap.DefaultWidth
	}
	return errors.ValidateViewport(o.Width, geo.WorldHeight(o.Width))
}

// ClickOptions selects a developer on a dot map zoomed into Region, or
// the world view when Region is empty.
type ClickOptions struct {
	Login    string   `json:"login"`
	Region   string   `json:"region,omitempty"`
	Width    float64  `json:"width,omitempty"`
	Count    int      `json:"count,omitempty"`
	FullSize []string `json:"-"`
}

// ValidateAndSetDefaults requires a login and applies the dot map defaults.
func (o *ClickOptions) ValidateAndSetDefaults() error {
	if o.Login == "" {
		return errors.New(errors.ErrCodeInvalidInput, "login is required")
	}
	if o.Width == 0 {
		o.Width = dotmap.DefaultWidth
	}
	if o.Count == 0 {
		o.Count = dotmap.DefaultCount
	}
	if o.Region != "" {
		if err := errors.ValidateRegionName(o.Region); err != nil {
			return err
		}
	}
	return errors.ValidateViewport(o.Width, geo.WorldHeight(o.Width))
}

// TrendOptions selects a scatter plot against account counts.
type TrendOptions struct {
	X       location.Metric `json:"x"`
	LogLog  bool            `json:"loglog"`
	Refresh bool            `json:"-"`
}

// TrendMetrics are the metrics that can be plotted against account count.
var TrendMetrics = map[location.Metric]bool{
	location.Population: true,
	location.GDP:        true,
}

// ValidateAndSetDefaults defaults to the population plot.
func (o *TrendOptions) ValidateAndSetDefaults() error {
	if o.X == "" {
		o.X = location.Population
	}
	if !TrendMetrics[o.X] {
		return errors.New(errors.ErrCodeInvalidMetric, "trend x must be population or gdp, got %q", o.X)
	}
	return nil
}

// Swap reports whether x is regressed on y. Population is the
// better-determined variable in the population plot.
func (o TrendOptions) Swap() bool { return o.X == location.Population }
