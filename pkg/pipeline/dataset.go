package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/devmap/devmap/pkg/cache"
	"github.com/devmap/devmap/pkg/config"
	"github.com/devmap/devmap/pkg/errors"
	"github.com/devmap/devmap/pkg/geo"
	"github.com/devmap/devmap/pkg/location"
	"github.com/devmap/devmap/pkg/observability"
	"github.com/devmap/devmap/pkg/rank"
)

// Dataset is everything loaded from disk, ranked and ready to serve. It is
// read-only after Load and safe to share between goroutines.
type Dataset struct {
	Countries []*location.Location
	Cities    []*location.Location
	Users     []location.User
	Regions   *geo.RegionIndex
	Followers []location.FollowerBucket

	// Hash identifies the file contents, for cache keys.
	Hash string

	LoadedAt time.Time
}

// Dataset names reported to the pipeline hooks.
const (
	sourceCountries = "countries"
	sourceCities    = "cities"
	sourceUsers     = "users"
	sourceWorld     = "world"
	sourceFollowers = "followers"
)

// Load reads the dataset files in parallel. The countries export is
// required; any other file may be left unset in data, in which case the
// views that need it report NOT_FOUND.
func (r *Runner) Load(ctx context.Context, data config.Data) (*Dataset, error) {
	if data.Countries == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "data.countries is required")
	}

	loadStart := time.Now()
	ds := &Dataset{}
	sources := []struct {
		name  string
		file  string
		parse func([]byte) (int, error)
	}{
		{sourceCountries, data.Countries, func(b []byte) (n int, err error) {
			ds.Countries, err = location.ReadTSV(bytes.NewReader(b))
			return len(ds.Countries), err
		}},
		{sourceCities, data.Cities, func(b []byte) (n int, err error) {
			ds.Cities, err = location.ReadTSV(bytes.NewReader(b))
			return len(ds.Cities), err
		}},
		{sourceUsers, data.Users, func(b []byte) (n int, err error) {
			ds.Users, err = location.ReadUsers(bytes.NewReader(b))
			return len(ds.Users), err
		}},
		{sourceWorld, data.World, func(b []byte) (n int, err error) {
			ds.Regions, err = geo.ReadRegions(bytes.NewReader(b))
			if err != nil {
				return 0, err
			}
			return ds.Regions.Len(), nil
		}},
		{sourceFollowers, data.Followers, func(b []byte) (n int, err error) {
			ds.Followers, err = location.ReadFollowerDistribution(bytes.NewReader(b))
			return len(ds.Followers), err
		}},
	}

	hashes := make([]string, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		if src.file == "" {
			continue
		}
		g.Go(func() error {
			hooks := observability.Pipeline()
			hooks.OnLoadStart(gctx, src.name)
			start := time.Now()

			path := data.Path(src.file)
			raw, err := readFile(gctx, path)
			n := 0
			if err == nil {
				n, err = src.parse(raw)
			}
			elapsed := time.Since(start)
			hooks.OnLoadComplete(gctx, src.name, n, elapsed, err)
			if err != nil {
				return fmt.Errorf("load %s: %w", src.name, err)
			}
			hashes[i] = src.name + "=" + cache.Hash(raw)
			r.Logger.Debug("loaded dataset", "source", src.name, "path", path, "rows", n, "duration", elapsed)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	start := time.Now()
	rank.Calculate(ds.Countries)
	rank.Calculate(ds.Cities)
	observability.Pipeline().OnRankComplete(ctx, sourceCountries, len(ds.Countries)+len(ds.Cities), time.Since(start))

	ds.Hash = cache.Hash([]byte(strings.Join(hashes, "\n")))
	ds.LoadedAt = time.Now()
	r.Logger.Info("loaded data",
		"countries", len(ds.Countries),
		"cities", len(ds.Cities),
		"users", len(ds.Users),
		"regions", ds.regionCount(),
		"duration", time.Since(loadStart))
	return ds, nil
}

func (ds *Dataset) regionCount() int {
	if ds.Regions == nil {
		return 0
	}
	return ds.Regions.Len()
}

// Locations returns the dataset of the given kind.
func (ds *Dataset) Locations(kind location.Kind) []*location.Location {
	if kind == location.KindCities {
		return ds.Cities
	}
	return ds.Countries
}

func readFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s", path)
	}
	return raw, err
}
