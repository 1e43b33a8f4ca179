// Package pkg provides the core libraries behind devmap, a set of views of
// GitHub accounts by location.
//
// # Overview
//
// devmap turns per-country and per-city account exports into ranked tables,
// scatter plot trends and a decluttered world map of the most-followed
// developers. The pkg directory is organized bottom-up:
//
//  1. Domain model: [location], [rank]
//  2. Geometry: [geo], [zoom], [force], [dotmap], [plot]
//  3. Output: [snapshot]
//  4. Infrastructure: [cache], [config], [observability], [errors]
//  5. Orchestration: [pipeline], [server]
//
// # Architecture
//
// The typical data flow:
//
//	top_countries.tsv, top_cities.tsv, top_users.json, world.geojson
//	         ↓
//	    [pipeline] Runner.Load (parallel ingestion, dense ranking)
//	         ↓
//	    [rank] tables · [zoom] transforms · [dotmap] layouts · [plot] trends
//	         ↓
//	    [snapshot] JSON documents (CLI, HTTP API, cache)
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	ds, err := runner.Load(ctx, config.Default().Data)
//	if err != nil {
//	    return err
//	}
//	layout, _, err := runner.Layout(ctx, ds, pipeline.LayoutOptions{
//	    Count:  2048,
//	    Region: "Germany",
//	})
//
// # Main Packages
//
// [location] - Countries, cities and users, with TSV and columnar JSON
// readers and the derived per-capita and per-GDP metrics.
//
// [rank] - Dense competition ranks per metric, ordinal labels and the
// sorted, filtered Table views kept on a common metric with Link.
//
// [geo] - Mercator projection, viewports that notify on resize, and the
// GeoJSON-backed region bounds index.
//
// [zoom] - The translate/scale transform that fits a region into the
// viewport, and the controller handling toggle, reset and resize.
//
// [force] - Collision layout: radius policy, the d3-style simulation over a
// spatial grid, and a tick driver where the latest run wins.
//
// [dotmap] - Composes viewport, projection, zoom and force into the
// developer dot map.
//
// [plot] - Linear and log scales, least-squares trend lines, Pareto
// frontiers and cumulative follower distributions.
//
// [pipeline] - Loading and view derivation with caching, used by the CLI
// and the HTTP API alike.
//
// [server] - chi-based HTTP API serving snapshots and Prometheus metrics.
//
// # Testing
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/force/...    # Specific package
//	go test -run Example ./... # Examples only
package pkg
