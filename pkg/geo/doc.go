// Package geo projects longitude/latitude into screen space and tracks the
// viewport the projection is fitted to.
//
// # Projection
//
// [Mercator] implements [Projection] with the same conventions as the
// world map: for a viewport of width w and height h the scale is w/6 and
// the translate point is (w*0.48, h/1.7). [Mercator.Project] returns NaN
// coordinates for inputs it cannot place; callers treat those as "not
// drawable" rather than as an error.
//
// # Regions
//
// [RegionIndex] loads a GeoJSON FeatureCollection keyed by each feature's
// "name" property and answers [BoundsProvider] queries with the projected
// bounding box of a region. Calling [RegionIndex.Reproject] after a resize
// recomputes every box so stale bounds are never served.
//
// # Viewport
//
// [Viewport] is the mutable drawing area. Subscribers registered with
// [Viewport.Subscribe] are notified on every resize.
package geo
