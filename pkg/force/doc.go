// Package force positions developer points near their projected map
// coordinates while keeping them from overlapping.
//
// A [Simulation] follows the d3-force model: every tick pulls each point
// toward its target with per-axis springs, separates overlapping points with
// a collision force, then integrates velocities with decay. The simulation
// cools from alpha 1 and is settled once alpha drops below [DefaultAlphaMin].
// Neighbour search for collisions uses a uniform grid sized to the collision
// diameter, so each tick is roughly linear in the number of points.
//
// # Radius policy
//
// The collision radius shrinks as more points are shown and as the map is
// zoomed in; see [BaseRadius] and [EffectiveRadius]. [PointRadius] picks the
// drawn radius for a viewport width.
//
// # Runs
//
// A [Driver] steps simulations on a [Scheduler] and reports frames to an
// [Observer]. Starting a run cancels the run in flight and waits for it to
// stop, so at most one simulation writes positions at a time and the newest
// request always wins.
//
// Points whose targets cannot be projected are sentinels: they are parked
// outside the drawing area and take no part in the forces. The parking spot
// is ([SentinelX], [SentinelY]) unless [Config].Park moves it, as a zoomed
// map must.
package force
