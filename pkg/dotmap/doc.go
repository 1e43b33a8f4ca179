// Package dotmap composes the world viewport, region bounds, zoom
// controller and collision layout into the developer dot map.
//
// A Map owns one viewport. Every operation that changes what is shown
// (the number of developers, the zoomed region, the viewport width)
// re-projects the point targets and, when a watcher is attached,
// restarts the layout. Restarting supersedes the run in flight.
//
//	m, err := dotmap.New(regions, users, dotmap.Options{Width: 960})
//	if err != nil {
//		return err
//	}
//	m.ZoomTo("Germany")
//	layout, err := m.Settle(ctx, nil)
package dotmap
