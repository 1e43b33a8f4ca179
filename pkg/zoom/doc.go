// Package zoom computes the translate/scale transform that fits a region's
// projected bounding box into a viewport, and tracks which region the map
// is zoomed to.
//
// [Compute] is pure: given bounds, a viewport size and a fill policy it
// returns a [Transform] or an INVALID_BOUNDS error. Regions listed as
// full-size fill the whole viewport along the constraining axis; all other
// regions fill half of it, which leaves room around small countries.
//
// [Controller] is the stateful side. It implements [Zoomable]:
//
//   - ZoomTo on the region already shown clears the zoom (toggle).
//   - ZoomTo on a region the bounds provider does not know clears the zoom.
//   - Resize recomputes the current region from fresh bounds.
//
// Every committed [State] is delivered to listeners registered with
// [Controller.Subscribe].
package zoom
