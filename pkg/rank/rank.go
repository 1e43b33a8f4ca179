package rank

import (
	"math"
	"sort"

	"github.com/devmap/devmap/pkg/location"
)

// Calculate assigns dense ranks for each metric to every location and
// returns the dataset sorted by descending count.
//
// Ranks are written into each Location's Ranks map, replacing any previous
// ranking. When no metrics are given, all of location.Metrics are ranked.
// An empty dataset is returned as-is.
func Calculate(locs []*location.Location, metrics ...location.Metric) []*location.Location {
	if len(locs) == 0 {
		return locs
	}
	if len(metrics) == 0 {
		metrics = location.Metrics
	}

	for _, l := range locs {
		l.Ranks = make(map[location.Metric]int, len(metrics))
	}

	for _, m := range metrics {
		sortDescending(locs, m)

		current := 0
		previous := math.Inf(1)
		for _, l := range locs {
			v := l.Value(m)
			if v != previous {
				current++
			}
			l.Ranks[m] = current
			previous = v
		}
	}

	sortDescending(locs, location.Count)
	return locs
}

// Sorted returns a copy of locs ordered by descending value of m.
// Ties keep their relative order.
func Sorted(locs []*location.Location, m location.Metric) []*location.Location {
	out := make([]*location.Location, len(locs))
	copy(out, locs)
	sortDescending(out, m)
	return out
}

func sortDescending(locs []*location.Location, m location.Metric) {
	sort.SliceStable(locs, func(i, j int) bool {
		return locs[i].Value(m) > locs[j].Value(m)
	})
}
