package plot

import (
	"math"

	"github.com/devmap/devmap/pkg/location"
)

var inf = math.Inf(1)

// CumulativeDistribution accumulates account counts for one country over
// buckets ordered by descending followers. Point i has X = the follower
// threshold and Y = the number of accounts with at least that many
// followers. The input is not modified.
func CumulativeDistribution(buckets []location.FollowerBucket, country string) []Point {
	var out []Point
	total := 0.0
	for _, b := range buckets {
		if b.Country != country {
			continue
		}
		total += b.Count
		out = append(out, Point{X: b.Followers, Y: total, Label: country})
	}
	return out
}

// LocationPoints extracts (x, y) metric pairs from locations, labelled by
// name.
func LocationPoints(locs []*location.Location, x, y location.Metric) []Point {
	out := make([]Point, len(locs))
	for i, l := range locs {
		out[i] = Point{X: l.Value(x), Y: l.Value(y), Label: l.Name()}
	}
	return out
}
