package plot

import "sort"

// ParetoFrontier returns the upper and lower frontiers of points with a
// positive x.
//
// The upper frontier walks points by ascending x and keeps each point whose
// y exceeds every y seen so far (starting from zero). The lower frontier
// walks by descending x and keeps each point whose y is below every y seen
// so far. Ties in x keep input order.
func ParetoFrontier(points []Point) (upper, lower []Point) {
	data := make([]Point, 0, len(points))
	for _, p := range points {
		if p.X > 0 {
			data = append(data, p)
		}
	}

	sort.SliceStable(data, func(i, j int) bool { return data[i].X < data[j].X })
	prev := 0.0
	for _, p := range data {
		if p.Y > prev {
			prev = p.Y
			upper = append(upper, p)
		}
	}

	sort.SliceStable(data, func(i, j int) bool { return data[i].X > data[j].X })
	prev = inf
	for _, p := range data {
		if p.Y < prev {
			prev = p.Y
			lower = append(lower, p)
		}
	}
	return upper, lower
}

// FrontierLabels returns the labels of every point on either frontier.
func FrontierLabels(points []Point) map[string]bool {
	upper, lower := ParetoFrontier(points)
	labels := make(map[string]bool, len(upper)+len(lower))
	for _, p := range upper {
		labels[p.Label] = true
	}
	for _, p := range lower {
		labels[p.Label] = true
	}
	return labels
}
