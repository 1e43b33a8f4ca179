// Package rank computes dense competition ranks over location datasets and
// provides sorted, filtered table views over them.
//
// [Calculate] ranks every location on each requested metric independently:
// equal values share a rank and the next distinct value gets the next
// integer, so the ranks on a metric with k distinct values are exactly 1..k.
// After ranking, the dataset is left in canonical order (descending account
// count) regardless of which metric was ranked last.
//
// [Table] is the view behind the country and city rankings: it sorts by the
// selected metric, drops tiny countries, shows 10 or 30 rows, and notifies
// linked views when the metric changes (see [Link]).
package rank
