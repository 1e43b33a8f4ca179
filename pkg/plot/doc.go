// Package plot computes the statistics behind the scatter plots: axis
// scales, least-squares trend lines, Pareto frontiers and cumulative
// follower distributions.
//
// Scales and regressions are built on go-moremath. Nothing here draws;
// results are plain points in data space plus scales to map them to pixels.
package plot
