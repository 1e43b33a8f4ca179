// Package location defines the per-location dataset devmap ranks and plots.
//
// A [Location] is a country or city record carrying a closed set of numeric
// metrics (see [Metrics]). Datasets are ingested from the tab-separated
// exports produced by the data extraction scripts:
//
//	top_countries.tsv: country count logfollowers sqrtfollowers sumfollowers population gdp
//	top_cities.tsv:    country state city count logfollowers sqrtfollowers sumfollowers
//
// Per-capita metrics (accounts per 1M population, accounts per $1B GDP) are
// derived on ingestion. The most-followed developers used by the dot map are
// read with [ReadUsers] from a column-oriented JSON document.
package location
