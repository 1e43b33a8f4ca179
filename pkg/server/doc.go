// Package server exposes the devmap views over HTTP.
//
// Routes:
//
//	GET /healthz                  liveness and dataset identity
//	GET /api/ranks                ranking table (kind, metric, country, limit)
//	GET /api/zoom/{region}        zoom transform (width)
//	GET /api/layout               settled dot map (count, width, region, seed)
//	GET /api/trend                scatter plot trend (x, loglog)
//	GET /api/followers/{country}  cumulative follower distribution
//	GET /api/click/{login}        dot click: profile URL or zoom (region, count, width)
//	GET /metrics                  Prometheus metrics, when enabled
//
// Views are served as snapshot envelopes; followers and click answer with
// plain JSON. Errors are JSON objects carrying the error code, with 400 for
// invalid input and 404 for unknown regions and missing data. Every
// response carries an X-Request-ID.
package server
