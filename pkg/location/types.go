package location

import (
	"strings"

	"github.com/devmap/devmap/pkg/errors"
)

// Metric names one of the numeric columns of a Location.
type Metric string

// Ranked metrics.
const (
	Count            Metric = "count"
	LogFollowers     Metric = "logfollowers"
	Followers        Metric = "followers"
	AccountsPer1M    Metric = "accountsper1M"
	AccountsPer1BGDP Metric = "accountsper1Bgdp"
	Population       Metric = "population"
	GDP              Metric = "gdp"
)

// Metrics lists every ranked metric in display order.
var Metrics = []Metric{Count, LogFollowers, Followers, AccountsPer1M, AccountsPer1BGDP, Population, GDP}

// Labels maps each metric to its human readable column title.
var Labels = map[Metric]string{
	Count:            "GitHub Accounts",
	LogFollowers:     "∑ log(followers)",
	Followers:        "Total Followers",
	AccountsPer1M:    "Accounts / 1M Population",
	AccountsPer1BGDP: "Accounts / $1B GDP",
	Population:       "Population",
	GDP:              "GDP",
}

// Label returns the display label for m, or the raw metric name if unknown.
func (m Metric) Label() string {
	if l, ok := Labels[m]; ok {
		return l
	}
	return string(m)
}

// Valid reports whether m is one of the ranked metrics.
func (m Metric) Valid() bool {
	_, ok := Labels[m]
	return ok
}

// ParseMetric resolves a metric name case-insensitively.
func ParseMetric(s string) (Metric, error) {
	for _, m := range Metrics {
		if strings.EqualFold(string(m), strings.TrimSpace(s)) {
			return m, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidMetric, "unknown metric %q", s)
}

// Location is a country or city record.
type Location struct {
	Country string `json:"country"`
	State   string `json:"state,omitempty"`
	City    string `json:"city,omitempty"`

	Count            float64 `json:"count"`
	LogFollowers     float64 `json:"logfollowers"`
	SqrtFollowers    float64 `json:"sqrtfollowers,omitempty"`
	Followers        float64 `json:"followers"`
	AccountsPer1M    float64 `json:"accountsper1M"`
	AccountsPer1BGDP float64 `json:"accountsper1Bgdp"`
	Population       float64 `json:"population"`
	GDP              float64 `json:"gdp"`

	// Ranks is populated by rank.Calculate; nil before ranking.
	Ranks map[Metric]int `json:"ranks,omitempty"`
}

// Name returns the city name for city records and the country otherwise.
func (l *Location) Name() string {
	if l.City != "" {
		return l.City
	}
	return l.Country
}

// Value returns the value of metric m. Unknown metrics yield 0.
func (l *Location) Value(m Metric) float64 {
	switch m {
	case Count:
		return l.Count
	case LogFollowers:
		return l.LogFollowers
	case Followers:
		return l.Followers
	case AccountsPer1M:
		return l.AccountsPer1M
	case AccountsPer1BGDP:
		return l.AccountsPer1BGDP
	case Population:
		return l.Population
	case GDP:
		return l.GDP
	}
	return 0
}

// Rank returns the computed rank for m and whether it has been computed.
func (l *Location) Rank(m Metric) (int, bool) {
	r, ok := l.Ranks[m]
	return r, ok
}

// Derive fills the per-capita metrics from count, population and gdp.
// A zero denominator leaves the derived metric at zero.
func (l *Location) Derive() {
	l.AccountsPer1M = 0
	if l.Population > 0 {
		l.AccountsPer1M = l.Count / l.Population * 1e6
	}
	l.AccountsPer1BGDP = 0
	if l.GDP > 0 {
		l.AccountsPer1BGDP = l.Count / l.GDP * 1e9
	}
}

// Clone returns a deep copy of l.
func (l *Location) Clone() *Location {
	c := *l
	if l.Ranks != nil {
		c.Ranks = make(map[Metric]int, len(l.Ranks))
		for k, v := range l.Ranks {
			c.Ranks[k] = v
		}
	}
	return &c
}

// CloneAll deep copies a dataset.
func CloneAll(locs []*Location) []*Location {
	out := make([]*Location, len(locs))
	for i, l := range locs {
		out[i] = l.Clone()
	}
	return out
}
