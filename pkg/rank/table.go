package rank

import (
	"github.com/devmap/devmap/pkg/errors"
	"github.com/devmap/devmap/pkg/location"
)

const (
	// DefaultRows is the number of rows a table shows initially.
	DefaultRows = 10

	// ExpandedRows is the number of rows shown after "more".
	ExpandedRows = 30

	// MinPopulation hides countries too small to rank meaningfully.
	MinPopulation = 100000
)

// Rankable is implemented by views that can be re-sorted on a metric.
type Rankable interface {
	// Metric returns the currently selected metric.
	Metric() location.Metric

	// ChangeMetric selects a new metric. When propagate is true, listeners
	// registered with OnChange are notified.
	ChangeMetric(m location.Metric, propagate bool) error

	// OnChange registers a listener for propagated metric changes.
	OnChange(fn func(location.Metric))
}

// Link keeps views on the same metric: a propagated change on any of them
// is applied to the others without further propagation.
func Link(views ...Rankable) {
	for i, v := range views {
		v.OnChange(func(m location.Metric) {
			for j, other := range views {
				if j != i {
					_ = other.ChangeMetric(m, false)
				}
			}
		})
	}
}

// Row is one line of a rendered table.
type Row struct {
	Location *location.Location `json:"location"`
	Value    float64            `json:"value"`
	Rank     int                `json:"rank,omitempty"`
	// Fraction is Value relative to the largest value in the dataset, for bars.
	Fraction float64 `json:"fraction"`
}

// Table is a sorted, filtered view over a country or city dataset.
type Table struct {
	kind      location.Kind
	data      []*location.Location
	metric    location.Metric
	limit     int
	country   string
	listeners []func(location.Metric)
}

// NewTable creates a table over data sorted by account count.
// The table sorts its own copy of the slice; the locations themselves are shared.
func NewTable(kind location.Kind, data []*location.Location) *Table {
	t := &Table{
		kind:   kind,
		data:   make([]*location.Location, len(data)),
		metric: location.Count,
		limit:  DefaultRows,
	}
	copy(t.data, data)
	sortDescending(t.data, t.metric)
	return t
}

// Kind returns whether this is a country or a city table.
func (t *Table) Kind() location.Kind { return t.kind }

// Metric returns the metric the table is sorted by.
func (t *Table) Metric() location.Metric { return t.metric }

// ChangeMetric re-sorts the table on m.
func (t *Table) ChangeMetric(m location.Metric, propagate bool) error {
	if !m.Valid() {
		return errors.New(errors.ErrCodeInvalidMetric, "unknown metric %q", m)
	}
	t.metric = m
	sortDescending(t.data, m)
	if propagate {
		for _, fn := range t.listeners {
			fn(m)
		}
	}
	return nil
}

// OnChange registers fn to be called on propagated metric changes.
func (t *Table) OnChange(fn func(location.Metric)) {
	t.listeners = append(t.listeners, fn)
}

// Limit returns the number of rows shown.
func (t *Table) Limit() int { return t.limit }

// SetLimit sets the number of rows shown. Non-positive values restore the default.
func (t *Table) SetLimit(n int) {
	if n <= 0 {
		n = DefaultRows
	}
	t.limit = n
}

// ToggleMore switches between the default and the expanded row count and
// returns the new limit.
func (t *Table) ToggleMore() int {
	if t.limit <= DefaultRows {
		t.limit = ExpandedRows
	} else {
		t.limit = DefaultRows
	}
	return t.limit
}

// Expanded reports whether the table shows more than the default rows.
func (t *Table) Expanded() bool { return t.limit > DefaultRows }

// FilterCountry restricts a city table to one country. Empty clears the filter.
// It has no effect on country tables.
func (t *Table) FilterCountry(country string) { t.country = country }

// Country returns the active city filter.
func (t *Table) Country() string { return t.country }

// Max returns the largest value of the current metric over the whole dataset.
func (t *Table) Max() float64 {
	if len(t.data) == 0 {
		return 0
	}
	return t.data[0].Value(t.metric)
}

// Rows returns the visible rows in display order.
func (t *Table) Rows() []Row {
	max := t.Max()
	rows := make([]Row, 0, t.limit)
	for _, l := range t.data {
		if len(rows) == t.limit {
			break
		}
		if !t.visible(l) {
			continue
		}
		r := Row{Location: l, Value: l.Value(t.metric)}
		if rank, ok := l.Rank(t.metric); ok {
			r.Rank = rank
		}
		if max > 0 {
			r.Fraction = r.Value / max
		}
		rows = append(rows, r)
	}
	return rows
}

func (t *Table) visible(l *location.Location) bool {
	if t.kind == location.KindCities {
		return t.country == "" || l.Country == t.country
	}
	return l.Population > MinPopulation
}

var _ Rankable = (*Table)(nil)
