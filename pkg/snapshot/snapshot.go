package snapshot

import (
	"encoding/json"
	"math"
	"os"
	"time"

	"github.com/devmap/devmap/pkg/errors"
	"github.com/devmap/devmap/pkg/location"
	"github.com/devmap/devmap/pkg/plot"
	"github.com/devmap/devmap/pkg/rank"
	"github.com/devmap/devmap/pkg/zoom"
)

// Kind discriminates the snapshot sections.
type Kind string

const (
	KindRanks  Kind = "ranks"
	KindZoom   Kind = "zoom"
	KindLayout Kind = "layout"
	KindTrend  Kind = "trend"
)

// =============================================================================
// Snapshot - Unified Output Format
// =============================================================================

// Snapshot is the unified serialization format. Check Kind to determine
// which section is populated:
//
//	ranks:  Ranks
//	zoom:   Zoom
//	layout: Layout
//	trend:  Trend
type Snapshot struct {
	Kind        Kind      `json:"kind"`
	GeneratedAt time.Time `json:"generated_at"`

	Ranks  *Ranks  `json:"ranks,omitempty"`
	Zoom   *Zoom   `json:"zoom,omitempty"`
	Layout *Layout `json:"layout,omitempty"`
	Trend  *Trend  `json:"trend,omitempty"`
}

// Ranks is a ranked table view.
type Ranks struct {
	Dataset location.Kind   `json:"dataset"`
	Metric  location.Metric `json:"metric"`
	Label   string          `json:"label"`
	Country string          `json:"country,omitempty"`
	Max     float64         `json:"max"`
	Rows    []RankRow       `json:"rows"`
}

// RankRow is one table line.
type RankRow struct {
	Name     string  `json:"name"`
	Country  string  `json:"country"`
	Value    float64 `json:"value"`
	Rank     int     `json:"rank"`
	Ordinal  string  `json:"ordinal"`
	Fraction float64 `json:"fraction"`
}

// Zoom is a committed zoom state for a viewport.
type Zoom struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	zoom.State
}

// Layout is a settled dot map.
type Layout struct {
	RunID           string     `json:"run_id"`
	Width           float64    `json:"width"`
	Height          float64    `json:"height"`
	Count           int        `json:"count"`
	PointRadius     float64    `json:"point_radius"`
	StrokeWidth     float64    `json:"stroke_width"`
	CollisionRadius float64    `json:"collision_radius"`
	Ticks           int        `json:"ticks"`
	Zoom            zoom.State `json:"zoom"`
	Dots            []Dot      `json:"dots"`
}

// Dot is one positioned developer. Drawn radius and stroke are divided by
// the zoom scale by the renderer.
type Dot struct {
	Login     string  `json:"login"`
	Country   string  `json:"country,omitempty"`
	Followers int     `json:"followers"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	TargetX   float64 `json:"target_x"`
	TargetY   float64 `json:"target_y"`
	Hidden    bool    `json:"hidden,omitempty"`
}

// Displacement is how far the layout pushed the dot from its projected
// location.
func (d Dot) Displacement() float64 {
	return math.Hypot(d.X-d.TargetX, d.Y-d.TargetY)
}

// Trend is a scatter plot's trend line and labelled frontier points.
type Trend struct {
	X        location.Metric `json:"x"`
	Y        location.Metric `json:"y"`
	LogLog   bool            `json:"loglog"`
	Line     plot.Trend      `json:"line"`
	Points   []plot.Point    `json:"points"`
	Frontier []string        `json:"frontier"`
}

// =============================================================================
// Constructors
// =============================================================================

// FromTable captures the visible rows of a table.
func FromTable(t *rank.Table) *Ranks {
	rows := t.Rows()
	out := &Ranks{
		Dataset: t.Kind(),
		Metric:  t.Metric(),
		Label:   t.Metric().Label(),
		Country: t.Country(),
		Max:     t.Max(),
		Rows:    make([]RankRow, len(rows)),
	}
	for i, r := range rows {
		out.Rows[i] = RankRow{
			Name:     r.Location.Name(),
			Country:  r.Location.Country,
			Value:    r.Value,
			Rank:     r.Rank,
			Ordinal:  rank.Ordinal(r.Rank),
			Fraction: r.Fraction,
		}
	}
	return out
}

// New wraps a section in a Snapshot with the matching Kind.
func New(section any) (Snapshot, error) {
	s := Snapshot{GeneratedAt: time.Now().UTC()}
	switch v := section.(type) {
	case *Ranks:
		s.Kind, s.Ranks = KindRanks, v
	case *Zoom:
		s.Kind, s.Zoom = KindZoom, v
	case *Layout:
		s.Kind, s.Layout = KindLayout, v
	case *Trend:
		s.Kind, s.Trend = KindTrend, v
	default:
		return Snapshot{}, errors.New(errors.ErrCodeInvalidInput, "unsupported snapshot section %T", section)
	}
	return s, nil
}

// =============================================================================
// Serialization API
// =============================================================================

// Marshal serializes a Snapshot to pretty-printed JSON bytes.
func Marshal(s Snapshot) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Unmarshal deserializes JSON bytes into a Snapshot and checks that the
// section named by Kind is present.
func Unmarshal(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "unmarshal snapshot")
	}

	var ok bool
	switch s.Kind {
	case KindRanks:
		ok = s.Ranks != nil
	case KindZoom:
		ok = s.Zoom != nil
	case KindLayout:
		ok = s.Layout != nil
	case KindTrend:
		ok = s.Trend != nil
	default:
		return Snapshot{}, errors.New(errors.ErrCodeInvalidFormat, "unknown snapshot kind %q", s.Kind)
	}
	if !ok {
		return Snapshot{}, errors.New(errors.ErrCodeInvalidFormat, "%s snapshot must contain a %s section", s.Kind, s.Kind)
	}
	return s, nil
}

// WriteFile writes a Snapshot to a JSON file.
func WriteFile(s Snapshot, path string) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadFile reads a Snapshot from a JSON file.
func ReadFile(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return Snapshot{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", path)
	}
	return Unmarshal(data)
}
