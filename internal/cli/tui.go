package cli

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/devmap/devmap/pkg/dotmap"
	"github.com/devmap/devmap/pkg/force"
	"github.com/devmap/devmap/pkg/location"
	"github.com/devmap/devmap/pkg/rank"
	"github.com/devmap/devmap/pkg/snapshot"
)

var (
	tabActiveStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Underline(true)
	tabInactiveStyle = lipgloss.NewStyle().Foreground(colorGray)
	helpStyle        = lipgloss.NewStyle().Foreground(colorDim)
	statusStyle      = lipgloss.NewStyle().Foreground(colorGray)
)

// =============================================================================
// Messages
// =============================================================================

// frameMsg carries a layout frame from the dot map into the event loop.
type frameMsg struct {
	frame   force.Frame
	settled bool
}

// frameSink forwards layout frames to the browser. Ticks are dropped while
// the browser is busy; the latest frame always wins eventually.
type frameSink chan frameMsg

func (s frameSink) OnTick(f force.Frame) {
	select {
	case s <- frameMsg{frame: f}:
	default:
	}
}

func (s frameSink) OnSettled(f force.Frame) {
	for {
		select {
		case s <- frameMsg{frame: f, settled: true}:
			return
		default:
		}
		select {
		case <-s:
		default:
		}
	}
}

func waitFrame(s frameSink) tea.Cmd {
	return func() tea.Msg { return <-s }
}

// =============================================================================
// BrowseModel - Interactive ranking browser
// =============================================================================

// BrowseModel is the bubbletea model for browsing ranked tables. With a
// dot map attached, zooming into the selected country restarts the live
// layout and its progress is shown in the status line.
type BrowseModel struct {
	Tables map[location.Kind]*rank.Table
	Kind   location.Kind
	Cursor int

	Map    *dotmap.Map
	frames frameSink
	Layout string
	Status string
}

// NewBrowseModel creates a browser over linked country and city tables.
// m may be nil.
func NewBrowseModel(countries, cities *rank.Table, m *dotmap.Map) BrowseModel {
	rank.Link(countries, cities)
	b := BrowseModel{
		Tables: map[location.Kind]*rank.Table{
			location.KindCountries: countries,
			location.KindCities:    cities,
		},
		Kind: location.KindCountries,
		Map:  m,
	}
	if m != nil {
		b.frames = make(frameSink, 1)
	}
	return b
}

func (m BrowseModel) table() *rank.Table { return m.Tables[m.Kind] }

// rows returns the visible rows of the active table.
func (m BrowseModel) rows() *snapshot.Ranks { return snapshot.FromTable(m.table()) }

func (m BrowseModel) Init() tea.Cmd {
	if m.frames == nil {
		return nil
	}
	return waitFrame(m.frames)
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.Layout = describeFrame(msg)
		if n := m.unplaced(msg.frame); n > 0 {
			m.Layout += fmt.Sprintf(" · %d unplaced", n)
		}
		return m, waitFrame(m.frames)
	case tea.KeyMsg:
		return m.key(msg.String())
	}
	return m, nil
}

func (m BrowseModel) key(k string) (tea.Model, tea.Cmd) {
	n := len(m.rows().Rows)
	switch k {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < n-1 {
			m.Cursor++
		}
	case "left", "h":
		m.shiftMetric(-1)
	case "right", "l":
		m.shiftMetric(1)
	case "tab":
		if m.Kind == location.KindCountries {
			m.Kind = location.KindCities
		} else {
			m.Kind = location.KindCountries
		}
		m.Cursor = 0
		m.Status = ""
	case "m", " ":
		limit := m.table().ToggleMore()
		m.Cursor = min(m.Cursor, limit-1)
	case "enter":
		m.selectRow()
	case "z":
		m.zoom()
	case "+", "=":
		m.resizeMap(2)
	case "-":
		m.resizeMap(0.5)
	}
	return m, nil
}

// shiftMetric moves to the neighbouring metric. The linked table follows.
func (m *BrowseModel) shiftMetric(step int) {
	i := slices.Index(location.Metrics, m.table().Metric())
	next := location.Metrics[(i+step+len(location.Metrics))%len(location.Metrics)]
	if err := m.table().ChangeMetric(next, true); err != nil {
		m.Status = err.Error()
		return
	}
	m.Cursor = 0
}

// selectRow drills from a country into its cities, or clears the city
// filter.
func (m *BrowseModel) selectRow() {
	if m.Kind == location.KindCities {
		if m.table().Country() != "" {
			m.table().FilterCountry("")
			m.Cursor = 0
			m.Status = "Showing cities worldwide"
		}
		return
	}
	rows := m.rows().Rows
	if m.Cursor >= len(rows) {
		return
	}
	country := rows[m.Cursor].Name
	cities := m.Tables[location.KindCities]
	cities.FilterCountry(country)
	m.Kind, m.Cursor = location.KindCities, 0
	m.Status = "Cities in " + country
}

// zoom zooms the dot map into the selected country; selecting the shown
// country zooms back out.
func (m *BrowseModel) zoom() {
	if m.Map == nil {
		m.Status = "No dot map loaded"
		return
	}
	rows := m.rows().Rows
	if m.Cursor >= len(rows) {
		return
	}
	region := rows[m.Cursor].Country
	s, err := m.Map.ZoomTo(region)
	switch {
	case err != nil:
		m.Status = err.Error()
	case s.Zoomed():
		m.Status = fmt.Sprintf("Zoomed into %s (scale %.2f)", s.Region, s.Scale)
	default:
		m.Status = "Zoomed out"
	}
}

func (m *BrowseModel) resizeMap(factor float64) {
	if m.Map == nil {
		m.Status = "No dot map loaded"
		return
	}
	n := m.Map.SetCount(int(float64(m.Map.Count()) * factor))
	m.Status = fmt.Sprintf("Showing %d developers", n)
}

// unplaced counts the developers in f that have no known location. Frames
// the map cannot attribute to a run count as zero.
func (m BrowseModel) unplaced(f force.Frame) int {
	if m.Map == nil {
		return 0
	}
	l, err := m.Map.Layout(f)
	if err != nil {
		return 0
	}
	return hiddenDots(l)
}

func describeFrame(f frameMsg) string {
	if f.settled {
		return fmt.Sprintf("layout settled after %d ticks", f.frame.Tick)
	}
	return fmt.Sprintf("layout tick %d · alpha %.3f · radius %.2f", f.frame.Tick, f.frame.Alpha, f.frame.Radius)
}

func (m BrowseModel) View() string {
	var b strings.Builder

	for _, k := range []location.Kind{location.KindCountries, location.KindCities} {
		style := tabInactiveStyle
		if k == m.Kind {
			style = tabActiveStyle
		}
		b.WriteString(style.Render(strings.ToUpper(string(k[:1])) + string(k[1:])))
		b.WriteString("  ")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ move  ←/→ metric  tab switch  m more  ⏎ cities  z zoom  +/- dots  q quit"))
	b.WriteString("\n\n")

	r := m.rows()
	title := r.Label
	if r.Country != "" {
		title += " in " + r.Country
	}
	b.WriteString(styleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(renderRanks(r, m.Cursor))
	b.WriteString("\n")

	if m.Status != "" {
		b.WriteString(statusStyle.Render(m.Status))
		b.WriteString("\n")
	}
	if m.Layout != "" {
		b.WriteString(helpStyle.Render(m.Layout))
		b.WriteString("\n")
	}
	return b.String()
}

var _ force.Observer = frameSink(nil)
