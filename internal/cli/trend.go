package cli

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/devmap/devmap/pkg/geo"
	"github.com/devmap/devmap/pkg/location"
	"github.com/devmap/devmap/pkg/pipeline"
	"github.com/devmap/devmap/pkg/plot"
	"github.com/devmap/devmap/pkg/snapshot"
)

// Terminal scatter plot size in cells.
const (
	plotCols = 64
	plotRows = 18
)

// trendCommand creates the trend command for scatter-plot statistics.
func (c *CLI) trendCommand() *cobra.Command {
	var (
		x         string
		linear    bool
		followers string
		output    string
	)
	opts := pipeline.TrendOptions{}

	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Fit account counts against population or GDP",
		Long: `Fit account counts against population or GDP.

Prints the least-squares trend line (log-log unless --linear), the countries
on the upper and lower Pareto frontiers, and a terminal scatter plot.
With --followers, prints a country's cumulative follower distribution
instead.`,
		Example: `  devmap trend
  devmap trend -x gdp --linear
  devmap trend --followers Germany`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if followers != "" {
				return c.runFollowers(cmd.Context(), followers)
			}
			m, err := location.ParseMetric(x)
			if err != nil {
				return err
			}
			opts.X, opts.LogLog = m, !linear
			return c.runTrend(cmd.Context(), opts, output)
		},
	}

	cmd.Flags().StringVarP(&x, "against", "x", string(location.Population), "horizontal metric: population, gdp")
	cmd.Flags().BoolVar(&linear, "linear", false, "fit in linear rather than log-log space")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached results")
	cmd.Flags().StringVar(&followers, "followers", "", "print the follower distribution of a country")
	cmd.Flags().StringVarP(&output, "output", "o", "", "also write the trend as a JSON snapshot")

	return cmd
}

func (c *CLI) runTrend(ctx context.Context, opts pipeline.TrendOptions, output string) error {
	ws, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	trend, hit, err := ws.runner.Trend(ctx, ws.ds, opts)
	if err != nil {
		return err
	}

	space := "log-log"
	if !trend.LogLog {
		space = "linear"
	}
	fmt.Fprintln(c.out, styleTitle.Render(fmt.Sprintf("%s vs %s", trend.Y.Label(), trend.X.Label())))
	printKeyValue(c.out, "Fit", space)
	printKeyValue(c.out, "Slope", fmt.Sprintf("%.4f", trend.Line.Slope))
	printKeyValue(c.out, "Intercept", fmt.Sprintf("%.4f", trend.Line.Intercept))
	printKeyValue(c.out, "R²", fmt.Sprintf("%.3f", trend.Line.R2))
	printKeyValue(c.out, "Frontier", strings.Join(trend.Frontier, ", "))

	if chart, err := scatter(trend); err != nil {
		c.Logger.Debug("skipping scatter plot", "err", err)
	} else {
		fmt.Fprintln(c.out, chart)
	}
	printStats(c.out, hit, fmt.Sprintf("%d countries", len(trend.Points)))

	if output != "" {
		if err := writeSnapshot(trend, output); err != nil {
			return err
		}
		printFile(c.out, output)
	}
	return nil
}

// scatter draws the trend's points, frontier and fitted line on a grid of
// terminal cells.
func scatter(t *snapshot.Trend) (string, error) {
	v, err := geo.NewViewport(plotCols, plotRows, 0)
	if err != nil {
		return "", err
	}
	xDomain := plot.PopulationDomain
	if t.X == location.GDP {
		xDomain = plot.GDPDomain
	}
	axes, err := plot.NewAxes(v, t.LogLog, t.LogLog, xDomain, plot.AccountsDomain)
	if err != nil {
		return "", err
	}

	grid := make([][]rune, plotRows)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", plotCols))
	}
	put := func(px, py float64, r rune) {
		if math.IsNaN(px) || math.IsNaN(py) {
			return
		}
		col := min(max(int(px), 0), plotCols-1)
		row := min(max(int(py), 0), plotRows-1)
		grid[row][col] = r
	}

	for col := 0; col < plotCols; col++ {
		x := axes.X.Unmap(float64(col) + 0.5)
		put(float64(col), axes.Y.Map(t.Line.At(x)), '·')
	}
	frontier := make(map[string]bool, len(t.Frontier))
	for _, name := range t.Frontier {
		frontier[name] = true
	}
	for _, p := range t.Points {
		px, py := axes.Map(p)
		if frontier[p.Label] {
			put(px, py, '◆')
		} else {
			put(px, py, '•')
		}
	}

	lines := make([]string, plotRows)
	for i, row := range grid {
		lines[i] = styleDim.Render("│") + string(row)
	}
	return strings.Join(lines, "\n") + "\n" + styleDim.Render("└"+strings.Repeat("─", plotCols)), nil
}

func (c *CLI) runFollowers(ctx context.Context, country string) error {
	ws, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	pts, err := ws.runner.Distribution(ws.ds, country)
	if err != nil {
		return err
	}

	rows := make([][]string, len(pts))
	for i, p := range pts {
		rows[i] = []string{"≥ " + humanize(p.X), humanize(p.Y)}
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Followers", "Accounts").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if col == 1 {
				return styleNumber
			}
			return lipgloss.NewStyle()
		})

	fmt.Fprintln(c.out, styleTitle.Render("Follower distribution in "+country))
	fmt.Fprintln(c.out, t.Render())
	return nil
}
