package cli

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/devmap/devmap/pkg/pipeline"
	"github.com/devmap/devmap/pkg/snapshot"
)

// layoutCommand creates the layout command for settling the developer map.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		top    int
	)
	opts := pipeline.LayoutOptions{}

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Settle the developer dot map",
		Long: `Settle the developer dot map.

The most-followed developers are placed at their projected locations and
pushed apart until no two dots overlap. Zooming into a region shrinks the
collision radius so dots stay separated on screen.

The count is clamped to the range 16..4096. Results are cached; --refresh
recomputes them.`,
		Example: `  devmap layout -n 2048 -o layout.json
  devmap layout --region Germany --top 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), cmd, opts, output, top)
		},
	}

	cmd.Flags().Float64VarP(&opts.Width, "width", "w", 0, "map width (default: viewport.width)")
	cmd.Flags().IntVarP(&opts.Count, "count", "n", 0, "number of developers (default: map.count)")
	cmd.Flags().StringVarP(&opts.Region, "region", "r", "", "zoom into a region first")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "jitter seed (default: layout.seed)")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached results")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the layout as a JSON snapshot")
	cmd.Flags().IntVar(&top, "top", 10, "print the most displaced dots")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, cmd *cobra.Command, opts pipeline.LayoutOptions, output string, top int) error {
	ws, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	if opts.Width == 0 {
		opts.Width = ws.cfg.Viewport.Width
	}
	if opts.Count == 0 {
		opts.Count = ws.cfg.Map.Count
	}
	if !cmd.Flags().Changed("seed") {
		opts.Seed = ws.cfg.Layout.Seed
	}
	opts.MaxTicks = ws.cfg.Layout.MaxTicks
	opts.FullSize = ws.cfg.Map.FullSize

	spin := newSpinner(ctx, os.Stderr, "Settling layout")
	opts.Observer = spin
	spin.Start()
	layout, hit, err := ws.runner.Layout(ctx, ws.ds, opts)
	if err != nil {
		spin.StopWithError(err.Error())
		return err
	}
	spin.Stop()

	title := fmt.Sprintf("%d developers", len(layout.Dots))
	if layout.Zoom.Zoomed() {
		title += " in " + layout.Zoom.Region
	}
	printSuccess(c.out, "%s", title)
	printStats(c.out, hit,
		fmt.Sprintf("%d ticks", layout.Ticks),
		fmt.Sprintf("radius %s", fmtFloat(layout.CollisionRadius)),
		fmt.Sprintf("%d hidden", hiddenDots(layout)))
	printDisplaced(c, layout, top)

	if output != "" {
		if err := writeSnapshot(layout, output); err != nil {
			return err
		}
		printFile(c.out, output)
	} else {
		printNextStep(c.out, "Save it", "devmap layout -o layout.json")
	}
	return nil
}

func hiddenDots(l *snapshot.Layout) int {
	n := 0
	for _, d := range l.Dots {
		if d.Hidden {
			n++
		}
	}
	return n
}

// printDisplaced lists the n visible dots pushed furthest from where their
// owners live.
func printDisplaced(c *CLI, l *snapshot.Layout, n int) {
	if n <= 0 {
		return
	}
	type moved struct {
		dot snapshot.Dot
		by  float64
	}
	var ms []moved
	for _, d := range l.Dots {
		if !d.Hidden {
			ms = append(ms, moved{d, d.Displacement()})
		}
	}
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].by > ms[j].by })
	for i, m := range ms {
		if i == n || m.by == 0 {
			break
		}
		printDetail(c.out, "%-20s %-16s moved %.1f", m.dot.Login, m.dot.Country, m.by)
	}
}
