package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devmap/devmap/pkg/location"
	"github.com/devmap/devmap/pkg/pipeline"
	"github.com/devmap/devmap/pkg/rank"
)

// rankCommand creates the rank command for printing ranked tables.
func (c *CLI) rankCommand() *cobra.Command {
	var (
		kind   string
		metric string
		output string
	)
	opts := pipeline.RankOptions{}

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Print countries or cities ranked by a metric",
		Long: `Print countries or cities ranked by a metric.

Countries with a population of 100,000 or less are left out. City tables can
be restricted to one country with --country.

Metrics: count, logfollowers, followers, accountsper1M, accountsper1Bgdp,
population, gdp.`,
		Example: `  devmap rank
  devmap rank -m accountsper1M -n 30
  devmap rank -k cities --country Germany`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := location.ParseKind(kind)
			if err != nil {
				return err
			}
			m, err := location.ParseMetric(metric)
			if err != nil {
				return err
			}
			opts.Dataset, opts.Metric = k, m
			return c.runRank(cmd.Context(), opts, output)
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", string(location.KindCountries), "dataset: countries, cities")
	cmd.Flags().StringVarP(&metric, "metric", "m", string(location.Count), "metric to rank by")
	cmd.Flags().StringVar(&opts.Country, "country", "", "restrict a city table to one country")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", rank.DefaultRows, "number of rows")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached results")
	cmd.Flags().StringVarP(&output, "output", "o", "", "also write the table as a JSON snapshot")

	return cmd
}

func (c *CLI) runRank(ctx context.Context, opts pipeline.RankOptions, output string) error {
	ws, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	ranks, hit, err := ws.runner.Ranks(ctx, ws.ds, opts)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("Top %s by %s", ranks.Dataset, ranks.Label)
	if ranks.Country != "" {
		title += " in " + ranks.Country
	}
	fmt.Fprintln(c.out, styleTitle.Render(title))
	fmt.Fprintln(c.out, renderRanks(ranks, -1))
	printStats(c.out, hit, fmt.Sprintf("%d rows", len(ranks.Rows)), "max "+formatValue(ranks.Metric, ranks.Max))

	if output != "" {
		if err := writeSnapshot(ranks, output); err != nil {
			return err
		}
		printFile(c.out, output)
	}
	return nil
}
