package cli

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/devmap/devmap/pkg/dotmap"
	"github.com/devmap/devmap/pkg/force"
	"github.com/devmap/devmap/pkg/location"
	"github.com/devmap/devmap/pkg/rank"
)

// browseCommand creates the interactive ranking browser.
func (c *CLI) browseCommand() *cobra.Command {
	var noMap bool
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the country and city rankings interactively",
		Long: `Browse the country and city rankings interactively.

Both tables stay on the same metric. Selecting a country lists its cities.
Zooming into a country restarts the developer dot map layout in the
background; its progress is shown below the table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBrowse(cmd.Context(), noMap)
		},
	}
	cmd.Flags().BoolVar(&noMap, "no-map", false, "do not run the dot map layout")
	return cmd
}

func (c *CLI) runBrowse(ctx context.Context, noMap bool) error {
	ws, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	countries := rank.NewTable(location.KindCountries, ws.ds.Countries)
	cities := rank.NewTable(location.KindCities, ws.ds.Cities)

	var m *dotmap.Map
	if !noMap && ws.ds.Regions != nil && len(ws.ds.Users) > 0 {
		sched := force.NewIntervalScheduler(ws.cfg.Layout.Interval)
		defer sched.Stop()
		m, err = dotmap.New(ws.ds.Regions, ws.ds.Users, dotmap.Options{
			Width:     ws.cfg.Viewport.Width,
			Count:     ws.cfg.Map.Count,
			FullSize:  ws.cfg.Map.FullSize,
			Scheduler: sched,
			Logger:    c.Logger,
			Seed:      ws.cfg.Layout.Seed,
			MaxTicks:  ws.cfg.Layout.MaxTicks,
		})
		if err != nil {
			return err
		}
	}

	model := NewBrowseModel(countries, cities, m)
	if m != nil {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		m.Watch(ctx, model.frames)
		defer m.Unwatch()
	}

	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
