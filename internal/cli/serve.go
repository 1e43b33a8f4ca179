package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/devmap/devmap/pkg/observability"
	"github.com/devmap/devmap/pkg/server"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rankings, zooms, layouts and trends over HTTP",
		Long: `Serve rankings, zooms, layouts and trends as JSON snapshots over HTTP.

Routes:
  GET /healthz
  GET /api/ranks?kind=&metric=&country=&limit=
  GET /api/zoom/{region}?width=
  GET /api/layout?count=&width=&region=&seed=
  GET /api/trend?x=&loglog=
  GET /api/followers/{country}
  GET /api/click/{login}?region=&count=&width=
  GET /metrics

Send SIGHUP to reload the dataset without restarting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noMetrics)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default: server.addr)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not expose /metrics")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noMetrics bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	var metrics http.Handler
	if cfg.Server.Metrics && !noMetrics {
		hooks, err := observability.NewPrometheusHooks(nil)
		if err != nil {
			return err
		}
		observability.SetAll(hooks)
		defer observability.Reset()
		metrics = hooks.Handler()
	}

	runner := c.newRunner(cfg)
	defer runner.Close()

	prog := newProgress(c.Logger)
	ds, err := runner.Load(ctx, cfg.Data)
	if err != nil {
		return err
	}
	prog.done("Loaded dataset")

	srv, err := server.New(server.Options{
		Runner:   runner,
		Dataset:  ds,
		FullSize: cfg.Map.FullSize,
		Seed:     cfg.Layout.Seed,
		MaxTicks: cfg.Layout.MaxTicks,
		Metrics:  metrics,
		Logger:   c.Logger,
	})
	if err != nil {
		return err
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				ds, err := runner.Load(ctx, cfg.Data)
				if err != nil {
					c.Logger.Error("reload dataset", "err", err)
					continue
				}
				srv.SetDataset(ds)
			}
		}
	}()

	c.Logger.Info("listening", "addr", cfg.Server.Addr, "metrics", metrics != nil)
	return srv.ListenAndServe(ctx, cfg.Server)
}
