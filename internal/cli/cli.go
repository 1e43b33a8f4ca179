// Package cli implements the devmap command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/devmap/devmap/pkg/buildinfo"
	"github.com/devmap/devmap/pkg/cache"
	"github.com/devmap/devmap/pkg/config"
	"github.com/devmap/devmap/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "devmap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	out        io.Writer
	configPath string
	dataDir    string
	noCache    bool
}

// New creates a new CLI instance logging to w. Command output goes to
// stdout.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects command output.
func (c *CLI) SetOutput(w io.Writer) {
	c.out = w
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "devmap ranks and maps GitHub accounts by location",
		Long: `devmap ranks countries and cities by GitHub accounts, fits trend lines
against population and GDP, and lays out the most-followed developers on a
decluttered world map. Results are printed, browsed interactively, or served
as JSON snapshots over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.out)

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ./devmap.toml, then the user config dir)")
	root.PersistentFlags().StringVar(&c.dataDir, "data", "", "dataset directory (overrides data.dir)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable caching")

	root.AddCommand(c.rankCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.zoomCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.trendCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.versionCommand())

	return root
}

// =============================================================================
// Config and Runner
// =============================================================================

// loadConfig reads the config file named by --config, or the first one
// found, and applies the global flag overrides.
func (c *CLI) loadConfig() (config.Config, error) {
	path := c.configPath
	if path == "" {
		path = config.Find()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	if c.dataDir != "" {
		cfg.Data.Dir = c.dataDir
	}
	if c.noCache {
		cfg.Cache.Backend = config.BackendNone
	}
	return cfg, nil
}

// newRunner creates a pipeline runner over the configured cache. An
// unreachable cache is logged and replaced by a null cache.
func (c *CLI) newRunner(cfg config.Config) *pipeline.Runner {
	store, err := cfg.OpenCache()
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without it", "backend", cfg.Cache.Backend, "err", err)
		store = cache.NewNullCache()
	}
	return pipeline.NewRunner(store, cfg.Keyer(), c.Logger)
}

// workspace is what most commands operate on.
type workspace struct {
	cfg    config.Config
	runner *pipeline.Runner
	ds     *pipeline.Dataset
}

// open loads the config and the dataset it points at.
func (c *CLI) open(ctx context.Context) (*workspace, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	runner := c.newRunner(cfg)

	prog := newProgress(c.Logger)
	ds, err := runner.Load(ctx, cfg.Data)
	if err != nil {
		runner.Close()
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	prog.done(fmt.Sprintf("Loaded %d countries, %d cities, %d users", len(ds.Countries), len(ds.Cities), len(ds.Users)))
	return &workspace{cfg: cfg, runner: runner, ds: ds}, nil
}

func (w *workspace) Close() error {
	return w.runner.Close()
}
