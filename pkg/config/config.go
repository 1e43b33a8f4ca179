// Package config loads devmap settings from a TOML file.
//
// Every field has a default, so an empty or missing file yields a working
// configuration. CLI flags override file values after loading.
//
//	[data]
//	dir = "data"
//
//	[map]
//	count = 2048
//	full_size = ["Australia", "Canada", "China"]
//
//	[cache]
//	backend = "redis"
//	redis.url = "redis://localhost:6379/0"
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/devmap/devmap/pkg/cache"
	"github.com/devmap/devmap/pkg/dotmap"
	"github.com/devmap/devmap/pkg/errors"
	"github.com/devmap/devmap/pkg/force"
	"github.com/devmap/devmap/pkg/geo"
	"github.com/devmap/devmap/pkg/zoom"
)

// FileName is the configuration file looked up by Find.
const FileName = "devmap.toml"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the complete devmap configuration.
type Config struct {
	Data     Data     `toml:"data"`
	Viewport Viewport `toml:"viewport"`
	Map      Map      `toml:"map"`
	Layout   Layout   `toml:"layout"`
	Cache    Cache    `toml:"cache"`
	Server   Server   `toml:"server"`
}

// Data locates the dataset files. Relative file names resolve against Dir.
type Data struct {
	Dir       string `toml:"dir"`
	Countries string `toml:"countries"`
	Cities    string `toml:"cities"`
	Users     string `toml:"users"`
	World     string `toml:"world"`
	Followers string `toml:"followers"`
}

// Path resolves a dataset file name against Dir.
func (d Data) Path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(d.Dir, name)
}

// Viewport sets the default drawing width. Heights derive from it.
type Viewport struct {
	Width float64 `toml:"width"`
}

// Map configures the dot map.
type Map struct {
	Count    int      `toml:"count"`
	FullSize []string `toml:"full_size"`
}

// Layout configures the collision layout.
type Layout struct {
	// Interval paces live layouts in the browse TUI. Zero runs ticks back
	// to back.
	Interval time.Duration `toml:"interval"`
	MaxTicks int           `toml:"max_ticks"`
	Seed     int64         `toml:"seed"`
}

// Cache selects and configures the cache backend.
type Cache struct {
	Backend string            `toml:"backend"`
	Dir     string            `toml:"dir"`
	Prefix  string            `toml:"prefix"`
	Redis   cache.RedisConfig `toml:"redis"`
}

// Server configures the HTTP API.
type Server struct {
	Addr            string        `toml:"addr"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
	Metrics         bool          `toml:"metrics"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Data: Data{
			Dir:       "data",
			Countries: "top_countries.tsv",
			Cities:    "top_cities.tsv",
			Users:     "top_users.json",
			World:     "world.geojson",
			Followers: "follower_distribution.tsv",
		},
		Viewport: Viewport{Width: dotmap.DefaultWidth},
		Map: Map{
			Count:    dotmap.DefaultCount,
			FullSize: slices.Clone(zoom.DefaultFullSize),
		},
		Layout: Layout{
			Interval: force.DefaultInterval,
			MaxTicks: force.DefaultMaxTicks,
		},
		Cache: Cache{Backend: BackendFile},
		Server: Server{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Metrics:         true,
		},
	}
}

// Decode reads TOML from r over the defaults and validates the result.
// Unknown keys are rejected so that typos do not silently fall back to
// defaults.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(names, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads the file at path. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	if err := errors.ValidatePath(path); err != nil {
		return Config{}, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Find returns the first devmap.toml in the working directory or the user
// config directory, or "" if there is none.
func Find() string {
	candidates := []string{FileName}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "devmap", FileName))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// Write encodes cfg as TOML.
func Write(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// Validate checks value ranges and cross-field requirements.
func (c Config) Validate() error {
	w := c.Viewport.Width
	if err := errors.ValidateViewport(w, geo.WorldHeight(w)); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "viewport.width")
	}
	if c.Map.Count < dotmap.MinCount || c.Map.Count > dotmap.MaxCount {
		return errors.New(errors.ErrCodeInvalidConfig, "map.count must be in [%d, %d], got %d",
			dotmap.MinCount, dotmap.MaxCount, c.Map.Count)
	}
	if c.Layout.Interval < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout.interval must not be negative")
	}
	if c.Layout.MaxTicks < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout.max_ticks must not be negative")
	}
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.Redis.URL == "" && c.Cache.Redis.Addr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis needs url or addr")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be file, redis or none, got %q", c.Cache.Backend)
	}
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr is required")
	}
	return nil
}

// OpenCache constructs the configured cache backend, instrumented for the
// observability hooks.
func (c Config) OpenCache() (cache.Cache, error) {
	var (
		backend cache.Cache
		err     error
	)
	switch c.Cache.Backend {
	case BackendNone:
		backend = cache.NewNullCache()
	case BackendRedis:
		backend, err = cache.NewRedisCache(c.Cache.Redis)
	default:
		dir := c.Cache.Dir
		if dir == "" {
			if dir, err = cache.DefaultDir(); err != nil {
				return nil, err
			}
		}
		backend, err = cache.NewFileCache(dir)
	}
	if err != nil {
		return nil, err
	}
	return cache.Instrument(backend), nil
}

// Keyer returns the cache keyer, scoped when a prefix is set.
func (c Config) Keyer() cache.Keyer {
	if c.Cache.Prefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Cache.Prefix)
}
