package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/devmap/devmap/pkg/cache"
	"github.com/devmap/devmap/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Map.Count != 1024 {
		t.Errorf("Map.Count = %d, want 1024", cfg.Map.Count)
	}
	if len(cfg.Map.FullSize) != 7 {
		t.Errorf("FullSize = %v", cfg.Map.FullSize)
	}
	if got := cfg.Data.Path(cfg.Data.Countries); got != filepath.Join("data", "top_countries.tsv") {
		t.Errorf("Data.Path = %s", got)
	}
	if got := cfg.Data.Path("/abs/users.json"); got != "/abs/users.json" {
		t.Errorf("absolute path should be kept: %s", got)
	}
}

func TestDecodeOverridesDefaults(t *testing.T) {
	src := `
[data]
dir = "/srv/devmap"

[map]
count = 2048
full_size = ["Brazil"]

[layout]
interval = "33ms"
seed = 7

[cache]
backend = "redis"
prefix = "prod:"
redis.url = "redis://localhost:6379/1"
redis.timeout = "2s"

[server]
addr = "127.0.0.1:9000"
`
	cfg, err := Decode(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Data.Dir != "/srv/devmap" || cfg.Data.Users != "top_users.json" {
		t.Errorf("Data = %+v", cfg.Data)
	}
	if cfg.Map.Count != 2048 || len(cfg.Map.FullSize) != 1 || cfg.Map.FullSize[0] != "Brazil" {
		t.Errorf("Map = %+v", cfg.Map)
	}
	if cfg.Layout.Interval != 33*time.Millisecond || cfg.Layout.Seed != 7 {
		t.Errorf("Layout = %+v", cfg.Layout)
	}
	if cfg.Cache.Redis.Timeout != 2*time.Second {
		t.Errorf("Redis.Timeout = %v", cfg.Cache.Redis.Timeout)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if key := cfg.Keyer().LayoutKey("h", cache.LayoutKeyOpts{}); !strings.HasPrefix(key, "prod:layout:") {
		t.Errorf("scoped keyer key = %s", key)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `[map`},
		{"unknown key", "[map]\ncolor = \"red\""},
		{"count too small", "[map]\ncount = 4"},
		{"count too large", "[map]\ncount = 10000"},
		{"bad width", "[viewport]\nwidth = -5"},
		{"bad backend", "[cache]\nbackend = \"memcached\""},
		{"redis without address", "[cache]\nbackend = \"redis\""},
		{"negative interval", "[layout]\ninterval = \"-1s\""},
		{"empty addr", "[server]\naddr = \"\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.src))
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Decode() = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	if err != nil || cfg.Map.Count != Default().Map.Count {
		t.Fatalf("Load(\"\") = %+v, %v", cfg, err)
	}

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: %v", err)
	}

	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("[viewport]\nwidth = 640\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Viewport.Width != 640 {
		t.Errorf("Viewport.Width = %v", cfg.Viewport.Width)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	want := Default()
	want.Layout.Seed = 42
	var buf bytes.Buffer
	if err := Write(&buf, want); err != nil {
		t.Fatal(err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode(Write(Default())) = %v\n%s", err, buf.String())
	}
	if got.Layout != want.Layout || got.Server != want.Server || got.Data != want.Data {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestOpenCache(t *testing.T) {
	cfg := Default()
	cfg.Cache.Dir = t.TempDir()
	c, err := cfg.OpenCache()
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if _, ok := c.(*cache.Instrumented); !ok {
		t.Errorf("OpenCache() = %T, want instrumented", c)
	}

	cfg.Cache.Backend = BackendNone
	if _, err := cfg.OpenCache(); err != nil {
		t.Error(err)
	}
}
