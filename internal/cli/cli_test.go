package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/devmap/devmap/pkg/config"
	derrors "github.com/devmap/devmap/pkg/errors"
	"github.com/devmap/devmap/pkg/snapshot"
)

const testData = "../../pkg/pipeline/testdata"

// execute runs the root command against the pipeline test dataset with an
// isolated config file and returns what it printed.
func execute(t *testing.T, configBody string, args ...string) (string, error) {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), config.FileName)
	if err := os.WriteFile(cfgPath, []byte(configBody), 0o644); err != nil {
		t.Fatal(err)
	}

	var out, logs bytes.Buffer
	c := New(&logs, LogInfo)
	c.SetOutput(&out)
	root := c.RootCommand()
	root.SetErr(&logs)
	root.SetArgs(append([]string{"--config", cfgPath, "--data", testData, "--no-cache"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRankCommand(t *testing.T) {
	out, err := execute(t, "", "rank")
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	for _, want := range []string{"Top countries by GitHub Accounts", "United States", "1st", "120.0k", "fresh"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Atlantis") {
		t.Errorf("countries without population should be hidden:\n%s", out)
	}
}

func TestRankCommandCities(t *testing.T) {
	out, err := execute(t, "", "rank", "-k", "cities", "--country", "United States")
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if !strings.Contains(out, "San Francisco") || !strings.Contains(out, "New York") {
		t.Errorf("output missing US cities:\n%s", out)
	}
	if strings.Contains(out, "Berlin") {
		t.Errorf("country filter not applied:\n%s", out)
	}
}

func TestRankCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code derrors.Code
	}{
		{"bad metric", []string{"rank", "-m", "stars"}, derrors.ErrCodeInvalidMetric},
		{"bad kind", []string{"rank", "-k", "planets"}, derrors.ErrCodeInvalidInput},
		{"missing data", []string{"rank", "--data", t.TempDir()}, derrors.ErrCodeFileNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", tt.args...)
			if !derrors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestRankCommandWritesSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranks.json")
	if _, err := execute(t, "", "rank", "-m", "accountsper1M", "-n", "2", "-o", path); err != nil {
		t.Fatalf("rank: %v", err)
	}
	s, err := snapshot.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Kind != snapshot.KindRanks || len(s.Ranks.Rows) != 2 || s.Ranks.Rows[0].Name != "Iceland" {
		t.Errorf("snapshot = %+v", s.Ranks)
	}
}

func TestZoomCommand(t *testing.T) {
	out, err := execute(t, "", "zoom", "United", "States", "-w", "600")
	if err != nil {
		t.Fatalf("zoom: %v", err)
	}
	for _, want := range []string{"Zoom to United States", "600 × 300", "translate("} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if _, err := execute(t, "", "zoom", "Atlantis"); !derrors.Is(err, derrors.ErrCodeUnknownRegion) {
		t.Errorf("zoom Atlantis = %v, want UNKNOWN_REGION", err)
	}
}

func TestLayoutCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.json")
	out, err := execute(t, "", "layout", "-n", "16", "-w", "500", "-o", path)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if !strings.Contains(out, "developers") {
		t.Errorf("output missing summary:\n%s", out)
	}

	s, err := snapshot.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Kind != snapshot.KindLayout || s.Layout.Count != 16 || len(s.Layout.Dots) != 5 {
		t.Errorf("layout = count %d, %d dots", s.Layout.Count, len(s.Layout.Dots))
	}
	if got := hiddenDots(s.Layout); got != 1 {
		t.Errorf("hidden dots = %d, want 1", got)
	}
}

func TestLayoutCommandUsesConfigSeed(t *testing.T) {
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json")
	if _, err := execute(t, "[layout]\nseed = 7\n", "layout", "-n", "16", "-o", a); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "", "layout", "-n", "16", "--seed", "7", "-o", b); err != nil {
		t.Fatal(err)
	}
	sa, err := snapshot.ReadFile(a)
	if err != nil {
		t.Fatal(err)
	}
	sb, err := snapshot.ReadFile(b)
	if err != nil {
		t.Fatal(err)
	}
	for i := range sa.Layout.Dots {
		if sa.Layout.Dots[i].X != sb.Layout.Dots[i].X || sa.Layout.Dots[i].Y != sb.Layout.Dots[i].Y {
			t.Fatalf("dot %d differs between config seed and flag seed", i)
		}
	}
}

func TestTrendCommand(t *testing.T) {
	out, err := execute(t, "", "trend", "-x", "gdp")
	if err != nil {
		t.Fatalf("trend: %v", err)
	}
	for _, want := range []string{"GitHub Accounts vs GDP", "log-log", "Frontier", "◆"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if _, err := execute(t, "", "trend", "-x", "count"); !derrors.Is(err, derrors.ErrCodeInvalidMetric) {
		t.Errorf("trend -x count = %v, want INVALID_METRIC", err)
	}
}

func TestTrendCommandFollowers(t *testing.T) {
	out, err := execute(t, "", "trend", "--followers", "France")
	if err != nil {
		t.Fatalf("trend --followers: %v", err)
	}
	for _, want := range []string{"Follower distribution in France", "≥ 1000", "942"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devmap.toml")
	if _, err := execute(t, "", "config", "init", path); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := execute(t, "", "config", "init", path); err == nil {
		t.Error("config init should refuse to overwrite")
	}
	if _, err := execute(t, "", "config", "init", "--force", path); err != nil {
		t.Errorf("config init --force: %v", err)
	}
	if _, err := config.Load(path); err != nil {
		t.Errorf("written config does not load: %v", err)
	}

	out, err := execute(t, "[map]\ncount = 2048\n", "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "count = 2048") || !strings.Contains(out, `backend = "none"`) {
		t.Errorf("config show should reflect file and flags:\n%s", out)
	}
}

func TestConfigRejectsUnknownKeys(t *testing.T) {
	_, err := execute(t, "[map]\ncuont = 10\n", "rank")
	if !derrors.Is(err, derrors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}

func TestCacheCommands(t *testing.T) {
	dir := t.TempDir()
	body := "[cache]\ndir = \"" + filepath.ToSlash(dir) + "\"\n"

	out, err := execute(t, body, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != filepath.ToSlash(dir) {
		t.Errorf("cache path = %q, want %q", out, dir)
	}

	if err := os.WriteFile(filepath.Join(dir, "entry"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, body, "cache", "clear"); err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("cache clear left %d entries", len(entries))
	}

	out, err = execute(t, body, "cache", "ping")
	if err != nil || !strings.Contains(out, "nothing to ping") {
		t.Errorf("cache ping = %q, %v", out, err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "devmap ") {
		t.Errorf("version output = %q", out)
	}
}
