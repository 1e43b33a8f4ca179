package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusHooksRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	h, err := NewPrometheusHooks(reg)
	if err != nil {
		t.Fatalf("NewPrometheusHooks: %v", err)
	}
	ctx := context.Background()

	h.OnLoadComplete(ctx, "countries", 10, time.Millisecond, nil)
	h.OnLoadComplete(ctx, "users", 0, time.Millisecond, errors.New("boom"))
	h.OnRankComplete(ctx, "countries", 187, time.Millisecond)
	h.OnLayoutStart(ctx, "a", 16)
	h.OnLayoutTick(ctx, "a", 0.9)
	h.OnLayoutTick(ctx, "a", 0.8)
	h.OnLayoutSuperseded(ctx, "a", 2)
	h.OnLayoutStart(ctx, "b", 16)
	h.OnLayoutSettled(ctx, "b", 300, 2*time.Second)
	h.OnZoom(ctx, "zoomed")
	h.OnZoom(ctx, "toggled")
	h.OnCacheHit(ctx, "layout")
	h.OnCacheMiss(ctx, "layout")
	h.OnCacheMiss(ctx, "layout")
	h.OnCacheSet(ctx, "layout", 512)
	h.OnResponse(ctx, "GET", "/api/ranks", 200, time.Millisecond)

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"load ok", testutil.ToFloat64(h.DatasetLoads.WithLabelValues("countries", "ok")), 1},
		{"load error", testutil.ToFloat64(h.DatasetLoads.WithLabelValues("users", "error")), 1},
		{"rows", testutil.ToFloat64(h.DatasetRows.WithLabelValues("countries")), 187},
		{"started", testutil.ToFloat64(h.LayoutRuns.WithLabelValues("started")), 2},
		{"settled", testutil.ToFloat64(h.LayoutRuns.WithLabelValues("settled")), 1},
		{"superseded", testutil.ToFloat64(h.LayoutRuns.WithLabelValues("superseded")), 1},
		{"ticks", testutil.ToFloat64(h.LayoutTicks), 2},
		{"zoomed", testutil.ToFloat64(h.ZoomRequests.WithLabelValues("zoomed")), 1},
		{"cache hit", testutil.ToFloat64(h.CacheRequests.WithLabelValues("layout", "hit")), 1},
		{"cache miss", testutil.ToFloat64(h.CacheRequests.WithLabelValues("layout", "miss")), 2},
		{"cache bytes", testutil.ToFloat64(h.CacheBytes), 512},
		{"http", testutil.ToFloat64(h.HTTPRequests.WithLabelValues("GET", "/api/ranks", "200")), 1},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestPrometheusHooksReuseRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPrometheusHooks(reg)
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewPrometheusHooks(reg)
	if err != nil {
		t.Fatalf("second registration: %v", err)
	}
	second.OnZoom(context.Background(), "cleared")
	if got := testutil.ToFloat64(first.ZoomRequests.WithLabelValues("cleared")); got != 1 {
		t.Errorf("collectors should be shared, got %v", got)
	}
}

func TestPrometheusHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	h, err := NewPrometheusHooks(reg)
	if err != nil {
		t.Fatal(err)
	}
	h.OnLayoutTick(context.Background(), "a", 1)

	rec := httptest.NewRecorder()
	h.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "devmap_layout_ticks_total 1") {
		t.Errorf("metrics output missing tick counter:\n%s", rec.Body.String())
	}
}
