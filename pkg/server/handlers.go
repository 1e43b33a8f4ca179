package server

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	derrors "github.com/devmap/devmap/pkg/errors"
	"github.com/devmap/devmap/pkg/location"
	"github.com/devmap/devmap/pkg/pipeline"
)

type health struct {
	Status   string    `json:"status"`
	Dataset  string    `json:"dataset"`
	LoadedAt time.Time `json:"loaded_at"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ds := s.Dataset()
	writeJSON(w, http.StatusOK, health{Status: "ok", Dataset: ds.Hash, LoadedAt: ds.LoadedAt})
}

func (s *Server) handleRanks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intParam(q, "limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ranks, hit, err := s.runner.Ranks(r.Context(), s.Dataset(), pipeline.RankOptions{
		Dataset: location.Kind(q.Get("kind")),
		Metric:  location.Metric(q.Get("metric")),
		Country: q.Get("country"),
		Limit:   limit,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeSnapshot(w, ranks, hit)
}

func (s *Server) handleZoom(w http.ResponseWriter, r *http.Request) {
	width, err := floatParam(r.URL.Query(), "width")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	z, err := s.runner.Zoom(r.Context(), s.Dataset(), pipeline.ZoomOptions{
		Region:   pathParam(r, "region"),
		Width:    width,
		FullSize: s.opts.FullSize,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeSnapshot(w, z, false)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	width, err := floatParam(q, "width")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	count, err := intParam(q, "count")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	seed := s.opts.Seed
	if q.Has("seed") {
		v, err := intParam(q, "seed")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		seed = int64(v)
	}

	layout, hit, err := s.runner.Layout(r.Context(), s.Dataset(), pipeline.LayoutOptions{
		Width:    width,
		Count:    count,
		Region:   q.Get("region"),
		Seed:     seed,
		MaxTicks: s.opts.MaxTicks,
		FullSize: s.opts.FullSize,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeSnapshot(w, layout, hit)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	loglog := true
	if q.Has("loglog") {
		v, err := strconv.ParseBool(q.Get("loglog"))
		if err != nil {
			s.writeError(w, r, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "loglog"))
			return
		}
		loglog = v
	}
	trend, hit, err := s.runner.Trend(r.Context(), s.Dataset(), pipeline.TrendOptions{
		X:      location.Metric(q.Get("x")),
		LogLog: loglog,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeSnapshot(w, trend, hit)
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	width, err := floatParam(q, "width")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	count, err := intParam(q, "count")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.Click(r.Context(), s.Dataset(), pipeline.ClickOptions{
		Login:    pathParam(r, "login"),
		Region:   q.Get("region"),
		Width:    width,
		Count:    count,
		FullSize: s.opts.FullSize,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type distribution struct {
	Country string      `json:"country"`
	Points  []plotPoint `json:"points"`
}

type plotPoint struct {
	Followers float64 `json:"followers"`
	Accounts  float64 `json:"accounts"`
}

func (s *Server) handleFollowers(w http.ResponseWriter, r *http.Request) {
	country := pathParam(r, "country")
	pts, err := s.runner.Distribution(s.Dataset(), country)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := distribution{Country: country, Points: make([]plotPoint, len(pts))}
	for i, p := range pts {
		out.Points[i] = plotPoint{Followers: p.X, Accounts: p.Y}
	}
	writeJSON(w, http.StatusOK, out)
}

// pathParam returns a decoded path parameter. chi matches on the raw path
// when the request carries one.
func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

func intParam(q url.Values, name string) (int, error) {
	v := q.Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "%s must be an integer", name)
	}
	return n, nil
}

func floatParam(q url.Values, name string) (float64, error) {
	v := q.Get(name)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "%s must be a number", name)
	}
	return f, nil
}
