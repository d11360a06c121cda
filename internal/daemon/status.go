// SPDX-License-Identifier: MIT

package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ManuGH/eventd/internal/config"
	"github.com/ManuGH/eventd/internal/domain/event/manager"
	"github.com/ManuGH/eventd/internal/domain/event/model"
	"github.com/ManuGH/eventd/internal/domain/event/ports"
	"github.com/ManuGH/eventd/internal/version"
)

const maxRankingLimit = 100

// StatusServer serves read-only views of the engine for operators.
type StatusServer struct {
	engine    *manager.Engine
	rankings  ports.RankingStore
	rateLimit int
	service   string
	started   time.Time
}

func NewStatusServer(engine *manager.Engine, rankings ports.RankingStore, cfg config.StatusConfig, service string) *StatusServer {
	return &StatusServer{
		engine:    engine,
		rankings:  rankings,
		rateLimit: cfg.RateLimit,
		service:   service,
		started:   time.Now(),
	}
}

// Handler builds the router. /healthz and /metrics are not rate limited or
// traced.
func (s *StatusServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if s.rateLimit > 0 {
			r.Use(httprate.Limit(s.rateLimit, time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
					w.Header().Set("Retry-After", "60")
					writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate_limit_exceeded"})
				}),
			))
		}
		r.Get("/api/events", s.handleEvents)
		r.Get("/api/instances", s.handleInstances)
		r.Get("/api/instances/{id}", s.handleInstance)
		r.Get("/api/rankings/game/{gameID}", s.handleRankingsByGame)
		r.Get("/api/rankings/key/{map}/{level}", s.handleRankingsByKey)
	})

	return otelhttp.NewHandler(r, s.service,
		otelhttp.WithFilter(func(req *http.Request) bool {
			return req.URL.Path != "/healthz" && req.URL.Path != "/metrics"
		}),
		otelhttp.WithSpanNameFormatter(func(_ string, req *http.Request) string {
			return "HTTP " + req.Method + " " + req.URL.Path
		}),
	)
}

func (s *StatusServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"version":   version.Version,
		"uptime":    time.Since(s.started).Round(time.Second).String(),
		"instances": len(s.engine.Instances()),
	})
}

type eventView struct {
	Name      string            `json:"name"`
	Variant   model.VariantKind `json:"variant"`
	MapNumber int               `json:"map_number"`
	Levels    int               `json:"levels"`
	Policy    string            `json:"policy"`
	Capacity  int               `json:"capacity"`
	Lifetime  string            `json:"lifetime"`
}

func (s *StatusServer) handleEvents(w http.ResponseWriter, _ *http.Request) {
	defs := s.engine.Definitions()
	out := make([]eventView, 0, len(defs))
	for _, d := range defs {
		out = append(out, eventView{
			Name:      d.Name,
			Variant:   d.Variant,
			MapNumber: d.MapNumber,
			Levels:    d.Levels,
			Policy:    string(d.Policy),
			Capacity:  d.Capacity,
			Lifetime:  d.Lifetime().String(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *StatusServer) handleInstances(w http.ResponseWriter, _ *http.Request) {
	insts := s.engine.Instances()
	out := make([]manager.Status, 0, len(insts))
	for _, inst := range insts {
		out = append(out, inst.Status())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *StatusServer) handleInstance(w http.ResponseWriter, r *http.Request) {
	inst, ok := s.engine.Instance(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "instance not found"})
		return
	}
	writeJSON(w, http.StatusOK, inst.Status())
}

func (s *StatusServer) handleRankingsByGame(w http.ResponseWriter, r *http.Request) {
	if s.rankings == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no ranking store"})
		return
	}
	rows, err := s.rankings.ListByGame(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if len(rows) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "game not found"})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *StatusServer) handleRankingsByKey(w http.ResponseWriter, r *http.Request) {
	if s.rankings == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no ranking store"})
		return
	}
	key, limit, err := parseKeyQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	rows, err := s.rankings.ListByKey(r.Context(), key, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if rows == nil {
		rows = []model.RankingRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

var errBadQuery = errors.New("bad query")

func parseKeyQuery(r *http.Request) (model.EventKey, int, error) {
	mapNumber, err := strconv.Atoi(chi.URLParam(r, "map"))
	if err != nil || mapNumber < 0 {
		return model.EventKey{}, 0, fmt.Errorf("%w: map must be a non-negative integer", errBadQuery)
	}
	level, err := strconv.Atoi(chi.URLParam(r, "level"))
	if err != nil || level < 1 {
		return model.EventKey{}, 0, fmt.Errorf("%w: level must be positive", errBadQuery)
	}
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return model.EventKey{}, 0, fmt.Errorf("%w: limit must be positive", errBadQuery)
		}
	}
	limit = min(limit, maxRankingLimit)
	key := model.EventKey{
		MapNumber: mapNumber,
		Level:     level,
		Owner:     model.PlayerID(r.URL.Query().Get("owner")),
	}
	return key, limit, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
