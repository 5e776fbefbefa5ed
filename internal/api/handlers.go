package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"weightnav/internal/metrics"
	"weightnav/internal/model"
	"weightnav/internal/opt"
	"weightnav/internal/store"
)

const maxBodyBytes = 8 << 20

// SolveHandler handles POST /v1/solve
func (s *Server) SolveHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.Limiter != nil && !s.Limiter.Allow() {
		w.Header().Set("Retry-After", "1")
		writeProblem(w, http.StatusTooManyRequests, "Too Many Requests", "solve rate limit exceeded", r.URL.Path)
		return
	}
	var req model.SolveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateSolveRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid solve request", err.Error(), r.URL.Path)
		return
	}

	opts := s.Cfg.Solver.Options(s.Log.WithField("component", "solver"))
	if req.Seed != 0 {
		opts.Seed = req.Seed
	}
	if req.RandomSeeds != 0 {
		opts.RandomSeeds = req.RandomSeeds
	}

	resp := model.SolveResponse{Solutions: make([]model.SolutionRecord, 0, len(req.Cases))}
	for i, c := range req.Cases {
		rec, err := s.solveOne(r.Context(), c, opts, req.NoCache)
		if err != nil {
			s.writeError(w, r, errors.WithMessagef(err, "case %d", i))
			return
		}
		resp.Solutions = append(resp.Solutions, rec)
	}
	writeJSON(w, http.StatusOK, resp)
}

// solveOne returns a stored solution for an identical input, or solves,
// stores and announces a new one.
func (s *Server) solveOne(ctx context.Context, c model.CaseIn, opts opt.Options, noCache bool) (model.SolutionRecord, error) {
	key := store.ComputeInputKey(c.W0, c.Targets, opts.Seed, opts.RandomSeeds)
	if !noCache {
		rec, err := s.Store.FindByInputKey(ctx, key)
		switch {
		case err == nil:
			metrics.Solves.WithLabelValues("cached").Inc()
			rec.Cached = true
			return rec, nil
		case !errors.Is(err, store.ErrNotFound):
			return model.SolutionRecord{}, err
		}
	}

	opts.Logger = opts.Logger.WithFields(log.Fields{"label": c.Label, "inputKey": key})
	sol, m, err := opt.SolveCase(ctx, c.Targets, c.W0, opts)
	if err != nil {
		metrics.Solves.WithLabelValues("error").Inc()
		return model.SolutionRecord{}, err
	}
	metrics.ObserveSolve(m)

	rec, err := s.Store.SaveSolution(ctx, model.SolutionRecord{
		InputKey:  key,
		Label:     c.Label,
		W0:        c.W0,
		Targets:   c.Targets,
		Order:     sol.Order,
		Length:    sol.Length,
		Reachable: m.Reachable,
		Metrics:   m,
	})
	if err != nil {
		return model.SolutionRecord{}, errors.Wrap(err, "save solution")
	}

	evt := model.SolutionEvent{
		Type:       model.EventSolutionCompleted,
		SolutionID: rec.ID,
		Label:      rec.Label,
		Length:     rec.Length,
		Reachable:  rec.Reachable,
		Strategy:   string(m.BestStrategy),
		TS:         time.Now().UTC().Format(time.RFC3339),
	}
	s.Broker.Publish(TopicSolutions, evt)
	s.Notifier.Enqueue(evt.Type, evt)
	return rec, nil
}

// SolutionsIndexHandler handles GET /v1/solutions
func (s *Server) SolutionsIndexHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", err.Error(), r.URL.Path)
			return
		}
		limit = n
	}
	items, next, err := s.Store.ListSolutions(r.Context(), q.Get("cursor"), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
}

// SolutionByIDHandler handles GET /v1/solutions/{id}
func (s *Server) SolutionByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/solutions/")
	if id == "" || strings.Contains(id, "/") {
		writeProblem(w, http.StatusNotFound, "Not Found", "missing id", r.URL.Path)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	rec, err := s.Store.GetSolution(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ReadyHandler pings the Postgres store and Redis broker when they are in use.
func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	type pinger interface{ Ping(ctx context.Context) error }
	ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
	defer cancel()
	for name, dep := range map[string]any{"store": s.Store, "broker": s.Broker} {
		if p, ok := dep.(pinger); ok {
			if err := p.Ping(ctx); err != nil {
				writeProblem(w, http.StatusServiceUnavailable, "Not Ready", name+": "+err.Error(), r.URL.Path)
				return
			}
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
