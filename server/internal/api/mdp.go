package api

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/decisionstack/decisionstack/pkg/rvi"
	"github.com/decisionstack/decisionstack/pkg/types"
	"github.com/decisionstack/decisionstack/server/internal/config"
	"github.com/decisionstack/decisionstack/server/internal/store"
	"github.com/decisionstack/decisionstack/server/internal/telemetry"
)

// RequestIDHeader carries the solve ID in both directions.
const RequestIDHeader = "X-Request-Id"

// MDPDeps wires the mdp-service handler.
type MDPDeps struct {
	Store    *store.Store
	Limits   *config.Limits
	Registry *telemetry.Registry
	// Stream, when non-nil, is mounted at /ws/stream.
	Stream http.Handler
}

// MDPHandler serves the mdp-service HTTP surface.
type MDPHandler struct {
	store  *store.Store
	limits *config.Limits
	mux    *http.ServeMux

	solves     *prometheus.CounterVec
	iterations prometheus.Histogram
	duration   prometheus.Histogram
}

// NewMDP creates the mdp-service handler and registers all routes.
func NewMDP(d MDPDeps) http.Handler {
	h := &MDPHandler{
		store:  d.Store,
		limits: d.Limits,
		mux:    http.NewServeMux(),
		solves: d.Registry.NewCounterVec("decisionstack_mdp_solves_total",
			"Completed RVI solves by termination reason.", "termination"),
		iterations: d.Registry.NewHistogram("decisionstack_mdp_solve_iterations",
			"Bellman passes per solve.", prometheus.ExponentialBuckets(1, 4, 8)),
		duration: d.Registry.NewHistogram("decisionstack_mdp_solve_duration_seconds",
			"Wall-clock time spent inside the solver.", prometheus.ExponentialBuckets(0.0001, 4, 9)),
	}
	m := telemetry.NewHTTPMetrics(d.Registry, "decisionstack_mdp")

	h.mux.HandleFunc("/health", m.Wrap("/health", health))
	h.mux.HandleFunc("/mdp/relative-value-iteration", m.Wrap("/mdp/relative-value-iteration", h.solve))
	h.mux.HandleFunc("/api/v1/solves", m.Wrap("/api/v1/solves", h.listSolves))
	h.mux.HandleFunc("/api/v1/solves/", m.Wrap("/api/v1/solves/{id}", h.getSolve)) // subtree, extracts {id}
	h.mux.Handle("/metrics", d.Registry.Handler())
	if d.Stream != nil {
		h.mux.Handle("/ws/stream", d.Stream)
	}
	h.mux.HandleFunc("/", notFound)

	return h
}

func (h *MDPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// solve returns POST /mdp/relative-value-iteration.
func (h *MDPHandler) solve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := requestID(r)
	w.Header().Set(RequestIDHeader, id)

	var req types.SolveRequest
	if err := decodeBody(w, r, &req); err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.SRef == nil {
		fail(w, fmt.Errorf("%w: s_ref is required", rvi.ErrInvalidParameter))
		return
	}
	prob, err := rvi.NewProblem(req.TPM, req.TRM, *req.SRef, req.Epsilon, req.Mode)
	if err != nil {
		slog.Warn("mdp: rejected problem", "request_id", id, "err", err)
		fail(w, err)
		return
	}
	opts, err := budget(req, h.limits.Load())
	if err != nil {
		fail(w, err)
		return
	}

	res, err := rvi.Solve(prob, opts...)
	if err != nil {
		slog.Error("mdp: solve failed", "request_id", id, "err", err)
		fail(w, err)
		return
	}

	n, _, actions := prob.Transition.Dims()
	h.record(id, n, actions, prob.Mode, res)
	slog.Info("mdp: solved",
		"request_id", id,
		"n", n,
		"actions", actions,
		"iterations", res.Iterations,
		"converged", res.Converged,
		"termination", res.Termination.String(),
		"elapsed", res.Elapsed,
	)

	jsonResp(w, http.StatusOK, types.SolveResponse{
		H:          res.H,
		G:          res.G,
		PiStar:     res.Policy,
		Iterations: res.Iterations,
		Converged:  res.Converged,
	})
}

// listSolves returns GET /api/v1/solves, newest first.
func (h *MDPHandler) listSolves(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, h.store.Summaries())
}

// getSolve returns GET /api/v1/solves/{id}.
func (h *MDPHandler) getSolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/solves/")
	if id == "" {
		h.listSolves(w, r)
		return
	}

	e, ok := h.store.Get(id)
	if !ok {
		jsonErr(w, http.StatusNotFound, "solve not found")
		return
	}
	jsonResp(w, http.StatusOK, e.Summary)
}

func (h *MDPHandler) record(id string, n, actions int, mode rvi.Mode, res rvi.Result) {
	h.solves.WithLabelValues(res.Termination.String()).Inc()
	h.iterations.Observe(float64(res.Iterations))
	h.duration.Observe(res.Elapsed.Seconds())
	h.store.Put(types.SolveSummary{
		ID:          id,
		States:      n,
		Actions:     actions,
		Mode:        string(mode),
		Iterations:  res.Iterations,
		Converged:   res.Converged,
		Termination: res.Termination.String(),
		G:           res.G,
		ElapsedMs:   float64(res.Elapsed) / float64(time.Millisecond),
	})
}

// budget turns the optional request budgets into solver options. Zero means
// the configured ceiling; anything above the ceiling is clamped to it.
func budget(req types.SolveRequest, ceil config.SolverConfig) ([]rvi.Option, error) {
	iters := ceil.MaxIterations
	switch {
	case req.MaxIterations < 0:
		return nil, fmt.Errorf("%w: max_iterations must not be negative, got %d", rvi.ErrInvalidParameter, req.MaxIterations)
	case req.MaxIterations > 0 && req.MaxIterations < iters:
		iters = req.MaxIterations
	}

	limit := ceil.MaxTime
	switch {
	case math.IsNaN(req.MaxTime) || req.MaxTime < 0:
		return nil, fmt.Errorf("%w: max_time must not be negative, got %v", rvi.ErrInvalidParameter, req.MaxTime)
	case req.MaxTime > 0 && req.MaxTime < limit.Seconds():
		limit = time.Duration(req.MaxTime * float64(time.Second))
		if limit < 1 {
			limit = 1
		}
	}

	return []rvi.Option{rvi.WithMaxIterations(iters), rvi.WithMaxTime(limit)}, nil
}

// requestID reuses a well-formed inbound X-Request-Id, otherwise mints one.
func requestID(r *http.Request) string {
	if v := r.Header.Get(RequestIDHeader); v != "" {
		if u, err := uuid.Parse(v); err == nil {
			return u.String()
		}
	}
	return uuid.NewString()
}
