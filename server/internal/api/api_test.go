package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/decisionstack/decisionstack/pkg/types"
	"github.com/decisionstack/decisionstack/server/internal/api"
	"github.com/decisionstack/decisionstack/server/internal/config"
	"github.com/decisionstack/decisionstack/server/internal/store"
	"github.com/decisionstack/decisionstack/server/internal/telemetry"
)

// --- test helpers -----------------------------------------------------------

type fixture struct {
	h      http.Handler
	store  *store.Store
	limits *config.Limits
}

func newMDP(t *testing.T) fixture {
	t.Helper()
	st := store.New(5 * time.Minute)
	limits := config.NewLimits(config.SolverConfig{
		MaxIterations: config.DefaultMaxIterations,
		MaxTime:       config.DefaultMaxTime,
	})
	h := api.NewMDP(api.MDPDeps{Store: st, Limits: limits, Registry: telemetry.NewRegistry()})
	return fixture{h: h, store: st, limits: limits}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func post(t *testing.T, h http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatalf("encode body: %v", err)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, &buf))
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON: %v (body: %s)", err, rr.Body.String())
	}
}

// maintenance is the two-state problem with g = 2, h = [-1, 0], pi = [1, 0].
func maintenance() types.SolveRequest {
	return types.SolveRequest{
		TPM:     [][][]float64{{{1, 0}, {0, 1}}, {{0, 1}, {1, 0}}},
		TRM:     [][][]float64{{{5, 0}, {0, 1}}, {{0, 10}, {2, 0}}},
		SRef:    types.Ref(1),
		Epsilon: 1e-9,
		Mode:    "cost",
	}
}

// swap never converges: relative values alternate between two vectors.
func swap() types.SolveRequest {
	return types.SolveRequest{
		TPM:     [][][]float64{{{0}, {1}}, {{1}, {0}}},
		TRM:     [][][]float64{{{0}, {1}}, {{0}, {0}}},
		SRef:    types.Ref(0),
		Epsilon: 1e-9,
	}
}

const solvePath = "/mdp/relative-value-iteration"

// --- /health ----------------------------------------------------------------

func TestHealth(t *testing.T) {
	f := newMDP(t)
	rr := get(t, f.h, "/health")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var resp types.HealthResponse
	decode(t, rr, &resp)
	if resp.Status != "ok" {
		t.Errorf("status field: got %q, want ok", resp.Status)
	}
}

// --- /mdp/relative-value-iteration ------------------------------------------

func TestSolve_Converges(t *testing.T) {
	f := newMDP(t)
	rr := post(t, f.h, solvePath, maintenance())

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body: %s)", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}
	if rr.Header().Get(api.RequestIDHeader) == "" {
		t.Error("X-Request-Id: missing")
	}

	var resp types.SolveResponse
	decode(t, rr, &resp)
	if !resp.Converged {
		t.Error("converged: got false, want true")
	}
	if resp.G != 2 {
		t.Errorf("g: got %v, want 2", resp.G)
	}
	if len(resp.H) != 2 || resp.H[0] != -1 || resp.H[1] != 0 {
		t.Errorf("h: got %v, want [-1 0]", resp.H)
	}
	if len(resp.PiStar) != 2 || resp.PiStar[0] != 1 || resp.PiStar[1] != 0 {
		t.Errorf("pi_star: got %v, want [1 0]", resp.PiStar)
	}
}

func TestSolve_ResponseShape(t *testing.T) {
	f := newMDP(t)
	rr := post(t, f.h, solvePath, maintenance())

	var raw map[string]json.RawMessage
	decode(t, rr, &raw)
	for _, k := range []string{"h", "g", "pi_star", "iterations", "converged"} {
		if _, ok := raw[k]; !ok {
			t.Errorf("response missing key %q", k)
		}
	}
	if len(raw) != 5 {
		t.Errorf("response has %d keys, want 5", len(raw))
	}
}

func TestSolve_RequestIDEchoed(t *testing.T) {
	f := newMDP(t)
	id := "6f1c2a5e-3b1d-4c8e-9a7f-2d4b6e8f0a1c"
	req := httptest.NewRequest(http.MethodPost, solvePath, strings.NewReader(`{"TPM":[[[1]]],"TRM":[[[1]]],"s_ref":0,"epsilon":1e-6}`))
	req.Header.Set(api.RequestIDHeader, id)
	rr := httptest.NewRecorder()
	f.h.ServeHTTP(rr, req)

	if got := rr.Header().Get(api.RequestIDHeader); got != id {
		t.Errorf("X-Request-Id: got %q, want %q", got, id)
	}
	if _, ok := f.store.Get(id); !ok {
		t.Error("store: summary not recorded under the request id")
	}
}

func TestSolve_RequestBudgetIsRespected(t *testing.T) {
	f := newMDP(t)
	req := swap()
	req.MaxIterations = 5
	rr := post(t, f.h, solvePath, req)

	var resp types.SolveResponse
	decode(t, rr, &resp)
	if resp.Converged {
		t.Error("converged: got true, want false")
	}
	if resp.Iterations != 5 {
		t.Errorf("iterations: got %d, want 5", resp.Iterations)
	}
	if resp.G != 1 {
		t.Errorf("g: got %v, want 1", resp.G)
	}
	if resp.H[0] != 0 || resp.H[1] != 0 {
		t.Errorf("h: got %v, want previous iterate [0 0]", resp.H)
	}
}

func TestSolve_RequestBudgetIsClamped(t *testing.T) {
	f := newMDP(t)
	f.limits.Store(config.SolverConfig{MaxIterations: 3, MaxTime: time.Minute})

	req := swap()
	req.MaxIterations = 1000
	rr := post(t, f.h, solvePath, req)

	var resp types.SolveResponse
	decode(t, rr, &resp)
	if resp.Iterations != 3 {
		t.Errorf("iterations: got %d, want ceiling 3", resp.Iterations)
	}
}

func TestSolve_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(r *types.SolveRequest)
		want   int
	}{
		{"negative probability", func(r *types.SolveRequest) { r.TPM[0][0][0], r.TPM[0][1][0] = -0.5, 1.5 }, http.StatusUnprocessableEntity},
		{"row sum", func(r *types.SolveRequest) { r.TPM[1][0][1] = 0.5 }, http.StatusUnprocessableEntity},
		{"non-square", func(r *types.SolveRequest) { r.TPM = r.TPM[:1] }, http.StatusUnprocessableEntity},
		{"ragged TPM", func(r *types.SolveRequest) { r.TPM[1] = r.TPM[1][:1] }, http.StatusUnprocessableEntity},
		{"TRM actions", func(r *types.SolveRequest) { r.TRM[0][0] = []float64{1} }, http.StatusUnprocessableEntity},
		{"s_ref range", func(r *types.SolveRequest) { r.SRef = types.Ref(2) }, http.StatusUnprocessableEntity},
		{"epsilon bound", func(r *types.SolveRequest) { r.Epsilon = 1e-12 }, http.StatusUnprocessableEntity},
		{"mode", func(r *types.SolveRequest) { r.Mode = "profit" }, http.StatusUnprocessableEntity},
		{"missing s_ref", func(r *types.SolveRequest) { r.SRef = nil }, http.StatusUnprocessableEntity},
		{"negative budget", func(r *types.SolveRequest) { r.MaxIterations = -1 }, http.StatusUnprocessableEntity},
		{"negative time", func(r *types.SolveRequest) { r.MaxTime = -2 }, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newMDP(t)
			req := maintenance()
			tc.mutate(&req)
			rr := post(t, f.h, solvePath, req)
			if rr.Code != tc.want {
				t.Fatalf("status: got %d, want %d (body: %s)", rr.Code, tc.want, rr.Body.String())
			}
			var resp types.ErrorResponse
			decode(t, rr, &resp)
			if resp.Error == "" {
				t.Error("error: empty message")
			}
			if f.store.Count() != 0 {
				t.Error("store: rejected request must not be recorded")
			}
		})
	}
}

func TestSolve_MissingRefState(t *testing.T) {
	f := newMDP(t)
	rr := post(t, f.h, solvePath, `{"TPM":[[[1]]],"TRM":[[[2]]],"epsilon":1e-6}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want 422 (body: %s)", rr.Code, rr.Body.String())
	}
	var resp types.ErrorResponse
	decode(t, rr, &resp)
	if !strings.Contains(resp.Error, "s_ref") {
		t.Errorf("error: got %q, want mention of s_ref", resp.Error)
	}
}

func TestSolve_OverflowIsRejected(t *testing.T) {
	f := newMDP(t)
	req := swap()
	req.TRM = [][][]float64{{{0}, {1.7e308}}, {{-1.7e308}, {0}}}
	rr := post(t, f.h, solvePath, req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want 422 (body: %q)", rr.Code, rr.Body.String())
	}
	var resp types.ErrorResponse
	decode(t, rr, &resp)
	if resp.Error == "" {
		t.Error("error: empty message")
	}
}

func TestSolve_MalformedJSON(t *testing.T) {
	f := newMDP(t)
	rr := post(t, f.h, solvePath, `{"TPM": [[[1]]`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}

func TestSolve_MethodNotAllowed(t *testing.T) {
	f := newMDP(t)
	if rr := get(t, f.h, solvePath); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", rr.Code)
	}
}

// --- /api/v1/solves ---------------------------------------------------------

func TestSolves_ListAndGet(t *testing.T) {
	f := newMDP(t)
	rr := post(t, f.h, solvePath, maintenance())
	id := rr.Header().Get(api.RequestIDHeader)

	rr = get(t, f.h, "/api/v1/solves")
	var list []types.SolveSummary
	decode(t, rr, &list)
	if len(list) != 1 {
		t.Fatalf("list: got %d summaries, want 1", len(list))
	}
	s := list[0]
	if s.ID != id || s.States != 2 || s.Actions != 2 || s.Termination != "converged" || s.Mode != "cost" {
		t.Errorf("summary: got %+v", s)
	}

	rr = get(t, f.h, "/api/v1/solves/"+id)
	if rr.Code != http.StatusOK {
		t.Fatalf("get: status %d, want 200", rr.Code)
	}
	var one types.SolveSummary
	decode(t, rr, &one)
	if one.ID != id {
		t.Errorf("get: id %q, want %q", one.ID, id)
	}
}

func TestSolves_EmptyListIsArray(t *testing.T) {
	f := newMDP(t)
	rr := get(t, f.h, "/api/v1/solves")
	if body := strings.TrimSpace(rr.Body.String()); body != "[]" {
		t.Errorf("body: got %s, want []", body)
	}
}

func TestSolves_UnknownID(t *testing.T) {
	f := newMDP(t)
	if rr := get(t, f.h, "/api/v1/solves/nope"); rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
}

// --- /metrics and fallbacks -------------------------------------------------

func TestMetrics_CountsSolves(t *testing.T) {
	f := newMDP(t)
	post(t, f.h, solvePath, maintenance())

	rr := get(t, f.h, "/metrics")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		`decisionstack_mdp_solves_total{termination="converged"} 1`,
		`decisionstack_mdp_http_requests_total{code="200",route="/mdp/relative-value-iteration"} 1`,
		"decisionstack_mdp_solve_iterations_count 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("/metrics missing %q", want)
		}
	}
}

func TestUnknownRoute(t *testing.T) {
	f := newMDP(t)
	rr := get(t, f.h, "/nope")
	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}
}
