package api

import (
	"log/slog"
	"net/http"

	"github.com/decisionstack/decisionstack/pkg/reliability"
	"github.com/decisionstack/decisionstack/pkg/types"
	"github.com/decisionstack/decisionstack/server/internal/telemetry"
)

// NewReliability creates the reliability-service handler and registers all
// routes. Each calculation endpoint accepts POST only.
func NewReliability(reg *telemetry.Registry) http.Handler {
	mux := http.NewServeMux()
	m := telemetry.NewHTTPMetrics(reg, "decisionstack_reliability")

	routes := map[string]http.HandlerFunc{
		"/reliability/exponential": calc("exponential", func(req types.ExponentialRequest) (interface{}, error) {
			r, err := reliability.Exponential(req.FailureRate, req.MissionTime)
			return types.ReliabilityResponse{Reliability: r}, err
		}),
		"/reliability/mtbf-convert": calc("mtbf-convert", func(req types.MTBFRequest) (interface{}, error) {
			v, err := reliability.MTBFConvert(req.Value)
			return types.MTBFResponse{ConvertedValue: v}, err
		}),
		"/reliability/series": calc("series", func(req types.SeriesRequest) (interface{}, error) {
			r, err := reliability.Series(req.ComponentReliabilities)
			return types.ReliabilityResponse{Reliability: r}, err
		}),
		"/reliability/kofn": calc("kofn", func(req types.KofNRequest) (interface{}, error) {
			r, err := reliability.KofN(req.ComponentReliabilities, req.MinRequired)
			return types.ReliabilityResponse{Reliability: r}, err
		}),
	}
	for path, fn := range routes {
		mux.HandleFunc(path, m.Wrap(path, fn))
	}
	mux.HandleFunc("/health", m.Wrap("/health", health))
	mux.Handle("/metrics", reg.Handler())
	mux.HandleFunc("/", notFound)

	return mux
}

// calc adapts a typed calculation into a POST JSON endpoint.
func calc[Req any](name string, fn func(Req) (interface{}, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var req Req
		if err := decodeBody(w, r, &req); err != nil {
			jsonErr(w, http.StatusBadRequest, err.Error())
			return
		}
		resp, err := fn(req)
		if err != nil {
			slog.Warn("reliability: rejected", "calc", name, "err", err)
			fail(w, err)
			return
		}
		slog.Info("reliability: computed", "calc", name)
		jsonResp(w, http.StatusOK, resp)
	}
}
