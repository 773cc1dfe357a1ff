package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/decisionstack/decisionstack/pkg/reliability"
	"github.com/decisionstack/decisionstack/pkg/rvi"
	"github.com/decisionstack/decisionstack/pkg/types"
)

// maxBodyBytes bounds request bodies. A 200-state, 10-action tensor pair is
// roughly 10 MB of JSON.
const maxBodyBytes = 32 << 20

// jsonResp encodes v before writing the status line, so a value that
// cannot be marshalled (e.g. a NaN) becomes a 500 rather than an empty 200.
func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("api: encode response", "status", code, "err", err)
		code = http.StatusInternalServerError
		body, _ = json.Marshal(types.ErrorResponse{Error: "internal error"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(append(body, '\n')) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, types.ErrorResponse{Error: msg})
}

// decodeBody reads one JSON value from the request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// statusFor maps domain errors onto HTTP status codes. Anything that is not a
// known sentinel is an internal error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, reliability.ErrNotImplemented):
		return http.StatusNotImplemented
	case errors.Is(err, rvi.ErrMalformedTransition),
		errors.Is(err, rvi.ErrInvalidParameter),
		errors.Is(err, reliability.ErrInvalidParameter):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with the status statusFor picks. Internal errors hide the
// message from the client.
func fail(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		jsonErr(w, code, "internal error")
		return
	}
	jsonErr(w, code, err.Error())
}

// health returns GET /health, shared by both services.
func health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, types.HealthResponse{Status: "ok"})
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	jsonErr(w, http.StatusNotFound, "not found")
}
