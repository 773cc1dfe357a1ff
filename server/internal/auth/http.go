package auth

import (
	"encoding/json"
	"net/http"
)

// HTTPMiddleware applies the same API key rule as APIKeyInterceptor to an
// http.Handler. Paths listed in exempt (exact match) are always served, so
// load balancers and scrapers can reach /health and /metrics without a key.
// Rejected requests get 401 with a JSON error body.
func HTTPMiddleware(mode, header, key string, exempt ...string) func(http.Handler) http.Handler {
	skip := make(map[string]struct{}, len(exempt))
	for _, p := range exempt {
		skip[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		if !enforced(mode, key) {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}
			if !matches(r.Header.Get(header), key) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "invalid api key"}) //nolint:errcheck
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
