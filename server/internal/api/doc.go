// Package api implements the HTTP surfaces of mdp-service and
// reliability-service.
//
// NewMDP(deps) serves:
//
//	GET  /health                       - {"status":"ok"}
//	POST /mdp/relative-value-iteration - solve; response carries X-Request-Id
//	GET  /api/v1/solves                - recent solve summaries, newest first
//	GET  /api/v1/solves/{id}           - one summary; 404 if unknown or expired
//	GET  /metrics                      - Prometheus text exposition
//	GET  /ws/stream                    - activity feed (when deps.Stream is set)
//
// NewReliability(registry) serves /health, /metrics and the POST endpoints
// /reliability/{exponential,mtbf-convert,series,kofn}.
//
// All JSON endpoints:
//   - Respond with Content-Type: application/json
//   - Return 405 for the wrong method and 400 for an undecodable body
//   - Return 422 for validation failures and 501 for unsupported k-of-n input
//
// Request and response bodies live in pkg/types. No external HTTP framework
// is used.
package api
