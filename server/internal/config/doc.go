// Package config loads config.yaml for both decisionstack services.
//
// Config fields:
//   - Log.Level                   - slog level (default info, live)
//   - Auth.Mode                   - "apikey" or "none"
//   - Auth.KeyEnv                 - environment variable holding the expected API key
//   - Auth.Header                 - gRPC metadata/HTTP header name (default "x-api-key")
//   - MDP.HTTPPort / GRPCPort     - mdp-service listeners (default 8080 / 50051)
//   - MDP.Solver.MaxIterations    - per-solve iteration ceiling (default 10000, live)
//   - MDP.Solver.MaxTime          - per-solve time ceiling (default 2s, live)
//   - MDP.Activity.TTL            - how long a solve summary stays listed (default 10m)
//   - MDP.Activity.StreamInterval - WebSocket broadcast period (default 2s)
//   - Reliability.HTTPPort / GRPCPort - reliability-service listeners (default 8081 / 50052)
//
// Load(path) applies defaults before unmarshalling, then validates. Watch
// reloads the file on change; Limits carries the live solver ceilings.
package config
