package types

// SolveRequest is the body of POST /mdp/relative-value-iteration.
type SolveRequest struct {
	TPM     [][][]float64 `json:"TPM" yaml:"TPM"`
	TRM     [][][]float64 `json:"TRM" yaml:"TRM"`
	// SRef is required; nil means the key was absent.
	SRef    *int          `json:"s_ref" yaml:"s_ref"`
	Epsilon float64       `json:"epsilon" yaml:"epsilon"`
	// Mode is "cost" or "reward"; empty means cost.
	Mode string `json:"mode,omitempty" yaml:"mode,omitempty"`

	// Optional per-request budgets. Zero means the server default; larger
	// values are clamped to the configured ceiling.
	MaxIterations int     `json:"max_iterations,omitempty" yaml:"max_iterations,omitempty"`
	MaxTime       float64 `json:"max_time,omitempty" yaml:"max_time,omitempty"` // seconds
}

// Ref returns a pointer to the reference state index i.
func Ref(i int) *int { return &i }

// SolveResponse is the result of a solve. When Converged is false, H is the
// last accepted iterate and G / PiStar come from the final pass.
type SolveResponse struct {
	H          []float64 `json:"h"`
	G          float64   `json:"g"`
	PiStar     []int     `json:"pi_star"`
	Iterations int       `json:"iterations"`
	Converged  bool      `json:"converged"`
}

// SolveSummary is one entry of the recent-activity feed. It deliberately
// carries no h or policy vectors.
type SolveSummary struct {
	ID          string  `json:"id"`
	States      int     `json:"states"`
	Actions     int     `json:"actions"`
	Mode        string  `json:"mode"`
	Iterations  int     `json:"iterations"`
	Converged   bool    `json:"converged"`
	Termination string  `json:"termination"`
	G           float64 `json:"g"`
	ElapsedMs   float64 `json:"elapsed_ms"`
	SolvedAt    string  `json:"solved_at"` // RFC 3339
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}
