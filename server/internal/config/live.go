package config

import (
	"log/slog"
	"sync/atomic"
)

// Limits holds the solver ceilings currently in force. Handlers read it on
// every request while Watch swaps in new values.
type Limits struct {
	p atomic.Pointer[SolverConfig]
}

// NewLimits returns Limits initialised to s.
func NewLimits(s SolverConfig) *Limits {
	l := &Limits{}
	l.Store(s)
	return l
}

// Load returns the current ceilings.
func (l *Limits) Load() SolverConfig {
	return *l.p.Load()
}

// Store replaces the current ceilings.
func (l *Limits) Store(s SolverConfig) {
	l.p.Store(&s)
}

// Apply pushes the live-reloadable parts of cfg into limits and level.
// Ports, auth and activity settings need a restart and are ignored here.
func Apply(cfg *Config, limits *Limits, level *slog.LevelVar) {
	if limits != nil {
		limits.Store(cfg.MDP.Solver)
	}
	if level != nil {
		// validate already parsed the level, so the error is unreachable.
		if lvl, err := cfg.Log.SlogLevel(); err == nil {
			level.Set(lvl)
		}
	}
}
