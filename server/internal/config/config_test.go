package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoad_Defaults(t *testing.T) {
	// Only an unrelated section present; everything else defaults.
	p := writeConfig(t, `reliability:
  http_port: 8081
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MDP.HTTPPort != DefaultMDPHTTPPort {
		t.Errorf("mdp.http_port: got %d, want %d", cfg.MDP.HTTPPort, DefaultMDPHTTPPort)
	}
	if cfg.MDP.GRPCPort != DefaultMDPGRPCPort {
		t.Errorf("mdp.grpc_port: got %d, want %d", cfg.MDP.GRPCPort, DefaultMDPGRPCPort)
	}
	if cfg.MDP.Solver.MaxIterations != DefaultMaxIterations {
		t.Errorf("max_iterations: got %d, want %d", cfg.MDP.Solver.MaxIterations, DefaultMaxIterations)
	}
	if cfg.MDP.Solver.MaxTime != DefaultMaxTime {
		t.Errorf("max_time: got %v, want %v", cfg.MDP.Solver.MaxTime, DefaultMaxTime)
	}
	if cfg.MDP.Activity.TTL != DefaultActivityTTL {
		t.Errorf("activity.ttl: got %v, want %v", cfg.MDP.Activity.TTL, DefaultActivityTTL)
	}
	if cfg.Reliability.GRPCPort != DefaultReliabilityGRPCPort {
		t.Errorf("reliability.grpc_port: got %d, want %d", cfg.Reliability.GRPCPort, DefaultReliabilityGRPCPort)
	}
	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("log.level: got %q, want %q", cfg.Log.Level, DefaultLogLevel)
	}
}

func TestLoad_Full(t *testing.T) {
	p := writeConfig(t, `log:
  level: debug
auth:
  mode: apikey
  key_env: MY_KEY
  header: x-ds-key
mdp:
  http_port: 9090
  grpc_port: 9091
  solver:
    max_iterations: 500
    max_time: 250ms
  activity:
    ttl: 1m
    stream_interval: 5s
reliability:
  http_port: 9190
  grpc_port: 9191
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MDP.HTTPPort != 9090 {
		t.Errorf("mdp.http_port: got %d, want 9090", cfg.MDP.HTTPPort)
	}
	if cfg.MDP.Solver.MaxIterations != 500 {
		t.Errorf("max_iterations: got %d, want 500", cfg.MDP.Solver.MaxIterations)
	}
	if cfg.MDP.Solver.MaxTime != 250*time.Millisecond {
		t.Errorf("max_time: got %v, want 250ms", cfg.MDP.Solver.MaxTime)
	}
	if cfg.MDP.Activity.StreamInterval != 5*time.Second {
		t.Errorf("stream_interval: got %v, want 5s", cfg.MDP.Activity.StreamInterval)
	}
	if cfg.Auth.EffectiveHeader() != "x-ds-key" {
		t.Errorf("header: got %q, want x-ds-key", cfg.Auth.EffectiveHeader())
	}
	if lvl, _ := cfg.Log.SlogLevel(); lvl != slog.LevelDebug {
		t.Errorf("log level: got %v, want debug", lvl)
	}
}

func TestLoad_DefaultHeader(t *testing.T) {
	p := writeConfig(t, `auth:
  mode: apikey
  key_env: K
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if h := cfg.Auth.EffectiveHeader(); h != "x-api-key" {
		t.Errorf("EffectiveHeader: got %q, want x-api-key", h)
	}
}

func TestLoad_KeyEnvResolution(t *testing.T) {
	t.Setenv("TEST_DS_KEY", "supersecret")
	p := writeConfig(t, `auth:
  mode: apikey
  key_env: TEST_DS_KEY
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if k := cfg.Auth.Key(); k != "supersecret" {
		t.Errorf("Key(): got %q, want supersecret", k)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown auth mode", "auth:\n  mode: oauth2\n", "auth.mode"},
		{"apikey without env", "auth:\n  mode: apikey\n", "auth.key_env"},
		{"bad port", "mdp:\n  http_port: 70000\n", "mdp.http_port"},
		{"zero iterations", "mdp:\n  solver:\n    max_iterations: 0\n", "max_iterations"},
		{"negative time", "mdp:\n  solver:\n    max_time: -1s\n", "max_time"},
		{"zero ttl", "mdp:\n  activity:\n    ttl: 0s\n", "mdp.activity.ttl"},
		{"bad level", "log:\n  level: loud\n", "log.level"},
		{"bad yaml", "mdp: [\n", "parse yaml"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestApply(t *testing.T) {
	limits := NewLimits(SolverConfig{MaxIterations: 1, MaxTime: time.Second})
	var level slog.LevelVar

	cfg := Defaults()
	cfg.Log.Level = "warn"
	cfg.MDP.Solver = SolverConfig{MaxIterations: 42, MaxTime: 3 * time.Second}
	Apply(cfg, limits, &level)

	if got := limits.Load(); got != cfg.MDP.Solver {
		t.Errorf("limits: got %+v, want %+v", got, cfg.MDP.Solver)
	}
	if level.Level() != slog.LevelWarn {
		t.Errorf("level: got %v, want warn", level.Level())
	}
}

// TestWatch_Reload rewrites the file until the callback observes the new
// ceiling; the first write may land before the watcher is registered.
func TestWatch_Reload(t *testing.T) {
	p := writeConfig(t, "mdp:\n  solver:\n    max_iterations: 10\n")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan int, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, p, func(c *Config) {
			select {
			case got <- c.MDP.Solver.MaxIterations:
			default:
			}
		})
	}()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case n := <-got:
			if n != 20 {
				t.Fatalf("reloaded max_iterations: got %d, want 20", n)
			}
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("Watch: %v", err)
			}
			return
		case <-tick.C:
			if err := os.WriteFile(p, []byte("mdp:\n  solver:\n    max_iterations: 20\n"), 0o600); err != nil {
				t.Fatalf("rewrite: %v", err)
			}
		case <-deadline:
			t.Fatal("timed out waiting for reload")
		}
	}
}

// TestWatch_InvalidKeepsPrevious never calls back for a broken file.
func TestWatch_InvalidKeepsPrevious(t *testing.T) {
	p := writeConfig(t, "mdp:\n  solver:\n    max_iterations: 10\n")
	ctx, cancel := context.WithTimeout(context.Background(), 400*time.Millisecond)
	defer cancel()

	called := make(chan struct{}, 1)
	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = os.WriteFile(p, []byte("mdp:\n  solver:\n    max_iterations: 0\n"), 0o600)
	}()
	if err := Watch(ctx, p, func(*Config) { called <- struct{}{} }); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	select {
	case <-called:
		t.Fatal("onChange called for invalid config")
	default:
	}
}

// TestReloader_CoalescesBursts feeds a burst of write events and expects a
// single reload carrying the last written value.
func TestReloader_CoalescesBursts(t *testing.T) {
	p := writeConfig(t, "mdp:\n  solver:\n    max_iterations: 10\n")
	events := make(chan fsnotify.Event)
	errs := make(chan error)
	got := make(chan int, 8)

	r := &reloader{
		path:     p,
		delay:    200 * time.Millisecond,
		onChange: func(c *Config) { got <- c.MDP.Solver.MaxIterations },
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- r.run(ctx, events, errs) }()

	for n := 11; n <= 15; n++ {
		body := fmt.Sprintf("mdp:\n  solver:\n    max_iterations: %d\n", n)
		if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
			t.Fatalf("rewrite: %v", err)
		}
		events <- fsnotify.Event{Name: p, Op: fsnotify.Write}
	}
	// Attribute-only changes never schedule a reload.
	events <- fsnotify.Event{Name: p, Op: fsnotify.Chmod}

	select {
	case n := <-got:
		if n != 15 {
			t.Fatalf("reloaded max_iterations: got %d, want 15", n)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
	select {
	case n := <-got:
		t.Fatalf("burst produced a second reload (max_iterations %d)", n)
	case <-time.After(400 * time.Millisecond):
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}
}
