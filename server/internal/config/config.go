package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for the service configuration.
const (
	DefaultMDPHTTPPort         = 8080
	DefaultMDPGRPCPort         = 50051
	DefaultReliabilityHTTPPort = 8081
	DefaultReliabilityGRPCPort = 50052

	DefaultMaxIterations  = 10000
	DefaultMaxTime        = 2 * time.Second
	DefaultActivityTTL    = 10 * time.Minute
	DefaultStreamInterval = 2 * time.Second
	DefaultLogLevel       = "info"
)

// Config is the whole config.yaml. Each binary reads the shared `log:` and
// `auth:` sections plus its own service section.
type Config struct {
	Log         LogConfig         `yaml:"log"`
	Auth        AuthConfig        `yaml:"auth"`
	MDP         MDPConfig         `yaml:"mdp"`
	Reliability ReliabilityConfig `yaml:"reliability"`
}

// LogConfig controls the slog handler installed by each binary.
type LogConfig struct {
	// Level is one of: debug | info | warn | error. Applied live on reload.
	Level string `yaml:"level"`
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, err
	}
	return lvl, nil
}

// AuthConfig controls client authentication for both services.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// KeyEnv is the name of the environment variable that holds the expected API key.
	// Used when Mode == "apikey".
	KeyEnv string `yaml:"key_env"`

	// Header is the gRPC metadata key (and HTTP header name) to read the key from.
	// Defaults to "x-api-key" if empty.
	Header string `yaml:"header"`
}

// Key returns the expected API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name, or the default "x-api-key".
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return "x-api-key"
}

// MDPConfig holds mdp-service settings.
type MDPConfig struct {
	HTTPPort int `yaml:"http_port"`
	GRPCPort int `yaml:"grpc_port"`

	// Solver holds the ceilings applied to every solve. Requests may ask
	// for less, never for more. Applied live on reload.
	Solver SolverConfig `yaml:"solver"`

	// Activity controls the recent-solves feed.
	Activity ActivityConfig `yaml:"activity"`
}

// SolverConfig bounds a single RVI solve.
type SolverConfig struct {
	MaxIterations int           `yaml:"max_iterations"`
	MaxTime       time.Duration `yaml:"max_time"`
}

// ActivityConfig controls the in-memory solve summary feed.
type ActivityConfig struct {
	// TTL is how long a solve summary stays listed. Default: 10m.
	TTL time.Duration `yaml:"ttl"`

	// StreamInterval is the WebSocket broadcast period. Default: 2s.
	StreamInterval time.Duration `yaml:"stream_interval"`
}

// ReliabilityConfig holds reliability-service settings.
type ReliabilityConfig struct {
	HTTPPort int `yaml:"http_port"`
	GRPCPort int `yaml:"grpc_port"`
}

// Load reads and parses the config file at path.
// Missing fields are filled with sensible defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a Config pre-populated with default values. Binaries
// started without -config run on it unchanged.
func Defaults() *Config {
	return &Config{
		Log: LogConfig{Level: DefaultLogLevel},
		MDP: MDPConfig{
			HTTPPort: DefaultMDPHTTPPort,
			GRPCPort: DefaultMDPGRPCPort,
			Solver: SolverConfig{
				MaxIterations: DefaultMaxIterations,
				MaxTime:       DefaultMaxTime,
			},
			Activity: ActivityConfig{
				TTL:            DefaultActivityTTL,
				StreamInterval: DefaultStreamInterval,
			},
		},
		Reliability: ReliabilityConfig{
			HTTPPort: DefaultReliabilityHTTPPort,
			GRPCPort: DefaultReliabilityGRPCPort,
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	if _, err := cfg.Log.SlogLevel(); err != nil {
		return fmt.Errorf("log.level %q unknown: want debug|info|warn|error", cfg.Log.Level)
	}
	switch cfg.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("auth.mode %q unknown: want apikey|none", cfg.Auth.Mode)
	}
	if cfg.Auth.Mode == "apikey" && cfg.Auth.KeyEnv == "" {
		return fmt.Errorf("auth.key_env is required when auth.mode is apikey")
	}

	ports := []struct {
		name string
		v    int
	}{
		{"mdp.http_port", cfg.MDP.HTTPPort},
		{"mdp.grpc_port", cfg.MDP.GRPCPort},
		{"reliability.http_port", cfg.Reliability.HTTPPort},
		{"reliability.grpc_port", cfg.Reliability.GRPCPort},
	}
	for _, p := range ports {
		if p.v <= 0 || p.v > 65535 {
			return fmt.Errorf("%s %d is out of range [1, 65535]", p.name, p.v)
		}
	}

	if cfg.MDP.Solver.MaxIterations < 1 {
		return fmt.Errorf("mdp.solver.max_iterations must be at least 1, got %d", cfg.MDP.Solver.MaxIterations)
	}
	if cfg.MDP.Solver.MaxTime <= 0 {
		return fmt.Errorf("mdp.solver.max_time must be positive, got %s", cfg.MDP.Solver.MaxTime)
	}
	if cfg.MDP.Activity.TTL <= 0 {
		return fmt.Errorf("mdp.activity.ttl must be positive, got %s", cfg.MDP.Activity.TTL)
	}
	if cfg.MDP.Activity.StreamInterval <= 0 {
		return fmt.Errorf("mdp.activity.stream_interval must be positive")
	}
	return nil
}
