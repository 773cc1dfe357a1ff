package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/decisionstack/decisionstack/server/internal/api"
	"github.com/decisionstack/decisionstack/server/internal/auth"
	"github.com/decisionstack/decisionstack/server/internal/config"
	"github.com/decisionstack/decisionstack/server/internal/rpc"
	"github.com/decisionstack/decisionstack/server/internal/store"
	"github.com/decisionstack/decisionstack/server/internal/telemetry"
	"github.com/decisionstack/decisionstack/server/internal/ws"
)

func main() {
	configPath := flag.String("config", "", "path to config file; built-in defaults when empty")
	flag.Parse()

	var level slog.LevelVar
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: &level}))
	slog.SetDefault(logger)

	slog.Info("mdp-service starting", "config", *configPath)

	cfg := config.Defaults()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			slog.Error("failed to load config", "err", err)
			os.Exit(1)
		}
	}
	limits := config.NewLimits(cfg.MDP.Solver)
	config.Apply(cfg, limits, &level)

	slog.Info("config loaded",
		"http_port", cfg.MDP.HTTPPort,
		"grpc_port", cfg.MDP.GRPCPort,
		"auth_mode", cfg.Auth.Mode,
		"max_iterations", cfg.MDP.Solver.MaxIterations,
		"max_time", cfg.MDP.Solver.MaxTime,
		"activity_ttl", cfg.MDP.Activity.TTL,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *configPath != "" {
		go func() {
			err := config.Watch(ctx, *configPath, func(c *config.Config) {
				config.Apply(c, limits, &level)
			})
			if err != nil {
				slog.Error("config watch stopped", "err", err)
			}
		}()
	}

	// Activity feed with background TTL eviction.
	st := store.New(cfg.MDP.Activity.TTL)
	go st.Run(ctx)

	hub := ws.New(st, cfg.MDP.Activity.StreamInterval)
	go hub.Run(ctx)

	reg := telemetry.NewRegistry()
	reg.NewGaugeFunc("decisionstack_mdp_stream_clients", "Connected WebSocket clients.",
		func() float64 { return float64(hub.Count()) })
	reg.NewGaugeFunc("decisionstack_mdp_activity_entries", "Solve summaries held, including expired ones not yet evicted.",
		func() float64 { return float64(st.Count()) })

	// gRPC health endpoint behind the API key interceptor.
	grpcSrv := rpc.New("mdp-service", cfg.Auth)
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.MDP.GRPCPort))
	if err != nil {
		slog.Error("failed to listen on gRPC port", "port", cfg.MDP.GRPCPort, "err", err)
		os.Exit(1)
	}
	go func() {
		if err := grpcSrv.Serve(ctx, lis); err != nil {
			slog.Error("gRPC server stopped", "err", err)
		}
	}()

	handler := api.NewMDP(api.MDPDeps{Store: st, Limits: limits, Registry: reg, Stream: hub})
	protect := auth.HTTPMiddleware(cfg.Auth.Mode, cfg.Auth.EffectiveHeader(), cfg.Auth.Key(), "/health", "/metrics")

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.MDP.HTTPPort),
		Handler:           protect(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.MDP.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("mdp-service shutting down")
	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	httpSrv.Shutdown(shutdownCtx) //nolint:errcheck
}
