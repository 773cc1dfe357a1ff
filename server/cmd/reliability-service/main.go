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
	"github.com/decisionstack/decisionstack/server/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "", "path to config file; built-in defaults when empty")
	flag.Parse()

	var level slog.LevelVar
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: &level}))
	slog.SetDefault(logger)

	slog.Info("reliability-service starting", "config", *configPath)

	cfg := config.Defaults()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			slog.Error("failed to load config", "err", err)
			os.Exit(1)
		}
	}
	config.Apply(cfg, nil, &level)

	slog.Info("config loaded",
		"http_port", cfg.Reliability.HTTPPort,
		"grpc_port", cfg.Reliability.GRPCPort,
		"auth_mode", cfg.Auth.Mode,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Only the log level is live for this service.
	if *configPath != "" {
		go func() {
			err := config.Watch(ctx, *configPath, func(c *config.Config) {
				config.Apply(c, nil, &level)
			})
			if err != nil {
				slog.Error("config watch stopped", "err", err)
			}
		}()
	}

	grpcSrv := rpc.New("reliability-service", cfg.Auth)
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Reliability.GRPCPort))
	if err != nil {
		slog.Error("failed to listen on gRPC port", "port", cfg.Reliability.GRPCPort, "err", err)
		os.Exit(1)
	}
	go func() {
		if err := grpcSrv.Serve(ctx, lis); err != nil {
			slog.Error("gRPC server stopped", "err", err)
		}
	}()

	reg := telemetry.NewRegistry()
	protect := auth.HTTPMiddleware(cfg.Auth.Mode, cfg.Auth.EffectiveHeader(), cfg.Auth.Key(), "/health", "/metrics")

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Reliability.HTTPPort),
		Handler:           protect(api.NewReliability(reg)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Reliability.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("reliability-service shutting down")
	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	httpSrv.Shutdown(shutdownCtx) //nolint:errcheck
}
