// Package rpc builds the gRPC server each service runs next to its HTTP
// listener. It exposes the standard grpc.health.v1.Health service so
// orchestrators can probe the process, guarded by the API key interceptor.
package rpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/decisionstack/decisionstack/server/internal/auth"
	"github.com/decisionstack/decisionstack/server/internal/config"
)

// Server pairs a grpc.Server with its health registry.
type Server struct {
	GRPC    *grpc.Server
	Health  *health.Server
	service string
}

// New creates a Server whose health service reports service (and the
// overall "" entry) as SERVING.
func New(service string, a config.AuthConfig) *Server {
	interceptor := auth.APIKeyInterceptor(a.Mode, a.EffectiveHeader(), a.Key())
	g := grpc.NewServer(grpc.UnaryInterceptor(interceptor))

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(service, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(g, hs)

	return &Server{GRPC: g, Health: hs, service: service}
}

// Serve accepts connections on lis until ctx is cancelled, then marks the
// service NOT_SERVING and stops gracefully.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	go func() {
		<-ctx.Done()
		s.Health.Shutdown()
		s.GRPC.GracefulStop()
	}()
	slog.Info("gRPC health listening", "service", s.service, "addr", lis.Addr().String())
	if err := s.GRPC.Serve(lis); err != nil {
		return fmt.Errorf("rpc: serve %s: %w", s.service, err)
	}
	return nil
}
