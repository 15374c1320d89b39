// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/matuskalis/speaksharp-gamification/pkg/common"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// DefaultHealthInterval is how often the store is probed for the gRPC health status.
const DefaultHealthInterval = 10 * time.Second

// HealthCheck reports whether the service dependencies are usable.
type HealthCheck interface {
	Check(ctx context.Context) error
}

// GRPCServer manages the gRPC server lifecycle. It serves the standard health
// service, backed by HealthCheck, and reflection.
type GRPCServer struct {
	server   *grpc.Server
	health   *health.Server
	port     int
	checker  HealthCheck
	interval time.Duration
	listener net.Listener
	stop     context.CancelFunc
	done     chan struct{}
}

// NewGRPCServer creates a new gRPC server instance.
func NewGRPCServer(port int, checker HealthCheck) *GRPCServer {
	return &GRPCServer{
		port:     port,
		checker:  checker,
		interval: DefaultHealthInterval,
	}
}

// Setup configures the gRPC server with interceptors and registers the
// health and reflection services.
func (s *GRPCServer) Setup() error {
	unaryInterceptors := []grpc.UnaryServerInterceptor{
		logging.UnaryServerInterceptor(common.InterceptorLogger(logrus.StandardLogger())),
	}
	streamInterceptors := []grpc.StreamServerInterceptor{
		logging.StreamServerInterceptor(common.InterceptorLogger(logrus.StandardLogger())),
	}

	// Create server with OpenTelemetry instrumentation
	s.server = grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(unaryInterceptors...),
		grpc.ChainStreamInterceptor(streamInterceptors...),
	)

	s.health = health.NewServer()
	s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	// - Reflection: allows tools like grpcurl to inspect services
	// - Health check: for Kubernetes liveness/readiness probes
	reflection.Register(s.server)
	grpc_health_v1.RegisterHealthServer(s.server, s.health)

	logrus.Infof("gRPC reflection and health check enabled")

	return nil
}

// Start begins listening and serving gRPC requests, and keeps the health
// status in step with the store until Shutdown.
func (s *GRPCServer) Start(ctx context.Context) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.port, err)
	}
	s.listener = lis

	go func() {
		logrus.Infof("gRPC server listening on port %d", s.port)
		if err := s.server.Serve(lis); err != nil {
			logrus.Fatalf("gRPC server failed: %v", err)
		}
	}()

	watchCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	s.stop = stop
	s.done = make(chan struct{})
	go s.watchHealth(watchCtx)

	return nil
}

// Addr returns the listening address once started.
func (s *GRPCServer) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *GRPCServer) watchHealth(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.updateHealth(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *GRPCServer) updateHealth(ctx context.Context) {
	status := grpc_health_v1.HealthCheckResponse_SERVING
	if s.checker != nil {
		if err := s.checker.Check(ctx); err != nil {
			status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", status)
}

// Shutdown gracefully stops the gRPC server.
func (s *GRPCServer) Shutdown(ctx context.Context) error {
	logrus.Info("shutting down gRPC server...")
	if s.stop != nil {
		s.stop()
		<-s.done
	}
	s.health.Shutdown()
	s.server.GracefulStop()
	logrus.Info("gRPC server stopped")
	return nil
}
