package api

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wallet-analytics/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthServer exposes the standard gRPC health protocol. The overall service
// ("") and each named component report SERVING while their store answers a ping.
type HealthServer struct {
	grpcServer *grpc.Server
	health     *health.Server
	checks     map[string]Pinger
	interval   time.Duration

	stopOnce sync.Once
	stop     chan struct{}
}

// NewHealthServer creates a gRPC health server probing checks every interval
func NewHealthServer(checks map[string]Pinger, interval time.Duration) *HealthServer {
	h := &HealthServer{
		grpcServer: grpc.NewServer(grpc.UnaryInterceptor(LoggingInterceptor())),
		health:     health.NewServer(),
		checks:     checks,
		interval:   interval,
		stop:       make(chan struct{}),
	}
	healthpb.RegisterHealthServer(h.grpcServer, h.health)
	return h
}

// LoggingInterceptor attaches a request-scoped logger to each unary call and
// logs its outcome.
func LoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		logger := logging.GetGlobalLogger().WithFields(map[string]interface{}{
			"request_id": uuid.NewString(),
			"method":     info.FullMethod,
		})

		resp, err := handler(logging.WithLogger(ctx, logger), req)

		entry := logger.WithField("duration_ms", time.Since(start).Milliseconds())
		if err != nil {
			entry.WithError(err).Warn("gRPC request failed")
		} else {
			entry.Debug("gRPC request")
		}
		return resp, err
	}
}

// Check pings every component once and publishes the resulting statuses
func (h *HealthServer) Check(ctx context.Context) bool {
	healthy := true
	for name, check := range h.checks {
		status := healthpb.HealthCheckResponse_SERVING
		if err := check.Ping(ctx); err != nil {
			logging.FromContext(ctx).WithField("component", name).WithError(err).Warn("Health check failed")
			status = healthpb.HealthCheckResponse_NOT_SERVING
			healthy = false
		}
		h.health.SetServingStatus(name, status)
	}

	overall := healthpb.HealthCheckResponse_SERVING
	if !healthy {
		overall = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.health.SetServingStatus("", overall)
	return healthy
}

// Serve probes once, then serves on lis while re-probing in the background.
// It returns when the server stops.
func (h *HealthServer) Serve(ctx context.Context, lis net.Listener) error {
	h.Check(ctx)

	go func() {
		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				probeCtx, cancel := context.WithTimeout(ctx, h.interval)
				h.Check(probeCtx)
				cancel()
			case <-h.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	logging.FromContext(ctx).Infof("gRPC health server listening on %s", lis.Addr())
	return h.grpcServer.Serve(lis)
}

// Stop marks every service NOT_SERVING and drains in-flight calls
func (h *HealthServer) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
		h.health.Shutdown()
		h.grpcServer.GracefulStop()
	})
}
