// Package health reports store reachability over the standard gRPC health
// protocol and a small HTTP probe.
package health

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"gochat/internal/config"
	"gochat/internal/httputil"
	"gochat/internal/repository"
)

// ServiceName is the service key clients pass to the health Check RPC.
const ServiceName = "gochat"

const pingTimeout = 2 * time.Second

// Monitor pings the store on an interval and publishes the result.
type Monitor struct {
	hs       *health.Server
	pinger   repository.Pinger
	interval time.Duration
	log      *zap.Logger
}

func NewMonitor(pinger repository.Pinger, cfg *config.Config, log *zap.Logger) *Monitor {
	interval := cfg.Health.CheckInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Monitor{
		hs:       health.NewServer(),
		pinger:   pinger,
		interval: interval,
		log:      log,
	}
}

// Check pings once and updates the published status.
func (m *Monitor) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	err := m.pinger.Ping(ctx)
	if err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		m.log.Warn("store ping failed", zap.Error(err))
	}
	m.hs.SetServingStatus("", status)
	m.hs.SetServingStatus(ServiceName, status)
	return err == nil
}

// Run checks immediately and then every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	m.Check(ctx)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.hs.Shutdown()
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// Serve runs a gRPC server exposing the health service (and reflection)
// on lis until ctx is done.
func (m *Monitor) Serve(ctx context.Context, lis net.Listener) error {
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			RecoverUnary(m.log),
			LoggingUnary(m.log),
		),
	)
	healthpb.RegisterHealthServer(s, m.hs)
	reflection.Register(s)

	errCh := make(chan error, 1)
	go func() {
		m.log.Info("health gRPC listening", zap.String("addr", lis.Addr().String()))
		errCh <- s.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		done := make(chan struct{})
		go func() {
			s.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			s.Stop()
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return err
	}
}

// ServeHTTP answers the HTTP probe from the last published status.
func (m *Monitor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp, err := m.hs.Check(r.Context(), &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil || resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "service": ServiceName})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": ServiceName})
}
