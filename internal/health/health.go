// Package health serves the standard gRPC health protocol for the game
// server and keeps it current by probing dependencies on an interval.
package health

import (
	"context"
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/cory-johannsen/stag/internal/config"
)

// Service is the name reported for the game itself.
const Service = "stag"

// probeTimeout bounds a single dependency probe.
const probeTimeout = 5 * time.Second

// Check probes one dependency. A nil error means healthy.
type Check func(ctx context.Context) error

// Monitor owns a gRPC server exposing grpc.health.v1 and the probe loop that
// feeds it.
type Monitor struct {
	cfg    config.HealthConfig
	logger *zap.Logger

	checks map[string]Check
	status *grpchealth.Server
	server *grpc.Server

	mu       sync.Mutex
	listener net.Listener
	quit     chan struct{}
	stopOnce sync.Once
}

// NewMonitor creates a Monitor reporting SERVING for the game until a probe
// fails.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a Monitor ready to be started with Start.
func NewMonitor(cfg config.HealthConfig, logger *zap.Logger) *Monitor {
	status := grpchealth.NewServer()
	status.SetServingStatus(Service, healthpb.HealthCheckResponse_SERVING)

	server := grpc.NewServer()
	healthpb.RegisterHealthServer(server, status)

	return &Monitor{
		cfg:    cfg,
		logger: logger,
		checks: make(map[string]Check),
		status: status,
		server: server,
		quit:   make(chan struct{}),
	}
}

// Register adds a named dependency probe. The dependency is reported as its
// own service and also folds into the game's overall status.
//
// Precondition: name must be non-empty and check non-nil; Register must not
// be called after Start.
func (m *Monitor) Register(name string, check Check) {
	m.checks[name] = check
	m.status.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
}

// Probe runs every registered check once and updates the reported statuses.
//
// Postcondition: Each dependency reports SERVING or NOT_SERVING; the game
// service reports NOT_SERVING if any dependency failed.
func (m *Monitor) Probe(ctx context.Context) {
	names := make([]string, 0, len(m.checks))
	for name := range m.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	overall := healthpb.HealthCheckResponse_SERVING
	for _, name := range names {
		pctx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := m.checks[name](pctx)
		cancel()

		st := healthpb.HealthCheckResponse_SERVING
		if err != nil {
			st = healthpb.HealthCheckResponse_NOT_SERVING
			overall = st
			m.logger.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
		}
		m.status.SetServingStatus(name, st)
	}
	m.status.SetServingStatus(Service, overall)
}

// Status returns the reported status of service.
func (m *Monitor) Status(ctx context.Context, service string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := m.status.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}

// Start listens on the configured address, serves the health protocol and
// runs the probe loop. It blocks until Stop is called.
//
// Postcondition: Returns nil after Stop, or the listen/serve error.
func (m *Monitor) Start() error {
	lis, err := net.Listen("tcp", m.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", m.cfg.Addr(), err)
	}
	m.mu.Lock()
	m.listener = lis
	m.mu.Unlock()

	m.logger.Info("health server listening", zap.String("addr", lis.Addr().String()))

	go m.loop()
	return m.server.Serve(lis)
}

func (m *Monitor) loop() {
	interval := m.cfg.Interval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m.Probe(ctx)
	for {
		select {
		case <-m.quit:
			return
		case <-ticker.C:
			m.Probe(ctx)
		}
	}
}

// Addr returns the listening address, or empty string before Start.
func (m *Monitor) Addr() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listener != nil {
		return m.listener.Addr().String()
	}
	return ""
}

// Stop marks every service NOT_SERVING and gracefully stops the server.
//
// Postcondition: Start has returned or will return promptly.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.quit)
		m.status.Shutdown()
		m.server.GracefulStop()
		m.logger.Info("health server stopped")
	})
}
