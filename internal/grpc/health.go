// Package grpc exposes dependency health over the standard gRPC health protocol.
package grpc

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Service names reported by the prober.
const (
	ServiceOrders  = "checkout.orders"
	ServiceSellers = "checkout.sellers"
	ServiceCart    = "checkout.cart"
)

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

func NewServer(hs *health.Server) *grpc.Server {
	s := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthpb.RegisterHealthServer(s, hs)
	reflection.Register(s)
	return s
}

// Prober refreshes health statuses from dependency checks. The overall ("")
// status is SERVING only while every dependency is.
type Prober struct {
	health   *health.Server
	checks   map[string]Check
	names    []string
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger

	mu   sync.Mutex
	last map[string]healthpb.HealthCheckResponse_ServingStatus
}

func NewProber(hs *health.Server, logger *slog.Logger, interval time.Duration, checks map[string]Check) *Prober {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	p := &Prober{
		health:   hs,
		checks:   checks,
		names:    names,
		interval: interval,
		timeout:  2 * time.Second,
		logger:   logger,
		last:     make(map[string]healthpb.HealthCheckResponse_ServingStatus),
	}
	for _, name := range names {
		hs.SetServingStatus(name, healthpb.HealthCheckResponse_UNKNOWN)
	}
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	return p
}

// Probe runs every check once.
func (p *Prober) Probe(ctx context.Context) {
	overall := healthpb.HealthCheckResponse_SERVING
	for _, name := range p.names {
		checkCtx, cancel := context.WithTimeout(ctx, p.timeout)
		err := p.checks[name](checkCtx)
		cancel()

		status := healthpb.HealthCheckResponse_SERVING
		if err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			overall = healthpb.HealthCheckResponse_NOT_SERVING
		}
		p.set(name, status, err)
	}
	p.health.SetServingStatus("", overall)
}

func (p *Prober) set(name string, status healthpb.HealthCheckResponse_ServingStatus, err error) {
	p.mu.Lock()
	prev, seen := p.last[name]
	p.last[name] = status
	p.mu.Unlock()

	if (seen && prev != status) || (!seen && err != nil) {
		if err != nil {
			p.logger.Warn("dependency unhealthy", "service", name, "error", err)
		} else {
			p.logger.Info("dependency recovered", "service", name)
		}
	}
	p.health.SetServingStatus(name, status)
}

// Run probes immediately and then on every tick until ctx is done.
func (p *Prober) Run(ctx context.Context) {
	p.Probe(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Probe(ctx)
		}
	}
}
