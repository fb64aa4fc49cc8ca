// Package grpc exposes the catalog's gRPC health service, driven by store reachability.
package grpc

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported next to the overall "" status.
const ServiceName = "catalog.ProductStore"

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker polls a Pinger and mirrors the result into a health.Server.
type HealthChecker struct {
	pinger   Pinger
	server   *health.Server
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

// NewHealthChecker creates a checker. Every probe is bounded by timeout.
func NewHealthChecker(pinger Pinger, server *health.Server, interval, timeout time.Duration, logger *slog.Logger) *HealthChecker {
	return &HealthChecker{
		pinger:   pinger,
		server:   server,
		interval: interval,
		timeout:  timeout,
		logger:   logger.With("component", "health"),
	}
}

// Check probes once and publishes the resulting status.
func (h *HealthChecker) Check(ctx context.Context) grpc_health_v1.HealthCheckResponse_ServingStatus {
	probeCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	status := grpc_health_v1.HealthCheckResponse_SERVING
	if err := h.pinger.Ping(probeCtx); err != nil {
		h.logger.WarnContext(ctx, "Store health probe failed", "error", err)
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(ServiceName, status)
	return status
}

// Run probes immediately and then every interval until ctx is done. On return
// every service is marked NOT_SERVING.
func (h *HealthChecker) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return nil
		case <-ticker.C:
			h.Check(ctx)
		}
	}
}
