// Package health reports readiness through the standard gRPC health service.
package health

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Pinger checks database connectivity (e.g. *sqlx.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PolicyChecker checks that the access policy engine can evaluate (e.g. the OPA evaluator).
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// Checker runs the readiness checks and publishes the result on a health server.
// A nil Pinger or PolicyChecker is skipped.
type Checker struct {
	db      Pinger
	policy  PolicyChecker
	server  *health.Server
	timeout time.Duration
	logger  *slog.Logger
}

// NewChecker returns a Checker that updates server.
func NewChecker(db Pinger, policy PolicyChecker, server *health.Server, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{db: db, policy: policy, server: server, timeout: 2 * time.Second, logger: logger}
}

// Check runs every configured check and returns the first failure.
func (c *Checker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if c.db != nil {
		if err := c.db.PingContext(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if c.policy != nil {
		if err := c.policy.HealthCheck(ctx); err != nil {
			return fmt.Errorf("policy engine: %w", err)
		}
	}
	return nil
}

// Update runs the checks once and sets the serving status of the overall ""
// service and of each named service.
func (c *Checker) Update(ctx context.Context, services ...string) healthpb.HealthCheckResponse_ServingStatus {
	st := healthpb.HealthCheckResponse_SERVING
	if err := c.Check(ctx); err != nil {
		c.logger.WarnContext(ctx, "health: check failed", "error", err)
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	c.server.SetServingStatus("", st)
	for _, name := range services {
		c.server.SetServingStatus(name, st)
	}
	return st
}

// Watch updates the status every interval until ctx is done.
func (c *Checker) Watch(ctx context.Context, interval time.Duration, services ...string) {
	c.Update(ctx, services...)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.Update(ctx, services...)
		}
	}
}
