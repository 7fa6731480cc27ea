// Package handlers contains HTTP health checks and reusable middleware.
package handlers

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH
// ══════════════════════════════════════════════════════════════════════════════

// DefaultCheckTimeout bounds each backing-store probe.
const DefaultCheckTimeout = 5 * time.Second

// HealthChecker reports whether the tracker can serve requests.
type HealthChecker interface {
	Check(ctx context.Context) HealthStatus
}

// HealthCheckFunc probes one backing store.
type HealthCheckFunc func(ctx context.Context) error

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Healthy   bool              `json:"healthy"`
	Message   string            `json:"message"`
	Failures  map[string]string `json:"failures,omitempty"`
	Version   string            `json:"version,omitempty"`
	CheckedAt time.Time         `json:"checked_at"`
}

// CompositeHealthChecker probes every registered store concurrently.
type CompositeHealthChecker struct {
	version string
	timeout time.Duration

	mu     sync.RWMutex
	checks map[string]HealthCheckFunc
}

// NewCompositeHealthChecker creates a checker. A non-positive timeout uses
// DefaultCheckTimeout.
func NewCompositeHealthChecker(version string, timeout time.Duration) *CompositeHealthChecker {
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}
	return &CompositeHealthChecker{
		version: version,
		timeout: timeout,
		checks:  make(map[string]HealthCheckFunc),
	}
}

// AddCheck registers check under name, replacing an earlier one.
func (c *CompositeHealthChecker) AddCheck(name string, check HealthCheckFunc) {
	c.mu.Lock()
	c.checks[name] = check
	c.mu.Unlock()
}

// Check runs all probes and names the failing ones in sorted order.
func (c *CompositeHealthChecker) Check(ctx context.Context) HealthStatus {
	c.mu.RLock()
	checks := make(map[string]HealthCheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	status := HealthStatus{Healthy: true, Version: c.version, CheckedAt: time.Now().UTC()}
	if len(checks) == 0 {
		status.Message = "No health checks registered"
		return status
	}

	var (
		mu       sync.Mutex
		g        errgroup.Group
		failures = make(map[string]string)
	)
	for name, check := range checks {
		g.Go(func() error {
			checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			if err := check(checkCtx); err != nil {
				mu.Lock()
				failures[name] = err.Error()
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(failures) == 0 {
		status.Message = "All checks passed"
		return status
	}

	names := make([]string, 0, len(failures))
	for name := range failures {
		names = append(names, name)
	}
	slices.Sort(names)

	status.Healthy = false
	status.Failures = failures
	status.Message = "Some checks failed: " + strings.Join(names, ", ")
	return status
}
