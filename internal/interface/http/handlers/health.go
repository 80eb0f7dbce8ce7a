package handlers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// checkTimeout bounds each individual check.
const checkTimeout = 5 * time.Second

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH STATUS
// ══════════════════════════════════════════════════════════════════════════════

// HealthChecker backs the /health and /ready endpoints.
type HealthChecker interface {
	Check(ctx context.Context) HealthStatus
}

// HealthCheckFunc reports one dependency as unavailable by returning an error.
type HealthCheckFunc func(ctx context.Context) error

// HealthStatus is the aggregated result served as JSON.
type HealthStatus struct {
	// Healthy is false when a dependency the bot cannot answer without is down.
	Healthy bool `json:"healthy"`

	// Ready is false when any check failed, including readiness-only ones.
	Ready bool `json:"ready"`

	Message   string                 `json:"message,omitempty"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
	Uptime    string                 `json:"uptime,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version,omitempty"`
}

// CheckResult is the outcome of one named check.
type CheckResult struct {
	Healthy  bool   `json:"healthy"`
	Message  string `json:"message,omitempty"`
	Duration string `json:"duration,omitempty"`

	// ReadinessOnly marks checks that gate /ready but not /health.
	ReadinessOnly bool `json:"readiness_only,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// COMPOSITE HEALTH CHECKER
// ══════════════════════════════════════════════════════════════════════════════

type registeredCheck struct {
	fn            HealthCheckFunc
	readinessOnly bool
}

// CompositeHealthChecker runs the registered checks in parallel.
//
// Dependency checks (Bot API, redis, postgres) decide both health and
// readiness. Readiness checks (the photo asset) only decide readiness: the
// bot still answers every other command without them.
type CompositeHealthChecker struct {
	mu        sync.RWMutex
	checks    map[string]registeredCheck
	startTime time.Time
	version   string
}

// NewCompositeHealthChecker creates a checker with no checks registered.
func NewCompositeHealthChecker(version string) *CompositeHealthChecker {
	return &CompositeHealthChecker{
		checks:    make(map[string]registeredCheck),
		startTime: time.Now(),
		version:   version,
	}
}

// AddCheck registers a dependency check.
func (c *CompositeHealthChecker) AddCheck(name string, check HealthCheckFunc) {
	c.add(name, registeredCheck{fn: check})
}

// AddReadinessCheck registers a check that only affects readiness.
func (c *CompositeHealthChecker) AddReadinessCheck(name string, check HealthCheckFunc) {
	c.add(name, registeredCheck{fn: check, readinessOnly: true})
}

func (c *CompositeHealthChecker) add(name string, check registeredCheck) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Check runs every check and aggregates the results.
func (c *CompositeHealthChecker) Check(ctx context.Context) HealthStatus {
	c.mu.RLock()
	checks := make(map[string]registeredCheck, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	status := HealthStatus{
		Healthy:   true,
		Ready:     true,
		Checks:    make(map[string]CheckResult, len(checks)),
		Uptime:    time.Since(c.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
		Version:   c.version,
	}

	if len(checks) == 0 {
		status.Message = "No health checks registered"
		return status
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, check := range checks {
		wg.Add(1)
		go func(name string, check registeredCheck) {
			defer wg.Done()
			result := runCheck(ctx, check)
			mu.Lock()
			status.Checks[name] = result
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()

	var down, pending []string
	for name, result := range status.Checks {
		switch {
		case result.Healthy:
		case result.ReadinessOnly:
			status.Ready = false
			pending = append(pending, name)
		default:
			status.Healthy = false
			status.Ready = false
			down = append(down, name)
		}
	}
	sort.Strings(down)
	sort.Strings(pending)

	switch {
	case len(down) > 0:
		status.Message = "Unavailable: " + strings.Join(append(down, pending...), ", ")
	case len(pending) > 0:
		status.Message = "Not ready: " + strings.Join(pending, ", ")
	default:
		status.Message = "All checks passed"
	}
	return status
}

func runCheck(ctx context.Context, check registeredCheck) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	err := check.fn(ctx)

	result := CheckResult{
		Healthy:       err == nil,
		Message:       "OK",
		Duration:      time.Since(start).Round(time.Millisecond).String(),
		ReadinessOnly: check.readinessOnly,
	}
	if err != nil {
		result.Message = err.Error()
	}
	return result
}

// ══════════════════════════════════════════════════════════════════════════════
// PREDEFINED HEALTH CHECKS
// ══════════════════════════════════════════════════════════════════════════════

// Pinger is anything that can report its own connectivity: the redis cache,
// the postgres pool and the Bot API client all qualify.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewPingCheck creates a health check function from a Pinger.
func NewPingCheck(p Pinger) HealthCheckFunc {
	return func(ctx context.Context) error {
		return p.Ping(ctx)
	}
}

// AssetSource reports whether a named asset can be served.
type AssetSource interface {
	Exists(name string) bool
}

// NewAssetCheck fails while the named asset is missing from src.
func NewAssetCheck(src AssetSource, name string) HealthCheckFunc {
	return func(context.Context) error {
		if !src.Exists(name) {
			return fmt.Errorf("asset %q not found", name)
		}
		return nil
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// NOOP IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// NoopHealthChecker always reports healthy. Used when no checker is wired.
type NoopHealthChecker struct {
	startTime time.Time
}

// NewNoopHealthChecker creates a new noop health checker.
func NewNoopHealthChecker() *NoopHealthChecker {
	return &NoopHealthChecker{startTime: time.Now()}
}

// Check always returns healthy status.
func (n *NoopHealthChecker) Check(context.Context) HealthStatus {
	return HealthStatus{
		Healthy:   true,
		Ready:     true,
		Message:   "OK",
		Uptime:    time.Since(n.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
	}
}
