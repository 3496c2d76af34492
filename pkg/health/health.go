// Package health runs named dependency checks concurrently and serves the
// aggregate as liveness and readiness endpoints.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

type Status string

const (
	StatusUp       Status = "up"
	StatusDegraded Status = "degraded"
	StatusDown     Status = "down"
)

// severity orders statuses so the report takes the worst one.
func (s Status) severity() int {
	switch s {
	case StatusUp:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

// Check tests a single dependency.
type Check func(ctx context.Context) ComponentHealth

// Ping adapts an error-returning ping into a Check. A failed ping reports
// onFailure, so optional dependencies can degrade instead of going down.
func Ping(ping func(ctx context.Context) error, onFailure Status) Check {
	return func(ctx context.Context) ComponentHealth {
		if err := ping(ctx); err != nil {
			return ComponentHealth{Status: onFailure, Message: err.Error()}
		}
		return ComponentHealth{Status: StatusUp}
	}
}

type ComponentHealth struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

type Report struct {
	Status     Status                     `json:"status"`
	Components map[string]ComponentHealth `json:"components"`
	Timestamp  string                     `json:"timestamp"`
}

// Ready reports whether the service should take traffic. Only a component
// that is down takes it out of rotation.
func (r Report) Ready() bool {
	return r.Status != StatusDown
}

// CheckTimeout bounds each check. Readiness polls come every few seconds,
// so a hung dependency must not hold the answer longer than that.
const CheckTimeout = 2 * time.Second

type Checker struct {
	timeout time.Duration

	mu     sync.RWMutex
	checks map[string]Check
}

func NewChecker() *Checker {
	return &Checker{timeout: CheckTimeout, checks: make(map[string]Check)}
}

// Register adds or replaces a named check.
func (c *Checker) Register(name string, check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Run executes every check concurrently, each under its own deadline. A
// check that panics or returns no status counts as down.
func (c *Checker) Run(ctx context.Context) Report {
	c.mu.RLock()
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	checks := make([]Check, len(names))
	for i, name := range names {
		checks[i] = c.checks[name]
	}
	c.mu.RUnlock()

	results := make([]ComponentHealth, len(checks))
	var g errgroup.Group
	for i, check := range checks {
		g.Go(func() error {
			results[i] = c.runOne(ctx, check)
			return nil
		})
	}
	_ = g.Wait()

	report := Report{
		Status:     StatusUp,
		Components: make(map[string]ComponentHealth, len(names)),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	for i, name := range names {
		report.Components[name] = results[i]
		if results[i].Status.severity() > report.Status.severity() {
			report.Status = results[i].Status
		}
	}
	return report
}

func (c *Checker) runOne(ctx context.Context, check Check) (result ComponentHealth) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			result = ComponentHealth{Status: StatusDown, Message: fmt.Sprintf("check panicked: %v", p)}
		}
		result.Latency = time.Since(start).Round(time.Microsecond).String()
	}()

	result = check(ctx)
	if result.Status == "" {
		result.Status = StatusDown
		result.Message = "check returned no status"
		if ctx.Err() != nil {
			result.Message = fmt.Sprintf("no answer within %v", c.timeout)
		}
	}
	return result
}

// LiveHandler always answers 200 while the process is serving.
func (c *Checker) LiveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
	}
}

// ReadyHandler answers 503 when the report is not Ready. A degraded cache
// or database keeps the service ready since queries still answer from the
// in-memory index.
func (c *Checker) ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := c.Run(r.Context())
		status := http.StatusOK
		if !report.Ready() {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, report)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
