// internal/monitoring/health.go
package monitoring

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// HealthStatus represents the health status of a component.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusUnknown   HealthStatus = "unknown"
)

// CheckFunc probes one dependency.
type CheckFunc func(ctx context.Context) error

// CheckResult is the recorded outcome of one check.
type CheckResult struct {
	Name      string       `json:"name"`
	Status    HealthStatus `json:"status"`
	Error     string       `json:"error,omitempty"`
	LastCheck time.Time    `json:"last_check"`
	Duration  string       `json:"duration"`
}

// HealthManager runs named dependency checks on demand and caches the
// last result per check.
type HealthManager struct {
	mu      sync.RWMutex
	checks  map[string]CheckFunc
	order   []string
	results map[string]CheckResult
	timeout time.Duration
}

// NewHealthManager creates an empty manager with a per-check timeout.
func NewHealthManager(timeout time.Duration) *HealthManager {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &HealthManager{
		checks:  make(map[string]CheckFunc),
		results: make(map[string]CheckResult),
		timeout: timeout,
	}
}

// Register adds a named check. Registration order is preserved in
// reports.
func (hm *HealthManager) Register(name string, check CheckFunc) {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	if _, exists := hm.checks[name]; !exists {
		hm.order = append(hm.order, name)
	}
	hm.checks[name] = check
}

// RunChecks executes every registered check and returns the overall
// status with per-check results.
func (hm *HealthManager) RunChecks(ctx context.Context) (HealthStatus, []CheckResult) {
	hm.mu.RLock()
	names := append([]string(nil), hm.order...)
	checks := make(map[string]CheckFunc, len(hm.checks))
	for name, check := range hm.checks {
		checks[name] = check
	}
	hm.mu.RUnlock()

	overall := HealthStatusHealthy
	results := make([]CheckResult, 0, len(names))

	for _, name := range names {
		result := hm.runOne(ctx, name, checks[name])
		if result.Status != HealthStatusHealthy {
			overall = HealthStatusUnhealthy
		}
		results = append(results, result)
	}

	hm.mu.Lock()
	for _, result := range results {
		hm.results[result.Name] = result
	}
	hm.mu.Unlock()

	return overall, results
}

func (hm *HealthManager) runOne(ctx context.Context, name string, check CheckFunc) CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, hm.timeout)
	defer cancel()

	start := time.Now()
	err := check(checkCtx)
	result := CheckResult{
		Name:      name,
		Status:    HealthStatusHealthy,
		LastCheck: start,
		Duration:  time.Since(start).String(),
	}
	if err != nil {
		result.Status = HealthStatusUnhealthy
		result.Error = err.Error()
	}
	return result
}

// LastResults returns the cached results from the most recent run.
func (hm *HealthManager) LastResults() []CheckResult {
	hm.mu.RLock()
	defer hm.mu.RUnlock()

	results := make([]CheckResult, 0, len(hm.order))
	for _, name := range hm.order {
		if result, ok := hm.results[name]; ok {
			results = append(results, result)
		}
	}
	return results
}

// WorkDirCheck verifies the scratch directory exists and is writable.
func WorkDirCheck(workDir string) CheckFunc {
	return func(ctx context.Context) error {
		probe := filepath.Join(workDir, ".healthcheck")
		if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
			return err
		}
		return os.Remove(probe)
	}
}

// BinaryCheck verifies an external tool can be invoked.
func BinaryCheck(probe func(ctx context.Context) (string, error)) CheckFunc {
	return func(ctx context.Context) error {
		_, err := probe(ctx)
		return err
	}
}
