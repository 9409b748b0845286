package monitoring

import (
	"context"
	"runtime"
	"sync"
	"time"
)

// HealthChecker runs named dependency probes for the readiness endpoint.
type HealthChecker struct {
	mu     sync.RWMutex
	checks []healthCheck
}

type healthCheck struct {
	name    string
	probe   func(ctx context.Context) error
	timeout time.Duration
}

// HealthStatus is the readiness report.
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{}
}

func (h *HealthChecker) AddCheck(name string, probe func(ctx context.Context) error, timeout time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks = append(h.checks, healthCheck{name: name, probe: probe, timeout: timeout})
}

func (h *HealthChecker) CheckAll(ctx context.Context) HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]string),
	}

	for _, check := range h.checks {
		checkCtx, cancel := context.WithTimeout(ctx, check.timeout)
		err := check.probe(checkCtx)
		cancel()

		if err != nil {
			status.Status = "unhealthy"
			status.Checks[check.name] = err.Error()
		} else {
			status.Checks[check.name] = "healthy"
		}
	}

	return status
}

// MemoryStats mirrors the process memory block of the liveness report.
type MemoryStats struct {
	AllocMB      uint64 `json:"allocMB"`
	TotalAllocMB uint64 `json:"totalAllocMB"`
	SysMB        uint64 `json:"sysMB"`
	NumGC        uint32 `json:"numGC"`
}

// ProcessHealth is the liveness report: always OK, with uptime and memory.
type ProcessHealth struct {
	Status        string      `json:"status"`
	Timestamp     time.Time   `json:"timestamp"`
	UptimeSeconds float64     `json:"uptimeSeconds"`
	MemoryStats   MemoryStats `json:"memoryStats"`
}

// SnapshotProcessHealth reports uptime since start plus runtime memory stats.
func SnapshotProcessHealth(start time.Time) ProcessHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	const mb = 1024 * 1024
	return ProcessHealth{
		Status:        "OK",
		Timestamp:     time.Now().UTC(),
		UptimeSeconds: time.Since(start).Seconds(),
		MemoryStats: MemoryStats{
			AllocMB:      m.Alloc / mb,
			TotalAllocMB: m.TotalAlloc / mb,
			SysMB:        m.Sys / mb,
			NumGC:        m.NumGC,
		},
	}
}
