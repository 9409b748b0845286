package monitoring

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestHealthChecker_AllHealthy(t *testing.T) {
	checker := NewHealthChecker()
	checker.AddCheck("always-ok", func(ctx context.Context) error {
		return nil
	}, time.Second)

	status := checker.CheckAll(context.Background())
	if status.Status != "healthy" {
		t.Errorf("Status = %q, want healthy", status.Status)
	}
	if status.Checks["always-ok"] != "healthy" {
		t.Errorf("Checks[always-ok] = %q, want healthy", status.Checks["always-ok"])
	}
}

func TestHealthChecker_FailingProbe(t *testing.T) {
	checker := NewHealthChecker()
	checker.AddCheck("ok", func(ctx context.Context) error { return nil }, time.Second)
	checker.AddCheck("broken", func(ctx context.Context) error {
		return errors.New("connection refused")
	}, time.Second)

	status := checker.CheckAll(context.Background())
	if status.Status != "unhealthy" {
		t.Errorf("Status = %q, want unhealthy", status.Status)
	}
	if status.Checks["ok"] != "healthy" {
		t.Errorf("Checks[ok] = %q, want healthy", status.Checks["ok"])
	}
	if status.Checks["broken"] != "connection refused" {
		t.Errorf("Checks[broken] = %q", status.Checks["broken"])
	}
}

func TestHealthChecker_ProbeTimeout(t *testing.T) {
	checker := NewHealthChecker()
	checker.AddCheck("slow", func(ctx context.Context) error {
		select {
		case <-time.After(time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}, 10*time.Millisecond)

	status := checker.CheckAll(context.Background())
	if status.Status != "unhealthy" {
		t.Errorf("Status = %q, want unhealthy for a probe that exceeds its timeout", status.Status)
	}
}

func TestSnapshotProcessHealth(t *testing.T) {
	start := time.Now().Add(-90 * time.Second)

	health := SnapshotProcessHealth(start)
	if health.Status != "OK" {
		t.Errorf("Status = %q, want OK", health.Status)
	}
	if health.UptimeSeconds < 90 {
		t.Errorf("UptimeSeconds = %v, want >= 90", health.UptimeSeconds)
	}
	if health.MemoryStats.SysMB == 0 {
		t.Error("MemoryStats.SysMB must be populated from the runtime")
	}
}
