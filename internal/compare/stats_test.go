package compare

import (
	"errors"
	"testing"
	"time"
)

func TestLLMStats_SnapshotPercentiles(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	for _, ms := range []int64{500, 100, 300, 200, 400} {
		stats.Observe(time.Duration(ms)*time.Millisecond, nil)
	}

	snap := stats.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinMs != 100 || snap.MaxMs != 500 {
		t.Fatalf("expected min=100 max=500, got %d/%d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
}

func TestLLMStats_CountsFailures(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	stats.Observe(time.Second, nil)
	stats.Observe(time.Second, errors.New("boom"))

	snap := stats.Snapshot()
	if snap.Count != 2 || snap.Failures != 1 {
		t.Fatalf("expected count=2 failures=1, got %d/%d", snap.Count, snap.Failures)
	}
}

func TestLLMStats_EvictsOldObservations(t *testing.T) {
	stats := NewLLMStats(time.Minute)
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	stats.now = func() time.Time { return clock }

	stats.Observe(100*time.Millisecond, nil)
	clock = clock.Add(2 * time.Minute)

	if snap := stats.Snapshot(); snap.Count != 0 {
		t.Fatalf("expected count=0 after eviction, got %d", snap.Count)
	}

	stats.Observe(200*time.Millisecond, nil)
	snap := stats.Snapshot()
	if snap.Count != 1 || snap.MinMs != 200 {
		t.Fatalf("expected one fresh sample of 200ms, got %+v", snap)
	}
}

func TestLLMStats_NegativeDurationClamped(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	stats.Observe(-10*time.Millisecond, nil)
	if snap := stats.Snapshot(); snap.MinMs != 0 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped duration=0, got %+v", snap)
	}
}

func TestLLMStats_NilReceiver(t *testing.T) {
	var stats *LLMStats
	stats.Observe(time.Second, nil)
}
