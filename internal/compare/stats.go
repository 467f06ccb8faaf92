package compare

import (
	"slices"
	"sync"
	"time"
)

type observation struct {
	at     time.Time
	ms     int64
	failed bool
}

// StatsSnapshot aggregates the comparison calls seen in the stats window.
type StatsSnapshot struct {
	Model    string  `json:"model,omitempty"`
	Count    int     `json:"count"`
	Failures int     `json:"failures"`
	MinMs    int64   `json:"min_ms"`
	MaxMs    int64   `json:"max_ms"`
	AvgMs    float64 `json:"avg_ms"`
	P50Ms    float64 `json:"p50_ms"`
	P95Ms    float64 `json:"p95_ms"`
	P99Ms    float64 `json:"p99_ms"`
}

// LLMStats keeps a rolling window of comparison call latencies.
type LLMStats struct {
	mu     sync.Mutex
	obs    []observation
	window time.Duration
	now    func() time.Time
}

func NewLLMStats(window time.Duration) *LLMStats {
	if window <= 0 {
		window = time.Hour
	}
	return &LLMStats{
		obs:    make([]observation, 0, 256),
		window: window,
		now:    time.Now,
	}
}

// Observe records one call. A nil receiver is a no-op so clients can run
// without stats.
func (s *LLMStats) Observe(d time.Duration, err error) {
	if s == nil {
		return
	}
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictLocked(now)
	s.obs = append(s.obs, observation{at: now, ms: ms, failed: err != nil})
}

func (s *LLMStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked(s.now())
	if len(s.obs) == 0 {
		return StatsSnapshot{}
	}

	var snap StatsSnapshot
	durations := make([]int64, 0, len(s.obs))
	var total int64
	for _, o := range s.obs {
		if o.failed {
			snap.Failures++
		}
		durations = append(durations, o.ms)
		total += o.ms
	}
	slices.Sort(durations)

	snap.Count = len(durations)
	snap.MinMs = durations[0]
	snap.MaxMs = durations[len(durations)-1]
	snap.AvgMs = float64(total) / float64(len(durations))
	snap.P50Ms = percentile(durations, 50)
	snap.P95Ms = percentile(durations, 95)
	snap.P99Ms = percentile(durations, 99)
	return snap
}

func (s *LLMStats) evictLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	i := 0
	for i < len(s.obs) && s.obs[i].at.Before(cutoff) {
		i++
	}
	if i > 0 {
		s.obs = append(s.obs[:0], s.obs[i:]...)
	}
}

// percentile interpolates linearly between the two nearest ranks.
func percentile(sorted []int64, pct float64) float64 {
	n := len(sorted)
	switch {
	case n == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[n-1])
	}

	rank := float64(n-1) * pct / 100
	lo := int(rank)
	if lo+1 >= n {
		return float64(sorted[lo])
	}
	frac := rank - float64(lo)
	return float64(sorted[lo]) + float64(sorted[lo+1]-sorted[lo])*frac
}
