package pipeline

import (
	"slices"
	"sync"
	"time"
)

// Outcome classifies one extraction for the stats window.
type Outcome int

const (
	OutcomeParsed Outcome = iota
	OutcomeCached
	OutcomeFailed
)

type sample struct {
	at       time.Time
	outcome  Outcome
	duration time.Duration
}

// StatsSnapshot aggregates the extractions in the window. Latencies cover
// parsed documents only; cache hits and failures are just counted.
type StatsSnapshot struct {
	Parsed int     `json:"parsed"`
	Cached int     `json:"cached"`
	Failed int     `json:"failed"`
	MinMs  int64   `json:"min_ms"`
	MaxMs  int64   `json:"max_ms"`
	AvgMs  float64 `json:"avg_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
}

// ExtractionStats keeps recent extraction outcomes within a rolling window.
type ExtractionStats struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
}

func NewExtractionStats(maxAge time.Duration) *ExtractionStats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &ExtractionStats{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
	}
}

// Record adds one extraction. Negative durations count as zero.
func (s *ExtractionStats) Record(outcome Outcome, d time.Duration) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.samples = append(s.samples, sample{at: now, outcome: outcome, duration: max(d, 0)})
}

func (s *ExtractionStats) Snapshot() StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)

	var snap StatsSnapshot
	var ms []int64
	var sum int64
	for _, sm := range s.samples {
		switch sm.outcome {
		case OutcomeCached:
			snap.Cached++
		case OutcomeFailed:
			snap.Failed++
		default:
			snap.Parsed++
			v := sm.duration.Milliseconds()
			ms = append(ms, v)
			sum += v
		}
	}
	if len(ms) == 0 {
		return snap
	}

	slices.Sort(ms)
	snap.MinMs = ms[0]
	snap.MaxMs = ms[len(ms)-1]
	snap.AvgMs = float64(sum) / float64(len(ms))
	snap.P50Ms = percentile(ms, 50)
	snap.P95Ms = percentile(ms, 95)
	return snap
}

func (s *ExtractionStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	s.samples = slices.DeleteFunc(s.samples, func(sm sample) bool {
		return sm.at.Before(cutoff)
	})
}

// percentile interpolates linearly between the two closest ranks.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}

	index := float64(len(sorted)-1) * pct / 100
	lower := int(index)
	if lower+1 >= len(sorted) {
		return float64(sorted[lower])
	}
	lo, hi := float64(sorted[lower]), float64(sorted[lower+1])
	return lo + (hi-lo)*(index-float64(lower))
}
