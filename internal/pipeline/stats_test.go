package pipeline

import (
	"context"
	"testing"
	"time"
)

func TestExtractionStats_Percentiles(t *testing.T) {
	stats := NewExtractionStats(time.Hour)
	for _, ms := range []int{100, 200, 300, 400, 500} {
		stats.Record(OutcomeParsed, time.Duration(ms)*time.Millisecond)
	}

	snap := stats.Snapshot()
	if snap.Parsed != 5 {
		t.Fatalf("expected parsed=5, got %d", snap.Parsed)
	}
	if snap.MinMs != 100 {
		t.Errorf("expected min=100, got %d", snap.MinMs)
	}
	if snap.MaxMs != 500 {
		t.Errorf("expected max=500, got %d", snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Errorf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Errorf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Errorf("expected p95=480, got %f", snap.P95Ms)
	}
}

func TestExtractionStats_CountsOutcomes(t *testing.T) {
	stats := NewExtractionStats(time.Hour)
	stats.Record(OutcomeCached, 0)
	stats.Record(OutcomeCached, 0)
	stats.Record(OutcomeFailed, 5*time.Millisecond)
	stats.Record(OutcomeParsed, 40*time.Millisecond)

	snap := stats.Snapshot()
	if snap.Cached != 2 || snap.Failed != 1 || snap.Parsed != 1 {
		t.Fatalf("expected 2 cached, 1 failed, 1 parsed, got %+v", snap)
	}
	// Failures do not skew latency.
	if snap.MinMs != 40 || snap.MaxMs != 40 {
		t.Errorf("expected min=max=40, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}

func TestExtractionStats_PrunesExpiredSamples(t *testing.T) {
	stats := NewExtractionStats(10 * time.Millisecond)
	stats.Record(OutcomeParsed, 100*time.Millisecond)
	time.Sleep(25 * time.Millisecond)

	if snap := stats.Snapshot(); snap.Parsed != 0 {
		t.Fatalf("expected parsed=0 after prune, got %d", snap.Parsed)
	}

	stats.Record(OutcomeParsed, 200*time.Millisecond)
	snap := stats.Snapshot()
	if snap.Parsed != 1 {
		t.Fatalf("expected parsed=1 for fresh sample, got %d", snap.Parsed)
	}
	if snap.MinMs != 200 || snap.MaxMs != 200 {
		t.Errorf("expected min=max=200, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}

func TestExtractionStats_ClampsNegativeDuration(t *testing.T) {
	stats := NewExtractionStats(time.Hour)
	stats.Record(OutcomeParsed, -10*time.Millisecond)
	snap := stats.Snapshot()
	if snap.MinMs != 0 || snap.MaxMs != 0 {
		t.Errorf("expected clamped duration=0, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}

func TestExtractor_RecordsStats(t *testing.T) {
	ex := newTestExtractor(nil)
	ctx := context.Background()

	if _, err := ex.Extract(ctx, "report.html", []byte(reportHTML)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ex.Extract(ctx, "broken.pdf", []byte("not a pdf"))
	// Unsupported types are rejected before any work and not counted.
	ex.Extract(ctx, "notes.txt", []byte("plain"))

	snap := ex.Stats()
	if snap.Parsed != 1 || snap.Failed != 1 || snap.Cached != 0 {
		t.Errorf("expected 1 parsed and 1 failed, got %+v", snap)
	}
}
