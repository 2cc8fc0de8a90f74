package twincoder

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/twincoder/internal/handoff"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordPhase is called after each writing phase of the running process.
	// written is the number of output bytes the phase produced.
	RecordPhase(role handoff.Role, phase handoff.Phase, written int, duration time.Duration)

	// RecordWait is called after a role received its peer's wake.
	RecordWait(role handoff.Role, phase handoff.Phase, duration time.Duration)

	// RecordEncode is called once per Encode call.
	// duration is the total time taken, err is nil if successful.
	RecordEncode(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordPhase(handoff.Role, handoff.Phase, int, time.Duration) {}
func (NoopMetricsCollector) RecordWait(handoff.Role, handoff.Phase, time.Duration)       {}
func (NoopMetricsCollector) RecordEncode(time.Duration, error)                           {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	PhaseCount       atomic.Int64
	BytesWritten     atomic.Int64
	PhaseTotalNanos  atomic.Int64
	WaitCount        atomic.Int64
	WaitTotalNanos   atomic.Int64
	EncodeCount      atomic.Int64
	EncodeErrors     atomic.Int64
	EncodeTotalNanos atomic.Int64
}

// RecordPhase implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPhase(_ handoff.Role, _ handoff.Phase, written int, duration time.Duration) {
	b.PhaseCount.Add(1)
	b.BytesWritten.Add(int64(written))
	b.PhaseTotalNanos.Add(duration.Nanoseconds())
}

// RecordWait implements MetricsCollector.
func (b *BasicMetricsCollector) RecordWait(_ handoff.Role, _ handoff.Phase, duration time.Duration) {
	b.WaitCount.Add(1)
	b.WaitTotalNanos.Add(duration.Nanoseconds())
}

// RecordEncode implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEncode(duration time.Duration, err error) {
	b.EncodeCount.Add(1)
	b.EncodeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.EncodeErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		PhaseCount:     b.PhaseCount.Load(),
		BytesWritten:   b.BytesWritten.Load(),
		PhaseAvgNanos:  avg(b.PhaseTotalNanos.Load(), b.PhaseCount.Load()),
		WaitCount:      b.WaitCount.Load(),
		WaitAvgNanos:   avg(b.WaitTotalNanos.Load(), b.WaitCount.Load()),
		EncodeCount:    b.EncodeCount.Load(),
		EncodeErrors:   b.EncodeErrors.Load(),
		EncodeAvgNanos: avg(b.EncodeTotalNanos.Load(), b.EncodeCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	PhaseCount     int64
	BytesWritten   int64
	PhaseAvgNanos  int64
	WaitCount      int64
	WaitAvgNanos   int64
	EncodeCount    int64
	EncodeErrors   int64
	EncodeAvgNanos int64
}
