package eventbus

import "time"

// Metrics is a read-only snapshot of delivery counters for one event type.
// TotalEvents counts publishes; SuccessfulEvents and FailedEvents count
// individual subscriber deliveries, so one publish to two subscribers where
// one fails yields 1 successful and 1 failed.
type Metrics struct {
	TotalEvents           int64
	SuccessfulEvents      int64
	FailedEvents          int64
	AverageProcessingTime time.Duration
}

type typeMetrics struct {
	total      int64
	successful int64
	failed     int64
	totalTime  time.Duration
}

func (m *typeMetrics) snapshot() Metrics {
	out := Metrics{
		TotalEvents:      m.total,
		SuccessfulEvents: m.successful,
		FailedEvents:     m.failed,
	}
	if m.total > 0 {
		out.AverageProcessingTime = m.totalTime / time.Duration(m.total)
	}
	return out
}

// metricsFor must be called with b.mu held.
func (b *Bus) metricsFor(eventType string) *typeMetrics {
	m, ok := b.metrics[eventType]
	if !ok {
		m = &typeMetrics{}
		b.metrics[eventType] = m
	}
	return m
}

// Metrics returns the counters for one event type.
func (b *Bus) Metrics(eventType string) Metrics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	m, ok := b.metrics[eventType]
	if !ok {
		return Metrics{}
	}
	return m.snapshot()
}

// AllMetrics returns a snapshot keyed by event type.
func (b *Bus) AllMetrics() map[string]Metrics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]Metrics, len(b.metrics))
	for eventType, m := range b.metrics {
		out[eventType] = m.snapshot()
	}
	return out
}
