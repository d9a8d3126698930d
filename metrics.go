package goToken

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one engine counter.
type MetricID uint16

const (
	MetricLoginSuccess MetricID = iota
	MetricLoginFailure
	MetricRefreshSuccess
	MetricRefreshFailure
	// MetricRefreshReplay counts refresh attempts with an already consumed token.
	MetricRefreshReplay
	MetricLogoutSuccess
	MetricLogoutFailure
	MetricAuthenticateSuccess
	MetricAuthenticateRejected
	// MetricAuthenticateAnonymous counts requests without a bearer token.
	MetricAuthenticateAnonymous
	// MetricRevocationStoreError counts backing failures on any path.
	MetricRevocationStoreError
	MetricAuthenticateLatency
	metricIDCount
)

// HistogramBuckets is the number of latency buckets. Upper bounds are 5ms,
// 10ms, 25ms, 50ms, 100ms, 250ms, 500ms, and +Inf.
const HistogramBuckets = 8

const cacheLineSize = 64

type paddedCounter struct {
	value atomic.Uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free counters and the authenticate latency histogram.
type Metrics struct {
	enabled bool
	latency bool
	counts  [metricIDCount]paddedCounter
	buckets [HistogramBuckets]atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of all counters. Histogram buckets
// are non-cumulative.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled: cfg.Enabled,
		latency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	m.counts[id].value.Add(1)
}

// Observe records d in the authenticate latency histogram. Other IDs are ignored.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.latency || id != MetricAuthenticateLatency {
		return
	}
	m.buckets[bucketIndex(d)].Add(1)
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return m.counts[id].value.Load()
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Counters:   map[MetricID]uint64{},
		Histograms: map[MetricID][]uint64{},
	}
	if !m.Enabled() {
		return s
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		if id == MetricAuthenticateLatency {
			continue
		}
		s.Counters[id] = m.counts[id].value.Load()
	}
	if m.latency {
		out := make([]uint64, HistogramBuckets)
		for i := range out {
			out[i] = m.buckets[i].Load()
		}
		s.Histograms[MetricAuthenticateLatency] = out
	}
	return s
}

var bucketBounds = [HistogramBuckets - 1]time.Duration{
	5 * time.Millisecond,
	10 * time.Millisecond,
	25 * time.Millisecond,
	50 * time.Millisecond,
	100 * time.Millisecond,
	250 * time.Millisecond,
	500 * time.Millisecond,
}

func bucketIndex(d time.Duration) int {
	for i, bound := range bucketBounds {
		if d <= bound {
			return i
		}
	}
	return HistogramBuckets - 1
}
