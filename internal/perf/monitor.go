// Package perf tracks per-frame processing latency against a target and
// reports rolling statistics over a bounded window.
package perf

import (
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Config holds monitor options.
type Config struct {
	// Capacity bounds the sample window. Oldest samples are evicted first,
	// trading exact long-run statistics for bounded memory.
	Capacity int

	// TargetMS is the per-frame latency budget in milliseconds.
	TargetMS float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Capacity: 1000,
		TargetMS: 100,
	}
}

// Sample is one recorded latency measurement.
type Sample struct {
	Timestamp time.Time
	LatencyMS float64
	MetTarget bool
}

// Stats are rolling statistics over the monitor's current window.
type Stats struct {
	Count          int
	Average        float64
	Median         float64
	Min            float64
	Max            float64
	TargetMetRatio float64
}

// Monitor records latency samples into a fixed-capacity ring buffer.
// Record and Stats are safe for concurrent use.
type Monitor struct {
	cfg Config

	mu    sync.Mutex
	buf   []Sample
	next  int
	full  bool
	nowFn func() time.Time
}

// NewMonitor creates a Monitor with the given configuration.
func NewMonitor(cfg Config) *Monitor {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultConfig().Capacity
	}
	if cfg.TargetMS <= 0 {
		cfg.TargetMS = DefaultConfig().TargetMS
	}

	return &Monitor{
		cfg:   cfg,
		buf:   make([]Sample, cfg.Capacity),
		nowFn: time.Now,
	}
}

// Record appends a latency measurement, evicting the oldest sample once the
// window is full.
func (m *Monitor) Record(latencyMS float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.buf[m.next] = Sample{
		Timestamp: m.nowFn(),
		LatencyMS: latencyMS,
		MetTarget: latencyMS < m.cfg.TargetMS,
	}

	m.next++
	if m.next == len(m.buf) {
		m.next = 0
		m.full = true
	}
}

// TargetMS returns the configured latency budget.
func (m *Monitor) TargetMS() float64 {
	return m.cfg.TargetMS
}

// Stats computes rolling statistics over the current window. An empty window
// yields the zero Stats.
func (m *Monitor) Stats() Stats {
	m.mu.Lock()

	count := m.next
	if m.full {
		count = len(m.buf)
	}

	latencies := make([]float64, 0, count)
	met := 0
	for i := 0; i < count; i++ {
		s := m.buf[i]
		latencies = append(latencies, s.LatencyMS)
		if s.MetTarget {
			met++
		}
	}

	m.mu.Unlock()

	if count == 0 {
		return Stats{}
	}

	mean := stat.Mean(latencies, nil)

	sorted := make([]float64, count)
	copy(sorted, latencies)
	sort.Float64s(sorted)

	return Stats{
		Count:          count,
		Average:        mean,
		Median:         stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Min:            sorted[0],
		Max:            sorted[count-1],
		TargetMetRatio: float64(met) / float64(count),
	}
}
