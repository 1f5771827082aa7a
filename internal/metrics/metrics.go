// Package metrics accumulates per-job success/failure counters and latency
// samples and renders them as line-oriented text, the scheduler's metrics
// exposition format.
package metrics

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Collector accumulates per-job counters and latency samples. The zero
// value is not ready for use; construct with NewCollector.
type Collector struct {
	mu sync.Mutex

	successCounts map[string]int64
	failureCounts map[string]int64
	latencies     map[string][]float64

	successOrder []string
	failureOrder []string
	latencyOrder []string
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{
		successCounts: make(map[string]int64),
		failureCounts: make(map[string]int64),
		latencies:     make(map[string][]float64),
	}
}

// RecordSuccess increments jobID's success counter.
func (c *Collector) RecordSuccess(jobID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.successCounts[jobID]; !ok {
		c.successOrder = append(c.successOrder, jobID)
	}
	c.successCounts[jobID]++
}

// RecordFailure increments jobID's failure counter.
func (c *Collector) RecordFailure(jobID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.failureCounts[jobID]; !ok {
		c.failureOrder = append(c.failureOrder, jobID)
	}
	c.failureCounts[jobID]++
}

// RecordLatency appends a latency sample, in seconds, for jobID.
func (c *Collector) RecordLatency(jobID string, seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.latencies[jobID]; !ok {
		c.latencyOrder = append(c.latencyOrder, jobID)
	}
	c.latencies[jobID] = append(c.latencies[jobID], seconds)
}

// Success returns the current success count for jobID.
func (c *Collector) Success(jobID string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.successCounts[jobID]
}

// Failure returns the current failure count for jobID.
func (c *Collector) Failure(jobID string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failureCounts[jobID]
}

// Render emits the three metric families in order: job_runs_total,
// job_failures_total, job_latency_seconds_count. Within a family, lines
// follow the order job-ids were first observed in that family.
func (c *Collector) Render() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var b strings.Builder
	lines := make([]string, 0, len(c.successOrder)+len(c.failureOrder)+len(c.latencyOrder))

	for _, id := range c.successOrder {
		lines = append(lines, fmt.Sprintf(`job_runs_total{job_id=%q} %d`, id, c.successCounts[id]))
	}
	for _, id := range c.failureOrder {
		lines = append(lines, fmt.Sprintf(`job_failures_total{job_id=%q} %d`, id, c.failureCounts[id]))
	}
	for _, id := range c.latencyOrder {
		lines = append(lines, fmt.Sprintf(`job_latency_seconds_count{job_id=%q} %d`, id, len(c.latencies[id])))
	}

	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

// LatencySeconds converts an elapsed execution duration to the seconds
// value RecordLatency expects.
func LatencySeconds(d time.Duration) float64 { return d.Seconds() }
