package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRenderOmitsJobsThatNeverSucceeded(t *testing.T) {
	c := NewCollector()
	c.RecordFailure("job-a")
	c.RecordFailure("job-a")

	rendered := c.Render()
	require.NotContains(t, rendered, "job_runs_total")
	require.Contains(t, rendered, `job_failures_total{job_id="job-a"} 2`)
}

func TestRenderOrdersFamiliesRunsFailuresLatency(t *testing.T) {
	c := NewCollector()
	c.RecordSuccess("job-a")
	c.RecordFailure("job-b")
	c.RecordLatency("job-a", 0.1)

	rendered := c.Render()
	runsIdx := indexOf(rendered, "job_runs_total")
	failIdx := indexOf(rendered, "job_failures_total")
	latIdx := indexOf(rendered, "job_latency_seconds_count")
	require.True(t, runsIdx < failIdx)
	require.True(t, failIdx < latIdx)
}

func TestRenderPreservesFirstObservedOrderWithinFamily(t *testing.T) {
	c := NewCollector()
	c.RecordSuccess("job-b")
	c.RecordSuccess("job-a")
	c.RecordSuccess("job-b")

	rendered := c.Render()
	require.True(t, indexOf(rendered, `job_id="job-b"`) < indexOf(rendered, `job_id="job-a"`))
}

func TestLatencySecondsConversion(t *testing.T) {
	require.Equal(t, 1.5, LatencySeconds(1500*time.Millisecond))
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
