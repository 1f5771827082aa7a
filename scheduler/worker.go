package scheduler

import (
	"fmt"
	"time"

	"github.com/wardenlabs/chronos/internal/clock"
	"github.com/wardenlabs/chronos/internal/hooks"
	"github.com/wardenlabs/chronos/internal/metrics"
	"github.com/wardenlabs/chronos/job"
)

// workerPollChunk bounds how far ahead waitForNextRun asks the Clock to
// sleep in one call, so a concurrent AdjustInterval — which rewrites the
// job's next-run instant — is picked up on the following chunk rather
// than only after the original (now stale) target elapses.
const workerPollChunk = 100 * time.Millisecond

// runWorker is the per-recurring-job loop: it fires once immediately,
// then waits for each subsequent next_run, executing the body, recording
// metrics and hooks, and advancing next_run by the job's (possibly just
// adjusted) interval. It exits when the scheduler's shutdown signal
// fires, flushing metadata through the persistence backend on the way
// out.
func (s *Scheduler) runWorker(j *job.Job) {
	defer s.wg.Done()

	first := true
	for {
		if !first {
			if s.waitForNextRun(j) == clock.WakeCancelled {
				break
			}
		}
		if s.shuttingDown.Load() {
			break
		}

		s.hooksManager.Emit(hooks.Start, j.ID)
		s.logInfo(fmt.Sprintf("Job %s started", j.ID))

		start := s.clock.Now()
		_, err := s.invoke(j)
		elapsed := s.clock.Now().Sub(start)
		s.metrics.RecordLatency(j.ID, metrics.LatencySeconds(elapsed))

		if err == nil {
			s.metrics.RecordSuccess(j.ID)
			s.logInfo(fmt.Sprintf("Job %s succeeded", j.ID))
			s.hooksManager.Emit(hooks.Success, j.ID)
			j.MarkSuccess()
		} else {
			s.metrics.RecordFailure(j.ID)
			s.logError(fmt.Sprintf("Job %s failed: %v", j.ID, err))
			s.hooksManager.Emit(hooks.Failure, j.ID, err)
			j.MarkFailure()
		}

		j.SetNextRun(s.clock.Now().Add(j.GetInterval()))
		first = false
	}

	if s.persistBackend != nil {
		s.PersistJobs()
	}
}

// waitForNextRun blocks until j's next_run is reached or the scheduler is
// shutting down, re-reading j.NextRun() every workerPollChunk so a
// mid-wait AdjustInterval call takes effect promptly instead of being
// masked by an already-in-flight, now-stale target.
func (s *Scheduler) waitForNextRun(j *job.Job) clock.WakeReason {
	for {
		next, ok := j.NextRun()
		if !ok {
			return clock.WakeTimeout
		}
		target := next
		chunkCap := s.clock.Now().Add(workerPollChunk)
		if chunkCap.Before(target) {
			target = chunkCap
		}

		reason := s.clock.WaitUntil(target, s.shutdownCh)
		if reason == clock.WakeCancelled {
			return clock.WakeCancelled
		}
		if !s.clock.Now().Before(next) {
			return clock.WakeTimeout
		}
		// Hit the chunk cap, not the real target; loop and re-read
		// next_run in case AdjustInterval moved it.
	}
}
