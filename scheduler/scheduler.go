// Package scheduler is the engineering heart of the module: it owns jobs,
// spawns one worker goroutine per recurring job, coordinates graceful
// shutdown, persists state through a pluggable backend, and dispatches
// lifecycle hooks and metrics. See scheduler/worker.go for the per-job
// execution loop.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/wardenlabs/chronos/internal/clock"
	"github.com/wardenlabs/chronos/internal/hooks"
	"github.com/wardenlabs/chronos/internal/leaderlock"
	"github.com/wardenlabs/chronos/internal/metrics"
	"github.com/wardenlabs/chronos/internal/persistence"
	"github.com/wardenlabs/chronos/job"
	"github.com/wardenlabs/chronos/logger"
)

// Options configures a Scheduler at construction time.
type Options struct {
	// Persistence is the metadata backend. Nil means no durable
	// metadata: jobs live only in memory for the process lifetime.
	Persistence persistence.Backend
	// PersistPath is stored on the Scheduler but never opened, interpreted
	// or reported by it — the caller constructs the matching Persistence
	// backend.
	PersistPath string
	// LeaderLockPath, when set, puts the scheduler in coordinated mode.
	// Empty means standalone (always leader).
	LeaderLockPath string
	// Clock is the time source driving worker loops. Defaults to the
	// real system clock; tests may inject a *clock.Fake.
	Clock clock.Clock
}

// Scheduler owns every Job and worker goroutine; workers hold only a
// shared, non-owning reference to their Job and to the shutdown signal.
type Scheduler struct {
	mu   sync.RWMutex
	jobs map[string]*job.Job

	shutdownCh   chan struct{}
	shutdownOnce sync.Once
	shuttingDown atomic.Bool
	wg           sync.WaitGroup

	leader         *leaderlock.Lock
	persistBackend persistence.Backend
	persistPath    string

	logMu  sync.RWMutex
	logger logger.Sink

	hooksManager *hooks.Manager
	metrics      *metrics.Collector
	clock        clock.Clock
}

// New constructs a Scheduler. If opts.Persistence is set and already
// holds records, each is rehydrated into a reconstructed Job carrying the
// inert placeholder body; it reports in ListJobs/Health, gets no worker,
// and does no work when triggered until rebound (see RebindAndResume).
// The leader lock is never
// acquired implicitly — call AcquireLeader explicitly.
func New(opts Options) *Scheduler {
	s := &Scheduler{
		jobs:           make(map[string]*job.Job),
		shutdownCh:     make(chan struct{}),
		leader:         leaderlock.New(opts.LeaderLockPath),
		persistBackend: opts.Persistence,
		persistPath:    opts.PersistPath,
		hooksManager:   hooks.NewManager(),
		metrics:        metrics.NewCollector(),
		clock:          opts.Clock,
	}
	if s.clock == nil {
		s.clock = clock.New()
	}
	if opts.Persistence != nil {
		for id, rec := range opts.Persistence.Load() {
			s.jobs[id] = job.FromRecord(rec)
		}
	}
	return s
}

func resolveID(id []string) string {
	if len(id) > 0 && id[0] != "" {
		return id[0]
	}
	return uuid.NewString()
}

// ScheduleRecurring registers body to run repeatedly every interval,
// starting immediately, and starts its worker goroutine. If id is
// omitted, a collision-resistant identifier is assigned.
func (s *Scheduler) ScheduleRecurring(body job.Body, interval time.Duration, id ...string) string {
	jobID := resolveID(id)
	j := job.New(jobID, body, interval)
	j.SetNextRun(s.clock.Now())

	s.mu.Lock()
	s.jobs[jobID] = j
	s.mu.Unlock()

	s.startWorker(j)
	return jobID
}

// ScheduleOneOff registers body as a one-shot job, executed only through
// Trigger — never by a recurring worker.
func (s *Scheduler) ScheduleOneOff(body job.Body, id ...string) string {
	jobID := resolveID(id)
	j := job.New(jobID, body, 0)

	s.mu.Lock()
	s.jobs[jobID] = j
	s.mu.Unlock()

	return jobID
}

// TriggerResult is the outcome of a manual, synchronous invocation.
type TriggerResult struct {
	Status   string // "success" or "failed"
	Result   any
	Error    string
	Attempts int
}

// Trigger synchronously invokes id's body once, on the caller's
// goroutine, forwarding args. It neither emits hooks nor updates
// counters — it is an out-of-band invocation channel kept cleanly
// separate from recurring-loop instrumentation. Returns nil if id is
// unknown.
func (s *Scheduler) Trigger(id string, args ...any) *TriggerResult {
	s.mu.RLock()
	j, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	result, err := s.invoke(j, args...)
	if err != nil {
		return &TriggerResult{Status: "failed", Error: err.Error(), Attempts: 1}
	}
	return &TriggerResult{Status: "success", Result: result, Attempts: 1}
}

// AdjustInterval changes id's recurrence interval and immediately
// recomputes its next-run instant so a worker blocked in its wait loop
// observes the change within the Clock's polling granularity (≤100ms).
// Silently ignored if id is unknown.
func (s *Scheduler) AdjustInterval(id string, interval time.Duration) {
	s.mu.RLock()
	j, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return
	}
	j.SetInterval(interval)
	j.SetNextRun(s.clock.Now().Add(interval))
}

// ListJobs returns a metadata snapshot of every job the scheduler knows
// about, in no particular order.
func (s *Scheduler) ListJobs() []job.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]job.Record, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j.ToRecord())
	}
	return out
}

// PersistJobs flushes every job's metadata through the configured
// backend. A no-op when no backend was configured. Best-effort: a
// backend write failure is swallowed (see persistence.Backend).
func (s *Scheduler) PersistJobs() {
	if s.persistBackend == nil {
		return
	}
	s.mu.RLock()
	snapshot := make(map[string]job.Record, len(s.jobs))
	for id, j := range s.jobs {
		snapshot[id] = j.ToRecord()
	}
	s.mu.RUnlock()
	s.persistBackend.Save(snapshot)
}

// RegisterHook registers handler for event (one of "start", "success",
// "failure"), returning ErrInvalidEvent for any other name.
func (s *Scheduler) RegisterHook(event string, handler hooks.Handler) error {
	return s.hooksManager.Register(event, handler)
}

// AttachLogger sets the structured logging sink the scheduler emits
// "Job {id} started"/"Job {id} succeeded"/"Job {id} failed: {error}"
// lines through.
func (s *Scheduler) AttachLogger(sink logger.Sink) {
	s.logMu.Lock()
	defer s.logMu.Unlock()
	s.logger = sink
}

// ExposeMetrics renders the accumulated metrics as line-oriented text.
func (s *Scheduler) ExposeMetrics() string {
	return s.metrics.Render()
}

// AcquireLeader attempts to claim single-leader status. In standalone
// mode (no LeaderLockPath) it always succeeds.
func (s *Scheduler) AcquireLeader() bool {
	return s.leader.Acquire()
}

// RebindAndResume replaces a reconstructed job's inert body with a real
// callable and, for a recurring job that had no worker running (i.e. it
// was reconstructed from persistence, not freshly scheduled), starts its
// worker. Returns false if id is unknown.
func (s *Scheduler) RebindAndResume(id string, body job.Body) bool {
	s.mu.RLock()
	j, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	wasInert := j.IsInert()
	j.Rebind(body)
	if wasInert && j.Recurring() {
		j.SetNextRun(s.clock.Now())
		s.startWorker(j)
	}
	return true
}

// HealthStatus is the scheduler's self-reported health.
type HealthStatus struct {
	Status string // "ok" or "shutting_down"
	Jobs   []string
}

// Health reports whether the scheduler is accepting work and which job
// ids it currently knows about.
func (s *Scheduler) Health() HealthStatus {
	s.mu.RLock()
	ids := make([]string, 0, len(s.jobs))
	for id := range s.jobs {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	status := "ok"
	if s.shuttingDown.Load() {
		status = "shutting_down"
	}
	return HealthStatus{Status: status, Jobs: ids}
}

// GracefulShutdown signals every worker to stop, joins each within
// timeout (zero means unbounded), releases the leader lock if held, and
// flushes metadata once more. Late workers are abandoned — the process
// is presumed to be exiting. Always returns true: shutdown is best-effort
// and idempotent.
func (s *Scheduler) GracefulShutdown(timeout time.Duration) bool {
	s.shuttingDown.Store(true)
	s.shutdownOnce.Do(func() { close(s.shutdownCh) })

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	if timeout <= 0 {
		<-done
	} else {
		select {
		case <-done:
		case <-time.After(timeout):
		}
	}

	s.PersistJobs()
	if s.leader.IsLeader() {
		s.leader.Release()
	}
	return true
}

func (s *Scheduler) startWorker(j *job.Job) {
	s.wg.Add(1)
	go s.runWorker(j)
}

func (s *Scheduler) logInfo(text string) {
	s.logMu.RLock()
	defer s.logMu.RUnlock()
	if s.logger != nil {
		s.logger.Info(text)
	}
}

func (s *Scheduler) logError(text string) {
	s.logMu.RLock()
	defer s.logMu.RUnlock()
	if s.logger != nil {
		s.logger.Error(text)
	}
}

// invoke runs j's body, recovering a panic into an error so a bug in one
// job body only fails that run of that job (the worker records it as a
// failure and keeps looping), never crashing the worker goroutine or the
// rest of the scheduler.
func (s *Scheduler) invoke(j *job.Job, args ...any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", j.ID, r)
		}
	}()
	return j.Run(context.Background(), args...)
}
