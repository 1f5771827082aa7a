package scheduler

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wardenlabs/chronos/internal/clock"
	"github.com/wardenlabs/chronos/internal/hooks"
	"github.com/wardenlabs/chronos/internal/persistence"
	"github.com/wardenlabs/chronos/job"
)

func newFakeScheduler() (*Scheduler, *clock.Fake) {
	fake := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	return New(Options{Clock: fake}), fake
}

func TestScheduleRecurringFiresImmediatelyThenOnInterval(t *testing.T) {
	s, fake := newFakeScheduler()
	var count int32
	s.ScheduleRecurring(job.SyncBody(func(context.Context, ...any) (any, error) {
		atomic.AddInt32(&count, 1)
		return nil, nil
	}), time.Second)

	require.Eventually(t, func() bool { return atomic.LoadInt32(&count) == 1 }, time.Second, time.Millisecond)

	fake.Advance(time.Second)
	require.Eventually(t, func() bool { return atomic.LoadInt32(&count) == 2 }, time.Second, time.Millisecond)

	require.True(t, s.GracefulShutdown(time.Second))
}

func TestRecurringJobFailureIsRecordedInMetrics(t *testing.T) {
	s, _ := newFakeScheduler()
	var attempts int32
	id := s.ScheduleRecurring(job.SyncBody(func(context.Context, ...any) (any, error) {
		atomic.AddInt32(&attempts, 1)
		return nil, require.AnError
	}), time.Hour)

	require.Eventually(t, func() bool { return atomic.LoadInt32(&attempts) == 1 }, time.Second, time.Millisecond)
	require.True(t, s.GracefulShutdown(time.Second))

	rendered := s.ExposeMetrics()
	require.Contains(t, rendered, "job_failures_total{job_id=\""+id+"\"} 1")
}

func TestTriggerOneOffJobReturnsPayload(t *testing.T) {
	s, _ := newFakeScheduler()
	id := s.ScheduleOneOff(job.SyncBody(func(ctx context.Context, args ...any) (any, error) {
		return args[0], nil
	}))

	result := s.Trigger(id, "hello")
	require.NotNil(t, result)
	require.Equal(t, "success", result.Status)
	require.Equal(t, "hello", result.Result)

	require.Nil(t, s.Trigger("does-not-exist"))
}

func TestTriggerDoesNotCountTowardMetricsOrHooks(t *testing.T) {
	s, _ := newFakeScheduler()
	var starts int32
	require.NoError(t, s.RegisterHook(hooks.Start, func(payload ...any) { atomic.AddInt32(&starts, 1) }))

	id := s.ScheduleOneOff(job.SyncBody(func(context.Context, ...any) (any, error) { return nil, nil }))
	s.Trigger(id)

	time.Sleep(10 * time.Millisecond)
	require.Equal(t, int32(0), atomic.LoadInt32(&starts))
	require.Empty(t, s.ExposeMetrics())
}

func TestPersistenceRoundTripAcrossSchedulerRestart(t *testing.T) {
	backend := persistence.NewMemory()
	s1, _ := newFakeScheduler()
	s1.persistBackend = backend

	id := s1.ScheduleRecurring(job.SyncBody(func(context.Context, ...any) (any, error) {
		return nil, nil
	}), time.Hour)

	require.Eventually(t, func() bool {
		for _, rec := range s1.ListJobs() {
			if rec.ID == id && rec.Count >= 1 {
				return true
			}
		}
		return false
	}, time.Second, time.Millisecond)

	s1.PersistJobs()
	require.True(t, s1.GracefulShutdown(time.Second))

	s2 := New(Options{Persistence: backend})
	found := false
	for _, rec := range s2.ListJobs() {
		if rec.ID == id {
			found = true
			require.GreaterOrEqual(t, rec.Count, int64(1))
		}
	}
	require.True(t, found)
}

func TestLeaderLockIsExclusiveAcrossSchedulers(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "leader.lock")
	s1 := New(Options{LeaderLockPath: lockPath})
	s2 := New(Options{LeaderLockPath: lockPath})

	require.True(t, s1.AcquireLeader())
	require.False(t, s2.AcquireLeader())

	require.True(t, s1.GracefulShutdown(time.Second))
	require.True(t, s2.AcquireLeader())
}

func TestHookOrderingAndPanicIsolation(t *testing.T) {
	s, _ := newFakeScheduler()
	var order []string
	require.NoError(t, s.RegisterHook(hooks.Start, func(payload ...any) { panic("boom") }))
	require.NoError(t, s.RegisterHook(hooks.Start, func(payload ...any) { order = append(order, "second") }))

	s.ScheduleRecurring(job.SyncBody(func(context.Context, ...any) (any, error) { return nil, nil }), time.Hour)

	require.Eventually(t, func() bool { return len(order) == 1 }, time.Second, time.Millisecond)
	require.Equal(t, []string{"second"}, order)
	require.True(t, s.GracefulShutdown(time.Second))
}

func TestAdjustIntervalAffectsSubsequentRuns(t *testing.T) {
	s, fake := newFakeScheduler()
	var count int32
	id := s.ScheduleRecurring(job.SyncBody(func(context.Context, ...any) (any, error) {
		atomic.AddInt32(&count, 1)
		return nil, nil
	}), time.Hour)

	require.Eventually(t, func() bool { return atomic.LoadInt32(&count) == 1 }, time.Second, time.Millisecond)

	s.AdjustInterval(id, time.Minute)
	fake.Advance(time.Minute)
	require.Eventually(t, func() bool { return atomic.LoadInt32(&count) == 2 }, time.Second, time.Millisecond)

	require.True(t, s.GracefulShutdown(time.Second))
}

func TestHealthReportsShuttingDown(t *testing.T) {
	s, _ := newFakeScheduler()
	s.ScheduleOneOff(job.SyncBody(func(context.Context, ...any) (any, error) { return nil, nil }))

	before := s.Health()
	require.Equal(t, "ok", before.Status)
	require.Len(t, before.Jobs, 1)

	require.True(t, s.GracefulShutdown(time.Second))
	after := s.Health()
	require.Equal(t, "shutting_down", after.Status)
}

func TestRebindAndResumeStartsWorkerForReconstructedJob(t *testing.T) {
	backend := persistence.NewMemory()
	backend.SaveOne("j1", job.Record{ID: "j1", Interval: floatPtr(3600)})

	s, _ := newFakeScheduler()
	s.persistBackend = backend
	s2 := New(Options{Persistence: backend, Clock: s.clock})

	var ran int32
	require.True(t, s2.RebindAndResume("j1", job.SyncBody(func(context.Context, ...any) (any, error) {
		atomic.AddInt32(&ran, 1)
		return nil, nil
	})))

	require.Eventually(t, func() bool { return atomic.LoadInt32(&ran) == 1 }, time.Second, time.Millisecond)
	require.False(t, s2.RebindAndResume("unknown", job.SyncBody(func(context.Context, ...any) (any, error) { return nil, nil })))

	require.True(t, s2.GracefulShutdown(time.Second))
}

func floatPtr(f float64) *float64 { return &f }
