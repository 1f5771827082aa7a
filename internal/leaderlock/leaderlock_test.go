package leaderlock

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStandaloneModeAlwaysLeader(t *testing.T) {
	l := New("")
	require.True(t, l.Acquire())
	require.True(t, l.IsLeader())
}

func TestAcquireIsExclusiveAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leader.lock")

	l1 := New(path)
	l2 := New(path)

	require.True(t, l1.Acquire())
	require.False(t, l2.Acquire())
}

func TestAcquireIsReentrantOnceHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leader.lock")
	l := New(path)
	require.True(t, l.Acquire())
	require.True(t, l.Acquire())
}

func TestReleaseAllowsNextAcquire(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leader.lock")
	l1 := New(path)
	l2 := New(path)

	require.True(t, l1.Acquire())
	require.False(t, l2.Acquire())

	l1.Release()
	require.True(t, l2.Acquire())
}

func TestReleaseByNonLeaderIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leader.lock")
	l1 := New(path)
	l2 := New(path)

	require.True(t, l1.Acquire())
	require.False(t, l2.Acquire())

	l2.Release() // not the leader; must not remove l1's lock
	require.False(t, New(path).Acquire())
}

func TestReleaseToleratesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leader.lock")
	l := New(path)
	require.True(t, l.Acquire())

	require.NoError(t, os.Remove(path))
	require.NotPanics(t, l.Release)
}
