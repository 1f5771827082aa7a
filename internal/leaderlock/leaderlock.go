// Package leaderlock implements single-leader coordination across
// cooperating processes via an exclusive-create file. There is no liveness
// guarantee against a crashed holder; a stale lock file requires operator
// intervention — an accepted, documented limitation, not a bug.
package leaderlock

import "os"

// Lock guards a single leader-lock file path. The zero value is a
// standalone-mode lock: with no Path set, Acquire always succeeds.
type Lock struct {
	Path     string
	isLeader bool
}

// New returns a Lock for path. An empty path means standalone mode:
// Acquire always returns true and nothing is written to disk.
func New(path string) *Lock {
	return &Lock{Path: path}
}

// Acquire attempts to claim leadership. In standalone mode (no path) it
// unconditionally succeeds. Otherwise it tries to create Path with
// exclusive-create semantics: success means this instance is now leader;
// collision with an existing file means another instance holds it.
// Calling Acquire again while already leader is a no-op success
// (reentrant: once held, held).
func (l *Lock) Acquire() bool {
	if l.Path == "" {
		l.isLeader = true
		return true
	}
	if l.isLeader {
		return true
	}
	f, err := os.OpenFile(l.Path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return false
	}
	_ = f.Close()
	l.isLeader = true
	return true
}

// IsLeader reports whether this instance currently holds leadership.
func (l *Lock) IsLeader() bool {
	return l.isLeader
}

// Release removes the lock file if and only if this instance is the
// leader. A missing file at release time is tolerated.
func (l *Lock) Release() {
	if !l.isLeader || l.Path == "" {
		l.isLeader = false
		return
	}
	_ = os.Remove(l.Path) // best-effort; a missing file is fine
	l.isLeader = false
}
