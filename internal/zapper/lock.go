package zapper

import "sync/atomic"

// reentrancyLock is a process-wide flag guarding the entry points. External
// calls can hand control to arbitrary code; a second entry while the flag is
// held fails immediately instead of blocking.
type reentrancyLock struct {
	held atomic.Bool
}

func (l *reentrancyLock) acquire() error {
	if !l.held.CompareAndSwap(false, true) {
		return ErrReentrancy
	}
	return nil
}

// release clears the flag; callers defer it so every exit path, including
// failures, releases the lock.
func (l *reentrancyLock) release() {
	l.held.Store(false)
}
