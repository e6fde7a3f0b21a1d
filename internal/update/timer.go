package update

import (
	"sync"
	"time"
)

// ExitTimer holds at most one pending auto-exit. Arming it stops whatever was
// pending, so a timer from a previous state can never fire late.
type ExitTimer struct {
	mu    sync.Mutex
	timer *time.Timer
}

// Arm schedules fn after d, replacing any pending timer.
func (t *ExitTimer) Arm(d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(d, fn)
}

// Stop cancels the pending timer, if any.
func (t *ExitTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
