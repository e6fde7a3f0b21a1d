package testutil

import (
	"fmt"
	"sync"
	"time"
)

// Epoch is the instant test clocks start at: 2024-01-15 10:30:00 UTC.
var Epoch = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

// TickingClock returns a time that moves forward by Step after every read,
// so successive backups get distinct archive names. Safe for concurrent use.
type TickingClock struct {
	mu   sync.Mutex
	next time.Time
	Step time.Duration
}

// NewTickingClock starts at start. A zero step makes the clock stand still.
func NewTickingClock(start time.Time, step time.Duration) *TickingClock {
	return &TickingClock{next: start, Step: step}
}

// StillClock returns a clock frozen at Epoch.
func StillClock() *TickingClock {
	return NewTickingClock(Epoch, 0)
}

func (c *TickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.next
	c.next = c.next.Add(c.Step)
	return now
}

// SequentialIDs hands out "run-1", "run-2", ...
type SequentialIDs struct {
	mu sync.Mutex
	n  int
}

func (g *SequentialIDs) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("run-%d", g.n)
}
