// timer/move_timer.go
package timer

import (
	"sync"
	"time"
)

// MoveTimer is the per-game move countdown. Each Start bumps a generation
// counter that the scheduled tick carries by value, so a stale tick already
// in flight finds its generation outdated and becomes a no-op. Expiry fires
// at most once per Start.
type MoveTimer struct {
	mgr *Manager

	mu         sync.Mutex
	taskID     int64
	generation int64
	remaining  int
	warnAt     int
	warned     bool

	onTick   func(remaining int)
	onWarn   func(remaining int)
	onExpire func()
}

func NewMoveTimer(mgr *Manager, onTick, onWarn func(remaining int), onExpire func()) *MoveTimer {
	return &MoveTimer{
		mgr:      mgr,
		onTick:   onTick,
		onWarn:   onWarn,
		onExpire: onExpire,
	}
}

// Start (re)arms the countdown. Cancel-then-reschedule happens under one
// lock, so there is no window where both an old and a new countdown can act.
func (t *MoveTimer) Start(seconds, warnAt int) {
	t.mu.Lock()
	if t.taskID != 0 {
		t.mgr.Cancel(t.taskID)
	}
	t.remaining = seconds
	t.warnAt = warnAt
	t.warned = false

	// The generation is fixed before the task is scheduled; the closure
	// captures it by value, so an early first tick races nothing.
	t.generation++
	gen := t.generation
	t.taskID = t.mgr.Schedule(time.Second, time.Second, func() {
		t.tick(gen)
	})
	t.mu.Unlock()
}

// Stop cancels the countdown. Safe to call when not running.
func (t *MoveTimer) Stop() {
	t.mu.Lock()
	if t.taskID != 0 {
		t.mgr.Cancel(t.taskID)
		t.taskID = 0
	}
	t.generation++
	t.mu.Unlock()
}

func (t *MoveTimer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

func (t *MoveTimer) tick(gen int64) {
	t.mu.Lock()
	if gen != t.generation {
		// Superseded or stopped while this tick was in flight.
		t.mu.Unlock()
		return
	}
	t.remaining--
	remaining := t.remaining

	var warn, expire bool
	if remaining <= 0 {
		t.mgr.Cancel(t.taskID)
		t.taskID = 0
		t.generation++
		expire = true
	} else if remaining <= t.warnAt && !t.warned {
		t.warned = true
		warn = true
	}
	t.mu.Unlock()

	// Callbacks run outside the lock: they reach back into the game session,
	// which may Stop or Start this timer.
	if expire {
		t.onExpire()
		return
	}
	t.onTick(remaining)
	if warn {
		t.onWarn(remaining)
	}
}
