package guard

import (
	"sync/atomic"

	"lever/core"
)

// Guard single in-progress flag for a top-level engine entry point. Nested
// entry during the same action is rejected; callers pair Enter with a
// deferred Exit.
type Guard struct {
	busy int32
}

// Enter rejects if an action is already in flight
func (g *Guard) Enter() error {
	if !atomic.CompareAndSwapInt32(&g.busy, 0, 1) {
		return core.ErrReentered
	}

	return nil
}

// Exit clears the in-progress flag
func (g *Guard) Exit() {
	atomic.StoreInt32(&g.busy, 0)
}
