// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package frame

import (
	"context"
	"sync"
	"time"
)

// broadcast is a condition variable built on channel close. Every call to
// notify wakes all goroutines that obtained the channel from wait before it.
// Both methods must be called with the owning mutex held.
type broadcast struct {
	ch chan struct{}
}

func newBroadcast() broadcast {
	return broadcast{ch: make(chan struct{})}
}

func (b *broadcast) wait() <-chan struct{} {
	return b.ch
}

func (b *broadcast) notify() {
	close(b.ch)
	b.ch = make(chan struct{})
}

// waitLocked blocks until pred holds, the lifecycle stops, ctx is done or
// expire fires. mu must be held on entry and is held on return.
//
// pred is evaluated under mu after every wake-up; a wake-up alone never
// implies the state changed. A nil expire channel never fires.
func waitLocked(
	ctx context.Context,
	mu *sync.Mutex,
	b *broadcast,
	life *Lifecycle,
	expire <-chan time.Time,
	pred func() bool,
) bool {
	for !pred() {
		if life.Stopped() || ctx.Err() != nil {
			return false
		}
		wake := b.wait()
		mu.Unlock()
		select {
		case <-wake:
		case <-life.Done():
		case <-ctx.Done():
		case <-expire:
			mu.Lock()
			return pred()
		}
		mu.Lock()
	}
	return true
}
