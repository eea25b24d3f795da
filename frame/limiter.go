// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package frame

import (
	"context"
	"time"
)

// Limiter holds a presentation loop to a target frame rate when vsync is
// not doing it. The zero value is ready to use.
type Limiter struct {
	next time.Time

	// now is replaced in tests.
	now func() time.Time
}

// Wait sleeps until the next frame slot for fps. It returns early when ctx
// is done. A loop that fell more than one frame behind is re-anchored
// instead of sprinting to catch up.
func (l *Limiter) Wait(ctx context.Context, fps float64) {
	if fps <= 0 {
		return
	}
	now := l.clock()
	period := time.Duration(float64(time.Second) / fps)

	if l.next.IsZero() || now.Sub(l.next) > period {
		l.next = now.Add(period)
		return
	}

	d := l.next.Sub(now)
	l.next = l.next.Add(period)
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// Reset forgets the schedule, e.g. after vsync was re-enabled.
func (l *Limiter) Reset() {
	l.next = time.Time{}
}

func (l *Limiter) clock() time.Time {
	if l.now != nil {
		return l.now()
	}
	return time.Now()
}
