// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package frame

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gogpu/present/internal/logging"
)

// DefaultWaitTimeout bounds WaitForFrame so the render loop keeps servicing
// window events when the producer stalls.
const DefaultWaitTimeout = 50 * time.Millisecond

// Protocol violations. They are logged and returned; the slot is untouched.
var (
	// ErrPending is returned by Publish when the previous frame has not
	// been consumed yet.
	ErrPending = errors.New("frame: publish while previous frame is pending")

	// ErrEmpty is returned by MarkConsumed when nothing was published.
	ErrEmpty = errors.New("frame: consume with no pending frame")

	// ErrBadOffset is returned by Publish when the start offset lies
	// outside the buffer.
	ErrBadOffset = errors.New("frame: offset outside buffer")
)

// Slot is the consumer's read-only view of the published frame.
// Data is owned by the Channel and is valid until MarkConsumed.
type Slot struct {
	// Data is the copied command buffer.
	Data []byte

	// Offset is where the command stream starts inside Data.
	Offset uint32

	// Index is the number of frames consumed before this one.
	Index uint64
}

// ChannelOption configures a Channel during creation.
type ChannelOption func(*channelOptions)

type channelOptions struct {
	timeout  time.Duration
	capacity int
	dump     io.Writer
}

// WithWaitTimeout overrides DefaultWaitTimeout.
func WithWaitTimeout(d time.Duration) ChannelOption {
	return func(o *channelOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithCapacity preallocates the slot buffer.
func WithCapacity(n int) ChannelOption {
	return func(o *channelOptions) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithDump mirrors every published frame to w. Records are written on the
// producer goroutine from the channel's copy; see ReadDump for the format.
func WithDump(w io.Writer) ChannelOption {
	return func(o *channelOptions) {
		o.dump = w
	}
}

// Channel is a single-slot handoff of one command buffer from the
// simulation goroutine to the render goroutine.
//
// At most one unread frame exists at a time. A second Publish before
// MarkConsumed is rejected, never queued: the renderer only ever wants the
// latest frame, and the producer can run at most one frame ahead.
//
// Producer methods: Publish, WaitForIdle.
// Consumer methods: WaitForFrame, Frame, MarkConsumed.
type Channel struct {
	mu      sync.Mutex
	changed broadcast

	data    []byte
	offset  uint32
	index   uint64
	pending bool

	life    *Lifecycle
	timeout time.Duration
	dump    *dumper
}

// NewChannel creates a channel bound to life. Stopping life unblocks every
// wait on the channel.
func NewChannel(life *Lifecycle, opts ...ChannelOption) *Channel {
	o := channelOptions{timeout: DefaultWaitTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	c := &Channel{
		changed: newBroadcast(),
		data:    make([]byte, 0, o.capacity),
		life:    life,
		timeout: o.timeout,
	}
	if o.dump != nil {
		c.dump = &dumper{w: o.dump}
	}
	return c
}

// Publish copies data into the slot and wakes the consumer. offset is the
// start of the command stream within data.
//
// Publishing while a frame is pending is a producer bug: it is logged and
// ErrPending is returned without touching the slot or the frame index.
func (c *Channel) Publish(data []byte, offset uint32) error {
	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		logging.Logger().Error("frame: publish called while the renderer has pending data; was it called twice this frame?")
		return ErrPending
	}
	if int(offset) > len(data) {
		c.mu.Unlock()
		logging.Logger().Error("frame: publish offset outside buffer", "offset", offset, "length", len(data))
		return fmt.Errorf("%w: offset %d, length %d", ErrBadOffset, offset, len(data))
	}

	if cap(c.data) < len(data) {
		logging.Logger().Debug("frame: growing slot buffer", "from", cap(c.data), "to", len(data))
		c.data = make([]byte, len(data))
	}
	c.data = c.data[:len(data)]
	copy(c.data, data)
	c.offset = offset
	c.pending = true

	index := c.index
	snapshot := c.data
	c.changed.notify()
	c.mu.Unlock()

	// Only the producer writes the slot and it is inside Publish, so the
	// snapshot stays stable while it is dumped.
	if c.dump != nil {
		if err := c.dump.write(index, offset, snapshot); err != nil {
			logging.Logger().Warn("frame: dump failed", "error", err)
		}
	}
	return nil
}

// WaitForFrame blocks until a frame is pending, the timeout elapses, the
// lifecycle stops or ctx is done. It reports whether a frame is available.
// A non-positive timeout uses the channel's configured timeout.
func (c *Channel) WaitForFrame(ctx context.Context, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = c.timeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	return waitLocked(ctx, &c.mu, &c.changed, c.life, timer.C, func() bool { return c.pending })
}

// Frame returns the pending frame. ok is false when nothing is pending.
func (c *Channel) Frame() (s Slot, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.pending {
		return Slot{}, false
	}
	return Slot{Data: c.data, Offset: c.offset, Index: c.index}, true
}

// MarkConsumed releases the slot, advances the frame index and wakes a
// producer blocked in WaitForIdle. Calling it with nothing pending is a
// consumer bug: it is logged and ErrEmpty is returned.
func (c *Channel) MarkConsumed() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.pending {
		logging.Logger().Error("frame: mark consumed with no pending frame")
		return ErrEmpty
	}
	c.pending = false
	c.index++
	c.changed.notify()
	return nil
}

// WaitForIdle blocks until the consumer has released the slot, the
// lifecycle stops or ctx is done. It reports whether the slot is free.
func (c *Channel) WaitForIdle(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return waitLocked(ctx, &c.mu, &c.changed, c.life, nil, func() bool { return !c.pending })
}

// Pending reports whether a published frame awaits consumption.
func (c *Channel) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Index returns the number of frames consumed so far.
func (c *Channel) Index() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Wake wakes all waiters so they re-check their predicates.
func (c *Channel) Wake() {
	c.mu.Lock()
	c.changed.notify()
	c.mu.Unlock()
}
