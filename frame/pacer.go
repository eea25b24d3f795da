// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package frame

import (
	"context"
	"sync"
	"time"
)

// defaultSimulationDuration is reported before the first measurement.
const defaultSimulationDuration = time.Second / 60

// Pacer counts presented frames and lets the simulation goroutine wait for
// the next one ("wait for vsync").
//
// The render goroutine calls SignalFrameComplete once per present and
// MarkInputConsumed when it accepts a command buffer. The simulation
// goroutine calls WaitForFrameAfter or Vsync.
type Pacer struct {
	mu      sync.Mutex
	changed broadcast

	frameIndex  uint64
	inputFrame  uint64
	simDuration time.Duration

	life *Lifecycle
}

// NewPacer creates a pacer bound to life.
func NewPacer(life *Lifecycle) *Pacer {
	return &Pacer{
		changed:     newBroadcast(),
		simDuration: defaultSimulationDuration,
		life:        life,
	}
}

// SignalFrameComplete advances the presented frame index and wakes every
// goroutine waiting for a new frame.
func (p *Pacer) SignalFrameComplete() {
	p.mu.Lock()
	p.frameIndex++
	p.changed.notify()
	p.mu.Unlock()
}

// WaitForFrameAfter blocks until the presented frame index exceeds
// baseline, the lifecycle stops or ctx is done. It returns the parity of
// the frame index at return (0 even, 1 odd).
func (p *Pacer) WaitForFrameAfter(ctx context.Context, baseline uint64) uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	waitLocked(ctx, &p.mu, &p.changed, p.life, nil, func() bool { return p.frameIndex > baseline })
	return uint32(p.frameIndex & 1)
}

// MarkInputConsumed records the current frame index as the frame in which
// the latest command buffer was accepted.
func (p *Pacer) MarkInputConsumed() {
	p.mu.Lock()
	p.inputFrame = p.frameIndex
	p.mu.Unlock()
}

// InputFrame returns the frame index recorded by MarkInputConsumed.
func (p *Pacer) InputFrame() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inputFrame
}

// Vsync waits for the first frame presented after the one that consumed
// the latest command buffer and returns its parity.
func (p *Pacer) Vsync(ctx context.Context) uint32 {
	return p.WaitForFrameAfter(ctx, p.InputFrame())
}

// FrameIndex returns the number of presented frames.
func (p *Pacer) FrameIndex() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frameIndex
}

// RecordSimulationDuration stores how long the simulation spent producing
// the last frame. Diagnostics only.
func (p *Pacer) RecordSimulationDuration(d time.Duration) {
	p.mu.Lock()
	p.simDuration = d
	p.mu.Unlock()
}

// SimulationDuration returns the last recorded simulation duration.
func (p *Pacer) SimulationDuration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.simDuration
}

// Wake wakes all waiters so they re-check their predicates.
func (p *Pacer) Wake() {
	p.mu.Lock()
	p.changed.notify()
	p.mu.Unlock()
}
