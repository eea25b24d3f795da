// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package frame synchronises the simulation goroutine with the render
// goroutine.
//
// # Handoff
//
// A Channel holds at most one command buffer. The producer publishes, the
// consumer waits with a bounded timeout, reads the slot and marks it
// consumed; the producer blocks in WaitForIdle until then:
//
//	// simulation goroutine
//	for {
//	    buf := simulate()
//	    ch.WaitForIdle(ctx)
//	    ch.Publish(buf, 0)
//	    pacer.Vsync(ctx)
//	}
//
//	// render goroutine
//	if ch.WaitForFrame(ctx, 0) {
//	    slot, _ := ch.Frame()
//	    draw(slot.Data[slot.Offset:])
//	    ch.MarkConsumed()
//	}
//	present()
//	pacer.SignalFrameComplete()
//
// # Shutdown
//
// Every wait also returns when the shared Lifecycle leaves Running, so
// setting an exit status never leaves either goroutine blocked.
package frame
