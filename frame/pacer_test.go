// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package frame

import (
	"context"
	"testing"
	"time"
)

func TestPacerWaitForFrameAfter(t *testing.T) {
	p := NewPacer(NewLifecycle())
	parity := make(chan uint32, 1)
	go func() {
		parity <- p.WaitForFrameAfter(context.Background(), 0)
	}()

	select {
	case <-parity:
		t.Fatal("WaitForFrameAfter returned before any frame")
	case <-time.After(20 * time.Millisecond):
	}

	p.SignalFrameComplete()
	select {
	case got := <-parity:
		if got != 1 {
			t.Errorf("parity = %d, want 1", got)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("WaitForFrameAfter did not wake")
	}
}

func TestPacerAlreadyPastBaseline(t *testing.T) {
	p := NewPacer(NewLifecycle())
	p.SignalFrameComplete()
	p.SignalFrameComplete()

	if got := p.WaitForFrameAfter(context.Background(), 1); got != 0 {
		t.Errorf("parity = %d, want 0", got)
	}
	if p.FrameIndex() != 2 {
		t.Errorf("FrameIndex() = %d, want 2", p.FrameIndex())
	}
}

func TestPacerVsyncUsesInputFrame(t *testing.T) {
	p := NewPacer(NewLifecycle())
	p.SignalFrameComplete()
	p.SignalFrameComplete()
	p.MarkInputConsumed()
	if p.InputFrame() != 2 {
		t.Fatalf("InputFrame() = %d, want 2", p.InputFrame())
	}

	done := make(chan uint32, 1)
	go func() { done <- p.Vsync(context.Background()) }()

	select {
	case <-done:
		t.Fatal("Vsync returned before a new frame")
	case <-time.After(20 * time.Millisecond):
	}
	p.SignalFrameComplete()
	if got := <-done; got != 1 {
		t.Errorf("parity = %d, want 1", got)
	}
}

func TestPacerSimulationDuration(t *testing.T) {
	p := NewPacer(NewLifecycle())
	if p.SimulationDuration() != time.Second/60 {
		t.Errorf("default = %v, want 1/60 s", p.SimulationDuration())
	}
	p.RecordSimulationDuration(5 * time.Millisecond)
	if p.SimulationDuration() != 5*time.Millisecond {
		t.Errorf("SimulationDuration() = %v, want 5ms", p.SimulationDuration())
	}
}

// Both goroutines blocked: the producer in WaitForFrameAfter, the consumer
// in WaitForFrame. Setting the exit status must release both within one
// bounded wait cycle.
func TestShutdownLiveness(t *testing.T) {
	life := NewLifecycle()
	ch := NewChannel(life)
	p := NewPacer(life)
	ctx := context.Background()

	producer := make(chan struct{})
	consumer := make(chan bool, 1)
	go func() {
		p.WaitForFrameAfter(ctx, p.FrameIndex())
		close(producer)
	}()
	go func() {
		consumer <- ch.WaitForFrame(ctx, time.Minute)
	}()

	time.Sleep(10 * time.Millisecond)
	start := time.Now()
	life.Set(Exit)

	deadline := time.After(100 * time.Millisecond)
	select {
	case <-producer:
	case <-deadline:
		t.Fatal("producer still blocked after exit")
	}
	select {
	case got := <-consumer:
		if got {
			t.Error("WaitForFrame = true with nothing published")
		}
	case <-deadline:
		t.Fatal("consumer still blocked after exit")
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("shutdown took %v", elapsed)
	}
}

func TestLifecycle(t *testing.T) {
	life := NewLifecycle()
	if life.Stopped() || life.Status() != Running {
		t.Fatal("new lifecycle not running")
	}

	life.Set(RestartRuntime)
	select {
	case <-life.Done():
	default:
		t.Fatal("Done not closed after RestartRuntime")
	}
	if life.Status() != RestartRuntime {
		t.Errorf("Status() = %v, want restart-runtime", life.Status())
	}

	life.Set(Running)
	if !life.Stopped() {
		t.Error("stopped lifecycle returned to running")
	}
	life.Set(Exit)
	if life.Status() != Exit {
		t.Errorf("Status() = %v, want exit", life.Status())
	}
}

func TestLimiter(t *testing.T) {
	now := time.Unix(0, 0)
	l := &Limiter{now: func() time.Time { return now }}
	ctx := context.Background()

	// First call only anchors the schedule.
	start := time.Now()
	l.Wait(ctx, 60)
	if time.Since(start) > 10*time.Millisecond {
		t.Error("first Wait slept")
	}

	// Fell behind by several frames: re-anchor without sleeping.
	now = now.Add(time.Second)
	start = time.Now()
	l.Wait(ctx, 60)
	if time.Since(start) > 10*time.Millisecond {
		t.Error("Wait slept after falling behind")
	}

	// On schedule: sleeps roughly one period.
	start = time.Now()
	l.Wait(ctx, 100)
	if elapsed := time.Since(start); elapsed < 5*time.Millisecond {
		t.Errorf("Wait slept %v, want about 16ms", elapsed)
	}

	l.Reset()
	start = time.Now()
	l.Wait(ctx, 60)
	if time.Since(start) > 10*time.Millisecond {
		t.Error("Wait slept after Reset")
	}
}
