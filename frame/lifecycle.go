// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package frame

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/present/internal/logging"
)

// Status is the process-wide exit status checked by every wait predicate.
type Status int32

// Exit status values.
const (
	// Running is the normal state. All waits block as usual.
	Running Status = iota
	// RestartRuntime asks the host to tear down and rebuild the runtime.
	RestartRuntime
	// Exit asks the process to terminate.
	Exit
	// RestartInDebug asks the host to restart with debugging enabled.
	RestartInDebug
)

// String returns a lower-case name for the status.
func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case RestartRuntime:
		return "restart-runtime"
	case Exit:
		return "exit"
	case RestartInDebug:
		return "restart-in-debug"
	default:
		return fmt.Sprintf("status(%d)", int32(s))
	}
}

// Lifecycle carries the exit status shared by the simulation and render
// goroutines. The first transition away from Running closes Done, which
// unblocks every Channel and Pacer wait bound to this lifecycle.
//
// A stopped lifecycle never returns to Running; a restarted runtime builds
// a new one.
type Lifecycle struct {
	status atomic.Int32
	once   sync.Once
	done   chan struct{}
}

// NewLifecycle returns a lifecycle in the Running state.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{done: make(chan struct{})}
}

// Status returns the current exit status.
func (l *Lifecycle) Status() Status {
	return Status(l.status.Load())
}

// Stopped reports whether the status has left Running.
func (l *Lifecycle) Stopped() bool {
	return l.Status() != Running
}

// Done returns a channel closed once the status leaves Running.
func (l *Lifecycle) Done() <-chan struct{} {
	return l.done
}

// Set stores the exit status. Any value other than Running wakes all
// waiters. Setting Running on a stopped lifecycle is ignored.
func (l *Lifecycle) Set(s Status) {
	if s == Running {
		if l.Stopped() {
			logging.Logger().Warn("frame: ignoring transition back to running", "status", l.Status())
		}
		return
	}
	l.status.Store(int32(s))
	l.once.Do(func() {
		logging.Logger().Info("frame: lifecycle stopping", "status", s)
		close(l.done)
	})
}
