// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package present is the presentation layer of a game runtime.
//
// # Overview
//
// A simulation goroutine produces one opaque draw-command buffer per frame
// and hands it to the render goroutine through a single-slot channel. The
// render goroutine owns the window: it waits for the buffer, picks the
// render target, lets an Interpreter draw the buffer, presents the window
// and applies deferred display mode changes.
//
// # Quick Start
//
//	import (
//		"github.com/gogpu/present"
//		_ "github.com/gogpu/present/backend/headless"
//	)
//
//	rt := present.New(present.WithBackend("headless"), present.WithInterpreter(myInterp))
//	if err := rt.Init(); err != nil {
//		log.Fatal(err)
//	}
//	defer rt.Exit()
//
//	err := rt.Run(ctx, func(ctx context.Context) error {
//		for rt.Status() == frame.Running {
//			rt.SyncPath(ctx)
//			rt.SendChain(buildFrame(), 0)
//			rt.Vsync(ctx)
//		}
//		return nil
//	})
//
// # Producer API
//
// The simulation goroutine calls SyncPath before building a frame (it
// blocks while the previous frame is still pending), SendChain to publish
// it, and Vsync to wait for the next presented frame. All three return
// promptly once the runtime stops.
//
// # Architecture
//
// The module is organized into:
//   - present: Runtime, Settings, the presentation loop, screenshots, overlay
//   - frame: the frame channel, frame pacer and exit status
//   - target: render targets, devices and the target resolver
//   - display: the display mode state machine and display registry
//   - backend: windowing backends (desktop, terminal, headless)
//
// # Logging
//
// present produces no log output by default. See SetLogger.
package present
