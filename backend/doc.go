// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package backend provides a pluggable windowing layer abstraction.
//
// A backend opens the window a display presents into. It owns the window
// framebuffer, the device offscreen targets are allocated from, and the
// window event source.
//
// # Backend Registration
//
// Backends are registered via init() functions and selected at runtime.
// Importing a backend package registers it:
//
//	import _ "github.com/gogpu/present/backend/headless"
//
// # Backend Selection
//
// Use Open with a name to request a specific backend, or with an empty
// name to take the first one that initializes:
//
//	b, err := backend.Open("")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer b.Close()
//
// # Available Backends
//
//   - "desktop": OS window via Ebitengine (backend/desktop)
//   - "terminal": half-block rendering via tcell (backend/terminal)
//   - "headless": virtual windows and monitors (backend/headless)
//
// Windows whose toolkit owns the main loop implement Driver.
package backend
