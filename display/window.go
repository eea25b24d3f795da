// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package display

// Handlers are the window callbacks bound to a Display. Backends invoke
// them synchronously from their event polling, on the render goroutine.
type Handlers struct {
	// Pos reports the window's new position.
	Pos func(x, y int)

	// Size reports the window's new size.
	Size func(width, height int)

	// Iconify reports entering or leaving the minimized state.
	Iconify func(minimized bool)
}

// Window is the windowing-layer capability a Display drives.
type Window interface {
	// Monitors returns the connected monitors; the first is the primary.
	Monitors() []Monitor

	// SetWindowed makes the window decorated and places it at g.
	SetWindowed(g Geometry) error

	// SetFullscreen gives the monitor to the window at mode.
	SetFullscreen(monitor int, mode VideoMode) error

	// SetBorderless makes the window undecorated and places it at g
	// without exclusive control of the monitor.
	SetBorderless(monitor int, g Geometry) error

	// SetSize resizes the window.
	SetSize(width, height int) error

	// SetResizable toggles user resizing.
	SetResizable(resizable bool)

	// SetTitle changes the window title.
	SetTitle(title string)

	// Bind installs the handler set. Binding a zero Handlers detaches.
	Bind(h Handlers)

	// Close destroys the window.
	Close() error
}
