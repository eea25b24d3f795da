// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"errors"

	"github.com/gogpu/present/display"
	"github.com/gogpu/present/target"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNotInitialized is returned when operations are called before Init.
	ErrNotInitialized = errors.New("backend: not initialized")
)

// Backend names.
const (
	BackendDesktop  = "desktop"
	BackendTerminal = "terminal"
	BackendHeadless = "headless"
)

// Backend is a windowing layer able to open windows for displays.
//
// Backends must be registered via Register() and are selected via
// Get() or Default(). Exactly one backend is used per process run.
type Backend interface {
	// Name returns the backend identifier (e.g., "desktop", "headless").
	Name() string

	// Init initializes the backend.
	// This should be called before any window is created.
	Init() error

	// Close releases all backend resources.
	// The backend should not be used after Close is called.
	Close()

	// NewWindow opens a window.
	NewWindow(cfg WindowConfig) (Window, error)
}

// WindowConfig describes a window to open.
type WindowConfig struct {
	Title     string
	Geometry  display.Geometry
	Resizable bool
	Vsync     bool
}

// Window is a display.Window that can also be presented to.
type Window interface {
	display.Window

	// PollEvents dispatches pending window events to the bound handlers.
	PollEvents()

	// Surface returns the window framebuffer. Its identity is stable;
	// its size follows the window.
	Surface() *target.RenderTarget

	// Device returns the device offscreen targets are allocated from.
	Device() target.Device

	// Present shows the surface contents.
	Present() error

	// SetVsync changes the swap interval.
	SetVsync(enabled bool)

	// ShouldClose reports whether the user asked to close the window.
	ShouldClose() bool
}

// Driver is implemented by windows whose toolkit owns the main loop.
// Drive calls step once per frame on the toolkit's goroutine until step
// returns an error or the window closes. A step returning ErrStop ends
// the loop without error.
type Driver interface {
	Drive(step func() error) error
}

// ErrStop ends a Drive loop normally.
var ErrStop = errors.New("backend: stop")
