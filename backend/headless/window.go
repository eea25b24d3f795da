// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package headless

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/present/backend"
	"github.com/gogpu/present/display"
	"github.com/gogpu/present/frame"
	"github.com/gogpu/present/target"
)

type eventKind int

const (
	eventPos eventKind = iota
	eventSize
	eventIconify
	eventClose
)

type event struct {
	kind eventKind
	a, b int
	flag bool
}

// Window is a virtual window. Event injection methods (Move, Resize,
// Iconify, RequestClose) are safe to call from any goroutine; the events
// are delivered by the next PollEvents.
type Window struct {
	backend *Backend

	mu        sync.Mutex
	events    []event
	geometry  display.Geometry
	mode      display.Mode
	monitor   int
	decorated bool
	resizable bool
	vsync     bool
	minimized bool
	closeReq  bool
	closed    bool
	title     string
	presents  int
	presented *image.RGBA

	// Render goroutine only.
	handlers  display.Handlers
	surface   *target.RenderTarget
	limiter   frame.Limiter
	onPresent func(img *image.RGBA)
}

// Monitors returns the backend's virtual monitors.
func (w *Window) Monitors() []display.Monitor {
	return w.backend.Monitors()
}

// SetWindowed places the window at g with decorations.
func (w *Window) SetWindowed(g display.Geometry) error {
	w.mu.Lock()
	w.mode = display.Windowed
	w.decorated = true
	w.mu.Unlock()
	return w.place(g)
}

// SetFullscreen covers monitor at mode.
func (w *Window) SetFullscreen(monitor int, mode display.VideoMode) error {
	ms := w.Monitors()
	if monitor < 0 || monitor >= len(ms) {
		return fmt.Errorf("headless: no monitor %d", monitor)
	}
	w.mu.Lock()
	w.mode = display.Fullscreen
	w.monitor = monitor
	w.decorated = false
	w.mu.Unlock()
	o := ms[monitor].Origin
	return w.place(display.Geometry{X: o.X, Y: o.Y, Width: mode.Width, Height: mode.Height})
}

// SetBorderless places an undecorated window at g.
func (w *Window) SetBorderless(monitor int, g display.Geometry) error {
	w.mu.Lock()
	w.mode = display.Borderless
	w.monitor = monitor
	w.decorated = false
	w.mu.Unlock()
	return w.place(g)
}

// place moves and resizes the window and queues the matching events.
func (w *Window) place(g display.Geometry) error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("headless: invalid window size %dx%d", g.Width, g.Height)
	}
	w.mu.Lock()
	old := w.geometry
	w.geometry = g
	if old.X != g.X || old.Y != g.Y {
		w.events = append(w.events, event{kind: eventPos, a: g.X, b: g.Y})
	}
	resized := old.Width != g.Width || old.Height != g.Height
	if resized {
		w.events = append(w.events, event{kind: eventSize, a: g.Width, b: g.Height})
	}
	w.mu.Unlock()
	if resized {
		w.resizeSurface(g.Width, g.Height)
	}
	return nil
}

func (w *Window) resizeSurface(width, height int) {
	if w.surface.Width == width && w.surface.Height == height {
		return
	}
	w.surface.Replace(image.NewRGBA(image.Rect(0, 0, width, height)))
}

// SetSize resizes the window.
func (w *Window) SetSize(width, height int) error {
	w.mu.Lock()
	g := w.geometry
	w.mu.Unlock()
	g.Width, g.Height = width, height
	return w.place(g)
}

// SetResizable toggles user resizing.
func (w *Window) SetResizable(resizable bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resizable = resizable
}

// SetTitle changes the title.
func (w *Window) SetTitle(title string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.title = title
}

// Bind installs the handlers.
func (w *Window) Bind(h display.Handlers) {
	w.handlers = h
}

// Close marks the window closed.
func (w *Window) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

// PollEvents delivers queued events to the bound handlers.
func (w *Window) PollEvents() {
	w.mu.Lock()
	events := w.events
	w.events = nil
	w.mu.Unlock()

	for _, e := range events {
		switch e.kind {
		case eventPos:
			if w.handlers.Pos != nil {
				w.handlers.Pos(e.a, e.b)
			}
		case eventSize:
			w.resizeSurface(e.a, e.b)
			if w.handlers.Size != nil {
				w.handlers.Size(e.a, e.b)
			}
		case eventIconify:
			if w.handlers.Iconify != nil {
				w.handlers.Iconify(e.flag)
			}
		case eventClose:
			w.mu.Lock()
			w.closeReq = true
			w.mu.Unlock()
		}
	}
}

// Surface returns the window framebuffer.
func (w *Window) Surface() *target.RenderTarget { return w.surface }

// Device returns the backend's offscreen device.
func (w *Window) Device() target.Device { return w.backend.Device() }

// Present snapshots the framebuffer. With vsync on it also waits for the
// refresh interval of the window's monitor.
func (w *Window) Present() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return fmt.Errorf("headless: present on closed window")
	}
	vsync := w.vsync
	src := w.surface.Image()
	if w.presented == nil || w.presented.Bounds() != src.Bounds() {
		w.presented = image.NewRGBA(src.Bounds())
	}
	copy(w.presented.Pix, src.Pix)
	w.presents++
	snapshot := w.presented
	w.mu.Unlock()

	if w.onPresent != nil {
		w.onPresent(snapshot)
	}
	if vsync {
		w.limiter.Wait(context.Background(), float64(w.refreshRate()))
	}
	return nil
}

func (w *Window) refreshRate() int {
	ms := w.Monitors()
	w.mu.Lock()
	idx := w.monitor
	w.mu.Unlock()
	if idx < 0 || idx >= len(ms) || ms[idx].Current.RefreshRate <= 0 {
		return 60
	}
	return ms[idx].Current.RefreshRate
}

// SetVsync enables refresh-rate pacing in Present.
func (w *Window) SetVsync(enabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if enabled && !w.vsync {
		w.limiter.Reset()
	}
	w.vsync = enabled
}

// ShouldClose reports whether RequestClose was delivered.
func (w *Window) ShouldClose() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeReq
}

// Move simulates the user dragging the window.
func (w *Window) Move(x, y int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.geometry.X, w.geometry.Y = x, y
	w.events = append(w.events, event{kind: eventPos, a: x, b: y})
}

// Resize simulates the user resizing the window.
func (w *Window) Resize(width, height int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.geometry.Width, w.geometry.Height = width, height
	w.events = append(w.events, event{kind: eventSize, a: width, b: height})
}

// Iconify simulates minimizing or restoring the window.
func (w *Window) Iconify(minimized bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.minimized = minimized
	w.events = append(w.events, event{kind: eventIconify, flag: minimized})
}

// RequestClose simulates the user closing the window.
func (w *Window) RequestClose() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.events = append(w.events, event{kind: eventClose})
}

// State is a snapshot of the window for inspection.
type State struct {
	Geometry  display.Geometry
	Mode      display.Mode
	Monitor   int
	Decorated bool
	Resizable bool
	Vsync     bool
	Minimized bool
	Closed    bool
	Title     string
	Presents  int
}

// State returns a snapshot of the window.
func (w *Window) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return State{
		Geometry:  w.geometry,
		Mode:      w.mode,
		Monitor:   w.monitor,
		Decorated: w.decorated,
		Resizable: w.resizable,
		Vsync:     w.vsync,
		Minimized: w.minimized,
		Closed:    w.closed,
		Title:     w.title,
		Presents:  w.presents,
	}
}

// Presented returns a copy of the last presented frame, or nil.
func (w *Window) Presented() *image.RGBA {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.presented == nil {
		return nil
	}
	out := image.NewRGBA(w.presented.Bounds())
	copy(out.Pix, w.presented.Pix)
	return out
}

var _ backend.Window = (*Window)(nil)
