// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package desktop provides an OS window backend built on Ebitengine.
//
// Ebitengine owns the main loop, so the window implements backend.Driver
// and the presentation loop must be driven from the main goroutine:
//
//	win.(backend.Driver).Drive(step)
//
// Only one window per process is supported. Monitor geometry is reported
// relative to the monitor the window is on, so every monitor has a zero
// origin. Refresh rates are not exposed by Ebitengine and are reported as
// DefaultRefreshRate.
//
// The backend registers itself as "desktop" on import:
//
//	import _ "github.com/gogpu/present/backend/desktop"
package desktop

import (
	"errors"
	"fmt"
	"image"
	"os"
	"runtime"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gogpu/present/backend"
	"github.com/gogpu/present/display"
	"github.com/gogpu/present/internal/logging"
	"github.com/gogpu/present/target"
)

// DefaultRefreshRate is reported for every monitor.
const DefaultRefreshRate = 60

// ErrWindowOpen is returned when a second window is requested.
var ErrWindowOpen = errors.New("desktop: only one window is supported")

func init() {
	backend.Register(backend.BackendDesktop, func() backend.Backend {
		return New()
	})
}

// Option configures a Backend.
type Option func(*Backend)

// WithDevice supplies the device for offscreen targets. The caller keeps
// ownership.
func WithDevice(d target.Device) Option {
	return func(b *Backend) {
		b.device = d
	}
}

// Backend is the Ebitengine windowing backend.
type Backend struct {
	mu          sync.Mutex
	device      target.Device
	initialized bool
	window      *Window
}

// New creates a desktop backend.
func New(opts ...Option) *Backend {
	b := &Backend{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns "desktop".
func (b *Backend) Name() string { return backend.BackendDesktop }

// Init prepares the offscreen device.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.initialized {
		return nil
	}
	if !hasDisplay() {
		return fmt.Errorf("desktop: %w: no display server", backend.ErrBackendNotAvailable)
	}
	if b.device == nil {
		b.device = target.NewSoftwareDevice()
	}
	b.initialized = true
	logging.Logger().Info("desktop: backend initialized")
	return nil
}

// Close closes the window.
func (b *Backend) Close() {
	b.mu.Lock()
	w := b.window
	b.window = nil
	b.initialized = false
	b.mu.Unlock()
	if w != nil {
		_ = w.Close()
	}
}

// NewWindow configures the process window. It becomes visible when the
// window is driven.
func (b *Backend) NewWindow(cfg backend.WindowConfig) (backend.Window, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return nil, backend.ErrNotInitialized
	}
	if b.window != nil {
		return nil, ErrWindowOpen
	}
	g := cfg.Geometry
	if g.Width <= 0 || g.Height <= 0 {
		g.Width, g.Height = display.DefaultGeometry.Width, display.DefaultGeometry.Height
	}

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(g.Width, g.Height)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetVsyncEnabled(cfg.Vsync)
	ebiten.SetTPS(ebiten.SyncWithFPS)
	w := &Window{
		device:   b.device,
		geometry: g,
		surface:  target.NewWindowSurface(image.NewRGBA(image.Rect(0, 0, g.Width, g.Height))),
	}
	w.SetResizable(cfg.Resizable)
	b.window = w
	return w, nil
}

// hasDisplay reports whether a window can be opened. On X11 and Wayland
// systems it requires a display server address.
func hasDisplay() bool {
	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly":
		return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
	}
	return true
}

// monitors lists the connected monitors in Ebitengine order, primary
// first.
func monitors() []display.Monitor {
	list := ebiten.AppendMonitors(nil)
	out := make([]display.Monitor, 0, len(list))
	for _, m := range list {
		out = append(out, toMonitor(m))
	}
	return out
}

func toMonitor(m *ebiten.MonitorType) display.Monitor {
	w, h := m.Size()
	mode := display.VideoMode{Width: w, Height: h, RefreshRate: DefaultRefreshRate}
	return display.Monitor{
		Name:     m.Name(),
		WorkArea: image.Rect(0, 0, w, h),
		Current:  mode,
		Modes:    []display.VideoMode{mode},
	}
}

func monitorHandle(idx int) (*ebiten.MonitorType, bool) {
	list := ebiten.AppendMonitors(nil)
	if idx < 0 || idx >= len(list) {
		return nil, false
	}
	return list[idx], true
}
