// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package headless provides a windowing backend without a screen.
//
// Windows are virtual: they have a geometry, a CPU framebuffer and a set
// of virtual monitors that tests and tools can reconfigure at run time to
// simulate hot-plugging and video mode changes. Presented frames are kept
// and can be inspected or handed to a callback.
//
// The backend registers itself as "headless" on import:
//
//	import _ "github.com/gogpu/present/backend/headless"
package headless

import (
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/present/backend"
	"github.com/gogpu/present/display"
	"github.com/gogpu/present/internal/logging"
	"github.com/gogpu/present/target"
)

func init() {
	backend.Register(backend.BackendHeadless, func() backend.Backend {
		return New()
	})
}

// DefaultMonitor is the single monitor of a new backend.
var DefaultMonitor = display.Monitor{
	Name:     "virtual-0",
	WorkArea: image.Rect(0, 0, 1920, 1080),
	Current:  display.VideoMode{Width: 1920, Height: 1080, RefreshRate: 60},
	Modes: []display.VideoMode{
		{Width: 640, Height: 480, RefreshRate: 60},
		{Width: 1280, Height: 720, RefreshRate: 60},
		{Width: 1920, Height: 1080, RefreshRate: 60},
	},
}

// Option configures a Backend.
type Option func(*Backend)

// WithMonitors replaces the virtual monitors.
func WithMonitors(monitors ...display.Monitor) Option {
	return func(b *Backend) {
		b.monitors = append([]display.Monitor(nil), monitors...)
	}
}

// WithGPU allocates offscreen targets on a HAL device opened with
// target.OpenGPU instead of in CPU memory.
func WithGPU(api string) Option {
	return func(b *Backend) {
		b.gpu = api
	}
}

// WithDevice supplies the device for offscreen targets. The caller keeps
// ownership.
func WithDevice(d target.Device) Option {
	return func(b *Backend) {
		b.device = d
	}
}

// WithPresentHook calls fn with every presented frame. The image is only
// valid during the call.
func WithPresentHook(fn func(img *image.RGBA)) Option {
	return func(b *Backend) {
		b.onPresent = fn
	}
}

// Backend is the headless windowing backend.
type Backend struct {
	mu          sync.Mutex
	monitors    []display.Monitor
	gpu         string
	device      target.Device
	closeDevice func()
	onPresent   func(img *image.RGBA)
	initialized bool
	windows     []*Window
}

// New creates a headless backend.
func New(opts ...Option) *Backend {
	b := &Backend{monitors: []display.Monitor{DefaultMonitor}}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns "headless".
func (b *Backend) Name() string { return backend.BackendHeadless }

// Init opens the device.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.initialized {
		return nil
	}
	switch {
	case b.device != nil:
	case b.gpu != "":
		dev, closeFn, err := target.OpenGPU(b.gpu)
		if err != nil {
			return fmt.Errorf("headless: %w", err)
		}
		b.device, b.closeDevice = dev, closeFn
	default:
		b.device = target.NewSoftwareDevice()
	}
	b.initialized = true
	logging.Logger().Info("headless: backend initialized", "monitors", len(b.monitors), "gpu", b.gpu)
	return nil
}

// Close closes every window and releases the device.
func (b *Backend) Close() {
	b.mu.Lock()
	windows := b.windows
	b.windows = nil
	closeDevice := b.closeDevice
	b.closeDevice = nil
	b.initialized = false
	b.mu.Unlock()

	for _, w := range windows {
		_ = w.Close()
	}
	if closeDevice != nil {
		closeDevice()
	}
}

// NewWindow opens a virtual window.
func (b *Backend) NewWindow(cfg backend.WindowConfig) (backend.Window, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return nil, backend.ErrNotInitialized
	}
	g := cfg.Geometry
	if g.Width <= 0 || g.Height <= 0 {
		g.Width, g.Height = display.DefaultGeometry.Width, display.DefaultGeometry.Height
	}
	w := &Window{
		backend:   b,
		title:     cfg.Title,
		geometry:  g,
		mode:      display.Windowed,
		decorated: true,
		resizable: cfg.Resizable,
		vsync:     cfg.Vsync,
		surface:   target.NewWindowSurface(image.NewRGBA(image.Rect(0, 0, g.Width, g.Height))),
		onPresent: b.onPresent,
	}
	b.windows = append(b.windows, w)
	return w, nil
}

// Monitors returns a copy of the virtual monitors.
func (b *Backend) Monitors() []display.Monitor {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]display.Monitor(nil), b.monitors...)
}

// SetMonitors replaces the virtual monitors, as if monitors were plugged
// in or removed.
func (b *Backend) SetMonitors(monitors ...display.Monitor) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.monitors = append([]display.Monitor(nil), monitors...)
}

// SetVideoMode changes the current video mode of monitor idx.
func (b *Backend) SetVideoMode(idx int, mode display.VideoMode) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if idx < 0 || idx >= len(b.monitors) {
		return fmt.Errorf("headless: no monitor %d", idx)
	}
	b.monitors[idx].Current = mode
	return nil
}

// Device returns the offscreen device, or nil before Init.
func (b *Backend) Device() target.Device {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.device
}
