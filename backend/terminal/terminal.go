// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package terminal provides a windowing backend that draws into a text
// terminal using tcell.
//
// Each character cell shows two vertically stacked pixels with the upper
// half block, so a terminal of C columns and R rows is a C x 2R pixel
// window. The terminal is the only monitor and the window always covers
// it: window modes are accepted but do not change the surface size.
// Escape and Ctrl-C request close.
//
// The backend registers itself as "terminal" on import:
//
//	import _ "github.com/gogpu/present/backend/terminal"
package terminal

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/gogpu/present/backend"
	"github.com/gogpu/present/display"
	"github.com/gogpu/present/internal/logging"
	"github.com/gogpu/present/target"
)

// RefreshRate is the pace of Present with vsync enabled.
const RefreshRate = 30

// ErrWindowOpen is returned when a second window is requested.
var ErrWindowOpen = errors.New("terminal: only one window is supported")

func init() {
	backend.Register(backend.BackendTerminal, func() backend.Backend {
		return New()
	})
}

// Option configures a Backend.
type Option func(*Backend)

// WithScreen uses s instead of the process terminal. The backend calls
// Init and Fini on it.
func WithScreen(s tcell.Screen) Option {
	return func(b *Backend) {
		b.screen = s
	}
}

// Backend is the terminal windowing backend.
type Backend struct {
	mu          sync.Mutex
	screen      tcell.Screen
	device      *target.SoftwareDevice
	events      chan tcell.Event
	initialized bool
	window      *Window
}

// New creates a terminal backend.
func New(opts ...Option) *Backend {
	b := &Backend{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns "terminal".
func (b *Backend) Name() string { return backend.BackendTerminal }

// Init takes over the terminal and starts reading its events.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.initialized {
		return nil
	}
	if b.screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("terminal: %w: %w", backend.ErrBackendNotAvailable, err)
		}
		b.screen = s
	}
	if err := b.screen.Init(); err != nil {
		return fmt.Errorf("terminal: %w: %w", backend.ErrBackendNotAvailable, err)
	}
	b.screen.HideCursor()
	b.screen.Clear()

	b.device = target.NewSoftwareDevice()
	b.events = make(chan tcell.Event, 64)
	go pump(b.screen, b.events)

	b.initialized = true
	cols, rows := b.screen.Size()
	logging.Logger().Info("terminal: backend initialized", "cols", cols, "rows", rows)
	return nil
}

// pump forwards screen events until the screen is finalized.
func pump(s tcell.Screen, out chan<- tcell.Event) {
	defer close(out)
	for {
		ev := s.PollEvent()
		if ev == nil {
			return
		}
		out <- ev
	}
}

// Close restores the terminal.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return
	}
	if b.window != nil {
		_ = b.window.Close()
		b.window = nil
	}
	b.screen.Fini()
	b.initialized = false
}

// NewWindow opens the window covering the terminal.
func (b *Backend) NewWindow(cfg backend.WindowConfig) (backend.Window, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return nil, backend.ErrNotInitialized
	}
	if b.window != nil {
		return nil, ErrWindowOpen
	}
	size := pixelSize(b.screen.Size())
	w := &Window{
		screen:  b.screen,
		device:  b.device,
		events:  b.events,
		title:   cfg.Title,
		vsync:   cfg.Vsync,
		size:    size,
		surface: target.NewWindowSurface(image.NewRGBA(image.Rectangle{Max: size})),
	}
	b.window = w
	return w, nil
}

// pixelSize converts a terminal size in cells to pixels.
func pixelSize(cols, rows int) image.Point {
	return image.Pt(max(cols, 1), max(rows, 1)*2)
}

// monitor describes the terminal as a monitor of the given pixel size.
func monitor(size image.Point) display.Monitor {
	mode := display.VideoMode{Width: size.X, Height: size.Y, RefreshRate: RefreshRate}
	return display.Monitor{
		Name:     "terminal",
		WorkArea: image.Rectangle{Max: size},
		Current:  mode,
		Modes:    []display.VideoMode{mode},
	}
}
