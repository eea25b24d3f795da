// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package terminal

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/gogpu/present/backend"
	"github.com/gogpu/present/display"
	"github.com/gogpu/present/frame"
	"github.com/gogpu/present/target"
)

// halfBlock shows the foreground color in the upper half of a cell and the
// background color in the lower half.
const halfBlock = '▀'

// Window is the terminal window.
type Window struct {
	screen tcell.Screen
	device target.Device
	events <-chan tcell.Event

	mu       sync.Mutex
	title    string
	mode     display.Mode
	vsync    bool
	size     image.Point
	closeReq bool
	closed   bool

	// Render goroutine only.
	handlers display.Handlers
	surface  *target.RenderTarget
	limiter  frame.Limiter
}

// Monitors returns the terminal.
func (w *Window) Monitors() []display.Monitor {
	w.mu.Lock()
	defer w.mu.Unlock()
	return []display.Monitor{monitor(w.size)}
}

// SetWindowed records the mode. The window keeps covering the terminal.
func (w *Window) SetWindowed(g display.Geometry) error {
	return w.setMode(display.Windowed, 0)
}

// SetFullscreen records the mode.
func (w *Window) SetFullscreen(monitor int, _ display.VideoMode) error {
	return w.setMode(display.Fullscreen, monitor)
}

// SetBorderless records the mode.
func (w *Window) SetBorderless(monitor int, _ display.Geometry) error {
	return w.setMode(display.Borderless, monitor)
}

func (w *Window) setMode(m display.Mode, monitor int) error {
	if monitor != 0 {
		return fmt.Errorf("terminal: no monitor %d", monitor)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.mode = m
	return nil
}

// SetSize is a no-op: the terminal decides the size.
func (w *Window) SetSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("terminal: invalid window size %dx%d", width, height)
	}
	return nil
}

// SetResizable is a no-op.
func (w *Window) SetResizable(bool) {}

// SetTitle sets the terminal title where supported.
func (w *Window) SetTitle(title string) {
	w.mu.Lock()
	w.title = title
	w.mu.Unlock()
	w.screen.SetTitle(title)
}

// Bind installs the handlers.
func (w *Window) Bind(h display.Handlers) { w.handlers = h }

// Close stops presenting. The terminal is restored by the backend.
func (w *Window) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

// PollEvents delivers the events read from the terminal so far.
func (w *Window) PollEvents() {
	for {
		select {
		case ev, ok := <-w.events:
			if !ok {
				w.requestClose()
				return
			}
			w.handle(ev)
		default:
			return
		}
	}
}

func (w *Window) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		size := pixelSize(ev.Size())
		w.mu.Lock()
		changed := size != w.size
		w.size = size
		w.mu.Unlock()
		if !changed {
			return
		}
		w.surface.Replace(image.NewRGBA(image.Rectangle{Max: size}))
		w.screen.Sync()
		if w.handlers.Size != nil {
			w.handlers.Size(size.X, size.Y)
		}
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			w.requestClose()
		}
	}
}

func (w *Window) requestClose() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closeReq = true
}

// Surface returns the window framebuffer.
func (w *Window) Surface() *target.RenderTarget { return w.surface }

// Device returns the offscreen device.
func (w *Window) Device() target.Device { return w.device }

// Present draws the framebuffer into the terminal cells.
func (w *Window) Present() error {
	w.mu.Lock()
	closed, vsync := w.closed, w.vsync
	w.mu.Unlock()
	if closed {
		return fmt.Errorf("terminal: present on closed window")
	}

	img := w.surface.Image()
	b := img.Bounds()
	cols, rows := w.screen.Size()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			top := pixel(img, b, x, 2*y)
			bottom := pixel(img, b, x, 2*y+1)
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bottom.R), int32(bottom.G), int32(bottom.B)))
			w.screen.SetContent(x, y, halfBlock, nil, style)
		}
	}
	w.screen.Show()

	if vsync {
		w.limiter.Wait(context.Background(), RefreshRate)
	}
	return nil
}

func pixel(img *image.RGBA, b image.Rectangle, x, y int) color.RGBA {
	if !(image.Point{X: x, Y: y}).In(b) {
		return color.RGBA{}
	}
	return img.RGBAAt(x, y)
}

// SetVsync paces Present at RefreshRate.
func (w *Window) SetVsync(enabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if enabled && !w.vsync {
		w.limiter.Reset()
	}
	w.vsync = enabled
}

// ShouldClose reports whether Escape or Ctrl-C was pressed.
func (w *Window) ShouldClose() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeReq
}

var _ backend.Window = (*Window)(nil)
