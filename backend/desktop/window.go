// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package desktop

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gogpu/present/backend"
	"github.com/gogpu/present/display"
	"github.com/gogpu/present/internal/logging"
	"github.com/gogpu/present/target"
)

// Window is the process window.
type Window struct {
	device target.Device

	mu        sync.Mutex
	geometry  display.Geometry
	outside   image.Point
	minimized bool
	closeReq  bool
	closed    bool

	// Game goroutine only.
	handlers display.Handlers
	surface  *target.RenderTarget
	fb       *ebiten.Image
}

// Monitors returns the connected monitors.
func (w *Window) Monitors() []display.Monitor { return monitors() }

// SetWindowed leaves fullscreen and places the decorated window at g.
func (w *Window) SetWindowed(g display.Geometry) error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("desktop: invalid window size %dx%d", g.Width, g.Height)
	}
	ebiten.SetFullscreen(false)
	ebiten.SetWindowDecorated(true)
	ebiten.SetWindowSize(g.Width, g.Height)
	ebiten.SetWindowPosition(g.X, g.Y)
	return nil
}

// SetFullscreen moves the window to monitor and makes it fullscreen. The
// monitor keeps its desktop video mode.
func (w *Window) SetFullscreen(monitor int, mode display.VideoMode) error {
	m, ok := monitorHandle(monitor)
	if !ok {
		return fmt.Errorf("desktop: no monitor %d", monitor)
	}
	ebiten.SetMonitor(m)
	ebiten.SetFullscreen(true)
	logging.Logger().Debug("desktop: fullscreen", "monitor", m.Name(), "mode", mode.String())
	return nil
}

// SetBorderless moves the window to monitor as an undecorated window at g.
func (w *Window) SetBorderless(monitor int, g display.Geometry) error {
	m, ok := monitorHandle(monitor)
	if !ok {
		return fmt.Errorf("desktop: no monitor %d", monitor)
	}
	ebiten.SetFullscreen(false)
	ebiten.SetMonitor(m)
	ebiten.SetWindowDecorated(false)
	ebiten.SetWindowSize(g.Width, g.Height)
	ebiten.SetWindowPosition(g.X, g.Y)
	return nil
}

// SetSize resizes the window.
func (w *Window) SetSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("desktop: invalid window size %dx%d", width, height)
	}
	ebiten.SetWindowSize(width, height)
	return nil
}

// SetResizable toggles user resizing.
func (w *Window) SetResizable(resizable bool) {
	if resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
		return
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
}

// SetTitle changes the title.
func (w *Window) SetTitle(title string) { ebiten.SetWindowTitle(title) }

// Bind installs the handlers.
func (w *Window) Bind(h display.Handlers) { w.handlers = h }

// Close ends the game loop at the next frame.
func (w *Window) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

// PollEvents compares the window state with the last poll and reports
// the differences to the bound handlers.
func (w *Window) PollEvents() {
	x, y := ebiten.WindowPosition()
	minimized := ebiten.IsWindowMinimized()

	w.mu.Lock()
	moved := x != w.geometry.X || y != w.geometry.Y
	w.geometry.X, w.geometry.Y = x, y
	size := w.outside
	resized := size.X > 0 && size.Y > 0 && (size.X != w.geometry.Width || size.Y != w.geometry.Height)
	if resized {
		w.geometry.Width, w.geometry.Height = size.X, size.Y
	}
	iconified := minimized != w.minimized
	w.minimized = minimized
	if ebiten.IsWindowBeingClosed() {
		w.closeReq = true
	}
	w.mu.Unlock()

	if moved && w.handlers.Pos != nil {
		w.handlers.Pos(x, y)
	}
	if resized {
		w.surface.Replace(image.NewRGBA(image.Rect(0, 0, size.X, size.Y)))
		if w.handlers.Size != nil {
			w.handlers.Size(size.X, size.Y)
		}
	}
	if iconified && w.handlers.Iconify != nil {
		w.handlers.Iconify(minimized)
	}
}

// Surface returns the window framebuffer.
func (w *Window) Surface() *target.RenderTarget { return w.surface }

// Device returns the offscreen device.
func (w *Window) Device() target.Device { return w.device }

// Present uploads the framebuffer. It is drawn to the screen by the next
// Ebitengine draw.
func (w *Window) Present() error {
	img := w.surface.Image()
	b := img.Bounds()
	if w.fb == nil || w.fb.Bounds().Size() != b.Size() {
		if w.fb != nil {
			w.fb.Deallocate()
		}
		w.fb = ebiten.NewImage(b.Dx(), b.Dy())
	}
	w.fb.WritePixels(img.Pix)
	return nil
}

// SetVsync changes the swap interval.
func (w *Window) SetVsync(enabled bool) { ebiten.SetVsyncEnabled(enabled) }

// ShouldClose reports whether the user tried to close the window.
func (w *Window) ShouldClose() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeReq
}

// Drive runs the Ebitengine game loop, calling step once per tick. It must
// be called from the main goroutine and returns when step returns an
// error or the window is closed.
func (w *Window) Drive(step func() error) error {
	return ebiten.RunGame(&game{w: w, step: step})
}

type game struct {
	w    *Window
	step func() error
}

func (g *game) Update() error {
	g.w.mu.Lock()
	closed := g.w.closed
	g.w.mu.Unlock()
	if closed {
		return ebiten.Termination
	}
	if err := g.step(); err != nil {
		if errors.Is(err, backend.ErrStop) {
			return ebiten.Termination
		}
		return err
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	fb := g.w.fb
	if fb == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	fw, fh := fb.Bounds().Dx(), fb.Bounds().Dy()
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	if fw != sw || fh != sh {
		op.GeoM.Scale(float64(sw)/float64(fw), float64(sh)/float64(fh))
		op.Filter = ebiten.FilterLinear
	}
	screen.DrawImage(fb, op)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.w.mu.Lock()
	g.w.outside = image.Pt(outsideWidth, outsideHeight)
	g.w.mu.Unlock()
	return outsideWidth, outsideHeight
}

var (
	_ backend.Window = (*Window)(nil)
	_ backend.Driver = (*Window)(nil)
)
