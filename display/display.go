// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package display

import (
	"errors"
	"fmt"

	"github.com/gogpu/present/internal/logging"
)

var (
	// ErrNoWindow is returned when a display is created without a window
	// or used after Close.
	ErrNoWindow = errors.New("display: no window")

	// ErrNoMonitor is returned when a fullscreen-like mode is applied with
	// no monitor connected.
	ErrNoMonitor = errors.New("display: no monitor")
)

// DefaultGeometry is the windowed geometry of a new display.
var DefaultGeometry = Geometry{Width: 640, Height: 480}

// Option configures a Display.
type Option func(*Display)

// WithGeometry sets the initial windowed geometry. It must match where the
// backend created the window.
func WithGeometry(g Geometry) Option {
	return func(d *Display) {
		if g.Width > 0 && g.Height > 0 {
			d.windowed = g
		}
	}
}

// WithTitle records the window title.
func WithTitle(title string) Option {
	return func(d *Display) {
		d.title = title
	}
}

// Display is the mode state machine of one window.
//
// Callers request a mode with SetFullscreen; nothing happens until Flush,
// which the presentation loop runs when Pending reports a change and the
// window is not minimized. Only Flush changes the current mode.
//
// A Display is used from the render goroutine only.
type Display struct {
	win   Window
	title string

	mode       Mode
	target     Mode
	lastMode   Mode
	monitor    int
	targetMon  int
	lastVideo  VideoMode
	windowed   Geometry
	minimized  bool
	locked     bool
	closed     bool
	flushCount int
}

// New binds a Display to win. The display starts Windowed at the initial
// geometry with nothing pending.
func New(win Window, opts ...Option) (*Display, error) {
	if win == nil {
		return nil, ErrNoWindow
	}
	d := &Display{
		win:      win,
		windowed: DefaultGeometry,
	}
	for _, opt := range opts {
		opt(d)
	}
	win.Bind(d.handlers())
	return d, nil
}

func (d *Display) handlers() Handlers {
	return Handlers{
		Pos:     d.onWindowPos,
		Size:    d.onWindowSize,
		Iconify: d.onIconify,
	}
}

// Window position and size are remembered only while the window is
// windowed and stays so. Events still in flight from a fullscreen-like
// placement arrive while the current mode is not yet Windowed.
func (d *Display) onWindowPos(x, y int) {
	if d.tracking() {
		d.windowed.X, d.windowed.Y = x, y
	}
}

func (d *Display) onWindowSize(w, h int) {
	if d.tracking() && w > 0 && h > 0 {
		d.windowed.Width, d.windowed.Height = w, h
	}
}

func (d *Display) tracking() bool {
	return d.target == Windowed && d.mode == Windowed
}

func (d *Display) onIconify(minimized bool) {
	d.minimized = minimized
}

// Title returns the window title.
func (d *Display) Title() string { return d.title }

// SetTitle changes the window title.
func (d *Display) SetTitle(title string) {
	d.title = title
	if !d.closed {
		d.win.SetTitle(title)
	}
}

// Window returns the bound window.
func (d *Display) Window() Window { return d.win }

// Active reports whether the display still has a window.
func (d *Display) Active() bool { return !d.closed }

// Mode returns the applied mode.
func (d *Display) Mode() Mode { return d.mode }

// TargetMode returns the requested mode.
func (d *Display) TargetMode() Mode { return d.target }

// LastMode returns the mode recorded by the last UpdateLastMode.
func (d *Display) LastMode() Mode { return d.lastMode }

// Monitor returns the monitor index the current mode was applied on.
func (d *Display) Monitor() int { return d.monitor }

// TargetMonitor returns the requested monitor index.
func (d *Display) TargetMonitor() int { return d.targetMon }

// Windowed reports whether the applied mode is Windowed.
func (d *Display) Windowed() bool { return d.mode == Windowed }

// Minimized reports whether the window is minimized.
func (d *Display) Minimized() bool { return d.minimized }

// WindowedGeometry returns the remembered windowed geometry.
func (d *Display) WindowedGeometry() Geometry { return d.windowed }

// Flushes returns how many times a mode was applied.
func (d *Display) Flushes() int { return d.flushCount }

// SetFullscreen requests mode on monitor. It takes effect at the next
// Flush.
func (d *Display) SetFullscreen(mode Mode, monitor int) {
	d.target = mode
	d.targetMon = monitor
}

// UpdateLastMode records the applied mode. The presentation loop calls it
// once per iteration before checking Pending.
func (d *Display) UpdateLastMode() {
	d.lastMode = d.mode
}

// Pending reports whether Flush has work to do: the requested mode or
// monitor differs from the applied one, or the monitor's video mode
// changed under a fullscreen-like mode.
func (d *Display) Pending() bool {
	if d.closed {
		return false
	}
	if d.mode != d.target || d.monitor != d.targetMon {
		return true
	}
	if !d.mode.FullscreenLike() {
		return false
	}
	m, ok := d.monitorAt(d.monitor)
	return ok && m.Current != d.lastVideo
}

// Flush applies the requested mode to the window.
func (d *Display) Flush() error {
	if d.closed {
		return ErrNoWindow
	}
	prev := d.mode
	target, idx := d.target, d.targetMon
	log := logging.Logger()

	switch target {
	case Windowed:
		g := d.windowed
		if prev.FullscreenLike() {
			// Back from a fullscreen-like mode: keep the remembered
			// placement if it is on the monitor that was just used,
			// otherwise center it there.
			if m, ok := d.monitorAt(d.monitor); ok && !g.Rect().In(m.WorkArea) {
				g = g.CenteredIn(m.WorkArea)
			}
		}
		if err := d.win.SetWindowed(g); err != nil {
			return fmt.Errorf("display: apply windowed: %w", err)
		}
		d.windowed = g

	case Fullscreen:
		m, ok := d.monitorAt(idx)
		if !ok {
			return ErrNoMonitor
		}
		if err := d.win.SetFullscreen(d.resolveIndex(idx), m.Current); err != nil {
			return fmt.Errorf("display: apply fullscreen: %w", err)
		}

	case Borderless:
		m, ok := d.monitorAt(idx)
		if !ok {
			return ErrNoMonitor
		}
		g := Geometry{X: m.Origin.X, Y: m.Origin.Y, Width: m.Current.Width, Height: m.Current.Height}
		if err := d.win.SetBorderless(d.resolveIndex(idx), g); err != nil {
			return fmt.Errorf("display: apply borderless: %w", err)
		}

	default:
		return fmt.Errorf("display: unknown mode %v", target)
	}

	d.mode = target
	d.monitor = idx
	if m, ok := d.monitorAt(idx); ok {
		d.lastVideo = m.Current
	}
	d.flushCount++
	log.Info("display: mode applied", "from", prev, "to", target, "monitor", idx, "video_mode", d.lastVideo)
	return nil
}

// Update runs the per-iteration mode check: record the last mode, then
// flush if a change is pending and the window is not minimized. It
// reports whether a flush happened.
func (d *Display) Update() (bool, error) {
	d.UpdateLastMode()
	if !d.Pending() || d.minimized {
		return false, nil
	}
	if err := d.Flush(); err != nil {
		return false, err
	}
	return true, nil
}

// SetSize resizes the window and remembers the size when windowed.
func (d *Display) SetSize(w, h int) error {
	if d.closed {
		return ErrNoWindow
	}
	if err := d.win.SetSize(w, h); err != nil {
		return fmt.Errorf("display: set size: %w", err)
	}
	if d.mode == Windowed {
		d.windowed.Width, d.windowed.Height = w, h
	}
	return nil
}

// SetLock locks (true) or unlocks the window size.
func (d *Display) SetLock(locked bool) {
	d.locked = locked
	if !d.closed {
		d.win.SetResizable(!locked)
	}
}

// Locked reports whether the window size is locked.
func (d *Display) Locked() bool { return d.locked }

// MonitorCount returns the number of connected monitors.
func (d *Display) MonitorCount() int {
	if d.closed {
		return 0
	}
	return len(d.win.Monitors())
}

// VideoModes returns the modes supported by the target monitor.
func (d *Display) VideoModes() []VideoMode {
	m, ok := d.monitorAt(d.monitor)
	if !ok {
		return nil
	}
	return m.Modes
}

// ScreenSize returns the size of video mode idx of the active monitor. A
// negative idx selects the current mode, or the tallest mode while
// Fullscreen.
func (d *Display) ScreenSize(idx int) (w, h int) {
	v, ok := d.videoMode(idx, func(a, b VideoMode) bool { return a.Height < b.Height })
	if !ok {
		return 0, 0
	}
	return v.Width, v.Height
}

// ScreenRate returns the refresh rate of video mode idx of the active
// monitor. A negative idx selects the current mode, or the fastest mode
// while Fullscreen.
func (d *Display) ScreenRate(idx int) int {
	v, ok := d.videoMode(idx, func(a, b VideoMode) bool { return a.RefreshRate < b.RefreshRate })
	if !ok {
		return 0
	}
	return v.RefreshRate
}

func (d *Display) videoMode(idx int, less func(a, b VideoMode) bool) (VideoMode, bool) {
	m, ok := d.monitorAt(d.monitor)
	if !ok {
		return VideoMode{}, false
	}
	if idx >= 0 {
		if idx >= len(m.Modes) {
			return VideoMode{}, false
		}
		return m.Modes[idx], true
	}
	v := m.Current
	if d.mode == Fullscreen {
		for _, c := range m.Modes {
			if less(v, c) {
				v = c
			}
		}
	}
	return v, true
}

// resolveIndex maps an out-of-range monitor index to the primary monitor.
func (d *Display) resolveIndex(idx int) int {
	if idx < 0 || idx >= len(d.win.Monitors()) {
		return 0
	}
	return idx
}

func (d *Display) monitorAt(idx int) (Monitor, bool) {
	if d.closed {
		return Monitor{}, false
	}
	ms := d.win.Monitors()
	if len(ms) == 0 {
		return Monitor{}, false
	}
	return ms[d.resolveIndex(idx)], true
}

// Close detaches the handlers and destroys the window.
func (d *Display) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.win.Bind(Handlers{})
	if err := d.win.Close(); err != nil {
		return fmt.Errorf("display: close: %w", err)
	}
	return nil
}
