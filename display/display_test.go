// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package display

import (
	"errors"
	"image"
	"testing"
)

// fakeWindow records what the state machine applies and echoes geometry
// changes back through the bound handlers like a real window would.
type fakeWindow struct {
	monitors  []Monitor
	h         Handlers
	geometry  Geometry
	mode      string
	monitor   int
	resizable bool
	title     string
	closed    bool
	applied   int
}

func newFakeWindow(monitors ...Monitor) *fakeWindow {
	return &fakeWindow{monitors: monitors, resizable: true}
}

func (w *fakeWindow) Monitors() []Monitor { return w.monitors }

func (w *fakeWindow) SetWindowed(g Geometry) error {
	w.mode, w.applied = "windowed", w.applied+1
	w.move(g)
	return nil
}

func (w *fakeWindow) SetFullscreen(monitor int, v VideoMode) error {
	w.mode, w.monitor, w.applied = "fullscreen", monitor, w.applied+1
	o := w.monitors[monitor].Origin
	w.move(Geometry{X: o.X, Y: o.Y, Width: v.Width, Height: v.Height})
	return nil
}

func (w *fakeWindow) SetBorderless(monitor int, g Geometry) error {
	w.mode, w.monitor, w.applied = "borderless", monitor, w.applied+1
	w.move(g)
	return nil
}

func (w *fakeWindow) move(g Geometry) {
	w.geometry = g
	if w.h.Pos != nil {
		w.h.Pos(g.X, g.Y)
	}
	if w.h.Size != nil {
		w.h.Size(g.Width, g.Height)
	}
}

func (w *fakeWindow) SetSize(width, height int) error {
	w.geometry.Width, w.geometry.Height = width, height
	return nil
}

func (w *fakeWindow) SetResizable(r bool) { w.resizable = r }
func (w *fakeWindow) SetTitle(t string)   { w.title = t }
func (w *fakeWindow) Bind(h Handlers)     { w.h = h }
func (w *fakeWindow) Close() error        { w.closed = true; return nil }

func monitor(name string, x, y, w, h, hz int) Monitor {
	return Monitor{
		Name:     name,
		Origin:   image.Pt(x, y),
		WorkArea: image.Rect(x, y+30, x+w, y+h),
		Current:  VideoMode{Width: w, Height: h, RefreshRate: hz},
		Modes: []VideoMode{
			{Width: 640, Height: 480, RefreshRate: 60},
			{Width: w, Height: h, RefreshRate: hz},
			{Width: w, Height: h, RefreshRate: 144},
		},
	}
}

func newTestDisplay(t *testing.T, g Geometry, monitors ...Monitor) (*Display, *fakeWindow) {
	t.Helper()
	win := newFakeWindow(monitors...)
	d, err := New(win, WithGeometry(g), WithTitle("test"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d, win
}

func TestNewDisplay(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrNoWindow) {
		t.Errorf("New(nil) err = %v, want ErrNoWindow", err)
	}
	d, _ := newTestDisplay(t, DefaultGeometry, monitor("primary", 0, 0, 1920, 1080, 60))
	if d.Mode() != Windowed || d.TargetMode() != Windowed || d.Pending() {
		t.Errorf("new display: mode=%v target=%v pending=%v", d.Mode(), d.TargetMode(), d.Pending())
	}
}

func TestFullscreenRoundTrip(t *testing.T) {
	start := Geometry{X: 100, Y: 200, Width: 800, Height: 600}
	modes := []Mode{Fullscreen, Borderless}
	for _, m := range modes {
		t.Run(m.String(), func(t *testing.T) {
			d, win := newTestDisplay(t, start, monitor("primary", 0, 0, 1920, 1080, 60))

			d.SetFullscreen(m, 0)
			if !d.Pending() {
				t.Fatal("Pending() = false after SetFullscreen")
			}
			if d.Mode() != Windowed {
				t.Fatal("mode changed before Flush")
			}
			if err := d.Flush(); err != nil {
				t.Fatalf("Flush: %v", err)
			}
			if d.Mode() != m || win.mode != m.String() {
				t.Fatalf("mode = %v, window = %s", d.Mode(), win.mode)
			}
			if win.geometry != (Geometry{Width: 1920, Height: 1080}) {
				t.Errorf("fullscreen geometry = %+v", win.geometry)
			}
			if d.WindowedGeometry() != start {
				t.Errorf("remembered geometry overwritten: %+v", d.WindowedGeometry())
			}

			d.SetFullscreen(Windowed, 0)
			if err := d.Flush(); err != nil {
				t.Fatalf("Flush: %v", err)
			}
			if win.geometry != start {
				t.Errorf("restored geometry = %+v, want %+v", win.geometry, start)
			}
			if d.Pending() {
				t.Error("Pending() = true after round trip")
			}
		})
	}
}

func TestWindowedRecentersOnFullscreenedMonitor(t *testing.T) {
	left := monitor("left", 0, 0, 1920, 1080, 60)
	right := monitor("right", 1920, 0, 2560, 1440, 60)
	d, win := newTestDisplay(t, Geometry{X: 100, Y: 100, Width: 800, Height: 600}, left, right)

	d.SetFullscreen(Fullscreen, 1)
	if err := d.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if win.monitor != 1 || win.geometry.X != 1920 {
		t.Fatalf("fullscreen on monitor %d at %+v", win.monitor, win.geometry)
	}

	d.SetFullscreen(Windowed, 1)
	if err := d.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	wa := right.WorkArea
	want := Geometry{
		X:     wa.Min.X + wa.Dx()/2 - 400,
		Y:     wa.Min.Y + wa.Dy()/2 - 300,
		Width: 800, Height: 600,
	}
	if win.geometry != want {
		t.Errorf("geometry = %+v, want %+v", win.geometry, want)
	}
	if d.WindowedGeometry() != want {
		t.Errorf("remembered = %+v, want %+v", d.WindowedGeometry(), want)
	}
}

func TestWindowedKeepsUserPlacement(t *testing.T) {
	d, win := newTestDisplay(t, Geometry{X: 10, Y: 20, Width: 640, Height: 480}, monitor("primary", 0, 0, 1920, 1080, 60))

	// The user drags and resizes the window.
	win.h.Pos(300, 400)
	win.h.Size(1024, 768)

	// Windowed to windowed reuses the placement unchanged.
	d.SetFullscreen(Windowed, 0)
	if err := d.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	want := Geometry{X: 300, Y: 400, Width: 1024, Height: 768}
	if win.geometry != want {
		t.Errorf("geometry = %+v, want %+v", win.geometry, want)
	}
}

func TestHandlersIgnoredOutsideWindowed(t *testing.T) {
	start := Geometry{X: 5, Y: 5, Width: 640, Height: 480}
	d, win := newTestDisplay(t, start, monitor("primary", 0, 0, 1920, 1080, 60))

	d.SetFullscreen(Borderless, 0)
	win.h.Pos(0, 0)
	win.h.Size(1920, 1080)
	if d.WindowedGeometry() != start {
		t.Errorf("geometry = %+v, want %+v", d.WindowedGeometry(), start)
	}
}

func TestLateFullscreenEventsIgnored(t *testing.T) {
	start := Geometry{X: 5, Y: 5, Width: 640, Height: 480}
	d, win := newTestDisplay(t, start, monitor("primary", 0, 0, 1920, 1080, 60))

	d.SetFullscreen(Borderless, 0)
	if err := d.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	// Windowed is requested before the borderless placement events are
	// delivered.
	d.SetFullscreen(Windowed, 0)
	win.h.Pos(0, 0)
	win.h.Size(1920, 1080)
	if d.WindowedGeometry() != start {
		t.Errorf("geometry = %+v, want %+v", d.WindowedGeometry(), start)
	}
}

func TestPendingOnVideoModeChange(t *testing.T) {
	d, win := newTestDisplay(t, DefaultGeometry, monitor("primary", 0, 0, 1920, 1080, 60))
	d.SetFullscreen(Fullscreen, 0)
	if err := d.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if d.Pending() {
		t.Fatal("Pending() = true right after Flush")
	}

	tests := []struct {
		name string
		mode VideoMode
	}{
		{"resolution", VideoMode{Width: 2560, Height: 1440, RefreshRate: 60}},
		{"refresh", VideoMode{Width: 2560, Height: 1440, RefreshRate: 120}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			win.monitors[0].Current = tt.mode
			if !d.Pending() {
				t.Fatal("Pending() = false after video mode change")
			}
			if err := d.Flush(); err != nil {
				t.Fatalf("Flush: %v", err)
			}
			if win.geometry.Width != tt.mode.Width {
				t.Errorf("window width = %d, want %d", win.geometry.Width, tt.mode.Width)
			}
			if d.Pending() {
				t.Error("Pending() = true after re-flush")
			}
		})
	}
}

func TestVideoModeChangeIgnoredWhenWindowed(t *testing.T) {
	d, win := newTestDisplay(t, DefaultGeometry, monitor("primary", 0, 0, 1920, 1080, 60))
	win.monitors[0].Current = VideoMode{Width: 1280, Height: 720, RefreshRate: 60}
	if d.Pending() {
		t.Error("Pending() = true for a video mode change while windowed")
	}
}

func TestPendingOnMonitorChange(t *testing.T) {
	d, _ := newTestDisplay(t, DefaultGeometry,
		monitor("left", 0, 0, 1920, 1080, 60), monitor("right", 1920, 0, 1920, 1080, 60))
	d.SetFullscreen(Borderless, 0)
	_ = d.Flush()

	d.SetFullscreen(Borderless, 1)
	if !d.Pending() {
		t.Error("Pending() = false after monitor change")
	}
}

func TestOutOfRangeMonitorFallsBackToPrimary(t *testing.T) {
	d, win := newTestDisplay(t, DefaultGeometry, monitor("primary", 0, 0, 1920, 1080, 60))
	d.SetFullscreen(Fullscreen, 7)
	if err := d.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if win.monitor != 0 {
		t.Errorf("applied on monitor %d, want 0", win.monitor)
	}
	if d.Pending() {
		t.Error("Pending() = true after flush")
	}
}

func TestFullscreenWithoutMonitor(t *testing.T) {
	d, _ := newTestDisplay(t, DefaultGeometry)
	d.SetFullscreen(Fullscreen, 0)
	if err := d.Flush(); !errors.Is(err, ErrNoMonitor) {
		t.Errorf("err = %v, want ErrNoMonitor", err)
	}
	if d.Mode() != Windowed {
		t.Errorf("Mode() = %v after failed flush", d.Mode())
	}
}

func TestUpdateDefersWhileMinimized(t *testing.T) {
	d, win := newTestDisplay(t, DefaultGeometry, monitor("primary", 0, 0, 1920, 1080, 60))
	d.SetFullscreen(Fullscreen, 0)
	win.h.Iconify(true)

	flushed, err := d.Update()
	if err != nil || flushed {
		t.Fatalf("Update() = %v, %v while minimized", flushed, err)
	}
	if d.Mode() != Windowed || win.applied != 0 {
		t.Fatal("mode applied to a minimized window")
	}

	win.h.Iconify(false)
	flushed, err = d.Update()
	if err != nil || !flushed {
		t.Fatalf("Update() = %v, %v after restore", flushed, err)
	}
	if d.Mode() != Fullscreen {
		t.Errorf("Mode() = %v, want fullscreen", d.Mode())
	}
	if d.LastMode() != Windowed {
		t.Errorf("LastMode() = %v, want windowed", d.LastMode())
	}
}

func TestScreenQueries(t *testing.T) {
	d, _ := newTestDisplay(t, DefaultGeometry, monitor("primary", 0, 0, 1920, 1080, 60))

	if w, h := d.ScreenSize(-1); w != 1920 || h != 1080 {
		t.Errorf("ScreenSize(-1) = %dx%d", w, h)
	}
	if w, h := d.ScreenSize(0); w != 640 || h != 480 {
		t.Errorf("ScreenSize(0) = %dx%d", w, h)
	}
	if r := d.ScreenRate(-1); r != 60 {
		t.Errorf("ScreenRate(-1) windowed = %d, want 60", r)
	}

	d.SetFullscreen(Fullscreen, 0)
	_ = d.Flush()
	if r := d.ScreenRate(-1); r != 144 {
		t.Errorf("ScreenRate(-1) fullscreen = %d, want 144", r)
	}
	if w, _ := d.ScreenSize(9); w != 0 {
		t.Errorf("ScreenSize(9) = %d, want 0", w)
	}
	if d.MonitorCount() != 1 || len(d.VideoModes()) != 3 {
		t.Errorf("MonitorCount = %d, VideoModes = %d", d.MonitorCount(), len(d.VideoModes()))
	}
}

func TestSetSizeAndLock(t *testing.T) {
	d, win := newTestDisplay(t, DefaultGeometry, monitor("primary", 0, 0, 1920, 1080, 60))
	if err := d.SetSize(1024, 768); err != nil {
		t.Fatalf("SetSize: %v", err)
	}
	if g := d.WindowedGeometry(); g.Width != 1024 || g.Height != 768 {
		t.Errorf("remembered size = %dx%d", g.Width, g.Height)
	}
	d.SetLock(true)
	if win.resizable || !d.Locked() {
		t.Error("SetLock(true) left the window resizable")
	}
	d.SetTitle("renamed")
	if win.title != "renamed" {
		t.Errorf("title = %q", win.title)
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{Windowed, Fullscreen, Borderless} {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("exclusive"); err == nil {
		t.Error("ParseMode accepted an unknown name")
	}
}
