// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package present

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/present/backend"
	"github.com/gogpu/present/display"
	"github.com/gogpu/present/frame"
)

var (
	// ErrDisplayExists is returned by Init when the main display is
	// already open.
	ErrDisplayExists = errors.New("present: main display already exists")

	// ErrNoDisplay is returned when an operation needs the main display
	// and there is none.
	ErrNoDisplay = errors.New("present: no display")
)

// FatalError reports a failure that terminated a display. When the display
// was the main one the runtime is stopped with status Exit.
type FatalError struct {
	Display string
	Err     error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("present: display %q: %v", e.Display, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// Runtime is the presentation context: settings, exit status, the frame
// channel and pacer shared with the simulation goroutine, the windowing
// backend and the open displays.
//
// Methods are for the render goroutine unless documented otherwise. The
// producer API (SendChain, SyncPath, Vsync), Status, SetStatus, Post and
// RequestScreenshot are safe from any goroutine.
type Runtime struct {
	opts     options
	settings Settings

	life    *frame.Lifecycle
	channel *frame.Channel
	pacer   *frame.Pacer

	// consumedAt is when the render goroutine last released the slot,
	// in Unix nanoseconds. It times the simulation in SyncPath.
	consumedAt atomic.Int64

	backend    backend.Backend
	displays   display.Registry
	presenters []*Presenter

	mu     sync.Mutex
	posted []func(*Runtime)
	shot   *ScreenshotRequest
}

// New creates a Runtime. Nothing is opened until Init.
func New(opts ...Option) *Runtime {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	life := frame.NewLifecycle()
	return &Runtime{
		opts:     o,
		settings: o.settings,
		life:     life,
		channel:  frame.NewChannel(life, append([]frame.ChannelOption{frame.WithWaitTimeout(o.settings.FrameWaitTimeout)}, o.channelOpts...)...),
		pacer:    frame.NewPacer(life),
	}
}

// Init opens the backend and the main display. Calling it again while the
// main display is open logs a warning and returns ErrDisplayExists.
func (r *Runtime) Init() error {
	if r.displays.Main() != nil {
		Logger().Warn("present: display already exists, not creating another")
		return ErrDisplayExists
	}
	if r.backend == nil {
		b, err := r.openBackend()
		if err != nil {
			return err
		}
		r.backend = b
		Logger().Info("present: backend selected", "backend", b.Name())
	}

	g := display.DefaultGeometry
	_, err := r.OpenDisplay(r.settings.Title, g)
	return err
}

func (r *Runtime) openBackend() (backend.Backend, error) {
	if b := r.opts.backend; b != nil {
		if err := b.Init(); err != nil {
			return nil, fmt.Errorf("present: backend %s: %w", b.Name(), err)
		}
		return b, nil
	}
	b, err := backend.Open(r.settings.Backend)
	if err != nil {
		return nil, fmt.Errorf("present: %w", err)
	}
	return b, nil
}

// OpenDisplay opens a window and binds a display to it. The first display
// opened is the main display; later ones show the same window contents
// without rendering game frames.
func (r *Runtime) OpenDisplay(title string, g display.Geometry) (*display.Display, error) {
	if r.backend == nil {
		return nil, backend.ErrNotInitialized
	}
	win, err := r.backend.NewWindow(backend.WindowConfig{
		Title:     title,
		Geometry:  g,
		Resizable: true,
		Vsync:     r.settings.VsyncEnabled,
	})
	if err != nil {
		return nil, &FatalError{Display: title, Err: err}
	}
	d, err := display.New(win, display.WithGeometry(g), display.WithTitle(title))
	if err != nil {
		_ = win.Close()
		return nil, &FatalError{Display: title, Err: err}
	}
	main := r.displays.Len() == 0
	r.displays.Add(d)
	r.presenters = append(r.presenters, newPresenter(r, d, win, main))
	Logger().Info("present: display opened", "title", title, "main", main, "width", g.Width, "height", g.Height)
	return d, nil
}

// Exit stops the runtime, closes every display and the backend.
func (r *Runtime) Exit() error {
	if r.life.Status() == frame.Running {
		r.SetStatus(frame.Exit)
	}
	for _, p := range r.presenters {
		p.release()
	}
	r.presenters = nil
	err := r.displays.KillAll()
	if r.backend != nil {
		r.backend.Close()
		r.backend = nil
	}
	return err
}

// Run drives the presentation loop on the calling goroutine until the exit
// status leaves Running or ctx is done. Each producer runs on its own
// goroutine with a context that is canceled when the loop ends; Run waits
// for them and returns the first error.
//
// When the main window's toolkit owns the main loop (backend.Driver), Run
// hands it the loop and must be called from the main goroutine.
func (r *Runtime) Run(ctx context.Context, producers ...func(ctx context.Context) error) error {
	main := r.mainPresenter()
	if main == nil {
		return ErrNoDisplay
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	for _, produce := range producers {
		g.Go(func() error { return produce(gctx) })
	}

	step := func() error {
		if err := r.Step(gctx); err != nil {
			return err
		}
		if r.life.Stopped() {
			return backend.ErrStop
		}
		if gctx.Err() != nil {
			return backend.ErrStop
		}
		return nil
	}

	var loopErr error
	if drv, ok := main.win.(backend.Driver); ok {
		loopErr = drv.Drive(step)
	} else {
		for loopErr == nil {
			loopErr = step()
		}
	}
	if errors.Is(loopErr, backend.ErrStop) {
		loopErr = nil
	}

	if r.life.Status() == frame.Running {
		r.SetStatus(frame.Exit)
	}
	cancel()
	return errors.Join(loopErr, g.Wait())
}

// Step runs one presentation iteration on every open display. It returns
// a *FatalError when the main display failed.
func (r *Runtime) Step(ctx context.Context) error {
	r.runPosted()

	var fatal error
	kept := r.presenters[:0]
	for _, p := range r.presenters {
		if !p.disp.Active() {
			p.release()
			continue
		}
		err := p.Iterate(ctx)
		var fe *FatalError
		if errors.As(err, &fe) {
			Logger().Error("present: display failed", "title", p.disp.Title(), "error", fe.Err)
			p.release()
			if p.main {
				r.SetStatus(frame.Exit)
				_ = r.displays.Kill(p.disp)
				fatal = err
				continue
			}
			_ = r.displays.Kill(p.disp)
			continue
		}
		if !p.disp.Active() {
			p.release()
			continue
		}
		kept = append(kept, p)
	}
	r.presenters = kept
	return fatal
}

func (r *Runtime) mainPresenter() *Presenter {
	for _, p := range r.presenters {
		if p.main {
			return p
		}
	}
	return nil
}

// Post queues fn to run on the render goroutine at the start of the next
// iteration. Safe for concurrent use.
func (r *Runtime) Post(fn func(*Runtime)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posted = append(r.posted, fn)
}

func (r *Runtime) runPosted() {
	r.mu.Lock()
	fns := r.posted
	r.posted = nil
	r.mu.Unlock()
	for _, fn := range fns {
		fn(r)
	}
}

// Status returns the exit status. Safe for concurrent use.
func (r *Runtime) Status() frame.Status { return r.life.Status() }

// SetStatus changes the exit status and wakes every goroutine blocked on
// the frame channel or pacer. Safe for concurrent use.
func (r *Runtime) SetStatus(s frame.Status) {
	r.life.Set(s)
	r.channel.Wake()
	r.pacer.Wake()
}

// SendChain publishes a frame's command buffer. offset is where the
// commands start within data. Producer goroutine only.
func (r *Runtime) SendChain(data []byte, offset uint32) error {
	return r.channel.Publish(data, offset)
}

// SyncPath records how long the simulation took since the last frame was
// consumed, then blocks until the render goroutine has consumed the
// pending frame. Producer goroutine only.
func (r *Runtime) SyncPath(ctx context.Context) bool {
	if at := r.consumedAt.Load(); at != 0 {
		r.pacer.RecordSimulationDuration(time.Since(time.Unix(0, at)))
	}
	return r.channel.WaitForIdle(ctx)
}

// Vsync blocks until a frame is presented after the one that consumed the
// latest command buffer and returns its parity. Producer goroutine only.
func (r *Runtime) Vsync(ctx context.Context) uint32 {
	return r.pacer.Vsync(ctx)
}

// Channel returns the frame channel.
func (r *Runtime) Channel() *frame.Channel { return r.channel }

// Pacer returns the frame pacer.
func (r *Runtime) Pacer() *frame.Pacer { return r.pacer }

// Backend returns the windowing backend, or nil before Init.
func (r *Runtime) Backend() backend.Backend { return r.backend }

// Main returns the main display, or nil.
func (r *Runtime) Main() *display.Display { return r.displays.Main() }

// Displays returns every open display, main first.
func (r *Runtime) Displays() []*display.Display { return r.displays.Displays() }

// Settings returns a copy of the current settings.
func (r *Runtime) Settings() Settings { return r.settings }

// SetGameResolution changes the resolution the game renders at.
func (r *Runtime) SetGameResolution(w, h int) {
	r.settings.GameWidth, r.settings.GameHeight = w, h
}

// SetLetterbox changes the size of the window region showing the game.
func (r *Runtime) SetLetterbox(w, h int) {
	r.settings.LetterboxWidth, r.settings.LetterboxHeight = w, h
}

// SetMSAA changes the requested sample count.
func (r *Runtime) SetMSAA(samples int) { r.settings.MSAASamples = samples }

// SetVsync changes the vsync setting. It is applied after the next present.
func (r *Runtime) SetVsync(enabled bool) { r.settings.VsyncEnabled = enabled }

// SetFrameRate changes the frame limiter target.
func (r *Runtime) SetFrameRate(fps int) { r.settings.TargetFPS = fps }

// SetFrameLimiter enables or disables the frame limiter.
func (r *Runtime) SetFrameLimiter(enabled bool) { r.settings.FrameLimiterEnabled = enabled }

// SetOverlayVisible shows or hides the statistics overlay.
func (r *Runtime) SetOverlayVisible(visible bool) { r.settings.DebugOverlay = visible }

// SetFullscreen requests a display mode for the main display. The change
// is applied by a later iteration.
func (r *Runtime) SetFullscreen(mode display.Mode, monitor int) error {
	d := r.displays.Main()
	if d == nil {
		return ErrNoDisplay
	}
	d.SetFullscreen(mode, monitor)
	return nil
}

// SetWindowSize resizes the main window.
func (r *Runtime) SetWindowSize(w, h int) error {
	d := r.displays.Main()
	if d == nil {
		return ErrNoDisplay
	}
	return d.SetSize(w, h)
}

// SetWindowLock toggles whether the user can resize the main window.
func (r *Runtime) SetWindowLock(locked bool) error {
	d := r.displays.Main()
	if d == nil {
		return ErrNoDisplay
	}
	d.SetLock(locked)
	return nil
}

// RequestScreenshot captures the next rendered frame. Safe for concurrent
// use; a later request replaces one not yet taken.
func (r *Runtime) RequestScreenshot(req ScreenshotRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shot = &req
}

// takeScreenshot returns and clears the pending screenshot request.
func (r *Runtime) takeScreenshot() (ScreenshotRequest, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.shot == nil {
		return ScreenshotRequest{}, false
	}
	req := *r.shot
	r.shot = nil
	return req, true
}
