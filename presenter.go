// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package present

import (
	"context"

	"github.com/gogpu/present/backend"
	"github.com/gogpu/present/display"
	"github.com/gogpu/present/frame"
	"github.com/gogpu/present/target"
)

// Presenter runs the presentation loop for one display. The main display's
// presenter renders game frames; the others only present their window and
// apply mode changes.
type Presenter struct {
	rt       *Runtime
	disp     *display.Display
	win      backend.Window
	resolver *target.Resolver
	main     bool

	vsync   bool
	limiter frame.Limiter
	sel     target.Selection
	frames  uint64
}

func newPresenter(rt *Runtime, d *display.Display, win backend.Window, main bool) *Presenter {
	return &Presenter{
		rt:       rt,
		disp:     d,
		win:      win,
		resolver: target.NewResolver(win.Device()),
		main:     main,
		vsync:    rt.settings.VsyncEnabled,
	}
}

// Display returns the presenter's display.
func (p *Presenter) Display() *display.Display { return p.disp }

// Selection returns the targets the last game frame was rendered with.
func (p *Presenter) Selection() target.Selection { return p.sel }

// Iterate runs one loop iteration:
//
//  1. poll window events
//  2. render the pending game frame, if any (main display only)
//  3. draw the overlay
//  4. present
//  5. re-apply vsync if the setting changed, or hold the frame limiter
//  6. apply a pending display mode change unless minimized
//  7. handle a user close request
//
// Allocation failures are returned as *FatalError. Everything else is
// logged and the loop goes on.
func (p *Presenter) Iterate(ctx context.Context) error {
	log := Logger()
	s := &p.rt.settings

	p.win.PollEvents()

	if p.main {
		if _, err := p.renderGameFrame(ctx); err != nil {
			return &FatalError{Display: p.disp.Title(), Err: err}
		}
	}

	if s.DebugOverlay {
		if img := p.win.Surface().Image(); img != nil {
			p.rt.opts.overlay.Draw(img, p.stats())
		}
	}

	if err := p.win.Present(); err != nil {
		log.Warn("present: present failed", "title", p.disp.Title(), "error", err)
	}
	p.frames++
	if p.main {
		p.rt.pacer.SignalFrameComplete()
	}

	if s.VsyncEnabled != p.vsync {
		p.vsync = s.VsyncEnabled
		p.win.SetVsync(p.vsync)
		p.limiter.Reset()
		log.Info("present: vsync changed", "enabled", p.vsync)
	}
	if !p.vsync && s.FrameLimiterEnabled {
		p.limiter.Wait(ctx, float64(s.TargetFPS))
	}

	if _, err := p.disp.Update(); err != nil {
		log.Error("present: display mode change failed", "title", p.disp.Title(), "error", err)
	}

	if p.win.ShouldClose() {
		if p.main {
			log.Info("present: main window closed")
			p.rt.SetStatus(frame.Exit)
		} else {
			_ = p.rt.displays.Kill(p.disp)
		}
	}
	return nil
}

// release frees the presenter's offscreen targets.
func (p *Presenter) release() {
	p.resolver.Release()
	p.sel = target.Selection{}
}
