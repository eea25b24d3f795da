// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package present

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/gogpu/present/target"
)

// DrawContext is what an Interpreter draws a frame into.
type DrawContext struct {
	// Index is the number of frames consumed before this one.
	Index uint64

	// Commands is the command stream, starting at the published offset.
	// It is valid only during Execute.
	Commands []byte

	// Target receives the drawing. Its Image is nil for GPU targets.
	Target *target.RenderTarget

	// Viewport is the region of Target the frame covers.
	Viewport image.Rectangle

	// Device is the device Target was allocated from.
	Device target.Device
}

// Interpreter decodes a command stream and draws it. It runs on the
// render goroutine. An error is logged and the frame is still presented.
type Interpreter interface {
	Execute(ctx context.Context, dc DrawContext) error
}

// InterpreterFunc adapts a function to Interpreter.
type InterpreterFunc func(ctx context.Context, dc DrawContext) error

// Execute calls f.
func (f InterpreterFunc) Execute(ctx context.Context, dc DrawContext) error { return f(ctx, dc) }

// NopInterpreter ignores the command stream.
type NopInterpreter struct{}

// Execute does nothing.
func (NopInterpreter) Execute(context.Context, DrawContext) error { return nil }

var clearColor = color.RGBA{}

// request builds the target request for the next frame from the settings,
// or from the screenshot when one is being taken.
func (p *Presenter) request(shot *ScreenshotRequest) target.Request {
	s := p.rt.settings
	w, h := s.gameResolution()
	req := target.Request{
		Width:       w,
		Height:      h,
		SampleCount: s.MSAASamples,
		Letterbox:   s.letterbox(),
	}
	if shot != nil {
		if shot.Width > 0 && shot.Height > 0 {
			req.Width, req.Height = shot.Width, shot.Height
		}
		if shot.Samples > 0 {
			req.SampleCount = shot.Samples
		}
		req.Letterbox = image.Pt(req.Width, req.Height)
	}
	req.SampleCount = clampSamples(req.SampleCount, p.resolver.Device().MaxSamples())
	return req
}

// renderGameFrame waits for the next command buffer and renders it. It
// reports whether a frame was rendered. The returned error is fatal.
func (p *Presenter) renderGameFrame(ctx context.Context) (bool, error) {
	rt := p.rt
	if !rt.channel.WaitForFrame(ctx, rt.settings.FrameWaitTimeout) {
		return false, nil
	}
	slot, ok := rt.channel.Frame()
	if !ok {
		return false, nil
	}
	rt.pacer.MarkInputConsumed()

	// The slot is released whatever happens to the frame, so the producer
	// never stays blocked on it.
	defer func() {
		if err := rt.channel.MarkConsumed(); err == nil {
			rt.consumedAt.Store(time.Now().UnixNano())
		}
	}()

	var shot *ScreenshotRequest
	if req, ok := rt.takeScreenshot(); ok {
		shot = &req
	}

	sel, err := p.resolver.Resolve(p.win.Surface(), p.request(shot))
	if err != nil {
		return false, err
	}
	p.sel = sel
	dev := p.resolver.Device()
	log := Logger()

	if err := dev.Clear(sel.Render, clearColor); err != nil {
		log.Warn("present: clear failed", "target", sel.Render.String(), "error", err)
	}
	if !sel.Direct() {
		if err := dev.Clear(sel.Window, clearColor); err != nil {
			log.Warn("present: clear failed", "target", sel.Window.String(), "error", err)
		}
	}
	log.Debug("present: frame", "index", slot.Index, "viewport", sel.Viewport, "direct", sel.Direct())

	dc := DrawContext{
		Index:    slot.Index,
		Commands: slot.Data[slot.Offset:],
		Target:   sel.Render,
		Viewport: sel.Viewport,
		Device:   dev,
	}
	if err := rt.opts.interp.Execute(ctx, dc); err != nil {
		log.Error("present: draw failed", "index", slot.Index, "error", err)
	}

	if sel.Resolve != nil {
		if err := dev.Resolve(sel.Render, sel.Resolve); err != nil {
			log.Error("present: resolve failed", "error", err)
		}
	}

	if shot != nil {
		if err := p.saveScreenshot(*shot, sel.Final()); err != nil {
			log.Error("present: screenshot failed", "name", shot.Name, "error", err)
		}
	}

	if !sel.Direct() {
		if err := dev.Blit(sel.Final(), sel.Window, sel.Present); err != nil {
			log.Error("present: blit failed", "error", err)
		}
	}
	return true, nil
}

// saveScreenshot reads back the finished frame and hands it to the
// screenshot writer.
func (p *Presenter) saveScreenshot(req ScreenshotRequest, src *target.RenderTarget) error {
	rb, err := p.resolver.Device().ReadPixels(src)
	if err != nil {
		return fmt.Errorf("read back %s: %w", src, err)
	}
	img := target.Finish(rb)
	path, err := p.rt.opts.writer.WriteScreenshot(screenshotName(req.Name), img)
	if err != nil {
		return err
	}
	Logger().Info("present: screenshot saved", "path", path, "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return nil
}
