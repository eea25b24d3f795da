// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package present

import (
	"image"
	"io"
	"time"

	"github.com/gogpu/present/backend"
	"github.com/gogpu/present/frame"
)

// Fallback game resolution used when the configured one is not positive.
const (
	FallbackGameWidth  = 640
	FallbackGameHeight = 480
)

// Settings are the graphics settings the presentation loop reads once per
// iteration. They are changed through Runtime setters on the render
// goroutine only.
type Settings struct {
	// Title is the main window title.
	Title string

	// GameWidth and GameHeight are the resolution the game renders at.
	GameWidth  int
	GameHeight int

	// LetterboxWidth and LetterboxHeight are the size of the window region
	// that shows the game.
	LetterboxWidth  int
	LetterboxHeight int

	// MSAASamples is the requested sample count. It is clamped to the
	// device maximum.
	MSAASamples int

	VsyncEnabled bool

	// TargetFPS is held by the frame limiter when vsync is off.
	TargetFPS           int
	FrameLimiterEnabled bool

	// FrameWaitTimeout bounds the render goroutine's wait for a frame.
	FrameWaitTimeout time.Duration

	// DebugOverlay shows the statistics overlay.
	DebugOverlay bool

	// Backend names the windowing backend. Empty picks the best available.
	Backend string
}

// DefaultSettings returns the settings a new Runtime starts with.
func DefaultSettings() Settings {
	return Settings{
		Title:               "present",
		GameWidth:           640,
		GameHeight:          480,
		LetterboxWidth:      640,
		LetterboxHeight:     480,
		MSAASamples:         4,
		VsyncEnabled:        true,
		TargetFPS:           60,
		FrameLimiterEnabled: true,
		FrameWaitTimeout:    frame.DefaultWaitTimeout,
	}
}

// gameResolution returns the game resolution with the fallback applied.
// The target resolver never sees a non-positive size.
func (s Settings) gameResolution() (w, h int) {
	if s.GameWidth <= 0 || s.GameHeight <= 0 {
		return FallbackGameWidth, FallbackGameHeight
	}
	return s.GameWidth, s.GameHeight
}

func (s Settings) letterbox() image.Point {
	return image.Pt(s.LetterboxWidth, s.LetterboxHeight)
}

// clampSamples limits n to [1, limit].
func clampSamples(n, limit int) int {
	if limit > 0 && n > limit {
		n = limit
	}
	return max(n, 1)
}

// Option configures a Runtime during creation.
// Use functional options to customize Runtime behavior.
//
// Example:
//
//	// Defaults: best backend, 640x480, 4x MSAA, vsync
//	rt := present.New()
//
//	// Headless at 320x240 without multisampling
//	rt := present.New(present.WithBackend("headless"),
//		present.WithGameResolution(320, 240), present.WithMSAA(1))
type Option func(*options)

// options holds the Runtime configuration.
type options struct {
	settings    Settings
	backend     backend.Backend
	interp      Interpreter
	writer      ScreenshotWriter
	overlay     Overlay
	channelOpts []frame.ChannelOption
}

// defaultOptions returns the default runtime options.
func defaultOptions() options {
	return options{
		settings: DefaultSettings(),
		interp:   NopInterpreter{},
		writer:   PNGWriter{Dir: "."},
		overlay:  &StatsOverlay{},
	}
}

// WithTitle sets the main window title.
func WithTitle(title string) Option {
	return func(o *options) {
		o.settings.Title = title
	}
}

// WithGameResolution sets the resolution the game renders at.
func WithGameResolution(w, h int) Option {
	return func(o *options) {
		o.settings.GameWidth, o.settings.GameHeight = w, h
	}
}

// WithLetterbox sets the size of the window region showing the game.
func WithLetterbox(w, h int) Option {
	return func(o *options) {
		o.settings.LetterboxWidth, o.settings.LetterboxHeight = w, h
	}
}

// WithMSAA sets the requested sample count.
func WithMSAA(samples int) Option {
	return func(o *options) {
		o.settings.MSAASamples = samples
	}
}

// WithVsync enables or disables vsync.
func WithVsync(enabled bool) Option {
	return func(o *options) {
		o.settings.VsyncEnabled = enabled
	}
}

// WithTargetFPS sets the frame rate the limiter holds without vsync.
func WithTargetFPS(fps int) Option {
	return func(o *options) {
		o.settings.TargetFPS = fps
	}
}

// WithFrameLimiter enables or disables the frame limiter.
func WithFrameLimiter(enabled bool) Option {
	return func(o *options) {
		o.settings.FrameLimiterEnabled = enabled
	}
}

// WithFrameTimeout bounds the render goroutine's wait for a frame.
func WithFrameTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.settings.FrameWaitTimeout = d
		}
	}
}

// WithBackend selects the windowing backend by registered name.
func WithBackend(name string) Option {
	return func(o *options) {
		o.settings.Backend = name
	}
}

// WithBackendInstance uses b instead of a registered backend. Init calls
// b.Init and Exit calls b.Close.
func WithBackendInstance(b backend.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithOverlay shows the statistics overlay from the start.
func WithOverlay(visible bool) Option {
	return func(o *options) {
		o.settings.DebugOverlay = visible
	}
}

// WithOverlayRenderer replaces the statistics overlay.
func WithOverlayRenderer(ov Overlay) Option {
	return func(o *options) {
		if ov != nil {
			o.overlay = ov
		}
	}
}

// WithInterpreter sets the draw-command interpreter.
func WithInterpreter(i Interpreter) Option {
	return func(o *options) {
		if i != nil {
			o.interp = i
		}
	}
}

// WithScreenshotWriter sets where screenshots are written.
func WithScreenshotWriter(w ScreenshotWriter) Option {
	return func(o *options) {
		if w != nil {
			o.writer = w
		}
	}
}

// WithChainDump mirrors every published frame to w in the frame dump
// format.
func WithChainDump(w io.Writer) Option {
	return func(o *options) {
		o.channelOpts = append(o.channelOpts, frame.WithDump(w))
	}
}
