// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command presentdemo runs a small simulation on its own goroutine and
// presents its frames through the presentation loop.
//
// The simulation bounces a few boxes around the game area and publishes
// each frame as a list of rectangles. Any registered backend can show it:
//
//	presentdemo -backend headless -frames 120 -screenshot demo
//	presentdemo -backend terminal -res 160x90 -msaa 1
//	presentdemo -backend desktop -fullscreen borderless
package main

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/image/draw"

	"github.com/gogpu/present"
	"github.com/gogpu/present/backend"
	_ "github.com/gogpu/present/backend/desktop"
	"github.com/gogpu/present/backend/headless"
	_ "github.com/gogpu/present/backend/terminal"
	"github.com/gogpu/present/display"
	"github.com/gogpu/present/frame"
)

func main() {
	var (
		backendName = flag.String("backend", "", "windowing backend (desktop, terminal, headless); empty picks the best available")
		res         = flag.String("res", "640x480", "game resolution WxH")
		letterbox   = flag.String("letterbox", "", "letterbox size WxH (default: game resolution)")
		msaa        = flag.Int("msaa", 4, "MSAA sample count")
		vsync       = flag.Bool("vsync", true, "wait for vertical sync")
		fps         = flag.Int("fps", 60, "frame limiter target when vsync is off")
		mode        = flag.String("fullscreen", "windowed", "display mode (windowed, fullscreen, borderless)")
		monitor     = flag.Int("monitor", 0, "monitor index for fullscreen modes")
		gpu         = flag.String("gpu", "", "headless only: allocate targets on a GPU API (noop, vulkan)")
		dump        = flag.String("dump", "", "write every published command chain to this file")
		shot        = flag.String("screenshot", "", "capture the first frame under screenshots/NAME.png")
		frames      = flag.Int("frames", 0, "exit after this many frames (0 = run until closed)")
		overlay     = flag.Bool("overlay", false, "show the statistics overlay")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	present.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	gw, gh, err := parseSize(*res)
	if err != nil {
		log.Fatalf("-res: %v", err)
	}
	lw, lh := gw, gh
	if *letterbox != "" {
		if lw, lh, err = parseSize(*letterbox); err != nil {
			log.Fatalf("-letterbox: %v", err)
		}
	}
	dm, err := display.ParseMode(*mode)
	if err != nil {
		log.Fatalf("-fullscreen: %v", err)
	}

	opts := []present.Option{
		present.WithTitle("presentdemo"),
		present.WithGameResolution(gw, gh),
		present.WithLetterbox(lw, lh),
		present.WithMSAA(*msaa),
		present.WithVsync(*vsync),
		present.WithTargetFPS(*fps),
		present.WithOverlay(*overlay),
		present.WithInterpreter(rectInterpreter{}),
	}
	switch {
	case *gpu != "":
		opts = append(opts, present.WithBackendInstance(headless.New(headless.WithGPU(*gpu))))
	case *backendName != "":
		opts = append(opts, present.WithBackend(*backendName))
	}
	if *dump != "" {
		f, err := os.Create(*dump)
		if err != nil {
			log.Fatalf("-dump: %v", err)
		}
		defer f.Close()
		opts = append(opts, present.WithChainDump(f))
	}

	rt := present.New(opts...)
	if err := rt.Init(); err != nil {
		log.Fatalf("init: %v (available backends: %v)", err, backend.Available())
	}
	defer func() { _ = rt.Exit() }()

	if dm != display.Windowed {
		if err := rt.SetFullscreen(dm, *monitor); err != nil {
			log.Fatalf("fullscreen: %v", err)
		}
	}
	if *shot != "" {
		rt.RequestScreenshot(present.ScreenshotRequest{Name: *shot})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sim := newSimulation(gw, gh)
	if err := rt.Run(ctx, func(ctx context.Context) error {
		return sim.run(ctx, rt, *frames)
	}); err != nil {
		log.Printf("run: %v", err)
		return
	}
	log.Printf("exit status %s after %d frames", rt.Status(), rt.Channel().Index())
}

func parseSize(s string) (w, h int, err error) {
	if _, err := fmt.Sscanf(s, "%dx%d", &w, &h); err != nil {
		return 0, 0, fmt.Errorf("%q is not WxH", s)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("%q: size must be positive", s)
	}
	return w, h, nil
}

// rectSize is the encoded size of one rectangle: x, y, w, h as
// little-endian uint16 followed by RGBA.
const rectSize = 12

type rect struct {
	r image.Rectangle
	c color.RGBA
}

func appendRect(buf []byte, r rect) []byte {
	buf = binary.LittleEndian.AppendUint16(buf, uint16(r.r.Min.X))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(r.r.Min.Y))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(r.r.Dx()))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(r.r.Dy()))
	return append(buf, r.c.R, r.c.G, r.c.B, r.c.A)
}

// rectInterpreter draws rectangles in game coordinates into the viewport.
type rectInterpreter struct{}

func (rectInterpreter) Execute(_ context.Context, dc present.DrawContext) error {
	cmds := dc.Commands
	if len(cmds)%rectSize != 0 {
		return fmt.Errorf("command stream of %d bytes is not a list of rectangles", len(cmds))
	}
	img := dc.Target.Image()
	for ; len(cmds) > 0; cmds = cmds[rectSize:] {
		x := int(binary.LittleEndian.Uint16(cmds[0:]))
		y := int(binary.LittleEndian.Uint16(cmds[2:]))
		w := int(binary.LittleEndian.Uint16(cmds[4:]))
		h := int(binary.LittleEndian.Uint16(cmds[6:]))
		c := color.RGBA{R: cmds[8], G: cmds[9], B: cmds[10], A: cmds[11]}
		if img == nil {
			// GPU targets only support clears; the first rectangle is
			// the background.
			return dc.Device.Clear(dc.Target, c)
		}
		r := image.Rect(x, y, x+w, y+h).Add(dc.Viewport.Min).Intersect(dc.Viewport)
		draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Over)
	}
	return nil
}

type box struct {
	x, y, dx, dy, size int
	c                  color.RGBA
}

type simulation struct {
	w, h  int
	boxes []box
	buf   []byte
}

func newSimulation(w, h int) *simulation {
	s := &simulation{w: w, h: h}
	size := max(min(w, h)/8, 2)
	colors := []color.RGBA{
		{R: 230, G: 80, B: 60, A: 255},
		{R: 70, G: 200, B: 90, A: 255},
		{R: 60, G: 120, B: 230, A: 220},
	}
	for i, c := range colors {
		s.boxes = append(s.boxes, box{
			x: (i + 1) * w / 5, y: (i + 1) * h / 5,
			dx: 2 + i, dy: 3 - i/2,
			size: size,
			c:    c,
		})
	}
	return s
}

func (s *simulation) step() {
	for i := range s.boxes {
		b := &s.boxes[i]
		b.x += b.dx
		b.y += b.dy
		if b.x < 0 || b.x+b.size > s.w {
			b.dx = -b.dx
			b.x = min(max(b.x, 0), s.w-b.size)
		}
		if b.y < 0 || b.y+b.size > s.h {
			b.dy = -b.dy
			b.y = min(max(b.y, 0), s.h-b.size)
		}
	}
}

// encode writes the frame as rectangles into the reused buffer.
func (s *simulation) encode() []byte {
	buf := appendRect(s.buf[:0], rect{r: image.Rect(0, 0, s.w, s.h), c: color.RGBA{R: 20, G: 24, B: 40, A: 255}})
	for _, b := range s.boxes {
		buf = appendRect(buf, rect{r: image.Rect(b.x, b.y, b.x+b.size, b.y+b.size), c: b.c})
	}
	s.buf = buf
	return buf
}

// run is the producer: simulate, wait for the previous frame to be taken,
// publish, then wait for it to reach the screen.
func (s *simulation) run(ctx context.Context, rt *present.Runtime, frames int) error {
	for n := 0; frames <= 0 || n < frames; n++ {
		s.step()
		if !rt.SyncPath(ctx) {
			return nil
		}
		if err := rt.SendChain(s.encode(), 0); err != nil {
			return err
		}
		rt.Vsync(ctx)
		if rt.Status() != frame.Running {
			return nil
		}
	}
	if !rt.SyncPath(ctx) {
		return nil
	}
	rt.SetStatus(frame.Exit)
	return nil
}
