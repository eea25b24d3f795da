// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package present

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/present/display"
	"github.com/gogpu/present/target"
)

// Stats is the diagnostic snapshot handed to an Overlay.
type Stats struct {
	// Presented is the number of frames this display presented.
	Presented uint64

	// Consumed is the number of command buffers consumed.
	Consumed uint64

	// Simulation is the last measured simulation time per frame.
	Simulation time.Duration

	// Selection is the target choice of the last rendered frame.
	Selection target.Selection

	// Resolver counts target rebuilds.
	Resolver target.Stats

	Mode    display.Mode
	Monitor int
	Backend string
}

// Lines formats s as overlay text.
func (s Stats) Lines() []string {
	path := "offscreen"
	if s.Selection.Direct() {
		path = "direct"
	}
	return []string{
		fmt.Sprintf("frame %d  consumed %d", s.Presented, s.Consumed),
		fmt.Sprintf("sim %.2fms", float64(s.Simulation.Microseconds())/1000),
		fmt.Sprintf("%s: %s", path, s.Selection.Render),
		fmt.Sprintf("resolve: %s", s.Selection.Resolve),
		fmt.Sprintf("rebuilds %d  allocs %d", s.Resolver.Resolutions, s.Resolver.Allocations),
		fmt.Sprintf("%s on %d (%s)", s.Mode, s.Monitor, s.Backend),
	}
}

// Overlay draws diagnostics on top of the window surface before present.
type Overlay interface {
	Draw(dst *image.RGBA, s Stats)
}

// StatsOverlay prints Stats in the top-left corner over a dark box.
type StatsOverlay struct {
	// Face defaults to basicfont.Face7x13.
	Face font.Face

	// Color defaults to white.
	Color color.Color
}

var overlayBackground = image.NewUniform(color.RGBA{A: 0xC0})

// Draw renders s onto dst.
func (o *StatsOverlay) Draw(dst *image.RGBA, s Stats) {
	face := o.Face
	if face == nil {
		face = basicfont.Face7x13
	}
	col := o.Color
	if col == nil {
		col = color.White
	}

	lines := s.Lines()
	m := face.Metrics()
	lineH := m.Height.Ceil()
	width := 0
	for _, l := range lines {
		width = max(width, font.MeasureString(face, l).Ceil())
	}
	const pad = 4
	box := image.Rect(0, 0, width+2*pad, len(lines)*lineH+2*pad).Intersect(dst.Bounds())
	draw.Draw(dst, box, overlayBackground, image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
	}
	for i, l := range lines {
		d.Dot = fixed.P(pad, pad+i*lineH+m.Ascent.Ceil())
		d.DrawString(l)
	}
}

// stats collects the overlay snapshot.
func (p *Presenter) stats() Stats {
	s := Stats{
		Presented:  p.frames,
		Consumed:   p.rt.channel.Index(),
		Simulation: p.rt.pacer.SimulationDuration(),
		Selection:  p.sel,
		Resolver:   p.resolver.Stats(),
		Mode:       p.disp.Mode(),
		Monitor:    p.disp.Monitor(),
	}
	if b := p.rt.backend; b != nil {
		s.Backend = b.Name()
	}
	return s
}
