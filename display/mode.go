// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package display

import (
	"fmt"
	"image"
	"strings"
)

// Mode is how a display occupies its monitor.
type Mode int

const (
	// Windowed is a decorated, movable window.
	Windowed Mode = iota

	// Fullscreen hands the monitor to the window at its current video mode.
	Fullscreen

	// Borderless is an undecorated window covering the monitor.
	Borderless
)

// String returns the lower-case mode name.
func (m Mode) String() string {
	switch m {
	case Windowed:
		return "windowed"
	case Fullscreen:
		return "fullscreen"
	case Borderless:
		return "borderless"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// FullscreenLike reports whether the mode covers a whole monitor.
func (m Mode) FullscreenLike() bool {
	return m == Fullscreen || m == Borderless
}

// ParseMode parses the names produced by String.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "windowed", "window":
		return Windowed, nil
	case "fullscreen", "full":
		return Fullscreen, nil
	case "borderless":
		return Borderless, nil
	}
	return Windowed, fmt.Errorf("display: unknown mode %q", s)
}

// Geometry is a window position and size in screen coordinates.
type Geometry struct {
	X, Y          int
	Width, Height int
}

// Rect returns the geometry as a rectangle.
func (g Geometry) Rect() image.Rectangle {
	return image.Rect(g.X, g.Y, g.X+g.Width, g.Y+g.Height)
}

// CenteredIn returns g with its size kept and its position centered in r.
func (g Geometry) CenteredIn(r image.Rectangle) Geometry {
	g.X = r.Min.X + r.Dx()/2 - g.Width/2
	g.Y = r.Min.Y + r.Dy()/2 - g.Height/2
	return g
}

// VideoMode is a monitor resolution and refresh rate.
type VideoMode struct {
	Width       int
	Height      int
	RefreshRate int
}

func (v VideoMode) String() string {
	return fmt.Sprintf("%dx%d@%d", v.Width, v.Height, v.RefreshRate)
}

// Monitor describes one connected monitor.
type Monitor struct {
	Name string

	// Origin is the monitor's top-left corner in screen coordinates.
	Origin image.Point

	// WorkArea excludes task bars and docks.
	WorkArea image.Rectangle

	// Current is the active video mode.
	Current VideoMode

	// Modes lists the supported video modes.
	Modes []VideoMode
}
