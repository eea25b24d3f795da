// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package present

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ScreenshotRequest asks for the next rendered frame to be captured.
type ScreenshotRequest struct {
	// Name is the file name. ".png" is appended when missing. Empty
	// names get a timestamp.
	Name string

	// Width and Height override the game resolution for the captured
	// frame. Zero keeps the current resolution.
	Width  int
	Height int

	// Samples overrides the MSAA sample count. Zero keeps the current one.
	Samples int
}

// ScreenshotWriter stores a finished screenshot and returns where it went.
type ScreenshotWriter interface {
	WriteScreenshot(name string, img *image.RGBA) (string, error)
}

// PNGWriter writes screenshots as PNG files under Dir/screenshots.
type PNGWriter struct {
	Dir string
}

// WriteScreenshot encodes img to Dir/screenshots/name, creating the
// directory if needed.
func (w PNGWriter) WriteScreenshot(name string, img *image.RGBA) (string, error) {
	dir := filepath.Join(w.Dir, "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	path := filepath.Join(dir, filepath.Base(name))
	f, err := os.Create(path) //nolint:gosec // path is built from the caller's directory
	if err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("screenshot: encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	return path, nil
}

// screenshotName makes sure name is non-empty and ends in ".png".
func screenshotName(name string) string {
	if name == "" {
		name = "screenshot-" + time.Now().Format("20060102-150405")
	}
	if !strings.HasSuffix(name, ".png") {
		name += ".png"
	}
	return name
}
