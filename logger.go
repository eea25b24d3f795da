// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package present

import (
	"log/slog"

	"github.com/gogpu/present/internal/logging"
)

// SetLogger configures the logger for present and all its sub-packages.
// By default, present produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by present:
//   - [slog.LevelDebug]: per-frame diagnostics (frame wait timeouts, viewports)
//   - [slog.LevelInfo]: lifecycle events (backend selected, targets rebuilt, mode applied)
//   - [slog.LevelWarn]: non-fatal issues (display already exists, backend fallback)
//   - [slog.LevelError]: protocol violations and allocation failures
//
// Example:
//
//	// Enable info-level logging to stderr:
//	present.SetLogger(slog.Default())
//
//	// Enable debug-level logging for full diagnostics:
//	present.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger used by present.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logging.Logger()
}
