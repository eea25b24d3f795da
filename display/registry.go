// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package display

import (
	"errors"
	"sync"

	"github.com/gogpu/present/internal/logging"
)

// Registry is the ordered list of open displays. The first display added
// is the main display; any others are secondary views of the same frame.
type Registry struct {
	mu       sync.Mutex
	displays []*Display
}

// Add appends d. The first display added becomes the main display.
func (r *Registry) Add(d *Display) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.displays = append(r.displays, d)
}

// Main returns the main display, or nil if there is none or it was closed.
func (r *Registry) Main() *Display {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.displays) == 0 || !r.displays[0].Active() {
		return nil
	}
	return r.displays[0]
}

// Displays returns a snapshot of all registered displays.
func (r *Registry) Displays() []*Display {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Display, len(r.displays))
	copy(out, r.displays)
	return out
}

// Len returns the number of registered displays.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.displays)
}

// Kill closes d and removes it. Killing the main display kills every
// other display first.
func (r *Registry) Kill(d *Display) error {
	r.mu.Lock()
	idx := -1
	for i, x := range r.displays {
		if x == d {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.mu.Unlock()
		logging.Logger().Warn("display: kill of unregistered display")
		return nil
	}

	var victims []*Display
	if idx == 0 {
		for i := len(r.displays) - 1; i >= 0; i-- {
			victims = append(victims, r.displays[i])
		}
		r.displays = nil
	} else {
		victims = []*Display{d}
		r.displays = append(r.displays[:idx], r.displays[idx+1:]...)
	}
	r.mu.Unlock()

	var errs []error
	for _, v := range victims {
		if !v.Active() {
			logging.Logger().Warn("display: kill of inactive display", "title", v.Title())
			continue
		}
		errs = append(errs, v.Close())
	}
	return errors.Join(errs...)
}

// KillAll closes every display, children before the main display.
func (r *Registry) KillAll() error {
	r.mu.Lock()
	if len(r.displays) == 0 {
		r.mu.Unlock()
		return nil
	}
	main := r.displays[0]
	r.mu.Unlock()
	return r.Kill(main)
}
