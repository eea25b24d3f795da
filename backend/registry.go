// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/present/internal/logging"
)

// BackendFactory creates a new backend instance.
type BackendFactory func() Backend

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]BackendFactory)
	// Priority order for backend selection (first available wins).
	// Desktop > Terminal > Headless (Headless is the fallback).
	backendPriority = []string{BackendDesktop, BackendTerminal, BackendHeadless}
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it will be replaced.
func Register(name string, factory BackendFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns the registered backend names, sorted.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Get returns a backend instance by name.
// Returns nil if the backend is not registered.
func Get(name string) Backend {
	registryMu.RLock()
	defer registryMu.RUnlock()

	factory, ok := backends[name]
	if !ok {
		return nil
	}
	return factory()
}

// candidates returns factories in priority order, then the rest by name.
func candidates() []BackendFactory {
	registryMu.RLock()
	defer registryMu.RUnlock()

	seen := make(map[string]bool, len(backends))
	out := make([]BackendFactory, 0, len(backends))
	for _, name := range backendPriority {
		if f, ok := backends[name]; ok {
			out = append(out, f)
			seen[name] = true
		}
	}
	rest := make([]string, 0, len(backends))
	for name := range backends {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		out = append(out, backends[name])
	}
	return out
}

// Default returns the best available backend based on priority.
// Priority order: desktop > terminal > headless.
// Returns nil if no backends are registered.
func Default() Backend {
	for _, f := range candidates() {
		if b := f(); b != nil {
			return b
		}
	}
	return nil
}

// Open initializes the named backend, or the best one that initializes
// successfully when name is empty.
func Open(name string) (Backend, error) {
	if name != "" {
		b := Get(name)
		if b == nil {
			return nil, fmt.Errorf("%w: %q (registered: %v)", ErrBackendNotAvailable, name, Available())
		}
		if err := b.Init(); err != nil {
			return nil, fmt.Errorf("backend %s: init: %w", name, err)
		}
		return b, nil
	}

	var errs []error
	for _, f := range candidates() {
		b := f()
		if b == nil {
			continue
		}
		if err := b.Init(); err != nil {
			logging.Logger().Warn("backend: init failed, trying next", "backend", b.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", b.Name(), err))
			continue
		}
		return b, nil
	}
	return nil, errors.Join(append([]error{ErrBackendNotAvailable}, errs...)...)
}
