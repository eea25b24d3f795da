// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"errors"
	"slices"
	"testing"
)

type fakeBackend struct {
	name    string
	initErr error
	inits   *int
}

func (b *fakeBackend) Name() string { return b.name }

func (b *fakeBackend) Init() error {
	if b.inits != nil {
		*b.inits++
	}
	return b.initErr
}

func (b *fakeBackend) Close() {}

func (b *fakeBackend) NewWindow(WindowConfig) (Window, error) { return nil, ErrNotInitialized }

// withRegistry runs the test against an empty registry.
func withRegistry(t *testing.T) {
	t.Helper()
	registryMu.Lock()
	saved := backends
	backends = make(map[string]BackendFactory)
	registryMu.Unlock()
	t.Cleanup(func() {
		registryMu.Lock()
		backends = saved
		registryMu.Unlock()
	})
}

func register(name string, initErr error, inits *int) {
	Register(name, func() Backend {
		return &fakeBackend{name: name, initErr: initErr, inits: inits}
	})
}

func TestRegistryRegisterAndGet(t *testing.T) {
	withRegistry(t)
	register("fake", nil, nil)

	b := Get("fake")
	if b == nil {
		t.Fatal("Get(fake) returned nil")
	}
	if b.Name() != "fake" {
		t.Errorf("Get(fake).Name() = %q, want %q", b.Name(), "fake")
	}
	if Get("nonexistent") != nil {
		t.Error("Get(nonexistent) should return nil")
	}
}

func TestRegistryUnregister(t *testing.T) {
	withRegistry(t)
	register("test-backend", nil, nil)
	if !IsRegistered("test-backend") {
		t.Error("test-backend should be registered")
	}
	Unregister("test-backend")
	if IsRegistered("test-backend") {
		t.Error("test-backend should be unregistered")
	}
}

func TestRegistryAvailable(t *testing.T) {
	withRegistry(t)
	register("zeta", nil, nil)
	register(BackendHeadless, nil, nil)
	register("alpha", nil, nil)

	want := []string{"alpha", BackendHeadless, "zeta"}
	if got := Available(); !slices.Equal(got, want) {
		t.Errorf("Available() = %v, want %v", got, want)
	}
}

func TestRegistryDefaultPriority(t *testing.T) {
	withRegistry(t)
	register("custom", nil, nil)
	register(BackendHeadless, nil, nil)
	register(BackendTerminal, nil, nil)

	if b := Default(); b == nil || b.Name() != BackendTerminal {
		t.Errorf("Default() = %v, want terminal", b)
	}
	Unregister(BackendTerminal)
	Unregister(BackendHeadless)
	if b := Default(); b == nil || b.Name() != "custom" {
		t.Errorf("Default() = %v, want custom", b)
	}
}

func TestRegistryDefaultEmpty(t *testing.T) {
	withRegistry(t)
	if Default() != nil {
		t.Error("Default() on an empty registry should return nil")
	}
}

func TestOpenFallsBack(t *testing.T) {
	withRegistry(t)
	var desktopInits, headlessInits int
	register(BackendDesktop, errors.New("no display"), &desktopInits)
	register(BackendHeadless, nil, &headlessInits)

	b, err := Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if b.Name() != BackendHeadless {
		t.Errorf("Open() = %q, want headless", b.Name())
	}
	if desktopInits != 1 || headlessInits != 1 {
		t.Errorf("inits = %d/%d, want 1/1", desktopInits, headlessInits)
	}
}

func TestOpenErrors(t *testing.T) {
	withRegistry(t)
	initErr := errors.New("no tty")
	register(BackendTerminal, initErr, nil)

	if _, err := Open("missing"); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("Open(missing) err = %v, want ErrBackendNotAvailable", err)
	}
	if _, err := Open(BackendTerminal); !errors.Is(err, initErr) {
		t.Errorf("Open(terminal) err = %v, want %v", err, initErr)
	}
	_, err := Open("")
	if !errors.Is(err, ErrBackendNotAvailable) || !errors.Is(err, initErr) {
		t.Errorf("Open() err = %v, want both ErrBackendNotAvailable and init error", err)
	}
}
