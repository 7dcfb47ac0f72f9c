package theme

import (
	"log/slog"
	"sync"
)

// Variant is the visual theme selected by the dark marker.
type Variant string

const (
	VariantLight Variant = "light"
	VariantDark  Variant = "dark"
)

// Target is anything that follows the dark marker.
type Target interface {
	Name() string
	ApplyTheme(variant Variant) error
}

// Runtime holds the global dark marker and pushes every change to its targets.
// Add and Remove apply to all targets on every call, even when the marker
// already has the requested state.
type Runtime struct {
	mu      sync.Mutex
	logger  *slog.Logger
	targets []Target
	dark    bool
}

func NewRuntime(logger *slog.Logger, targets ...Target) *Runtime {
	if logger == nil {
		logger = slog.Default().With("component", "theme")
	}

	r := &Runtime{logger: logger}
	for _, target := range targets {
		r.AddTarget(target)
	}

	return r
}

func (r *Runtime) AddTarget(target Target) {
	if target == nil {
		return
	}

	r.mu.Lock()
	r.targets = append(r.targets, target)
	r.mu.Unlock()
}

// Add sets the dark marker.
func (r *Runtime) Add() {
	r.set(true)
}

// Remove clears the dark marker.
func (r *Runtime) Remove() {
	r.set(false)
}

func (r *Runtime) Dark() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.dark
}

func (r *Runtime) Variant() Variant {
	if r.Dark() {
		return VariantDark
	}

	return VariantLight
}

func (r *Runtime) set(dark bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.dark = dark
	variant := VariantLight
	if dark {
		variant = VariantDark
	}

	r.logger.Debug("applying theme", "theme", variant, "targets", len(r.targets))
	for _, target := range r.targets {
		if err := target.ApplyTheme(variant); err != nil {
			r.logger.Warn("apply theme", "target", target.Name(), "theme", variant, "error", err)
		}
	}
}
