package api

import (
	"sync"

	"pandora-cli/internal/model"
)

// Flags routes each feature to the real backend (true) or the local mock (false).
// A feature without an override follows the global flag at the time it is read.
type Flags struct {
	mu        sync.RWMutex
	global    bool
	overrides map[string]bool
}

func NewFlags(useAPI bool) *Flags {
	return &Flags{global: useAPI, overrides: map[string]bool{}}
}

// SetMode sets the global flag and returns it.
func (f *Flags) SetMode(useAPI bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.global = useAPI
	return f.global
}

func (f *Flags) Mode() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.global
}

// SetFeatureMode overrides one feature. Unknown names are ignored; ok reports
// whether name was known.
func (f *Flags) SetFeatureMode(name string, useAPI bool) (effective bool, ok bool) {
	if !model.IsFeature(name) {
		return false, false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overrides[name] = useAPI
	return useAPI, true
}

// FeatureMode returns the effective flag for name; unknown names report false.
func (f *Flags) FeatureMode(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.featureLocked(name)
}

func (f *Flags) featureLocked(name string) bool {
	if !model.IsFeature(name) {
		return false
	}
	if v, ok := f.overrides[name]; ok {
		return v
	}
	return f.global
}

// Overridden reports whether name has an explicit override.
func (f *Flags) Overridden(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.overrides[name]
	return ok
}

// SetModes applies several overrides at once, skipping unknown names, and
// returns the resulting snapshot.
func (f *Flags) SetModes(modes map[string]bool) map[string]bool {
	f.mu.Lock()
	for name, v := range modes {
		if model.IsFeature(name) {
			f.overrides[name] = v
		}
	}
	f.mu.Unlock()
	return f.Snapshot()
}

// ResetFeature drops the override so the feature follows the global flag again.
func (f *Flags) ResetFeature(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.overrides, name)
}

// Snapshot returns the effective flag of every feature.
func (f *Flags) Snapshot() map[string]bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string]bool, len(model.Features()))
	for _, name := range model.Features() {
		out[name] = f.featureLocked(name)
	}
	return out
}
