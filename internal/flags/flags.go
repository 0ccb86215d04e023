// Package flags provides feature flag support for controlled feature rollout.
// Flags are read-only after initialization and provide safe defaults for unknown flags.
package flags

import (
	"maps"
	"sort"

	"github.com/zjrosen/mvc/internal/log"
)

// Flag name constants for type-safe flag access.
const (
	// FlagDispatchSpans records a span for every notification dispatch, in
	// addition to the per-command spans.
	FlagDispatchSpans = "dispatch-spans"

	// FlagEventTap prints every core event to stderr during `mvc run`, as if
	// --events had been passed.
	FlagEventTap = "event-tap"
)

// Defaults returns the flag values used when the config sets none.
func Defaults() map[string]bool {
	return map[string]bool{
		FlagDispatchSpans: true,
		FlagEventTap:      false,
	}
}

// Registry holds feature flag state loaded from configuration.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from a config map.
// If flags is nil, an empty registry is created (all flags disabled).
func New(flags map[string]bool) *Registry {
	r := &Registry{flags: make(map[string]bool, len(flags))}
	maps.Copy(r.flags, flags)
	log.Debug(log.CatConfig, "feature flags initialized", "count", len(r.flags), "enabled", r.EnabledNames())
	return r
}

// Enabled returns true if the named flag is enabled.
// Unknown flags and a nil Registry report false.
func (r *Registry) Enabled(name string) bool {
	if r == nil {
		return false
	}
	value, exists := r.flags[name]
	if !exists {
		log.Debug(log.CatConfig, "unknown flag accessed", "flag", name)
		return false
	}
	return value
}

// EnabledNames returns the enabled flags, sorted.
func (r *Registry) EnabledNames() []string {
	if r == nil {
		return nil
	}
	var names []string
	for name, on := range r.flags {
		if on {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// All returns a copy of all flags.
func (r *Registry) All() map[string]bool {
	if r == nil {
		return make(map[string]bool)
	}
	return maps.Clone(r.flags)
}
