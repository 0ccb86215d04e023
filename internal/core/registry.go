// Package core holds the multiton registry: one Facade, with its Model, View
// and Controller, per key.
package core

import (
	"fmt"
	"sort"
	"sync"

	"github.com/zjrosen/mvc/internal/facade"
	"github.com/zjrosen/mvc/internal/log"
	"github.com/zjrosen/mvc/internal/metrics"
)

// Registry owns the cores of an application. Its methods are safe for
// concurrent use; dispatch inside a core is not.
type Registry struct {
	mu      sync.RWMutex
	cores   map[string]*facade.Facade
	closing map[string]chan struct{}
	opts    []facade.Option
	metrics *metrics.Metrics
}

// Option configures a Registry.
type Option func(*Registry)

// WithFacadeOptions applies opts to every Facade the Registry creates.
func WithFacadeOptions(opts ...facade.Option) Option {
	return func(r *Registry) {
		r.opts = append(r.opts, opts...)
	}
}

// WithMetrics records the core count in m and passes m to every Facade.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
		r.opts = append(r.opts, facade.WithMetrics(m))
	}
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		cores:   make(map[string]*facade.Facade),
		closing: make(map[string]chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create builds the core for key. It fails with ErrKeyClosing while the
// previous core for key is being torn down, and with ErrDuplicateKey if key
// is in use.
func (r *Registry) Create(key string) (*facade.Facade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, closing := r.closing[key]; closing {
		return nil, fmt.Errorf("%w: %q", ErrKeyClosing, key)
	}
	if _, exists := r.cores[key]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateKey, key)
	}
	return r.createLocked(key), nil
}

// Instance returns the core for key, creating it on first use. While the
// core for key is being torn down, Instance waits for the teardown to finish
// and returns a fresh core, so teardown hooks must not call it for their own key.
func (r *Registry) Instance(key string) *facade.Facade {
	for {
		r.mu.RLock()
		f, ok := r.cores[key]
		done, closing := r.closing[key]
		r.mu.RUnlock()
		if closing {
			<-done
			continue
		}
		if ok {
			return f
		}

		r.mu.Lock()
		if done, closing := r.closing[key]; closing {
			r.mu.Unlock()
			<-done
			continue
		}
		f, ok = r.cores[key]
		if !ok {
			f = r.createLocked(key)
		}
		r.mu.Unlock()
		return f
	}
}

func (r *Registry) createLocked(key string) *facade.Facade {
	f := facade.New(key, r.opts...)
	r.cores[key] = f
	r.metrics.SetCores(len(r.cores))

	log.Info(log.CatCore, "core created", "key", key, "cores", len(r.cores))
	return f
}

// Get returns the core for key.
func (r *Registry) Get(key string) (*facade.Facade, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.cores[key]
	return f, ok
}

// Has reports whether a core exists for key. A core being torn down still exists.
func (r *Registry) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.cores[key]
	return ok
}

// Keys returns the keys of all cores, sorted.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.cores))
	for key := range r.cores {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of cores.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cores)
}

// Remove tears down the core for key: commands, then mediators, then
// proxies, then the event bus. The key stays registered, and cannot be
// created again, until teardown has finished; it is free for reuse once
// Remove returns. Unknown keys and keys already being removed are ignored.
func (r *Registry) Remove(key string) {
	r.mu.Lock()
	f, ok := r.cores[key]
	if _, closing := r.closing[key]; !ok || closing {
		r.mu.Unlock()
		return
	}
	done := make(chan struct{})
	r.closing[key] = done
	r.mu.Unlock()

	// Teardown hooks run unlocked so they may use the Registry.
	defer r.release(key, done)
	f.Close()
}

// release frees key once its core is torn down and wakes Instance calls
// waiting on it.
func (r *Registry) release(key string, done chan struct{}) {
	r.mu.Lock()
	delete(r.cores, key)
	delete(r.closing, key)
	count := len(r.cores)
	r.mu.Unlock()
	close(done)

	r.metrics.SetCores(count)
	log.Info(log.CatCore, "core removed", "key", key, "cores", count)
}

// Close removes every core.
func (r *Registry) Close() {
	for _, key := range r.Keys() {
		r.Remove(key)
	}
}

// Snapshot returns the inventory of every core, ordered by key.
func (r *Registry) Snapshot() []facade.Inventory {
	r.mu.RLock()
	cores := make([]*facade.Facade, 0, len(r.cores))
	for _, f := range r.cores {
		cores = append(cores, f)
	}
	r.mu.RUnlock()

	sort.Slice(cores, func(i, j int) bool { return cores[i].Key() < cores[j].Key() })

	out := make([]facade.Inventory, 0, len(cores))
	for _, f := range cores {
		out = append(out, f.Snapshot())
	}
	return out
}
