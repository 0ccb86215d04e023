package model

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/mvc/internal/log"
)

const (
	DefaultExpiration      = 10 * time.Minute
	DefaultCleanupInterval = 30 * time.Minute
)

// Loader fetches the value for a key missing from a CacheProxy.
type Loader[V any] func(ctx context.Context, key string) (V, error)

// CacheProxyConfig configures a CacheProxy.
type CacheProxyConfig[V any] struct {
	// Expiration is the default TTL of entries. Zero uses DefaultExpiration.
	Expiration time.Duration
	// CleanupInterval controls how often expired entries are purged.
	// Zero uses DefaultCleanupInterval.
	CleanupInterval time.Duration
	// Loader enables read-through on Load. Optional.
	Loader Loader[V]
}

// CacheProxy is a proxy whose data is a TTL key/value cache of V.
// Data returns the proxy itself so commands can retrieve it by name and use
// the typed accessors.
type CacheProxy[V any] struct {
	BaseProxy
	cache  *gocache.Cache
	ttl    time.Duration
	loader Loader[V]
}

// NewCacheProxy creates a CacheProxy registered under name.
func NewCacheProxy[V any](name string, cfg CacheProxyConfig[V]) *CacheProxy[V] {
	ttl := cfg.Expiration
	if ttl == 0 {
		ttl = DefaultExpiration
	}
	cleanup := cfg.CleanupInterval
	if cleanup == 0 {
		cleanup = DefaultCleanupInterval
	}

	p := &CacheProxy[V]{
		BaseProxy: NewBaseProxy(name, nil),
		cache:     gocache.New(ttl, cleanup),
		ttl:       ttl,
		loader:    cfg.Loader,
	}
	p.data = p
	return p
}

// Get returns the cached value for key.
func (p *CacheProxy[V]) Get(key string) (V, bool) {
	var zero V

	value, found := p.cache.Get(key)
	if !found {
		return zero, false
	}

	v, ok := value.(V)
	if !ok {
		log.Error(log.CatCache, "wrong type assertion when getting value", "proxy", p.Name(), "key", key)
		return zero, false
	}
	return v, true
}

// Set stores value under key with the default TTL.
func (p *CacheProxy[V]) Set(key string, value V) {
	p.cache.Set(key, value, gocache.DefaultExpiration)
}

// SetWithTTL stores value under key with an explicit TTL.
// gocache.NoExpiration keeps the entry until it is deleted.
func (p *CacheProxy[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	p.cache.Set(key, value, ttl)
}

// Delete removes keys.
func (p *CacheProxy[V]) Delete(keys ...string) {
	for _, key := range keys {
		p.cache.Delete(key)
	}
}

// Len returns the number of entries, expired ones included until cleanup.
func (p *CacheProxy[V]) Len() int {
	return p.cache.ItemCount()
}

// Flush removes every entry.
func (p *CacheProxy[V]) Flush() {
	p.cache.Flush()
}

// Load returns the cached value for key, calling the Loader and caching its
// result on a miss.
func (p *CacheProxy[V]) Load(ctx context.Context, key string) (V, error) {
	if v, ok := p.Get(key); ok {
		log.Debug(log.CatCache, "cache hit", "proxy", p.Name(), "key", key)
		return v, nil
	}

	var zero V
	if p.loader == nil {
		return zero, fmt.Errorf("%w: %s", ErrNoLoader, p.Name())
	}

	v, err := p.loader(ctx, key)
	if err != nil {
		return zero, fmt.Errorf("load %s/%s: %w", p.Name(), key, err)
	}
	p.Set(key, v)
	return v, nil
}

// OnRemove drops every cached entry.
func (p *CacheProxy[V]) OnRemove() {
	p.Flush()
}
