// Package model provides the per-core proxy store.
package model

import (
	"github.com/zjrosen/mvc/internal/log"
	"github.com/zjrosen/mvc/internal/ordered"
	"github.com/zjrosen/mvc/internal/pubsub"
)

// ProxyEvent is published on the event bus when a proxy joins or leaves.
type ProxyEvent struct {
	Key  string
	Name string
}

// Option configures a Model.
type Option func(*Model)

// WithEventBus sets the bus that receives ProxyEvents.
func WithEventBus(bus *pubsub.Broker[any]) Option {
	return func(m *Model) {
		m.eventBus = bus
	}
}

// Model is a keyed store of proxies for one core.
type Model struct {
	key      string
	proxies  *ordered.Map[string, Proxy]
	eventBus *pubsub.Broker[any]
}

// New creates an empty Model for the core identified by key.
func New(key string, opts ...Option) *Model {
	m := &Model{
		key:     key,
		proxies: ordered.New[string, Proxy](),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Key returns the multiton key of the owning core.
func (m *Model) Key() string {
	return m.key
}

// RegisterProxy stores p under its name, replacing any proxy of that name,
// then calls p.OnRegister.
func (m *Model) RegisterProxy(p Proxy) {
	name := p.Name()
	if m.proxies.Has(name) {
		log.Warn(log.CatModel, "proxy replaced", "key", m.key, "proxy", name)
	}
	m.proxies.Set(name, p)
	p.OnRegister()

	log.Info(log.CatModel, "proxy registered", "key", m.key, "proxy", name)
	m.publish(pubsub.ProxyRegisteredEvent, name)
}

// RetrieveProxy returns the proxy registered under name.
func (m *Model) RetrieveProxy(name string) (Proxy, bool) {
	return m.proxies.Get(name)
}

// HasProxy reports whether a proxy is registered under name.
func (m *Model) HasProxy(name string) bool {
	return m.proxies.Has(name)
}

// ProxyNames returns registered proxy names in registration order.
func (m *Model) ProxyNames() []string {
	return m.proxies.Keys()
}

// RemoveProxy removes and returns the proxy registered under name, calling
// its OnRemove hook. Returns nil, false when no such proxy exists.
func (m *Model) RemoveProxy(name string) (Proxy, bool) {
	p, ok := m.proxies.Delete(name)
	if !ok {
		return nil, false
	}
	p.OnRemove()

	log.Info(log.CatModel, "proxy removed", "key", m.key, "proxy", name)
	m.publish(pubsub.ProxyRemovedEvent, name)
	return p, true
}

// Reset removes every proxy, newest first.
func (m *Model) Reset() {
	names := m.proxies.Keys()
	for i := len(names) - 1; i >= 0; i-- {
		m.RemoveProxy(names[i])
	}
}

func (m *Model) publish(eventType pubsub.EventType, name string) {
	if m.eventBus == nil {
		return
	}
	m.eventBus.Publish(eventType, ProxyEvent{Key: m.key, Name: name})
}
