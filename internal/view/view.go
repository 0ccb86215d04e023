// Package view provides the per-core observer registry and notification
// dispatcher, and the registry of mediators whose interests feed it.
package view

import (
	"context"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/mvc/internal/log"
	"github.com/zjrosen/mvc/internal/notification"
	"github.com/zjrosen/mvc/internal/ordered"
	"github.com/zjrosen/mvc/internal/pubsub"
)

// Span names and attributes recorded around dispatch.
const (
	SpanNotify        = "view.notify"
	AttrCoreKey       = "core.key"
	AttrNotification  = "notification.name"
	AttrNotifyType    = "notification.type"
	AttrObserverCount = "notification.observers"
)

// MediatorEvent is published on the event bus when a mediator joins or leaves.
type MediatorEvent struct {
	Key  string
	Name string
}

// Option configures a View.
type Option func(*View)

// WithEventBus sets the bus that receives MediatorEvents.
func WithEventBus(bus *pubsub.Broker[any]) Option {
	return func(v *View) {
		v.eventBus = bus
	}
}

// WithTracer records a span for every dispatch that reaches at least one observer.
func WithTracer(tracer trace.Tracer) Option {
	return func(v *View) {
		if tracer != nil {
			v.tracer = tracer
		}
	}
}

// View maps notification names to ordered observer lists and mediator names
// to mediators. A View belongs to exactly one core and is driven from a single
// goroutine; it holds no locks. Observers may register or remove observers,
// including themselves, while a dispatch is in progress.
type View struct {
	key         string
	observerMap map[string][]*notification.Observer
	mediators   *ordered.Map[string, Mediator]
	interests   map[string][]string

	eventBus *pubsub.Broker[any]
	tracer   trace.Tracer
}

// New creates an empty View for the core identified by key.
func New(key string, opts ...Option) *View {
	v := &View{
		key:         key,
		observerMap: make(map[string][]*notification.Observer),
		mediators:   ordered.New[string, Mediator](),
		interests:   make(map[string][]string),
		tracer:      noop.NewTracerProvider().Tracer("view"),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Key returns the multiton key of the owning core.
func (v *View) Key() string {
	return v.key
}

// RegisterObserver appends observer to the list for name.
// Callers are responsible for not registering the same context twice.
func (v *View) RegisterObserver(name string, observer *notification.Observer) {
	v.observerMap[name] = append(v.observerMap[name], observer)
	log.Debug(log.CatView, "observer registered",
		"key", v.key,
		"notification", name,
		"observers", len(v.observerMap[name]),
	)
}

// RemoveObserver removes the observer for name whose context is notifyContext.
// A name left without observers is dropped from the map.
func (v *View) RemoveObserver(name string, notifyContext any) {
	observers, ok := v.observerMap[name]
	if !ok {
		return
	}

	for i, obs := range observers {
		if !obs.CompareNotifyContext(notifyContext) {
			continue
		}
		// Build a new slice so a snapshot held by an in-flight dispatch is untouched.
		remaining := make([]*notification.Observer, 0, len(observers)-1)
		remaining = append(remaining, observers[:i]...)
		remaining = append(remaining, observers[i+1:]...)
		if len(remaining) == 0 {
			delete(v.observerMap, name)
		} else {
			v.observerMap[name] = remaining
		}
		log.Debug(log.CatView, "observer removed", "key", v.key, "notification", name)
		return
	}
}

// NotifyObservers delivers n to every observer registered for its name.
// The list is copied before the first observer runs, so registrations and
// removals made by observers take effect from the next dispatch. Every
// observer in the copy is invoked, in order, before NotifyObservers returns.
func (v *View) NotifyObservers(ctx context.Context, n notification.Notification) {
	observers, ok := v.observerMap[n.Name()]
	if !ok {
		return
	}

	snapshot := make([]*notification.Observer, len(observers))
	copy(snapshot, observers)

	ctx, span := v.tracer.Start(ctx, SpanNotify,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String(AttrCoreKey, v.key),
			attribute.String(AttrNotification, n.Name()),
			attribute.String(AttrNotifyType, n.Type()),
			attribute.Int(AttrObserverCount, len(snapshot)),
		),
	)
	defer span.End()

	log.Debug(log.CatView, "notifying observers",
		"key", v.key,
		"notification", n.Name(),
		"id", n.ID(),
		"observers", len(snapshot),
	)

	for _, obs := range snapshot {
		obs.NotifyObserver(ctx, n)
	}
}

// HasObservers reports whether any observer is registered for name.
func (v *View) HasObservers(name string) bool {
	_, ok := v.observerMap[name]
	return ok
}

// ObserverCount returns the number of observers registered for name.
func (v *View) ObserverCount(name string) int {
	return len(v.observerMap[name])
}

// ObserverNames returns the notification names with at least one observer, sorted.
func (v *View) ObserverNames() []string {
	names := make([]string, 0, len(v.observerMap))
	for name := range v.observerMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Interests returns the interests captured when the named mediator registered.
func (v *View) Interests(name string) []string {
	return append([]string(nil), v.interests[name]...)
}

// RegisterMediator stores m and subscribes it to its notification interests.
// A mediator whose name is already registered is ignored.
func (v *View) RegisterMediator(m Mediator) {
	name := m.Name()
	if v.mediators.Has(name) {
		log.Debug(log.CatView, "mediator already registered", "key", v.key, "mediator", name)
		return
	}

	v.mediators.Set(name, m)

	interests := uniqueInterests(m.ListNotificationInterests())
	v.interests[name] = interests
	if len(interests) > 0 {
		observer := notification.NewObserver(m.HandleNotification, m)
		for _, interest := range interests {
			v.RegisterObserver(interest, observer)
		}
	}

	m.OnRegister()

	log.Info(log.CatView, "mediator registered", "key", v.key, "mediator", name, "interests", len(interests))
	v.publish(pubsub.MediatorRegisteredEvent, name)
}

// RetrieveMediator returns the mediator registered under name.
func (v *View) RetrieveMediator(name string) (Mediator, bool) {
	return v.mediators.Get(name)
}

// HasMediator reports whether a mediator is registered under name.
func (v *View) HasMediator(name string) bool {
	return v.mediators.Has(name)
}

// MediatorNames returns registered mediator names in registration order.
func (v *View) MediatorNames() []string {
	return v.mediators.Keys()
}

// RemoveMediator unsubscribes and removes the mediator registered under name
// and returns it. Returns nil, false when no such mediator exists.
func (v *View) RemoveMediator(name string) (Mediator, bool) {
	m, ok := v.mediators.Get(name)
	if !ok {
		return nil, false
	}

	for _, interest := range v.interests[name] {
		v.RemoveObserver(interest, m)
	}
	delete(v.interests, name)
	v.mediators.Delete(name)

	m.OnRemove()

	log.Info(log.CatView, "mediator removed", "key", v.key, "mediator", name)
	v.publish(pubsub.MediatorRemovedEvent, name)
	return m, true
}

// Reset removes every mediator, newest first, and then drops any remaining
// observers. Used when the owning core is torn down.
func (v *View) Reset() {
	names := v.mediators.Keys()
	for i := len(names) - 1; i >= 0; i-- {
		v.RemoveMediator(names[i])
	}
	clear(v.observerMap)
}

// uniqueInterests copies names, dropping repeats so a mediator is observed
// once per name.
func uniqueInterests(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func (v *View) publish(eventType pubsub.EventType, name string) {
	if v.eventBus == nil {
		return
	}
	v.eventBus.Publish(eventType, MediatorEvent{Key: v.key, Name: name})
}
