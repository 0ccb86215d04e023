// Package facade provides the single entry point of a core: it owns the
// core's Model, View, Controller and event bus, and turns SendNotification
// calls into synchronous dispatch.
package facade

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/mvc/internal/controller"
	"github.com/zjrosen/mvc/internal/log"
	"github.com/zjrosen/mvc/internal/metrics"
	"github.com/zjrosen/mvc/internal/model"
	"github.com/zjrosen/mvc/internal/notification"
	"github.com/zjrosen/mvc/internal/pubsub"
	"github.com/zjrosen/mvc/internal/tracing"
	"github.com/zjrosen/mvc/internal/view"
)

// DefaultEventBuffer is the per-subscriber buffer of the core event bus.
const DefaultEventBuffer = 256

// NotificationEvent is published on the event bus for every sent notification.
type NotificationEvent struct {
	Key       string
	ID        string
	Name      string
	Type      string
	Body      any
	Timestamp time.Time
}

// Initializable is implemented by commands, mediators and proxies that need
// a reference to their Facade. Embedding Notifier satisfies it.
type Initializable interface {
	InitializeNotifier(f *Facade)
}

type options struct {
	tracer        trace.Tracer
	dispatchSpans bool
	metrics       *metrics.Metrics
	middlewares   []controller.Middleware
	eventBuffer   int
}

// Option configures a Facade.
type Option func(*options)

// WithTracer traces dispatch and command execution with tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// WithDispatchSpans controls whether View dispatch is traced in addition to
// command execution. Enabled by default; it has no effect without a tracer.
func WithDispatchSpans(enabled bool) Option {
	return func(o *options) {
		o.dispatchSpans = enabled
	}
}

// WithMetrics records notification and command metrics in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithMiddleware adds command middleware inside the built-in logging,
// tracing and metrics layers and outside panic recovery.
func WithMiddleware(middlewares ...controller.Middleware) Option {
	return func(o *options) {
		o.middlewares = append(o.middlewares, middlewares...)
	}
}

// WithEventBuffer sets the per-subscriber buffer of the event bus.
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.eventBuffer = size
	}
}

// Facade is the per-core entry point. Every registry method is a direct
// pass-through to the Model, View or Controller.
type Facade struct {
	key        string
	model      *model.Model
	view       *view.View
	controller *controller.Controller
	events     *pubsub.Broker[any]
	metrics    *metrics.Metrics

	closeOnce sync.Once
}

// New builds the Model, View and Controller of the core identified by key.
func New(key string, opts ...Option) *Facade {
	o := options{eventBuffer: DefaultEventBuffer, dispatchSpans: true}
	for _, opt := range opts {
		opt(&o)
	}

	f := &Facade{
		key:     key,
		events:  pubsub.NewBrokerWithBuffer[any](o.eventBuffer),
		metrics: o.metrics,
	}

	viewOpts := []view.Option{view.WithEventBus(f.events)}
	if o.tracer != nil && o.dispatchSpans {
		viewOpts = append(viewOpts, view.WithTracer(o.tracer))
	}
	f.view = view.New(key, viewOpts...)
	f.model = model.New(key, model.WithEventBus(f.events))

	chain := []controller.Middleware{
		controller.NewLoggingMiddleware(key),
		tracing.NewCommandMiddleware(key, o.tracer),
		o.metrics.Middleware(key),
	}
	chain = append(chain, o.middlewares...)
	chain = append(chain, controller.NewRecoveryMiddleware())

	f.controller = controller.New(key, f.view,
		controller.WithEventBus(f.events),
		controller.WithMiddleware(chain...),
		controller.WithInitializer(func(cmd controller.Command) { f.initialize(cmd) }),
	)

	log.Debug(log.CatFacade, "facade created", "key", key)
	return f
}

// Key returns the multiton key of the core.
func (f *Facade) Key() string {
	return f.key
}

// Model returns the core's proxy store.
func (f *Facade) Model() *model.Model {
	return f.model
}

// View returns the core's observer registry.
func (f *Facade) View() *view.View {
	return f.view
}

// Controller returns the core's command router.
func (f *Facade) Controller() *controller.Controller {
	return f.controller
}

// Events returns the core's event bus.
func (f *Facade) Events() *pubsub.Broker[any] {
	return f.events
}

// RegisterCommand maps name to factory.
func (f *Facade) RegisterCommand(name string, factory controller.Factory) {
	f.controller.RegisterCommand(name, factory)
}

// RemoveCommand drops the mapping for name.
func (f *Facade) RemoveCommand(name string) {
	f.controller.RemoveCommand(name)
}

// HasCommand reports whether a command is mapped to name.
func (f *Facade) HasCommand(name string) bool {
	return f.controller.HasCommand(name)
}

// RegisterProxy binds p to this Facade if it is Initializable, then stores it.
func (f *Facade) RegisterProxy(p model.Proxy) {
	f.initialize(p)
	f.model.RegisterProxy(p)
}

// RetrieveProxy returns the proxy registered under name.
func (f *Facade) RetrieveProxy(name string) (model.Proxy, bool) {
	return f.model.RetrieveProxy(name)
}

// RemoveProxy removes and returns the proxy registered under name.
func (f *Facade) RemoveProxy(name string) (model.Proxy, bool) {
	return f.model.RemoveProxy(name)
}

// HasProxy reports whether a proxy is registered under name.
func (f *Facade) HasProxy(name string) bool {
	return f.model.HasProxy(name)
}

// RegisterMediator binds m to this Facade if it is Initializable, then
// registers it with the View.
func (f *Facade) RegisterMediator(m view.Mediator) {
	// The View ignores duplicates too; checking first keeps a rejected
	// mediator from being bound to this Facade.
	if f.view.HasMediator(m.Name()) {
		return
	}
	f.initialize(m)
	f.view.RegisterMediator(m)
}

// RetrieveMediator returns the mediator registered under name.
func (f *Facade) RetrieveMediator(name string) (view.Mediator, bool) {
	return f.view.RetrieveMediator(name)
}

// RemoveMediator removes and returns the mediator registered under name.
func (f *Facade) RemoveMediator(name string) (view.Mediator, bool) {
	return f.view.RemoveMediator(name)
}

// HasMediator reports whether a mediator is registered under name.
func (f *Facade) HasMediator(name string) bool {
	return f.view.HasMediator(name)
}

// SendNotification builds a notification and dispatches it. Every observer
// has run by the time it returns.
func (f *Facade) SendNotification(ctx context.Context, name string, body any, typ string) {
	f.NotifyObservers(ctx, notification.New(name, body, typ))
}

// NotifyObservers dispatches n to the View and reports it to the event bus
// and metrics.
func (f *Facade) NotifyObservers(ctx context.Context, n notification.Notification) {
	f.metrics.ObserveNotification(f.key, n.Name())
	f.events.Publish(pubsub.NotificationSentEvent, NotificationEvent{
		Key:       f.key,
		ID:        n.ID(),
		Name:      n.Name(),
		Type:      n.Type(),
		Body:      n.Body(),
		Timestamp: n.CreatedAt(),
	})
	f.view.NotifyObservers(ctx, n)
}

// Close removes every command, mediator and proxy, then closes the event bus.
// Close is idempotent.
func (f *Facade) Close() {
	f.closeOnce.Do(func() {
		f.controller.Reset()
		f.view.Reset()
		f.model.Reset()
		f.events.Close()
		log.Debug(log.CatFacade, "facade closed", "key", f.key)
	})
}

func (f *Facade) initialize(target any) {
	if i, ok := target.(Initializable); ok {
		i.InitializeNotifier(f)
	}
}

// RetrieveProxyAs returns the proxy registered under name as a T.
func RetrieveProxyAs[T model.Proxy](f *Facade, name string) (T, bool) {
	var zero T
	p, ok := f.model.RetrieveProxy(name)
	if !ok {
		return zero, false
	}
	typed, ok := p.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
