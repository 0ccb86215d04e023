// Package controller maps notification names to command factories and runs a
// freshly built command each time a mapped notification is dispatched.
package controller

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"github.com/zjrosen/mvc/internal/log"
	"github.com/zjrosen/mvc/internal/notification"
	"github.com/zjrosen/mvc/internal/pubsub"
)

// ObserverRegistry is the part of the View the Controller subscribes through.
type ObserverRegistry interface {
	RegisterObserver(name string, observer *notification.Observer)
	RemoveObserver(name string, notifyContext any)
}

// Option configures the Controller.
type Option func(*Controller)

// WithEventBus sets the event bus that receives CommandLogEvents.
func WithEventBus(bus *pubsub.Broker[any]) Option {
	return func(c *Controller) {
		c.eventBus = bus
	}
}

// WithMiddleware adds middleware applied to every command execution.
// Middleware is applied in order: first middleware wraps outermost.
func WithMiddleware(middlewares ...Middleware) Option {
	return func(c *Controller) {
		c.middlewares = append(c.middlewares, middlewares...)
	}
}

// WithInitializer sets a function called on every command after it is built
// and before it runs, including the sub-commands of a MacroCommand.
func WithInitializer(fn func(Command)) Option {
	return func(c *Controller) {
		c.initialize = fn
	}
}

// Controller owns the notification name → command factory mapping of one core.
// For each mapped name it keeps exactly one observer in the View whose
// callback is ExecuteCommand. Like the View, it is driven from one goroutine.
type Controller struct {
	key      string
	view     ObserverRegistry
	commands map[string]Factory

	middlewares []Middleware
	handler     Handler
	initialize  func(Command)

	eventBus *pubsub.Broker[any]

	executedCount atomic.Int64
	errorCount    atomic.Int64
}

// New creates a Controller for the core identified by key, subscribing
// through view.
func New(key string, view ObserverRegistry, opts ...Option) *Controller {
	c := &Controller{
		key:      key,
		view:     view,
		commands: make(map[string]Factory),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.handler = ChainMiddleware(executeHandler, c.middlewares...)
	return c
}

// Key returns the multiton key of the owning core.
func (c *Controller) Key() string {
	return c.key
}

// RegisterCommand maps name to factory. The first mapping for a name also
// subscribes the Controller to it; later mappings only replace the factory.
func (c *Controller) RegisterCommand(name string, factory Factory) {
	if factory == nil {
		log.ErrorErr(log.CatController, "register command ignored", ErrNilFactory, "key", c.key, "notification", name)
		return
	}

	if _, exists := c.commands[name]; !exists {
		c.view.RegisterObserver(name, notification.NewObserver(c.ExecuteCommand, c))
	}
	c.commands[name] = factory

	log.Debug(log.CatController, "command registered", "key", c.key, "notification", name)
}

// ExecuteCommand is the observer callback for every mapped name. Command
// errors are logged, counted and published; they never interrupt dispatch.
func (c *Controller) ExecuteCommand(ctx context.Context, n notification.Notification) {
	_ = c.Execute(ctx, n)
}

// Execute builds a new command for n's name and runs it through the
// middleware chain, returning the command's error. Unmapped names are a no-op.
func (c *Controller) Execute(ctx context.Context, n notification.Notification) error {
	factory, ok := c.commands[n.Name()]
	if !ok {
		return nil
	}

	cmd := factory()
	if cmd == nil {
		log.Warn(log.CatController, "command factory returned nil", "key", c.key, "notification", n.Name())
		return nil
	}
	if c.initialize != nil {
		c.initialize(cmd)
	}
	if aware, ok := cmd.(initializerAware); ok {
		aware.setInitializer(c.initialize)
	}

	start := time.Now()
	err := c.handler.Handle(ctx, cmd, n)

	c.executedCount.Add(1)
	if err != nil {
		c.errorCount.Add(1)
	}
	c.emit(cmd, n, err, time.Since(start))
	return err
}

// RemoveCommand unsubscribes the Controller from name and drops the mapping.
func (c *Controller) RemoveCommand(name string) {
	if _, ok := c.commands[name]; !ok {
		return
	}
	c.view.RemoveObserver(name, c)
	delete(c.commands, name)

	log.Debug(log.CatController, "command removed", "key", c.key, "notification", name)
}

// HasCommand reports whether a command is mapped to name.
func (c *Controller) HasCommand(name string) bool {
	_, ok := c.commands[name]
	return ok
}

// CommandNames returns the mapped notification names, sorted.
func (c *Controller) CommandNames() []string {
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset removes every mapping and its observer.
func (c *Controller) Reset() {
	for _, name := range c.CommandNames() {
		c.RemoveCommand(name)
	}
}

// ExecutedCount returns the total number of commands executed.
func (c *Controller) ExecutedCount() int64 {
	return c.executedCount.Load()
}

// ErrorCount returns the number of executions that returned an error.
func (c *Controller) ErrorCount() int64 {
	return c.errorCount.Load()
}

func (c *Controller) emit(cmd Command, n notification.Notification, err error, d time.Duration) {
	if c.eventBus == nil {
		return
	}
	eventType := pubsub.CommandExecutedEvent
	if err != nil {
		eventType = pubsub.CommandFailedEvent
	}
	c.eventBus.Publish(eventType, CommandLogEvent{
		Key:            c.key,
		Notification:   n.Name(),
		NotificationID: n.ID(),
		Command:        CommandName(cmd),
		Success:        err == nil,
		Error:          err,
		Duration:       d,
		Timestamp:      time.Now(),
	})
}
