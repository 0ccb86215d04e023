package view

import (
	"context"

	"github.com/zjrosen/mvc/internal/notification"
)

// Mediator is a named component registered with the View. It declares the
// notification names it is interested in and reacts to them.
type Mediator interface {
	// Name returns the unique registration name.
	Name() string
	// ViewComponent returns the component this mediator manages, if any.
	ViewComponent() any
	// SetViewComponent replaces the managed component.
	SetViewComponent(component any)
	// ListNotificationInterests is read once, at registration.
	ListNotificationInterests() []string
	// HandleNotification receives every notification named in the interests.
	HandleNotification(ctx context.Context, n notification.Notification)
	// OnRegister is called after the mediator and its observers are registered.
	OnRegister()
	// OnRemove is called after the mediator and its observers are removed.
	OnRemove()
}

// DefaultMediatorName is used when a BaseMediator is created without a name.
const DefaultMediatorName = "Mediator"

// BaseMediator provides no-op lifecycle hooks and component storage.
// Concrete mediators embed it and override what they need.
type BaseMediator struct {
	name      string
	component any
}

// NewBaseMediator creates a BaseMediator. An empty name becomes DefaultMediatorName.
func NewBaseMediator(name string, component any) BaseMediator {
	if name == "" {
		name = DefaultMediatorName
	}
	return BaseMediator{name: name, component: component}
}

// Name returns the registration name.
func (m *BaseMediator) Name() string {
	return m.name
}

// ViewComponent returns the managed component.
func (m *BaseMediator) ViewComponent() any {
	return m.component
}

// SetViewComponent replaces the managed component.
func (m *BaseMediator) SetViewComponent(component any) {
	m.component = component
}

// ListNotificationInterests returns no interests.
func (m *BaseMediator) ListNotificationInterests() []string {
	return nil
}

// HandleNotification ignores the notification.
func (m *BaseMediator) HandleNotification(context.Context, notification.Notification) {}

// OnRegister does nothing.
func (m *BaseMediator) OnRegister() {}

// OnRemove does nothing.
func (m *BaseMediator) OnRemove() {}
