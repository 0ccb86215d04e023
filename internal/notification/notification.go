// Package notification defines the message envelope exchanged between the
// parts of a core and the observer binding that receives it.
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Notification is an immutable named message with an optional body and type tag.
// Several notifications may share a name; they have no identity beyond their
// content, the ID exists only to correlate log lines, spans and bus events.
type Notification struct {
	id        string
	name      string
	body      any
	typ       string
	createdAt time.Time
}

// New creates a Notification. body and typ may be zero values.
func New(name string, body any, typ string) Notification {
	return Notification{
		id:        uuid.New().String(),
		name:      name,
		body:      body,
		typ:       typ,
		createdAt: time.Now(),
	}
}

// ID returns the correlation identifier assigned at construction.
func (n Notification) ID() string {
	return n.id
}

// Name returns the notification name observers are registered against.
func (n Notification) Name() string {
	return n.name
}

// Body returns the opaque payload, or nil.
func (n Notification) Body() any {
	return n.body
}

// Type returns the optional type tag.
func (n Notification) Type() string {
	return n.typ
}

// CreatedAt returns when the notification was constructed.
func (n Notification) CreatedAt() time.Time {
	return n.createdAt
}

// String renders the notification for logs.
func (n Notification) String() string {
	if n.typ == "" {
		return fmt.Sprintf("%s body=%v", n.name, n.body)
	}
	return fmt.Sprintf("%s body=%v type=%s", n.name, n.body, n.typ)
}

// Sender is implemented by anything that can dispatch notifications for its core.
type Sender interface {
	SendNotification(ctx context.Context, name string, body any, typ string)
}
