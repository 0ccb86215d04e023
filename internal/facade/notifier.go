package facade

import (
	"context"

	"github.com/zjrosen/mvc/internal/log"
)

// Notifier is embedded by commands, mediators and proxies that send
// notifications. The Facade binds it on registration or execution.
type Notifier struct {
	facade *Facade
}

// InitializeNotifier binds the Notifier to f.
func (n *Notifier) InitializeNotifier(f *Facade) {
	n.facade = f
}

// Facade returns the bound Facade, or nil before initialization.
func (n *Notifier) Facade() *Facade {
	return n.facade
}

// MultitonKey returns the key of the bound core, or "" before initialization.
func (n *Notifier) MultitonKey() string {
	if n.facade == nil {
		return ""
	}
	return n.facade.Key()
}

// SendNotification sends through the bound Facade. Before initialization the
// call logs ErrNotifierNotInitialized and does nothing.
func (n *Notifier) SendNotification(ctx context.Context, name string, body any, typ string) {
	if n.facade == nil {
		log.ErrorErr(log.CatFacade, "send notification dropped", ErrNotifierNotInitialized, "notification", name)
		return
	}
	n.facade.SendNotification(ctx, name, body, typ)
}
