package demo

import (
	"context"
	"fmt"
	"io"

	"github.com/zjrosen/mvc/internal/facade"
	"github.com/zjrosen/mvc/internal/notification"
	"github.com/zjrosen/mvc/internal/view"
)

// ConsoleMediator prints greetings to its view component, an io.Writer.
type ConsoleMediator struct {
	view.BaseMediator
	facade.Notifier
}

// NewConsoleMediator creates a ConsoleMediator writing to out.
func NewConsoleMediator(out io.Writer) *ConsoleMediator {
	return &ConsoleMediator{BaseMediator: view.NewBaseMediator(ConsoleMediatorName, out)}
}

func (m *ConsoleMediator) out() io.Writer {
	if w, ok := m.ViewComponent().(io.Writer); ok {
		return w
	}
	return io.Discard
}

// ListNotificationInterests returns the notifications printed.
func (m *ConsoleMediator) ListNotificationInterests() []string {
	return []string{Greeted, HistoryCleared, Shutdown}
}

// HandleNotification prints n.
func (m *ConsoleMediator) HandleNotification(_ context.Context, n notification.Notification) {
	prefix := fmt.Sprintf("[%s] ", m.MultitonKey())
	switch n.Name() {
	case Greeted:
		if g, ok := n.Body().(Greeting); ok {
			_, _ = fmt.Fprintf(m.out(), "%s%s\n", prefix, g.Message)
		}
	case HistoryCleared:
		_, _ = fmt.Fprintf(m.out(), "%shistory cleared\n", prefix)
	case Shutdown:
		_, _ = fmt.Fprintf(m.out(), "%sgoodbye\n", prefix)
	}
}

// OnRegister announces the mediator.
func (m *ConsoleMediator) OnRegister() {
	_, _ = fmt.Fprintf(m.out(), "[%s] console ready\n", m.MultitonKey())
}
