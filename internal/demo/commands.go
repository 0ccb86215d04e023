package demo

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/zjrosen/mvc/internal/controller"
	"github.com/zjrosen/mvc/internal/facade"
	"github.com/zjrosen/mvc/internal/model"
	"github.com/zjrosen/mvc/internal/notification"
)

// ErrNotStarted is returned by commands that run before the startup command.
var ErrNotStarted = errors.New("demo not started")

// StartupBody is the body of the Startup notification.
type StartupBody struct {
	Out      io.Writer
	Greeting string
}

// NewStartupCommand builds the macro that prepares the model and then the view.
func NewStartupCommand() controller.Command {
	return controller.NewMacroCommand(
		func() controller.Command { return &prepModelCommand{} },
		func() controller.Command { return &prepViewCommand{} },
		func() controller.Command { return &registerGreetCommand{} },
	)
}

type prepModelCommand struct {
	facade.Notifier
}

func (c *prepModelCommand) CommandName() string { return "PrepModel" }

func (c *prepModelCommand) Execute(_ context.Context, n notification.Notification) error {
	body, _ := n.Body().(StartupBody)
	f := c.Facade()
	f.RegisterProxy(NewGreetingProxy(body.Greeting))
	f.RegisterProxy(NewDisplayNameProxy())
	return nil
}

type prepViewCommand struct {
	facade.Notifier
}

func (c *prepViewCommand) CommandName() string { return "PrepView" }

func (c *prepViewCommand) Execute(_ context.Context, n notification.Notification) error {
	body, ok := n.Body().(StartupBody)
	if !ok || body.Out == nil {
		return fmt.Errorf("startup body missing output writer")
	}
	c.Facade().RegisterMediator(NewConsoleMediator(body.Out))
	return nil
}

type registerGreetCommand struct {
	facade.Notifier
}

func (c *registerGreetCommand) CommandName() string { return "RegisterGreet" }

func (c *registerGreetCommand) Execute(context.Context, notification.Notification) error {
	f := c.Facade()
	f.RegisterCommand(Greet, func() controller.Command { return &GreetCommand{} })
	f.RemoveCommand(Startup)
	return nil
}

// GreetCommand records a greeting for the name in the body and announces it.
type GreetCommand struct {
	facade.Notifier
}

// CommandName names the command in logs, spans and metrics.
func (c *GreetCommand) CommandName() string { return "Greet" }

// Execute greets the string body of n.
func (c *GreetCommand) Execute(ctx context.Context, n notification.Notification) error {
	raw, _ := n.Body().(string)

	f := c.Facade()
	greetings, ok := facade.RetrieveProxyAs[*GreetingProxy](f, GreetingProxyName)
	if !ok {
		return ErrNotStarted
	}
	names, ok := facade.RetrieveProxyAs[*model.CacheProxy[string]](f, DisplayNameProxy)
	if !ok {
		return ErrNotStarted
	}

	display, err := names.Load(ctx, raw)
	if err != nil {
		return fmt.Errorf("greet %q: %w", raw, err)
	}

	g := greetings.Record(display)
	c.SendNotification(ctx, Greeted, g, n.Type())
	return nil
}
