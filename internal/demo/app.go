package demo

import (
	"context"
	"fmt"
	"io"

	"github.com/zjrosen/mvc/internal/core"
	"github.com/zjrosen/mvc/internal/facade"
	"github.com/zjrosen/mvc/internal/log"
)

// App runs the demo on cores of a Registry.
type App struct {
	registry *core.Registry
	out      io.Writer
	greeting string
}

// NewApp creates an App that prints to out.
func NewApp(registry *core.Registry, out io.Writer, greeting string) *App {
	return &App{registry: registry, out: out, greeting: greeting}
}

// Start creates the core for key and boots the demo on it.
func (a *App) Start(ctx context.Context, key string) (*facade.Facade, error) {
	f, err := a.registry.Create(key)
	if err != nil {
		return nil, err
	}
	if err := a.Boot(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Boot runs the startup command on f, a core owned by the App's registry.
// A failed boot removes the core.
func (a *App) Boot(ctx context.Context, f *facade.Facade) error {
	f.RegisterCommand(Startup, NewStartupCommand)
	f.SendNotification(ctx, Startup, StartupBody{Out: a.out, Greeting: a.greeting}, "")

	if !f.HasMediator(ConsoleMediatorName) || !f.HasCommand(Greet) {
		a.registry.Remove(f.Key())
		return fmt.Errorf("starting %q: startup did not complete", f.Key())
	}

	log.Info(log.CatDemo, "demo started", "key", f.Key())
	return nil
}

// Greet greets name on the core for key.
func (a *App) Greet(ctx context.Context, key, name string) error {
	f, ok := a.registry.Get(key)
	if !ok {
		return fmt.Errorf("greet on %q: %w", key, ErrNotStarted)
	}
	f.SendNotification(ctx, Greet, name, "")
	return nil
}

// History returns the greetings recorded on the core for key.
func (a *App) History(key string) []Greeting {
	f, ok := a.registry.Get(key)
	if !ok {
		return nil
	}
	p, ok := facade.RetrieveProxyAs[*GreetingProxy](f, GreetingProxyName)
	if !ok {
		return nil
	}
	return p.History()
}

// Stop announces shutdown on the core for key and removes it.
func (a *App) Stop(ctx context.Context, key string) {
	f, ok := a.registry.Get(key)
	if !ok {
		return
	}
	f.SendNotification(ctx, Shutdown, nil, "")
	a.registry.Remove(key)

	log.Info(log.CatDemo, "demo stopped", "key", key)
}
