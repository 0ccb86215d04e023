package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/zjrosen/mvc/internal/notification"
)

// Command handles one notification. A fresh instance is built for every
// execution, so implementations may keep per-execution state in fields.
type Command interface {
	Execute(ctx context.Context, n notification.Notification) error
}

// Factory builds a new Command instance.
type Factory func() Command

// CommandFunc adapts a plain function to the Command interface.
type CommandFunc func(ctx context.Context, n notification.Notification) error

// Execute calls f.
func (f CommandFunc) Execute(ctx context.Context, n notification.Notification) error {
	return f(ctx, n)
}

// Func returns a Factory that always yields fn wrapped as a Command.
func Func(fn func(ctx context.Context, n notification.Notification) error) Factory {
	return func() Command {
		return CommandFunc(fn)
	}
}

// initializerAware is implemented by commands that build further commands
// themselves and need the controller's initializer for them.
type initializerAware interface {
	setInitializer(fn func(Command))
}

// MacroCommand executes an ordered list of sub-commands, each built fresh from
// its factory. A failing sub-command does not stop the ones after it: every
// sub-command runs, and the failures are returned joined together. Embed
// MacroCommand and add sub-commands in the factory that builds the command.
type MacroCommand struct {
	subCommands []Factory
	initialize  func(Command)
}

// NewMacroCommand creates a MacroCommand running factories in order.
func NewMacroCommand(factories ...Factory) *MacroCommand {
	return &MacroCommand{subCommands: append([]Factory(nil), factories...)}
}

// AddSubCommand appends a sub-command factory. Order of addition is execution order.
func (m *MacroCommand) AddSubCommand(factory Factory) {
	m.subCommands = append(m.subCommands, factory)
}

// SubCommandCount returns the number of queued sub-commands.
func (m *MacroCommand) SubCommandCount() int {
	return len(m.subCommands)
}

func (m *MacroCommand) setInitializer(fn func(Command)) {
	m.initialize = fn
}

// Execute runs every sub-command with n, in order.
func (m *MacroCommand) Execute(ctx context.Context, n notification.Notification) error {
	var errs []error
	for i, factory := range m.subCommands {
		if factory == nil {
			continue
		}
		cmd := factory()
		if cmd == nil {
			continue
		}
		if m.initialize != nil {
			m.initialize(cmd)
		}
		if aware, ok := cmd.(initializerAware); ok {
			aware.setInitializer(m.initialize)
		}
		if err := cmd.Execute(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("sub-command %d (%s): %w", i, CommandName(cmd), err))
		}
	}
	return errors.Join(errs...)
}

// CommandName returns a readable name for cmd, used in logs, spans and metrics.
func CommandName(cmd Command) string {
	if named, ok := cmd.(interface{ CommandName() string }); ok {
		return named.CommandName()
	}
	return fmt.Sprintf("%T", cmd)
}
