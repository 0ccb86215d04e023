package controller

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/zjrosen/mvc/internal/log"
	"github.com/zjrosen/mvc/internal/notification"
)

// Handler executes a command for a notification.
type Handler interface {
	Handle(ctx context.Context, cmd Command, n notification.Notification) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, cmd Command, n notification.Notification) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, cmd Command, n notification.Notification) error {
	return f(ctx, cmd, n)
}

// executeHandler is the innermost handler: it runs the command itself.
var executeHandler = HandlerFunc(func(ctx context.Context, cmd Command, n notification.Notification) error {
	return cmd.Execute(ctx, n)
})

// Middleware wraps a Handler to add behavior around command execution.
type Middleware func(Handler) Handler

// ChainMiddleware applies middlewares to a handler in reverse order.
// The first middleware in the list will be the outermost wrapper.
// For example: ChainMiddleware(handler, logging, recovery)
// Results in: logging(recovery(handler))
func ChainMiddleware(handler Handler, middlewares ...Middleware) Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i] == nil {
			continue
		}
		handler = middlewares[i](handler)
	}
	return handler
}

// ===========================================================================
// Logging Middleware
// ===========================================================================

// NewLoggingMiddleware creates a middleware that logs command execution.
func NewLoggingMiddleware(key string) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, cmd Command, n notification.Notification) error {
			start := time.Now()

			err := next.Handle(ctx, cmd, n)

			duration := time.Since(start)
			if err != nil {
				log.Error(log.CatController, "command failed",
					"key", key,
					"command", CommandName(cmd),
					"notification", n.Name(),
					"id", n.ID(),
					"duration", duration,
					"error", err.Error(),
				)
			} else {
				log.Debug(log.CatController, "command completed",
					"key", key,
					"command", CommandName(cmd),
					"notification", n.Name(),
					"id", n.ID(),
					"duration", duration,
				)
			}

			return err
		})
	}
}

// ===========================================================================
// Recovery Middleware
// ===========================================================================

// NewRecoveryMiddleware turns a panicking command into an ErrCommandPanicked
// error so the rest of the dispatch still runs.
func NewRecoveryMiddleware() Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, cmd Command, n notification.Notification) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error(log.CatController, "command panic recovered",
						"command", CommandName(cmd),
						"notification", n.Name(),
						"panic", r,
						"stack", string(debug.Stack()),
					)
					err = fmt.Errorf("%w: %v", ErrCommandPanicked, r)
				}
			}()
			return next.Handle(ctx, cmd, n)
		})
	}
}
