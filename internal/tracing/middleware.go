package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/mvc/internal/controller"
	"github.com/zjrosen/mvc/internal/notification"
)

// Span names and attribute keys for command execution.
const (
	SpanCommand = "controller.command"

	AttrCoreKey          = "core.key"
	AttrCommand          = "command.name"
	AttrNotification     = "notification.name"
	AttrNotificationID   = "notification.id"
	AttrNotificationType = "notification.type"
)

// NewCommandMiddleware opens a span around every command the Controller of
// the core identified by key runs. A nil tracer yields a pass-through.
func NewCommandMiddleware(key string, tracer trace.Tracer) controller.Middleware {
	if tracer == nil {
		return func(next controller.Handler) controller.Handler {
			return next
		}
	}

	return func(next controller.Handler) controller.Handler {
		return controller.HandlerFunc(func(ctx context.Context, cmd controller.Command, n notification.Notification) error {
			ctx, span := tracer.Start(ctx, SpanCommand,
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(
					attribute.String(AttrCoreKey, key),
					attribute.String(AttrCommand, controller.CommandName(cmd)),
					attribute.String(AttrNotification, n.Name()),
					attribute.String(AttrNotificationID, n.ID()),
					attribute.String(AttrNotificationType, n.Type()),
				),
			)
			defer span.End()

			err := next.Handle(ctx, cmd, n)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			} else {
				span.SetStatus(codes.Ok, "")
			}
			return err
		})
	}
}
