package facade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/zjrosen/mvc/internal/controller"
	"github.com/zjrosen/mvc/internal/metrics"
	"github.com/zjrosen/mvc/internal/model"
	"github.com/zjrosen/mvc/internal/notification"
	"github.com/zjrosen/mvc/internal/pubsub"
	"github.com/zjrosen/mvc/internal/tracing"
	"github.com/zjrosen/mvc/internal/view"
)

// ===========================================================================
// Test Helpers
// ===========================================================================

type greeter struct {
	view.BaseMediator
	Notifier
	heard []string
}

func newGreeter() *greeter {
	return &greeter{BaseMediator: view.NewBaseMediator("greeter", nil)}
}

func (g *greeter) ListNotificationInterests() []string { return []string{"greet", "farewell"} }

func (g *greeter) HandleNotification(ctx context.Context, n notification.Notification) {
	g.heard = append(g.heard, n.Name())
	if n.Name() == "greet" {
		g.SendNotification(ctx, "greeted", n.Body(), "")
	}
}

type counterProxy struct {
	model.BaseProxy
	Notifier
	removed bool
}

func (p *counterProxy) OnRemove() { p.removed = true }

// sendingCommand uses its embedded Notifier to send a follow-up.
type sendingCommand struct {
	Notifier
}

func (c *sendingCommand) Execute(ctx context.Context, n notification.Notification) error {
	c.SendNotification(ctx, "ack", n.Body(), "")
	return nil
}

func collect(f *Facade, name string) *[]notification.Notification {
	var got []notification.Notification
	f.View().RegisterObserver(name, notification.NewObserver(func(_ context.Context, n notification.Notification) {
		got = append(got, n)
	}, &got))
	return &got
}

// ===========================================================================
// Dispatch
// ===========================================================================

func TestSendNotification_GreetScenario(t *testing.T) {
	f := New("core")
	defer f.Close()

	type listener struct{}
	var bodies []any
	var types []string
	f.View().RegisterObserver("greet", notification.NewObserver(func(_ context.Context, n notification.Notification) {
		bodies = append(bodies, n.Body())
		types = append(types, n.Type())
	}, &listener{}))

	f.SendNotification(context.Background(), "greet", "hello", "info")

	require.Equal(t, []any{"hello"}, bodies)
	require.Equal(t, []string{"info"}, types)
}

func TestSendNotification_UnknownNameIsNoop(t *testing.T) {
	f := New("core")
	defer f.Close()

	require.NotPanics(t, func() {
		f.SendNotification(context.Background(), "nobody-listens", nil, "")
	})
	require.Empty(t, f.Snapshot().Observers)
}

func TestSendNotification_CompletesBeforeReturn(t *testing.T) {
	f := New("core")
	defer f.Close()

	f.RegisterMediator(newGreeter())
	greeted := collect(f, "greeted")

	f.SendNotification(context.Background(), "greet", "hi", "")

	require.Len(t, *greeted, 1, "nested send should finish before the outer send returns")
	require.Equal(t, "hi", (*greeted)[0].Body())
}

func TestSendNotification_PublishesEvent(t *testing.T) {
	f := New("core")
	defer f.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := f.Events().Subscribe(ctx)

	f.SendNotification(context.Background(), "ping", 42, "num")

	select {
	case evt := <-sub:
		require.Equal(t, pubsub.NotificationSentEvent, evt.Type)
		payload, ok := evt.Payload.(NotificationEvent)
		require.True(t, ok)
		require.Equal(t, "core", payload.Key)
		require.Equal(t, "ping", payload.Name)
		require.Equal(t, 42, payload.Body)
		require.Equal(t, "num", payload.Type)
		require.NotEmpty(t, payload.ID)
	case <-time.After(time.Second):
		t.Fatal("no notification event")
	}
}

// ===========================================================================
// Commands
// ===========================================================================

func TestRegisterCommand_InitializesNotifier(t *testing.T) {
	f := New("core")
	defer f.Close()

	acks := collect(f, "ack")
	f.RegisterCommand("do", func() controller.Command { return &sendingCommand{} })

	f.SendNotification(context.Background(), "do", "payload", "")

	require.Len(t, *acks, 1)
	require.Equal(t, "payload", (*acks)[0].Body())
}

func TestRegisterCommand_MacroSubCommandsInitialized(t *testing.T) {
	f := New("core")
	defer f.Close()

	acks := collect(f, "ack")
	f.RegisterCommand("startup", func() controller.Command {
		return controller.NewMacroCommand(
			func() controller.Command { return &sendingCommand{} },
			func() controller.Command { return &sendingCommand{} },
		)
	})

	f.SendNotification(context.Background(), "startup", nil, "")
	require.Len(t, *acks, 2)
}

func TestRegisterCommand_PanicIsRecovered(t *testing.T) {
	f := New("core")
	defer f.Close()

	f.RegisterCommand("explode", controller.Func(func(context.Context, notification.Notification) error {
		panic("kaboom")
	}))
	after := collect(f, "explode")

	require.NotPanics(t, func() {
		f.SendNotification(context.Background(), "explode", nil, "")
	})
	require.Len(t, *after, 1, "observers after the command still run")
	require.EqualValues(t, 1, f.Controller().ErrorCount())
}

func TestCommandPassThrough(t *testing.T) {
	f := New("core")
	defer f.Close()

	f.RegisterCommand("x", controller.Func(func(context.Context, notification.Notification) error { return nil }))
	require.True(t, f.HasCommand("x"))
	require.Equal(t, 1, f.View().ObserverCount("x"))

	f.RemoveCommand("x")
	require.False(t, f.HasCommand("x"))
	require.False(t, f.View().HasObservers("x"))
}

func TestWithMiddleware_RunsInsideRecovery(t *testing.T) {
	var seen []string
	mw := func(next controller.Handler) controller.Handler {
		return controller.HandlerFunc(func(ctx context.Context, cmd controller.Command, n notification.Notification) error {
			seen = append(seen, n.Name())
			return next.Handle(ctx, cmd, n)
		})
	}

	f := New("core", WithMiddleware(mw))
	defer f.Close()

	f.RegisterCommand("x", controller.Func(func(context.Context, notification.Notification) error { return nil }))
	f.SendNotification(context.Background(), "x", nil, "")

	require.Equal(t, []string{"x"}, seen)
}

// ===========================================================================
// Mediators and proxies
// ===========================================================================

func TestMediatorPassThrough(t *testing.T) {
	f := New("core")
	defer f.Close()

	g := newGreeter()
	f.RegisterMediator(g)
	duplicate := newGreeter()
	f.RegisterMediator(duplicate)
	require.Nil(t, duplicate.Facade(), "a rejected duplicate is not bound")

	require.True(t, f.HasMediator("greeter"))
	got, ok := f.RetrieveMediator("greeter")
	require.True(t, ok)
	require.Same(t, g, got)
	require.Same(t, f, g.Facade(), "mediator should be bound on registration")
	require.Equal(t, "core", g.MultitonKey())

	f.SendNotification(context.Background(), "farewell", nil, "")
	require.Equal(t, []string{"farewell"}, g.heard)

	removed, ok := f.RemoveMediator("greeter")
	require.True(t, ok)
	require.Same(t, g, removed)
	require.False(t, f.View().HasObservers("greet"))
	require.False(t, f.View().HasObservers("farewell"))

	_, ok = f.RemoveMediator("greeter")
	require.False(t, ok)
}

func TestProxyPassThrough(t *testing.T) {
	f := New("core")
	defer f.Close()

	p := &counterProxy{BaseProxy: model.NewBaseProxy("counter", 0)}
	f.RegisterProxy(p)

	require.True(t, f.HasProxy("counter"))
	require.Same(t, f, p.Facade())

	typed, ok := RetrieveProxyAs[*counterProxy](f, "counter")
	require.True(t, ok)
	require.Same(t, p, typed)

	_, ok = RetrieveProxyAs[*model.CacheProxy[string]](f, "counter")
	require.False(t, ok, "wrong type should miss")
	_, ok = RetrieveProxyAs[*counterProxy](f, "missing")
	require.False(t, ok)

	removed, ok := f.RemoveProxy("counter")
	require.True(t, ok)
	require.Same(t, p, removed)
	require.True(t, p.removed)

	_, ok = f.RetrieveProxy("counter")
	require.False(t, ok)
}

// ===========================================================================
// Notifier
// ===========================================================================

func TestNotifier_UninitializedIsNoop(t *testing.T) {
	var n Notifier

	require.Nil(t, n.Facade())
	require.Empty(t, n.MultitonKey())
	require.NotPanics(t, func() {
		n.SendNotification(context.Background(), "lost", nil, "")
	})
}

func TestNotifier_SatisfiesSender(t *testing.T) {
	var _ notification.Sender = &Notifier{}
	var _ notification.Sender = New("core")
}

// ===========================================================================
// Observability
// ===========================================================================

func TestWithMetrics_RecordsNotificationsAndCommands(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg, "test")

	f := New("core", WithMetrics(m))
	defer f.Close()

	f.RegisterCommand("fail", controller.Func(func(context.Context, notification.Notification) error {
		return errors.New("nope")
	}))
	f.SendNotification(context.Background(), "fail", nil, "")
	f.SendNotification(context.Background(), "fail", nil, "")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.NotificationsSent.WithLabelValues("core", "fail")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CommandsExecuted.WithLabelValues("core", "controller.CommandFunc", metrics.OutcomeError)))
}

func TestWithTracer_RecordsDispatchAndCommandSpans(t *testing.T) {
	spanRecorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spanRecorder))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	f := New("core", WithTracer(tp.Tracer("test")))
	defer f.Close()

	f.RegisterCommand("x", controller.Func(func(context.Context, notification.Notification) error { return nil }))
	f.SendNotification(context.Background(), "x", nil, "")

	var names []string
	for _, s := range spanRecorder.Ended() {
		names = append(names, s.Name())
	}
	require.ElementsMatch(t, []string{view.SpanNotify, tracing.SpanCommand}, names)
}

func TestWithDispatchSpans_Disabled(t *testing.T) {
	spanRecorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spanRecorder))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	f := New("core", WithTracer(tp.Tracer("test")), WithDispatchSpans(false))
	defer f.Close()

	f.RegisterCommand("x", controller.Func(func(context.Context, notification.Notification) error { return nil }))
	f.SendNotification(context.Background(), "x", nil, "")

	ended := spanRecorder.Ended()
	require.Len(t, ended, 1)
	require.Equal(t, tracing.SpanCommand, ended[0].Name())
}

// ===========================================================================
// Snapshot and Close
// ===========================================================================

func TestSnapshot(t *testing.T) {
	f := New("core")
	defer f.Close()

	f.RegisterProxy(&counterProxy{BaseProxy: model.NewBaseProxy("b", nil)})
	f.RegisterProxy(&counterProxy{BaseProxy: model.NewBaseProxy("a", nil)})
	f.RegisterMediator(newGreeter())
	f.RegisterCommand("zz", controller.Func(func(context.Context, notification.Notification) error { return nil }))
	f.RegisterCommand("greet", controller.Func(func(context.Context, notification.Notification) error { return nil }))
	f.SendNotification(context.Background(), "zz", nil, "")

	inv := f.Snapshot()
	require.Equal(t, "core", inv.Key)
	require.Equal(t, []string{"b", "a"}, inv.Proxies)
	require.Equal(t, []MediatorInfo{{Name: "greeter", Interests: []string{"greet", "farewell"}}}, inv.Mediators)
	require.Equal(t, []string{"greet", "zz"}, inv.Commands)
	require.Equal(t, map[string]int{"greet": 2, "farewell": 1, "zz": 1}, inv.Observers)
	require.EqualValues(t, 1, inv.Executed)
	require.Zero(t, inv.Failed)
}

func TestClose_TearsDownEverything(t *testing.T) {
	f := New("core")

	p := &counterProxy{BaseProxy: model.NewBaseProxy("p", nil)}
	f.RegisterProxy(p)
	f.RegisterMediator(newGreeter())
	f.RegisterCommand("x", controller.Func(func(context.Context, notification.Notification) error { return nil }))

	f.Close()
	f.Close()

	inv := f.Snapshot()
	require.Empty(t, inv.Proxies)
	require.Empty(t, inv.Mediators)
	require.Empty(t, inv.Commands)
	require.Empty(t, inv.Observers)
	require.True(t, p.removed)
	require.True(t, f.Events().Closed())
}
