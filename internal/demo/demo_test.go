package demo

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/mvc/internal/core"
	"github.com/zjrosen/mvc/internal/facade"
)

func TestApp_StartGreetStop(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	registry := core.NewRegistry()
	defer registry.Close()

	app := NewApp(registry, &out, "hi")
	f, err := app.Start(ctx, "main")
	require.NoError(t, err)

	assert.False(t, f.HasCommand(Startup), "startup removes itself")
	assert.True(t, f.HasCommand(Greet))
	assert.Equal(t, []string{GreetingProxyName, DisplayNameProxy}, f.Model().ProxyNames())

	require.NoError(t, app.Greet(ctx, "main", "ada  lovelace"))
	require.NoError(t, app.Greet(ctx, "main", "grace"))

	assert.Equal(t, []Greeting{
		{Name: "Ada Lovelace", Message: "hi, Ada Lovelace"},
		{Name: "Grace", Message: "hi, Grace"},
	}, app.History("main"))

	app.Stop(ctx, "main")
	assert.False(t, registry.Has("main"))

	assert.Equal(t, "[main] console ready\n[main] hi, Ada Lovelace\n[main] hi, Grace\n[main] goodbye\n", out.String())
}

func TestApp_CoresAreIsolated(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	registry := core.NewRegistry()
	defer registry.Close()

	app := NewApp(registry, &out, "")
	_, err := app.Start(ctx, "a")
	require.NoError(t, err)
	_, err = app.Start(ctx, "b")
	require.NoError(t, err)

	require.NoError(t, app.Greet(ctx, "a", "x"))

	assert.Len(t, app.History("a"), 1)
	assert.Empty(t, app.History("b"))
	assert.Equal(t, "hello, X", app.History("a")[0].Message)
}

func TestApp_StartDuplicateKey(t *testing.T) {
	registry := core.NewRegistry()
	defer registry.Close()

	app := NewApp(registry, &bytes.Buffer{}, "")
	_, err := app.Start(context.Background(), "main")
	require.NoError(t, err)

	_, err = app.Start(context.Background(), "main")
	require.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestApp_StartWithoutWriterFails(t *testing.T) {
	registry := core.NewRegistry()
	defer registry.Close()

	app := NewApp(registry, nil, "")
	_, err := app.Start(context.Background(), "main")
	require.Error(t, err)
	assert.False(t, registry.Has("main"), "failed start releases the key")
}

func TestApp_GreetUnknownKey(t *testing.T) {
	app := NewApp(core.NewRegistry(), &bytes.Buffer{}, "")

	err := app.Greet(context.Background(), "ghost", "x")
	require.ErrorIs(t, err, ErrNotStarted)
	assert.Nil(t, app.History("ghost"))
}

func TestGreetCommand_BlankNameFails(t *testing.T) {
	ctx := context.Background()
	registry := core.NewRegistry()
	defer registry.Close()

	app := NewApp(registry, &bytes.Buffer{}, "")
	f, err := app.Start(ctx, "main")
	require.NoError(t, err)

	require.NoError(t, app.Greet(ctx, "main", "   "))

	assert.Empty(t, app.History("main"))
	assert.EqualValues(t, 1, f.Controller().ErrorCount())
}

func TestGreetCommand_WithoutStartup(t *testing.T) {
	f := facade.New("bare")
	defer f.Close()

	cmd := &GreetCommand{}
	cmd.InitializeNotifier(f)

	err := cmd.Execute(context.Background(), notificationFor("x"))
	require.ErrorIs(t, err, ErrNotStarted)
}

func TestGreetingProxy_Clear(t *testing.T) {
	var out bytes.Buffer
	f := facade.New("k")
	defer f.Close()

	f.RegisterMediator(NewConsoleMediator(&out))
	p := NewGreetingProxy("")
	f.RegisterProxy(p)

	p.Record("a")
	require.Len(t, p.History(), 1)

	p.Clear(context.Background())
	assert.Empty(t, p.History())
	assert.Contains(t, out.String(), "[k] history cleared")
}

func TestDisplayNameProxy_CachesLoads(t *testing.T) {
	p := NewDisplayNameProxy()

	name, err := p.Load(context.Background(), "alan turing")
	require.NoError(t, err)
	assert.Equal(t, "Alan Turing", name)

	cached, ok := p.Get("alan turing")
	require.True(t, ok)
	assert.Equal(t, "Alan Turing", cached)
}
