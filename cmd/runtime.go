package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/zjrosen/mvc/internal/config"
	"github.com/zjrosen/mvc/internal/core"
	"github.com/zjrosen/mvc/internal/demo"
	"github.com/zjrosen/mvc/internal/facade"
	"github.com/zjrosen/mvc/internal/flags"
	"github.com/zjrosen/mvc/internal/log"
	"github.com/zjrosen/mvc/internal/metrics"
	"github.com/zjrosen/mvc/internal/tracing"
)

// runtime is the process-wide wiring shared by run and inspect.
type runtime struct {
	registry *core.Registry
	tracing  *tracing.Provider
	gatherer *prometheus.Registry
	metrics  *metrics.Metrics
	flags    *flags.Registry
	app      *demo.App
}

func newRuntime(c config.Config, out io.Writer) (*runtime, error) {
	tp, err := tracing.NewProvider(c.Tracing)
	if err != nil {
		return nil, fmt.Errorf("starting tracing: %w", err)
	}

	rt := &runtime{tracing: tp, flags: flags.New(c.Flags)}
	if names := rt.flags.EnabledNames(); len(names) > 0 {
		log.Debug(log.CatCore, "feature flags", "enabled", names)
	}
	var opts []core.Option
	if c.Metrics.Enabled {
		rt.gatherer = prometheus.NewRegistry()
		rt.gatherer.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		rt.metrics = metrics.New(rt.gatherer, c.Metrics.Namespace)
		opts = append(opts, core.WithMetrics(rt.metrics))
	}
	opts = append(opts, core.WithFacadeOptions(
		facade.WithTracer(tp.Tracer()),
		facade.WithDispatchSpans(rt.flags.Enabled(flags.FlagDispatchSpans)),
		facade.WithEventBuffer(c.Events.BufferSize),
	))

	rt.registry = core.NewRegistry(opts...)
	rt.app = demo.NewApp(rt.registry, out, c.Demo.Greeting)
	return rt, nil
}

// start boots the demo on every key and greets every name on each. onCreate
// runs for each core before it boots.
func (rt *runtime) start(ctx context.Context, keys, names []string, onCreate func(*facade.Facade)) error {
	for _, key := range keys {
		f, err := rt.registry.Create(key)
		if err != nil {
			return err
		}
		if onCreate != nil {
			onCreate(f)
		}
		if err := rt.app.Boot(ctx, f); err != nil {
			return err
		}
	}
	for _, key := range keys {
		for _, name := range names {
			if err := rt.app.Greet(ctx, key, name); err != nil {
				return err
			}
		}
	}
	return nil
}

// stop shuts the demo down on every key, then flushes traces.
func (rt *runtime) stop(ctx context.Context) error {
	for _, key := range rt.registry.Keys() {
		rt.app.Stop(ctx, key)
	}
	rt.registry.Close()
	return rt.tracing.Shutdown(ctx)
}

// serveMetrics serves /metrics on addr until ctx is done.
func (rt *runtime) serveMetrics(ctx context.Context, addr string) (<-chan error, error) {
	if rt.gatherer == nil {
		return nil, errors.New("metrics are disabled")
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(rt.gatherer))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		err := srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		done <- err
	}()

	log.Info(log.CatCore, "serving metrics", "addr", ln.Addr().String())
	return done, nil
}
