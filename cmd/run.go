package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zjrosen/mvc/internal/config"
	"github.com/zjrosen/mvc/internal/controller"
	"github.com/zjrosen/mvc/internal/facade"
	"github.com/zjrosen/mvc/internal/flags"
	"github.com/zjrosen/mvc/internal/log"
	"github.com/zjrosen/mvc/internal/pubsub"
)

var (
	runServe  string
	runWatch  bool
	runWait   bool
	runEvents bool
)

var runCmd = &cobra.Command{
	Use:   "run [name...]",
	Short: "Start the demo application and greet each name",
	Long: `Start the demo application on every configured core key and greet each
name on every core.

Examples:
  # Greet two people on the default core
  mvc run ada grace

  # Print every notification sent, as it is sent
  mvc run --events ada

  # Serve prometheus metrics and reload the log level when the config changes
  mvc run --serve 127.0.0.1:9464 --watch`,
	RunE: runDemo,
}

func init() {
	runCmd.Flags().StringVar(&runServe, "serve", "", "serve /metrics on this address until interrupted (enables metrics)")
	runCmd.Flags().BoolVar(&runWatch, "watch", false, "reload the log level when the config file changes, until interrupted")
	runCmd.Flags().BoolVar(&runWait, "wait", false, "keep running until interrupted")
	runCmd.Flags().BoolVar(&runEvents, "events", false, "print notification events to stderr")
	rootCmd.AddCommand(runCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := cfg
	serveAddr := runServe
	if serveAddr == "" {
		serveAddr = c.Metrics.Addr
	}
	if serveAddr != "" {
		c.Metrics.Enabled = true
	}

	rt, err := newRuntime(c, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	var taps []<-chan struct{}
	var onCreate func(*facade.Facade)
	if runEvents || rt.flags.Enabled(flags.FlagEventTap) {
		onCreate = func(f *facade.Facade) {
			taps = append(taps, tapEvents(ctx, f, cmd.ErrOrStderr()))
		}
	}

	if err := rt.start(ctx, c.Demo.Keys, args, onCreate); err != nil {
		_ = rt.stop(context.Background())
		return err
	}

	blocking := runWait
	var served <-chan error
	var watched <-chan struct{}
	if serveAddr != "" {
		served, err = rt.serveMetrics(ctx, serveAddr)
		if err != nil {
			_ = rt.stop(context.Background())
			return err
		}
		blocking = true
	}
	if runWatch {
		if cfgPath == "" {
			_ = rt.stop(context.Background())
			return fmt.Errorf("--watch needs a config file")
		}
		watched, err = config.Watch(ctx, cfgPath, 0, applyReload)
		if err != nil {
			_ = rt.stop(context.Background())
			return err
		}
		blocking = true
	}

	if blocking {
		fmt.Fprintln(cmd.ErrOrStderr(), "running; press Ctrl-C to stop")
		select {
		case <-ctx.Done():
		case err = <-served:
		}
		stop()
	}

	if stopErr := rt.stop(context.Background()); err == nil {
		err = stopErr
	}
	if watched != nil {
		<-watched
	}
	for _, tap := range taps {
		<-tap
	}
	return err
}

// tapEvents prints every event of f's bus to w until the bus closes.
func tapEvents(ctx context.Context, f *facade.Facade, w io.Writer) <-chan struct{} {
	return f.Events().Listen(ctx, func(evt pubsub.Event[any]) {
		switch p := evt.Payload.(type) {
		case facade.NotificationEvent:
			fmt.Fprintf(w, "%s %s %s %s\n", evt.Type, p.Key, p.Name, p.ID)
		case controller.CommandLogEvent:
			fmt.Fprintf(w, "%s %s %s %s %s\n", evt.Type, p.Key, p.Notification, p.Command, p.Duration)
		default:
			fmt.Fprintf(w, "%s %s %+v\n", evt.Type, f.Key(), p)
		}
	})
}

// applyReload applies the settings that can change while running.
func applyReload(c config.Config) {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return
	}
	log.SetMinLevel(level)
	log.SetEnabled(c.Log.Enabled || debug)
	log.Info(log.CatConfig, "log level applied", "level", level.String())
}
