package config

import (
	"context"
	"fmt"
	"time"

	"github.com/zjrosen/mvc/internal/log"
	"github.com/zjrosen/mvc/internal/watcher"
)

// Watch reloads the config at path each time the file changes and passes the
// result to onReload, until ctx is done. A reload that fails to parse or
// validate is logged and skipped. The returned channel closes once watching
// has stopped.
func Watch(ctx context.Context, path string, debounce time.Duration, onReload func(Config)) (<-chan struct{}, error) {
	wcfg := watcher.DefaultConfig(path)
	if debounce > 0 {
		wcfg.DebounceDur = debounce
	}

	w, err := watcher.New(wcfg)
	if err != nil {
		return nil, err
	}
	changes, err := w.Start()
	if err != nil {
		_ = w.Stop()
		return nil, fmt.Errorf("watching config: %w", err)
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		defer func() { _ = w.Stop() }()

		for {
			select {
			case <-ctx.Done():
				return
			case <-changes:
				cfg, err := Load(path)
				if err != nil {
					log.ErrorErr(log.CatConfig, "config reload failed", err, "path", path)
					continue
				}
				log.Info(log.CatConfig, "config reloaded", "path", path)
				onReload(cfg)
			}
		}
	}()
	return stopped, nil
}
