// Package metrics exposes prometheus collectors for notification dispatch and
// command execution.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zjrosen/mvc/internal/controller"
	"github.com/zjrosen/mvc/internal/notification"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "mvc"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	NotificationsSent *prometheus.CounterVec
	CommandsExecuted  *prometheus.CounterVec
	CommandDuration   *prometheus.HistogramVec
	Cores             prometheus.Gauge
}

// New registers the collectors with reg under namespace.
func New(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(reg)

	return &Metrics{
		NotificationsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "Total number of notifications sent, by core and notification name",
		}, []string{"key", "notification"}),
		CommandsExecuted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_executed_total",
			Help:      "Total number of command executions, by core, command and outcome",
		}, []string{"key", "command", "outcome"}),
		CommandDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Command execution time",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"key", "command"}),
		Cores: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cores",
			Help:      "Current number of registered cores",
		}),
	}
}

// ObserveNotification counts one sent notification.
func (m *Metrics) ObserveNotification(key, name string) {
	if m == nil {
		return
	}
	m.NotificationsSent.WithLabelValues(key, name).Inc()
}

// SetCores records the current number of cores.
func (m *Metrics) SetCores(count int) {
	if m == nil {
		return
	}
	m.Cores.Set(float64(count))
}

// Middleware records outcome and duration of every command run by the
// Controller of the core identified by key.
func (m *Metrics) Middleware(key string) controller.Middleware {
	if m == nil {
		return nil
	}
	return func(next controller.Handler) controller.Handler {
		return controller.HandlerFunc(func(ctx context.Context, cmd controller.Command, n notification.Notification) error {
			start := time.Now()
			err := next.Handle(ctx, cmd, n)

			name := controller.CommandName(cmd)
			outcome := OutcomeSuccess
			if err != nil {
				outcome = OutcomeError
			}
			m.CommandsExecuted.WithLabelValues(key, name, outcome).Inc()
			m.CommandDuration.WithLabelValues(key, name).Observe(time.Since(start).Seconds())
			return err
		})
	}
}

// Handler serves the collectors registered with gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
