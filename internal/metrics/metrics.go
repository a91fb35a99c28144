// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	metricsprom "github.com/slok/go-http-metrics/metrics/prometheus"
	"github.com/slok/go-http-metrics/middleware"
	"github.com/slok/go-http-metrics/middleware/std"
)

var (
	// WebhookEvents counts received webhook deliveries by event type and action.
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deploylinks_webhook_events_total",
		Help: "Webhook deliveries received, by event type and action",
	}, []string{"event", "action"})

	// CommentWrites counts deployment comment mutations by kind (create, update)
	// and outcome (ok, error).
	CommentWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deploylinks_comment_writes_total",
		Help: "Deployment comment create and update calls, by kind and outcome",
	}, []string{"kind", "outcome"})

	// Refreshes counts link and translation-stats refreshes by kind and outcome
	// (updated, unchanged, skipped, error).
	Refreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deploylinks_refreshes_total",
		Help: "Deployment comment refresh attempts, by kind and outcome",
	}, []string{"kind", "outcome"})
)

var (
	httpMiddlewareOnce sync.Once
	httpMiddleware     middleware.Middleware
)

// HTTPMiddleware returns the shared request-metrics middleware. The recorder
// registers its collectors on the default registry, so it is built only once
// per process.
func HTTPMiddleware() middleware.Middleware {
	httpMiddlewareOnce.Do(func() {
		httpMiddleware = middleware.New(middleware.Config{
			Recorder: metricsprom.NewRecorder(metricsprom.Config{}),
		})
	})
	return httpMiddleware
}

// Instrument wraps h so its requests are recorded under handlerID.
func Instrument(handlerID string, h http.Handler) http.Handler {
	return std.Handler(handlerID, HTTPMiddleware(), h)
}
