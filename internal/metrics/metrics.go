// Package metrics exposes Prometheus instrumentation for the pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	WebhookRequests *prometheus.CounterVec
	EventsEmitted   *prometheus.CounterVec
	StageRuns       *prometheus.CounterVec
	HandlerRetries  *prometheus.CounterVec
	LLMTokens       *prometheus.CounterVec
	SEORequests     prometheus.Counter
}

// New registers and returns the service collectors on reg. Pass a fresh
// registry in tests to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		WebhookRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "webhook_requests_total",
			Help: "Webhook requests by route and outcome.",
		}, []string{"route", "outcome"}),
		EventsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "events_emitted_total",
			Help: "Events emitted by name.",
		}, []string{"event"}),
		StageRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stage_runs_total",
			Help: "Stage function runs by stage and result.",
		}, []string{"stage", "result"}),
		HandlerRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "event_handler_retries_total",
			Help: "Event handler retry attempts by event.",
		}, []string{"event"}),
		LLMTokens: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "LLM token usage by stage and direction.",
		}, []string{"stage", "direction"}),
		SEORequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "seo_api_requests_total",
			Help: "Requests issued to the SEO metrics API.",
		}),
	}
}

// NewDefault registers the collectors on the default registry.
func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer)
}
