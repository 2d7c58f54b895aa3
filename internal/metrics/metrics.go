// Package metrics exports Prometheus instruments for chat dispatches.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zava/storefront-chat/internal/chat"
)

// LLMBuckets covers inference latencies from 100ms to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

// Dispatch records one sample per chat.Dispatcher.Send, labelled by outcome kind.
type Dispatch struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewDispatch creates the dispatch instruments and registers them on reg.
func NewDispatch(reg prometheus.Registerer) *Dispatch {
	m := &Dispatch{
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_chat_dispatch_total",
				Help: "Chat dispatches by outcome kind",
			},
			[]string{"kind"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storefront_chat_dispatch_duration_seconds",
				Help:    "Chat dispatch duration",
				Buckets: LLMBuckets,
			},
			[]string{"kind"},
		),
	}
	reg.MustRegister(m.total, m.duration)
	return m
}

// Observe implements chat.Recorder.
func (m *Dispatch) Observe(kind chat.Kind, elapsed time.Duration) {
	m.total.WithLabelValues(string(kind)).Inc()
	m.duration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
}

// Handler serves the exposition format for g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
