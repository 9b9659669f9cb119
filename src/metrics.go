package wsprcodex

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics for the HTTP service.  Own registry so tests can make as many as they like.
type Metrics struct {
	registry     *prometheus.Registry
	requests     *prometheus.CounterVec   // op, kind
	payloadBytes *prometheus.HistogramVec // op
	messages     *prometheus.HistogramVec // op
}

func NewMetrics() *Metrics {
	var m = &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{ //nolint:exhaustruct
			Namespace: "wsprcodex",
			Name:      "requests_total",
			Help:      "Encode and decode requests by outcome (error kind, or none).",
		}, []string{"op", "kind"}),
		payloadBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{ //nolint:exhaustruct
			Namespace: "wsprcodex",
			Name:      "payload_bytes",
			Help:      "Payload size of successful requests.",
			Buckets:   []float64{4, 16, 64, 128, 256, 512, 768},
		}, []string{"op"}),
		messages: prometheus.NewHistogramVec(prometheus.HistogramOpts{ //nolint:exhaustruct
			Namespace: "wsprcodex",
			Name:      "messages",
			Help:      "WSPR messages per successful request.",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64, 128, 256},
		}, []string{"op"}),
	}

	m.registry.MustRegister(m.requests, m.payloadBytes, m.messages)

	return m
}

func (m *Metrics) observe(op string, err error, payload int, messages int) {
	m.requests.WithLabelValues(op, ErrorKind(err)).Inc()

	if err == nil {
		m.payloadBytes.WithLabelValues(op).Observe(float64(payload))
		m.messages.WithLabelValues(op).Observe(float64(messages))
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}) //nolint:exhaustruct
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
