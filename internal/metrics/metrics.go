package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	providerCalls    *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec
	audioServed      *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		providerCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "speech_translator_provider_calls_total",
				Help: "Calls to external translation and speech providers.",
			},
			[]string{"stage", "provider", "status"}, // stage: detect, translate, synthesize
		),

		providerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "speech_translator_provider_duration_seconds",
				Help:    "Latency of external provider calls.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage", "provider"},
		),

		audioServed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "speech_translator_audio_requests_total",
				Help: "Audio file retrievals by result.",
			},
			[]string{"status"}, // ok, not_found, error
		),
	}

	m.registry.MustRegister(
		m.providerCalls,
		m.providerDuration,
		m.audioServed,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveCall records one provider call.
func (m *Metrics) ObserveCall(stage, provider string, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	m.providerCalls.WithLabelValues(stage, provider, status).Inc()
	m.providerDuration.WithLabelValues(stage, provider).Observe(d.Seconds())
}

// RecordAudioRequest counts one retrieval by its status label.
func (m *Metrics) RecordAudioRequest(status string) {
	m.audioServed.WithLabelValues(status).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
