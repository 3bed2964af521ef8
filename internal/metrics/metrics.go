// Package metrics exposes Prometheus collectors for the HTTP layer and the
// marketplace services. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lawconnect"

type Metrics struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	lawyerSearches  *prometheus.CounterVec
	chatMessages    *prometheus.CounterVec
	eventFailures   *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route", "status"}),
		lawyerSearches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lawyer_searches_total",
			Help:      "Lawyer directory searches by cache outcome.",
		}, []string{"cache"}),
		chatMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_messages_total",
			Help:      "Chat messages stored, split by whether they opened a thread.",
		}, []string{"kind"}),
		eventFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_failures_total",
			Help:      "Events that could not be published.",
		}, []string{"event"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration,
		m.lawyerSearches,
		m.chatMessages,
		m.eventFailures,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

func (m *Metrics) LawyerSearch(cacheHit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if cacheHit {
		outcome = "hit"
	}
	m.lawyerSearches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ChatMessage(newThread bool) {
	if m == nil {
		return
	}
	kind := "reply"
	if newThread {
		kind = "first"
	}
	m.chatMessages.WithLabelValues(kind).Inc()
}

func (m *Metrics) EventFailed(event string) {
	if m == nil {
		return
	}
	m.eventFailures.WithLabelValues(event).Inc()
}
