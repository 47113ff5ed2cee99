// Package metrics exposes Prometheus instrumentation for the API.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "restoration_tracker"

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	registry *prometheus.Registry

	Requests            *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
	ActivityTransitions *prometheus.CounterVec
	AttachmentBytes     prometheus.Counter
	NotificationsSent   *prometheus.CounterVec
}

// New creates the metrics on a private registry along with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route template, method and status",
		}, []string{"route", "method", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route template and method",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		ActivityTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "administrative_activity_transitions_total",
			Help:      "Administrative activity status changes by target status",
		}, []string{"status"}),
		AttachmentBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attachment_upload_bytes_total",
			Help:      "Bytes written to the attachment object store",
		}),
		NotificationsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "GC Notify emails by template and result",
		}, []string{"template", "result"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveTransition counts an administrative activity moving to status.
func (m *Metrics) ObserveTransition(status string) {
	if m == nil {
		return
	}
	m.ActivityTransitions.WithLabelValues(status).Inc()
}

// ObserveNotification counts a notification attempt.
func (m *Metrics) ObserveNotification(template string, err error) {
	if m == nil {
		return
	}
	result := "sent"
	if err != nil {
		result = "failed"
	}
	m.NotificationsSent.WithLabelValues(template, result).Inc()
}

// ObserveUpload counts attachment bytes stored.
func (m *Metrics) ObserveUpload(n int64) {
	if m == nil {
		return
	}
	m.AttachmentBytes.Add(float64(n))
}

// Middleware records request counts and latency keyed by the matched mux
// route template so ids in paths do not explode cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snoop := httpsnoop.CaptureMetrics(next, w, r)

		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		m.Requests.WithLabelValues(route, r.Method, strconv.Itoa(snoop.Code)).Inc()
		m.RequestDuration.WithLabelValues(route, r.Method).Observe(snoop.Duration.Seconds())
	})
}
