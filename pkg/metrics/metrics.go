// Package metrics holds the Prometheus collectors the API exports on /metrics.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry         *prometheus.Registry
	authAttempts     *prometheus.CounterVec
	ownershipDenials *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studypal_auth_attempts_total",
			Help: "Register and login attempts by outcome.",
		}, []string{"op", "outcome"}),
		ownershipDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studypal_ownership_denials_total",
			Help: "Requests rejected because the caller does not own the resource.",
		}, []string{"resource"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studypal_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(
		m.authAttempts,
		m.ownershipDenials,
		m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) AuthAttempt(op, outcome string) {
	if m == nil {
		return
	}
	m.authAttempts.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) OwnershipDenied(resource string) {
	if m == nil {
		return
	}
	m.ownershipDenials.WithLabelValues(resource).Inc()
}

func (m *Metrics) HTTPRequest(method, route, status string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
