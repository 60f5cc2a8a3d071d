// Package metrics exposes Prometheus collectors for HTTP traffic and domain events.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "skillvault"

// Metrics owns a private registry. All recording methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	authAttempts        *prometheus.CounterVec
	verifications       *prometheus.CounterVec
	certificatesIssued  prometheus.Counter
	certificatesRevoked prometheus.Counter
	collegeTransitions  *prometheus.CounterVec
	questionGenerations *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Login and signup attempts by outcome.",
		}, []string{"operation", "result"}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "certificate_verifications_total",
			Help:      "Public certificate verifications by classification.",
		}, []string{"result"}),
		certificatesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "certificates_issued_total",
			Help:      "Certificates issued.",
		}),
		certificatesRevoked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "certificates_revoked_total",
			Help:      "Certificates revoked.",
		}),
		collegeTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "college_status_changes_total",
			Help:      "College status writes by target status.",
		}, []string{"status"}),
		questionGenerations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "question_generations_total",
			Help:      "Question generation requests by model and outcome.",
		}, []string{"model", "result"}),
	}

	registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.authAttempts,
		m.verifications,
		m.certificatesIssued,
		m.certificatesRevoked,
		m.collegeTransitions,
		m.questionGenerations,
	)

	return m
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request counts and latency keyed by the matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) AuthAttempt(operation, result string) {
	if m == nil {
		return
	}
	m.authAttempts.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) Verification(result string) {
	if m == nil {
		return
	}
	m.verifications.WithLabelValues(result).Inc()
}

func (m *Metrics) CertificateIssued() {
	if m == nil {
		return
	}
	m.certificatesIssued.Inc()
}

func (m *Metrics) CertificateRevoked() {
	if m == nil {
		return
	}
	m.certificatesRevoked.Inc()
}

func (m *Metrics) CollegeTransition(status string) {
	if m == nil {
		return
	}
	m.collegeTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) QuestionGeneration(model, result string) {
	if m == nil {
		return
	}
	m.questionGenerations.WithLabelValues(model, result).Inc()
}
