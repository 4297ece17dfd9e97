package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sagarc03/confguard"
)

const namespace = "confguard"

// Metrics holds Prometheus metrics for the validation server.
type Metrics struct {
	RequestDuration  *prometheus.HistogramVec
	ValidationsTotal *prometheus.CounterVec
	ProblemsTotal    *prometheus.CounterVec

	handler http.Handler
}

// NewMetrics creates the server metrics and registers them on reg. The
// /metrics endpoint serves everything gathered by reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status_code"}),
		ValidationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Total number of validations, by result.",
		}, []string{"result"}),
		ProblemsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "problems_total",
			Help:      "Total number of reported problems, by kind.",
		}, []string{"kind"}),
		handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}

	reg.MustRegister(m.RequestDuration, m.ValidationsTotal, m.ProblemsTotal)
	return m
}

// Middleware records request durations by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.RequestDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}

// ObserveReport counts a completed validation and its problems.
func (m *Metrics) ObserveReport(report confguard.Report) {
	result := "invalid"
	if report.Valid {
		result = "valid"
	}
	m.ValidationsTotal.WithLabelValues(result).Inc()

	for _, p := range report.Problems {
		m.ProblemsTotal.WithLabelValues(string(p.Kind)).Inc()
	}
}
