package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "enquiry_console",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "enquiry_console",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	mutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "enquiry_console",
		Name:      "mutations_total",
		Help:      "Enquiry mutations by action and outcome.",
	}, []string{"action", "outcome"})
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration, mutationsTotal)
}

// Mutation actions
const (
	ActionAttend = "attend"
	ActionDelete = "delete"
)

// ObserveMutation counts one attend/delete attempt
func ObserveMutation(action string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	mutationsTotal.WithLabelValues(action, outcome).Inc()
}

// MetricsMiddleware tracks request counts and latency per route pattern
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.statusCode)).Inc()
		requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// MetricsHandler exposes the Prometheus registry
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
