// Package metrics exposes Prometheus instruments for the HTTP surface,
// authorization decisions and validation failures.
package metrics

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Namespace is the Prometheus namespace for all service metrics
	Namespace = "users"

	LabelMethod     = "method"
	LabelRoute      = "route"
	LabelStatusCode = "status_code"
	LabelEngine     = "engine"
	LabelAction     = "action"
	LabelResult     = "result"
	LabelOperation  = "operation"
	LabelField      = "field"

	ResultAllow = "allow"
	ResultDeny  = "deny"
)

var (
	// HTTPRequestsTotal counts requests by method, route pattern and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route and status code",
		},
		[]string{LabelMethod, LabelRoute, LabelStatusCode},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelMethod, LabelRoute},
	)

	// PolicyDecisionsTotal counts authorization decisions per engine and action.
	PolicyDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "policy",
			Name:      "decisions_total",
			Help:      "Total number of authorization decisions by engine, action and result",
		},
		[]string{LabelEngine, LabelAction, LabelResult},
	)

	// ValidationFailuresTotal counts rejected fields per operation.
	ValidationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "validation",
			Name:      "failures_total",
			Help:      "Total number of field validation failures by operation and field",
		},
		[]string{LabelOperation, LabelField},
	)

	enabled atomic.Bool
)

func init() {
	enabled.Store(true)
}

func Enable()               { enabled.Store(true) }
func Disable()              { enabled.Store(false) }
func IsEnabled() bool       { return enabled.Load() }
func Handler() http.Handler { return promhttp.Handler() }

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if !enabled.Load() {
		return
	}
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordDecision matches the decision hook of policy.Instrumented.
func RecordDecision(engine, action string, allowed bool) {
	if !enabled.Load() {
		return
	}
	result := ResultDeny
	if allowed {
		result = ResultAllow
	}
	PolicyDecisionsTotal.WithLabelValues(engine, action, result).Inc()
}

func RecordValidationFailure(operation string, fields []string) {
	if !enabled.Load() {
		return
	}
	for _, f := range fields {
		ValidationFailuresTotal.WithLabelValues(operation, f).Inc()
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and latency labelled by the chi route
// pattern, so ids in paths do not explode cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		RecordHTTPRequest(r.Method, route, rec.status, time.Since(start))
	})
}
