package app

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build many Apps.
type Metrics struct {
	reg *prometheus.Registry

	requests        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	authRejections  *prometheus.CounterVec
	authEvents      *prometheus.CounterVec
	feedSubscribers prometheus.Gauge
	feedDropped     prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "minisocial",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status class.",
		}, []string{"method", "route", "class"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "minisocial",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		authRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "minisocial",
			Name:      "auth_rejections_total",
			Help:      "Requests refused by the identity middleware, by reason.",
		}, []string{"reason"}),
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "minisocial",
			Name:      "auth_events_total",
			Help:      "Signup and login outcomes.",
		}, []string{"event"}),
		feedSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "minisocial",
			Name:      "feed_subscribers",
			Help:      "Connected live feed websockets.",
		}),
		feedDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "minisocial",
			Name:      "feed_events_dropped_total",
			Help:      "Feed events dropped because a subscriber queue was full.",
		}),
	}

	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.authRejections,
		m.authEvents,
		m.feedSubscribers,
		m.feedDropped,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func (m *Metrics) observe(method, route string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, route, statusClass(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(d.Seconds())
}

// WithMetrics records request count and latency. The route label is the
// matched ServeMux pattern so ids never become label values.
func WithMetrics(next http.Handler, m *Metrics) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := asStatusWriter(w)

		next.ServeHTTP(sw, r)

		m.observe(r.Method, routeLabel(r), sw.status, time.Since(start))
	})
}

func routeLabel(r *http.Request) string {
	if r.Pattern == "" {
		return "unmatched"
	}
	return r.Pattern
}

func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}
