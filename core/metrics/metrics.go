package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry and every collector the service exports.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	itemsCreated   prometheus.Counter
	itemsDeleted   prometheus.Counter
	scoresRecorded prometheus.Counter
	scoresRejected prometheus.Counter
	scoreValues    prometheus.Histogram
	exports        *prometheus.CounterVec
}

// New registers all collectors under namespace.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests handled, by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		itemsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_created_total",
			Help:      "Items registered for ranking.",
		}),
		itemsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_deleted_total",
			Help:      "Items soft-deleted.",
		}),
		scoresRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scores_recorded_total",
			Help:      "Scores folded into an item average.",
		}),
		scoresRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scores_rejected_total",
			Help:      "Scores rejected for falling outside the item range.",
		}),
		scoreValues: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "score_value",
			Help:      "Distribution of submitted scores.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 10, 20, 50, 100},
		}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Project exports written to object storage, by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.itemsCreated,
		m.itemsDeleted,
		m.scoresRecorded,
		m.scoresRejected,
		m.scoreValues,
		m.exports,
	)
	return m
}

// Middleware records request counts and latency labelled with the matched route
// pattern, so path parameters do not explode cardinality.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		m.requests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
}

// ItemCreated counts a newly registered item.
func (m *Metrics) ItemCreated() {
	if m != nil {
		m.itemsCreated.Inc()
	}
}

// ItemDeleted counts a soft-deleted item.
func (m *Metrics) ItemDeleted() {
	if m != nil {
		m.itemsDeleted.Inc()
	}
}

// ScoreRecorded counts an accepted score and observes its value.
func (m *Metrics) ScoreRecorded(score float64) {
	if m != nil {
		m.scoresRecorded.Inc()
		m.scoreValues.Observe(score)
	}
}

// ScoreRejected counts a score outside the item range.
func (m *Metrics) ScoreRejected() {
	if m != nil {
		m.scoresRejected.Inc()
	}
}

// ExportFinished counts an export attempt by outcome.
func (m *Metrics) ExportFinished(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.exports.WithLabelValues(result).Inc()
}
