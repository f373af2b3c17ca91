// Package metrics provides Prometheus instrumentation for the scoring service.
package metrics

import (
	"strconv"
	"time"

	"scamshield/internal/services/risk"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "scamshield"

// Collector implements risk.MetricsCollector on top of Prometheus vectors.
type Collector struct {
	gatherer prometheus.Gatherer

	assessments     *prometheus.CounterVec
	scoringDuration prometheus.Histogram
	fallbacks       *prometheus.CounterVec
	overrides       *prometheus.CounterVec
	muleScores      prometheus.Histogram
	breakerState    *prometheus.GaugeVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// NewCollector registers every metric on reg. Pass prometheus.NewRegistry()
// in tests to keep them isolated.
func NewCollector(reg *prometheus.Registry) *Collector {
	c := &Collector{
		gatherer: reg,
		assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_total",
			Help:      "Payments scored, by resulting action.",
		}, []string{"action"}),
		scoringDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scoring_duration_seconds",
			Help:      "Time spent scoring one payment.",
			Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collaborator_fallbacks_total",
			Help:      "Scoring runs where a collaborator failed and its signal was dropped.",
		}, []string{"collaborator"}),
		overrides: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "action_overrides_total",
			Help:      "Stored actions changed after scoring, by source and new action.",
		}, []string{"source", "action"}),
		muleScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mule_score",
			Help:      "Destination mule score observed while scoring.",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0: closed, 1: half-open, 2: open).",
		}, []string{"name"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		c.assessments,
		c.scoringDuration,
		c.fallbacks,
		c.overrides,
		c.muleScores,
		c.breakerState,
		c.httpRequests,
		c.httpDuration,
	)
	return c
}

func (c *Collector) RecordAssessment(action risk.Action, d time.Duration) {
	c.assessments.WithLabelValues(string(action)).Inc()
	c.scoringDuration.Observe(d.Seconds())
}

func (c *Collector) RecordFallback(collaborator string) {
	c.fallbacks.WithLabelValues(collaborator).Inc()
}

func (c *Collector) RecordOverride(source risk.OverrideSource, action risk.Action) {
	c.overrides.WithLabelValues(string(source), string(action)).Inc()
}

func (c *Collector) RecordMuleScore(score int) {
	c.muleScores.Observe(float64(score))
}

// SetBreakerState publishes a circuit breaker transition.
func (c *Collector) SetBreakerState(name string, state int) {
	c.breakerState.WithLabelValues(name).Set(float64(state))
}

// Middleware records request counts and latency per matched route.
func (c *Collector) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()

		status := ctx.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := ctx.Route().Path
		c.httpRequests.WithLabelValues(ctx.Method(), route, strconv.Itoa(status)).Inc()
		c.httpDuration.WithLabelValues(ctx.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{}))
}
