package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "beanstock"

// Collector owns the service's prometheus registry. A nil *Collector is
// valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	planDuration   prometheus.Histogram
	cacheResults   *prometheus.CounterVec
	ingestRows     *prometheus.CounterVec
	atRiskItems    prometheus.Histogram
	shortageLines  prometheus.Histogram
	recipeRequests prometheus.Counter
}

// NewCollector creates a collector with its own registry, including the
// default process and Go runtime collectors.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		planDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_plan_duration_seconds",
			Help:      "Time taken to load a snapshot and build an order plan",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		cacheResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Cache lookups by cached view and result",
			},
			[]string{"view", "result"},
		),
		ingestRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingest_rows_total",
				Help:      "Uploaded rows by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		atRiskItems: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "risk_report_at_risk_items",
			Help:      "Number of at-risk items per risk evaluation",
			Buckets:   prometheus.LinearBuckets(0, 5, 10),
		}),
		shortageLines: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_plan_shortage_lines",
			Help:      "Number of lines with something to order per plan",
			Buckets:   prometheus.LinearBuckets(0, 5, 10),
		}),
		recipeRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recipe_calculations_total",
			Help:      "Recipe order calculations served",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.httpRequests,
		c.httpDuration,
		c.planDuration,
		c.cacheResults,
		c.ingestRows,
		c.atRiskItems,
		c.shortageLines,
		c.recipeRequests,
	)

	return c
}

// Handler serves the registry in the prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// ObserveHTTP records one served request.
func (c *Collector) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObservePlan records a freshly computed plan.
func (c *Collector) ObservePlan(elapsed time.Duration, shortageLines int) {
	if c == nil {
		return
	}
	c.planDuration.Observe(elapsed.Seconds())
	c.shortageLines.Observe(float64(shortageLines))
}

// CacheLookup records a cache hit or miss for a view.
func (c *Collector) CacheLookup(view string, hit bool) {
	if c == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheResults.WithLabelValues(view, result).Inc()
}

// ObserveIngest records the outcome of one upload.
func (c *Collector) ObserveIngest(kind string, written, skipped int) {
	if c == nil {
		return
	}
	c.ingestRows.WithLabelValues(kind, "written").Add(float64(written))
	c.ingestRows.WithLabelValues(kind, "skipped").Add(float64(skipped))
}

// ObserveRisk records the at-risk count of one evaluation.
func (c *Collector) ObserveRisk(atRisk int) {
	if c == nil {
		return
	}
	c.atRiskItems.Observe(float64(atRisk))
}

func (c *Collector) ObserveRecipeCalculation() {
	if c == nil {
		return
	}
	c.recipeRequests.Inc()
}
