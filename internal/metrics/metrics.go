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

const namespace = "herdbook"

// Collector owns the service registry and its collectors.
type Collector struct {
	registry          *prometheus.Registry
	rationsCalculated *prometheus.CounterVec
	dailyRation       *prometheus.HistogramVec
	requestDuration   *prometheus.HistogramVec
	integrationErrors *prometheus.CounterVec
}

// New registers the service collectors on a fresh registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		rationsCalculated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rations_calculated_total",
				Help:      "Ration calculations served, by category and stage.",
			},
			[]string{"category", "stage"},
		),
		dailyRation: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "daily_ration_kg",
				Help:      "Daily ration per animal returned by the calculator.",
				Buckets:   prometheus.LinearBuckets(0, 0.5, 16),
			},
			[]string{"category"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		integrationErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "integration_errors_total",
				Help:      "Failed calls to MongoDB, Google Sheets or WhatsApp.",
			},
			[]string{"integration"},
		),
	}

	c.registry.MustRegister(
		c.rationsCalculated,
		c.dailyRation,
		c.requestDuration,
		c.integrationErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// ObserveRation records one served calculation. Category and stage must be
// normalized codes so label cardinality stays bounded.
func (c *Collector) ObserveRation(category, stage string, dailyKg float64) {
	if c == nil {
		return
	}
	c.rationsCalculated.WithLabelValues(category, stage).Inc()
	c.dailyRation.WithLabelValues(category).Observe(dailyKg)
}

// IntegrationError counts a failed call to an external collaborator.
func (c *Collector) IntegrationError(integration string) {
	if c == nil {
		return
	}
	c.integrationErrors.WithLabelValues(integration).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Middleware observes request latency labelled by the matched route.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		if c == nil {
			return
		}

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}

		c.requestDuration.
			WithLabelValues(ctx.Request.Method, route, strconv.Itoa(ctx.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
