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

// Metrics defines the service's Prometheus metrics.
type Metrics struct {
	registry *prometheus.Registry

	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	adminActions    *prometheus.CounterVec
	adminActionTime *prometheus.HistogramVec
	webhookDelivery *prometheus.CounterVec
	jobRuns         *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agentgift_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "agentgift_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		adminActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agentgift_admin_actions_total",
			Help: "Admin dispatcher calls by action and status.",
		}, []string{"action", "status"}),
		adminActionTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "agentgift_admin_action_duration_seconds",
			Help:    "Admin action handler latency.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"action"}),
		webhookDelivery: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agentgift_webhook_deliveries_total",
			Help: "Outbound emotional signature webhook attempts by result.",
		}, []string{"result"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agentgift_job_runs_total",
			Help: "Scheduled job runs by job and result.",
		}, []string{"job", "result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestCount,
		m.requestDuration,
		m.adminActions,
		m.adminActionTime,
		m.webhookDelivery,
		m.jobRuns,
	)
	return m
}

// ObserveAdminAction records one dispatcher call.
func (m *Metrics) ObserveAdminAction(action, status string, elapsed time.Duration) {
	m.adminActions.WithLabelValues(action, status).Inc()
	m.adminActionTime.WithLabelValues(action).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveWebhookDelivery(delivered bool) {
	result := "failed"
	if delivered {
		result = "delivered"
	}
	m.webhookDelivery.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveJobRun(job string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.jobRuns.WithLabelValues(job, result).Inc()
}

// Middleware times every request. The route label is the matched pattern, not the raw path.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		m.requestCount.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
