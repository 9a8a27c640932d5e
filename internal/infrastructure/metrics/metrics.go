// Package metrics exposes billing counters to Prometheus.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/staffhub/staffhub/internal/application/billing/usecases"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Billing metrics
	TransitionsTotal        *prometheus.CounterVec
	SettlementsTotal        *prometheus.CounterVec
	WebhooksTotal           *prometheus.CounterVec
	EntitlementDenialsTotal *prometheus.CounterVec
	ReconciledTotal         prometheus.Counter
	GatewayRequestDuration  *prometheus.HistogramVec
}

var _ usecases.Metrics = (*Metrics)(nil)

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "staffhub_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "staffhub_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		TransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "staffhub_subscription_transitions_total",
				Help: "Subscription status transitions",
			},
			[]string{"from", "to"},
		),
		SettlementsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "staffhub_payment_settlements_total",
				Help: "Capture settlement attempts by source and result",
			},
			[]string{"source", "result"},
		),
		WebhooksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "staffhub_webhooks_total",
				Help: "Webhook deliveries by event type and outcome",
			},
			[]string{"event", "outcome"},
		),
		EntitlementDenialsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "staffhub_entitlement_denials_total",
				Help: "Requests refused by the entitlement guard",
			},
			[]string{"code"},
		),
		ReconciledTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "staffhub_payments_reconciled_total",
				Help: "Stale orders marked failed by the reconciler",
			},
		),
		GatewayRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "staffhub_gateway_request_duration_seconds",
				Help:    "Payment provider call latency",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"op", "result"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.TransitionsTotal,
		m.SettlementsTotal,
		m.WebhooksTotal,
		m.EntitlementDenialsTotal,
		m.ReconciledTotal,
		m.GatewayRequestDuration,
	)

	return m
}

func (m *Metrics) RecordTransition(from, to string) {
	m.TransitionsTotal.WithLabelValues(from, to).Inc()
}

func (m *Metrics) RecordSettlement(source, result string) {
	m.SettlementsTotal.WithLabelValues(source, result).Inc()
}

func (m *Metrics) RecordWebhook(eventType, outcome string) {
	m.WebhooksTotal.WithLabelValues(eventType, outcome).Inc()
}

func (m *Metrics) RecordEntitlementDenial(code string) {
	m.EntitlementDenialsTotal.WithLabelValues(code).Inc()
}

func (m *Metrics) RecordReconciled(count int) {
	m.ReconciledTotal.Add(float64(count))
}

func (m *Metrics) ObserveGatewayCall(op, result string, d time.Duration) {
	m.GatewayRequestDuration.WithLabelValues(op, result).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency by route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// StatusCounter reports subscriptions per status.
type StatusCounter interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// subscriptionCollector queries subscription counts on each scrape.
type subscriptionCollector struct {
	counter StatusCounter
	desc    *prometheus.Desc
	logger  logger.Interface
}

// RegisterSubscriptionGauge adds a per-status subscription gauge computed at scrape time.
func (m *Metrics) RegisterSubscriptionGauge(counter StatusCounter, logger logger.Interface) {
	m.registry.MustRegister(&subscriptionCollector{
		counter: counter,
		desc: prometheus.NewDesc(
			"staffhub_subscriptions",
			"Subscriptions by status",
			[]string{"status"}, nil,
		),
		logger: logger,
	})
}

func (c *subscriptionCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *subscriptionCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	counts, err := c.counter.CountByStatus(ctx)
	if err != nil {
		c.logger.Warnw("failed to collect subscription counts", "error", err)
		return
	}
	for status, n := range counts {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(n), status)
	}
}
