package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffhub/staffhub/internal/shared/logger"
)

func TestBillingCounters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordTransition("TRIAL", "ACTIVE")
	m.RecordTransition("TRIAL", "ACTIVE")
	m.RecordSettlement("webhook", "applied")
	m.RecordWebhook("payment.captured", "duplicate")
	m.RecordEntitlementDenial("TRIAL_EXPIRED")
	m.RecordReconciled(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TransitionsTotal.WithLabelValues("TRIAL", "ACTIVE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SettlementsTotal.WithLabelValues("webhook", "applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WebhooksTotal.WithLabelValues("payment.captured", "duplicate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EntitlementDenialsTotal.WithLabelValues("TRIAL_EXPIRED")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ReconciledTotal))
}

func TestGatewayLatency(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveGatewayCall("create_order", "ok", 120*time.Millisecond)
	m.ObserveGatewayCall("create_order", "error", 3*time.Second)

	assert.Equal(t, 2, testutil.CollectAndCount(m.GatewayRequestDuration))
}

type fixedCounts map[string]int64

func (f fixedCounts) CountByStatus(context.Context) (map[string]int64, error) {
	return f, nil
}

func TestSubscriptionGaugeAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics(prometheus.NewRegistry())
	m.RegisterSubscriptionGauge(fixedCounts{"ACTIVE": 4, "TRIAL": 2}, logger.NewNopLogger())

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.True(t, strings.Contains(body, `staffhub_subscriptions{status="ACTIVE"} 4`))
	assert.True(t, strings.Contains(body, `staffhub_http_requests_total{method="GET",path="/ping",status="204"} 1`))
}
