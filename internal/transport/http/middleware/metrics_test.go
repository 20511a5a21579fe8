package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHTTPMetricsCountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)

	registry := prometheus.NewRegistry()
	metrics, err := NewHTTPMetrics(HTTPMetricsOptions{Registerer: registry})
	if err != nil {
		t.Fatalf("NewHTTPMetrics: %v", err)
	}

	router := gin.New()
	router.Use(metrics.Handler())
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	}

	count := testutil.ToFloat64(metrics.Requests.WithLabelValues(http.MethodGet, "/ok", "200"))
	if count != 3 {
		t.Fatalf("expected 3 counted requests, got %v", count)
	}
}

func TestHTTPMetricsReregistrationReusesCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()

	first, err := NewHTTPMetrics(HTTPMetricsOptions{Registerer: registry})
	if err != nil {
		t.Fatalf("NewHTTPMetrics: %v", err)
	}
	second, err := NewHTTPMetrics(HTTPMetricsOptions{Registerer: registry})
	if err != nil {
		t.Fatalf("NewHTTPMetrics on reuse: %v", err)
	}

	if first.Requests != second.Requests {
		t.Fatal("expected re-registration to reuse the requests collector")
	}
}

func TestRecordAuthOutcome(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics, err := NewHTTPMetrics(HTTPMetricsOptions{Registerer: registry})
	if err != nil {
		t.Fatalf("NewHTTPMetrics: %v", err)
	}

	metrics.RecordAuthOutcome("platform", "ok")
	metrics.RecordAuthOutcome("platform", "ok")
	metrics.RecordAuthOutcome("dashboard", "rejected")

	if got := testutil.ToFloat64(metrics.AuthOutcomes.WithLabelValues("platform", "ok")); got != 2 {
		t.Fatalf("expected 2 platform ok outcomes, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.AuthOutcomes.WithLabelValues("dashboard", "rejected")); got != 1 {
		t.Fatalf("expected 1 dashboard rejected outcome, got %v", got)
	}

	var nilMetrics *HTTPMetrics
	nilMetrics.RecordAuthOutcome("platform", "ok")
}
