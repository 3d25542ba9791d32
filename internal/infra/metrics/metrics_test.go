package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveUserClient(t *testing.T) {
	m := New(false)

	m.ObserveUserClient("rest", "GetUser", time.Millisecond, nil)
	m.ObserveUserClient("rest", "GetUser", time.Millisecond, errors.New("boom"))
	m.OnRetry(http.MethodGet, "/api/users/1", errors.New("503"), time.Millisecond)

	if got := testutil.ToFloat64(m.UserClientCalls.WithLabelValues("rest", "GetUser", "success")); got != 1 {
		t.Fatalf("expected 1 success got %v", got)
	}
	if got := testutil.ToFloat64(m.UserClientCalls.WithLabelValues("rest", "GetUser", "error")); got != 1 {
		t.Fatalf("expected 1 error got %v", got)
	}
	if got := testutil.ToFloat64(m.UserClientRetries.WithLabelValues(http.MethodGet)); got != 1 {
		t.Fatalf("expected 1 retry got %v", got)
	}
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New(false)
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/orders/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", m.Handler())

	req := httptest.NewRequest(http.MethodGet, "/api/orders/1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodGet, "/api/orders/:id", "200")); got != 1 {
		t.Fatalf("expected the route template to be counted, got %v", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "orderdemo_http_requests_total") {
		t.Fatalf("expected exposition to contain request counter")
	}
}
