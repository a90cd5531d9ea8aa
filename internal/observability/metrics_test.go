package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	return rr.Body.String()
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/records")

	req := httptest.NewRequest(http.MethodGet, "/records", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}

	body := scrape(t, metrics)
	if !strings.Contains(body, `reviewdesk_http_requests_total{code="418",route="/records"} 1`) {
		t.Fatalf("expected metrics to record request, got: %s", body)
	}
	if !strings.Contains(body, `reviewdesk_http_request_duration_seconds_bucket{route="/records"`) {
		t.Fatalf("expected duration histogram to be present, got: %s", body)
	}
}

func TestObserveTransitionAndCache(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveTransition("pending", "approved")
	metrics.ObserveCacheLookup(true)
	metrics.ObserveCacheLookup(false)
	metrics.ObserveCacheLookup(false)

	body := scrape(t, metrics)
	if !strings.Contains(body, `reviewdesk_record_transitions_total{from="pending",to="approved"} 1`) {
		t.Fatalf("missing transition counter: %s", body)
	}
	if !strings.Contains(body, `reviewdesk_page_cache_lookups_total{result="miss"} 2`) {
		t.Fatalf("missing cache counter: %s", body)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics
	metrics.ObserveTransition("pending", "flagged")
	metrics.ObserveCacheLookup(true)

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}
