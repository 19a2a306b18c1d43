package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petclinic/records/internal/middleware"
)

func newInstrumentedRouter(t *testing.T) (http.Handler, http.Handler) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m, err := middleware.NewMetrics(reg)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(m.Handler)
	r.Get("/holders/{holderId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/holders", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	})
	return r, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func scrape(t *testing.T, metrics http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	metrics.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMetrics_LabelsByRoutePattern(t *testing.T) {
	router, metrics := newInstrumentedRouter(t)

	for _, path := range []string{"/holders/1", "/holders/2", "/holders/3"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	out := scrape(t, metrics)
	assert.Contains(t, out, `http_requests_total{method="GET",path="/holders/{holderId}",status="200"} 3`)
	assert.Contains(t, out, `http_request_duration_seconds_count{method="GET",path="/holders/{holderId}"} 3`)
	assert.NotContains(t, out, `path="/holders/1"`)
}

func TestMetrics_RecordsStatus(t *testing.T) {
	router, metrics := newInstrumentedRouter(t)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/holders", nil))

	assert.Contains(t, scrape(t, metrics), `http_requests_total{method="POST",path="/holders",status="422"} 1`)
}

func TestMetrics_UnmatchedRoute(t *testing.T) {
	router, metrics := newInstrumentedRouter(t)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope/123", nil))

	assert.Contains(t, scrape(t, metrics), `http_requests_total{method="GET",path="unmatched",status="404"} 1`)
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := middleware.NewMetrics(reg)
	require.NoError(t, err)

	_, err = middleware.NewMetrics(reg)

	assert.Error(t, err)
}
