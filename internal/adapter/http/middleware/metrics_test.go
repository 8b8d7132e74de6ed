package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestHTTPMetricsLabelsByRoute(t *testing.T) {
	testCases := []struct {
		name   string
		method string
		path   string
		route  string
		status string
	}{
		{"debtor detail by pattern", http.MethodGet, "/api/v1/debtor/42", "/api/v1/debtor/{debtor_id}", "200"},
		{"report", http.MethodGet, "/api/v1/debtor/42/report", "/api/v1/debtor/{debtor_id}/report", "200"},
		{"unknown route", http.MethodGet, "/nope", "unmatched", "404"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewHTTPMetrics(prometheus.NewRegistry())

			r := chi.NewRouter()
			r.Use(m.Wrap)
			r.Get("/api/v1/debtor/{debtor_id}", func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"id":42}`))
			})
			r.Get("/api/v1/debtor/{debtor_id}/report", func(w http.ResponseWriter, r *http.Request) {
				w.Write(make([]byte, 4096))
			})

			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tc.method, tc.path, nil))

			assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))
			assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(tc.method, tc.route, tc.status)))
		})
	}
}

func TestHTTPMetricsObservesResponseSize(t *testing.T) {
	m := NewHTTPMetrics(prometheus.NewRegistry())

	h := m.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 1000))
		w.Write(make([]byte, 24))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, 1, testutil.CollectAndCount(m.size))
}

func TestDefaultHTTPMetricsIsShared(t *testing.T) {
	assert.Same(t, DefaultHTTPMetrics(), DefaultHTTPMetrics())
}
