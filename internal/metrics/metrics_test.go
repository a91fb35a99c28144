package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMiddleware_BuiltOnce(t *testing.T) {
	a := HTTPMiddleware()
	b := HTTPMiddleware()

	assert.Equal(t, a, b)
}

func TestInstrument_RecordsRequests(t *testing.T) {
	h := Instrument("test_handler", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/anything", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	found := false
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "http_request_duration_seconds") {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "handler" && l.GetValue() == "test_handler" {
					found = true
				}
			}
		}
	}
	assert.True(t, found, "expected request duration series for test_handler")
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(WebhookEvents.WithLabelValues("ping", ""))
	WebhookEvents.WithLabelValues("ping", "").Inc()

	assert.Equal(t, before+1, testutil.ToFloat64(WebhookEvents.WithLabelValues("ping", "")))
}
