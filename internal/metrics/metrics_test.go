package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New()

	m.Registered(MethodPhone)
	m.Registered(MethodPhone)
	m.Registered(MethodGoogle)
	m.Conflict("phone")
	m.Backfilled()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Registrations.WithLabelValues(MethodPhone)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Registrations.WithLabelValues(MethodGoogle)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Conflicts.WithLabelValues("phone")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PhoneBackfills))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Registered(MethodFull)
		m.Conflict("email")
		m.Backfilled()
	})
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.Registered(MethodFull)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `identity_registrations_total{method="full"} 1`)
}
