package prometheus

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAndHandler(t *testing.T) {
	m := New()

	m.QueriesTotal.WithLabelValues("indications", "answered").Inc()
	m.QueriesTotal.WithLabelValues("indications", "answered").Inc()
	m.GuardBlocksTotal.WithLabelValues("crisis").Inc()
	m.SectionSubstitutionsTotal.Inc()
	m.RewriteFallbacksTotal.Inc()
	m.RetrievalDuration.WithLabelValues("exact").Observe(0.05)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("indications", "answered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SectionSubstitutionsTotal))

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "vademecum_queries_total")
	assert.Contains(t, body, "vademecum_guard_blocks_total")
	assert.Contains(t, body, "vademecum_retrieval_duration_seconds")
}

func TestIsolatedRegistries(t *testing.T) {
	a, b := New(), New()
	a.QueriesTotal.WithLabelValues("dosage", "answered").Inc()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.QueriesTotal.WithLabelValues("dosage", "answered")))
}
