package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAPI("GET", "/x", 200, time.Millisecond)
		m.ObserveIngest(true, "en", 1, time.Millisecond)
		m.ObserveVersionBump("LEGAL_DOCUMENT", "ok")
		m.ObservePropagation("document", 1, 0, time.Millisecond)
		m.ObserveSelector("agnostic", "confirmed")
	})
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsCountAndExpose(t *testing.T) {
	m := New()
	m.ObserveVersionBump("TEMPLATE", "ok")
	m.ObserveVersionBump("TEMPLATE", "ok")
	m.ObservePropagation("document", 2, 1, 10*time.Millisecond)
	m.ObserveIngest(false, "", 0, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, line := range []string{
		`lexgraph_graph_version_bumps_total{entity_type="TEMPLATE",outcome="ok"} 2`,
		`lexgraph_propagation_runs_total{kind="document",outcome="partial"} 1`,
		`lexgraph_propagation_templates_touched_total 2`,
		`lexgraph_ingest_results_total{language="unknown",outcome="failed"} 1`,
	} {
		assert.True(t, strings.Contains(body, line), line)
	}
}
