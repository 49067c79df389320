package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInstrumentRecordsStatusAndOutcomes(t *testing.T) {
	m := New("test")
	handler := m.Instrument("GET /things", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/things", nil))
	m.ObserveOutcome("treasury_transfer", "paused")
	m.ObserveOutcome("treasury_transfer", "")
	m.AddOutboxPublished(3)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rr.Body.String()

	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, strings.Contains(body, `test_http_requests_total{method="GET",route="GET /things",status="418"} 1`), body)
	require.True(t, strings.Contains(body, `test_governance_outcomes_total{kind="paused",operation="treasury_transfer"} 1`), body)
	require.True(t, strings.Contains(body, `test_governance_outcomes_total{kind="ok",operation="treasury_transfer"} 1`), body)
	require.True(t, strings.Contains(body, `test_governance_outbox_published_total 3`), body)
}
