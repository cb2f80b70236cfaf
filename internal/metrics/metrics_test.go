package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := New()
	m.BillIssued()
	m.BillIssued()
	m.NumberingRetried("owner", 1)
	m.ObserveStep("email", OutcomeFailed, 20*time.Millisecond)
	m.ObserveStep("email", OutcomeSkipped, 0)
	m.ObserveRPC("/billdesk.v1.BillService/CreateBill", "ok", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.billsIssued))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.numberingRetries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stepOutcomes.WithLabelValues("email", OutcomeFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stepOutcomes.WithLabelValues("email", OutcomeSkipped)))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "billdesk_bills_issued_total 2")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.BillIssued()
	m.NumberingRetried("owner", 1)
	m.ObserveStep("render", OutcomeOK, time.Second)
	m.ObserveRPC("p", "ok", time.Second)
}
