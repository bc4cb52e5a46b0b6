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

func TestCountersAndHandler(t *testing.T) {
	Init()
	Init()

	before := testutil.ToFloat64(importRows.WithLabelValues(ResultSuccess))
	AddImportRows(ResultSuccess, 3)
	AddImportRows(ResultSuccess, 0)
	assert.Equal(t, before+3, testutil.ToFloat64(importRows.WithLabelValues(ResultSuccess)))

	IncLedgerTransaction("sell", ResultError)
	IncDispatch("", ResultSkipped)
	AddClaimRecords(2)
	ObserveImport(150 * time.Millisecond)
	assert.Equal(t, float64(1), testutil.ToFloat64(dispatches.WithLabelValues("unknown", ResultSkipped)))

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "claimfolio_ledger_transactions_total")
	assert.Contains(t, string(body), "claimfolio_import_duration_seconds")
}
