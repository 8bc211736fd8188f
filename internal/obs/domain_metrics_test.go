package obs_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-hall/internal/ledger"
	"github.com/noah-isme/backend-hall/internal/obs"
)

func TestLedgerDomainMetrics(t *testing.T) {
	obs.MustRegisterDomainMetrics("hall", prometheus.NewRegistry())

	obs.ObserveLedgerCompute(obs.SurfaceDashboard, nil)
	obs.ObserveLedgerCompute(obs.SurfaceDashboard, nil)
	obs.ObserveLedgerCompute(obs.SurfaceQuote, errors.New("bad kind"))
	require.Equal(t, 2.0, testutil.ToFloat64(obs.LedgerComputeTotal.WithLabelValues(obs.SurfaceDashboard, "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(obs.LedgerComputeTotal.WithLabelValues(obs.SurfaceQuote, "error")))

	verrs := ledger.ValidationErrors{
		{Field: "baseRent", Err: ledger.ErrMissingAmount},
		{Field: "payments[0].kind", Err: ledger.ErrUnknownPaymentKind},
	}
	obs.ObserveValidationErrors(verrs)
	obs.ObserveValidationErrors(&ledger.FieldError{Field: "baseRent", Err: ledger.ErrInvalidAmount})
	require.Equal(t, 2.0, testutil.ToFloat64(obs.LedgerValidationErrorsTotal.WithLabelValues("baseRent")))
	require.Equal(t, 1.0, testutil.ToFloat64(obs.LedgerValidationErrorsTotal.WithLabelValues("payments[0].kind")))

	obs.ObserveCacheLookup("dashboard", true)
	obs.ObserveCacheLookup("dashboard", false)
	obs.ObserveCacheLookup("dashboard", false)
	require.Equal(t, 2.0, testutil.ToFloat64(obs.CacheLookupsTotal.WithLabelValues("dashboard", "miss")))
}

func TestQueryName(t *testing.T) {
	require.Equal(t, "GetBooking", obs.QueryName("-- name: GetBooking :one\nSELECT 1"))
	require.Equal(t, "", obs.QueryName("SELECT 1"))
	require.Equal(t, "", obs.QueryName("-- name:\nSELECT 1"))
}

func TestRequestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	handler := obs.RequestLogger{Logger: logger}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ledger/quote", nil)
	req = req.WithContext(obs.WithRoutePattern(req.Context(), "/api/v1/ledger/quote"))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "warn", entry["level"])
	require.Equal(t, "/api/v1/ledger/quote", entry["route"])
	require.EqualValues(t, 400, entry["status"])
	require.Equal(t, "http_request", entry["message"])
}

func TestCronLogger(t *testing.T) {
	var buf bytes.Buffer
	cl := obs.CronLogger{Logger: zerolog.New(&buf)}
	cl.Error(errors.New("panic in job"), "job failed", "job", "dashboard-warm")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "error", entry["level"])
	require.Equal(t, "panic in job", entry["error"])
	require.Equal(t, "dashboard-warm", entry["job"])
}
