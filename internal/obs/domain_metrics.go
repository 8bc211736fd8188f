package obs

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/noah-isme/backend-hall/internal/ledger"
)

// Ledger surfaces used as the "surface" label.
const (
	SurfaceBookingDetail = "booking_detail"
	SurfaceBookingList   = "booking_list"
	SurfaceBookingTotals = "booking_totals"
	SurfaceLedgerWrite   = "ledger_write"
	SurfaceQuote         = "quote"
	SurfaceDashboard     = "dashboard"
	SurfaceReport        = "report"
)

var (
	domainOnce sync.Once

	// LedgerComputeTotal counts ledger computations by surface and outcome.
	LedgerComputeTotal *prometheus.CounterVec
	// LedgerValidationErrorsTotal counts rejected ledger inputs by field.
	LedgerValidationErrorsTotal *prometheus.CounterVec
	// CacheLookupsTotal counts read-through cache lookups by cache and result.
	CacheLookupsTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		LedgerComputeTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_compute_total",
			Help:      "Count of booking ledger computations by surface and result.",
		}, []string{"surface", "result"}))
		LedgerValidationErrorsTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_validation_errors_total",
			Help:      "Count of rejected ledger input fields.",
		}, []string{"field"}))
		CacheLookupsTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Count of read-through cache lookups by cache and result.",
		}, []string{"cache", "result"}))
	})
}

// ObserveLedgerCompute records one computation on surface. It is a no-op
// until MustRegisterDomainMetrics has run.
func ObserveLedgerCompute(surface string, err error) {
	if LedgerComputeTotal == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	LedgerComputeTotal.WithLabelValues(surface, result).Inc()
}

// ObserveValidationErrors records each rejected field carried by err.
func ObserveValidationErrors(err error) {
	if LedgerValidationErrorsTotal == nil || err == nil {
		return
	}
	var verrs ledger.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			LedgerValidationErrorsTotal.WithLabelValues(fe.Field).Inc()
		}
		return
	}
	var fe *ledger.FieldError
	if errors.As(err, &fe) {
		LedgerValidationErrorsTotal.WithLabelValues(fe.Field).Inc()
	}
}

// ObserveCacheLookup records a cache hit or miss for the named cache.
func ObserveCacheLookup(name string, hit bool) {
	if CacheLookupsTotal == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookupsTotal.WithLabelValues(name, result).Inc()
}
