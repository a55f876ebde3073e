package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	storeMutationsTotal *prometheus.CounterVec
	storeErrorsTotal    *prometheus.CounterVec
	auditAppendsTotal   *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the store.
func RegisterMetrics() {
	registerOnce.Do(func() {
		storeMutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "store_mutations_total",
			Help: "Total number of store mutations, by entity kind and operation.",
		}, []string{"kind", "operation"})

		storeErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "store_errors_total",
			Help: "Total number of failed store operations, by entity kind.",
		}, []string{"kind"})

		auditAppendsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "audit_appends_total",
			Help: "Total number of audit log entries recorded, by action.",
		}, []string{"action"})

		prometheus.MustRegister(storeMutationsTotal, storeErrorsTotal, auditAppendsTotal)
	})
}

// StoreMutations exposes the counter for store mutations.
func StoreMutations() *prometheus.CounterVec {
	RegisterMetrics()
	return storeMutationsTotal
}

// StoreErrors exposes the counter for failed store operations.
func StoreErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return storeErrorsTotal
}

// AuditAppends exposes the counter for audit log appends.
func AuditAppends() *prometheus.CounterVec {
	RegisterMetrics()
	return auditAppendsTotal
}
