package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// TicketsOpened counts tickets opened across all registers.
	TicketsOpened prometheus.Counter
	// LinesScanned counts line additions that passed the stock ceiling.
	LinesScanned prometheus.Counter
	// GiftsGranted counts kit-gift lines materialised from confirmed selections.
	GiftsGranted prometheus.Counter
	// SalesCompleted counts persisted sales by outcome.
	SalesCompleted *prometheus.CounterVec
	// SaleTotal records completed sale totals in minor units.
	SaleTotal prometheus.Histogram
)

// MustRegisterDomainMetrics initialises and registers register-domain
// Prometheus collectors. Safe to call more than once.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		TicketsOpened = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_opened_total",
			Help:      "Count of tickets opened.",
		})
		LinesScanned = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_scanned_total",
			Help:      "Count of products scanned onto tickets.",
		})
		GiftsGranted = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kit_gifts_granted_total",
			Help:      "Count of kit-gift lines granted.",
		})
		SalesCompleted = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_completed_total",
			Help:      "Count of checkout outcomes.",
		}, []string{"result"})
		SaleTotal = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sale_total_minor_units",
			Help:      "Distribution of completed sale totals in minor units.",
			Buckets:   []float64{1_000, 5_000, 10_000, 25_000, 50_000, 100_000, 250_000, 500_000},
		})
		reg.MustRegister(TicketsOpened, LinesScanned, GiftsGranted, SalesCompleted, SaleTotal)
	})
}
