package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roster_operations_total",
			Help: "Roster operations by action and outcome",
		},
		[]string{"op", "outcome"},
	)

	OperationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "roster_operation_duration_seconds",
			Help:    "Time spent inside the roster critical section",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
		},
	)

	PromotionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "roster_promotions_total",
			Help: "Fill queue members auto-promoted into a slot",
		},
	)

	SlotsFilled = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "roster_slots_filled",
			Help: "Occupied slots of the active roster",
		},
	)

	FillQueueLength = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "roster_fill_queue_length",
			Help: "Participants waiting in the fill queue",
		},
	)

	NotifyFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roster_notify_failures_total",
			Help: "Failed roster change deliveries by sink",
		},
		[]string{"sink"},
	)

	LedgerOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Ledger operations by kind and result",
		},
		[]string{"op", "result"}, // success|failure
	)
)

func init() {
	prometheus.MustRegister(OperationsTotal)
	prometheus.MustRegister(OperationDuration)
	prometheus.MustRegister(PromotionsTotal)
	prometheus.MustRegister(SlotsFilled)
	prometheus.MustRegister(FillQueueLength)
	prometheus.MustRegister(NotifyFailures)
	prometheus.MustRegister(LedgerOperations)
}

// ObserveLedger counts one ledger call.
func ObserveLedger(op string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	LedgerOperations.WithLabelValues(op, result).Inc()
}

func Register(mux *http.ServeMux) {
	mux.Handle("/metrics", promhttp.Handler())
}
