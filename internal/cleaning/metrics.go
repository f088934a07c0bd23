package cleaning

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Data-quality errors are absorbed into the missing-value channel, so
// these counters are the only place they stay observable.
var (
	parseFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vcpulse_cleaning_parse_failures_total",
		Help: "Cells that failed numeric or date coercion and were routed to the missing-value channel.",
	}, []string{"column"})

	droppedRowsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vcpulse_cleaning_dropped_rows_total",
		Help: "Rows removed by the drop_row missing-value strategy.",
	})

	rowsProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vcpulse_cleaning_rows_processed_total",
		Help: "Raw rows consumed by the cleaning pipeline.",
	})
)
