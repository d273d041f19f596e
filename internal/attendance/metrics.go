package attendance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	markOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "classtrack_attendance_marks_total",
		Help: "Mark attempts by outcome.",
	}, []string{"outcome"})

	summaryRebuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classtrack_summary_rebuilds_total",
		Help: "Full per-student summary recomputations.",
	})
)

// ObserveSummaryRebuild records one full aggregation pass.
func ObserveSummaryRebuild() {
	summaryRebuilds.Inc()
}
