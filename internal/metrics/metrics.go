// Package metrics defines the Prometheus collectors for the check-in
// service. Counters are registered on the default registry and exposed
// by the /metrics route.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CheckIns counts successful check-ins.
	CheckIns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkin_checkins_total",
		Help: "Number of successful check-ins.",
	})

	// CheckOuts counts check-outs that actually closed an open check-in.
	CheckOuts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkin_checkouts_total",
		Help: "Number of check-outs that closed an open check-in.",
	})

	// CheckInRejections counts rejected check-in attempts by reason
	// (not_assigned, already_present).
	CheckInRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkin_rejections_total",
		Help: "Number of rejected check-in attempts by reason.",
	}, []string{"reason"})

	// ImportedRows counts attendee rows created by bulk import.
	ImportedRows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkin_import_rows_created_total",
		Help: "Number of attendee rows created by bulk import.",
	})

	// ImportBatchErrors counts import batches that failed to insert.
	ImportBatchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkin_import_batch_errors_total",
		Help: "Number of bulk import batches that failed.",
	})
)
