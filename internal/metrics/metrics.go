package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "lms_timetable"

const (
	DropReasonUnknownDay = "unknown_day"
)

type Metrics struct {
	OccurrencesDropped  *prometheus.CounterVec
	CatalogLoadFailures prometheus.Counter
	CatalogSlots        prometheus.Gauge
	Assemblies          prometheus.Counter
	AdHocRows           prometheus.Counter
}

func New(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		OccurrencesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "occurrences_dropped_total",
			Help:      "Class occurrences left out of an assembled week, by reason.",
		}, []string{"reason"}),
		CatalogLoadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_load_failures_total",
			Help:      "Slot catalog loads that fell back to an empty catalog.",
		}),
		CatalogSlots: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_slots",
			Help:      "Number of time slots in the last successfully loaded catalog.",
		}),
		Assemblies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assemblies_total",
			Help:      "Weekly timetables assembled.",
		}),
		AdHocRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "adhoc_rows_total",
			Help:      "Rows synthesized for slots missing from the catalog.",
		}),
	}

	if registerer != nil {
		registerer.MustRegister(
			m.OccurrencesDropped,
			m.CatalogLoadFailures,
			m.CatalogSlots,
			m.Assemblies,
			m.AdHocRows,
		)
	}

	return m
}
