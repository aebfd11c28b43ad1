// Package metrics records calculation metrics with Prometheus.
package metrics

import (
	"time"

	"shipcalc/internal/core/domain/model/catalog"
	"shipcalc/internal/core/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var _ ports.CalculationMetrics = (*Recorder)(nil)

// Recorder implements ports.CalculationMetrics.
//
// Exposed series:
//
//	shipcalc_calculations_total{operation, outcome}
//	shipcalc_calculation_duration_seconds{operation}
//	shipcalc_catalog_refreshes_total{outcome}
//	shipcalc_catalog_entries{kind}
//	shipcalc_catalog_loaded_timestamp_seconds
type Recorder struct {
	calculations   *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	refreshes      *prometheus.CounterVec
	catalogEntries *prometheus.GaugeVec
	loadedAt       prometheus.Gauge
	now            func() time.Time
}

// NewRecorder registers the collectors with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		calculations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "shipcalc",
				Name:      "calculations_total",
				Help:      "Price calculations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "shipcalc",
				Name:      "calculation_duration_seconds",
				Help:      "Duration of price calculations",
				Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"operation"},
		),
		refreshes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "shipcalc",
				Name:      "catalog_refreshes_total",
				Help:      "Catalog refresh attempts by outcome",
			},
			[]string{"outcome"},
		),
		catalogEntries: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "shipcalc",
				Name:      "catalog_entries",
				Help:      "Entries in the catalog snapshot in force",
			},
			[]string{"kind"},
		),
		loadedAt: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "shipcalc",
			Name:      "catalog_loaded_timestamp_seconds",
			Help:      "Unix time of the last successful catalog refresh",
		}),
		now: time.Now,
	}
}

func (r *Recorder) ObserveCalculation(operation, outcome string, elapsed time.Duration) {
	r.calculations.WithLabelValues(operation, outcome).Inc()
	r.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveCatalogRefresh counts the attempt; catalog gauges only move on success.
func (r *Recorder) ObserveCatalogRefresh(outcome string, summary catalog.Summary) {
	r.refreshes.WithLabelValues(outcome).Inc()
	if outcome != ports.OutcomeSuccess {
		return
	}

	for kind, n := range map[string]int{
		"zones":               summary.Zones,
		"carriers":            summary.Carriers,
		"tables":              summary.Tables,
		"active_tables":       summary.ActiveTables,
		"additional_services": summary.AdditionalServices,
		"promotions":          summary.Promotions,
	} {
		r.catalogEntries.WithLabelValues(kind).Set(float64(n))
	}
	r.loadedAt.Set(float64(r.now().Unix()))
}
