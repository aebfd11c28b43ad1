package metrics_test

import (
	"testing"
	"time"

	"shipcalc/internal/adapters/out/metrics"
	"shipcalc/internal/core/domain/model/catalog"
	"shipcalc/internal/core/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_ObserveCalculation(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.NewRecorder(reg)

	rec.ObserveCalculation("calculate_price", ports.OutcomeSuccess, 3*time.Millisecond)
	rec.ObserveCalculation("calculate_price", ports.OutcomeSuccess, 5*time.Millisecond)
	rec.ObserveCalculation("compare_carriers", ports.OutcomePartial, 9*time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	for _, f := range families {
		if f.GetName() != "shipcalc_calculations_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			var op, outcome string
			for _, l := range m.GetLabel() {
				switch l.GetName() {
				case "operation":
					op = l.GetValue()
				case "outcome":
					outcome = l.GetValue()
				}
			}
			counts[op+"/"+outcome] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{
		"calculate_price/success":  2,
		"compare_carriers/partial": 1,
	}, counts)

	n, err := testutil.GatherAndCount(reg, "shipcalc_calculation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRecorder_ObserveCatalogRefresh(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.NewRecorder(reg)

	rec.ObserveCatalogRefresh(ports.OutcomeSuccess, catalog.Summary{
		Zones: 4, Carriers: 3, Tables: 9, ActiveTables: 8, AdditionalServices: 4, Promotions: 5,
	})
	rec.ObserveCatalogRefresh(ports.OutcomeFailure, catalog.Summary{})

	n, err := testutil.GatherAndCount(reg, "shipcalc_catalog_refreshes_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = testutil.GatherAndCount(reg, "shipcalc_catalog_entries")
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != "shipcalc_catalog_entries" {
			continue
		}
		for _, m := range f.GetMetric() {
			if m.GetLabel()[0].GetValue() == "carriers" {
				assert.InDelta(t, 3.0, m.GetGauge().GetValue(), 0, "a failed refresh must not reset gauges")
			}
		}
	}
}

func TestNewRecorder_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.NewRecorder(reg)

	assert.Panics(t, func() { metrics.NewRecorder(reg) })
}
