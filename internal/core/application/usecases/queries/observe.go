package queries

import (
	"time"

	"shipcalc/internal/core/ports"
)

func observe(metrics ports.CalculationMetrics, operation, outcome string, start time.Time) {
	if metrics == nil {
		return
	}
	metrics.ObserveCalculation(operation, outcome, time.Since(start))
}

func outcomeOf(err error) string {
	if err != nil {
		return ports.OutcomeFailure
	}
	return ports.OutcomeSuccess
}

func asOfOrNow(asOf time.Time, now func() time.Time) time.Time {
	if asOf.IsZero() {
		return now().UTC()
	}
	return asOf
}
