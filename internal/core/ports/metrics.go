package ports

import (
	"time"

	"shipcalc/internal/core/domain/model/catalog"
)

// Outcomes reported to CalculationMetrics.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)

// CalculationMetrics records how calculations and catalog refreshes went.
type CalculationMetrics interface {
	ObserveCalculation(operation, outcome string, elapsed time.Duration)
	ObserveCatalogRefresh(outcome string, summary catalog.Summary)
}
