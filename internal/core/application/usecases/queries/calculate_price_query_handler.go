package queries

import (
	"context"
	"log/slog"
	"time"

	"shipcalc/internal/core/domain/model/quote"
	"shipcalc/internal/core/ports"
	"shipcalc/internal/pkg/workpool"
)

const OperationCalculatePrice = "calculate_price"

// CalculatePriceQueryHandler prices one parcel with one carrier against the
// current catalog snapshot, inside a slot of the shared work pool.
//
// Failures:
//   - validation errors when the query was not constructed
//   - errs.CatalogError for unknown zone, carrier or pricing table
//   - errs.CarrierCannotHandleError when the parcel exceeds carrier or table bounds
//   - errs.ErrConcurrencyLimitReached and errs.TimeoutError, both retryable
type CalculatePriceQueryHandler struct {
	catalog    ports.CatalogProvider
	pool       *workpool.Pool
	metrics    ports.CalculationMetrics
	calculator priceCalculator
	now        func() time.Time
}

func NewCalculatePriceQueryHandler(
	catalog ports.CatalogProvider,
	pool *workpool.Pool,
	metrics ports.CalculationMetrics,
	logger *slog.Logger,
) *CalculatePriceQueryHandler {
	return &CalculatePriceQueryHandler{
		catalog:    catalog,
		pool:       pool,
		metrics:    metrics,
		calculator: newPriceCalculator(logger),
		now:        time.Now,
	}
}

func (h *CalculatePriceQueryHandler) Handle(
	ctx context.Context,
	query CalculatePriceQuery,
) (quote.PriceCalculationResult, error) {
	if err := query.Validate(); err != nil {
		return quote.PriceCalculationResult{}, err
	}

	start := time.Now()
	result, err := h.handle(ctx, query)
	observe(h.metrics, OperationCalculatePrice, outcomeOf(err), start)
	return result, err
}

func (h *CalculatePriceQueryHandler) handle(
	ctx context.Context,
	query CalculatePriceQuery,
) (quote.PriceCalculationResult, error) {
	reader, err := h.catalog.Current()
	if err != nil {
		return quote.PriceCalculationResult{}, err
	}

	in := calculation{
		reader:      reader,
		request:     query.Request(),
		asOf:        asOfOrNow(query.AsOf(), h.now),
		parcelCount: 1,
	}
	return workpool.Do(ctx, h.pool, OperationCalculatePrice, func(ctx context.Context) (quote.PriceCalculationResult, error) {
		return h.calculator.calculate(ctx, in)
	})
}
