package queries

import (
	"context"

	"shipcalc/internal/core/domain/model/quote"
)

// GetBestPriceQueryHandler runs a comparison and returns the best-ranked quote:
// lowest total price, then fewest delivery days, then carrier code.
type GetBestPriceQueryHandler struct {
	compare *CompareCarriersQueryHandler
}

func NewGetBestPriceQueryHandler(compare *CompareCarriersQueryHandler) *GetBestPriceQueryHandler {
	return &GetBestPriceQueryHandler{compare: compare}
}

// Handle returns the best quote together with the failures of the other carriers.
func (h *GetBestPriceQueryHandler) Handle(
	ctx context.Context,
	query GetBestPriceQuery,
) (quote.PriceCalculationResult, []quote.CarrierFailure, error) {
	if err := query.Validate(); err != nil {
		return quote.PriceCalculationResult{}, nil, err
	}

	comparison, err := h.compare.Handle(ctx, query.compare)
	if err != nil {
		return quote.PriceCalculationResult{}, nil, err
	}

	best, _ := comparison.Cheapest()
	return best, comparison.Failures, nil
}
