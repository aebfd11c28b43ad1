package queries

import (
	"errors"
	"time"

	"shipcalc/internal/core/domain/model/quote"
	"shipcalc/internal/pkg/guard"
)

var ErrGetBestPriceQueryIsNotConstructed = errors.New(
	"GetBestPriceQuery must be created via NewGetBestPriceQuery constructor",
)

// GetBestPriceQuery asks for the single best carrier quote for a parcel.
type GetBestPriceQuery struct {
	compare CompareCarriersQuery
	guard   guard.ConstructorGuard
}

func NewGetBestPriceQuery(request quote.PriceRequest, asOf time.Time) (GetBestPriceQuery, error) {
	compare, err := NewCompareCarriersQuery(request, asOf)
	if err != nil {
		return GetBestPriceQuery{}, err
	}
	return GetBestPriceQuery{compare: compare, guard: guard.NewConstructorGuard()}, nil
}

func (q GetBestPriceQuery) Validate() error {
	return q.guard.Validate(ErrGetBestPriceQueryIsNotConstructed)
}

func (q GetBestPriceQuery) Request() quote.PriceRequest { return q.compare.Request() }
