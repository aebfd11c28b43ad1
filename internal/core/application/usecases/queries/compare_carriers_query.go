package queries

import (
	"errors"
	"time"

	"shipcalc/internal/core/domain/model/quote"
	"shipcalc/internal/pkg/guard"
)

var ErrCompareCarriersQueryIsNotConstructed = errors.New(
	"CompareCarriersQuery must be created via NewCompareCarriersQuery constructor",
)

// CompareCarriersQuery prices one parcel with every carrier serving its zone.
// A carrier code in the request is ignored.
type CompareCarriersQuery struct {
	request quote.PriceRequest
	asOf    time.Time
	guard   guard.ConstructorGuard
}

func NewCompareCarriersQuery(request quote.PriceRequest, asOf time.Time) (CompareCarriersQuery, error) {
	if err := request.Validate(); err != nil {
		return CompareCarriersQuery{}, err
	}
	request.CarrierCode = ""
	return CompareCarriersQuery{
		request: request,
		asOf:    asOf,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (q CompareCarriersQuery) Validate() error {
	return q.guard.Validate(ErrCompareCarriersQueryIsNotConstructed)
}

func (q CompareCarriersQuery) Request() quote.PriceRequest { return q.request }
func (q CompareCarriersQuery) AsOf() time.Time             { return q.asOf }
