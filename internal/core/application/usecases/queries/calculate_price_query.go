// Package queries contains the read operations of the pricing engine.
// Every query is built through its constructor, which validates the request
// shape, and is executed by a handler against the catalog snapshot in force.
package queries

import (
	"errors"
	"strings"
	"time"

	"shipcalc/internal/core/domain/model/quote"
	"shipcalc/internal/pkg/errs"
	"shipcalc/internal/pkg/guard"
)

var ErrCalculatePriceQueryIsNotConstructed = errors.New(
	"CalculatePriceQuery must be created via NewCalculatePriceQuery constructor",
)

// CalculatePriceQuery prices one parcel with one carrier.
//
// Example:
//
//	query, err := NewCalculatePriceQuery(quote.PriceRequest{
//	    CarrierCode: "INPOST",
//	    PostalCode:  "00-950",
//	    CountryCode: "PL",
//	    WeightKg:    decimal.RequireFromString("0.5"),
//	    Dimensions:  dims,
//	}, time.Time{})
//	if err != nil {
//	    return err // validation error, nothing was calculated
//	}
//	result, err := handler.Handle(ctx, query)
type CalculatePriceQuery struct {
	request quote.PriceRequest
	asOf    time.Time
	guard   guard.ConstructorGuard
}

// NewCalculatePriceQuery validates the request. A zero asOf means "now" at handling time.
func NewCalculatePriceQuery(request quote.PriceRequest, asOf time.Time) (CalculatePriceQuery, error) {
	var carrierErr error
	if strings.TrimSpace(request.CarrierCode) == "" {
		carrierErr = errs.NewValueIsRequiredError("carrier_code")
	}
	if err := errors.Join(carrierErr, request.Validate()); err != nil {
		return CalculatePriceQuery{}, err
	}

	return CalculatePriceQuery{
		request: request,
		asOf:    asOf,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (q CalculatePriceQuery) Validate() error {
	return q.guard.Validate(ErrCalculatePriceQueryIsNotConstructed)
}

func (q CalculatePriceQuery) Request() quote.PriceRequest { return q.request }
func (q CalculatePriceQuery) AsOf() time.Time             { return q.asOf }
