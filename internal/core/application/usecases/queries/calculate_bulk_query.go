package queries

import (
	"errors"
	"time"

	"shipcalc/internal/core/domain/model/quote"
	"shipcalc/internal/pkg/errs"
	"shipcalc/internal/pkg/guard"
)

var ErrCalculateBulkQueryIsNotConstructed = errors.New(
	"CalculateBulkQuery must be created via NewCalculateBulkQuery constructor",
)

// CalculateBulkQuery prices a batch of independent requests. Items are only
// checked for shape when they run, so one malformed item fails alone.
type CalculateBulkQuery struct {
	requests []quote.PriceRequest
	options  quote.BulkOptions
	asOf     time.Time
	guard    guard.ConstructorGuard
}

func NewCalculateBulkQuery(
	requests []quote.PriceRequest,
	options quote.BulkOptions,
	asOf time.Time,
) (CalculateBulkQuery, error) {
	if len(requests) == 0 {
		return CalculateBulkQuery{}, errs.NewValueIsRequiredError("items")
	}
	if d := options.Discount; d != nil {
		if err := errors.Join(
			validateMinItems(d.MinItems),
			validatePercent(d),
		); err != nil {
			return CalculateBulkQuery{}, err
		}
	}

	items := make([]quote.PriceRequest, len(requests))
	copy(items, requests)
	return CalculateBulkQuery{
		requests: items,
		options:  options,
		asOf:     asOf,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (q CalculateBulkQuery) Validate() error {
	return q.guard.Validate(ErrCalculateBulkQueryIsNotConstructed)
}

func (q CalculateBulkQuery) Requests() []quote.PriceRequest { return q.requests }
func (q CalculateBulkQuery) Options() quote.BulkOptions     { return q.options }
func (q CalculateBulkQuery) AsOf() time.Time                { return q.asOf }
func (q CalculateBulkQuery) Len() int                       { return len(q.requests) }

func validateMinItems(minItems int) error {
	if minItems < 1 {
		return errs.NewValueIsOutOfRangeError("bulk_discount.min_items", minItems, 1, "unbounded")
	}
	return nil
}

func validatePercent(d *quote.BulkDiscount) error {
	if d.Percent.IsNegative() || d.Percent.GreaterThan(hundred) {
		return errs.NewValueIsOutOfRangeError("bulk_discount.percent", d.Percent, 0, 100)
	}
	return nil
}
