package pricing

import (
	"errors"
	"strings"

	"shipcalc/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// PricingType says how an additional service is charged.
type PricingType string

const (
	PricingTypeFixed      PricingType = "fixed"
	PricingTypePercentage PricingType = "percentage"
)

// Basis is what a percentage-priced service is a percentage of.
type Basis string

const (
	BasisBasePrice     Basis = "base_price"
	BasisDeclaredValue Basis = "declared_value"
)

// AdditionalService is an optional add-on a carrier sells (COD, INSURANCE, PRIORITY, SMS).
// For fixed pricing Price is the amount; for percentage pricing it is the percent.
type AdditionalService struct {
	CarrierCode string
	Code        string
	Name        string
	PricingType PricingType
	Price       decimal.Decimal
	Basis       Basis
	MinPrice    decimal.NullDecimal
	MaxPrice    decimal.NullDecimal
}

func (s AdditionalService) Validate() error {
	var svcErrs []error
	if strings.TrimSpace(s.Code) == "" {
		svcErrs = append(svcErrs, errs.NewValueIsRequiredError("service code"))
	}
	if strings.TrimSpace(s.CarrierCode) == "" {
		svcErrs = append(svcErrs, errs.NewValueIsRequiredError("service carrier code"))
	}
	switch s.PricingType {
	case PricingTypeFixed:
		svcErrs = append(svcErrs, nonNegative("price", s.Price))
	case PricingTypePercentage:
		svcErrs = append(svcErrs, percentInRange("price", s.Price))
		if s.Basis != BasisBasePrice && s.Basis != BasisDeclaredValue {
			svcErrs = append(svcErrs, errs.NewValueIsInvalidError("basis "+string(s.Basis)))
		}
	default:
		svcErrs = append(svcErrs, errs.NewValueIsInvalidError("pricing type "+string(s.PricingType)))
	}
	if s.MinPrice.Valid && s.MaxPrice.Valid && s.MaxPrice.Decimal.LessThan(s.MinPrice.Decimal) {
		svcErrs = append(svcErrs, errs.NewValueIsOutOfRangeError("max_price", s.MaxPrice.Decimal, s.MinPrice.Decimal, "unbounded"))
	}
	if err := errors.Join(svcErrs...); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("additional service "+s.Code, err)
	}
	return nil
}

// Charge prices the service against the running base price and the declared
// value, then applies the min and max clamps.
func (s AdditionalService) Charge(basePrice, declaredValue decimal.Decimal) decimal.Decimal {
	amount := s.Price
	if s.PricingType == PricingTypePercentage {
		basis := basePrice
		if s.Basis == BasisDeclaredValue {
			basis = declaredValue
		}
		amount = Percentage(basis, s.Price)
	}
	if s.MinPrice.Valid {
		amount = decimal.Max(amount, s.MinPrice.Decimal)
	}
	if s.MaxPrice.Valid {
		amount = decimal.Min(amount, s.MaxPrice.Decimal)
	}
	return amount
}

// AdditionalServicePrice overrides a service's price within one pricing table.
type AdditionalServicePrice struct {
	TableID     string
	ServiceCode string
	Price       decimal.Decimal
}

func (p AdditionalServicePrice) Validate() error {
	if strings.TrimSpace(p.ServiceCode) == "" {
		return errs.NewValueIsRequiredError("override service code")
	}
	return nonNegative("override price", p.Price)
}
