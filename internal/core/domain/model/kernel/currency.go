package kernel

import (
	"strings"

	"shipcalc/internal/pkg/errs"
	"shipcalc/internal/pkg/guard"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// ErrCurrencyIsNotConstructed is returned when a zero-value Currency is used.
var ErrCurrencyIsNotConstructed = errs.NewValueIsRequiredError("currency must be created via ParseCurrency")

// Currency is an ISO 4217 currency together with the number of minor-unit digits
// that prices in it are rounded to (2 for PLN, EUR and USD; 0 for JPY).
type Currency struct {
	unit  currency.Unit
	scale int32
	guard guard.ConstructorGuard
}

// ParseCurrency validates an ISO 4217 code. The lookup is case-insensitive.
func ParseCurrency(code string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return Currency{}, errs.NewValueIsRequiredError("currency")
	}

	unit, err := currency.ParseISO(code)
	if err != nil {
		return Currency{}, errs.NewValueIsInvalidErrorWithCause("currency", err)
	}

	scale, _ := currency.Standard.Rounding(unit)
	return Currency{
		unit:  unit,
		scale: int32(scale), //nolint:gosec // ISO scales are 0..4
		guard: guard.NewConstructorGuard(),
	}, nil
}

func (c Currency) Validate() error {
	return c.guard.Validate(ErrCurrencyIsNotConstructed)
}

// Code returns the three-letter ISO code.
func (c Currency) Code() string {
	return c.unit.String()
}

// Scale is the number of decimal places of the minor unit.
func (c Currency) Scale() int32 {
	return c.scale
}

// Round rounds amount to the minor unit, halves going up (away from zero).
func (c Currency) Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(c.scale)
}

func (c Currency) IsEqual(other Currency) bool {
	return c.unit == other.unit
}

func (c Currency) String() string {
	return c.Code()
}
