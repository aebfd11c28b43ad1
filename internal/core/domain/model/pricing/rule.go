package pricing

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"shipcalc/internal/core/domain/model/kernel"
	"shipcalc/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Kind names a rule variant; it is also the discriminator stored in the catalog.
type Kind string

const (
	KindWeightBand          Kind = "weight_band"
	KindDimensional         Kind = "dimensional"
	KindTiered              Kind = "tiered"
	KindProgressiveDiscount Kind = "progressive_discount"
	KindSeasonal            Kind = "seasonal"
	KindVolumeDiscount      Kind = "volume_discount"
)

// Driver is the scalar a tiered or progressive rule is keyed on.
type Driver string

const (
	DriverDeclaredValue Driver = "declared_value"
	DriverShipmentCount Driver = "shipment_count"
)

func (d Driver) valid() bool {
	return d == DriverDeclaredValue || d == DriverShipmentCount
}

// Rule is one entry of a pricing table. The set of implementations is closed.
type Rule interface {
	RuleID() string
	Order() int
	Kind() Kind
	Validate() error
	isRule()
}

// SortRules returns rules ordered by sort order, then ID.
func SortRules(rules []Rule) []Rule {
	sorted := slices.Clone(rules)
	slices.SortStableFunc(sorted, func(a, b Rule) int {
		return cmp.Or(cmp.Compare(a.Order(), b.Order()), strings.Compare(a.RuleID(), b.RuleID()))
	})
	return sorted
}

// Range is the half-open interval [From, To). An invalid To means unbounded.
type Range struct {
	From decimal.Decimal
	To   decimal.NullDecimal
}

// NewRange builds [from, to); pass nil for an unbounded upper end.
func NewRange(from decimal.Decimal, to *decimal.Decimal) Range {
	r := Range{From: from}
	if to != nil {
		r.To = decimal.NewNullDecimal(*to)
	}
	return r
}

func (r Range) Contains(v decimal.Decimal) bool {
	if v.LessThan(r.From) {
		return false
	}
	return !r.To.Valid || v.LessThan(r.To.Decimal)
}

func (r Range) IsUnbounded() bool {
	return !r.To.Valid
}

func (r Range) String() string {
	if r.IsUnbounded() {
		return fmt.Sprintf("[%s, inf)", r.From)
	}
	return fmt.Sprintf("[%s, %s)", r.From, r.To.Decimal)
}

func (r Range) validate(param string) error {
	if r.From.IsNegative() {
		return errs.NewValueIsOutOfRangeError(param+".from", r.From, 0, "unbounded")
	}
	if r.To.Valid && !r.To.Decimal.GreaterThan(r.From) {
		return errs.NewValueIsOutOfRangeError(param+".to", r.To.Decimal, r.From, "unbounded")
	}
	return nil
}

// WeightBandRule prices a billable-weight band: the price covers the band
// floor and PricePerKg applies to the weight above it.
type WeightBandRule struct {
	ID         string
	SortOrder  int
	Range      Range
	Price      decimal.Decimal
	PricePerKg decimal.Decimal
}

func (r WeightBandRule) RuleID() string { return r.ID }
func (r WeightBandRule) Order() int     { return r.SortOrder }
func (r WeightBandRule) Kind() Kind     { return KindWeightBand }
func (WeightBandRule) isRule()          {}

// Charge returns Price + max(0, billable - From) * PricePerKg.
func (r WeightBandRule) Charge(billableKg decimal.Decimal) decimal.Decimal {
	above := decimal.Max(decimal.Zero, billableKg.Sub(r.Range.From))
	return r.Price.Add(above.Mul(r.PricePerKg))
}

func (r WeightBandRule) Validate() error {
	return validateRule(r.ID, r.Range.validate("weight"), nonNegative("price", r.Price),
		nonNegative("price_per_kg", r.PricePerKg))
}

// DimensionalRule rejects or surcharges parcels with an axis above its limit.
// Zero axes in Limit are unlimited.
type DimensionalRule struct {
	ID        string
	SortOrder int
	Limit     kernel.Dimensions
	Surcharge decimal.Decimal
	Reject    bool
}

func (r DimensionalRule) RuleID() string { return r.ID }
func (r DimensionalRule) Order() int     { return r.SortOrder }
func (r DimensionalRule) Kind() Kind     { return KindDimensional }
func (DimensionalRule) isRule()          {}

func (r DimensionalRule) Validate() error {
	return validateRule(r.ID, r.Limit.Validate(), nonNegative("surcharge", r.Surcharge))
}

// TieredRule adds a charge chosen by band on a non-weight driver such as the
// declared value: Price + (value - From) * PricePerUnit.
type TieredRule struct {
	ID           string
	SortOrder    int
	Driver       Driver
	Range        Range
	Price        decimal.Decimal
	PricePerUnit decimal.Decimal
}

func (r TieredRule) RuleID() string { return r.ID }
func (r TieredRule) Order() int     { return r.SortOrder }
func (r TieredRule) Kind() Kind     { return KindTiered }
func (TieredRule) isRule()          {}

func (r TieredRule) Charge(value decimal.Decimal) decimal.Decimal {
	above := decimal.Max(decimal.Zero, value.Sub(r.Range.From))
	return r.Price.Add(above.Mul(r.PricePerUnit))
}

func (r TieredRule) Validate() error {
	var driverErr error
	if !r.Driver.valid() {
		driverErr = errs.NewValueIsInvalidError("driver " + string(r.Driver))
	}
	return validateRule(r.ID, driverErr, r.Range.validate("tier"), nonNegative("price", r.Price),
		nonNegative("price_per_unit", r.PricePerUnit))
}

// Step is one breakpoint of a progressive discount: from Threshold upwards
// Percent applies, until the next step.
type Step struct {
	Threshold decimal.Decimal
	Percent   decimal.Decimal
}

// ProgressiveDiscountRule is a step function from a driver to a discount percentage.
type ProgressiveDiscountRule struct {
	ID        string
	SortOrder int
	Driver    Driver
	Steps     []Step
}

func (r ProgressiveDiscountRule) RuleID() string { return r.ID }
func (r ProgressiveDiscountRule) Order() int     { return r.SortOrder }
func (r ProgressiveDiscountRule) Kind() Kind     { return KindProgressiveDiscount }
func (ProgressiveDiscountRule) isRule()          {}

// PercentFor returns the percent of the highest step whose threshold is <= value.
func (r ProgressiveDiscountRule) PercentFor(value decimal.Decimal) (decimal.Decimal, bool) {
	found := false
	percent := decimal.Zero
	for _, s := range r.Steps {
		if value.GreaterThanOrEqual(s.Threshold) {
			percent, found = s.Percent, true
		}
	}
	return percent, found
}

func (r ProgressiveDiscountRule) Validate() error {
	var stepErrs []error
	if !r.Driver.valid() {
		stepErrs = append(stepErrs, errs.NewValueIsInvalidError("driver "+string(r.Driver)))
	}
	if len(r.Steps) == 0 {
		stepErrs = append(stepErrs, errs.NewValueIsRequiredError("steps"))
	}
	for i, s := range r.Steps {
		stepErrs = append(stepErrs, percentInRange("steps.percent", s.Percent), nonNegative("steps.threshold", s.Threshold))
		if i > 0 && !s.Threshold.GreaterThan(r.Steps[i-1].Threshold) {
			stepErrs = append(stepErrs, errs.NewValueIsInvalidError("steps must have ascending thresholds"))
		}
	}
	return validateRule(r.ID, stepErrs...)
}

// Window is the half-open time interval [From, To).
type Window struct {
	From time.Time
	To   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

// SeasonalRule changes the running price while the as-of time lies in Window:
// either multiplies it or replaces it with FixedPrice. Exactly one is set.
type SeasonalRule struct {
	ID         string
	SortOrder  int
	Window     Window
	Multiplier decimal.NullDecimal
	FixedPrice decimal.NullDecimal
}

func (r SeasonalRule) RuleID() string { return r.ID }
func (r SeasonalRule) Order() int     { return r.SortOrder }
func (r SeasonalRule) Kind() Kind     { return KindSeasonal }
func (SeasonalRule) isRule()          {}

func (r SeasonalRule) Validate() error {
	var ruleErrs []error
	if !r.Window.To.After(r.Window.From) {
		ruleErrs = append(ruleErrs, errs.NewValueIsInvalidError("window must end after it starts"))
	}
	if r.Multiplier.Valid == r.FixedPrice.Valid {
		ruleErrs = append(ruleErrs, errs.NewValueIsInvalidError("exactly one of multiplier and fixed price"))
	}
	if r.Multiplier.Valid {
		ruleErrs = append(ruleErrs, nonNegative("multiplier", r.Multiplier.Decimal))
	}
	if r.FixedPrice.Valid {
		ruleErrs = append(ruleErrs, nonNegative("fixed_price", r.FixedPrice.Decimal))
	}
	return validateRule(r.ID, ruleErrs...)
}

// VolumeDiscountRule grants Percent once the parcel count reaches MinParcels.
type VolumeDiscountRule struct {
	ID         string
	SortOrder  int
	MinParcels int
	Percent    decimal.Decimal
}

func (r VolumeDiscountRule) RuleID() string { return r.ID }
func (r VolumeDiscountRule) Order() int     { return r.SortOrder }
func (r VolumeDiscountRule) Kind() Kind     { return KindVolumeDiscount }
func (VolumeDiscountRule) isRule()          {}

func (r VolumeDiscountRule) Validate() error {
	var minErr error
	if r.MinParcels < 1 {
		minErr = errs.NewValueIsOutOfRangeError("min_parcels", r.MinParcels, 1, "unbounded")
	}
	return validateRule(r.ID, minErr, percentInRange("percent", r.Percent))
}

// Percentage returns amount * percent / 100.
func Percentage(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(percent).Div(hundred)
}

func validateRule(id string, ruleErrs ...error) error {
	if strings.TrimSpace(id) == "" {
		ruleErrs = append(ruleErrs, errs.NewValueIsRequiredError("rule id"))
	}
	if err := errors.Join(ruleErrs...); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("rule "+id, err)
	}
	return nil
}

func nonNegative(param string, v decimal.Decimal) error {
	if v.IsNegative() {
		return errs.NewValueIsOutOfRangeError(param, v, 0, "unbounded")
	}
	return nil
}

func percentInRange(param string, v decimal.Decimal) error {
	if v.IsNegative() || v.GreaterThan(hundred) {
		return errs.NewValueIsOutOfRangeError(param, v, 0, 100)
	}
	return nil
}
