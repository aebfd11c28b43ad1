package kernel

import (
	"errors"
	"fmt"

	"shipcalc/internal/pkg/errs"
	"shipcalc/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

// DefaultVolumetricDivisor converts cm³ to volumetric kilograms when a table sets none.
var DefaultVolumetricDivisor = decimal.NewFromInt(5000)

var (
	// ErrDimensionsAreNotConstructed is returned when a zero-value Dimensions is used.
	ErrDimensionsAreNotConstructed = errs.NewValueIsRequiredError("dimensions must be created via NewDimensions")
	// ErrDivisorIsInvalid is returned for a non-positive volumetric divisor.
	ErrDivisorIsInvalid = errs.NewValueIsInvalidError("volumetric divisor must be positive")
)

// Axis names used in errors and limits.
const (
	AxisLength = "length_cm"
	AxisWidth  = "width_cm"
	AxisHeight = "height_cm"
)

// Dimensions is a parcel's length, width and height in centimetres.
// All-zero dimensions are valid and mean "not declared".
//
// As a limit (carrier or table maximums) a zero axis means "no limit on that axis".
type Dimensions struct { //nolint:recvcheck //using for validation
	length decimal.Decimal
	width  decimal.Decimal
	height decimal.Decimal
	guard  guard.ConstructorGuard
}

// NewDimensions validates that no axis is negative.
func NewDimensions(length, width, height decimal.Decimal) (Dimensions, error) {
	d := Dimensions{guard: guard.NewConstructorGuard()}
	if err := errors.Join(
		d.setAxis(&d.length, AxisLength, length),
		d.setAxis(&d.width, AxisWidth, width),
		d.setAxis(&d.height, AxisHeight, height),
	); err != nil {
		return Dimensions{}, err
	}
	return d, nil
}

// NoDimensions returns all-zero dimensions.
func NoDimensions() Dimensions {
	return Dimensions{guard: guard.NewConstructorGuard()}
}

func (d Dimensions) Validate() error {
	return d.guard.Validate(ErrDimensionsAreNotConstructed)
}

func (d Dimensions) Length() decimal.Decimal { return d.length }
func (d Dimensions) Width() decimal.Decimal  { return d.width }
func (d Dimensions) Height() decimal.Decimal { return d.height }

func (d Dimensions) IsZero() bool {
	return d.length.IsZero() && d.width.IsZero() && d.height.IsZero()
}

// Volume returns L*W*H in cm³.
func (d Dimensions) Volume() decimal.Decimal {
	return d.length.Mul(d.width).Mul(d.height)
}

// VolumetricWeight returns L*W*H / divisor in kilograms.
func (d Dimensions) VolumetricWeight(divisor decimal.Decimal) (decimal.Decimal, error) {
	if !divisor.IsPositive() {
		return decimal.Zero, ErrDivisorIsInvalid
	}
	return d.Volume().Div(divisor), nil
}

// Exceeds compares each axis with the matching axis of limit and reports the
// first one that is larger. Zero axes in limit are unlimited.
func (d Dimensions) Exceeds(limit Dimensions) (axis string, value, maxValue decimal.Decimal, exceeded bool) {
	for _, a := range []struct {
		name       string
		value, max decimal.Decimal
	}{
		{AxisLength, d.length, limit.length},
		{AxisWidth, d.width, limit.width},
		{AxisHeight, d.height, limit.height},
	} {
		if a.max.IsPositive() && a.value.GreaterThan(a.max) {
			return a.name, a.value, a.max, true
		}
	}
	return "", decimal.Zero, decimal.Zero, false
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%sx%sx%s cm", d.length, d.width, d.height)
}

// BillableWeight is the larger of the actual and the volumetric weight.
func BillableWeight(actualKg decimal.Decimal, d Dimensions, divisor decimal.Decimal) (decimal.Decimal, error) {
	volumetric, err := d.VolumetricWeight(divisor)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.Max(actualKg, volumetric), nil
}

func (d *Dimensions) setAxis(dst *decimal.Decimal, name string, value decimal.Decimal) error {
	if value.IsNegative() {
		return errs.NewValueIsOutOfRangeError(name, value, 0, "unbounded")
	}
	*dst = value
	return nil
}
