// Package carrier models the shipping companies a quote can be priced for.
package carrier

import (
	"errors"
	"slices"
	"strings"

	"shipcalc/internal/core/domain/model/kernel"
	"shipcalc/internal/pkg/errs"
	"shipcalc/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	// ErrCarrierIsNotConstructed is returned when a zero-value Carrier is used.
	ErrCarrierIsNotConstructed = errors.New("Carrier must be created via NewCarrier constructor")
	// ErrCodeIsRequired is returned for an empty carrier code.
	ErrCodeIsRequired = errs.NewValueIsRequiredError("carrier code")
	// ErrDefaultServiceIsRequired is returned when a carrier has no default service type.
	ErrDefaultServiceIsRequired = errs.NewValueIsRequiredError("default service type")
)

// Carrier is an immutable catalog entry. It is the aggregate that decides
// whether a parcel is physically acceptable, independent of any price list.
//
// Business rules:
//   - code is unique in the catalog and stored upper case
//   - max weight of zero means the carrier sets no weight limit of its own
//   - max dimensions follow kernel.Dimensions limit semantics (zero axis = no limit)
type Carrier struct { //nolint:recvcheck //using for validation
	code           string
	name           string
	supportedZones []string
	maxWeightKg    decimal.Decimal
	maxDimensions  kernel.Dimensions
	defaultService string
	guard          guard.ConstructorGuard
}

// NewCarrier validates and builds a carrier.
func NewCarrier(
	code, name string,
	supportedZones []string,
	maxWeightKg decimal.Decimal,
	maxDimensions kernel.Dimensions,
	defaultService string,
) (Carrier, error) {
	c := Carrier{
		name:  strings.TrimSpace(name),
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		c.setCode(code),
		c.setSupportedZones(supportedZones),
		c.setMaxWeight(maxWeightKg),
		c.setMaxDimensions(maxDimensions),
		c.setDefaultService(defaultService),
	); err != nil {
		return Carrier{}, err
	}

	return c, nil
}

func (c Carrier) Validate() error {
	return c.guard.Validate(ErrCarrierIsNotConstructed)
}

func (c Carrier) Code() string                     { return c.code }
func (c Carrier) Name() string                     { return c.name }
func (c Carrier) MaxWeightKg() decimal.Decimal     { return c.maxWeightKg }
func (c Carrier) MaxDimensions() kernel.Dimensions { return c.maxDimensions }
func (c Carrier) DefaultService() string           { return c.defaultService }

func (c Carrier) SupportedZones() []string {
	return slices.Clone(c.supportedZones)
}

func (c Carrier) SupportsZone(zoneCode string) bool {
	return slices.Contains(c.supportedZones, strings.ToUpper(strings.TrimSpace(zoneCode)))
}

// CheckParcel returns a CarrierCannotHandleError when the parcel is heavier or
// larger than the carrier accepts.
func (c Carrier) CheckParcel(weightKg decimal.Decimal, dims kernel.Dimensions) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.maxWeightKg.IsPositive() && weightKg.GreaterThan(c.maxWeightKg) {
		return errs.NewCarrierCannotHandleError(c.code, "weight_kg", weightKg, c.maxWeightKg)
	}
	if axis, value, maxValue, exceeded := dims.Exceeds(c.maxDimensions); exceeded {
		return errs.NewCarrierCannotHandleError(c.code, axis, value, maxValue)
	}
	return nil
}

func (c *Carrier) setCode(code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return ErrCodeIsRequired
	}
	c.code = code
	return nil
}

func (c *Carrier) setSupportedZones(zones []string) error {
	for _, z := range zones {
		z = strings.ToUpper(strings.TrimSpace(z))
		if z == "" {
			return errs.NewValueIsRequiredError("supported zone code")
		}
		if !slices.Contains(c.supportedZones, z) {
			c.supportedZones = append(c.supportedZones, z)
		}
	}
	slices.Sort(c.supportedZones)
	return nil
}

func (c *Carrier) setMaxWeight(maxWeightKg decimal.Decimal) error {
	if maxWeightKg.IsNegative() {
		return errs.NewValueIsOutOfRangeError("max_weight_kg", maxWeightKg, 0, "unbounded")
	}
	c.maxWeightKg = maxWeightKg
	return nil
}

func (c *Carrier) setMaxDimensions(d kernel.Dimensions) error {
	if err := d.Validate(); err != nil {
		return err
	}
	c.maxDimensions = d
	return nil
}

func (c *Carrier) setDefaultService(service string) error {
	service = strings.ToLower(strings.TrimSpace(service))
	if service == "" {
		return ErrDefaultServiceIsRequired
	}
	c.defaultService = service
	return nil
}
