package pricing

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
	ErrTableIsNotConstructed = errors.New("Table must be created via NewTable constructor")
	ErrServiceTypeIsRequired = errs.NewValueIsRequiredError("service type")
)

// TableParams carries the raw attributes of a pricing table.
type TableParams struct {
	ID                kernel.UUID
	CarrierCode       string
	ZoneCode          string
	ServiceType       string
	Version           int
	Active            bool
	Currency          kernel.Currency
	TaxRate           decimal.Decimal
	MinWeightKg       decimal.Decimal
	MaxWeightKg       decimal.Decimal
	MaxDimensions     kernel.Dimensions
	VolumetricDivisor decimal.Decimal
	DeliveryDays      int
	Rules             []Rule
}

// Table is one version of a carrier's price list for a zone and service type.
//
// Business rules:
//   - version starts at 1; among active tables for the same key the highest version wins
//   - tax rate is a fraction in [0, 1]
//   - a zero volumetric divisor falls back to kernel.DefaultVolumetricDivisor
//   - rules are kept ordered by sort order, then ID
type Table struct { //nolint:recvcheck //using for validation
	id                kernel.UUID
	carrierCode       string
	zoneCode          string
	serviceType       string
	version           int
	active            bool
	currency          kernel.Currency
	taxRate           decimal.Decimal
	minWeightKg       decimal.Decimal
	maxWeightKg       decimal.Decimal
	maxDimensions     kernel.Dimensions
	volumetricDivisor decimal.Decimal
	deliveryDays      int
	rules             []Rule
	guard             guard.ConstructorGuard
}

func NewTable(p TableParams) (Table, error) {
	t := Table{
		active:       p.Active,
		deliveryDays: max(p.DeliveryDays, 0),
		guard:        guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		t.setID(p.ID),
		t.setKey(p.CarrierCode, p.ZoneCode, p.ServiceType),
		t.setVersion(p.Version),
		t.setCurrency(p.Currency),
		t.setTaxRate(p.TaxRate),
		t.setWeightLimits(p.MinWeightKg, p.MaxWeightKg),
		t.setMaxDimensions(p.MaxDimensions),
		t.setVolumetricDivisor(p.VolumetricDivisor),
		t.setRules(p.Rules),
	); err != nil {
		return Table{}, err
	}

	return t, nil
}

func (t Table) Validate() error {
	return t.guard.Validate(ErrTableIsNotConstructed)
}

func (t Table) ID() kernel.UUID                    { return t.id }
func (t Table) CarrierCode() string                { return t.carrierCode }
func (t Table) ZoneCode() string                   { return t.zoneCode }
func (t Table) ServiceType() string                { return t.serviceType }
func (t Table) Version() int                       { return t.version }
func (t Table) IsActive() bool                     { return t.active }
func (t Table) Currency() kernel.Currency          { return t.currency }
func (t Table) TaxRate() decimal.Decimal           { return t.taxRate }
func (t Table) MinWeightKg() decimal.Decimal       { return t.minWeightKg }
func (t Table) MaxWeightKg() decimal.Decimal       { return t.maxWeightKg }
func (t Table) MaxDimensions() kernel.Dimensions   { return t.maxDimensions }
func (t Table) VolumetricDivisor() decimal.Decimal { return t.volumetricDivisor }
func (t Table) DeliveryDays() int                  { return t.deliveryDays }
func (t Table) Rules() []Rule                      { return slices.Clone(t.rules) }

// Key identifies the price list a table is a version of.
func (t Table) Key() TableKey {
	return TableKey{Carrier: t.carrierCode, Zone: t.zoneCode, Service: t.serviceType}
}

// WeightBands returns the table's weight-band rules in evaluation order.
func (t Table) WeightBands() []WeightBandRule {
	var bands []WeightBandRule
	for _, r := range t.rules {
		if band, ok := r.(WeightBandRule); ok {
			bands = append(bands, band)
		}
	}
	return bands
}

// CheckParcel enforces the table's own weight and dimension bounds. A zero
// max weight means unlimited.
func (t Table) CheckParcel(weightKg decimal.Decimal, dims kernel.Dimensions) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if weightKg.LessThan(t.minWeightKg) {
		return errs.NewCarrierCannotHandleBelowMinimumError(t.carrierCode, "weight_kg", weightKg, t.minWeightKg)
	}
	if t.maxWeightKg.IsPositive() && weightKg.GreaterThan(t.maxWeightKg) {
		return errs.NewCarrierCannotHandleError(t.carrierCode, "weight_kg", weightKg, t.maxWeightKg)
	}
	if axis, value, maxValue, exceeded := dims.Exceeds(t.maxDimensions); exceeded {
		return errs.NewCarrierCannotHandleError(t.carrierCode, axis, value, maxValue)
	}
	return nil
}

// TableKey is (carrier, zone, service type).
type TableKey struct {
	Carrier string
	Zone    string
	Service string
}

// NewTableKey normalizes codes the same way the constructors do.
func NewTableKey(carrierCode, zoneCode, serviceType string) TableKey {
	return TableKey{
		Carrier: normalizeCode(carrierCode),
		Zone:    normalizeCode(zoneCode),
		Service: normalizeService(serviceType),
	}
}

func (t *Table) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("table id", err)
	}
	t.id = id
	return nil
}

func (t *Table) setKey(carrierCode, zoneCode, serviceType string) error {
	key := NewTableKey(carrierCode, zoneCode, serviceType)
	var keyErrs []error
	if key.Carrier == "" {
		keyErrs = append(keyErrs, errs.NewValueIsRequiredError("carrier code"))
	}
	if key.Zone == "" {
		keyErrs = append(keyErrs, errs.NewValueIsRequiredError("zone code"))
	}
	if key.Service == "" {
		keyErrs = append(keyErrs, ErrServiceTypeIsRequired)
	}
	t.carrierCode, t.zoneCode, t.serviceType = key.Carrier, key.Zone, key.Service
	return errors.Join(keyErrs...)
}

func (t *Table) setVersion(version int) error {
	if version < 1 {
		return errs.NewVersionIsInvalidError("table version", version)
	}
	t.version = version
	return nil
}

func (t *Table) setCurrency(c kernel.Currency) error {
	if err := c.Validate(); err != nil {
		return err
	}
	t.currency = c
	return nil
}

func (t *Table) setTaxRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return errs.NewValueIsOutOfRangeError("tax_rate", rate, 0, 1)
	}
	t.taxRate = rate
	return nil
}

func (t *Table) setWeightLimits(minKg, maxKg decimal.Decimal) error {
	if minKg.IsNegative() {
		return errs.NewValueIsOutOfRangeError("min_weight_kg", minKg, 0, "unbounded")
	}
	if maxKg.IsNegative() || (maxKg.IsPositive() && maxKg.LessThan(minKg)) {
		return errs.NewValueIsOutOfRangeError("max_weight_kg", maxKg, minKg, "unbounded")
	}
	t.minWeightKg, t.maxWeightKg = minKg, maxKg
	return nil
}

func (t *Table) setMaxDimensions(d kernel.Dimensions) error {
	if err := d.Validate(); err != nil {
		return err
	}
	t.maxDimensions = d
	return nil
}

func (t *Table) setVolumetricDivisor(divisor decimal.Decimal) error {
	if divisor.IsZero() {
		divisor = kernel.DefaultVolumetricDivisor
	}
	if !divisor.IsPositive() {
		return kernel.ErrDivisorIsInvalid
	}
	t.volumetricDivisor = divisor
	return nil
}

func (t *Table) setRules(rules []Rule) error {
	var ruleErrs []error
	seen := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		if r == nil {
			ruleErrs = append(ruleErrs, errs.NewValueIsRequiredError("rule"))
			continue
		}
		if _, dup := seen[r.RuleID()]; dup {
			ruleErrs = append(ruleErrs, errs.NewValueIsInvalidError("duplicate rule id "+r.RuleID()))
		}
		seen[r.RuleID()] = struct{}{}
		ruleErrs = append(ruleErrs, r.Validate())
	}
	t.rules = SortRules(slices.DeleteFunc(slices.Clone(rules), func(r Rule) bool { return r == nil }))
	return errors.Join(ruleErrs...)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func normalizeService(service string) string {
	return strings.ToLower(strings.TrimSpace(service))
}
