package quote

import (
	"time"

	"shipcalc/internal/core/domain/model/kernel"
	"shipcalc/internal/core/domain/model/pricing"

	"github.com/shopspring/decimal"
)

// Stage is a step of the fixed evaluation order.
type Stage string

const (
	StageBase               Stage = "base"
	StageDimensional        Stage = "dimensional"
	StageAdditionalServices Stage = "additional_services"
	StageSeasonal           Stage = "seasonal"
	StageDiscount           Stage = "discount"
	StagePromotion          Stage = "promotion"
	StageTax                Stage = "tax"
)

// ServiceCharge is an additional service resolved for a table, with the
// table-specific override price when one exists.
type ServiceCharge struct {
	Service  pricing.AdditionalService
	Override decimal.NullDecimal
}

// Amount prices the service. An override replaces the computed price entirely.
func (s ServiceCharge) Amount(basePrice, declaredValue decimal.Decimal) decimal.Decimal {
	if s.Override.Valid {
		return s.Override.Decimal
	}
	return s.Service.Charge(basePrice, declaredValue)
}

// RuleContext is everything the rule engine needs to price one parcel.
type RuleContext struct {
	CarrierCode       string
	ZoneCode          string
	WeightKg          decimal.Decimal
	Dimensions        kernel.Dimensions
	DeclaredValue     decimal.Decimal
	Currency          kernel.Currency
	CustomerID        string
	Promotions        []pricing.Promotion
	Services          []ServiceCharge
	VolumetricDivisor decimal.Decimal
	TaxRate           decimal.Decimal
	AsOf              time.Time
	ShipmentCount     int
	ParcelCount       int
}

// Divisor returns the volumetric divisor, defaulting when unset.
func (c RuleContext) Divisor() decimal.Decimal {
	if c.VolumetricDivisor.IsPositive() {
		return c.VolumetricDivisor
	}
	return kernel.DefaultVolumetricDivisor
}

// Adjustment is one line of the rule trail. Amount is signed: discounts are negative.
type Adjustment struct {
	RuleID      string
	Stage       Stage
	Amount      decimal.Decimal
	Description string
}

// RuleResult accumulates the outcome of evaluating a table's rules.
// Intermediate amounts are unrounded; FinalPrice, Subtotal and Tax are
// rounded to the currency's minor unit once evaluation is complete.
type RuleResult struct {
	BillableWeightKg decimal.Decimal
	BasePrice        decimal.Decimal
	Surcharges       decimal.Decimal
	ServicesCost     decimal.Decimal
	Seasonal         decimal.Decimal
	Discounts        decimal.Decimal
	Promotions       decimal.Decimal
	Subtotal         decimal.Decimal
	Tax              decimal.Decimal
	FinalPrice       decimal.Decimal
	Currency         kernel.Currency
	Adjustments      []Adjustment
	AppliedRules     []string
	Warnings         []string
}

// Record adds a trail line and marks the rule as applied.
func (r *RuleResult) Record(stage Stage, ruleID string, amount decimal.Decimal, description string) {
	r.Adjustments = append(r.Adjustments, Adjustment{
		RuleID:      ruleID,
		Stage:       stage,
		Amount:      amount,
		Description: description,
	})
	r.AppliedRules = append(r.AppliedRules, ruleID)
}

func (r *RuleResult) Warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// Running is the pre-tax price accumulated so far.
func (r RuleResult) Running() decimal.Decimal {
	return r.BasePrice.Add(r.Surcharges).Add(r.ServicesCost).Add(r.Seasonal).
		Sub(r.Discounts).Sub(r.Promotions)
}
