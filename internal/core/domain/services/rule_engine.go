package services

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"shipcalc/internal/core/domain/model/kernel"
	"shipcalc/internal/core/domain/model/pricing"
	"shipcalc/internal/core/domain/model/quote"
	"shipcalc/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// Rule IDs of trail lines that do not come from a catalog rule.
const (
	ServiceRuleID = "service:"
	TaxRuleID     = "tax"
)

var ErrRuleContextIsInvalid = errors.New("rule context is invalid")

// RuleEngine prices one parcel against the rules of one pricing table.
//
// Business rules:
//   - weight bands match on billable weight, max(actual, L*W*H/divisor)
//   - exactly one band should match; on overlap the lowest sort order wins and a warning is emitted
//   - a band charges price + max(0, billable - from) * price per kg
//   - stages run in a fixed order and every contribution lands in the rule trail
//   - the pre-tax price never goes below zero; a clamp emits a warning
//   - rounding to the currency minor unit, half up, happens once at the end
//
// Example:
//
//	engine := NewRuleEngine(logger)
//	result, err := engine.ApplyRules(table.Rules(), ruleCtx)
//	if errors.Is(err, errs.ErrCarrierCannotHandle) {
//	    // a dimensional rule rejected the parcel
//	}
type RuleEngine struct {
	logger   *slog.Logger
	combiner PromotionCombiner
}

func NewRuleEngine(logger *slog.Logger) RuleEngine {
	return RuleEngine{
		logger:   logger.With("component", "rule_engine"),
		combiner: NewPromotionCombiner(),
	}
}

type ruleSet struct {
	bands       []pricing.WeightBandRule
	dimensional []pricing.DimensionalRule
	tiered      []pricing.TieredRule
	progressive []pricing.ProgressiveDiscountRule
	seasonal    []pricing.SeasonalRule
	volume      []pricing.VolumeDiscountRule
}

func partition(rules []pricing.Rule) (ruleSet, error) {
	var set ruleSet
	for _, rule := range pricing.SortRules(rules) {
		switch r := rule.(type) {
		case pricing.WeightBandRule:
			set.bands = append(set.bands, r)
		case pricing.DimensionalRule:
			set.dimensional = append(set.dimensional, r)
		case pricing.TieredRule:
			set.tiered = append(set.tiered, r)
		case pricing.ProgressiveDiscountRule:
			set.progressive = append(set.progressive, r)
		case pricing.SeasonalRule:
			set.seasonal = append(set.seasonal, r)
		case pricing.VolumeDiscountRule:
			set.volume = append(set.volume, r)
		default:
			return ruleSet{}, errs.NewCatalogError(errs.ErrInvalidCatalogEntry).
				WithRule(rule.RuleID()).WithDetail("unsupported rule kind %s", rule.Kind())
		}
	}
	return set, nil
}

// ApplyRules runs every stage over rules and returns the priced result.
func (e RuleEngine) ApplyRules(rules []pricing.Rule, ctx quote.RuleContext) (quote.RuleResult, error) {
	if err := validateContext(ctx); err != nil {
		return quote.RuleResult{}, err
	}

	set, err := partition(rules)
	if err != nil {
		return quote.RuleResult{}, err
	}

	billable, err := kernel.BillableWeight(ctx.WeightKg, ctx.Dimensions, ctx.Divisor())
	if err != nil {
		return quote.RuleResult{}, err
	}

	result := quote.RuleResult{BillableWeightKg: billable, Currency: ctx.Currency}

	if err = e.ApplyWeightRules(set.bands, ctx, &result); err != nil {
		return quote.RuleResult{}, err
	}
	e.ApplyTieredRules(set.tiered, ctx, &result)
	if err = e.ApplyDimensionRules(set.dimensional, ctx, &result); err != nil {
		return quote.RuleResult{}, err
	}
	e.ApplyAdditionalServices(ctx, &result)
	e.ApplySeasonalRules(set.seasonal, ctx, &result)
	e.ApplyProgressiveRules(set.progressive, ctx, &result)
	e.ApplyVolumeBasedRules(set.volume, ctx, &result)
	e.applyPromotions(ctx, &result)
	e.applyTax(ctx, &result)

	return result, nil
}

// ApplyWeightRules sets the base price from the band holding the billable
// weight. It fails with a CatalogError when no band matches.
func (e RuleEngine) ApplyWeightRules(
	bands []pricing.WeightBandRule,
	ctx quote.RuleContext,
	result *quote.RuleResult,
) error {
	billable := result.BillableWeightKg
	if billable.IsZero() {
		var err error
		if billable, err = kernel.BillableWeight(ctx.WeightKg, ctx.Dimensions, ctx.Divisor()); err != nil {
			return err
		}
		result.BillableWeightKg = billable
	}

	band, ok := matchBand(e, bands, billable, func(b pricing.WeightBandRule) (string, int, pricing.Range) {
		return b.ID, b.SortOrder, b.Range
	}, "weight", result)
	if !ok {
		return errs.NewCatalogError(errs.ErrNoMatchingBand).
			WithCarrier(ctx.CarrierCode).WithZone(ctx.ZoneCode).
			WithDetail("billable weight %s kg", billable)
	}

	charge := band.Charge(billable)
	result.BasePrice = result.BasePrice.Add(charge)
	result.Record(quote.StageBase, band.ID, charge, fmt.Sprintf("weight band %s kg", band.Range))
	return nil
}

// ApplyTieredRules adds, per driver, the charge of the tier holding the driver's value.
func (e RuleEngine) ApplyTieredRules(tiers []pricing.TieredRule, ctx quote.RuleContext, result *quote.RuleResult) {
	for _, driver := range []pricing.Driver{pricing.DriverDeclaredValue, pricing.DriverShipmentCount} {
		forDriver := slices.DeleteFunc(slices.Clone(tiers), func(t pricing.TieredRule) bool { return t.Driver != driver })
		value := driverValue(driver, ctx)
		tier, ok := matchBand(e, forDriver, value, func(t pricing.TieredRule) (string, int, pricing.Range) {
			return t.ID, t.SortOrder, t.Range
		}, string(driver), result)
		if !ok {
			continue
		}
		charge := tier.Charge(value)
		result.BasePrice = result.BasePrice.Add(charge)
		result.Record(quote.StageBase, tier.ID, charge, fmt.Sprintf("%s tier %s", driver, tier.Range))
	}
}

// ApplyDimensionRules rejects the parcel or adds a surcharge for each rule
// whose limit an axis exceeds.
func (e RuleEngine) ApplyDimensionRules(
	rules []pricing.DimensionalRule,
	ctx quote.RuleContext,
	result *quote.RuleResult,
) error {
	for _, r := range rules {
		axis, value, limit, exceeded := ctx.Dimensions.Exceeds(r.Limit)
		if !exceeded {
			continue
		}
		if r.Reject {
			cannot := errs.NewCarrierCannotHandleError(ctx.CarrierCode, axis, value, limit)
			cannot.RuleID = r.ID
			return cannot
		}
		result.Surcharges = result.Surcharges.Add(r.Surcharge)
		result.Record(quote.StageDimensional, r.ID, r.Surcharge, fmt.Sprintf("%s %s over %s", axis, value, limit))
	}
	return nil
}

// ApplyAdditionalServices prices the resolved services against the base price.
func (e RuleEngine) ApplyAdditionalServices(ctx quote.RuleContext, result *quote.RuleResult) {
	for _, s := range ctx.Services {
		amount := s.Amount(result.BasePrice, ctx.DeclaredValue)
		result.ServicesCost = result.ServicesCost.Add(amount)
		result.Record(quote.StageAdditionalServices, ServiceRuleID+s.Service.Code, amount, s.Service.Name)
	}
}

// ApplySeasonalRules applies, in order, every rule whose window holds the as-of time.
func (e RuleEngine) ApplySeasonalRules(rules []pricing.SeasonalRule, ctx quote.RuleContext, result *quote.RuleResult) {
	for _, r := range rules {
		if !r.Window.Contains(ctx.AsOf) {
			continue
		}
		running := result.Running()
		var delta decimal.Decimal
		var desc string
		if r.FixedPrice.Valid {
			delta = r.FixedPrice.Decimal.Sub(running)
			desc = fmt.Sprintf("seasonal price %s", r.FixedPrice.Decimal)
		} else {
			delta = running.Mul(r.Multiplier.Decimal.Sub(decimal.NewFromInt(1)))
			desc = fmt.Sprintf("seasonal multiplier %s", r.Multiplier.Decimal)
		}
		result.Seasonal = result.Seasonal.Add(delta)
		result.Record(quote.StageSeasonal, r.ID, delta, desc)
	}
}

// ApplyProgressiveRules applies each progressive step function to the running price.
func (e RuleEngine) ApplyProgressiveRules(
	rules []pricing.ProgressiveDiscountRule,
	ctx quote.RuleContext,
	result *quote.RuleResult,
) {
	for _, r := range rules {
		value := driverValue(r.Driver, ctx)
		percent, ok := r.PercentFor(value)
		if !ok || percent.IsZero() {
			continue
		}
		discount := pricing.Percentage(result.Running(), percent)
		result.Discounts = result.Discounts.Add(discount)
		result.Record(quote.StageDiscount, r.ID, discount.Neg(),
			fmt.Sprintf("%s%% for %s %s", percent, r.Driver, value))
	}
}

// ApplyVolumeBasedRules applies the rule with the highest threshold the parcel
// count reaches. Equal thresholds resolve to the lowest sort order.
func (e RuleEngine) ApplyVolumeBasedRules(
	rules []pricing.VolumeDiscountRule,
	ctx quote.RuleContext,
	result *quote.RuleResult,
) {
	var best *pricing.VolumeDiscountRule
	for i := range rules {
		r := &rules[i]
		if ctx.ParcelCount < r.MinParcels {
			continue
		}
		if best == nil || r.MinParcels > best.MinParcels {
			best = r
		}
	}
	if best == nil || best.Percent.IsZero() {
		return
	}

	discount := pricing.Percentage(result.Running(), best.Percent)
	result.Discounts = result.Discounts.Add(discount)
	result.Record(quote.StageDiscount, best.ID, discount.Neg(),
		fmt.Sprintf("%s%% for %d parcels", best.Percent, ctx.ParcelCount))
}

func (e RuleEngine) applyPromotions(ctx quote.RuleContext, result *quote.RuleResult) {
	if len(ctx.Promotions) == 0 {
		return
	}
	promo := e.combiner.CombinePromotions(ctx.Promotions, ctx, decimal.Max(result.Running(), decimal.Zero))
	result.Promotions = result.Promotions.Add(promo.Promotions)
	result.Adjustments = append(result.Adjustments, promo.Adjustments...)
	result.AppliedRules = append(result.AppliedRules, promo.AppliedRules...)
	result.Warnings = append(result.Warnings, promo.Warnings...)
}

func (e RuleEngine) applyTax(ctx quote.RuleContext, result *quote.RuleResult) {
	subtotal := result.Running()
	if subtotal.IsNegative() {
		e.logger.Warn("price clamped to zero",
			"carrier", ctx.CarrierCode, "zone", ctx.ZoneCode, "price", subtotal.String())
		result.Warn(fmt.Sprintf("price %s clamped to zero", subtotal.StringFixed(ctx.Currency.Scale())))
		subtotal = decimal.Zero
	}

	tax := subtotal.Mul(ctx.TaxRate)
	final := ctx.Currency.Round(subtotal.Add(tax))
	result.Subtotal = ctx.Currency.Round(subtotal)
	result.Tax = final.Sub(result.Subtotal)
	result.FinalPrice = final
	if !ctx.TaxRate.IsZero() {
		result.Record(quote.StageTax, TaxRuleID, tax, fmt.Sprintf("tax %s%%", ctx.TaxRate.Mul(decimal.NewFromInt(100))))
	}
}

// matchBand returns the rule whose range holds value. When several do, the
// first in sort order wins and the overlap is logged and surfaced as a warning.
func matchBand[T any](
	e RuleEngine,
	rules []T,
	value decimal.Decimal,
	describe func(T) (id string, order int, r pricing.Range),
	what string,
	result *quote.RuleResult,
) (T, bool) {
	var matches []T
	for _, r := range rules {
		if _, _, rng := describe(r); rng.Contains(value) {
			matches = append(matches, r)
		}
	}
	if len(matches) == 0 {
		var zero T
		return zero, false
	}
	slices.SortStableFunc(matches, func(a, b T) int {
		_, orderA, _ := describe(a)
		_, orderB, _ := describe(b)
		return cmp.Compare(orderA, orderB)
	})
	if len(matches) > 1 {
		ids := make([]string, 0, len(matches))
		for _, m := range matches {
			id, _, _ := describe(m)
			ids = append(ids, id)
		}
		e.logger.Warn("overlapping bands, lowest sort order wins",
			"driver", what, "value", value.String(), "rules", ids)
		result.Warn(fmt.Sprintf("%s %s matches %d bands %v; %s applied", what, value, len(matches), ids, ids[0]))
	}
	return matches[0], true
}

func driverValue(driver pricing.Driver, ctx quote.RuleContext) decimal.Decimal {
	if driver == pricing.DriverShipmentCount {
		return decimal.NewFromInt(int64(ctx.ShipmentCount))
	}
	return ctx.DeclaredValue
}

func validateContext(ctx quote.RuleContext) error {
	var ctxErrs []error
	if err := ctx.Currency.Validate(); err != nil {
		ctxErrs = append(ctxErrs, err)
	}
	if err := ctx.Dimensions.Validate(); err != nil {
		ctxErrs = append(ctxErrs, err)
	}
	if !ctx.WeightKg.IsPositive() {
		ctxErrs = append(ctxErrs, errs.NewValueIsOutOfRangeError("weight_kg", ctx.WeightKg, "0 (exclusive)", "unbounded"))
	}
	if ctx.AsOf.IsZero() {
		ctxErrs = append(ctxErrs, errs.NewValueIsRequiredError("as_of"))
	}
	if err := errors.Join(ctxErrs...); err != nil {
		return errors.Join(ErrRuleContextIsInvalid, err)
	}
	return nil
}
