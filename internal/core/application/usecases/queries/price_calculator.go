package queries

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"shipcalc/internal/core/domain/model/carrier"
	"shipcalc/internal/core/domain/model/pricing"
	"shipcalc/internal/core/domain/model/quote"
	"shipcalc/internal/core/domain/model/zone"
	"shipcalc/internal/core/domain/services"
	"shipcalc/internal/core/ports"
	"shipcalc/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// priceCalculator prices one request for one carrier against a catalog
// snapshot. It is shared by the single, comparison and bulk handlers.
type priceCalculator struct {
	engine services.RuleEngine
	logger *slog.Logger
}

func newPriceCalculator(logger *slog.Logger) priceCalculator {
	return priceCalculator{
		engine: services.NewRuleEngine(logger),
		logger: logger.With("component", "price_calculator"),
	}
}

// calculation is the input of one carrier price: the request, the snapshot
// it runs against, the as-of time and the batch size for volume rules.
type calculation struct {
	reader      ports.CatalogReader
	request     quote.PriceRequest
	asOf        time.Time
	parcelCount int
}

func (c priceCalculator) resolveZone(reader ports.CatalogReader, req quote.PriceRequest) (zone.Zone, error) {
	if strings.TrimSpace(req.ZoneCode) != "" {
		return reader.Zone(req.ZoneCode)
	}
	return services.NewZoneResolver(reader).ResolveByPostalCode(req.PostalCode, req.CountryCode)
}

func (c priceCalculator) calculate(ctx context.Context, in calculation) (quote.PriceCalculationResult, error) {
	req := in.request
	if err := req.Validate(); err != nil {
		return quote.PriceCalculationResult{}, err
	}
	if strings.TrimSpace(req.CarrierCode) == "" {
		return quote.PriceCalculationResult{}, errs.NewValueIsRequiredError("carrier_code")
	}

	z, err := c.resolveZone(in.reader, req)
	if err != nil {
		return quote.PriceCalculationResult{}, err
	}

	cr, err := in.reader.Carrier(req.CarrierCode)
	if err != nil {
		return quote.PriceCalculationResult{}, err
	}
	if !cr.SupportsZone(z.Code()) {
		return quote.PriceCalculationResult{}, errs.NewCatalogError(errs.ErrZoneNotSupported).
			WithCarrier(cr.Code()).WithZone(z.Code())
	}

	service := strings.TrimSpace(req.ServiceType)
	if service == "" {
		service = cr.DefaultService()
	}
	table, err := in.reader.ActivePricingTable(cr.Code(), z.Code(), service)
	if err != nil {
		return quote.PriceCalculationResult{}, err
	}

	if err = cr.CheckParcel(req.WeightKg, req.Dimensions); err != nil {
		return quote.PriceCalculationResult{}, err
	}
	if err = table.CheckParcel(req.WeightKg, req.Dimensions); err != nil {
		return quote.PriceCalculationResult{}, err
	}
	if req.Currency != "" && !strings.EqualFold(req.Currency, table.Currency().Code()) {
		return quote.PriceCalculationResult{}, errs.NewCarrierCannotHandleError(
			cr.Code(), "currency", strings.ToUpper(req.Currency), table.Currency().Code())
	}

	rules, err := in.reader.RulesForTable(table.ID())
	if err != nil {
		return quote.PriceCalculationResult{}, err
	}

	charges, err := c.resolveServices(in.reader, cr, table, req)
	if err != nil {
		return quote.PriceCalculationResult{}, err
	}
	promotions, warnings := c.resolvePromotions(in.reader, req)

	if err = ctx.Err(); err != nil {
		return quote.PriceCalculationResult{}, err
	}

	ruleResult, err := c.engine.ApplyRules(rules, quote.RuleContext{
		CarrierCode:       cr.Code(),
		ZoneCode:          z.Code(),
		WeightKg:          req.WeightKg,
		Dimensions:        req.Dimensions,
		DeclaredValue:     req.DeclaredValue,
		Currency:          table.Currency(),
		CustomerID:        req.CustomerID,
		Promotions:        promotions,
		Services:          charges,
		VolumetricDivisor: table.VolumetricDivisor(),
		TaxRate:           table.TaxRate(),
		AsOf:              in.asOf,
		ShipmentCount:     req.ShipmentCount,
		ParcelCount:       max(in.parcelCount, 1),
	})
	if err != nil {
		return quote.PriceCalculationResult{}, err
	}

	return toPriceResult(table, ruleResult, in.asOf, append(warnings, ruleResult.Warnings...)), nil
}

func (c priceCalculator) resolveServices(
	reader ports.CatalogReader,
	cr carrier.Carrier,
	table pricing.Table,
	req quote.PriceRequest,
) ([]quote.ServiceCharge, error) {
	requested := req.NormalizedServices()
	if len(requested) == 0 {
		return nil, nil
	}

	offered := make(map[string]pricing.AdditionalService)
	for _, s := range reader.AdditionalServicesForCarrier(cr.Code()) {
		offered[s.Code] = s
	}

	charges := make([]quote.ServiceCharge, 0, len(requested))
	for _, code := range requested {
		svc, ok := offered[code]
		if !ok {
			return nil, errs.NewCarrierCannotHandleError(cr.Code(), "additional_service", code, "not offered")
		}
		charge := quote.ServiceCharge{Service: svc}
		if price, found := reader.ServicePriceOverride(table.ID(), code); found {
			charge.Override = decimal.NewNullDecimal(price)
		}
		charges = append(charges, charge)
	}
	return charges, nil
}

func (c priceCalculator) resolvePromotions(reader ports.CatalogReader, req quote.PriceRequest) ([]pricing.Promotion, []string) {
	var (
		promotions []pricing.Promotion
		warnings   []string
	)
	for _, code := range req.NormalizedPromotionCodes() {
		p, ok := reader.Promotion(code)
		if !ok {
			c.logger.Debug("unknown promotion code ignored", "code", code, "carrier", req.CarrierCode)
			warnings = append(warnings, fmt.Sprintf("promotion %s ignored: unknown code", code))
			continue
		}
		promotions = append(promotions, p)
	}
	return promotions, warnings
}

func toPriceResult(
	table pricing.Table,
	r quote.RuleResult,
	asOf time.Time,
	warnings []string,
) quote.PriceCalculationResult {
	cur := table.Currency()
	return quote.PriceCalculationResult{
		CarrierCode:            table.CarrierCode(),
		ZoneCode:               table.ZoneCode(),
		ServiceType:            table.ServiceType(),
		TableID:                table.ID().String(),
		TableVersion:           table.Version(),
		BillableWeightKg:       r.BillableWeightKg,
		BasePrice:              cur.Round(r.BasePrice),
		Surcharges:             cur.Round(r.Surcharges),
		AdditionalServicesCost: cur.Round(r.ServicesCost),
		SeasonalAdjustment:     cur.Round(r.Seasonal),
		Discounts:              cur.Round(r.Discounts.Add(r.Promotions)),
		NetPrice:               r.Subtotal,
		Tax:                    r.Tax,
		TotalPrice:             r.FinalPrice,
		Currency:               cur.Code(),
		DeliveryDays:           table.DeliveryDays(),
		AsOf:                   asOf,
		Adjustments:            r.Adjustments,
		AppliedRules:           r.AppliedRules,
		Warnings:               warnings,
	}
}
