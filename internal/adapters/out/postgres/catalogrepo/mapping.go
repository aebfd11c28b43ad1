package catalogrepo

import (
	"errors"
	"time"

	"shipcalc/internal/core/domain/model/carrier"
	"shipcalc/internal/core/domain/model/kernel"
	"shipcalc/internal/core/domain/model/pricing"
	"shipcalc/internal/core/domain/model/zone"
	"shipcalc/internal/pkg/errs"
)

func (d ZoneDTO) toDomain() (zone.Zone, error) {
	bounds, err := d.Bounds.toDomain()
	if err != nil {
		return zone.Zone{}, rowError(err).WithZone(d.Code)
	}
	z, err := zone.NewZone(d.Code, d.Name, zone.Type(d.Type), d.Priority, d.Countries, d.PostalPatterns, bounds)
	if err != nil {
		return zone.Zone{}, rowError(err).WithZone(d.Code)
	}
	return z, nil
}

func (d BoundsDTO) toDomain() (*kernel.BoundingBox, error) {
	set := 0
	for _, v := range []*float64{d.SouthLat, d.WestLng, d.NorthLat, d.EastLng} {
		if v != nil {
			set++
		}
	}
	switch set {
	case 0:
		return nil, nil
	case 4:
	default:
		return nil, errs.NewValueIsInvalidError("bounds must set all four corners or none")
	}

	sw, err := kernel.NewGeoPoint(*d.SouthLat, *d.WestLng)
	if err != nil {
		return nil, err
	}
	ne, err := kernel.NewGeoPoint(*d.NorthLat, *d.EastLng)
	if err != nil {
		return nil, err
	}
	box, err := kernel.NewBoundingBox(sw, ne)
	if err != nil {
		return nil, err
	}
	return &box, nil
}

func (d DimensionsDTO) toDomain() (kernel.Dimensions, error) {
	return kernel.NewDimensions(d.LengthCm, d.WidthCm, d.HeightCm)
}

func (d CarrierDTO) toDomain() (carrier.Carrier, error) {
	dims, err := d.MaxDimensions.toDomain()
	if err != nil {
		return carrier.Carrier{}, rowError(err).WithCarrier(d.Code)
	}
	c, err := carrier.NewCarrier(d.Code, d.Name, d.SupportedZones, d.MaxWeightKg, dims, d.DefaultService)
	if err != nil {
		return carrier.Carrier{}, rowError(err).WithCarrier(d.Code)
	}
	return c, nil
}

func (d PricingTableDTO) toDomain() (pricing.Table, error) {
	fail := func(err error) (pricing.Table, error) {
		return pricing.Table{}, rowError(err).
			WithCarrier(d.CarrierCode).WithZone(d.ZoneCode).WithTable(d.ID.String())
	}

	id, err := kernel.UUIDFromBytes(d.ID[:])
	if err != nil {
		return fail(err)
	}
	currency, err := kernel.ParseCurrency(d.Currency)
	if err != nil {
		return fail(err)
	}
	dims, err := d.MaxDimensions.toDomain()
	if err != nil {
		return fail(err)
	}

	rules := make([]pricing.Rule, 0, len(d.Rules))
	var ruleErrs []error
	for _, r := range d.Rules {
		rule, ruleErr := r.toDomain()
		if ruleErr != nil {
			ruleErrs = append(ruleErrs, ruleErr)
			continue
		}
		rules = append(rules, rule)
	}
	if err = errors.Join(ruleErrs...); err != nil {
		return fail(err)
	}

	t, err := pricing.NewTable(pricing.TableParams{
		ID:                id,
		CarrierCode:       d.CarrierCode,
		ZoneCode:          d.ZoneCode,
		ServiceType:       d.ServiceType,
		Version:           d.Version,
		Active:            d.Active,
		Currency:          currency,
		TaxRate:           d.TaxRate,
		MinWeightKg:       d.MinWeightKg,
		MaxWeightKg:       d.MaxWeightKg,
		MaxDimensions:     dims,
		VolumetricDivisor: d.VolumetricDivisor,
		DeliveryDays:      d.DeliveryDays,
		Rules:             rules,
	})
	if err != nil {
		return fail(err)
	}
	return t, nil
}

func (d RuleDTO) toDomain() (pricing.Rule, error) {
	rng := pricing.Range{From: d.RangeFrom.Decimal, To: d.RangeTo}

	switch pricing.Kind(d.Kind) {
	case pricing.KindWeightBand:
		return pricing.WeightBandRule{
			ID: d.RuleID, SortOrder: d.SortOrder, Range: rng,
			Price: d.Price.Decimal, PricePerKg: d.PricePerUnit.Decimal,
		}, nil
	case pricing.KindDimensional:
		limit, err := d.Limit.toDomain()
		if err != nil {
			return nil, errs.NewValueIsInvalidErrorWithCause("rule "+d.RuleID, err)
		}
		return pricing.DimensionalRule{
			ID: d.RuleID, SortOrder: d.SortOrder, Limit: limit,
			Surcharge: d.Price.Decimal, Reject: d.Reject,
		}, nil
	case pricing.KindTiered:
		return pricing.TieredRule{
			ID: d.RuleID, SortOrder: d.SortOrder, Driver: pricing.Driver(d.Driver), Range: rng,
			Price: d.Price.Decimal, PricePerUnit: d.PricePerUnit.Decimal,
		}, nil
	case pricing.KindProgressiveDiscount:
		steps := make([]pricing.Step, len(d.Steps))
		for i, s := range d.Steps {
			steps[i] = pricing.Step{Threshold: s.Threshold, Percent: s.Percent}
		}
		return pricing.ProgressiveDiscountRule{
			ID: d.RuleID, SortOrder: d.SortOrder, Driver: pricing.Driver(d.Driver), Steps: steps,
		}, nil
	case pricing.KindSeasonal:
		return pricing.SeasonalRule{
			ID: d.RuleID, SortOrder: d.SortOrder,
			Window:     pricing.Window{From: timeOrZero(d.WindowFrom), To: timeOrZero(d.WindowTo)},
			Multiplier: d.Multiplier,
			FixedPrice: d.Price,
		}, nil
	case pricing.KindVolumeDiscount:
		return pricing.VolumeDiscountRule{
			ID: d.RuleID, SortOrder: d.SortOrder, MinParcels: d.MinParcels, Percent: d.Percent.Decimal,
		}, nil
	default:
		return nil, errs.NewCatalogError(errs.ErrInvalidCatalogEntry).
			WithRule(d.RuleID).WithDetail("unknown rule kind %q", d.Kind)
	}
}

func (d AdditionalServiceDTO) toDomain() pricing.AdditionalService {
	return pricing.AdditionalService{
		CarrierCode: d.CarrierCode,
		Code:        d.Code,
		Name:        d.Name,
		PricingType: pricing.PricingType(d.PricingType),
		Price:       d.Price,
		Basis:       pricing.Basis(d.Basis),
		MinPrice:    d.MinPrice,
		MaxPrice:    d.MaxPrice,
	}
}

func (d AdditionalServicePriceDTO) toDomain() pricing.AdditionalServicePrice {
	return pricing.AdditionalServicePrice{
		TableID:     d.TableID.String(),
		ServiceCode: d.ServiceCode,
		Price:       d.Price,
	}
}

func (d PromotionDTO) toDomain() pricing.Promotion {
	return pricing.Promotion{
		Code:          d.Code,
		Name:          d.Name,
		Kind:          pricing.PromotionKind(d.Kind),
		Value:         d.Value,
		Stackable:     d.Stackable,
		Priority:      d.Priority,
		ValidFrom:     timeOrZero(d.ValidFrom),
		ValidTo:       timeOrZero(d.ValidTo),
		MinOrderValue: d.MinOrderValue,
	}
}

func rowError(err error) *errs.CatalogError {
	var catalogErr *errs.CatalogError
	if errors.As(err, &catalogErr) {
		return catalogErr
	}
	return errs.NewCatalogErrorWithCause(errs.ErrInvalidCatalogEntry, err)
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}
