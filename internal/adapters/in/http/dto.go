package http

import (
	"time"

	"shipcalc/internal/core/domain/model/kernel"
	"shipcalc/internal/core/domain/model/quote"
	"shipcalc/internal/core/domain/model/zone"

	"github.com/shopspring/decimal"
)

// DimensionsDTO is a parcel's size in centimetres.
type DimensionsDTO struct {
	LengthCm decimal.Decimal `json:"length" validate:"gte=0"`
	WidthCm  decimal.Decimal `json:"width"  validate:"gte=0"`
	HeightCm decimal.Decimal `json:"height" validate:"gte=0"`
}

// PriceRequestDTO is the JSON body of a single-parcel quote.
type PriceRequestDTO struct {
	CarrierCode        string          `json:"carrier_code"        validate:"omitempty,max=32"`
	ZoneCode           string          `json:"zone_code"           validate:"omitempty,max=32"`
	PostalCode         string          `json:"postal_code"         validate:"omitempty,max=16"`
	Country            string          `json:"country"             validate:"required_without=ZoneCode,omitempty,len=2,alpha"`
	ServiceType        string          `json:"service_type"        validate:"omitempty,max=32"`
	WeightKg           decimal.Decimal `json:"weight_kg"           validate:"gt=0"`
	Dimensions         *DimensionsDTO  `json:"dimensions_cm"`
	DeclaredValue      decimal.Decimal `json:"declared_value"      validate:"gte=0"`
	Currency           string          `json:"currency"            validate:"omitempty,len=3,alpha"`
	CustomerID         string          `json:"customer_id"         validate:"omitempty,max=64"`
	AdditionalServices []string        `json:"additional_services" validate:"omitempty,dive,required,max=32"`
	PromotionCodes     []string        `json:"promotion_codes"     validate:"omitempty,dive,required,max=32"`
	ShipmentCount      int             `json:"shipment_count"      validate:"gte=0"`
	AsOf               *time.Time      `json:"as_of"`
}

func (r PriceRequestDTO) toDomain() (quote.PriceRequest, error) {
	dims := kernel.NoDimensions()
	if r.Dimensions != nil {
		var err error
		dims, err = kernel.NewDimensions(r.Dimensions.LengthCm, r.Dimensions.WidthCm, r.Dimensions.HeightCm)
		if err != nil {
			return quote.PriceRequest{}, err
		}
	}

	return quote.PriceRequest{
		CarrierCode:        r.CarrierCode,
		ZoneCode:           r.ZoneCode,
		PostalCode:         r.PostalCode,
		CountryCode:        r.Country,
		ServiceType:        r.ServiceType,
		WeightKg:           r.WeightKg,
		Dimensions:         dims,
		DeclaredValue:      r.DeclaredValue,
		Currency:           r.Currency,
		CustomerID:         r.CustomerID,
		AdditionalServices: r.AdditionalServices,
		PromotionCodes:     r.PromotionCodes,
		ShipmentCount:      r.ShipmentCount,
	}, nil
}

// toBulkItem converts a batch item without rejecting the batch. Malformed
// dimensions are left unconstructed so the item fails validation on its own.
func (r PriceRequestDTO) toBulkItem() quote.PriceRequest {
	req, err := r.toDomain()
	if err != nil {
		r.Dimensions = nil
		req, _ = r.toDomain()
		req.Dimensions = kernel.Dimensions{}
	}
	return req
}

func (r PriceRequestDTO) asOf() time.Time {
	if r.AsOf == nil {
		return time.Time{}
	}
	return *r.AsOf
}

// BulkDiscountDTO switches on the batch discount.
type BulkDiscountDTO struct {
	MinItems int             `json:"min_items" validate:"gte=1"`
	Percent  decimal.Decimal `json:"percent"   validate:"gt=0,lte=100"`
}

// BulkRequestDTO is the JSON body of a batch quote.
type BulkRequestDTO struct {
	Items            []PriceRequestDTO `json:"items"               validate:"required,min=1"`
	StopOnFirstError bool              `json:"stop_on_first_error"`
	Discount         *BulkDiscountDTO  `json:"discount"`
	AsOf             *time.Time        `json:"as_of"`
}

func (r BulkRequestDTO) options() quote.BulkOptions {
	opts := quote.BulkOptions{StopOnFirstError: r.StopOnFirstError}
	if r.Discount != nil {
		opts.Discount = &quote.BulkDiscount{MinItems: r.Discount.MinItems, Percent: r.Discount.Percent}
	}
	return opts
}

// ResolveZoneParams are the query parameters of the zone lookup. Coordinates
// win over a postal code, a postal code wins over a bare country.
type ResolveZoneParams struct {
	PostalCode string   `validate:"omitempty,max=16"`
	Country    string   `validate:"required_without_all=Lat Lng,omitempty,len=2,alpha"`
	Lat        *float64 `validate:"required_with=Lng,omitempty,gte=-90,lte=90"`
	Lng        *float64 `validate:"required_with=Lat,omitempty,gte=-180,lte=180"`
}

type AdjustmentDTO struct {
	RuleID      string `json:"rule_id"`
	Stage       string `json:"stage"`
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
}

// QuoteDTO is one carrier's price. Amounts are decimal strings.
type QuoteDTO struct {
	CarrierCode            string          `json:"carrier_code"`
	ZoneCode               string          `json:"zone_code"`
	ServiceType            string          `json:"service_type"`
	TableID                string          `json:"table_id"`
	TableVersion           int             `json:"table_version"`
	BillableWeightKg       string          `json:"billable_weight_kg"`
	BasePrice              string          `json:"base_price"`
	Surcharges             string          `json:"surcharges"`
	AdditionalServicesCost string          `json:"additional_services_cost"`
	SeasonalAdjustment     string          `json:"seasonal_adjustment"`
	Discounts              string          `json:"discounts"`
	NetPrice               string          `json:"net_price"`
	Tax                    string          `json:"tax"`
	TotalPrice             string          `json:"total_price"`
	Currency               string          `json:"currency"`
	DeliveryDays           int             `json:"delivery_days"`
	AsOf                   time.Time       `json:"as_of"`
	Adjustments            []AdjustmentDTO `json:"adjustments"`
	AppliedRules           []string        `json:"applied_rules"`
	Warnings               []string        `json:"warnings,omitempty"`
}

func toQuoteDTO(r quote.PriceCalculationResult) QuoteDTO {
	adjustments := make([]AdjustmentDTO, len(r.Adjustments))
	for i, a := range r.Adjustments {
		adjustments[i] = AdjustmentDTO{
			RuleID:      a.RuleID,
			Stage:       string(a.Stage),
			Amount:      a.Amount.String(),
			Description: a.Description,
		}
	}
	return QuoteDTO{
		CarrierCode:            r.CarrierCode,
		ZoneCode:               r.ZoneCode,
		ServiceType:            r.ServiceType,
		TableID:                r.TableID,
		TableVersion:           r.TableVersion,
		BillableWeightKg:       r.BillableWeightKg.String(),
		BasePrice:              r.BasePrice.String(),
		Surcharges:             r.Surcharges.String(),
		AdditionalServicesCost: r.AdditionalServicesCost.String(),
		SeasonalAdjustment:     r.SeasonalAdjustment.String(),
		Discounts:              r.Discounts.String(),
		NetPrice:               r.NetPrice.String(),
		Tax:                    r.Tax.String(),
		TotalPrice:             r.TotalPrice.String(),
		Currency:               r.Currency,
		DeliveryDays:           r.DeliveryDays,
		AsOf:                   r.AsOf,
		Adjustments:            adjustments,
		AppliedRules:           r.AppliedRules,
		Warnings:               r.Warnings,
	}
}

type CarrierFailureDTO struct {
	CarrierCode string `json:"carrier_code"`
	Error       string `json:"error"`
}

func toFailureDTOs(failures []quote.CarrierFailure) []CarrierFailureDTO {
	out := make([]CarrierFailureDTO, len(failures))
	for i, f := range failures {
		out[i] = CarrierFailureDTO{CarrierCode: f.CarrierCode, Error: f.Err.Error()}
	}
	return out
}

type ComparisonDTO struct {
	ZoneCode string              `json:"zone_code"`
	Results  []QuoteDTO          `json:"results"`
	Failures []CarrierFailureDTO `json:"failures,omitempty"`
}

func toComparisonDTO(c quote.ComparisonResult) ComparisonDTO {
	results := make([]QuoteDTO, len(c.Results))
	for i, r := range c.Results {
		results[i] = toQuoteDTO(r)
	}
	return ComparisonDTO{ZoneCode: c.ZoneCode, Results: results, Failures: toFailureDTOs(c.Failures)}
}

type BestPriceDTO struct {
	Best     QuoteDTO            `json:"best"`
	Failures []CarrierFailureDTO `json:"failures,omitempty"`
}

type BulkItemDTO struct {
	Index  int       `json:"index"`
	Status string    `json:"status"`
	Quote  *QuoteDTO `json:"quote,omitempty"`
	Error  string    `json:"error,omitempty"`
}

type CurrencyTotalDTO struct {
	Currency string `json:"currency"`
	Gross    string `json:"gross"`
	Discount string `json:"discount"`
	Net      string `json:"net"`
}

type BulkResultDTO struct {
	Items      []BulkItemDTO      `json:"items"`
	Successful int                `json:"successful"`
	Failed     int                `json:"failed"`
	Skipped    int                `json:"skipped"`
	Aborted    bool               `json:"aborted"`
	Totals     []CurrencyTotalDTO `json:"totals"`
	Warnings   []string           `json:"warnings,omitempty"`
	Error      string             `json:"error,omitempty"`
}

func toBulkResultDTO(b quote.BulkResult, err error) BulkResultDTO {
	items := make([]BulkItemDTO, len(b.Items))
	for i, item := range b.Items {
		items[i] = BulkItemDTO{Index: item.Index, Status: string(item.Status)}
		if item.Result != nil {
			q := toQuoteDTO(*item.Result)
			items[i].Quote = &q
		}
		if item.Err != nil {
			items[i].Error = item.Err.Error()
		}
	}
	totals := make([]CurrencyTotalDTO, len(b.Totals))
	for i, t := range b.Totals {
		totals[i] = CurrencyTotalDTO{
			Currency: t.Currency,
			Gross:    t.Gross.String(),
			Discount: t.Discount.String(),
			Net:      t.Net.String(),
		}
	}
	out := BulkResultDTO{
		Items:      items,
		Successful: b.Successful,
		Failed:     b.Failed,
		Skipped:    b.Skipped,
		Aborted:    b.Aborted,
		Totals:     totals,
		Warnings:   b.Warnings,
	}
	if err != nil {
		out.Error = err.Error()
	}
	return out
}

type ZoneDTO struct {
	Code      string   `json:"code"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Priority  int      `json:"priority"`
	Countries []string `json:"countries"`
	Fallback  bool     `json:"fallback"`
}

func toZoneDTO(z zone.Zone) ZoneDTO {
	return ZoneDTO{
		Code:      z.Code(),
		Name:      z.Name(),
		Type:      string(z.Type()),
		Priority:  z.Priority(),
		Countries: z.Countries(),
		Fallback:  z.IsFallback(),
	}
}

// ErrorDTO is the body of every non-2xx response.
type ErrorDTO struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
