package quote

import (
	"errors"
	"slices"
	"strings"

	"shipcalc/internal/core/domain/model/kernel"
	"shipcalc/internal/core/domain/model/zone"
	"shipcalc/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// PriceRequest describes one parcel to be priced. The destination is either
// an explicit ZoneCode or a CountryCode with an optional PostalCode.
type PriceRequest struct {
	CarrierCode        string
	ZoneCode           string
	PostalCode         string
	CountryCode        string
	ServiceType        string
	WeightKg           decimal.Decimal
	Dimensions         kernel.Dimensions
	DeclaredValue      decimal.Decimal
	Currency           string
	CustomerID         string
	AdditionalServices []string
	PromotionCodes     []string
	ShipmentCount      int
}

// Validate checks the request shape; it does not consult the catalog.
func (r PriceRequest) Validate() error {
	var reqErrs []error

	if !r.WeightKg.IsPositive() {
		reqErrs = append(reqErrs, errs.NewValueIsOutOfRangeError("weight_kg", r.WeightKg, "0 (exclusive)", "unbounded"))
	}
	if err := r.Dimensions.Validate(); err != nil {
		reqErrs = append(reqErrs, errs.NewValueIsRequiredErrorWithCause("dimensions_cm", err))
	}
	if r.DeclaredValue.IsNegative() {
		reqErrs = append(reqErrs, errs.NewValueIsOutOfRangeError("declared_value", r.DeclaredValue, 0, "unbounded"))
	}
	if r.ShipmentCount < 0 {
		reqErrs = append(reqErrs, errs.NewValueIsOutOfRangeError("shipment_count", r.ShipmentCount, 0, "unbounded"))
	}

	switch {
	case strings.TrimSpace(r.ZoneCode) != "":
	case strings.TrimSpace(r.CountryCode) != "":
		if _, err := zone.ParseCountry(r.CountryCode); err != nil {
			reqErrs = append(reqErrs, err)
		}
	default:
		reqErrs = append(reqErrs, errs.NewValueIsRequiredErrorWithCause("destination",
			errors.New("either zone_code or country is required")))
	}

	if strings.TrimSpace(r.Currency) != "" {
		if _, err := kernel.ParseCurrency(r.Currency); err != nil {
			reqErrs = append(reqErrs, err)
		}
	}
	for _, code := range r.AdditionalServices {
		if strings.TrimSpace(code) == "" {
			reqErrs = append(reqErrs, errs.NewValueIsRequiredError("additional_services[]"))
		}
	}

	return errors.Join(reqErrs...)
}

// ForCarrier returns a copy of the request addressed to another carrier.
func (r PriceRequest) ForCarrier(code string) PriceRequest {
	out := r
	out.CarrierCode = code
	out.AdditionalServices = slices.Clone(r.AdditionalServices)
	out.PromotionCodes = slices.Clone(r.PromotionCodes)
	return out
}

// NormalizedServices returns the requested service codes upper-cased, without duplicates, in request order.
func (r PriceRequest) NormalizedServices() []string {
	return normalizeCodes(r.AdditionalServices)
}

// NormalizedPromotionCodes returns the promotion codes upper-cased, without duplicates, in request order.
func (r PriceRequest) NormalizedPromotionCodes() []string {
	return normalizeCodes(r.PromotionCodes)
}

func normalizeCodes(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c != "" && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}
