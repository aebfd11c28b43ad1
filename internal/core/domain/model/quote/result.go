package quote

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PriceCalculationResult is the quote for one carrier.
type PriceCalculationResult struct {
	CarrierCode            string
	ZoneCode               string
	ServiceType            string
	TableID                string
	TableVersion           int
	BillableWeightKg       decimal.Decimal
	BasePrice              decimal.Decimal
	Surcharges             decimal.Decimal
	AdditionalServicesCost decimal.Decimal
	SeasonalAdjustment     decimal.Decimal
	Discounts              decimal.Decimal
	NetPrice               decimal.Decimal
	Tax                    decimal.Decimal
	TotalPrice             decimal.Decimal
	Currency               string
	DeliveryDays           int
	AsOf                   time.Time
	Adjustments            []Adjustment
	AppliedRules           []string
	Warnings               []string
}

// CarrierFailure records why one carrier could not be priced.
type CarrierFailure struct {
	CarrierCode string
	Err         error
}

// ComparisonResult holds one entry per eligible carrier, either a result or a failure.
type ComparisonResult struct {
	ZoneCode string
	Results  []PriceCalculationResult
	Failures []CarrierFailure
}

// Cheapest returns the best-ranked result.
func (c ComparisonResult) Cheapest() (PriceCalculationResult, bool) {
	if len(c.Results) == 0 {
		return PriceCalculationResult{}, false
	}
	return slices.MinFunc(c.Results, CompareRank), true
}

// CompareRank orders results by total price, then delivery days, then carrier code.
func CompareRank(a, b PriceCalculationResult) int {
	return cmp.Or(
		a.TotalPrice.Cmp(b.TotalPrice),
		cmp.Compare(a.DeliveryDays, b.DeliveryDays),
		strings.Compare(a.CarrierCode, b.CarrierCode),
	)
}

// SortByRank sorts results in place, best first.
func SortByRank(results []PriceCalculationResult) {
	slices.SortFunc(results, CompareRank)
}
