// Package catalogtest provides a small, valid catalog for tests.
//
// Zones: LOCAL (PL, Warsaw postal codes), NATIONAL (PL), EU (DE, CZ, FR) and
// the WORLD fallback. Carriers: INPOST (LOCAL, NATIONAL), DPD (LOCAL,
// NATIONAL, EU) and DHL (NATIONAL, EU, WORLD). All tables are in PLN with 23% tax.
package catalogtest

import (
	"testing"
	"time"

	"shipcalc/internal/core/domain/model/carrier"
	"shipcalc/internal/core/domain/model/catalog"
	"shipcalc/internal/core/domain/model/kernel"
	"shipcalc/internal/core/domain/model/pricing"
	"shipcalc/internal/core/domain/model/zone"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// AsOf is a point in time outside every seasonal window of the fixture.
var AsOf = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

// PeakSeason lies inside DHL's December surcharge window.
var PeakSeason = time.Date(2026, 12, 10, 12, 0, 0, 0, time.UTC)

func D(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func upTo(s string) *decimal.Decimal {
	v := D(s)
	return &v
}

// Dims builds dimensions or fails the test.
func Dims(t testing.TB, l, w, h string) kernel.Dimensions {
	t.Helper()
	dims, err := kernel.NewDimensions(D(l), D(w), D(h))
	require.NoError(t, err)
	return dims
}

// Snapshot builds the fixture snapshot.
func Snapshot(t testing.TB) *catalog.Snapshot {
	t.Helper()
	s, err := catalog.NewSnapshot(Data(t), AsOf)
	require.NoError(t, err)
	return s
}

// Data returns the raw fixture, for tests that want to alter it first.
func Data(t testing.TB) catalog.Data {
	t.Helper()

	zones := []zone.Zone{
		newZone(t, "LOCAL", "Warsaw", zone.Local, 1, []string{"PL"}, []string{`^0[0-4]-\d{3}$`}, warsawBox(t)),
		newZone(t, "NATIONAL", "Poland", zone.National, 2, []string{"PL"}, nil, nil),
		newZone(t, "EU", "European Union", zone.International, 3, []string{"DE", "CZ", "FR"}, nil, nil),
		newZone(t, "WORLD", "Rest of world", zone.International, 9, nil, nil, nil),
	}

	carriers := []carrier.Carrier{
		newCarrier(t, "INPOST", "InPost", []string{"LOCAL", "NATIONAL"}, "25", Dims(t, "64", "38", "41")),
		newCarrier(t, "DPD", "DPD Polska", []string{"LOCAL", "NATIONAL", "EU"}, "31.5", Dims(t, "150", "100", "100")),
		newCarrier(t, "DHL", "DHL Parcel", []string{"NATIONAL", "EU", "WORLD"}, "70", Dims(t, "200", "120", "120")),
	}

	dpdLocal := table(t, "DPD", "LOCAL", "standard", 1, 1, []pricing.Rule{
		pricing.WeightBandRule{ID: "dpd-l-0", SortOrder: 1, Range: pricing.NewRange(D("0"), upTo("1")), Price: D("9.00")},
		pricing.WeightBandRule{ID: "dpd-l-1", SortOrder: 2, Range: pricing.NewRange(D("1"), upTo("10")), Price: D("12.00")},
		pricing.WeightBandRule{ID: "dpd-l-10", SortOrder: 3, Range: pricing.NewRange(D("10"), nil), Price: D("20.00"), PricePerKg: D("1.50")},
		pricing.DimensionalRule{ID: "dpd-l-long", SortOrder: 10, Limit: Dims(t, "100", "0", "0"), Surcharge: D("15.00")},
		pricing.TieredRule{ID: "dpd-l-value", SortOrder: 20, Driver: pricing.DriverDeclaredValue, Range: pricing.NewRange(D("1000"), nil), Price: D("5.00")},
	})

	tables := []pricing.Table{
		table(t, "INPOST", "LOCAL", "standard", 1, 1, []pricing.Rule{
			pricing.WeightBandRule{ID: "inpost-l-v1", SortOrder: 1, Range: pricing.NewRange(D("0"), nil), Price: D("10.00")},
		}),
		table(t, "INPOST", "LOCAL", "standard", 2, 1, []pricing.Rule{
			pricing.WeightBandRule{ID: "inpost-l-0", SortOrder: 1, Range: pricing.NewRange(D("0"), upTo("0.1")), Price: D("8.50")},
			pricing.WeightBandRule{ID: "inpost-l-01", SortOrder: 2, Range: pricing.NewRange(D("0.1"), upTo("1")), Price: D("8.50")},
			pricing.WeightBandRule{ID: "inpost-l-1", SortOrder: 3, Range: pricing.NewRange(D("1"), upTo("10")), Price: D("12.00")},
			pricing.WeightBandRule{ID: "inpost-l-10", SortOrder: 4, Range: pricing.NewRange(D("10"), nil), Price: D("20.00"), PricePerKg: D("3.00")},
			pricing.VolumeDiscountRule{ID: "inpost-l-vol10", SortOrder: 30, MinParcels: 10, Percent: D("5")},
			pricing.VolumeDiscountRule{ID: "inpost-l-vol50", SortOrder: 31, MinParcels: 50, Percent: D("8")},
		}),
		table(t, "INPOST", "NATIONAL", "standard", 1, 2, []pricing.Rule{
			pricing.WeightBandRule{ID: "inpost-n-0", SortOrder: 1, Range: pricing.NewRange(D("0"), upTo("1")), Price: D("11.00")},
			pricing.WeightBandRule{ID: "inpost-n-1", SortOrder: 2, Range: pricing.NewRange(D("1"), upTo("10")), Price: D("14.00")},
			pricing.WeightBandRule{ID: "inpost-n-10", SortOrder: 3, Range: pricing.NewRange(D("10"), nil), Price: D("24.00"), PricePerKg: D("2.50")},
		}),
		dpdLocal,
		table(t, "DPD", "NATIONAL", "standard", 1, 2, []pricing.Rule{
			pricing.WeightBandRule{ID: "dpd-n-0", SortOrder: 1, Range: pricing.NewRange(D("0"), upTo("1")), Price: D("11.00")},
			pricing.WeightBandRule{ID: "dpd-n-1", SortOrder: 2, Range: pricing.NewRange(D("1"), nil), Price: D("13.00"), PricePerKg: D("1.00")},
		}),
		table(t, "DPD", "EU", "standard", 1, 4, []pricing.Rule{
			pricing.WeightBandRule{ID: "dpd-eu-0", SortOrder: 1, Range: pricing.NewRange(D("0"), nil), Price: D("45.00"), PricePerKg: D("4.00")},
		}),
		table(t, "DHL", "NATIONAL", "standard", 1, 2, []pricing.Rule{
			pricing.WeightBandRule{ID: "dhl-n-0", SortOrder: 1, Range: pricing.NewRange(D("0"), upTo("1")), Price: D("11.00")},
			pricing.WeightBandRule{ID: "dhl-n-1", SortOrder: 2, Range: pricing.NewRange(D("1"), nil), Price: D("15.00"), PricePerKg: D("1.20")},
			pricing.SeasonalRule{
				ID: "dhl-n-peak", SortOrder: 40,
				Window:     pricing.Window{From: time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), To: time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC)},
				Multiplier: decimal.NewNullDecimal(D("1.2")),
			},
			pricing.ProgressiveDiscountRule{ID: "dhl-n-loyalty", SortOrder: 50, Driver: pricing.DriverShipmentCount, Steps: []pricing.Step{
				{Threshold: D("100"), Percent: D("5")},
				{Threshold: D("500"), Percent: D("10")},
			}},
		}),
		table(t, "DHL", "EU", "standard", 1, 3, []pricing.Rule{
			pricing.WeightBandRule{ID: "dhl-eu-0", SortOrder: 1, Range: pricing.NewRange(D("0"), nil), Price: D("42.00"), PricePerKg: D("5.00")},
		}),
		table(t, "DHL", "WORLD", "standard", 1, 7, []pricing.Rule{
			pricing.WeightBandRule{ID: "dhl-w-0", SortOrder: 1, Range: pricing.NewRange(D("0"), nil), Price: D("120.00"), PricePerKg: D("15.00")},
		}),
	}

	return catalog.Data{
		Zones:    zones,
		Carriers: carriers,
		Tables:   tables,
		AdditionalServices: []pricing.AdditionalService{
			{CarrierCode: "INPOST", Code: "SMS", Name: "SMS notification", PricingType: pricing.PricingTypeFixed, Price: D("0.50")},
			{CarrierCode: "INPOST", Code: "COD", Name: "Cash on delivery", PricingType: pricing.PricingTypeFixed, Price: D("3.00")},
			{CarrierCode: "DPD", Code: "COD", Name: "Cash on delivery", PricingType: pricing.PricingTypeFixed, Price: D("4.00")},
			{
				CarrierCode: "DPD", Code: "INSURANCE", Name: "Insurance", PricingType: pricing.PricingTypePercentage,
				Price: D("1"), Basis: pricing.BasisDeclaredValue,
				MinPrice: decimal.NewNullDecimal(D("2.00")), MaxPrice: decimal.NewNullDecimal(D("50.00")),
			},
		},
		ServicePrices: []pricing.AdditionalServicePrice{
			{TableID: dpdLocal.ID().String(), ServiceCode: "COD", Price: D("3.50")},
		},
		Promotions: []pricing.Promotion{
			{Code: "WELCOME10", Kind: pricing.PromotionPercentage, Value: D("10"), Stackable: true, Priority: 1},
			{Code: "EXTRA2", Kind: pricing.PromotionFixedAmount, Value: D("2.00"), Stackable: true, Priority: 2},
			{Code: "HALF", Kind: pricing.PromotionPercentage, Value: D("50"), Priority: 1, MinOrderValue: D("100")},
			{Code: "FLAT5", Kind: pricing.PromotionFixedAmount, Value: D("5.00"), Priority: 3},
			{
				Code: "SPRING", Kind: pricing.PromotionPercentage, Value: D("20"), Stackable: true, Priority: 1,
				ValidFrom: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), ValidTo: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			},
		},
	}
}

func warsawBox(t testing.TB) *kernel.BoundingBox {
	t.Helper()
	sw, err := kernel.NewGeoPoint(52.09, 20.85)
	require.NoError(t, err)
	ne, err := kernel.NewGeoPoint(52.37, 21.27)
	require.NoError(t, err)
	box, err := kernel.NewBoundingBox(sw, ne)
	require.NoError(t, err)
	return &box
}

func newZone(
	t testing.TB,
	code, name string,
	typ zone.Type,
	priority int,
	countries, patterns []string,
	bounds *kernel.BoundingBox,
) zone.Zone {
	t.Helper()
	z, err := zone.NewZone(code, name, typ, priority, countries, patterns, bounds)
	require.NoError(t, err)
	return z
}

func newCarrier(t testing.TB, code, name string, zones []string, maxKg string, maxDims kernel.Dimensions) carrier.Carrier {
	t.Helper()
	c, err := carrier.NewCarrier(code, name, zones, D(maxKg), maxDims, "standard")
	require.NoError(t, err)
	return c
}

func table(t testing.TB, carrierCode, zoneCode, service string, version, days int, rules []pricing.Rule) pricing.Table {
	t.Helper()
	pln, err := kernel.ParseCurrency("PLN")
	require.NoError(t, err)
	tbl, err := pricing.NewTable(pricing.TableParams{
		ID:            kernel.NewUUID(),
		CarrierCode:   carrierCode,
		ZoneCode:      zoneCode,
		ServiceType:   service,
		Version:       version,
		Active:        true,
		Currency:      pln,
		TaxRate:       D("0.23"),
		MaxDimensions: kernel.NoDimensions(),
		DeliveryDays:  days,
		Rules:         rules,
	})
	require.NoError(t, err)
	return tbl
}
