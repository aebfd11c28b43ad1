package quote_test

import (
	"errors"
	"testing"

	"shipcalc/internal/core/domain/model/quote"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(carrier, total string, days int) quote.PriceCalculationResult {
	return quote.PriceCalculationResult{
		CarrierCode:  carrier,
		TotalPrice:   decimal.RequireFromString(total),
		Currency:     "PLN",
		DeliveryDays: days,
	}
}

func TestSortByRank(t *testing.T) {
	results := []quote.PriceCalculationResult{
		result("INPOST", "12.00", 1),
		result("DPD", "10.00", 2),
		result("DHL", "10.00", 2),
		result("UPS", "10.00", 1),
	}
	quote.SortByRank(results)

	codes := make([]string, 0, len(results))
	for _, r := range results {
		codes = append(codes, r.CarrierCode)
	}
	assert.Equal(t, []string{"UPS", "DHL", "DPD", "INPOST"}, codes)
}

func TestComparisonResult_Cheapest(t *testing.T) {
	_, ok := quote.ComparisonResult{}.Cheapest()
	assert.False(t, ok)

	best, ok := quote.ComparisonResult{Results: []quote.PriceCalculationResult{
		result("DPD", "10.00", 2),
		result("DHL", "10.0", 2),
	}}.Cheapest()
	require.True(t, ok)
	assert.Equal(t, "DHL", best.CarrierCode)
}

func TestBulkResult_Aggregates(t *testing.T) {
	first := result("INPOST", "10.46", 1)
	second := result("DPD", "12.30", 1)
	eur := result("DHL", "50.00", 3)
	eur.Currency = "EUR"
	failure := errors.New("boom")

	b := quote.BulkResult{Items: []quote.BulkItemResult{
		{Index: 0, Status: quote.BulkItemSucceeded, Result: &first},
		{Index: 1, Status: quote.BulkItemFailed, Err: failure},
		{Index: 2, Status: quote.BulkItemSucceeded, Result: &second},
		{Index: 3, Status: quote.BulkItemSkipped},
		{Index: 4, Status: quote.BulkItemSucceeded, Result: &eur},
	}}
	b.Count()

	assert.Equal(t, 3, b.Successful)
	assert.Equal(t, 1, b.Failed)
	assert.Equal(t, 1, b.Skipped)
	assert.Equal(t, map[int]error{1: failure}, b.Errors())

	totals := b.GrossTotals()
	require.Len(t, totals, 2)
	assert.Equal(t, "EUR", totals[0].Currency)
	assert.Equal(t, "PLN", totals[1].Currency)
	assert.True(t, decimal.RequireFromString("22.76").Equal(totals[1].Gross))
}
