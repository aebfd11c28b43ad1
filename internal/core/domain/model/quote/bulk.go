package quote

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// BulkItemStatus is the outcome of one item of a batch.
type BulkItemStatus string

const (
	BulkItemSucceeded BulkItemStatus = "succeeded"
	BulkItemFailed    BulkItemStatus = "failed"
	BulkItemSkipped   BulkItemStatus = "skipped"
)

// BulkDiscount takes Percent off the batch total once at least MinItems items succeed.
type BulkDiscount struct {
	MinItems int
	Percent  decimal.Decimal
}

// BulkOptions control a batch run.
type BulkOptions struct {
	StopOnFirstError bool
	Discount         *BulkDiscount
}

type BulkItemResult struct {
	Index  int
	Status BulkItemStatus
	Result *PriceCalculationResult
	Err    error
}

// CurrencyTotal sums the successful items of one currency.
type CurrencyTotal struct {
	Currency string
	Gross    decimal.Decimal
	Discount decimal.Decimal
	Net      decimal.Decimal
}

// BulkResult reports every item of a batch, in request order.
type BulkResult struct {
	Items      []BulkItemResult
	Successful int
	Failed     int
	Skipped    int
	Aborted    bool
	Totals     []CurrencyTotal
	Warnings   []string
}

// Errors returns the failed items' errors keyed by index.
func (b BulkResult) Errors() map[int]error {
	out := make(map[int]error)
	for _, item := range b.Items {
		if item.Status == BulkItemFailed {
			out[item.Index] = item.Err
		}
	}
	return out
}

// Count recomputes the per-status counters from Items.
func (b *BulkResult) Count() {
	b.Successful, b.Failed, b.Skipped = 0, 0, 0
	for _, item := range b.Items {
		switch item.Status {
		case BulkItemSucceeded:
			b.Successful++
		case BulkItemFailed:
			b.Failed++
		case BulkItemSkipped:
			b.Skipped++
		}
	}
}

// GrossTotals sums successful totals per currency, ordered by currency code.
func (b BulkResult) GrossTotals() []CurrencyTotal {
	byCurrency := make(map[string]decimal.Decimal)
	for _, item := range b.Items {
		if item.Status != BulkItemSucceeded || item.Result == nil {
			continue
		}
		byCurrency[item.Result.Currency] = byCurrency[item.Result.Currency].Add(item.Result.TotalPrice)
	}
	totals := make([]CurrencyTotal, 0, len(byCurrency))
	for code, gross := range byCurrency {
		totals = append(totals, CurrencyTotal{Currency: code, Gross: gross, Net: gross})
	}
	slices.SortFunc(totals, func(a, b CurrencyTotal) int { return strings.Compare(a.Currency, b.Currency) })
	return totals
}
