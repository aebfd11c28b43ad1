package queries

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"shipcalc/internal/core/domain/model/kernel"
	"shipcalc/internal/core/domain/model/pricing"
	"shipcalc/internal/core/domain/model/quote"
	"shipcalc/internal/core/ports"
	"shipcalc/internal/pkg/errs"
	"shipcalc/internal/pkg/workpool"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const OperationCalculateBulk = "calculate_bulk"

var hundred = decimal.NewFromInt(100)

// CalculateBulkQueryHandler prices every item of a batch in parallel. The
// number of items in flight never exceeds the work pool limit, and every
// item takes its own pool slot.
//
// The whole batch runs against one catalog snapshot. Volume rules see the
// batch size as the parcel count.
//
// With StopOnFirstError no new item starts after the first failure; items
// that never started are reported as skipped and a BulkAbortedError is
// returned along with the partial result. Without it, failures are collected
// per item and the handler returns an error only when every item failed.
type CalculateBulkQueryHandler struct {
	catalog    ports.CatalogProvider
	pool       *workpool.Pool
	metrics    ports.CalculationMetrics
	calculator priceCalculator
	maxItems   int
	logger     *slog.Logger
	now        func() time.Time
}

// NewCalculateBulkQueryHandler returns a handler accepting at most maxItems
// items per batch; a non-positive maxItems means no limit.
func NewCalculateBulkQueryHandler(
	catalog ports.CatalogProvider,
	pool *workpool.Pool,
	metrics ports.CalculationMetrics,
	maxItems int,
	logger *slog.Logger,
) *CalculateBulkQueryHandler {
	return &CalculateBulkQueryHandler{
		catalog:    catalog,
		pool:       pool,
		metrics:    metrics,
		calculator: newPriceCalculator(logger),
		maxItems:   maxItems,
		logger:     logger.With("component", "bulk_calculator"),
		now:        time.Now,
	}
}

func (h *CalculateBulkQueryHandler) Handle(ctx context.Context, query CalculateBulkQuery) (quote.BulkResult, error) {
	if err := query.Validate(); err != nil {
		return quote.BulkResult{}, err
	}
	if h.maxItems > 0 && query.Len() > h.maxItems {
		return quote.BulkResult{}, errs.NewValueIsOutOfRangeError("items", query.Len(), 1, h.maxItems)
	}

	start := time.Now()
	result, err := h.handle(ctx, query)

	outcome := outcomeOf(err)
	if err == nil && result.Failed > 0 {
		outcome = ports.OutcomePartial
	}
	observe(h.metrics, OperationCalculateBulk, outcome, start)
	return result, err
}

func (h *CalculateBulkQueryHandler) handle(ctx context.Context, query CalculateBulkQuery) (quote.BulkResult, error) {
	reader, err := h.catalog.Current()
	if err != nil {
		return quote.BulkResult{}, err
	}

	var (
		requests = query.Requests()
		options  = query.Options()
		asOf     = asOfOrNow(query.AsOf(), h.now)
		items    = make([]quote.BulkItemResult, len(requests))

		stopped   atomic.Bool
		abortOnce sync.Once
		abortErr  *BulkAbortedError
	)
	for i := range items {
		items[i] = quote.BulkItemResult{Index: i, Status: quote.BulkItemSkipped}
	}

	g := new(errgroup.Group)
	g.SetLimit(h.pool.Limit())
	for i, request := range requests {
		if options.StopOnFirstError && stopped.Load() {
			break
		}
		in := calculation{
			reader:      reader,
			request:     request,
			asOf:        asOf,
			parcelCount: len(requests),
		}
		g.Go(func() error {
			if options.StopOnFirstError && stopped.Load() {
				return nil
			}

			priced, calcErr := workpool.Do(ctx, h.pool, OperationCalculateBulk,
				func(ctx context.Context) (quote.PriceCalculationResult, error) {
					return h.calculator.calculate(ctx, in)
				})
			if calcErr != nil {
				h.logger.Debug("bulk item failed", "index", i, "carrier", request.CarrierCode, "error", calcErr)
				items[i] = quote.BulkItemResult{Index: i, Status: quote.BulkItemFailed, Err: calcErr}
				if options.StopOnFirstError {
					stopped.Store(true)
					abortOnce.Do(func() { abortErr = &BulkAbortedError{Index: i, Cause: calcErr} })
				}
				return nil
			}
			items[i] = quote.BulkItemResult{Index: i, Status: quote.BulkItemSucceeded, Result: &priced}
			return nil
		})
	}
	_ = g.Wait()

	result := quote.BulkResult{Items: items}
	result.Count()
	result.Totals = result.GrossTotals()
	h.applyDiscount(&result, options.Discount)

	if err = ctx.Err(); err != nil {
		return result, err
	}
	if abortErr != nil {
		result.Aborted = true
		h.logger.Info("bulk calculation aborted",
			"items", len(items), "failed_index", abortErr.Index, "skipped", result.Skipped)
		return result, abortErr
	}
	if result.Successful == 0 {
		return result, &BulkCalculationFailedError{Failures: result.Errors()}
	}
	return result, nil
}

// applyDiscount takes the bulk discount off the totals of the successful items
// once the batch size reaches the threshold; failed items count towards the
// size. Item prices are left as quoted.
func (h *CalculateBulkQueryHandler) applyDiscount(result *quote.BulkResult, discount *quote.BulkDiscount) {
	if discount == nil || result.Successful == 0 || len(result.Items) < discount.MinItems || !discount.Percent.IsPositive() {
		return
	}

	for i, total := range result.Totals {
		cur, err := kernel.ParseCurrency(total.Currency)
		if err != nil {
			h.logger.Warn("bulk discount skipped", "currency", total.Currency, "error", err)
			continue
		}
		off := cur.Round(pricing.Percentage(total.Gross, discount.Percent))
		result.Totals[i].Discount = off
		result.Totals[i].Net = total.Gross.Sub(off)
	}
	result.Warnings = append(result.Warnings,
		fmt.Sprintf("bulk discount %s%% applied to %d priced items of a batch of %d",
			discount.Percent, result.Successful, len(result.Items)))
}
