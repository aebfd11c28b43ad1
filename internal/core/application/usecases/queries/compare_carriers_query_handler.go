package queries

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"shipcalc/internal/core/domain/model/quote"
	"shipcalc/internal/core/ports"
	"shipcalc/internal/pkg/workpool"

	"golang.org/x/sync/errgroup"
)

const OperationCompareCarriers = "compare_carriers"

// CompareCarriersQueryHandler fans a request out to every carrier serving the
// destination zone. Carriers run in parallel through the work pool; a carrier
// that fails is recorded in Failures and does not abort the others.
//
// Failures:
//   - ErrNoCarriersAvailable when no carrier serves the zone
//   - AllCarrierCalculationsFailedError when every carrier failed
type CompareCarriersQueryHandler struct {
	catalog    ports.CatalogProvider
	pool       *workpool.Pool
	metrics    ports.CalculationMetrics
	calculator priceCalculator
	logger     *slog.Logger
	now        func() time.Time
}

func NewCompareCarriersQueryHandler(
	catalog ports.CatalogProvider,
	pool *workpool.Pool,
	metrics ports.CalculationMetrics,
	logger *slog.Logger,
) *CompareCarriersQueryHandler {
	return &CompareCarriersQueryHandler{
		catalog:    catalog,
		pool:       pool,
		metrics:    metrics,
		calculator: newPriceCalculator(logger),
		logger:     logger.With("component", "comparison"),
		now:        time.Now,
	}
}

func (h *CompareCarriersQueryHandler) Handle(ctx context.Context, query CompareCarriersQuery) (quote.ComparisonResult, error) {
	if err := query.Validate(); err != nil {
		return quote.ComparisonResult{}, err
	}

	start := time.Now()
	result, err := h.compare(ctx, query.Request(), asOfOrNow(query.AsOf(), h.now))

	outcome := outcomeOf(err)
	if err == nil && len(result.Failures) > 0 {
		outcome = ports.OutcomePartial
	}
	observe(h.metrics, OperationCompareCarriers, outcome, start)
	return result, err
}

func (h *CompareCarriersQueryHandler) compare(
	ctx context.Context,
	request quote.PriceRequest,
	asOf time.Time,
) (quote.ComparisonResult, error) {
	reader, err := h.catalog.Current()
	if err != nil {
		return quote.ComparisonResult{}, err
	}

	z, err := h.calculator.resolveZone(reader, request)
	if err != nil {
		return quote.ComparisonResult{}, err
	}

	carriers := reader.CarriersSupportingZone(z.Code())
	if len(carriers) == 0 {
		return quote.ComparisonResult{}, fmt.Errorf("%w: %s", ErrNoCarriersAvailable, z.Code())
	}

	request.ZoneCode = z.Code()
	result := quote.ComparisonResult{ZoneCode: z.Code()}
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(h.pool.Limit())
	for _, c := range carriers {
		in := calculation{
			reader:      reader,
			request:     request.ForCarrier(c.Code()),
			asOf:        asOf,
			parcelCount: 1,
		}
		g.Go(func() error {
			priced, calcErr := workpool.Do(ctx, h.pool, OperationCompareCarriers,
				func(ctx context.Context) (quote.PriceCalculationResult, error) {
					return h.calculator.calculate(ctx, in)
				})

			mu.Lock()
			defer mu.Unlock()
			if calcErr != nil {
				h.logger.Debug("carrier failed in comparison", "carrier", c.Code(), "zone", z.Code(), "error", calcErr)
				result.Failures = append(result.Failures, quote.CarrierFailure{CarrierCode: c.Code(), Err: calcErr})
				return nil
			}
			result.Results = append(result.Results, priced)
			return nil
		})
	}
	_ = g.Wait()

	if err = ctx.Err(); err != nil {
		return quote.ComparisonResult{}, err
	}

	slices.SortFunc(result.Results, func(a, b quote.PriceCalculationResult) int {
		return strings.Compare(a.CarrierCode, b.CarrierCode)
	})
	slices.SortFunc(result.Failures, func(a, b quote.CarrierFailure) int {
		return cmp.Compare(a.CarrierCode, b.CarrierCode)
	})

	if len(result.Results) == 0 {
		return result, &AllCarrierCalculationsFailedError{ZoneCode: z.Code(), Failures: result.Failures}
	}
	return result, nil
}
