package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"shipcalc/internal/core/domain/model/catalog"
	"shipcalc/internal/core/ports"
)

// RefreshCatalogCommandHandler loads the raw catalog in one read-only
// transaction, builds a validated snapshot and hands it to the sink.
//
// A catalog that fails validation is rejected as a whole and the previous
// snapshot stays in force, so a bad edit never reaches live pricing.
type RefreshCatalogCommandHandler struct {
	uowFactory ports.CatalogUnitOfWorkFactory
	sink       CatalogSink
	metrics    ports.CalculationMetrics
	logger     *slog.Logger
	now        func() time.Time
}

func NewRefreshCatalogCommandHandler(
	uowFactory ports.CatalogUnitOfWorkFactory,
	sink CatalogSink,
	metrics ports.CalculationMetrics,
	logger *slog.Logger,
) *RefreshCatalogCommandHandler {
	return &RefreshCatalogCommandHandler{
		uowFactory: uowFactory,
		sink:       sink,
		metrics:    metrics,
		logger:     logger.With("component", "catalog_refresh"),
		now:        time.Now,
	}
}

// Handle returns the summary of the snapshot now in force.
func (h *RefreshCatalogCommandHandler) Handle(ctx context.Context, cmd RefreshCatalogCommand) (catalog.Summary, error) {
	if err := cmd.Validate(); err != nil {
		return catalog.Summary{}, err
	}

	start := time.Now()
	snapshot, err := h.load(ctx)
	if err != nil {
		h.logger.Error("catalog refresh failed, keeping previous catalog",
			"trigger", cmd.Trigger(), "error", err)
		h.observe(ports.OutcomeFailure, catalog.Summary{})
		return catalog.Summary{}, err
	}

	h.sink.Replace(snapshot)

	summary := snapshot.Summary()
	h.logger.Info("catalog refreshed",
		"trigger", cmd.Trigger(),
		"zones", summary.Zones,
		"carriers", summary.Carriers,
		"tables", summary.Tables,
		"active_tables", summary.ActiveTables,
		"promotions", summary.Promotions,
		"took", time.Since(start))
	h.observe(ports.OutcomeSuccess, summary)
	return summary, nil
}

func (h *RefreshCatalogCommandHandler) load(ctx context.Context) (*catalog.Snapshot, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("begin catalog load: %w", err)
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	data, err := uow.CatalogRepository().Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit catalog load: %w", err)
	}

	return catalog.NewSnapshot(data, h.now().UTC())
}

func (h *RefreshCatalogCommandHandler) observe(outcome string, summary catalog.Summary) {
	if h.metrics == nil {
		return
	}
	h.metrics.ObserveCatalogRefresh(outcome, summary)
}
