package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	httpin "shipcalc/internal/adapters/in/http"
	"shipcalc/internal/adapters/out/memory"
	"shipcalc/internal/adapters/out/metrics"
	"shipcalc/internal/adapters/out/postgres"
	"shipcalc/internal/adapters/out/postgres/catalogrepo"
	"shipcalc/internal/core/application/usecases/commands"
	"shipcalc/internal/core/application/usecases/queries"
	"shipcalc/internal/core/domain/model/catalog"
	"shipcalc/internal/jobs"
	"shipcalc/internal/pkg/workpool"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// CompositionRoot owns the process-wide singletons: the catalog snapshot,
// the calculation pool and the metrics registry. Handlers created from it
// share them.
type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	logger     *slog.Logger
	uowFactory *postgres.GormUnitOfWorkFactory
	store      *memory.CatalogStore
	pool       *workpool.Pool
	registry   *prometheus.Registry
	metrics    *metrics.Recorder
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	pool, err := workpool.New(config.MaxConcurrentCalculations, config.ConcurrencyWait, config.CalculationTimeout)
	if err != nil {
		return nil, fmt.Errorf("create calculation pool: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &CompositionRoot{
		config:     config,
		gormDB:     gormDB,
		logger:     logger,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		store:      memory.NewCatalogStore(),
		pool:       pool,
		registry:   registry,
		metrics:    metrics.NewRecorder(registry),
	}, nil
}

// Migrate creates or updates the catalog tables.
func (c *CompositionRoot) Migrate(ctx context.Context) error {
	return c.gormDB.WithContext(ctx).AutoMigrate(catalogrepo.Models()...)
}

// LoadCatalog performs the startup refresh. The service still starts when it
// fails; quotes answer 503 until a scheduled refresh succeeds.
func (c *CompositionRoot) LoadCatalog(ctx context.Context) (catalog.Summary, error) {
	cmd, err := commands.NewRefreshCatalogCommand(commands.TriggerStartup)
	if err != nil {
		return catalog.Summary{}, err
	}
	return c.CreateRefreshCatalogCommandHandler().Handle(ctx, cmd)
}

func (c *CompositionRoot) CreateRefreshCatalogCommandHandler() *commands.RefreshCatalogCommandHandler {
	return commands.NewRefreshCatalogCommandHandler(c.uowFactory, c.store, c.metrics, c.logger)
}

func (c *CompositionRoot) CreateCalculatePriceQueryHandler() *queries.CalculatePriceQueryHandler {
	return queries.NewCalculatePriceQueryHandler(c.store, c.pool, c.metrics, c.logger)
}

func (c *CompositionRoot) CreateCompareCarriersQueryHandler() *queries.CompareCarriersQueryHandler {
	return queries.NewCompareCarriersQueryHandler(c.store, c.pool, c.metrics, c.logger)
}

func (c *CompositionRoot) CreateGetBestPriceQueryHandler() *queries.GetBestPriceQueryHandler {
	return queries.NewGetBestPriceQueryHandler(c.CreateCompareCarriersQueryHandler())
}

func (c *CompositionRoot) CreateCalculateBulkQueryHandler() *queries.CalculateBulkQueryHandler {
	return queries.NewCalculateBulkQueryHandler(c.store, c.pool, c.metrics, c.config.MaxBulkItems, c.logger)
}

func (c *CompositionRoot) CreateResolveZoneQueryHandler() *queries.ResolveZoneQueryHandler {
	return queries.NewResolveZoneQueryHandler(c.store)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateRefreshCatalogCommandHandler(),
		c.config.CatalogRefreshSchedule,
		c.config.CatalogRefreshTimeout,
		c.logger,
	)
}

func (c *CompositionRoot) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(
		c.CreateCalculatePriceQueryHandler(),
		c.CreateCompareCarriersQueryHandler(),
		c.CreateGetBestPriceQueryHandler(),
		c.CreateCalculateBulkQueryHandler(),
		c.CreateResolveZoneQueryHandler(),
		c.MetricsHandler(),
		c.logger,
	)
}
