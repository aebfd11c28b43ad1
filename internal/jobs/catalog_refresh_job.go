package jobs

import (
	"context"
	"log/slog"
	"time"

	"shipcalc/internal/core/application/usecases/commands"
	"shipcalc/internal/core/domain/model/catalog"

	"github.com/robfig/cron/v3"
)

// DefaultRefreshSchedule reloads the catalog every five minutes.
const DefaultRefreshSchedule = "0 */5 * * * *"

// CatalogRefresher is satisfied by commands.RefreshCatalogCommandHandler.
type CatalogRefresher interface {
	Handle(ctx context.Context, cmd commands.RefreshCatalogCommand) (catalog.Summary, error)
}

// CatalogRefreshJob reloads the pricing catalog on a cron schedule (seconds field
// included). A run that is still going when the next tick fires makes that tick
// a no-op.
type CatalogRefreshJob struct {
	refresher CatalogRefresher
	schedule  string
	timeout   time.Duration
	cron      *cron.Cron
	logger    *slog.Logger
}

// NewCatalogRefreshJob creates the job. An empty schedule means DefaultRefreshSchedule;
// timeout bounds a single run and is ignored when not positive.
func NewCatalogRefreshJob(
	refresher CatalogRefresher,
	schedule string,
	timeout time.Duration,
	logger *slog.Logger,
) *CatalogRefreshJob {
	if schedule == "" {
		schedule = DefaultRefreshSchedule
	}
	return &CatalogRefreshJob{
		refresher: refresher,
		schedule:  schedule,
		timeout:   timeout,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		logger: logger.With("component", "catalog_refresh_job"),
	}
}

// Start registers the refresh with the scheduler and starts it.
// It fails for a malformed schedule.
func (j *CatalogRefreshJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.Run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Catalog refresh job started", "schedule", j.schedule)
	return nil
}

// Run performs one scheduled refresh. Failures are logged by the command
// handler, which also keeps the previous catalog in force.
func (j *CatalogRefreshJob) Run() {
	ctx := context.Background()
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	cmd, err := commands.NewRefreshCatalogCommand(commands.TriggerSchedule)
	if err != nil {
		j.logger.ErrorContext(ctx, "Catalog refresh job failed", "error", err)
		return
	}

	if _, err := j.refresher.Handle(ctx, cmd); err != nil {
		j.logger.DebugContext(ctx, "Scheduled catalog refresh failed", "error", err)
	}
}

// Stop stops the scheduler and waits for a running refresh to return.
func (j *CatalogRefreshJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Catalog refresh job stopped")
}
