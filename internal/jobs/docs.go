// Package jobs provides scheduled background tasks for the pricing service.
//
// Jobs are cron-based (github.com/robfig/cron/v3, six-field expressions with
// seconds).
//
// # Available Jobs
//
// 1. CatalogRefreshJob - reloads zones, carriers, pricing tables and promotions
// from the database and swaps the in-memory snapshot
//
// # Usage
//
//	jobManager := jobs.NewJobManager(refreshHandler, "0 */5 * * * *", 30*time.Second, logger)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// A failed refresh never replaces the catalog in force; the next tick tries again.
package jobs
