package ports

import (
	"context"

	"shipcalc/internal/core/domain/model/carrier"
	"shipcalc/internal/core/domain/model/catalog"
	"shipcalc/internal/core/domain/model/kernel"
	"shipcalc/internal/core/domain/model/pricing"
	"shipcalc/internal/core/domain/model/zone"

	"github.com/shopspring/decimal"
)

// CatalogReader is the read-only view of the catalog a calculation runs against.
// Implementations must be safe for concurrent use and must not change while
// a calculation holds them.
type CatalogReader interface {
	// Zones returns all zones ordered by priority, then code.
	Zones() []zone.Zone

	// Zone fails with a CatalogError (ErrNoZoneFound) for an unknown code.
	Zone(code string) (zone.Zone, error)

	// Carrier fails with a CatalogError (ErrUnknownCarrier) for an unknown code.
	Carrier(code string) (carrier.Carrier, error)

	// Carriers returns every carrier ordered by code.
	Carriers() []carrier.Carrier

	// CarriersSupportingZone returns the carriers serving the zone, ordered by code.
	CarriersSupportingZone(zoneCode string) []carrier.Carrier

	// ActivePricingTable returns the highest active version for (carrier, zone, service)
	// or a CatalogError (ErrNoPricingTable).
	ActivePricingTable(carrierCode, zoneCode, serviceType string) (pricing.Table, error)

	// RulesForTable returns the table's rules ordered by sort order.
	RulesForTable(tableID kernel.UUID) ([]pricing.Rule, error)

	AdditionalServicesForCarrier(carrierCode string) []pricing.AdditionalService
	ServicePriceOverride(tableID kernel.UUID, serviceCode string) (decimal.Decimal, bool)
	Promotion(code string) (pricing.Promotion, bool)
}

// CatalogProvider hands out the catalog snapshot currently in force.
// Callers read it once per operation so a batch never sees two catalogs.
type CatalogProvider interface {
	// Current fails with errs.ErrCatalogNotLoaded before the first successful load.
	Current() (CatalogReader, error)
}

// CatalogStore is a CatalogProvider whose snapshot can be swapped atomically.
type CatalogStore interface {
	CatalogProvider
	Replace(snapshot *catalog.Snapshot)
}

// CatalogRepository reads the raw catalog from persistent storage.
type CatalogRepository interface {
	// Load reads zones, carriers, tables with their rules, additional services,
	// override prices and promotions. It does not validate cross references;
	// catalog.NewSnapshot does.
	Load(ctx context.Context) (catalog.Data, error)
}

// CatalogUnitOfWork is a read-only transaction over the catalog tables, so that
// one load sees a consistent view even while the catalog is being edited.
type CatalogUnitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	// CatalogRepository returns a repository bound to the transaction started by Begin.
	CatalogRepository() CatalogRepository
}

// CatalogUnitOfWorkFactory creates a fresh unit of work for every load.
type CatalogUnitOfWorkFactory interface {
	Create() CatalogUnitOfWork
}
