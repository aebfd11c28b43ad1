package catalogrepo

import (
	"context"
	"errors"
	"fmt"

	"shipcalc/internal/core/domain/model/carrier"
	"shipcalc/internal/core/domain/model/catalog"
	"shipcalc/internal/core/domain/model/pricing"
	"shipcalc/internal/core/domain/model/zone"
	"shipcalc/internal/core/ports"

	"gorm.io/gorm"
)

var _ ports.CatalogRepository = (*GormCatalogRepository)(nil)

// GormCatalogRepository reads the whole catalog with GORM. It is meant to run
// inside the read-only transaction of a unit of work so all tables are read
// from one consistent view.
type GormCatalogRepository struct {
	db *gorm.DB
}

func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

// Load reads every catalog table. Rows that cannot become domain values are
// reported together as CatalogErrors; cross references are left to
// catalog.NewSnapshot.
func (r *GormCatalogRepository) Load(ctx context.Context) (catalog.Data, error) {
	db := r.db.WithContext(ctx)

	var (
		zoneRows      []ZoneDTO
		carrierRows   []CarrierDTO
		tableRows     []PricingTableDTO
		serviceRows   []AdditionalServiceDTO
		overrideRows  []AdditionalServicePriceDTO
		promotionRows []PromotionDTO
	)
	for _, q := range []struct {
		name string
		run  func() error
	}{
		{"zones", func() error { return db.Order("priority, code").Find(&zoneRows).Error }},
		{"carriers", func() error { return db.Order("code").Find(&carrierRows).Error }},
		{"pricing tables", func() error {
			return db.Preload("Rules", func(tx *gorm.DB) *gorm.DB {
				return tx.Order("sort_order, rule_id")
			}).Order("carrier_code, zone_code, service_type, version").Find(&tableRows).Error
		}},
		{"additional services", func() error { return db.Order("carrier_code, code").Find(&serviceRows).Error }},
		{"additional service prices", func() error { return db.Find(&overrideRows).Error }},
		{"promotions", func() error { return db.Order("code").Find(&promotionRows).Error }},
	} {
		if err := q.run(); err != nil {
			return catalog.Data{}, fmt.Errorf("read %s: %w", q.name, err)
		}
	}

	var rowErrs []error
	data := catalog.Data{
		Zones:              make([]zone.Zone, 0, len(zoneRows)),
		Carriers:           make([]carrier.Carrier, 0, len(carrierRows)),
		Tables:             make([]pricing.Table, 0, len(tableRows)),
		AdditionalServices: make([]pricing.AdditionalService, 0, len(serviceRows)),
		ServicePrices:      make([]pricing.AdditionalServicePrice, 0, len(overrideRows)),
		Promotions:         make([]pricing.Promotion, 0, len(promotionRows)),
	}

	for _, row := range zoneRows {
		z, err := row.toDomain()
		if err != nil {
			rowErrs = append(rowErrs, err)
			continue
		}
		data.Zones = append(data.Zones, z)
	}
	for _, row := range carrierRows {
		c, err := row.toDomain()
		if err != nil {
			rowErrs = append(rowErrs, err)
			continue
		}
		data.Carriers = append(data.Carriers, c)
	}
	for _, row := range tableRows {
		t, err := row.toDomain()
		if err != nil {
			rowErrs = append(rowErrs, err)
			continue
		}
		data.Tables = append(data.Tables, t)
	}
	for _, row := range serviceRows {
		data.AdditionalServices = append(data.AdditionalServices, row.toDomain())
	}
	for _, row := range overrideRows {
		data.ServicePrices = append(data.ServicePrices, row.toDomain())
	}
	for _, row := range promotionRows {
		data.Promotions = append(data.Promotions, row.toDomain())
	}

	if err := errors.Join(rowErrs...); err != nil {
		return catalog.Data{}, err
	}
	return data, nil
}
