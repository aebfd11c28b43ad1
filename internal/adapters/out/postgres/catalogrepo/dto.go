// Package catalogrepo maps the catalog tables to domain values. The catalog is
// maintained by another system; this package only reads it.
package catalogrepo

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// ZoneDTO is one row of "zones". Countries and postal patterns are Postgres
// text arrays; an empty country list marks the fallback zone.
type ZoneDTO struct {
	Code           string         `gorm:"type:varchar(32);primaryKey"`
	Name           string         `gorm:"type:varchar(255);not null"`
	Type           string         `gorm:"type:varchar(32);not null"`
	Priority       int            `gorm:"type:int;not null"`
	Countries      pq.StringArray `gorm:"type:text[]"`
	PostalPatterns pq.StringArray `gorm:"type:text[]"`
	Bounds         BoundsDTO      `gorm:"embedded;embeddedPrefix:bounds_"`
}

func (ZoneDTO) TableName() string {
	return "zones"
}

// BoundsDTO is an optional bounding box; all four columns are set or none is.
type BoundsDTO struct {
	SouthLat *float64 `gorm:"type:double precision"`
	WestLng  *float64 `gorm:"type:double precision"`
	NorthLat *float64 `gorm:"type:double precision"`
	EastLng  *float64 `gorm:"type:double precision"`
}

// DimensionsDTO stores a parcel limit in centimetres; zero means no limit.
type DimensionsDTO struct {
	LengthCm decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	WidthCm  decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	HeightCm decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
}

type CarrierDTO struct {
	Code           string          `gorm:"type:varchar(32);primaryKey"`
	Name           string          `gorm:"type:varchar(255);not null"`
	SupportedZones pq.StringArray  `gorm:"type:text[]"`
	MaxWeightKg    decimal.Decimal `gorm:"type:numeric(10,3);not null"`
	MaxDimensions  DimensionsDTO   `gorm:"embedded;embeddedPrefix:max_"`
	DefaultService string          `gorm:"type:varchar(32);not null"`
}

func (CarrierDTO) TableName() string {
	return "carriers"
}

// PricingTableDTO is one version of a price list. Rules are stored in
// pricing_rules and preloaded with the table.
type PricingTableDTO struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CarrierCode       string          `gorm:"type:varchar(32);not null;index:idx_pricing_tables_key"`
	ZoneCode          string          `gorm:"type:varchar(32);not null;index:idx_pricing_tables_key"`
	ServiceType       string          `gorm:"type:varchar(32);not null;index:idx_pricing_tables_key"`
	Version           int             `gorm:"type:int;not null"`
	Active            bool            `gorm:"not null;default:true"`
	Currency          string          `gorm:"type:char(3);not null"`
	TaxRate           decimal.Decimal `gorm:"type:numeric(5,4);not null"`
	MinWeightKg       decimal.Decimal `gorm:"type:numeric(10,3);not null;default:0"`
	MaxWeightKg       decimal.Decimal `gorm:"type:numeric(10,3);not null;default:0"`
	MaxDimensions     DimensionsDTO   `gorm:"embedded;embeddedPrefix:max_"`
	VolumetricDivisor decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	DeliveryDays      int             `gorm:"type:int;not null;default:0"`
	Rules             []RuleDTO       `gorm:"foreignKey:TableID;constraint:OnDelete:CASCADE"`
}

func (PricingTableDTO) TableName() string {
	return "pricing_tables"
}

// RuleDTO is a single-table encoding of every rule kind. Kind selects which
// columns are meaningful:
//
//	weight_band           range, price, price_per_unit (per kg)
//	dimensional           limit_*, price (surcharge), reject
//	tiered                driver, range, price, price_per_unit
//	progressive_discount  driver, steps
//	seasonal              window, multiplier or price (fixed price)
//	volume_discount       min_parcels, percent
type RuleDTO struct {
	TableID      uuid.UUID           `gorm:"type:uuid;primaryKey"`
	RuleID       string              `gorm:"type:varchar(64);primaryKey"`
	Kind         string              `gorm:"type:varchar(32);not null"`
	SortOrder    int                 `gorm:"type:int;not null"`
	Driver       string              `gorm:"type:varchar(32)"`
	RangeFrom    decimal.NullDecimal `gorm:"type:numeric(14,3)"`
	RangeTo      decimal.NullDecimal `gorm:"type:numeric(14,3)"`
	Price        decimal.NullDecimal `gorm:"type:numeric(12,4)"`
	PricePerUnit decimal.NullDecimal `gorm:"type:numeric(12,4)"`
	Limit        DimensionsDTO       `gorm:"embedded;embeddedPrefix:limit_"`
	Reject       bool                `gorm:"not null;default:false"`
	Steps        []StepDTO           `gorm:"type:jsonb;serializer:json"`
	WindowFrom   *time.Time
	WindowTo     *time.Time
	Multiplier   decimal.NullDecimal `gorm:"type:numeric(8,4)"`
	MinParcels   int                 `gorm:"type:int;not null;default:0"`
	Percent      decimal.NullDecimal `gorm:"type:numeric(6,3)"`
}

func (RuleDTO) TableName() string {
	return "pricing_rules"
}

type StepDTO struct {
	Threshold decimal.Decimal `json:"threshold"`
	Percent   decimal.Decimal `json:"percent"`
}

type AdditionalServiceDTO struct {
	CarrierCode string              `gorm:"type:varchar(32);primaryKey"`
	Code        string              `gorm:"type:varchar(32);primaryKey"`
	Name        string              `gorm:"type:varchar(255);not null"`
	PricingType string              `gorm:"type:varchar(32);not null"`
	Price       decimal.Decimal     `gorm:"type:numeric(12,4);not null"`
	Basis       string              `gorm:"type:varchar(32)"`
	MinPrice    decimal.NullDecimal `gorm:"type:numeric(12,4)"`
	MaxPrice    decimal.NullDecimal `gorm:"type:numeric(12,4)"`
}

func (AdditionalServiceDTO) TableName() string {
	return "additional_services"
}

// AdditionalServicePriceDTO overrides a service's price for one pricing table.
type AdditionalServicePriceDTO struct {
	TableID     uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ServiceCode string          `gorm:"type:varchar(32);primaryKey"`
	Price       decimal.Decimal `gorm:"type:numeric(12,4);not null"`
}

func (AdditionalServicePriceDTO) TableName() string {
	return "additional_service_prices"
}

type PromotionDTO struct {
	Code          string          `gorm:"type:varchar(64);primaryKey"`
	Name          string          `gorm:"type:varchar(255)"`
	Kind          string          `gorm:"type:varchar(32);not null"`
	Value         decimal.Decimal `gorm:"type:numeric(12,4);not null"`
	Stackable     bool            `gorm:"not null;default:false"`
	Priority      int             `gorm:"type:int;not null;default:0"`
	ValidFrom     *time.Time
	ValidTo       *time.Time
	MinOrderValue decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
}

func (PromotionDTO) TableName() string {
	return "promotions"
}

// Models lists every catalog table, for migrations and test setup.
func Models() []any {
	return []any{
		&ZoneDTO{},
		&CarrierDTO{},
		&PricingTableDTO{},
		&RuleDTO{},
		&AdditionalServiceDTO{},
		&AdditionalServicePriceDTO{},
		&PromotionDTO{},
	}
}
