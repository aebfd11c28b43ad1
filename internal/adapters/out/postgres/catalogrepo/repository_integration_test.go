package catalogrepo_test

import (
	"context"
	"testing"
	"time"

	"shipcalc/internal/adapters/out/postgres/catalogrepo"
	"shipcalc/internal/core/domain/model/catalog"
	"shipcalc/internal/core/domain/model/pricing"
	"shipcalc/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type CatalogRepositoryIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	repo      *catalogrepo.GormCatalogRepository
	tableID   uuid.UUID
}

func (suite *CatalogRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(catalogrepo.Models()...))
	suite.repo = catalogrepo.NewGormCatalogRepository(db)
}

func (suite *CatalogRepositoryIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec(`TRUNCATE TABLE zones, carriers, pricing_tables, pricing_rules,
		additional_services, additional_service_prices, promotions`).Error
	suite.Require().NoError(err)
	suite.seed()
}

func (suite *CatalogRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nullDec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}

func ptr[T any](v T) *T {
	return &v
}

func (suite *CatalogRepositoryIntegrationTestSuite) seed() {
	suite.tableID = uuid.New()

	rows := []any{
		&[]catalogrepo.ZoneDTO{
			{
				Code: "LOCAL", Name: "Warsaw", Type: "local", Priority: 1,
				Countries:      pq.StringArray{"PL"},
				PostalPatterns: pq.StringArray{`^0[0-4]-\d{3}$`},
				Bounds: catalogrepo.BoundsDTO{
					SouthLat: ptr(52.09), WestLng: ptr(20.85), NorthLat: ptr(52.37), EastLng: ptr(21.27),
				},
			},
			{Code: "NATIONAL", Name: "Poland", Type: "national", Priority: 2, Countries: pq.StringArray{"PL"}},
			{Code: "WORLD", Name: "Rest of world", Type: "international", Priority: 9},
		},
		&catalogrepo.CarrierDTO{
			Code: "INPOST", Name: "InPost", SupportedZones: pq.StringArray{"LOCAL", "NATIONAL"},
			MaxWeightKg:    dec("25"),
			MaxDimensions:  catalogrepo.DimensionsDTO{LengthCm: dec("64"), WidthCm: dec("38"), HeightCm: dec("41")},
			DefaultService: "standard",
		},
		&catalogrepo.PricingTableDTO{
			ID: suite.tableID, CarrierCode: "INPOST", ZoneCode: "LOCAL", ServiceType: "standard",
			Version: 1, Active: true, Currency: "PLN", TaxRate: dec("0.23"), DeliveryDays: 1,
			Rules: []catalogrepo.RuleDTO{
				{RuleID: "w-0", Kind: "weight_band", SortOrder: 1, RangeFrom: nullDec("0"), RangeTo: nullDec("1"), Price: nullDec("8.50")},
				{RuleID: "w-1", Kind: "weight_band", SortOrder: 2, RangeFrom: nullDec("1"), Price: nullDec("12.00"), PricePerUnit: nullDec("1.50")},
				{
					RuleID: "peak", Kind: "seasonal", SortOrder: 40,
					WindowFrom: ptr(time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)),
					WindowTo:   ptr(time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC)),
					Multiplier: nullDec("1.2"),
				},
				{
					RuleID: "loyalty", Kind: "progressive_discount", SortOrder: 50, Driver: "shipment_count",
					Steps: []catalogrepo.StepDTO{{Threshold: dec("100"), Percent: dec("5")}, {Threshold: dec("500"), Percent: dec("10")}},
				},
				{
					RuleID: "long", Kind: "dimensional", SortOrder: 10, Price: nullDec("15"),
					Limit: catalogrepo.DimensionsDTO{LengthCm: dec("60")},
				},
				{RuleID: "vol", Kind: "volume_discount", SortOrder: 60, MinParcels: 10, Percent: nullDec("5")},
			},
		},
		&catalogrepo.AdditionalServiceDTO{
			CarrierCode: "INPOST", Code: "COD", Name: "Cash on delivery", PricingType: "fixed", Price: dec("3.00"),
		},
		&catalogrepo.AdditionalServicePriceDTO{TableID: suite.tableID, ServiceCode: "COD", Price: dec("2.50")},
		&catalogrepo.PromotionDTO{
			Code: "WELCOME10", Kind: "percentage", Value: dec("10"), Stackable: true, Priority: 1,
			ValidTo: ptr(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)),
		},
	}
	for _, row := range rows {
		suite.Require().NoError(suite.db.Create(row).Error)
	}
}

func (suite *CatalogRepositoryIntegrationTestSuite) TestLoad_BuildsValidSnapshot() {
	data, err := suite.repo.Load(context.Background())
	suite.Require().NoError(err)

	suite.Len(data.Zones, 3)
	suite.Equal("LOCAL", data.Zones[0].Code())
	suite.Equal([]string{`^0[0-4]-\d{3}$`}, data.Zones[0].Patterns())
	_, hasBounds := data.Zones[0].Bounds()
	suite.True(hasBounds)
	suite.True(data.Zones[2].IsFallback())

	snapshot, err := catalog.NewSnapshot(data, time.Now())
	suite.Require().NoError(err)

	table, err := snapshot.ActivePricingTable("INPOST", "LOCAL", "standard")
	suite.Require().NoError(err)
	suite.Equal(suite.tableID.String(), table.ID().String())
	suite.Equal("PLN", table.Currency().Code())

	rules, err := snapshot.RulesForTable(table.ID())
	suite.Require().NoError(err)
	suite.Len(rules, 6)

	kinds := make(map[pricing.Kind]pricing.Rule)
	for _, r := range rules {
		kinds[r.Kind()] = r
	}
	progressive, ok := kinds[pricing.KindProgressiveDiscount].(pricing.ProgressiveDiscountRule)
	suite.Require().True(ok)
	suite.Require().Len(progressive.Steps, 2)
	suite.True(dec("500").Equal(progressive.Steps[1].Threshold))

	seasonal, ok := kinds[pricing.KindSeasonal].(pricing.SeasonalRule)
	suite.Require().True(ok)
	suite.True(seasonal.Multiplier.Valid)
	suite.False(seasonal.FixedPrice.Valid)

	band, ok := rules[0].(pricing.WeightBandRule)
	suite.Require().True(ok)
	suite.Equal("w-0", band.ID)
	suite.True(band.Range.To.Valid)

	override, found := snapshot.ServicePriceOverride(table.ID(), "COD")
	suite.True(found)
	suite.True(dec("2.5").Equal(override))

	promo, found := snapshot.Promotion("welcome10")
	suite.True(found)
	suite.True(promo.ValidFrom.IsZero())
}

func (suite *CatalogRepositoryIntegrationTestSuite) TestLoad_UnknownRuleKind() {
	err := suite.db.Create(&catalogrepo.RuleDTO{
		TableID: suite.tableID, RuleID: "mystery", Kind: "lottery", SortOrder: 99,
	}).Error
	suite.Require().NoError(err)

	_, err = suite.repo.Load(context.Background())

	suite.Require().ErrorIs(err, errs.ErrCatalog)
	suite.Require().ErrorIs(err, errs.ErrInvalidCatalogEntry)
	suite.Contains(err.Error(), "lottery")
}

func (suite *CatalogRepositoryIntegrationTestSuite) TestLoad_InvalidZoneRow() {
	err := suite.db.Create(&catalogrepo.ZoneDTO{
		Code: "BAD", Name: "Bad", Type: "local", Priority: 5,
		Countries: pq.StringArray{"PL"}, PostalPatterns: pq.StringArray{"^(00"},
	}).Error
	suite.Require().NoError(err)

	_, err = suite.repo.Load(context.Background())

	suite.Require().ErrorIs(err, errs.ErrInvalidCatalogEntry)
	var catalogErr *errs.CatalogError
	suite.Require().ErrorAs(err, &catalogErr)
	suite.Equal("BAD", catalogErr.Zone)
}

func (suite *CatalogRepositoryIntegrationTestSuite) TestLoad_ContextCancelled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := suite.repo.Load(ctx)

	suite.Require().Error(err)
}

func TestCatalogRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(CatalogRepositoryIntegrationTestSuite))
}
