package queries_test

import (
	"testing"
	"time"

	"shipcalc/internal/adapters/out/memory"
	"shipcalc/internal/core/domain/model/catalog"
	"shipcalc/internal/core/domain/model/catalog/catalogtest"
	"shipcalc/internal/core/domain/model/kernel"
	"shipcalc/internal/core/domain/model/quote"
	"shipcalc/internal/pkg/workpool"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type metricsMock struct {
	mock.Mock
}

func (m *metricsMock) ObserveCalculation(operation, outcome string, elapsed time.Duration) {
	m.Called(operation, outcome, elapsed)
}

func (m *metricsMock) ObserveCatalogRefresh(outcome string, summary catalog.Summary) {
	m.Called(outcome, summary)
}

func loadedStore(t testing.TB) *memory.CatalogStore {
	t.Helper()
	store := memory.NewCatalogStore()
	store.Replace(catalogtest.Snapshot(t))
	return store
}

func newPool(t testing.TB, limit int) *workpool.Pool {
	t.Helper()
	pool, err := workpool.New(limit, time.Second, 5*time.Second)
	require.NoError(t, err)
	return pool
}

func parcel(carrierCode, zoneCode, weightKg string) quote.PriceRequest {
	return quote.PriceRequest{
		CarrierCode: carrierCode,
		ZoneCode:    zoneCode,
		WeightKg:    catalogtest.D(weightKg),
		Dimensions:  kernel.NoDimensions(),
	}
}

func toCountry(countryCode, weightKg string) quote.PriceRequest {
	return quote.PriceRequest{
		CountryCode: countryCode,
		WeightKg:    catalogtest.D(weightKg),
		Dimensions:  kernel.NoDimensions(),
	}
}
