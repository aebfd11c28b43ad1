package services_test

import (
	"testing"

	"shipcalc/internal/core/domain/model/catalog/catalogtest"
	"shipcalc/internal/core/domain/model/kernel"
	"shipcalc/internal/core/domain/model/zone"
	"shipcalc/internal/core/domain/services"
	"shipcalc/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type zoneList []zone.Zone

func (z zoneList) Zones() []zone.Zone { return z }

func TestZoneResolver_ResolveByPostalCode(t *testing.T) {
	resolver := services.NewZoneResolver(catalogtest.Snapshot(t))

	tests := map[string]struct {
		postal, country, want string
	}{
		"warsaw pattern":           {"00-950", "PL", "LOCAL"},
		"lower case country":       {" 04-123 ", "pl", "LOCAL"},
		"polish outside warsaw":    {"30-001", "PL", "NATIONAL"},
		"no postal code":           {"", "PL", "NATIONAL"},
		"pattern is country bound": {"00-950", "DE", "EU"},
		"eu member":                {"10115", "DE", "EU"},
		"anything else":            {"10001", "US", "WORLD"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			z, err := resolver.ResolveByPostalCode(tt.postal, tt.country)
			require.NoError(t, err)
			assert.Equal(t, tt.want, z.Code())
		})
	}
}

func TestZoneResolver_ResolveByCountry(t *testing.T) {
	resolver := services.NewZoneResolver(catalogtest.Snapshot(t))

	z, err := resolver.ResolveByCountry("CZ")
	require.NoError(t, err)
	assert.Equal(t, "EU", z.Code())

	z, err = resolver.ResolveByCountry("JP")
	require.NoError(t, err)
	assert.Equal(t, "WORLD", z.Code())
}

func TestZoneResolver_Fallbacks(t *testing.T) {
	pl, err := zone.NewZone("PL", "Poland", zone.National, 1, []string{"PL"}, nil, nil)
	require.NoError(t, err)
	world, err := zone.NewZone("WORLD", "World", zone.International, 5, nil, nil, nil)
	require.NoError(t, err)
	moon, err := zone.NewZone("MOON", "Moon", zone.International, 6, nil, nil, nil)
	require.NoError(t, err)

	_, err = services.NewZoneResolver(zoneList{pl}).ResolveByCountry("US")
	var catalogErr *errs.CatalogError
	require.ErrorAs(t, err, &catalogErr)
	require.ErrorIs(t, err, errs.ErrNoZoneFound)
	assert.Contains(t, catalogErr.Detail, "US")

	_, err = services.NewZoneResolver(zoneList{pl, world, moon}).ResolveByCountry("US")
	require.ErrorIs(t, err, errs.ErrNoFallbackZone)

	z, err := services.NewZoneResolver(zoneList{pl, world, moon}).ResolveByCountry("pl")
	require.NoError(t, err)
	assert.Equal(t, "PL", z.Code())
}

func TestZoneResolver_ResolveByCoordinates(t *testing.T) {
	resolver := services.NewZoneResolver(catalogtest.Snapshot(t))

	warsaw, err := kernel.NewGeoPoint(52.2297, 21.0122)
	require.NoError(t, err)
	z, err := resolver.ResolveByCoordinates(warsaw)
	require.NoError(t, err)
	assert.Equal(t, "LOCAL", z.Code())

	krakow, err := kernel.NewGeoPoint(50.0647, 19.9450)
	require.NoError(t, err)
	z, err = resolver.ResolveByCoordinates(krakow)
	require.NoError(t, err)
	assert.Equal(t, "LOCAL", z.Code(), "nearest zone with bounds")

	world, err := zone.NewZone("WORLD", "World", zone.International, 5, nil, nil, nil)
	require.NoError(t, err)
	_, err = services.NewZoneResolver(zoneList{world}).ResolveByCoordinates(krakow)
	require.ErrorIs(t, err, errs.ErrNoZoneFound)

	_, err = resolver.ResolveByCoordinates(kernel.GeoPoint{})
	require.Error(t, err)
}
