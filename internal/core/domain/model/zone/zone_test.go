package zone_test

import (
	"testing"

	"shipcalc/internal/core/domain/model/kernel"
	"shipcalc/internal/core/domain/model/zone"
	"shipcalc/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewZone(t *testing.T) {
	t.Run("normalises codes and countries", func(t *testing.T) {
		z, err := zone.NewZone(" local ", "Warsaw", zone.Local, 1,
			[]string{"pl", "PL"}, []string{`^0[0-4]-\d{3}$`}, nil)
		require.NoError(t, err)

		assert.Equal(t, "LOCAL", z.Code())
		assert.Equal(t, "Warsaw", z.Name())
		assert.Equal(t, zone.Local, z.Type())
		assert.Equal(t, []string{"PL"}, z.Countries())
		assert.Equal(t, []string{`^0[0-4]-\d{3}$`}, z.Patterns())
		assert.False(t, z.IsFallback())
		_, hasBounds := z.Bounds()
		assert.False(t, hasBounds)
		require.NoError(t, z.Validate())
	})

	t.Run("collects every invalid field", func(t *testing.T) {
		_, err := zone.NewZone("", "Broken", zone.Type("galactic"), 1,
			[]string{"XX1"}, []string{"^(00"}, nil)

		require.Error(t, err)
		require.ErrorIs(t, err, zone.ErrCodeIsRequired)
		assert.Contains(t, err.Error(), "zone type galactic")
		assert.Contains(t, err.Error(), "country XX1")
		assert.Contains(t, err.Error(), "postal code pattern ^(00")
		assert.True(t, errs.IsValidation(err))
	})

	t.Run("zero value is not constructed", func(t *testing.T) {
		var z zone.Zone
		assert.Equal(t, zone.ErrZoneIsNotConstructed, z.Validate())
	})

	t.Run("keeps bounds", func(t *testing.T) {
		sw, _ := kernel.NewGeoPoint(49, 14)
		ne, _ := kernel.NewGeoPoint(55, 24)
		box, _ := kernel.NewBoundingBox(sw, ne)

		z, err := zone.NewZone("NATIONAL", "Poland", zone.National, 2, []string{"PL"}, nil, &box)
		require.NoError(t, err)

		got, ok := z.Bounds()
		require.True(t, ok)
		assert.Equal(t, box, got)
	})
}

func TestZone_Matching(t *testing.T) {
	local, err := zone.NewZone("LOCAL", "Warsaw", zone.Local, 1,
		[]string{"PL"}, []string{`^0[0-4]-\d{3}$`}, nil)
	require.NoError(t, err)
	rest, err := zone.NewZone("WORLD", "Rest of world", zone.International, 99, nil, nil, nil)
	require.NoError(t, err)

	assert.True(t, local.MatchesPostalCode(" 00-950 ", "pl"))
	assert.False(t, local.MatchesPostalCode("30-001", "PL"))
	assert.False(t, local.MatchesPostalCode("00-950", "DE"), "pattern is scoped to the zone's countries")

	assert.True(t, local.CoversCountry("pl"))
	assert.True(t, local.HasPatterns())
	assert.False(t, rest.HasPatterns())
	assert.False(t, local.CoversCountry("DE"))

	assert.True(t, rest.IsFallback())
	assert.False(t, rest.CoversCountry("DE"))
	assert.False(t, rest.MatchesPostalCode("10115", "DE"))
}

func TestParseCountry(t *testing.T) {
	c, err := zone.ParseCountry(" pl ")
	require.NoError(t, err)
	assert.Equal(t, "PL", c)

	for _, bad := range []string{"", "POL", "001", "1"} {
		_, err := zone.ParseCountry(bad)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid, bad)
	}
}
