package services

import (
	"math"

	"shipcalc/internal/core/domain/model/kernel"
	"shipcalc/internal/core/domain/model/zone"
	"shipcalc/internal/pkg/errs"
)

// ZoneSource lists the zones of a catalog in priority order.
type ZoneSource interface {
	Zones() []zone.Zone
}

// ZoneResolver maps destinations to pricing zones.
//
// Business rules:
//   - zones are tried in ascending priority, then by code
//   - a postal-code pattern match beats country-list membership
//   - a zone with postal patterns is never matched by country alone
//   - the single zone without a country list catches everything else
//   - coordinates never feed a price; they serve diagnostics only
//
// Example:
//
//	resolver := NewZoneResolver(snapshot)
//	z, err := resolver.ResolveByPostalCode("00-950", "PL")
//	if errors.Is(err, errs.ErrNoZoneFound) {
//	    // catalog has no fallback zone
//	}
type ZoneResolver struct {
	zones []zone.Zone
}

func NewZoneResolver(source ZoneSource) ZoneResolver {
	return ZoneResolver{zones: source.Zones()}
}

// ResolveByPostalCode tries every zone's postal patterns first and falls back
// to ResolveByCountry. An empty postal code goes straight to the country lookup.
func (r ZoneResolver) ResolveByPostalCode(postalCode, country string) (zone.Zone, error) {
	if zone.NormalizePostalCode(postalCode) != "" {
		for _, z := range r.zones {
			if z.MatchesPostalCode(postalCode, country) {
				return z, nil
			}
		}
	}
	return r.ResolveByCountry(country)
}

// ResolveByCountry returns the first zone listing the country, else the fallback
// zone. Zones with postal patterns are only reachable through a pattern match.
func (r ZoneResolver) ResolveByCountry(country string) (zone.Zone, error) {
	for _, z := range r.zones {
		if !z.HasPatterns() && z.CoversCountry(country) {
			return z, nil
		}
	}
	return r.fallback(country)
}

// ResolveByCoordinates returns the first zone whose bounding box holds the
// point, otherwise the zone whose box centre is nearest. Zones without a box
// are ignored.
func (r ZoneResolver) ResolveByCoordinates(point kernel.GeoPoint) (zone.Zone, error) {
	if err := point.Validate(); err != nil {
		return zone.Zone{}, err
	}

	var (
		nearest  zone.Zone
		found    bool
		bestDist = math.MaxFloat64
	)
	for _, z := range r.zones {
		box, ok := z.Bounds()
		if !ok {
			continue
		}
		if box.Contains(point) {
			return z, nil
		}
		dist, err := point.DistanceKm(box.Center())
		if err != nil {
			return zone.Zone{}, err
		}
		if dist < bestDist {
			nearest, bestDist, found = z, dist, true
		}
	}

	if !found {
		return zone.Zone{}, errs.NewCatalogError(errs.ErrNoZoneFound).
			WithDetail("no zone has bounds near %s", point)
	}
	return nearest, nil
}

func (r ZoneResolver) fallback(country string) (zone.Zone, error) {
	var fallbacks []zone.Zone
	for _, z := range r.zones {
		if z.IsFallback() {
			fallbacks = append(fallbacks, z)
		}
	}

	switch len(fallbacks) {
	case 1:
		return fallbacks[0], nil
	case 0:
		return zone.Zone{}, errs.NewCatalogError(errs.ErrNoZoneFound).
			WithDetail("country %s is in no zone and there is no fallback zone", zone.NormalizeCountry(country))
	default:
		return zone.Zone{}, errs.NewCatalogError(errs.ErrNoFallbackZone).
			WithDetail("%d fallback zones", len(fallbacks))
	}
}
