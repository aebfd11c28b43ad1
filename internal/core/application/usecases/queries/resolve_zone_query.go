package queries

import (
	"errors"
	"strings"

	"shipcalc/internal/core/domain/model/kernel"
	"shipcalc/internal/core/domain/model/zone"
	"shipcalc/internal/pkg/errs"
	"shipcalc/internal/pkg/guard"
)

var ErrResolveZoneQueryIsNotConstructed = errors.New(
	"ResolveZoneQuery must be created via one of the NewResolveZoneBy... constructors",
)

// ResolveZoneQuery looks a destination up in the zone catalog. Exactly one of
// the postal code, country or coordinates lookups is used.
type ResolveZoneQuery struct {
	postalCode string
	country    string
	point      *kernel.GeoPoint
	guard      guard.ConstructorGuard
}

func NewResolveZoneByPostalCodeQuery(postalCode, country string) (ResolveZoneQuery, error) {
	if strings.TrimSpace(postalCode) == "" {
		return ResolveZoneQuery{}, errs.NewValueIsRequiredError("postal_code")
	}
	c, err := zone.ParseCountry(country)
	if err != nil {
		return ResolveZoneQuery{}, err
	}
	return ResolveZoneQuery{postalCode: postalCode, country: c, guard: guard.NewConstructorGuard()}, nil
}

func NewResolveZoneByCountryQuery(country string) (ResolveZoneQuery, error) {
	c, err := zone.ParseCountry(country)
	if err != nil {
		return ResolveZoneQuery{}, err
	}
	return ResolveZoneQuery{country: c, guard: guard.NewConstructorGuard()}, nil
}

func NewResolveZoneByCoordinatesQuery(lat, lng float64) (ResolveZoneQuery, error) {
	p, err := kernel.NewGeoPoint(lat, lng)
	if err != nil {
		return ResolveZoneQuery{}, err
	}
	return ResolveZoneQuery{point: &p, guard: guard.NewConstructorGuard()}, nil
}

func (q ResolveZoneQuery) Validate() error {
	return q.guard.Validate(ErrResolveZoneQueryIsNotConstructed)
}

func (q ResolveZoneQuery) PostalCode() string { return q.postalCode }
func (q ResolveZoneQuery) Country() string    { return q.country }

func (q ResolveZoneQuery) Point() (kernel.GeoPoint, bool) {
	if q.point == nil {
		return kernel.GeoPoint{}, false
	}
	return *q.point, true
}
