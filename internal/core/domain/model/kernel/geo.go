package kernel

import (
	"errors"
	"fmt"
	"math"

	"shipcalc/internal/pkg/errs"
	"shipcalc/internal/pkg/guard"
)

const earthRadiusKm = 6371.0

var (
	// ErrGeoPointIsNotConstructed is returned when a zero-value GeoPoint is used.
	ErrGeoPointIsNotConstructed = errs.NewValueIsRequiredError("geo point must be created via NewGeoPoint")
	// ErrBoundingBoxIsNotConstructed is returned when a zero-value BoundingBox is used.
	ErrBoundingBoxIsNotConstructed = errs.NewValueIsRequiredError("bounding box must be created via NewBoundingBox")
)

// GeoPoint is a WGS84 latitude/longitude pair in degrees.
type GeoPoint struct { //nolint:recvcheck //using for validation
	lat   float64
	lng   float64
	guard guard.ConstructorGuard
}

// NewGeoPoint validates latitude in [-90, 90] and longitude in [-180, 180].
func NewGeoPoint(lat, lng float64) (GeoPoint, error) {
	p := GeoPoint{guard: guard.NewConstructorGuard()}
	if err := errors.Join(p.setLat(lat), p.setLng(lng)); err != nil {
		return GeoPoint{}, err
	}
	return p, nil
}

func (p GeoPoint) Validate() error {
	return p.guard.Validate(ErrGeoPointIsNotConstructed)
}

func (p GeoPoint) Lat() float64 { return p.lat }
func (p GeoPoint) Lng() float64 { return p.lng }

func (p GeoPoint) String() string {
	return fmt.Sprintf("GeoPoint(%.5f,%.5f)", p.lat, p.lng)
}

// DistanceKm returns the great-circle (haversine) distance to other.
func (p GeoPoint) DistanceKm(other GeoPoint) (float64, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	lat1, lat2 := radians(p.lat), radians(other.lat)
	dLat := lat2 - lat1
	dLng := radians(other.lng - p.lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h))), nil
}

func (p *GeoPoint) setLat(lat float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return errs.NewValueIsOutOfRangeError("latitude", lat, -90, 90)
	}
	p.lat = lat
	return nil
}

func (p *GeoPoint) setLng(lng float64) error {
	if math.IsNaN(lng) || lng < -180 || lng > 180 {
		return errs.NewValueIsOutOfRangeError("longitude", lng, -180, 180)
	}
	p.lng = lng
	return nil
}

// BoundingBox is the rectangle between a south-west and a north-east corner.
// Boxes crossing the antimeridian are not supported.
type BoundingBox struct {
	southWest GeoPoint
	northEast GeoPoint
	guard     guard.ConstructorGuard
}

func NewBoundingBox(southWest, northEast GeoPoint) (BoundingBox, error) {
	if err := errors.Join(southWest.Validate(), northEast.Validate()); err != nil {
		return BoundingBox{}, err
	}
	if southWest.lat > northEast.lat {
		return BoundingBox{}, errs.NewValueIsOutOfRangeError("south_west.latitude", southWest.lat, -90, northEast.lat)
	}
	if southWest.lng > northEast.lng {
		return BoundingBox{}, errs.NewValueIsOutOfRangeError("south_west.longitude", southWest.lng, -180, northEast.lng)
	}
	return BoundingBox{southWest: southWest, northEast: northEast, guard: guard.NewConstructorGuard()}, nil
}

func (b BoundingBox) Validate() error {
	return b.guard.Validate(ErrBoundingBoxIsNotConstructed)
}

func (b BoundingBox) SouthWest() GeoPoint { return b.southWest }
func (b BoundingBox) NorthEast() GeoPoint { return b.northEast }

// Contains reports whether p lies inside the box, edges included.
func (b BoundingBox) Contains(p GeoPoint) bool {
	return p.lat >= b.southWest.lat && p.lat <= b.northEast.lat &&
		p.lng >= b.southWest.lng && p.lng <= b.northEast.lng
}

func (b BoundingBox) Center() GeoPoint {
	return GeoPoint{
		lat:   (b.southWest.lat + b.northEast.lat) / 2,
		lng:   (b.southWest.lng + b.northEast.lng) / 2,
		guard: guard.NewConstructorGuard(),
	}
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
