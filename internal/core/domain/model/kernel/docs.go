// Package kernel holds the value objects shared by every pricing aggregate.
//
// The package includes:
//   - UUID: identifier of catalog entries such as pricing tables
//   - Currency: an ISO 4217 currency with its minor-unit rounding
//   - Dimensions: parcel length, width and height with volumetric weight
//   - GeoPoint and BoundingBox: coordinates used by diagnostic zone lookup
//
// All value objects are immutable and carry a constructor guard, so the zero
// value fails Validate and must be built through the New* functions.
package kernel
