// Package catalog assembles zones, carriers, pricing tables, additional
// services and promotions into an immutable, validated Snapshot.
//
// A Snapshot is built once per catalog load and never mutated afterwards, so
// it can be shared by any number of concurrent calculations. Integrity checks
// (unique codes, a single fallback zone, weight bands covering [0, inf), known
// carriers and zones) run in NewSnapshot; a catalog that fails them is never
// served.
package catalog
