// Package zone models geographic pricing regions.
//
// A Zone is matched by postal-code patterns, by country membership or, when its
// country list is empty, acts as the "all others" fallback. Zones carry a
// priority; a lower number is evaluated first.
package zone
