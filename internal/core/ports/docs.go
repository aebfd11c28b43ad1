// Package ports defines the contracts between the pricing core and the
// infrastructure around it: the catalog it reads, the store that holds the
// snapshot in force, the transactional source the catalog is loaded from, and
// the metrics it reports.
package ports
