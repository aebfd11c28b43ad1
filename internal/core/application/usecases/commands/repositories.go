// Package commands contains operations that change what the engine prices
// against. Commands follow the same pattern as queries: a validated command
// object and a handler that runs it inside a unit of work.
package commands

import (
	"shipcalc/internal/core/domain/model/catalog"
)

type (
	// CatalogSink receives every snapshot that passed validation.
	// ports.CatalogStore satisfies it.
	CatalogSink interface {
		Replace(snapshot *catalog.Snapshot)
	}
)
