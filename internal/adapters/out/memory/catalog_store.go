// Package memory keeps the catalog snapshot currently in force.
package memory

import (
	"sync/atomic"

	"shipcalc/internal/core/domain/model/catalog"
	"shipcalc/internal/core/ports"
	"shipcalc/internal/pkg/errs"
)

var _ ports.CatalogStore = (*CatalogStore)(nil)

// CatalogStore holds one immutable snapshot behind an atomic pointer. Readers
// never block; Replace swaps the whole catalog in one step.
type CatalogStore struct {
	current atomic.Pointer[catalog.Snapshot]
}

func NewCatalogStore() *CatalogStore {
	return &CatalogStore{}
}

func (s *CatalogStore) Current() (ports.CatalogReader, error) {
	snapshot := s.current.Load()
	if snapshot == nil {
		return nil, errs.ErrCatalogNotLoaded
	}
	return snapshot, nil
}

// Replace installs snapshot. A nil snapshot is ignored.
func (s *CatalogStore) Replace(snapshot *catalog.Snapshot) {
	if snapshot == nil {
		return
	}
	s.current.Store(snapshot)
}

// Snapshot returns the raw snapshot, or nil before the first load.
func (s *CatalogStore) Snapshot() *catalog.Snapshot {
	return s.current.Load()
}
