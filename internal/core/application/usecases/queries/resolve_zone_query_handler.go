package queries

import (
	"context"

	"shipcalc/internal/core/domain/model/zone"
	"shipcalc/internal/core/domain/services"
	"shipcalc/internal/core/ports"
)

type ResolveZoneQueryHandler struct {
	catalog ports.CatalogProvider
}

func NewResolveZoneQueryHandler(catalog ports.CatalogProvider) *ResolveZoneQueryHandler {
	return &ResolveZoneQueryHandler{catalog: catalog}
}

func (h *ResolveZoneQueryHandler) Handle(_ context.Context, query ResolveZoneQuery) (zone.Zone, error) {
	if err := query.Validate(); err != nil {
		return zone.Zone{}, err
	}

	reader, err := h.catalog.Current()
	if err != nil {
		return zone.Zone{}, err
	}
	resolver := services.NewZoneResolver(reader)

	if p, ok := query.Point(); ok {
		return resolver.ResolveByCoordinates(p)
	}
	if query.PostalCode() != "" {
		return resolver.ResolveByPostalCode(query.PostalCode(), query.Country())
	}
	return resolver.ResolveByCountry(query.Country())
}
