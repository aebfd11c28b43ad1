package catalog

import (
	"cmp"
	"errors"
	"iter"
	"maps"
	"slices"
	"strings"
	"time"

	"shipcalc/internal/core/domain/model/carrier"
	"shipcalc/internal/core/domain/model/kernel"
	"shipcalc/internal/core/domain/model/pricing"
	"shipcalc/internal/core/domain/model/zone"
	"shipcalc/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// Data is the raw content of a catalog load.
type Data struct {
	Zones              []zone.Zone
	Carriers           []carrier.Carrier
	Tables             []pricing.Table
	AdditionalServices []pricing.AdditionalService
	ServicePrices      []pricing.AdditionalServicePrice
	Promotions         []pricing.Promotion
}

// Summary counts what a snapshot holds.
type Summary struct {
	Zones              int
	Carriers           int
	Tables             int
	ActiveTables       int
	AdditionalServices int
	Promotions         int
}

type overrideKey struct {
	tableID string
	service string
}

// Snapshot is a read-only, validated view of the catalog.
type Snapshot struct {
	zones      []zone.Zone
	zoneByCode map[string]zone.Zone
	carriers   map[string]carrier.Carrier
	tables     map[string]pricing.Table
	active     map[pricing.TableKey]pricing.Table
	services   map[string][]pricing.AdditionalService
	overrides  map[overrideKey]decimal.Decimal
	promotions map[string]pricing.Promotion
	loadedAt   time.Time
	summary    Summary
}

// NewSnapshot validates data and indexes it for lookups. All integrity
// problems found are returned together.
func NewSnapshot(data Data, loadedAt time.Time) (*Snapshot, error) {
	s := &Snapshot{
		zoneByCode: make(map[string]zone.Zone, len(data.Zones)),
		carriers:   make(map[string]carrier.Carrier, len(data.Carriers)),
		tables:     make(map[string]pricing.Table, len(data.Tables)),
		active:     make(map[pricing.TableKey]pricing.Table),
		services:   make(map[string][]pricing.AdditionalService),
		overrides:  make(map[overrideKey]decimal.Decimal, len(data.ServicePrices)),
		promotions: make(map[string]pricing.Promotion, len(data.Promotions)),
		loadedAt:   loadedAt,
	}

	if err := errors.Join(
		s.addZones(data.Zones),
		s.addCarriers(data.Carriers),
		s.addTables(data.Tables),
		s.addServices(data.AdditionalServices),
		s.addOverrides(data.ServicePrices),
		s.addPromotions(data.Promotions),
	); err != nil {
		return nil, err
	}

	s.summary = Summary{
		Zones:              len(s.zones),
		Carriers:           len(s.carriers),
		Tables:             len(s.tables),
		ActiveTables:       len(s.active),
		AdditionalServices: len(data.AdditionalServices),
		Promotions:         len(s.promotions),
	}
	return s, nil
}

func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }
func (s *Snapshot) Summary() Summary    { return s.summary }

// Zones returns all zones ordered by priority, then code.
func (s *Snapshot) Zones() []zone.Zone {
	return slices.Clone(s.zones)
}

func (s *Snapshot) Zone(code string) (zone.Zone, error) {
	z, ok := s.zoneByCode[normalizeCode(code)]
	if !ok {
		return zone.Zone{}, errs.NewCatalogError(errs.ErrNoZoneFound).WithZone(normalizeCode(code))
	}
	return z, nil
}

func (s *Snapshot) Carrier(code string) (carrier.Carrier, error) {
	c, ok := s.carriers[normalizeCode(code)]
	if !ok {
		return carrier.Carrier{}, errs.NewCatalogError(errs.ErrUnknownCarrier).WithCarrier(normalizeCode(code))
	}
	return c, nil
}

// Carriers returns every carrier ordered by code.
func (s *Snapshot) Carriers() []carrier.Carrier {
	return sortedCarriers(maps.Values(s.carriers), func(carrier.Carrier) bool { return true })
}

// CarriersSupportingZone returns the carriers serving the zone, ordered by code.
func (s *Snapshot) CarriersSupportingZone(zoneCode string) []carrier.Carrier {
	return sortedCarriers(maps.Values(s.carriers), func(c carrier.Carrier) bool {
		return c.SupportsZone(zoneCode)
	})
}

// ActivePricingTable returns the highest active version for the key.
func (s *Snapshot) ActivePricingTable(carrierCode, zoneCode, serviceType string) (pricing.Table, error) {
	key := pricing.NewTableKey(carrierCode, zoneCode, serviceType)
	t, ok := s.active[key]
	if !ok {
		return pricing.Table{}, errs.NewCatalogError(errs.ErrNoPricingTable).
			WithCarrier(key.Carrier).WithZone(key.Zone).WithService(key.Service)
	}
	return t, nil
}

// RulesForTable returns the ordered rules of any loaded table, active or not.
func (s *Snapshot) RulesForTable(tableID kernel.UUID) ([]pricing.Rule, error) {
	t, ok := s.tables[tableID.String()]
	if !ok {
		return nil, errs.NewCatalogError(errs.ErrNoPricingTable).WithTable(tableID.String())
	}
	return t.Rules(), nil
}

// AdditionalServicesForCarrier returns the carrier's services ordered by code.
func (s *Snapshot) AdditionalServicesForCarrier(carrierCode string) []pricing.AdditionalService {
	return slices.Clone(s.services[normalizeCode(carrierCode)])
}

// ServicePriceOverride returns the table-specific price of a service, if any.
func (s *Snapshot) ServicePriceOverride(tableID kernel.UUID, serviceCode string) (decimal.Decimal, bool) {
	price, ok := s.overrides[overrideKey{tableID: tableID.String(), service: normalizeCode(serviceCode)}]
	return price, ok
}

func (s *Snapshot) Promotion(code string) (pricing.Promotion, bool) {
	p, ok := s.promotions[normalizeCode(code)]
	return p, ok
}

func (s *Snapshot) addZones(zones []zone.Zone) error {
	var zoneErrs []error
	var fallbacks []string
	for _, z := range zones {
		if err := z.Validate(); err != nil {
			zoneErrs = append(zoneErrs, errs.NewCatalogErrorWithCause(errs.ErrInvalidCatalogEntry, err))
			continue
		}
		if _, dup := s.zoneByCode[z.Code()]; dup {
			zoneErrs = append(zoneErrs, errs.NewCatalogError(errs.ErrDuplicateCode).WithZone(z.Code()))
			continue
		}
		s.zoneByCode[z.Code()] = z
		s.zones = append(s.zones, z)
		if z.IsFallback() {
			fallbacks = append(fallbacks, z.Code())
		}
	}
	if len(fallbacks) != 1 {
		zoneErrs = append(zoneErrs, errs.NewCatalogError(errs.ErrNoFallbackZone).
			WithDetail("found %d fallback zones %v", len(fallbacks), fallbacks))
	}
	slices.SortFunc(s.zones, func(a, b zone.Zone) int {
		return cmp.Or(cmp.Compare(a.Priority(), b.Priority()), strings.Compare(a.Code(), b.Code()))
	})
	return errors.Join(zoneErrs...)
}

func (s *Snapshot) addCarriers(carriers []carrier.Carrier) error {
	var carrierErrs []error
	for _, c := range carriers {
		if err := c.Validate(); err != nil {
			carrierErrs = append(carrierErrs, errs.NewCatalogErrorWithCause(errs.ErrInvalidCatalogEntry, err))
			continue
		}
		if _, dup := s.carriers[c.Code()]; dup {
			carrierErrs = append(carrierErrs, errs.NewCatalogError(errs.ErrDuplicateCode).WithCarrier(c.Code()))
			continue
		}
		for _, zoneCode := range c.SupportedZones() {
			if _, ok := s.zoneByCode[zoneCode]; !ok {
				carrierErrs = append(carrierErrs, errs.NewCatalogError(errs.ErrNoZoneFound).
					WithCarrier(c.Code()).WithZone(zoneCode).WithDetail("carrier lists an unknown zone"))
			}
		}
		s.carriers[c.Code()] = c
	}
	return errors.Join(carrierErrs...)
}

func (s *Snapshot) addTables(tables []pricing.Table) error {
	var tableErrs []error
	versions := make(map[pricing.TableKey]map[int]struct{})
	for _, t := range tables {
		if err := t.Validate(); err != nil {
			tableErrs = append(tableErrs, errs.NewCatalogErrorWithCause(errs.ErrInvalidCatalogEntry, err))
			continue
		}
		id := t.ID().String()
		if _, dup := s.tables[id]; dup {
			tableErrs = append(tableErrs, errs.NewCatalogError(errs.ErrDuplicateCode).WithTable(id))
			continue
		}
		if err := s.checkTable(t, versions); err != nil {
			tableErrs = append(tableErrs, err)
			continue
		}
		s.tables[id] = t
		if !t.IsActive() {
			continue
		}
		if current, ok := s.active[t.Key()]; !ok || t.Version() > current.Version() {
			s.active[t.Key()] = t
		}
	}
	return errors.Join(tableErrs...)
}

func (s *Snapshot) checkTable(t pricing.Table, versions map[pricing.TableKey]map[int]struct{}) error {
	key := t.Key()
	id := t.ID().String()
	catalogErr := func(reason error) *errs.CatalogError {
		return errs.NewCatalogError(reason).WithTable(id).WithCarrier(key.Carrier).WithZone(key.Zone).WithService(key.Service)
	}

	if _, ok := s.carriers[key.Carrier]; !ok {
		return catalogErr(errs.ErrUnknownCarrier)
	}
	if _, ok := s.zoneByCode[key.Zone]; !ok {
		return catalogErr(errs.ErrNoZoneFound)
	}
	if _, ok := versions[key]; !ok {
		versions[key] = make(map[int]struct{})
	}
	if _, dup := versions[key][t.Version()]; dup {
		return errs.NewCatalogErrorWithCause(errs.ErrInvalidCatalogEntry,
			errs.NewVersionIsInvalidError("table version", t.Version())).
			WithTable(id).WithCarrier(key.Carrier).WithZone(key.Zone).WithService(key.Service)
	}
	versions[key][t.Version()] = struct{}{}

	if err := pricing.CheckBandCoverage(t.WeightBands()); err != nil {
		var coverage *errs.CatalogError
		if errors.As(err, &coverage) {
			coverage.WithTable(id).WithCarrier(key.Carrier).WithZone(key.Zone).WithService(key.Service)
		}
		return err
	}
	return nil
}

func (s *Snapshot) addServices(services []pricing.AdditionalService) error {
	var svcErrs []error
	seen := make(map[string]struct{}, len(services))
	for _, svc := range services {
		svc.CarrierCode = normalizeCode(svc.CarrierCode)
		svc.Code = normalizeCode(svc.Code)
		if err := svc.Validate(); err != nil {
			svcErrs = append(svcErrs, errs.NewCatalogErrorWithCause(errs.ErrInvalidCatalogEntry, err).WithCarrier(svc.CarrierCode))
			continue
		}
		if _, ok := s.carriers[svc.CarrierCode]; !ok {
			svcErrs = append(svcErrs, errs.NewCatalogError(errs.ErrUnknownCarrier).
				WithCarrier(svc.CarrierCode).WithDetail("additional service %s", svc.Code))
			continue
		}
		key := svc.CarrierCode + "/" + svc.Code
		if _, dup := seen[key]; dup {
			svcErrs = append(svcErrs, errs.NewCatalogError(errs.ErrDuplicateCode).
				WithCarrier(svc.CarrierCode).WithDetail("additional service %s", svc.Code))
			continue
		}
		seen[key] = struct{}{}
		s.services[svc.CarrierCode] = append(s.services[svc.CarrierCode], svc)
	}
	for _, list := range s.services {
		slices.SortFunc(list, func(a, b pricing.AdditionalService) int { return strings.Compare(a.Code, b.Code) })
	}
	return errors.Join(svcErrs...)
}

func (s *Snapshot) addOverrides(prices []pricing.AdditionalServicePrice) error {
	var priceErrs []error
	for _, p := range prices {
		if err := p.Validate(); err != nil {
			priceErrs = append(priceErrs, errs.NewCatalogErrorWithCause(errs.ErrInvalidCatalogEntry, err).WithTable(p.TableID))
			continue
		}
		if _, ok := s.tables[p.TableID]; !ok {
			priceErrs = append(priceErrs, errs.NewCatalogError(errs.ErrNoPricingTable).
				WithTable(p.TableID).WithDetail("price override for %s", p.ServiceCode))
			continue
		}
		s.overrides[overrideKey{tableID: p.TableID, service: normalizeCode(p.ServiceCode)}] = p.Price
	}
	return errors.Join(priceErrs...)
}

func (s *Snapshot) addPromotions(promotions []pricing.Promotion) error {
	var promoErrs []error
	for _, p := range promotions {
		p.Code = normalizeCode(p.Code)
		if err := p.Validate(); err != nil {
			promoErrs = append(promoErrs, errs.NewCatalogErrorWithCause(errs.ErrInvalidCatalogEntry, err))
			continue
		}
		if _, dup := s.promotions[p.Code]; dup {
			promoErrs = append(promoErrs, errs.NewCatalogError(errs.ErrDuplicateCode).WithDetail("promotion %s", p.Code))
			continue
		}
		s.promotions[p.Code] = p
	}
	return errors.Join(promoErrs...)
}

func sortedCarriers(all iter.Seq[carrier.Carrier], keep func(carrier.Carrier) bool) []carrier.Carrier {
	var out []carrier.Carrier
	for c := range all {
		if keep(c) {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b carrier.Carrier) int { return strings.Compare(a.Code(), b.Code()) })
	return out
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
