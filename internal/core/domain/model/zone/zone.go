package zone

import (
	"errors"
	"regexp"
	"slices"
	"strings"

	"shipcalc/internal/core/domain/model/kernel"
	"shipcalc/internal/pkg/errs"
	"shipcalc/internal/pkg/guard"

	"golang.org/x/text/language"
)

// Type classifies a zone for reporting; it does not influence matching.
type Type string

const (
	Local         Type = "local"
	National      Type = "national"
	International Type = "international"
)

var (
	// ErrZoneIsNotConstructed is returned when a zero-value Zone is used.
	ErrZoneIsNotConstructed = errors.New("Zone must be created via NewZone constructor")
	// ErrCodeIsRequired is returned for an empty zone code.
	ErrCodeIsRequired = errs.NewValueIsRequiredError("zone code")
)

// Zone is an immutable catalog entry describing a pricing region.
type Zone struct { //nolint:recvcheck //using for validation
	code      string
	name      string
	typ       Type
	countries []string
	patterns  []*regexp.Regexp
	priority  int
	bounds    *kernel.BoundingBox
	guard     guard.ConstructorGuard
}

// NewZone builds a zone. Country codes are ISO 3166-1 alpha-2 (case-insensitive);
// patterns are regular expressions matched against the normalised postal code
// (upper case, surrounding spaces removed). bounds may be nil.
func NewZone(
	code, name string,
	typ Type,
	priority int,
	countries []string,
	patterns []string,
	bounds *kernel.BoundingBox,
) (Zone, error) {
	z := Zone{
		name:     strings.TrimSpace(name),
		priority: priority,
		guard:    guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		z.setCode(code),
		z.setType(typ),
		z.setCountries(countries),
		z.setPatterns(patterns),
		z.setBounds(bounds),
	); err != nil {
		return Zone{}, err
	}

	return z, nil
}

func (z Zone) Validate() error {
	return z.guard.Validate(ErrZoneIsNotConstructed)
}

func (z Zone) Code() string  { return z.code }
func (z Zone) Name() string  { return z.name }
func (z Zone) Type() Type    { return z.typ }
func (z Zone) Priority() int { return z.priority }

// Countries returns a copy of the upper-cased country list.
func (z Zone) Countries() []string {
	return slices.Clone(z.countries)
}

// Patterns returns the source text of the postal-code patterns.
func (z Zone) Patterns() []string {
	out := make([]string, len(z.patterns))
	for i, p := range z.patterns {
		out[i] = p.String()
	}
	return out
}

// Bounds returns the optional bounding box used for coordinate lookup.
func (z Zone) Bounds() (kernel.BoundingBox, bool) {
	if z.bounds == nil {
		return kernel.BoundingBox{}, false
	}
	return *z.bounds, true
}

// HasPatterns reports whether the zone is restricted to matching postal codes.
func (z Zone) HasPatterns() bool {
	return len(z.patterns) > 0
}

// IsFallback reports whether the zone has no country list and therefore
// catches every country no other zone claims.
func (z Zone) IsFallback() bool {
	return len(z.countries) == 0
}

// CoversCountry reports explicit membership; the fallback zone covers nothing explicitly.
func (z Zone) CoversCountry(country string) bool {
	return slices.Contains(z.countries, NormalizeCountry(country))
}

// MatchesPostalCode reports whether any pattern matches the code. A zone with a
// country list only matches codes of its own countries.
func (z Zone) MatchesPostalCode(postalCode, country string) bool {
	if len(z.patterns) == 0 {
		return false
	}
	if !z.IsFallback() && !z.CoversCountry(country) {
		return false
	}
	normalized := NormalizePostalCode(postalCode)
	for _, p := range z.patterns {
		if p.MatchString(normalized) {
			return true
		}
	}
	return false
}

// NormalizeCountry upper-cases and trims a country code.
func NormalizeCountry(country string) string {
	return strings.ToUpper(strings.TrimSpace(country))
}

// ParseCountry normalizes an ISO 3166-1 alpha-2 code and checks that it names a country.
func ParseCountry(country string) (string, error) {
	c := NormalizeCountry(country)
	region, err := language.ParseRegion(c)
	if err != nil || len(c) != 2 || !region.IsCountry() {
		return "", errs.NewValueIsInvalidErrorWithCause("country "+c, err)
	}
	return c, nil
}

// NormalizePostalCode upper-cases and trims a postal code; inner separators are kept.
func NormalizePostalCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (z *Zone) setCode(code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return ErrCodeIsRequired
	}
	z.code = code
	return nil
}

func (z *Zone) setType(typ Type) error {
	switch typ {
	case Local, National, International:
		z.typ = typ
		return nil
	default:
		return errs.NewValueIsInvalidError("zone type " + string(typ))
	}
}

func (z *Zone) setCountries(countries []string) error {
	seen := make(map[string]struct{}, len(countries))
	var errList []error
	for _, c := range countries {
		c, err := ParseCountry(c)
		if err != nil {
			errList = append(errList, err)
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		z.countries = append(z.countries, c)
	}
	slices.Sort(z.countries)
	return errors.Join(errList...)
}

func (z *Zone) setPatterns(patterns []string) error {
	var errList []error
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			errList = append(errList, errs.NewValueIsInvalidErrorWithCause("postal code pattern "+p, err))
			continue
		}
		z.patterns = append(z.patterns, re)
	}
	return errors.Join(errList...)
}

func (z *Zone) setBounds(bounds *kernel.BoundingBox) error {
	if bounds == nil {
		return nil
	}
	if err := bounds.Validate(); err != nil {
		return err
	}
	b := *bounds
	z.bounds = &b
	return nil
}
