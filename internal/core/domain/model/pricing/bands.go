package pricing

import (
	"slices"

	"shipcalc/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// CheckBandCoverage verifies that the bands, taken together, cover [0, inf)
// exactly once. Bands are compared by their lower bound.
func CheckBandCoverage(bands []WeightBandRule) error {
	if len(bands) == 0 {
		return errs.NewCatalogError(errs.ErrNoMatchingBand).WithDetail("table has no weight bands")
	}

	sorted := slices.Clone(bands)
	slices.SortFunc(sorted, func(a, b WeightBandRule) int {
		return a.Range.From.Cmp(b.Range.From)
	})

	covered := decimal.Zero
	for i, band := range sorted {
		switch band.Range.From.Cmp(covered) {
		case 1:
			return errs.NewCatalogError(errs.ErrBandGap).WithRule(band.ID).
				WithDetail("nothing covers [%s, %s)", covered, band.Range.From)
		case -1:
			return errs.NewCatalogError(errs.ErrBandOverlap).WithRule(band.ID).
				WithDetail("band %s starts below %s", band.Range, covered)
		}
		if band.Range.IsUnbounded() {
			if i != len(sorted)-1 {
				return errs.NewCatalogError(errs.ErrBandOverlap).WithRule(sorted[i+1].ID).
					WithDetail("band follows unbounded band %s", band.ID)
			}
			return nil
		}
		covered = band.Range.To.Decimal
	}

	return errs.NewCatalogError(errs.ErrBandGap).WithRule(sorted[len(sorted)-1].ID).
		WithDetail("nothing covers [%s, inf)", covered)
}
