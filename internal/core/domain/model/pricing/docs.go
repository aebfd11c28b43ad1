// Package pricing holds the price-list side of the catalog: versioned pricing
// tables, the rules they contain, additional services and promotions.
//
// Rules form a closed set of kinds. Rule is implemented only by the types in
// this package, and evaluation switches over them exhaustively:
//
//	switch r := rule.(type) {
//	case WeightBandRule:
//	case DimensionalRule:
//	case TieredRule:
//	case ProgressiveDiscountRule:
//	case SeasonalRule:
//	case VolumeDiscountRule:
//	}
//
// Every rule carries an ID, reported in calculation trails, and a sort order,
// used both as evaluation order and as tie-break (ascending).
package pricing
