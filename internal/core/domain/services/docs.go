// Package services provides the domain services of the pricing engine. They
// hold no state of their own and work on catalog values passed in by the
// application layer.
//
// The package includes:
//   - ZoneResolver: maps a postal code, country or coordinates to a pricing zone
//   - RuleEngine: evaluates a pricing table's rules for one parcel in a fixed stage order
//   - PromotionCombiner: picks the cheapest valid combination of promotion codes
//
// Stage order of RuleEngine.ApplyRules:
//
//	base (weight band, tiered) -> dimensional -> additional services ->
//	seasonal -> progressive / volume discounts -> promotions -> tax
//
// Amounts stay unrounded through the pipeline and are rounded to the
// currency's minor unit once, when tax is added.
package services
