// Package quote holds the transient values of a price calculation: the
// request, the rule context handed to the rule engine, the engine's result and
// the shapes returned by single, comparison and bulk calculations.
//
// Nothing here is persisted. All amounts are decimal.Decimal in the currency
// of the pricing table that produced them.
package quote
