// Package errs provides the typed errors shared by the pricing engine.
//
// Every error type follows the same pattern:
//   - a sentinel error variable (e.g. ErrValueIsRequired, ErrCatalog)
//   - a struct carrying the structured context (parameter, carrier, zone, rule)
//   - constructors with and without a cause
//   - Error() for formatting and Unwrap() so errors.Is works against the sentinel
//
// The errors fall into the groups callers branch on:
//   - validation: ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError
//     (see IsValidation); the request is malformed and calculation never starts
//   - catalog: CatalogError; the loaded catalog cannot price the request
//     (no zone, no table, unknown carrier, broken weight bands)
//   - capacity: CarrierCannotHandleError; the parcel exceeds carrier or table bounds
//   - retryable: ErrConcurrencyLimitReached and TimeoutError
package errs
