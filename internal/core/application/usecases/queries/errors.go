package queries

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"shipcalc/internal/core/domain/model/quote"
)

var (
	ErrNoCarriersAvailable          = errors.New("no carriers available for zone")
	ErrAllCarrierCalculationsFailed = errors.New("all carrier calculations failed")
	ErrBulkCalculationFailed        = errors.New("bulk calculation failed for every item")
	ErrBulkAborted                  = errors.New("bulk calculation aborted")
)

// AllCarrierCalculationsFailedError lists why each eligible carrier failed.
type AllCarrierCalculationsFailedError struct {
	ZoneCode string
	Failures []quote.CarrierFailure
}

func (e *AllCarrierCalculationsFailedError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.CarrierCode, f.Err))
	}
	return fmt.Sprintf("%s in zone %s: %s", ErrAllCarrierCalculationsFailed, e.ZoneCode, strings.Join(parts, "; "))
}

func (e *AllCarrierCalculationsFailedError) Unwrap() []error {
	wrapped := []error{ErrAllCarrierCalculationsFailed}
	for _, f := range e.Failures {
		wrapped = append(wrapped, f.Err)
	}
	return wrapped
}

// BulkAbortedError is returned when stop-on-first-error tripped.
type BulkAbortedError struct {
	Index int
	Cause error
}

func (e *BulkAbortedError) Error() string {
	return fmt.Sprintf("%s: item %d failed: %v", ErrBulkAborted, e.Index, e.Cause)
}

func (e *BulkAbortedError) Unwrap() []error {
	return []error{ErrBulkAborted, e.Cause}
}

// BulkCalculationFailedError is returned when no item of a batch succeeded.
type BulkCalculationFailedError struct {
	Failures map[int]error
}

func (e *BulkCalculationFailedError) Error() string {
	indexes := make([]int, 0, len(e.Failures))
	for i := range e.Failures {
		indexes = append(indexes, i)
	}
	slices.Sort(indexes)

	parts := make([]string, 0, len(indexes))
	for _, i := range indexes {
		parts = append(parts, fmt.Sprintf("#%d: %v", i, e.Failures[i]))
	}
	return fmt.Sprintf("%s: %s", ErrBulkCalculationFailed, strings.Join(parts, "; "))
}

func (e *BulkCalculationFailedError) Unwrap() []error {
	wrapped := []error{ErrBulkCalculationFailed}
	for _, err := range e.Failures {
		wrapped = append(wrapped, err)
	}
	return wrapped
}
