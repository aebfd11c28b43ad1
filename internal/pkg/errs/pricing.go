package errs

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrCatalog                 = errors.New("catalog error")
	ErrCarrierCannotHandle     = errors.New("carrier cannot handle shipment")
	ErrConcurrencyLimitReached = errors.New("concurrency limit reached")
	ErrTimeout                 = errors.New("calculation timed out")
	ErrCatalogNotLoaded        = errors.New("catalog is not loaded yet")
)

// Catalog error reasons. A CatalogError always unwraps to ErrCatalog and to one of these.
var (
	ErrNoZoneFound         = errors.New("no zone found")
	ErrNoFallbackZone      = errors.New("fallback zone is missing or ambiguous")
	ErrUnknownCarrier      = errors.New("unknown carrier")
	ErrZoneNotSupported    = errors.New("carrier does not serve zone")
	ErrNoPricingTable      = errors.New("no active pricing table")
	ErrNoMatchingBand      = errors.New("no weight band matches")
	ErrBandGap             = errors.New("weight bands leave a gap")
	ErrBandOverlap         = errors.New("weight bands overlap")
	ErrDuplicateCode       = errors.New("duplicate catalog code")
	ErrInvalidCatalogEntry = errors.New("invalid catalog entry")
)

// CatalogError describes why the loaded catalog cannot serve a request.
// Identifier fields are optional and only set when known.
type CatalogError struct {
	Reason  error
	Carrier string
	Zone    string
	Service string
	TableID string
	RuleID  string
	Detail  string
	Cause   error
}

func NewCatalogError(reason error) *CatalogError {
	return &CatalogError{Reason: reason}
}

func NewCatalogErrorWithCause(reason error, cause error) *CatalogError {
	return &CatalogError{Reason: reason, Cause: cause}
}

func (e *CatalogError) WithCarrier(code string) *CatalogError {
	e.Carrier = code
	return e
}

func (e *CatalogError) WithZone(code string) *CatalogError {
	e.Zone = code
	return e
}

func (e *CatalogError) WithService(service string) *CatalogError {
	e.Service = service
	return e
}

func (e *CatalogError) WithTable(id string) *CatalogError {
	e.TableID = id
	return e
}

func (e *CatalogError) WithRule(id string) *CatalogError {
	e.RuleID = id
	return e
}

func (e *CatalogError) WithDetail(format string, args ...any) *CatalogError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

func (e *CatalogError) Error() string {
	var b strings.Builder
	b.WriteString(ErrCatalog.Error())
	if e.Reason != nil {
		b.WriteString(": ")
		b.WriteString(e.Reason.Error())
	}

	ctx := make([]string, 0, 5)
	for _, kv := range [][2]string{
		{"carrier", e.Carrier}, {"zone", e.Zone}, {"service", e.Service},
		{"table", e.TableID}, {"rule", e.RuleID},
	} {
		if kv[1] != "" {
			ctx = append(ctx, kv[0]+"="+kv[1])
		}
	}
	if len(ctx) > 0 {
		b.WriteString(" (" + strings.Join(ctx, " ") + ")")
	}
	if e.Detail != "" {
		b.WriteString(": " + e.Detail)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, " (cause: %v)", e.Cause)
	}
	return b.String()
}

func (e *CatalogError) Unwrap() []error {
	wrapped := []error{ErrCatalog}
	if e.Reason != nil {
		wrapped = append(wrapped, e.Reason)
	}
	if e.Cause != nil {
		wrapped = append(wrapped, e.Cause)
	}
	return wrapped
}

// CarrierCannotHandleError reports a parcel attribute outside carrier or table bounds.
type CarrierCannotHandleError struct {
	Carrier   string
	ParamName string
	Value     any
	Limit     any
	RuleID    string
	// BelowMinimum is set when Value is under a lower bound rather than over an upper one.
	BelowMinimum bool
}

func NewCarrierCannotHandleError(carrier, paramName string, value, limit any) *CarrierCannotHandleError {
	return &CarrierCannotHandleError{Carrier: carrier, ParamName: paramName, Value: value, Limit: limit}
}

func NewCarrierCannotHandleBelowMinimumError(carrier, paramName string, value, limit any) *CarrierCannotHandleError {
	return &CarrierCannotHandleError{
		Carrier: carrier, ParamName: paramName, Value: value, Limit: limit, BelowMinimum: true,
	}
}

func (e *CarrierCannotHandleError) Error() string {
	relation := "exceeds limit"
	if e.BelowMinimum {
		relation = "is below minimum"
	}
	msg := fmt.Sprintf("%s: carrier %s, %s %v %s %v",
		ErrCarrierCannotHandle, e.Carrier, e.ParamName, sanitizeAny(e.Value), relation, sanitizeAny(e.Limit))
	if e.RuleID != "" {
		msg += " (rule " + e.RuleID + ")"
	}
	return msg
}

func (e *CarrierCannotHandleError) Unwrap() error {
	return ErrCarrierCannotHandle
}

// TimeoutError reports a single calculation that did not finish within its budget.
type TimeoutError struct {
	Operation string
	After     time.Duration
}

func NewTimeoutError(operation string, after time.Duration) *TimeoutError {
	return &TimeoutError{Operation: operation, After: after}
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: %s after %s", ErrTimeout, e.Operation, e.After)
}

func (e *TimeoutError) Unwrap() error {
	return ErrTimeout
}

// IsRetryable reports whether the caller may retry the same request unchanged.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrencyLimitReached) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrCatalogNotLoaded)
}
