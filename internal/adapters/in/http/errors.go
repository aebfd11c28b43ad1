package http

import (
	"context"
	"errors"
	"net/http"

	"shipcalc/internal/core/application/usecases/queries"
	"shipcalc/internal/pkg/errs"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// statusClientClosedRequest is nginx's code for a request the client gave up on.
const statusClientClosedRequest = 499

// statusOf maps an application error to an HTTP status.
//
//	validation                       -> 400
//	catalog, cannot handle, failed   -> 422
//	concurrency limit, timeout,
//	catalog not loaded               -> 503
func statusOf(err error) int {
	var validationErrs validator.ValidationErrors
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.Code
	// Aggregates wrap every per-item cause; a single timeout among them
	// does not make the whole outcome retryable.
	case errors.Is(err, queries.ErrAllCarrierCalculationsFailed),
		errors.Is(err, queries.ErrBulkCalculationFailed):
		return http.StatusUnprocessableEntity
	case errs.IsRetryable(err), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.As(err, &validationErrs), errs.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrCatalog),
		errors.Is(err, errs.ErrCarrierCannotHandle),
		errors.Is(err, queries.ErrNoCarriersAvailable),
		errors.Is(err, queries.ErrBulkAborted):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c echo.Context, operation string, err error) error {
	code := statusOf(err)
	entry := s.logger.With("operation", operation, "status", code, "error", err)
	if code >= http.StatusInternalServerError && code != http.StatusServiceUnavailable {
		entry.ErrorContext(c.Request().Context(), "request failed")
	} else {
		entry.WarnContext(c.Request().Context(), "request rejected")
	}

	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = http.StatusText(code)
	}
	return c.JSON(code, ErrorDTO{Code: code, Message: msg})
}
