package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"shipcalc/internal/core/application/usecases/queries"
	"shipcalc/internal/core/domain/model/quote"
	"shipcalc/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	timeout := errs.NewTimeoutError("calculate_price", time.Second)
	unknown := errs.NewCatalogError(errs.ErrUnknownCarrier)

	tests := map[string]struct {
		err  error
		want int
	}{
		"timeout": {timeout, http.StatusServiceUnavailable},
		"catalog not loaded": {
			errs.ErrCatalogNotLoaded, http.StatusServiceUnavailable,
		},
		"failed batch with one timeout": {
			&queries.BulkCalculationFailedError{Failures: map[int]error{0: timeout, 1: unknown}},
			http.StatusUnprocessableEntity,
		},
		"failed comparison with one timeout": {
			&queries.AllCarrierCalculationsFailedError{
				ZoneCode: "LOCAL",
				Failures: []quote.CarrierFailure{
					{CarrierCode: "INPOST", Err: timeout},
					{CarrierCode: "DPD", Err: unknown},
				},
			},
			http.StatusUnprocessableEntity,
		},
		"aborted on timeout": {
			&queries.BulkAbortedError{Index: 0, Cause: timeout}, http.StatusServiceUnavailable,
		},
		"validation":      {errs.NewValueIsRequiredError("items"), http.StatusBadRequest},
		"unknown carrier": {unknown, http.StatusUnprocessableEntity},
		"canceled":        {context.Canceled, statusClientClosedRequest},
		"unexpected":      {assert.AnError, http.StatusInternalServerError},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusOf(tt.err))
		})
	}
}
