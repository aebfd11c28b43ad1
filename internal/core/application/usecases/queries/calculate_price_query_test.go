package queries_test

import (
	"testing"

	"shipcalc/internal/core/application/usecases/queries"
	"shipcalc/internal/core/domain/model/catalog/catalogtest"
	"shipcalc/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCalculatePriceQuery_Valid(t *testing.T) {
	query, err := queries.NewCalculatePriceQuery(parcel("INPOST", "LOCAL", "0.5"), catalogtest.AsOf)
	require.NoError(t, err)
	require.NoError(t, query.Validate())
	assert.Equal(t, "INPOST", query.Request().CarrierCode)
	assert.Equal(t, catalogtest.AsOf, query.AsOf())
}

func TestNewCalculatePriceQuery_Invalid(t *testing.T) {
	t.Run("carrier is required", func(t *testing.T) {
		_, err := queries.NewCalculatePriceQuery(parcel("", "LOCAL", "0.5"), catalogtest.AsOf)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("weight must be positive", func(t *testing.T) {
		_, err := queries.NewCalculatePriceQuery(parcel("INPOST", "LOCAL", "0"), catalogtest.AsOf)
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
		assert.True(t, errs.IsValidation(err))
	})
}

func TestCalculatePriceQuery_NotConstructedViaConstructor(t *testing.T) {
	query := queries.CalculatePriceQuery{}
	err := query.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, queries.ErrCalculatePriceQueryIsNotConstructed)
}
