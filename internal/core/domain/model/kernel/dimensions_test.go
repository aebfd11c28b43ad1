package kernel_test

import (
	"testing"

	"shipcalc/internal/core/domain/model/kernel"
	"shipcalc/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dims(t *testing.T, l, w, h string) kernel.Dimensions {
	t.Helper()
	d, err := kernel.NewDimensions(
		decimal.RequireFromString(l), decimal.RequireFromString(w), decimal.RequireFromString(h))
	require.NoError(t, err)
	return d
}

func TestNewDimensions(t *testing.T) {
	d := dims(t, "10", "8", "6")
	assert.Equal(t, "480", d.Volume().String())
	assert.False(t, d.IsZero())
	require.NoError(t, d.Validate())

	_, err := kernel.NewDimensions(decimal.NewFromInt(-1), decimal.NewFromInt(1), decimal.NewFromInt(-2))
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	assert.Contains(t, err.Error(), kernel.AxisLength)
	assert.Contains(t, err.Error(), kernel.AxisHeight)

	assert.True(t, kernel.NoDimensions().IsZero())

	var zero kernel.Dimensions
	assert.Equal(t, kernel.ErrDimensionsAreNotConstructed, zero.Validate())
}

func TestBillableWeight(t *testing.T) {
	tests := []struct {
		name       string
		actual     string
		dims       [3]string
		divisor    string
		volumetric string
		billable   string
	}{
		{
			name: "small parcel bills actual weight", actual: "0.5",
			dims: [3]string{"10", "8", "6"}, divisor: "5000",
			volumetric: "0.096", billable: "0.5",
		},
		{
			name: "bulky parcel bills volumetric weight", actual: "2",
			dims: [3]string{"60", "40", "40"}, divisor: "5000",
			volumetric: "19.2", billable: "19.2",
		},
		{
			name: "carrier specific divisor", actual: "2",
			dims: [3]string{"60", "40", "40"}, divisor: "6000",
			volumetric: "16", billable: "16",
		},
		{
			name: "undeclared dimensions", actual: "3",
			dims: [3]string{"0", "0", "0"}, divisor: "5000",
			volumetric: "0", billable: "3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := dims(t, tt.dims[0], tt.dims[1], tt.dims[2])
			divisor := decimal.RequireFromString(tt.divisor)

			volumetric, err := d.VolumetricWeight(divisor)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.volumetric).Equal(volumetric), volumetric.String())

			billable, err := kernel.BillableWeight(decimal.RequireFromString(tt.actual), d, divisor)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.billable).Equal(billable), billable.String())
		})
	}

	_, err := kernel.BillableWeight(decimal.NewFromInt(1), dims(t, "1", "1", "1"), decimal.Zero)
	require.ErrorIs(t, err, kernel.ErrDivisorIsInvalid)
}

func TestBillableWeight_IsMonotonic(t *testing.T) {
	divisor := kernel.DefaultVolumetricDivisor
	base := []int64{1, 20, 30, 40}

	prev, err := kernel.BillableWeight(decimal.NewFromInt(base[0]),
		dims(t, "20", "30", "40"), divisor)
	require.NoError(t, err)

	for step := int64(1); step <= 20; step++ {
		for axis := range 4 {
			grown := append([]int64(nil), base...)
			grown[axis] += step
			d, dErr := kernel.NewDimensions(
				decimal.NewFromInt(grown[1]), decimal.NewFromInt(grown[2]), decimal.NewFromInt(grown[3]))
			require.NoError(t, dErr)

			billable, bErr := kernel.BillableWeight(decimal.NewFromInt(grown[0]), d, divisor)
			require.NoError(t, bErr)
			assert.True(t, billable.GreaterThanOrEqual(prev), "axis %d step %d", axis, step)
		}
	}
}

func TestDimensions_Exceeds(t *testing.T) {
	limit := dims(t, "64", "38", "0")

	_, _, _, exceeded := dims(t, "60", "30", "200").Exceeds(limit)
	assert.False(t, exceeded, "zero limit axis is unlimited")

	axis, value, maxValue, exceeded := dims(t, "60", "41", "10").Exceeds(limit)
	require.True(t, exceeded)
	assert.Equal(t, kernel.AxisWidth, axis)
	assert.Equal(t, "41", value.String())
	assert.Equal(t, "38", maxValue.String())
}
