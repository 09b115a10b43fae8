package service

import (
	"math"
	"testing"

	"grocerysearch/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestBuildFilter_WeightQuery(t *testing.T) {
	q := model.Weight(5)

	filter, err := BuildFilter(&q, "atta", nil, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "atta", filter.Text)
	require.NotNil(t, filter.Quantity)
	assert.Equal(t, model.FieldWeightKg, filter.Quantity.Field)
	assert.False(t, filter.Quantity.IsLiquid)
	assert.InDelta(t, 4.5, filter.Quantity.Min, 1e-9)
	assert.InDelta(t, 5.5, filter.Quantity.Max, 1e-9)
	assert.Nil(t, filter.Category)
	assert.Nil(t, filter.PriceMin)
	assert.Nil(t, filter.PriceMax)
}

func TestBuildFilter_VolumeWithPriceFloor(t *testing.T) {
	q := model.Volume(1000)

	filter, err := BuildFilter(&q, "milk", nil, floatPtr(50), nil)
	require.NoError(t, err)

	require.NotNil(t, filter.Quantity)
	assert.Equal(t, model.FieldVolumeMl, filter.Quantity.Field)
	assert.True(t, filter.Quantity.IsLiquid)
	assert.InDelta(t, 900, filter.Quantity.Min, 1e-9)
	assert.InDelta(t, 1100, filter.Quantity.Max, 1e-9)
	require.NotNil(t, filter.PriceMin)
	assert.Equal(t, 50.0, *filter.PriceMin)
	assert.Nil(t, filter.PriceMax)
}

func TestBuildFilter_Category(t *testing.T) {
	tests := []struct {
		name     string
		category *string
		want     *string
	}{
		{name: "absent", category: nil, want: nil},
		{name: "empty is absent", category: strPtr(""), want: nil},
		{name: "lowercased", category: strPtr("Dairy"), want: strPtr("dairy")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := BuildFilter(nil, "milk", tt.category, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, filter.Category)
		})
	}
}

func TestBuildFilter_Empty(t *testing.T) {
	filter, err := BuildFilter(nil, "   ", nil, nil, nil)
	require.NoError(t, err)
	assert.True(t, filter.IsEmpty())

	filter, err = BuildFilter(nil, "", strPtr(""), nil, nil)
	require.NoError(t, err)
	assert.True(t, filter.IsEmpty())

	filter, err = BuildFilter(nil, "", nil, nil, floatPtr(10))
	require.NoError(t, err)
	assert.False(t, filter.IsEmpty())
}

func TestBuildFilter_InvertedPriceRangePassesThrough(t *testing.T) {
	filter, err := BuildFilter(nil, "rice", nil, floatPtr(100), floatPtr(10))
	require.NoError(t, err)
	assert.Equal(t, 100.0, *filter.PriceMin)
	assert.Equal(t, 10.0, *filter.PriceMax)
}

func TestBuildFilter_RejectsNonFinite(t *testing.T) {
	_, err := BuildFilter(nil, "rice", nil, floatPtr(math.NaN()), nil)
	assert.Error(t, err)

	_, err = BuildFilter(nil, "rice", nil, nil, floatPtr(math.Inf(1)))
	assert.Error(t, err)

	q := model.Weight(math.Inf(1))
	_, err = BuildFilter(&q, "rice", nil, nil, nil)
	assert.Error(t, err)
}

func TestFilterBuilder_CopiesPriceBounds(t *testing.T) {
	minPrice := 10.0
	filter, err := NewFilterBuilder().WithPriceRange(&minPrice, nil).Build()
	require.NoError(t, err)

	minPrice = 99
	assert.Equal(t, 10.0, *filter.PriceMin)
}
