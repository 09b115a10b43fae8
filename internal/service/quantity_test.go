package service

import (
	"strings"
	"testing"

	"grocerysearch/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantityExtractor_Extract(t *testing.T) {
	extractor := NewQuantityExtractor(nil)

	tests := []struct {
		name     string
		raw      string
		want     *model.Quantity
		residual string
	}{
		{name: "kilograms", raw: "atta 5kg", want: &model.Quantity{Kind: model.QuantityWeight, Value: 5}, residual: "atta"},
		{name: "grams", raw: "sugar 500g", want: &model.Quantity{Kind: model.QuantityWeight, Value: 0.5}, residual: "sugar"},
		{name: "liters", raw: "milk 1l", want: &model.Quantity{Kind: model.QuantityVolume, Value: 1000}, residual: "milk"},
		{name: "milliliters", raw: "oil 250ml", want: &model.Quantity{Kind: model.QuantityVolume, Value: 250}, residual: "oil"},
		{name: "decimal", raw: "rice 1.5kg", want: &model.Quantity{Kind: model.QuantityWeight, Value: 1.5}, residual: "rice"},
		{name: "trailing dot", raw: "rice 2.kg", want: &model.Quantity{Kind: model.QuantityWeight, Value: 2}, residual: "rice"},
		{name: "uppercase unit", raw: "Milk 2L", want: &model.Quantity{Kind: model.QuantityVolume, Value: 2000}, residual: "Milk"},
		{name: "space before unit", raw: "juice 500 ml", want: &model.Quantity{Kind: model.QuantityVolume, Value: 500}, residual: "juice"},
		{name: "token at start", raw: "1kg atta", want: &model.Quantity{Kind: model.QuantityWeight, Value: 1}, residual: "atta"},
		{name: "token in middle", raw: "amul 500ml milk", want: &model.Quantity{Kind: model.QuantityVolume, Value: 500}, residual: "amul  milk"},
		{name: "first token wins", raw: "rice 5kg 1l", want: &model.Quantity{Kind: model.QuantityWeight, Value: 5}, residual: "rice  1l"},
		{name: "devanagari digits", raw: "आटा ५kg", want: &model.Quantity{Kind: model.QuantityWeight, Value: 5}, residual: "आटा"},
		{name: "devanagari decimal", raw: "चावल १.५ kg", want: &model.Quantity{Kind: model.QuantityWeight, Value: 1.5}, residual: "चावल"},
		{name: "no-break space before unit", raw: "milk 500\u00a0ml", want: &model.Quantity{Kind: model.QuantityVolume, Value: 500}, residual: "milk"},
		{name: "unit is a word prefix", raw: "1 lemon", want: &model.Quantity{Kind: model.QuantityVolume, Value: 1000}, residual: "emon"},
		{name: "quantity only", raw: "5kg", want: &model.Quantity{Kind: model.QuantityWeight, Value: 5}, residual: ""},
		{name: "no unit", raw: "bread", want: nil, residual: "bread"},
		{name: "unit letters without number", raw: "milk", want: nil, residual: "milk"},
		{name: "empty", raw: "", want: nil, residual: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, residual := extractor.Extract(tt.raw)
			assert.Equal(t, tt.residual, residual)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want.Kind, got.Kind)
			assert.InDelta(t, tt.want.Value, got.Value, 1e-9)
		})
	}
}

func TestQuantityExtractor_MalformedNumberIsIgnored(t *testing.T) {
	extractor := NewQuantityExtractor(nil)
	raw := "flour " + strings.Repeat("9", 400) + "kg"

	got, residual := extractor.Extract(raw)
	assert.Nil(t, got)
	assert.Equal(t, raw, residual)
}

func TestQuantityExtractor_NoUnitIsUntouched(t *testing.T) {
	extractor := NewQuantityExtractor(nil)
	// no unit letters at all, so the query is never trimmed
	raw := "  tea 100  "

	got, residual := extractor.Extract(raw)
	assert.Nil(t, got)
	assert.Equal(t, raw, residual)
}

func TestQuantityExtractor_Idempotent(t *testing.T) {
	extractor := NewQuantityExtractor(nil)

	q, residual := extractor.Extract("atta 5kg")
	require.NotNil(t, q)

	again, residual2 := extractor.Extract(residual)
	assert.Nil(t, again)
	assert.Equal(t, residual, residual2)
}

func TestParseQuantity(t *testing.T) {
	_, err := parseQuantity("1", "oz")
	assert.ErrorIs(t, err, errUnknownUnit)

	_, err = parseQuantity("abc", "kg")
	assert.ErrorIs(t, err, errMalformedNumber)

	q, err := parseQuantity("250", "G")
	require.NoError(t, err)
	assert.InDelta(t, 0.25, q.Kilograms(), 1e-9)
}

func TestAsciiDigits(t *testing.T) {
	assert.Equal(t, "1.5", asciiDigits("1.5"))
	assert.Equal(t, "5", asciiDigits("५"))
	assert.Equal(t, "250", asciiDigits("২৫০"))
	assert.Equal(t, "42", asciiDigits("٤٢"))
	// mathematical bold zero, double-struck nine
	assert.Equal(t, "09", asciiDigits("\U0001D7CE\U0001D7E1"))
	assert.Equal(t, "kg", asciiDigits("kg"))
}
