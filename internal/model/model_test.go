package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchFilter_IsEmpty(t *testing.T) {
	category := "dairy"
	price := 10.0

	var nilFilter *SearchFilter
	assert.True(t, nilFilter.IsEmpty())
	assert.True(t, (&SearchFilter{}).IsEmpty())
	assert.False(t, (&SearchFilter{Text: "milk"}).IsEmpty())
	assert.False(t, (&SearchFilter{Category: &category}).IsEmpty())
	assert.False(t, (&SearchFilter{PriceMax: &price}).IsEmpty())
	assert.False(t, (&SearchFilter{Quantity: &QuantityRange{}}).IsEmpty())
}

func TestQuantityRange_Contains(t *testing.T) {
	r := QuantityRange{Min: 900, Max: 1100}

	assert.True(t, r.Contains(900))
	assert.True(t, r.Contains(1100))
	assert.False(t, r.Contains(899.99))
	assert.False(t, r.Contains(1100.01))
}

func TestQuantity(t *testing.T) {
	w := Weight(0.5)
	assert.Equal(t, 0.5, w.Kilograms())
	assert.Zero(t, w.Milliliters())
	assert.False(t, w.IsLiquid())
	assert.Equal(t, FieldWeightKg, w.Field())

	v := Volume(250)
	assert.Equal(t, 250.0, v.Milliliters())
	assert.Zero(t, v.Kilograms())
	assert.True(t, v.IsLiquid())
	assert.Equal(t, FieldVolumeMl, v.Field())
}

func TestDocument_Accessors(t *testing.T) {
	doc := Document{
		"price":       "42.5",
		"weight_kg":   1.0,
		"is_liquid":   "true",
		"category":    "dairy",
		"search_tags": []interface{}{"milk", "toned", 3},
	}

	price, ok := doc.Float("price")
	require.True(t, ok)
	assert.Equal(t, 42.5, price)

	_, ok = doc.Float("missing")
	assert.False(t, ok)

	liquid, ok := doc.Bool("is_liquid")
	require.True(t, ok)
	assert.True(t, liquid)

	category, ok := doc.StringValue("category")
	require.True(t, ok)
	assert.Equal(t, "dairy", category)

	assert.Equal(t, "milk toned", doc.Text("search_tags"))
	assert.Equal(t, "", doc.Text("brand_name"))
}

func TestDocument_ValueScan(t *testing.T) {
	doc := Document{"item_name": "Bread", "price": 40.0}

	v, err := doc.Value()
	require.NoError(t, err)

	var scanned Document
	require.NoError(t, scanned.Scan([]byte(v.(string))))
	assert.Equal(t, doc, scanned)

	require.NoError(t, scanned.Scan(nil))
	assert.Nil(t, scanned)

	assert.Error(t, scanned.Scan(42))
}

func TestNormalizeID(t *testing.T) {
	id := uuid.MustParse("3f2504e0-4f89-11d3-9a0c-0305e82c3301")

	tests := []struct {
		name string
		in   interface{}
		want string
		ok   bool
	}{
		{name: "nil", in: nil, ok: false},
		{name: "string", in: "abc", want: "abc", ok: true},
		{name: "bytes", in: []byte("abc"), want: "abc", ok: true},
		{name: "int64", in: int64(42), want: "42", ok: true},
		{name: "int", in: 7, want: "7", ok: true},
		{name: "json number", in: float64(12), want: "12", ok: true},
		{name: "extended json oid", in: map[string]interface{}{"$oid": "65f1c0ffee"}, want: "65f1c0ffee", ok: true},
		{name: "stringer", in: id, want: id.String(), ok: true},
		{name: "other", in: true, want: "true", ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeID(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDocument_ID(t *testing.T) {
	id, ok := Document{"_id": int64(3)}.ID()
	require.True(t, ok)
	assert.Equal(t, "3", id)

	_, ok = Document{"item_name": "x"}.ID()
	assert.False(t, ok)
}
