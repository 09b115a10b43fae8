package model

// QuantityRange is an inclusive band on weight_kg or volume_ml
type QuantityRange struct {
	Field    string  `json:"field"`
	IsLiquid bool    `json:"is_liquid"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

// Contains reports whether v lies inside the band, bounds included
func (r QuantityRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// SearchFilter is the composite predicate handed to the store.
// All set fields are combined with AND.
type SearchFilter struct {
	Text     string         `json:"text,omitempty"`
	Category *string        `json:"category,omitempty"`
	PriceMin *float64       `json:"price_min,omitempty"`
	PriceMax *float64       `json:"price_max,omitempty"`
	Quantity *QuantityRange `json:"quantity,omitempty"`
}

// IsEmpty reports whether the filter carries no constraint at all.
// An empty filter must never reach the store.
func (f *SearchFilter) IsEmpty() bool {
	if f == nil {
		return true
	}
	return f.Text == "" &&
		f.Category == nil &&
		f.PriceMin == nil &&
		f.PriceMax == nil &&
		f.Quantity == nil
}

// PriceMatches reports whether price satisfies both optional bounds
func (f *SearchFilter) PriceMatches(price float64) bool {
	if f.PriceMin != nil && price < *f.PriceMin {
		return false
	}
	if f.PriceMax != nil && price > *f.PriceMax {
		return false
	}
	return true
}
