package service

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"grocerysearch/internal/model"
)

// QuantityTolerance is the relative band applied around a requested quantity.
// Packaging varies slightly, so 1kg matches anything from 0.9kg to 1.1kg.
const QuantityTolerance = 0.10

// FilterBuilder accumulates optional constraints into a SearchFilter
type FilterBuilder struct {
	filter model.SearchFilter
	errs   []error
}

// NewFilterBuilder creates an empty filter builder
func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{}
}

// WithQuantity adds a tolerance band on weight_kg or volume_ml
func (b *FilterBuilder) WithQuantity(q *model.Quantity) *FilterBuilder {
	if q == nil {
		return b
	}
	if q.Value < 0 || math.IsNaN(q.Value) || math.IsInf(q.Value, 0) {
		b.errs = append(b.errs, fmt.Errorf("invalid quantity %v", q.Value))
		return b
	}
	b.filter.Quantity = &model.QuantityRange{
		Field:    q.Field(),
		IsLiquid: q.IsLiquid(),
		Min:      q.Value * (1 - QuantityTolerance),
		Max:      q.Value * (1 + QuantityTolerance),
	}
	return b
}

// WithText adds a full-text constraint when text is non-blank
func (b *FilterBuilder) WithText(text string) *FilterBuilder {
	b.filter.Text = strings.TrimSpace(text)
	return b
}

// WithCategory adds a lowercased exact category match. Empty means no constraint.
func (b *FilterBuilder) WithCategory(category *string) *FilterBuilder {
	if category == nil || *category == "" {
		return b
	}
	lower := strings.ToLower(*category)
	b.filter.Category = &lower
	return b
}

// WithPriceRange adds independent lower and upper price bounds
func (b *FilterBuilder) WithPriceRange(minPrice, maxPrice *float64) *FilterBuilder {
	if minPrice != nil {
		if !isFinite(*minPrice) {
			b.errs = append(b.errs, fmt.Errorf("invalid min price %v", *minPrice))
		} else {
			v := *minPrice
			b.filter.PriceMin = &v
		}
	}
	if maxPrice != nil {
		if !isFinite(*maxPrice) {
			b.errs = append(b.errs, fmt.Errorf("invalid max price %v", *maxPrice))
		} else {
			v := *maxPrice
			b.filter.PriceMax = &v
		}
	}
	return b
}

// Build validates the accumulated constraints and returns the filter.
// The result may be empty; callers must check IsEmpty before querying a store.
func (b *FilterBuilder) Build() (*model.SearchFilter, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	f := b.filter
	return &f, nil
}

// BuildFilter combines an extracted quantity, the residual text, a category and
// a price range into one composite filter.
func BuildFilter(quantity *model.Quantity, residual string, category *string, minPrice, maxPrice *float64) (*model.SearchFilter, error) {
	return NewFilterBuilder().
		WithQuantity(quantity).
		WithText(residual).
		WithCategory(category).
		WithPriceRange(minPrice, maxPrice).
		Build()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
