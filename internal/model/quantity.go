package model

// QuantityKind tells weight and volume quantities apart
type QuantityKind string

const (
	QuantityWeight QuantityKind = "weight"
	QuantityVolume QuantityKind = "volume"
)

// Quantity is a normalized measurement extracted from a query.
// Weights are kept in kilograms, volumes in milliliters.
type Quantity struct {
	Kind  QuantityKind `json:"kind"`
	Value float64      `json:"value"`
}

// Weight creates a weight quantity in kilograms
func Weight(kilograms float64) Quantity {
	return Quantity{Kind: QuantityWeight, Value: kilograms}
}

// Volume creates a volume quantity in milliliters
func Volume(milliliters float64) Quantity {
	return Quantity{Kind: QuantityVolume, Value: milliliters}
}

// Kilograms returns the weight, or 0 for volumes
func (q Quantity) Kilograms() float64 {
	if q.Kind != QuantityWeight {
		return 0
	}
	return q.Value
}

// Milliliters returns the volume, or 0 for weights
func (q Quantity) Milliliters() float64 {
	if q.Kind != QuantityVolume {
		return 0
	}
	return q.Value
}

// IsLiquid reports whether the quantity applies to liquid products
func (q Quantity) IsLiquid() bool {
	return q.Kind == QuantityVolume
}

// Field returns the document attribute holding this kind of measurement
func (q Quantity) Field() string {
	if q.IsLiquid() {
		return FieldVolumeMl
	}
	return FieldWeightKg
}
