package entities

import "fmt"

// ProductID uniquely identifies a catalog item stocked by inventory lots.
type ProductID string

// Dimension represents the measurement family a unit belongs to.
// Conversions across dimensions are invalid.
type Dimension int

const (
	DimensionUnknown Dimension = iota
	Linear
	Area
	Count
)

// String method for Dimension enum
func (d Dimension) String() string {
	switch d {
	case Linear:
		return "linear"
	case Area:
		return "area"
	case Count:
		return "count"
	default:
		return "unknown"
	}
}

// BaseUnit returns the canonical unit all quantities of this dimension
// are normalized to internally.
func (d Dimension) BaseUnit() string {
	switch d {
	case Linear:
		return "centimeter"
	case Area:
		return "square_centimeter"
	case Count:
		return "unit"
	default:
		return ""
	}
}

// ParseDimension maps a stored dimension name back to its enum value.
func ParseDimension(s string) (Dimension, error) {
	switch s {
	case "linear":
		return Linear, nil
	case "area":
		return Area, nil
	case "count":
		return Count, nil
	default:
		return DimensionUnknown, fmt.Errorf("invalid dimension %q", s)
	}
}

// ProductKind separates the two parallel inventory domains: raw-ingredient
// stock and packaging/material stock. Informational only.
type ProductKind int

const (
	Ingredient ProductKind = iota
	Material
)

// String method for ProductKind enum
func (k ProductKind) String() string {
	switch k {
	case Ingredient:
		return "ingredient"
	case Material:
		return "material"
	default:
		return "unknown"
	}
}

// ParseProductKind maps a stored kind name back to its enum value.
func ParseProductKind(s string) (ProductKind, error) {
	switch s {
	case "ingredient":
		return Ingredient, nil
	case "material":
		return Material, nil
	default:
		return Ingredient, fmt.Errorf("invalid product kind %q", s)
	}
}

// Product is the catalog view this core consumes: identity plus the
// canonical dimension used to validate incoming units.
type Product struct {
	ID        ProductID
	Name      string
	Kind      ProductKind
	Dimension Dimension
}

// NewProduct creates a validated Product
func NewProduct(id ProductID, name string, kind ProductKind, dimension Dimension) (*Product, error) {
	if id == "" {
		return nil, fmt.Errorf("product ID cannot be empty")
	}
	if name == "" {
		return nil, fmt.Errorf("product name cannot be empty")
	}
	if dimension == DimensionUnknown {
		return nil, fmt.Errorf("product %s must have a known dimension", id)
	}
	return &Product{
		ID:        id,
		Name:      name,
		Kind:      kind,
		Dimension: dimension,
	}, nil
}
