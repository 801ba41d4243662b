// Package units maps unit strings to canonical dimensions and converts
// magnitudes to and from each dimension's base unit (centimeter,
// square centimeter, count).
//
// The supported-unit table is a static interface artifact: every factor
// is an exact SI/NIST-derived decimal constant, never computed at
// runtime. Conversion arithmetic is exact-decimal throughout because
// outputs feed cost accounting.
package units

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kentonium3/bake-tracker-sub000/pkg/domain/entities"
)

// UnitSpec is one published entry of the supported-unit table.
// Factor is the number of base units in one of this unit.
type UnitSpec struct {
	Name      string
	Aliases   []string
	Dimension entities.Dimension
	Factor    decimal.Decimal
}

var one = decimal.NewFromInt(1)

var specs = []UnitSpec{
	// Linear, base centimeter.
	{Name: "centimeter", Aliases: []string{"cm"}, Dimension: entities.Linear, Factor: one},
	{Name: "millimeter", Aliases: []string{"mm"}, Dimension: entities.Linear, Factor: decimal.RequireFromString("0.1")},
	{Name: "meter", Aliases: []string{"m"}, Dimension: entities.Linear, Factor: decimal.NewFromInt(100)},
	{Name: "inch", Aliases: []string{"in"}, Dimension: entities.Linear, Factor: decimal.RequireFromString("2.54")},
	{Name: "foot", Aliases: []string{"ft", "feet"}, Dimension: entities.Linear, Factor: decimal.RequireFromString("30.48")},
	{Name: "yard", Aliases: []string{"yd"}, Dimension: entities.Linear, Factor: decimal.RequireFromString("91.44")},

	// Area, base square centimeter.
	{Name: "square_centimeter", Aliases: []string{"sq_cm"}, Dimension: entities.Area, Factor: one},
	{Name: "square_millimeter", Aliases: []string{"sq_mm"}, Dimension: entities.Area, Factor: decimal.RequireFromString("0.01")},
	{Name: "square_meter", Aliases: []string{"sq_m"}, Dimension: entities.Area, Factor: decimal.NewFromInt(10000)},
	{Name: "square_inch", Aliases: []string{"sq_in"}, Dimension: entities.Area, Factor: decimal.RequireFromString("6.4516")},
	{Name: "square_foot", Aliases: []string{"sq_ft", "square_feet"}, Dimension: entities.Area, Factor: decimal.RequireFromString("929.0304")},
	{Name: "square_yard", Aliases: []string{"sq_yd"}, Dimension: entities.Area, Factor: decimal.RequireFromString("8361.2736")},

	// Count, base unit. All count-family units carry factor 1.
	{Name: "unit", Aliases: []string{"units"}, Dimension: entities.Count, Factor: one},
	{Name: "each", Aliases: []string{"ea"}, Dimension: entities.Count, Factor: one},
	{Name: "piece", Aliases: []string{"pieces", "pc", "pcs"}, Dimension: entities.Count, Factor: one},
	{Name: "count", Dimension: entities.Count, Factor: one},
}

var byName = buildIndex()

func buildIndex() map[string]UnitSpec {
	m := make(map[string]UnitSpec, len(specs)*2)
	for _, spec := range specs {
		m[spec.Name] = spec
		for _, alias := range spec.Aliases {
			m[alias] = spec
		}
	}
	return m
}

// Table returns a copy of the published supported-unit table.
// Catalog and purchase data reference these unit strings by name.
func Table() []UnitSpec {
	table := make([]UnitSpec, len(specs))
	copy(table, specs)
	for i := range table {
		table[i].Aliases = append([]string(nil), table[i].Aliases...)
	}
	return table
}

func lookup(unit string) (UnitSpec, bool) {
	spec, ok := byName[strings.ToLower(strings.TrimSpace(unit))]
	return spec, ok
}

// DimensionOf reports the dimension a unit string belongs to, or
// DimensionUnknown when the unit is not in the supported table.
// Matching is case-insensitive and recognizes aliases.
func DimensionOf(unit string) entities.Dimension {
	spec, ok := lookup(unit)
	if !ok {
		return entities.DimensionUnknown
	}
	return spec.Dimension
}

// ToBase converts a magnitude expressed in unit to the base unit of the
// expected dimension. Fails with entities.ErrUnknownUnit when the unit
// is unmapped and entities.ErrIncompatibleUnitDimension when the unit
// belongs to a different dimension.
func ToBase(magnitude decimal.Decimal, unit string, expected entities.Dimension) (decimal.Decimal, error) {
	spec, ok := lookup(unit)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", entities.ErrUnknownUnit, unit)
	}
	if spec.Dimension != expected {
		return decimal.Zero, fmt.Errorf("%w: %q is %s, expected %s",
			entities.ErrIncompatibleUnitDimension, unit, spec.Dimension, expected)
	}
	return magnitude.Mul(spec.Factor), nil
}

// FromBase is the mirror conversion: a base-unit magnitude back to the
// requested unit. Same failure modes as ToBase.
func FromBase(baseMagnitude decimal.Decimal, unit string, expected entities.Dimension) (decimal.Decimal, error) {
	spec, ok := lookup(unit)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", entities.ErrUnknownUnit, unit)
	}
	if spec.Dimension != expected {
		return decimal.Zero, fmt.Errorf("%w: %q is %s, expected %s",
			entities.ErrIncompatibleUnitDimension, unit, spec.Dimension, expected)
	}
	return baseMagnitude.Div(spec.Factor), nil
}
