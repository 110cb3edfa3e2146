package parser

import "strings"

const (
	CategoryString Category = iota
	CategoryInt
	CategoryUint
	CategoryFloat
	CategoryBool
	CategoryTime
)

type (
	// Category groups data types by the scalar representation they decode to.
	Category int

	// DataType represents any ClickHouse data type including primitives,
	// parametric types, and complex types like arrays, tuples, and maps.
	DataType struct {
		Nullable       *NullableType       `parser:"@@"`
		LowCardinality *LowCardinalityType `parser:"| @@"`
		Array          *ArrayType          `parser:"| @@"`
		Tuple          *TupleType          `parser:"| @@"`
		Map            *MapType            `parser:"| @@"`
		Simple         *SimpleType         `parser:"| @@"`
	}

	// NullableType represents Nullable(T)
	NullableType struct {
		Type *DataType `parser:"'Nullable' '(' @@ ')'"`
	}

	// LowCardinalityType represents LowCardinality(T)
	LowCardinalityType struct {
		Type *DataType `parser:"'LowCardinality' '(' @@ ')'"`
	}

	// ArrayType represents Array(T)
	ArrayType struct {
		Type *DataType `parser:"'Array' '(' @@ ')'"`
	}

	// TupleType represents Tuple(T1, T2, ...) or Tuple(name1 T1, name2 T2, ...)
	TupleType struct {
		Elements []TupleElement `parser:"'Tuple' '(' (@@ (',' @@)*)? ')'"`
	}

	// TupleElement is a single, optionally named, tuple element
	TupleElement struct {
		Name        *string   `parser:"@(Ident | BacktickIdent)"`
		Type        *DataType `parser:"@@"`
		UnnamedType *DataType `parser:"| @@"`
	}

	// MapType represents Map(K, V)
	MapType struct {
		KeyType   *DataType `parser:"'Map' '(' @@ ','"`
		ValueType *DataType `parser:"@@ ')'"`
	}

	// SimpleType represents basic and parametric types such as String,
	// FixedString(16), Decimal(10, 2) or Enum8('a' = 1).
	SimpleType struct {
		Name       string          `parser:"@(Ident | BacktickIdent)"`
		Parameters []TypeParameter `parser:"('(' (@@ (',' @@)*)? ')')?"`
	}

	// TypeParameter is a single argument of a parametric type
	TypeParameter struct {
		Function  *ParametricFunction `parser:"@@"`
		EnumValue *EnumValue          `parser:"| @@"`
		Number    *string             `parser:"| @Number"`
		String    *string             `parser:"| @String"`
		Ident     *string             `parser:"| @(Ident | BacktickIdent)"`
	}

	// EnumValue is an Enum8/Enum16 member: 'name' = number
	EnumValue struct {
		Name  string `parser:"@String '='"`
		Value string `parser:"@Number"`
	}

	// ParametricFunction is a function call inside type parameters, as used by
	// AggregateFunction(quantiles(0.5), Float64).
	ParametricFunction struct {
		Name       string          `parser:"@(Ident | BacktickIdent)"`
		Parameters []TypeParameter `parser:"'(' (@@ (',' @@)*)? ')'"`
	}
)

// IsNullable reports whether the type admits NULL, looking through a
// LowCardinality wrapper (LowCardinality(Nullable(String)) is nullable).
func (d *DataType) IsNullable() bool {
	switch {
	case d == nil:
		return false
	case d.Nullable != nil:
		return true
	case d.LowCardinality != nil:
		return d.LowCardinality.Type.IsNullable()
	}
	return false
}

// Unwrap strips Nullable and LowCardinality wrappers.
func (d *DataType) Unwrap() *DataType {
	for d != nil {
		switch {
		case d.Nullable != nil:
			d = d.Nullable.Type
		case d.LowCardinality != nil:
			d = d.LowCardinality.Type
		default:
			return d
		}
	}
	return nil
}

// BaseName returns the name of the innermost scalar type, or Array, Tuple or
// Map for composite types.
func (d *DataType) BaseName() string {
	inner := d.Unwrap()
	switch {
	case inner == nil:
		return ""
	case inner.Array != nil:
		return "Array"
	case inner.Tuple != nil:
		return "Tuple"
	case inner.Map != nil:
		return "Map"
	case inner.Simple != nil:
		return inner.Simple.Name
	}
	return ""
}

// Category classifies the unwrapped type. Wide integers (128/256 bit),
// decimals and composite types fall into CategoryString.
func (d *DataType) Category() Category {
	name := d.BaseName()
	switch name {
	case "Int8", "Int16", "Int32", "Int64":
		return CategoryInt
	case "UInt8", "UInt16", "UInt32", "UInt64":
		return CategoryUint
	case "Float32", "Float64":
		return CategoryFloat
	case "Bool", "Boolean":
		return CategoryBool
	}

	if strings.HasPrefix(name, "Date") {
		return CategoryTime
	}

	return CategoryString
}

// String returns the SQL representation of the data type.
func (d *DataType) String() string {
	switch {
	case d == nil:
		return ""
	case d.Nullable != nil:
		return "Nullable(" + d.Nullable.Type.String() + ")"
	case d.LowCardinality != nil:
		return "LowCardinality(" + d.LowCardinality.Type.String() + ")"
	case d.Array != nil:
		return "Array(" + d.Array.Type.String() + ")"
	case d.Tuple != nil:
		return d.Tuple.String()
	case d.Map != nil:
		return "Map(" + d.Map.KeyType.String() + ", " + d.Map.ValueType.String() + ")"
	case d.Simple != nil:
		return d.Simple.String()
	}
	return ""
}

// String returns the SQL representation of a Tuple type.
func (t *TupleType) String() string {
	elements := make([]string, 0, len(t.Elements))
	for _, element := range t.Elements {
		if element.Name != nil {
			elements = append(elements, *element.Name+" "+element.Type.String())
			continue
		}
		elements = append(elements, element.UnnamedType.String())
	}

	return "Tuple(" + strings.Join(elements, ", ") + ")"
}

// String returns the SQL representation of a simple or parametric type.
func (s *SimpleType) String() string {
	if s == nil {
		return ""
	}
	if len(s.Parameters) == 0 {
		return s.Name
	}
	return s.Name + "(" + formatParameters(s.Parameters) + ")"
}

// String returns the SQL representation of a parametric function.
func (p *ParametricFunction) String() string {
	return p.Name + "(" + formatParameters(p.Parameters) + ")"
}

func formatParameters(params []TypeParameter) string {
	out := make([]string, 0, len(params))
	for i := range params {
		out = append(out, formatTypeParameter(&params[i]))
	}
	return strings.Join(out, ", ")
}

// formatTypeParameter is a function rather than a method because
// TypeParameter has a field named String.
func formatTypeParameter(t *TypeParameter) string {
	switch {
	case t.Function != nil:
		return t.Function.String()
	case t.EnumValue != nil:
		return t.EnumValue.Name + " = " + t.EnumValue.Value
	case t.String != nil:
		return *t.String
	case t.Number != nil:
		return *t.Number
	case t.Ident != nil:
		return *t.Ident
	}
	return ""
}
