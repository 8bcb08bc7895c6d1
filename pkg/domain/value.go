package domain

import "fmt"

// ValueType is the declared type of a socket or macro parameter.
type ValueType string

const (
	ValueTypeInt    ValueType = "int"
	ValueTypeFloat  ValueType = "float"
	ValueTypeFloat3 ValueType = "float3"
	ValueTypeFloat4 ValueType = "float4"
)

// Valid reports whether t is one of the four known value types.
func (t ValueType) Valid() bool {
	switch t {
	case ValueTypeInt, ValueTypeFloat, ValueTypeFloat3, ValueTypeFloat4:
		return true
	}
	return false
}

// ParseValueType converts a wire type name into a ValueType.
func ParseValueType(s string) (ValueType, error) {
	t := ValueType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown value type %q", s)
	}
	return t, nil
}

// Float3 is an ordered 3-tuple (positions, scales, bounding box corners).
type Float3 [3]float64

// Float4 is an ordered 4-tuple (rotation quaternions).
// Writes to the host use [x, y, z, w]; reads from the host return [w, x, y, z].
type Float4 [4]float64

// BoundingBox is the axis-aligned box of a scene object.
type BoundingBox struct {
	Max Float3 `json:"max"`
	Min Float3 `json:"min"`
}
