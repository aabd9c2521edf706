package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Scalar enumerates the element types the IR supports.
type Scalar uint8

const (
	// F32 is a 32-bit IEEE 754 float.
	F32 Scalar = iota
	// F64 is a 64-bit IEEE 754 float.
	F64
)

// String returns the textual spelling of the scalar type.
func (s Scalar) String() string {
	switch s {
	case F32:
		return "f32"
	case F64:
		return "f64"
	default:
		return fmt.Sprintf("Scalar(%d)", s)
	}
}

// Type is a value type: a floating-point scalar, or a fixed-width vector of
// one. Lanes == 0 denotes a scalar; vectors always have Lanes >= 1.
type Type struct {
	Elem  Scalar
	Lanes int
}

// ScalarType returns the scalar type with the given element.
func ScalarType(elem Scalar) Type {
	return Type{Elem: elem}
}

// VectorType returns the vector type with the given width and element.
func VectorType(lanes int, elem Scalar) Type {
	return Type{Elem: elem, Lanes: lanes}
}

// IsVector reports whether t is a shaped (vector) type.
func (t Type) IsVector() bool {
	return t.Lanes > 0
}

// ElemType returns the scalar type of t's elements. For a scalar type this is
// t itself.
func (t Type) ElemType() Type {
	return Type{Elem: t.Elem}
}

// String returns the textual spelling: "f32" or "vec<4xf32>".
func (t Type) String() string {
	if !t.IsVector() {
		return t.Elem.String()
	}
	return fmt.Sprintf("vec<%dx%s>", t.Lanes, t.Elem)
}

// ParseType parses a type spelling as produced by Type.String.
func ParseType(s string) (Type, error) {
	if rest, ok := strings.CutPrefix(s, "vec<"); ok {
		body, ok := strings.CutSuffix(rest, ">")
		if !ok {
			return Type{}, fmt.Errorf("malformed vector type %q", s)
		}
		lanesStr, elemStr, ok := strings.Cut(body, "x")
		if !ok {
			return Type{}, fmt.Errorf("malformed vector type %q", s)
		}
		lanes, err := strconv.Atoi(lanesStr)
		if err != nil || lanes < 1 {
			return Type{}, fmt.Errorf("invalid vector width in %q", s)
		}
		elem, err := parseScalar(elemStr)
		if err != nil {
			return Type{}, fmt.Errorf("invalid element type in %q", s)
		}
		return VectorType(lanes, elem), nil
	}
	elem, err := parseScalar(s)
	if err != nil {
		return Type{}, err
	}
	return ScalarType(elem), nil
}

func parseScalar(s string) (Scalar, error) {
	switch s {
	case "f32":
		return F32, nil
	case "f64":
		return F64, nil
	default:
		return 0, fmt.Errorf("unknown scalar type %q", s)
	}
}
