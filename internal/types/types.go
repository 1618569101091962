package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all semantic type kinds visible at the export boundary.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUnit
	KindNothing
	KindBool
	KindChar
	KindInt
	KindUint
	KindFloat
	KindVector128
	KindString
	KindClass
	KindNullable
	KindTypeParam
	KindUnresolved
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnit:
		return "unit"
	case KindNothing:
		return "nothing"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindVector128:
		return "vector128"
	case KindString:
		return "string"
	case KindClass:
		return "class"
	case KindNullable:
		return "nullable"
	case KindTypeParam:
		return "type-param"
	case KindUnresolved:
		return "unresolved"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Width captures the precision of integers/floats.
type Width uint8

const (
	WidthAny Width = 0
	Width8   Width = 8
	Width16  Width = 16
	Width32  Width = 32
	Width64  Width = 64
)

// Type is a compact descriptor for any supported type.
type Type struct {
	Kind    Kind
	Elem    TypeID // for nullable
	Width   Width  // for numeric primitives
	Payload uint32 // class / type parameter / unresolved slot
}

// Descriptor helpers ---------------------------------------------------------

// MakeInt describes a signed integer of the given width.
func MakeInt(width Width) Type {
	return Type{Kind: KindInt, Width: width}
}

// MakeUint describes an unsigned integer type.
func MakeUint(width Width) Type {
	return Type{Kind: KindUint, Width: width}
}

// MakeFloat describes a floating-point type.
func MakeFloat(width Width) Type {
	return Type{Kind: KindFloat, Width: width}
}

// MakeNullable describes T?.
func MakeNullable(elem TypeID) Type {
	return Type{Kind: KindNullable, Elem: elem}
}

// IsScalar reports whether the kind crosses the boundary by value.
func (k Kind) IsScalar() bool {
	switch k {
	case KindBool, KindChar, KindInt, KindUint, KindFloat, KindVector128:
		return true
	default:
		return false
	}
}

// IsVoid reports whether values of the kind carry no information.
func (k Kind) IsVoid() bool {
	return k == KindUnit || k == KindNothing
}
