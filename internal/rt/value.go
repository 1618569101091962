// Package rt is a reference model of the managed runtime primitives that
// generated adapters call into: a collected heap, stable pointers, call
// frames, thread states and exception containment. Adapter plans execute
// against it so boundary behavior can be checked without a C toolchain.
package rt

import (
	"fmt"
	"math"
)

// Ref is a managed reference. The zero Ref is null.
type Ref uint64

// StablePtr is a native-side handle that pins a managed object. The zero
// StablePtr is null.
type StablePtr uint64

// ValueKind tags a Value.
type ValueKind uint8

const (
	VKVoid ValueKind = iota
	// VKPrim is a scalar held as raw bits.
	VKPrim
	// VKCString is a native C string; Null marks a NULL pointer.
	VKCString
	// VKStable is a native kref wrapper holding a stable pointer.
	VKStable
	// VKRef is a managed reference.
	VKRef
	// VKType is a type descriptor pointer; Str holds the class name.
	VKType
)

func (k ValueKind) String() string {
	switch k {
	case VKVoid:
		return "void"
	case VKPrim:
		return "prim"
	case VKCString:
		return "cstring"
	case VKStable:
		return "stable"
	case VKRef:
		return "ref"
	case VKType:
		return "type"
	default:
		return fmt.Sprintf("ValueKind(%d)", k)
	}
}

// Value is a value on either side of the boundary.
type Value struct {
	Kind ValueKind
	// Bits holds scalars; Hi holds the upper half of a Vector128.
	Bits uint64
	Hi   uint64
	Str  string
	Null bool
	Ptr  StablePtr
	Ref  Ref
}

func Void() Value                    { return Value{} }
func Prim(bits uint64) Value         { return Value{Kind: VKPrim, Bits: bits} }
func Int(v int64) Value              { return Prim(uint64(v)) } //nolint:gosec // two's complement bits
func Uint(v uint64) Value            { return Prim(v) }
func Bool(v bool) Value              { return Prim(boolBits(v)) }
func Float32(v float32) Value        { return Prim(uint64(math.Float32bits(v))) }
func Float64(v float64) Value        { return Prim(math.Float64bits(v)) }
func Vector(lo, hi uint64) Value     { return Value{Kind: VKPrim, Bits: lo, Hi: hi} }
func CString(s string) Value         { return Value{Kind: VKCString, Str: s} }
func NullCString() Value             { return Value{Kind: VKCString, Null: true} }
func Stable(p StablePtr) Value       { return Value{Kind: VKStable, Ptr: p} }
func Managed(r Ref) Value            { return Value{Kind: VKRef, Ref: r} }
func TypeDescriptor(fq string) Value { return Value{Kind: VKType, Str: fq} }

// AsInt reinterprets the bits as a signed 64-bit integer.
func (v Value) AsInt() int64 { return int64(v.Bits) } //nolint:gosec // two's complement bits

// AsBool reports whether the low bit is set.
func (v Value) AsBool() bool { return v.Bits&1 == 1 }

// AsFloat64 reinterprets the bits as a double.
func (v Value) AsFloat64() float64 { return math.Float64frombits(v.Bits) }

// IsNull reports whether v is a null string, kref or reference.
func (v Value) IsNull() bool {
	switch v.Kind {
	case VKCString:
		return v.Null
	case VKStable:
		return v.Ptr == 0
	case VKRef:
		return v.Ref == 0
	}
	return false
}

func (v Value) String() string {
	switch v.Kind {
	case VKPrim:
		if v.Hi != 0 {
			return fmt.Sprintf("prim(%#x:%#x)", v.Hi, v.Bits)
		}
		return fmt.Sprintf("prim(%#x)", v.Bits)
	case VKCString:
		if v.Null {
			return "cstring(NULL)"
		}
		return fmt.Sprintf("cstring(%q)", v.Str)
	case VKStable:
		return fmt.Sprintf("stable(%d)", v.Ptr)
	case VKRef:
		return fmt.Sprintf("ref(%d)", v.Ref)
	case VKType:
		return fmt.Sprintf("type(%s)", v.Str)
	default:
		return v.Kind.String()
	}
}

func boolBits(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}
