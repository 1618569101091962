// Package cabi maps semantic types onto their C ABI representation and
// marshaling category.
package cabi

import "fmt"

// Category is the strategy used to move a value across the native boundary.
type Category uint8

const (
	CategoryVoid Category = iota
	CategoryPrimitive
	CategoryString
	CategoryReference
	CategoryNullable
)

func (c Category) String() string {
	switch c {
	case CategoryVoid:
		return "void"
	case CategoryPrimitive:
		return "primitive"
	case CategoryString:
		return "string"
	case CategoryReference:
		return "reference"
	case CategoryNullable:
		return "nullable"
	default:
		return fmt.Sprintf("Category(%d)", c)
	}
}

// IsReferenceBearing reports whether a value of this category lives on the
// managed heap and needs a frame slot while it is in flight.
func (c Category) IsReferenceBearing() bool {
	switch c {
	case CategoryString, CategoryReference, CategoryNullable:
		return true
	default:
		return false
	}
}

const (
	// ObjHeaderType is the C++ spelling of a raw managed reference.
	ObjHeaderType = "KObjHeader*"
	// ResultSlotType is the bridge out-slot that keeps a fresh result reachable.
	ResultSlotType = "KObjHeader**"
	// CStringType is the public spelling of strings and nullable strings.
	CStringType = "const char*"
)
