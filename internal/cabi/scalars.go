package cabi

import "bridgegen/internal/types"

// Typedef is one scalar typedef of the public header.
type Typedef struct {
	Name  string
	CType string
}

// ScalarTypedefs returns the fixed scalar typedefs in header order.
func (t *Translator) ScalarTypedefs() []Typedef {
	p := t.prefix
	return []Typedef{
		{Name: p + "_KBoolean", CType: "bool"},
		{Name: p + "_KChar", CType: "unsigned short"},
		{Name: p + "_KByte", CType: "signed char"},
		{Name: p + "_KShort", CType: "short"},
		{Name: p + "_KInt", CType: "int"},
		{Name: p + "_KLong", CType: "long long"},
		{Name: p + "_KUByte", CType: "unsigned char"},
		{Name: p + "_KUShort", CType: "unsigned short"},
		{Name: p + "_KUInt", CType: "unsigned int"},
		{Name: p + "_KULong", CType: "unsigned long long"},
		{Name: p + "_KFloat", CType: "float"},
		{Name: p + "_KDouble", CType: "double"},
		{Name: p + "_KVector128", CType: "float __attribute__ ((__vector_size__ (16)))"},
		{Name: p + "_KNativePtr", CType: "void*"},
	}
}

// BoxedPrimitives lists the primitives that get a box/unbox entry pair in
// the export table, in table order.
func BoxedPrimitives(typesIn *types.Interner) []types.TypeID {
	b := typesIn.Builtins()
	return []types.TypeID{
		b.Byte, b.Short, b.Int, b.Long, b.Float, b.Double,
		b.Char, b.Bool, b.UByte, b.UShort, b.UInt, b.ULong,
	}
}
