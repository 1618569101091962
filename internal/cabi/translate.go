package cabi

import (
	"fmt"

	"bridgegen/internal/types"
)

// Translation is the ABI view of one semantic type.
type Translation struct {
	Type     types.TypeID
	Category Category
	// CType is the spelling used in the public header.
	CType string
	// BridgeType is the spelling used in the bridge signature.
	BridgeType string
	// Wrapper names the opaque kref struct, empty when none is needed.
	Wrapper string
	// Primitive is the boxed class short name (Int, Boolean, ...) for
	// primitives and nullable primitives.
	Primitive string
	// Elem is the non-null element of a nullable type.
	Elem types.TypeID
}

// Translator is a memoized TypeID to Translation mapping for one prefix.
type Translator struct {
	types  *types.Interner
	prefix string
	memo   map[types.TypeID]Translation
}

// NewTranslator returns a translator that spells generated names with prefix.
func NewTranslator(typesIn *types.Interner, prefix string) *Translator {
	return &Translator{
		types:  typesIn,
		prefix: prefix,
		memo:   make(map[types.TypeID]Translation, 32),
	}
}

func (t *Translator) Prefix() string         { return t.prefix }
func (t *Translator) Types() *types.Interner { return t.types }

// Category is a shortcut for Translate(id).Category.
func (t *Translator) Category(id types.TypeID) Category {
	return t.Translate(id).Category
}

// Translate maps id to its ABI representation. Type parameters, unresolved
// and invalid types never reach an exported signature; asking for them is an
// invariant violation.
func (t *Translator) Translate(id types.TypeID) Translation {
	if tr, ok := t.memo[id]; ok {
		return tr
	}
	tr := t.translate(id)
	t.memo[id] = tr
	return tr
}

func (t *Translator) translate(id types.TypeID) Translation {
	tt, ok := t.types.Lookup(id)
	if !ok {
		panic(fmt.Errorf("cabi: invalid type id %d", id))
	}
	tr := Translation{Type: id}
	switch tt.Kind {
	case types.KindUnit, types.KindNothing:
		tr.Category = CategoryVoid
		tr.CType = "void"
		tr.BridgeType = ObjHeaderType
	case types.KindBool, types.KindChar, types.KindInt, types.KindUint, types.KindFloat, types.KindVector128:
		tr.Category = CategoryPrimitive
		tr.Primitive = types.PrimitiveName(t.types, id)
		tr.CType = t.prefix + "_K" + tr.Primitive
		tr.BridgeType = tr.CType
	case types.KindString:
		tr.Category = CategoryString
		tr.CType = CStringType
		tr.BridgeType = ObjHeaderType
	case types.KindClass:
		info, _ := t.types.ClassInfo(id)
		tr.Category = CategoryReference
		tr.Wrapper = t.WrapperName(info.FQName)
		tr.CType = tr.Wrapper
		tr.BridgeType = ObjHeaderType
	case types.KindNullable:
		tr = t.translateNullable(id, tt.Elem)
	default:
		panic(fmt.Errorf("cabi: type %s (%s) has no ABI representation", types.Label(t.types, id), tt.Kind))
	}
	return tr
}

func (t *Translator) translateNullable(id, elem types.TypeID) Translation {
	inner := t.Translate(elem)
	tr := Translation{
		Type:       id,
		Category:   CategoryNullable,
		Elem:       elem,
		BridgeType: ObjHeaderType,
	}
	switch inner.Category {
	case CategoryString:
		tr.CType = CStringType
	case CategoryPrimitive:
		tr.Primitive = inner.Primitive
		tr.Wrapper = t.WrapperName(types.BuiltinPackage + "." + inner.Primitive)
		tr.CType = tr.Wrapper
	case CategoryReference:
		tr.Wrapper = inner.Wrapper
		tr.CType = inner.Wrapper
	default:
		// Unit? and Nothing? carry only the null state.
		tr.Wrapper = t.WrapperName(types.BuiltinPackage + ".Any")
		tr.CType = tr.Wrapper
	}
	return tr
}

// WrapperName spells the opaque struct for a class qualified name.
func (t *Translator) WrapperName(fqName string) string {
	return t.prefix + "_kref_" + QualifiedIdentifier(fqName)
}

// TypeDescriptor is the C spelling of a pointer to runtime type info.
func (t *Translator) TypeDescriptor() string {
	return "const " + t.prefix + "_KType*"
}

// NativePtr is the C spelling of the opaque stable pointer word.
func (t *Translator) NativePtr() string {
	return t.prefix + "_KNativePtr"
}

// Translatable reports whether id can appear in an exported signature.
func (t *Translator) Translatable(id types.TypeID) bool {
	tt, ok := t.types.Lookup(id)
	if !ok {
		return false
	}
	if tt.Kind == types.KindNullable {
		return t.Translatable(tt.Elem)
	}
	switch tt.Kind {
	case types.KindTypeParam, types.KindUnresolved, types.KindInvalid:
		return false
	}
	return true
}
