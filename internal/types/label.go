package types

import "fmt"

// Label returns a user-friendly label for a TypeID, spelled the way graph
// files write type expressions.
func Label(typesIn *Interner, id TypeID) string {
	return labelDepth(typesIn, id, 0)
}

func labelDepth(typesIn *Interner, id TypeID, depth int) string {
	if id == NoTypeID {
		return "?"
	}
	if depth > 6 {
		return "..."
	}
	if typesIn == nil {
		return "?"
	}
	tt, ok := typesIn.Lookup(id)
	if !ok {
		return "?"
	}
	switch tt.Kind {
	case KindUnit:
		return "Unit"
	case KindNothing:
		return "Nothing"
	case KindBool:
		return "Boolean"
	case KindChar:
		return "Char"
	case KindInt:
		return formatIntType(tt.Width, true)
	case KindUint:
		return formatIntType(tt.Width, false)
	case KindFloat:
		if tt.Width == Width32 {
			return "Float"
		}
		return "Double"
	case KindVector128:
		return "Vector128"
	case KindString:
		return "String"
	case KindClass:
		info, ok := typesIn.ClassInfo(id)
		if !ok {
			return "?"
		}
		return info.FQName
	case KindNullable:
		return labelDepth(typesIn, tt.Elem, depth+1) + "?"
	case KindTypeParam, KindUnresolved:
		return typesIn.Name(id)
	default:
		return fmt.Sprintf("<%s>", tt.Kind)
	}
}

// PrimitiveName returns the boxed-class short name of a scalar type
// (Int, UByte, Boolean, ...) or "" when id is not a scalar.
func PrimitiveName(typesIn *Interner, id TypeID) string {
	tt, ok := typesIn.Lookup(id)
	if !ok || !tt.Kind.IsScalar() {
		return ""
	}
	return labelDepth(typesIn, id, 0)
}

func formatIntType(width Width, signed bool) string {
	name := ""
	switch width {
	case Width8:
		name = "Byte"
	case Width16:
		name = "Short"
	case Width32:
		name = "Int"
	default:
		name = "Long"
	}
	if !signed {
		return "U" + name
	}
	return name
}
