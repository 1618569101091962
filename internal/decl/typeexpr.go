package decl

import (
	"fmt"
	"strings"
	"unicode"

	"bridgegen/internal/types"
)

// TypeExpr is a parsed type expression: a dotted name, optionally nullable.
// Generic instantiations are recognised only so they can be rejected.
type TypeExpr struct {
	Name     string
	Nullable bool
	Generic  bool
}

// ParseTypeExpr parses expressions such as "Int", "String?", "demo.Point",
// "T" or "List<Int>".
func ParseTypeExpr(s string) (TypeExpr, error) {
	text := strings.TrimSpace(s)
	if text == "" {
		return TypeExpr{}, fmt.Errorf("empty type expression")
	}
	var expr TypeExpr
	if strings.HasSuffix(text, "?") {
		expr.Nullable = true
		text = strings.TrimSpace(strings.TrimSuffix(text, "?"))
		if strings.HasSuffix(text, "?") {
			return TypeExpr{}, fmt.Errorf("type expression %q has more than one '?'", s)
		}
	}
	if open := strings.IndexByte(text, '<'); open >= 0 {
		if !strings.HasSuffix(text, ">") {
			return TypeExpr{}, fmt.Errorf("unbalanced type arguments in %q", s)
		}
		expr.Generic = true
		text = strings.TrimSpace(text[:open])
	}
	for _, seg := range strings.Split(text, ".") {
		if !isIdentifier(seg) {
			return TypeExpr{}, fmt.Errorf("invalid type name %q", s)
		}
	}
	expr.Name = text
	return expr, nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

func builtinType(in *types.Interner, name string) (types.TypeID, bool) {
	name = strings.TrimPrefix(name, types.BuiltinPackage+".")
	b := in.Builtins()
	switch name {
	case "Unit":
		return b.Unit, true
	case "Nothing":
		return b.Nothing, true
	case "Boolean":
		return b.Bool, true
	case "Char":
		return b.Char, true
	case "Byte":
		return b.Byte, true
	case "Short":
		return b.Short, true
	case "Int":
		return b.Int, true
	case "Long":
		return b.Long, true
	case "UByte":
		return b.UByte, true
	case "UShort":
		return b.UShort, true
	case "UInt":
		return b.UInt, true
	case "ULong":
		return b.ULong, true
	case "Float":
		return b.Float, true
	case "Double":
		return b.Double, true
	case "Vector128":
		return b.Vector128, true
	case "String":
		return b.String, true
	case "Any":
		return b.Any, true
	}
	return types.NoTypeID, false
}

// parseParam splits "name: Type".
func parseParam(s string) (string, string, error) {
	name, typ, ok := strings.Cut(s, ":")
	if !ok {
		return "", "", fmt.Errorf("parameter %q must be written as \"name: Type\"", s)
	}
	name = strings.TrimSpace(name)
	if !isIdentifier(name) {
		return "", "", fmt.Errorf("invalid parameter name in %q", s)
	}
	return name, strings.TrimSpace(typ), nil
}
