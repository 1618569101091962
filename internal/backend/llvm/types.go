package llvm

import (
	"fmt"

	"bridgegen/internal/backend"
	"bridgegen/internal/cabi"
)

func llvmType(v backend.Value) (string, error) {
	switch v.Category {
	case cabi.CategoryPrimitive:
		return primitiveType(v.Primitive)
	case cabi.CategoryVoid, cabi.CategoryString, cabi.CategoryReference, cabi.CategoryNullable:
		// void values still travel as the unit singleton
		return "ptr", nil
	default:
		return "", fmt.Errorf("unsupported value category %s", v.Category)
	}
}

func resultType(v backend.Value) (string, error) {
	if v.Category == cabi.CategoryVoid {
		return "void", nil
	}
	return llvmType(v)
}

func primitiveType(name string) (string, error) {
	switch name {
	case "Boolean":
		return "i1", nil
	case "Byte", "UByte":
		return "i8", nil
	case "Short", "UShort", "Char":
		return "i16", nil
	case "Int", "UInt":
		return "i32", nil
	case "Long", "ULong":
		return "i64", nil
	case "Float":
		return "float", nil
	case "Double":
		return "double", nil
	case "Vector128":
		return "<4 x float>", nil
	default:
		return "", fmt.Errorf("unknown primitive %q", name)
	}
}
