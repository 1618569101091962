package cabi

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// reserved lists C and C++ keywords and libc names. Runtime glue is
// per-translator, see Translator.RuntimeSymbols.
var reserved = func() map[string]struct{} {
	words := []string{
		// C
		"auto", "break", "case", "char", "const", "continue", "default", "do",
		"double", "else", "enum", "extern", "float", "for", "goto", "if",
		"inline", "int", "long", "register", "restrict", "return", "short",
		"signed", "sizeof", "static", "struct", "switch", "typedef", "union",
		"unsigned", "void", "volatile", "while", "_Alignas", "_Alignof",
		"_Atomic", "_Bool", "_Complex", "_Generic", "_Imaginary", "_Noreturn",
		"_Static_assert", "_Thread_local",
		// C++
		"alignas", "alignof", "and", "and_eq", "asm", "bitand", "bitor", "bool",
		"catch", "char16_t", "char32_t", "char8_t", "class", "compl", "concept",
		"consteval", "constexpr", "constinit", "const_cast", "co_await",
		"co_return", "co_yield", "decltype", "delete", "dynamic_cast",
		"explicit", "export", "false", "friend", "mutable", "namespace", "new",
		"noexcept", "not", "not_eq", "nullptr", "operator", "or", "or_eq",
		"private", "protected", "public", "reinterpret_cast", "requires",
		"static_assert", "static_cast", "template", "this", "thread_local",
		"throw", "true", "try", "typeid", "typename", "using", "virtual",
		"wchar_t", "xor", "xor_eq",
		// preprocessor and libc names that break headers when shadowed
		"NULL", "errno", "assert", "offsetof", "stdin", "stdout", "stderr",
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}()

// IsReserved reports whether name cannot be used as a generated identifier.
func IsReserved(name string) bool {
	_, ok := reserved[name]
	return ok
}

// Identifier turns an arbitrary declaration name into a C identifier.
// The result is NFC-normalized; runes outside [A-Za-z0-9_] become '_' and a
// leading digit gets a '_' prefix. An empty name yields "_".
func Identifier(name string) string {
	name = norm.NFC.String(name)
	var b strings.Builder
	b.Grow(len(name) + 1)
	for i, r := range name {
		switch {
		case r < unicode.MaxASCII && (r == '_' || unicode.IsLetter(r)):
			b.WriteRune(r)
		case r < unicode.MaxASCII && unicode.IsDigit(r):
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

// QualifiedIdentifier flattens a dotted name: "a.b.C" becomes "a_b_C".
func QualifiedIdentifier(fqName string) string {
	parts := strings.Split(fqName, ".")
	for i, p := range parts {
		parts[i] = Identifier(p)
	}
	return strings.Join(parts, "_")
}
