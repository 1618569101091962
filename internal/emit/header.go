package emit

import (
	"fmt"
	"strings"

	"bridgegen/internal/adapter"
	"bridgegen/internal/export"
)

func (g *generator) header(name string) string {
	var b strings.Builder
	guard := includeGuard(name)
	p := g.prefix

	fmt.Fprintf(&b, "#ifndef %s\n#define %s\n", guard, guard)
	b.WriteString("#ifdef __cplusplus\nextern \"C\" {\n#else\n#include <stdbool.h>\n#endif\n\n")

	for _, td := range g.tr.ScalarTypedefs() {
		fmt.Fprintf(&b, "typedef %s %s;\n", td.CType, td.Name)
	}
	fmt.Fprintf(&b, "\nstruct %s_KType;\ntypedef struct %s_KType %s_KType;\n\n", p, p, p)

	for _, w := range g.wrappers() {
		fmt.Fprintf(&b, "typedef struct {\n  %s pinned;\n} %s;\n", g.tr.NativePtr(), w)
	}
	b.WriteByte('\n')

	if decls := g.fragments(HeaderDeclaration); len(decls) > 0 {
		for _, d := range decls {
			b.WriteString(d)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}

	b.WriteString("typedef struct {\n")
	for _, s := range adapter.Services(g.tr) {
		b.WriteString("  ")
		b.WriteString(s.HeaderField())
		b.WriteByte('\n')
	}
	for _, f := range g.fragments(HeaderStructField) {
		b.WriteString(f)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "} %s_ExportedSymbols;\n", p)
	fmt.Fprintf(&b, "extern %s_ExportedSymbols* %s(void);\n", p, export.SymbolsAccessor(p))

	b.WriteString("#ifdef __cplusplus\n}  /* extern \"C\" */\n#endif\n")
	fmt.Fprintf(&b, "#endif  /* %s */\n", guard)
	return b.String()
}
