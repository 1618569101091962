package emit

import (
	"regexp"
	"strings"
	"testing"

	"bridgegen/internal/adapter"
	"bridgegen/internal/backend"
	"bridgegen/internal/cabi"
	"bridgegen/internal/decl"
	"bridgegen/internal/diag"
	"bridgegen/internal/export"
	"bridgegen/internal/target"
)

const demoGraph = `
module = "demo"

[[package]]
name = ""

  [[package.decl]]
  kind = "fun"
  name = "add"
  params = ["a: Int", "b: Int"]
  returns = "Int"

  [[package.decl]]
  kind = "object"
  name = "Counter"

    [[package.decl.member]]
    kind = "fun"
    name = "next"
    returns = "Int"

[[package]]
name = "geo"

  [[package.decl]]
  kind = "class"
  name = "Point"

    [[package.decl.member]]
    kind = "ctor"
    name = "Point"
    params = ["x: Double"]

    [[package.decl.member]]
    kind = "fun"
    name = "get"
    returns = "Double"

    [[package.decl.member]]
    kind = "val"
    name = "label"
    returns = "String?"

    [[package.decl.member]]
    kind = "fun"
    name = "get_label"
    returns = "Int"

  [[package.decl]]
  kind = "fun"
  name = "origin"
  returns = "geo.Point"
  extern_name = "geo_origin"

  [[package.decl]]
  kind = "fun"
  name = "first"
  type_params = ["T"]
  params = ["items: T"]
  returns = "T"

[[package]]
name = "empty.inner"

  [[package.decl]]
  kind = "fun"
  name = "secret"
  modifiers = ["private"]
`

func generate(t *testing.T, graph string, platform target.Platform) *Output {
	t.Helper()
	bag := diag.NewBag(32)
	mod, err := decl.Parse([]byte(graph), decl.FormatTOML, diag.BagReporter{Bag: bag})
	if err != nil || bag.HasErrors() {
		t.Fatalf("load failed: %v\n%s", err, bag.FormatShort(true))
	}
	root := export.Build(mod, cabi.NewTranslator(mod.Types, "demo"), nil)
	set, err := adapter.Build(root, &backend.Recorder{})
	if err != nil {
		t.Fatalf("adapter build failed: %v", err)
	}
	out, err := Generate(root, set, target.For(platform))
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	return out
}

func mustContain(t *testing.T, what, text string, wants ...string) {
	t.Helper()
	for _, w := range wants {
		if !strings.Contains(text, w) {
			t.Fatalf("%s missing %q:\n%s", what, w, text)
		}
	}
}

func TestHeaderLayout(t *testing.T) {
	out := generate(t, demoGraph, target.Linux)
	if out.HeaderName != "demo_api.h" || out.SourceName != "demo_api.cpp" {
		t.Fatalf("unexpected names %q %q", out.HeaderName, out.SourceName)
	}
	h := out.Header
	mustContain(t, "header", h,
		"#ifndef DEMO_API_H",
		"#include <stdbool.h>",
		"typedef int demo_KInt;",
		"typedef void* demo_KNativePtr;",
		"typedef struct demo_KType demo_KType;",
		"typedef struct {\n  demo_KNativePtr pinned;\n} demo_kref_lang_Byte;",
		"} demo_kref_geo_Point;",
		"extern demo_kref_geo_Point geo_origin();",
		"  void (*DisposeStablePointer)(demo_KNativePtr ptr);",
		"demo_KInt (*add)(demo_KInt a, demo_KInt b);",
		"const demo_KType* (*_type)(void);",
		"demo_kref_Counter (*_instance)();",
		"demo_KInt (*next)();",
		"demo_kref_geo_Point (*Point)(demo_KDouble x);",
		"} exports;",
		"} demo_ExportedSymbols;",
		"extern demo_ExportedSymbols* demo_symbols(void);",
	)
	if strings.Index(h, "demo_kref_lang_Byte;") > strings.Index(h, "demo_kref_geo_Point;") {
		t.Fatalf("service wrappers must come first")
	}
	if strings.Contains(h, "first") || strings.Contains(h, "empty") || strings.Contains(h, "secret") {
		t.Fatalf("ineligible declarations and empty scopes must not appear:\n%s", h)
	}
}

func TestNameCollisionsAreSuffixed(t *testing.T) {
	out := generate(t, demoGraph, target.Linux)
	mustContain(t, "header", out.Header,
		"demo_KDouble (*get)(demo_kref_geo_Point thiz);",
		"demo_KInt (*get_label)(demo_kref_geo_Point thiz);",
		"const char* (*get_label_)(demo_kref_geo_Point thiz);",
	)
}

var (
	fieldRe = regexp.MustCompile(`\(\*(\w+)\)\(`)
	initRe  = regexp.MustCompile(`/\* (\w+) = \*/ \w+,`)
)

// The aggregate declaration and its initializer must list the same entries
// in the same order.
func TestHeaderAndInitializerAgree(t *testing.T) {
	out := generate(t, demoGraph, target.Linux)
	var fields, inits []string
	for _, m := range fieldRe.FindAllStringSubmatch(aggregate(t, out.Header, "typedef struct {\n  void (*DisposeStablePointer)"), -1) {
		fields = append(fields, m[1])
	}
	for _, m := range initRe.FindAllStringSubmatch(aggregate(t, out.Source, "static demo_ExportedSymbols __exportedSymbols"), -1) {
		inits = append(inits, m[1])
	}
	if len(fields) == 0 || len(fields) != len(inits) {
		t.Fatalf("field count %d != initializer count %d", len(fields), len(inits))
	}
	for i := range fields {
		if fields[i] != inits[i] {
			t.Fatalf("entry %d: field %q, initializer %q", i, fields[i], inits[i])
		}
	}
}

func aggregate(t *testing.T, text, start string) string {
	t.Helper()
	i := strings.Index(text, start)
	if i < 0 {
		t.Fatalf("aggregate %q not found", start)
	}
	rest := text[i:]
	end := strings.Index(rest, "\n}")
	if end < 0 {
		t.Fatalf("aggregate %q not terminated", start)
	}
	return rest[:end]
}

func TestSourceLayout(t *testing.T) {
	out := generate(t, demoGraph, target.Linux)
	mustContain(t, "source", out.Source,
		`#include "demo_api.h"`,
		"struct KObjHeader;",
		"KObjHeader* Runtime_boxInt(demo_KInt value, KObjHeader** result);",
		"class ScopedRunnableState {",
		"template <int N>",
		"static demo_kref_lang_Int demo_createNullableInt(demo_KInt value) {",
		`extern "C" demo_kref_geo_Point geo_origin() {`,
		"/* exports = */ {",
		"/* root = */ {",
		"/* geo = */ {",
		`extern "C" demo_ExportedSymbols* demo_symbols(void) {`,
	)
	if out.ExportList != "" || out.ExportListName != "" {
		t.Fatalf("linux needs no export list")
	}
	if len(out.Files()) != 2 {
		t.Fatalf("expected two files, got %d", len(out.Files()))
	}
}

func TestWindowsExportList(t *testing.T) {
	out := generate(t, demoGraph, target.Windows)
	if out.ExportListName != "demo.def" {
		t.Fatalf("unexpected export list name %q", out.ExportListName)
	}
	if want := "EXPORTS\n    demo_symbols\n    geo_origin\n"; out.ExportList != want {
		t.Fatalf("export list = %q, want %q", out.ExportList, want)
	}
	if len(out.Files()) != 3 {
		t.Fatalf("expected three files")
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	a := generate(t, demoGraph, target.Linux)
	b := generate(t, demoGraph, target.Linux)
	if a.Header != b.Header || a.Source != b.Source {
		t.Fatalf("output must not depend on run")
	}
}

func TestEmptyModule(t *testing.T) {
	out := generate(t, "module = \"nothing\"\n", target.Linux)
	if strings.Contains(out.Header, "exports;") {
		t.Fatalf("empty tree must not produce a scope struct:\n%s", out.Header)
	}
	mustContain(t, "header", out.Header, "} demo_ExportedSymbols;", "(*IsInstance)(")
	if len(out.Symbols) != 1 || out.Symbols[0] != "demo_symbols" {
		t.Fatalf("unexpected symbols %v", out.Symbols)
	}
}

func TestFragmentsPerKind(t *testing.T) {
	bag := diag.NewBag(8)
	mod, err := decl.Parse([]byte(demoGraph), decl.FormatTOML, diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatal(err)
	}
	root := export.Build(mod, cabi.NewTranslator(mod.Types, "demo"), nil)
	set, err := adapter.Build(root, &backend.Recorder{})
	if err != nil {
		t.Fatal(err)
	}
	decls := Fragments(root, set, HeaderDeclaration)
	if len(decls) != 1 || decls[0] != "extern demo_kref_geo_Point geo_origin();" {
		t.Fatalf("unexpected declarations %v", decls)
	}
	fields := Fragments(root, set, HeaderStructField)
	inits := Fragments(root, set, SourceStructInitializer)
	if len(fields) != len(inits) {
		t.Fatalf("field and initializer lines must pair up: %d vs %d", len(fields), len(inits))
	}
	if fields[0] != "  struct {" || fields[len(fields)-1] != "  } exports;" {
		t.Fatalf("unexpected framing %q ... %q", fields[0], fields[len(fields)-1])
	}
	if n := len(Fragments(root, set, SourceDeclaration)); n != len(set.Plans) {
		t.Fatalf("expected one definition per element, got %d", n)
	}
}

var declNameRe = regexp.MustCompile(`(\w+)\(`)

func TestGlueDeclarationsAreReserved(t *testing.T) {
	mod, err := decl.Parse([]byte(demoGraph), decl.FormatTOML, diag.NopReporter{})
	if err != nil {
		t.Fatal(err)
	}
	tr := cabi.NewTranslator(mod.Types, "demo")
	reserved := make(map[string]bool)
	for _, s := range tr.RuntimeSymbols() {
		reserved[s] = true
	}
	for _, l := range append(append([]string(nil), runtimeGlue...), adapter.BoxGlue(tr)...) {
		m := declNameRe.FindStringSubmatch(l)
		if m == nil {
			t.Fatalf("cannot find the declared name in %q", l)
		}
		if !reserved[m[1]] {
			t.Fatalf("glue %s is not reserved for short names", m[1])
		}
	}
}

const glueClashGraph = `
module = "demo"

[[package]]
name = ""

  [[package.decl]]
  kind = "fun"
  name = "check"
  params = ["a: Int"]
  returns = "Int"
  extern_name = "IsInstance"

  [[package.decl]]
  kind = "fun"
  name = "enter"
  extern_name = "EnterFrame"
`

func TestShortNamesDoNotRedefineGlue(t *testing.T) {
	out := generate(t, glueClashGraph, target.Windows)
	mustContain(t, "source", out.Source,
		"bool IsInstance(const KObjHeader* obj, const KTypeInfo* type);",
		`extern "C" demo_KInt IsInstance_(demo_KInt a) {`,
		`extern "C" void EnterFrame_() {`,
	)
	for _, bad := range []string{"IsInstance(demo_KInt", `extern "C" void EnterFrame() {`} {
		if strings.Contains(out.Source, bad) {
			t.Fatalf("source redefines runtime glue with %q:\n%s", bad, out.Source)
		}
	}
	if want := "EXPORTS\n    EnterFrame_\n    IsInstance_\n    demo_symbols\n"; out.ExportList != want {
		t.Fatalf("export list = %q, want %q", out.ExportList, want)
	}
}

func TestOverloadFieldsIgnoreDeclarationOrder(t *testing.T) {
	const head = "module = \"demo\"\n\n[[package]]\nname = \"\"\n"
	const byInt = "\n  [[package.decl]]\n  kind = \"fun\"\n  name = \"get\"\n  params = [\"a: Int\"]\n  returns = \"Int\"\n"
	const byString = "\n  [[package.decl]]\n  kind = \"fun\"\n  name = \"get\"\n  params = [\"s: String\"]\n  returns = \"Int\"\n"

	a := generate(t, head+byInt+byString, target.Linux)
	b := generate(t, head+byString+byInt, target.Linux)
	if a.Header != b.Header || a.Source != b.Source {
		t.Fatalf("overload order changed the output:\n%s\n---\n%s", a.Header, b.Header)
	}
	mustContain(t, "header", a.Header,
		"demo_KInt (*get)(demo_KInt a);",
		"demo_KInt (*get_)(const char* s);",
	)
}
