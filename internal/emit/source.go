package emit

import (
	"fmt"
	"strings"

	"bridgegen/internal/adapter"
	"bridgegen/internal/export"
)

// runtimeGlue lists the runtime entry points every adapter may call.
var runtimeGlue = []string{
	"void Runtime_initIfNeeded();",
	"void Runtime_switchThreadStateRunnable();",
	"void Runtime_switchThreadStateNative();",
	"void HandleCurrentExceptionWhenLeavingManagedCode();",
	"KObjHeader** GetCurrentFrame();",
	"void SetCurrentFrame(KObjHeader** frame);",
	"void EnterFrame(KObjHeader** start, int parameters, int count);",
	"void LeaveFrame(KObjHeader** start, int parameters, int count);",
	"KObjHeader* LookupGlobal(const char* symbol, KObjHeader** result);",
	"const KTypeInfo* LookupTypeInfo(const char* symbol);",
	"KObjHeader* AllocInstance(const KTypeInfo* type, KObjHeader** result);",
	"KObjHeader* UnitInstance();",
	"KObjHeader* CreateStringFromCString(const char* cstring, KObjHeader** result);",
	"char* CreateCStringFromString(const KObjHeader* str);",
	"void DisposeCString(char* cstring);",
	"void* CreateStablePointer(KObjHeader* obj);",
	"void DisposeStablePointer(void* pointer);",
	"KObjHeader* DerefStablePointer(void* pointer, KObjHeader** result);",
	"bool IsInstance(const KObjHeader* obj, const KTypeInfo* type);",
}

const sourcePrelude = `namespace {
class ScopedRunnableState {
 public:
  ScopedRunnableState() { Runtime_switchThreadStateRunnable(); }
  ~ScopedRunnableState() { Runtime_switchThreadStateNative(); }
  ScopedRunnableState(const ScopedRunnableState&) = delete;
  ScopedRunnableState& operator=(const ScopedRunnableState&) = delete;
};

template <int N>
class FrameScope {
 public:
  FrameScope() : slots_() { EnterFrame(slots_, 0, N + kHeaderSlots); }
  ~FrameScope() { LeaveFrame(slots_, 0, N + kHeaderSlots); }
  FrameScope(const FrameScope&) = delete;
  FrameScope& operator=(const FrameScope&) = delete;
  KObjHeader** slot(int i) { return &slots_[kHeaderSlots + i]; }

 private:
  static constexpr int kHeaderSlots = 3;
  KObjHeader* slots_[N + kHeaderSlots];
};
}  // namespace
`

func (g *generator) source(headerName string) string {
	var b strings.Builder
	p := g.prefix

	fmt.Fprintf(&b, "#include \"%s\"\n\n", headerName)
	b.WriteString("struct KObjHeader;\nstruct KTypeInfo;\n\n")

	b.WriteString("extern \"C\" {\n")
	for _, l := range runtimeGlue {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	for _, l := range adapter.BoxGlue(g.tr) {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	b.WriteString("}  // extern \"C\"\n\n")
	b.WriteString(sourcePrelude)
	b.WriteByte('\n')

	services := adapter.Services(g.tr)
	for _, s := range services {
		b.WriteString(s.Definition())
		b.WriteByte('\n')
	}
	for _, d := range g.fragments(SourceDeclaration) {
		b.WriteString(d)
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "static %s_ExportedSymbols __exportedSymbols = {\n", p)
	for _, s := range services {
		b.WriteString("  ")
		b.WriteString(s.Initializer())
		b.WriteByte('\n')
	}
	for _, l := range g.fragments(SourceStructInitializer) {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	b.WriteString("};\n\n")

	fmt.Fprintf(&b, "extern \"C\" %s_ExportedSymbols* %s(void) {\n  return &__exportedSymbols;\n}\n",
		p, export.SymbolsAccessor(p))
	return b.String()
}
