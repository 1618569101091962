package cabi

import (
	"sort"
	"strings"
)

// runtimeSymbols are the runtime entry points and file-local helpers the
// generated source declares. Box and unbox entry points are added per
// boxed primitive.
var runtimeSymbols = []string{
	"Runtime_initIfNeeded",
	"Runtime_switchThreadStateRunnable",
	"Runtime_switchThreadStateNative",
	"HandleCurrentExceptionWhenLeavingManagedCode",
	"GetCurrentFrame",
	"SetCurrentFrame",
	"EnterFrame",
	"LeaveFrame",
	"LookupGlobal",
	"LookupTypeInfo",
	"LookupOpenMethod",
	"AllocInstance",
	"UnitInstance",
	"CreateStringFromCString",
	"CreateCStringFromString",
	"DisposeCString",
	"CreateStablePointer",
	"DisposeStablePointer",
	"DerefStablePointer",
	"IsInstance",
	"KObjHeader",
	"KTypeInfo",
	"ScopedRunnableState",
	"FrameScope",
	"__exportedSymbols",
}

// BoxSymbol and UnboxSymbol name the runtime box entry points of a boxed
// primitive short name.
func BoxSymbol(primitive string) string   { return "Runtime_box" + primitive }
func UnboxSymbol(primitive string) string { return "Runtime_unbox" + primitive }

// RuntimeSymbols returns every glue name the generated source declares,
// sorted. Generated top-level names must avoid all of them.
func (t *Translator) RuntimeSymbols() []string {
	out := append([]string(nil), runtimeSymbols...)
	for _, id := range BoxedPrimitives(t.types) {
		prim := t.Translate(id).Primitive
		out = append(out, BoxSymbol(prim), UnboxSymbol(prim))
	}
	sort.Strings(out)
	return out
}

// OwnsSymbol reports whether name lies in the prefix namespace the generator
// spells its typedefs, wrappers, bridges, adapters and accessor in.
func (t *Translator) OwnsSymbol(name string) bool {
	return strings.HasPrefix(name, t.prefix+"_")
}
