package adapter

import (
	"fmt"
	"strings"

	"bridgegen/internal/cabi"
	"bridgegen/internal/rt"
)

// Service is a fixed entry of the aggregate struct.
type Service struct {
	Field   string
	Adapter string
	Return  string
	Params  []string
	Body    []string
}

// HeaderField is the function-pointer field of the aggregate struct.
func (s Service) HeaderField() string {
	return fmt.Sprintf("%s (*%s)(%s);", s.Return, s.Field, strings.Join(s.Params, ", "))
}

// Initializer is the matching entry of the static struct literal.
func (s Service) Initializer() string {
	return fmt.Sprintf("/* %s = */ %s,", s.Field, s.Adapter)
}

// Definition renders the service adapter.
func (s Service) Definition() string {
	var b strings.Builder
	fmt.Fprintf(&b, "static %s %s(%s) {\n", s.Return, s.Adapter, strings.Join(s.Params, ", "))
	for _, l := range s.Body {
		b.WriteString("  ")
		b.WriteString(l)
		b.WriteByte('\n')
	}
	b.WriteString("}\n")
	return b.String()
}

// Services lists the service entries in aggregate order: disposal, type
// check, then one box/unbox pair per boxed primitive.
func Services(tr *cabi.Translator) []Service {
	p := tr.Prefix()
	out := []Service{
		{
			Field:   "DisposeStablePointer",
			Adapter: p + "_DisposeStablePointerImpl",
			Return:  "void",
			Params:  []string{tr.NativePtr() + " ptr"},
			Body:    []string{"DisposeStablePointer(ptr);"},
		},
		{
			Field:   "DisposeString",
			Adapter: p + "_DisposeStringImpl",
			Return:  "void",
			Params:  []string{"const char* string"},
			Body:    []string{"DisposeCString(const_cast<char*>(string));"},
		},
		{
			Field:   "IsInstance",
			Adapter: p + "_IsInstanceImpl",
			Return:  p + "_KBoolean",
			Params:  []string{tr.NativePtr() + " ref", tr.TypeDescriptor() + " type"},
			Body: guarded(p+"_KBoolean", 1,
				"KObjHeader* obj = DerefStablePointer(ref, frame.slot(0));",
				"return IsInstance(obj, reinterpret_cast<const KTypeInfo*>(type));"),
		},
	}
	for _, id := range cabi.BoxedPrimitives(tr.Types()) {
		t := tr.Translate(id)
		boxed := tr.Translate(tr.Types().Nullable(id))
		out = append(out,
			Service{
				Field:   "createNullable" + t.Primitive,
				Adapter: p + "_createNullable" + t.Primitive,
				Return:  boxed.CType,
				Params:  []string{t.CType + " value"},
				Body: guarded(boxed.CType, 1,
					fmt.Sprintf("KObjHeader* result = %s(value, frame.slot(0));", cabi.BoxSymbol(t.Primitive)),
					fmt.Sprintf("return %s{ CreateStablePointer(result) };", boxed.CType)),
			},
			Service{
				Field:   "getNonNullValueOf" + t.Primitive,
				Adapter: p + "_getNonNullValueOf" + t.Primitive,
				Return:  t.CType,
				Params:  []string{boxed.CType + " value"},
				Body: guarded(t.CType, 1,
					"KObjHeader* obj = DerefStablePointer(value.pinned, frame.slot(0));",
					fmt.Sprintf("return %s(obj);", cabi.UnboxSymbol(t.Primitive))),
			},
		)
	}
	return out
}

// BoxGlue lists the runtime box/unbox declarations the services call.
func BoxGlue(tr *cabi.Translator) []string {
	var out []string
	for _, id := range cabi.BoxedPrimitives(tr.Types()) {
		t := tr.Translate(id)
		out = append(out,
			fmt.Sprintf("KObjHeader* %s(%s value, KObjHeader** result);", cabi.BoxSymbol(t.Primitive), t.CType),
			fmt.Sprintf("%s %s(const KObjHeader* obj);", t.CType, cabi.UnboxSymbol(t.Primitive)),
		)
	}
	return out
}

func guarded(ret string, slots int, lines ...string) []string {
	body := []string{
		"Runtime_initIfNeeded();",
		"ScopedRunnableState stateGuard;",
		"KObjHeader** savedFrame = GetCurrentFrame();",
		"try {",
		fmt.Sprintf("  FrameScope<%d> frame;", slots),
	}
	for _, l := range lines {
		body = append(body, "  "+l)
	}
	body = append(body,
		"} catch (...) {",
		"  SetCurrentFrame(savedFrame);",
		"  HandleCurrentExceptionWhenLeavingManagedCode();",
		"}",
	)
	if ret != "void" {
		body = append(body, "return {};")
	}
	return body
}

// CreateNullable boxes a primitive and returns a native kref to the box.
func CreateNullable(th *rt.Thread, primitive string, v rt.Value) rt.Value {
	r := th.Runtime()
	r.InitIfNeeded()
	defer th.SwitchRunnable()()
	frame := th.EnterFrame(1)
	defer th.LeaveFrame(frame)
	ref := r.BoxInto(primitive, v, frame.Slot(0))
	return rt.Stable(r.CreateStablePointer(ref))
}

// GetNonNullValue unboxes the primitive behind a native kref.
func GetNonNullValue(th *rt.Thread, v rt.Value) rt.Value {
	r := th.Runtime()
	r.InitIfNeeded()
	defer th.SwitchRunnable()()
	frame := th.EnterFrame(1)
	defer th.LeaveFrame(frame)
	return r.Unbox(r.DerefStablePointerInto(v.Ptr, frame.Slot(0)))
}

// IsInstance checks the object behind a native kref against a type
// descriptor returned by a type getter.
func IsInstance(th *rt.Thread, ref, typ rt.Value) bool {
	r := th.Runtime()
	r.InitIfNeeded()
	defer th.SwitchRunnable()()
	return r.IsInstance(ref.Ptr, typ.Str)
}

// DisposeStablePointer releases a native kref.
func DisposeStablePointer(th *rt.Thread, v rt.Value) {
	th.Runtime().DisposeStablePointer(v.Ptr)
}
