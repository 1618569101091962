package rt

import (
	"errors"
	"testing"
)

func expectRuntimeError(t *testing.T, code ErrorCode, fn func()) {
	t.Helper()
	defer func() {
		rec := recover()
		err, ok := rec.(*Error)
		if !ok {
			t.Fatalf("expected runtime error %s, got %v", code, rec)
		}
		if err.Code != code {
			t.Fatalf("expected %s, got %s", code, err.Code)
		}
	}()
	fn()
}

func TestStablePointerLifecycle(t *testing.T) {
	r := New()
	r.InitIfNeeded()
	obj := r.AllocInstance("demo.Box")
	p := r.CreateStablePointer(obj)
	if p == 0 {
		t.Fatalf("stable pointer must not be null")
	}
	if got := r.DerefStablePointer(p); got != obj {
		t.Fatalf("deref returned %d, want %d", got, obj)
	}
	if r.CreateStablePointer(0) != 0 || r.DerefStablePointer(0) != 0 {
		t.Fatalf("null must map to null")
	}
	r.DisposeStablePointer(p)
	expectRuntimeError(t, ErrInvalidStablePointer, func() { r.DerefStablePointer(p) })
	expectRuntimeError(t, ErrInvalidStablePointer, func() { r.DisposeStablePointer(p) })
}

func TestCollectKeepsRootsAlive(t *testing.T) {
	r := New()
	r.InitIfNeeded()
	th := r.NewThread()
	restore := th.SwitchRunnable()
	defer restore()

	pinned := r.AllocInstance("demo.A")
	p := r.CreateStablePointer(pinned)
	framed := r.NewString("kept")
	child := r.AllocInstance("demo.B")
	r.SetField(pinned, "child", Managed(child))
	garbage := r.NewString("dropped")

	f := th.EnterFrame(1)
	f.Set(0, framed)
	if freed := r.Collect(); freed != 1 {
		t.Fatalf("expected one object freed, got %d", freed)
	}
	if r.StringOf(framed) != "kept" || r.ClassOf(child) != "demo.B" {
		t.Fatalf("rooted objects must survive")
	}
	expectRuntimeError(t, ErrUseAfterFree, func() { r.StringOf(garbage) })

	th.LeaveFrame(f)
	r.Collect()
	expectRuntimeError(t, ErrUseAfterFree, func() { r.StringOf(framed) })
	r.DisposeStablePointer(p)
	r.Collect()
	expectRuntimeError(t, ErrUseAfterFree, func() { r.ClassOf(child) })
}

func TestThreadStateAndFrames(t *testing.T) {
	r := New()
	r.InitIfNeeded()
	th := r.NewThread()
	expectRuntimeError(t, ErrWrongThreadState, func() { th.EnterFrame(1) })

	restore := th.SwitchRunnable()
	outer := th.EnterFrame(0)
	inner := th.EnterFrame(2)
	if th.Depth() != 2 {
		t.Fatalf("expected depth 2, got %d", th.Depth())
	}
	expectRuntimeError(t, ErrFrameMismatch, func() { th.LeaveFrame(outer) })
	th.SetCurrentFrame(outer)
	th.LeaveFrame(outer)
	if th.CurrentFrame() != nil {
		t.Fatalf("frame chain must be empty")
	}
	_ = inner
	restore()
	if th.State() != StateNative {
		t.Fatalf("restore must return to native state")
	}
}

func TestVirtualDispatchPrefersOverride(t *testing.T) {
	r := New()
	r.InitIfNeeded()
	r.RegisterClass("demo.Base", "")
	r.RegisterClass("demo.Derived", "demo.Base")
	r.RegisterClass("demo.Leaf", "demo.Derived")
	r.RegisterMethod("fun:demo.Base.name()", func(*Thread, []Value, Slot) Value { return Int(1) })
	r.RegisterOverride("demo.Derived", "fun:demo.Base.name()", func(*Thread, []Value, Slot) Value { return Int(2) })

	th := r.NewThread()
	defer th.SwitchRunnable()()
	base := r.AllocInstance("demo.Base")
	leaf := r.AllocInstance("demo.Leaf")

	if got := th.Call("fun:demo.Base.name()", []Value{Managed(base)}, true, Slot{}).AsInt(); got != 1 {
		t.Fatalf("base dispatch = %d", got)
	}
	if got := th.Call("fun:demo.Base.name()", []Value{Managed(leaf)}, true, Slot{}).AsInt(); got != 2 {
		t.Fatalf("inherited override dispatch = %d", got)
	}
	if got := th.Call("fun:demo.Base.name()", []Value{Managed(leaf)}, false, Slot{}).AsInt(); got != 1 {
		t.Fatalf("direct call must ignore overrides, got %d", got)
	}
	expectRuntimeError(t, ErrMissingMethod, func() { th.Call("fun:missing()", nil, false, Slot{}) })

	if !r.IsSubclass("demo.Leaf", "demo.Base") || r.IsSubclass("demo.Base", "demo.Leaf") {
		t.Fatalf("unexpected subclass relation")
	}
	p := r.CreateStablePointer(leaf)
	if !r.IsInstance(p, "demo.Derived") || !r.IsInstance(p, "lang.Any") || r.IsInstance(0, "lang.Any") {
		t.Fatalf("unexpected IsInstance result")
	}
}

func TestEscapePolicies(t *testing.T) {
	r := New()
	th := r.NewThread()
	exc := &Exception{Class: "demo.Boom", Message: "bad"}
	if err := th.HandleEscape(exc); !errors.Is(err, ErrEscapedException) {
		t.Fatalf("abort policy must report ErrEscapedException, got %v", err)
	}
	rec := &RecordPolicy{}
	r.SetPolicy(rec)
	if err := th.HandleEscape(exc); err != nil {
		t.Fatalf("record policy must not fail: %v", err)
	}
	if got := rec.Escapes(); len(got) != 1 || got[0] != exc {
		t.Fatalf("unexpected recorded escapes %v", got)
	}
	if r.Stats().Escapes != 2 {
		t.Fatalf("expected two escapes counted")
	}
}

func TestBoxingAndStrings(t *testing.T) {
	r := New()
	expectRuntimeError(t, ErrNotInitialized, func() { r.NewString("x") })
	r.InitIfNeeded()
	box := r.Box("Int", Int(-7))
	if r.ClassOf(box) != "lang.Int" || r.Unbox(box).AsInt() != -7 {
		t.Fatalf("unexpected box contents")
	}
	s := r.StringFromCString(CString("héllo"))
	if got := r.CStringFromString(s); got.Str != "héllo" || got.Null {
		t.Fatalf("unexpected string round trip %v", got)
	}
	if r.StringFromCString(NullCString()) != 0 || !r.CStringFromString(0).Null {
		t.Fatalf("NULL must map to null")
	}
	st := r.Stats()
	if st.StringsIn != 1 || st.StringsOut != 1 || st.Boxes != 2 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestSlotAllocationsAreRooted(t *testing.T) {
	r := New()
	r.InitIfNeeded()
	r.RegisterGlobal("obj:demo.Single", "demo.Single")
	th := r.NewThread()
	defer th.SwitchRunnable()()

	f := th.EnterFrame(5)
	str := r.StringFromCStringInto(CString("kept"), f.Slot(0))
	inst := r.AllocInstanceInto("demo.A", f.Slot(1))
	box := r.BoxInto("Int", Int(3), f.Slot(2))
	p := r.CreateStablePointer(r.AllocInstance("demo.B"))
	viaPtr := r.DerefStablePointerInto(p, f.Slot(3))
	global := r.GlobalInto("obj:demo.Single", f.Slot(4))
	r.DisposeStablePointer(p)
	loose := r.NewStringInto("dropped", Slot{})

	for i, want := range []Ref{str, inst, box, viaPtr, global} {
		if got := f.Get(i); got != want {
			t.Fatalf("slot %d holds %d, want %d", i, got, want)
		}
	}
	if freed := r.Collect(); freed != 1 {
		t.Fatalf("expected only the unrooted string freed, got %d", freed)
	}
	if r.StringOf(str) != "kept" || r.ClassOf(viaPtr) != "demo.B" || r.Unbox(box).AsInt() != 3 {
		t.Fatalf("slot-rooted objects must survive")
	}
	expectRuntimeError(t, ErrUseAfterFree, func() { r.StringOf(loose) })
	expectRuntimeError(t, ErrFrameMismatch, func() { f.Slot(5) })

	if r.StringFromCStringInto(NullCString(), f.Slot(0)) != 0 || f.Get(0) != 0 {
		t.Fatalf("NULL must clear the slot")
	}
	th.LeaveFrame(f)
}

func TestCallRootsReturnedReference(t *testing.T) {
	r := New()
	r.InitIfNeeded()
	r.RegisterMethod("fun:make()", func(th *Thread, _ []Value, _ Slot) Value {
		return Managed(th.Runtime().NewString("made"))
	})
	th := r.NewThread()
	defer th.SwitchRunnable()()
	f := th.EnterFrame(1)
	res := th.Call("fun:make()", nil, false, f.Slot(0))
	if f.Get(0) != res.Ref {
		t.Fatalf("returned reference must land in the result slot")
	}
	r.Collect()
	if r.StringOf(res.Ref) != "made" {
		t.Fatalf("result must survive collection")
	}
	th.LeaveFrame(f)
}
