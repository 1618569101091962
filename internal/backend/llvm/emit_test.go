package llvm

import (
	"strings"
	"testing"

	"bridgegen/internal/backend"
	"bridgegen/internal/cabi"
)

func intValue(name string) backend.Value {
	return backend.Value{Name: name, Category: cabi.CategoryPrimitive, CType: "p_KInt", Primitive: "Int"}
}

func refValue(name string) backend.Value {
	return backend.Value{Name: name, Category: cabi.CategoryReference, CType: cabi.ObjHeaderType}
}

func TestCompileDirectPrimitiveBridge(t *testing.T) {
	e := New("x86_64-unknown-linux-gnu")
	h, err := e.Compile(backend.Request{
		Name:   "p_bridge_1",
		Callee: "fun:add(Int;Int)",
		Params: []backend.Value{intValue("a"), intValue("b")},
		Result: intValue("result"),
	})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if h != "p_bridge_1" {
		t.Fatalf("unexpected handle %q", h)
	}
	out, err := e.Finish()
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	for _, want := range []string{
		`target triple = "x86_64-unknown-linux-gnu"`,
		`declare i32 @"fun:add(Int;Int)"(i32, i32)`,
		"define i32 @p_bridge_1(i32 %p0, i32 %p1) {",
		`%r = call i32 @"fun:add(Int;Int)"(i32 %p0, i32 %p1)`,
		"ret i32 %r",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestCompileVirtualBridgeWithResultSlot(t *testing.T) {
	e := New("")
	_, err := e.Compile(backend.Request{
		Name:       "p_bridge_2",
		Callee:     "fun:geo.Point.moved(geo.Point)",
		Params:     []backend.Value{refValue("thiz"), refValue("by")},
		Result:     refValue("result"),
		ResultSlot: true,
		Dispatch:   backend.DispatchVirtual,
	})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	out, _ := e.Finish()
	for _, want := range []string{
		"declare ptr @LookupOpenMethod(ptr, ptr)",
		"define ptr @p_bridge_2(ptr %p0, ptr %p1, ptr %slot) {",
		`%impl = call ptr @LookupOpenMethod(ptr %p0, ptr @"fun:geo.Point.moved(geo.Point)")`,
		"%r = call ptr %impl(ptr %p0, ptr %p1, ptr %slot)",
		"store ptr %r, ptr %slot",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "target triple") {
		t.Errorf("empty triple must not be emitted")
	}
}

func TestCompileRejectsDuplicatesAndBadInput(t *testing.T) {
	e := New("")
	req := backend.Request{Name: "b", Callee: "f", Result: backend.Value{Category: cabi.CategoryVoid}}
	if _, err := e.Compile(req); err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, err := e.Compile(req); err == nil {
		t.Fatalf("expected duplicate bridge error")
	}
	if _, err := e.Compile(backend.Request{Name: "c"}); err == nil {
		t.Fatalf("expected missing callee error")
	}
	bad := backend.Request{Name: "d", Callee: "g", Result: backend.Value{Category: cabi.CategoryPrimitive, Primitive: "Quad"}}
	if _, err := e.Compile(bad); err == nil {
		t.Fatalf("expected unknown primitive error")
	}
	if e.Len() != 1 {
		t.Fatalf("expected one compiled bridge, got %d", e.Len())
	}
}

func TestGlobalNameEscaping(t *testing.T) {
	tests := []struct {
		symbol string
		want   string
	}{
		{"p_bridge_1", "@p_bridge_1"},
		{"fun:add(Int;Int)", `@"fun:add(Int;Int)"`},
		{"fun:café(Int)", `@"fun:caf\C3\A9(Int)"`},
		{"fun:a\tb", `@"fun:a\09b"`},
		{`fun:say("hi\")`, `@"fun:say(\22hi\5C\22)"`},
		{"1st", `@"1st"`},
	}
	for _, tt := range tests {
		if got := globalName(tt.symbol); got != tt.want {
			t.Errorf("globalName(%q) = %s, want %s", tt.symbol, got, tt.want)
		}
	}
}
