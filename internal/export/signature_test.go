package export

import "testing"

func paramNames(s Signature) []string {
	out := make([]string, 0, len(s.Params()))
	for _, p := range s.Params() {
		out = append(out, p.Name)
	}
	return out
}

func TestPublicSignatureDropsUnitParams(t *testing.T) {
	root, mod, _ := buildTree(t)
	b := mod.Types.Builtins()
	fn := root.Child(DefaultPackageName).Element("int_")
	pub := fn.PublicSignature()
	if got := paramNames(pub); !equalStrings(got, []string{"s"}) {
		t.Fatalf("public params = %v", got)
	}
	if pub.Result().Type != b.Unit {
		t.Fatalf("unit return must stay in the result slot")
	}
	br := fn.BridgeSignature()
	if got := paramNames(br); !equalStrings(got, []string{"u", "s"}) {
		t.Fatalf("bridge keeps every parameter, got %v", got)
	}
	if br.ResultSlot {
		t.Fatalf("unit result has no out-slot")
	}
}

func TestObjectMemberSignature(t *testing.T) {
	root, _, _ := buildTree(t)
	next := root.Child(DefaultPackageName).Child("Counter").Element("next")
	if !next.ObjectMember() {
		t.Fatalf("next must be an object member")
	}
	if got := paramNames(next.PublicSignature()); len(got) != 0 {
		t.Fatalf("object member has no public receiver, got %v", got)
	}
	if got := paramNames(next.BridgeSignature()); !equalStrings(got, []string{"thiz"}) {
		t.Fatalf("bridge must take the instance, got %v", got)
	}
}

func TestConstructorSignature(t *testing.T) {
	root, mod, _ := buildTree(t)
	point := root.Child(DefaultPackageName).Child("geo").Child("Point")
	ctor := point.Element("Point")
	if !ctor.IsConstructor() {
		t.Fatalf("Point element must be the constructor")
	}
	pub := ctor.PublicSignature()
	cls := point.Decl
	pointType, _ := mod.Types.LookupClass("geo.Point")
	if pub.Result().Type != pointType || cls.QualifiedName() != "geo.Point" {
		t.Fatalf("constructor must return its class")
	}
	if got := paramNames(pub); !equalStrings(got, []string{"x", "y"}) {
		t.Fatalf("public params = %v", got)
	}
	br := ctor.BridgeSignature()
	if got := paramNames(br); !equalStrings(got, []string{"thiz", "x", "y"}) {
		t.Fatalf("bridge params = %v", got)
	}
	if br.Result().Type != mod.Types.Builtins().Unit || br.ResultSlot {
		t.Fatalf("constructor bridge returns void")
	}
}

func TestMemberSignatureUsesResultSlot(t *testing.T) {
	root, _, _ := buildTree(t)
	moved := root.Child(DefaultPackageName).Child("geo").Child("Point").Element("moved")
	pub := moved.PublicSignature()
	if got := paramNames(pub); !equalStrings(got, []string{"thiz", "by"}) {
		t.Fatalf("public params = %v", got)
	}
	if !moved.BridgeSignature().ResultSlot {
		t.Fatalf("reference result must use the out-slot")
	}
}

func TestPropertyElementSignature(t *testing.T) {
	root, mod, _ := buildTree(t)
	counter := root.Child(DefaultPackageName).Child("Counter")
	inst := counter.Element("_instance")
	sig := inst.PublicSignature()
	id, _ := mod.Types.LookupClass("Counter")
	if len(sig.Params()) != 0 || sig.Result().Type != id {
		t.Fatalf("instance getter returns the object type")
	}
	if inst.Symbol() != "obj:Counter" {
		t.Fatalf("unexpected instance symbol %q", inst.Symbol())
	}
	typ := counter.Element("_type")
	defer func() {
		if recover() == nil {
			t.Fatalf("type getters have no signature")
		}
	}()
	typ.PublicSignature()
}

func TestParameterNamesAvoidReservedWords(t *testing.T) {
	r := NewRegistry("result")
	got := make([]string, 0, 4)
	for i, name := range []string{"result", "char", "x", "x"} {
		got = append(got, r.AllocateTagged(nil, string(rune('a'+i)), name))
	}
	if want := []string{"result_", "char_", "x", "x_"}; !equalStrings(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
