package cabi

import (
	"testing"

	"bridgegen/internal/types"
)

func TestTranslateCategories(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	point := in.Class("geo.Point", types.FlavorFinal)
	tr := NewTranslator(in, "libdemo")

	tests := []struct {
		name    string
		id      types.TypeID
		cat     Category
		ctype   string
		bridge  string
		wrapper string
	}{
		{"unit", b.Unit, CategoryVoid, "void", ObjHeaderType, ""},
		{"int", b.Int, CategoryPrimitive, "libdemo_KInt", "libdemo_KInt", ""},
		{"bool", b.Bool, CategoryPrimitive, "libdemo_KBoolean", "libdemo_KBoolean", ""},
		{"ulong", b.ULong, CategoryPrimitive, "libdemo_KULong", "libdemo_KULong", ""},
		{"string", b.String, CategoryString, CStringType, ObjHeaderType, ""},
		{"class", point, CategoryReference, "libdemo_kref_geo_Point", ObjHeaderType, "libdemo_kref_geo_Point"},
		{"any", b.Any, CategoryReference, "libdemo_kref_lang_Any", ObjHeaderType, "libdemo_kref_lang_Any"},
		{"nullable int", in.Nullable(b.Int), CategoryNullable, "libdemo_kref_lang_Int", ObjHeaderType, "libdemo_kref_lang_Int"},
		{"nullable string", in.Nullable(b.String), CategoryNullable, CStringType, ObjHeaderType, ""},
		{"nullable class", in.Nullable(point), CategoryNullable, "libdemo_kref_geo_Point", ObjHeaderType, "libdemo_kref_geo_Point"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tr.Translate(tt.id)
			if got.Category != tt.cat || got.CType != tt.ctype || got.BridgeType != tt.bridge || got.Wrapper != tt.wrapper {
				t.Fatalf("Translate(%s) = %+v", types.Label(in, tt.id), got)
			}
		})
	}
}

func TestTranslateIsStable(t *testing.T) {
	in := types.NewInterner()
	tr := NewTranslator(in, "p")
	id := in.Class("a.B", types.FlavorOpen)
	first := tr.Translate(id)
	if second := tr.Translate(id); second != first {
		t.Fatalf("translation must be referentially stable: %+v vs %+v", first, second)
	}
}

func TestTranslatePanicsOnErasedType(t *testing.T) {
	in := types.NewInterner()
	tr := NewTranslator(in, "p")
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for a type parameter")
		}
	}()
	tr.Translate(in.TypeParam("T"))
}

func TestReferenceBearing(t *testing.T) {
	for _, c := range []Category{CategoryString, CategoryReference, CategoryNullable} {
		if !c.IsReferenceBearing() {
			t.Errorf("%s must be reference-bearing", c)
		}
	}
	for _, c := range []Category{CategoryVoid, CategoryPrimitive} {
		if c.IsReferenceBearing() {
			t.Errorf("%s must not be reference-bearing", c)
		}
	}
}

func TestTypeSetDeduplicatesByWrapper(t *testing.T) {
	in := types.NewInterner()
	tr := NewTranslator(in, "p")
	point := in.Class("geo.Point", types.FlavorFinal)
	set := NewTypeSet(tr)
	set.Add(point)
	set.Add(in.Nullable(point))
	set.Add(in.Builtins().Int)
	set.Add(in.Nullable(in.Builtins().Int))
	set.Add(in.TypeParam("T"))
	set.Add(in.Unresolved("x.Y"))
	got := set.Wrappers()
	want := []string{"p_kref_geo_Point", "p_kref_lang_Int"}
	if len(got) != len(want) {
		t.Fatalf("Wrappers() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Wrappers() = %v, want %v", got, want)
		}
	}
}

func TestIdentifier(t *testing.T) {
	tests := map[string]string{
		"add":        "add",
		"my-fun":     "my_fun",
		"9lives":     "_9lives",
		"":           "_",
		"naïve":      "na_ve",
		"with space": "with_space",
	}
	for in, want := range tests {
		if got := Identifier(in); got != want {
			t.Errorf("Identifier(%q) = %q, want %q", in, got, want)
		}
	}
	if got := QualifiedIdentifier("a.b-c.D"); got != "a_b_c_D" {
		t.Errorf("QualifiedIdentifier = %q", got)
	}
	if !IsReserved("int") || !IsReserved("class") || IsReserved("add") {
		t.Errorf("unexpected reserved word classification")
	}
}
