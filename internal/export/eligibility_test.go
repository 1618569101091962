package export

import (
	"testing"

	"bridgegen/internal/decl"
	"bridgegen/internal/types"
)

func TestClassify(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	final := &decl.Class{Common: decl.Common{FQName: "a.F", Visibility: decl.Public}, Flavor: types.FlavorFinal, Type: in.Class("a.F", types.FlavorFinal)}
	abstract := &decl.Class{Common: decl.Common{FQName: "a.A", Visibility: decl.Public}, Flavor: types.FlavorAbstract, Type: in.Class("a.A", types.FlavorAbstract)}
	meters := in.Class("a.Meters", types.FlavorInline)
	public := func(fq string) decl.Common { return decl.Common{FQName: fq, Visibility: decl.Public} }

	tests := []struct {
		name string
		d    decl.Decl
		want Exclusion
	}{
		{"plain", &decl.Function{Common: public("a.f"), Result: b.Int}, Included},
		{"private", &decl.Function{Common: decl.Common{FQName: "a.p", Visibility: decl.Private}}, NotPublic},
		{"expect", &decl.Function{Common: decl.Common{FQName: "a.e", Visibility: decl.Public, Expect: true}}, ExpectDecl},
		{"generic", &decl.Function{Common: decl.Common{FQName: "a.g", Visibility: decl.Public, TypeParams: []string{"T"}}}, GenericDecl},
		{"suspend", &decl.Function{Common: public("a.s"), Suspend: true}, SuspendFunction},
		{"erased param", &decl.Function{Common: public("a.x"), Params: []decl.Param{{Name: "v", Type: in.TypeParam("T")}}}, ErasedInSignature},
		{"inline result", &decl.Function{Common: public("a.m"), Result: in.Nullable(meters)}, InlineInSignature},
		{"final ctor", &decl.Constructor{Common: public("a.F.<init>"), Owner: final}, Included},
		{"abstract ctor", &decl.Constructor{Common: public("a.A.<init>"), Owner: abstract}, NonInstantiable},
		{"inline class", &decl.Class{Common: public("a.Meters"), Flavor: types.FlavorInline}, InlineClass},
		{"interface", &decl.Class{Common: public("a.I"), Flavor: types.FlavorInterface}, InterfaceClass},
		{"annotation", &decl.Class{Common: public("a.Ann"), Flavor: types.FlavorAnnotation}, AnnotationClass},
		{"object", &decl.Class{Common: public("a.O"), Flavor: types.FlavorObject}, Included},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(in, tt.d); got != tt.want {
				t.Fatalf("Classify = %s, want %s", got, tt.want)
			}
			if Eligible(in, tt.d) != (tt.want == Included) {
				t.Fatalf("Eligible disagrees with Classify")
			}
		})
	}
}

func TestAccessorFollowsProperty(t *testing.T) {
	in := types.NewInterner()
	prop := &decl.Property{Common: decl.Common{FQName: "a.v", Visibility: decl.Public}, Type: in.Builtins().String}
	getter := &decl.Accessor{Common: decl.Common{FQName: "a.v.<get>", Visibility: decl.Public}, Property: prop}
	setter := &decl.Accessor{Common: decl.Common{FQName: "a.v.<set>", Visibility: decl.Private}, Property: prop, IsSetter: true}
	if Classify(in, getter) != Included {
		t.Fatalf("getter of a public property must be exported")
	}
	if Classify(in, setter) != NotPublic {
		t.Fatalf("private setter must be excluded")
	}
	prop.Type = in.TypeParam("T")
	if Classify(in, getter) != ErasedInSignature {
		t.Fatalf("getter must inherit the property's exclusion")
	}
}
