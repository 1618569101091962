package export

import (
	"testing"

	"bridgegen/internal/decl"
)

func TestRegistrySuffixesCollisions(t *testing.T) {
	r := NewRegistry("demo_symbols")
	a := &decl.Function{Common: decl.Common{Short: "get", FQName: "a.get", Symbol: "fun:a.get()"}}
	b := &decl.Function{Common: decl.Common{Short: "get", FQName: "b.get", Symbol: "fun:b.get()"}}
	c := &decl.Function{Common: decl.Common{Short: "get", FQName: "c.get", Symbol: "fun:c.get()"}}

	tests := []struct {
		d    decl.Decl
		want string
	}{
		{a, "get"},
		{b, "get_"},
		{c, "get__"},
		{a, "get"},
	}
	for _, tt := range tests {
		if got := r.Allocate(tt.d, VariantDefault); got != tt.want {
			t.Fatalf("Allocate(%s) = %q, want %q", tt.d.QualifiedName(), got, tt.want)
		}
	}
	if name, ok := r.Lookup(b, VariantDefault); !ok || name != "get_" {
		t.Fatalf("lookup must return the memoized name, got %q", name)
	}
}

func TestRegistryVariants(t *testing.T) {
	r := NewRegistry("demo_symbols")
	fn := &decl.Function{
		Common:       decl.Common{Short: "origin", FQName: "geo.origin"},
		ExternalName: "demo_symbols",
	}
	if got := r.Allocate(fn, VariantShort); got != "demo_symbols_" {
		t.Fatalf("short name must avoid the accessor, got %q", got)
	}
	if got := r.Allocate(fn, VariantDefault); got != "origin" {
		t.Fatalf("default name must be independent, got %q", got)
	}
}

func TestCandidateNames(t *testing.T) {
	owner := &decl.Class{Common: decl.Common{Short: "Point", FQName: "geo.Point"}}
	prop := &decl.Property{Common: decl.Common{Short: "x", FQName: "geo.Point.x"}, Owner: owner}
	tests := []struct {
		name string
		d    decl.Decl
		want string
	}{
		{"ctor", &decl.Constructor{Common: decl.Common{Short: "Point"}, Owner: owner}, "Point"},
		{"getter", &decl.Accessor{Common: decl.Common{Short: "x"}, Property: prop}, "get_x"},
		{"setter", &decl.Accessor{Common: decl.Common{Short: "x"}, Property: prop, IsSetter: true}, "set_x"},
		{"keyword", &decl.Function{Common: decl.Common{Short: "register"}}, "register_"},
		{"symbolic", &decl.Function{Common: decl.Common{Short: "plus-assign"}}, "plus_assign"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			if got := r.Allocate(tt.d, VariantDefault); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
