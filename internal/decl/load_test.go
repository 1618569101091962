package decl

import (
	"bytes"
	"strings"
	"testing"

	"bridgegen/internal/diag"
	"bridgegen/internal/types"
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
  modifiers = ["open"]

    [[package.decl.member]]
    kind = "ctor"
    name = "Point"
    params = ["x: Double", "y: Double"]
    modifiers = ["primary"]

    [[package.decl.member]]
    kind = "var"
    name = "label"
    returns = "String?"
    modifiers = ["private-set"]

    [[package.decl.member]]
    kind = "fun"
    name = "moved"
    params = ["by: Point"]
    returns = "Point"
    modifiers = ["open"]

  [[package.decl]]
  kind = "enum"
  name = "Axis"

    [[package.decl.member]]
    kind = "entry"
    name = "X"

    [[package.decl.member]]
    kind = "entry"
    name = "Y"

  [[package.decl]]
  kind = "fun"
  name = "origin"
  returns = "geo.Point"
  extern_name = "geo_origin"

  [[package.decl]]
  kind = "fun"
  name = "first"
  type_params = ["T"]
  params = ["items: List<T>"]
  returns = "T"
`

func loadDemo(t *testing.T) (*Module, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(64)
	mod, err := Parse([]byte(demoGraph), FormatTOML, diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return mod, bag
}

func findDecl(decls []Decl, name string) Decl {
	for _, d := range decls {
		if d.Name() == name {
			return d
		}
	}
	return nil
}

func TestLoadBuildsPackagesAndClasses(t *testing.T) {
	mod, bag := loadDemo(t)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors:\n%s", bag.FormatShort(true))
	}
	if mod.Name != "demo" {
		t.Fatalf("unexpected module name %q", mod.Name)
	}
	pkgs := mod.SortedPackages()
	if len(pkgs) != 2 || pkgs[0].FQName != "" || pkgs[1].FQName != "geo" {
		t.Fatalf("unexpected packages: %+v", pkgs)
	}

	add, ok := findDecl(pkgs[0].Decls, "add").(*Function)
	if !ok {
		t.Fatalf("add not loaded")
	}
	b := mod.Types.Builtins()
	if len(add.Params) != 2 || add.Params[0].Type != b.Int || add.Result != b.Int {
		t.Fatalf("unexpected add signature: %+v", add)
	}
	if add.Symbol != "fun:add(Int;Int)" {
		t.Fatalf("unexpected symbol %q", add.Symbol)
	}

	counter, ok := findDecl(pkgs[0].Decls, "Counter").(*Class)
	if !ok || counter.Flavor != types.FlavorObject {
		t.Fatalf("Counter must be an object, got %+v", counter)
	}
	next, ok := findDecl(counter.Members, "next").(*Function)
	if !ok || next.Owner != counter {
		t.Fatalf("next must be a member of Counter")
	}
}

func TestLoadResolvesMembersAndAccessors(t *testing.T) {
	mod, _ := loadDemo(t)
	geo := mod.Package("geo")
	point, ok := findDecl(geo.Decls, "Point").(*Class)
	if !ok || point.Flavor != types.FlavorOpen {
		t.Fatalf("Point must be an open class")
	}

	ctor, ok := point.Members[0].(*Constructor)
	if !ok || ctor.Short != "Point" || ctor.FQName != "geo.Point.<init>" || !ctor.Primary {
		t.Fatalf("unexpected constructor %+v", point.Members[0])
	}

	label, ok := findDecl(point.Members, "label").(*Property)
	if !ok {
		t.Fatalf("label not loaded")
	}
	if label.Type != mod.Types.Nullable(mod.Types.Builtins().String) {
		t.Fatalf("label must be String?, got %s", types.Label(mod.Types, label.Type))
	}
	if label.Getter == nil || label.Setter == nil {
		t.Fatalf("var must have getter and setter")
	}
	if label.Setter.Visibility != Private || label.Getter.Visibility != Public {
		t.Fatalf("private-set must only affect the setter")
	}
	if got := ParamsOf(label.Setter); len(got) != 1 || got[0].Type != label.Type {
		t.Fatalf("setter must take the property value, got %+v", got)
	}

	moved := findDecl(point.Members, "moved").(*Function)
	if moved.Params[0].Type != point.Type || moved.Result != point.Type {
		t.Fatalf("relative class reference must resolve to geo.Point")
	}
	if !moved.IsOverridable() {
		t.Fatalf("open member of open class must dispatch virtually")
	}

	origin := findDecl(geo.Decls, "origin").(*Function)
	if origin.ExternalName != "geo_origin" || origin.Result != point.Type {
		t.Fatalf("unexpected origin %+v", origin)
	}

	axis := findDecl(geo.Decls, "Axis").(*Class)
	y := findDecl(axis.Members, "Y").(*EnumEntry)
	if y.Ordinal != 1 || y.Symbol != "entry:geo.Axis.Y" {
		t.Fatalf("unexpected entry %+v", y)
	}
}

func TestLoadMarksGenericSignaturesErased(t *testing.T) {
	mod, bag := loadDemo(t)
	first := findDecl(mod.Package("geo").Decls, "first").(*Function)
	if !mod.Types.IsErased(first.Result) {
		t.Fatalf("type parameter result must be erased")
	}
	if !mod.Types.IsErased(first.Params[0].Type) {
		t.Fatalf("generic instantiation must be unresolved")
	}
	if !bag.HasWarnings() {
		t.Fatalf("expected a warning for the generic instantiation")
	}
}

func TestLoadReportsGraphProblems(t *testing.T) {
	src := `
[[package]]
name = "bad"

  [[package.decl]]
  kind = "ctor"
  name = "Orphan"

  [[package.decl]]
  kind = "fun"
  name = ""

  [[package.decl]]
  kind = "typealias"
  name = "Alias"

  [[package.decl]]
  kind = "fun"
  name = "f"
  params = ["x Int"]
  modifiers = ["tailrec"]

  [[package.decl]]
  kind = "class"
  name = "Twice"

  [[package.decl]]
  kind = "class"
  name = "Twice"
`
	bag := diag.NewBag(32)
	mod, err := Parse([]byte(src), FormatTOML, diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	want := map[diag.Code]bool{
		diag.GraphMisplacedDecl:  false,
		diag.GraphMissingName:    false,
		diag.GraphBadDeclKind:    false,
		diag.GraphBadTypeExpr:    false,
		diag.GraphBadModifier:    false,
		diag.GraphDuplicateClass: false,
	}
	for _, d := range bag.Items() {
		if _, ok := want[d.Code]; ok {
			want[d.Code] = true
		}
	}
	for code, seen := range want {
		if !seen {
			t.Errorf("expected diagnostic %s\n%s", code.ID(), bag.FormatShort(false))
		}
	}
	decls := mod.Package("bad").Decls
	if len(decls) != 2 {
		t.Fatalf("expected f and one Twice to survive, got %d", len(decls))
	}
}

func TestEncodeDecodeMsgpack(t *testing.T) {
	f, err := Decode([]byte(demoGraph), FormatTOML)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var buf bytes.Buffer
	if err := Encode(&buf, f, FormatMsgpack); err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := Decode(buf.Bytes(), FormatMsgpack)
	if err != nil {
		t.Fatalf("decode msgpack: %v", err)
	}
	if back.Module != "demo" || len(back.Packages) != 2 || len(back.Packages[1].Entries) != 4 {
		t.Fatalf("unexpected round trip result %+v", back)
	}
}

func TestDecodeRejectsUnknownSchema(t *testing.T) {
	_, err := Decode([]byte("schema = 7\n"), FormatTOML)
	if err == nil || !strings.Contains(err.Error(), "unsupported graph schema") {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestParseTypeExpr(t *testing.T) {
	tests := []struct {
		in      string
		want    TypeExpr
		wantErr bool
	}{
		{in: "Int", want: TypeExpr{Name: "Int"}},
		{in: " demo.Point? ", want: TypeExpr{Name: "demo.Point", Nullable: true}},
		{in: "List<Int>", want: TypeExpr{Name: "List", Generic: true}},
		{in: "Int??", wantErr: true},
		{in: "List<Int", wantErr: true},
		{in: "1abc", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseTypeExpr(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseTypeExpr(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTypeExpr(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTypeExpr(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
