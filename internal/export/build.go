package export

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"bridgegen/internal/cabi"
	"bridgegen/internal/decl"
	"bridgegen/internal/diag"
	"bridgegen/internal/types"
)

const (
	typeGetterName     = "_type"
	instanceGetterName = "_instance"
	entryGetterName    = "get"
)

// builder carries the traversal context. Every scope it creates is passed
// down explicitly; nothing is kept on a shared stack.
type builder struct {
	types *types.Interner
	tr    *cabi.Translator
	rep   diag.Reporter
	log   *zap.Logger
}

// Build walks mod once and returns the root of the export scope tree.
// Ineligible declarations are skipped; inline-class exclusions are reported
// at info level since they mark a known gap rather than a user error.
func Build(mod *decl.Module, tr *cabi.Translator, rep diag.Reporter) *Scope {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	b := &builder{types: mod.Types, tr: tr, rep: rep, log: Logger()}
	root := newRoot(tr)
	top := root.addChild(ScopePackage, nil, "package", DefaultPackageName, "")
	for _, pkg := range mod.SortedPackages() {
		scope := b.packageScope(top, pkg.FQName)
		b.addDecls(scope, pkg.Decls)
	}
	b.log.Debug("export tree built",
		zap.String("module", mod.Name),
		zap.Int("elements", len(root.AllElements())))
	return root
}

// packageScope returns the scope for fqName, creating one scope per name
// segment below the default package scope.
func (b *builder) packageScope(top *Scope, fqName string) *Scope {
	if fqName == "" {
		return top
	}
	cur := top
	prefix := ""
	for _, seg := range strings.Split(fqName, ".") {
		if prefix == "" {
			prefix = seg
		} else {
			prefix += "." + seg
		}
		var next *Scope
		for _, c := range cur.Children {
			if c.Kind == ScopePackage && c.FQName == prefix {
				next = c
				break
			}
		}
		if next == nil {
			next = cur.addChild(ScopePackage, nil, "package:"+prefix, seg, prefix)
		}
		cur = next
	}
	return cur
}

func (b *builder) addDecls(scope *Scope, decls []decl.Decl) {
	for _, d := range sortDecls(decls) {
		switch d := d.(type) {
		case *decl.Function:
			if b.admit(d) {
				b.addFunction(scope, d)
			}
		case *decl.Constructor:
			if b.admit(d) {
				scope.addElement(KindFunction, d, scope.names.Allocate(d, VariantDefault))
			}
		case *decl.Property:
			if !b.admit(d) {
				continue
			}
			for _, acc := range []*decl.Accessor{d.Getter, d.Setter} {
				if acc != nil && b.admit(acc) {
					scope.addElement(KindFunction, acc, scope.names.Allocate(acc, VariantDefault))
				}
			}
		case *decl.Class:
			if b.admit(d) {
				b.addClass(scope, d)
			}
		case *decl.EnumEntry:
			if b.admit(d) {
				entry := scope.addChild(ScopeClass, d, "entry", d.Short, d.FQName)
				entry.addElement(KindProperty, d, entry.names.AllocateTagged(d, "get", entryGetterName))
			}
		default:
			panic(fmt.Errorf("export: unexpected declaration %T", d))
		}
	}
}

func (b *builder) addFunction(scope *Scope, fn *decl.Function) {
	e := scope.addElement(KindFunction, fn, scope.names.Allocate(fn, VariantDefault))
	if !fn.IsTopLevel() || fn.ExternalName == "" {
		return
	}
	want := cabi.Identifier(fn.ExternalName)
	if b.tr.OwnsSymbol(want) {
		b.log.Debug("external name dropped",
			zap.String("decl", fn.QualifiedName()),
			zap.String("name", want))
		diag.ReportWarning(b.rep, diag.ExportReservedName, fn.QualifiedName(),
			fmt.Sprintf("external name %q uses the generated prefix %q; only the table entry is exported", want, b.tr.Prefix()+"_")).Emit()
		return
	}
	root := scope.Root()
	e.ShortName = root.names.Allocate(fn, VariantShort)
	if e.ShortName != want {
		diag.ReportWarning(b.rep, diag.ExportNameCollision, fn.QualifiedName(),
			fmt.Sprintf("external name %q is taken, exported as %q", want, e.ShortName)).Emit()
	}
	root.run.shortNames = append(root.run.shortNames, e)
}

func (b *builder) addClass(parent *Scope, cls *decl.Class) {
	scope := parent.addChild(ScopeClass, cls, "class", cls.Short, cls.FQName)
	scope.addElement(KindType, cls, scope.names.AllocateTagged(cls, "type", typeGetterName))
	if cls.Flavor == types.FlavorObject {
		scope.addElement(KindProperty, cls, scope.names.AllocateTagged(cls, "instance", instanceGetterName))
	}
	b.addDecls(scope, cls.Members)
}

// admit applies the eligibility rules and logs why a declaration stays out.
func (b *builder) admit(d decl.Decl) bool {
	ex := Classify(b.types, d)
	if ex == Included {
		return true
	}
	b.log.Debug("declaration not exported",
		zap.String("decl", d.QualifiedName()),
		zap.Stringer("reason", ex))
	switch ex {
	case InlineClass, InlineInSignature:
		diag.ReportInfo(b.rep, diag.ExportInlineClass, d.QualifiedName(),
			"inline classes are not exported yet").Emit()
	case ErasedInSignature:
		diag.ReportInfo(b.rep, diag.ExportErasedType, d.QualifiedName(),
			"signature mentions a type that cannot cross the boundary").Emit()
	}
	return false
}

// declRank orders declarations inside one scope.
func declRank(d decl.Decl) int {
	switch d.(type) {
	case *decl.Constructor:
		return 0
	case *decl.Function:
		return 1
	case *decl.Property:
		return 2
	case *decl.Class:
		return 3
	case *decl.EnumEntry:
		return 4
	default:
		return 5
	}
}

// sortDecls orders by kind, then name, then symbol, so sibling overloads are
// named the same way whatever order the front-end listed them in. Enum
// entries keep their ordinal order.
func sortDecls(decls []decl.Decl) []decl.Decl {
	out := make([]decl.Decl, len(decls))
	copy(out, decls)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := declRank(out[i]), declRank(out[j])
		if ri != rj {
			return ri < rj
		}
		if ei, ok := out[i].(*decl.EnumEntry); ok {
			return ei.Ordinal < out[j].(*decl.EnumEntry).Ordinal
		}
		ni, nj := out[i].Name(), out[j].Name()
		if ni != nj {
			return ni < nj
		}
		return decl.Attrs(out[i]).Symbol < decl.Attrs(out[j]).Symbol
	})
	return out
}
