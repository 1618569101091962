package decl

import (
	"fmt"
	"strings"

	"bridgegen/internal/diag"
	"bridgegen/internal/types"
)

type modifiers struct {
	visibility Visibility
	modality   Modality
	override   bool
	expect     bool
	suspend    bool
	companion  bool
	primary    bool
	privateSet bool
	inline     bool
}

type loader struct {
	types   *types.Interner
	rep     diag.Reporter
	classes map[*Entry]*Class
	seen    map[string]*Entry
}

// Load builds the declaration graph described by f. Problems are reported to
// rep; declarations that cannot be interpreted are dropped, and type
// references that cannot be resolved become unresolved types so the export
// filter excludes whatever mentions them.
func Load(f *File, rep diag.Reporter) (*Module, error) {
	if f == nil {
		return nil, fmt.Errorf("missing graph file")
	}
	if rep == nil {
		rep = diag.NopReporter{}
	}
	l := &loader{
		types:   types.NewInterner(),
		rep:     rep,
		classes: make(map[*Entry]*Class),
		seen:    make(map[string]*Entry),
	}
	mod := &Module{Name: f.Module, Types: l.types}

	for i := range f.Packages {
		p := &f.Packages[i]
		l.registerClasses(p.Name, p.Entries)
	}
	for i := range f.Packages {
		p := &f.Packages[i]
		pkg := mod.Package(p.Name)
		pkg.Decls = append(pkg.Decls, l.buildDecls(p.Name, p.Entries, nil, nil)...)
	}
	return mod, nil
}

// registerClasses interns every class-like entry first so that type
// references may point forward.
func (l *loader) registerClasses(scopeFQ string, entries []Entry) {
	for i := range entries {
		e := &entries[i]
		flavor, ok := classFlavor(e)
		if !ok || e.Name == "" {
			continue
		}
		fq := joinName(scopeFQ, e.Name)
		if prev, dup := l.seen[fq]; dup && prev != e {
			diag.ReportError(l.rep, diag.GraphDuplicateClass, fq, fmt.Sprintf("class %q is declared more than once", fq)).Emit()
			continue
		}
		l.seen[fq] = e
		cls := &Class{Flavor: flavor}
		cls.Short = e.Name
		cls.FQName = fq
		cls.Type = l.types.Class(fq, flavor)
		l.classes[e] = cls
		l.registerClasses(fq, e.Members)
	}
}

func (l *loader) buildDecls(scopeFQ string, entries []Entry, owner *Class, typeParams []string) []Decl {
	out := make([]Decl, 0, len(entries))
	ordinal := 0
	for i := range entries {
		e := &entries[i]
		if strings.TrimSpace(e.Name) == "" {
			diag.ReportError(l.rep, diag.GraphMissingName, fmt.Sprintf("%s#%d", scopeFQ, i),
				fmt.Sprintf("%s declaration without a name", e.Kind)).Emit()
			continue
		}
		fq := joinName(scopeFQ, e.Name)
		mods := l.parseModifiers(fq, e.Modifiers)
		scopeParams := append(append([]string(nil), typeParams...), e.TypeParams...)

		switch e.Kind {
		case "fun":
			out = append(out, l.buildFunction(e, fq, scopeFQ, owner, mods, scopeParams))
		case "ctor":
			if owner == nil {
				diag.ReportError(l.rep, diag.GraphMisplacedDecl, fq, "constructor declared outside a class").Emit()
				continue
			}
			out = append(out, l.buildConstructor(e, owner, mods, scopeParams))
		case "val", "var":
			out = append(out, l.buildProperty(e, fq, scopeFQ, owner, mods, scopeParams))
		case "entry":
			if owner == nil || owner.Flavor != types.FlavorEnum {
				diag.ReportError(l.rep, diag.GraphMisplacedDecl, fq, "enum entry declared outside an enum class").Emit()
				continue
			}
			entry := &EnumEntry{Owner: owner, Ordinal: ordinal}
			ordinal++
			entry.Common = l.common(e, fq, mods)
			if entry.Symbol == "" {
				entry.Symbol = "entry:" + fq
			}
			out = append(out, entry)
		default:
			cls, ok := l.classes[e]
			if !ok {
				if _, isClass := classFlavor(e); isClass {
					continue // duplicate, already reported
				}
				diag.ReportError(l.rep, diag.GraphBadDeclKind, fq, fmt.Sprintf("unknown declaration kind %q", e.Kind)).Emit()
				continue
			}
			cls.Common = l.common(e, fq, mods)
			if cls.Symbol == "" {
				cls.Symbol = "type:" + fq
			}
			cls.Owner = owner
			cls.Companion = mods.companion
			cls.Members = l.buildDecls(fq, e.Members, cls, scopeParams)
			out = append(out, cls)
		}
	}
	return out
}

func (l *loader) buildFunction(e *Entry, fq, scopeFQ string, owner *Class, mods modifiers, tps []string) *Function {
	fn := &Function{
		Owner:        owner,
		ExternalName: strings.TrimSpace(e.ExternName),
		Modality:     mods.modality,
		Override:     mods.override,
		Suspend:      mods.suspend,
	}
	fn.Common = l.common(e, fq, mods)
	if e.Receiver != "" {
		fn.Receiver = l.resolve(e.Receiver, scopeFQ, tps, fq)
	}
	fn.Params = l.params(e.Params, scopeFQ, tps, fq)
	fn.Result = l.resolveOr(e.Returns, l.types.Builtins().Unit, scopeFQ, tps, fq)
	if fn.Symbol == "" {
		fn.Symbol = callableSymbol("fun", fq, l.types, fn.Receiver, fn.Params)
	}
	return fn
}

func (l *loader) buildConstructor(e *Entry, owner *Class, mods modifiers, tps []string) *Constructor {
	ctor := &Constructor{Owner: owner, Primary: mods.primary}
	ctor.Common = l.common(e, owner.FQName+".<init>", mods)
	ctor.Short = owner.Short
	ctor.Params = l.params(e.Params, owner.FQName, tps, ctor.FQName)
	if ctor.Symbol == "" {
		ctor.Symbol = callableSymbol("ctor", owner.FQName, l.types, types.NoTypeID, ctor.Params)
	}
	return ctor
}

func (l *loader) buildProperty(e *Entry, fq, scopeFQ string, owner *Class, mods modifiers, tps []string) *Property {
	prop := &Property{
		Owner:    owner,
		Modality: mods.modality,
		Override: mods.override,
	}
	prop.Common = l.common(e, fq, mods)
	if e.Receiver != "" {
		prop.Receiver = l.resolve(e.Receiver, scopeFQ, tps, fq)
	}
	prop.Type = l.resolveOr(e.Returns, types.NoTypeID, scopeFQ, tps, fq)
	if prop.Type == types.NoTypeID {
		diag.ReportWarning(l.rep, diag.GraphUnresolvedType, fq, "property without a type").Emit()
		prop.Type = l.types.Unresolved("<missing>")
	}

	getter := &Accessor{Property: prop}
	getter.Common = Common{
		Short:      e.Name,
		FQName:     fq + ".<get>",
		Visibility: prop.Visibility,
		Expect:     prop.Expect,
		TypeParams: prop.TypeParams,
		Symbol:     "get:" + fq,
	}
	prop.Getter = getter
	if e.Kind == "var" {
		setter := &Accessor{Property: prop, IsSetter: true}
		setter.Common = getter.Common
		setter.FQName = fq + ".<set>"
		setter.Symbol = "set:" + fq
		if mods.privateSet {
			setter.Visibility = Private
		}
		prop.Setter = setter
	}
	return prop
}

func (l *loader) common(e *Entry, fq string, mods modifiers) Common {
	return Common{
		Short:      e.Name,
		FQName:     fq,
		Visibility: mods.visibility,
		Expect:     mods.expect,
		TypeParams: append([]string(nil), e.TypeParams...),
		Symbol:     strings.TrimSpace(e.Symbol),
	}
}

func (l *loader) params(raw []string, scopeFQ string, tps []string, subject string) []Param {
	if len(raw) == 0 {
		return nil
	}
	out := make([]Param, 0, len(raw))
	for _, p := range raw {
		name, typ, err := parseParam(p)
		if err != nil {
			diag.ReportError(l.rep, diag.GraphBadTypeExpr, subject, err.Error()).Emit()
			out = append(out, Param{Name: fmt.Sprintf("p%d", len(out)), Type: l.types.Unresolved(p)})
			continue
		}
		out = append(out, Param{Name: name, Type: l.resolve(typ, scopeFQ, tps, subject)})
	}
	return out
}

func (l *loader) resolveOr(expr string, fallback types.TypeID, scopeFQ string, tps []string, subject string) types.TypeID {
	if strings.TrimSpace(expr) == "" {
		return fallback
	}
	return l.resolve(expr, scopeFQ, tps, subject)
}

// resolve maps a type expression to a TypeID. Lookup order: type parameters
// in scope, builtins, fully qualified classes, then classes relative to each
// enclosing scope from the innermost outwards.
func (l *loader) resolve(expr, scopeFQ string, tps []string, subject string) types.TypeID {
	te, err := ParseTypeExpr(expr)
	if err != nil {
		diag.ReportError(l.rep, diag.GraphBadTypeExpr, subject, err.Error()).Emit()
		return l.types.Unresolved(expr)
	}
	id := l.resolveName(te, scopeFQ, tps)
	if id == types.NoTypeID {
		msg := fmt.Sprintf("unresolved type %q", te.Name)
		if te.Generic {
			msg = fmt.Sprintf("generic instantiation %q cannot cross the export boundary", strings.TrimSpace(expr))
		}
		diag.ReportWarning(l.rep, diag.GraphUnresolvedType, subject, msg).Emit()
		id = l.types.Unresolved(strings.TrimSuffix(strings.TrimSpace(expr), "?"))
	}
	if te.Nullable {
		return l.types.Nullable(id)
	}
	return id
}

func (l *loader) resolveName(te TypeExpr, scopeFQ string, tps []string) types.TypeID {
	if te.Generic {
		return types.NoTypeID
	}
	for _, tp := range tps {
		if tp == te.Name {
			return l.types.TypeParam(tp)
		}
	}
	if id, ok := builtinType(l.types, te.Name); ok {
		return id
	}
	if id, ok := l.types.LookupClass(te.Name); ok {
		return id
	}
	for prefix := scopeFQ; prefix != ""; prefix = parentName(prefix) {
		if id, ok := l.types.LookupClass(prefix + "." + te.Name); ok {
			return id
		}
	}
	return types.NoTypeID
}

func (l *loader) parseModifiers(subject string, raw []string) modifiers {
	var m modifiers
	for _, mod := range raw {
		switch strings.TrimSpace(mod) {
		case "public":
			m.visibility = Public
		case "protected":
			m.visibility = Protected
		case "internal":
			m.visibility = Internal
		case "private":
			m.visibility = Private
		case "final":
			m.modality = Final
		case "open":
			m.modality = Open
		case "abstract":
			m.modality = Abstract
		case "override":
			m.override = true
		case "expect":
			m.expect = true
		case "suspend":
			m.suspend = true
		case "companion":
			m.companion = true
		case "primary":
			m.primary = true
		case "private-set":
			m.privateSet = true
		case "inline", "value":
			m.inline = true
		default:
			diag.ReportWarning(l.rep, diag.GraphBadModifier, subject, fmt.Sprintf("unknown modifier %q", mod)).Emit()
		}
	}
	return m
}

func classFlavor(e *Entry) (types.ClassFlavor, bool) {
	hasMod := func(name string) bool {
		for _, m := range e.Modifiers {
			if strings.TrimSpace(m) == name {
				return true
			}
		}
		return false
	}
	switch e.Kind {
	case "class":
		switch {
		case hasMod("inline") || hasMod("value"):
			return types.FlavorInline, true
		case hasMod("abstract"):
			return types.FlavorAbstract, true
		case hasMod("open"):
			return types.FlavorOpen, true
		}
		return types.FlavorFinal, true
	case "value":
		return types.FlavorInline, true
	case "interface":
		return types.FlavorInterface, true
	case "object":
		return types.FlavorObject, true
	case "enum":
		return types.FlavorEnum, true
	case "annotation":
		return types.FlavorAnnotation, true
	}
	return 0, false
}

func callableSymbol(kind, fq string, in *types.Interner, receiver types.TypeID, params []Param) string {
	labels := make([]string, 0, len(params)+1)
	if receiver != types.NoTypeID {
		labels = append(labels, "^"+types.Label(in, receiver))
	}
	for _, p := range params {
		labels = append(labels, types.Label(in, p.Type))
	}
	return fmt.Sprintf("%s:%s(%s)", kind, fq, strings.Join(labels, ";"))
}

func joinName(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + "." + name
}

func parentName(fq string) string {
	if idx := strings.LastIndexByte(fq, '.'); idx >= 0 {
		return fq[:idx]
	}
	return ""
}

// Parse decodes graph bytes and loads the declaration graph in one step.
func Parse(data []byte, format Format, rep diag.Reporter) (*Module, error) {
	f, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	return Load(f, rep)
}
