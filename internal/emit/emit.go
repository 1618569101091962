// Package emit assembles the export table into the public header, the C++
// implementation and the optional export list.
package emit

import (
	"fmt"
	"sort"
	"strings"

	"bridgegen/internal/adapter"
	"bridgegen/internal/cabi"
	"bridgegen/internal/export"
	"bridgegen/internal/target"
)

// DefinitionKind is one of the four passes over the scope tree.
type DefinitionKind uint8

const (
	HeaderDeclaration DefinitionKind = iota
	HeaderStructField
	SourceDeclaration
	SourceStructInitializer
)

func (k DefinitionKind) String() string {
	switch k {
	case HeaderDeclaration:
		return "header-declaration"
	case HeaderStructField:
		return "header-struct-field"
	case SourceDeclaration:
		return "source-declaration"
	case SourceStructInitializer:
		return "source-struct-initializer"
	default:
		return fmt.Sprintf("DefinitionKind(%d)", k)
	}
}

// Output holds the generated artifacts of one unit.
type Output struct {
	HeaderName string
	Header     string
	SourceName string
	Source     string
	// ExportListName and ExportList are empty when the target does not need
	// an explicit export list.
	ExportListName string
	ExportList     string
	// Symbols lists every externally visible symbol, sorted.
	Symbols []string
}

// Files returns the artifacts keyed by file name.
func (o *Output) Files() map[string]string {
	files := map[string]string{
		o.HeaderName: o.Header,
		o.SourceName: o.Source,
	}
	if o.ExportListName != "" {
		files[o.ExportListName] = o.ExportList
	}
	return files
}

// Generate renders the artifacts for the tree rooted at root.
func Generate(root *export.Scope, plans *adapter.Set, tgt target.Target) (*Output, error) {
	if root == nil || plans == nil {
		return nil, fmt.Errorf("missing export tree")
	}
	g := &generator{
		root:   root,
		plans:  plans,
		tr:     root.Translator(),
		prefix: root.Prefix(),
	}
	out := &Output{
		HeaderName: g.prefix + "_api.h",
		SourceName: g.prefix + "_api.cpp",
		Symbols:    g.symbols(),
	}
	out.Header = g.header(out.HeaderName)
	out.Source = g.source(out.HeaderName)
	if tgt.NeedsExportList() {
		out.ExportListName = g.prefix + ".def"
		out.ExportList = g.exportList(out.Symbols)
	}
	return out, nil
}

type generator struct {
	root   *export.Scope
	plans  *adapter.Set
	tr     *cabi.Translator
	prefix string
}

// Fragments renders one definition kind over the tree rooted at root.
// Struct kinds return lines indented for the aggregate body; subtrees
// without elements are skipped.
func Fragments(root *export.Scope, plans *adapter.Set, kind DefinitionKind) []string {
	g := &generator{root: root, plans: plans, tr: root.Translator(), prefix: root.Prefix()}
	return g.fragments(kind)
}

func (g *generator) fragments(kind DefinitionKind) []string {
	var lines []string
	if !g.root.HasElements() {
		return nil
	}
	g.scope(g.root, kind, 1, &lines)
	return lines
}

func (g *generator) scope(s *export.Scope, kind DefinitionKind, depth int, lines *[]string) {
	if !s.HasElements() {
		return
	}
	pad := strings.Repeat("  ", depth)
	switch kind {
	case HeaderStructField:
		*lines = append(*lines, pad+"struct {")
	case SourceStructInitializer:
		*lines = append(*lines, fmt.Sprintf("%s/* %s = */ {", pad, s.Name))
	}
	for _, e := range s.Elements {
		p := g.plans.For(e)
		switch kind {
		case HeaderDeclaration:
			if decl := p.HeaderDeclaration(); decl != "" {
				*lines = append(*lines, decl)
			}
		case HeaderStructField:
			*lines = append(*lines, pad+"  "+p.HeaderField())
		case SourceDeclaration:
			*lines = append(*lines, p.Definition())
		case SourceStructInitializer:
			*lines = append(*lines, pad+"  "+p.Initializer())
		}
	}
	for _, c := range s.Children {
		g.scope(c, kind, depth+1, lines)
	}
	switch kind {
	case HeaderStructField:
		*lines = append(*lines, fmt.Sprintf("%s} %s;", pad, s.Name))
	case SourceStructInitializer:
		*lines = append(*lines, pad+"},")
	}
}

func (g *generator) symbols() []string {
	syms := []string{export.SymbolsAccessor(g.prefix)}
	for _, e := range g.root.ShortNamed() {
		syms = append(syms, e.ShortName)
	}
	sort.Strings(syms)
	return syms
}

func (g *generator) exportList(symbols []string) string {
	var b strings.Builder
	b.WriteString("EXPORTS\n")
	for _, s := range symbols {
		b.WriteString("    ")
		b.WriteString(s)
		b.WriteByte('\n')
	}
	return b.String()
}

// wrappers collects the kref structs in first-use order: the boxed
// primitives used by services, then every type in exported signatures.
func (g *generator) wrappers() []string {
	set := cabi.NewTypeSet(g.tr)
	in := g.tr.Types()
	for _, id := range cabi.BoxedPrimitives(in) {
		set.Add(in.Nullable(id))
	}
	for _, p := range g.plans.Plans {
		switch p.Kind {
		case adapter.PlanTypeGetter:
			continue
		case adapter.PlanInstanceGetter:
			set.AddWrapper(p.ResultTr.Wrapper)
			continue
		}
		for _, el := range p.Public.Elements {
			set.Add(el.Type)
		}
	}
	return set.Wrappers()
}

func includeGuard(headerName string) string {
	return strings.ToUpper(cabi.Identifier(headerName))
}
