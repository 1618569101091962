package export

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"bridgegen/internal/cabi"
	"bridgegen/internal/decl"
)

// ScopeKind is the kind of namespace node.
type ScopeKind uint8

const (
	ScopeRoot ScopeKind = iota
	ScopePackage
	ScopeClass
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeRoot:
		return "root"
	case ScopePackage:
		return "package"
	case ScopeClass:
		return "class"
	default:
		return fmt.Sprintf("ScopeKind(%d)", k)
	}
}

const (
	// RootFieldName is the aggregate field that holds the root scope.
	RootFieldName = "exports"
	// DefaultPackageName names the scope of the default package.
	DefaultPackageName = "root"
)

// Scope is a namespace node of the export tree. Elements are emitted before
// child scopes; both lists keep traversal order.
type Scope struct {
	Kind ScopeKind
	// Name is the identifier allocated in the parent scope.
	Name string
	// FQName is the package or class qualified name, empty for the root.
	FQName string
	// Decl is the class or enum entry behind a class scope.
	Decl decl.Decl

	Parent   *Scope
	Children []*Scope
	Elements []*Element

	names *Registry
	run   *runState // root only
}

type runState struct {
	prefix      string
	tr          *cabi.Translator
	bridgeCount uint32
	shortNames  []*Element
}

func newRoot(tr *cabi.Translator) *Scope {
	return &Scope{
		Kind:  ScopeRoot,
		Name:  RootFieldName,
		names: NewRegistry(append(tr.RuntimeSymbols(), SymbolsAccessor(tr.Prefix()))...),
		run:   &runState{prefix: tr.Prefix(), tr: tr},
	}
}

// SymbolsAccessor is the name of the exported accessor function.
func SymbolsAccessor(prefix string) string {
	return prefix + "_symbols"
}

// Root walks up to the root scope.
func (s *Scope) Root() *Scope {
	for s.Parent != nil {
		s = s.Parent
	}
	return s
}

// Names returns the scope's registry.
func (s *Scope) Names() *Registry { return s.names }

// Path is the dotted field path from the aggregate, e.g. "exports.root.geo".
func (s *Scope) Path() string {
	if s.Parent == nil {
		return s.Name
	}
	return s.Parent.Path() + "." + s.Name
}

// Prefix returns the export-name prefix of the run.
func (s *Scope) Prefix() string { return s.Root().run.prefix }

// Translator returns the run's type translator.
func (s *Scope) Translator() *cabi.Translator { return s.translator() }

func (s *Scope) translator() *cabi.Translator { return s.Root().run.tr }

// ShortNamed returns the re-exported top-level elements in allocation order.
func (s *Scope) ShortNamed() []*Element {
	root := s.Root().run
	out := make([]*Element, len(root.shortNames))
	copy(out, root.shortNames)
	return out
}

// HasElements reports whether any element exists in the subtree.
func (s *Scope) HasElements() bool {
	if len(s.Elements) > 0 {
		return true
	}
	for _, c := range s.Children {
		if c.HasElements() {
			return true
		}
	}
	return false
}

// Walk visits the scope subtree depth-first, elements before children.
func (s *Scope) Walk(fn func(*Scope, *Element)) {
	for _, e := range s.Elements {
		fn(s, e)
	}
	for _, c := range s.Children {
		c.Walk(fn)
	}
}

// AllElements flattens the subtree in emission order.
func (s *Scope) AllElements() []*Element {
	var out []*Element
	s.Walk(func(_ *Scope, e *Element) {
		out = append(out, e)
	})
	return out
}

// Child finds a direct child scope by identifier.
func (s *Scope) Child(name string) *Scope {
	for _, c := range s.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Element finds a direct element by identifier.
func (s *Scope) Element(name string) *Element {
	for _, e := range s.Elements {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// Lookup resolves a dotted path relative to s ("geo.Point.get_x").
func (s *Scope) Lookup(path string) (*Scope, *Element) {
	cur := s
	parts := strings.Split(path, ".")
	for i, part := range parts {
		if i == len(parts)-1 {
			if e := cur.Element(part); e != nil {
				return cur, e
			}
		}
		next := cur.Child(part)
		if next == nil {
			return nil, nil
		}
		cur = next
	}
	return cur, nil
}

func (s *Scope) addChild(kind ScopeKind, d decl.Decl, tag, candidate, fqName string) *Scope {
	child := &Scope{
		Kind:   kind,
		Name:   s.names.AllocateTagged(d, tag, candidate),
		FQName: fqName,
		Decl:   d,
		Parent: s,
		names:  NewRegistry(),
	}
	s.Children = append(s.Children, child)
	return child
}

func (s *Scope) addElement(kind ElementKind, d decl.Decl, name string) *Element {
	e := &Element{Kind: kind, Decl: d, Name: name, scope: s}
	s.Elements = append(s.Elements, e)
	return e
}

func (s *Scope) nextBridgeIndex() int {
	run := s.Root().run
	run.bridgeCount++
	n, err := safecast.Conv[int](run.bridgeCount)
	if err != nil {
		panic(fmt.Errorf("export: bridge counter overflow: %w", err))
	}
	return n
}
